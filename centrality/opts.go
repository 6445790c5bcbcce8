package centrality

import (
	"github.com/pkg/errors"

	"github.com/gpseq/gpseqc/interval"
)

// DomainMode selects how the cutsite domain (the set of loci/groups eligible
// to contribute to statistics) is built.
type DomainMode int

const (
	// DomainUniverse uses an externally supplied exhaustive locus/group
	// list, independent of what is observed in any condition.
	DomainUniverse DomainMode = 1
	// DomainUnion keeps loci observed (non-zero reads) in >=1 condition.
	DomainUnion DomainMode = 2
	// DomainSeparate builds no shared domain; each condition independently
	// drops its own zero-read loci.  This is the default.
	DomainSeparate DomainMode = 3
	// DomainIntersection keeps loci with non-zero reads in every condition.
	DomainIntersection DomainMode = 4
)

func (m DomainMode) String() string {
	switch m {
	case DomainUniverse:
		return "universe"
	case DomainUnion:
		return "union"
	case DomainSeparate:
		return "separate"
	case DomainIntersection:
		return "intersection"
	}
	return "invalid"
}

// Opts configures one estimation run.
type Opts struct {
	// BinSize/BinStep define sliding-window bins.  BinSize == 0 means one
	// whole-chromosome bin per chromosome.  BinSize >= BinStep required.
	BinSize int
	BinStep int
	// Bins, when non-nil, is a custom externally supplied bin set and
	// overrides BinSize/BinStep.
	Bins interval.Set

	// GroupSize > 0 coarsens cutsites into fixed, disjoint groups of this
	// width before statistics.
	GroupSize int

	// Domain selects the cutsite-domain mode; Universe must be supplied for
	// DomainUniverse unless grouping is active.
	Domain   DomainMode
	Universe interval.Set

	// Normalize divides each condition's per-locus counts by the last
	// condition's, which is consumed and removed from the series.
	// Requires at least 3 conditions.
	Normalize bool

	// Input outlier filtering policies.  RemoveAllOutliers removes, from
	// each condition, that condition's own outliers.  RemoveCommonOutliers
	// removes only loci flagged as outliers in every condition.  Setting
	// both is a configuration error.
	RemoveAllOutliers    bool
	RemoveCommonOutliers bool
	OutlierMethod        OutlierMethod
	OutlierAlpha         float64 // significance level for Z/t/chi2/MAD
	OutlierLim           float64 // IQR limit multiplier

	// Score rescaling (same machinery, applied to the per-metric score
	// distribution).
	RescaleMethod OutlierMethod
	RescaleAlpha  float64
	RescaleLim    float64

	// Metric selection by name; at most one of the two may be non-empty.
	IncludeMetrics []string
	ExcludeMetrics []string

	// Mask, when non-nil, marks bins overlapping it: their scores become
	// NaN before ranking.
	Mask interval.Set

	// ChromSizes, when non-nil, is the supplied genome size table;
	// otherwise sizes are inferred from the inputs.
	ChromSizes []interval.ChromSize

	// Parallelism caps concurrent workers; 0 means runtime.NumCPU().
	Parallelism int

	// ScratchDir is the parent for the per-run scratch directory; ""
	// means os.TempDir().
	ScratchDir string
}

// DefaultOpts holds the documented defaults.
var DefaultOpts = Opts{
	BinSize:       1000000,
	BinStep:       100000,
	Domain:        DomainSeparate,
	OutlierMethod: OutlierIQR,
	OutlierAlpha:  0.01,
	OutlierLim:    1.5,
	RescaleMethod: OutlierIQR,
	RescaleAlpha:  0.01,
	RescaleLim:    1.5,
}

// Validate checks opts against the number of input conditions.  All
// configuration errors are detected here, before any data is touched.
func (o *Opts) Validate(nConditions int) error {
	if nConditions < 2 {
		return errors.Errorf("need at least 2 conditions, got %d", nConditions)
	}
	if o.Normalize && nConditions < 3 {
		return errors.Errorf("normalization consumes the last condition and needs at least 3, got %d", nConditions)
	}
	switch o.Domain {
	case DomainUniverse:
		if len(o.Universe) == 0 && o.GroupSize == 0 {
			return errors.New("universe domain requires a supplied locus list or active grouping")
		}
	case DomainUnion, DomainSeparate, DomainIntersection:
	default:
		return errors.Errorf("invalid domain mode %d", int(o.Domain))
	}
	if len(o.Bins) == 0 {
		if o.BinSize < 0 || o.BinStep < 0 {
			return errors.Errorf("negative bin geometry %d/%d", o.BinSize, o.BinStep)
		}
		if o.BinSize > 0 && o.BinStep == 0 {
			return errors.New("bin step must be positive when bin size is set")
		}
		if o.BinSize < o.BinStep {
			return errors.Errorf("bin size %d smaller than bin step %d", o.BinSize, o.BinStep)
		}
	}
	if o.GroupSize < 0 {
		return errors.Errorf("negative group size %d", o.GroupSize)
	}
	if o.GroupSize > 0 && o.BinSize > 0 {
		if o.BinSize%o.GroupSize != 0 {
			return errors.Errorf("bin size %d not divisible by group size %d", o.BinSize, o.GroupSize)
		}
		if o.BinStep <= o.GroupSize {
			return errors.Errorf("bin step %d must exceed group size %d", o.BinStep, o.GroupSize)
		}
	}
	if o.RemoveAllOutliers && o.RemoveCommonOutliers {
		return errors.New("remove-all and remove-common outlier policies are mutually exclusive")
	}
	if len(o.IncludeMetrics) > 0 && len(o.ExcludeMetrics) > 0 {
		return errors.New("metric include and exclude lists are mutually exclusive")
	}
	if _, err := SelectMetrics(o.IncludeMetrics, o.ExcludeMetrics); err != nil {
		return err
	}
	if o.RemoveAllOutliers || o.RemoveCommonOutliers {
		if err := validateOutlierParams(o.OutlierMethod, o.OutlierAlpha, o.OutlierLim); err != nil {
			return err
		}
	}
	return validateOutlierParams(o.RescaleMethod, o.RescaleAlpha, o.RescaleLim)
}

func validateOutlierParams(m OutlierMethod, alpha, lim float64) error {
	switch m {
	case OutlierZ, OutlierT, OutlierChi2, OutlierMAD:
		if alpha <= 0 || alpha >= 1 {
			return errors.Errorf("outlier alpha %g outside (0, 1)", alpha)
		}
	case OutlierIQR:
		if lim <= 0 {
			return errors.Errorf("IQR limit multiplier %g must be positive", lim)
		}
	default:
		return errors.Errorf("invalid outlier method %d", int(m))
	}
	return nil
}
