package centrality

import (
	"context"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/pkg/errors"

	"github.com/gpseq/gpseqc/interval"
)

// Result bundles every table the pipeline produces.  All members are frozen
// once Run returns.
type Result struct {
	ChromSizes []interval.ChromSize
	Groups     interval.Set // nil unless grouping active
	Domain     interval.Set // nil for DomainSeparate
	Combined   *CombinedTable
	Estimate   *Estimate
	Ranking    *Ranking
	Rescaled   *Rescaled
	// Masked flags bins whose scores were blanked by the mask set.
	Masked []bool
}

// Run executes the estimation pipeline over the condition series, ordered by
// increasing restriction intensity.  conds and names run parallel; opts must
// already make sense for len(conds) (Validate is called again here as a
// guard).  The scratch directory for intermediate interval sets is created
// once and removed on every exit path.
func Run(ctx context.Context, conds []interval.Set, names []string, opts Opts) (res *Result, err error) {
	if err = opts.Validate(len(conds)); err != nil {
		return nil, err
	}
	for i, c := range conds {
		if len(c) == 0 {
			return nil, errors.Errorf("condition %s is empty", names[i])
		}
	}
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}

	scratch, err := ioutil.TempDir(opts.ScratchDir, "gpseqc-")
	if err != nil {
		return nil, errors.Wrap(err, "scratch dir")
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil && err == nil {
			err = rmErr
		}
	}()

	// Work on sorted copies; inputs are never mutated.
	work := make([]interval.Set, len(conds))
	err = traverse.Each(len(conds), func(i int) error {
		work[i] = conds[i].Sorted()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.RemoveAllOutliers || opts.RemoveCommonOutliers {
		log.Printf("removing outliers (method=%s, common-only=%v)", opts.OutlierMethod, opts.RemoveCommonOutliers)
		work = removeOutliers(work, &opts)
	}

	sizes := opts.ChromSizes
	if len(sizes) == 0 {
		sizes = interval.InferChromSizes(work...)
	}
	log.Printf("%d chromosomes, %d conditions", len(sizes), len(work))

	res = &Result{ChromSizes: sizes}

	var groups interval.Set
	if opts.GroupSize > 0 {
		groups = makeGroups(sizes, opts.GroupSize)
		res.Groups = groups
		if err = interval.WriteBED(ctx, filepath.Join(scratch, "groups.bed"), groups); err != nil {
			return nil, err
		}
		err = traverse.Each(len(work), func(i int) error {
			work[i] = groupLoci(groups, work[i])
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	names = append([]string(nil), names...)
	if opts.Normalize {
		log.Printf("normalizing against last condition %s", names[len(names)-1])
		work = normalizeConditions(work)
		names = names[:len(names)-1]
	}

	domain := buildDomain(work, opts.Domain, opts.Universe, groups)
	res.Domain = domain
	if domain != nil {
		if err = interval.WriteBED(ctx, filepath.Join(scratch, "domain.bed"), domain); err != nil {
			return nil, err
		}
	}
	work = applyDomain(work, domain)
	for i, c := range work {
		if len(c) == 0 {
			return nil, errors.Errorf("condition %s has no loci left after domain filtering", names[i])
		}
	}

	bins := makeBins(sizes, &opts)
	if err = interval.WriteBED(ctx, filepath.Join(scratch, "bins.bed"), bins); err != nil {
		return nil, err
	}
	log.Printf("%d bins (domain=%s)", len(bins), opts.Domain)

	if res.Combined, err = combine(bins, work, names); err != nil {
		return nil, err
	}

	metrics, err := SelectMetrics(opts.IncludeMetrics, opts.ExcludeMetrics)
	if err != nil {
		return nil, err
	}
	if res.Estimate, err = evaluate(res.Combined, metrics, parallelism); err != nil {
		return nil, err
	}

	res.Masked = maskBins(res.Estimate, opts.Mask)

	res.Ranking = rank(res.Estimate, !wholeChromBins(&opts))
	res.Rescaled = rescale(res.Estimate, opts.RescaleMethod, opts.RescaleAlpha, opts.RescaleLim)
	return res, nil
}

// maskBins blanks the scores of bins overlapping the mask set.  Returns the
// per-bin masked flags (nil when no mask is configured).
func maskBins(est *Estimate, mask interval.Set) []bool {
	if len(mask) == 0 {
		return nil
	}
	sorted := mask.Sorted()
	flags := make([]bool, len(est.Table.Bins))
	for bi, bin := range est.Table.Bins {
		if len(interval.Set{bin}.Intersect(sorted)) == 0 {
			continue
		}
		flags[bi] = true
		for mi := range est.Scores[bi] {
			est.Scores[bi][mi] = math.NaN()
		}
	}
	return flags
}
