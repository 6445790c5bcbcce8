package centrality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/gpseq/gpseqc/interval"
)

// OutlierMethod selects the flagging statistic for read-count outlier
// detection and score rescaling.
type OutlierMethod int

const (
	OutlierZ OutlierMethod = iota
	OutlierT
	OutlierChi2
	OutlierIQR
	OutlierMAD
)

func (m OutlierMethod) String() string {
	switch m {
	case OutlierZ:
		return "z"
	case OutlierT:
		return "t"
	case OutlierChi2:
		return "chi2"
	case OutlierIQR:
		return "iqr"
	case OutlierMAD:
		return "mad"
	}
	return "invalid"
}

// ParseOutlierMethod maps a method name to its OutlierMethod.
func ParseOutlierMethod(s string) (OutlierMethod, bool) {
	for _, m := range []OutlierMethod{OutlierZ, OutlierT, OutlierChi2, OutlierIQR, OutlierMAD} {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// outlierFlags returns, per input value, whether it is judged an outlier.
// alpha is the two-sided significance level (Z/t/MAD), or the upper-tail
// level for chi2; lim is the IQR fence multiplier.  NaN inputs are never
// flagged and are excluded from the fitted distribution.
func outlierFlags(xs []float64, method OutlierMethod, alpha, lim float64) []bool {
	flags := make([]bool, len(xs))
	defined := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			defined = append(defined, x)
		}
	}
	n := len(defined)
	if n < 3 {
		return flags
	}
	switch method {
	case OutlierZ, OutlierT, OutlierChi2:
		mean, sd := stat.MeanStdDev(defined, nil)
		if sd == 0 {
			return flags
		}
		switch method {
		case OutlierZ:
			thr := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - alpha/2)
			for i, x := range xs {
				flags[i] = !math.IsNaN(x) && math.Abs((x-mean)/sd) > thr
			}
		case OutlierT:
			// Grubbs-style rescaling of Z into a t statistic with n-2
			// degrees of freedom.
			thr := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}.Quantile(1 - alpha/2)
			for i, x := range xs {
				if math.IsNaN(x) {
					continue
				}
				z := (x - mean) / sd
				den := float64(n-1) - z*z
				if den <= 0 {
					flags[i] = true
					continue
				}
				t := z * math.Sqrt(float64(n-2)) / math.Sqrt(den)
				flags[i] = math.Abs(t) > thr
			}
		case OutlierChi2:
			thr := distuv.ChiSquared{K: 1}.Quantile(1 - alpha)
			for i, x := range xs {
				if math.IsNaN(x) {
					continue
				}
				z := (x - mean) / sd
				flags[i] = z*z > thr
			}
		}
	case OutlierIQR:
		sorted := append([]float64(nil), defined...)
		sort.Float64s(sorted)
		q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
		q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
		iqr := q3 - q1
		lo, hi := q1-lim*iqr, q3+lim*iqr
		for i, x := range xs {
			flags[i] = !math.IsNaN(x) && (x < lo || x > hi)
		}
	case OutlierMAD:
		sorted := append([]float64(nil), defined...)
		sort.Float64s(sorted)
		med := stat.Quantile(0.5, stat.Empirical, sorted, nil)
		dev := make([]float64, n)
		for i, x := range sorted {
			dev[i] = math.Abs(x - med)
		}
		sort.Float64s(dev)
		mad := stat.Quantile(0.5, stat.Empirical, dev, nil)
		if mad == 0 {
			// Degenerate spread: anything off the median is extreme.
			for i, x := range xs {
				flags[i] = !math.IsNaN(x) && x != med
			}
			return flags
		}
		// 1.4826 makes MAD a consistent estimator of sigma under normality.
		thr := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - alpha/2)
		for i, x := range xs {
			flags[i] = !math.IsNaN(x) && math.Abs(x-med)/(1.4826*mad) > thr
		}
	}
	return flags
}

// Outliers returns the subset of s whose read counts are judged outliers by
// the given method.  The input is never mutated.
func Outliers(s interval.Set, method OutlierMethod, alpha, lim float64) interval.Set {
	xs := make([]float64, len(s))
	for i, iv := range s {
		xs[i] = iv.Score
	}
	flags := outlierFlags(xs, method, alpha, lim)
	var out interval.Set
	for i, f := range flags {
		if f {
			out = append(out, s[i])
		}
	}
	return out
}

// removeOutliers applies the configured removal policy to the condition
// series, returning fresh locus sets.
func removeOutliers(conds []interval.Set, o *Opts) []interval.Set {
	flagged := make([]map[string]bool, len(conds))
	for i, c := range conds {
		flagged[i] = make(map[string]bool)
		for _, iv := range Outliers(c, o.OutlierMethod, o.OutlierAlpha, o.OutlierLim) {
			flagged[i][iv.Key()] = true
		}
	}
	var common map[string]bool
	if o.RemoveCommonOutliers {
		common = flagged[0]
		for _, f := range flagged[1:] {
			next := make(map[string]bool)
			for k := range common {
				if f[k] {
					next[k] = true
				}
			}
			common = next
		}
	}
	out := make([]interval.Set, len(conds))
	for i, c := range conds {
		drop := flagged[i]
		if o.RemoveCommonOutliers {
			drop = common
		}
		kept := make(interval.Set, 0, len(c))
		for _, iv := range c {
			if !drop[iv.Key()] {
				kept = append(kept, iv)
			}
		}
		out[i] = kept
	}
	return out
}
