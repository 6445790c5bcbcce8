package centrality

import (
	"math"
	"strings"

	"github.com/grailbio/base/traverse"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Metric is one centrality scoring function.  The set is a closed
// enumeration: each metric is a pure function of one bin's per-condition
// statistics, ordered by increasing restriction intensity.  Heavier read
// mass at low-intensity conditions means higher estimated centrality.
type Metric int

const (
	// Probability family: built on per-condition read shares.
	MetricProbRatio Metric = iota
	MetricCumProb
	MetricCumRatio
	// Variance family: built on per-condition dispersion of sensed loci.
	MetricVarRatio
	MetricFFRatio
	MetricSVarTrend

	numMetrics
)

func (m Metric) Name() string {
	switch m {
	case MetricProbRatio:
		return "prob-ratio"
	case MetricCumProb:
		return "cum-prob"
	case MetricCumRatio:
		return "cum-ratio"
	case MetricVarRatio:
		return "var-ratio"
	case MetricFFRatio:
		return "ff-ratio"
	case MetricSVarTrend:
		return "svar-trend"
	}
	return "invalid"
}

// MoreCentralIsHigher reports the metric's direction: whether larger scores
// mean more central.  svar-trend is the inverse case (a falling Fano-factor
// trend marks central regions).
func (m Metric) MoreCentralIsHigher() bool {
	return m != MetricSVarTrend
}

// AllMetrics returns every metric in enumeration order.
func AllMetrics() []Metric {
	ms := make([]Metric, numMetrics)
	for i := range ms {
		ms[i] = Metric(i)
	}
	return ms
}

// SelectMetrics resolves include/exclude name lists (mutually exclusive at
// the caller boundary; both empty selects everything).  Unknown names are
// rejected.
func SelectMetrics(include, exclude []string) ([]Metric, error) {
	byName := make(map[string]Metric, numMetrics)
	for _, m := range AllMetrics() {
		byName[m.Name()] = m
	}
	check := func(names []string) error {
		for _, n := range names {
			if _, ok := byName[n]; !ok {
				return errors.Errorf("unknown metric %q (have %s)", n, strings.Join(MetricNames(), ", "))
			}
		}
		return nil
	}
	if err := check(include); err != nil {
		return nil, err
	}
	if err := check(exclude); err != nil {
		return nil, err
	}
	if len(include) > 0 {
		out := make([]Metric, 0, len(include))
		seen := make(map[Metric]bool)
		for _, n := range include {
			if m := byName[n]; !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
		return out, nil
	}
	drop := make(map[string]bool, len(exclude))
	for _, n := range exclude {
		drop[n] = true
	}
	var out []Metric
	for _, m := range AllMetrics() {
		if !drop[m.Name()] {
			out = append(out, m)
		}
	}
	return out, nil
}

// MetricNames lists the stable metric names in enumeration order.
func MetricNames() []string {
	names := make([]string, 0, numMetrics)
	for _, m := range AllMetrics() {
		names = append(names, m.Name())
	}
	return names
}

// shares converts one bin's per-condition sums into normalized read shares
// p_i: each sum scaled by its condition total, then normalized to sum to 1.
// Returns nil when the bin carries no reads in any condition.
func shares(row []BinStat, condTotals []float64) []float64 {
	p := make([]float64, len(row))
	sum := 0.0
	for i, bs := range row {
		if condTotals[i] > 0 {
			p[i] = bs.Sum / condTotals[i]
		}
		sum += p[i]
	}
	if sum == 0 {
		return nil
	}
	for i := range p {
		p[i] /= sum
	}
	return p
}

// Score evaluates the metric for one bin.  NaN marks "no data", never 0.
func (m Metric) Score(row []BinStat, condTotals []float64) float64 {
	n := len(row)
	switch m {
	case MetricProbRatio:
		p := shares(row, condTotals)
		if p == nil {
			return math.NaN()
		}
		return p[0] / p[n-1]
	case MetricCumProb:
		p := shares(row, condTotals)
		if p == nil {
			return math.NaN()
		}
		cum, acc := 0.0, 0.0
		for _, v := range p {
			acc += v
			cum += acc
		}
		return cum / float64(n)
	case MetricCumRatio:
		p := shares(row, condTotals)
		if p == nil {
			return math.NaN()
		}
		// Cumulative share against the uniform expectation i/n; a flat
		// profile scores 1, early mass scores above 1.
		acc, score := 0.0, 0.0
		for i, v := range p {
			acc += v
			score += acc / (float64(i+1) / float64(n))
		}
		return score / float64(n)
	case MetricVarRatio:
		v1, vn := row[0].Variance, row[n-1].Variance
		if math.IsNaN(v1) || math.IsNaN(vn) || v1 == 0 || vn == 0 {
			return math.NaN()
		}
		return math.Log2(v1 / vn)
	case MetricFFRatio:
		f1, fn := fanoFactor(row[0]), fanoFactor(row[n-1])
		if math.IsNaN(f1) || math.IsNaN(fn) || f1 == 0 || fn == 0 {
			return math.NaN()
		}
		return math.Log2(f1 / fn)
	case MetricSVarTrend:
		xs := make([]float64, 0, n)
		ys := make([]float64, 0, n)
		for i, bs := range row {
			f := fanoFactor(bs)
			if math.IsNaN(f) || f <= 0 {
				continue
			}
			xs = append(xs, float64(i+1))
			ys = append(ys, math.Log2(f))
		}
		if len(xs) < 2 {
			return math.NaN()
		}
		_, slope := stat.LinearRegression(xs, ys, nil, false)
		return slope
	}
	return math.NaN()
}

func fanoFactor(bs BinStat) float64 {
	if bs.Count < 2 || math.IsNaN(bs.Variance) || bs.Mean == 0 {
		return math.NaN()
	}
	return bs.Variance / bs.Mean
}

// Estimate is the per-bin centrality table: one score column per selected
// metric.
type Estimate struct {
	Metrics []Metric
	Scores  [][]float64 // [bin][metric]
	Table   *CombinedTable
}

// evaluate computes the estimate, bins partitioned across parallel jobs.
func evaluate(t *CombinedTable, metrics []Metric, parallelism int) (*Estimate, error) {
	est := &Estimate{
		Metrics: metrics,
		Scores:  make([][]float64, len(t.Bins)),
		Table:   t,
	}
	nBin := len(t.Bins)
	if parallelism < 1 {
		parallelism = 1
	}
	if parallelism > nBin {
		parallelism = nBin
	}
	err := traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * nBin) / parallelism
		endIdx := ((jobIdx + 1) * nBin) / parallelism
		for bi := startIdx; bi < endIdx; bi++ {
			scores := make([]float64, len(metrics))
			for mi, m := range metrics {
				scores[mi] = m.Score(t.Stats[bi], t.CondTotals)
			}
			est.Scores[bi] = scores
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return est, nil
}
