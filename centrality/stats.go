package centrality

import (
	"math"

	"github.com/grailbio/base/traverse"
	"gonum.org/v1/gonum/stat"

	"github.com/gpseq/gpseqc/interval"
)

// BinStat holds the per-(bin, condition) aggregates.  Mean and Variance are
// computed over sensed (non-zero read count) loci only; a bin with no sensed
// loci keeps Count == 0 and NaN mean/variance, and is never dropped, so rows
// stay aligned across conditions.
type BinStat struct {
	Count    int // sensed loci
	Sum      float64
	Mean     float64
	Variance float64 // sample variance; NaN when Count < 2
}

// CombinedTable is the union of all BinStats: one row per bin, one entry per
// condition in series order, plus the per-condition read totals used by the
// probability metrics.
type CombinedTable struct {
	Bins       interval.Set
	CondNames  []string
	Stats      [][]BinStat // [bin][condition]
	CondTotals []float64   // total reads per condition over its domain loci
}

// aggregate computes one condition's column of the combined table.  Loci are
// assigned to every bin they overlap (sliding bins may overlap, so a locus
// can contribute to several).
func aggregate(bins, loci interval.Set) []BinStat {
	hits := assignToTargets(bins, loci)
	col := make([]BinStat, len(bins))
	for bi, ls := range hits {
		var counts []float64
		sum := 0.0
		for _, li := range ls {
			score := loci[li].Score
			sum += score
			if score > 0 {
				counts = append(counts, score)
			}
		}
		bs := BinStat{Count: len(counts), Sum: sum, Mean: math.NaN(), Variance: math.NaN()}
		if len(counts) > 0 {
			bs.Mean = stat.Mean(counts, nil)
		}
		if len(counts) > 1 {
			bs.Variance = stat.Variance(counts, nil)
		}
		col[bi] = bs
	}
	return col
}

// combine builds the full table, one condition per parallel task.
func combine(bins interval.Set, conds []interval.Set, names []string) (*CombinedTable, error) {
	cols := make([][]BinStat, len(conds))
	totals := make([]float64, len(conds))
	err := traverse.Each(len(conds), func(ci int) error {
		cols[ci] = aggregate(bins, conds[ci])
		totals[ci] = conds[ci].TotalScore()
		return nil
	})
	if err != nil {
		return nil, err
	}
	t := &CombinedTable{
		Bins:       bins,
		CondNames:  names,
		Stats:      make([][]BinStat, len(bins)),
		CondTotals: totals,
	}
	for bi := range bins {
		row := make([]BinStat, len(conds))
		for ci := range conds {
			row[ci] = cols[ci][bi]
		}
		t.Stats[bi] = row
	}
	return t, nil
}
