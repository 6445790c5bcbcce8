package centrality

import (
	"math"
	"sort"

	"github.com/gpseq/gpseqc/interval"
)

// Ranking is the estimate re-ordered per metric with explicit integer ranks.
// Ranks start at 1 per metric; bins with NaN scores sort last and keep rank
// 0 (unranked) so they never compete with defined scores.  With
// sub-chromosome bins, ranks are assigned independently within each
// chromosome and concatenated in chromosome order.
type Ranking struct {
	Est   *Estimate
	Ranks [][]int // [bin][metric]; 0 = unranked
	// Order holds, per metric, the bin indices in rank order (unranked
	// bins trailing).
	Order [][]int // [metric][position]
}

// rank orders the estimate.  chromWise selects per-chromosome ranking.
func rank(est *Estimate, chromWise bool) *Ranking {
	nBin := len(est.Table.Bins)
	r := &Ranking{
		Est:   est,
		Ranks: make([][]int, nBin),
		Order: make([][]int, len(est.Metrics)),
	}
	for bi := 0; bi < nBin; bi++ {
		r.Ranks[bi] = make([]int, len(est.Metrics))
	}
	partitions := [][]int{allBins(nBin)}
	if chromWise {
		partitions = binsByChrom(est.Table.Bins)
	}
	for mi, m := range est.Metrics {
		var order []int
		for _, part := range partitions {
			ranked, unranked := sortPartition(part, est, mi, m.MoreCentralIsHigher())
			for i, bi := range ranked {
				r.Ranks[bi][mi] = i + 1
			}
			order = append(order, ranked...)
			order = append(order, unranked...)
		}
		r.Order[mi] = order
	}
	return r
}

func allBins(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// binsByChrom splits bin indices into per-chromosome runs; bins are sorted,
// so runs are contiguous and emitted in chromosome order.
func binsByChrom(bins interval.Set) [][]int {
	var parts [][]int
	start := 0
	for i := 1; i <= len(bins); i++ {
		if i == len(bins) || bins[i].Chrom != bins[start].Chrom {
			parts = append(parts, allBinsFrom(start, i))
			start = i
		}
	}
	return parts
}

func allBinsFrom(lo, hi int) []int {
	out := make([]int, hi-lo)
	for i := range out {
		out[i] = lo + i
	}
	return out
}

// sortPartition orders one partition's bins by score, most central first,
// and splits off the NaN-score bins.
func sortPartition(part []int, est *Estimate, mi int, higherCentral bool) (ranked, unranked []int) {
	for _, bi := range part {
		if math.IsNaN(est.Scores[bi][mi]) {
			unranked = append(unranked, bi)
		} else {
			ranked = append(ranked, bi)
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		sa, sb := est.Scores[ranked[a]][mi], est.Scores[ranked[b]][mi]
		if higherCentral {
			return sa > sb
		}
		return sa < sb
	})
	return ranked, unranked
}

// Rescaled is the estimate with outlier-aware clipping applied per metric
// column.  Flagged scores are clipped to the most extreme unflagged value on
// their side and annotated, never dropped.
type Rescaled struct {
	Est     *Estimate
	Scores  [][]float64 // [bin][metric]
	Outlier [][]bool    // [bin][metric]
}

// rescale runs the outlier machinery over each metric's score distribution.
// NaN scores are excluded from distribution fitting and pass through.
func rescale(est *Estimate, method OutlierMethod, alpha, lim float64) *Rescaled {
	nBin := len(est.Table.Bins)
	rs := &Rescaled{
		Est:     est,
		Scores:  make([][]float64, nBin),
		Outlier: make([][]bool, nBin),
	}
	for bi := 0; bi < nBin; bi++ {
		rs.Scores[bi] = make([]float64, len(est.Metrics))
		rs.Outlier[bi] = make([]bool, len(est.Metrics))
	}
	for mi := range est.Metrics {
		col := make([]float64, nBin)
		for bi := 0; bi < nBin; bi++ {
			col[bi] = est.Scores[bi][mi]
		}
		flags := outlierFlags(col, method, alpha, lim)
		lo, hi := math.Inf(1), math.Inf(-1)
		for bi, v := range col {
			if flags[bi] || math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if lo > hi {
			// Every defined score was flagged; nothing to clip against.
			for bi, v := range col {
				rs.Scores[bi][mi] = v
				rs.Outlier[bi][mi] = flags[bi]
			}
			continue
		}
		for bi, v := range col {
			out := v
			if flags[bi] {
				if v < lo {
					out = lo
				} else if v > hi {
					out = hi
				}
			}
			rs.Scores[bi][mi] = out
			rs.Outlier[bi][mi] = flags[bi]
		}
	}
	return rs
}
