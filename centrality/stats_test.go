package centrality

import (
	"math"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"

	"github.com/gpseq/gpseqc/interval"
)

func TestAggregateExcludesZeroReads(t *testing.T) {
	// One chromosome of length 1000, bins 500/500, loci [5, 0, 3]: bin 1
	// statistics use {5, 3} only.
	bins := interval.Windows(chr1k, 500, 500)
	loci := interval.Set{
		{Chrom: "chr1", Start: 100, End: 104, Score: 5},
		{Chrom: "chr1", Start: 200, End: 204, Score: 0},
		{Chrom: "chr1", Start: 300, End: 304, Score: 3},
	}
	col := aggregate(bins, loci)
	require.Len(t, col, 2)
	expect.EQ(t, col[0].Count, 2)
	expect.EQ(t, col[0].Sum, 8.0)
	expect.EQ(t, col[0].Mean, 4.0)
	expect.EQ(t, col[0].Variance, 2.0)
	// The empty second bin stays in the output with no-data statistics.
	expect.EQ(t, col[1].Count, 0)
	expect.EQ(t, math.IsNaN(col[1].Mean), true)
	expect.EQ(t, math.IsNaN(col[1].Variance), true)
}

func TestAggregateBoundaryLocus(t *testing.T) {
	bins := interval.Windows(chr1k, 500, 500)
	// A locus straddling position 500 belongs to both bins it overlaps,
	// and to each exactly once.
	loci := interval.Set{{Chrom: "chr1", Start: 498, End: 502, Score: 7}}
	col := aggregate(bins, loci)
	expect.EQ(t, col[0].Count, 1)
	expect.EQ(t, col[0].Sum, 7.0)
	expect.EQ(t, col[1].Count, 1)
	expect.EQ(t, col[1].Sum, 7.0)
}

func TestAggregateSlidingOverlap(t *testing.T) {
	bins := interval.Windows(chr1k, 400, 300)
	// Position 350 falls in windows [0,400) and [300,700).
	loci := interval.Set{{Chrom: "chr1", Start: 350, End: 354, Score: 2}}
	col := aggregate(bins, loci)
	expect.EQ(t, col[0].Count, 1)
	expect.EQ(t, col[1].Count, 1)
	expect.EQ(t, col[2].Count, 0)
}

func TestCombineRowAlignment(t *testing.T) {
	bins := interval.Windows(chr1k, 500, 500)
	c1 := interval.Set{{Chrom: "chr1", Start: 100, End: 104, Score: 5}}
	c2 := interval.Set{{Chrom: "chr1", Start: 600, End: 604, Score: 3}}
	tbl, err := combine(bins, []interval.Set{c1, c2}, []string{"a", "b"})
	require.NoError(t, err)
	// Every bin appears for every condition, even where a condition has no
	// loci in the bin.
	require.Len(t, tbl.Stats, len(bins))
	for _, row := range tbl.Stats {
		require.Len(t, row, 2)
	}
	expect.EQ(t, tbl.Stats[0][0].Count, 1)
	expect.EQ(t, tbl.Stats[0][1].Count, 0)
	expect.EQ(t, tbl.Stats[1][0].Count, 0)
	expect.EQ(t, tbl.Stats[1][1].Count, 1)
	expect.EQ(t, tbl.CondTotals, []float64{5, 3})
}
