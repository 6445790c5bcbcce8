package interval

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestSortAndKey(t *testing.T) {
	s := Set{
		{Chrom: "chr2", Start: 10, End: 20, Score: 1},
		{Chrom: "chr1", Start: 50, End: 60, Score: 2},
		{Chrom: "chr1", Start: 5, End: 15, Score: 3},
	}
	s.Sort()
	expect.EQ(t, s[0].Key(), "chr1:5-15")
	expect.EQ(t, s[1].Key(), "chr1:50-60")
	expect.EQ(t, s[2].Key(), "chr2:10-20")
}

func TestOverlaps(t *testing.T) {
	a := Interval{Chrom: "chr1", Start: 0, End: 10}
	expect.EQ(t, Overlaps(a, Interval{Chrom: "chr1", Start: 9, End: 12}), true)
	// Half-open: touching intervals do not overlap.
	expect.EQ(t, Overlaps(a, Interval{Chrom: "chr1", Start: 10, End: 12}), false)
	expect.EQ(t, Overlaps(a, Interval{Chrom: "chr2", Start: 0, End: 10}), false)
}

func TestLengthAndTotalScore(t *testing.T) {
	s := Set{
		{Chrom: "chr1", Start: 0, End: 100, Score: 5},
		{Chrom: "chr1", Start: 200, End: 250, Score: 2.5},
	}
	expect.EQ(t, s.Length(), 150)
	expect.EQ(t, s.TotalScore(), 7.5)
}

func TestIntersectSubtract(t *testing.T) {
	s := Set{
		{Chrom: "chr1", Start: 0, End: 10, Score: 1},
		{Chrom: "chr1", Start: 20, End: 30, Score: 2},
		{Chrom: "chr2", Start: 0, End: 10, Score: 3},
	}
	ref := Set{
		{Chrom: "chr1", Start: 25, End: 40},
		{Chrom: "chr2", Start: 100, End: 200},
	}
	hit := s.Intersect(ref)
	expect.EQ(t, len(hit), 1)
	expect.EQ(t, hit[0].Key(), "chr1:20-30")
	miss := s.Subtract(ref)
	expect.EQ(t, len(miss), 2)
	expect.EQ(t, miss[0].Key(), "chr1:0-10")
	expect.EQ(t, miss[1].Key(), "chr2:0-10")
	// Intersect + Subtract partition the input.
	expect.EQ(t, len(hit)+len(miss), len(s))
}

func TestIntersectKeepsWholeIntervals(t *testing.T) {
	s := Set{{Chrom: "chr1", Start: 0, End: 100, Score: 9}}
	ref := Set{{Chrom: "chr1", Start: 99, End: 101}}
	got := s.Intersect(ref)
	expect.EQ(t, len(got), 1)
	expect.EQ(t, got[0], s[0])
}

func TestInferChromSizes(t *testing.T) {
	a := Set{
		{Chrom: "chr1", Start: 0, End: 500},
		{Chrom: "chr2", Start: 10, End: 900},
	}
	b := Set{{Chrom: "chr1", Start: 700, End: 1200}}
	sizes := InferChromSizes(a, b)
	expect.EQ(t, sizes, []ChromSize{{Name: "chr1", Size: 1200}, {Name: "chr2", Size: 900}})
}

func TestWindows(t *testing.T) {
	sizes := []ChromSize{{Name: "chr1", Size: 1000}}

	// Non-overlapping: exact tiling.
	w := Windows(sizes, 500, 500)
	expect.EQ(t, w, Set{
		{Chrom: "chr1", Start: 0, End: 500},
		{Chrom: "chr1", Start: 500, End: 1000},
	})

	// Sliding with a clipped final partial window.
	w = Windows(sizes, 400, 300)
	expect.EQ(t, w, Set{
		{Chrom: "chr1", Start: 0, End: 400},
		{Chrom: "chr1", Start: 300, End: 700},
		{Chrom: "chr1", Start: 600, End: 1000},
		{Chrom: "chr1", Start: 900, End: 1000},
	})

	// size == step partitions exhaustively even when the last window is
	// partial.
	w = Windows([]ChromSize{{Name: "chr1", Size: 1100}}, 500, 500)
	expect.EQ(t, w[len(w)-1], Interval{Chrom: "chr1", Start: 1000, End: 1100})
}

func TestWholeChrom(t *testing.T) {
	sizes := []ChromSize{{Name: "chr1", Size: 1000}, {Name: "chr2", Size: 800}}
	expect.EQ(t, WholeChrom(sizes), Set{
		{Chrom: "chr1", Start: 0, End: 1000},
		{Chrom: "chr2", Start: 0, End: 800},
	})
}
