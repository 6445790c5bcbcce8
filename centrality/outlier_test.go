package centrality

import (
	"testing"

	"github.com/grailbio/testutil/expect"

	"github.com/gpseq/gpseqc/interval"
)

func locusSet(chrom string, scores ...float64) interval.Set {
	s := make(interval.Set, len(scores))
	for i, sc := range scores {
		s[i] = interval.Interval{Chrom: chrom, Start: i * 10, End: i*10 + 4, Score: sc}
	}
	return s
}

func TestOutliersIQR(t *testing.T) {
	s := locusSet("chr1", 10, 11, 12, 13, 14, 15, 16, 500)
	out := Outliers(s, OutlierIQR, 0, 1.5)
	expect.EQ(t, len(out), 1)
	expect.EQ(t, out[0].Score, 500.0)
}

func TestOutliersZ(t *testing.T) {
	s := locusSet("chr1", 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10, 1000)
	out := Outliers(s, OutlierZ, 0.05, 0)
	expect.EQ(t, len(out), 1)
	expect.EQ(t, out[0].Score, 1000.0)
}

func TestOutliersMAD(t *testing.T) {
	s := locusSet("chr1", 8, 9, 10, 10, 10, 11, 12, 400)
	out := Outliers(s, OutlierMAD, 0.05, 0)
	expect.EQ(t, len(out), 1)
	expect.EQ(t, out[0].Score, 400.0)
}

func TestOutliersNeverMutates(t *testing.T) {
	s := locusSet("chr1", 1, 2, 3, 1000)
	before := append(interval.Set(nil), s...)
	_ = Outliers(s, OutlierIQR, 0, 1.5)
	expect.EQ(t, s, before)
}

func TestOutliersTooFewPoints(t *testing.T) {
	expect.EQ(t, len(Outliers(locusSet("chr1", 1, 1000), OutlierIQR, 0, 1.5)), 0)
}

func TestRemoveOwnOutliers(t *testing.T) {
	c1 := locusSet("chr1", 10, 11, 12, 13, 14, 15, 16, 500)
	c2 := locusSet("chr1", 10, 11, 12, 13, 14, 15, 16, 17)
	o := &Opts{RemoveAllOutliers: true, OutlierMethod: OutlierIQR, OutlierLim: 1.5}
	got := removeOutliers([]interval.Set{c1, c2}, o)
	expect.EQ(t, len(got[0]), 7) // 500 removed from c1 only
	expect.EQ(t, len(got[1]), 8)
}

func TestRemoveCommonOutliersOnly(t *testing.T) {
	// The last locus is extreme in both conditions; the 7th only in c1.
	c1 := locusSet("chr1", 10, 11, 12, 13, 14, 15, 400, 500)
	c2 := locusSet("chr1", 10, 11, 12, 13, 14, 15, 16, 500)
	o := &Opts{RemoveCommonOutliers: true, OutlierMethod: OutlierIQR, OutlierLim: 1.5}
	got := removeOutliers([]interval.Set{c1, c2}, o)
	// Only the locus flagged in every condition goes.
	expect.EQ(t, len(got[0]), 7)
	expect.EQ(t, len(got[1]), 7)
	for _, c := range got {
		for _, iv := range c {
			expect.EQ(t, iv.Score != 500, true)
		}
	}
}
