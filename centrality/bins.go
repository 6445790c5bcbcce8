package centrality

import (
	biogo "github.com/biogo/store/interval"

	"github.com/gpseq/gpseqc/interval"
)

// makeBins produces the bin set for the run: the supplied custom set, one
// whole-chromosome bin per chromosome (BinSize == 0), or sliding windows.
// Bins are generated once and reused identically for every condition.
func makeBins(sizes []interval.ChromSize, o *Opts) interval.Set {
	if len(o.Bins) > 0 {
		return o.Bins.Sorted()
	}
	if o.BinSize == 0 {
		return interval.WholeChrom(sizes)
	}
	return interval.Windows(sizes, o.BinSize, o.BinStep)
}

// makeGroups partitions every chromosome into disjoint, exhaustive windows
// of GroupSize.
func makeGroups(sizes []interval.ChromSize, groupSize int) interval.Set {
	return interval.Windows(sizes, groupSize, groupSize)
}

// wholeChromBins reports whether the run uses chromosome-spanning bins, in
// which case ranking is global rather than chromosome-wise.
func wholeChromBins(o *Opts) bool {
	return len(o.Bins) == 0 && o.BinSize == 0
}

// treeIval adapts an interval.Set entry to biogo/store's interval tree.
type treeIval struct {
	id         uintptr
	start, end int
}

func (t treeIval) Overlap(b biogo.IntRange) bool {
	return t.start < b.End && b.Start < t.end
}
func (t treeIval) ID() uintptr { return t.id }
func (t treeIval) Range() biogo.IntRange {
	return biogo.IntRange{Start: t.start, End: t.end}
}

// assignToTargets maps each locus of s to every target interval it overlaps
// (many-to-many: sliding targets may overlap each other).  The result has
// one slice of locus indices per target, indexed like targets.  Both sets
// must be sorted.
func assignToTargets(targets, s interval.Set) [][]int {
	trees := make(map[string]*biogo.IntTree)
	for ti, tv := range targets {
		tree := trees[tv.Chrom]
		if tree == nil {
			tree = &biogo.IntTree{}
			trees[tv.Chrom] = tree
		}
		// Fast insert; ranges adjusted once below.
		_ = tree.Insert(treeIval{id: uintptr(ti), start: tv.Start, end: tv.End}, true)
	}
	for _, tree := range trees {
		tree.AdjustRanges()
	}
	hits := make([][]int, len(targets))
	for li, iv := range s {
		tree := trees[iv.Chrom]
		if tree == nil {
			continue
		}
		for _, m := range tree.Get(treeIval{start: iv.Start, end: iv.End}) {
			ti := int(m.(treeIval).id)
			hits[ti] = append(hits[ti], li)
		}
	}
	return hits
}

// groupLoci coarsens a condition's loci into groups: each group's score is
// the sum of the scores of the loci overlapping it.  Only groups containing
// at least one locus are returned; a group present with score 0 means its
// loci were all empty.
func groupLoci(groups, loci interval.Set) interval.Set {
	hits := assignToTargets(groups, loci)
	var out interval.Set
	for gi, ls := range hits {
		if len(ls) == 0 {
			continue
		}
		g := groups[gi]
		g.Score = 0
		for _, li := range ls {
			g.Score += loci[li].Score
		}
		out = append(out, g)
	}
	return out
}

// normalizeConditions divides each condition's per-locus read counts by the
// last condition's count at the same locus, dropping loci absent or empty in
// the last condition.  The last condition is consumed: the returned series
// has one fewer member.
func normalizeConditions(conds []interval.Set) []interval.Set {
	last := conds[len(conds)-1]
	ref := make(map[string]float64, len(last))
	for _, iv := range last {
		if iv.Score > 0 {
			ref[iv.Key()] = iv.Score
		}
	}
	out := make([]interval.Set, len(conds)-1)
	for i, c := range conds[:len(conds)-1] {
		norm := make(interval.Set, 0, len(c))
		for _, iv := range c {
			denom, ok := ref[iv.Key()]
			if !ok {
				continue
			}
			iv.Score /= denom
			norm = append(norm, iv)
		}
		out[i] = norm
	}
	return out
}
