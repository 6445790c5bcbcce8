package interval

import (
	"fmt"
	"sort"
)

// Interval is a half-open genomic interval [Start, End) with an attached
// read-count score.  Start and End are 0-based.
type Interval struct {
	Chrom string
	Start int
	End   int
	Score float64
}

// Key returns the canonical region identifier for i.  Two intervals with the
// same key denote the same locus/bin across files and conditions.
func (i Interval) Key() string {
	return fmt.Sprintf("%s:%d-%d", i.Chrom, i.Start, i.End)
}

// Overlaps reports whether a and b share at least one base.
func Overlaps(a, b Interval) bool {
	return a.Chrom == b.Chrom && a.Start < b.End && b.Start < a.End
}

// Set is an ordered collection of intervals.  Operations returning a Set
// always return a fresh slice; a Set is never mutated in place except by
// Sort.
type Set []Interval

// Sort orders s by (chrom, start, end).
func (s Set) Sort() {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Chrom != s[j].Chrom {
			return s[i].Chrom < s[j].Chrom
		}
		if s[i].Start != s[j].Start {
			return s[i].Start < s[j].Start
		}
		return s[i].End < s[j].End
	})
}

// Sorted returns a sorted copy of s.
func (s Set) Sorted() Set {
	out := make(Set, len(s))
	copy(out, s)
	out.Sort()
	return out
}

// Length returns the total number of bases covered, counting each interval
// independently (overlapping intervals are not merged first).
func (s Set) Length() int {
	n := 0
	for _, iv := range s {
		n += iv.End - iv.Start
	}
	return n
}

// TotalScore returns the sum of all interval scores.
func (s Set) TotalScore() float64 {
	t := 0.0
	for _, iv := range s {
		t += iv.Score
	}
	return t
}

// Chroms returns the distinct chromosome names of s in sorted order.
func (s Set) Chroms() []string {
	seen := make(map[string]bool)
	var names []string
	for _, iv := range s {
		if !seen[iv.Chrom] {
			seen[iv.Chrom] = true
			names = append(names, iv.Chrom)
		}
	}
	sort.Strings(names)
	return names
}

// byChrom partitions a sorted set into per-chromosome sub-slices.
func (s Set) byChrom() map[string]Set {
	m := make(map[string]Set)
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || s[i].Chrom != s[start].Chrom {
			m[s[start].Chrom] = s[start:i]
			start = i
		}
	}
	return m
}

// Intersect returns the intervals of s that overlap at least one interval of
// other.  Intervals are kept whole (this is membership filtering, not
// coordinate clipping).  Both inputs may be unsorted.
func (s Set) Intersect(other Set) Set {
	return s.filterOverlap(other, true)
}

// Subtract returns the intervals of s that overlap no interval of other.
func (s Set) Subtract(other Set) Set {
	return s.filterOverlap(other, false)
}

func (s Set) filterOverlap(other Set, keepHits bool) Set {
	ss := s.Sorted()
	os := other.Sorted().byChrom()
	out := make(Set, 0, len(ss))
	for chrom, sub := range ss.byChrom() {
		ref := os[chrom]
		j := 0
		for _, iv := range sub {
			// ref intervals ending at or before iv.Start can never overlap
			// this or any later iv.
			for j < len(ref) && ref[j].End <= iv.Start {
				j++
			}
			hit := false
			for k := j; k < len(ref) && ref[k].Start < iv.End; k++ {
				if iv.Start < ref[k].End {
					hit = true
					break
				}
			}
			if hit == keepHits {
				out = append(out, iv)
			}
		}
	}
	out.Sort()
	return out
}

// ChromSize is one (name, length) pair of a genome size table.
type ChromSize struct {
	Name string
	Size int
}

// InferChromSizes derives a chromosome size table from observed intervals:
// per chromosome, the maximum end coordinate seen across all given sets.
// Chromosomes are reported in name order.
func InferChromSizes(sets ...Set) []ChromSize {
	max := make(map[string]int)
	for _, s := range sets {
		for _, iv := range s {
			if iv.End > max[iv.Chrom] {
				max[iv.Chrom] = iv.End
			}
		}
	}
	names := make([]string, 0, len(max))
	for name := range max {
		names = append(names, name)
	}
	sort.Strings(names)
	sizes := make([]ChromSize, len(names))
	for i, name := range names {
		sizes[i] = ChromSize{Name: name, Size: max[name]}
	}
	return sizes
}

// Windows generates a sliding-window set over the given chromosomes: windows
// of width size starting at 0 and advancing by step, until a window would
// start at or past the chromosome end.  The final window is clipped at the
// chromosome boundary, so a partial window is possible.  size == step yields
// a disjoint, exhaustive partition.
func Windows(sizes []ChromSize, size, step int) Set {
	var out Set
	for _, cs := range sizes {
		for start := 0; start < cs.Size; start += step {
			end := start + size
			if end > cs.Size {
				end = cs.Size
			}
			out = append(out, Interval{Chrom: cs.Name, Start: start, End: end})
		}
	}
	return out
}

// WholeChrom returns one chromosome-spanning interval per chromosome.
func WholeChrom(sizes []ChromSize) Set {
	out := make(Set, len(sizes))
	for i, cs := range sizes {
		out[i] = Interval{Chrom: cs.Name, Start: 0, End: cs.Size}
	}
	return out
}
