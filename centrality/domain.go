package centrality

import (
	"github.com/gpseq/gpseqc/interval"
)

// buildDomain constructs the cutsite domain from the (outlier-filtered,
// possibly grouped) condition series.  For DomainSeparate no shared domain
// exists and nil is returned; applyDomain then filters each condition
// against itself.  For DomainUniverse with active grouping, groups is the
// full group partition and only groups containing at least one universe
// locus are retained.
func buildDomain(conds []interval.Set, mode DomainMode, universe, groups interval.Set) interval.Set {
	switch mode {
	case DomainSeparate:
		return nil
	case DomainUniverse:
		if len(groups) > 0 {
			if len(universe) == 0 {
				// No supplied list: the group partition itself is the
				// exhaustive universe.
				return groups.Sorted()
			}
			return groups.Intersect(universe)
		}
		return universe.Sorted()
	case DomainUnion:
		seen := make(map[string]bool)
		var out interval.Set
		for _, c := range conds {
			for _, iv := range c {
				if iv.Score > 0 && !seen[iv.Key()] {
					seen[iv.Key()] = true
					out = append(out, iv)
				}
			}
		}
		out.Sort()
		return out
	case DomainIntersection:
		counts := make(map[string]int)
		keep := make(map[string]interval.Interval)
		for _, c := range conds {
			for _, iv := range c {
				if iv.Score > 0 {
					counts[iv.Key()]++
					keep[iv.Key()] = iv
				}
			}
		}
		var out interval.Set
		for k, n := range counts {
			if n == len(conds) {
				out = append(out, keep[k])
			}
		}
		out.Sort()
		return out
	}
	return nil
}

// applyDomain filters every condition by the domain, then drops empty
// (zero-read) loci.  For shared-domain modes the same domain set is
// intersected against every condition; for DomainSeparate each condition is
// filtered only against itself (dropping zero-read loci is the whole
// filter).  Applying the same domain twice is a no-op.
func applyDomain(conds []interval.Set, domain interval.Set) []interval.Set {
	out := make([]interval.Set, len(conds))
	for i, c := range conds {
		kept := c.Sorted()
		if domain != nil {
			kept = kept.Intersect(domain)
		}
		nonEmpty := make(interval.Set, 0, len(kept))
		for _, iv := range kept {
			if iv.Score > 0 {
				nonEmpty = append(nonEmpty, iv)
			}
		}
		out[i] = nonEmpty
	}
	return out
}
