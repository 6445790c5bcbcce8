// Package rankcmp compares two centrality rankings of the same region type
// for statistical agreement: a concordance distance (Kendall tau, plain or
// top-weighted) plus an empirical significance estimate from a randomized
// null distribution.
package rankcmp

import (
	"math/rand"
	"sort"
	"time"

	"github.com/grailbio/base/traverse"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Distance selects the concordance distance family.
type Distance int

const (
	// KendallTau is the fraction of discordant pairs.
	KendallTau Distance = iota
	// KendallTauWeighted penalizes discordances near the top of the
	// ranking more heavily (additive hyperbolic position weights).
	KendallTauWeighted
)

func (d Distance) String() string {
	switch d {
	case KendallTau:
		return "kendall"
	case KendallTauWeighted:
		return "kendall-weighted"
	}
	return "invalid"
}

// ParseDistance maps a distance name to its Distance.
func ParseDistance(s string) (Distance, bool) {
	for _, d := range []Distance{KendallTau, KendallTauWeighted} {
		if d.String() == s {
			return d, true
		}
	}
	return 0, false
}

// Ranking maps region identifiers to their rank (1 = most central).  Region
// identity is whatever keying the caller established: chromosome names for
// chromosome-wide rankings, chrom:start-end keys otherwise.
type Ranking map[string]int

// Restrict reduces both rankings to their common regions and re-ranks each
// by its original order.  An empty intersection is a hard error.
func Restrict(a, b Ranking) (ra, rb []int, regions []string, err error) {
	for region := range a {
		if _, ok := b[region]; ok {
			regions = append(regions, region)
		}
	}
	if len(regions) == 0 {
		return nil, nil, nil, errors.New("rankings share no common regions")
	}
	// Deterministic region order: by rank in a.
	sort.Slice(regions, func(i, j int) bool { return a[regions[i]] < a[regions[j]] })
	ra = make([]int, len(regions))
	rb = make([]int, len(regions))
	for i, region := range regions {
		ra[i] = a[region]
		rb[i] = b[region]
	}
	// Compact to dense ranks 1..n within the restriction.
	for _, r := range [][]int{ra, rb} {
		idx := make([]int, len(r))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(i, j int) bool { return r[idx[i]] < r[idx[j]] })
		for dense, i := range idx {
			r[i] = dense + 1
		}
	}
	return ra, rb, regions, nil
}

// distance computes the concordance distance between two dense rank vectors
// over the same regions.  Both are indexed by position in the first
// ranking's order, so ra is 1..n ascending in the usual case.
func distance(ra, rb []int, d Distance) float64 {
	n := len(ra)
	if n < 2 {
		return 0
	}
	disc, total := 0.0, 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := 1.0
			if d == KendallTauWeighted {
				// Positions by the first ranking; earlier pairs weigh more.
				pi, pj := float64(ra[i]), float64(ra[j])
				w = 1/pi + 1/pj
			}
			total += w
			if (ra[i]-ra[j])*(rb[i]-rb[j]) < 0 {
				disc += w
			}
		}
	}
	return disc / total
}

// Result reports one comparison.
type Result struct {
	Regions    int
	Distance   float64
	Iterations int
	// Null distribution summary and the observed distance's position in it.
	NullMean   float64
	NullStdDev float64
	PValue     float64 // (1 + #{null <= observed}) / (1 + iterations)
	Percentile float64 // fraction of null draws below the observed distance
}

// Opts configures Compare.
type Opts struct {
	Distance    Distance
	Iterations  int // null draws; 0 means 2000
	Parallelism int // concurrent null-draw jobs; 0 means serial
	Seed        int64
}

// Compare restricts the two rankings to their common regions, computes the
// configured concordance distance, and situates it in an empirical null
// built by shuffling b against a fixed a.  Iterations are independent and
// run fork-join across Parallelism jobs.
func Compare(a, b Ranking, o Opts) (*Result, error) {
	ra, rb, regions, err := Restrict(a, b)
	if err != nil {
		return nil, err
	}
	iters := o.Iterations
	if iters <= 0 {
		iters = 2000
	}
	parallelism := o.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	if parallelism > iters {
		parallelism = iters
	}
	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	obs := distance(ra, rb, o.Distance)
	null := make([]float64, iters)
	err = traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * iters) / parallelism
		endIdx := ((jobIdx + 1) * iters) / parallelism
		rng := rand.New(rand.NewSource(seed + int64(jobIdx)))
		shuffled := make([]int, len(rb))
		copy(shuffled, rb)
		for it := startIdx; it < endIdx; it++ {
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			null[it] = distance(ra, shuffled, o.Distance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	atOrBelow, below := 0, 0
	for _, v := range null {
		if v <= obs {
			atOrBelow++
		}
		if v < obs {
			below++
		}
	}
	mean, sd := stat.MeanStdDev(null, nil)
	return &Result{
		Regions:    len(regions),
		Distance:   obs,
		Iterations: iters,
		NullMean:   mean,
		NullStdDev: sd,
		PValue:     float64(1+atOrBelow) / float64(1+iters),
		Percentile: float64(below) / float64(iters),
	}, nil
}
