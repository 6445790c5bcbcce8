package rankcmp

import (
	"math"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func denseRanks(n int, reverse bool) []int {
	r := make([]int, n)
	for i := range r {
		if reverse {
			r[i] = n - i
		} else {
			r[i] = i + 1
		}
	}
	return r
}

func TestDistanceSelf(t *testing.T) {
	r := denseRanks(10, false)
	expect.EQ(t, distance(r, r, KendallTau), 0.0)
	expect.EQ(t, distance(r, r, KendallTauWeighted), 0.0)
}

func TestDistanceReverseIsMax(t *testing.T) {
	a := denseRanks(10, false)
	b := denseRanks(10, true)
	expect.EQ(t, distance(a, b, KendallTau), 1.0)
	expect.EQ(t, distance(a, b, KendallTauWeighted), 1.0)
}

func TestDistanceSingleDiscordantPair(t *testing.T) {
	// rank1 = [A:1 B:2 C:3], rank2 = [A:1 C:2 B:3]: exactly one discordant
	// pair (B, C).
	a := []int{1, 2, 3}
	b := []int{1, 3, 2}
	got := distance(a, b, KendallTau)
	expect.EQ(t, math.Abs(got-1.0/3.0) < 1e-12, true)
}

func TestWeightedPenalizesTopDiscordance(t *testing.T) {
	// The same single swapped pair, at the top versus at the bottom.
	top := distance([]int{1, 2, 3, 4, 5}, []int{2, 1, 3, 4, 5}, KendallTauWeighted)
	bottom := distance([]int{1, 2, 3, 4, 5}, []int{1, 2, 3, 5, 4}, KendallTauWeighted)
	expect.EQ(t, top > bottom, true)

	// And the weighted distance exceeds the unweighted one when the
	// discordance sits near the top.
	unweighted := distance([]int{1, 2, 3, 4, 5}, []int{2, 1, 3, 4, 5}, KendallTau)
	expect.EQ(t, top > unweighted, true)
}

func TestRestrict(t *testing.T) {
	a := Ranking{"A": 1, "B": 2, "C": 3, "X": 4}
	b := Ranking{"A": 1, "C": 2, "B": 3, "Y": 4}
	ra, rb, regions, err := Restrict(a, b)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, regions)
	require.Equal(t, []int{1, 2, 3}, ra)
	require.Equal(t, []int{1, 3, 2}, rb)
}

func TestRestrictCompactsSparseRanks(t *testing.T) {
	// Restriction re-ranks densely within the intersection.
	a := Ranking{"A": 2, "B": 9, "X": 1}
	b := Ranking{"A": 40, "B": 10, "Y": 1}
	ra, rb, _, err := Restrict(a, b)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, ra)
	require.Equal(t, []int{2, 1}, rb)
}

func TestRestrictEmptyIntersection(t *testing.T) {
	_, _, _, err := Restrict(Ranking{"A": 1}, Ranking{"B": 1})
	require.Error(t, err)
}

func TestCompareIdentical(t *testing.T) {
	a := Ranking{"A": 1, "B": 2, "C": 3, "D": 4, "E": 5}
	res, err := Compare(a, a, Opts{Distance: KendallTauWeighted, Iterations: 200, Seed: 1})
	require.NoError(t, err)
	require.Equal(t, 0.0, res.Distance)
	require.Equal(t, 5, res.Regions)
	// A perfectly concordant pair sits at the bottom of the null.
	require.True(t, res.PValue < 0.05)
	require.Equal(t, 0.0, res.Percentile)
}

func TestComparePValueRange(t *testing.T) {
	a := make(Ranking)
	b := make(Ranking)
	// Two independent orderings over 60 regions.
	for i := 0; i < 60; i++ {
		key := string(rune('a'+i%26)) + string(rune('a'+i/26))
		a[key] = i + 1
		b[key] = ((i * 37) % 60) + 1
	}
	for _, d := range []Distance{KendallTau, KendallTauWeighted} {
		res, err := Compare(a, b, Opts{Distance: d, Iterations: 500, Seed: 7})
		require.NoError(t, err)
		require.True(t, res.PValue >= 0 && res.PValue <= 1)
		require.True(t, res.Percentile >= 0 && res.Percentile <= 1)
		require.True(t, res.NullMean > 0)
	}
}

func TestCompareDeterministicWithSeed(t *testing.T) {
	a := Ranking{"A": 1, "B": 2, "C": 3, "D": 4, "E": 5, "F": 6}
	b := Ranking{"A": 3, "B": 1, "C": 6, "D": 2, "E": 5, "F": 4}
	o := Opts{Distance: KendallTau, Iterations: 300, Seed: 42, Parallelism: 2}
	r1, err := Compare(a, b, o)
	require.NoError(t, err)
	r2, err := Compare(a, b, o)
	require.NoError(t, err)
	require.Equal(t, r1, r2)
}

func TestCompareDefaultIterations(t *testing.T) {
	a := Ranking{"A": 1, "B": 2, "C": 3}
	res, err := Compare(a, a, Opts{Seed: 1})
	require.NoError(t, err)
	require.Equal(t, 2000, res.Iterations)
}
