package centrality

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/stretchr/testify/require"
)

func TestWriteTables(t *testing.T) {
	ctx := vcontext.Background()
	dir, err := ioutil.TempDir("", "gpseqc-out")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	conds, names := testConds()
	res, err := Run(ctx, conds, names, testOpts())
	require.NoError(t, err)

	combined := filepath.Join(dir, "x.combined.tsv")
	require.NoError(t, WriteCombined(ctx, combined, res.Combined))
	lines := readLines(t, combined)
	require.Equal(t, "chrom\tstart\tend\tcondition\tcount\tsum\tmean\tvariance", lines[0])
	// One row per (bin, condition).
	require.Len(t, lines, 1+2*2)
	require.True(t, strings.HasPrefix(lines[1], "chr1\t0\t500\tcond1\t"))

	estimates := filepath.Join(dir, "x.estimates.tsv")
	require.NoError(t, WriteEstimate(ctx, estimates, res.Estimate))
	lines = readLines(t, estimates)
	require.Equal(t, "chrom\tstart\tend\t"+strings.Join(MetricNames(), "\t"), lines[0])
	require.Len(t, lines, 1+2)

	prefix := filepath.Join(dir, "x")
	require.NoError(t, WriteRanks(ctx, prefix, res.Ranking))
	lines = readLines(t, prefix+".rank.prob-ratio.tsv")
	require.Equal(t, "chrom\tstart\tend\trank\tprob-ratio", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "chr1\t0\t500\t1\t"))

	rescaled := filepath.Join(dir, "x.rescaled.tsv")
	require.NoError(t, WriteRescaled(ctx, rescaled, res.Rescaled))
	lines = readLines(t, rescaled)
	require.Contains(t, lines[0], "prob-ratio\tprob-ratio_outlier")
}

func TestNaNSerialization(t *testing.T) {
	ctx := vcontext.Background()
	dir, err := ioutil.TempDir("", "gpseqc-nan")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	conds, names := testConds()
	o := testOpts()
	o.Mask = conds[0] // mask everything: all scores NaN
	res, err := Run(ctx, conds, names, o)
	require.NoError(t, err)

	path := filepath.Join(dir, "masked.tsv")
	require.NoError(t, WriteEstimate(ctx, path, res.Estimate))
	lines := readLines(t, path)
	require.Contains(t, lines[1], "NaN")
}

func readLines(t *testing.T, path string) []string {
	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
