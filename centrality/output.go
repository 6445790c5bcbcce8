package centrality

import (
	"context"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"

	"github.com/gpseq/gpseqc/interval"
)

// Score columns serialize NaN ("no data") as a literal NaN token.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeBinKey(w *tsv.Writer, bin interval.Interval) {
	w.WriteString(bin.Chrom)
	w.WriteString(strconv.Itoa(bin.Start))
	w.WriteString(strconv.Itoa(bin.End))
}

func withTSV(ctx context.Context, path string, fn func(w *tsv.Writer) error) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return errors.Wrapf(err, "tsv %s", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := tsv.NewWriter(out.Writer(ctx))
	if err = fn(w); err != nil {
		return err
	}
	return w.Flush()
}

// WriteCombined writes the combined statistics table: one row per
// (bin, condition), keyed by chrom/start/end plus the condition name.
func WriteCombined(ctx context.Context, path string, t *CombinedTable) error {
	return withTSV(ctx, path, func(w *tsv.Writer) error {
		for _, col := range []string{"chrom", "start", "end", "condition", "count", "sum", "mean", "variance"} {
			w.WriteString(col)
		}
		if err := w.EndLine(); err != nil {
			return err
		}
		for bi, bin := range t.Bins {
			for ci, name := range t.CondNames {
				bs := t.Stats[bi][ci]
				writeBinKey(w, bin)
				w.WriteString(name)
				w.WriteString(strconv.Itoa(bs.Count))
				w.WriteString(formatScore(bs.Sum))
				w.WriteString(formatScore(bs.Mean))
				w.WriteString(formatScore(bs.Variance))
				if err := w.EndLine(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// WriteEstimate writes the centrality estimates: one row per bin, one score
// column per metric.
func WriteEstimate(ctx context.Context, path string, est *Estimate) error {
	return withTSV(ctx, path, func(w *tsv.Writer) error {
		w.WriteString("chrom")
		w.WriteString("start")
		w.WriteString("end")
		for _, m := range est.Metrics {
			w.WriteString(m.Name())
		}
		if err := w.EndLine(); err != nil {
			return err
		}
		for bi, bin := range est.Table.Bins {
			writeBinKey(w, bin)
			for mi := range est.Metrics {
				w.WriteString(formatScore(est.Scores[bi][mi]))
			}
			if err := w.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteRanks writes one table per metric: bins in rank order with an
// explicit rank column (0 = unranked, i.e. no data).  Paths derive from
// prefix as <prefix>.rank.<metric>.tsv.
func WriteRanks(ctx context.Context, prefix string, r *Ranking) error {
	for mi, m := range r.Est.Metrics {
		path := prefix + ".rank." + m.Name() + ".tsv"
		err := withTSV(ctx, path, func(w *tsv.Writer) error {
			for _, col := range []string{"chrom", "start", "end", "rank", m.Name()} {
				w.WriteString(col)
			}
			if err := w.EndLine(); err != nil {
				return err
			}
			for _, bi := range r.Order[mi] {
				writeBinKey(w, r.Est.Table.Bins[bi])
				w.WriteString(strconv.Itoa(r.Ranks[bi][mi]))
				w.WriteString(formatScore(r.Est.Scores[bi][mi]))
				if err := w.EndLine(); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteRescaled writes the rescaled estimates with per-metric outlier
// annotation columns.
func WriteRescaled(ctx context.Context, path string, rs *Rescaled) error {
	return withTSV(ctx, path, func(w *tsv.Writer) error {
		w.WriteString("chrom")
		w.WriteString("start")
		w.WriteString("end")
		for _, m := range rs.Est.Metrics {
			w.WriteString(m.Name())
			w.WriteString(m.Name() + "_outlier")
		}
		if err := w.EndLine(); err != nil {
			return err
		}
		for bi, bin := range rs.Est.Table.Bins {
			writeBinKey(w, bin)
			for mi := range rs.Est.Metrics {
				w.WriteString(formatScore(rs.Scores[bi][mi]))
				if rs.Outlier[bi][mi] {
					w.WriteString("1")
				} else {
					w.WriteString("0")
				}
			}
			if err := w.EndLine(); err != nil {
				return err
			}
		}
		return nil
	})
}
