package interval

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// ReadBED parses a BED-style file into a Set.  The first three columns are
// chrom/start/end; the score is taken from column 5 when present, else from
// column 4 when it parses as a number, else 0.  Lines starting with '#',
// "track" or "browser" are skipped.  Gzip-compressed paths are handled
// transparently.
func ReadBED(ctx context.Context, path string) (set Set, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.Wrapf(err, "bed %s", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	reader := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		if reader, err = gzip.NewReader(reader); err != nil {
			return nil, errors.Wrapf(err, "bed %s", path)
		}
	}
	if set, err = parseBED(reader); err != nil {
		return nil, errors.Wrapf(err, "bed %s", path)
	}
	if len(set) == 0 {
		return nil, errors.Errorf("bed %s: no intervals", path)
	}
	return set, nil
}

func parseBED(r io.Reader) (Set, error) {
	var set Set
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || line[0] == '#' ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, errors.Errorf("line %d: expected at least 3 columns, got %d", lineno, len(fields))
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: start", lineno)
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: end", lineno)
		}
		if end < start {
			return nil, errors.Errorf("line %d: end %d < start %d", lineno, end, start)
		}
		score := 0.0
		if len(fields) >= 5 {
			if score, err = strconv.ParseFloat(fields[4], 64); err != nil {
				return nil, errors.Wrapf(err, "line %d: score", lineno)
			}
		} else if len(fields) == 4 {
			// 4-column BEDs in the wild put either a name or a count here.
			if v, err := strconv.ParseFloat(fields[3], 64); err == nil {
				score = v
			}
		}
		set = append(set, Interval{Chrom: fields[0], Start: start, End: end, Score: score})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	set.Sort()
	return set, nil
}

// WriteBED writes s as a 5-column BED (chrom, start, end, name ".", score).
func WriteBED(ctx context.Context, path string, s Set) (err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return errors.Wrapf(err, "bed %s", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := bufio.NewWriter(out.Writer(ctx))
	for _, iv := range s {
		if _, err = w.WriteString(iv.Chrom + "\t" + strconv.Itoa(iv.Start) + "\t" +
			strconv.Itoa(iv.End) + "\t.\t" +
			strconv.FormatFloat(iv.Score, 'g', -1, 64) + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadChromSizes parses a two-column (name, length) table, the standard
// "chrom.sizes" format.
func ReadChromSizes(ctx context.Context, path string) (sizes []ChromSize, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.Wrapf(err, "chrom sizes %s", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	scanner := bufio.NewScanner(in.Reader(ctx))
	lineno := 0
	for scanner.Scan() {
		lineno++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, errors.Errorf("chrom sizes %s: line %d: expected 2 columns", path, lineno)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrapf(err, "chrom sizes %s: line %d", path, lineno)
		}
		sizes = append(sizes, ChromSize{Name: fields[0], Size: n})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "chrom sizes %s", path)
	}
	if len(sizes) == 0 {
		return nil, errors.Errorf("chrom sizes %s: empty", path)
	}
	return sizes, nil
}
