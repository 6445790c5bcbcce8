package rankcmp

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"

	"github.com/gpseq/gpseqc/interval"
)

// RegionKind states what a ranked region is; both inputs to a comparison
// must use the same kind.
type RegionKind int

const (
	// RegionChrom: chromosome-wide regions, identified by chromosome name.
	RegionChrom RegionKind = iota
	// RegionInterval: sub-chromosome regions, identified by
	// chrom:start-end, optionally translated through an auxiliary interval
	// definition shared by both inputs.
	RegionInterval
)

// ReadRanking loads a rank table: a delimited file with a header row
// containing chrom (plus start/end for RegionInterval) and, when present, a
// "rank" column.  Without a rank column, row order is the rank order.  aux,
// when non-nil, is the shared region definition for RegionInterval inputs:
// each row is mapped to the aux region it overlaps, which establishes region
// identity across independently produced rankings.
func ReadRanking(ctx context.Context, path string, delim rune, kind RegionKind, aux interval.Set) (r Ranking, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return nil, errors.Wrapf(err, "ranking %s", path)
	}
	defer file.CloseAndReport(ctx, in, &err)

	var auxSorted interval.Set
	if kind == RegionInterval && aux != nil {
		auxSorted = aux.Sorted()
	}

	scanner := bufio.NewScanner(in.Reader(ctx))
	sep := string(delim)
	var chromCol, startCol, endCol, rankCol int
	rankCol = -1
	header := true
	lineno := 0
	r = make(Ranking)
	nextRank := 1
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, sep)
		if !header {
			for _, col := range []int{chromCol, startCol, endCol, rankCol} {
				if col >= len(fields) {
					return nil, errors.Errorf("ranking %s: line %d: expected %d columns, got %d", path, lineno, col+1, len(fields))
				}
			}
		}
		if header {
			header = false
			chromCol, startCol, endCol = -1, -1, -1
			for i, name := range fields {
				switch strings.ToLower(name) {
				case "chrom", "chr":
					chromCol = i
				case "start":
					startCol = i
				case "end":
					endCol = i
				case "rank":
					rankCol = i
				}
			}
			if chromCol < 0 {
				return nil, errors.Errorf("ranking %s: no chrom column in header", path)
			}
			if kind == RegionInterval && (startCol < 0 || endCol < 0) {
				return nil, errors.Errorf("ranking %s: interval regions need start/end columns", path)
			}
			continue
		}
		region := fields[chromCol]
		if kind == RegionInterval {
			start, serr := strconv.Atoi(fields[startCol])
			if serr != nil {
				return nil, errors.Wrapf(serr, "ranking %s: line %d: start", path, lineno)
			}
			end, eerr := strconv.Atoi(fields[endCol])
			if eerr != nil {
				return nil, errors.Wrapf(eerr, "ranking %s: line %d: end", path, lineno)
			}
			iv := interval.Interval{Chrom: region, Start: start, End: end}
			if auxSorted != nil {
				hits := interval.Set{iv}.Intersect(auxSorted)
				if len(hits) == 0 {
					continue // row outside the shared region definition
				}
				iv = matchAux(iv, auxSorted)
			}
			region = iv.Key()
		}
		rank := nextRank
		if rankCol >= 0 {
			if rank, err = strconv.Atoi(fields[rankCol]); err != nil {
				return nil, errors.Wrapf(err, "ranking %s: line %d: rank", path, lineno)
			}
		}
		if rank <= 0 {
			continue // unranked (no-data) rows do not compete
		}
		if _, dup := r[region]; dup {
			return nil, errors.Errorf("ranking %s: line %d: duplicate region %s", path, lineno, region)
		}
		r[region] = rank
		nextRank++
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "ranking %s", path)
	}
	if len(r) == 0 {
		return nil, errors.Errorf("ranking %s: no ranked regions", path)
	}
	return r, nil
}

// matchAux returns the aux region that iv overlaps, picking the largest
// overlap when iv straddles aux regions.
func matchAux(iv interval.Interval, aux interval.Set) interval.Interval {
	best := iv
	bestOverlap := 0
	for _, a := range aux {
		if !interval.Overlaps(a, iv) {
			continue
		}
		lo, hi := a.Start, a.End
		if iv.Start > lo {
			lo = iv.Start
		}
		if iv.End < hi {
			hi = iv.End
		}
		if hi-lo > bestOverlap {
			bestOverlap = hi - lo
			best = a
		}
	}
	return best
}
