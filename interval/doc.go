// Package interval provides the genomic interval-set primitives used by the
// centrality pipeline: half-open (chrom, start, end) intervals carrying a
// read-count score, plus the small algebra the pipeline depends on (sorting,
// overlap intersection/subtraction, sliding-window generation, chromosome
// size discovery) and BED / chrom-sizes file IO.
package interval
