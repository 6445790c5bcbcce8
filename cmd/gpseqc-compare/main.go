package main

/*
gpseqc-compare measures the agreement of two independently produced
centrality rank tables: a Kendall tau concordance distance (plain or
top-weighted) and an empirical p-value from a shuffled null distribution.
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/gpseq/gpseqc/interval"
	"github.com/gpseq/gpseqc/rankcmp"
)

var (
	regionType  = flag.String("region-type", "interval", "Region identity: 'chrom' (chromosome-wide) or 'interval'")
	auxBed      = flag.String("regions", "", "Auxiliary BED establishing region identity across the two inputs (interval regions only)")
	distName    = flag.String("distance", rankcmp.KendallTauWeighted.String(), "Distance: kendall or kendall-weighted")
	iterations  = flag.Int("iterations", 2000, "Null-distribution draws")
	parallelism = flag.Int("parallelism", 0, "Maximum number of simultaneous workers; 0 = 1")
	seed        = flag.Int64("seed", 0, "Seed for the shuffled null; 0 = time-based")
	delim       = flag.String("delim", "\t", "Input field delimiter")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] rank1.tsv rank2.tsv\n", os.Args[0])
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 2 {
		log.Fatalf("Exactly 2 rank tables required, got %d; see -help", flag.NArg())
	}
	ctx := vcontext.Background()

	dist, ok := rankcmp.ParseDistance(*distName)
	if !ok {
		log.Fatalf("Unknown distance %q", *distName)
	}
	var kind rankcmp.RegionKind
	switch *regionType {
	case "chrom":
		kind = rankcmp.RegionChrom
	case "interval":
		kind = rankcmp.RegionInterval
	default:
		log.Fatalf("Unknown region type %q", *regionType)
	}
	if len(*delim) != 1 {
		log.Fatalf("Delimiter must be a single character, got %q", *delim)
	}

	var aux interval.Set
	var err error
	if *auxBed != "" {
		if kind != rankcmp.RegionInterval {
			log.Fatalf("-regions only applies to interval region type")
		}
		if aux, err = interval.ReadBED(ctx, *auxBed); err != nil {
			log.Fatalf("%v", err)
		}
	}

	var ranks [2]rankcmp.Ranking
	for i, path := range flag.Args() {
		if ranks[i], err = rankcmp.ReadRanking(ctx, path, rune((*delim)[0]), kind, aux); err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("ranking %d: %s (%d regions)", i+1, path, len(ranks[i]))
	}

	res, err := rankcmp.Compare(ranks[0], ranks[1], rankcmp.Opts{
		Distance:    dist,
		Iterations:  *iterations,
		Parallelism: *parallelism,
		Seed:        *seed,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("regions\t%d\n", res.Regions)
	fmt.Printf("distance\t%g\n", res.Distance)
	fmt.Printf("null_mean\t%g\n", res.NullMean)
	fmt.Printf("null_sd\t%g\n", res.NullStdDev)
	fmt.Printf("p_value\t%g\n", res.PValue)
	fmt.Printf("percentile\t%g\n", res.Percentile)
	fmt.Printf("iterations\t%d\n", res.Iterations)
}
