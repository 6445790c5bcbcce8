package main

/*
gpseqc-estimate estimates the 3D nuclear centrality of genomic regions from a
series of GPSeq-style restriction-digest BED files, ordered by increasing
digestion intensity.  It writes per-bin statistics, centrality estimates per
metric, rank tables and outlier-rescaled scores as TSV.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/gpseq/gpseqc/centrality"
	"github.com/gpseq/gpseqc/interval"
)

var (
	outPrefix      = flag.String("out", "gpseqc", "Output path prefix")
	chromSizes     = flag.String("chrom-sizes", "", "Two-column chromosome size table; inferred from the inputs when omitted")
	binSize        = flag.Int("bin-size", centrality.DefaultOpts.BinSize, "Sliding bin width; 0 = one whole-chromosome bin per chromosome")
	binStep        = flag.Int("bin-step", centrality.DefaultOpts.BinStep, "Sliding bin step; must not exceed -bin-size")
	binBed         = flag.String("bins", "", "Custom bin BED; overrides -bin-size/-bin-step")
	groupSize      = flag.Int("group-size", 0, "Coarsen cutsites into disjoint groups of this width; 0 disables")
	domainMode     = flag.Int("domain", int(centrality.DefaultOpts.Domain), "Cutsite domain mode: 1=universe 2=union 3=separate 4=intersection")
	universeBed    = flag.String("universe", "", "Exhaustive cutsite BED, required for -domain 1 unless grouping is active")
	normalize      = flag.Bool("normalize", false, "Normalize against the last condition (consumed; needs >= 3 conditions)")
	removeAll      = flag.Bool("remove-outliers", false, "Remove each condition's own read-count outliers")
	removeCommon   = flag.Bool("remove-common-outliers", false, "Remove only loci flagged as outliers in every condition")
	outlierMethod  = flag.String("outlier-method", centrality.DefaultOpts.OutlierMethod.String(), "Outlier statistic: z, t, chi2, iqr, mad")
	outlierAlpha   = flag.Float64("outlier-alpha", centrality.DefaultOpts.OutlierAlpha, "Significance level for z/t/chi2/mad outlier flagging")
	outlierLim     = flag.Float64("outlier-lim", centrality.DefaultOpts.OutlierLim, "IQR fence multiplier")
	rescaleMethod  = flag.String("rescale-method", centrality.DefaultOpts.RescaleMethod.String(), "Outlier statistic for score rescaling")
	rescaleAlpha   = flag.Float64("rescale-alpha", centrality.DefaultOpts.RescaleAlpha, "Significance level for score rescaling")
	rescaleLim     = flag.Float64("rescale-lim", centrality.DefaultOpts.RescaleLim, "IQR fence multiplier for score rescaling")
	includeMetrics = flag.String("metrics", "", "Comma-separated metrics to compute (default all); mutually exclusive with -exclude-metrics")
	excludeMetrics = flag.String("exclude-metrics", "", "Comma-separated metrics to skip")
	maskBed        = flag.String("mask", "", "BED of regions whose bins are masked (scores blanked) before ranking")
	parallelism    = flag.Int("parallelism", 0, "Maximum number of simultaneous workers; 0 = runtime.NumCPU()")
	scratchDir     = flag.String("scratch-dir", "", "Parent directory for the per-run scratch directory (default os.TempDir())")
	keep           = flag.Bool("keep-intermediates", false, "Also write bin/group/domain interval sets next to the outputs")
)

func usage() {
	fmt.Printf("Usage: %s [OPTIONS] condition1.bed condition2.bed [condition3.bed ...]\n", os.Args[0])
	fmt.Printf("Conditions must be ordered by increasing restriction intensity.\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	paths := flag.Args()
	if len(paths) < 2 {
		log.Fatalf("At least 2 condition BEDs required, got %d; see -help", len(paths))
	}
	ctx := vcontext.Background()

	method, ok := centrality.ParseOutlierMethod(*outlierMethod)
	if !ok {
		log.Fatalf("Unknown outlier method %q", *outlierMethod)
	}
	rsMethod, ok := centrality.ParseOutlierMethod(*rescaleMethod)
	if !ok {
		log.Fatalf("Unknown rescale method %q", *rescaleMethod)
	}

	opts := centrality.Opts{
		BinSize:              *binSize,
		BinStep:              *binStep,
		GroupSize:            *groupSize,
		Domain:               centrality.DomainMode(*domainMode),
		Normalize:            *normalize,
		RemoveAllOutliers:    *removeAll,
		RemoveCommonOutliers: *removeCommon,
		OutlierMethod:        method,
		OutlierAlpha:         *outlierAlpha,
		OutlierLim:           *outlierLim,
		RescaleMethod:        rsMethod,
		RescaleAlpha:         *rescaleAlpha,
		RescaleLim:           *rescaleLim,
		IncludeMetrics:       splitList(*includeMetrics),
		ExcludeMetrics:       splitList(*excludeMetrics),
		Parallelism:          *parallelism,
		ScratchDir:           *scratchDir,
	}
	var err error
	if *binBed != "" {
		if opts.Bins, err = interval.ReadBED(ctx, *binBed); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if *universeBed != "" {
		if opts.Universe, err = interval.ReadBED(ctx, *universeBed); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if *maskBed != "" {
		if opts.Mask, err = interval.ReadBED(ctx, *maskBed); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if *chromSizes != "" {
		if opts.ChromSizes, err = interval.ReadChromSizes(ctx, *chromSizes); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if err = opts.Validate(len(paths)); err != nil {
		log.Fatalf("Configuration: %v", err)
	}

	conds := make([]interval.Set, len(paths))
	names := make([]string, len(paths))
	for i, path := range paths {
		if conds[i], err = interval.ReadBED(ctx, path); err != nil {
			log.Fatalf("%v", err)
		}
		names[i] = path
		log.Printf("condition %d: %s (%d loci, %.0f reads)", i+1, path, len(conds[i]), conds[i].TotalScore())
	}

	res, err := centrality.Run(ctx, conds, names, opts)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err = centrality.WriteCombined(ctx, *outPrefix+".combined.tsv", res.Combined); err != nil {
		log.Fatalf("%v", err)
	}
	if err = centrality.WriteEstimate(ctx, *outPrefix+".estimates.tsv", res.Estimate); err != nil {
		log.Fatalf("%v", err)
	}
	if err = centrality.WriteRanks(ctx, *outPrefix, res.Ranking); err != nil {
		log.Fatalf("%v", err)
	}
	if err = centrality.WriteRescaled(ctx, *outPrefix+".rescaled.tsv", res.Rescaled); err != nil {
		log.Fatalf("%v", err)
	}
	if *keep {
		if err = interval.WriteBED(ctx, *outPrefix+".bins.bed", res.Combined.Bins); err != nil {
			log.Fatalf("%v", err)
		}
		if res.Groups != nil {
			if err = interval.WriteBED(ctx, *outPrefix+".groups.bed", res.Groups); err != nil {
				log.Fatalf("%v", err)
			}
		}
		if res.Domain != nil {
			if err = interval.WriteBED(ctx, *outPrefix+".domain.bed", res.Domain); err != nil {
				log.Fatalf("%v", err)
			}
		}
	}
	log.Printf("done: %d bins, %d metrics", len(res.Combined.Bins), len(res.Estimate.Metrics))
}
