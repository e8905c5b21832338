package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/briandowns/spinner"
	"github.com/carbocation/bimrsid"
	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

var (
	app     = kingpin.New("bimrsid", "replace PLINK .bim marker identifiers with rsIDs from a reference VCF")
	cfgPath = app.Flag("config", "YAML file with default settings; BIMRSID_* environment variables override it").Short('c').String()
	verbose = app.Flag("verbose", "log at debug level").Short('v').Bool()

	update      = app.Command("update", "write an updated .bim and copy the .bed and .fam alongside it")
	bedIn       = update.Arg("bed-in", "input .bed").String()
	bimIn       = update.Arg("bim-in", "input .bim").String()
	famIn       = update.Arg("fam-in", "input .fam").String()
	vcfIn       = update.Arg("vcf-in", "reference VCF whose index supplies rsIDs").String()
	bedOut      = update.Arg("bed-out", "output .bed").String()
	bimOut      = update.Arg("bim-out", "output .bim").String()
	famOut      = update.Arg("fam-out", "output .fam").String()
	indexPath   = update.Flag("index", "variant index, defaults to the VCF path plus "+bimrsid.IndexExtension).Short('i').String()
	buildIndex  = update.Flag("build-index", "build the variant index first if it does not exist").Bool()
	workers     = update.Flag("workers", "concurrent index lookups").Short('w').Int()
	reportPath  = update.Flag("report", "write an Arrow IPC report with one row per marker").Short('r').String()
	excludeSex  = update.Flag("exclude-sex-chromosomes", "skip index lookups for X, Y and XY markers").Bool()
	plinkCodes  = update.Flag("plink-codes", "translate PLINK chromosome codes 23-26 before querying the index").Bool()
	checkTrio   = update.Flag("check-trio", "verify the .bed size against the .bim and .fam before writing").Bool()
	index       = app.Command("index", "build the variant index for a reference VCF")
	indexVCF    = index.Arg("vcf", "reference VCF, plain, gzip, BGZF or Zstd, local or gs://").Required().String()
	indexOut    = index.Flag("out", "index path, defaults to the VCF path plus "+bimrsid.IndexExtension).Short('o').String()
	manifest    = app.Command("manifest", "check that a file is an Illumina BPM manifest")
	manifestBPM = manifest.Arg("bpm", "manifest file").Required().ExistingFile()
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func main() {
	app.UsageTemplate(kingpin.CompactUsageTemplate).Version("1.0.0")
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch command {
	case update.FullCommand():
		RunUpdate(ctx)
	case index.FullCommand():
		RunIndex(ctx)
	case manifest.FullCommand():
		RunManifest()
	}
}

func RunUpdate(ctx context.Context) {
	cfg, err := bimrsid.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalln(err)
	}

	// Flags override the config file and the environment
	for _, o := range []struct {
		dst *string
		src string
	}{
		{&cfg.BedIn, *bedIn},
		{&cfg.BimIn, *bimIn},
		{&cfg.FamIn, *famIn},
		{&cfg.VCF, *vcfIn},
		{&cfg.BedOut, *bedOut},
		{&cfg.BimOut, *bimOut},
		{&cfg.FamOut, *famOut},
		{&cfg.IndexPath, *indexPath},
		{&cfg.ReportPath, *reportPath},
	} {
		if o.src != "" {
			*o.dst = o.src
		}
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *buildIndex {
		cfg.BuildIndex = true
	}
	if *excludeSex {
		cfg.IncludeSexChromosomes = false
	}
	if *plinkCodes {
		cfg.PlinkChromosomeCodes = true
	}
	if *checkTrio {
		cfg.CheckTrio = true
	}

	if err := cfg.Validate(); err != nil {
		kingpin.FatalUsage("%s", err)
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Prefix = "updating marker identifiers   "
	if !*verbose {
		s.Start()
	}

	started := time.Now()
	stats, err := bimrsid.Update(ctx, cfg)
	s.Stop()
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Printf("\n%s markers in %s\n", cyan(stats.Records), time.Since(started).Round(time.Millisecond))
	fmt.Printf("  %s matched, %s of them on the opposite strand\n", green(stats.Matched+stats.ComplementMatched), green(stats.ComplementMatched))
	fmt.Printf("  %s rsIDs extracted from the marker name only\n", green(stats.Extracted))
	fmt.Printf("  %s unchanged, %s skipped, %s with problems\n", yellow(stats.Unchanged), yellow(stats.Skipped), yellow(stats.Problems))
	if stats.Palindromic > 0 {
		fmt.Printf("  %s palindromic matches (strand cannot be confirmed)\n", yellow(stats.Palindromic))
	}
	fmt.Printf("\nbim output at: %s\n\n", cyan(cfg.BimOut))
}

func RunIndex(ctx context.Context) {
	out := *indexOut
	if out == "" {
		out = bimrsid.IndexPath(*indexVCF)
	}

	var bar *pb.ProgressBar
	opts := bimrsid.IndexOptions{
		Tap: func(raw io.Reader, size int64) io.Reader {
			bar = pb.Full.New(0).SetTotal(size).Set(pb.Bytes, true).SetWriter(os.Stderr).Start()
			return bar.NewProxyReader(raw)
		},
	}

	meta, err := bimrsid.BuildVariantIndex(ctx, *indexVCF, out, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Printf("\nindexed %s variants from %s\n", cyan(meta.NVariants), meta.Filename)
	fmt.Printf("index output at: %s\n\n", cyan(out))
}

func RunManifest() {
	m, err := bimrsid.ReadManifestHeader(*manifestBPM)
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Printf("%s is a BPM manifest, version %d, format %d\n", cyan(m.FilePath), m.Version, m.FormatVersion)
}
