package main

import (
	"context"
	"flag"
	"log"
	"runtime"
	"sync"

	"github.com/carbocation/bimrsid"
	"github.com/carbocation/genomisc"
)

// Looks up every marker of a .bim on all CPUs and tallies the outcomes per
// chromosome, without writing anything.
func main() {
	bimPath := flag.String("bim", "", "Filename of the .bim file to process")
	vcfPath := flag.String("vcf", "", "Filename of the reference VCF")
	idxPath := flag.String("rsi", "", "Filename of the rsi (index) file, if not next to the VCF")
	flag.Parse()

	if *bimPath == "" || (*vcfPath == "" && *idxPath == "") {
		flag.PrintDefaults()
		log.Fatalln("A .bim and a VCF or index are required")
	}

	if *idxPath == "" {
		*idxPath = bimrsid.IndexPath(*vcfPath)
	}
	*idxPath = genomisc.ExpandHome(*idxPath)

	// The index is safe for concurrent lookups, so the workers share it
	idx, err := bimrsid.OpenVariantIndex(*idxPath)
	if err != nil {
		log.Fatalln(err)
	}
	defer idx.Close()
	log.Printf("Index Metadata: %+v\n", idx.Metadata)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prep the readers
	markers := make(chan *bimrsid.MarkerRecord)
	output := make(chan OutcomeCounter)
	confirmDone := make(chan struct{})

	go func() {
		accumulator := OutcomeCounter{}
		for o := range output {
			accumulator.Merge(o)
		}
		log.Println("Final accumulated stats")
		for chr, counts := range accumulator {
			log.Printf("%s: %+v\n", chr, counts)
		}
		close(confirmDone)
	}()

	// Prep the Workers:
	log.Println("Launching", runtime.NumCPU(), "workers")
	var wg sync.WaitGroup
	for i := 0; i < runtime.NumCPU(); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			Worker(ctx, workerID, idx, markers, output)
		}(i)
	}

	mr, err := bimrsid.OpenMarkerReader(ctx, *bimPath)
	if err != nil {
		log.Fatalln(err)
	}
	defer mr.Close()

	i := 0
	for m := mr.Read(); m != nil; m = mr.Read() {
		if i%100000 == 0 {
			log.Println("Processed", i, "markers")
		}
		markers <- m
		i++
	}
	close(markers)
	if err := mr.Error(); err != nil {
		log.Fatalln(err)
	}

	wg.Wait()
	close(output)
	<-confirmDone
}

// OutcomeCounter tallies outcomes by chromosome.
type OutcomeCounter map[string]map[bimrsid.Outcome]int

func (c OutcomeCounter) Add(chromosome string, outcome bimrsid.Outcome) {
	if c[chromosome] == nil {
		c[chromosome] = make(map[bimrsid.Outcome]int)
	}
	c[chromosome][outcome]++
}

func (c OutcomeCounter) Merge(other OutcomeCounter) {
	for chr, counts := range other {
		for outcome, n := range counts {
			if c[chr] == nil {
				c[chr] = make(map[bimrsid.Outcome]int)
			}
			c[chr][outcome] += n
		}
	}
}

// Each worker keeps its own tally and reports it once the incoming channel is
// closed
func Worker(ctx context.Context, workerID int, idx *bimrsid.VariantIndex, markers <-chan *bimrsid.MarkerRecord, output chan<- OutcomeCounter) {
	engine := &bimrsid.Engine{Index: idx, IncludeSexChromosomes: true}
	counts := OutcomeCounter{}

	for m := range markers {
		d, err := engine.UpdateRecordID(ctx, m)
		if err != nil {
			log.Fatalf("Worker %d: %v\n", workerID, err)
		}
		counts.Add(m.Chromosome, d.Outcome)
	}

	output <- counts
}
