package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/carbocation/bimrsid"
	"github.com/carbocation/genomisc"
)

// Prints the metadata and a sample of the rows of a variant index, then the
// first few records of a .bim looked up against it.
func main() {
	vcfPath := flag.String("vcf", "", "Filename of the reference VCF whose index should be inspected")
	idxPath := flag.String("rsi", "", "Filename of the rsi (index) file, if not next to the VCF")
	bimPath := flag.String("bim", "", "Optional .bim file whose first markers should be looked up")
	flag.Parse()

	if *vcfPath == "" && *idxPath == "" {
		flag.PrintDefaults()
		log.Fatalln("No VCF or index given")
	}

	if *idxPath == "" {
		*idxPath = bimrsid.IndexPath(*vcfPath)
	}
	*idxPath = genomisc.ExpandHome(*idxPath)

	log.Println("Opening index:", *idxPath, "with", bimrsid.WhichSQLiteDriver())
	idx, err := bimrsid.OpenVariantIndex(*idxPath)
	if err != nil {
		log.Fatalln(err)
	}
	defer idx.Close()

	log.Printf("Index Metadata: %+v\n", idx.Metadata)

	rows, err := idx.DB.Queryx("SELECT chromosome, position, rsid FROM Variant ORDER BY rowid ASC")
	if err != nil {
		log.Fatalln(err)
	}
	defer rows.Close()

	i := 0
	var row struct {
		Chromosome string  `db:"chromosome"`
		Position   int     `db:"position"`
		RSID       *string `db:"rsid"`
	}
	for rows.Next() {
		if err := rows.StructScan(&row); err != nil {
			log.Fatalln(err)
		}
		if i%30 == 0 {
			id := "."
			if row.RSID != nil {
				id = *row.RSID
			}
			fmt.Printf("%d) %s:%d %s\n", i, row.Chromosome, row.Position, id)
		}
		i++
	}
	rows.Close()

	log.Println("Saw indexes for", i, "variants")

	if *bimPath == "" {
		return
	}

	ctx := context.Background()
	mr, err := bimrsid.OpenMarkerReader(ctx, *bimPath)
	if err != nil {
		log.Fatalln(err)
	}
	defer mr.Close()

	log.Println("Marker layout:", mr.Layout())

	engine := &bimrsid.Engine{Index: idx, IncludeSexChromosomes: true}
	for i := 1; i <= 10; i++ {
		m := mr.Read()
		if m == nil {
			break
		}

		original := m.ID
		d, err := engine.UpdateRecordID(ctx, m)
		if err != nil {
			log.Fatalln(err)
		}

		log.Printf("Marker %d) %s %s:%d %s => %s (%s)\n", i, original, m.Chromosome, m.Position, m.Alleles(), m.ID, d.Outcome)
	}

	if mr.Error() != nil {
		log.Println("Marker reader error:", mr.Error())
	}
}
