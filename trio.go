package bimrsid

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/carbocation/genomisc"
	"github.com/carbocation/pfx"
)

// BEDMagicNumber opens every SNP-major PLINK .bed file.
var BEDMagicNumber = []byte{0x6c, 0x1b, 0x01}

// FAM columns
const (
	famFamilyID = iota
	famSampleID
	famPaternalID
	famMaternalID
	famSex
	famPhenotype
)

type Sample struct {
	FamilyID string
	SampleID string
}

// ReadSamples reads the individuals of a PLINK .fam file in file order.
func ReadSamples(ctx context.Context, path string) ([]Sample, error) {
	in, err := openInput(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	var samples []Sample
	scanner := bufio.NewScanner(in)
	line := 0
	for scanner.Scan() {
		line++
		cols := strings.Fields(scanner.Text())
		if len(cols) != famPhenotype+1 {
			return nil, fmt.Errorf("%w: %s line %d has %d fields, expected %d", ErrTrioMismatch, path, line, len(cols), famPhenotype+1)
		}

		// Copy the fields into their own strings so that the scanner buffer
		// is not retained
		samples = append(samples, Sample{
			FamilyID: strings.Clone(cols[famFamilyID]),
			SampleID: strings.Clone(cols[famSampleID]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return samples, nil
}

// ExpectedBEDSize is the size of a SNP-major .bed file holding nMarkers rows
// of nSamples 2-bit genotypes, each row padded to a whole byte.
func ExpectedBEDSize(nMarkers, nSamples int) int64 {
	bytesPerMarker := int64((nSamples + 3) / 4)
	return int64(len(BEDMagicNumber)) + int64(nMarkers)*bytesPerMarker
}

// CheckTrio verifies that a local .bed file is SNP-major and sized for
// nMarkers markers and nSamples samples.
func CheckTrio(bedPath string, nMarkers, nSamples int) error {
	bedPath = genomisc.ExpandHome(bedPath)

	f, err := os.Open(bedPath)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	head := make([]byte, len(BEDMagicNumber))
	if _, err := f.ReadAt(head, 0); err != nil {
		return fmt.Errorf("%w: %s: reading header: %v", ErrTrioMismatch, bedPath, err)
	}
	if !bytes.Equal(head, BEDMagicNumber) {
		return fmt.Errorf("%w: %s: header %v is not the SNP-major magic number %v", ErrTrioMismatch, bedPath, head, BEDMagicNumber)
	}

	info, err := f.Stat()
	if err != nil {
		return pfx.Err(err)
	}

	if want := ExpectedBEDSize(nMarkers, nSamples); info.Size() != want {
		return fmt.Errorf("%w: %s is %d bytes, expected %d for %d markers and %d samples", ErrTrioMismatch, bedPath, info.Size(), want, nMarkers, nSamples)
	}

	return nil
}
