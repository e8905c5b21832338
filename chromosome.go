package bimrsid

import "strings"

// PlinkChromosome takes a PLINK chromosome code and returns the name a
// reference VCF uses for it. PLINK numbers the sex chromosomes, the
// pseudo-autosomal region and mitochondria; everything else is unchanged.
func PlinkChromosome(chr string) string {
	chromosome := chr
	switch chr {
	case "23":
		chromosome = "X"
	case "24":
		chromosome = "Y"
	case "25", "XY":
		// Pseudo-autosomal markers live on X in reference VCFs.
		chromosome = "X"
	case "26", "M":
		chromosome = "MT"
	}

	return chromosome
}

// IsSexChromosome reports whether chr names X, Y or the pseudo-autosomal
// region, in either PLINK numeric or named form, with or without "chr".
func IsSexChromosome(chr string) bool {
	switch strings.ToUpper(strings.TrimPrefix(chr, "chr")) {
	case "X", "Y", "XY", "23", "24", "25":
		return true
	}

	return false
}
