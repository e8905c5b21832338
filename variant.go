package bimrsid

import "strings"

// ReferenceIDPrefix is the prefix carried by dbSNP reference identifiers.
const ReferenceIDPrefix = "rs"

// VariantRecord is one reference variant returned by an index query.
// Position is the 1-based VCF POS. Alleles holds REF followed by every ALT.
type VariantRecord struct {
	Chromosome string
	ID         string
	Position   int
	Alleles    []string
	Symbolic   bool
}

func NewVariantRecord(chromosome, id string, position int, alleles []string) VariantRecord {
	v := VariantRecord{
		Chromosome: chromosome,
		ID:         id,
		Position:   position,
		Alleles:    alleles,
	}
	for _, a := range alleles {
		if IsSymbolicAllele(a) {
			v.Symbolic = true
			break
		}
	}

	return v
}

// IsSymbolicAllele reports whether a VCF allele is something other than a
// literal base sequence: <DEL>-style symbols, breakends, or the spanning
// deletion '*'.
func IsSymbolicAllele(allele string) bool {
	return allele == "*" || strings.ContainsAny(allele, "<>[]")
}

// HasReferenceID reports whether the variant carries an rsID that can replace
// a marker identifier.
func (v VariantRecord) HasReferenceID() bool {
	return strings.HasPrefix(v.ID, ReferenceIDPrefix)
}

func (v VariantRecord) AlleleSet() AlleleSet {
	return NewAlleleSet(v.Alleles...)
}
