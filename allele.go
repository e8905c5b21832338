package bimrsid

import (
	"strings"

	"golang.org/x/exp/slices"
)

var complement [256]byte

func init() {
	complement['A'] = 'T'
	complement['C'] = 'G'
	complement['G'] = 'C'
	complement['T'] = 'A'
}

// AlleleSet is an unordered multiset of alleles. Alleles are upper-cased and
// held in sorted order, so two sets built from the same alleles in any order
// compare equal.
type AlleleSet struct {
	alleles []string
}

func NewAlleleSet(alleles ...string) AlleleSet {
	s := AlleleSet{alleles: make([]string, len(alleles))}
	for i, a := range alleles {
		s.alleles[i] = strings.ToUpper(a)
	}
	slices.Sort(s.alleles)

	return s
}

// Complement returns the base-paired set (A<->T, C<->G). Bytes outside the
// nucleotide alphabet, such as the missing allele, are kept as they are.
func (s AlleleSet) Complement() AlleleSet {
	out := make([]string, len(s.alleles))
	for i, a := range s.alleles {
		out[i] = complementAllele(a)
	}

	return NewAlleleSet(out...)
}

func complementAllele(allele string) string {
	b := []byte(allele)
	for i, c := range b {
		if comp := complement[c]; comp != 0 {
			b[i] = comp
		}
	}

	return string(b)
}

func (s AlleleSet) Equal(other AlleleSet) bool {
	return slices.Equal(s.alleles, other.alleles)
}

// IsPalindromic reports whether the set equals its own complement (A/T or
// C/G). Strand cannot be inferred for such sets from allele content alone.
func (s AlleleSet) IsPalindromic() bool {
	return len(s.alleles) > 0 && s.Equal(s.Complement())
}

func (s AlleleSet) Len() int {
	return len(s.alleles)
}

func (s AlleleSet) Alleles() []string {
	return slices.Clone(s.alleles)
}

func (s AlleleSet) String() string {
	return strings.Join(s.alleles, "/")
}
