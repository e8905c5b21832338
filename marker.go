package bimrsid

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/carbocation/genomisc"
)

// MissingAllele is the PLINK code for an allele that was not observed.
const MissingAllele = "0"

const markerFieldCount = genomisc.Allele2 + 1

var (
	rsidPattern       = regexp.MustCompile(`rs\d+`)
	chromosomePattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
)

// Problem is a bit set of field-level defects found on a tokenized marker
// line. A record with any problem is written back verbatim and never
// looked up.
type Problem uint8

const (
	ProblemChromosome Problem = 1 << iota
	ProblemPosition
	ProblemAllele1
	ProblemAllele2
)

func (p Problem) String() string {
	if p == 0 {
		return "none"
	}

	var names []string
	if p&ProblemChromosome != 0 {
		names = append(names, "chromosome")
	}
	if p&ProblemPosition != 0 {
		names = append(names, "position")
	}
	if p&ProblemAllele1 != 0 {
		names = append(names, "allele1")
	}
	if p&ProblemAllele2 != 0 {
		names = append(names, "allele2")
	}

	return strings.Join(names, ",")
}

// MarkerRecord is one row of a PLINK .bim file. Only ID is expected to change
// between reading and writing; every other column is written back exactly as
// it was read.
type MarkerRecord struct {
	Chromosome string
	ID         string
	Morgans    string // Genetic distance, never interpreted
	Position   int    // 1-based; zero when the column did not parse
	Allele1    string
	Allele2    string

	positionText string
	problems     Problem
	line         int
}

// NewMarkerRecord builds a record from the six BIM columns and runs the
// structural checks. fields must already have the right length.
func NewMarkerRecord(fields []string) *MarkerRecord {
	m := &MarkerRecord{
		Chromosome:   fields[genomisc.Chromosome],
		ID:           fields[genomisc.VariantID],
		Morgans:      fields[genomisc.Morgans],
		Allele1:      fields[genomisc.Allele1],
		Allele2:      fields[genomisc.Allele2],
		positionText: fields[genomisc.Coordinate],
	}

	if !chromosomePattern.MatchString(m.Chromosome) {
		m.problems |= ProblemChromosome
	}

	pos, err := strconv.Atoi(m.positionText)
	if err != nil || pos < 1 {
		m.problems |= ProblemPosition
	} else {
		m.Position = pos
	}

	if !validAllele(m.Allele1) {
		m.problems |= ProblemAllele1
	}
	if !validAllele(m.Allele2) {
		m.problems |= ProblemAllele2
	}

	return m
}

func validAllele(a string) bool {
	switch strings.ToUpper(a) {
	case "A", "C", "G", "T", MissingAllele:
		return true
	}

	return false
}

func (m *MarkerRecord) Problems() Problem {
	return m.problems
}

func (m *MarkerRecord) HasStructuralProblem() bool {
	return m.problems != 0
}

// Line is the 1-based line number the record was read from, or zero for
// records that were not produced by a MarkerReader.
func (m *MarkerRecord) Line() int {
	return m.line
}

func (m *MarkerRecord) Alleles() AlleleSet {
	return NewAlleleSet(m.Allele1, m.Allele2)
}

// ComplementAlleles returns the opposite-strand allele set. The record itself
// is not modified.
func (m *MarkerRecord) ComplementAlleles() AlleleSet {
	return m.Alleles().Complement()
}

// Fields returns the six columns in file order.
func (m *MarkerRecord) Fields() []string {
	fields := make([]string, markerFieldCount)
	fields[genomisc.Chromosome] = m.Chromosome
	fields[genomisc.VariantID] = m.ID
	fields[genomisc.Morgans] = m.Morgans
	fields[genomisc.Coordinate] = m.positionText
	fields[genomisc.Allele1] = m.Allele1
	fields[genomisc.Allele2] = m.Allele2

	return fields
}

// ExtractRSID returns the first "rs<digits>" substring of id, which turns
// vendor identifiers such as GSA-rs1234 into rs1234. Identifiers without an
// embedded rsID are returned unchanged, so the function is idempotent.
func ExtractRSID(id string) string {
	if match := rsidPattern.FindString(id); match != "" {
		return match
	}

	return id
}
