package bimrsid

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Outcome records what the engine did with one marker.
type Outcome uint8

const (
	// OutcomeProblem: the record failed the structural checks and was
	// passed through untouched.
	OutcomeProblem Outcome = iota
	// OutcomeSkipped: sex-chromosome lookups are disabled.
	OutcomeSkipped
	// OutcomeUnchanged: no candidate matched and the identifier had no
	// embedded rsID.
	OutcomeUnchanged
	// OutcomeExtracted: no candidate matched; the embedded rsID was kept.
	OutcomeExtracted
	OutcomeMatched
	OutcomeMatchedComplement
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProblem:
		return "problem"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeExtracted:
		return "extracted"
	case OutcomeMatched:
		return "matched"
	case OutcomeMatchedComplement:
		return "matched_complement"

	default:
		return "Illegal selection"
	}
}

// VariantFetcher is the part of VariantIndex the engine needs.
type VariantFetcher interface {
	Fetch(ctx context.Context, chromosome string, start, end int) ([]VariantRecord, error)
}

// Decision describes the engine's verdict on one marker.
type Decision struct {
	OriginalID string
	Outcome    Outcome

	// Palindromic is set for accepted matches whose alleles are their own
	// complement (A/T, C/G). Strand cannot be told apart for these, so the
	// match may be a false positive; it is reported, not corrected.
	Palindromic bool
}

// Stats summarizes one pass.
type Stats struct {
	Records           int
	Problems          int
	Skipped           int
	Unchanged         int
	Extracted         int
	Matched           int
	ComplementMatched int
	Palindromic       int
}

func (s *Stats) add(d Decision) {
	s.Records++
	switch d.Outcome {
	case OutcomeProblem:
		s.Problems++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeUnchanged:
		s.Unchanged++
	case OutcomeExtracted:
		s.Extracted++
	case OutcomeMatched:
		s.Matched++
	case OutcomeMatchedComplement:
		s.ComplementMatched++
	}
	if d.Palindromic {
		s.Palindromic++
	}
}

// Engine rewrites marker identifiers to the rsIDs of matching reference
// variants.
type Engine struct {
	Index VariantFetcher

	// IncludeSexChromosomes enables lookups for X, Y and XY markers.
	IncludeSexChromosomes bool

	// PlinkChromosomeCodes translates PLINK numeric codes (23-26) before
	// querying the index. The written record keeps its original code.
	PlinkChromosomeCodes bool

	// Workers > 1 performs index lookups concurrently, BatchSize records at
	// a time. Output order is unaffected.
	Workers   int
	BatchSize int

	// OnDecision, if set, is called for every record in output order, after
	// the identifier has been updated and before the record is written.
	OnDecision func(m *MarkerRecord, d Decision) error
}

// MatchCandidate applies the first-match policy to the candidates returned
// for a marker. Candidates are tried in the order given. For each one the
// marker's own alleles are compared before their complement. There is no
// ranking: the first acceptable candidate wins.
func MatchCandidate(m *MarkerRecord, candidates []VariantRecord) (VariantRecord, Outcome, bool) {
	direct := m.Alleles()
	flipped := direct.Complement()

	for _, v := range candidates {
		if v.Position != m.Position {
			// Guards against an off-by-one in the index layer.
			continue
		}

		if v.Symbolic {
			continue
		}

		if !v.HasReferenceID() {
			continue
		}

		set := v.AlleleSet()
		if direct.Equal(set) {
			return v, OutcomeMatched, true
		}
		if flipped.Equal(set) {
			return v, OutcomeMatchedComplement, true
		}
	}

	return VariantRecord{}, OutcomeUnchanged, false
}

func (e *Engine) queryChromosome(chr string) string {
	if e.PlinkChromosomeCodes {
		return PlinkChromosome(chr)
	}

	return chr
}

// UpdateRecordID reconciles a single record in place. Structurally invalid
// records are left untouched. Otherwise the embedded rsID, if any, is
// extracted first and becomes the fallback; an accepted candidate replaces
// it. The only error returned is an index failure, which is fatal.
func (e *Engine) UpdateRecordID(ctx context.Context, m *MarkerRecord) (Decision, error) {
	d := Decision{OriginalID: m.ID, Outcome: OutcomeProblem}
	if m.HasStructuralProblem() {
		return d, nil
	}

	m.ID = ExtractRSID(m.ID)
	fallback := OutcomeUnchanged
	if m.ID != d.OriginalID {
		fallback = OutcomeExtracted
	}

	if !e.IncludeSexChromosomes && IsSexChromosome(m.Chromosome) {
		d.Outcome = OutcomeSkipped
		return d, nil
	}

	start, end := LocusRange(m.Position)
	candidates, err := e.Index.Fetch(ctx, e.queryChromosome(m.Chromosome), start, end)
	if err != nil {
		return d, err
	}

	v, outcome, ok := MatchCandidate(m, candidates)
	if !ok {
		d.Outcome = fallback
		return d, nil
	}

	m.ID = v.ID
	d.Outcome = outcome
	if m.Alleles().IsPalindromic() {
		d.Palindromic = true
		log.WithFields(log.Fields{
			"line":    m.Line(),
			"marker":  d.OriginalID,
			"rsid":    v.ID,
			"alleles": m.Alleles().String(),
		}).Debug("Accepted palindromic match")
	}

	return d, nil
}

// Reconcile reads every record from r, updates its identifier and writes it
// to w in the original order. A malformed marker line or an index failure
// aborts the pass; the caller must then discard whatever w received.
func (e *Engine) Reconcile(ctx context.Context, r *MarkerReader, w *MarkerWriter) (Stats, error) {
	if e.Workers > 1 {
		return e.reconcileParallel(ctx, r, w)
	}

	var stats Stats
	for {
		m := r.Read()
		if m == nil {
			break
		}

		d, err := e.UpdateRecordID(ctx, m)
		if err != nil {
			return stats, err
		}

		if err := e.emit(w, m, d, &stats); err != nil {
			return stats, err
		}
	}

	if err := r.Error(); err != nil {
		return stats, err
	}

	return stats, w.Flush()
}

func (e *Engine) emit(w *MarkerWriter, m *MarkerRecord, d Decision, stats *Stats) error {
	if e.OnDecision != nil {
		if err := e.OnDecision(m, d); err != nil {
			return err
		}
	}

	if err := w.Write(m); err != nil {
		return err
	}
	stats.add(d)

	return nil
}
