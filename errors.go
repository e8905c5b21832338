package bimrsid

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedMarkerFile is returned when a marker line cannot be split
	// into the six BIM columns. It aborts the whole pass.
	ErrMalformedMarkerFile = errors.New("malformed marker file")

	// ErrIndexLookup is returned when the variant index cannot be opened or
	// queried. It aborts the whole pass.
	ErrIndexLookup = errors.New("variant index lookup failure")

	// ErrMalformedVariantFile is returned while building an index from a VCF
	// whose data lines cannot be parsed.
	ErrMalformedVariantFile = errors.New("malformed variant file")

	// ErrManifestMagicNumber is returned when a file does not start with the
	// Illumina BPM magic number.
	ErrManifestMagicNumber = errors.New("manifest magic number mismatch")

	// ErrTrioMismatch is returned when the .bed/.bim/.fam files are not row
	// aligned with each other.
	ErrTrioMismatch = errors.New("genotype trio mismatch")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// MarkerFileError identifies the marker file and line that failed to
// tokenize.
type MarkerFileError struct {
	Path   string
	Line   int
	Fields int
}

func (e *MarkerFileError) Error() string {
	return fmt.Sprintf("%s: line %d has %d fields, expected %d: %v", e.Path, e.Line, e.Fields, markerFieldCount, ErrMalformedMarkerFile)
}

func (e *MarkerFileError) Unwrap() error {
	return ErrMalformedMarkerFile
}

// IndexError describes a failed operation against the variant index.
type IndexError struct {
	Path string
	Op   string
	Err  error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: %s %s: %v", ErrIndexLookup, e.Op, e.Path, e.Err)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexLookup
}

func (e *IndexError) Unwrap() error {
	return e.Err
}
