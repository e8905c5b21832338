package bimrsid

import (
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/carbocation/pfx"
)

// ReportRunIDKey is the schema metadata key holding the pass's run ID.
const ReportRunIDKey = "run_id"

const defaultReportChunk = 8192

// Report columns, in schema order.
const (
	reportLine = iota
	reportChromosome
	reportPosition
	reportOriginalID
	reportFinalID
	reportOutcome
	reportPalindromic
)

// ReportWriter records one row per marker decision in an Arrow IPC file.
// It is written to from the single goroutine that emits records.
type ReportWriter struct {
	file           *pendingFile
	schema         *arrow.Schema
	writer         *ipc.FileWriter
	builders       []array.Builder
	chunkSize      int
	numRowsInChunk int
}

func reportSchema(runID string) *arrow.Schema {
	md := arrow.NewMetadata([]string{ReportRunIDKey}, []string{runID})

	return arrow.NewSchema([]arrow.Field{
		{Name: "line", Type: arrow.PrimitiveTypes.Int64},
		{Name: "chromosome", Type: arrow.BinaryTypes.String},
		{Name: "position", Type: arrow.PrimitiveTypes.Int64},
		{Name: "original_id", Type: arrow.BinaryTypes.String},
		{Name: "final_id", Type: arrow.BinaryTypes.String},
		{Name: "outcome", Type: arrow.BinaryTypes.String},
		{Name: "palindromic", Type: arrow.FixedWidthTypes.Boolean},
	}, &md)
}

// CreateReport starts a report at path. Nothing appears at path until Close
// succeeds; Abort discards the report.
func CreateReport(path, runID string, chunkSize int) (*ReportWriter, error) {
	if chunkSize < 1 {
		chunkSize = defaultReportChunk
	}

	file, err := createPending(path)
	if err != nil {
		return nil, err
	}

	pool := memory.NewGoAllocator()
	schema := reportSchema(runID)
	writer, err := ipc.NewFileWriter(file, ipc.WithSchema(schema), ipc.WithAllocator(pool))
	if err != nil {
		file.Abort()
		return nil, pfx.Err(err)
	}

	return &ReportWriter{
		file:   file,
		schema: schema,
		writer: writer,
		builders: []array.Builder{
			array.NewInt64Builder(pool),
			array.NewStringBuilder(pool),
			array.NewInt64Builder(pool),
			array.NewStringBuilder(pool),
			array.NewStringBuilder(pool),
			array.NewStringBuilder(pool),
			array.NewBooleanBuilder(pool),
		},
		chunkSize: chunkSize,
	}, nil
}

// Write has the signature of Engine.OnDecision.
func (rw *ReportWriter) Write(m *MarkerRecord, d Decision) error {
	rw.builders[reportLine].(*array.Int64Builder).Append(int64(m.Line()))
	rw.builders[reportChromosome].(*array.StringBuilder).Append(m.Chromosome)
	rw.builders[reportPosition].(*array.Int64Builder).Append(int64(m.Position))
	rw.builders[reportOriginalID].(*array.StringBuilder).Append(d.OriginalID)
	rw.builders[reportFinalID].(*array.StringBuilder).Append(m.ID)
	rw.builders[reportOutcome].(*array.StringBuilder).Append(d.Outcome.String())
	rw.builders[reportPalindromic].(*array.BooleanBuilder).Append(d.Palindromic)

	rw.numRowsInChunk++
	if rw.numRowsInChunk == rw.chunkSize {
		return rw.writeChunk()
	}

	return nil
}

func (rw *ReportWriter) writeChunk() error {
	cols := make([]arrow.Array, len(rw.builders))
	for i, b := range rw.builders {
		// NewArray resets the builder for the next chunk
		cols[i] = b.NewArray()
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	record := array.NewRecord(rw.schema, cols, int64(rw.numRowsInChunk))
	defer record.Release()

	if err := rw.writer.Write(record); err != nil {
		return pfx.Err(err)
	}
	rw.numRowsInChunk = 0

	return nil
}

// Close flushes the remaining rows and moves the report into place.
func (rw *ReportWriter) Close() error {
	if rw.numRowsInChunk > 0 {
		if err := rw.writeChunk(); err != nil {
			rw.Abort()
			return err
		}
	}

	if err := rw.writer.Close(); err != nil {
		rw.Abort()
		return fmt.Errorf("closing report: %w", err)
	}
	rw.release()

	return rw.file.Commit()
}

// Abort discards the report. It is a no-op after a successful Close.
func (rw *ReportWriter) Abort() {
	rw.release()
	rw.file.Abort()
}

func (rw *ReportWriter) release() {
	for _, b := range rw.builders {
		b.Release()
	}
	rw.builders = nil
}
