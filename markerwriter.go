package bimrsid

import (
	"bufio"
	"io"

	"github.com/carbocation/pfx"
)

// MarkerWriter serializes records back into the .bim column layout. Output is
// buffered; call Flush once the last record has been written.
type MarkerWriter struct {
	RecordsWritten int
	w              *bufio.Writer
	layout         Layout
}

func NewMarkerWriter(w io.Writer, layout Layout) *MarkerWriter {
	return &MarkerWriter{
		w:      bufio.NewWriterSize(w, 1<<16),
		layout: layout,
	}
}

func (mw *MarkerWriter) Write(m *MarkerRecord) error {
	delim := mw.layout.Delimiter()
	for i, field := range m.Fields() {
		if i > 0 {
			if err := mw.w.WriteByte(delim); err != nil {
				return pfx.Err(err)
			}
		}
		if _, err := mw.w.WriteString(field); err != nil {
			return pfx.Err(err)
		}
	}
	if err := mw.w.WriteByte('\n'); err != nil {
		return pfx.Err(err)
	}
	mw.RecordsWritten++

	return nil
}

func (mw *MarkerWriter) Flush() error {
	if err := mw.w.Flush(); err != nil {
		return pfx.Err(err)
	}

	return nil
}
