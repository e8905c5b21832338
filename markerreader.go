package bimrsid

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/carbocation/pfx"
)

const maxMarkerLine = 1 << 20

// MarkerReader yields PLINK .bim records in file order. Like a
// bufio.Scanner, Read returns nil once the input is exhausted or an error
// occurred; Error distinguishes the two.
type MarkerReader struct {
	RecordsSeen int
	path        string
	layout      Layout
	scanner     *bufio.Scanner
	closer      io.Closer
	line        int
	err         error
}

// OpenMarkerReader opens a local or gs:// marker file, which may be gzip or
// Zstd compressed.
func OpenMarkerReader(ctx context.Context, path string) (*MarkerReader, error) {
	in, err := openInput(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	mr, err := NewMarkerReader(in, path)
	if err != nil {
		in.Close()
		return nil, err
	}
	mr.closer = in

	return mr, nil
}

// NewMarkerReader reads records from r. name is only used in error messages.
// The delimiter layout is decided from the first line before any record is
// returned.
func NewMarkerReader(r io.Reader, name string) (*MarkerReader, error) {
	buffered := bufio.NewReaderSize(r, 1<<16)
	head, err := buffered.Peek(buffered.Size())
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, pfx.Err(err)
	}
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}

	scanner := bufio.NewScanner(buffered)
	scanner.Buffer(make([]byte, 0, 1<<16), maxMarkerLine)

	return &MarkerReader{
		path:    name,
		layout:  DetectLayout(string(head)),
		scanner: scanner,
	}, nil
}

func (mr *MarkerReader) Layout() Layout {
	return mr.layout
}

func (mr *MarkerReader) Path() string {
	return mr.path
}

func (mr *MarkerReader) Error() error {
	return mr.err
}

func (mr *MarkerReader) Read() *MarkerRecord {
	if mr.err != nil {
		return nil
	}

	if !mr.scanner.Scan() {
		if err := mr.scanner.Err(); err != nil {
			mr.err = pfx.Err(err)
		}
		return nil
	}
	mr.line++

	text := strings.TrimSuffix(mr.scanner.Text(), "\r")
	fields := mr.layout.Split(text)
	if len(fields) != markerFieldCount {
		mr.err = &MarkerFileError{Path: mr.path, Line: mr.line, Fields: len(fields)}
		return nil
	}

	m := NewMarkerRecord(fields)
	m.line = mr.line
	mr.RecordsSeen++

	return m
}

func (mr *MarkerReader) Close() error {
	if mr.closer == nil {
		return nil
	}

	return mr.closer.Close()
}
