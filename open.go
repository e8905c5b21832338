package bimrsid

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/biogo/hts/bgzf"
	"github.com/carbocation/genomisc"
	"github.com/carbocation/pfx"
	"github.com/klauspost/compress/gzip"
	"gopkg.in/h2non/filetype.v1"
)

const sniffLength = 512

// Tap lets a caller observe the raw (still compressed) byte stream of an
// input, e.g. to drive a progress bar. size is -1 when unknown.
type Tap func(raw io.Reader, size int64) io.Reader

// input is an opened, decompressed stream together with what was learned
// about the underlying file.
type input struct {
	io.Reader
	Name        string
	Size        int64
	ModTime     time.Time
	Compression Compression

	closers []io.Closer
}

func (in *input) Close() error {
	var err error
	for i := len(in.closers) - 1; i >= 0; i-- {
		if cerr := in.closers[i].Close(); err == nil {
			err = cerr
		}
	}

	return err
}

// openRaw opens a local file (with ~/ expansion) or a gs:// object without
// any decompression.
func openRaw(ctx context.Context, path string) (io.ReadCloser, int64, time.Time, error) {
	if isGoogleStorage(path) {
		rc, size, err := openGoogleStorage(ctx, path)
		return rc, size, time.Time{}, err
	}

	f, err := os.Open(genomisc.ExpandHome(path))
	if err != nil {
		return nil, 0, time.Time{}, pfx.Err(err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, time.Time{}, pfx.Err(err)
	}

	return f, info.Size(), info.ModTime(), nil
}

// openInput opens path and transparently undoes gzip, BGZF or Zstd
// compression, detected from the leading bytes rather than the extension.
func openInput(ctx context.Context, path string, tap Tap) (*input, error) {
	raw, size, modTime, err := openRaw(ctx, path)
	if err != nil {
		return nil, err
	}

	in := &input{
		Name:    path,
		Size:    size,
		ModTime: modTime,
		closers: []io.Closer{raw},
	}

	var r io.Reader = raw
	if tap != nil {
		r = tap(raw, size)
	}

	buffered := bufio.NewReaderSize(r, 1<<16)
	head, err := buffered.Peek(sniffLength)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		in.Close()
		return nil, pfx.Err(err)
	}

	in.Compression = sniffCompression(head)

	switch in.Compression {
	case CompressionBGZF:
		bg, err := bgzf.NewReader(buffered, 0)
		if err != nil {
			in.Close()
			return nil, pfx.Err(err)
		}
		in.closers = append(in.closers, bg)
		in.Reader = bg
	case CompressionGzip:
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			in.Close()
			return nil, pfx.Err(err)
		}
		in.closers = append(in.closers, gz)
		in.Reader = gz
	case CompressionZStandard:
		zr, err := newZStandardReader(buffered)
		if err != nil {
			in.Close()
			return nil, pfx.Err(err)
		}
		in.closers = append(in.closers, zr)
		in.Reader = zr
	default:
		in.Reader = buffered
	}

	return in, nil
}

func sniffCompression(head []byte) Compression {
	if isZStandard(head) {
		return CompressionZStandard
	}

	kind, err := filetype.Match(head)
	if err != nil || kind.Extension != "gz" {
		return CompressionDisabled
	}

	if isBGZF(head) {
		return CompressionBGZF
	}

	return CompressionGzip
}

// isBGZF looks for the FEXTRA flag and the "BC" subfield that every BGZF
// block header carries.
func isBGZF(head []byte) bool {
	const (
		flagExtra = 1 << 2
		minHeader = 16
	)
	if len(head) < minHeader {
		return false
	}

	return head[3]&flagExtra != 0 && head[12] == 'B' && head[13] == 'C'
}
