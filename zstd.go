package bimrsid

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func isZStandard(head []byte) bool {
	return bytes.HasPrefix(head, zstdMagic)
}

// newZStandardReader streams Zstd frames from r. Closing the returned reader
// releases the decoder's goroutines.
func newZStandardReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}

	return dec.IOReadCloser(), nil
}
