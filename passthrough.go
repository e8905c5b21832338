package bimrsid

import (
	"context"
	"io"

	"github.com/carbocation/pfx"
)

// CopyFile duplicates src to dst byte for byte. No decompression is applied,
// so compressed inputs stay compressed. dst only appears once the copy is
// complete.
func CopyFile(ctx context.Context, src, dst string) (int64, error) {
	in, _, _, err := openRaw(ctx, src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := createPending(dst)
	if err != nil {
		return 0, err
	}
	defer out.Abort()

	n, err := io.Copy(out, in)
	if err != nil {
		return n, pfx.Err(err)
	}

	return n, out.Commit()
}

// CopyCompanions copies the .bed and .fam files that must stay row aligned
// with an updated .bim. Call it only after the marker pass has succeeded.
func CopyCompanions(ctx context.Context, bedIn, bedOut, famIn, famOut string) error {
	for _, pair := range [][2]string{{bedIn, bedOut}, {famIn, famOut}} {
		if _, err := CopyFile(ctx, pair[0], pair[1]); err != nil {
			return err
		}
	}

	return nil
}
