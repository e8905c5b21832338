package bimrsid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/cenkalti/backoff"
)

const googleStoragePrefix = "gs://"

// gcsMaxRetries bounds how often a transient failure to open an object is
// retried before the error is returned.
const gcsMaxRetries = 5

func isGoogleStorage(path string) bool {
	return strings.HasPrefix(path, googleStoragePrefix)
}

func splitGoogleStoragePath(path string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(path, googleStoragePrefix)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%q is not a gs://bucket/object path", path)
	}

	return parts[0], parts[1], nil
}

type googleStorageObject struct {
	*storage.Reader
	client *storage.Client
}

func (g *googleStorageObject) Close() error {
	err := g.Reader.Close()
	if cerr := g.client.Close(); err == nil {
		err = cerr
	}

	return err
}

// openGoogleStorage opens a gs:// object with application default
// credentials. It returns the object size alongside the reader.
func openGoogleStorage(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	bucket, object, err := splitGoogleStoragePath(path)
	if err != nil {
		return nil, 0, pfx.Err(err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, 0, pfx.Err(err)
	}

	var reader *storage.Reader
	open := func() error {
		r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		reader = r
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), gcsMaxRetries), ctx)
	if err := backoff.Retry(open, policy); err != nil {
		client.Close()
		return nil, 0, pfx.Err(err)
	}

	return &googleStorageObject{Reader: reader, client: client}, reader.Attrs.Size, nil
}
