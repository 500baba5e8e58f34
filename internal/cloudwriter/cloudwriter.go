package cloudwriter

import (
	"context"
	"io"
	"path"
)

// CloudWriter buffers one object and uploads it on Close.
type CloudWriter interface {
	io.WriteCloser
	Key() string
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}

// ObjectKey joins the parts of an object key with forward slashes, whatever
// the host separator is.
func ObjectKey(parts ...string) string {
	return path.Join(parts...)
}

type uploader interface {
	upload(ctx context.Context, bucket, key string, body []byte) error
}
