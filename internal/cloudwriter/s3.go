package cloudwriter

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const uploadTimeout = 2 * time.Minute

// ObjectPutter is the part of *s3.Client the writers need.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3WriterFactory struct {
	client ObjectPutter
	prefix string
}

type s3Uploader struct {
	client ObjectPutter
}

func (u s3Uploader) upload(ctx context.Context, bucket, key string, body []byte) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/vnd.apache.parquet"),
	})
	return err
}

// NewS3WriterFactory loads the default AWS credential chain for region.
func NewS3WriterFactory(region, prefix string) (*S3WriterFactory, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewS3WriterFactoryWithClient(s3.NewFromConfig(cfg), prefix), nil
}

func NewS3WriterFactoryWithClient(client ObjectPutter, prefix string) *S3WriterFactory {
	return &S3WriterFactory{client: client, prefix: prefix}
}

func (f *S3WriterFactory) NewWriter(bucket, objectPath string) (CloudWriter, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 writer for %s: empty bucket name", objectPath)
	}
	return &S3Writer{
		uploader: s3Uploader{client: f.client},
		bucket:   bucket,
		key:      ObjectKey(f.prefix, objectPath),
	}, nil
}

type S3Writer struct {
	uploader uploader
	bucket   string
	key      string
	buffer   bytes.Buffer
	closed   bool
}

func (w *S3Writer) Key() string { return w.key }

func (w *S3Writer) Write(data []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("s3 writer %s: write after close", w.key)
	}
	return w.buffer.Write(data)
}

// Close uploads everything written so far. A second Close is a no-op.
func (w *S3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()
	if err := w.uploader.upload(ctx, w.bucket, w.key, w.buffer.Bytes()); err != nil {
		return fmt.Errorf("unable to upload s3://%s/%s: %w", w.bucket, w.key, err)
	}
	log.Printf("Uploaded %d bytes to s3://%s/%s", w.buffer.Len(), w.bucket, w.key)
	return nil
}
