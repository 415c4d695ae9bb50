package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func openS3(ctx context.Context, o *options, t target) (io.ReadCloser, error) {
	client, err := o.s3(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.path),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", t.bucket, t.path, err)
	}
	return out.Body, nil
}

// s3Writer buffers everything written and uploads it as one object on
// Close.
type s3Writer struct {
	ctx    context.Context
	client S3API
	bucket string
	key    string
	buf    bytes.Buffer
	closed bool
}

func newS3Writer(ctx context.Context, client S3API, bucket, key string) *s3Writer {
	return &s3Writer{ctx: ctx, client: client, bucket: bucket, key: key}
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("write to closed S3 object")
	}
	return w.buf.Write(p)
}

func (w *s3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.bucket),
		Key:           aws.String(w.key),
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentLength: aws.Int64(int64(w.buf.Len())),
		ContentType:   aws.String("application/x-bencode"),
	})
	if err != nil {
		return fmt.Errorf("failed to write s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}
