// Package source opens bencode inputs and outputs by location.
//
// A location is "-" for stdin or stdout, an s3://bucket/key URL, an
// http:// or https:// URL (read only), or a local file path. Locations
// ending in .zst, .lz4 or .gz are decompressed on read and compressed on
// write.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Stdio is the location naming stdin or stdout.
const Stdio = "-"

// S3API is the subset of the S3 client used here.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type options struct {
	s3Client   S3API
	httpClient *http.Client
	breakers   *Breakers
	stdin      io.Reader
	stdout     io.Writer
}

// Option configures Open and Create.
type Option func(*options)

// WithS3Client sets the client for s3:// locations. By default one is
// built from the default AWS configuration on first use.
func WithS3Client(c S3API) Option {
	return func(o *options) {
		o.s3Client = c
	}
}

// WithHTTPClient sets the client for http(s):// locations.
//
// Default: http.DefaultClient
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithBreakers guards remote reads with per-host circuit breakers. The
// same Breakers should be shared by every Open against the same hosts.
func WithBreakers(b *Breakers) Option {
	return func(o *options) {
		o.breakers = b
	}
}

// WithStdin replaces os.Stdin for the "-" location.
func WithStdin(r io.Reader) Option {
	return func(o *options) {
		o.stdin = r
	}
}

// WithStdout replaces os.Stdout for the "-" location.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		httpClient: http.DefaultClient,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) s3(ctx context.Context) (S3API, error) {
	if o.s3Client != nil {
		return o.s3Client, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	o.s3Client = s3.NewFromConfig(cfg)
	return o.s3Client, nil
}

type scheme int

const (
	schemeFile scheme = iota
	schemeStdio
	schemeS3
	schemeHTTP
)

type target struct {
	scheme scheme
	path   string // file path, or the key for S3
	bucket string
	url    string
	host   string
}

func parse(location string) (target, error) {
	if location == Stdio {
		return target{scheme: schemeStdio}, nil
	}

	lower := strings.ToLower(location)
	switch {
	case strings.HasPrefix(lower, "s3://"):
		u, err := url.Parse(location)
		if err != nil {
			return target{}, fmt.Errorf("invalid S3 location %q: %w", location, err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return target{}, fmt.Errorf("invalid S3 location %q: want s3://bucket/key", location)
		}
		return target{scheme: schemeS3, bucket: u.Host, path: key}, nil

	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		u, err := url.Parse(location)
		if err != nil {
			return target{}, fmt.Errorf("invalid URL %q: %w", location, err)
		}
		return target{scheme: schemeHTTP, url: location, path: u.Path, host: u.Host}, nil
	}
	return target{scheme: schemeFile, path: location}, nil
}

// Open returns a reader for location. The caller must close it.
func Open(ctx context.Context, location string, opts ...Option) (io.ReadCloser, error) {
	t, err := parse(location)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)

	var raw io.ReadCloser
	switch t.scheme {
	case schemeStdio:
		raw = io.NopCloser(o.stdin)
	case schemeFile:
		raw, err = os.Open(t.path)
	case schemeS3:
		raw, err = o.breakers.fetch("s3://"+t.bucket, func() (io.ReadCloser, error) {
			return openS3(ctx, o, t)
		})
	case schemeHTTP:
		raw, err = o.breakers.fetch(t.host, func() (io.ReadCloser, error) {
			return openHTTP(ctx, o, t)
		})
	}
	if err != nil {
		return nil, err
	}

	r, err := decompress(compressionFor(t.path), raw)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return r, nil
}

// Create returns a writer for location. Output to S3 is buffered and
// uploaded when the writer is closed, so Close must be checked.
func Create(ctx context.Context, location string, opts ...Option) (io.WriteCloser, error) {
	t, err := parse(location)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)

	var raw io.WriteCloser
	switch t.scheme {
	case schemeStdio:
		raw = nopWriteCloser{o.stdout}
	case schemeFile:
		raw, err = os.Create(t.path)
	case schemeS3:
		var client S3API
		client, err = o.s3(ctx)
		if err == nil {
			raw = newS3Writer(ctx, client, t.bucket, t.path)
		}
	case schemeHTTP:
		err = fmt.Errorf("cannot write to %s: HTTP locations are read only", location)
	}
	if err != nil {
		return nil, err
	}

	w, err := compress(compressionFor(t.path), raw)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return w, nil
}

func openHTTP(ctx context.Context, o *options, t target) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", t.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: t.url, Code: resp.StatusCode, Status: resp.Status}
	}
	return resp.Body, nil
}

// StatusError is returned when an http(s) location answers with a
// non-2xx status.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %s", e.URL, e.Status)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
