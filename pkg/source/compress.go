package source

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies a stream compression format.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
	CompressionGzip
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	case CompressionGzip:
		return "gzip"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

func compressionFor(name string) Compression {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst":
		return CompressionZstd
	case ".lz4":
		return CompressionLZ4
	case ".gz":
		return CompressionGzip
	}
	return CompressionNone
}

func decompress(c Compression, raw io.ReadCloser) (io.ReadCloser, error) {
	switch c {
	case CompressionZstd:
		dec, err := zstd.NewReader(raw)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return &readCloser{Reader: dec, closers: []func() error{
			func() error { dec.Close(); return nil },
			raw.Close,
		}}, nil

	case CompressionLZ4:
		return &readCloser{Reader: lz4.NewReader(raw), closers: []func() error{raw.Close}}, nil

	case CompressionGzip:
		zr, err := gzip.NewReader(raw)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, raw.Close}}, nil
	}
	return raw, nil
}

func compress(c Compression, raw io.WriteCloser) (io.WriteCloser, error) {
	var zw io.WriteCloser
	switch c {
	case CompressionZstd:
		enc, err := zstd.NewWriter(raw, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		zw = enc
	case CompressionLZ4:
		zw = lz4.NewWriter(raw)
	case CompressionGzip:
		zw = gzip.NewWriter(raw)
	default:
		return raw, nil
	}
	return &writeCloser{Writer: zw, closers: []func() error{zw.Close, raw.Close}}, nil
}

// readCloser and writeCloser close a compression layer and the stream
// beneath it, in order, returning the first error.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	return closeAll(r.closers)
}

type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error {
	return closeAll(w.closers)
}

func closeAll(closers []func() error) error {
	var first error
	for _, c := range closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
