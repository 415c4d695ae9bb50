package bencode

import "io"

// Wire markers.
const (
	intOpen   byte = 'i'
	listOpen  byte = 'l'
	dictOpen  byte = 'd'
	endMarker byte = 'e'
	separator byte = ':'
)

// Decoder reads bencoded values from an io.ByteReader.
//
// io.ByteReader is implemented by *bufio.Reader and *bytes.Reader.
// For network streams, wrap your io.Reader in bufio.Reader for buffering:
//
//	dec := bencode.NewDecoder(bufio.NewReader(conn))
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	r               io.ByteReader
	maxDepth        int
	maxStringLength int64
	sortedKeys      bool
	offset          int64
	depth           int
}

// NewDecoder creates a new bencode decoder.
//
// The decoder reads from r, which must implement io.ByteReader.
// Optional configuration can be provided via Option functions.
//
// Example:
//
//	dec := bencode.NewDecoder(bufio.NewReader(conn), bencode.MaxDepth(32))
func NewDecoder(r io.ByteReader, opts ...Option) *Decoder {
	cfg := &config{
		maxDepth:        defaultMaxDepth,
		maxStringLength: defaultMaxStringLength,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Decoder{
		r:               r,
		maxDepth:        cfg.maxDepth,
		maxStringLength: cfg.maxStringLength,
		sortedKeys:      cfg.sortedKeys,
	}
}

// Offset returns the number of bytes the decoder has consumed.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// Encoder writes bencoded values to an io.Writer.
//
// The encoder writes are unbuffered. For network streams,
// wrap your io.Writer in bufio.Writer if buffering is desired:
//
//	enc := bencode.NewEncoder(bufio.NewWriter(conn))
type Encoder struct {
	w        io.Writer
	sortKeys bool
	offset   int64
	scratch  [24]byte
}

// NewEncoder creates a new bencode encoder that writes to w.
func NewEncoder(w io.Writer, opts ...EncoderOption) *Encoder {
	cfg := &encoderConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Encoder{w: w, sortKeys: cfg.sortKeys}
}
