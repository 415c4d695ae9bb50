package bencode

const (
	// Default maximum container nesting depth
	defaultMaxDepth = 512

	// Default maximum byte string length (64MB)
	defaultMaxStringLength = 64 * 1024 * 1024
)

// config holds decoder configuration.
type config struct {
	maxDepth        int
	maxStringLength int64
	sortedKeys      bool
}

// Option configures a Decoder.
type Option func(*config)

// MaxDepth sets the maximum container nesting depth. A top-level list
// has depth 1. Input nested deeper than n returns ErrTooDeep.
//
// Default: 512
func MaxDepth(n int) Option {
	return func(c *config) {
		c.maxDepth = n
	}
}

// MaxStringLength sets the maximum allowed byte string length.
// Length fields exceeding this value return ErrTooLarge before any
// memory is allocated for the content.
//
// Default: 64MB (67108864 bytes)
func MaxStringLength(n int64) Option {
	return func(c *config) {
		c.maxStringLength = n
	}
}

// RequireSortedKeys rejects dictionaries whose keys are not in strictly
// ascending bytewise order.
//
// Default: false (any order is accepted as long as keys are unique)
func RequireSortedKeys() Option {
	return func(c *config) {
		c.sortedKeys = true
	}
}

// encoderConfig holds encoder configuration.
type encoderConfig struct {
	sortKeys bool
}

// EncoderOption configures an Encoder.
type EncoderOption func(*encoderConfig)

// SortKeys makes the encoder write dictionary entries in ascending
// bytewise key order regardless of how they are stored.
//
// Default: false (entries are written in stored order)
func SortKeys() EncoderOption {
	return func(c *encoderConfig) {
		c.sortKeys = true
	}
}
