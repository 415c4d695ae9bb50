package config

import (
	"fmt"

	"github.com/epithet-ssh/bencode/pkg/bencode"
)

// Key order policies for decoding.
const (
	KeyOrderPreserve = "preserve"
	KeyOrderStrict   = "strict"
)

// Settings is the top level of a settings file.
type Settings struct {
	Codec Codec `json:"codec"`
}

// Codec holds decoder and encoder limits. Zero values mean the codec
// defaults.
type Codec struct {
	MaxDepth        int    `json:"max_depth,omitempty"`
	MaxStringLength int64  `json:"max_string_length,omitempty"`
	KeyOrder        string `json:"key_order,omitempty"`
	SortKeys        bool   `json:"sort_keys,omitempty"`
}

// Validate rejects negative limits and unknown key order policies.
func (c Codec) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.MaxStringLength < 0 {
		return fmt.Errorf("max_string_length must not be negative, got %d", c.MaxStringLength)
	}
	switch c.KeyOrder {
	case "", KeyOrderPreserve, KeyOrderStrict:
	default:
		return fmt.Errorf("key_order must be %q or %q, got %q", KeyOrderPreserve, KeyOrderStrict, c.KeyOrder)
	}
	return nil
}

// DecoderOptions converts the settings into decoder options.
func (c Codec) DecoderOptions() []bencode.Option {
	var opts []bencode.Option
	if c.MaxDepth > 0 {
		opts = append(opts, bencode.MaxDepth(c.MaxDepth))
	}
	if c.MaxStringLength > 0 {
		opts = append(opts, bencode.MaxStringLength(c.MaxStringLength))
	}
	if c.KeyOrder == KeyOrderStrict {
		opts = append(opts, bencode.RequireSortedKeys())
	}
	return opts
}

// EncoderOptions converts the settings into encoder options.
func (c Codec) EncoderOptions() []bencode.EncoderOption {
	if c.SortKeys {
		return []bencode.EncoderOption{bencode.SortKeys()}
	}
	return nil
}
