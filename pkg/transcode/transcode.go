// Package transcode converts bencode values to and from human-oriented
// formats.
//
// JSON and YAML conversions keep dictionary order, so a value survives
// bencode -> JSON -> bencode unchanged. Byte strings that are not valid
// UTF-8 have no JSON string form; they are written as {"$base64": "..."}
// objects, and dictionary keys as "$base64:..." strings. YAML uses the
// !!binary tag instead.
package transcode

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrUnsupported indicates input that has no bencode equivalent, such as
// a float, boolean or null.
var ErrUnsupported = errors.New("transcode: no bencode equivalent")

const (
	base64Field     = "$base64"
	base64KeyPrefix = "$base64:"
)

// maxDepth bounds recursion when building values from YAML aliases.
const maxDepth = 512

// needsBase64Key reports whether a dictionary key must be written in the
// prefixed base64 form to read back unambiguously.
func needsBase64Key(key []byte) bool {
	return !utf8.Valid(key) || strings.HasPrefix(string(key), base64KeyPrefix)
}

func encodeKey(key []byte) string {
	if needsBase64Key(key) {
		return base64KeyPrefix + base64.StdEncoding.EncodeToString(key)
	}
	return string(key)
}

func decodeKey(key string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(key, base64KeyPrefix); ok {
		return base64.StdEncoding.DecodeString(rest)
	}
	return []byte(key), nil
}
