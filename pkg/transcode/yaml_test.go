package transcode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/epithet-ssh/bencode/pkg/bencode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteYAML_Flat(t *testing.T) {
	v := bencode.Dict(
		bencode.Pair("name", bencode.Str("spam")),
		bencode.Pair("size", bencode.Int(42)),
		bencode.Pair("count", bencode.Str("7")),
	)

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, v))
	assert.Equal(t, "name: spam\nsize: 42\ncount: \"7\"\n", buf.String())
}

func TestWriteYAML_Binary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, bencode.Bytes([]byte{0x00, 0xff})))
	assert.Equal(t, "!!binary AP8=\n", buf.String())
}

func TestFromYAML(t *testing.T) {
	input := `
zeta: 1
alpha:
  - one
  - 0x10
  - "42"
blob: !!binary AP8=
defaults: &d {a: 1}
copy: *d
`
	got, err := FromYAML([]byte(input))
	require.NoError(t, err)

	want := bencode.Dict(
		bencode.Pair("zeta", bencode.Int(1)),
		bencode.Pair("alpha", bencode.List(bencode.Str("one"), bencode.Int(16), bencode.Str("42"))),
		bencode.Pair("blob", bencode.Bytes([]byte{0x00, 0xff})),
		bencode.Pair("defaults", bencode.Dict(bencode.Pair("a", bencode.Int(1)))),
		bencode.Pair("copy", bencode.Dict(bencode.Pair("a", bencode.Int(1)))),
	)
	assert.True(t, want.Equal(got), "got %s", got)
}

func TestFromYAML_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		unsupported bool
	}{
		{"float", "1.5", true},
		{"boolean", "[true]", true},
		{"null", "a: ~", true},
		{"empty", "", false},
		{"duplicate key", "a: 1\na: 2\n", false},
		{"non-scalar key", "? [1]\n: 2\n", false},
		{"syntax", "a: [1, 2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromYAML([]byte(tt.input))
			require.Error(t, err)
			assert.Equal(t, tt.unsupported, errors.Is(err, ErrUnsupported), "error: %v", err)
		})
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	values := []bencode.Value{
		bencode.Int(-5),
		bencode.Str("true"),
		bencode.Str("multi\nline"),
		bencode.Bytes([]byte{0xde, 0xad, 0xbe, 0xef}),
		bencode.List(bencode.Int(1), bencode.List(bencode.Str("x"))),
		bencode.Dict(
			bencode.Pair("zz", bencode.Str("null")),
			bencode.Pair("aa", bencode.Dict(bencode.Pair("k", bencode.Int(0)))),
			bencode.Entry{Key: []byte{0xff, 0xfe}, Value: bencode.Str("binary key")},
		),
	}

	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, WriteYAML(&buf, v))

		got, err := FromYAML(buf.Bytes())
		require.NoError(t, err, "yaml:\n%s", buf.String())
		assert.True(t, v.Equal(got), "want %s, got %s (yaml:\n%s)", v, got, buf.String())
	}
}
