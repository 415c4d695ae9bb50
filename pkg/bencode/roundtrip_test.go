package bencode

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_CanonicalInputs(t *testing.T) {
	inputs := []string{
		"i0e",
		"i-1e",
		"i42e",
		"0:",
		"4:spam",
		"le",
		"de",
		"l4:spami42ee",
		"d3:bar4:spam3:fooi42ee",
		"d3:zzzi1e3:aaai2ee", // unsorted keys survive unchanged
		"lli1eeli2eed1:ali-3eeee",
		"d8:announce19:http://tracker/anno4:infod6:lengthi1024e4:name8:file.bin12:piece lengthi262144eee",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			v, err := Unmarshal([]byte(input))
			require.NoError(t, err)

			out, err := Marshal(v)
			require.NoError(t, err)
			if diff := cmp.Diff(input, string(out)); diff != "" {
				t.Errorf("re-encoding mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTrip_ConstructedValues(t *testing.T) {
	values := []Value{
		Int(0),
		Int(-9000),
		Str(""),
		Bytes([]byte{0, 1, 2, 255}),
		List(),
		Dict(),
		List(Str("spam"), Int(42), List(Dict(Pair("k", Str("v"))))),
		Dict(
			Pair("z", Int(1)),
			Pair("a", List(Int(1), Int(2))),
			Pair("", Dict(Pair("nested", Str("yes")))),
		),
	}

	for _, v := range values {
		data, err := Marshal(v)
		require.NoError(t, err)

		got, err := Unmarshal(data)
		require.NoError(t, err)
		if diff := cmp.Diff(v, got, valueComparer); diff != "" {
			t.Errorf("%s: round-trip mismatch (-want +got):\n%s", data, diff)
		}
	}
}

func TestRoundTrip_NonStringKeyIsRejected(t *testing.T) {
	// A list used as a key decodes fine in lenient parsers; here it must not.
	_, err := Unmarshal([]byte("dl3:hubi-3ee4:testi-1ei2ee"))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}
