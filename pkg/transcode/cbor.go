package transcode

import (
	"fmt"

	"github.com/epithet-ssh/bencode/pkg/bencode"
	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses Core Deterministic Encoding (RFC 8949 section 4.2), so
// equal values always produce identical bytes.
var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cbor: invalid deterministic encoding options: " + err.Error())
	}
}

// MarshalCBOR converts v to CBOR. Integers become CBOR integers, strings
// become byte strings, lists become arrays and dictionaries become maps
// keyed by byte strings. CBOR maps are written in deterministic key order,
// so the original dictionary order is not preserved.
func MarshalCBOR(v bencode.Value) ([]byte, error) {
	native, err := cborNative(v)
	if err != nil {
		return nil, err
	}
	data, err := cborEncMode.Marshal(native)
	if err != nil {
		return nil, fmt.Errorf("failed to encode CBOR: %w", err)
	}
	return data, nil
}

func cborNative(v bencode.Value) (any, error) {
	switch v.Kind() {
	case bencode.KindInteger:
		n, _ := v.Int()
		return n, nil
	case bencode.KindString:
		b, _ := v.Bytes()
		return b, nil
	case bencode.KindList:
		items, _ := v.List()
		out := make([]any, len(items))
		for i, item := range items {
			native, err := cborNative(item)
			if err != nil {
				return nil, err
			}
			out[i] = native
		}
		return out, nil
	case bencode.KindDictionary:
		entries, _ := v.Dict()
		out := make(map[any]any, len(entries))
		for _, e := range entries {
			native, err := cborNative(e.Value)
			if err != nil {
				return nil, err
			}
			out[cbor.ByteString(e.Key)] = native
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot convert %s value to CBOR", v.Kind())
}
