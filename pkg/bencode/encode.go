package bencode

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
)

// Encode writes the canonical encoding of v.
//
// Dictionary entries are written in stored order unless the encoder was
// created with SortKeys. If the writer fails, the error is an
// *EncodeError and some bytes of v may already have been written.
func (e *Encoder) Encode(v Value) error {
	return e.encode(v)
}

// Marshal returns the canonical encoding of v.
func Marshal(v Value, opts ...EncoderOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf, opts...).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Encoder) encode(v Value) error {
	switch v.kind {
	case KindInteger:
		// Format: i<decimal>e
		buf := append(e.scratch[:0], intOpen)
		buf = strconv.AppendInt(buf, v.num, 10)
		buf = append(buf, endMarker)
		return e.write(buf)

	case KindString:
		return e.writeString(v.str)

	case KindList:
		if err := e.write([]byte{listOpen}); err != nil {
			return err
		}
		for _, item := range v.items {
			if err := e.encode(item); err != nil {
				return err
			}
		}
		return e.write([]byte{endMarker})

	case KindDictionary:
		entries, err := e.orderedEntries(v.dict)
		if err != nil {
			return err
		}
		if err := e.write([]byte{dictOpen}); err != nil {
			return err
		}
		for _, entry := range entries {
			if err := e.writeString(entry.Key); err != nil {
				return err
			}
			if err := e.encode(entry.Value); err != nil {
				return err
			}
		}
		return e.write([]byte{endMarker})

	default:
		return &ValueError{Reason: "cannot encode the zero Value"}
	}
}

// orderedEntries returns the entries in the order they will be written
// and rejects repeated keys.
func (e *Encoder) orderedEntries(dict []Entry) ([]Entry, error) {
	if len(dict) < 2 {
		return dict, nil
	}

	if e.sortKeys {
		sorted := slices.Clone(dict)
		slices.SortStableFunc(sorted, func(a, b Entry) int {
			return bytes.Compare(a.Key, b.Key)
		})
		for i := 1; i < len(sorted); i++ {
			if bytes.Equal(sorted[i-1].Key, sorted[i].Key) {
				return nil, duplicateKey(sorted[i].Key)
			}
		}
		return sorted, nil
	}

	seen := make(map[string]struct{}, len(dict))
	for _, entry := range dict {
		if _, dup := seen[string(entry.Key)]; dup {
			return nil, duplicateKey(entry.Key)
		}
		seen[string(entry.Key)] = struct{}{}
	}
	return dict, nil
}

func duplicateKey(key []byte) error {
	return &ValueError{Reason: fmt.Sprintf("duplicate dictionary key %q", key)}
}

// writeString writes <length>:<content>.
func (e *Encoder) writeString(s []byte) error {
	header := strconv.AppendInt(e.scratch[:0], int64(len(s)), 10)
	header = append(header, separator)
	if err := e.write(header); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	return e.write(s)
}

// write sends p to the sink and tracks position for error reporting.
func (e *Encoder) write(p []byte) error {
	n, err := e.w.Write(p)
	e.offset += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return &EncodeError{Offset: e.offset, Err: err}
	}
	return nil
}
