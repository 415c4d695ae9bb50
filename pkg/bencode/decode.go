package bencode

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// readChunk caps how much byte string content is allocated ahead of
// actually receiving it.
const readChunk = 64 * 1024

// Decode reads the next top-level value from the stream.
//
// Returns io.EOF when the stream ends before the first byte of a value.
// Any other failure is a *DecodeError and leaves the decoder positioned
// somewhere inside the bad value.
func (d *Decoder) Decode() (Value, error) {
	lead, err := d.readByte()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.EOF
		}
		return Value{}, d.readFailure(err)
	}

	v, end, err := d.dispatch(lead)
	if err != nil {
		return Value{}, err
	}
	if end {
		return Value{}, d.fail(ErrMalformed, "unexpected end marker 'e' outside a container")
	}
	return v, nil
}

// Decode reads exactly one value from r.
//
// If r does not implement io.ByteReader it is wrapped in a bufio.Reader,
// which may consume bytes from r past the end of the value. An empty
// stream is reported as ErrTruncated.
func Decode(r io.Reader, opts ...Option) (Value, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	v, err := NewDecoder(br, opts...).Decode()
	if err == io.EOF {
		return Value{}, &DecodeError{Reason: "empty input", Err: ErrTruncated}
	}
	return v, err
}

// Unmarshal decodes data, which must hold exactly one value with no
// trailing bytes.
func Unmarshal(data []byte, opts ...Option) (Value, error) {
	dec := NewDecoder(bytes.NewReader(data), opts...)
	v, err := dec.Decode()
	if err == io.EOF {
		return Value{}, &DecodeError{Reason: "empty input", Err: ErrTruncated}
	}
	if err != nil {
		return Value{}, err
	}
	if dec.offset != int64(len(data)) {
		return Value{}, dec.fail(ErrMalformed, fmt.Sprintf("%d bytes of trailing data after value", int64(len(data))-dec.offset))
	}
	return v, nil
}

// next reads a lead byte and decodes the value it opens. end is true when
// the lead byte was the end marker, which closes the enclosing container.
func (d *Decoder) next() (v Value, end bool, err error) {
	lead, err := d.readByte()
	if err != nil {
		return Value{}, false, d.eofError(err, "expected a value or 'e'")
	}
	return d.dispatch(lead)
}

// dispatch selects the variant parser from the lead byte.
func (d *Decoder) dispatch(lead byte) (Value, bool, error) {
	switch {
	case lead == intOpen:
		v, err := d.decodeInt()
		return v, false, err
	case isDigit(lead):
		v, err := d.decodeString(lead)
		return v, false, err
	case lead == listOpen:
		v, err := d.decodeList()
		return v, false, err
	case lead == dictOpen:
		v, err := d.decodeDict()
		return v, false, err
	case lead == endMarker:
		return Value{}, true, nil
	default:
		return Value{}, false, d.fail(ErrMalformed, "unexpected byte "+quoteByte(lead)+" at start of value")
	}
}

// decodeInt parses the body of an integer after 'i'.
// Format: ['-'] <digits> 'e'
func (d *Decoder) decodeInt() (Value, error) {
	var buf [maxDigitRun]byte
	text := buf[:0]

	for {
		b, err := d.readByte()
		if err != nil {
			return Value{}, d.eofError(err, "expected digit or 'e' in integer")
		}

		if b == endMarker {
			break
		}

		// Sign is only valid as the first byte
		if b == '-' {
			if len(text) != 0 {
				return Value{}, d.fail(ErrMalformed, "unexpected '-' inside integer")
			}
		} else if !isDigit(b) {
			return Value{}, d.fail(ErrMalformed, "expected digit or 'e' in integer, got "+quoteByte(b))
		}

		// Catch leading zeros as soon as the second digit arrives
		if isDigit(b) && (string(text) == "0" || string(text) == "-0") {
			return Value{}, d.fail(ErrMalformed, "integer has leading zero")
		}

		if len(text) == maxDigitRun {
			return Value{}, d.fail(ErrOverflow, "integer overflows int64")
		}
		text = append(text, b)
	}

	n, err := parseDigits(text, true)
	if err != nil {
		return Value{}, d.grammarFailure(err)
	}
	return Int(n), nil
}

// decodeString parses a byte string whose first length digit is lead.
// Format: <digits> ':' <content>
func (d *Decoder) decodeString(lead byte) (Value, error) {
	length, err := d.readLength(lead)
	if err != nil {
		return Value{}, err
	}
	content, err := d.readExact(length)
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindString, str: content}, nil
}

// readLength reads the length field of a byte string up to and
// including the separator.
func (d *Decoder) readLength(lead byte) (int64, error) {
	var buf [maxDigitRun]byte
	text := append(buf[:0], lead)

	for {
		b, err := d.readByte()
		if err != nil {
			return 0, d.eofError(err, "expected digit or ':' in string length")
		}

		if b == separator {
			break
		}

		if !isDigit(b) {
			return 0, d.fail(ErrMalformed, "expected digit or ':' in string length, got "+quoteByte(b))
		}

		// Reject leading zeros (except "0:")
		if string(text) == "0" {
			return 0, d.fail(ErrMalformed, "string length has leading zero")
		}

		if len(text) == maxDigitRun {
			return 0, d.fail(ErrOverflow, "string length overflows int64")
		}
		text = append(text, b)
	}

	length, err := parseDigits(text, false)
	if err != nil {
		return 0, d.grammarFailure(err)
	}

	// Check against max length
	if length > d.maxStringLength {
		return 0, d.fail(ErrTooLarge, fmt.Sprintf("string length %d exceeds maximum %d", length, d.maxStringLength))
	}
	return length, nil
}

// readExact reads exactly n content bytes. Memory grows with the data
// actually received, not with the declared length.
func (d *Decoder) readExact(n int64) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}

	if r, ok := d.r.(io.Reader); ok {
		content := make([]byte, 0, min(n, readChunk))
		for int64(len(content)) < n {
			want := min(n-int64(len(content)), readChunk)
			start := len(content)
			content = append(content, make([]byte, want)...)
			got, err := io.ReadFull(r, content[start:])
			d.offset += int64(got)
			if err != nil {
				if err == io.EOF || err == io.ErrUnexpectedEOF {
					return nil, d.fail(ErrTruncated, fmt.Sprintf("unexpected EOF: expected %d bytes, got %d", n, start+got))
				}
				return nil, d.readFailure(err)
			}
		}
		return content, nil
	}

	content := make([]byte, 0, min(n, readChunk))
	for int64(len(content)) < n {
		b, err := d.readByte()
		if err != nil {
			if err == io.EOF {
				return nil, d.fail(ErrTruncated, fmt.Sprintf("unexpected EOF: expected %d bytes, got %d", n, len(content)))
			}
			return nil, d.readFailure(err)
		}
		content = append(content, b)
	}
	return content, nil
}

// decodeList parses list items after 'l' until the end marker.
func (d *Decoder) decodeList() (Value, error) {
	if err := d.enter(); err != nil {
		return Value{}, err
	}
	defer d.leave()

	items := []Value{}
	for {
		item, end, err := d.next()
		if err != nil {
			return Value{}, err
		}
		if end {
			return Value{kind: KindList, items: items}, nil
		}
		items = append(items, item)
	}
}

// decodeDict parses key/value pairs after 'd' until the end marker.
func (d *Decoder) decodeDict() (Value, error) {
	if err := d.enter(); err != nil {
		return Value{}, err
	}
	defer d.leave()

	entries := []Entry{}
	var seen map[string]struct{}
	for {
		key, end, err := d.next()
		if err != nil {
			return Value{}, err
		}
		if end {
			return Value{kind: KindDictionary, dict: entries}, nil
		}
		if key.kind != KindString {
			return Value{}, d.fail(ErrMalformed, "dictionary key must be a string, got "+key.kind.String())
		}

		if seen == nil {
			seen = make(map[string]struct{})
		}
		if _, dup := seen[string(key.str)]; dup {
			return Value{}, d.fail(ErrMalformed, fmt.Sprintf("duplicate dictionary key %q", key.str))
		}
		seen[string(key.str)] = struct{}{}

		if d.sortedKeys && len(entries) > 0 && bytes.Compare(entries[len(entries)-1].Key, key.str) > 0 {
			return Value{}, d.fail(ErrMalformed, fmt.Sprintf("dictionary key %q out of order after %q", key.str, entries[len(entries)-1].Key))
		}

		val, end, err := d.next()
		if err != nil {
			return Value{}, err
		}
		if end {
			return Value{}, d.fail(ErrMalformed, fmt.Sprintf("dictionary key %q has no value", key.str))
		}
		entries = append(entries, Entry{Key: key.str, Value: val})
	}
}

// enter records one more level of nesting.
func (d *Decoder) enter() error {
	d.depth++
	if d.depth > d.maxDepth {
		return d.fail(ErrTooDeep, fmt.Sprintf("nesting depth %d exceeds maximum %d", d.depth, d.maxDepth))
	}
	return nil
}

func (d *Decoder) leave() {
	d.depth--
}

// readByte reads a single byte and tracks position for error reporting.
func (d *Decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err == nil {
		d.offset++
	}
	return b, err
}

func (d *Decoder) fail(sentinel error, reason string) *DecodeError {
	return &DecodeError{
		Offset: d.offset,
		Depth:  d.depth,
		Reason: reason,
		Err:    sentinel,
	}
}

// eofError converts a read error inside a value. EOF there means the
// input was cut short.
func (d *Decoder) eofError(err error, expected string) *DecodeError {
	if err == io.EOF {
		return d.fail(ErrTruncated, "unexpected EOF: "+expected)
	}
	return d.readFailure(err)
}

func (d *Decoder) readFailure(err error) *DecodeError {
	return d.fail(err, "read failed: "+err.Error())
}

func (d *Decoder) grammarFailure(err error) *DecodeError {
	var ge *grammarError
	if errors.As(err, &ge) {
		return d.fail(ge.err, ge.reason)
	}
	return d.fail(ErrMalformed, err.Error())
}
