package transcode

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/epithet-ssh/bencode/pkg/bencode"
	"github.com/tidwall/jsonc"
)

// WriteJSON writes v as a single line of JSON followed by a newline. A
// non-empty indent pretty-prints with that indent per level.
func WriteJSON(w io.Writer, v bencode.Value, indent string) error {
	var buf bytes.Buffer
	if err := appendJSON(&buf, v); err != nil {
		return err
	}

	out := buf.Bytes()
	if indent != "" {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, out, "", indent); err != nil {
			return fmt.Errorf("failed to indent JSON: %w", err)
		}
		out = pretty.Bytes()
	}
	out = append(out, '\n')

	_, err := w.Write(out)
	return err
}

func appendJSON(buf *bytes.Buffer, v bencode.Value) error {
	switch v.Kind() {
	case bencode.KindInteger:
		n, _ := v.Int()
		buf.WriteString(strconv.FormatInt(n, 10))

	case bencode.KindString:
		b, _ := v.Bytes()
		if utf8.Valid(b) {
			return appendJSONString(buf, string(b))
		}
		buf.WriteString(`{"` + base64Field + `":"`)
		buf.WriteString(base64.StdEncoding.EncodeToString(b))
		buf.WriteString(`"}`)

	case bencode.KindList:
		items, _ := v.List()
		buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')

	case bencode.KindDictionary:
		entries, _ := v.Dict()
		// A lone "$base64" key would read back as a byte string
		wrapperLike := len(entries) == 1 && string(entries[0].Key) == base64Field
		buf.WriteByte('{')
		for i, e := range entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key := encodeKey(e.Key)
			if wrapperLike {
				key = base64KeyPrefix + base64.StdEncoding.EncodeToString(e.Key)
			}
			if err := appendJSONString(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := appendJSON(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')

	default:
		return fmt.Errorf("cannot convert %s value to JSON", v.Kind())
	}
	return nil
}

func appendJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

// FromJSON builds a value from JSON. Comments and trailing commas are
// accepted. Object key order is kept. Numbers must be integers that fit
// in an int64; booleans and null are rejected with ErrUnsupported.
func FromJSON(data []byte) (bencode.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	v, err := readJSON(dec)
	if err != nil {
		return bencode.Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return bencode.Value{}, errors.New("failed to parse JSON: trailing data after value")
	}
	return v, nil
}

func readJSON(dec *json.Decoder) (bencode.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return bencode.Value{}, fmt.Errorf("failed to parse JSON: %w", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			return readJSONArray(dec)
		case '{':
			return readJSONObject(dec)
		}
		return bencode.Value{}, fmt.Errorf("failed to parse JSON: unexpected %q", t)
	case json.Number:
		n, err := strconv.ParseInt(t.String(), 10, 64)
		if err != nil {
			return bencode.Value{}, fmt.Errorf("%w: number %s is not a 64-bit integer", ErrUnsupported, t)
		}
		return bencode.Int(n), nil
	case string:
		return bencode.Str(t), nil
	case bool:
		return bencode.Value{}, fmt.Errorf("%w: boolean %v", ErrUnsupported, t)
	case nil:
		return bencode.Value{}, fmt.Errorf("%w: null", ErrUnsupported)
	default:
		return bencode.Value{}, fmt.Errorf("failed to parse JSON: unexpected token %v", t)
	}
}

func readJSONArray(dec *json.Decoder) (bencode.Value, error) {
	items := []bencode.Value{}
	for dec.More() {
		item, err := readJSON(dec)
		if err != nil {
			return bencode.Value{}, err
		}
		items = append(items, item)
	}
	// Closing ']'
	if _, err := dec.Token(); err != nil {
		return bencode.Value{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return bencode.List(items...), nil
}

func readJSONObject(dec *json.Decoder) (bencode.Value, error) {
	var entries []bencode.Entry
	var rawKeys []string
	seen := make(map[string]struct{})

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return bencode.Value{}, fmt.Errorf("failed to parse JSON: %w", err)
		}
		rawKey, ok := tok.(string)
		if !ok {
			return bencode.Value{}, fmt.Errorf("failed to parse JSON: object key %v is not a string", tok)
		}
		key, err := decodeKey(rawKey)
		if err != nil {
			return bencode.Value{}, fmt.Errorf("invalid base64 key %q: %w", rawKey, err)
		}
		if _, dup := seen[string(key)]; dup {
			return bencode.Value{}, fmt.Errorf("duplicate object key %q", key)
		}
		seen[string(key)] = struct{}{}

		val, err := readJSON(dec)
		if err != nil {
			return bencode.Value{}, err
		}
		entries = append(entries, bencode.Entry{Key: key, Value: val})
		rawKeys = append(rawKeys, rawKey)
	}
	// Closing '}'
	if _, err := dec.Token(); err != nil {
		return bencode.Value{}, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if len(entries) == 1 && rawKeys[0] == base64Field {
		encoded, ok := entries[0].Value.Text()
		if !ok {
			return bencode.Value{}, fmt.Errorf("%q must hold a string", base64Field)
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return bencode.Value{}, fmt.Errorf("invalid %q content: %w", base64Field, err)
		}
		return bencode.Bytes(raw), nil
	}
	return bencode.Dict(entries...), nil
}
