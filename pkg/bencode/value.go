package bencode

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind identifies which of the four bencode variants a Value holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInteger
	KindString
	KindList
	KindDictionary
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDictionary:
		return "dictionary"
	default:
		return "invalid"
	}
}

// Value is a decoded or constructed bencode value.
//
// Values are immutable. Constructors copy their arguments, and the slices
// returned by accessors must not be modified. The zero Value is invalid
// and cannot be encoded.
type Value struct {
	kind  Kind
	num   int64
	str   []byte
	items []Value
	dict  []Entry
}

// Entry is one key/value pair of a dictionary.
type Entry struct {
	Key   []byte
	Value Value
}

// Int returns an integer value.
func Int(n int64) Value {
	return Value{kind: KindInteger, num: n}
}

// Bytes returns a byte string value holding a copy of b.
func Bytes(b []byte) Value {
	return Value{kind: KindString, str: bytes.Clone(nonNil(b))}
}

// Str returns a byte string value holding the bytes of s.
func Str(s string) Value {
	return Value{kind: KindString, str: []byte(s)}
}

// List returns a list of the given items, in order.
func List(items ...Value) Value {
	return Value{kind: KindList, items: append([]Value{}, items...)}
}

// Dict returns a dictionary of the given entries, in order.
// Keys are not checked here; the encoder rejects repeated keys.
func Dict(entries ...Entry) Value {
	dict := make([]Entry, len(entries))
	for i, e := range entries {
		dict[i] = Entry{Key: bytes.Clone(nonNil(e.Key)), Value: e.Value}
	}
	return Value{kind: KindDictionary, dict: dict}
}

// Pair is shorthand for a dictionary entry with a string key.
func Pair(key string, v Value) Entry {
	return Entry{Key: []byte(key), Value: v}
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether v holds one of the four variants.
func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

// Int returns the integer held by v.
func (v Value) Int() (int64, bool) {
	return v.num, v.kind == KindInteger
}

// Bytes returns the content of a byte string.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != KindString {
		return nil, false
	}
	return v.str, true
}

// Text returns the content of a byte string as a Go string.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return string(v.str), true
}

// List returns the items of a list.
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.items, true
}

// Dict returns the entries of a dictionary in stored order.
func (v Value) Dict() ([]Entry, bool) {
	if v.kind != KindDictionary {
		return nil, false
	}
	return v.dict, true
}

// Len returns the number of bytes, items or entries in v, and 0 for integers.
func (v Value) Len() int {
	switch v.kind {
	case KindString:
		return len(v.str)
	case KindList:
		return len(v.items)
	case KindDictionary:
		return len(v.dict)
	default:
		return 0
	}
}

// Index returns the i'th item of a list. It panics if v is not a list or
// i is out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindList {
		panic("bencode: Index called on " + v.kind.String())
	}
	return v.items[i]
}

// Get looks up key in a dictionary.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindDictionary {
		return Value{}, false
	}
	for _, e := range v.dict {
		if string(e.Key) == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Equal reports whether v and other are structurally identical.
// List items and dictionary entries are compared in order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.num == other.num
	case KindString:
		return bytes.Equal(v.str, other.str)
	case KindList:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindDictionary:
		if len(v.dict) != len(other.dict) {
			return false
		}
		for i := range v.dict {
			if !bytes.Equal(v.dict[i].Key, other.dict[i].Key) {
				return false
			}
			if !v.dict[i].Value.Equal(other.dict[i].Value) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders v for diagnostics. It is not the wire form.
//
//	[ "spam", 42, {"k": <00ff>} ]
func (v Value) String() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

func (v Value) render(sb *strings.Builder) {
	switch v.kind {
	case KindInteger:
		sb.WriteString(strconv.FormatInt(v.num, 10))
	case KindString:
		renderBytes(sb, v.str)
	case KindList:
		sb.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.render(sb)
		}
		sb.WriteByte(']')
	case KindDictionary:
		sb.WriteByte('{')
		for i, e := range v.dict {
			if i > 0 {
				sb.WriteString(", ")
			}
			renderBytes(sb, e.Key)
			sb.WriteString(": ")
			e.Value.render(sb)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString("<invalid>")
	}
}

// renderBytes quotes printable text and hex-dumps anything else.
func renderBytes(sb *strings.Builder, b []byte) {
	if utf8.Valid(b) && isPrintable(b) {
		sb.WriteString(strconv.Quote(string(b)))
		return
	}
	fmt.Fprintf(sb, "<%x>", b)
}

func isPrintable(b []byte) bool {
	for _, r := range string(b) {
		if !strconv.IsPrint(r) && r != '\n' && r != '\t' {
			return false
		}
	}
	return true
}
