package bencode

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"
)

func TestDecoder_Decode_Integer(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"i0e", 0},
		{"i42e", 42},
		{"i-1e", -1},
		{"i-42e", -42},
		{"i9223372036854775807e", math.MaxInt64},
		{"i-9223372036854775808e", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Unmarshal([]byte(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			n, ok := v.Int()
			if !ok {
				t.Fatalf("got %s, want integer", v.Kind())
			}
			if n != tt.want {
				t.Errorf("got %d, want %d", n, tt.want)
			}
		})
	}
}

func TestDecoder_Decode_Integer_Malformed(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"i-0e", ErrMalformed},
		{"i007e", ErrMalformed},
		{"i00e", ErrMalformed},
		{"i-01e", ErrMalformed},
		{"i+5e", ErrMalformed},
		{"ie", ErrMalformed},
		{"i-e", ErrMalformed},
		{"i--5e", ErrMalformed},
		{"i5-e", ErrMalformed},
		{"i4.2e", ErrMalformed},
		{"i 4e", ErrMalformed},
		{"i42", ErrTruncated},
		{"i", ErrTruncated},
		{"i9223372036854775808e", ErrOverflow},
		{"i-9223372036854775809e", ErrOverflow},
		{"i123456789012345678901234567890e", ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("got error %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecoder_Decode_String(t *testing.T) {
	v, err := Unmarshal([]byte("4:spam"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := v.Bytes()
	if !ok {
		t.Fatalf("got %s, want string", v.Kind())
	}
	if string(b) != "spam" {
		t.Errorf("got %q, want %q", b, "spam")
	}
}

func TestDecoder_Decode_EmptyString(t *testing.T) {
	v, err := Unmarshal([]byte("0:"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, ok := v.Bytes()
	if !ok {
		t.Fatalf("got %s, want string", v.Kind())
	}
	if len(b) != 0 {
		t.Errorf("expected empty string, got %d bytes", len(b))
	}
}

func TestDecoder_Decode_BinaryString(t *testing.T) {
	input := []byte("4:\x00\x01\xFF\xFE")
	v, err := Unmarshal(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := v.Bytes()
	want := []byte{0x00, 0x01, 0xFF, 0xFE}
	if !bytes.Equal(b, want) {
		t.Errorf("got %v, want %v", b, want)
	}
}

func TestDecoder_Decode_StringContainingMarkers(t *testing.T) {
	v, err := Unmarshal([]byte("6:i1e:de"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, _ := v.Text(); s != "i1e:de" {
		t.Errorf("got %q, want %q", s, "i1e:de")
	}
}

func TestDecoder_Decode_String_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"truncated content", "4:sp", ErrTruncated},
		{"missing separator", "4", ErrTruncated},
		{"leading zero", "04:spam", ErrMalformed},
		{"double zero", "00:", ErrMalformed},
		{"non-digit in length", "4x:spam", ErrMalformed},
		{"whitespace in length", "4 :spam", ErrMalformed},
		{"overflow", "99999999999999999999:", ErrOverflow},
		{"absurd length", "123456789012345678901234567890:", ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("got error %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecoder_Decode_List(t *testing.T) {
	v, err := Unmarshal([]byte("l4:spami42ee"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := List(Str("spam"), Int(42))
	if !v.Equal(want) {
		t.Errorf("got %s, want %s", v, want)
	}
}

func TestDecoder_Decode_EmptyContainers(t *testing.T) {
	for input, want := range map[string]Value{
		"le":     List(),
		"de":     Dict(),
		"llelee": List(List(), List()),
		"d0:dee": Dict(Pair("", Dict())),
	} {
		v, err := Unmarshal([]byte(input))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", input, err)
		}
		if !v.Equal(want) {
			t.Errorf("%s: got %s, want %s", input, v, want)
		}
	}
}

func TestDecoder_Decode_Dictionary(t *testing.T) {
	v, err := Unmarshal([]byte("d3:bar4:spam3:fooi42ee"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bar, ok := v.Get("bar")
	if !ok {
		t.Fatal("missing key bar")
	}
	if s, _ := bar.Text(); s != "spam" {
		t.Errorf("bar: got %q, want %q", s, "spam")
	}

	foo, ok := v.Get("foo")
	if !ok {
		t.Fatal("missing key foo")
	}
	if n, _ := foo.Int(); n != 42 {
		t.Errorf("foo: got %d, want 42", n)
	}
}

func TestDecoder_Decode_Dictionary_PreservesOrder(t *testing.T) {
	v, err := Unmarshal([]byte("d3:zzzi1e3:aaai2ee"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, _ := v.Dict()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if string(entries[0].Key) != "zzz" || string(entries[1].Key) != "aaa" {
		t.Errorf("got keys %q, %q; want zzz, aaa", entries[0].Key, entries[1].Key)
	}
}

func TestDecoder_Decode_Dictionary_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"integer key", "di1ei2ee", ErrMalformed},
		{"list key", "dlei2ee", ErrMalformed},
		{"dictionary key", "ddei2ee", ErrMalformed},
		{"dangling key", "d3:fooe", ErrMalformed},
		{"duplicate key", "d3:fooi1e3:fooi2ee", ErrMalformed},
		{"unterminated", "d3:fooi1e", ErrTruncated},
		{"truncated value", "d3:foo", ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("got error %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecoder_Decode_RequireSortedKeys(t *testing.T) {
	if _, err := Unmarshal([]byte("d3:bari1e3:fooi2ee"), RequireSortedKeys()); err != nil {
		t.Errorf("sorted input: unexpected error: %v", err)
	}

	_, err := Unmarshal([]byte("d3:fooi1e3:bari2ee"), RequireSortedKeys())
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("unsorted input: got %v, want ErrMalformed", err)
	}

	// Sorting is bytewise, so "B" < "a"
	if _, err := Unmarshal([]byte("d1:Bi1e1:ai2ee"), RequireSortedKeys()); err != nil {
		t.Errorf("bytewise order: unexpected error: %v", err)
	}

	// Nested dictionaries are checked too
	_, err = Unmarshal([]byte("d1:ad1:bi1e1:ai2eee"), RequireSortedKeys())
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("nested unsorted input: got %v, want ErrMalformed", err)
	}
}

func TestDecoder_Decode_UnexpectedEndMarker(t *testing.T) {
	_, err := Unmarshal([]byte("e"))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("got %v, want ErrMalformed", err)
	}
}

func TestDecoder_Decode_UnknownLeadByte(t *testing.T) {
	for _, input := range []string{"x", " i1e", "-1", ":", "\x00"} {
		_, err := Unmarshal([]byte(input))
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%q: got %v, want ErrMalformed", input, err)
		}
	}
}

func TestDecoder_Decode_UnterminatedList(t *testing.T) {
	for _, input := range []string{"l", "li1e", "l4:spam", "lli1ee"} {
		_, err := Unmarshal([]byte(input))
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("%q: got %v, want ErrTruncated", input, err)
		}
	}
}

func TestDecoder_Decode_EOF(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{}))
	_, err := dec.Decode()
	if err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestDecoder_Decode_Multiple(t *testing.T) {
	input := "i1e4:spamli2ee"
	dec := NewDecoder(bytes.NewReader([]byte(input)))

	want := []Value{Int(1), Str("spam"), List(Int(2))}
	for i, w := range want {
		v, err := dec.Decode()
		if err != nil {
			t.Fatalf("value %d: unexpected error: %v", i, err)
		}
		if !v.Equal(w) {
			t.Errorf("value %d: got %s, want %s", i, v, w)
		}
	}

	_, err := dec.Decode()
	if err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestDecode_EmptyInputIsTruncated(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("Decode: got %v, want ErrTruncated", err)
	}
	_, err = Unmarshal(nil)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("Unmarshal: got %v, want ErrTruncated", err)
	}
}

func TestDecode_PlainReader(t *testing.T) {
	// iotest.OneByteReader hides io.ByteReader, forcing the bufio wrapper
	v, err := Decode(iotest.OneByteReader(strings.NewReader("l4:spami42ee")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(List(Str("spam"), Int(42))) {
		t.Errorf("got %s", v)
	}
}

func TestUnmarshal_TrailingData(t *testing.T) {
	_, err := Unmarshal([]byte("i1ei2e"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("got %v, want ErrMalformed", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if de.Offset != 3 {
		t.Errorf("got offset %d, want 3", de.Offset)
	}
}

func TestDecoder_ErrorOffsetAndDepth(t *testing.T) {
	_, err := Unmarshal([]byte("ll4:spamxee"))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
	if de.Offset != 9 {
		t.Errorf("got offset %d, want 9", de.Offset)
	}
	if de.Depth != 2 {
		t.Errorf("got depth %d, want 2", de.Depth)
	}
	if !strings.Contains(de.Error(), "'x'") {
		t.Errorf("error message should name the bad byte: %v", de)
	}
}

func TestDecoder_MaxDepth(t *testing.T) {
	deep := strings.Repeat("l", 10) + strings.Repeat("e", 10)

	if _, err := Unmarshal([]byte(deep), MaxDepth(10)); err != nil {
		t.Errorf("depth 10 with limit 10: unexpected error: %v", err)
	}

	_, err := Unmarshal([]byte(deep), MaxDepth(9))
	if !errors.Is(err, ErrTooDeep) {
		t.Errorf("depth 10 with limit 9: got %v, want ErrTooDeep", err)
	}
}

func TestDecoder_DefaultMaxDepth(t *testing.T) {
	deep := strings.Repeat("l", defaultMaxDepth+1) + strings.Repeat("e", defaultMaxDepth+1)
	_, err := Unmarshal([]byte(deep))
	if !errors.Is(err, ErrTooDeep) {
		t.Errorf("got %v, want ErrTooDeep", err)
	}
}

func TestDecoder_MaxStringLength(t *testing.T) {
	if _, err := Unmarshal([]byte("5:hello"), MaxStringLength(5)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	_, err := Unmarshal([]byte("6:hello!"), MaxStringLength(5))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("got %v, want ErrTooLarge", err)
	}
}

func TestDecoder_HugeDeclaredLengthDoesNotAllocate(t *testing.T) {
	// Declares 1GB but supplies 3 bytes; must fail on EOF, not allocate
	_, err := Unmarshal([]byte("1000000000:abc"), MaxStringLength(math.MaxInt64))
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("got %v, want ErrTruncated", err)
	}
}

func TestDecoder_LargeStringAcrossChunks(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefgh"), readChunk/4)
	var buf bytes.Buffer
	buf.WriteString(strconv.Itoa(len(payload)) + ":")
	buf.Write(payload)

	v, err := Decode(bufio.NewReaderSize(&buf, 16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := v.Bytes()
	if !bytes.Equal(b, payload) {
		t.Errorf("payload mismatch: got %d bytes, want %d", len(b), len(payload))
	}
}

// byteOnlyReader implements io.ByteReader without io.Reader.
type byteOnlyReader struct {
	r *bytes.Reader
}

func (b *byteOnlyReader) ReadByte() (byte, error) {
	return b.r.ReadByte()
}

func TestDecoder_ByteOnlyReader(t *testing.T) {
	dec := NewDecoder(&byteOnlyReader{r: bytes.NewReader([]byte("d4:spam4:eggse"))})
	v, err := dec.Decode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Equal(Dict(Pair("spam", Str("eggs")))) {
		t.Errorf("got %s", v)
	}
	if dec.Offset() != 14 {
		t.Errorf("got offset %d, want 14", dec.Offset())
	}

	dec = NewDecoder(&byteOnlyReader{r: bytes.NewReader([]byte("4:sp"))})
	_, err = dec.Decode()
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("got %v, want ErrTruncated", err)
	}
}

func TestDecoder_ReadErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	r := bufio.NewReader(io.MultiReader(strings.NewReader("l4:sp"), iotest.ErrReader(boom)))
	_, err := NewDecoder(r).Decode()
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped boom", err)
	}
}
