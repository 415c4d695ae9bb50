package bencode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "integer", KindInteger.String())
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "list", KindList.String())
	assert.Equal(t, "dictionary", KindDictionary.String())
	assert.Equal(t, "invalid", Kind(99).String())
}

func TestValue_ZeroIsInvalid(t *testing.T) {
	var v Value
	assert.False(t, v.IsValid())
	assert.Equal(t, KindInvalid, v.Kind())
	assert.Equal(t, "<invalid>", v.String())
}

func TestValue_Accessors(t *testing.T) {
	n, ok := Int(7).Int()
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	_, ok = Str("x").Int()
	assert.False(t, ok)

	b, ok := Str("spam").Bytes()
	assert.True(t, ok)
	assert.Equal(t, []byte("spam"), b)

	_, ok = Int(1).Bytes()
	assert.False(t, ok)

	items, ok := List(Int(1), Int(2)).List()
	assert.True(t, ok)
	assert.Len(t, items, 2)

	_, ok = Dict().List()
	assert.False(t, ok)

	entries, ok := Dict(Pair("k", Int(1))).Dict()
	assert.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "k", string(entries[0].Key))

	_, ok = List().Dict()
	assert.False(t, ok)
}

func TestValue_Len(t *testing.T) {
	assert.Equal(t, 0, Int(12345).Len())
	assert.Equal(t, 4, Str("spam").Len())
	assert.Equal(t, 3, List(Int(1), Int(2), Int(3)).Len())
	assert.Equal(t, 1, Dict(Pair("a", Int(1))).Len())
}

func TestValue_IndexAndGet(t *testing.T) {
	l := List(Str("a"), Int(2))
	assert.True(t, l.Index(1).Equal(Int(2)))
	assert.Panics(t, func() { Int(1).Index(0) })

	d := Dict(Pair("a", Int(1)), Pair("b", Int(2)))
	v, ok := d.Get("b")
	assert.True(t, ok)
	assert.True(t, v.Equal(Int(2)))

	_, ok = d.Get("c")
	assert.False(t, ok)

	_, ok = l.Get("a")
	assert.False(t, ok)
}

func TestValue_ConstructorsCopy(t *testing.T) {
	raw := []byte("spam")
	v := Bytes(raw)
	raw[0] = 'S'
	b, _ := v.Bytes()
	assert.Equal(t, "spam", string(b))

	items := []Value{Int(1)}
	l := List(items...)
	items[0] = Int(2)
	assert.True(t, l.Index(0).Equal(Int(1)))

	key := []byte("k")
	d := Dict(Entry{Key: key, Value: Int(1)})
	key[0] = 'x'
	_, ok := d.Get("k")
	assert.True(t, ok)
}

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same int", Int(1), Int(1), true},
		{"different int", Int(1), Int(2), false},
		{"int vs string", Int(1), Str("1"), false},
		{"nil vs empty bytes", Bytes(nil), Str(""), true},
		{"same list", List(Int(1), Str("a")), List(Int(1), Str("a")), true},
		{"list order matters", List(Int(1), Int(2)), List(Int(2), Int(1)), false},
		{"list length", List(Int(1)), List(Int(1), Int(1)), false},
		{"same dict", Dict(Pair("a", Int(1))), Dict(Pair("a", Int(1))), true},
		{"dict value differs", Dict(Pair("a", Int(1))), Dict(Pair("a", Int(2))), false},
		{"dict key differs", Dict(Pair("a", Int(1))), Dict(Pair("b", Int(1))), false},
		{
			"dict order matters",
			Dict(Pair("a", Int(1)), Pair("b", Int(2))),
			Dict(Pair("b", Int(2)), Pair("a", Int(1))),
			false,
		},
		{"zero values", Value{}, Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestValue_String(t *testing.T) {
	v := List(
		Str("spam"),
		Int(-42),
		Bytes([]byte{0x00, 0xff}),
		Dict(Pair("k", List())),
	)
	assert.Equal(t, `["spam", -42, <00ff>, {"k": []}]`, v.String())
}
