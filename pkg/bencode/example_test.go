package bencode_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/epithet-ssh/bencode/pkg/bencode"
)

func ExampleMarshal() {
	v := bencode.Dict(
		bencode.Pair("bar", bencode.Str("spam")),
		bencode.Pair("foo", bencode.Int(42)),
	)

	data, err := bencode.Marshal(v)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(data))
	// Output: d3:bar4:spam3:fooi42ee
}

func ExampleUnmarshal() {
	v, err := bencode.Unmarshal([]byte("l4:spami42ee"))
	if err != nil {
		panic(err)
	}
	fmt.Println(v.Kind(), v.Len(), v)
	// Output: list 2 ["spam", 42]
}

func ExampleUnmarshal_error() {
	_, err := bencode.Unmarshal([]byte("i007e"))
	fmt.Println(errors.Is(err, bencode.ErrMalformed))
	fmt.Println(err)
	// Output:
	// true
	// bencode: decode error at offset 3 (depth 0): integer has leading zero
}

func ExampleDecoder_Decode() {
	data := []byte("i1e4:spamle")
	dec := bencode.NewDecoder(bytes.NewReader(data))

	for {
		v, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s %s\n", v.Kind(), v)
	}
	// Output:
	// integer 1
	// string "spam"
	// list []
}

func ExampleEncoder_Encode() {
	enc := bencode.NewEncoder(os.Stdout, bencode.SortKeys())

	enc.Encode(bencode.Dict(
		bencode.Pair("zebra", bencode.Int(1)),
		bencode.Pair("apple", bencode.List(bencode.Str("x"))),
	))
	// Output: d5:applel1:xe5:zebrai1ee
}

func ExampleRequireSortedKeys() {
	_, err := bencode.Unmarshal([]byte("d1:bi1e1:ai2ee"), bencode.RequireSortedKeys())
	fmt.Println(err)
	// Output: bencode: decode error at offset 10 (depth 1): dictionary key "a" out of order after "b"
}
