// Package bencode implements encoding and decoding of bencoded values.
//
// Bencode is a small, self-describing byte format with four value kinds:
//
//	i42e          // integer 42
//	4:spam        // byte string "spam"
//	l4:spami42ee  // list ["spam", 42]
//	d3:fooi42ee   // dictionary {"foo": 42}
//
// Every value has exactly one valid encoding: integers have no leading
// zeros, no '+' and no "-0", and byte string lengths have no leading zeros.
// Encoding a decoded value therefore reproduces the input bytes exactly.
//
// # Basic Usage
//
// Encoding:
//
//	v := bencode.Dict(
//		bencode.Pair("name", bencode.Str("spam")),
//		bencode.Pair("size", bencode.Int(42)),
//	)
//	data, err := bencode.Marshal(v) // "d4:name4:spam4:sizei42ee"
//
// Decoding a single value:
//
//	v, err := bencode.Unmarshal(data)
//
// Decoding a stream of values:
//
//	dec := bencode.NewDecoder(bufio.NewReader(conn))
//	for {
//		v, err := dec.Decode()
//		if err == io.EOF {
//			break
//		}
//		...
//	}
//
// # Dictionary Key Order
//
// The format requires dictionary keys to be sorted, but many producers
// in the wild do not sort. By default the decoder accepts any order as
// long as keys are unique, and the encoder writes entries in the order
// they are stored, so decode followed by encode is lossless. Use
// RequireSortedKeys to reject unsorted input and SortKeys to emit
// sorted output.
//
// # Design Principles
//
//   - No internal buffering: Decoder uses io.ByteReader, Encoder uses io.Writer
//   - One byte of lookahead, no backtracking
//   - Errors carry the byte offset and nesting depth where decoding failed
//
// # Security
//
// MaxDepth (default 512) bounds recursion on deeply nested input and
// MaxStringLength (default 64MB) bounds the allocation a single length
// field can request.
package bencode
