package bencode

import "math"

// maxDigitRun bounds how many bytes an integer or length field may
// accumulate. "-9223372036854775808" is the longest valid run.
const maxDigitRun = 20

// grammarError is returned by parseDigits. The decoder turns it into a
// DecodeError carrying the stream position.
type grammarError struct {
	reason string
	err    error
}

func (e *grammarError) Error() string {
	return e.reason
}

// isDigit returns true if b is an ASCII decimal digit.
func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// parseDigits parses a decimal run as used by integers (allowSign) and
// byte string lengths (digits only). Both share the same rules: at least
// one digit, no leading zero unless the run is exactly "0", and the
// value must fit in an int64. With allowSign a single leading '-' is
// accepted, but "-0" is not.
func parseDigits(text []byte, allowSign bool) (int64, error) {
	if len(text) == 0 {
		return 0, &grammarError{reason: "empty digit run", err: ErrMalformed}
	}

	negative := false
	digits := text
	if text[0] == '-' {
		if !allowSign {
			return 0, &grammarError{reason: "length field cannot be negative", err: ErrMalformed}
		}
		negative = true
		digits = text[1:]
	}

	if len(digits) == 0 {
		return 0, &grammarError{reason: "sign without digits", err: ErrMalformed}
	}
	for _, b := range digits {
		if !isDigit(b) {
			return 0, &grammarError{reason: "non-digit " + quoteByte(b) + " in number", err: ErrMalformed}
		}
	}
	if digits[0] == '0' {
		if len(digits) > 1 {
			return 0, &grammarError{reason: "number has leading zero", err: ErrMalformed}
		}
		if negative {
			return 0, &grammarError{reason: "negative zero is not allowed", err: ErrMalformed}
		}
		return 0, nil
	}

	// Accumulate as uint64 so math.MinInt64 is representable.
	limit := uint64(math.MaxInt64)
	if negative {
		limit++
	}
	var n uint64
	for _, b := range digits {
		d := uint64(b - '0')
		if n > (limit-d)/10 {
			return 0, &grammarError{reason: "number " + string(text) + " overflows int64", err: ErrOverflow}
		}
		n = n*10 + d
	}

	if negative {
		return -int64(n - 1) - 1, nil
	}
	return int64(n), nil
}

// quoteByte renders b for error messages.
func quoteByte(b byte) string {
	if b >= 0x20 && b < 0x7f {
		return "'" + string(rune(b)) + "'"
	}
	const hex = "0123456789abcdef"
	return "0x" + string([]byte{hex[b>>4], hex[b&0x0f]})
}
