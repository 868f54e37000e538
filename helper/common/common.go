package common

import (
	"math"
)

// Min returns the strictly lower number
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}

	return b
}

// Max returns the strictly bigger number
func Max(a, b uint64) uint64 {
	if a > b {
		return a
	}

	return b
}

// SafeAdd returns a+b and whether the addition overflowed
func SafeAdd(a, b uint64) (uint64, bool) {
	c := a + b

	return c, c < a
}

// SafeMul returns a*b and whether the multiplication overflowed
func SafeMul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}

	return a * b, b > math.MaxUint64/a
}

// WordCount returns the number of 32 byte words needed to hold size bytes
func WordCount(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}

	return (size + 31) / 32
}

// ExtendByteSlice extends given byte slice by needLength parameter and trims it
func ExtendByteSlice(b []byte, needLength int) []byte {
	b = b[:cap(b)]

	if n := needLength - len(b); n > 0 {
		b = append(b, make([]byte, n)...)
	}

	return b[:needLength]
}

// LeftPad returns buf left padded with zeroes up to n bytes.
// Slices already longer than n are returned untouched.
func LeftPad(buf []byte, n int) []byte {
	l := len(buf)
	if l >= n {
		return buf
	}

	tmp := make([]byte, n)
	copy(tmp[n-l:], buf)

	return tmp
}

// RightPad returns buf right padded with zeroes up to n bytes
func RightPad(buf []byte, n int) []byte {
	l := len(buf)
	if l >= n {
		return buf
	}

	tmp := make([]byte, n)
	copy(tmp, buf)

	return tmp
}
