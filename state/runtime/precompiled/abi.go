package precompiled

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/tronvm/tvm-edge/types"
)

const wordSize = 32

// ArgIterator walks Solidity ABI encoded call data. Every value it returns
// is a view into the original buffer. Reads past the end of the buffer
// fail instead of panicking.
type ArgIterator struct {
	data   []byte
	offset uint64
}

// NewArgIterator creates an iterator positioned at the first head word
func NewArgIterator(data []byte) *ArgIterator {
	return &ArgIterator{data: data}
}

// Offset is the position of the next head word
func (it *ArgIterator) Offset() uint64 {
	return it.offset
}

// slice returns data[offset:offset+size] if it is in bounds
func slice(data []byte, offset, size uint64) ([]byte, bool) {
	l := uint64(len(data))
	if offset > l || size > l-offset {
		return nil, false
	}

	return data[offset : offset+size], true
}

// readSize reads the word at offset as a native size
func readSize(data []byte, offset uint64) (uint64, bool) {
	word, ok := slice(data, offset, wordSize)
	if !ok {
		return 0, false
	}

	v := new(uint256.Int).SetBytes(word)
	if !v.IsUint64() || v.Uint64() > math.MaxInt64 {
		return 0, false
	}

	return v.Uint64(), true
}

// NextWord returns the next 32-byte head word
func (it *ArgIterator) NextWord() ([]byte, bool) {
	return it.NextWords(1)
}

// NextWords returns the next n head words as a single view
func (it *ArgIterator) NextWords(n uint64) ([]byte, bool) {
	if n > math.MaxUint64/wordSize {
		return nil, false
	}

	ret, ok := slice(it.data, it.offset, n*wordSize)
	if !ok {
		return nil, false
	}

	it.offset += n * wordSize

	return ret, true
}

// NextUint256 decodes the next head word as an unsigned integer
func (it *ArgIterator) NextUint256() (*uint256.Int, bool) {
	word, ok := it.NextWord()
	if !ok {
		return nil, false
	}

	return new(uint256.Int).SetBytes(word), true
}

// NextHash decodes the next head word as a bytes32
func (it *ArgIterator) NextHash() (types.Hash, bool) {
	word, ok := it.NextWord()
	if !ok {
		return types.ZeroHash, false
	}

	return types.BytesToHash(word), true
}

// NextAddress decodes the next head word as an address, keeping its low
// 20 bytes
func (it *ArgIterator) NextAddress() (types.Address, bool) {
	word, ok := it.NextWord()
	if !ok {
		return types.ZeroAddress, false
	}

	return types.BytesToAddress(word[wordSize-types.AddressLength:]), true
}

// nextOffset reads a head word pointing into the tail
func (it *ArgIterator) nextOffset() (uint64, bool) {
	offset, ok := readSize(it.data, it.offset)
	if !ok {
		return 0, false
	}

	it.offset += wordSize

	return offset, true
}

// NextBytes follows the next head word to a length prefixed byte string
func (it *ArgIterator) NextBytes() ([]byte, bool) {
	offset, ok := it.nextOffset()
	if !ok {
		return nil, false
	}

	size, ok := readSize(it.data, offset)
	if !ok {
		return nil, false
	}

	return slice(it.data, offset+wordSize, size)
}

// nextArray follows the next head word to a dynamic array. It returns an
// iterator over the array data region and the number of elements. An
// offset past the end of the buffer is an empty array.
func (it *ArgIterator) nextArray() (*ArgIterator, uint64, bool) {
	offset, ok := it.nextOffset()
	if !ok {
		return nil, 0, false
	}

	if offset >= uint64(len(it.data)) {
		return nil, 0, true
	}

	n, ok := readSize(it.data, offset)
	if !ok {
		return nil, 0, false
	}

	region, ok := slice(it.data, offset+wordSize, uint64(len(it.data))-offset-wordSize)
	if !ok {
		return nil, 0, false
	}

	// every element has at least one head word in the region
	if n > uint64(len(region))/wordSize {
		return nil, 0, false
	}

	return NewArgIterator(region), n, true
}

// NextArrayOfBytes decodes a bytes[] value. The element offsets are
// relative to the start of the array data region.
func (it *ArgIterator) NextArrayOfBytes() ([][]byte, bool) {
	inner, n, ok := it.nextArray()
	if !ok {
		return nil, false
	}

	ret := make([][]byte, 0, n)

	for i := uint64(0); i < n; i++ {
		elem, ok := inner.NextBytes()
		if !ok {
			return nil, false
		}

		ret = append(ret, elem)
	}

	return ret, true
}

// NextArrayOfWords decodes a bytes32[] (or address[]) value
func (it *ArgIterator) NextArrayOfWords() ([][]byte, bool) {
	inner, n, ok := it.nextArray()
	if !ok {
		return nil, false
	}

	ret := make([][]byte, 0, n)

	for i := uint64(0); i < n; i++ {
		elem, ok := inner.NextWord()
		if !ok {
			return nil, false
		}

		ret = append(ret, elem)
	}

	return ret, true
}
