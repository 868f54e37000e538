package evm

import (
	"math"
	"strings"

	"github.com/holiman/uint256"

	"github.com/tronvm/tvm-edge/helper/common"
	"github.com/tronvm/tvm-edge/helper/hex"
)

// maxMemorySize bounds memory regardless of the configured limit,
// it is the largest size whose expansion gas still fits in 64 bits
const maxMemorySize = 0x1FFFFFFFE0

// Memory is the byte addressed scratch memory of a machine
type Memory struct {
	store []byte
	limit uint64
}

func newMemory(limit uint64) *Memory {
	if limit > maxMemorySize {
		limit = maxMemorySize
	}

	return &Memory{store: []byte{}, limit: limit}
}

func (m *Memory) Len() int {
	return len(m.store)
}

// Data returns the memory content. The slice aliases the memory.
func (m *Memory) Data() []byte {
	return m.store
}

func roundUpToWord(n uint64) uint64 {
	return common.WordCount(n) * 32
}

// Resize grows the memory, in words, to hold at least size bytes
func (m *Memory) Resize(size uint64) error {
	if uint64(len(m.store)) >= size {
		return nil
	}

	if size > m.limit {
		return ErrInvalidRange
	}

	m.store = common.ExtendByteSlice(m.store, int(roundUpToWord(size)))

	return nil
}

// ResizeOffset grows the memory to cover [offset, offset+length). A zero
// length never touches the memory and accepts any offset.
func (m *Memory) ResizeOffset(offset, length *uint256.Int) (uint64, uint64, error) {
	if length.IsZero() {
		return 0, 0, nil
	}

	if !offset.IsUint64() || !length.IsUint64() {
		return 0, 0, ErrInvalidRange
	}

	o, l := offset.Uint64(), length.Uint64()

	end, overflow := common.SafeAdd(o, l)
	if overflow || end > math.MaxInt64 {
		return 0, 0, ErrInvalidRange
	}

	if err := m.Resize(end); err != nil {
		return 0, 0, err
	}

	return o, l, nil
}

// Get returns a copy of [offset, offset+length), zero filled past the end
func (m *Memory) Get(offset, length uint64) []byte {
	cpy := make([]byte, length)
	if length == 0 || offset >= uint64(len(m.store)) {
		return cpy
	}

	end := offset + length
	if end > uint64(len(m.store)) || end < offset {
		end = uint64(len(m.store))
	}

	copy(cpy, m.store[offset:end])

	return cpy
}

// Set writes value at offset. The memory must already be resized.
func (m *Memory) Set(offset uint64, value []byte) {
	copy(m.store[offset:offset+uint64(len(value))], value)
}

// Set32 writes a word at offset. The memory must already be resized.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	b := val.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// CopyLarge copies length bytes of data starting at dataOffset into memory
// at memOffset, padding with zeroes when data runs out. The memory must
// already be resized.
func (m *Memory) CopyLarge(memOffset uint64, dataOffset *uint256.Int, length uint64, data []byte) {
	if length == 0 {
		return
	}

	dst := m.store[memOffset : memOffset+length]

	if !dataOffset.IsUint64() || dataOffset.Uint64() >= uint64(len(data)) {
		for i := range dst {
			dst[i] = 0
		}

		return
	}

	n := copy(dst, data[dataOffset.Uint64():])
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func (m *Memory) Show() string {
	str := []string{}

	for i := 0; i < len(m.store); i += 16 {
		j := i + 16
		if j > len(m.store) {
			j = len(m.store)
		}

		str = append(str, hex.EncodeToHex(m.store[i:j]))
	}

	return strings.Join(str, "\n")
}
