package evm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tronvm/tvm-edge/helper/common"
	"github.com/tronvm/tvm-edge/helper/hex"
)

func expectLength(t *testing.T, m *Memory, len int) {
	t.Helper()

	if m.Len() != len {
		t.Fatalf("expected length %d but found %d", len, m.Len())
	}
}

func c(i uint64) *uint256.Int {
	return uint256.NewInt(i)
}

func set(t *testing.T, m *Memory, offset, length uint64, data []byte) {
	t.Helper()

	o, _, err := m.ResizeOffset(c(offset), c(length))
	require.NoError(t, err)

	m.Set(o, data)
}

func TestMemorySetResize(t *testing.T) {
	m := newMemory(1024)
	data := hex.MustDecodeHex("0x123456")

	set(t, m, 0, 3, data)
	expectLength(t, m, 32)

	assert.Equal(t, common.RightPad(data, 32), m.Data())
	assert.Equal(t, data, m.Get(0, 3))

	// resize not necessary
	set(t, m, 10, 3, data)
	expectLength(t, m, 32)

	set(t, m, 65, 10, data)
	expectLength(t, m, 96)

	// take two more slots
	set(t, m, 129, 65, data)
	expectLength(t, m, 224)
}

func TestMemorySet32(t *testing.T) {
	m := newMemory(1024)

	o, _, err := m.ResizeOffset(c(1), c(32))
	require.NoError(t, err)

	m.Set32(o, c(32))
	expectLength(t, m, 64)
	assert.Equal(t, byte(32), m.Data()[32])
}

func TestMemoryZeroLength(t *testing.T) {
	m := newMemory(32)

	// a zero length range accepts any offset and does not grow
	_, size, err := m.ResizeOffset(new(uint256.Int).SetAllOne(), c(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), size)
	expectLength(t, m, 0)
}

func TestMemoryResizeErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		offset *uint256.Int
		length *uint256.Int
	}{
		{"offset over 64 bits", new(uint256.Int).Lsh(c(1), 64), c(1)},
		{"length over 64 bits", c(0), new(uint256.Int).Lsh(c(1), 64)},
		{"sum overflows", c(^uint64(0)), c(2)},
		{"over the limit", c(1024), c(1)},
	}

	for _, cc := range cases {
		cc := cc

		t.Run(cc.name, func(t *testing.T) {
			t.Parallel()

			m := newMemory(1024)

			_, _, err := m.ResizeOffset(cc.offset, cc.length)
			assert.ErrorIs(t, err, ErrInvalidRange)
			expectLength(t, m, 0)
		})
	}
}

func TestMemoryGetPastEnd(t *testing.T) {
	m := newMemory(1024)
	set(t, m, 0, 2, []byte{1, 2})

	assert.Equal(t, []byte{2, 0, 0}, m.Get(1, 3)[:3])
	assert.Len(t, m.Get(31, 10), 10)
	assert.Equal(t, make([]byte, 4), m.Get(100, 4))
}

func TestMemoryCopyLarge(t *testing.T) {
	m := newMemory(1024)

	o, l, err := m.ResizeOffset(c(0), c(6))
	require.NoError(t, err)

	m.CopyLarge(o, c(2), l, []byte{1, 2, 3, 4})
	assert.Equal(t, []byte{3, 4, 0, 0, 0, 0}, m.Get(0, 6))

	m.CopyLarge(o, new(uint256.Int).SetAllOne(), l, []byte{1, 2, 3, 4})
	assert.Equal(t, make([]byte, 6), m.Get(0, 6))
}
