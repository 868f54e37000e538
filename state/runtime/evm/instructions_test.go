package evm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	zero = uint256.NewInt(0)
	two  = uint256.NewInt(2)

	maxWord  = new(uint256.Int).SetAllOne()
	minusOne = new(uint256.Int).SetAllOne()
)

func getMachine() *Machine {
	return NewMachine([]byte{}, []byte{}, 1024, 1024*1024)
}

type cases2To1 []struct {
	a *uint256.Int
	b *uint256.Int
	c *uint256.Int
}

// test2to1 pushes b then a, so a is the top of the stack
func test2to1(t *testing.T, f instruction, tests cases2To1) {
	t.Helper()

	m := getMachine()

	for _, i := range tests {
		m.stack.push1().Set(i.b)
		m.stack.push1().Set(i.a)

		f(m)

		assert.Equal(t, i.c.Hex(), m.stack.pop().Hex())
	}
}

type cases2ToBool []struct {
	a *uint256.Int
	b *uint256.Int
	c bool
}

func test2toBool(t *testing.T, f instruction, tests cases2ToBool) {
	t.Helper()

	m := getMachine()

	for _, i := range tests {
		m.stack.push1().Set(i.b)
		m.stack.push1().Set(i.a)

		f(m)

		if i.c {
			assert.Equal(t, uint64(1), m.stack.pop().Uint64())
		} else {
			assert.Equal(t, uint64(0), m.stack.pop().Uint64())
		}
	}
}

func TestAdd(t *testing.T) {
	test2to1(t, opAdd, cases2To1{
		{one, one, two},
		{zero, one, one},
		{maxWord, one, zero},
	})
}

func TestSub(t *testing.T) {
	test2to1(t, opSub, cases2To1{
		{two, one, one},
		{zero, one, minusOne},
	})
}

func TestDiv(t *testing.T) {
	test2to1(t, opDiv, cases2To1{
		{two, one, two},
		{two, zero, zero},
		{uint256.NewInt(10), uint256.NewInt(3), uint256.NewInt(3)},
	})
}

func TestSDiv(t *testing.T) {
	minusTwo := new(uint256.Int).Neg(two)

	test2to1(t, opSDiv, cases2To1{
		{minusTwo, one, minusTwo},
		{minusTwo, minusOne, two},
		{one, zero, zero},
	})
}

func TestMod(t *testing.T) {
	test2to1(t, opMod, cases2To1{
		{uint256.NewInt(10), uint256.NewInt(3), one},
		{uint256.NewInt(10), zero, zero},
	})
}

func TestExp(t *testing.T) {
	test2to1(t, opExp, cases2To1{
		{two, uint256.NewInt(10), uint256.NewInt(1024)},
		{two, uint256.NewInt(256), zero},
		{zero, zero, one},
	})
}

func TestShifts(t *testing.T) {
	test2to1(t, opShl, cases2To1{
		{one, one, two},
		{uint256.NewInt(256), one, zero},
	})

	test2to1(t, opShr, cases2To1{
		{one, two, one},
		{uint256.NewInt(300), maxWord, zero},
	})

	test2to1(t, opSar, cases2To1{
		{one, minusOne, minusOne},
		{uint256.NewInt(256), minusOne, minusOne},
		{uint256.NewInt(256), two, zero},
	})
}

func TestByte(t *testing.T) {
	test2to1(t, opByte, cases2To1{
		{uint256.NewInt(31), uint256.NewInt(0xab), uint256.NewInt(0xab)},
		{uint256.NewInt(30), uint256.NewInt(0xab), zero},
		{uint256.NewInt(32), maxWord, zero},
	})
}

func TestSignExtend(t *testing.T) {
	test2to1(t, opSignExtension, cases2To1{
		{zero, uint256.NewInt(0xff), minusOne},
		{zero, uint256.NewInt(0x7f), uint256.NewInt(0x7f)},
	})
}

func TestGt(t *testing.T) {
	test2toBool(t, opGt, cases2ToBool{
		{one, one, false},
		{two, one, true},
		{one, two, false},
	})
}

func TestSlt(t *testing.T) {
	test2toBool(t, opSlt, cases2ToBool{
		{minusOne, one, true},
		{one, minusOne, false},
	})
}

func TestIsZero(t *testing.T) {
	m := getMachine()

	m.stack.push1().Set(zero)
	opIsZero(m)
	assert.Equal(t, uint64(1), m.stack.pop().Uint64())

	m.stack.push1().Set(two)
	opIsZero(m)
	assert.Equal(t, uint64(0), m.stack.pop().Uint64())
}

func TestAddMod(t *testing.T) {
	m := getMachine()

	m.stack.push1().SetUint64(3)  // modulus
	m.stack.push1().SetUint64(5)  // b
	m.stack.push1().SetUint64(10) // a

	opAddMod(m)

	assert.Equal(t, uint64(0), m.stack.pop().Uint64())
	assert.Equal(t, 0, m.stack.Len())
}

func TestMStore(t *testing.T) {
	m := getMachine()

	m.stack.push1().SetUint64(10)   // value
	m.stack.push1().SetUint64(1024) // offset

	opMStore(m)

	assert.Equal(t, 1024+32, m.memory.Len())

	m.stack.push1().SetUint64(1024)
	opMLoad(m)

	assert.Equal(t, uint64(10), m.stack.pop().Uint64())
}

func TestMStoreOverLimit(t *testing.T) {
	m := NewMachine([]byte{}, []byte{}, 1024, 64)

	m.stack.push1().SetUint64(10)
	m.stack.push1().SetUint64(64)

	opMStore(m)

	reason, ok := m.Status()
	require.True(t, ok)
	assert.ErrorIs(t, reason.Err, ErrInvalidRange)
}

func TestCallDataLoad(t *testing.T) {
	m := NewMachine([]byte{}, []byte{0x01, 0x02}, 1024, 1024)

	m.stack.push1().SetUint64(1)
	opCallDataLoad(m)

	expected := make([]byte, 32)
	expected[0] = 0x02

	assert.Equal(t, new(uint256.Int).SetBytes(expected).Hex(), m.stack.pop().Hex())

	// offsets past the data read zeroes
	m.stack.push1().Set(maxWord)
	opCallDataLoad(m)

	assert.True(t, m.stack.pop().IsZero())
}

func TestGetData(t *testing.T) {
	t.Parallel()

	data := []byte{1, 2, 3}

	cases := []struct {
		offset   *uint256.Int
		size     uint64
		expected []byte
	}{
		{zero, 2, []byte{1, 2}},
		{one, 4, []byte{2, 3, 0, 0}},
		{uint256.NewInt(3), 2, []byte{0, 0}},
		{maxWord, 1, []byte{0}},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, getData(data, c.offset, c.size))
	}
}
