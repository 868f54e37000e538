package precompiled

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/abi"
	"pgregory.net/rapid"

	"github.com/tronvm/tvm-edge/types"
)

var batchArgsType = abi.MustNewType("tuple(bytes32 hash, bytes[] signatures, address[] addresses)")

func TestArgIterator_Words(t *testing.T) {
	t.Parallel()

	input := make([]byte, 3*wordSize+5)
	input[31] = 0x2a
	input[63] = 0x01
	input[95] = 0xff

	it := NewArgIterator(input)

	word, ok := it.NextUint256()
	require.True(t, ok)
	assert.Equal(t, uint64(0x2a), word.Uint64())

	words, ok := it.NextWords(2)
	require.True(t, ok)
	assert.Len(t, words, 2*wordSize)
	assert.Equal(t, uint64(3*wordSize), it.Offset())

	// only a partial word is left
	_, ok = it.NextWord()
	assert.False(t, ok)
	assert.Equal(t, uint64(3*wordSize), it.Offset())
}

func TestArgIterator_Address(t *testing.T) {
	t.Parallel()

	addr := types.StringToAddress("0x5cbdd86a2fa8dc4bddd8a8f69dba48572eec07fb")

	input := make([]byte, wordSize)
	input[11] = 0x41
	copy(input[12:], addr[:])

	found, ok := NewArgIterator(input).NextAddress()
	require.True(t, ok)
	assert.Equal(t, addr, found)
}

func TestArgIterator_Encoded(t *testing.T) {
	t.Parallel()

	hash := [32]byte{0x01, 0x02}
	sigs := [][]byte{{0xaa}, make([]byte, 65), {}}
	addrs := []ethgo.Address{{0x01}, {0x02}, {0x03}}

	input, err := batchArgsType.Encode(map[string]interface{}{
		"hash":       hash,
		"signatures": sigs,
		"addresses":  addrs,
	})
	require.NoError(t, err)

	it := NewArgIterator(input)

	foundHash, ok := it.NextHash()
	require.True(t, ok)
	assert.Equal(t, types.Hash(hash), foundHash)

	foundSigs, ok := it.NextArrayOfBytes()
	require.True(t, ok)
	require.Len(t, foundSigs, len(sigs))

	for i := range sigs {
		assert.Equal(t, len(sigs[i]), len(foundSigs[i]))
		assert.Equal(t, string(sigs[i]), string(foundSigs[i]))
	}

	foundAddrs, ok := it.NextArrayOfWords()
	require.True(t, ok)
	require.Len(t, foundAddrs, len(addrs))

	for i := range addrs {
		assert.Equal(t, types.Address(addrs[i]), types.BytesToAddress(foundAddrs[i][12:]))
	}
}

func TestArgIterator_Bytes(t *testing.T) {
	t.Parallel()

	input, err := abi.MustNewType("tuple(bytes a, bytes b)").Encode(map[string]interface{}{
		"a": []byte("hello"),
		"b": []byte{},
	})
	require.NoError(t, err)

	it := NewArgIterator(input)

	a, ok := it.NextBytes()
	require.True(t, ok)
	assert.Equal(t, "hello", string(a))

	b, ok := it.NextBytes()
	require.True(t, ok)
	assert.Empty(t, b)

	// the returned value is a view of the input
	a[0] = 'j'
	assert.Contains(t, string(input), "jello")
}

func TestArgIterator_Malformed(t *testing.T) {
	t.Parallel()

	word := func(v byte) []byte {
		w := make([]byte, wordSize)
		w[wordSize-1] = v

		return w
	}

	huge := make([]byte, wordSize)
	huge[0] = 0x01

	concat := func(parts ...[]byte) []byte {
		out := []byte{}
		for _, p := range parts {
			out = append(out, p...)
		}

		return out
	}

	cases := []struct {
		name  string
		input []byte
		read  func(it *ArgIterator) bool
	}{
		{
			"bytes offset does not fit",
			huge,
			func(it *ArgIterator) bool { _, ok := it.NextBytes(); return ok },
		},
		{
			"bytes offset out of bounds",
			word(0x40),
			func(it *ArgIterator) bool { _, ok := it.NextBytes(); return ok },
		},
		{
			"bytes length out of bounds",
			concat(word(0x20), word(0x40)),
			func(it *ArgIterator) bool { _, ok := it.NextBytes(); return ok },
		},
		{
			"bytes length does not fit",
			concat(word(0x20), huge),
			func(it *ArgIterator) bool { _, ok := it.NextBytes(); return ok },
		},
		{
			"array length larger than data",
			concat(word(0x20), word(0x05), word(0x00)),
			func(it *ArgIterator) bool { _, ok := it.NextArrayOfWords(); return ok },
		},
		{
			"array length does not fit",
			concat(word(0x20), huge),
			func(it *ArgIterator) bool { _, ok := it.NextArrayOfBytes(); return ok },
		},
		{
			"array element offset out of bounds",
			concat(word(0x20), word(0x01), word(0xff)),
			func(it *ArgIterator) bool { _, ok := it.NextArrayOfBytes(); return ok },
		},
		{
			"array length word truncated",
			concat(word(0x20), []byte{0x01}),
			func(it *ArgIterator) bool { _, ok := it.NextArrayOfWords(); return ok },
		},
		{
			"empty input",
			nil,
			func(it *ArgIterator) bool { _, ok := it.NextArrayOfWords(); return ok },
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			assert.False(t, c.read(NewArgIterator(c.input)))
		})
	}
}

func TestArgIterator_ArrayOffsetPastEnd(t *testing.T) {
	t.Parallel()

	input := make([]byte, wordSize)
	input[wordSize-1] = 0x40

	words, ok := NewArgIterator(input).NextArrayOfWords()
	require.True(t, ok)
	assert.Empty(t, words)
}

func TestArgIterator_NeverPanics(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(tt *rapid.T) {
		input := rapid.SliceOfN(rapid.Byte(), 0, 512).Draw(tt, "input")
		ops := rapid.SliceOfN(rapid.IntRange(0, 5), 1, 8).Draw(tt, "ops")

		it := NewArgIterator(input)

		for _, op := range ops {
			switch op {
			case 0:
				it.NextWord()
			case 1:
				it.NextBytes()
			case 2:
				it.NextArrayOfBytes()
			case 3:
				it.NextArrayOfWords()
			case 4:
				it.NextAddress()
			case 5:
				it.NextWords(2)
			}
		}
	})
}
