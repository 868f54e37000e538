package keccak

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeccak256(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    [][]byte
		expected string
	}{
		{
			nil,
			"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		},
		{
			[][]byte{[]byte("abc")},
			"4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		},
		{
			[][]byte{[]byte("a"), []byte("bc")},
			"4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, hex.EncodeToString(Keccak256(nil, c.input...)))
	}
}

func TestKeccak_Reuse(t *testing.T) {
	t.Parallel()

	k := DefaultKeccakPool.Get()
	_, _ = k.Write([]byte("abc"))
	first := hex.EncodeToString(k.Sum(nil))
	DefaultKeccakPool.Put(k)

	k = DefaultKeccakPool.Get()
	_, _ = k.Write([]byte("abc"))
	assert.Equal(t, first, hex.EncodeToString(k.Sum(nil)))
	DefaultKeccakPool.Put(k)
}
