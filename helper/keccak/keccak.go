package keccak

import (
	"hash"

	"golang.org/x/crypto/sha3"
)

type hashImpl interface {
	hash.Hash
	Read(b []byte) (int, error)
}

// Keccak is the sha256 keccak hash
type Keccak struct {
	buf  []byte
	hash hashImpl
}

// Write implements the hash interface
func (k *Keccak) Write(b []byte) (int, error) {
	return k.hash.Write(b)
}

// Reset implements the hash interface
func (k *Keccak) Reset() {
	k.buf = k.buf[:0]
	k.hash.Reset()
}

// Read hashes the content and returns the intermediate buffer.
func (k *Keccak) Read() []byte {
	k.buf = k.buf[:32]
	_, _ = k.hash.Read(k.buf)

	return k.buf
}

// Sum implements the hash interface
func (k *Keccak) Sum(dst []byte) []byte {
	k.buf = k.hash.Sum(k.buf[:0])

	return append(dst, k.buf...)
}

// NewKeccak256 returns a new keccak 256
func NewKeccak256() *Keccak {
	impl, ok := sha3.NewLegacyKeccak256().(hashImpl)
	if !ok {
		return nil
	}

	return &Keccak{
		buf:  make([]byte, 0, 32),
		hash: impl,
	}
}
