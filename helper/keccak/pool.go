package keccak

import (
	"sync"
)

// DefaultKeccakPool is a default pool
var DefaultKeccakPool Pool

// Pool is a pool of keccaks
type Pool struct {
	pool sync.Pool
}

// Get returns the keccak
func (p *Pool) Get() *Keccak {
	v := p.pool.Get()
	if v == nil {
		return NewKeccak256()
	}

	keccakVal, ok := v.(*Keccak)
	if !ok {
		return nil
	}

	return keccakVal
}

// Put releases the keccak
func (p *Pool) Put(k *Keccak) {
	k.Reset()
	p.pool.Put(k)
}

// Keccak256 hashes the concatenation of src with keccak-256 and appends the digest to dst
func Keccak256(dst []byte, src ...[]byte) []byte {
	h := DefaultKeccakPool.Get()

	for _, b := range src {
		_, _ = h.Write(b)
	}

	dst = h.Sum(dst)
	DefaultKeccakPool.Put(h)

	return dst
}
