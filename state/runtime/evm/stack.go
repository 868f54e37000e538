package evm

import (
	"github.com/holiman/uint256"

	"github.com/tronvm/tvm-edge/types"
)

// Stack is the word stack of a machine
type Stack struct {
	data  []uint256.Int
	limit int
}

func newStack(limit uint64) *Stack {
	l := int(limit)
	if limit > uint64(maxInt) {
		l = maxInt
	}

	capacity := l
	if capacity > 1024 {
		capacity = 1024
	}

	return &Stack{
		data:  make([]uint256.Int, 0, capacity),
		limit: l,
	}
}

const maxInt = int(^uint(0) >> 1)

// Len returns the number of items on the stack
func (s *Stack) Len() int {
	return len(s.data)
}

// Limit returns the maximum number of items
func (s *Stack) Limit() int {
	return s.limit
}

// Data returns the stack items, bottom first. The slice aliases the stack.
func (s *Stack) Data() []uint256.Int {
	return s.data
}

// Peek returns the n-th item from the top, 0 being the top
func (s *Stack) Peek(n int) (*uint256.Int, error) {
	if n < 0 || n >= len(s.data) {
		return nil, ErrStackUnderflow
	}

	return &s.data[len(s.data)-1-n], nil
}

// Pop removes the top item
func (s *Stack) Pop() (uint256.Int, error) {
	if len(s.data) == 0 {
		return uint256.Int{}, ErrStackUnderflow
	}

	v := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]

	return v, nil
}

// PopAddress pops a word and keeps its low 20 bytes
func (s *Stack) PopAddress() (types.Address, error) {
	v, err := s.Pop()
	if err != nil {
		return types.ZeroAddress, err
	}

	b := v.Bytes32()

	return types.BytesToAddress(b[12:]), nil
}

// PopHash pops a word as a 32 byte hash
func (s *Stack) PopHash() (types.Hash, error) {
	v, err := s.Pop()
	if err != nil {
		return types.ZeroHash, err
	}

	return types.Hash(v.Bytes32()), nil
}

// Push adds an item on top of the stack
func (s *Stack) Push(v *uint256.Int) error {
	if len(s.data) >= s.limit {
		return ErrStackOverflow
	}

	s.data = append(s.data, *v)

	return nil
}

// PushUint64 pushes a small number
func (s *Stack) PushUint64(v uint64) error {
	return s.Push(new(uint256.Int).SetUint64(v))
}

// PushBytes pushes a big endian byte slice of at most 32 bytes
func (s *Stack) PushBytes(b []byte) error {
	return s.Push(new(uint256.Int).SetBytes(b))
}

// PushBool pushes 1 for true and 0 for false
func (s *Stack) PushBool(b bool) error {
	if b {
		return s.PushUint64(1)
	}

	return s.PushUint64(0)
}

// the unchecked helpers below are only used after the dispatch table
// verified the stack height

func (s *Stack) pop() *uint256.Int {
	v := &s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]

	return v
}

func (s *Stack) top() *uint256.Int {
	return &s.data[len(s.data)-1]
}

func (s *Stack) peekAt(n int) *uint256.Int {
	return &s.data[len(s.data)-n]
}

func (s *Stack) push1() *uint256.Int {
	s.data = append(s.data, uint256.Int{})

	return &s.data[len(s.data)-1]
}

func (s *Stack) swap(n int) {
	l := len(s.data)
	s.data[l-1], s.data[l-n-1] = s.data[l-n-1], s.data[l-1]
}

func (s *Stack) reset() {
	s.data = s.data[:0]
}
