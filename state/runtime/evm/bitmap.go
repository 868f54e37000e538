package evm

import "github.com/tronvm/tvm-edge/helper/common"

const bitmapSize = 8

// ValidJumps marks every JUMPDEST that is not inside push data.
// It only depends on the code, so it can be computed once and shared.
type ValidJumps struct {
	buf  []byte
	size uint64
}

// Analyze computes the jump destinations of code
func Analyze(code []byte) ValidJumps {
	var b ValidJumps

	b.setCode(code)

	return b
}

// IsValid checks whether dest is a JUMPDEST
func (b ValidJumps) IsValid(dest uint64) bool {
	if dest >= b.size {
		return false
	}

	return b.isSet(dest)
}

// Len returns the length of the analyzed code
func (b ValidJumps) Len() int {
	return int(b.size)
}

func (b *ValidJumps) isSet(i uint64) bool {
	return b.buf[i/bitmapSize]&(1<<(i%bitmapSize)) != 0
}

func (b *ValidJumps) set(i uint64) {
	b.buf[i/bitmapSize] |= 1 << (i % bitmapSize)
}

func (b *ValidJumps) setCode(code []byte) {
	codeSize := len(code)
	b.buf = common.ExtendByteSlice(b.buf, codeSize/bitmapSize+1)
	b.size = uint64(codeSize)

	for i := 0; i < codeSize; {
		c := code[i]

		if isPushOp(c) {
			// push op
			i += int(c) - PUSH1 + 2
		} else {
			if c == JUMPDEST {
				// jumpdest
				b.set(uint64(i))
			}
			i++
		}
	}
}

func isPushOp(i byte) bool {
	// From PUSH1 (0x60) to PUSH32(0x7F)
	return i>>5 == 3
}
