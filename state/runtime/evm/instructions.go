package evm

import (
	"github.com/holiman/uint256"
)

type instruction func(m *Machine)

var (
	one      = uint256.NewInt(1)
	wordSize = uint256.NewInt(32)
)

func opStop(m *Machine) {
	m.exit(SucceedReason(Stopped))
}

func opAdd(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	b.Add(a, b)
}

func opMul(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	b.Mul(a, b)
}

func opSub(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	b.Sub(a, b)
}

func opDiv(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	// division by zero yields zero
	b.Div(a, b)
}

func opSDiv(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	b.SDiv(a, b)
}

func opMod(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	b.Mod(a, b)
}

func opSMod(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	b.SMod(a, b)
}

func opExp(m *Machine) {
	base := m.stack.pop()
	exponent := m.stack.top()

	exponent.Exp(base, exponent)
}

func opAddMod(m *Machine) {
	a := m.stack.pop()
	b := m.stack.pop()
	z := m.stack.top()

	z.AddMod(a, b, z)
}

func opMulMod(m *Machine) {
	a := m.stack.pop()
	b := m.stack.pop()
	z := m.stack.top()

	z.MulMod(a, b, z)
}

func opSignExtension(m *Machine) {
	back := m.stack.pop()
	num := m.stack.top()

	num.ExtendSign(num, back)
}

func setBool(v *uint256.Int, b bool) {
	if b {
		v.SetOne()
	} else {
		v.Clear()
	}
}

func opLt(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	setBool(b, a.Lt(b))
}

func opGt(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	setBool(b, a.Gt(b))
}

func opSlt(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	setBool(b, a.Slt(b))
}

func opSgt(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	setBool(b, a.Sgt(b))
}

func opEq(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	setBool(b, a.Eq(b))
}

func opIsZero(m *Machine) {
	a := m.stack.top()

	setBool(a, a.IsZero())
}

func opAnd(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	b.And(a, b)
}

func opOr(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	b.Or(a, b)
}

func opXor(m *Machine) {
	a := m.stack.pop()
	b := m.stack.top()

	b.Xor(a, b)
}

func opNot(m *Machine) {
	a := m.stack.top()

	a.Not(a)
}

func opByte(m *Machine) {
	th := m.stack.pop()
	val := m.stack.top()

	val.Byte(th)
}

func opShl(m *Machine) {
	shift := m.stack.pop()
	value := m.stack.top()

	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
}

func opShr(m *Machine) {
	shift := m.stack.pop()
	value := m.stack.top()

	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
}

func opSar(m *Machine) {
	shift := m.stack.pop()
	value := m.stack.top()

	if shift.GtUint64(255) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}

		return
	}

	value.SRsh(value, uint(shift.Uint64()))
}

// getData returns size bytes of data starting at offset, zero padded
func getData(data []byte, offset *uint256.Int, size uint64) []byte {
	start := uint64(len(data))
	if offset.IsUint64() && offset.Uint64() < start {
		start = offset.Uint64()
	}

	end := start + size
	if end > uint64(len(data)) || end < start {
		end = uint64(len(data))
	}

	buf := make([]byte, size)
	copy(buf, data[start:end])

	return buf
}

func opCallDataLoad(m *Machine) {
	offset := m.stack.top()

	offset.SetBytes(getData(m.data, offset, 32))
}

func opCallDataSize(m *Machine) {
	m.stack.push1().SetUint64(uint64(len(m.data)))
}

func opCodeSize(m *Machine) {
	m.stack.push1().SetUint64(uint64(len(m.code)))
}

func opCallDataCopy(m *Machine) {
	m.copyToMemory(m.data)
}

func opCodeCopy(m *Machine) {
	m.copyToMemory(m.code)
}

func (m *Machine) copyToMemory(src []byte) {
	memOffset := m.stack.pop()
	dataOffset := m.stack.pop()
	length := m.stack.pop()

	off, size, err := m.memory.ResizeOffset(memOffset, length)
	if err != nil {
		m.exit(ErrorReason(err))

		return
	}

	m.memory.CopyLarge(off, dataOffset, size, src)
}

func opPop(m *Machine) {
	m.stack.pop()
}

func opMLoad(m *Machine) {
	offset := m.stack.top()

	off, _, err := m.memory.ResizeOffset(offset, wordSize)
	if err != nil {
		m.exit(ErrorReason(err))

		return
	}

	offset.SetBytes(m.memory.Get(off, 32))
}

func opMStore(m *Machine) {
	offset := m.stack.pop()
	val := m.stack.pop()

	off, _, err := m.memory.ResizeOffset(offset, wordSize)
	if err != nil {
		m.exit(ErrorReason(err))

		return
	}

	m.memory.Set32(off, val)
}

func opMStore8(m *Machine) {
	offset := m.stack.pop()
	val := m.stack.pop()

	off, _, err := m.memory.ResizeOffset(offset, one)
	if err != nil {
		m.exit(ErrorReason(err))

		return
	}

	m.memory.store[off] = byte(val.Uint64())
}

func opJump(m *Machine) {
	dest := m.stack.pop()

	m.jump(dest)
}

func opJumpi(m *Machine) {
	dest := m.stack.pop()
	cond := m.stack.pop()

	if !cond.IsZero() {
		m.jump(dest)
	}
}

func (m *Machine) jump(dest *uint256.Int) {
	if !dest.IsUint64() || !m.jumps.IsValid(dest.Uint64()) {
		m.exit(ErrorReason(ErrInvalidJump))

		return
	}

	// the main loop moves past the destination
	m.pc = int(dest.Uint64()) - 1
}

func opPC(m *Machine) {
	m.stack.push1().SetUint64(uint64(m.pc))
}

func opMSize(m *Machine) {
	m.stack.push1().SetUint64(uint64(m.memory.Len()))
}

func opJumpDest(m *Machine) {
}

func opPush(n int) instruction {
	return func(m *Machine) {
		start := m.pc + 1

		buf := make([]byte, n)
		if start < len(m.code) {
			copy(buf, m.code[start:])
		}

		m.stack.push1().SetBytes(buf)
		m.pc += n
	}
}

func opDup(n int) instruction {
	return func(m *Machine) {
		val := *m.stack.peekAt(n)
		*m.stack.push1() = val
	}
}

func opSwap(n int) instruction {
	return func(m *Machine) {
		m.stack.swap(n)
	}
}

func (m *Machine) setReturn() bool {
	offset := m.stack.pop()
	length := m.stack.pop()

	off, size, err := m.memory.ResizeOffset(offset, length)
	if err != nil {
		m.exit(ErrorReason(err))

		return false
	}

	m.retOff, m.retLen = off, size

	return true
}

func opReturn(m *Machine) {
	if m.setReturn() {
		m.exit(SucceedReason(Returned))
	}
}

func opRevert(m *Machine) {
	if m.setReturn() {
		m.exit(RevertReason())
	}
}

func opInvalid(m *Machine) {
	m.exit(ErrorReason(ErrDesignatedInvalid))
}
