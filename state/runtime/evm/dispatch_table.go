package evm

type handler struct {
	inst  instruction
	stack int
	grow  int
}

var dispatchTable [256]handler

func register(op OpCode, h handler) {
	if dispatchTable[op].inst != nil {
		panic("BUG: instruction already registered") //nolint:gocritic
	}

	dispatchTable[op] = h
}

func registerRange(from, to OpCode, factory func(n int) instruction, stack func(n int) int, grow int) {
	c := 1
	for i := from; i <= to; i++ {
		register(i, handler{inst: factory(c), stack: stack(c), grow: grow})
		c++
	}
}

func init() {
	// unsigned arithmetic operations
	register(STOP, handler{inst: opStop})
	register(ADD, handler{opAdd, 2, -1})
	register(SUB, handler{opSub, 2, -1})
	register(MUL, handler{opMul, 2, -1})
	register(DIV, handler{opDiv, 2, -1})
	register(SDIV, handler{opSDiv, 2, -1})
	register(MOD, handler{opMod, 2, -1})
	register(SMOD, handler{opSMod, 2, -1})
	register(EXP, handler{opExp, 2, -1})

	registerRange(PUSH1, PUSH32, opPush, func(int) int { return 0 }, 1)
	registerRange(DUP1, DUP16, opDup, func(n int) int { return n }, 1)
	registerRange(SWAP1, SWAP16, opSwap, func(n int) int { return n + 1 }, 0)

	register(ADDMOD, handler{opAddMod, 3, -2})
	register(MULMOD, handler{opMulMod, 3, -2})

	register(AND, handler{opAnd, 2, -1})
	register(OR, handler{opOr, 2, -1})
	register(XOR, handler{opXor, 2, -1})
	register(BYTE, handler{opByte, 2, -1})

	register(SHL, handler{opShl, 2, -1})
	register(SHR, handler{opShr, 2, -1})
	register(SAR, handler{opSar, 2, -1})

	register(EQ, handler{opEq, 2, -1})
	register(LT, handler{opLt, 2, -1})
	register(GT, handler{opGt, 2, -1})
	register(SLT, handler{opSlt, 2, -1})
	register(SGT, handler{opSgt, 2, -1})

	register(SIGNEXTEND, handler{opSignExtension, 2, -1})

	register(NOT, handler{opNot, 1, 0})
	register(ISZERO, handler{opIsZero, 1, 0})

	register(POP, handler{opPop, 1, -1})

	// memory
	register(MLOAD, handler{opMLoad, 1, 0})
	register(MSTORE, handler{opMStore, 2, -2})
	register(MSTORE8, handler{opMStore8, 2, -2})

	// data
	register(CALLDATALOAD, handler{opCallDataLoad, 1, 0})
	register(CALLDATASIZE, handler{opCallDataSize, 0, 1})
	register(CODESIZE, handler{opCodeSize, 0, 1})
	register(CALLDATACOPY, handler{opCallDataCopy, 3, -3})
	register(CODECOPY, handler{opCodeCopy, 3, -3})

	// control flow
	register(JUMP, handler{opJump, 1, -1})
	register(JUMPI, handler{opJumpi, 2, -2})
	register(JUMPDEST, handler{opJumpDest, 0, 0})
	register(PC, handler{opPC, 0, 1})
	register(MSIZE, handler{opMSize, 0, 1})

	register(RETURN, handler{opReturn, 2, -2})
	register(REVERT, handler{opRevert, 2, -2})
	register(INVALID, handler{opInvalid, 0, 0})
}
