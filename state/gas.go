package state

import (
	"github.com/tronvm/tvm-edge/state/runtime/evm"
)

// Sha3 gas prices
const (
	// Sha3Gas once per SHA3 operation.
	Sha3Gas uint64 = 30
	// Sha3WordGas once per word of the SHA3 operation's data
	Sha3WordGas uint64 = 6
)

// Fixed gas costs
const (
	GasQuickStep    uint64 = 2
	GasFastestStep  uint64 = 3
	GasFastStep     uint64 = 5
	GasMidStep      uint64 = 8
	GasSlowStep     uint64 = 10
	GasExtStep      uint64 = 20
	GasJumpDest     uint64 = 1
	GasContractByte uint64 = 200
	MemoryGas       uint64 = 3
	QuadCoeffDiv    uint64 = 512
)

const (
	// CallValueTransferGas paid for CALL when the value transfer is non-zero.
	CallValueTransferGas uint64 = 9000
	// CallNewAccountGas paid for CALL when the destination address didn't exist prior.
	CallNewAccountGas uint64 = 25000
)

const (
	// LogGas per LOG* operation.
	LogGas uint64 = 375
	// LogTopicGas multiplied by the * of the LOG*
	LogTopicGas uint64 = 375
	// LogDataGas is the per byte in a LOG* operation's data.
	LogDataGas uint64 = 8
)

const (
	// CreateGas once per CREATE and CREATE2 operation
	CreateGas uint64 = 32000
	// SuicideRefundGas refunded following a suicide operation.
	SuicideRefundGas uint64 = 24000
	// CopyGas multiplied by the number of words copied
	CopyGas uint64 = 3
	// maxMemorySize bounds memory offsets before any cost is computed
	maxMemorySize uint64 = 0x1FFFFFFFE0
)

// staticGas is the constant part of the cost of every opcode. Opcodes
// priced from the config are filled in by dynamicGas.
var staticGas [256]uint64

func init() {
	set := func(gas uint64, ops ...evm.OpCode) {
		for _, op := range ops {
			staticGas[op] = gas
		}
	}

	set(GasQuickStep,
		evm.ADDRESS, evm.ORIGIN, evm.CALLER, evm.CALLVALUE, evm.CALLDATASIZE,
		evm.CODESIZE, evm.GASPRICE, evm.COINBASE, evm.TIMESTAMP, evm.NUMBER,
		evm.DIFFICULTY, evm.GASLIMIT, evm.RETURNDATASIZE, evm.POP, evm.PC,
		evm.MSIZE, evm.GAS, evm.CHAINID, evm.CALLTOKENVALUE, evm.CALLTOKENID,
	)

	set(GasFastestStep,
		evm.ADD, evm.SUB, evm.NOT, evm.LT, evm.GT, evm.SLT, evm.SGT, evm.EQ,
		evm.ISZERO, evm.AND, evm.OR, evm.XOR, evm.BYTE, evm.SHL, evm.SHR,
		evm.SAR, evm.CALLDATALOAD, evm.MLOAD, evm.MSTORE, evm.MSTORE8,
		evm.CALLDATACOPY, evm.CODECOPY, evm.RETURNDATACOPY,
	)

	for i := 0; i < 32; i++ {
		set(GasFastestStep, evm.OpCode(evm.PUSH1+i))
	}

	for i := 0; i < 16; i++ {
		set(GasFastestStep, evm.OpCode(evm.DUP1+i), evm.OpCode(evm.SWAP1+i))
	}

	set(GasFastStep,
		evm.MUL, evm.DIV, evm.SDIV, evm.MOD, evm.SMOD, evm.SIGNEXTEND, evm.SELFBALANCE,
	)

	set(GasMidStep, evm.ADDMOD, evm.MULMOD, evm.JUMP)
	set(GasSlowStep, evm.JUMPI, evm.EXP)
	set(GasExtStep, evm.BLOCKHASH)
	set(GasJumpDest, evm.JUMPDEST)
	set(Sha3Gas, evm.SHA3)
	set(CreateGas, evm.CREATE, evm.CREATE2)

	for i := 0; i <= 4; i++ {
		set(LogGas+uint64(i)*LogTopicGas, evm.OpCode(evm.LOG0+i))
	}
}
