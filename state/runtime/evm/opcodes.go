package evm

import (
	"fmt"

	"github.com/tronvm/tvm-edge/chain"
)

// OpCode is the EVM operation code
type OpCode byte

const (
	// STOP halts execution of the contract
	STOP OpCode = 0x0

	// ADD performs (u)int256 addition modulo 2**256
	ADD = 0x01

	// MUL performs (u)int256 multiplication modulo 2**256
	MUL = 0x02

	// SUB performs (u)int256 subtraction modulo 2**256
	SUB = 0x03

	// DIV performs uint256 division
	DIV = 0x04

	// SDIV performs int256 division
	SDIV = 0x05

	// MOD performs uint256 modulus
	MOD = 0x06

	// SMOD performs int256 modulus
	SMOD = 0x07

	// ADDMOD performs (u)int256 addition modulo N
	ADDMOD = 0x08

	// MULMOD performs (u)int256 multiplication modulo N
	MULMOD = 0x09

	// EXP performs uint256 exponentiation modulo 2**256
	EXP = 0x0A

	// SIGNEXTEND performs sign extends x from (b + 1) * 8 bits to 256 bits.
	SIGNEXTEND = 0x0B

	// LT performs int256 comparison
	LT = 0x10

	// GT performs int256 comparison
	GT = 0x11

	// SLT performs int256 comparison
	SLT = 0x12

	// SGT performs int256 comparison
	SGT = 0x13

	// EQ performs (u)int256 equality
	EQ = 0x14

	// ISZERO checks if (u)int256 is zero
	ISZERO = 0x15

	// AND performs 256-bit bitwise and
	AND = 0x16

	// OR performs 256-bit bitwise or
	OR = 0x17

	// XOR performs 256-bit bitwise xor
	XOR = 0x18

	// NOT performs 256-bit bitwise not
	NOT = 0x19

	// BYTE returns the ith byte of (u)int256 x counting from most significant byte
	BYTE = 0x1A

	// SHL performs a shift left
	SHL = 0x1B

	// SHR performs a logical shift right
	SHR = 0x1C

	// SAR performs an arithmetic shift right
	SAR = 0x1D

	// SHA3 performs the keccak256 hash function
	SHA3 = 0x20

	// ADDRESS returns the address of the executing account
	ADDRESS = 0x30

	// BALANCE returns the balance of the given account
	BALANCE = 0x31

	// ORIGIN returns the address of the sender of the transaction
	ORIGIN = 0x32

	// CALLER returns the address of the caller
	CALLER = 0x33

	// CALLVALUE returns the value of the call
	CALLVALUE = 0x34

	// CALLDATALOAD returns the first 32 bytes of the call data
	CALLDATALOAD = 0x35

	// CALLDATASIZE returns the size of the call data
	CALLDATASIZE = 0x36

	// CALLDATACOPY copies the call data to memory
	CALLDATACOPY = 0x37

	// CODESIZE returns the size of the executing code
	CODESIZE = 0x38

	// CODECOPY copies the executing code to memory
	CODECOPY = 0x39

	// GASPRICE returns the gas price of the transaction
	GASPRICE = 0x3A

	// EXTCODESIZE returns the code size of an account
	EXTCODESIZE = 0x3B

	// EXTCODECOPY copies the code of an account to memory
	EXTCODECOPY = 0x3C

	// RETURNDATASIZE returns the size of the last returned data
	RETURNDATASIZE = 0x3D

	// RETURNDATACOPY copies the last returned data to memory
	RETURNDATACOPY = 0x3E

	// EXTCODEHASH returns the code hash of an account
	EXTCODEHASH = 0x3F

	// BLOCKHASH returns the hash of one of the 256 most recent blocks
	BLOCKHASH = 0x40

	// COINBASE returns the block producer address
	COINBASE = 0x41

	// TIMESTAMP returns the block timestamp
	TIMESTAMP = 0x42

	// NUMBER returns the block number
	NUMBER = 0x43

	// DIFFICULTY returns the block difficulty
	DIFFICULTY = 0x44

	// GASLIMIT returns the block gas limit
	GASLIMIT = 0x45

	// CHAINID returns the chain id
	CHAINID = 0x46

	// SELFBALANCE returns the balance of the executing account
	SELFBALANCE = 0x47

	// POP pops a (u)int256 off the stack and discards it
	POP = 0x50

	// MLOAD reads a (u)int256 from memory
	MLOAD = 0x51

	// MSTORE writes a (u)int256 to memory
	MSTORE = 0x52

	// MSTORE8 writes a uint8 to memory
	MSTORE8 = 0x53

	// SLOAD reads a (u)int256 from storage
	SLOAD = 0x54

	// SSTORE writes a (u)int256 to storage
	SSTORE = 0x55

	// JUMP continues execution at the given destination
	JUMP = 0x56

	// JUMPI conditionally continues execution at the given destination
	JUMPI = 0x57

	// PC returns the program counter
	PC = 0x58

	// MSIZE returns the size of active memory in bytes
	MSIZE = 0x59

	// GAS returns the amount of available gas
	GAS = 0x5A

	// JUMPDEST corresponds to a possible jump destination
	JUMPDEST = 0x5B

	// PUSH1 pushes a 1-byte value onto the stack
	PUSH1 = 0x60

	// PUSH32 pushes a 32-byte value onto the stack
	PUSH32 = 0x7F

	// DUP1 clones the last value on the stack
	DUP1 = 0x80

	// DUP16 clones the 16th last value on the stack
	DUP16 = 0x8F

	// SWAP1 swaps the last two values on the stack
	SWAP1 = 0x90

	// SWAP16 swaps the highest and the 16th highest value on the stack
	SWAP16 = 0x9F

	// LOG0 fires an event without topics
	LOG0 = 0xA0

	// LOG4 fires an event with four topics
	LOG4 = 0xA4

	// CALLTOKEN calls an account transferring a TRC-10 token
	CALLTOKEN = 0xD0

	// TOKENBALANCE returns the TRC-10 token balance of an account
	TOKENBALANCE = 0xD1

	// CALLTOKENVALUE returns the token value of the call
	CALLTOKENVALUE = 0xD2

	// CALLTOKENID returns the token id of the call
	CALLTOKENID = 0xD3

	// ISCONTRACT checks whether an account holds code
	ISCONTRACT = 0xD4

	// CREATE creates a child contract
	CREATE = 0xF0

	// CALL calls a method in another contract
	CALL = 0xF1

	// CALLCODE calls a method in another contract with the caller storage
	CALLCODE = 0xF2

	// RETURN returns from this contract call
	RETURN = 0xF3

	// DELEGATECALL calls a method in another contract using the storage of the current contract
	DELEGATECALL = 0xF4

	// CREATE2 creates a child contract with a salted address
	CREATE2 = 0xF5

	// STATICCALL calls a method in another contract without state changes
	STATICCALL = 0xFA

	// REVERT stops execution and reverts state changes, without consuming all provided gas
	REVERT = 0xFD

	// INVALID is the designated invalid instruction
	INVALID = 0xFE

	// SELFDESTRUCT destroys the contract and sends all funds to addr
	SELFDESTRUCT = 0xFF
)

var opCodeToString = map[OpCode]string{
	STOP:           "STOP",
	ADD:            "ADD",
	MUL:            "MUL",
	SUB:            "SUB",
	DIV:            "DIV",
	SDIV:           "SDIV",
	MOD:            "MOD",
	SMOD:           "SMOD",
	ADDMOD:         "ADDMOD",
	MULMOD:         "MULMOD",
	EXP:            "EXP",
	SIGNEXTEND:     "SIGNEXTEND",
	LT:             "LT",
	GT:             "GT",
	SLT:            "SLT",
	SGT:            "SGT",
	EQ:             "EQ",
	ISZERO:         "ISZERO",
	AND:            "AND",
	OR:             "OR",
	XOR:            "XOR",
	NOT:            "NOT",
	BYTE:           "BYTE",
	SHL:            "SHL",
	SHR:            "SHR",
	SAR:            "SAR",
	SHA3:           "SHA3",
	ADDRESS:        "ADDRESS",
	BALANCE:        "BALANCE",
	ORIGIN:         "ORIGIN",
	CALLER:         "CALLER",
	CALLVALUE:      "CALLVALUE",
	CALLDATALOAD:   "CALLDATALOAD",
	CALLDATASIZE:   "CALLDATASIZE",
	CALLDATACOPY:   "CALLDATACOPY",
	CODESIZE:       "CODESIZE",
	CODECOPY:       "CODECOPY",
	GASPRICE:       "GASPRICE",
	EXTCODESIZE:    "EXTCODESIZE",
	EXTCODECOPY:    "EXTCODECOPY",
	RETURNDATASIZE: "RETURNDATASIZE",
	RETURNDATACOPY: "RETURNDATACOPY",
	EXTCODEHASH:    "EXTCODEHASH",
	BLOCKHASH:      "BLOCKHASH",
	COINBASE:       "COINBASE",
	TIMESTAMP:      "TIMESTAMP",
	NUMBER:         "NUMBER",
	DIFFICULTY:     "DIFFICULTY",
	GASLIMIT:       "GASLIMIT",
	CHAINID:        "CHAINID",
	SELFBALANCE:    "SELFBALANCE",
	POP:            "POP",
	MLOAD:          "MLOAD",
	MSTORE:         "MSTORE",
	MSTORE8:        "MSTORE8",
	SLOAD:          "SLOAD",
	SSTORE:         "SSTORE",
	JUMP:           "JUMP",
	JUMPI:          "JUMPI",
	PC:             "PC",
	MSIZE:          "MSIZE",
	GAS:            "GAS",
	JUMPDEST:       "JUMPDEST",
	CALLTOKEN:      "CALLTOKEN",
	TOKENBALANCE:   "TOKENBALANCE",
	CALLTOKENVALUE: "CALLTOKENVALUE",
	CALLTOKENID:    "CALLTOKENID",
	ISCONTRACT:     "ISCONTRACT",
	CREATE:         "CREATE",
	CALL:           "CALL",
	CALLCODE:       "CALLCODE",
	RETURN:         "RETURN",
	DELEGATECALL:   "DELEGATECALL",
	CREATE2:        "CREATE2",
	STATICCALL:     "STATICCALL",
	REVERT:         "REVERT",
	INVALID:        "INVALID",
	SELFDESTRUCT:   "SELFDESTRUCT",
}

func init() {
	for i := 0; i < 32; i++ {
		opCodeToString[OpCode(PUSH1+i)] = fmt.Sprintf("PUSH%d", i+1)
	}

	for i := 0; i < 16; i++ {
		opCodeToString[OpCode(DUP1+i)] = fmt.Sprintf("DUP%d", i+1)
		opCodeToString[OpCode(SWAP1+i)] = fmt.Sprintf("SWAP%d", i+1)
	}

	for i := 0; i < 5; i++ {
		opCodeToString[OpCode(LOG0+i)] = fmt.Sprintf("LOG%d", i)
	}
}

// String implements the stringer interface
func (op OpCode) String() string {
	if name, ok := opCodeToString[op]; ok {
		return name
	}

	return fmt.Sprintf("0x%02x", byte(op))
}

// Defined reports whether the byte is an assigned opcode
func (op OpCode) Defined() bool {
	_, ok := opCodeToString[op]

	return ok
}

// IsPush reports whether the opcode is PUSH1..PUSH32
func (op OpCode) IsPush() bool {
	return isPushOp(byte(op))
}

// EnabledIn reports whether the fork activates the opcode
func (op OpCode) EnabledIn(config *chain.Config) bool {
	switch op {
	case SHL, SHR, SAR:
		return config.HasBitwiseShifting
	case REVERT:
		return config.HasRevert
	case RETURNDATASIZE, RETURNDATACOPY:
		return config.HasReturnData
	case DELEGATECALL:
		return config.HasDelegateCall
	case CREATE2:
		return config.HasCreate2
	case CHAINID:
		return config.HasChainID
	case SELFBALANCE:
		return config.HasSelfBalance
	case EXTCODEHASH:
		return config.HasExtCodeHash
	case CALLTOKEN, TOKENBALANCE, CALLTOKENVALUE, CALLTOKENID:
		return config.HasTokenTransfer
	case ISCONTRACT:
		return config.HasIsContract
	default:
		return op.Defined()
	}
}
