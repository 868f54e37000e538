package tracer

import (
	"errors"
	"math/big"

	"github.com/tronvm/tvm-edge/state/runtime/evm"
	"github.com/tronvm/tvm-edge/types"
)

// ErrExecutionReverted is reported to tracers for frames ending with REVERT
var ErrExecutionReverted = errors.New("execution reverted")

// RuntimeHost is the interface defining the methods for accessing state by tracer
type RuntimeHost interface {
	// GetRefund returns refunded value
	GetRefund() uint64
	// GetState returns the storage slot of the given address
	GetState(types.Address, types.Hash) types.Hash
}

type Tracer interface {
	Clear()
	GetResult() (interface{}, error)

	// Message-level
	TxStart(gasLimit uint64)
	TxEnd(gasLeft uint64)

	// Frame-level
	CallStart(
		depth int, // begins from 1
		from, to types.Address,
		callType string,
		gas uint64,
		value *big.Int,
		input []byte,
	)
	CallEnd(
		depth int, // begins from 1
		output []byte,
		gasLeft uint64,
		err error,
	)

	// Op-level
	CaptureState(
		memory []byte,
		stack []*big.Int,
		opCode int,
		contractAddress types.Address,
		sp int,
		host RuntimeHost,
	)
	ExecuteState(
		contractAddress types.Address,
		ip uint64,
		opcode string,
		availableGas uint64,
		cost uint64,
		lastReturnData []byte,
		depth int,
		err error,
		host RuntimeHost,
	)
}

// TokenTracer is implemented by tracers that record the TRC-10 transfer of a frame.
// The executor calls CallToken right after CallStart of a CALLTOKEN frame.
type TokenTracer interface {
	CallToken(depth int, tokenID, tokenValue *big.Int)
}

// ReasonError converts an exit reason into the error reported to tracers
func ReasonError(reason evm.ExitReason) error {
	switch {
	case reason.IsSucceed():
		return nil
	case reason.IsRevert():
		return ErrExecutionReverted
	default:
		return reason.Err
	}
}
