package evm

import (
	"errors"
	"fmt"
)

var (
	ErrStackUnderflow      = errors.New("stack underflow")
	ErrStackOverflow       = errors.New("stack overflow")
	ErrInvalidJump         = errors.New("invalid jump")
	ErrInvalidRange        = errors.New("invalid memory range")
	ErrDesignatedInvalid   = errors.New("designated invalid opcode")
	ErrCallTooDeep         = errors.New("max call depth exceeded")
	ErrCreateCollision     = errors.New("contract address collision")
	ErrCreateContractLimit = errors.New("max code size exceeded")
	ErrCreateEmpty         = errors.New("create with empty code")
	ErrOutOfOffset         = errors.New("return data out of bounds")
	ErrOutOfGas            = errors.New("out of gas")
	ErrOutOfFund           = errors.New("insufficient balance for transfer")
	ErrOpcodeNotFound      = errors.New("opcode not found")
	ErrWriteProtection     = errors.New("write protection")
	ErrPCUnderflow         = errors.New("pc underflow")

	// fatal errors abort the whole execution, not only the current frame
	ErrNotSupported        = errors.New("not supported")
	ErrUnhandledInterrupt  = errors.New("unhandled interrupt")
	ErrCallErrorAsFatal    = errors.New("call error as fatal")
	ErrExecutionAbandoned  = errors.New("execution abandoned")
	ErrInconsistentRuntime = errors.New("inconsistent runtime state")
)

var fatalErrors = []error{
	ErrNotSupported,
	ErrUnhandledInterrupt,
	ErrCallErrorAsFatal,
	ErrExecutionAbandoned,
	ErrInconsistentRuntime,
}

// ExitKind classifies how a frame terminated
type ExitKind int

const (
	ExitSucceed ExitKind = iota
	ExitRevert
	ExitError
	ExitFatal
)

func (k ExitKind) String() string {
	switch k {
	case ExitSucceed:
		return "succeed"
	case ExitRevert:
		return "revert"
	case ExitError:
		return "error"
	case ExitFatal:
		return "fatal"
	default:
		return fmt.Sprintf("ExitKind(%d)", int(k))
	}
}

// Succeed is the flavour of a successful exit
type Succeed int

const (
	Stopped Succeed = iota
	Returned
	Suicided
)

func (s Succeed) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Returned:
		return "returned"
	case Suicided:
		return "suicided"
	default:
		return fmt.Sprintf("Succeed(%d)", int(s))
	}
}

// ExitReason is the terminal status of a frame
type ExitReason struct {
	Kind    ExitKind
	Succeed Succeed
	Err     error
}

// SucceedReason builds a successful exit
func SucceedReason(s Succeed) ExitReason {
	return ExitReason{Kind: ExitSucceed, Succeed: s}
}

// RevertReason builds a revert exit
func RevertReason() ExitReason {
	return ExitReason{Kind: ExitRevert}
}

// ErrorReason builds an exit from an error, fatal errors keep their kind
func ErrorReason(err error) ExitReason {
	if err == nil {
		panic("BUG: exit with nil error")
	}

	if IsFatal(err) {
		return ExitReason{Kind: ExitFatal, Err: err}
	}

	return ExitReason{Kind: ExitError, Err: err}
}

// FatalReason builds a fatal exit
func FatalReason(err error) ExitReason {
	return ExitReason{Kind: ExitFatal, Err: err}
}

// IsFatal reports whether the error aborts the whole execution
func IsFatal(err error) bool {
	for _, fatal := range fatalErrors {
		if errors.Is(err, fatal) {
			return true
		}
	}

	return false
}

func (e ExitReason) IsSucceed() bool {
	return e.Kind == ExitSucceed
}

func (e ExitReason) IsRevert() bool {
	return e.Kind == ExitRevert
}

func (e ExitReason) IsError() bool {
	return e.Kind == ExitError
}

func (e ExitReason) IsFatal() bool {
	return e.Kind == ExitFatal
}

func (e ExitReason) String() string {
	switch e.Kind {
	case ExitSucceed:
		return fmt.Sprintf("succeed(%s)", e.Succeed)
	case ExitRevert:
		return "revert"
	default:
		return fmt.Sprintf("%s(%v)", e.Kind, e.Err)
	}
}
