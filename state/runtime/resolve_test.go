package runtime

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/crypto"
	"github.com/tronvm/tvm-edge/state/runtime/evm"
	"github.com/tronvm/tvm-edge/types"
)

// callAndReturn calls otherAddr with memory[0:4] as input, copies the
// output to memory[32:64] and returns the success flag followed by the
// output
func callAndReturn(op evm.OpCode) []byte {
	args := callArgs(5000, otherAddr, 3, 0, 4, 32, 32)
	if op == evm.DELEGATECALL || op == evm.STATICCALL {
		args = program(push(32), push(32), push(4), push(0), pushAddress(otherAddr), push(5000))
	}

	return program(
		// the input is the last four bytes of the first word
		push(0xdeadbeef), push(224), ops(evm.SHL), push(0), ops(evm.MSTORE),
		args, ops(op),
		push(0), ops(evm.MSTORE),
		push(64), push(0), ops(evm.RETURN),
	)
}

func trapCall(t *testing.T, r *Runtime, h Handler) *ResolveCall {
	t.Helper()

	capture, err := r.Run(h)
	require.NoError(t, err)
	require.True(t, capture.IsTrap())

	resolve, ok := capture.Resolve.(*ResolveCall)
	require.True(t, ok)
	assert.Same(t, r, resolve.Runtime())

	return resolve
}

func TestResolveCall_Resume(t *testing.T) {
	t.Parallel()

	h := newMockHandler()
	r := newRuntime(callAndReturn(evm.CALL), chain.GreatVoyage41Config())

	resolve := trapCall(t, r, h)

	req := resolve.Request()
	assert.Equal(t, Call, req.Scheme)
	assert.Equal(t, otherAddr, req.CodeAddress)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, req.Input)
	require.NotNil(t, req.TargetGas)
	assert.Equal(t, uint64(5000), *req.TargetGas)
	assert.False(t, req.IsStatic)

	assert.Equal(t, otherAddr, req.Context.Address)
	assert.Equal(t, contractAddr, req.Context.Caller)
	assert.Equal(t, big.NewInt(3), req.Context.CallValue)

	require.NotNil(t, req.Transfer)
	assert.Equal(t, contractAddr, req.Transfer.Source)
	assert.Equal(t, otherAddr, req.Transfer.Target)
	assert.Equal(t, big.NewInt(3), req.Transfer.Value)
	assert.False(t, req.Transfer.IsToken())

	// the runtime can not be driven while suspended
	assert.True(t, r.Suspended())

	_, err := r.Step(h)
	assert.ErrorIs(t, err, ErrRuntimeSuspended)

	_, err = r.Run(h)
	assert.ErrorIs(t, err, ErrRuntimeSuspended)

	output := word(0x77)

	capture, err := resolve.Resume(h, &CallResult{
		Reason:     evm.SucceedReason(evm.Returned),
		ReturnData: output,
	})
	require.NoError(t, err)
	require.False(t, capture.IsTrap())
	assert.Equal(t, evm.SucceedReason(evm.Returned), capture.Exit)

	assert.False(t, r.Suspended())
	assert.Equal(t, output, r.ReturnDataBuffer())
	assert.Equal(t, append(word(1), output...), r.ReturnValue())

	// exactly once
	_, err = resolve.Resume(h, &CallResult{Reason: evm.SucceedReason(evm.Returned)})
	assert.ErrorIs(t, err, ErrContinuationConsumed)

	assert.ErrorIs(t, resolve.Discard(), ErrContinuationConsumed)
}

func TestResolveCall_Outcomes(t *testing.T) {
	t.Parallel()

	output := word(0x77)

	cases := []struct {
		name     string
		result   *CallResult
		exit     evm.ExitReason
		expected []byte
	}{
		{
			"revert copies the output",
			&CallResult{Reason: evm.RevertReason(), ReturnData: output},
			evm.SucceedReason(evm.Returned),
			append(word(0), output...),
		},
		{
			"error",
			&CallResult{Reason: evm.ErrorReason(evm.ErrOutOfGas), ReturnData: output},
			evm.SucceedReason(evm.Returned),
			append(word(0), word(0)...),
		},
		{
			"fatal aborts the caller",
			&CallResult{Reason: evm.FatalReason(evm.ErrNotSupported)},
			evm.FatalReason(evm.ErrNotSupported),
			[]byte{},
		},
		{
			"missing result",
			nil,
			evm.FatalReason(evm.ErrUnhandledInterrupt),
			[]byte{},
		},
		{
			"short output",
			&CallResult{Reason: evm.SucceedReason(evm.Returned), ReturnData: []byte{0x01, 0x02}},
			evm.SucceedReason(evm.Returned),
			append(word(1), append([]byte{0x01, 0x02}, make([]byte, 30)...)...),
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			h := newMockHandler()
			r := newRuntime(callAndReturn(evm.CALL), chain.GreatVoyage41Config())

			capture, err := trapCall(t, r, h).Resume(h, c.result)
			require.NoError(t, err)
			assert.Equal(t, c.exit, capture.Exit)
			assert.Equal(t, c.expected, r.ReturnValue())
		})
	}
}

func TestResolveCall_ResumeStep(t *testing.T) {
	t.Parallel()

	h := newMockHandler()
	r := newRuntime(callAndReturn(evm.CALL), chain.GreatVoyage41Config())

	resolve := trapCall(t, r, h)

	capture, err := resolve.ResumeStep(h, &CallResult{Reason: evm.SucceedReason(evm.Stopped)})
	require.NoError(t, err)
	assert.Nil(t, capture)

	// the success flag was pushed and one more opcode ran
	top, err := r.Machine().Stack().Peek(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), top.Uint64())

	capture = stepAll(t, r, h)
	assert.Equal(t, evm.SucceedReason(evm.Returned), capture.Exit)
	assert.Equal(t, append(word(1), word(0)...), r.ReturnValue())
}

func TestResolveCall_Discard(t *testing.T) {
	t.Parallel()

	h := newMockHandler()
	r := newRuntime(callAndReturn(evm.CALL), chain.GreatVoyage41Config())

	resolve := trapCall(t, r, h)

	require.NoError(t, resolve.Discard())

	_, err := r.Step(h)
	assert.ErrorIs(t, err, ErrRuntimeAbandoned)

	_, err = r.Run(h)
	assert.ErrorIs(t, err, ErrRuntimeAbandoned)

	_, err = resolve.Resume(h, &CallResult{Reason: evm.SucceedReason(evm.Returned)})
	assert.ErrorIs(t, err, ErrContinuationConsumed)

	assert.ErrorIs(t, resolve.Discard(), ErrContinuationConsumed)
}

func TestResolveCall_Schemes(t *testing.T) {
	t.Parallel()

	t.Run("CALLCODE", func(t *testing.T) {
		t.Parallel()

		req := trapCall(t, newRuntime(callAndReturn(evm.CALLCODE), chain.GreatVoyage41Config()), newMockHandler()).Request()
		assert.Equal(t, CallCode, req.Scheme)
		assert.Equal(t, contractAddr, req.Context.Address)
		assert.Equal(t, contractAddr, req.Context.Caller)
		assert.Equal(t, contractAddr, req.Transfer.Target)
		assert.Equal(t, otherAddr, req.CodeAddress)
	})

	t.Run("DELEGATECALL", func(t *testing.T) {
		t.Parallel()

		req := trapCall(t, newRuntime(callAndReturn(evm.DELEGATECALL), chain.GreatVoyage41Config()), newMockHandler()).Request()
		assert.Equal(t, DelegateCall, req.Scheme)
		assert.Equal(t, contractAddr, req.Context.Address)
		assert.Equal(t, callerAddr, req.Context.Caller)
		assert.Equal(t, big.NewInt(7), req.Context.CallValue)
		assert.Nil(t, req.Transfer)
		assert.Equal(t, otherAddr, req.CodeAddress)
	})

	t.Run("STATICCALL", func(t *testing.T) {
		t.Parallel()

		req := trapCall(t, newRuntime(callAndReturn(evm.STATICCALL), chain.IstanbulConfig()), newMockHandler()).Request()
		assert.Equal(t, StaticCall, req.Scheme)
		assert.True(t, req.IsStatic)
		assert.Equal(t, otherAddr, req.Context.Address)
		assert.Equal(t, big.NewInt(0), req.Context.CallValue)
		assert.Nil(t, req.Transfer)
	})

	t.Run("CALLTOKEN", func(t *testing.T) {
		t.Parallel()

		code := program(
			push(32), push(32), push(0), push(0),
			push(1000001), push(9), pushAddress(otherAddr), push(5000),
			ops(evm.CALLTOKEN),
		)

		req := trapCall(t, newRuntime(code, chain.Odyssey37Config()), newMockHandler()).Request()
		assert.Equal(t, CallToken, req.Scheme)
		assert.Equal(t, otherAddr, req.Context.Address)
		assert.Equal(t, big.NewInt(0), req.Context.CallValue)
		assert.Equal(t, big.NewInt(1000001), req.Context.CallTokenID)
		assert.Equal(t, big.NewInt(9), req.Context.CallTokenValue)

		require.NotNil(t, req.Transfer)
		assert.True(t, req.Transfer.IsToken())
		assert.Equal(t, big.NewInt(1000001), req.Transfer.TokenID)
		assert.Equal(t, big.NewInt(9), req.Transfer.Value)
	})

	t.Run("gas does not fit", func(t *testing.T) {
		t.Parallel()

		code := program(
			push(0), push(0), push(0), push(0), push(0), pushAddress(otherAddr),
			pushBytes(append([]byte{0x01}, make([]byte, 8)...)),
			ops(evm.CALL),
		)

		req := trapCall(t, newRuntime(code, chain.FrontierConfig()), newMockHandler()).Request()
		assert.Nil(t, req.TargetGas)
		assert.Empty(t, req.Input)
	})
}

func TestRuntime_CallWithoutTrap(t *testing.T) {
	t.Parallel()

	h := newMockHandler()
	h.callResult = &CallResult{Reason: evm.SucceedReason(evm.Returned), ReturnData: word(0x55)}

	r := newRuntime(callAndReturn(evm.CALL), chain.GreatVoyage41Config())

	capture, err := r.Run(h)
	require.NoError(t, err)
	assert.False(t, capture.IsTrap())
	assert.Equal(t, evm.SucceedReason(evm.Returned), capture.Exit)
	assert.Equal(t, append(word(1), word(0x55)...), r.ReturnValue())
	assert.Len(t, h.calls, 1)
}

func TestRuntime_Precompile(t *testing.T) {
	t.Parallel()

	sha256Addr := types.BytesToAddress([]byte{0x02})

	code := program(
		push(0xdeadbeef), push(224), ops(evm.SHL), push(0), ops(evm.MSTORE),
		callArgs(5000, sha256Addr, 0, 0, 4, 32, 32), ops(evm.CALL),
		push(0), ops(evm.MSTORE),
		push(64), push(0), ops(evm.RETURN),
	)

	digest := "5f78c33274e43fa9de5659265c1d917e25c03722dcb0b8d27db8d5feaa813953"

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		h := newMockHandler()
		r := newRuntime(code, chain.GreatVoyage41Config())

		capture, err := r.Run(h)
		require.NoError(t, err)
		require.False(t, capture.IsTrap())
		assert.Equal(t, evm.SucceedReason(evm.Returned), capture.Exit)

		out := r.ReturnValue()
		assert.Equal(t, word(1), out[:32])
		assert.Equal(t, digest, types.BytesToHash(out[32:]).String()[2:])
		assert.Equal(t, out[32:], r.ReturnDataBuffer())

		// the host never saw the call but charged its cost
		assert.Empty(t, h.calls)
		assert.Equal(t, []uint64{60 + 12}, h.costs)
		require.Len(t, h.transfers, 1)
		assert.Equal(t, sha256Addr, h.transfers[0].Target)
	})

	t.Run("cost can not be charged", func(t *testing.T) {
		t.Parallel()

		h := newMockHandler()
		h.costErr = evm.ErrOutOfGas

		r := newRuntime(code, chain.GreatVoyage41Config())

		capture, err := r.Run(h)
		require.NoError(t, err)
		assert.Equal(t, evm.SucceedReason(evm.Returned), capture.Exit)
		assert.Equal(t, append(word(0), word(0)...), r.ReturnValue())
		assert.Empty(t, r.ReturnDataBuffer())
		assert.Empty(t, h.transfers)
	})

	t.Run("transfer fails", func(t *testing.T) {
		t.Parallel()

		h := newMockHandler()
		h.transferErr = evm.ErrOutOfFund

		r := newRuntime(code, chain.GreatVoyage41Config())

		_, err := r.Run(h)
		require.NoError(t, err)
		assert.Equal(t, append(word(0), word(0)...), r.ReturnValue())
	})
}

func TestResolveCreate(t *testing.T) {
	t.Parallel()

	initCode := []byte{0x60, 0x00, 0x60, 0x00, 0xf3}

	create := func(op evm.OpCode) []byte {
		args := program(push(5), push(27), push(11))
		if op == evm.CREATE2 {
			args = program(push(0x5a17), args)
		}

		return program(
			pushBytes(initCode), push(0), ops(evm.MSTORE),
			args, ops(op),
			returnTop(),
		)
	}

	trapCreate := func(t *testing.T, r *Runtime, h Handler) *ResolveCreate {
		t.Helper()

		capture, err := r.Run(h)
		require.NoError(t, err)
		require.True(t, capture.IsTrap())

		resolve, ok := capture.Resolve.(*ResolveCreate)
		require.True(t, ok)

		return resolve
	}

	t.Run("legacy", func(t *testing.T) {
		t.Parallel()

		h := newMockHandler()
		h.nonce = 4

		r := newRuntime(create(evm.CREATE), chain.GreatVoyage41Config())
		resolve := trapCreate(t, r, h)

		req := resolve.Request()
		assert.Equal(t, contractAddr, req.Caller)
		assert.Equal(t, big.NewInt(11), req.Value)
		assert.Equal(t, initCode, req.InitCode)
		assert.Equal(t, LegacyScheme(4, h.txRoot), req.Scheme)

		created := types.StringToAddress("0x41cafe")

		capture, err := resolve.Resume(h, &CreateResult{
			Reason:  evm.SucceedReason(evm.Returned),
			Address: &created,
		})
		require.NoError(t, err)
		assert.Equal(t, evm.SucceedReason(evm.Returned), capture.Exit)
		assert.Equal(t, addressWord(created), r.ReturnValue())

		_, err = resolve.Resume(h, nil)
		assert.ErrorIs(t, err, ErrContinuationConsumed)
	})

	t.Run("salted", func(t *testing.T) {
		t.Parallel()

		h := newMockHandler()
		r := newRuntime(create(evm.CREATE2), chain.GreatVoyage41Config())

		req := trapCreate(t, r, h).Request()
		assert.Equal(t, Create2Scheme(contractAddr, crypto.Keccak256Hash(initCode), types.BytesToHash([]byte{0x5a, 0x17})), req.Scheme)
	})

	t.Run("revert", func(t *testing.T) {
		t.Parallel()

		h := newMockHandler()
		r := newRuntime(create(evm.CREATE), chain.GreatVoyage41Config())

		capture, err := trapCreate(t, r, h).Resume(h, &CreateResult{
			Reason:     evm.RevertReason(),
			ReturnData: []byte("nope"),
		})
		require.NoError(t, err)
		assert.Equal(t, evm.SucceedReason(evm.Returned), capture.Exit)
		assert.Equal(t, word(0), r.ReturnValue())
		assert.Equal(t, []byte("nope"), r.ReturnDataBuffer())
	})

	t.Run("discard", func(t *testing.T) {
		t.Parallel()

		h := newMockHandler()
		r := newRuntime(create(evm.CREATE), chain.GreatVoyage41Config())

		resolve := trapCreate(t, r, h)
		require.NoError(t, resolve.Discard())

		_, err := resolve.ResumeStep(h, &CreateResult{Reason: evm.SucceedReason(evm.Returned)})
		assert.ErrorIs(t, err, ErrContinuationConsumed)

		_, err = r.Step(h)
		assert.True(t, errors.Is(err, ErrRuntimeAbandoned))
	})
}
