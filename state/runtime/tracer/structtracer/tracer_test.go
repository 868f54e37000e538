package structtracer

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tronvm/tvm-edge/state/runtime/evm"
	"github.com/tronvm/tvm-edge/state/runtime/tracer"
	"github.com/tronvm/tvm-edge/types"
)

var (
	testFrom = types.StringToAddress("1")
	testTo   = types.StringToAddress("2")

	testEmptyConfig = Config{}
)

type mockHost struct {
	getRefundFn func() uint64
	getStateFn  func(types.Address, types.Hash) types.Hash
}

func (m *mockHost) GetRefund() uint64 {
	return m.getRefundFn()
}

func (m *mockHost) GetState(a types.Address, h types.Hash) types.Hash {
	return m.getStateFn(a, h)
}

func newMockHost(refund uint64, storage map[types.Hash]types.Hash) *mockHost {
	return &mockHost{
		getRefundFn: func() uint64 {
			return refund
		},
		getStateFn: func(_ types.Address, h types.Hash) types.Hash {
			return storage[h]
		},
	}
}

func TestStructLogErrorString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		log      StructLog
		expected string
	}{
		{
			name:     "should return error message",
			log:      StructLog{Err: errors.New("error message")},
			expected: "error message",
		},
		{
			name:     "should return empty string",
			log:      StructLog{},
			expected: "",
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.expected, test.log.ErrorString())
		})
	}
}

func TestStructTracerClear(t *testing.T) {
	t.Parallel()

	st := NewStructTracer(Config{EnableMemory: true, EnableStack: true, EnableStorage: true, Limit: 1})
	st.TxStart(100)
	st.CallEnd(1, []byte{0x1}, 0, errors.New("failed"))
	st.CaptureState([]byte{0x1}, []*big.Int{big.NewInt(1)}, evm.SLOAD, testTo, 1, newMockHost(0, nil))
	st.ExecuteState(testTo, 0, "SLOAD", 100, 800, nil, 1, nil, newMockHost(0, nil))
	st.CaptureState(nil, nil, evm.JUMPDEST, testTo, 0, newMockHost(0, nil))

	require.True(t, st.truncated)

	st.Clear()

	assert.Empty(t, st.logs)
	assert.Empty(t, st.output)
	assert.Empty(t, st.storage)
	assert.Nil(t, st.pending)
	assert.Nil(t, st.err)
	assert.False(t, st.truncated)
	assert.Zero(t, st.gasLimit)
}

func TestStructTracerTxEnd(t *testing.T) {
	t.Parallel()

	st := NewStructTracer(testEmptyConfig)
	st.TxStart(1000)
	st.TxEnd(400)

	assert.Equal(t, uint64(600), st.consumedGas)
}

func TestStructTracerCallEnd(t *testing.T) {
	t.Parallel()

	st := NewStructTracer(testEmptyConfig)
	st.CallStart(1, testFrom, testTo, "CALL", 100, big.NewInt(0), nil)

	// nested frames do not touch the message output
	st.CallEnd(2, []byte{0x2}, 0, errors.New("inner"))
	assert.Nil(t, st.output)
	assert.Nil(t, st.err)

	st.CallEnd(1, []byte{0x1}, 0, nil)
	assert.Equal(t, []byte{0x1}, st.output)
}

func TestStructTracerTrackStorage(t *testing.T) {
	t.Parallel()

	slot := types.StringToHash("0x5")
	value := types.StringToHash("0x7")

	tests := []struct {
		name     string
		opCode   int
		stack    []*big.Int
		expected map[types.Address]map[types.Hash]types.Hash
	}{
		{
			name:   "sload reads from the host",
			opCode: evm.SLOAD,
			stack:  []*big.Int{big.NewInt(5)},
			expected: map[types.Address]map[types.Hash]types.Hash{
				testTo: {slot: value},
			},
		},
		{
			name:   "sstore takes the value from the stack",
			opCode: evm.SSTORE,
			stack:  []*big.Int{big.NewInt(9), big.NewInt(5)},
			expected: map[types.Address]map[types.Hash]types.Hash{
				testTo: {slot: types.StringToHash("0x9")},
			},
		},
		{
			name:     "sstore with a short stack",
			opCode:   evm.SSTORE,
			stack:    []*big.Int{big.NewInt(5)},
			expected: map[types.Address]map[types.Hash]types.Hash{},
		},
		{
			name:     "other opcodes are ignored",
			opCode:   evm.ADD,
			stack:    []*big.Int{big.NewInt(1), big.NewInt(2)},
			expected: map[types.Address]map[types.Hash]types.Hash{},
		},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			st := NewStructTracer(Config{EnableStorage: true})
			host := newMockHost(0, map[types.Hash]types.Hash{slot: value})

			st.CaptureState(nil, test.stack, test.opCode, testTo, len(test.stack), host)

			assert.Equal(t, test.expected, st.storage)
		})
	}
}

func TestStructTracerCaptureIsACopy(t *testing.T) {
	t.Parallel()

	st := NewStructTracer(Config{EnableMemory: true, EnableStack: true})
	host := newMockHost(0, nil)

	memory := []byte{0x1}
	stack := []*big.Int{big.NewInt(1)}

	st.CaptureState(memory, stack, evm.POP, testTo, 1, host)

	memory[0] = 0x2
	stack[0].SetUint64(2)

	st.ExecuteState(testTo, 0, "POP", 10, 2, nil, 1, nil, host)

	require.Len(t, st.logs, 1)
	assert.Equal(t, []byte{0x1}, st.logs[0].Memory)
	assert.Equal(t, int64(1), st.logs[0].Stack[0].Int64())
}

func TestStructTracerLimit(t *testing.T) {
	t.Parallel()

	st := NewStructTracer(Config{Limit: 2})
	host := newMockHost(0, nil)

	for pc := uint64(0); pc < 4; pc++ {
		st.CaptureState(nil, nil, evm.JUMPDEST, testTo, 0, host)
		st.ExecuteState(testTo, pc, "JUMPDEST", 100, 1, nil, 1, nil, host)
	}

	res, err := st.GetResult()
	require.NoError(t, err)

	result, ok := res.(*StructTraceResult)
	require.True(t, ok)
	assert.True(t, result.Truncated)
	require.Len(t, result.StructLogs, 2)
	assert.Equal(t, uint64(1), result.StructLogs[1].Pc)
}

func TestStructTracerGetResult(t *testing.T) {
	t.Parallel()

	st := NewStructTracer(Config{EnableMemory: true, EnableStack: true, EnableStorage: true, EnableReturnData: true})
	host := newMockHost(15000, nil)

	memory := make([]byte, 33)
	memory[31] = 0x2a
	memory[32] = 0xff

	st.TxStart(100000)
	st.CallStart(1, testFrom, testTo, "CALL", 100000, big.NewInt(0), nil)
	st.CaptureState(memory, []*big.Int{big.NewInt(0), big.NewInt(1)}, evm.SSTORE, testTo, 2, host)
	st.ExecuteState(testTo, 4, "SSTORE", 99994, 5000, []byte{0xab}, 1, nil, host)
	st.CallEnd(1, []byte{0x2a}, 94994, nil)
	st.TxEnd(94994)

	res, err := st.GetResult()
	require.NoError(t, err)

	assert.Equal(t, &StructTraceResult{
		Failed:      false,
		Gas:         5006,
		ReturnValue: "2a",
		StructLogs: []StructLogRes{
			{
				Pc:       4,
				Op:       "SSTORE",
				Gas:      99994,
				GasCost:  5000,
				Depth:    1,
				Contract: testTo.String(),
				Stack:    []string{"0x0", "0x1"},
				Memory: []string{
					"000000000000000000000000000000000000000000000000000000000000002a",
					"ff00000000000000000000000000000000000000000000000000000000000000",
				},
				ReturnData: "0xab",
				Storage: map[string]string{
					"0000000000000000000000000000000000000000000000000000000000000001": "0000000000000000000000000000000000000000000000000000000000000000",
				},
				RefundCounter: 15000,
			},
		},
	}, res)
}

func TestStructTracerGetResult_Failed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		returnValue string
	}{
		{"reverted", tracer.ErrExecutionReverted, "01"},
		{"failed", evm.ErrOutOfGas, ""},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			st := NewStructTracer(testEmptyConfig)
			st.CallEnd(1, []byte{0x1}, 0, test.err)

			res, err := st.GetResult()
			require.NoError(t, err)

			result, ok := res.(*StructTraceResult)
			require.True(t, ok)
			assert.True(t, result.Failed)
			assert.Equal(t, test.returnValue, result.ReturnValue)
		})
	}
}
