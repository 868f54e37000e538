package structtracer

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/tronvm/tvm-edge/helper/common"
	"github.com/tronvm/tvm-edge/helper/hex"
	"github.com/tronvm/tvm-edge/state/runtime/evm"
	"github.com/tronvm/tvm-edge/state/runtime/tracer"
	"github.com/tronvm/tvm-edge/types"
)

var _ tracer.Tracer = (*StructTracer)(nil)

type Config struct {
	EnableMemory     bool // enable memory capture
	EnableStack      bool // enable stack capture
	EnableStorage    bool // enable storage capture
	EnableReturnData bool // enable return data capture

	// Limit caps the number of recorded opcodes, zero means no limit
	Limit int
}

// StructLog is one executed opcode
type StructLog struct {
	Pc            uint64
	Op            string
	Gas           uint64
	GasCost       uint64
	Contract      types.Address
	Memory        []byte
	Stack         []*big.Int
	ReturnData    []byte
	Storage       map[types.Hash]types.Hash
	Depth         int
	RefundCounter uint64
	Err           error
}

func (l *StructLog) ErrorString() string {
	if l.Err != nil {
		return l.Err.Error()
	}

	return ""
}

// StructTracer records every executed opcode of a message. CaptureState
// opens an entry with the machine state before the opcode and ExecuteState
// closes it with the metering outcome.
type StructTracer struct {
	Config Config

	logs    []StructLog
	pending *StructLog
	// storage holds the slots seen so far, per contract
	storage map[types.Address]map[types.Hash]types.Hash

	gasLimit    uint64
	consumedGas uint64
	output      []byte
	err         error
	truncated   bool
}

func NewStructTracer(config Config) *StructTracer {
	return &StructTracer{
		Config:  config,
		storage: make(map[types.Address]map[types.Hash]types.Hash),
	}
}

func (t *StructTracer) Clear() {
	t.logs = t.logs[:0]
	t.pending = nil
	t.storage = make(map[types.Address]map[types.Hash]types.Hash)
	t.gasLimit = 0
	t.consumedGas = 0
	t.output = nil
	t.err = nil
	t.truncated = false
}

func (t *StructTracer) TxStart(gasLimit uint64) {
	t.gasLimit = gasLimit
}

func (t *StructTracer) TxEnd(gasLeft uint64) {
	t.consumedGas = t.gasLimit - gasLeft
}

func (t *StructTracer) CallStart(int, types.Address, types.Address, string, uint64, *big.Int, []byte) {
}

func (t *StructTracer) CallEnd(depth int, output []byte, _ uint64, err error) {
	if depth == 1 {
		t.output = output
		t.err = err
	}
}

func (t *StructTracer) full() bool {
	if t.Config.Limit > 0 && len(t.logs) >= t.Config.Limit {
		t.truncated = true

		return true
	}

	return false
}

func (t *StructTracer) CaptureState(
	memory []byte,
	stack []*big.Int,
	opCode int,
	contractAddress types.Address,
	sp int,
	host tracer.RuntimeHost,
) {
	if t.full() {
		t.pending = nil

		return
	}

	entry := &StructLog{Contract: contractAddress}

	if t.Config.EnableMemory {
		entry.Memory = append([]byte{}, memory...)
	}

	if t.Config.EnableStack {
		entry.Stack = copyStack(stack)
	}

	if t.Config.EnableStorage {
		t.trackStorage(stack, opCode, contractAddress, sp, host)
	}

	t.pending = entry
}

// trackStorage records the slot read by SLOAD or written by SSTORE. The
// stack is bottom first, so sp-1 is the top.
func (t *StructTracer) trackStorage(
	stack []*big.Int,
	opCode int,
	contractAddress types.Address,
	sp int,
	host tracer.RuntimeHost,
) {
	var slot, value types.Hash

	switch {
	case opCode == evm.SLOAD && sp >= 1:
		slot = types.BytesToHash(stack[sp-1].Bytes())
		value = host.GetState(contractAddress, slot)
	case opCode == evm.SSTORE && sp >= 2:
		slot = types.BytesToHash(stack[sp-1].Bytes())
		value = types.BytesToHash(stack[sp-2].Bytes())
	default:
		return
	}

	slots, ok := t.storage[contractAddress]
	if !ok {
		slots = make(map[types.Hash]types.Hash)
		t.storage[contractAddress] = slots
	}

	slots[slot] = value
}

func (t *StructTracer) ExecuteState(
	contractAddress types.Address,
	ip uint64,
	opCode string,
	availableGas uint64,
	cost uint64,
	lastReturnData []byte,
	depth int,
	err error,
	host tracer.RuntimeHost,
) {
	entry := t.pending
	t.pending = nil

	if entry == nil {
		if t.full() {
			return
		}

		entry = &StructLog{Contract: contractAddress}
	}

	entry.Pc = ip
	entry.Op = opCode
	entry.Gas = availableGas
	entry.GasCost = cost
	entry.Depth = depth
	entry.RefundCounter = host.GetRefund()
	entry.Err = err

	if t.Config.EnableReturnData {
		entry.ReturnData = append([]byte{}, lastReturnData...)
	}

	if slots, ok := t.storage[contractAddress]; ok && t.Config.EnableStorage {
		entry.Storage = make(map[types.Hash]types.Hash, len(slots))

		for k, v := range slots {
			entry.Storage[k] = v
		}
	}

	t.logs = append(t.logs, *entry)
}

func copyStack(stack []*big.Int) []*big.Int {
	res := make([]*big.Int, len(stack))
	for i, v := range stack {
		res[i] = new(big.Int).Set(v)
	}

	return res
}

type StructTraceResult struct {
	Failed      bool           `json:"failed"`
	Gas         uint64         `json:"gas"`
	ReturnValue string         `json:"returnValue"`
	Truncated   bool           `json:"truncated,omitempty"`
	StructLogs  []StructLogRes `json:"structLogs"`
}

type StructLogRes struct {
	Pc            uint64            `json:"pc"`
	Op            string            `json:"op"`
	Gas           uint64            `json:"gas"`
	GasCost       uint64            `json:"gasCost"`
	Depth         int               `json:"depth"`
	Contract      string            `json:"contract"`
	Error         string            `json:"error,omitempty"`
	Stack         []string          `json:"stack,omitempty"`
	Memory        []string          `json:"memory,omitempty"`
	ReturnData    string            `json:"returnData,omitempty"`
	Storage       map[string]string `json:"storage,omitempty"`
	RefundCounter uint64            `json:"refund,omitempty"`
}

func (t *StructTracer) GetResult() (interface{}, error) {
	var returnValue string

	// reverted frames still hand back their output
	if t.err == nil || errors.Is(t.err, tracer.ErrExecutionReverted) {
		returnValue = fmt.Sprintf("%x", t.output)
	}

	return &StructTraceResult{
		Failed:      t.err != nil,
		Gas:         t.consumedGas,
		ReturnValue: returnValue,
		Truncated:   t.truncated,
		StructLogs:  formatStructLogs(t.logs),
	}, nil
}

func formatStructLogs(logs []StructLog) []StructLogRes {
	res := make([]StructLogRes, len(logs))

	for i := range logs {
		log := &logs[i]

		res[i] = StructLogRes{
			Pc:            log.Pc,
			Op:            log.Op,
			Gas:           log.Gas,
			GasCost:       log.GasCost,
			Depth:         log.Depth,
			Contract:      log.Contract.String(),
			Error:         log.ErrorString(),
			RefundCounter: log.RefundCounter,
		}

		if log.Stack != nil {
			res[i].Stack = make([]string, len(log.Stack))
			for j, value := range log.Stack {
				res[i].Stack[j] = hex.EncodeBig(value)
			}
		}

		if log.Memory != nil {
			res[i].Memory = formatMemory(log.Memory)
		}

		if len(log.ReturnData) != 0 {
			res[i].ReturnData = hex.EncodeToHex(log.ReturnData)
		}

		if log.Storage != nil {
			res[i].Storage = make(map[string]string, len(log.Storage))
			for slot, value := range log.Storage {
				res[i].Storage[hex.EncodeToString(slot.Bytes())] = hex.EncodeToString(value.Bytes())
			}
		}
	}

	return res
}

// formatMemory splits memory in 32 byte words, the last one right padded
func formatMemory(memory []byte) []string {
	words := make([]string, 0, common.WordCount(uint64(len(memory))))

	for i := 0; i < len(memory); i += 32 {
		end := i + 32
		if end > len(memory) {
			end = len(memory)
		}

		words = append(words, hex.EncodeToString(common.RightPad(memory[i:end], 32)))
	}

	return words
}
