package calltracer

import (
	"math/big"

	"github.com/tronvm/tvm-edge/helper/hex"
	"github.com/tronvm/tvm-edge/state/runtime/tracer"
	"github.com/tronvm/tvm-edge/types"
)

var (
	_ tracer.Tracer      = (*CallTracer)(nil)
	_ tracer.TokenTracer = (*CallTracer)(nil)
)

// Call is one frame of the call tree. Quantities are 0x prefixed hex.
type Call struct {
	Type       string  `json:"type"`
	From       string  `json:"from"`
	FromBase58 string  `json:"fromBase58"`
	To         string  `json:"to"`
	ToBase58   string  `json:"toBase58"`
	Value      string  `json:"value,omitempty"`
	TokenID    string  `json:"tokenId,omitempty"`
	TokenValue string  `json:"tokenValue,omitempty"`
	Gas        string  `json:"gas"`
	GasUsed    string  `json:"gasUsed"`
	Steps      uint64  `json:"steps"`
	Input      string  `json:"input"`
	Output     string  `json:"output"`
	Error      string  `json:"error,omitempty"`
	Calls      []*Call `json:"calls,omitempty"`

	gas uint64
}

// CallTracer records the tree of frames of a message. Open frames are kept
// on a stack, the root first.
type CallTracer struct {
	root  *Call
	stack []*Call
}

func (c *CallTracer) Clear() {
	c.root = nil
	c.stack = nil
}

func (c *CallTracer) GetResult() (interface{}, error) {
	return c.root, nil
}

func (c *CallTracer) TxStart(uint64) {}

func (c *CallTracer) TxEnd(uint64) {}

func (c *CallTracer) current() *Call {
	if len(c.stack) == 0 {
		return nil
	}

	return c.stack[len(c.stack)-1]
}

func (c *CallTracer) CallStart(
	depth int,
	from, to types.Address,
	callType string,
	gas uint64,
	value *big.Int,
	input []byte,
) {
	frame := &Call{
		Type:       callType,
		From:       from.String(),
		FromBase58: from.Base58(),
		To:         to.String(),
		ToBase58:   to.Base58(),
		Value:      encodeBig(value),
		Gas:        hex.EncodeUint64(gas),
		Input:      hex.EncodeToHex(input),
		gas:        gas,
	}

	if depth <= 1 || c.root == nil {
		c.root = frame
		c.stack = []*Call{frame}

		return
	}

	// frames that never reported their end are dropped from the stack
	if len(c.stack) >= depth {
		c.stack = c.stack[:depth-1]
	}

	parent := c.current()
	parent.Calls = append(parent.Calls, frame)
	c.stack = append(c.stack, frame)
}

func (c *CallTracer) CallToken(depth int, tokenID, tokenValue *big.Int) {
	frame := c.current()
	if frame == nil || len(c.stack) != depth {
		return
	}

	frame.TokenID = encodeBig(tokenID)
	frame.TokenValue = encodeBig(tokenValue)
}

func (c *CallTracer) CallEnd(depth int, output []byte, gasLeft uint64, err error) {
	frame := c.current()
	if frame == nil {
		return
	}

	var used uint64
	if frame.gas > gasLeft {
		used = frame.gas - gasLeft
	}

	frame.GasUsed = hex.EncodeUint64(used)
	frame.Output = hex.EncodeToHex(output)

	if err != nil {
		frame.Error = err.Error()
	}

	// the root stays open so that GetResult sees a consistent tree
	if depth > 1 {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

func (c *CallTracer) CaptureState([]byte, []*big.Int, int, types.Address, int, tracer.RuntimeHost) {}

// ExecuteState counts the opcodes run by the frame itself
func (c *CallTracer) ExecuteState(
	_ types.Address,
	_ uint64,
	_ string,
	_ uint64,
	_ uint64,
	_ []byte,
	depth int,
	_ error,
	_ tracer.RuntimeHost,
) {
	if frame := c.current(); frame != nil && len(c.stack) == depth {
		frame.Steps++
	}
}

func encodeBig(v *big.Int) string {
	if v == nil {
		return "0x0"
	}

	return hex.EncodeBig(v)
}
