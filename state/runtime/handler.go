package runtime

import (
	"math/big"

	"github.com/tronvm/tvm-edge/state/runtime/evm"
	"github.com/tronvm/tvm-edge/types"
)

// Handler gives a Runtime access to the chain state and to nested execution
type Handler interface {
	// account state
	Balance(addr types.Address) *big.Int
	TokenBalance(addr types.Address, tokenID *big.Int) *big.Int
	CodeSize(addr types.Address) uint64
	CodeHash(addr types.Address) types.Hash
	Code(addr types.Address) []byte
	Storage(addr types.Address, index types.Hash) types.Hash
	Exists(addr types.Address) bool

	// environment
	GasLeft() uint64
	GasPrice() *big.Int
	Origin() types.Address
	BlockHash(number *big.Int) types.Hash
	BlockNumber() *big.Int
	BlockCoinbase() types.Address
	BlockTimestamp() *big.Int
	BlockDifficulty() *big.Int
	BlockGasLimit() *big.Int
	ChainID() *big.Int
	TransactionRootHash() types.Hash
	// CreateNonce is the nonce the next legacy CREATE derives its address from
	CreateNonce() uint64

	// effects
	SetStorage(addr types.Address, index types.Hash, value types.Hash) error
	Log(addr types.Address, topics []types.Hash, data []byte) error
	MarkDelete(addr types.Address, target types.Address) error
	Transfer(t Transfer) error
	// RecordCost charges gas computed outside the handler, like precompile costs
	RecordCost(cost uint64) error

	// Call executes a message call. It either returns the result, or
	// returns true to trap and have the host resolve the call later.
	Call(req *CallRequest) (*CallResult, bool)
	// Create is the Call counterpart for contract creation
	Create(req *CreateRequest) (*CreateResult, bool)

	// PreValidate runs before every opcode. An error terminates the frame.
	PreValidate(ctx *Context, op evm.OpCode, stack *evm.Stack) error
}

// CallRequest is a message call issued by the executing code
type CallRequest struct {
	Scheme      CallScheme
	CodeAddress types.Address
	// Transfer is nil for DELEGATECALL and STATICCALL
	Transfer *Transfer
	Input    []byte
	// TargetGas is the gas requested by the caller, nil when it does not
	// fit in 64 bits
	TargetGas *uint64
	IsStatic  bool
	// Context is the context of the callee frame
	Context Context

	outOffset uint64
	outLength uint64
}

// CreateRequest is a contract creation issued by the executing code
type CreateRequest struct {
	Caller    types.Address
	Scheme    CreateScheme
	Value     *big.Int
	InitCode  []byte
	TargetGas *uint64
}

// CallResult is the outcome of a message call
type CallResult struct {
	Reason     evm.ExitReason
	ReturnData []byte
}

// CreateResult is the outcome of a contract creation
type CreateResult struct {
	Reason evm.ExitReason
	// Address is the created contract, nil when creation failed early
	Address    *types.Address
	ReturnData []byte
}

// ExitError lets a handler terminate the frame with a specific exit reason
type ExitError struct {
	Reason evm.ExitReason
}

func (e *ExitError) Error() string {
	return e.Reason.String()
}
