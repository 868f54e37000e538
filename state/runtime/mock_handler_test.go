package runtime

import (
	"math/big"

	"github.com/tronvm/tvm-edge/crypto"
	"github.com/tronvm/tvm-edge/state/runtime/evm"
	"github.com/tronvm/tvm-edge/types"
)

var (
	contractAddr = types.StringToAddress("0x41c0de")
	callerAddr   = types.StringToAddress("0x41ca11e5")
	originAddr   = types.StringToAddress("0x4102161e")
	otherAddr    = types.StringToAddress("0x4107e5")
)

type mockLog struct {
	addr   types.Address
	topics []types.Hash
	data   []byte
}

// mockHandler is an in memory Handler. Nested calls and creates trap
// unless callResult or createResult are set.
type mockHandler struct {
	balances map[types.Address]*big.Int
	tokens   map[types.Address]map[uint64]*big.Int
	code     map[types.Address][]byte
	storage  map[types.Address]map[types.Hash]types.Hash

	logs      []mockLog
	deleted   map[types.Address]types.Address
	transfers []Transfer
	costs     []uint64
	calls     []*CallRequest
	creates   []*CreateRequest
	validated []evm.OpCode

	callResult   *CallResult
	createResult *CreateResult
	costErr      error
	transferErr  error
	preValidate  func(ctx *Context, op evm.OpCode, stack *evm.Stack) error

	nonce  uint64
	txRoot types.Hash
}

func newMockHandler() *mockHandler {
	return &mockHandler{
		balances: map[types.Address]*big.Int{},
		tokens:   map[types.Address]map[uint64]*big.Int{},
		code:     map[types.Address][]byte{},
		storage:  map[types.Address]map[types.Hash]types.Hash{},
		deleted:  map[types.Address]types.Address{},
		txRoot:   types.StringToHash("0xa166ceae7066e25689f134a16f08d82911363e16d4911ca3a0c23159ff92aaf0"),
	}
}

func (m *mockHandler) Balance(addr types.Address) *big.Int {
	if b, ok := m.balances[addr]; ok {
		return b
	}

	return big.NewInt(0)
}

func (m *mockHandler) TokenBalance(addr types.Address, tokenID *big.Int) *big.Int {
	if b, ok := m.tokens[addr][tokenID.Uint64()]; ok {
		return b
	}

	return big.NewInt(0)
}

func (m *mockHandler) CodeSize(addr types.Address) uint64 {
	return uint64(len(m.code[addr]))
}

func (m *mockHandler) CodeHash(addr types.Address) types.Hash {
	return crypto.Keccak256Hash(m.code[addr])
}

func (m *mockHandler) Code(addr types.Address) []byte {
	return m.code[addr]
}

func (m *mockHandler) Storage(addr types.Address, index types.Hash) types.Hash {
	return m.storage[addr][index]
}

func (m *mockHandler) Exists(addr types.Address) bool {
	_, hasBalance := m.balances[addr]
	_, hasCode := m.code[addr]

	return hasBalance || hasCode
}

func (m *mockHandler) GasLeft() uint64 {
	return 100000
}

func (m *mockHandler) GasPrice() *big.Int {
	return big.NewInt(140)
}

func (m *mockHandler) Origin() types.Address {
	return originAddr
}

func (m *mockHandler) BlockHash(number *big.Int) types.Hash {
	return types.BytesToHash(number.Bytes())
}

func (m *mockHandler) BlockNumber() *big.Int {
	return big.NewInt(100)
}

func (m *mockHandler) BlockCoinbase() types.Address {
	return otherAddr
}

func (m *mockHandler) BlockTimestamp() *big.Int {
	return big.NewInt(1600000000)
}

func (m *mockHandler) BlockDifficulty() *big.Int {
	return big.NewInt(0)
}

func (m *mockHandler) BlockGasLimit() *big.Int {
	return big.NewInt(10000000)
}

func (m *mockHandler) ChainID() *big.Int {
	return big.NewInt(0x2b6653dc)
}

func (m *mockHandler) TransactionRootHash() types.Hash {
	return m.txRoot
}

func (m *mockHandler) CreateNonce() uint64 {
	return m.nonce
}

func (m *mockHandler) SetStorage(addr types.Address, index types.Hash, value types.Hash) error {
	if _, ok := m.storage[addr]; !ok {
		m.storage[addr] = map[types.Hash]types.Hash{}
	}

	m.storage[addr][index] = value

	return nil
}

func (m *mockHandler) Log(addr types.Address, topics []types.Hash, data []byte) error {
	m.logs = append(m.logs, mockLog{addr: addr, topics: topics, data: data})

	return nil
}

func (m *mockHandler) MarkDelete(addr types.Address, target types.Address) error {
	m.deleted[addr] = target

	return nil
}

func (m *mockHandler) Transfer(t Transfer) error {
	if m.transferErr != nil {
		return m.transferErr
	}

	m.transfers = append(m.transfers, t)

	return nil
}

func (m *mockHandler) RecordCost(cost uint64) error {
	if m.costErr != nil {
		return m.costErr
	}

	m.costs = append(m.costs, cost)

	return nil
}

func (m *mockHandler) Call(req *CallRequest) (*CallResult, bool) {
	m.calls = append(m.calls, req)

	if m.callResult != nil {
		return m.callResult, false
	}

	return nil, true
}

func (m *mockHandler) Create(req *CreateRequest) (*CreateResult, bool) {
	m.creates = append(m.creates, req)

	if m.createResult != nil {
		return m.createResult, false
	}

	return nil, true
}

func (m *mockHandler) PreValidate(ctx *Context, op evm.OpCode, stack *evm.Stack) error {
	m.validated = append(m.validated, op)

	if m.preValidate != nil {
		return m.preValidate(ctx, op, stack)
	}

	return nil
}

// program assembly helpers

func ops(o ...evm.OpCode) []byte {
	code := make([]byte, len(o))
	for i, op := range o {
		code[i] = byte(op)
	}

	return code
}

func pushBytes(b []byte) []byte {
	if len(b) == 0 {
		b = []byte{0}
	}

	return append([]byte{byte(evm.PUSH1) + byte(len(b)-1)}, b...)
}

func push(v uint64) []byte {
	return pushBytes(new(big.Int).SetUint64(v).Bytes())
}

func pushAddress(addr types.Address) []byte {
	return pushBytes(addr.Bytes())
}

func program(parts ...[]byte) []byte {
	code := []byte{}
	for _, p := range parts {
		code = append(code, p...)
	}

	return code
}

// returnTop returns the word on top of the stack
func returnTop() []byte {
	return program(push(0), ops(evm.MSTORE), push(32), push(0), ops(evm.RETURN))
}

// callArgs pushes the arguments of a CALL in stack order
func callArgs(gas uint64, to types.Address, value uint64, inOff, inSize, outOff, outSize uint64) []byte {
	return program(
		push(outSize), push(outOff), push(inSize), push(inOff),
		push(value), pushAddress(to), push(gas),
	)
}
