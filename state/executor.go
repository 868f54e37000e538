package state

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/crypto"
	"github.com/tronvm/tvm-edge/helper/common"
	"github.com/tronvm/tvm-edge/state/runtime"
	"github.com/tronvm/tvm-edge/state/runtime/evm"
	"github.com/tronvm/tvm-edge/state/runtime/precompiled"
	"github.com/tronvm/tvm-edge/state/runtime/tracer"
	"github.com/tronvm/tvm-edge/types"
)

const (
	// blockHashWindow is the number of ancestors BLOCKHASH can see
	blockHashWindow = 256

	defaultJumpCacheSize = 256

	executorMetrics = "tvm"
)

var (
	// ErrExecutorBusy is returned when a message is applied while another
	// one is still executing
	ErrExecutorBusy = errors.New("executor is already applying a message")
)

// GetHashByNumber returns the hash function of a block number
type GetHashByNumber = func(i uint64) types.Hash

// TxContext is the block and transaction environment of a message
type TxContext struct {
	GasPrice            *big.Int
	Origin              types.Address
	Coinbase            types.Address
	Number              uint64
	Timestamp           uint64
	GasLimit            uint64
	ChainID             uint64
	Difficulty          *big.Int
	TransactionRootHash types.Hash
}

// Message is a call, or a contract creation when To is nil
type Message struct {
	From  types.Address
	To    *types.Address
	Value *big.Int
	// TokenID and TokenValue send a TRC-10 token along with a call
	TokenID    *big.Int
	TokenValue *big.Int
	Input      []byte
	Gas        uint64
}

// ExecutionResult is the outcome of a message
type ExecutionResult struct {
	ReturnValue []byte
	// GasLeft includes the refund
	GasLeft uint64
	GasUsed uint64
	Refund  uint64
	// Address is the created contract
	Address *types.Address
	Reason  evm.ExitReason
	Logs    []*types.Log
}

// Failed reports whether the message did not succeed
func (r *ExecutionResult) Failed() bool {
	return !r.Reason.IsSucceed()
}

// Reverted reports whether the message ended with REVERT
func (r *ExecutionResult) Reverted() bool {
	return r.Reason.IsRevert()
}

// JumpCache caches jump destination analysis by code hash. It is safe to
// share between executors.
type JumpCache struct {
	cache *lru.Cache
}

func NewJumpCache(size int) (*JumpCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create jump cache: %w", err)
	}

	return &JumpCache{cache: cache}, nil
}

// Analyze returns the jump destinations of the code
func (j *JumpCache) Analyze(code []byte) evm.ValidJumps {
	hash := crypto.Keccak256Hash(code)

	if v, ok := j.cache.Get(hash); ok {
		if jumps, ok := v.(evm.ValidJumps); ok {
			return jumps
		}
	}

	jumps := evm.Analyze(code)
	j.cache.Add(hash, jumps)

	return jumps
}

// frame is one call or create on the execution stack
type frame struct {
	rt       *runtime.Runtime
	gas      *Gasometer
	snapshot int
	static   bool

	// created is the contract of a create frame
	created *types.Address
	// resolve is the continuation of the parent waiting on this frame
	resolve runtime.Resolve

	// kind, to and input describe the frame to tracers
	kind  string
	to    types.Address
	input []byte
}

// frameResult is what a finished frame hands back to its parent
type frameResult struct {
	reason  evm.ExitReason
	data    []byte
	gasLeft uint64
	address *types.Address
}

type ExecutorOption func(e *Executor)

// WithJumpCache shares a jump analysis cache
func WithJumpCache(cache *JumpCache) ExecutorOption {
	return func(e *Executor) {
		e.jumps = cache
	}
}

// WithTracer reports every frame and opcode to t
func WithTracer(t tracer.Tracer) ExecutorOption {
	return func(e *Executor) {
		e.tracer = t
	}
}

// WithGetHash sets the lookup of ancestor block hashes
func WithGetHash(getHash GetHashByNumber) ExecutorOption {
	return func(e *Executor) {
		e.getHash = getHash
	}
}

// Executor applies messages to a World. It implements runtime.Handler and
// drives nested calls through an explicit frame stack.
type Executor struct {
	logger hclog.Logger
	config *chain.Config
	world  *World
	ctx    TxContext

	getHash     GetHashByNumber
	precompiles *precompiled.Precompiled
	jumps       *JumpCache
	tracer      tracer.Tracer

	frames []*frame
	// pending is the child frame prepared by the last trapping Call or Create
	pending     *frame
	createNonce uint64
}

// NewExecutor creates an executor applying messages under config
func NewExecutor(
	config *chain.Config,
	world *World,
	ctx TxContext,
	logger hclog.Logger,
	opts ...ExecutorOption,
) *Executor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	e := &Executor{
		logger:      logger.Named("executor"),
		config:      config,
		world:       world,
		ctx:         ctx,
		precompiles: precompiled.New(config),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.jumps == nil {
		// the size is a valid constant
		e.jumps, _ = NewJumpCache(defaultJumpCacheSize)
	}

	return e
}

func (e *Executor) World() *World {
	return e.world
}

// Call2 applies a message call
func (e *Executor) Call2(
	caller, to types.Address,
	input []byte,
	value *big.Int,
	gas uint64,
) (*ExecutionResult, error) {
	return e.Apply(&Message{From: caller, To: &to, Input: input, Value: value, Gas: gas})
}

// Create2 applies a contract creation
func (e *Executor) Create2(
	caller types.Address,
	code []byte,
	value *big.Int,
	gas uint64,
) (*ExecutionResult, error) {
	return e.Apply(&Message{From: caller, Input: code, Value: value, Gas: gas})
}

// Apply executes a message and commits its effects to the world
func (e *Executor) Apply(msg *Message) (*ExecutionResult, error) {
	if len(e.frames) != 0 || e.pending != nil {
		return nil, ErrExecutorBusy
	}

	defer metrics.MeasureSince([]string{executorMetrics, "execute"}, time.Now())

	if e.tracer != nil {
		e.tracer.TxStart(msg.Gas)
	}

	var res *frameResult
	if msg.To == nil {
		res = e.applyCreate(msg)
	} else {
		res = e.applyCall(msg)
	}

	gasUsed := msg.Gas - res.gasLeft
	refund := common.Min(e.world.GetRefund(), gasUsed/2)

	result := &ExecutionResult{
		ReturnValue: res.data,
		GasLeft:     res.gasLeft + refund,
		GasUsed:     gasUsed - refund,
		Refund:      refund,
		Reason:      res.reason,
		Logs:        e.world.Logs(),
	}

	if msg.To == nil && res.reason.IsSucceed() {
		result.Address = res.address
	}

	e.world.Commit()

	if e.tracer != nil {
		e.tracer.TxEnd(result.GasLeft)
	}

	e.logger.Debug(
		"message applied",
		"from", msg.From,
		"to", msg.To,
		"reason", res.reason,
		"gas used", result.GasUsed,
	)

	return result, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}

func (e *Executor) applyCall(msg *Message) *frameResult {
	to := *msg.To

	req := &runtime.CallRequest{
		Scheme:      runtime.Call,
		CodeAddress: to,
		Input:       msg.Input,
		Context: runtime.Context{
			Address:        to,
			Caller:         msg.From,
			CallValue:      orZero(msg.Value),
			CallTokenID:    new(big.Int),
			CallTokenValue: new(big.Int),
		},
		Transfer: &runtime.Transfer{Source: msg.From, Target: to, Value: orZero(msg.Value)},
	}

	if msg.TokenID != nil {
		req.Scheme = runtime.CallToken
		req.Context.CallValue = new(big.Int)
		req.Context.CallTokenID = msg.TokenID
		req.Context.CallTokenValue = orZero(msg.TokenValue)
		req.Transfer = &runtime.Transfer{
			Source:  msg.From,
			Target:  to,
			Value:   orZero(msg.TokenValue),
			TokenID: msg.TokenID,
		}
	}

	if res, ok := e.precompiles.Run(to, msg.Input, &msg.Gas); ok {
		return e.applyPrecompile(req, res, msg.Gas)
	}

	f, res := e.prepareCall(req, msg.Gas, false)
	if res != nil {
		return res
	}

	return e.run(f)
}

// applyPrecompile runs a message addressed to a native contract
func (e *Executor) applyPrecompile(req *runtime.CallRequest, res *precompiled.Result, gas uint64) *frameResult {
	snapshot := e.world.Snapshot()

	if err := e.transfer(*req.Transfer); err != nil {
		return &frameResult{reason: evm.ErrorReason(err), gasLeft: gas}
	}

	if res.Cost > gas {
		e.world.RevertToSnapshot(snapshot)

		return &frameResult{reason: evm.ErrorReason(evm.ErrOutOfGas)}
	}

	if res.Err != nil {
		e.world.RevertToSnapshot(snapshot)

		return &frameResult{reason: evm.ErrorReason(res.Err)}
	}

	return &frameResult{
		reason:  evm.SucceedReason(evm.Returned),
		data:    res.ReturnValue,
		gasLeft: gas - res.Cost,
	}
}

func (e *Executor) applyCreate(msg *Message) *frameResult {
	req := &runtime.CreateRequest{
		Caller:   msg.From,
		Scheme:   runtime.LegacyScheme(e.createNonce, e.ctx.TransactionRootHash),
		Value:    orZero(msg.Value),
		InitCode: msg.Input,
	}

	f, res := e.prepareCreate(req, msg.Gas)
	if res != nil {
		return res
	}

	return e.run(f)
}

// current is the frame being executed
func (e *Executor) current() *frame {
	if len(e.frames) == 0 {
		panic("BUG: handler used outside of a frame")
	}

	return e.frames[len(e.frames)-1]
}

// run drives the frame stack until the root frame exits
func (e *Executor) run(root *frame) *frameResult {
	e.push(root)

	capture, err := root.rt.Run(e)

	for {
		if err != nil {
			panic(fmt.Sprintf("BUG: frame can not make progress: %v", err))
		}

		top := e.current()

		if capture.IsTrap() {
			child := e.pending
			if child == nil {
				panic("BUG: trap without a prepared frame")
			}

			e.pending = nil
			child.resolve = capture.Resolve
			e.push(child)

			capture, err = child.rt.Run(e)

			continue
		}

		res := e.finish(top, capture.Exit)

		if e.tracer != nil {
			e.tracer.CallEnd(len(e.frames), res.data, res.gasLeft, tracer.ReasonError(res.reason))
		}

		e.frames = e.frames[:len(e.frames)-1]

		if top.resolve == nil {
			return res
		}

		e.current().gas.RecordStipend(res.gasLeft)

		switch resolve := top.resolve.(type) {
		case *runtime.ResolveCall:
			capture, err = resolve.Resume(e, &runtime.CallResult{
				Reason:     res.reason,
				ReturnData: res.data,
			})

		case *runtime.ResolveCreate:
			capture, err = resolve.Resume(e, &runtime.CreateResult{
				Reason:     res.reason,
				Address:    res.address,
				ReturnData: res.data,
			})

		default:
			panic(fmt.Sprintf("BUG: unexpected continuation %T", top.resolve))
		}
	}
}

func (e *Executor) push(f *frame) {
	e.frames = append(e.frames, f)

	metrics.IncrCounter([]string{executorMetrics, "frames"}, 1)

	e.logger.Trace(
		"frame",
		"depth", len(e.frames)-1,
		"address", f.rt.Context().Address,
		"gas", f.gas.Gas(),
		"static", f.static,
	)

	if e.tracer != nil {
		ctx := f.rt.Context()
		e.tracer.CallStart(len(e.frames), ctx.Caller, f.to, f.kind, f.gas.Gas(), ctx.CallValue, f.input)

		if tt, ok := e.tracer.(tracer.TokenTracer); ok && f.kind == runtime.CallToken.String() {
			tt.CallToken(len(e.frames), ctx.CallTokenID, ctx.CallTokenValue)
		}
	}
}

// finish settles the state and gas of an exited frame
func (e *Executor) finish(f *frame, reason evm.ExitReason) *frameResult {
	data := f.rt.ReturnValue()

	if reason.IsSucceed() && f.created != nil {
		reason = e.deposit(f, data)
		data = nil
	}

	switch {
	case reason.IsSucceed():
	case reason.IsRevert():
		e.world.RevertToSnapshot(f.snapshot)
	default:
		e.world.RevertToSnapshot(f.snapshot)
		f.gas.Fail()
	}

	return &frameResult{
		reason:  reason,
		data:    data,
		gasLeft: f.gas.Gas(),
		address: f.created,
	}
}

// deposit stores the code returned by a create frame
func (e *Executor) deposit(f *frame, code []byte) evm.ExitReason {
	if limit := e.config.CreateContractLimit; limit != nil && uint64(len(code)) > *limit {
		return evm.ErrorReason(evm.ErrCreateContractLimit)
	}

	if err := f.gas.RecordCost(uint64(len(code)) * GasContractByte); err != nil {
		return evm.ErrorReason(err)
	}

	e.world.SetCode(*f.created, code)

	return evm.SucceedReason(evm.Returned)
}

func (e *Executor) newRuntime(code, input []byte, ctx runtime.Context) *runtime.Runtime {
	return runtime.New(
		code,
		input,
		ctx,
		e.config,
		runtime.WithPrecompiles(e.precompiles),
		runtime.WithValidJumps(e.jumps.Analyze(code)),
	)
}

// prepareCall builds the frame of a call, or returns its result when the
// call completes without running code
func (e *Executor) prepareCall(req *runtime.CallRequest, gas uint64, static bool) (*frame, *frameResult) {
	if uint64(len(e.frames)) > e.config.CallStackLimit {
		return nil, &frameResult{reason: evm.ErrorReason(evm.ErrCallTooDeep), gasLeft: gas}
	}

	snapshot := e.world.Snapshot()

	if req.Transfer != nil {
		if err := e.transfer(*req.Transfer); err != nil {
			return nil, &frameResult{reason: evm.ErrorReason(err), gasLeft: gas}
		}
	}

	code := e.world.GetCode(req.CodeAddress)
	if len(code) == 0 {
		return nil, &frameResult{reason: evm.SucceedReason(evm.Stopped), gasLeft: gas}
	}

	return &frame{
		rt:       e.newRuntime(code, req.Input, req.Context),
		gas:      NewGasometer(gas),
		snapshot: snapshot,
		static:   static,
		kind:     req.Scheme.String(),
		to:       req.CodeAddress,
		input:    req.Input,
	}, nil
}

// createAddress derives the address of a new contract
func (e *Executor) createAddress(scheme runtime.CreateScheme) types.Address {
	switch scheme.Kind {
	case runtime.CreateLegacy:
		return crypto.CreateAddress(scheme.TransactionRootHash, scheme.Nonce)

	case runtime.CreateSalted:
		prefix := byte(types.TronAddressPrefix)
		if e.config.HasRealCreate2 {
			prefix = crypto.Create2Prefix
		}

		return crypto.CreateAddress2(prefix, scheme.Caller, scheme.Salt, scheme.CodeHash)

	case runtime.CreateFixed:
		return scheme.Address

	default:
		panic(fmt.Sprintf("BUG: unknown create scheme %s", scheme.Kind))
	}
}

// prepareCreate builds the frame of a contract creation, or returns its
// result when it completes without running code
func (e *Executor) prepareCreate(req *runtime.CreateRequest, gas uint64) (*frame, *frameResult) {
	if uint64(len(e.frames)) > e.config.CallStackLimit {
		return nil, &frameResult{reason: evm.ErrorReason(evm.ErrCallTooDeep), gasLeft: gas}
	}

	value := orZero(req.Value)
	if e.world.GetBalance(req.Caller).Cmp(value) < 0 {
		return nil, &frameResult{reason: evm.ErrorReason(evm.ErrOutOfFund), gasLeft: gas}
	}

	address := e.createAddress(req.Scheme)

	e.createNonce++
	e.world.IncrNonce(req.Caller)

	// check for address collisions
	if e.world.GetNonce(address) != 0 || e.world.GetCodeSize(address) != 0 {
		return nil, &frameResult{reason: evm.ErrorReason(evm.ErrCreateCollision)}
	}

	snapshot := e.world.Snapshot()

	e.world.CreateAccount(address)

	if e.config.CreateIncreaseNonce {
		e.world.SetNonce(address, 1)
	}

	if err := e.world.Transfer(req.Caller, address, value); err != nil {
		panic(fmt.Sprintf("BUG: transfer after balance check: %v", err))
	}

	if len(req.InitCode) == 0 {
		return nil, &frameResult{
			reason:  evm.SucceedReason(evm.Stopped),
			gasLeft: gas,
			address: &address,
		}
	}

	ctx := runtime.Context{
		Address:        address,
		Caller:         req.Caller,
		CallValue:      value,
		CallTokenID:    new(big.Int),
		CallTokenValue: new(big.Int),
	}

	return &frame{
		rt:       e.newRuntime(req.InitCode, nil, ctx),
		gas:      NewGasometer(gas),
		snapshot: snapshot,
		created:  &address,
		kind:     createKind(req.Scheme),
		to:       address,
		input:    req.InitCode,
	}, nil
}

func createKind(scheme runtime.CreateScheme) string {
	if scheme.Kind == runtime.CreateSalted {
		return "CREATE2"
	}

	return "CREATE"
}

func (e *Executor) transfer(t runtime.Transfer) error {
	var err error
	if t.IsToken() {
		err = e.world.TransferToken(t.Source, t.Target, t.TokenID, orZero(t.Value))
	} else {
		err = e.world.Transfer(t.Source, t.Target, orZero(t.Value))
	}

	if errors.Is(err, ErrInsufficientBalance) {
		return evm.ErrOutOfFund
	}

	return err
}

// runtime.Handler

func (e *Executor) Balance(addr types.Address) *big.Int {
	return e.world.GetBalance(addr)
}

func (e *Executor) TokenBalance(addr types.Address, tokenID *big.Int) *big.Int {
	return e.world.GetTokenBalance(addr, tokenID)
}

func (e *Executor) CodeSize(addr types.Address) uint64 {
	return uint64(e.world.GetCodeSize(addr))
}

func (e *Executor) CodeHash(addr types.Address) types.Hash {
	return e.world.GetCodeHash(addr)
}

func (e *Executor) Code(addr types.Address) []byte {
	return e.world.GetCode(addr)
}

func (e *Executor) Storage(addr types.Address, index types.Hash) types.Hash {
	return e.world.GetState(addr, index)
}

func (e *Executor) Exists(addr types.Address) bool {
	if e.config.EmptyConsideredExists {
		return e.world.Exist(addr)
	}

	return !e.world.Empty(addr)
}

func (e *Executor) GasLeft() uint64 {
	return e.current().gas.Gas()
}

func (e *Executor) GasPrice() *big.Int {
	return orZero(e.ctx.GasPrice)
}

func (e *Executor) Origin() types.Address {
	return e.ctx.Origin
}

// BlockHash returns the hash of one of the last 256 blocks
func (e *Executor) BlockHash(number *big.Int) types.Hash {
	if e.getHash == nil || !number.IsUint64() {
		return types.ZeroHash
	}

	n := number.Uint64()
	if n >= e.ctx.Number || e.ctx.Number-n > blockHashWindow {
		return types.ZeroHash
	}

	return e.getHash(n)
}

func (e *Executor) BlockNumber() *big.Int {
	return new(big.Int).SetUint64(e.ctx.Number)
}

func (e *Executor) BlockCoinbase() types.Address {
	return e.ctx.Coinbase
}

func (e *Executor) BlockTimestamp() *big.Int {
	return new(big.Int).SetUint64(e.ctx.Timestamp)
}

func (e *Executor) BlockDifficulty() *big.Int {
	return orZero(e.ctx.Difficulty)
}

func (e *Executor) BlockGasLimit() *big.Int {
	return new(big.Int).SetUint64(e.ctx.GasLimit)
}

func (e *Executor) ChainID() *big.Int {
	return new(big.Int).SetUint64(e.ctx.ChainID)
}

func (e *Executor) TransactionRootHash() types.Hash {
	return e.ctx.TransactionRootHash
}

func (e *Executor) CreateNonce() uint64 {
	return e.createNonce
}

func (e *Executor) SetStorage(addr types.Address, index types.Hash, value types.Hash) error {
	e.world.SetState(addr, index, value)

	return nil
}

func (e *Executor) Log(addr types.Address, topics []types.Hash, data []byte) error {
	e.world.AddLog(&types.Log{
		Address: addr,
		Topics:  topics,
		Data:    append([]byte{}, data...),
	})

	return nil
}

// MarkDelete moves the balance and tokens of addr to target and marks addr
// as suicided
func (e *Executor) MarkDelete(addr types.Address, target types.Address) error {
	if addr != target {
		e.world.AddBalance(target, e.world.GetBalance(addr))

		e.world.WalkTokens(addr, func(tokenID, balance *big.Int) {
			if err := e.world.TransferToken(addr, target, tokenID, balance); err != nil {
				panic(fmt.Sprintf("BUG: moving a token balance: %v", err))
			}
		})
	}

	e.world.Suicide(addr)

	return nil
}

func (e *Executor) Transfer(t runtime.Transfer) error {
	return e.transfer(t)
}

func (e *Executor) RecordCost(cost uint64) error {
	return e.current().gas.RecordCost(cost)
}

// Call runs nested calls in a new frame. Calls that do not need to run code
// complete synchronously.
func (e *Executor) Call(req *runtime.CallRequest) (*runtime.CallResult, bool) {
	parent := e.current()

	target := uint64(math.MaxUint64)
	if req.TargetGas != nil {
		target = *req.TargetGas
	}

	gas, _ := forwardedGas(e.config, parent.gas.Gas(), &target)
	if err := parent.gas.RecordCost(gas); err != nil {
		panic(fmt.Sprintf("BUG: forwarded gas exceeds the gas left: %v", err))
	}

	if req.Transfer != nil && orZero(req.Transfer.Value).Sign() != 0 {
		gas += e.config.CallStipend
	}

	metrics.IncrCounter([]string{executorMetrics, "trap", "call"}, 1)

	f, res := e.prepareCall(req, gas, parent.static || req.IsStatic)
	if res != nil {
		parent.gas.RecordStipend(res.gasLeft)

		return &runtime.CallResult{Reason: res.reason, ReturnData: res.data}, false
	}

	e.pending = f

	return nil, true
}

// Create runs contract creations in a new frame
func (e *Executor) Create(req *runtime.CreateRequest) (*runtime.CreateResult, bool) {
	parent := e.current()

	gas, _ := forwardedGas(e.config, parent.gas.Gas(), req.TargetGas)
	if err := parent.gas.RecordCost(gas); err != nil {
		panic(fmt.Sprintf("BUG: forwarded gas exceeds the gas left: %v", err))
	}

	metrics.IncrCounter([]string{executorMetrics, "trap", "create"}, 1)

	f, res := e.prepareCreate(req, gas)
	if res != nil {
		parent.gas.RecordStipend(res.gasLeft)

		return &runtime.CreateResult{
			Reason:     res.reason,
			Address:    res.address,
			ReturnData: res.data,
		}, false
	}

	e.pending = f

	return nil, true
}

// PreValidate gates and meters every opcode
func (e *Executor) PreValidate(ctx *runtime.Context, op evm.OpCode, stack *evm.Stack) error {
	f := e.current()

	if e.tracer == nil {
		return e.meter(f, ctx, op, stack)
	}

	e.captureState(f, ctx, op, stack)

	gas := f.gas.Gas()
	err := e.meter(f, ctx, op, stack)

	e.tracer.ExecuteState(
		ctx.Address,
		uint64(f.rt.Machine().Position()),
		op.String(),
		gas,
		gas-f.gas.Gas(),
		f.rt.ReturnDataBuffer(),
		len(e.frames),
		err,
		e.world,
	)

	return err
}

func (e *Executor) captureState(f *frame, ctx *runtime.Context, op evm.OpCode, stack *evm.Stack) {
	data := stack.Data()

	items := make([]*big.Int, len(data))
	for i := range data {
		items[i] = data[i].ToBig()
	}

	e.tracer.CaptureState(f.rt.Machine().Memory().Data(), items, int(op), ctx.Address, len(items), e.world)
}

// meter checks that op may run in the frame and charges its cost
func (e *Executor) meter(f *frame, ctx *runtime.Context, op evm.OpCode, stack *evm.Stack) error {
	if !op.EnabledIn(e.config) {
		return evm.ErrOpcodeNotFound
	}

	if f.static {
		write, err := isWrite(op, stack)
		if err != nil {
			return err
		}

		if write {
			return evm.ErrWriteProtection
		}
	}

	cost, err := dynamicGas(e.config, e.world, ctx, op, stack, f.gas.Gas())
	if err != nil {
		return err
	}

	if err := f.gas.RecordMemory(cost.memory); err != nil {
		return err
	}

	if err := f.gas.RecordCost(cost.gas); err != nil {
		return err
	}

	if cost.refund != 0 {
		e.world.AddRefund(cost.refund)
	}

	if cost.release != 0 {
		e.world.SubRefund(cost.release)
	}

	switch op {
	case evm.CALL, evm.CALLCODE, evm.DELEGATECALL, evm.STATICCALL, evm.CALLTOKEN:
		requested, _ := peekSize(stack, 0)

		if _, ok := forwardedGas(e.config, f.gas.Gas(), &requested); !ok {
			return evm.ErrOutOfGas
		}
	}

	return nil
}
