package runtime

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/tronvm/tvm-edge/crypto"
	"github.com/tronvm/tvm-edge/state/runtime/evm"
	"github.com/tronvm/tvm-edge/state/runtime/precompiled"
	"github.com/tronvm/tvm-edge/types"
)

// popN pops n words, the first one being the top of the stack
func popN(stack *evm.Stack, n int) ([]uint256.Int, error) {
	if stack.Len() < n {
		return nil, evm.ErrStackUnderflow
	}

	args := make([]uint256.Int, n)
	for i := range args {
		args[i], _ = stack.Pop()
	}

	return args, nil
}

func wordToAddress(w *uint256.Int) types.Address {
	b := w.Bytes32()

	return types.BytesToAddress(b[12:])
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}

func (r *Runtime) callRequest(op evm.OpCode) (*CallRequest, error) {
	n := 6
	switch op {
	case evm.CALL, evm.CALLCODE:
		n = 7
	case evm.CALLTOKEN:
		n = 8
	}

	args, err := popN(r.machine.Stack(), n)
	if err != nil {
		return nil, err
	}

	gas, to := args[0], wordToAddress(&args[1])
	rest := args[2:]

	value := new(big.Int)
	if op == evm.CALL || op == evm.CALLCODE || op == evm.CALLTOKEN {
		value = rest[0].ToBig()
		rest = rest[1:]
	}

	var tokenID *big.Int
	if op == evm.CALLTOKEN {
		tokenID = rest[0].ToBig()
		rest = rest[1:]
	}

	mem := r.machine.Memory()

	inOffset, inSize, err := mem.ResizeOffset(&rest[0], &rest[1])
	if err != nil {
		return nil, err
	}

	outOffset, outSize, err := mem.ResizeOffset(&rest[2], &rest[3])
	if err != nil {
		return nil, err
	}

	req := &CallRequest{
		CodeAddress: to,
		Input:       mem.Get(inOffset, inSize),
		outOffset:   outOffset,
		outLength:   outSize,
	}

	if gas.IsUint64() {
		target := gas.Uint64()
		req.TargetGas = &target
	}

	ctx := r.context

	switch op {
	case evm.CALL:
		req.Scheme = Call
		req.Context = Context{
			Address:        to,
			Caller:         ctx.Address,
			CallValue:      value,
			CallTokenID:    new(big.Int),
			CallTokenValue: new(big.Int),
		}
		req.Transfer = &Transfer{Source: ctx.Address, Target: to, Value: value}

	case evm.CALLCODE:
		req.Scheme = CallCode
		req.Context = Context{
			Address:        ctx.Address,
			Caller:         ctx.Address,
			CallValue:      value,
			CallTokenID:    new(big.Int),
			CallTokenValue: new(big.Int),
		}
		req.Transfer = &Transfer{Source: ctx.Address, Target: ctx.Address, Value: value}

	case evm.DELEGATECALL:
		req.Scheme = DelegateCall
		req.Context = Context{
			Address:        ctx.Address,
			Caller:         ctx.Caller,
			CallValue:      orZero(ctx.CallValue),
			CallTokenID:    orZero(ctx.CallTokenID),
			CallTokenValue: orZero(ctx.CallTokenValue),
		}

	case evm.STATICCALL:
		req.Scheme = StaticCall
		req.IsStatic = true
		req.Context = Context{
			Address:        to,
			Caller:         ctx.Address,
			CallValue:      new(big.Int),
			CallTokenID:    new(big.Int),
			CallTokenValue: new(big.Int),
		}

	case evm.CALLTOKEN:
		req.Scheme = CallToken
		req.Context = Context{
			Address:        to,
			Caller:         ctx.Address,
			CallValue:      new(big.Int),
			CallTokenID:    tokenID,
			CallTokenValue: value,
		}
		req.Transfer = &Transfer{Source: ctx.Address, Target: to, Value: value, TokenID: tokenID}
	}

	return req, nil
}

func (r *Runtime) trapCall(h Handler, op evm.OpCode) *Capture {
	req, err := r.callRequest(op)
	if err != nil {
		return r.exit(evm.ErrorReason(err))
	}

	if res, ok := r.precompiles.Run(req.CodeAddress, req.Input, req.TargetGas); ok {
		return r.feedPrecompile(h, req, res)
	}

	res, trap := h.Call(req)
	if !trap {
		return r.feedCall(req, res)
	}

	return &Capture{Resolve: &ResolveCall{rt: r, tok: r.suspend(), req: req}}
}

func (r *Runtime) createRequest(h Handler, op evm.OpCode) (*CreateRequest, error) {
	n := 3
	if op == evm.CREATE2 {
		n = 4
	}

	args, err := popN(r.machine.Stack(), n)
	if err != nil {
		return nil, err
	}

	mem := r.machine.Memory()

	offset, size, err := mem.ResizeOffset(&args[1], &args[2])
	if err != nil {
		return nil, err
	}

	code := mem.Get(offset, size)

	var scheme CreateScheme
	if op == evm.CREATE2 {
		salt := types.Hash(args[3].Bytes32())
		scheme = Create2Scheme(r.context.Address, crypto.Keccak256Hash(code), salt)
	} else {
		scheme = LegacyScheme(h.CreateNonce(), h.TransactionRootHash())
	}

	return &CreateRequest{
		Caller:   r.context.Address,
		Scheme:   scheme,
		Value:    args[0].ToBig(),
		InitCode: code,
	}, nil
}

func (r *Runtime) trapCreate(h Handler, op evm.OpCode) *Capture {
	req, err := r.createRequest(h, op)
	if err != nil {
		return r.exit(evm.ErrorReason(err))
	}

	res, trap := h.Create(req)
	if !trap {
		return r.feedCreate(res)
	}

	return &Capture{Resolve: &ResolveCreate{rt: r, tok: r.suspend(), req: req}}
}

// push reports an exit when the stack is full
func (r *Runtime) push(v *uint256.Int) *Capture {
	if err := r.machine.Stack().Push(v); err != nil {
		return r.exit(evm.ErrorReason(err))
	}

	return nil
}

func (r *Runtime) pushBool(b bool) *Capture {
	v := new(uint256.Int)
	if b {
		v.SetOne()
	}

	return r.push(v)
}

func (r *Runtime) copyOut(req *CallRequest, data []byte) {
	n := uint64(len(data))
	if n > req.outLength {
		n = req.outLength
	}

	r.machine.Memory().Set(req.outOffset, data[:n])
}

func (r *Runtime) feedPrecompile(h Handler, req *CallRequest, res *precompiled.Result) *Capture {
	r.returnData = nil

	if err := h.RecordCost(res.Cost); err != nil {
		return r.pushBool(false)
	}

	if res.Err != nil {
		return r.pushBool(false)
	}

	if req.Transfer != nil {
		if err := h.Transfer(*req.Transfer); err != nil {
			return r.pushBool(false)
		}
	}

	r.returnData = res.ReturnValue
	r.copyOut(req, res.ReturnValue)

	return r.pushBool(true)
}

func (r *Runtime) feedCall(req *CallRequest, res *CallResult) *Capture {
	if res == nil {
		return r.exit(evm.FatalReason(evm.ErrUnhandledInterrupt))
	}

	r.returnData = res.ReturnData

	switch res.Reason.Kind {
	case evm.ExitSucceed:
		r.copyOut(req, res.ReturnData)

		return r.pushBool(true)

	case evm.ExitRevert:
		r.copyOut(req, res.ReturnData)

		return r.pushBool(false)

	case evm.ExitError:
		return r.pushBool(false)

	default:
		_ = r.machine.Stack().PushBool(false)

		return r.exit(res.Reason)
	}
}

func (r *Runtime) feedCreate(res *CreateResult) *Capture {
	if res == nil {
		return r.exit(evm.FatalReason(evm.ErrUnhandledInterrupt))
	}

	r.returnData = res.ReturnData

	switch res.Reason.Kind {
	case evm.ExitSucceed:
		addr := types.ZeroAddress
		if res.Address != nil {
			addr = *res.Address
		}

		return r.push(new(uint256.Int).SetBytes(addr.Bytes()))

	case evm.ExitRevert, evm.ExitError:
		return r.pushBool(false)

	default:
		_ = r.machine.Stack().PushBool(false)

		return r.exit(res.Reason)
	}
}
