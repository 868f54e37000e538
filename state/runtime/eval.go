package runtime

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/tronvm/tvm-edge/crypto"
	"github.com/tronvm/tvm-edge/state/runtime/evm"
	"github.com/tronvm/tvm-edge/types"
)

func bigToWord(v *big.Int) *uint256.Int {
	if v == nil || v.Sign() < 0 {
		return new(uint256.Int)
	}

	w, _ := uint256.FromBig(v)

	return w
}

func addressToWord(addr types.Address) *uint256.Int {
	return new(uint256.Int).SetBytes(addr.Bytes())
}

func hashToWord(h types.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes(h.Bytes())
}

// eval executes an opcode that needs the handler. It returns true when the
// frame terminates.
func (r *Runtime) eval(h Handler, op evm.OpCode) (evm.ExitReason, bool) {
	stack := r.machine.Stack()

	var (
		push *uint256.Int
		err  error
	)

	switch op {
	case evm.SHA3:
		push, err = r.evalSha3()

	case evm.ADDRESS:
		push = addressToWord(r.context.Address)

	case evm.BALANCE:
		var addr types.Address
		if addr, err = stack.PopAddress(); err == nil {
			push = bigToWord(h.Balance(addr))
		}

	case evm.SELFBALANCE:
		push = bigToWord(h.Balance(r.context.Address))

	case evm.ORIGIN:
		push = addressToWord(h.Origin())

	case evm.CALLER:
		push = addressToWord(r.context.Caller)

	case evm.CALLVALUE:
		push = bigToWord(r.context.CallValue)

	case evm.GASPRICE:
		push = bigToWord(h.GasPrice())

	case evm.EXTCODESIZE:
		var addr types.Address
		if addr, err = stack.PopAddress(); err == nil {
			push = new(uint256.Int).SetUint64(h.CodeSize(addr))
		}

	case evm.EXTCODEHASH:
		var addr types.Address
		if addr, err = stack.PopAddress(); err == nil {
			push = new(uint256.Int)
			if h.Exists(addr) {
				push = hashToWord(h.CodeHash(addr))
			}
		}

	case evm.EXTCODECOPY:
		err = r.evalExtCodeCopy(h)

	case evm.RETURNDATASIZE:
		push = new(uint256.Int).SetUint64(uint64(len(r.returnData)))

	case evm.RETURNDATACOPY:
		err = r.evalReturnDataCopy()

	case evm.BLOCKHASH:
		var number uint256.Int
		if number, err = stack.Pop(); err == nil {
			push = hashToWord(h.BlockHash(number.ToBig()))
		}

	case evm.COINBASE:
		push = addressToWord(h.BlockCoinbase())

	case evm.TIMESTAMP:
		push = bigToWord(h.BlockTimestamp())

	case evm.NUMBER:
		push = bigToWord(h.BlockNumber())

	case evm.DIFFICULTY:
		push = bigToWord(h.BlockDifficulty())

	case evm.GASLIMIT:
		push = bigToWord(h.BlockGasLimit())

	case evm.CHAINID:
		push = bigToWord(h.ChainID())

	case evm.GAS:
		push = new(uint256.Int).SetUint64(h.GasLeft())

	case evm.SLOAD:
		var index types.Hash
		if index, err = stack.PopHash(); err == nil {
			push = hashToWord(h.Storage(r.context.Address, index))
		}

	case evm.SSTORE:
		err = r.evalSstore(h)

	case evm.LOG0, evm.LOG0 + 1, evm.LOG0 + 2, evm.LOG0 + 3, evm.LOG4:
		err = r.evalLog(h, int(op-evm.LOG0))

	case evm.SELFDESTRUCT:
		return r.evalSelfDestruct(h)

	case evm.CALLTOKENVALUE:
		push = bigToWord(r.context.CallTokenValue)

	case evm.CALLTOKENID:
		push = bigToWord(r.context.CallTokenID)

	case evm.TOKENBALANCE:
		push, err = r.evalTokenBalance(h)

	case evm.ISCONTRACT:
		var addr types.Address
		if addr, err = stack.PopAddress(); err == nil {
			push = new(uint256.Int)
			if h.CodeSize(addr) > 0 {
				push.SetOne()
			}
		}

	default:
		err = evm.ErrOpcodeNotFound
	}

	if err == nil && push != nil {
		err = stack.Push(push)
	}

	if err != nil {
		return reasonFromError(err), true
	}

	return evm.ExitReason{}, false
}

func (r *Runtime) evalSha3() (*uint256.Int, error) {
	args, err := popN(r.machine.Stack(), 2)
	if err != nil {
		return nil, err
	}

	mem := r.machine.Memory()

	offset, size, err := mem.ResizeOffset(&args[0], &args[1])
	if err != nil {
		return nil, err
	}

	return hashToWord(crypto.Keccak256Hash(mem.Get(offset, size))), nil
}

func (r *Runtime) evalExtCodeCopy(h Handler) error {
	args, err := popN(r.machine.Stack(), 4)
	if err != nil {
		return err
	}

	addr := wordToAddress(&args[0])
	mem := r.machine.Memory()

	offset, size, err := mem.ResizeOffset(&args[1], &args[3])
	if err != nil {
		return err
	}

	mem.CopyLarge(offset, &args[2], size, h.Code(addr))

	return nil
}

func (r *Runtime) evalReturnDataCopy() error {
	args, err := popN(r.machine.Stack(), 3)
	if err != nil {
		return err
	}

	dataOffset, length := &args[1], &args[2]

	end, overflow := new(uint256.Int).AddOverflow(dataOffset, length)
	if overflow || !end.IsUint64() || end.Uint64() > uint64(len(r.returnData)) {
		return evm.ErrOutOfOffset
	}

	mem := r.machine.Memory()

	offset, size, err := mem.ResizeOffset(&args[0], length)
	if err != nil {
		return err
	}

	mem.CopyLarge(offset, dataOffset, size, r.returnData)

	return nil
}

func (r *Runtime) evalSstore(h Handler) error {
	args, err := popN(r.machine.Stack(), 2)
	if err != nil {
		return err
	}

	index := types.Hash(args[0].Bytes32())
	value := types.Hash(args[1].Bytes32())

	return h.SetStorage(r.context.Address, index, value)
}

func (r *Runtime) evalLog(h Handler, n int) error {
	args, err := popN(r.machine.Stack(), 2+n)
	if err != nil {
		return err
	}

	mem := r.machine.Memory()

	offset, size, err := mem.ResizeOffset(&args[0], &args[1])
	if err != nil {
		return err
	}

	topics := make([]types.Hash, n)
	for i := 0; i < n; i++ {
		topics[i] = types.Hash(args[2+i].Bytes32())
	}

	return h.Log(r.context.Address, topics, mem.Get(offset, size))
}

func (r *Runtime) evalSelfDestruct(h Handler) (evm.ExitReason, bool) {
	target, err := r.machine.Stack().PopAddress()
	if err != nil {
		return evm.ErrorReason(err), true
	}

	if err := h.MarkDelete(r.context.Address, target); err != nil {
		return reasonFromError(err), true
	}

	return evm.SucceedReason(evm.Suicided), true
}

func (r *Runtime) evalTokenBalance(h Handler) (*uint256.Int, error) {
	args, err := popN(r.machine.Stack(), 2)
	if err != nil {
		return nil, err
	}

	tokenID := args[0].ToBig()
	addr := wordToAddress(&args[1])

	return bigToWord(h.TokenBalance(addr, tokenID)), nil
}
