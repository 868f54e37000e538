package state

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/helper/common"
	"github.com/tronvm/tvm-edge/state/runtime"
	"github.com/tronvm/tvm-edge/state/runtime/evm"
	"github.com/tronvm/tvm-edge/types"
)

// Gasometer meters the gas of one call frame
type Gasometer struct {
	limit uint64
	used  uint64

	// memoryCost is the cost already paid for the frame memory
	memoryCost uint64
}

func NewGasometer(limit uint64) *Gasometer {
	return &Gasometer{limit: limit}
}

// Gas returns the gas left
func (g *Gasometer) Gas() uint64 {
	return g.limit - g.used
}

// Used returns the gas spent so far
func (g *Gasometer) Used() uint64 {
	return g.used
}

func (g *Gasometer) Limit() uint64 {
	return g.limit
}

// RecordCost consumes gas, or fails leaving the gasometer untouched
func (g *Gasometer) RecordCost(cost uint64) error {
	if g.Gas() < cost {
		return evm.ErrOutOfGas
	}

	g.used += cost

	return nil
}

// RecordStipend gives back gas left over by a child frame. The stipend the
// child received for free may make gas exceed what was spent, in which case
// the frame is back at its full limit and never above it.
func (g *Gasometer) RecordStipend(gas uint64) {
	if gas > g.used {
		g.used = 0

		return
	}

	g.used -= gas
}

// Fail consumes all the gas left
func (g *Gasometer) Fail() {
	g.used = g.limit
}

// RecordMemory pays for growing the memory to size bytes
func (g *Gasometer) RecordMemory(size uint64) error {
	if size == 0 {
		return nil
	}

	if size > maxMemorySize {
		return evm.ErrOutOfGas
	}

	cost := memoryGasCost(size)
	if cost <= g.memoryCost {
		return nil
	}

	if err := g.RecordCost(cost - g.memoryCost); err != nil {
		return err
	}

	g.memoryCost = cost

	return nil
}

// memoryGasCost is 3w + w²/512 for w words
func memoryGasCost(size uint64) uint64 {
	w := common.WordCount(size)

	return MemoryGas*w + w*w/QuadCoeffDiv
}

// opcodeCost is the gas charged before an opcode executes
type opcodeCost struct {
	gas     uint64
	memory  uint64
	refund  uint64
	release uint64
}

// memoryEnd returns offset+size of the memory region at the stack positions,
// zero for an empty region
func memoryEnd(stack *evm.Stack, offsetPos, sizePos int) (uint64, error) {
	offset, err := stack.Peek(offsetPos)
	if err != nil {
		return 0, err
	}

	size, err := stack.Peek(sizePos)
	if err != nil {
		return 0, err
	}

	if size.IsZero() {
		return 0, nil
	}

	return memoryEndFixed(offset, size)
}

func memoryEndFixed(offset, size *uint256.Int) (uint64, error) {
	end, overflow := new(uint256.Int).AddOverflow(offset, size)
	if overflow || !end.IsUint64() || end.Uint64() > maxMemorySize {
		return 0, evm.ErrOutOfGas
	}

	return end.Uint64(), nil
}

func peekSize(stack *evm.Stack, pos int) (uint64, error) {
	v, err := stack.Peek(pos)
	if err != nil {
		return 0, err
	}

	if !v.IsUint64() {
		return math.MaxUint64, nil
	}

	return v.Uint64(), nil
}

func peekAddress(stack *evm.Stack, pos int) (types.Address, error) {
	v, err := stack.Peek(pos)
	if err != nil {
		return types.ZeroAddress, err
	}

	b := v.Bytes32()

	return types.BytesToAddress(b[12:]), nil
}

func peekHash(stack *evm.Stack, pos int) (types.Hash, error) {
	v, err := stack.Peek(pos)
	if err != nil {
		return types.ZeroHash, err
	}

	return types.Hash(v.Bytes32()), nil
}

// wordsCost returns base + perWord * ceil(size/32), saturating
func wordsCost(base, perWord, size uint64) uint64 {
	cost, overflow := common.SafeMul(common.WordCount(size), perWord)
	if overflow {
		return math.MaxUint64
	}

	if cost, overflow = common.SafeAdd(cost, base); overflow {
		return math.MaxUint64
	}

	return cost
}

// isWrite reports whether the opcode modifies the state, which is forbidden
// inside a static call
func isWrite(op evm.OpCode, stack *evm.Stack) (bool, error) {
	switch op {
	case evm.SSTORE, evm.CREATE, evm.CREATE2, evm.SELFDESTRUCT:
		return true, nil

	case evm.CALL, evm.CALLTOKEN:
		value, err := stack.Peek(2)
		if err != nil {
			return false, err
		}

		return !value.IsZero(), nil
	}

	if op >= evm.LOG0 && op <= evm.LOG4 {
		return true, nil
	}

	return false, nil
}

// dynamicGas computes the cost of an opcode for the frame executing ctx
func dynamicGas(
	config *chain.Config,
	world *World,
	ctx *runtime.Context,
	op evm.OpCode,
	stack *evm.Stack,
	gasLeft uint64,
) (*opcodeCost, error) {
	cost := &opcodeCost{gas: staticGas[op]}

	var err error

	switch op {
	case evm.SHA3:
		if cost.memory, err = memoryEnd(stack, 0, 1); err != nil {
			return nil, err
		}

		size, _ := peekSize(stack, 1)
		cost.gas = wordsCost(Sha3Gas, Sha3WordGas, size)

	case evm.CALLDATACOPY, evm.CODECOPY, evm.RETURNDATACOPY:
		if cost.memory, err = memoryEnd(stack, 0, 2); err != nil {
			return nil, err
		}

		size, _ := peekSize(stack, 2)
		cost.gas = wordsCost(GasFastestStep, CopyGas, size)

	case evm.EXTCODECOPY:
		if cost.memory, err = memoryEnd(stack, 1, 3); err != nil {
			return nil, err
		}

		size, _ := peekSize(stack, 3)
		cost.gas = wordsCost(config.GasExtCode, CopyGas, size)

	case evm.MLOAD, evm.MSTORE, evm.MSTORE8:
		offset, err := stack.Peek(0)
		if err != nil {
			return nil, err
		}

		width := uint64(32)
		if op == evm.MSTORE8 {
			width = 1
		}

		if cost.memory, err = memoryEndFixed(offset, uint256.NewInt(width)); err != nil {
			return nil, err
		}

	case evm.RETURN, evm.REVERT:
		if cost.memory, err = memoryEnd(stack, 0, 1); err != nil {
			return nil, err
		}

	case evm.EXP:
		exponent, err := stack.Peek(1)
		if err != nil {
			return nil, err
		}

		cost.gas = GasSlowStep + config.GasExpByte*uint64((exponent.BitLen()+7)/8)

	case evm.BALANCE, evm.TOKENBALANCE:
		cost.gas = config.GasBalance

	case evm.EXTCODESIZE, evm.ISCONTRACT:
		cost.gas = config.GasExtCode

	case evm.EXTCODEHASH:
		cost.gas = config.GasExtCodeHash

	case evm.SLOAD:
		cost.gas = config.GasSload

	case evm.SSTORE:
		return sstoreGas(config, world, ctx.Address, stack, gasLeft)

	case evm.LOG0, evm.LOG0 + 1, evm.LOG0 + 2, evm.LOG0 + 3, evm.LOG4:
		if cost.memory, err = memoryEnd(stack, 0, 1); err != nil {
			return nil, err
		}

		size, _ := peekSize(stack, 1)

		data, overflow := common.SafeMul(size, LogDataGas)
		if overflow {
			return nil, evm.ErrOutOfGas
		}

		if cost.gas, overflow = common.SafeAdd(cost.gas, data); overflow {
			return nil, evm.ErrOutOfGas
		}

	case evm.CREATE, evm.CREATE2:
		if cost.memory, err = memoryEnd(stack, 1, 2); err != nil {
			return nil, err
		}

		if op == evm.CREATE2 {
			size, _ := peekSize(stack, 2)
			cost.gas = wordsCost(CreateGas, Sha3WordGas, size)
		}

	case evm.CALL, evm.CALLCODE, evm.DELEGATECALL, evm.STATICCALL, evm.CALLTOKEN:
		return callGas(config, world, op, stack)

	case evm.SELFDESTRUCT:
		return suicideGas(config, world, ctx.Address, stack)
	}

	return cost, nil
}

func sstoreGas(
	config *chain.Config,
	world *World,
	addr types.Address,
	stack *evm.Stack,
	gasLeft uint64,
) (*opcodeCost, error) {
	index, err := peekHash(stack, 0)
	if err != nil {
		return nil, err
	}

	value, err := peekHash(stack, 1)
	if err != nil {
		return nil, err
	}

	cost := &opcodeCost{}
	current := world.GetState(addr, index)

	if !config.SstoreGasMetering {
		switch {
		case current == types.ZeroHash && value != types.ZeroHash: // 0 => non 0
			cost.gas = config.GasSstoreSet
		case current != types.ZeroHash && value == types.ZeroHash: // non 0 => 0
			cost.gas = config.GasSstoreReset
			cost.refund = config.RefundSstoreClears
		default: // non 0 => non 0 (or 0 => 0)
			cost.gas = config.GasSstoreReset
		}

		return cost, nil
	}

	if config.SstoreRevertUnderStipend && gasLeft <= config.CallStipend {
		return nil, evm.ErrOutOfGas
	}

	if current == value { // noop
		cost.gas = config.GasSload

		return cost, nil
	}

	original := world.GetCommittedState(addr, index)

	if original == current {
		if original == types.ZeroHash { // create slot
			cost.gas = config.GasSstoreSet

			return cost, nil
		}

		if value == types.ZeroHash { // delete slot
			cost.refund = config.RefundSstoreClears
		}

		cost.gas = config.GasSstoreReset // write existing slot

		return cost, nil
	}

	if original != types.ZeroHash {
		if current == types.ZeroHash { // recreate slot
			cost.release = config.RefundSstoreClears
		} else if value == types.ZeroHash { // delete slot
			cost.refund = config.RefundSstoreClears
		}
	}

	if original == value {
		if original == types.ZeroHash { // reset to original inexistent slot
			cost.refund += config.GasSstoreSet - config.GasSload
		} else { // reset to original existing slot
			cost.refund += config.GasSstoreReset - config.GasSload
		}
	}

	cost.gas = config.GasSload // dirty slot

	return cost, nil
}

// callGas is the cost of a call excluding the gas forwarded to the callee
func callGas(config *chain.Config, world *World, op evm.OpCode, stack *evm.Stack) (*opcodeCost, error) {
	// stack positions of the memory ranges
	in, out := 3, 5

	switch op {
	case evm.DELEGATECALL, evm.STATICCALL:
		in, out = 2, 4
	case evm.CALLTOKEN:
		in, out = 4, 6
	}

	inEnd, err := memoryEnd(stack, in, in+1)
	if err != nil {
		return nil, err
	}

	outEnd, err := memoryEnd(stack, out, out+1)
	if err != nil {
		return nil, err
	}

	cost := &opcodeCost{
		gas:    config.GasCall,
		memory: common.Max(inEnd, outEnd),
	}

	if op == evm.DELEGATECALL || op == evm.STATICCALL {
		return cost, nil
	}

	to, err := peekAddress(stack, 1)
	if err != nil {
		return nil, err
	}

	value, err := stack.Peek(2)
	if err != nil {
		return nil, err
	}

	transfersValue := !value.IsZero()

	if op != evm.CALLCODE {
		if config.EmptyConsideredExists {
			if !world.Exist(to) {
				cost.gas += CallNewAccountGas
			}
		} else if transfersValue && world.Empty(to) {
			cost.gas += CallNewAccountGas
		}
	}

	if transfersValue {
		cost.gas += CallValueTransferGas
	}

	return cost, nil
}

func suicideGas(config *chain.Config, world *World, addr types.Address, stack *evm.Stack) (*opcodeCost, error) {
	target, err := peekAddress(stack, 0)
	if err != nil {
		return nil, err
	}

	cost := &opcodeCost{gas: config.GasSuicide}

	if config.GasSuicideNewAccount != 0 {
		var isNew bool
		if config.EmptyConsideredExists {
			isNew = !world.Exist(target)
		} else {
			isNew = world.Empty(target) && world.GetBalance(addr).Sign() != 0
		}

		if isNew {
			cost.gas += config.GasSuicideNewAccount
		}
	}

	if !world.HasSuicided(addr) {
		cost.refund = SuicideRefundGas
	}

	return cost, nil
}

// forwardedGas is the gas a call or create hands to the child frame, a nil
// target asks for all of it. It returns false when the caller asked for more
// gas than it can give and the config turns that into an error.
func forwardedGas(config *chain.Config, gasLeft uint64, target *uint64) (uint64, bool) {
	after := gasLeft
	if config.CallL64AfterGas {
		after -= after / 64
	}

	if target == nil {
		return after, true
	}

	if *target > after {
		return after, !config.ErrOnCallWithMoreGas
	}

	return *target, true
}
