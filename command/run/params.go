package run

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/command"
	"github.com/tronvm/tvm-edge/command/helper"
	"github.com/tronvm/tvm-edge/helper/common"
	"github.com/tronvm/tvm-edge/state/runtime/tracer"
	"github.com/tronvm/tvm-edge/state/runtime/tracer/calltracer"
	"github.com/tronvm/tvm-edge/state/runtime/tracer/structtracer"
	"github.com/tronvm/tvm-edge/types"
)

const (
	forkFlag       = "fork"
	configFlag     = "config"
	allocFlag      = "alloc"
	fromFlag       = "from"
	toFlag         = "to"
	codeFlag       = "code"
	inputFlag      = "input"
	valueFlag      = "value"
	tokenIDFlag    = "token-id"
	tokenValueFlag = "token-value"
	gasFlag        = "gas"
	createFlag     = "create"
	traceFlag      = "trace"
	numberFlag     = "number"
	timestampFlag  = "timestamp"
	chainIDFlag    = "chain-id"
)

const (
	traceNone   = ""
	traceStruct = "struct"
	traceCall   = "call"
)

var (
	params = &runParams{}
)

var (
	errMissingTarget   = errors.New("a call requires --to, use --create to deploy code")
	errTargetOnCreate  = errors.New("--to can not be combined with --create")
	errTokenWithCreate = errors.New("token transfers are only supported on calls")
	errUnknownTracer   = errors.New("unknown tracer, expected struct or call")
)

type runParams struct {
	fork       string
	configPath string
	allocPath  string

	fromRaw       string
	toRaw         string
	codeRaw       string
	inputRaw      string
	valueRaw      string
	tokenIDRaw    string
	tokenValueRaw string
	trace         string

	gas       uint64
	number    uint64
	timestamp uint64
	chainID   uint64
	create    bool

	config *chain.Config
	alloc  chain.GenesisAlloc

	from       types.Address
	to         *types.Address
	code       []byte
	input      []byte
	value      *big.Int
	tokenID    *big.Int
	tokenValue *big.Int
}

func (p *runParams) init() error {
	p.defaults()

	if err := p.initConfig(); err != nil {
		return err
	}

	if err := p.initAddresses(); err != nil {
		return err
	}

	if err := p.initPayload(); err != nil {
		return err
	}

	return p.initValues()
}

func (p *runParams) initConfig() (err error) {
	if p.config, err = helper.LoadConfig(p.fork, p.configPath); err != nil {
		return
	}

	if p.allocPath != "" {
		if p.alloc, err = chain.ReadGenesisAlloc(p.allocPath); err != nil {
			return fmt.Errorf("failed to read alloc: %w", err)
		}
	}

	return nil
}

func (p *runParams) initAddresses() error {
	from, err := types.ParseAddress(p.fromRaw)
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", fromFlag, err)
	}

	p.from = from

	switch {
	case p.create && p.toRaw != "":
		return errTargetOnCreate
	case p.create:
		p.to = nil
	case p.toRaw == "":
		return errMissingTarget
	default:
		to, err := types.ParseAddress(p.toRaw)
		if err != nil {
			return fmt.Errorf("invalid --%s: %w", toFlag, err)
		}

		p.to = &to
	}

	return nil
}

func (p *runParams) initPayload() (err error) {
	if p.code, err = common.ParseBytes(&p.codeRaw); err != nil {
		return fmt.Errorf("invalid --%s: %w", codeFlag, err)
	}

	if p.input, err = common.ParseBytes(&p.inputRaw); err != nil {
		return fmt.Errorf("invalid --%s: %w", inputFlag, err)
	}

	return nil
}

func (p *runParams) initValues() (err error) {
	if p.value, err = common.ParseUint256orHex(&p.valueRaw); err != nil {
		return fmt.Errorf("invalid --%s: %w", valueFlag, err)
	}

	if p.tokenValueRaw == "" {
		return nil
	}

	if p.create {
		return errTokenWithCreate
	}

	if p.tokenID, err = common.ParseUint256orHex(&p.tokenIDRaw); err != nil {
		return fmt.Errorf("invalid --%s: %w", tokenIDFlag, err)
	}

	if p.tokenValue, err = common.ParseUint256orHex(&p.tokenValueRaw); err != nil {
		return fmt.Errorf("invalid --%s: %w", tokenValueFlag, err)
	}

	return nil
}

// newTracer returns the tracer selected by --trace, or nil
func (p *runParams) newTracer() (tracer.Tracer, error) {
	switch p.trace {
	case traceNone:
		return nil, nil
	case traceStruct:
		return structtracer.NewStructTracer(structtracer.Config{
			EnableStack:      true,
			EnableStorage:    true,
			EnableReturnData: true,
		}), nil
	case traceCall:
		return &calltracer.CallTracer{}, nil
	default:
		return nil, errUnknownTracer
	}
}

func (p *runParams) defaults() {
	if p.fork == "" {
		p.fork = command.DefaultFork
	}

	if p.gas == 0 {
		p.gas = command.DefaultGas
	}

	if p.valueRaw == "" {
		p.valueRaw = "0"
	}
}
