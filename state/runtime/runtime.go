package runtime

import (
	"errors"

	"github.com/tronvm/tvm-edge/chain"
	"github.com/tronvm/tvm-edge/state/runtime/evm"
	"github.com/tronvm/tvm-edge/state/runtime/precompiled"
	"github.com/tronvm/tvm-edge/types"
)

var (
	// ErrRuntimeSuspended is returned when stepping a runtime that waits
	// for a continuation to be resolved
	ErrRuntimeSuspended = errors.New("runtime is suspended on a continuation")
	// ErrRuntimeAbandoned is returned when stepping a runtime whose
	// continuation was discarded
	ErrRuntimeAbandoned = errors.New("runtime was abandoned")
	// ErrContinuationConsumed is returned when a continuation is used twice
	ErrContinuationConsumed = errors.New("continuation already consumed")
)

// PrecompileSet resolves calls to native contracts. It returns false when
// addr is not a precompile.
type PrecompileSet interface {
	Run(addr types.Address, input []byte, gasLimit *uint64) (*precompiled.Result, bool)
}

// Capture is reported when a runtime stops: either a terminal exit, or a
// trap that the host resolves through Resolve
type Capture struct {
	Exit    evm.ExitReason
	Resolve Resolve
}

// IsTrap reports whether the capture carries a continuation
func (c *Capture) IsTrap() bool {
	return c.Resolve != nil
}

// Runtime drives one Machine for one call frame
type Runtime struct {
	machine     *evm.Machine
	status      *evm.ExitReason
	returnData  []byte
	context     Context
	config      *chain.Config
	precompiles PrecompileSet
	jumps       *evm.ValidJumps

	// pending is the token of the outstanding continuation
	pending   *token
	abandoned bool
}

// token identifies one continuation. It is compared by pointer.
type token struct {
	_ byte
}

type Option func(r *Runtime)

// WithPrecompiles overrides the precompiles derived from the config
func WithPrecompiles(p PrecompileSet) Option {
	return func(r *Runtime) {
		r.precompiles = p
	}
}

// WithValidJumps reuses a cached jump analysis of the code
func WithValidJumps(jumps evm.ValidJumps) Option {
	return func(r *Runtime) {
		r.jumps = &jumps
	}
}

// New creates a runtime executing code with the given input
func New(code, data []byte, ctx Context, config *chain.Config, opts ...Option) *Runtime {
	r := &Runtime{
		context: ctx,
		config:  config,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.jumps != nil {
		r.machine = evm.NewMachineWithJumps(code, data, *r.jumps, config.StackLimit, config.MemoryLimit)
	} else {
		r.machine = evm.NewMachine(code, data, config.StackLimit, config.MemoryLimit)
	}

	if r.precompiles == nil {
		r.precompiles = precompiled.New(config)
	}

	return r
}

func (r *Runtime) Machine() *evm.Machine {
	return r.machine
}

func (r *Runtime) Context() *Context {
	return &r.context
}

// ReturnDataBuffer is the output of the last nested call or create
func (r *Runtime) ReturnDataBuffer() []byte {
	return r.returnData
}

// Status returns the terminal exit reason, if any
func (r *Runtime) Status() (evm.ExitReason, bool) {
	if r.status == nil {
		return evm.ExitReason{}, false
	}

	return *r.status, true
}

// Suspended reports whether a continuation is outstanding
func (r *Runtime) Suspended() bool {
	return r.pending != nil
}

// ReturnValue is the output of RETURN or REVERT
func (r *Runtime) ReturnValue() []byte {
	return r.machine.ReturnValue()
}

// Step executes a single opcode. A nil capture means the runtime can
// continue.
func (r *Runtime) Step(h Handler) (*Capture, error) {
	return r.drive(h, false)
}

// Run executes until the runtime exits or traps
func (r *Runtime) Run(h Handler) (*Capture, error) {
	return r.drive(h, true)
}

func (r *Runtime) drive(h Handler, loop bool) (*Capture, error) {
	if r.pending != nil {
		return nil, ErrRuntimeSuspended
	}

	if r.abandoned {
		return nil, ErrRuntimeAbandoned
	}

	for {
		capture := r.step(h)
		if capture != nil || !loop {
			return capture, nil
		}
	}
}

func (r *Runtime) step(h Handler) *Capture {
	if op, stack, ok := r.machine.Inspect(); ok && r.status == nil {
		if err := h.PreValidate(&r.context, op, stack); err != nil {
			r.exit(reasonFromError(err))
		} else if !op.EnabledIn(r.config) {
			r.exit(evm.ErrorReason(evm.ErrOpcodeNotFound))
		}
	}

	if r.status != nil {
		return &Capture{Exit: *r.status}
	}

	mc := r.machine.Step()
	if mc == nil {
		return nil
	}

	if !mc.Trapped {
		reason := mc.Exit
		r.status = &reason

		return &Capture{Exit: reason}
	}

	return r.trap(h, mc.Trap)
}

func (r *Runtime) trap(h Handler, op evm.OpCode) *Capture {
	if !op.EnabledIn(r.config) {
		return r.exit(evm.ErrorReason(evm.ErrOpcodeNotFound))
	}

	switch op {
	case evm.CALL, evm.CALLCODE, evm.DELEGATECALL, evm.STATICCALL, evm.CALLTOKEN:
		return r.trapCall(h, op)
	case evm.CREATE, evm.CREATE2:
		return r.trapCreate(h, op)
	}

	if reason, exit := r.eval(h, op); exit {
		return r.exit(reason)
	}

	return nil
}

// exit records a terminal reason and reports it
func (r *Runtime) exit(reason evm.ExitReason) *Capture {
	r.machine.Exit(reason)
	r.status = &reason

	return &Capture{Exit: reason}
}

// suspend parks the runtime until the returned token is consumed
func (r *Runtime) suspend() *token {
	tok := &token{}
	r.pending = tok

	return tok
}

func reasonFromError(err error) evm.ExitReason {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Reason
	}

	return evm.ErrorReason(err)
}
