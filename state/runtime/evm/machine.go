package evm

// Capture is what Step reports when the machine cannot simply continue
type Capture struct {
	// Exit is set when the machine terminated
	Exit ExitReason
	// Trap is the opcode needing the environment, valid when Trapped is set
	Trap    OpCode
	Trapped bool
}

// Machine is the environment free part of the interpreter. It evaluates
// every opcode that only touches its own stack and memory and traps on
// the others.
type Machine struct {
	code  []byte
	data  []byte
	pc    int
	jumps ValidJumps

	stack  *Stack
	memory *Memory

	retOff uint64
	retLen uint64

	status *ExitReason
}

// NewMachine creates a machine ready to run code with the given call data
func NewMachine(code, data []byte, stackLimit, memoryLimit uint64) *Machine {
	return NewMachineWithJumps(code, data, Analyze(code), stackLimit, memoryLimit)
}

// NewMachineWithJumps creates a machine reusing a previous Analyze(code)
func NewMachineWithJumps(code, data []byte, jumps ValidJumps, stackLimit, memoryLimit uint64) *Machine {
	if jumps.Len() != len(code) {
		jumps = Analyze(code)
	}

	return &Machine{
		code:   code,
		data:   data,
		jumps:  jumps,
		stack:  newStack(stackLimit),
		memory: newMemory(memoryLimit),
	}
}

func (m *Machine) Code() []byte {
	return m.code
}

func (m *Machine) Data() []byte {
	return m.data
}

func (m *Machine) Stack() *Stack {
	return m.stack
}

func (m *Machine) Memory() *Memory {
	return m.memory
}

// Position returns the program counter
func (m *Machine) Position() int {
	return m.pc
}

// Status returns the exit reason once the machine terminated
func (m *Machine) Status() (ExitReason, bool) {
	if m.status == nil {
		return ExitReason{}, false
	}

	return *m.status, true
}

// Inspect returns the next opcode and the stack it will run on, or false
// when the machine will not execute another opcode
func (m *Machine) Inspect() (OpCode, *Stack, bool) {
	if m.status != nil || m.pc >= len(m.code) {
		return STOP, nil, false
	}

	return OpCode(m.code[m.pc]), m.stack, true
}

// Exit terminates the machine. The first reason wins.
func (m *Machine) Exit(reason ExitReason) {
	m.exit(reason)
}

func (m *Machine) exit(reason ExitReason) {
	if m.status != nil {
		return
	}

	m.status = &reason
}

// ReturnValue returns a copy of the memory range set by RETURN or REVERT
func (m *Machine) ReturnValue() []byte {
	if m.retLen == 0 {
		return []byte{}
	}

	return m.memory.Get(m.retOff, m.retLen)
}

// Step executes one opcode. It returns nil when execution can continue.
// A trapped opcode has been skipped over and its operands are still on
// the stack.
func (m *Machine) Step() *Capture {
	if m.status != nil {
		return &Capture{Exit: *m.status}
	}

	if m.pc >= len(m.code) {
		m.exit(SucceedReason(Stopped))

		return &Capture{Exit: *m.status}
	}

	op := OpCode(m.code[m.pc])

	inst := dispatchTable[op]
	if inst.inst == nil {
		m.pc++

		return &Capture{Trap: op, Trapped: true}
	}

	// check if the depth of the stack is enough for the instruction
	if m.stack.Len() < inst.stack {
		m.exit(ErrorReason(ErrStackUnderflow))

		return &Capture{Exit: *m.status}
	}

	if m.stack.Len()+inst.grow > m.stack.Limit() {
		m.exit(ErrorReason(ErrStackOverflow))

		return &Capture{Exit: *m.status}
	}

	inst.inst(m)

	if m.status != nil {
		return &Capture{Exit: *m.status}
	}

	m.pc++

	return nil
}
