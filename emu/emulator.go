// Package emu provides functional Y86 emulation.
package emu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/y86sim/insts"
)

// ErrInstructionLimit is returned by Step and Run once the configured
// instruction limit has been reached.
var ErrInstructionLimit = errors.New("max instructions reached")

// adrStep is how far the program counter moves after an address fault.
const adrStep = 10

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Inst is the fetched instruction, Invalid if the fetch faulted.
	Inst insts.Instruction

	// Status is the machine status after the step.
	Status Status

	// Executed is true if the instruction went through both stages.
	Executed bool

	// Err is the decode error on a fetch fault, or ErrInstructionLimit.
	Err error
}

// ExecuteResult carries the values computed by DecodeExecute into
// MemoryWriteback.
type ExecuteResult struct {
	// ValA is the first operand read from the register file.
	ValA uint64
	// ValE is the effective value: ALU result, address or new stack pointer.
	ValE uint64
	// Cnd is the condition for conditional moves and jumps.
	Cnd bool
}

// Emulator executes Y86 instructions functionally.
type Emulator struct {
	regFile     *RegFile
	memory      *Memory
	decoder     *insts.Decoder
	trapHandler TrapHandler
	customTrap  bool
	status      Status

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// I/O
	stdout  io.Writer
	stderr  io.Writer
	trace   io.Writer
	console Console

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
	memorySize       uint64
	trapBufferSize   int
	initialSP        uint64
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets the writer trap output is flushed to.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stderr = w
	}
}

// WithConsole sets the input source of the charin and decin traps.
func WithConsole(c Console) EmulatorOption {
	return func(e *Emulator) {
		e.console = c
	}
}

// WithTrace enables trace mode: Run writes the machine state before every
// fetch, each executed instruction and a final memory dump to w.
func WithTrace(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.trace = w
	}
}

// WithTrapHandler replaces the default trap handler.
func WithTrapHandler(handler TrapHandler) EmulatorOption {
	return func(e *Emulator) {
		e.trapHandler = handler
		e.customTrap = handler != nil
	}
}

// WithStackPointer sets the initial stack pointer value.
func WithStackPointer(sp uint64) EmulatorOption {
	return func(e *Emulator) {
		e.initialSP = sp
		e.regFile.SetSP(sp)
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithMemory uses m as the memory image instead of a fresh one.
func WithMemory(m *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = m
	}
}

// WithMemorySize sets the capacity of the memory image created by the
// emulator. It has no effect together with WithMemory.
func WithMemorySize(size uint64) EmulatorOption {
	return func(e *Emulator) {
		e.memorySize = size
	}
}

// WithTrapBufferSize sets the capacity of the trap output buffer.
func WithTrapBufferSize(n int) EmulatorOption {
	return func(e *Emulator) {
		e.trapBufferSize = n
	}
}

// WithConfig applies all parameters of a Config.
func WithConfig(c *Config) EmulatorOption {
	return func(e *Emulator) {
		e.memorySize = c.MemorySize
		e.maxInstructions = c.MaxInstructions
		e.trapBufferSize = c.TrapBufferSize
		e.initialSP = c.StackPointer
		e.regFile.SetSP(c.StackPointer)
	}
}

// NewEmulator creates a new Y86 emulator with status AOK and PC 0.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile:        &RegFile{},
		decoder:        insts.NewDecoder(),
		status:         AOK,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		memorySize:     DefaultMemorySize,
		trapBufferSize: DefaultTrapBufferSize,
	}

	// Apply options first (may set memory and I/O)
	for _, opt := range opts {
		opt(e)
	}

	if e.memory == nil {
		e.memory = NewMemoryWithSize(e.memorySize)
	}
	if e.console == nil {
		e.console = NewStreamConsole(os.Stdin)
	}

	e.wireUnits()

	return e
}

// wireUnits connects the execution units to the current register file and
// memory.
func (e *Emulator) wireUnits() {
	e.alu = NewALU(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.memory)
	e.branchUnit = NewBranchUnit(e.regFile)

	// A handler passed with WithTrapHandler is kept as is.
	if e.customTrap {
		return
	}
	h := NewDefaultTrapHandler(e.regFile, e.memory, e.stdout, e.console)
	h.SetBufferSize(e.trapBufferSize)
	e.trapHandler = h
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// TrapHandler returns the handler used for IOTRAP instructions.
func (e *Emulator) TrapHandler() TrapHandler {
	return e.trapHandler
}

// Status returns the machine status.
func (e *Emulator) Status() Status {
	return e.status
}

// PC returns the program counter.
func (e *Emulator) PC() uint64 {
	return e.regFile.PC
}

// SetPC sets the program counter.
func (e *Emulator) SetPC(pc uint64) {
	e.regFile.PC = pc
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// LoadProgram copies program into memory at entry and sets the entry point.
func (e *Emulator) LoadProgram(entry uint64, program []byte) error {
	if err := e.memory.Load(entry, program); err != nil {
		return err
	}
	e.regFile.PC = entry
	return nil
}

// Reset returns the emulator to its initial state with zeroed memory of the
// same size. A custom trap handler is not reset.
func (e *Emulator) Reset() {
	e.regFile = &RegFile{}
	e.regFile.SetSP(e.initialSP)
	e.memory = NewMemoryWithSize(e.memory.Size())
	e.status = AOK
	e.instructionCount = 0

	e.wireUnits()
}

// Fetch decodes the instruction at the program counter. A decode failure
// sets ADR or INS and is returned as the error.
func (e *Emulator) Fetch() (insts.Instruction, error) {
	inst, err := e.decoder.Decode(e.memory, e.regFile.PC)
	if err != nil {
		if errors.Is(err, insts.ErrAddress) {
			e.status = ADR
		} else {
			e.status = INS
		}
		return inst, err
	}
	return inst, nil
}

// DecodeExecute reads the operands of inst and computes its effective
// value and condition. Only OPQ changes the flags; halt sets status HLT.
func (e *Emulator) DecodeExecute(inst insts.Instruction) ExecuteResult {
	var res ExecuteResult
	r := e.regFile

	switch i := inst.(type) {
	case insts.Halt:
		e.status = HLT
	case insts.Nop:
	case insts.CMov:
		if !i.Cond.Valid() {
			e.status = INS
			break
		}
		res.ValA = r.ReadReg(i.RA)
		res.ValE = res.ValA
		res.Cnd = e.branchUnit.CheckCondition(i.Cond)
	case insts.IRMovq:
		res.ValE = i.V
	case insts.RMMovq:
		res.ValA = r.ReadReg(i.RA)
		res.ValE = r.ReadBase(i.RB) + i.D
	case insts.MRMovq:
		res.ValE = r.ReadBase(i.RB) + i.D
	case insts.OpQ:
		res.ValA = r.ReadReg(i.RA)
		valE, ok := e.alu.Execute(i.Fn, res.ValA, r.ReadReg(i.RB))
		if !ok {
			e.status = INS
			break
		}
		res.ValE = valE
	case insts.Jump:
		if !i.Cond.Valid() {
			e.status = INS
			break
		}
		res.Cnd = e.branchUnit.CheckCondition(i.Cond)
	case insts.Call:
		res.ValE = r.SP() - 8
	case insts.Ret:
		res.ValA = r.SP()
		res.ValE = r.SP() + 8
	case insts.Pushq:
		res.ValA = r.ReadReg(i.RA)
		res.ValE = r.SP() - 8
	case insts.Popq:
		res.ValA = r.SP()
		res.ValE = r.SP() + 8
	case insts.IOTrap, insts.Invalid:
	}

	return res
}

// MemoryWriteback performs the memory access, register writeback and
// program counter update of inst. A failing memory access sets ADR and
// leaves the program counter in place.
func (e *Emulator) MemoryWriteback(inst insts.Instruction, res ExecuteResult) {
	if e.status == INS || e.status == ADR {
		return
	}

	r := e.regFile

	switch i := inst.(type) {
	case insts.Halt:
		r.Flags.Clear()
		r.PC = i.NextPC()
	case insts.Nop:
		r.PC = i.NextPC()
	case insts.CMov:
		if res.Cnd {
			r.WriteReg(i.RB, res.ValE)
		}
		r.PC = i.NextPC()
	case insts.IRMovq:
		r.WriteReg(i.RB, res.ValE)
		r.PC = i.NextPC()
	case insts.RMMovq:
		if e.fault(e.lsu.Store(res.ValE, res.ValA)) {
			return
		}
		r.PC = i.NextPC()
	case insts.MRMovq:
		if e.fault(e.lsu.Load(i.RA, res.ValE)) {
			return
		}
		r.PC = i.NextPC()
	case insts.OpQ:
		r.WriteReg(i.RB, res.ValE)
		r.PC = i.NextPC()
	case insts.Jump:
		e.branchUnit.Jump(res.Cnd, i.Dest, i.NextPC())
	case insts.Call:
		if e.fault(e.lsu.Push(res.ValE, i.NextPC())) {
			return
		}
		e.branchUnit.Jump(true, i.Dest, i.NextPC())
	case insts.Ret:
		ret, err := e.lsu.Pop(res.ValA, res.ValE)
		if e.fault(err) {
			return
		}
		e.branchUnit.Jump(true, ret, i.NextPC())
	case insts.Pushq:
		if e.fault(e.lsu.Push(res.ValE, res.ValA)) {
			return
		}
		r.PC = i.NextPC()
	case insts.Popq:
		v, err := e.lsu.Pop(res.ValA, res.ValE)
		if e.fault(err) {
			return
		}
		r.WriteReg(i.RA, v)
		r.PC = i.NextPC()
	case insts.IOTrap:
		result := e.trapHandler.Handle(i.Trap)
		if result.Status != AOK {
			e.status = result.Status
		}
		r.PC = i.NextPC()
	case insts.Invalid:
	}
}

// fault records an address fault for a failed memory access.
func (e *Emulator) fault(err error) bool {
	if err == nil {
		return false
	}
	e.status = ADR
	return true
}

// Step executes a single instruction.
// Returns a StepResult describing the fetched instruction and the status.
func (e *Emulator) Step() StepResult {
	if e.status != AOK {
		return StepResult{Status: e.status}
	}

	// Check instruction limit before executing
	if e.limitReached() {
		return StepResult{Status: e.status, Err: ErrInstructionLimit}
	}

	inst, err := e.Fetch()
	if err != nil {
		return StepResult{Inst: inst, Status: e.status, Err: err}
	}

	e.execute(inst)

	return StepResult{Inst: inst, Status: e.status, Executed: true}
}

func (e *Emulator) limitReached() bool {
	return e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions
}

// execute runs both stages of a fetched instruction and counts it.
func (e *Emulator) execute(inst insts.Instruction) {
	res := e.DecodeExecute(inst)
	e.MemoryWriteback(inst, res)
	e.instructionCount++
}

// Run executes instructions until the status leaves AOK or the instruction
// limit is reached. After an address fault the program counter moves
// forward by ten bytes, and a program counter beyond memory is itself an
// address fault.
func (e *Emulator) Run() error {
	var err error

	for e.status == AOK {
		if e.trace != nil {
			e.DumpState(e.trace)
		}

		if e.limitReached() {
			err = ErrInstructionLimit
			break
		}

		// The trace line precedes any output the instruction produces.
		inst, fetchErr := e.Fetch()
		if fetchErr == nil {
			if e.trace != nil {
				fmt.Fprintf(e.trace, "\nExecuting: %s\n", insts.Disassemble(inst))
			}
			e.execute(inst)
		} else if e.trace != nil {
			fmt.Fprintf(e.trace, "\nInvalid instruction at 0x%04x\n", e.regFile.PC)
		}

		if e.status == ADR {
			e.regFile.PC += adrStep
		}
		if e.regFile.PC >= e.memory.Size() {
			e.status = ADR
		}
	}

	if e.trace != nil {
		e.DumpState(e.trace)
		fmt.Fprintf(e.trace, "Total execution count: %d\n\n", e.instructionCount)
		e.memory.Dump(e.trace, 0, e.memory.Size())
	}

	if err != nil {
		_, _ = fmt.Fprintf(e.stderr, "Emulation stopped: %v\n", err)
	}

	return err
}
