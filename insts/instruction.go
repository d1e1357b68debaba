package insts

// Op represents a Y86 opcode family (the high nibble of the first byte).
type Op uint8

// Y86 opcode families.
const (
	OpHALT Op = iota
	OpNOP
	OpCMOV
	OpIRMOVQ
	OpRMMOVQ
	OpMRMOVQ
	OpOPQ
	OpJUMP
	OpCALL
	OpRET
	OpPUSHQ
	OpPOPQ
	OpIOTRAP
	OpInvalid
)

var opNames = [...]string{
	OpHALT:    "HALT",
	OpNOP:     "NOP",
	OpCMOV:    "CMOV",
	OpIRMOVQ:  "IRMOVQ",
	OpRMMOVQ:  "RMMOVQ",
	OpMRMOVQ:  "MRMOVQ",
	OpOPQ:     "OPQ",
	OpJUMP:    "JUMP",
	OpCALL:    "CALL",
	OpRET:     "RET",
	OpPUSHQ:   "PUSHQ",
	OpPOPQ:    "POPQ",
	OpIOTRAP:  "IOTRAP",
	OpInvalid: "INVALID",
}

// String returns the family name.
func (op Op) String() string {
	if op > OpInvalid {
		return opNames[OpInvalid]
	}
	return opNames[op]
}

// MaxFun returns the highest legal sub-function code for the family.
func (op Op) MaxFun() uint8 {
	switch op {
	case OpCMOV, OpJUMP:
		return uint8(CondG)
	case OpOPQ:
		return uint8(ALUXor)
	case OpIOTRAP:
		return uint8(TrapFlush)
	default:
		return 0
	}
}

// Len returns the encoded length in bytes of instructions in the family,
// or 0 for OpInvalid.
func (op Op) Len() uint64 {
	switch op {
	case OpHALT, OpNOP, OpRET, OpIOTRAP:
		return 1
	case OpCMOV, OpOPQ, OpPUSHQ, OpPOPQ:
		return 2
	case OpJUMP, OpCALL:
		return 9
	case OpIRMOVQ, OpRMMOVQ, OpMRMOVQ:
		return 10
	default:
		return 0
	}
}

// Cond is the sub-function of conditional moves and jumps.
type Cond uint8

// Condition codes, evaluated against ZF, SF and OF.
const (
	CondAlways Cond = iota // unconditional (rrmovq, jmp)
	CondLE                 // ZF || SF != OF
	CondL                  // SF != OF
	CondE                  // ZF
	CondNE                 // !ZF
	CondGE                 // SF == OF
	CondG                  // !ZF && SF == OF
)

// Valid reports whether c is a defined condition.
func (c Cond) Valid() bool {
	return c <= CondG
}

// ALUOp is the sub-function of OPQ.
type ALUOp uint8

// Arithmetic and logic operations.
const (
	ALUAdd ALUOp = iota
	ALUSub
	ALUAnd
	ALUXor
)

// Valid reports whether f is a defined operation.
func (f ALUOp) Valid() bool {
	return f <= ALUXor
}

// Trap is the sub-function of IOTRAP.
type Trap uint8

// I/O trap identifiers.
const (
	TrapCharOut Trap = iota
	TrapCharIn
	TrapDecOut
	TrapDecIn
	TrapStrOut
	TrapFlush
)

// Valid reports whether t is a defined trap.
func (t Trap) Valid() bool {
	return t <= TrapFlush
}

// Instruction is a decoded Y86 instruction. The concrete type identifies the
// family: Halt, Nop, CMov, IRMovq, RMMovq, MRMovq, OpQ, Jump, Call, Ret,
// Pushq, Popq, IOTrap or Invalid.
type Instruction interface {
	// Op returns the opcode family.
	Op() Op
	// Fun returns the sub-function code.
	Fun() uint8
	// Address returns the address of the first encoded byte.
	Address() uint64
	// NextPC returns the address immediately after the encoding.
	NextPC() uint64
	// String returns the assembly text of the instruction.
	String() string
}

// Loc records where an instruction was decoded.
type Loc struct {
	PC   uint64 // address of the first byte
	ValP uint64 // next-instruction address
}

// At returns the location of an instruction of the given family at pc.
func At(pc uint64, op Op) Loc {
	return Loc{PC: pc, ValP: pc + op.Len()}
}

// Address returns the address of the first encoded byte.
func (l Loc) Address() uint64 { return l.PC }

// NextPC returns the next-instruction address.
func (l Loc) NextPC() uint64 { return l.ValP }

// Halt stops the machine.
type Halt struct{ Loc }

// Nop does nothing.
type Nop struct{ Loc }

// CMov copies RA into RB when Cond holds. CondAlways is rrmovq.
type CMov struct {
	Loc
	Cond Cond
	RA   Reg
	RB   Reg
}

// IRMovq loads the immediate V into RB.
type IRMovq struct {
	Loc
	RB Reg
	V  uint64
}

// RMMovq stores RA at D(RB).
type RMMovq struct {
	Loc
	RA Reg
	RB OptReg
	D  uint64
}

// MRMovq loads RA from D(RB).
type MRMovq struct {
	Loc
	RA Reg
	RB OptReg
	D  uint64
}

// OpQ computes RB = RB Fn RA and sets the condition flags.
type OpQ struct {
	Loc
	Fn ALUOp
	RA Reg
	RB Reg
}

// Jump transfers control to Dest when Cond holds.
type Jump struct {
	Loc
	Cond Cond
	Dest uint64
}

// Call pushes the return address and jumps to Dest.
type Call struct {
	Loc
	Dest uint64
}

// Ret pops the return address into the program counter.
type Ret struct{ Loc }

// Pushq pushes RA onto the stack.
type Pushq struct {
	Loc
	RA Reg
}

// Popq pops the top of the stack into RA.
type Popq struct {
	Loc
	RA Reg
}

// IOTrap performs console I/O.
type IOTrap struct {
	Loc
	Trap Trap
}

// Invalid is produced when decoding fails. Byte is the first byte fetched,
// or zero if it could not be read.
type Invalid struct {
	Loc
	Byte byte
}

func (Halt) Op() Op     { return OpHALT }
func (Nop) Op() Op      { return OpNOP }
func (CMov) Op() Op     { return OpCMOV }
func (IRMovq) Op() Op   { return OpIRMOVQ }
func (RMMovq) Op() Op   { return OpRMMOVQ }
func (MRMovq) Op() Op   { return OpMRMOVQ }
func (OpQ) Op() Op      { return OpOPQ }
func (Jump) Op() Op     { return OpJUMP }
func (Call) Op() Op     { return OpCALL }
func (Ret) Op() Op      { return OpRET }
func (Pushq) Op() Op    { return OpPUSHQ }
func (Popq) Op() Op     { return OpPOPQ }
func (IOTrap) Op() Op   { return OpIOTRAP }
func (Invalid) Op() Op  { return OpInvalid }
func (Halt) Fun() uint8 { return 0 }
func (Nop) Fun() uint8  { return 0 }

// Fun returns the condition code.
func (i CMov) Fun() uint8 { return uint8(i.Cond) }

func (IRMovq) Fun() uint8 { return 0 }
func (RMMovq) Fun() uint8 { return 0 }
func (MRMovq) Fun() uint8 { return 0 }

// Fun returns the operation code.
func (i OpQ) Fun() uint8 { return uint8(i.Fn) }

// Fun returns the condition code.
func (i Jump) Fun() uint8 { return uint8(i.Cond) }

func (Call) Fun() uint8  { return 0 }
func (Ret) Fun() uint8   { return 0 }
func (Pushq) Fun() uint8 { return 0 }
func (Popq) Fun() uint8  { return 0 }

// Fun returns the trap identifier.
func (i IOTrap) Fun() uint8 { return uint8(i.Trap) }

// Fun returns the low nibble of the offending byte.
func (i Invalid) Fun() uint8 { return i.Byte & 0xF }

// Size returns the number of encoded bytes of inst.
func Size(inst Instruction) uint64 {
	if inst == nil {
		return 0
	}
	return inst.NextPC() - inst.Address()
}
