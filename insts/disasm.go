package insts

import "fmt"

var condMoveNames = [...]string{
	CondAlways: "rrmovq",
	CondLE:     "cmovle",
	CondL:      "cmovl",
	CondE:      "cmove",
	CondNE:     "cmovne",
	CondGE:     "cmovge",
	CondG:      "cmovg",
}

var jumpNames = [...]string{
	CondAlways: "jmp",
	CondLE:     "jle",
	CondL:      "jl",
	CondE:      "je",
	CondNE:     "jne",
	CondGE:     "jge",
	CondG:      "jg",
}

var aluNames = [...]string{
	ALUAdd: "addq",
	ALUSub: "subq",
	ALUAnd: "andq",
	ALUXor: "xorq",
}

// Disassemble returns the assembly text of inst. Invalid instructions and
// nil render as the empty string.
func Disassemble(inst Instruction) string {
	if inst == nil {
		return ""
	}
	return inst.String()
}

// Mnemonic returns the mnemonic of inst, or "" if it has none.
func Mnemonic(inst Instruction) string {
	switch i := inst.(type) {
	case Halt:
		return "halt"
	case Nop:
		return "nop"
	case Ret:
		return "ret"
	case IOTrap:
		return "iotrap"
	case CMov:
		if i.Cond.Valid() {
			return condMoveNames[i.Cond]
		}
	case OpQ:
		if i.Fn.Valid() {
			return aluNames[i.Fn]
		}
	case Jump:
		if i.Cond.Valid() {
			return jumpNames[i.Cond]
		}
	case Call:
		return "call"
	case IRMovq:
		return "irmovq"
	case RMMovq:
		return "rmmovq"
	case MRMovq:
		return "mrmovq"
	case Pushq:
		return "pushq"
	case Popq:
		return "popq"
	}
	return ""
}

func hex(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}

// memOperand renders D(RB), dropping the parentheses when RB is absent.
func memOperand(d uint64, rb OptReg) string {
	if !rb.Present() {
		return hex(d)
	}
	return hex(d) + "(" + rb.String() + ")"
}

func (i Halt) String() string { return "halt" }
func (i Nop) String() string  { return "nop" }
func (i Ret) String() string  { return "ret" }

func (i IOTrap) String() string {
	if !i.Trap.Valid() {
		return ""
	}
	return fmt.Sprintf("iotrap %d", i.Trap)
}

func (i CMov) String() string {
	m := Mnemonic(i)
	if m == "" {
		return ""
	}
	return fmt.Sprintf("%s %s, %s", m, i.RA, i.RB)
}

func (i OpQ) String() string {
	m := Mnemonic(i)
	if m == "" {
		return ""
	}
	return fmt.Sprintf("%s %s, %s", m, i.RA, i.RB)
}

func (i Jump) String() string {
	m := Mnemonic(i)
	if m == "" {
		return ""
	}
	return m + " " + hex(i.Dest)
}

func (i Call) String() string { return "call " + hex(i.Dest) }

func (i IRMovq) String() string {
	return fmt.Sprintf("irmovq %s, %s", hex(i.V), i.RB)
}

func (i RMMovq) String() string {
	return fmt.Sprintf("rmmovq %s, %s", i.RA, memOperand(i.D, i.RB))
}

func (i MRMovq) String() string {
	return fmt.Sprintf("mrmovq %s, %s", memOperand(i.D, i.RB), i.RA)
}

func (i Pushq) String() string { return "pushq " + i.RA.String() }
func (i Popq) String() string  { return "popq " + i.RA.String() }

// String is empty: invalid instructions have no assembly form.
func (i Invalid) String() string { return "" }
