package insts

import "fmt"

// Reg identifies one of the 15 Y86 general-purpose registers.
type Reg uint8

// Y86 registers, numbered as they appear in register-pair bytes.
const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
)

// NumRegs is the size of the register file.
const NumRegs = 15

// RegNone is the register-pair nibble meaning "no register".
const RegNone uint8 = 0xF

var regNames = [NumRegs]string{
	"%rax", "%rcx", "%rdx", "%rbx", "%rsp", "%rbp", "%rsi", "%rdi",
	"%r8", "%r9", "%r10", "%r11", "%r12", "%r13", "%r14",
}

// Valid reports whether r names a real register.
func (r Reg) Valid() bool {
	return r < NumRegs
}

// String returns the assembly token for the register, e.g. "%rax".
func (r Reg) String() string {
	if !r.Valid() {
		return fmt.Sprintf("%%r?%d", uint8(r))
	}
	return regNames[r]
}

// OptReg is a register operand that may be absent. The zero value is absent.
type OptReg struct {
	reg     Reg
	present bool
}

// NoReg is the absent register operand.
var NoReg = OptReg{}

// Some returns a present register operand.
func Some(r Reg) OptReg {
	return OptReg{reg: r, present: true}
}

// Get returns the register and whether it is present.
func (o OptReg) Get() (Reg, bool) {
	return o.reg, o.present
}

// Present reports whether a register is named.
func (o OptReg) Present() bool {
	return o.present
}

// Nibble returns the 4-bit encoding of the operand, RegNone when absent.
func (o OptReg) Nibble() uint8 {
	if !o.present {
		return RegNone
	}
	return uint8(o.reg)
}

// String returns the register token, or "" when absent.
func (o OptReg) String() string {
	if !o.present {
		return ""
	}
	return o.reg.String()
}

// optRegFromNibble converts a register-pair nibble into an optional register.
func optRegFromNibble(n uint8) OptReg {
	if n == RegNone {
		return NoReg
	}
	return Some(Reg(n))
}
