// Package emu provides functional Y86 emulation.
package emu

import "github.com/sarchlab/y86sim/insts"

// RegFile represents the Y86 register file.
// It contains the 15 general-purpose registers, the program counter and the
// condition flags.
type RegFile struct {
	// R holds the general-purpose registers, indexed by insts.Reg.
	R [insts.NumRegs]uint64

	// PC is the program counter.
	PC uint64

	// Flags holds the condition codes.
	Flags Flags
}

// Flags represents the condition codes set by OPQ.
type Flags struct {
	// ZF is the zero flag.
	ZF bool
	// SF is the sign flag.
	SF bool
	// OF is the overflow flag.
	OF bool
}

// Clear resets all flags.
func (f *Flags) Clear() {
	*f = Flags{}
}

// ReadReg reads a register value. Undefined registers read as 0.
func (r *RegFile) ReadReg(reg insts.Reg) uint64 {
	if !reg.Valid() {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Writes to undefined registers are
// ignored.
func (r *RegFile) WriteReg(reg insts.Reg, value uint64) {
	if !reg.Valid() {
		return
	}
	r.R[reg] = value
}

// ReadBase reads an optional base register; an absent register reads as 0.
func (r *RegFile) ReadBase(reg insts.OptReg) uint64 {
	if rb, ok := reg.Get(); ok {
		return r.ReadReg(rb)
	}
	return 0
}

// SP returns the stack pointer (%rsp).
func (r *RegFile) SP() uint64 {
	return r.R[insts.RSP]
}

// SetSP sets the stack pointer (%rsp).
func (r *RegFile) SetSP(value uint64) {
	r.R[insts.RSP] = value
}
