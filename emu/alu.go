// Package emu provides functional Y86 emulation.
package emu

import "github.com/sarchlab/y86sim/insts"

// ALU implements the Y86 arithmetic and logic operations.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Execute computes valB fn valA and sets the condition flags from the
// result. Subtraction is valB - valA. It returns false for an undefined
// operation, leaving the flags untouched.
func (a *ALU) Execute(fn insts.ALUOp, valA, valB uint64) (uint64, bool) {
	var result uint64

	switch fn {
	case insts.ALUAdd:
		result = a.ADD(valA, valB)
	case insts.ALUSub:
		result = a.SUB(valA, valB)
	case insts.ALUAnd:
		result = a.AND(valA, valB)
	case insts.ALUXor:
		result = a.XOR(valA, valB)
	default:
		return 0, false
	}

	return result, true
}

// ADD returns valB + valA and sets ZF, SF and OF.
func (a *ALU) ADD(valA, valB uint64) uint64 {
	result := valB + valA
	a.setFlags(result, addOverflow(valA, valB, result))
	return result
}

// SUB returns valB - valA and sets ZF, SF and OF.
func (a *ALU) SUB(valA, valB uint64) uint64 {
	result := valB - valA
	a.setFlags(result, subOverflow(valA, valB, result))
	return result
}

// AND returns valB & valA, sets ZF and SF and clears OF.
func (a *ALU) AND(valA, valB uint64) uint64 {
	result := valB & valA
	a.setFlags(result, false)
	return result
}

// XOR returns valB ^ valA, sets ZF and SF and clears OF.
func (a *ALU) XOR(valA, valB uint64) uint64 {
	result := valB ^ valA
	a.setFlags(result, false)
	return result
}

func (a *ALU) setFlags(result uint64, overflow bool) {
	a.regFile.Flags.ZF = result == 0
	a.regFile.Flags.SF = result>>63 == 1
	a.regFile.Flags.OF = overflow
}

// addOverflow reports signed overflow of valB + valA: both operands have the
// same sign and the result's sign differs.
func addOverflow(valA, valB, result uint64) bool {
	return ((valA^result)&(valB^result))>>63 == 1
}

// subOverflow reports signed overflow of valB - valA: the operands have
// different signs and the result's sign differs from valB.
func subOverflow(valA, valB, result uint64) bool {
	return ((valB^valA)&(valB^result))>>63 == 1
}
