// Package emu provides functional Y86 emulation.
package emu

import "github.com/sarchlab/y86sim/insts"

// BranchUnit evaluates conditions for conditional moves and jumps and
// performs control transfers.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// CheckCondition evaluates a condition code against the current flags.
// Undefined conditions evaluate to false.
func (b *BranchUnit) CheckCondition(cond insts.Cond) bool {
	f := b.regFile.Flags

	switch cond {
	case insts.CondAlways:
		return true
	case insts.CondLE:
		return f.ZF || f.SF != f.OF
	case insts.CondL:
		return f.SF != f.OF
	case insts.CondE:
		return f.ZF
	case insts.CondNE:
		return !f.ZF
	case insts.CondGE:
		return f.SF == f.OF
	case insts.CondG:
		return !f.ZF && f.SF == f.OF
	default:
		return false
	}
}

// Jump sets the program counter to target when taken, or to next otherwise.
func (b *BranchUnit) Jump(taken bool, target, next uint64) {
	if taken {
		b.regFile.PC = target
		return
	}
	b.regFile.PC = next
}
