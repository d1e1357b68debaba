// Package emu provides functional Y86 emulation.
package emu

import "github.com/sarchlab/y86sim/insts"

// LoadStoreUnit implements the memory accesses of the Y86 memory stage.
// Every access is checked over its full eight-byte span before memory is
// touched; a failing access changes nothing.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// Load loads the quad word at addr into rd.
func (lsu *LoadStoreUnit) Load(rd insts.Reg, addr uint64) error {
	value, err := lsu.memory.Read64(addr)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rd, value)
	return nil
}

// Store stores value at addr.
func (lsu *LoadStoreUnit) Store(addr, value uint64) error {
	return lsu.memory.Write64(addr, value)
}

// Push stores value at newSP and moves the stack pointer there.
func (lsu *LoadStoreUnit) Push(newSP, value uint64) error {
	if err := lsu.memory.Write64(newSP, value); err != nil {
		return err
	}
	lsu.regFile.SetSP(newSP)
	return nil
}

// Pop reads the quad word at top and moves the stack pointer to newSP.
func (lsu *LoadStoreUnit) Pop(top, newSP uint64) (uint64, error) {
	value, err := lsu.memory.Read64(top)
	if err != nil {
		return 0, err
	}
	lsu.regFile.SetSP(newSP)
	return value, nil
}
