// Package emu provides functional Y86 emulation.
package emu

import (
	"fmt"
	"io"

	"github.com/sarchlab/y86sim/insts"
)

// DumpState writes the program counter, flags, status and all registers.
func (e *Emulator) DumpState(w io.Writer) {
	r := e.regFile
	f := r.Flags

	fmt.Fprintln(w, "Y86 CPU state:")
	fmt.Fprintf(w, "  %%rip: %016x   flags: Z%d S%d O%d     %s\n",
		r.PC, bit(f.ZF), bit(f.SF), bit(f.OF), e.status)

	for i := insts.Reg(0); i+1 < insts.NumRegs; i += 2 {
		fmt.Fprintf(w, "  %4s: %016x    %4s: %016x\n",
			i, r.ReadReg(i), i+1, r.ReadReg(i+1))
	}
	fmt.Fprintf(w, "  %4s: %016x\n", insts.R14, r.ReadReg(insts.R14))
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}
