// Package insts provides Y86-64 instruction definitions, decoding, encoding
// and disassembly.
//
// Y86 instructions are variable length (1, 2, 9 or 10 bytes). The first byte
// holds the opcode family in its high nibble and the sub-function in its low
// nibble. Families that name registers carry a register-pair byte, and
// families with a constant carry it as 8 little-endian bytes at the end of
// the encoding.
//
// Decoded instructions are value types, one per family, so that each carries
// only the operands its family needs:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(memory, 0x100)
//	if err != nil {
//		// errors.Is(err, insts.ErrAddress) or errors.Is(err, insts.ErrInstruction)
//	}
//	fmt.Println(insts.Disassemble(inst)) // irmovq 0x5, %rax
package insts
