package insts

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Decode faults. A DecodeError wraps exactly one of them.
var (
	// ErrAddress means the fetch touched an address outside memory.
	ErrAddress = errors.New("address fault")
	// ErrInstruction means the bytes do not encode a legal instruction.
	ErrInstruction = errors.New("invalid instruction")
)

// DecodeError describes why decoding at PC failed.
type DecodeError struct {
	PC   uint64
	Byte byte
	Err  error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrAddress) {
		return fmt.Sprintf("fetch at 0x%x: %v", e.PC, e.Err)
	}
	return fmt.Sprintf("decode 0x%02x at 0x%x: %v", e.Byte, e.PC, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Memory is the byte-addressed image instructions are fetched from.
type Memory interface {
	// Size returns the capacity in bytes.
	Size() uint64
	// Read returns n bytes starting at addr.
	Read(addr, n uint64) ([]byte, error)
}

// Decoder decodes Y86 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new Y86 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes the instruction at pc. On failure it returns an Invalid
// instruction together with a *DecodeError.
func (d *Decoder) Decode(mem Memory, pc uint64) (Instruction, error) {
	size := mem.Size()
	if pc >= size {
		return d.fault(pc, 0, ErrAddress)
	}

	first, err := mem.Read(pc, 1)
	if err != nil {
		return d.fault(pc, 0, ErrAddress)
	}
	b := first[0]

	// High nibble selects the family, low nibble the sub-function.
	op := Op(b >> 4)
	fun := b & 0xF

	if op >= OpInvalid || fun > op.MaxFun() {
		return d.fault(pc, b, ErrInstruction)
	}

	n := op.Len()
	if n > size-pc {
		return d.fault(pc, b, ErrAddress)
	}

	raw, err := mem.Read(pc, n)
	if err != nil {
		return d.fault(pc, b, ErrAddress)
	}

	loc := Loc{PC: pc, ValP: pc + n}

	switch op {
	case OpHALT:
		return Halt{loc}, nil
	case OpNOP:
		return Nop{loc}, nil
	case OpRET:
		return Ret{loc}, nil
	case OpIOTRAP:
		return IOTrap{Loc: loc, Trap: Trap(fun)}, nil
	case OpCMOV:
		ra, rb := regPair(raw[1])
		if !ra.Present() || !rb.Present() {
			return d.fault(pc, b, ErrInstruction)
		}
		return CMov{Loc: loc, Cond: Cond(fun), RA: ra.reg, RB: rb.reg}, nil
	case OpOPQ:
		ra, rb := regPair(raw[1])
		if !ra.Present() || !rb.Present() {
			return d.fault(pc, b, ErrInstruction)
		}
		return OpQ{Loc: loc, Fn: ALUOp(fun), RA: ra.reg, RB: rb.reg}, nil
	case OpPUSHQ, OpPOPQ:
		ra, rb := regPair(raw[1])
		if !ra.Present() || rb.Present() {
			return d.fault(pc, b, ErrInstruction)
		}
		if op == OpPUSHQ {
			return Pushq{Loc: loc, RA: ra.reg}, nil
		}
		return Popq{Loc: loc, RA: ra.reg}, nil
	case OpJUMP:
		return Jump{Loc: loc, Cond: Cond(fun), Dest: constant(raw, 1)}, nil
	case OpCALL:
		return Call{Loc: loc, Dest: constant(raw, 1)}, nil
	case OpIRMOVQ:
		ra, rb := regPair(raw[1])
		if ra.Present() || !rb.Present() {
			return d.fault(pc, b, ErrInstruction)
		}
		return IRMovq{Loc: loc, RB: rb.reg, V: constant(raw, 2)}, nil
	case OpRMMOVQ:
		ra, rb := regPair(raw[1])
		if !ra.Present() {
			return d.fault(pc, b, ErrInstruction)
		}
		return RMMovq{Loc: loc, RA: ra.reg, RB: rb, D: constant(raw, 2)}, nil
	case OpMRMOVQ:
		ra, rb := regPair(raw[1])
		if !ra.Present() {
			return d.fault(pc, b, ErrInstruction)
		}
		return MRMovq{Loc: loc, RA: ra.reg, RB: rb, D: constant(raw, 2)}, nil
	}

	return d.fault(pc, b, ErrInstruction)
}

// fault builds the Invalid result for a failed decode at pc.
func (d *Decoder) fault(pc uint64, b byte, err error) (Instruction, error) {
	return Invalid{Loc: Loc{PC: pc, ValP: pc}, Byte: b},
		&DecodeError{PC: pc, Byte: b, Err: err}
}

// regPair splits a register-pair byte into rA (high nibble) and rB (low).
func regPair(b byte) (OptReg, OptReg) {
	return optRegFromNibble(b >> 4), optRegFromNibble(b & 0xF)
}

// constant reads the little-endian 64-bit constant starting at raw[off].
func constant(raw []byte, off int) uint64 {
	return binary.LittleEndian.Uint64(raw[off : off+8])
}
