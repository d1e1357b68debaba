package insts

import (
	"encoding/binary"
	"fmt"
)

// Encoder produces the binary form of instructions. It is the inverse of
// Decoder for every legal instruction.
type Encoder struct{}

// NewEncoder creates a new Y86 instruction encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode returns the encoded bytes of inst. The instruction's location is
// ignored.
func (e *Encoder) Encode(inst Instruction) ([]byte, error) {
	if inst == nil {
		return nil, fmt.Errorf("encode: nil instruction")
	}

	op := inst.Op()
	if op >= OpInvalid {
		return nil, fmt.Errorf("encode: %w", ErrInstruction)
	}
	if inst.Fun() > op.MaxFun() {
		return nil, fmt.Errorf("encode %s: sub-function %d: %w", op, inst.Fun(), ErrInstruction)
	}

	buf := make([]byte, op.Len())
	buf[0] = byte(op)<<4 | inst.Fun()

	var err error
	switch i := inst.(type) {
	case CMov:
		err = pair(buf, Some(i.RA), Some(i.RB))
	case OpQ:
		err = pair(buf, Some(i.RA), Some(i.RB))
	case Pushq:
		err = pair(buf, Some(i.RA), NoReg)
	case Popq:
		err = pair(buf, Some(i.RA), NoReg)
	case Jump:
		binary.LittleEndian.PutUint64(buf[1:], i.Dest)
	case Call:
		binary.LittleEndian.PutUint64(buf[1:], i.Dest)
	case IRMovq:
		err = pair(buf, NoReg, Some(i.RB))
		binary.LittleEndian.PutUint64(buf[2:], i.V)
	case RMMovq:
		err = pair(buf, Some(i.RA), i.RB)
		binary.LittleEndian.PutUint64(buf[2:], i.D)
	case MRMovq:
		err = pair(buf, Some(i.RA), i.RB)
		binary.LittleEndian.PutUint64(buf[2:], i.D)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", op, err)
	}

	return buf, nil
}

// MustEncode is like Encode but panics on error. It is meant for building
// fixed programs.
func (e *Encoder) MustEncode(inst Instruction) []byte {
	b, err := e.Encode(inst)
	if err != nil {
		panic(err)
	}
	return b
}

// pair fills the register-pair byte.
func pair(buf []byte, ra, rb OptReg) error {
	if r, ok := ra.Get(); ok && !r.Valid() {
		return fmt.Errorf("register %d: %w", r, ErrInstruction)
	}
	if r, ok := rb.Get(); ok && !r.Valid() {
		return fmt.Errorf("register %d: %w", r, ErrInstruction)
	}
	buf[1] = ra.Nibble()<<4 | rb.Nibble()
	return nil
}
