// Package benchmarks provides canned Y86 workloads and a harness that runs them.
package benchmarks

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/y86sim/insts"
)

// Builder assembles a Y86 program at a fixed base address. Jump, call and
// address-load targets may name labels defined later; they are patched when
// the program is finished.
type Builder struct {
	encoder *insts.Encoder
	base    uint64
	code    []byte
	labels  map[string]uint64
	fixups  []fixup
	err     error
}

type fixup struct {
	pos   int
	label string
}

// NewBuilder creates a builder for a program loaded at base.
func NewBuilder(base uint64) *Builder {
	return &Builder{
		encoder: insts.NewEncoder(),
		base:    base,
		labels:  make(map[string]uint64),
	}
}

// PC returns the address of the next emitted byte.
func (b *Builder) PC() uint64 {
	return b.base + uint64(len(b.code))
}

// Label binds name to the current address.
func (b *Builder) Label(name string) *Builder {
	if _, ok := b.labels[name]; ok && b.err == nil {
		b.err = fmt.Errorf("label %q defined twice", name)
	}
	b.labels[name] = b.PC()
	return b
}

// Emit appends encoded instructions.
func (b *Builder) Emit(program ...insts.Instruction) *Builder {
	for _, inst := range program {
		buf, err := b.encoder.Encode(inst)
		if err != nil {
			if b.err == nil {
				b.err = err
			}
			continue
		}
		b.code = append(b.code, buf...)
	}
	return b
}

// JumpTo emits a jump to label.
func (b *Builder) JumpTo(cond insts.Cond, label string) *Builder {
	b.fixups = append(b.fixups, fixup{pos: len(b.code) + 1, label: label})
	return b.Emit(insts.Jump{Cond: cond})
}

// CallTo emits a call to label.
func (b *Builder) CallTo(label string) *Builder {
	b.fixups = append(b.fixups, fixup{pos: len(b.code) + 1, label: label})
	return b.Emit(insts.Call{})
}

// AddressOf emits an irmovq loading the address of label into rb.
func (b *Builder) AddressOf(label string, rb insts.Reg) *Builder {
	b.fixups = append(b.fixups, fixup{pos: len(b.code) + 2, label: label})
	return b.Emit(insts.IRMovq{RB: rb})
}

// Quad appends a little-endian 8-byte value.
func (b *Builder) Quad(v uint64) *Builder {
	b.code = binary.LittleEndian.AppendUint64(b.code, v)
	return b
}

// Asciz appends s with a terminating NUL.
func (b *Builder) Asciz(s string) *Builder {
	b.code = append(b.code, s...)
	b.code = append(b.code, 0)
	return b
}

// Bytes resolves label references and returns the program.
func (b *Builder) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}

	code := make([]byte, len(b.code))
	copy(code, b.code)
	for _, f := range b.fixups {
		addr, ok := b.labels[f.label]
		if !ok {
			return nil, fmt.Errorf("undefined label %q", f.label)
		}
		binary.LittleEndian.PutUint64(code[f.pos:], addr)
	}
	return code, nil
}

// MustBytes is like Bytes but panics on error.
func (b *Builder) MustBytes() []byte {
	code, err := b.Bytes()
	if err != nil {
		panic(err)
	}
	return code
}
