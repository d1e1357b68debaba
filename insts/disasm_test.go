package insts_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/y86sim/insts"
)

var _ = Describe("Disassemble", func() {
	DescribeTable("assembly text",
		func(inst insts.Instruction, want string) {
			Expect(insts.Disassemble(inst)).To(Equal(want))
		},
		Entry("halt", insts.Halt{}, "halt"),
		Entry("nop", insts.Nop{}, "nop"),
		Entry("ret", insts.Ret{}, "ret"),
		Entry("iotrap", insts.IOTrap{Trap: insts.TrapDecOut}, "iotrap 2"),
		Entry("rrmovq", insts.CMov{Cond: insts.CondAlways, RA: insts.RAX, RB: insts.RBX},
			"rrmovq %rax, %rbx"),
		Entry("cmovne", insts.CMov{Cond: insts.CondNE, RA: insts.R9, RB: insts.R10},
			"cmovne %r9, %r10"),
		Entry("xorq", insts.OpQ{Fn: insts.ALUXor, RA: insts.RSI, RB: insts.RDI},
			"xorq %rsi, %rdi"),
		Entry("jle", insts.Jump{Cond: insts.CondLE, Dest: 0x40}, "jle 0x40"),
		Entry("jmp", insts.Jump{Cond: insts.CondAlways, Dest: 0x0}, "jmp 0x0"),
		Entry("call", insts.Call{Dest: 0x1a2}, "call 0x1a2"),
		Entry("irmovq", insts.IRMovq{RB: insts.RAX, V: 5}, "irmovq 0x5, %rax"),
		Entry("rmmovq with base", insts.RMMovq{RA: insts.RAX, RB: insts.Some(insts.RBX), D: 8},
			"rmmovq %rax, 0x8(%rbx)"),
		Entry("rmmovq without base", insts.RMMovq{RA: insts.RCX, RB: insts.NoReg, D: 0x100},
			"rmmovq %rcx, 0x100"),
		Entry("mrmovq with base", insts.MRMovq{RA: insts.RAX, RB: insts.Some(insts.RBX), D: 8},
			"mrmovq 0x8(%rbx), %rax"),
		Entry("pushq", insts.Pushq{RA: insts.RAX}, "pushq %rax"),
		Entry("popq", insts.Popq{RA: insts.R14}, "popq %r14"),
		Entry("invalid", insts.Invalid{Byte: 0xFF}, ""),
	)

	It("should render nil as empty", func() {
		Expect(insts.Disassemble(nil)).To(BeEmpty())
	})

	It("should render negative immediates as their unsigned hex", func() {
		neg := int64(-1)
		inst := insts.IRMovq{RB: insts.RDX, V: uint64(neg)}
		Expect(inst.String()).To(Equal("irmovq 0xffffffffffffffff, %rdx"))
	})

	It("should produce the same text on repeated calls", func() {
		inst := insts.MRMovq{RA: insts.R8, RB: insts.Some(insts.RSP), D: 0x18}
		Expect(insts.Disassemble(inst)).To(Equal(insts.Disassemble(inst)))
	})
})

var _ = Describe("Encoder", func() {
	var (
		encoder *insts.Encoder
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		encoder = insts.NewEncoder()
		decoder = insts.NewDecoder()
	})

	It("should encode irmovq little-endian", func() {
		b, err := encoder.Encode(insts.IRMovq{RB: insts.RAX, V: 0x0102030405060708})

		Expect(err).NotTo(HaveOccurred())
		Expect(b).To(Equal([]byte{0x30, 0xF0, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}))
	})

	It("should mark an absent base register with 0xF", func() {
		b := encoder.MustEncode(insts.MRMovq{RA: insts.RBX, RB: insts.NoReg, D: 0x20})

		Expect(b[:2]).To(Equal([]byte{0x50, 0x3F}))
	})

	It("should reject an undefined sub-function", func() {
		_, err := encoder.Encode(insts.OpQ{Fn: insts.ALUOp(7), RA: insts.RAX, RB: insts.RAX})

		Expect(errors.Is(err, insts.ErrInstruction)).To(BeTrue())
	})

	It("should reject an undefined register", func() {
		_, err := encoder.Encode(insts.Pushq{RA: insts.Reg(0xF)})

		Expect(errors.Is(err, insts.ErrInstruction)).To(BeTrue())
	})

	It("should reject invalid instructions", func() {
		_, err := encoder.Encode(insts.Invalid{Byte: 0xFF})
		Expect(err).To(HaveOccurred())

		_, err = encoder.Encode(nil)
		Expect(err).To(HaveOccurred())
	})

	It("should panic in MustEncode on error", func() {
		Expect(func() { encoder.MustEncode(insts.Invalid{}) }).To(Panic())
	})

	Describe("round trip", func() {
		program := []insts.Instruction{
			insts.IRMovq{RB: insts.RSP, V: 0x1000},
			insts.IRMovq{RB: insts.RAX, V: 0x2a},
			insts.RMMovq{RA: insts.RAX, RB: insts.Some(insts.RSP), D: 0x8},
			insts.MRMovq{RA: insts.RBX, RB: insts.NoReg, D: 0x200},
			insts.OpQ{Fn: insts.ALUSub, RA: insts.RAX, RB: insts.RBX},
			insts.CMov{Cond: insts.CondGE, RA: insts.RBX, RB: insts.RCX},
			insts.Pushq{RA: insts.RCX},
			insts.Popq{RA: insts.RDX},
			insts.Call{Dest: 0x80},
			insts.Jump{Cond: insts.CondNE, Dest: 0x10},
			insts.IOTrap{Trap: insts.TrapStrOut},
			insts.Nop{},
			insts.Ret{},
			insts.Halt{},
		}

		It("should decode what it encodes at consecutive addresses", func() {
			mem := make(flatMemory, 0, 256)
			for _, inst := range program {
				mem = append(mem, encoder.MustEncode(inst)...)
			}

			pc := uint64(0)
			for _, want := range program {
				got, err := decoder.Decode(mem, pc)

				Expect(err).NotTo(HaveOccurred())
				Expect(got.Address()).To(Equal(pc))
				Expect(got.Op()).To(Equal(want.Op()))
				Expect(got.Fun()).To(Equal(want.Fun()))
				Expect(insts.Disassemble(got)).To(Equal(insts.Disassemble(want)))
				Expect(insts.Size(got)).To(Equal(want.Op().Len()))

				pc = got.NextPC()
			}
			Expect(pc).To(Equal(uint64(len(mem))))
		})
	})
})
