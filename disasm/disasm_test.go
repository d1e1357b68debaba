package disasm_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/y86sim/disasm"
	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
)

// failingMemory fails exactly one Read call, counted from one.
type failingMemory struct {
	insts.Memory
	failAt int
	calls  int
}

func (m *failingMemory) Read(addr, n uint64) ([]byte, error) {
	m.calls++
	if m.calls == m.failAt {
		return nil, errors.New("read failed")
	}
	return m.Memory.Read(addr, n)
}

var _ = Describe("Listings", func() {
	var (
		memory  *emu.Memory
		encoder *insts.Encoder
		out     *bytes.Buffer
	)

	load := func(addr uint64, program ...insts.Instruction) uint64 {
		start := addr
		for _, inst := range program {
			b := encoder.MustEncode(inst)
			Expect(memory.Load(addr, b)).To(Succeed())
			addr += uint64(len(b))
		}
		return addr - start
	}

	BeforeEach(func() {
		memory = emu.NewMemory()
		encoder = insts.NewEncoder()
		out = new(bytes.Buffer)
	})

	Describe("Code", func() {
		It("should list each instruction with its bytes", func() {
			size := load(0x100, insts.IRMovq{RB: insts.RAX, V: 5}, insts.Halt{})

			disasm.Code(out, memory, disasm.Segment{Addr: 0x100, Size: size}, 0x100)

			Expect(out.String()).To(Equal(
				"  0x100:                      | .pos 0x100 code\n" +
					"  0x100:                      | _start:\n" +
					"  0x100: 30f00500000000000000 |   irmovq 0x5, %rax\n" +
					"  0x10a: 00                   |   halt\n" +
					"\n"))
		})

		It("should place the start label at the entry point", func() {
			size := load(0x100, insts.Nop{}, insts.Ret{})

			disasm.Code(out, memory, disasm.Segment{Addr: 0x100, Size: size}, 0x101)

			lines := strings.Split(out.String(), "\n")
			Expect(lines[1]).To(HavePrefix("  0x100: 10"))
			Expect(lines[2]).To(Equal("  0x101:                      | _start:"))
			Expect(lines[3]).To(HaveSuffix("|   ret"))
		})

		It("should stop at the first invalid opcode", func() {
			size := load(0x100, insts.Nop{})
			Expect(memory.Load(0x101, []byte{0xF3, 0x10})).To(Succeed())

			disasm.Code(out, memory, disasm.Segment{Addr: 0x100, Size: size + 2}, 0x100)

			Expect(out.String()).To(HaveSuffix("Invalid opcode: 0xf3\n\n"))
			Expect(strings.Count(out.String(), "|   nop")).To(Equal(1))
		})

		It("should stop when the instruction bytes cannot be read", func() {
			size := load(0x100, insts.Nop{}, insts.Halt{})
			// Decode reads the opcode byte and then the whole instruction.
			mem := &failingMemory{Memory: memory, failAt: 3}

			disasm.Code(out, mem, disasm.Segment{Addr: 0x100, Size: size}, 0x100)

			Expect(out.String()).To(Equal(
				"  0x100:                      | .pos 0x100 code\n" +
					"  0x100:                      | _start:\n" +
					"Invalid opcode: 0x10\n\n"))
		})

		It("should render memory operands", func() {
			size := load(0x0,
				insts.RMMovq{RA: insts.RSI, RB: insts.Some(insts.RSP), D: 0x10},
				insts.MRMovq{RA: insts.RDI, RB: insts.NoReg, D: 0x200},
			)

			disasm.Code(out, memory, disasm.Segment{Addr: 0, Size: size}, 0x40)

			Expect(out.String()).To(ContainSubstring("|   rmmovq %rsi, 0x10(%rsp)\n"))
			Expect(out.String()).To(ContainSubstring("|   mrmovq 0x200, %rdi\n"))
			Expect(out.String()).NotTo(ContainSubstring("_start"))
		})
	})

	Describe("Data", func() {
		It("should list quad words", func() {
			Expect(memory.Write64(0x200, 0x2A)).To(Succeed())
			Expect(memory.Write64(0x208, 0x1122334455667788)).To(Succeed())

			disasm.Data(out, memory, disasm.Segment{Addr: 0x200, Size: 16})

			Expect(out.String()).To(Equal(
				"  0x200:                      | .pos 0x200 data\n" +
					"  0x200: 2a00000000000000     |   .quad 0x2a\n" +
					"  0x208: 8877665544332211     |   .quad 0x1122334455667788\n" +
					"\n"))
		})
	})

	Describe("ROData", func() {
		It("should list short strings on one line", func() {
			Expect(memory.Write(0x300, []byte("hi\x00ok\x00"))).To(Succeed())

			disasm.ROData(out, memory, disasm.Segment{Addr: 0x300, Size: 6})

			Expect(out.String()).To(Equal(
				"  0x300:                      | .pos 0x300 rodata\n" +
					"  0x300: 686900               |   .string \"hi\"\n" +
					"  0x303: 6f6b00               |   .string \"ok\"\n" +
					"\n"))
		})

		It("should wrap the bytes of long strings", func() {
			Expect(memory.Write(0x300, []byte("abcdefghijkl\x00"))).To(Succeed())

			disasm.ROData(out, memory, disasm.Segment{Addr: 0x300, Size: 13})

			Expect(out.String()).To(Equal(
				"  0x300:                      | .pos 0x300 rodata\n" +
					"  0x300: 6162636465666768696a |   .string \"abcdefghijkl\"\n" +
					"  0x30a: 6b6c00               | \n" +
					"\n"))
		})
	})
})
