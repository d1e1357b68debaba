package emu_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
)

var _ = Describe("Trap Handler", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		stdout  *bytes.Buffer
		handler *emu.DefaultTrapHandler
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
		stdout = new(bytes.Buffer)
		handler = emu.NewDefaultTrapHandler(regFile, memory, stdout,
			emu.NewStreamConsole(strings.NewReader("x  42\n-7")))
	})

	Describe("Output", func() {
		It("should buffer charout until flush", func() {
			Expect(memory.Write8(0x200, 'A')).To(Succeed())
			regFile.WriteReg(insts.RSI, 0x200)

			result := handler.Handle(insts.TrapCharOut)

			Expect(result.Status).To(Equal(emu.AOK))
			Expect(stdout.Len()).To(BeZero())
			Expect(handler.Buffered()).To(Equal([]byte("A")))

			Expect(handler.Handle(insts.TrapFlush).Status).To(Equal(emu.AOK))
			Expect(stdout.String()).To(Equal("A"))
			Expect(handler.Buffered()).To(BeEmpty())
		})

		It("should format decout as signed decimal", func() {
			Expect(memory.Write64(0x200, uint64(0xFFFFFFFFFFFFFFF9))).To(Succeed())
			regFile.WriteReg(insts.RSI, 0x200)

			handler.Handle(insts.TrapDecOut)
			handler.Handle(insts.TrapFlush)

			Expect(stdout.String()).To(Equal("-7"))
		})

		It("should copy a NUL-terminated string on strout", func() {
			Expect(memory.Write(0x300, []byte("hello\x00junk"))).To(Succeed())
			regFile.WriteReg(insts.RSI, 0x300)

			Expect(handler.Handle(insts.TrapStrOut).Status).To(Equal(emu.AOK))
			handler.Handle(insts.TrapFlush)

			Expect(stdout.String()).To(Equal("hello"))
		})

		It("should halt with an I/O error when the buffer overflows", func() {
			handler.SetBufferSize(4)
			Expect(memory.Write(0x300, []byte("hello\x00"))).To(Succeed())
			regFile.WriteReg(insts.RSI, 0x300)

			result := handler.Handle(insts.TrapStrOut)

			Expect(result.Status).To(Equal(emu.HLT))
			Expect(errors.Is(result.Err, emu.ErrTrapBufferFull)).To(BeTrue())
			Expect(stdout.String()).To(Equal("I/O Error"))
		})

		It("should fault with ADR when the string runs off memory", func() {
			Expect(memory.Write(0x1FFE, []byte("ab"))).To(Succeed())
			regFile.WriteReg(insts.RSI, 0x1FFE)

			result := handler.Handle(insts.TrapStrOut)

			Expect(result.Status).To(Equal(emu.ADR))
			Expect(errors.Is(result.Err, emu.ErrOutOfRange)).To(BeTrue())
		})

		It("should fault with ADR when charout reads outside memory", func() {
			regFile.WriteReg(insts.RSI, 0x9000)

			Expect(handler.Handle(insts.TrapCharOut).Status).To(Equal(emu.ADR))
		})
	})

	Describe("Input", func() {
		It("should store characters and decimals at %rdi", func() {
			regFile.WriteReg(insts.RDI, 0x400)
			Expect(handler.Handle(insts.TrapCharIn).Status).To(Equal(emu.AOK))

			b, err := memory.Read8(0x400)
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(Equal(byte('x')))

			regFile.WriteReg(insts.RDI, 0x408)
			Expect(handler.Handle(insts.TrapDecIn).Status).To(Equal(emu.AOK))

			v, err := memory.Read64(0x408)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint64(42)))

			Expect(handler.Handle(insts.TrapDecIn).Status).To(Equal(emu.AOK))
			v, err = memory.Read64(0x408)
			Expect(err).NotTo(HaveOccurred())
			Expect(int64(v)).To(Equal(int64(-7)))
		})

		It("should halt when input is exhausted", func() {
			handler.SetConsole(emu.NewStreamConsole(strings.NewReader("")))
			regFile.WriteReg(insts.RDI, 0x400)

			Expect(handler.Handle(insts.TrapCharIn).Status).To(Equal(emu.HLT))
			Expect(stdout.String()).To(Equal("I/O Error"))
		})

		It("should halt when the decimal is malformed", func() {
			handler.SetConsole(emu.NewStreamConsole(strings.NewReader("abc")))
			regFile.WriteReg(insts.RDI, 0x400)

			Expect(handler.Handle(insts.TrapDecIn).Status).To(Equal(emu.HLT))
		})

		It("should halt without a console", func() {
			handler.SetConsole(nil)

			result := handler.Handle(insts.TrapCharIn)

			Expect(result.Status).To(Equal(emu.HLT))
			Expect(errors.Is(result.Err, emu.ErrNoConsole)).To(BeTrue())
		})

		It("should fault with ADR when the input slot is outside memory", func() {
			regFile.WriteReg(insts.RDI, 0x1FFC)

			Expect(handler.Handle(insts.TrapDecIn).Status).To(Equal(emu.ADR))
		})
	})

	It("should halt on an unknown trap", func() {
		result := handler.Handle(insts.Trap(6))

		Expect(result.Status).To(Equal(emu.HLT))
		Expect(errors.Is(result.Err, emu.ErrUnknownTrap)).To(BeTrue())
		Expect(stdout.String()).To(Equal("I/O Error"))
	})
})
