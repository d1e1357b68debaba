package emu_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
)

func signed(v int64) uint64 { return uint64(v) }

var _ = Describe("ALU", func() {
	var (
		regFile *emu.RegFile
		alu     *emu.ALU
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		alu = emu.NewALU(regFile)
	})

	Describe("ADD", func() {
		It("should add and clear flags for a positive result", func() {
			Expect(alu.ADD(2, 3)).To(Equal(uint64(5)))

			Expect(regFile.Flags).To(Equal(emu.Flags{}))
		})

		It("should set ZF for a zero result", func() {
			Expect(alu.ADD(signed(-4), 4)).To(BeZero())

			Expect(regFile.Flags.ZF).To(BeTrue())
			Expect(regFile.Flags.OF).To(BeFalse())
		})

		It("should set OF when two positives overflow", func() {
			result := alu.ADD(1, math.MaxInt64)

			Expect(result).To(Equal(signed(math.MinInt64)))
			Expect(regFile.Flags.OF).To(BeTrue())
			Expect(regFile.Flags.SF).To(BeTrue())
		})

		It("should set OF when two negatives overflow", func() {
			result := alu.ADD(signed(-1), signed(math.MinInt64))

			Expect(result).To(Equal(uint64(math.MaxInt64)))
			Expect(regFile.Flags.OF).To(BeTrue())
			Expect(regFile.Flags.SF).To(BeFalse())
		})

		It("should not set OF for operands of different sign", func() {
			alu.ADD(signed(math.MinInt64), math.MaxInt64)

			Expect(regFile.Flags.OF).To(BeFalse())
		})
	})

	Describe("SUB", func() {
		It("should compute valB - valA", func() {
			Expect(alu.SUB(3, 10)).To(Equal(uint64(7)))
		})

		It("should set SF for a negative result", func() {
			Expect(alu.SUB(10, 3)).To(Equal(signed(-7)))

			Expect(regFile.Flags.SF).To(BeTrue())
			Expect(regFile.Flags.OF).To(BeFalse())
		})

		It("should set OF when a negative minus a positive overflows", func() {
			alu.SUB(1, signed(math.MinInt64))

			Expect(regFile.Flags.OF).To(BeTrue())
		})

		It("should set OF when a positive minus a negative overflows", func() {
			alu.SUB(signed(-1), math.MaxInt64)

			Expect(regFile.Flags.OF).To(BeTrue())
		})

		It("should set ZF for equal operands", func() {
			alu.SUB(42, 42)

			Expect(regFile.Flags).To(Equal(emu.Flags{ZF: true}))
		})
	})

	Describe("AND and XOR", func() {
		It("should clear OF", func() {
			regFile.Flags.OF = true

			Expect(alu.AND(0xF0, 0x3C)).To(Equal(uint64(0x30)))
			Expect(regFile.Flags.OF).To(BeFalse())
		})

		It("should set ZF when xor-ing a value with itself", func() {
			Expect(alu.XOR(0x55, 0x55)).To(BeZero())

			Expect(regFile.Flags.ZF).To(BeTrue())
		})

		It("should set SF from bit 63", func() {
			alu.AND(signed(-1), signed(math.MinInt64))

			Expect(regFile.Flags.SF).To(BeTrue())
		})
	})

	Describe("Execute", func() {
		It("should dispatch on the operation", func() {
			v, ok := alu.Execute(insts.ALUSub, 1, 5)

			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(uint64(4)))
		})

		It("should reject undefined operations without touching flags", func() {
			regFile.Flags.ZF = true

			_, ok := alu.Execute(insts.ALUOp(4), 1, 1)

			Expect(ok).To(BeFalse())
			Expect(regFile.Flags.ZF).To(BeTrue())
		})
	})
})
