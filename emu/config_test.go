package emu_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/y86sim/emu"
)

var _ = Describe("Config", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "emu-config-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tempDir)
	})

	It("should have usable defaults", func() {
		config := emu.DefaultConfig()

		Expect(config.MemorySize).To(Equal(emu.DefaultMemorySize))
		Expect(config.TrapBufferSize).To(Equal(emu.DefaultTrapBufferSize))
		Expect(config.Validate()).To(Succeed())
	})

	It("should round-trip through a file", func() {
		config := emu.DefaultConfig()
		config.MaxInstructions = 1000
		config.StackPointer = 0x1000
		path := filepath.Join(tempDir, "emu.json")

		Expect(config.SaveConfig(path)).To(Succeed())
		loaded, err := emu.LoadConfig(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(config))
	})

	It("should keep defaults for fields missing from the file", func() {
		path := filepath.Join(tempDir, "partial.json")
		Expect(os.WriteFile(path, []byte(`{"max_instructions": 7}`), 0644)).To(Succeed())

		loaded, err := emu.LoadConfig(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.MaxInstructions).To(Equal(uint64(7)))
		Expect(loaded.MemorySize).To(Equal(emu.DefaultMemorySize))
	})

	It("should report unreadable and malformed files", func() {
		_, err := emu.LoadConfig(filepath.Join(tempDir, "missing.json"))
		Expect(err).To(HaveOccurred())

		path := filepath.Join(tempDir, "bad.json")
		Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())
		_, err = emu.LoadConfig(path)
		Expect(err).To(MatchError(ContainSubstring("failed to parse")))
	})

	It("should reject invalid values", func() {
		config := emu.DefaultConfig()
		config.MemorySize = 0
		Expect(config.Validate()).NotTo(Succeed())

		config = emu.DefaultConfig()
		config.TrapBufferSize = 0
		Expect(config.Validate()).NotTo(Succeed())

		config = emu.DefaultConfig()
		config.StackPointer = config.MemorySize + 8
		Expect(config.Validate()).NotTo(Succeed())
	})

	It("should clone independently", func() {
		config := emu.DefaultConfig()
		clone := config.Clone()
		clone.MemorySize = 0x100

		Expect(config.MemorySize).To(Equal(emu.DefaultMemorySize))
	})
})
