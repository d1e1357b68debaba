// Package emu provides functional Y86 emulation.
package emu

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the machine parameters of an Emulator.
type Config struct {
	// MemorySize is the address space capacity in bytes. Default: 0x2000.
	MemorySize uint64 `json:"memory_size"`

	// MaxInstructions stops Run after this many instructions.
	// Default: 0 (no limit).
	MaxInstructions uint64 `json:"max_instructions"`

	// TrapBufferSize is the capacity of the trap output buffer in bytes.
	// Default: 100.
	TrapBufferSize int `json:"trap_buffer_size"`

	// StackPointer is the initial value of %rsp. Default: 0.
	StackPointer uint64 `json:"stack_pointer"`
}

// DefaultConfig returns a Config with the standard machine parameters.
func DefaultConfig() *Config {
	return &Config{
		MemorySize:      DefaultMemorySize,
		MaxInstructions: 0,
		TrapBufferSize:  DefaultTrapBufferSize,
		StackPointer:    0,
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read emulator config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse emulator config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize emulator config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write emulator config file: %w", err)
	}

	return nil
}

// Validate checks that the parameters describe a usable machine.
func (c *Config) Validate() error {
	if c.MemorySize == 0 {
		return fmt.Errorf("memory_size must be > 0")
	}
	if c.TrapBufferSize <= 0 {
		return fmt.Errorf("trap_buffer_size must be > 0")
	}
	if c.StackPointer > c.MemorySize {
		return fmt.Errorf("stack_pointer must be <= memory_size")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
