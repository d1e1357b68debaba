// Package emu provides functional Y86 emulation.
package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/mem/mem"
)

// DefaultMemorySize is the capacity of the address space in bytes.
const DefaultMemorySize uint64 = 0x2000

// ErrOutOfRange is returned for any access that does not fit in memory.
var ErrOutOfRange = errors.New("address out of range")

// Memory is the fixed-capacity, byte-addressed memory image. Every access is
// bounds-checked against the capacity before it reaches the backing store.
type Memory struct {
	storage *mem.Storage
	size    uint64
}

// NewMemory creates a zeroed memory of DefaultMemorySize bytes.
func NewMemory() *Memory {
	return NewMemoryWithSize(DefaultMemorySize)
}

// NewMemoryWithSize creates a zeroed memory of the given capacity.
func NewMemoryWithSize(size uint64) *Memory {
	return &Memory{
		storage: mem.NewStorage(size),
		size:    size,
	}
}

// Size returns the capacity in bytes.
func (m *Memory) Size() uint64 {
	return m.size
}

// InBounds reports whether the n bytes starting at addr lie inside memory.
func (m *Memory) InBounds(addr, n uint64) bool {
	return n <= m.size && addr <= m.size-n
}

// Read returns a copy of the n bytes starting at addr.
func (m *Memory) Read(addr, n uint64) ([]byte, error) {
	if !m.InBounds(addr, n) {
		return nil, fmt.Errorf("read %d bytes at 0x%x: %w", n, addr, ErrOutOfRange)
	}
	if n == 0 {
		return []byte{}, nil
	}

	data, err := m.storage.Read(addr, n)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at 0x%x: %w", n, addr, err)
	}
	return data, nil
}

// Write stores data starting at addr. Nothing is written if any byte would
// fall outside memory.
func (m *Memory) Write(addr uint64, data []byte) error {
	n := uint64(len(data))
	if !m.InBounds(addr, n) {
		return fmt.Errorf("write %d bytes at 0x%x: %w", n, addr, ErrOutOfRange)
	}
	if n == 0 {
		return nil
	}

	if err := m.storage.Write(addr, data); err != nil {
		return fmt.Errorf("write %d bytes at 0x%x: %w", n, addr, err)
	}
	return nil
}

// Read8 reads a single byte.
func (m *Memory) Read8(addr uint64) (byte, error) {
	b, err := m.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Write8 writes a single byte.
func (m *Memory) Write8(addr uint64, value byte) error {
	return m.Write(addr, []byte{value})
}

// Read64 reads a little-endian 64-bit value.
func (m *Memory) Read64(addr uint64) (uint64, error) {
	b, err := m.Read(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Write64 writes a little-endian 64-bit value.
func (m *Memory) Write64(addr uint64, value uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	return m.Write(addr, buf[:])
}

// Load copies a program image into memory at addr.
func (m *Memory) Load(addr uint64, data []byte) error {
	if err := m.Write(addr, data); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return nil
}

// Dump writes the bytes in [start, end) as rows of 16, each prefixed with
// the row's aligned address and split in two groups of eight.
func (m *Memory) Dump(w io.Writer, start, end uint64) {
	fmt.Fprintf(w, "Contents of memory from %04x to %04x:\n", start, end)

	if end > m.size {
		end = m.size
	}
	if start >= end {
		return
	}

	data, err := m.Read(start, end-start)
	if err != nil {
		return
	}

	offset := start % 16
	row := start - offset
	count := uint64(0)

	if offset != 0 {
		fmt.Fprintf(w, "  %04x  ", row)
		for ; count < offset; count++ {
			fmt.Fprint(w, "   ")
		}
		if offset >= 8 {
			fmt.Fprint(w, " ")
		}
	}

	for i := start; i < end; i++ {
		if count == 0 {
			fmt.Fprintf(w, "  %04x  ", row)
		}

		fmt.Fprintf(w, "%02x", data[i-start])
		count++

		if count != 16 && i != end-1 {
			fmt.Fprint(w, " ")
		}
		if count == 8 {
			fmt.Fprint(w, " ")
		}
		if count == 16 {
			count = 0
			row += 16
			if i != end-1 {
				fmt.Fprint(w, "\n")
			}
		}
	}

	fmt.Fprint(w, "\n")
}
