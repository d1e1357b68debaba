// Package disasm renders whole memory regions as Y86 assembly listings.
//
// Each renderer walks one segment of a loaded image and writes an annotated
// listing: the address of each item, its raw bytes, and its assembly form.
//
//	disasm.Code(os.Stdout, memory, disasm.Segment{Addr: 0x100, Size: 0x40}, 0x100)
package disasm

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/y86sim/insts"
)

// Segment is a contiguous region of memory.
type Segment struct {
	Addr uint64
	Size uint64
}

// End returns the first address past the segment.
func (s Segment) End() uint64 {
	return s.Addr + s.Size
}

// bytesColumn is the number of instruction bytes the raw column holds.
const bytesColumn = 10

// Code disassembles the code segment seg one instruction at a time, marking
// entry with a _start label. It stops at the first instruction that does
// not decode or whose bytes cannot be read back.
func Code(w io.Writer, mem insts.Memory, seg Segment, entry uint64) {
	decoder := insts.NewDecoder()

	fmt.Fprintf(w, "  0x%03x:%29s0x%03x code\n", seg.Addr, "| .pos ", seg.Addr)

	for pc := seg.Addr; pc < seg.End(); {
		if pc == entry {
			fmt.Fprintf(w, "  0x%03x:%31s\n", pc, "| _start:")
		}

		inst, err := decoder.Decode(mem, pc)
		if err != nil || !standardSize(insts.Size(inst)) {
			fmt.Fprintf(w, "Invalid opcode: 0x%02x\n\n", firstByte(mem, pc))
			return
		}

		raw, err := mem.Read(pc, insts.Size(inst))
		if err != nil {
			fmt.Fprintf(w, "Invalid opcode: 0x%02x\n\n", firstByte(mem, pc))
			return
		}
		fmt.Fprintf(w, "  0x%03x: %s |   %s\n", pc, hexColumn(raw, bytesColumn), insts.Disassemble(inst))

		pc = inst.NextPC()
	}

	fmt.Fprintln(w)
}

// Data renders the segment as eight-byte .quad values.
func Data(w io.Writer, mem insts.Memory, seg Segment) {
	fmt.Fprintf(w, "  0x%03x:%29s0x%03x data\n", seg.Addr, "| .pos ", seg.Addr)

	for addr := seg.Addr; addr < seg.End(); addr += 8 {
		raw, err := mem.Read(addr, 8)
		if err != nil {
			break
		}

		v := binary.LittleEndian.Uint64(raw)
		fmt.Fprintf(w, "  0x%03x: %x%15s0x%x\n", addr, raw, "|   .quad ", v)
	}

	fmt.Fprintln(w)
}

// ROData renders the segment as NUL-terminated .string values. The raw
// bytes of long strings wrap ten per line.
func ROData(w io.Writer, mem insts.Memory, seg Segment) {
	fmt.Fprintf(w, "  0x%03x:%29s0x%03x rodata\n", seg.Addr, "| .pos ", seg.Addr)

	for addr := seg.Addr; addr < seg.End(); {
		str := cString(mem, addr)
		n := uint64(len(str))

		// Raw bytes of the string including its terminator.
		raw := append([]byte(str), 0)

		first := raw
		if len(first) > bytesColumn {
			first = first[:bytesColumn]
		}
		fmt.Fprintf(w, "  0x%03x: %s |   .string \"%s\"\n", addr, hexColumn(first, bytesColumn), str)

		for off := bytesColumn; off < len(raw); off += bytesColumn {
			end := off + bytesColumn
			if end > len(raw) {
				end = len(raw)
			}
			fmt.Fprintf(w, "  0x%03x: %s | \n", addr+uint64(off), hexColumn(raw[off:end], bytesColumn))
		}

		addr += n + 1
	}

	fmt.Fprintln(w)
}

// cString reads the NUL-terminated string at addr. A string running off the
// end of memory ends there.
func cString(mem insts.Memory, addr uint64) string {
	var sb strings.Builder
	for a := addr; a < mem.Size(); a++ {
		b, err := mem.Read(a, 1)
		if err != nil || b[0] == 0 {
			break
		}
		sb.WriteByte(b[0])
	}
	return sb.String()
}

// hexColumn renders raw as hex, padded to width bytes.
func hexColumn(raw []byte, width int) string {
	s := fmt.Sprintf("%x", raw)
	if pad := width - len(raw); pad > 0 {
		s += strings.Repeat("  ", pad)
	}
	return s
}

func firstByte(mem insts.Memory, addr uint64) byte {
	b, err := mem.Read(addr, 1)
	if err != nil {
		return 0
	}
	return b[0]
}

func standardSize(n uint64) bool {
	switch n {
	case 1, 2, 9, 10:
		return true
	}
	return false
}
