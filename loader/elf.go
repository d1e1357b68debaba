// Package loader provides Mini-ELF loading for Y86 executables.
//
// A Mini-ELF file starts with a 16-byte header followed, at the header's
// program-header offset, by a table of 20-byte program headers. Each program
// header describes one segment: where its bytes are in the file and where
// they go in memory. All multi-byte fields are little-endian.
package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Magic numbers identifying the file and each program header.
const (
	HeaderMagic  uint32 = 0x00464C45 // "ELF\0"
	SegmentMagic uint32 = 0xDEADBEEF
)

// On-disk sizes of the header and of one program header.
const (
	HeaderSize        = 16
	ProgramHeaderSize = 20
)

var (
	// ErrBadMagic means a header or program header has the wrong magic.
	ErrBadMagic = errors.New("bad magic number")
	// ErrSegmentOutOfRange means a segment does not fit in memory.
	ErrSegmentOutOfRange = errors.New("segment out of range")
)

// Header is the Mini-ELF file header.
type Header struct {
	Version   uint16
	Entry     uint16
	PhdrStart uint16
	NumPhdr   uint16
	SymTab    uint16
	StrTab    uint16
	Magic     uint32
}

// SegmentType classifies a segment.
type SegmentType uint16

// Segment types.
const (
	SegmentData SegmentType = iota
	SegmentCode
	SegmentStack
	SegmentHeap
)

// String returns the type name.
func (t SegmentType) String() string {
	switch t {
	case SegmentData:
		return "DATA"
	case SegmentCode:
		return "CODE"
	case SegmentStack:
		return "STACK"
	case SegmentHeap:
		return "HEAP"
	}
	return "UNKNOWN"
}

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint16

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// String renders the flags as three columns, e.g. "R X". Unknown bit
// combinations render blank.
func (f SegmentFlags) String() string {
	if f > SegmentFlagRead|SegmentFlagWrite|SegmentFlagExecute {
		return "   "
	}

	b := []byte("   ")
	if f&SegmentFlagRead != 0 {
		b[0] = 'R'
	}
	if f&SegmentFlagWrite != 0 {
		b[1] = 'W'
	}
	if f&SegmentFlagExecute != 0 {
		b[2] = 'X'
	}
	return string(b)
}

// ProgramHeader describes one segment.
type ProgramHeader struct {
	Offset   uint32
	FileSize uint32
	VirtAddr uint32
	Type     SegmentType
	Flags    SegmentFlags
	Magic    uint32
}

// ReadOnly reports whether the segment is readable but not writable or
// executable.
func (p ProgramHeader) ReadOnly() bool {
	return p.Flags == SegmentFlagRead
}

// Segment is a program header together with the bytes it describes.
type Segment struct {
	ProgramHeader
	// Data contains the segment contents from the file.
	Data []byte
}

// Program represents a parsed Mini-ELF file ready for loading.
type Program struct {
	// Header is the file header.
	Header Header
	// EntryPoint is the address where execution should begin.
	EntryPoint uint64
	// Segments contains all segments in program-header order.
	Segments []Segment
}

// Image is the memory a program is loaded into.
type Image interface {
	Size() uint64
	Load(addr uint64, data []byte) error
}

// Load opens a Mini-ELF file and parses it.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Mini-ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse reads the header, every program header and every segment's bytes.
func Parse(r io.ReaderAt) (*Program, error) {
	hdr, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	prog := &Program{
		Header:     hdr,
		EntryPoint: uint64(hdr.Entry),
	}

	for i := 0; i < int(hdr.NumPhdr); i++ {
		off := int64(hdr.PhdrStart) + int64(i)*ProgramHeaderSize

		phdr, err := ReadProgramHeader(r, off)
		if err != nil {
			return nil, fmt.Errorf("program header %d: %w", i, err)
		}

		data := make([]byte, phdr.FileSize)
		if phdr.FileSize > 0 {
			n, err := r.ReadAt(data, int64(phdr.Offset))
			if err != nil && !(errors.Is(err, io.EOF) && n == len(data)) {
				return nil, fmt.Errorf("failed to read segment %d at offset 0x%x: %w", i, phdr.Offset, err)
			}
		}

		prog.Segments = append(prog.Segments, Segment{ProgramHeader: phdr, Data: data})
	}

	return prog, nil
}

// ReadHeader reads and validates the file header.
func ReadHeader(r io.ReaderAt) (Header, error) {
	var hdr Header
	sr := io.NewSectionReader(r, 0, HeaderSize)
	if err := binary.Read(sr, binary.LittleEndian, &hdr); err != nil {
		return Header{}, fmt.Errorf("failed to read Mini-ELF header: %w", err)
	}
	if hdr.Magic != HeaderMagic {
		return Header{}, fmt.Errorf("Mini-ELF header: %w (0x%08x)", ErrBadMagic, hdr.Magic)
	}
	return hdr, nil
}

// ReadProgramHeader reads and validates the program header at off.
func ReadProgramHeader(r io.ReaderAt, off int64) (ProgramHeader, error) {
	var phdr ProgramHeader
	sr := io.NewSectionReader(r, off, ProgramHeaderSize)
	if err := binary.Read(sr, binary.LittleEndian, &phdr); err != nil {
		return ProgramHeader{}, fmt.Errorf("failed to read program header at 0x%x: %w", off, err)
	}
	if phdr.Magic != SegmentMagic {
		return ProgramHeader{}, fmt.Errorf("program header at 0x%x: %w (0x%08x)", off, ErrBadMagic, phdr.Magic)
	}
	return phdr, nil
}

// LoadInto copies every segment into img. A segment that does not fit is
// rejected before anything of it is written.
func (p *Program) LoadInto(img Image) error {
	for i, seg := range p.Segments {
		end := uint64(seg.VirtAddr) + uint64(seg.FileSize)
		if end > img.Size() {
			return fmt.Errorf("segment %d at 0x%x (%d bytes): %w",
				i, seg.VirtAddr, seg.FileSize, ErrSegmentOutOfRange)
		}
		if err := img.Load(uint64(seg.VirtAddr), seg.Data); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}

// DumpHeader writes the raw header bytes followed by a description of each
// field.
func DumpHeader(w io.Writer, hdr Header) {
	var raw [HeaderSize]byte
	binary.LittleEndian.PutUint16(raw[0:], hdr.Version)
	binary.LittleEndian.PutUint16(raw[2:], hdr.Entry)
	binary.LittleEndian.PutUint16(raw[4:], hdr.PhdrStart)
	binary.LittleEndian.PutUint16(raw[6:], hdr.NumPhdr)
	binary.LittleEndian.PutUint16(raw[8:], hdr.SymTab)
	binary.LittleEndian.PutUint16(raw[10:], hdr.StrTab)
	binary.LittleEndian.PutUint32(raw[12:], hdr.Magic)

	fmt.Fprintf(w, "% x  % x\n", raw[:8], raw[8:])
	fmt.Fprintf(w, "Mini-ELF version %d\n", hdr.Version)
	fmt.Fprintf(w, "Entry point 0x%x\n", hdr.Entry)
	fmt.Fprintf(w, "There are %d program headers, starting at offset %d (0x%x)\n",
		hdr.NumPhdr, hdr.PhdrStart, hdr.PhdrStart)

	if hdr.SymTab == 0 {
		fmt.Fprintln(w, "There is no symbol table present")
	} else {
		fmt.Fprintf(w, "There is a symbol table starting at offset %d (0x%x)\n", hdr.SymTab, hdr.SymTab)
	}

	if hdr.StrTab == 0 {
		fmt.Fprintln(w, "There is no string table present")
	} else {
		fmt.Fprintf(w, "There is a string table starting at offset %d (0x%x)\n", hdr.StrTab, hdr.StrTab)
	}
}

// DumpSegments writes one table row per segment.
func DumpSegments(w io.Writer, segs []Segment) {
	fmt.Fprintln(w, " Segment   Offset    VirtAddr  FileSize  Type      Flag")
	for i, seg := range segs {
		fmt.Fprintf(w, "  %02d       0x%04x    0x%04x    0x%04x    %-10s%s\n",
			i, seg.Offset, seg.VirtAddr, seg.FileSize, seg.Type, seg.Flags)
	}
}
