// Package emu provides functional Y86 emulation.
package emu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/sarchlab/y86sim/insts"
)

// DefaultTrapBufferSize is the capacity of the trap output buffer in bytes.
const DefaultTrapBufferSize = 100

// Trap I/O failures. Any of them halts the machine.
var (
	ErrUnknownTrap      = errors.New("unknown trap")
	ErrTrapBufferFull   = errors.New("trap output buffer full")
	ErrNoConsole        = errors.New("no console attached")
	errUnterminatedText = errors.New("unterminated string")
)

// Console supplies input to the charin and decin traps.
type Console interface {
	// ReadChar reads a single character.
	ReadChar() (byte, error)
	// ReadDecimal reads a signed decimal integer, skipping leading space.
	ReadDecimal() (int64, error)
}

// StreamConsole is a Console reading from an io.Reader.
type StreamConsole struct {
	r *bufio.Reader
}

// NewStreamConsole creates a Console over r.
func NewStreamConsole(r io.Reader) *StreamConsole {
	return &StreamConsole{r: bufio.NewReader(r)}
}

// ReadChar reads a single byte.
func (c *StreamConsole) ReadChar() (byte, error) {
	return c.r.ReadByte()
}

// ReadDecimal reads a whitespace-delimited decimal integer.
func (c *StreamConsole) ReadDecimal() (int64, error) {
	var v int64
	if _, err := fmt.Fscan(c.r, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// TrapResult represents the result of an I/O trap.
type TrapResult struct {
	// Status is AOK on success, HLT on an I/O error and ADR when the trap
	// touched memory outside the image.
	Status Status

	// Err describes the failure when Status is not AOK.
	Err error
}

// TrapHandler is the interface for handling IOTRAP instructions.
type TrapHandler interface {
	// Handle executes the trap against the register file and memory.
	// Operand addresses are taken from %rsi (output) and %rdi (input).
	Handle(trap insts.Trap) TrapResult
}

// DefaultTrapHandler buffers trap output and writes it on flush.
type DefaultTrapHandler struct {
	regFile *RegFile
	memory  *Memory
	console Console
	stdout  io.Writer

	buf   []byte
	limit int
}

// NewDefaultTrapHandler creates a trap handler with an empty buffer of
// DefaultTrapBufferSize bytes.
func NewDefaultTrapHandler(regFile *RegFile, memory *Memory, stdout io.Writer, console Console) *DefaultTrapHandler {
	return &DefaultTrapHandler{
		regFile: regFile,
		memory:  memory,
		console: console,
		stdout:  stdout,
		buf:     make([]byte, 0, DefaultTrapBufferSize),
		limit:   DefaultTrapBufferSize,
	}
}

// SetConsole sets the input source.
func (h *DefaultTrapHandler) SetConsole(console Console) {
	h.console = console
}

// SetBufferSize sets the output buffer capacity. Pending output is kept.
func (h *DefaultTrapHandler) SetBufferSize(n int) {
	h.limit = n
}

// Buffered returns the output not yet flushed.
func (h *DefaultTrapHandler) Buffered() []byte {
	return h.buf
}

// Handle executes one trap.
func (h *DefaultTrapHandler) Handle(trap insts.Trap) TrapResult {
	var err error

	switch trap {
	case insts.TrapCharOut:
		err = h.charOut()
	case insts.TrapCharIn:
		err = h.charIn()
	case insts.TrapDecOut:
		err = h.decOut()
	case insts.TrapDecIn:
		err = h.decIn()
	case insts.TrapStrOut:
		err = h.strOut()
	case insts.TrapFlush:
		err = h.Flush()
	default:
		err = fmt.Errorf("trap %d: %w", trap, ErrUnknownTrap)
	}

	if err == nil {
		return TrapResult{Status: AOK}
	}
	if errors.Is(err, ErrOutOfRange) {
		return TrapResult{Status: ADR, Err: err}
	}

	fmt.Fprint(h.stdout, "I/O Error")
	return TrapResult{Status: HLT, Err: err}
}

// Flush writes the buffered output and clears the buffer.
func (h *DefaultTrapHandler) Flush() error {
	if len(h.buf) == 0 {
		return nil
	}

	_, err := h.stdout.Write(h.buf)
	h.buf = h.buf[:0]
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Reset discards buffered output.
func (h *DefaultTrapHandler) Reset() {
	h.buf = h.buf[:0]
}

func (h *DefaultTrapHandler) charOut() error {
	b, err := h.memory.Read8(h.regFile.ReadReg(insts.RSI))
	if err != nil {
		return err
	}
	return h.append([]byte{b})
}

func (h *DefaultTrapHandler) charIn() error {
	addr := h.regFile.ReadReg(insts.RDI)
	if !h.memory.InBounds(addr, 1) {
		return fmt.Errorf("charin at 0x%x: %w", addr, ErrOutOfRange)
	}
	if h.console == nil {
		return ErrNoConsole
	}

	b, err := h.console.ReadChar()
	if err != nil {
		return fmt.Errorf("charin: %w", err)
	}
	return h.memory.Write8(addr, b)
}

func (h *DefaultTrapHandler) decOut() error {
	v, err := h.memory.Read64(h.regFile.ReadReg(insts.RSI))
	if err != nil {
		return err
	}
	return h.append(strconv.AppendInt(nil, int64(v), 10))
}

func (h *DefaultTrapHandler) decIn() error {
	addr := h.regFile.ReadReg(insts.RDI)
	if !h.memory.InBounds(addr, 8) {
		return fmt.Errorf("decin at 0x%x: %w", addr, ErrOutOfRange)
	}
	if h.console == nil {
		return ErrNoConsole
	}

	v, err := h.console.ReadDecimal()
	if err != nil {
		return fmt.Errorf("decin: %w", err)
	}
	return h.memory.Write64(addr, uint64(v))
}

func (h *DefaultTrapHandler) strOut() error {
	addr := h.regFile.ReadReg(insts.RSI)

	var text []byte
	for {
		b, err := h.memory.Read8(addr)
		if err != nil {
			return fmt.Errorf("strout: %w: %w", errUnterminatedText, err)
		}
		if b == 0 {
			break
		}
		text = append(text, b)
		addr++
	}

	return h.append(text)
}

func (h *DefaultTrapHandler) append(data []byte) error {
	if len(h.buf)+len(data) > h.limit {
		return ErrTrapBufferFull
	}
	h.buf = append(h.buf, data...)
	return nil
}
