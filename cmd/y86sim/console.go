package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/sarchlab/y86sim/emu"
)

// terminalConsole reads from an interactive terminal. The charin trap takes
// a single keypress without waiting for Enter; decin reads a cooked line.
type terminalConsole struct {
	fd int
	in *bufio.Reader
}

// newConsole returns a raw-mode console when f is a terminal and a plain
// stream console otherwise.
func newConsole(f *os.File) emu.Console {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return emu.NewStreamConsole(f)
	}
	return &terminalConsole{fd: fd, in: bufio.NewReader(f)}
}

// ReadChar reads one key. Input typed ahead of a previous decin is consumed
// first.
func (c *terminalConsole) ReadChar() (byte, error) {
	if c.in.Buffered() > 0 {
		return c.in.ReadByte()
	}

	oldState, err := term.MakeRaw(c.fd)
	if err != nil {
		return 0, fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer func() { _ = term.Restore(c.fd, oldState) }()

	b, err := c.in.ReadByte()
	if err != nil {
		return 0, err
	}

	// Raw mode sends CR for Enter.
	if b == '\r' {
		b = '\n'
	}
	return b, nil
}

// ReadDecimal reads a whitespace-delimited decimal integer in cooked mode.
func (c *terminalConsole) ReadDecimal() (int64, error) {
	var v int64
	if _, err := fmt.Fscan(c.in, &v); err != nil {
		return 0, err
	}
	return v, nil
}
