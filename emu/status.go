// Package emu provides functional Y86 emulation.
package emu

// Status is the machine status. AOK is the only state execution continues
// from; the others are terminal.
type Status uint8

// Machine status codes.
const (
	AOK Status = iota + 1 // running normally
	HLT                   // halted, by halt or an I/O error
	ADR                   // address fault
	INS                   // instruction fault
)

// String returns the three-letter status name.
func (s Status) String() string {
	switch s {
	case AOK:
		return "AOK"
	case HLT:
		return "HLT"
	case ADR:
		return "ADR"
	case INS:
		return "INS"
	}
	return "???"
}

// Terminal reports whether execution stops in this status.
func (s Status) Terminal() bool {
	return s != AOK
}
