// Package main provides the entry point for y86sim.
// y86sim is a Y86-64 emulator with a Mini-ELF loader and disassembler.
//
// For the full CLI, use: go run ./cmd/y86sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("y86sim - Y86-64 Emulator")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/y86sim -h' for the usage and options.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/y86sim' instead.")
	}
}
