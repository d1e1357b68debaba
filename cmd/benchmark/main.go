// Command benchmark runs the Y86 workload harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv      Output results in CSV format (default: human-readable)
//	-json     Output results in JSON format
//	-core     Run only the core workloads
//	-config   Path to an emulator configuration JSON file
//	-v        Trace every run
//
// Example:
//
//	# Run all workloads with human-readable output
//	go run ./cmd/benchmark
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/y86sim/benchmarks"
	"github.com/sarchlab/y86sim/emu"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	coreOnly := flag.Bool("core", false, "Run only the core workloads")
	configPath := flag.String("config", "", "Path to emulator configuration JSON file")
	verbose := flag.Bool("v", false, "Trace every run")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.Output = os.Stdout
	config.Verbose = *verbose
	if *configPath != "" {
		machine, err := emu.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading emulator config: %v\n", err)
			os.Exit(1)
		}
		if err := machine.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid emulator config: %v\n", err)
			os.Exit(1)
		}
		config.Machine = machine
	}

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("Y86 Benchmark Harness")
		fmt.Println("=====================")
		fmt.Printf("Memory size:      0x%x\n", config.Machine.MemorySize)
		fmt.Printf("Stack pointer:    0x%x\n", config.Machine.StackPointer)
		fmt.Printf("Instruction limit: %d\n", config.Machine.MaxInstructions)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Passed: %d/%d\n", summary.Passed, summary.TotalBenchmarks)
		fmt.Printf("Instructions: %d\n", summary.TotalInstructions)
		fmt.Printf("Instructions/second: %.0f\n", summary.InstructionsPerSecond)
	}

	if summary := benchmarks.Summarize(results); summary.Passed != summary.TotalBenchmarks {
		os.Exit(1)
	}
}
