// Package benchmarks provides canned Y86 workloads and a harness that runs them.
package benchmarks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
)

// Version is reported in JSON output.
const Version = "0.1.0"

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// InstructionsExecuted is the execution count reported by the emulator
	InstructionsExecuted uint64 `json:"instructions_executed"`

	// Status is the final machine status
	Status string `json:"status"`

	// Result is %rax when the program stopped
	Result uint64 `json:"result"`

	// Output is everything the program flushed through its traps
	Output string `json:"output,omitempty"`

	// Passed is true when the program halted with the expected result,
	// instruction count and output
	Passed bool `json:"passed"`

	// Error is set when the run was cut short
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the program
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the emulator state (e.g., initialize registers, memory)
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Program is the Y86 machine code, assembled for ProgramBase
	Program []byte

	// ExpectedResult is the expected value of %rax at HLT
	ExpectedResult uint64

	// ExpectedInstructions is the expected execution count; 0 skips the check
	ExpectedInstructions uint64

	// ExpectedOutput is the expected trap output
	ExpectedOutput string
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Machine holds the emulator parameters used for every run
	Machine *emu.Config

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose traces every run to Output
	Verbose bool
}

// DefaultConfig returns a default harness configuration: standard memory,
// a stack at 0x1000 and a 100000 instruction limit.
func DefaultConfig() HarnessConfig {
	machine := emu.DefaultConfig()
	machine.StackPointer = 0x1000
	machine.MaxInstructions = 100000

	return HarnessConfig{
		Machine: machine,
		Output:  os.Stdout,
		Verbose: false,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Machine == nil {
		config.Machine = DefaultConfig().Machine
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark on a fresh emulator.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	var stdout, stderr bytes.Buffer
	opts := []emu.EmulatorOption{
		emu.WithConfig(h.config.Machine),
		emu.WithStdout(&stdout),
		emu.WithStderr(&stderr),
		emu.WithConsole(emu.NewStreamConsole(strings.NewReader(""))),
	}
	if h.config.Verbose {
		opts = append(opts, emu.WithTrace(h.config.Output))
	}
	e := emu.NewEmulator(opts...)

	if bench.Setup != nil {
		bench.Setup(e.RegFile(), e.Memory())
	}

	if err := e.LoadProgram(ProgramBase, bench.Program); err != nil {
		result.Status = e.Status().String()
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	err := e.Run()
	result.WallTime = time.Since(start)

	result.InstructionsExecuted = e.InstructionCount()
	result.Status = e.Status().String()
	result.Result = e.RegFile().ReadReg(insts.RAX)
	result.Output = stdout.String()
	if err != nil {
		result.Error = err.Error()
	}

	result.Passed = err == nil &&
		e.Status() == emu.HLT &&
		result.Result == bench.ExpectedResult &&
		result.Output == bench.ExpectedOutput &&
		(bench.ExpectedInstructions == 0 || result.InstructionsExecuted == bench.ExpectedInstructions)

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Y86 Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Status:       %s\n", r.Status)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions: %d\n", r.InstructionsExecuted)
		_, _ = fmt.Fprintf(h.config.Output, "  %%rax:         %d\n", r.Result)
		if r.Output != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Output:       %q\n", r.Output)
		}
		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error:        %s\n", r.Error)
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Passed:       %v\n", r.Passed)
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "name,instructions,status,result,passed,wall_time_ns")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%s,%d,%v,%d\n",
			r.Name,
			r.InstructionsExecuted,
			r.Status,
			r.Result,
			r.Passed,
			r.WallTime.Nanoseconds(),
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Version of the emulator
	Version string `json:"version"`

	// Machine is the emulator configuration used
	Machine emu.Config `json:"machine"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// Passed is the number of benchmarks that passed
	Passed int `json:"passed"`

	// TotalInstructions is the sum of all execution counts
	TotalInstructions uint64 `json:"total_instructions"`

	// InstructionsPerSecond is the aggregate emulation speed
	InstructionsPerSecond float64 `json:"instructions_per_second"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize computes aggregate statistics over results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		if r.Passed {
			summary.Passed++
		}
		summary.TotalInstructions += r.InstructionsExecuted
		summary.TotalWallTime += r.WallTime
	}

	if summary.TotalWallTime > 0 {
		summary.InstructionsPerSecond = float64(summary.TotalInstructions) / summary.TotalWallTime.Seconds()
	}
	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
			Machine:   *h.config.Machine,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
