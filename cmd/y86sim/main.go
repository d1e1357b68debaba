// Package main provides the entry point for y86sim.
// y86sim loads a Mini-ELF executable, inspects it and runs it on the Y86
// emulator.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/y86sim/disasm"
	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/loader"
)

var (
	errConflictingMemory = errors.New("-m and -M cannot be used together")
	errConflictingExec   = errors.New("-e and -E cannot be used together")
	errFileCount         = errors.New("exactly one mini-elf-file is required")
)

// options holds the parsed command line.
type options struct {
	help       bool
	header     bool
	segments   bool
	membrief   bool
	memfull    bool
	disasCode  bool
	disasData  bool
	execNormal bool
	execTrace  bool
	configPath string
	verbose    bool
	filename   string
}

// selected reports whether any output mode was chosen.
func (o *options) selected() bool {
	return o.header || o.segments || o.membrief || o.memfull ||
		o.disasCode || o.disasData || o.execNormal || o.execTrace
}

func main() {
	console := newConsole(os.Stdin)
	os.Exit(run(os.Args, console, os.Stdout, os.Stderr))
}

func usage(w io.Writer, prog string) {
	fmt.Fprintf(w, "Usage: %s <option(s)> mini-elf-file\n", prog)
	fmt.Fprintln(w, " Options are:")
	fmt.Fprintln(w, "  -h      Display usage")
	fmt.Fprintln(w, "  -H      Show the Mini-ELF header")
	fmt.Fprintln(w, "  -a      Show all with brief memory")
	fmt.Fprintln(w, "  -f      Show all with full memory")
	fmt.Fprintln(w, "  -s      Show the program headers")
	fmt.Fprintln(w, "  -m      Show the memory contents (brief)")
	fmt.Fprintln(w, "  -M      Show the memory contents (full)")
	fmt.Fprintln(w, "  -d      Disassemble code contents")
	fmt.Fprintln(w, "  -D      Disassemble data contents")
	fmt.Fprintln(w, "  -e      Execute program")
	fmt.Fprintln(w, "  -E      Execute program (trace mode)")
	fmt.Fprintln(w, "  -config Path to emulator configuration JSON file")
	fmt.Fprintln(w, "  -v      Verbose output")
}

// parseOptions parses args (without the program name). Flags and the file
// name may appear in any order.
func parseOptions(args []string) (*options, error) {
	opts := &options{}
	var all, full bool

	fs := flag.NewFlagSet("y86sim", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.help, "h", false, "Display usage")
	fs.BoolVar(&opts.header, "H", false, "Show the Mini-ELF header")
	fs.BoolVar(&all, "a", false, "Show all with brief memory")
	fs.BoolVar(&full, "f", false, "Show all with full memory")
	fs.BoolVar(&opts.segments, "s", false, "Show the program headers")
	fs.BoolVar(&opts.membrief, "m", false, "Show the memory contents (brief)")
	fs.BoolVar(&opts.memfull, "M", false, "Show the memory contents (full)")
	fs.BoolVar(&opts.disasCode, "d", false, "Disassemble code contents")
	fs.BoolVar(&opts.disasData, "D", false, "Disassemble data contents")
	fs.BoolVar(&opts.execNormal, "e", false, "Execute program")
	fs.BoolVar(&opts.execTrace, "E", false, "Execute program (trace mode)")
	fs.StringVar(&opts.configPath, "config", "", "Path to emulator configuration JSON file")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")

	var files []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			break
		}
		files = append(files, fs.Arg(0))
		rest = fs.Args()[1:]
	}

	if opts.help {
		return opts, nil
	}

	if all {
		opts.header, opts.segments, opts.membrief = true, true, true
	}
	if full {
		opts.header, opts.segments, opts.memfull = true, true, true
	}

	if opts.membrief && opts.memfull {
		return nil, errConflictingMemory
	}
	if opts.execNormal && opts.execTrace {
		return nil, errConflictingExec
	}
	if len(files) != 1 {
		return nil, errFileCount
	}
	opts.filename = files[0]

	return opts, nil
}

// run executes the command line and returns the process exit code.
func run(args []string, console emu.Console, stdout, stderr io.Writer) int {
	prog := "y86sim"
	if len(args) > 0 {
		prog = args[0]
		args = args[1:]
	}

	opts, err := parseOptions(args)
	if err != nil {
		usage(stdout, prog)
		return 1
	}
	if opts.help {
		usage(stdout, prog)
		return 0
	}
	if !opts.selected() {
		return 0
	}

	config := emu.DefaultConfig()
	if opts.configPath != "" {
		config, err = emu.LoadConfig(opts.configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading emulator config: %v\n", err)
			return 1
		}
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid emulator config: %v\n", err)
		return 1
	}

	program, memory, err := load(opts.filename, config)
	if err != nil {
		if opts.verbose {
			fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		}
		fmt.Fprintln(stdout, "Failed to read file")
		return 1
	}

	if opts.verbose {
		fmt.Fprintf(stderr, "Loaded: %s\n", opts.filename)
		fmt.Fprintf(stderr, "Entry point: 0x%X\n", program.EntryPoint)
		fmt.Fprintf(stderr, "Segments: %d\n", len(program.Segments))
	}

	inspect(stdout, opts, program, memory)

	if opts.execNormal || opts.execTrace {
		return execute(stdout, stderr, opts, config, console, program, memory)
	}
	return 0
}

// load parses the file and copies its segments into a fresh memory image.
func load(path string, config *emu.Config) (*loader.Program, *emu.Memory, error) {
	program, err := loader.Load(path)
	if err != nil {
		return nil, nil, err
	}

	memory := emu.NewMemoryWithSize(config.MemorySize)
	if err := program.LoadInto(memory); err != nil {
		return nil, nil, err
	}
	return program, memory, nil
}

// inspect writes the header, segment, memory and disassembly listings
// selected by opts.
func inspect(w io.Writer, opts *options, program *loader.Program, memory *emu.Memory) {
	if opts.header {
		loader.DumpHeader(w, program.Header)
	}
	if opts.segments {
		loader.DumpSegments(w, program.Segments)
	}
	if opts.membrief {
		for _, seg := range program.Segments {
			start := uint64(seg.VirtAddr)
			memory.Dump(w, start, start+uint64(seg.FileSize))
		}
	}
	if opts.memfull {
		memory.Dump(w, 0, memory.Size())
	}

	if opts.disasCode {
		fmt.Fprintln(w, "Disassembly of executable contents:")
		for _, seg := range program.Segments {
			if seg.Type == loader.SegmentCode {
				disasm.Code(w, memory, region(seg), program.EntryPoint)
			}
		}
	}
	if opts.disasData {
		fmt.Fprintln(w, "Disassembly of data contents:")
		for _, seg := range program.Segments {
			if seg.Type != loader.SegmentData {
				continue
			}
			if seg.ReadOnly() {
				disasm.ROData(w, memory, region(seg))
			} else {
				disasm.Data(w, memory, region(seg))
			}
		}
	}
}

func region(seg loader.Segment) disasm.Segment {
	return disasm.Segment{Addr: uint64(seg.VirtAddr), Size: uint64(seg.FileSize)}
}

// execute runs the loaded program from its entry point.
func execute(
	stdout, stderr io.Writer,
	opts *options,
	config *emu.Config,
	console emu.Console,
	program *loader.Program,
	memory *emu.Memory,
) int {
	emuOpts := []emu.EmulatorOption{
		emu.WithConfig(config),
		emu.WithMemory(memory),
		emu.WithStdout(stdout),
		emu.WithStderr(stderr),
		emu.WithConsole(console),
	}
	if opts.execTrace {
		emuOpts = append(emuOpts, emu.WithTrace(stdout))
	}

	emulator := emu.NewEmulator(emuOpts...)
	emulator.SetPC(program.EntryPoint)

	fmt.Fprintf(stdout, "Beginning execution at 0x%04x\n", program.EntryPoint)

	err := emulator.Run()

	if opts.execNormal {
		emulator.DumpState(stdout)
		fmt.Fprintf(stdout, "Total execution count: %d\n", emulator.InstructionCount())
	}

	if opts.verbose {
		fmt.Fprintf(stderr, "Final status: %s\n", emulator.Status())
	}

	if err != nil {
		return 1
	}
	return 0
}
