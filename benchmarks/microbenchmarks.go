// Package benchmarks provides canned Y86 workloads and a harness that runs them.
package benchmarks

import "github.com/sarchlab/y86sim/insts"

// ProgramBase is the address every workload is assembled for and loaded at.
const ProgramBase = 0x100

// GetMicrobenchmarks returns the standard set of workloads. Each one
// exercises a different part of the execution engine.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		functionCalls(),
		countdownLoop(),
		conditionalMoves(),
		stackPushPop(),
		trapOutput(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation: a loop,
// calls and conditional moves.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countdownLoop(),
		functionCalls(),
		conditionalMoves(),
	}
}

func add(ra, rb insts.Reg) insts.OpQ { return insts.OpQ{Fn: insts.ALUAdd, RA: ra, RB: rb} }
func sub(ra, rb insts.Reg) insts.OpQ { return insts.OpQ{Fn: insts.ALUSub, RA: ra, RB: rb} }

// 1. Independent additions into five registers.
func arithmeticSequential() Benchmark {
	b := NewBuilder(ProgramBase).Emit(insts.IRMovq{RB: insts.RBX, V: 1})
	for i := 0; i < 4; i++ {
		b.Emit(
			add(insts.RBX, insts.RAX),
			add(insts.RBX, insts.RCX),
			add(insts.RBX, insts.RDX),
			add(insts.RBX, insts.RSI),
			add(insts.RBX, insts.RDI),
		)
	}
	b.Emit(insts.Halt{})

	return Benchmark{
		Name:                 "arithmetic_sequential",
		Description:          "20 independent addq operations across five registers",
		Program:              b.MustBytes(),
		ExpectedResult:       4,
		ExpectedInstructions: 22,
	}
}

// 2. Every addition depends on the previous one.
func dependencyChain() Benchmark {
	b := NewBuilder(ProgramBase).Emit(insts.IRMovq{RB: insts.RBX, V: 1})
	for i := 0; i < 20; i++ {
		b.Emit(add(insts.RBX, insts.RAX))
	}
	b.Emit(insts.Halt{})

	return Benchmark{
		Name:                 "dependency_chain",
		Description:          "20 dependent addq operations on %rax",
		Program:              b.MustBytes(),
		ExpectedResult:       20,
		ExpectedInstructions: 22,
	}
}

// 3. Store and reload a value at ten consecutive quad slots.
func memorySequential() Benchmark {
	b := NewBuilder(ProgramBase).Emit(
		insts.IRMovq{RB: insts.RAX, V: 42},
		insts.IRMovq{RB: insts.RBX, V: 0x800},
	)
	for i := uint64(0); i < 10; i++ {
		b.Emit(
			insts.RMMovq{RA: insts.RAX, RB: insts.Some(insts.RBX), D: 8 * i},
			insts.MRMovq{RA: insts.RAX, RB: insts.Some(insts.RBX), D: 8 * i},
		)
	}
	b.Emit(insts.Halt{})

	return Benchmark{
		Name:                 "memory_sequential",
		Description:          "10 rmmovq/mrmovq pairs to sequential addresses",
		Program:              b.MustBytes(),
		ExpectedResult:       42,
		ExpectedInstructions: 23,
	}
}

// 4. Five calls to a function that increments %rax.
func functionCalls() Benchmark {
	b := NewBuilder(ProgramBase).Emit(insts.IRMovq{RB: insts.RBX, V: 1})
	for i := 0; i < 5; i++ {
		b.CallTo("add_one")
	}
	b.Emit(insts.Halt{}).
		Label("add_one").
		Emit(add(insts.RBX, insts.RAX), insts.Ret{})

	return Benchmark{
		Name:                 "function_calls",
		Description:          "5 call/ret pairs through the stack",
		Program:              b.MustBytes(),
		ExpectedResult:       5,
		ExpectedInstructions: 17,
	}
}

// 5. A backward conditional jump taken nine times.
func countdownLoop() Benchmark {
	b := NewBuilder(ProgramBase).
		Emit(
			insts.IRMovq{RB: insts.RCX, V: 10},
			insts.IRMovq{RB: insts.RBX, V: 1},
			insts.OpQ{Fn: insts.ALUXor, RA: insts.RAX, RB: insts.RAX},
		).
		Label("loop").
		Emit(
			add(insts.RBX, insts.RAX),
			sub(insts.RBX, insts.RCX),
		).
		JumpTo(insts.CondNE, "loop").
		Emit(insts.Halt{})

	return Benchmark{
		Name:                 "countdown_loop",
		Description:          "10 iterations of addq/subq/jne",
		Program:              b.MustBytes(),
		ExpectedResult:       10,
		ExpectedInstructions: 34,
	}
}

// 6. The maximum of three values selected with cmovg.
func conditionalMoves() Benchmark {
	b := NewBuilder(ProgramBase).Emit(
		insts.IRMovq{RB: insts.RAX, V: 7},
		insts.IRMovq{RB: insts.RBX, V: 3},
		insts.IRMovq{RB: insts.RCX, V: 9},

		insts.CMov{Cond: insts.CondAlways, RA: insts.RBX, RB: insts.RDX},
		sub(insts.RAX, insts.RDX),
		insts.CMov{Cond: insts.CondG, RA: insts.RBX, RB: insts.RAX},

		insts.CMov{Cond: insts.CondAlways, RA: insts.RCX, RB: insts.RDX},
		sub(insts.RAX, insts.RDX),
		insts.CMov{Cond: insts.CondG, RA: insts.RCX, RB: insts.RAX},

		insts.Halt{},
	)

	return Benchmark{
		Name:                 "conditional_moves",
		Description:          "max of three values using rrmovq/subq/cmovg",
		Program:              b.MustBytes(),
		ExpectedResult:       9,
		ExpectedInstructions: 10,
	}
}

// 7. Two values swapped through the stack.
func stackPushPop() Benchmark {
	b := NewBuilder(ProgramBase).Emit(
		insts.IRMovq{RB: insts.RAX, V: 3},
		insts.IRMovq{RB: insts.RBX, V: 4},
		insts.Pushq{RA: insts.RAX},
		insts.Pushq{RA: insts.RBX},
		insts.Popq{RA: insts.RAX},
		insts.Popq{RA: insts.RBX},
		sub(insts.RBX, insts.RAX),
		insts.Halt{},
	)

	return Benchmark{
		Name:                 "stack_push_pop",
		Description:          "pushq/popq swap followed by subq",
		Program:              b.MustBytes(),
		ExpectedResult:       1,
		ExpectedInstructions: 8,
	}
}

// 8. String, decimal and character output followed by a flush.
func trapOutput() Benchmark {
	b := NewBuilder(ProgramBase).
		AddressOf("msg", insts.RSI).
		Emit(insts.IOTrap{Trap: insts.TrapStrOut}).
		AddressOf("num", insts.RSI).
		Emit(insts.IOTrap{Trap: insts.TrapDecOut}).
		AddressOf("nl", insts.RSI).
		Emit(
			insts.IOTrap{Trap: insts.TrapCharOut},
			insts.IOTrap{Trap: insts.TrapFlush},
			insts.Halt{},
		).
		Label("msg").Asciz("answer ").
		Label("num").Quad(42).
		Label("nl").Asciz("\n")

	return Benchmark{
		Name:                 "trap_output",
		Description:          "strout, decout and charout through the trap buffer",
		Program:              b.MustBytes(),
		ExpectedResult:       0,
		ExpectedInstructions: 8,
		ExpectedOutput:       "answer 42\n",
	}
}
