package loader

import (
	"context"

	"github.com/AniruddhAgrahari/open-read/internal/dictionary/builder"
)

// Builtin serves the dataset the application ships with. It is the default
// corpus when no external source is configured.
type Builtin struct{}

func (Builtin) Name() string { return "builtin" }

func (Builtin) Load(ctx context.Context) ([]builder.EntryInput, error) {
	entries := make([]builder.EntryInput, len(builtinDataset))
	copy(entries, builtinDataset)
	return entries, nil
}

var builtinDataset = []builder.EntryInput{
	{Term: "Bank", Definition: "An institution for receiving, lending, exchanging, and safeguarding money."},
	{Term: "Bank", Definition: "The land beside a body of water, such as a river."},
	{Term: "Trace-based", Definition: "A method of optimization that uses execution traces to identify hot code paths."},
	{Term: "Just-in-Time", Definition: "A method of executing computer code that involves compilation during execution rather than prior to execution."},
	{Term: "Specialization", Definition: "The process of tailoring code for specific types or values to improve performance."},
	{Term: "Dynamic", Definition: "Characterized by constant change, activity, or progress; in computing, referring to processes that occur during execution."},
	{Term: "Compiler", Definition: "A program that translates source code into machine code or bytecode."},
	{Term: "Interpreter", Definition: "A program that executes instructions directly without prior compilation."},
	{Term: "Heuristic", Definition: "A technique designed for solving a problem more quickly when classic methods are too slow."},
	{Term: "Deterministic", Definition: "A process that, given a particular input, will always produce the same output."},
	{Term: "Optimization", Definition: "The action of making the best or most effective use of a resource."},
	{Term: "Virtual Machine", Definition: "An emulation of a computer system providing the functionality of a physical computer."},
	{Term: "Bytecode", Definition: "A form of instruction set designed for efficient execution by a software interpreter."},
	{Term: "Type", Definition: "A category for a piece of data that determines what operations can be performed on it."},
	{Term: "Pointer", Definition: "A variable that stores the memory address of another value."},
	{Term: "Allocation", Definition: "The process of reserving a block of memory for data."},
	{Term: "Garbage Collection", Definition: "Automatic memory management that reclaims space used by objects no longer in use."},
	{Term: "Latency", Definition: "The time interval between a cause and its effect in a system."},
	{Term: "Throughput", Definition: "The amount of data or processes handled within a specific period."},
}
