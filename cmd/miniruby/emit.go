package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Verseth/miniruby/bytecode"
	"github.com/Verseth/miniruby/compiler"
	"github.com/Verseth/miniruby/parser"
	"github.com/google/subcommands"
)

// emitCmd compiles a source file and writes its bytecode to disk,
// adapted from the teacher's emitBytecodeCmd: a disassembly text file
// and/or a hex-encoded ".mrbc" dump instead of the teacher's ".nic".
type emitCmd struct {
	disassemble  bool
	dumpBytecode bool
	dumpAST      bool
}

func (*emitCmd) Name() string     { return "emit" }
func (*emitCmd) Synopsis() string { return "emit the compiled bytecode for a source file" }
func (*emitCmd) Usage() string {
	return `emit <file>:
  Compile a MiniRuby source file and write its bytecode to disk.
`
}

func (cmd *emitCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", true, "write a human-readable disassembly to <file>.dis")
	f.BoolVar(&cmd.dumpBytecode, "dumpBytecode", true, "write the hex-encoded instruction stream to <file>.mrbc")
	f.BoolVar(&cmd.dumpAST, "dumpAST", false, "write the parsed AST as JSON to <file>.ast.json")
	f.BoolVar(&cmd.disassemble, "di", true, "shorthand for -disassemble")
	f.BoolVar(&cmd.dumpBytecode, "du", true, "shorthand for -dumpBytecode")
	f.BoolVar(&cmd.dumpAST, "da", false, "shorthand for -dumpAST")
}

func (cmd *emitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	sourceFile := args[0]
	data, err := os.ReadFile(sourceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file:\n\t%v\n", err)
		return subcommands.ExitFailure
	}

	base, _ := strings.CutSuffix(sourceFile, ".mrb")

	prog, parseErrs := parser.Parse(string(data))
	if len(parseErrs) > 0 {
		fmt.Fprintf(os.Stderr, "💥 parsing error:\n")
		for _, pErr := range parseErrs {
			fmt.Fprintf(os.Stderr, "\t%v\n", pErr)
		}
		return subcommands.ExitFailure
	}

	chunk, compileErrs := compiler.Compile(prog, base, sourceFile)
	if len(compileErrs) > 0 {
		fmt.Fprintf(os.Stderr, "💥 compilation error:\n")
		for _, cErr := range compileErrs {
			fmt.Fprintf(os.Stderr, "\t%v\n", cErr)
		}
		return subcommands.ExitFailure
	}

	if cmd.dumpAST {
		if err := parser.WriteASTJSONToFile(prog, base+".ast.json"); err != nil {
			fmt.Fprintf(os.Stderr, "💥 dump AST error:\n\t%s\n", err.Error())
			return subcommands.ExitFailure
		}
	}

	if cmd.disassemble {
		if err := writeDisassembly(chunk, base+".dis"); err != nil {
			fmt.Fprintf(os.Stderr, "💥 disassemble error:\n\t%s\n", err.Error())
			return subcommands.ExitFailure
		}
	}

	if cmd.dumpBytecode {
		if err := dumpBytecode(chunk, base+".mrbc"); err != nil {
			fmt.Fprintf(os.Stderr, "💥 dump bytecode error:\n\t%s\n", err.Error())
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}

func writeDisassembly(chunk *bytecode.Chunk, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating disassembly file: %w", err)
	}
	defer f.Close()
	_, err = f.WriteString(bytecode.Disassemble(chunk))
	return err
}

// dumpBytecode writes the instruction stream as hex text, mirroring the
// teacher's DumpBytecode (`fmt.Sprintf("%x", instructions)`).
func dumpBytecode(chunk *bytecode.Chunk, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating bytecode file: %w", err)
	}
	defer f.Close()
	_, err = f.WriteString(fmt.Sprintf("%x", chunk.Instructions))
	return err
}
