package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Verseth/miniruby"
	"github.com/google/subcommands"
)

// runCmd executes a MiniRuby source file to completion, adapted from
// the teacher's runCompiledCmd but against the single compile+VM
// pipeline (no separate tree-walking-interpreter command exists here).
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "execute a MiniRuby source file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Compile and execute a MiniRuby source file.
`
}
func (*runCmd) SetFlags(f *flag.FlagSet) {}

func (*runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	result, err := miniruby.Interpret(string(data), os.Stdout, os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return subcommands.ExitFailure
	}
	_ = result
	return subcommands.ExitSuccess
}
