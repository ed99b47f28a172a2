// Command miniruby is the CLI front end over the miniruby library: run
// a source file, start a REPL, or emit its compiled bytecode, following
// the teacher's subcommands.Register wiring in spirit (the teacher
// defines its *Cmd types but never actually registers them; this one
// does).
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&emitCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
