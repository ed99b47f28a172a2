package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Verseth/miniruby/bytecode"
	"github.com/Verseth/miniruby/compiler"
	"github.com/Verseth/miniruby/lexer"
	"github.com/Verseth/miniruby/parser"
	"github.com/Verseth/miniruby/token"
	"github.com/Verseth/miniruby/vm"
	"github.com/chzyer/readline"
	"github.com/google/subcommands"
)

// replCmd is an interactive MiniRuby session, adapted from the
// teacher's replCompiledCmd: readline.Instance replaces the teacher's
// bare bufio.Scanner for line editing and history, and isInputReady
// tracks paren balance plus MiniRuby's if/while/end keyword set instead
// of the teacher's brace balance.
type replCmd struct {
	disassemble  bool
	dumpBytecode bool
	dumpAST      bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive MiniRuby session" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive MiniRuby session.
`
}

func (cmd *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.disassemble, "disassemble", false, "print each compiled chunk's disassembly before running it")
	f.BoolVar(&cmd.dumpBytecode, "dumpBytecode", false, "print each compiled chunk's hex-encoded bytecode before running it")
	f.BoolVar(&cmd.dumpAST, "dumpAST", false, "print each parsed statement's AST as JSON before compiling it")
	f.BoolVar(&cmd.disassemble, "di", false, "shorthand for -disassemble")
	f.BoolVar(&cmd.dumpBytecode, "du", false, "shorthand for -dumpBytecode")
	f.BoolVar(&cmd.dumpAST, "da", false, "shorthand for -dumpAST")
}

func (cmd *replCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\nWelcome to MiniRuby!")
	fmt.Println("")

	rl, err := readline.New(">>> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	machine := vm.New()
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return subcommands.ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "💥 %s\n", err.Error())
			return subcommands.ExitFailure
		}

		if strings.TrimSpace(line) == "exit" && buffer.Len() == 0 {
			return subcommands.ExitSuccess
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
		source := buffer.String()

		tokens := lexer.Drain(source)
		if !isInputReady(tokens) {
			continue
		}

		prog, parseErrs := parser.Parse(source)
		if len(parseErrs) > 0 {
			if allParseErrorsAtEOF(parseErrs, tokens[len(tokens)-1]) {
				continue
			}
			fmt.Println("Parse error:")
			for _, pErr := range parseErrs {
				fmt.Printf("\t%v\n", pErr)
			}
			buffer.Reset()
			continue
		}

		if cmd.dumpAST {
			_, _ = parser.PrintASTJSON(prog)
		}

		chunk, compileErrs := compiler.Compile(prog, "repl", "<repl>")
		if len(compileErrs) > 0 {
			fmt.Println("Compile error:")
			for _, cErr := range compileErrs {
				fmt.Printf("\t%v\n", cErr)
			}
			buffer.Reset()
			continue
		}

		if cmd.disassemble {
			fmt.Print(bytecode.Disassemble(chunk))
		}
		if cmd.dumpBytecode {
			fmt.Printf("%x\n", chunk.Instructions)
		}

		result, runErr := machine.Run(chunk)
		if runErr != nil {
			fmt.Println(runErr.Error())
			buffer.Reset()
			continue
		}
		fmt.Println(result.Inspect())
		buffer.Reset()
	}
}

// isInputReady reports whether tokens form a complete statement: parens
// balanced, and the last non-EOF token isn't something that obviously
// expects a continuation (an operator, an opening keyword, or a
// trailing comma/identifier-introducer).
func isInputReady(tokens []token.Token) bool {
	parenBalance := 0
	blockBalance := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LPAREN:
			parenBalance++
		case token.RPAREN:
			parenBalance--
		case token.IF, token.WHILE:
			blockBalance++
		case token.END:
			blockBalance--
		}
	}
	if parenBalance > 0 || blockBalance > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.Kind {
	case token.EQUAL, token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.BANG, token.EQUAL_EQUAL, token.NOT_EQUAL,
		token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL,
		token.COMMA, token.LPAREN,
		token.IF, token.ELSE, token.WHILE, token.RETURN:
		return false
	}
	return true
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Kind != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}

// allParseErrorsAtEOF reports whether every parse error is anchored at
// the EOF token's position — the signal that the user simply hasn't
// finished typing yet rather than made a mistake.
func allParseErrorsAtEOF(errs []parser.SyntaxError, eof token.Token) bool {
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if e.Span != eof.Span {
			return false
		}
	}
	return true
}
