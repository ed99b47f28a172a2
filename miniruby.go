// Package miniruby is the library surface over the four pipeline
// stages (lex, parse, compile, interpret), mirroring the teacher's
// root-level package main convenience functions but exposed for
// embedding rather than only driven from a CLI.
package miniruby

import (
	"fmt"
	"io"
	"strings"

	"github.com/Verseth/miniruby/ast"
	"github.com/Verseth/miniruby/bytecode"
	"github.com/Verseth/miniruby/compiler"
	"github.com/Verseth/miniruby/lexer"
	"github.com/Verseth/miniruby/parser"
	"github.com/Verseth/miniruby/token"
	"github.com/Verseth/miniruby/value"
	"github.com/Verseth/miniruby/vm"
)

// Error aggregates every diagnostic produced while compiling a source
// string: forwarded lex errors, parser SyntaxErrors, and compiler
// CompileErrors, whichever stage stopped first. It satisfies error so
// Compile/Interpret can return a single failure value per §7 tier 3.
type Error struct {
	Stage    string
	Messages []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error:\n%s", e.Stage, strings.Join(e.Messages, "\n"))
}

// Lex returns source's full token stream, including any in-band ERROR
// tokens (spec §4.1).
func Lex(source string) []token.Token {
	return lexer.Drain(source)
}

// Parse lexes and parses source, always returning a tree alongside
// whatever SyntaxErrors were recorded (spec §4.2, §7 tier 2).
func Parse(source string) (*ast.Program, []parser.SyntaxError) {
	return parser.Parse(source)
}

// Compile lexes, parses, and compiles source into a runnable Chunk. It
// fails with an aggregate *Error the first time parsing or compilation
// produces any diagnostics; a Chunk with errors is never returned.
func Compile(source, name, filename string) (*bytecode.Chunk, error) {
	prog, parseErrs := parser.Parse(source)
	if len(parseErrs) > 0 {
		msgs := make([]string, len(parseErrs))
		for i, e := range parseErrs {
			msgs[i] = e.Error()
		}
		return nil, &Error{Stage: "parse", Messages: msgs}
	}

	chunk, compileErrs := compiler.Compile(prog, name, filename)
	if len(compileErrs) > 0 {
		msgs := make([]string, len(compileErrs))
		for i, e := range compileErrs {
			msgs[i] = e.Error()
		}
		return nil, &Error{Stage: "compile", Messages: msgs}
	}

	return chunk, nil
}

// Interpret compiles source and runs it to completion against the
// given stdout/stdin handles, returning the value produced by the
// program's final RETURN (spec API surface, §6).
func Interpret(source string, stdout io.Writer, stdin io.Reader) (value.Value, error) {
	chunk, err := Compile(source, "main", "<interpret>")
	if err != nil {
		return value.Nil, err
	}

	machine := vm.New()
	if stdout != nil {
		machine.Stdout = stdout
	}
	if stdin != nil {
		machine.Stdin = stdin
	}
	return machine.Run(chunk)
}
