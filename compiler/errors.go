package compiler

import (
	"fmt"

	"github.com/Verseth/miniruby/span"
)

// CompileError is one diagnostic produced while compiling a Chunk.
// Compile accumulates every error it encounters instead of aborting at
// the first one, the same way the parser accumulates SyntaxErrors.
type CompileError struct {
	Span    span.Span
	Message string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

func newError(sp span.Span, format string, args ...any) CompileError {
	return CompileError{Span: sp, Message: fmt.Sprintf(format, args...)}
}
