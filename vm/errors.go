package vm

import "fmt"

// RuntimeError is the single fatal error a VM can raise while running a
// Chunk. Unlike the lexer/parser/compiler stages, the VM does not
// accumulate diagnostics — the first runtime fault halts execution.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("💥 runtime error: %s", e.Message)
}

func newRuntimeError(format string, args ...any) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}
