package parser

import (
	"fmt"

	"github.com/Verseth/miniruby/span"
)

// SyntaxError is one diagnostic produced while parsing. The parser
// never stops at the first one — it records SyntaxErrors and keeps
// going so a caller sees every problem in a source file at once.
type SyntaxError struct {
	Span    span.Span
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}
