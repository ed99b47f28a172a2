// Package token defines the lexical token kinds produced by the lexer
// and consumed by the parser.
package token

import (
	"fmt"

	"github.com/Verseth/miniruby/span"
)

// Kind classifies a Token.
type Kind int

const (
	NONE Kind = iota
	EOF
	ERROR
	NEWLINE
	SEMICOLON
	COMMA
	LPAREN
	RPAREN

	EQUAL
	BANG
	EQUAL_EQUAL
	NOT_EQUAL
	GREATER
	GREATER_EQUAL
	LESS
	LESS_EQUAL
	PLUS
	MINUS
	STAR
	SLASH

	INTEGER
	FLOAT
	STRING
	IDENTIFIER

	FALSE
	TRUE
	NIL
	SELF
	IF
	ELSE
	END
	WHILE
	RETURN
)

var names = map[Kind]string{
	NONE:          "NONE",
	EOF:           "EOF",
	ERROR:         "ERROR",
	NEWLINE:       "NEWLINE",
	SEMICOLON:     "SEMICOLON",
	COMMA:         "COMMA",
	LPAREN:        "LPAREN",
	RPAREN:        "RPAREN",
	EQUAL:         "EQUAL",
	BANG:          "BANG",
	EQUAL_EQUAL:   "EQUAL_EQUAL",
	NOT_EQUAL:     "NOT_EQUAL",
	GREATER:       "GREATER",
	GREATER_EQUAL: "GREATER_EQUAL",
	LESS:          "LESS",
	LESS_EQUAL:    "LESS_EQUAL",
	PLUS:          "PLUS",
	MINUS:         "MINUS",
	STAR:          "STAR",
	SLASH:         "SLASH",
	INTEGER:       "INTEGER",
	FLOAT:         "FLOAT",
	STRING:        "STRING",
	IDENTIFIER:    "IDENTIFIER",
	FALSE:         "FALSE",
	TRUE:          "TRUE",
	NIL:           "NIL",
	SELF:          "SELF",
	IF:            "IF",
	ELSE:          "ELSE",
	END:           "END",
	WHILE:         "WHILE",
	RETURN:        "RETURN",
}

func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps reserved identifier spellings to their keyword Kind.
// During lexing, an identifier lexeme that matches an entry here is
// classified as the keyword instead of a generic IDENTIFIER.
var Keywords = map[string]Kind{
	"false":  FALSE,
	"true":   TRUE,
	"nil":    NIL,
	"self":   SELF,
	"if":     IF,
	"else":   ELSE,
	"end":    END,
	"while":  WHILE,
	"return": RETURN,
}

// Token is a single lexical token: its classification, its source span,
// and (for literals, identifiers, and errors) its lexeme.
//
// Lexeme is present for INTEGER, FLOAT, STRING, IDENTIFIER, and ERROR
// tokens; it is absent (empty) for structural and operator tokens, whose
// spelling is implied by Kind.
type Token struct {
	Kind   Kind
	Span   span.Span
	Lexeme string
}

// New constructs a Token that carries no lexeme (structural tokens,
// operators, keywords).
func New(kind Kind, sp span.Span) Token {
	return Token{Kind: kind, Span: sp}
}

// NewLexeme constructs a Token that carries a lexeme (literals,
// identifiers, and error tokens).
func NewLexeme(kind Kind, sp span.Span, lexeme string) Token {
	return Token{Kind: kind, Span: sp, Lexeme: lexeme}
}

func (t Token) String() string {
	if t.Lexeme != "" {
		return fmt.Sprintf("Token{%s %q @%s}", t.Kind, t.Lexeme, t.Span)
	}
	return fmt.Sprintf("Token{%s @%s}", t.Kind, t.Span)
}
