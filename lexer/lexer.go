// Package lexer turns MiniRuby source text into a stream of tokens.
//
// The lexer is a byte-oriented scanner: Position values are byte offsets
// into the original source, and every failure is surfaced in-band as an
// ERROR token rather than as a Go error, so that a caller can always
// drain the stream to completion (spec §4.1, §7 tier 1).
package lexer

import (
	"fmt"
	"strings"

	"github.com/Verseth/miniruby/span"
	"github.com/Verseth/miniruby/token"
)

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '_'
}

func isAlphaNumeric(b byte) bool {
	return isLetter(b) || isDigit(b)
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// Lexer scans a fixed source buffer into a lazy sequence of tokens.
type Lexer struct {
	source string
	start  int // start of the token currently being scanned
	pos    int // index of the next byte to read
	done   bool
}

// New returns a Lexer ready to scan source.
func New(source string) *Lexer {
	return &Lexer{source: source}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekAt(offset int) byte {
	idx := l.pos + offset
	if idx >= len(l.source) {
		return 0
	}
	return l.source[idx]
}

func (l *Lexer) advance() byte {
	b := l.source[l.pos]
	l.pos++
	return b
}

func (l *Lexer) match(expected byte) bool {
	if l.atEnd() || l.source[l.pos] != expected {
		return false
	}
	l.pos++
	return true
}

// spanFromStart returns the inclusive span of the token being scanned:
// from its first byte through its last. A zero-width token (EOF) gets
// the single position where it starts.
func (l *Lexer) spanFromStart() span.Span {
	end := l.pos - 1
	if end < l.start {
		end = l.start
	}
	return span.New(span.Position(l.start), span.Position(end))
}

func (l *Lexer) tok(kind token.Kind) token.Token {
	return token.New(kind, l.spanFromStart())
}

func (l *Lexer) lexemeTok(kind token.Kind, lexeme string) token.Token {
	return token.NewLexeme(kind, l.spanFromStart(), lexeme)
}

func (l *Lexer) errorTok(message string) token.Token {
	return token.NewLexeme(token.ERROR, l.spanFromStart(), message)
}

// Next scans and returns the next token. Once an EOF token has been
// produced, every subsequent call returns that same EOF token.
func (l *Lexer) Next() token.Token {
	l.skipInsignificantWhitespace()
	l.start = l.pos

	if l.atEnd() {
		l.done = true
		return l.tok(token.EOF)
	}

	b := l.advance()

	switch {
	case b == '\n':
		return l.tok(token.NEWLINE)
	case b == ';':
		return l.tok(token.SEMICOLON)
	case b == ',':
		return l.tok(token.COMMA)
	case b == '(':
		return l.tok(token.LPAREN)
	case b == ')':
		return l.tok(token.RPAREN)
	case b == '+':
		return l.tok(token.PLUS)
	case b == '-':
		return l.tok(token.MINUS)
	case b == '*':
		return l.tok(token.STAR)
	case b == '/':
		return l.tok(token.SLASH)
	case b == '=':
		if l.match('=') {
			return l.tok(token.EQUAL_EQUAL)
		}
		return l.tok(token.EQUAL)
	case b == '!':
		if l.match('=') {
			return l.tok(token.NOT_EQUAL)
		}
		return l.tok(token.BANG)
	case b == '>':
		if l.match('=') {
			return l.tok(token.GREATER_EQUAL)
		}
		return l.tok(token.GREATER)
	case b == '<':
		if l.match('=') {
			return l.tok(token.LESS_EQUAL)
		}
		return l.tok(token.LESS)
	case b == '"':
		return l.scanString()
	case isDigit(b):
		return l.scanNumber()
	case isLetter(b):
		return l.scanIdentifier()
	default:
		return l.errorTok(fmt.Sprintf("unexpected char `%c`", b))
	}
}

// Drain scans the full token stream, stopping after the single EOF
// token. It is the "drain to sequence" convenience described in spec §4.1.
func Drain(source string) []token.Token {
	l := New(source)
	var tokens []token.Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

// skipInsignificantWhitespace consumes spaces, tabs, and carriage
// returns. Newlines are significant (they terminate statements) and are
// returned as NEWLINE tokens rather than skipped.
func (l *Lexer) skipInsignificantWhitespace() {
	for !l.atEnd() {
		switch l.peek() {
		case ' ', '\t', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) scanIdentifier() token.Token {
	for !l.atEnd() && isAlphaNumeric(l.peek()) {
		l.pos++
	}
	lexeme := l.source[l.start:l.pos]
	if kind, ok := token.Keywords[lexeme]; ok {
		return l.tok(kind)
	}
	return l.lexemeTok(token.IDENTIFIER, lexeme)
}

// scanNumber scans an INTEGER or FLOAT literal. A leading-zero integer
// longer than one digit (e.g. "0124") is an ERROR token, per spec §4.1;
// once a fractional part is present the leading-zero check does not
// apply ("0.12" is valid).
func (l *Lexer) scanNumber() token.Token {
	for !l.atEnd() && isDigit(l.peek()) {
		l.pos++
	}
	intPart := l.source[l.start:l.pos]

	isFloat := false
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		l.pos++ // consume '.'
		for !l.atEnd() && isDigit(l.peek()) {
			l.pos++
		}
	}

	if b := l.peek(); b == 'e' || b == 'E' {
		offset := 1
		if n := l.peekAt(offset); n == '+' || n == '-' {
			offset++
		}
		if isDigit(l.peekAt(offset)) {
			isFloat = true
			l.pos += offset
			for !l.atEnd() && isDigit(l.peek()) {
				l.pos++
			}
		}
	}

	if !isFloat && len(intPart) > 1 && intPart[0] == '0' {
		return l.errorTok("illegal trailing zero in number literal")
	}

	lexeme := l.source[l.start:l.pos]
	if isFloat {
		return l.lexemeTok(token.FLOAT, lexeme)
	}
	return l.lexemeTok(token.INTEGER, lexeme)
}

// scanString scans a double-quoted string literal, decoding escapes as
// it goes. The opening quote has already been consumed.
func (l *Lexer) scanString() token.Token {
	var decoded strings.Builder

	for {
		if l.atEnd() {
			return l.errorTok("unterminated string literal")
		}
		b := l.advance()
		if b == '"' {
			return l.lexemeTok(token.STRING, decoded.String())
		}
		if b != '\\' {
			decoded.WriteByte(b)
			continue
		}

		if l.atEnd() {
			return l.errorTok("unterminated string literal")
		}
		esc := l.advance()
		switch esc {
		case 'n':
			decoded.WriteByte('\n')
		case 't':
			decoded.WriteByte('\t')
		case 'r':
			decoded.WriteByte('\r')
		case '"':
			decoded.WriteByte('"')
		case '\\':
			decoded.WriteByte('\\')
		case 'u':
			r, ok := l.scanUnicodeEscape()
			if !ok {
				return l.errorTok("invalid unicode escape")
			}
			decoded.WriteRune(r)
		default:
			return l.errorTok(fmt.Sprintf("invalid escape `\\%c`", esc))
		}
	}
}

// scanUnicodeEscape consumes exactly four hex digits following \u and
// decodes them as a Unicode scalar value.
func (l *Lexer) scanUnicodeEscape() (rune, bool) {
	if l.pos+4 > len(l.source) {
		return 0, false
	}
	digits := l.source[l.pos : l.pos+4]
	for i := 0; i < 4; i++ {
		if !isHexDigit(digits[i]) {
			return 0, false
		}
	}
	var value rune
	for i := 0; i < 4; i++ {
		value <<= 4
		value |= hexValue(digits[i])
	}
	l.pos += 4
	return value, true
}

func hexValue(b byte) rune {
	switch {
	case b >= '0' && b <= '9':
		return rune(b - '0')
	case b >= 'a' && b <= 'f':
		return rune(b-'a') + 10
	default:
		return rune(b-'A') + 10
	}
}
