// Package parser is a recursive-descent parser that turns a token
// stream into a MiniRuby ast.Program, accumulating SyntaxErrors instead
// of aborting (spec §4.2, §7 tier 2).
//
// Each precedence level is its own method, the same top-down shape as
// the teacher's parser.go (equality/comparison/term/factor/unary ->
// primary), extended downward for assignment (right-associative, the
// lowest precedence) and upward for call syntax on identifiers.
package parser

import (
	"fmt"

	"github.com/Verseth/miniruby/ast"
	"github.com/Verseth/miniruby/lexer"
	"github.com/Verseth/miniruby/span"
	"github.com/Verseth/miniruby/token"
)

// Parser walks a fully-scanned token slice. MiniRuby programs are small
// enough that draining the lexer up front (like the teacher's
// parser.Make) is simpler than re-implementing lookahead over a lazy
// stream, and the spans recorded on each token make the two equivalent.
type Parser struct {
	tokens []token.Token
	pos    int
	errors []SyntaxError
}

// New returns a Parser over source's full token stream.
func New(source string) *Parser {
	return &Parser{tokens: lexer.Drain(source)}
}

// Parse lexes and parses source in one call, the entry point described
// in spec §4.2: it always returns a tree, with any problems recorded in
// the returned error list rather than thrown.
func Parse(source string) (*ast.Program, []SyntaxError) {
	p := New(source)
	return p.parseProgram(), p.errors
}

func (p *Parser) errorf(sp span.Span, format string, args ...any) {
	p.errors = append(p.errors, SyntaxError{Span: sp, Message: fmt.Sprintf(format, args...)})
}

// forwardLexError copies an ERROR token's lexer-produced message into
// the parser's error list. No "unexpected X, expected Y" message is
// ever added on top of one of these (spec §4.2).
func (p *Parser) forwardLexError(tok token.Token) {
	p.errors = append(p.errors, SyntaxError{Span: tok.Span, Message: tok.Lexeme})
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) atEOF() bool {
	return p.peek().Kind == token.EOF
}

// advance consumes and returns the current token. Once EOF is reached
// it keeps returning EOF rather than indexing past the end.
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func isSeparatorKind(k token.Kind) bool {
	return k == token.NEWLINE || k == token.SEMICOLON
}

// skipSeparators consumes a run of NEWLINE/SEMICOLON tokens, the
// `{stmt_sep}` part of the grammar that appears before the first
// statement and between statements.
func (p *Parser) skipSeparators() {
	for isSeparatorKind(p.peek().Kind) {
		p.advance()
	}
}

// skipNewlines consumes NEWLINE tokens only, used wherever the grammar
// marks newlines insignificant: after a binary/assignment operator and
// inside parentheses (spec §4.2).
func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// recover implements the parser's one recovery primitive (spec §4.2):
// record a message (unless the lookahead is itself a lexer ERROR token,
// whose message is forwarded instead of duplicated), consume the
// lookahead so parsing always makes progress, and hand back an
// Invalid node carrying the offending token.
func (p *Parser) recover(expected string) *ast.Invalid {
	tok := p.advance()
	if tok.Kind == token.ERROR {
		p.forwardLexError(tok)
	} else {
		p.errorf(tok.Span, "unexpected %s, expected %s", tok.Kind, expected)
	}
	return &ast.Invalid{Base: ast.NewBase(tok.Span), Token: tok}
}

// expect consumes kind if it's next, otherwise recovers. ok is false
// when recovery kicked in, in which case the caller generally has
// nothing further to attach the failure to besides the recorded error.
func (p *Parser) expect(kind token.Kind, expected string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	p.recover(expected)
	return token.Token{}, false
}

// --- program / statements ---

func (p *Parser) parseProgram() *ast.Program {
	var stmts []ast.Stmt
	p.skipSeparators()
	for !p.atEOF() {
		stmts = append(stmts, p.parseStatement())
		p.skipSeparators()
	}

	sp := span.Zero
	if len(stmts) > 0 {
		sp = span.Join(stmts[0].Span(), stmts[len(stmts)-1].Span())
	}
	return &ast.Program{Base: ast.NewBase(sp), Statements: stmts}
}

// parseStatement parses `expression (NEWLINE | SEMICOLON | EOF)`. A
// missing separator is reported but, unlike the recover-based recovery
// points, does NOT consume the lookahead: the next statement simply starts
// there, which is what lets a single bad token surface as its own
// Invalid statement instead of swallowing whatever follows it (see
// scenario in spec §8: `parse("12.4.5")`).
func (p *Parser) parseStatement() ast.Stmt {
	expr := p.parseExpression()
	sp := expr.Span()

	switch p.peek().Kind {
	case token.NEWLINE, token.SEMICOLON:
		sep := p.advance()
		sp = span.Join(sp, sep.Span)
	case token.EOF:
		// no separator required at end of input
	default:
		tok := p.peek()
		if tok.Kind != token.ERROR {
			p.errorf(tok.Span, "unexpected %s, expected a statement separator", tok.Kind)
		}
	}

	if inv, ok := expr.(*ast.Invalid); ok {
		return inv
	}
	return &ast.ExpressionStatement{Base: ast.NewBase(sp), Expression: expr}
}

// parseBlockUntil parses zero or more statements, stopping as soon as
// the lookahead is one of stop, or EOF.
func (p *Parser) parseBlockUntil(stop ...token.Kind) []ast.Stmt {
	stmts := []ast.Stmt{}
	p.skipSeparators()
	for !p.atEOF() && !p.isOneOf(stop...) {
		stmts = append(stmts, p.parseStatement())
		p.skipSeparators()
	}
	return stmts
}

func (p *Parser) isOneOf(kinds ...token.Kind) bool {
	cur := p.peek().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

// wrapStmt lifts a bare expression (parsed outside the normal
// statement production, e.g. an `else if` chain) into statement
// position without re-running separator handling on it.
func wrapStmt(e ast.Expr) ast.Stmt {
	if inv, ok := e.(*ast.Invalid); ok {
		return inv
	}
	return &ast.ExpressionStatement{Base: ast.NewBase(e.Span()), Expression: e}
}

// --- expressions, lowest to highest precedence ---

func (p *Parser) parseExpression() ast.Expr {
	return p.parseAssignment()
}

// assignment = equality ["=" assignment] -- right-associative
func (p *Parser) parseAssignment() ast.Expr {
	left := p.parseEquality()

	if !p.check(token.EQUAL) {
		return left
	}
	p.advance() // consume '='
	p.skipNewlines()
	value := p.parseAssignment()

	target, ok := left.(*ast.Identifier)
	if !ok {
		p.errorf(left.Span(), "unexpected `%s`, expected an identifier", exprKind(left))
		target = &ast.Identifier{Base: ast.NewBase(left.Span())}
	}

	sp := span.Join(left.Span(), value.Span())
	return &ast.Assignment{Base: ast.NewBase(sp), Target: target, Value: value}
}

// exprKind names the syntactic kind of a non-Identifier assignment
// target for the diagnostic above: the node's own operator/keyword
// token where it has one, rather than the leftmost token of a compound
// expression like `a+b`, which would misleadingly point at the
// perfectly-valid identifier `a`.
func exprKind(e ast.Expr) token.Kind {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return token.INTEGER
	case *ast.FloatLiteral:
		return token.FLOAT
	case *ast.StringLiteral:
		return token.STRING
	case *ast.TrueLiteral:
		return token.TRUE
	case *ast.FalseLiteral:
		return token.FALSE
	case *ast.NilLiteral:
		return token.NIL
	case *ast.SelfLiteral:
		return token.SELF
	case *ast.Unary:
		return n.OperatorToken.Kind
	case *ast.Binary:
		return n.OperatorToken.Kind
	case *ast.Assignment:
		return token.EQUAL
	case *ast.Return:
		return token.RETURN
	case *ast.If:
		return token.IF
	case *ast.While:
		return token.WHILE
	case *ast.FunctionCall:
		return token.IDENTIFIER
	case *ast.Invalid:
		return n.Token.Kind
	default:
		return token.NONE
	}
}

// equality = comparison { ("==" | "!=") comparison }
func (p *Parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.check(token.EQUAL_EQUAL) || p.check(token.NOT_EQUAL) {
		op := p.advance()
		p.skipNewlines()
		right := p.parseComparison()
		left = &ast.Binary{Base: ast.NewBase(span.Join(left.Span(), right.Span())), OperatorToken: op, Left: left, Right: right}
	}
	return left
}

// comparison = additive { (">" | ">=" | "<" | "<=") additive }
func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for p.check(token.GREATER) || p.check(token.GREATER_EQUAL) || p.check(token.LESS) || p.check(token.LESS_EQUAL) {
		op := p.advance()
		p.skipNewlines()
		right := p.parseAdditive()
		left = &ast.Binary{Base: ast.NewBase(span.Join(left.Span(), right.Span())), OperatorToken: op, Left: left, Right: right}
	}
	return left
}

// additive = multiplicative { ("+" | "-") multiplicative }
func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.advance()
		p.skipNewlines()
		right := p.parseMultiplicative()
		left = &ast.Binary{Base: ast.NewBase(span.Join(left.Span(), right.Span())), OperatorToken: op, Left: left, Right: right}
	}
	return left
}

// multiplicative = unary { ("*" | "/") unary }
func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.check(token.STAR) || p.check(token.SLASH) {
		op := p.advance()
		p.skipNewlines()
		right := p.parseUnary()
		left = &ast.Binary{Base: ast.NewBase(span.Join(left.Span(), right.Span())), OperatorToken: op, Left: left, Right: right}
	}
	return left
}

// unary = ("!" | "-" | "+") unary | call
func (p *Parser) parseUnary() ast.Expr {
	if p.check(token.BANG) || p.check(token.MINUS) || p.check(token.PLUS) {
		op := p.advance()
		operand := p.parseUnary()
		return &ast.Unary{Base: ast.NewBase(span.Join(op.Span, operand.Span())), OperatorToken: op, Operand: operand}
	}
	return p.parseCall()
}

// call = primary ["(" [arg_list] ")"], only on Identifier primaries
func (p *Parser) parseCall() ast.Expr {
	expr := p.parsePrimary()
	if ident, ok := expr.(*ast.Identifier); ok && p.check(token.LPAREN) {
		return p.finishCall(ident)
	}
	return expr
}

// arg_list = expression { "," expression } [","]
func (p *Parser) finishCall(ident *ast.Identifier) ast.Expr {
	p.advance() // consume '('
	p.skipNewlines()

	var args []ast.Expr
	if !p.check(token.RPAREN) {
		args = append(args, p.parseExpression())
		p.skipNewlines()
		for p.check(token.COMMA) {
			p.advance()
			p.skipNewlines()
			if p.check(token.RPAREN) { // trailing comma
				break
			}
			args = append(args, p.parseExpression())
			p.skipNewlines()
		}
	}

	closeTok, ok := p.expect(token.RPAREN, "')'")
	sp := span.Join(ident.Span(), closeTok.Span)
	if !ok {
		sp = ident.Span()
	}
	return &ast.FunctionCall{Base: ast.NewBase(sp), Name: ident.Name, Arguments: args}
}

// primary = literal | Identifier | "return" [expression]
//
//	| if_expr | while_expr | "(" expression ")"
func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.FALSE:
		p.advance()
		return &ast.FalseLiteral{Base: ast.NewBase(tok.Span)}
	case token.TRUE:
		p.advance()
		return &ast.TrueLiteral{Base: ast.NewBase(tok.Span)}
	case token.NIL:
		p.advance()
		return &ast.NilLiteral{Base: ast.NewBase(tok.Span)}
	case token.SELF:
		p.advance()
		return &ast.SelfLiteral{Base: ast.NewBase(tok.Span)}
	case token.INTEGER:
		p.advance()
		return &ast.IntegerLiteral{Base: ast.NewBase(tok.Span), Digits: tok.Lexeme}
	case token.FLOAT:
		p.advance()
		return &ast.FloatLiteral{Base: ast.NewBase(tok.Span), Digits: tok.Lexeme}
	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Base: ast.NewBase(tok.Span), Decoded: tok.Lexeme}
	case token.IDENTIFIER:
		p.advance()
		return &ast.Identifier{Base: ast.NewBase(tok.Span), Name: tok.Lexeme}
	case token.RETURN:
		return p.parseReturn()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.LPAREN:
		return p.parseGrouping()
	default:
		return p.recover("an expression")
	}
}

// startsValue reports whether the lookahead could begin an expression,
// used to decide whether a bare `return` carries a value.
func (p *Parser) startsValue() bool {
	switch p.peek().Kind {
	case token.NEWLINE, token.SEMICOLON, token.EOF, token.END, token.ELSE:
		return false
	default:
		return true
	}
}

func (p *Parser) parseReturn() ast.Expr {
	retTok := p.advance() // consume 'return'
	if !p.startsValue() {
		return &ast.Return{Base: ast.NewBase(retTok.Span)}
	}
	value := p.parseExpression()
	return &ast.Return{Base: ast.NewBase(span.Join(retTok.Span, value.Span())), Value: value}
}

// if_expr = "if" expression SEP statements ["else" (expression | SEP statements)] "end"
func (p *Parser) parseIf() ast.Expr {
	ifTok := p.advance() // consume 'if'
	cond := p.parseExpression()
	p.consumeSeparator()

	thenBody := p.parseBlockUntil(token.ELSE, token.END)

	var elseBody []ast.Stmt
	if p.check(token.ELSE) {
		p.advance()
		if isSeparatorKind(p.peek().Kind) {
			p.skipSeparators()
			elseBody = p.parseBlockUntil(token.END)
		} else {
			elseBody = []ast.Stmt{wrapStmt(p.parseExpression())}
		}
	}

	endTok, ok := p.expect(token.END, "'end'")
	sp := span.Join(ifTok.Span, endTok.Span)
	if !ok {
		sp = span.Join(ifTok.Span, cond.Span())
	}
	return &ast.If{Base: ast.NewBase(sp), Condition: cond, Then: thenBody, Else: elseBody}
}

// while_expr = "while" expression SEP statements "end"
func (p *Parser) parseWhile() ast.Expr {
	whileTok := p.advance() // consume 'while'
	cond := p.parseExpression()
	p.consumeSeparator()

	body := p.parseBlockUntil(token.END)

	endTok, ok := p.expect(token.END, "'end'")
	sp := span.Join(whileTok.Span, endTok.Span)
	if !ok {
		sp = span.Join(whileTok.Span, cond.Span())
	}
	return &ast.While{Base: ast.NewBase(sp), Condition: cond, Body: body}
}

// consumeSeparator requires the SEP the grammar places after an if/while
// condition. Like parseStatement's separator check, a mismatch just
// records the diagnostic (per the shared ERROR-suppression rule) without
// consuming the lookahead.
func (p *Parser) consumeSeparator() {
	switch p.peek().Kind {
	case token.NEWLINE, token.SEMICOLON:
		p.advance()
	case token.EOF:
	default:
		tok := p.peek()
		if tok.Kind != token.ERROR {
			p.errorf(tok.Span, "unexpected %s, expected a statement separator", tok.Kind)
		}
	}
}

// "(" expression ")" -- MiniRuby has no separate Grouping AST node
// (spec §3's node set doesn't include one): parentheses only affect
// precedence during parsing, so the inner expression is returned as-is.
func (p *Parser) parseGrouping() ast.Expr {
	p.advance() // consume '('
	p.skipNewlines()
	inner := p.parseExpression()
	p.skipNewlines()
	p.expect(token.RPAREN, "')'")
	return inner
}
