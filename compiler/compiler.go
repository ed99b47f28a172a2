// Package compiler compiles a MiniRuby AST into a bytecode.Chunk in a
// single pass: it walks the tree once with ast.Visitor, resolving local
// variables against a flat slot table and back-patching jump operands
// as it goes, the same way the parser resolves references without a
// second lookup pass.
package compiler

import (
	"strconv"

	"github.com/Verseth/miniruby/ast"
	"github.com/Verseth/miniruby/bytecode"
	"github.com/Verseth/miniruby/span"
	"github.com/Verseth/miniruby/token"
	"github.com/Verseth/miniruby/value"
)

// selfSlot is the local slot always occupied by self; user locals start
// at slot 1.
const selfSlot = 0

// Compiler holds the state needed to compile one Chunk. It implements
// ast.Visitor: Compile walks the program's statement list and every
// node is compiled through its Accept method.
type Compiler struct {
	chunk    *bytecode.Chunk
	locals   map[string]int
	nextSlot int
	errors   []CompileError
}

// Compile compiles prog into a Chunk named name (attributed to
// filename in diagnostics and disassembly). Any errors encountered are
// returned alongside the chunk; the chunk is still usable for further
// inspection (e.g. disassembly) even when errors are non-empty, but
// should not be handed to a VM.
func Compile(prog *ast.Program, name, filename string) (*bytecode.Chunk, []CompileError) {
	c := &Compiler{
		chunk:    bytecode.New(name, filename, prog.Span()),
		locals:   make(map[string]int),
		nextSlot: selfSlot + 1,
	}

	c.compileBlock(prog.Statements, true)
	c.chunk.PushOpcode(bytecode.RETURN)

	if localCount := c.nextSlot - 1; localCount > 0 {
		prelude := []byte{byte(bytecode.PREP_LOCALS), byte(localCount)}
		c.chunk.Instructions = append(prelude, c.chunk.Instructions...)
	}

	return c.chunk, c.errors
}

func (c *Compiler) errorf(sp span.Span, format string, args ...any) {
	c.errors = append(c.errors, newError(sp, format, args...))
}

// stmtExpr extracts the expression carried by a statement. Invalid
// implements ast.Expr itself, so VisitInvalid handles its recovery.
func stmtExpr(s ast.Stmt) ast.Expr {
	switch st := s.(type) {
	case *ast.ExpressionStatement:
		return st.Expression
	case *ast.Invalid:
		return st
	default:
		return &ast.Invalid{}
	}
}

// compileBlock compiles a statement list, discarding every value but
// the last (which is left on the stack only when keepLast is true). An
// empty block with keepLast leaves a single nil.
func (c *Compiler) compileBlock(stmts []ast.Stmt, keepLast bool) {
	if len(stmts) == 0 {
		if keepLast {
			c.chunk.PushOpcode(bytecode.NIL)
		}
		return
	}
	for i, s := range stmts {
		c.compileExpr(stmtExpr(s))
		last := i == len(stmts)-1
		if !last || !keepLast {
			c.chunk.PushOpcode(bytecode.POP)
		}
	}
}

func (c *Compiler) compileExpr(e ast.Expr) {
	e.Accept(c)
}

// resolveLocal returns the slot bound to name, if any.
func (c *Compiler) resolveLocal(name string) (int, bool) {
	slot, ok := c.locals[name]
	return slot, ok
}

// declareLocal returns the slot for name, allocating a fresh one the
// first time name is assigned. Re-assigning an existing name reuses its
// slot, matching MiniRuby's flat (non-block-scoped) local model.
func (c *Compiler) declareLocal(name string, sp span.Span) int {
	if slot, ok := c.locals[name]; ok {
		return slot
	}
	if c.nextSlot >= bytecode.MaxLocals {
		c.errorf(sp, "exceeded the maximum number of local variables (%d): %s", bytecode.MaxLocals, name)
		return selfSlot
	}
	slot := c.nextSlot
	c.nextSlot++
	c.locals[name] = slot
	return slot
}

// loadValue interns v and emits LOAD_VALUE for it, recording an error
// if the pool has no room left.
func (c *Compiler) loadValue(v value.Value, sp span.Span) {
	idx := c.chunk.AddValue(v)
	if idx == -1 {
		c.errorf(sp, "value pool limit reached: %d", bytecode.MaxValuePool)
		c.chunk.PushOpcode(bytecode.NIL)
		return
	}
	c.chunk.PushOpcode(bytecode.LOAD_VALUE)
	c.chunk.PushByte(byte(idx))
}

// emitPlaceholderJump emits op followed by a zero placeholder operand,
// returning the operand's byte index for a later patchJump (or for
// emitLoop to fill in directly).
func (c *Compiler) emitPlaceholderJump(op bytecode.Opcode) int {
	c.chunk.PushOpcode(op)
	return c.chunk.PushByte(0)
}

// patchJump back-patches a forward jump's operand so it lands on the
// instruction stream's current end.
func (c *Compiler) patchJump(operandPos int, sp span.Span) {
	offset := c.chunk.Length() - (operandPos + 1)
	if offset > bytecode.MaxJump {
		c.errorf(sp, "too many bytes to jump over: %d", offset)
		offset = bytecode.MaxJump
	}
	c.chunk.PatchByte(operandPos, byte(offset))
}

// emitLoop emits a LOOP instruction that jumps back to loopStart.
func (c *Compiler) emitLoop(loopStart int, sp span.Span) {
	operandPos := c.emitPlaceholderJump(bytecode.LOOP)
	offset := (operandPos + 1) - loopStart
	if offset > bytecode.MaxJump {
		c.errorf(sp, "too many bytes to jump backward: %d", offset)
		offset = bytecode.MaxJump
	}
	c.chunk.PatchByte(operandPos, byte(offset))
}

// --- ast.Visitor ---

func (c *Compiler) VisitProgram(n *ast.Program) any {
	c.compileBlock(n.Statements, true)
	return nil
}

func (c *Compiler) VisitExpressionStatement(n *ast.ExpressionStatement) any {
	c.compileExpr(n.Expression)
	return nil
}

func (c *Compiler) VisitInvalid(n *ast.Invalid) any {
	c.chunk.PushOpcode(bytecode.NIL)
	return nil
}

func (c *Compiler) VisitIntegerLiteral(n *ast.IntegerLiteral) any {
	i, err := strconv.ParseInt(n.Digits, 10, 64)
	if err != nil {
		c.errorf(n.Span(), "invalid integer literal: %s", n.Digits)
		i = 0
	}
	c.loadValue(value.Int64(i), n.Span())
	return nil
}

func (c *Compiler) VisitFloatLiteral(n *ast.FloatLiteral) any {
	f, err := strconv.ParseFloat(n.Digits, 64)
	if err != nil {
		c.errorf(n.Span(), "invalid float literal: %s", n.Digits)
		f = 0
	}
	c.loadValue(value.Float(f), n.Span())
	return nil
}

func (c *Compiler) VisitStringLiteral(n *ast.StringLiteral) any {
	c.loadValue(value.Str(n.Decoded), n.Span())
	return nil
}

func (c *Compiler) VisitTrueLiteral(n *ast.TrueLiteral) any {
	c.chunk.PushOpcode(bytecode.TRUE)
	return nil
}

func (c *Compiler) VisitFalseLiteral(n *ast.FalseLiteral) any {
	c.chunk.PushOpcode(bytecode.FALSE)
	return nil
}

func (c *Compiler) VisitNilLiteral(n *ast.NilLiteral) any {
	c.chunk.PushOpcode(bytecode.NIL)
	return nil
}

func (c *Compiler) VisitSelfLiteral(n *ast.SelfLiteral) any {
	c.chunk.PushOpcode(bytecode.SELF)
	return nil
}

func (c *Compiler) VisitIdentifier(n *ast.Identifier) any {
	slot, ok := c.resolveLocal(n.Name)
	if !ok {
		c.errorf(n.Span(), "undefined local: %s", n.Name)
		c.chunk.PushOpcode(bytecode.NIL)
		return nil
	}
	c.chunk.PushOpcode(bytecode.GET_LOCAL)
	c.chunk.PushByte(byte(slot))
	return nil
}

func (c *Compiler) VisitUnary(n *ast.Unary) any {
	c.compileExpr(n.Operand)
	switch n.OperatorToken.Kind {
	case token.MINUS:
		c.chunk.PushOpcode(bytecode.NEGATE)
	case token.BANG:
		c.chunk.PushOpcode(bytecode.NOT)
	case token.PLUS:
		// unary + is the identity; the operand is already on the stack.
	default:
		c.errorf(n.Span(), "unknown unary operator: %s", n.OperatorToken.Kind)
	}
	return nil
}

func (c *Compiler) VisitBinary(n *ast.Binary) any {
	c.compileExpr(n.Left)
	c.compileExpr(n.Right)
	switch n.OperatorToken.Kind {
	case token.PLUS:
		c.chunk.PushOpcode(bytecode.ADD)
	case token.MINUS:
		c.chunk.PushOpcode(bytecode.SUBTRACT)
	case token.STAR:
		c.chunk.PushOpcode(bytecode.MULTIPLY)
	case token.SLASH:
		c.chunk.PushOpcode(bytecode.DIVIDE)
	case token.EQUAL_EQUAL:
		c.chunk.PushOpcode(bytecode.EQUAL)
	case token.NOT_EQUAL:
		c.chunk.PushOpcode(bytecode.EQUAL)
		c.chunk.PushOpcode(bytecode.NOT)
	case token.GREATER:
		c.chunk.PushOpcode(bytecode.GREATER)
	case token.GREATER_EQUAL:
		c.chunk.PushOpcode(bytecode.GREATER_EQUAL)
	case token.LESS:
		c.chunk.PushOpcode(bytecode.LESS)
	case token.LESS_EQUAL:
		c.chunk.PushOpcode(bytecode.LESS_EQUAL)
	default:
		c.errorf(n.Span(), "unknown binary operator: %s", n.OperatorToken.Kind)
	}
	return nil
}

func (c *Compiler) VisitAssignment(n *ast.Assignment) any {
	c.compileExpr(n.Value)
	slot := c.declareLocal(n.Target.Name, n.Target.Span())
	c.chunk.PushOpcode(bytecode.SET_LOCAL)
	c.chunk.PushByte(byte(slot))
	return nil
}

func (c *Compiler) VisitReturn(n *ast.Return) any {
	if n.Value != nil {
		c.compileExpr(n.Value)
	} else {
		c.chunk.PushOpcode(bytecode.NIL)
	}
	c.chunk.PushOpcode(bytecode.RETURN)
	return nil
}

func (c *Compiler) VisitIf(n *ast.If) any {
	c.compileExpr(n.Condition)
	thenJump := c.emitPlaceholderJump(bytecode.JUMP_UNLESS)

	c.compileBlock(n.Then, true)
	elseJump := c.emitPlaceholderJump(bytecode.JUMP)

	c.patchJump(thenJump, n.Span())
	if n.Else != nil {
		c.compileBlock(n.Else, true)
	} else {
		c.chunk.PushOpcode(bytecode.NIL)
	}
	c.patchJump(elseJump, n.Span())
	return nil
}

func (c *Compiler) VisitWhile(n *ast.While) any {
	c.chunk.PushOpcode(bytecode.NIL) // the loop's default value, used if it never runs
	loopStart := c.chunk.Length()
	c.compileExpr(n.Condition)
	exitJump := c.emitPlaceholderJump(bytecode.JUMP_UNLESS)

	c.chunk.PushOpcode(bytecode.POP) // discard the previous iteration's value
	c.compileBlock(n.Body, true)
	c.emitLoop(loopStart, n.Span())

	c.patchJump(exitJump, n.Span())
	return nil
}

func (c *Compiler) VisitFunctionCall(n *ast.FunctionCall) any {
	c.chunk.PushOpcode(bytecode.SELF)
	for _, arg := range n.Arguments {
		c.compileExpr(arg)
	}
	idx := c.chunk.AddValue(value.NewCallInfo(n.Name, len(n.Arguments)))
	if idx == -1 {
		c.errorf(n.Span(), "value pool limit reached: %d", bytecode.MaxValuePool)
		idx = 0
	}
	c.chunk.PushOpcode(bytecode.CALL)
	c.chunk.PushByte(byte(idx))
	return nil
}
