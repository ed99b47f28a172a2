package parser

import (
	"testing"

	"github.com/Verseth/miniruby/ast"
	"github.com/Verseth/miniruby/token"
)

func exprOf(t *testing.T, stmts []ast.Stmt, i int) ast.Expr {
	t.Helper()
	es, ok := stmts[i].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement %d is a %T, not *ast.ExpressionStatement", i, stmts[i])
	}
	return es.Expression
}

func binOp(t *testing.T, e ast.Expr) *ast.Binary {
	t.Helper()
	b, ok := e.(*ast.Binary)
	if !ok {
		t.Fatalf("expression is a %T, not *ast.Binary", e)
	}
	return b
}

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	prog, errs := Parse("a+b*c")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	top := binOp(t, exprOf(t, prog.Statements, 0))
	if top.OperatorToken.Kind != token.PLUS {
		t.Fatalf("top operator = %v, want PLUS", top.OperatorToken.Kind)
	}
	if _, ok := top.Left.(*ast.Identifier); !ok {
		t.Errorf("left operand = %T, want *ast.Identifier", top.Left)
	}
	right := binOp(t, top.Right)
	if right.OperatorToken.Kind != token.STAR {
		t.Errorf("right operator = %v, want STAR", right.OperatorToken.Kind)
	}
}

func TestAdditionBindsLooserThanMultiplication(t *testing.T) {
	prog, errs := Parse("a*b+c")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	top := binOp(t, exprOf(t, prog.Statements, 0))
	if top.OperatorToken.Kind != token.PLUS {
		t.Fatalf("top operator = %v, want PLUS", top.OperatorToken.Kind)
	}
	left := binOp(t, top.Left)
	if left.OperatorToken.Kind != token.STAR {
		t.Errorf("left operator = %v, want STAR", left.OperatorToken.Kind)
	}
}

func TestComparisonBindsBetweenEqualityAndAdditive(t *testing.T) {
	prog, errs := Parse("a+b>c==d")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	top := binOp(t, exprOf(t, prog.Statements, 0))
	if top.OperatorToken.Kind != token.EQUAL_EQUAL {
		t.Fatalf("top operator = %v, want EQUAL_EQUAL", top.OperatorToken.Kind)
	}
	left := binOp(t, top.Left)
	if left.OperatorToken.Kind != token.GREATER {
		t.Errorf("left operator = %v, want GREATER", left.OperatorToken.Kind)
	}
	innerLeft := binOp(t, left.Left)
	if innerLeft.OperatorToken.Kind != token.PLUS {
		t.Errorf("inner-left operator = %v, want PLUS", innerLeft.OperatorToken.Kind)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	prog, errs := Parse("a=b=5")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	outer, ok := exprOf(t, prog.Statements, 0).(*ast.Assignment)
	if !ok {
		t.Fatalf("expression is a %T, not *ast.Assignment", exprOf(t, prog.Statements, 0))
	}
	if outer.Target.Name != "a" {
		t.Errorf("outer target = %q, want %q", outer.Target.Name, "a")
	}
	inner, ok := outer.Value.(*ast.Assignment)
	if !ok {
		t.Fatalf("outer.Value is a %T, not *ast.Assignment", outer.Value)
	}
	if inner.Target.Name != "b" {
		t.Errorf("inner target = %q, want %q", inner.Target.Name, "b")
	}
	if _, ok := inner.Value.(*ast.IntegerLiteral); !ok {
		t.Errorf("inner.Value = %T, want *ast.IntegerLiteral", inner.Value)
	}
}

// TestDotDotRecovery reproduces the spec's canonical recovery scenario:
// parse("12.4.5") yields three statements (float, invalid, integer) and
// two errors, without the stray '.' swallowing the trailing "5".
func TestDotDotRecovery(t *testing.T) {
	prog, errs := Parse("12.4.5")

	if len(prog.Statements) != 3 {
		t.Fatalf("got %d statements, want 3: %#v", len(prog.Statements), prog.Statements)
	}
	if _, ok := exprOf(t, prog.Statements, 0).(*ast.FloatLiteral); !ok {
		t.Errorf("statement 0 = %T, want *ast.FloatLiteral", prog.Statements[0])
	}
	if _, ok := prog.Statements[1].(*ast.Invalid); !ok {
		t.Errorf("statement 1 = %T, want *ast.Invalid", prog.Statements[1])
	}
	if _, ok := exprOf(t, prog.Statements, 2).(*ast.IntegerLiteral); !ok {
		t.Errorf("statement 2 = %T, want *ast.IntegerLiteral", prog.Statements[2])
	}

	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	if errs[0].Message != "unexpected char `.`" {
		t.Errorf("errs[0].Message = %q, want %q", errs[0].Message, "unexpected char `.`")
	}
	want := "unexpected INTEGER, expected a statement separator"
	if errs[1].Message != want {
		t.Errorf("errs[1].Message = %q, want %q", errs[1].Message, want)
	}
}

func TestIfElseParsesBothBranches(t *testing.T) {
	prog, errs := Parse("if a == 5\n  10\nelse\n  20\nend")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	ifExpr, ok := exprOf(t, prog.Statements, 0).(*ast.If)
	if !ok {
		t.Fatalf("expression is a %T, not *ast.If", exprOf(t, prog.Statements, 0))
	}
	if len(ifExpr.Then) != 1 || len(ifExpr.Else) != 1 {
		t.Errorf("If = %+v, want one statement in each branch", ifExpr)
	}
}

func TestElseIfChaining(t *testing.T) {
	prog, errs := Parse("if a\n  1\nelse if b\n  2\nend")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	outer, ok := exprOf(t, prog.Statements, 0).(*ast.If)
	if !ok {
		t.Fatalf("expression is a %T, not *ast.If", exprOf(t, prog.Statements, 0))
	}
	if len(outer.Else) != 1 {
		t.Fatalf("outer.Else has %d statements, want 1", len(outer.Else))
	}
	if _, ok := exprOf(t, outer.Else, 0).(*ast.If); !ok {
		t.Errorf("outer.Else[0] = %T, want *ast.If", outer.Else[0])
	}
}

func TestWhileParsesBody(t *testing.T) {
	prog, errs := Parse("while a < 5\n  a = a + 1\nend")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	whileExpr, ok := exprOf(t, prog.Statements, 0).(*ast.While)
	if !ok {
		t.Fatalf("expression is a %T, not *ast.While", exprOf(t, prog.Statements, 0))
	}
	if len(whileExpr.Body) != 1 {
		t.Errorf("While.Body has %d statements, want 1", len(whileExpr.Body))
	}
}

func TestFunctionCallArguments(t *testing.T) {
	prog, errs := Parse(`puts("foo", 1, a)`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	call, ok := exprOf(t, prog.Statements, 0).(*ast.FunctionCall)
	if !ok {
		t.Fatalf("expression is a %T, not *ast.FunctionCall", exprOf(t, prog.Statements, 0))
	}
	if call.Name != "puts" || len(call.Arguments) != 3 {
		t.Errorf("call = %+v, want puts/3 args", call)
	}
}

func TestTrailingCommaInArgList(t *testing.T) {
	prog, errs := Parse("puts(1,)")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	call, ok := exprOf(t, prog.Statements, 0).(*ast.FunctionCall)
	if !ok {
		t.Fatalf("expression is a %T, not *ast.FunctionCall", exprOf(t, prog.Statements, 0))
	}
	if len(call.Arguments) != 1 {
		t.Errorf("call.Arguments = %+v, want 1 argument", call.Arguments)
	}
}

func TestGroupingHasNoASTNode(t *testing.T) {
	prog, errs := Parse("(1+2)*3")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	top := binOp(t, exprOf(t, prog.Statements, 0))
	if top.OperatorToken.Kind != token.STAR {
		t.Fatalf("top operator = %v, want STAR", top.OperatorToken.Kind)
	}
	if _, ok := top.Left.(*ast.Binary); !ok {
		t.Errorf("top.Left = %T, want *ast.Binary (the parenthesized sum itself)", top.Left)
	}
}

func TestAssignmentToNonIdentifierIsAnError(t *testing.T) {
	_, errs := Parse("1 = 2")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error assigning to a non-identifier, got %v", errs)
	}
	want := "unexpected `INTEGER`, expected an identifier"
	if errs[0].Message != want {
		t.Errorf("errs[0].Message = %q, want %q", errs[0].Message, want)
	}
}

// TestAssignmentToCompoundExprNamesItsOwnOperator reproduces a compound
// left-hand side: the diagnostic should name the LHS's own operator
// token (PLUS), not the leftmost identifier token of `a+b`, which would
// misleadingly suggest `a` itself was the problem.
func TestAssignmentToCompoundExprNamesItsOwnOperator(t *testing.T) {
	_, errs := Parse("a+b = 5")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	want := "unexpected `PLUS`, expected an identifier"
	if errs[0].Message != want {
		t.Errorf("errs[0].Message = %q, want %q", errs[0].Message, want)
	}
}

func TestBareReturn(t *testing.T) {
	prog, errs := Parse("return")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	ret, ok := exprOf(t, prog.Statements, 0).(*ast.Return)
	if !ok {
		t.Fatalf("expression is a %T, not *ast.Return", exprOf(t, prog.Statements, 0))
	}
	if ret.Value != nil {
		t.Errorf("ret.Value = %v, want nil", ret.Value)
	}
}

func TestMissingClosingParenRecovers(t *testing.T) {
	_, errs := Parse("puts(\"x\"\n1")
	if len(errs) == 0 {
		t.Fatal("expected an error for the missing ')'")
	}
}
