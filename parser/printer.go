package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Verseth/miniruby/ast"
)

const (
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// astPrinter implements ast.Visitor and builds a JSON-friendly
// representation of the tree using maps and slices, one map key per
// node field plus a "type" discriminator.
type astPrinter struct{}

func (p astPrinter) VisitProgram(n *ast.Program) any {
	return map[string]any{
		"type":       "Program",
		"statements": p.stmts(n.Statements),
	}
}

func (p astPrinter) VisitExpressionStatement(n *ast.ExpressionStatement) any {
	return map[string]any{
		"type":       "ExpressionStatement",
		"expression": n.Expression.Accept(p),
	}
}

func (p astPrinter) VisitInvalid(n *ast.Invalid) any {
	return map[string]any{
		"type":  "Invalid",
		"token": n.Token.String(),
	}
}

func (p astPrinter) VisitIntegerLiteral(n *ast.IntegerLiteral) any {
	return map[string]any{"type": "IntegerLiteral", "digits": n.Digits}
}

func (p astPrinter) VisitFloatLiteral(n *ast.FloatLiteral) any {
	return map[string]any{"type": "FloatLiteral", "digits": n.Digits}
}

func (p astPrinter) VisitStringLiteral(n *ast.StringLiteral) any {
	return map[string]any{"type": "StringLiteral", "value": n.Decoded}
}

func (p astPrinter) VisitTrueLiteral(n *ast.TrueLiteral) any {
	return map[string]any{"type": "TrueLiteral"}
}

func (p astPrinter) VisitFalseLiteral(n *ast.FalseLiteral) any {
	return map[string]any{"type": "FalseLiteral"}
}

func (p astPrinter) VisitNilLiteral(n *ast.NilLiteral) any {
	return map[string]any{"type": "NilLiteral"}
}

func (p astPrinter) VisitSelfLiteral(n *ast.SelfLiteral) any {
	return map[string]any{"type": "SelfLiteral"}
}

func (p astPrinter) VisitIdentifier(n *ast.Identifier) any {
	return map[string]any{"type": "Identifier", "name": n.Name}
}

func (p astPrinter) VisitUnary(n *ast.Unary) any {
	return map[string]any{
		"type":     "Unary",
		"operator": n.OperatorToken.Kind.String(),
		"operand":  n.Operand.Accept(p),
	}
}

func (p astPrinter) VisitBinary(n *ast.Binary) any {
	return map[string]any{
		"type":     "Binary",
		"operator": n.OperatorToken.Kind.String(),
		"left":     n.Left.Accept(p),
		"right":    n.Right.Accept(p),
	}
}

func (p astPrinter) VisitAssignment(n *ast.Assignment) any {
	return map[string]any{
		"type":   "Assignment",
		"target": n.Target.Accept(p),
		"value":  n.Value.Accept(p),
	}
}

func (p astPrinter) VisitReturn(n *ast.Return) any {
	var v any
	if n.Value != nil {
		v = n.Value.Accept(p)
	}
	return map[string]any{"type": "Return", "value": v}
}

func (p astPrinter) VisitIf(n *ast.If) any {
	var elseVal any
	if n.Else != nil {
		elseVal = p.stmts(n.Else)
	}
	return map[string]any{
		"type":      "If",
		"condition": n.Condition.Accept(p),
		"then":      p.stmts(n.Then),
		"else":      elseVal,
	}
}

func (p astPrinter) VisitWhile(n *ast.While) any {
	return map[string]any{
		"type":      "While",
		"condition": n.Condition.Accept(p),
		"body":      p.stmts(n.Body),
	}
}

func (p astPrinter) VisitFunctionCall(n *ast.FunctionCall) any {
	args := make([]any, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		args = append(args, a.Accept(p))
	}
	return map[string]any{
		"type":      "FunctionCall",
		"name":      n.Name,
		"arguments": args,
	}
}

func (p astPrinter) stmts(stmts []ast.Stmt) []any {
	out := make([]any, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, s.Accept(p))
	}
	return out
}

// PrintASTJSON converts prog into a prettified JSON string and echoes it
// to stdout, the same debug-dump shape as the teacher's AST printer.
func PrintASTJSON(prog *ast.Program) (string, error) {
	printer := astPrinter{}
	bytes, err := json.MarshalIndent(prog.Accept(printer), "", "  ")
	if err != nil {
		return "", err
	}

	jsonStr := string(bytes)
	fmt.Println(colorYellow + "----- AST JSON -----")
	fmt.Println(colorYellow + jsonStr)
	fmt.Println(colorYellow + "-----" + colorReset)
	fmt.Println("")
	return jsonStr, nil
}

// WriteASTJSONToFile writes prog's prettified AST JSON to path.
func WriteASTJSONToFile(prog *ast.Program, path string) error {
	s, err := PrintASTJSON(prog)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating AST file: %s", err.Error())
	}
	defer f.Close()

	if _, err := f.Write([]byte(s)); err != nil {
		return fmt.Errorf("error writing AST to file: %s", err.Error())
	}
	return nil
}
