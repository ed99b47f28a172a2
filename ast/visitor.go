package ast

// Visitor dispatches over the closed node set (the program, its
// statements, and every expression kind). A compiler or
// printer implements Visitor and calls Accept on the root node rather
// than type-switching by hand.
type Visitor interface {
	VisitProgram(*Program) any
	VisitExpressionStatement(*ExpressionStatement) any
	VisitInvalid(*Invalid) any
	VisitIntegerLiteral(*IntegerLiteral) any
	VisitFloatLiteral(*FloatLiteral) any
	VisitStringLiteral(*StringLiteral) any
	VisitTrueLiteral(*TrueLiteral) any
	VisitFalseLiteral(*FalseLiteral) any
	VisitNilLiteral(*NilLiteral) any
	VisitSelfLiteral(*SelfLiteral) any
	VisitIdentifier(*Identifier) any
	VisitUnary(*Unary) any
	VisitBinary(*Binary) any
	VisitAssignment(*Assignment) any
	VisitReturn(*Return) any
	VisitIf(*If) any
	VisitWhile(*While) any
	VisitFunctionCall(*FunctionCall) any
}

func (n *Program) Accept(v Visitor) any             { return v.VisitProgram(n) }
func (n *ExpressionStatement) Accept(v Visitor) any { return v.VisitExpressionStatement(n) }
func (n *Invalid) Accept(v Visitor) any             { return v.VisitInvalid(n) }
func (n *IntegerLiteral) Accept(v Visitor) any      { return v.VisitIntegerLiteral(n) }
func (n *FloatLiteral) Accept(v Visitor) any        { return v.VisitFloatLiteral(n) }
func (n *StringLiteral) Accept(v Visitor) any       { return v.VisitStringLiteral(n) }
func (n *TrueLiteral) Accept(v Visitor) any         { return v.VisitTrueLiteral(n) }
func (n *FalseLiteral) Accept(v Visitor) any        { return v.VisitFalseLiteral(n) }
func (n *NilLiteral) Accept(v Visitor) any          { return v.VisitNilLiteral(n) }
func (n *SelfLiteral) Accept(v Visitor) any         { return v.VisitSelfLiteral(n) }
func (n *Identifier) Accept(v Visitor) any          { return v.VisitIdentifier(n) }
func (n *Unary) Accept(v Visitor) any               { return v.VisitUnary(n) }
func (n *Binary) Accept(v Visitor) any              { return v.VisitBinary(n) }
func (n *Assignment) Accept(v Visitor) any          { return v.VisitAssignment(n) }
func (n *Return) Accept(v Visitor) any              { return v.VisitReturn(n) }
func (n *If) Accept(v Visitor) any                  { return v.VisitIf(n) }
func (n *While) Accept(v Visitor) any                { return v.VisitWhile(n) }
func (n *FunctionCall) Accept(v Visitor) any        { return v.VisitFunctionCall(n) }
