// Package value defines MiniRuby's runtime values: a small closed sum
// type (int64, float64, bool, nil, string, the self sentinel, and call
// metadata) used everywhere the VM and native functions exchange data.
//
// A tagged union is used here instead of Go's `any` so that every
// runtime value is one of a known, exhaustively-switchable set of
// kinds — matching the spec's Data Model, which favors closed sum types
// over open class hierarchies.
package value

import (
	"fmt"
	"strconv"
)

// Kind tags which field of a Value is meaningful.
type Kind int

const (
	INT Kind = iota
	FLOAT
	BOOL
	NIL
	STRING
	SELF
	CALL_INFO
)

func (k Kind) String() string {
	switch k {
	case INT:
		return "Int"
	case FLOAT:
		return "Float"
	case BOOL:
		return "Bool"
	case NIL:
		return "Nil"
	case STRING:
		return "String"
	case SELF:
		return "Self"
	case CALL_INFO:
		return "CallInfo"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CallInfo describes a pending native-function invocation: its name and
// how many arguments were pushed for it on the value stack.
type CallInfo struct {
	Name     string
	ArgCount int
}

// Value is a single MiniRuby runtime value. Only the field matching Kind
// is meaningful; the rest are zero.
type Value struct {
	Kind Kind
	Int  int64
	Flt  float64
	Bool bool
	Str  string
	Call CallInfo
}

// Int64 builds an INT value.
func Int64(i int64) Value { return Value{Kind: INT, Int: i} }

// Float builds a FLOAT value.
func Float(f float64) Value { return Value{Kind: FLOAT, Flt: f} }

// Bool builds a BOOL value.
func Bool(b bool) Value { return Value{Kind: BOOL, Bool: b} }

// Nil is the sole NIL value.
var Nil = Value{Kind: NIL}

// Self is the sole SELF sentinel value, occupying local slot 0.
var Self = Value{Kind: SELF}

// Str builds a STRING value.
func Str(s string) Value { return Value{Kind: STRING, Str: s} }

// NewCallInfo builds a CALL_INFO value describing a pending call.
func NewCallInfo(name string, argCount int) Value {
	return Value{Kind: CALL_INFO, Call: CallInfo{Name: name, ArgCount: argCount}}
}

// Truthy implements MiniRuby's truthiness rule: nil and false are falsy,
// everything else — including 0, 0.0, and "" — is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case NIL:
		return false
	case BOOL:
		return v.Bool
	default:
		return true
	}
}

// Equal implements MiniRuby's `==`. Values of different kinds are never
// equal, except that INT and FLOAT compare by numeric value.
func (v Value) Equal(other Value) bool {
	switch {
	case v.Kind == INT && other.Kind == INT:
		return v.Int == other.Int
	case v.Kind == FLOAT && other.Kind == FLOAT:
		return v.Flt == other.Flt
	case v.Kind == INT && other.Kind == FLOAT:
		return float64(v.Int) == other.Flt
	case v.Kind == FLOAT && other.Kind == INT:
		return v.Flt == float64(other.Int)
	case v.Kind == BOOL && other.Kind == BOOL:
		return v.Bool == other.Bool
	case v.Kind == STRING && other.Kind == STRING:
		return v.Str == other.Str
	case v.Kind == NIL && other.Kind == NIL:
		return true
	case v.Kind == SELF && other.Kind == SELF:
		return true
	case v.Kind == CALL_INFO && other.Kind == CALL_INFO:
		return v.Call.Name == other.Call.Name && v.Call.ArgCount == other.Call.ArgCount
	default:
		return false
	}
}

// Inspect renders a value the way `puts`/`print`/INSPECT_STACK would.
func (v Value) Inspect() string {
	switch v.Kind {
	case INT:
		return strconv.FormatInt(v.Int, 10)
	case FLOAT:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case BOOL:
		return strconv.FormatBool(v.Bool)
	case NIL:
		return "nil"
	case STRING:
		return v.Str
	case SELF:
		return "self"
	case CALL_INFO:
		return fmt.Sprintf("CallInfo{%s/%d}", v.Call.Name, v.Call.ArgCount)
	default:
		return "<unknown value>"
	}
}

func (v Value) String() string {
	return v.Inspect()
}
