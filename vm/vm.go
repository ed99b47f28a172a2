// Package vm executes a compiled bytecode.Chunk: a stack machine that
// fetches one opcode at a time, dispatches on it, and either pushes a
// result, transfers control, or halts with a RuntimeError.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Verseth/miniruby/bytecode"
	"github.com/Verseth/miniruby/value"
)

// VM holds everything needed to run one Chunk to completion.
type VM struct {
	Stdout io.Writer
	Stdin  io.Reader

	chunk    *bytecode.Chunk
	ip       int
	stack    stack
	locals   [bytecode.MaxLocals]value.Value
	stdinBuf *bufio.Reader
}

// New returns a VM that writes to stdout and reads from stdin by
// default; override Stdout/Stdin before Run to redirect either.
func New() *VM {
	return &VM{Stdout: os.Stdout, Stdin: os.Stdin}
}

// Run executes chunk from its first instruction and returns the value
// produced by the RETURN that ends execution. A chunk with compile
// errors should never be handed here.
func (vm *VM) Run(chunk *bytecode.Chunk) (value.Value, error) {
	vm.chunk = chunk
	vm.ip = 0
	vm.stack = vm.stack[:0]
	for i := range vm.locals {
		vm.locals[i] = value.Nil
	}
	vm.locals[0] = value.Self

	for {
		if vm.ip >= len(vm.chunk.Instructions) {
			return value.Nil, newRuntimeError("instruction stream ended without a RETURN")
		}
		op := bytecode.Opcode(vm.fetchByte())

		switch op {
		case bytecode.NOOP:
			// nothing to do

		case bytecode.POP:
			if _, ok := vm.pop(); !ok {
				return value.Nil, vm.stackUnderflow("POP")
			}

		case bytecode.DUP:
			top, ok := vm.stack.peek()
			if !ok {
				return value.Nil, vm.stackUnderflow("DUP")
			}
			vm.push(top)

		case bytecode.INSPECT_STACK:
			vm.inspectStack()

		case bytecode.ADD, bytecode.SUBTRACT, bytecode.MULTIPLY, bytecode.DIVIDE:
			result, err := vm.arithmetic(op)
			if err != nil {
				return value.Nil, err
			}
			vm.push(result)

		case bytecode.NEGATE:
			v, ok := vm.pop()
			if !ok {
				return value.Nil, vm.stackUnderflow("NEGATE")
			}
			switch v.Kind {
			case value.INT:
				vm.push(value.Int64(-v.Int))
			case value.FLOAT:
				vm.push(value.Float(-v.Flt))
			default:
				return value.Nil, newRuntimeError("NEGATE: expected a number, got %s", v.Kind)
			}

		case bytecode.NOT:
			v, ok := vm.pop()
			if !ok {
				return value.Nil, vm.stackUnderflow("NOT")
			}
			vm.push(value.Bool(!v.Truthy()))

		case bytecode.EQUAL:
			b, ok1 := vm.pop()
			a, ok2 := vm.pop()
			if !ok1 || !ok2 {
				return value.Nil, vm.stackUnderflow("EQUAL")
			}
			vm.push(value.Bool(a.Equal(b)))

		case bytecode.GREATER, bytecode.GREATER_EQUAL, bytecode.LESS, bytecode.LESS_EQUAL:
			result, err := vm.compare(op)
			if err != nil {
				return value.Nil, err
			}
			vm.push(result)

		case bytecode.LOAD_VALUE:
			idx := vm.fetchByte()
			if int(idx) >= len(vm.chunk.ValuePool) {
				return value.Nil, newRuntimeError("LOAD_VALUE: index %d out of range", idx)
			}
			vm.push(vm.chunk.ValuePool[idx])

		case bytecode.TRUE:
			vm.push(value.Bool(true))

		case bytecode.FALSE:
			vm.push(value.Bool(false))

		case bytecode.NIL:
			vm.push(value.Nil)

		case bytecode.SELF:
			vm.push(value.Self)

		case bytecode.RETURN:
			v, ok := vm.pop()
			if !ok {
				return value.Nil, vm.stackUnderflow("RETURN")
			}
			return v, nil

		case bytecode.JUMP:
			offset := vm.fetchByte()
			vm.ip += int(offset)

		case bytecode.LOOP:
			offset := vm.fetchByte()
			vm.ip -= int(offset)

		case bytecode.JUMP_UNLESS:
			offset := vm.fetchByte()
			cond, ok := vm.pop()
			if !ok {
				return value.Nil, vm.stackUnderflow("JUMP_UNLESS")
			}
			if !cond.Truthy() {
				vm.ip += int(offset)
			}

		case bytecode.CALL:
			idx := vm.fetchByte()
			if int(idx) >= len(vm.chunk.ValuePool) {
				return value.Nil, newRuntimeError("CALL: index %d out of range", idx)
			}
			result, err := vm.call(vm.chunk.ValuePool[idx])
			if err != nil {
				return value.Nil, err
			}
			vm.push(result)

		case bytecode.PREP_LOCALS:
			vm.fetchByte() // local count is informational only at runtime

		case bytecode.GET_LOCAL:
			slot := vm.fetchByte()
			vm.push(vm.locals[slot])

		case bytecode.SET_LOCAL:
			slot := vm.fetchByte()
			v, ok := vm.stack.peek()
			if !ok {
				return value.Nil, vm.stackUnderflow("SET_LOCAL")
			}
			vm.locals[slot] = v

		default:
			return value.Nil, newRuntimeError("unknown opcode: %d", op)
		}
	}
}

func (vm *VM) fetchByte() byte {
	b := vm.chunk.Instructions[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) push(v value.Value) { vm.stack.push(v) }
func (vm *VM) pop() (value.Value, bool) { return vm.stack.pop() }

func (vm *VM) stackUnderflow(op string) error {
	return newRuntimeError("%s: stack underflow", op)
}

func (vm *VM) inspectStack() {
	fmt.Fprint(vm.Stdout, "[")
	for i, v := range vm.stack {
		if i > 0 {
			fmt.Fprint(vm.Stdout, ", ")
		}
		fmt.Fprint(vm.Stdout, v.Inspect())
	}
	fmt.Fprintln(vm.Stdout, "]")
}

// arithmetic implements int/float promotion: int op int stays an int
// (DIVIDE truncates), and the result is a float as soon as either
// operand is a float. ADD on two strings concatenates instead.
func (vm *VM) arithmetic(op bytecode.Opcode) (value.Value, error) {
	b, ok1 := vm.pop()
	a, ok2 := vm.pop()
	if !ok1 || !ok2 {
		return value.Nil, vm.stackUnderflow(op.String())
	}
	if op == bytecode.ADD && a.Kind == value.STRING && b.Kind == value.STRING {
		return value.Str(a.Str + b.Str), nil
	}
	if !isNumeric(a) || !isNumeric(b) {
		return value.Nil, newRuntimeError("%s: expected two numbers, got %s and %s", op, a.Kind, b.Kind)
	}

	if a.Kind == value.INT && b.Kind == value.INT {
		switch op {
		case bytecode.ADD:
			return value.Int64(a.Int + b.Int), nil
		case bytecode.SUBTRACT:
			return value.Int64(a.Int - b.Int), nil
		case bytecode.MULTIPLY:
			return value.Int64(a.Int * b.Int), nil
		case bytecode.DIVIDE:
			if b.Int == 0 {
				return value.Nil, newRuntimeError("division by zero")
			}
			return value.Int64(a.Int / b.Int), nil
		}
	}

	af, bf := asFloat(a), asFloat(b)
	switch op {
	case bytecode.ADD:
		return value.Float(af + bf), nil
	case bytecode.SUBTRACT:
		return value.Float(af - bf), nil
	case bytecode.MULTIPLY:
		return value.Float(af * bf), nil
	case bytecode.DIVIDE:
		if bf == 0 {
			return value.Nil, newRuntimeError("division by zero")
		}
		return value.Float(af / bf), nil
	}
	return value.Nil, newRuntimeError("unreachable arithmetic opcode: %s", op)
}

func (vm *VM) compare(op bytecode.Opcode) (value.Value, error) {
	b, ok1 := vm.pop()
	a, ok2 := vm.pop()
	if !ok1 || !ok2 {
		return value.Nil, vm.stackUnderflow(op.String())
	}
	if !isNumeric(a) || !isNumeric(b) {
		return value.Nil, newRuntimeError("%s: expected two numbers, got %s and %s", op, a.Kind, b.Kind)
	}
	af, bf := asFloat(a), asFloat(b)
	switch op {
	case bytecode.GREATER:
		return value.Bool(af > bf), nil
	case bytecode.GREATER_EQUAL:
		return value.Bool(af >= bf), nil
	case bytecode.LESS:
		return value.Bool(af < bf), nil
	case bytecode.LESS_EQUAL:
		return value.Bool(af <= bf), nil
	}
	return value.Nil, newRuntimeError("unreachable comparison opcode: %s", op)
}

func isNumeric(v value.Value) bool {
	return v.Kind == value.INT || v.Kind == value.FLOAT
}

func asFloat(v value.Value) float64 {
	if v.Kind == value.INT {
		return float64(v.Int)
	}
	return v.Flt
}

// call reads CallInfo straight out of the value pool (the operand is
// its pool index), then pops its arguments and the self beneath them
// off the stack and dispatches to the matching native function.
func (vm *VM) call(infoVal value.Value) (value.Value, error) {
	if infoVal.Kind != value.CALL_INFO {
		return value.Nil, newRuntimeError("CALL: missing call info")
	}
	info := infoVal.Call
	argCount := info.ArgCount

	args := make([]value.Value, argCount)
	for i := argCount - 1; i >= 0; i-- {
		v, ok := vm.pop()
		if !ok {
			return value.Nil, vm.stackUnderflow("CALL")
		}
		args[i] = v
	}

	if _, ok := vm.pop(); !ok { // self
		return value.Nil, vm.stackUnderflow("CALL")
	}

	fn, ok := defaultRegistry.get(info.Name)
	if !ok {
		return value.Nil, newRuntimeError("undefined function: %s", info.Name)
	}
	if len(args) != fn.Arity {
		return value.Nil, newRuntimeError("%s: got %d arguments, expected %d", info.Name, len(args), fn.Arity)
	}

	return fn.Fn(vm, args)
}
