package vm

import (
	"bytes"
	"testing"

	"github.com/Verseth/miniruby/bytecode"
	"github.com/Verseth/miniruby/span"
	"github.com/Verseth/miniruby/value"
)

func runChunk(t *testing.T, chunk *bytecode.Chunk) (value.Value, string) {
	t.Helper()
	var stdout bytes.Buffer
	machine := New()
	machine.Stdout = &stdout
	result, err := machine.Run(chunk)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return result, stdout.String()
}

// chunkOf builds a minimal Chunk from a raw instruction stream and value
// pool, skipping the compiler entirely so the VM's opcode dispatch can
// be exercised directly.
func chunkOf(instructions []byte, pool []value.Value) *bytecode.Chunk {
	return &bytecode.Chunk{
		Name:         "test",
		Filename:     "<test>",
		Span:         span.Zero,
		Instructions: instructions,
		ValuePool:    pool,
	}
}

func TestArithmeticIntPromotesToFloatWithMixedOperands(t *testing.T) {
	chunk := chunkOf([]byte{
		byte(bytecode.LOAD_VALUE), 0,
		byte(bytecode.LOAD_VALUE), 1,
		byte(bytecode.ADD),
		byte(bytecode.RETURN),
	}, []value.Value{value.Int64(1), value.Float(2.5)})

	result, _ := runChunk(t, chunk)
	if result.Kind != value.FLOAT || result.Flt != 3.5 {
		t.Errorf("result = %v, want Float(3.5)", result)
	}
}

func TestAddConcatenatesStrings(t *testing.T) {
	chunk := chunkOf([]byte{
		byte(bytecode.LOAD_VALUE), 0,
		byte(bytecode.LOAD_VALUE), 1,
		byte(bytecode.ADD),
		byte(bytecode.RETURN),
	}, []value.Value{value.Str("foo"), value.Str("bar")})

	result, _ := runChunk(t, chunk)
	if result.Kind != value.STRING || result.Str != "foobar" {
		t.Errorf("result = %v, want Str(\"foobar\")", result)
	}
}

func TestIntDivisionTruncates(t *testing.T) {
	chunk := chunkOf([]byte{
		byte(bytecode.LOAD_VALUE), 0,
		byte(bytecode.LOAD_VALUE), 1,
		byte(bytecode.DIVIDE),
		byte(bytecode.RETURN),
	}, []value.Value{value.Int64(7), value.Int64(2)})

	result, _ := runChunk(t, chunk)
	if result.Kind != value.INT || result.Int != 3 {
		t.Errorf("result = %v, want Int64(3)", result)
	}
}

func TestJumpUnlessSkipsOverFalseBranch(t *testing.T) {
	// if false then 1 else 2: FALSE, JUMP_UNLESS 4, LOAD 0(1), JUMP 2, LOAD 1(2), RETURN
	// JUMP_UNLESS's offset (4) skips over the 2-byte LOAD_VALUE and 2-byte
	// JUMP of the then-branch, landing on the else-branch's LOAD_VALUE.
	chunk := chunkOf([]byte{
		byte(bytecode.FALSE),
		byte(bytecode.JUMP_UNLESS), 4,
		byte(bytecode.LOAD_VALUE), 0,
		byte(bytecode.JUMP), 2,
		byte(bytecode.LOAD_VALUE), 1,
		byte(bytecode.RETURN),
	}, []value.Value{value.Int64(1), value.Int64(2)})

	result, _ := runChunk(t, chunk)
	if result.Kind != value.INT || result.Int != 2 {
		t.Errorf("result = %v, want Int64(2)", result)
	}
}

func TestLocalsRoundTripThroughGetSet(t *testing.T) {
	chunk := chunkOf([]byte{
		byte(bytecode.PREP_LOCALS), 1,
		byte(bytecode.LOAD_VALUE), 0,
		byte(bytecode.SET_LOCAL), 1,
		byte(bytecode.POP),
		byte(bytecode.GET_LOCAL), 1,
		byte(bytecode.RETURN),
	}, []value.Value{value.Int64(42)})

	result, _ := runChunk(t, chunk)
	if result.Kind != value.INT || result.Int != 42 {
		t.Errorf("result = %v, want Int64(42)", result)
	}
}

func TestCallOperandIsAValuePoolIndexNotAnArgCount(t *testing.T) {
	// SELF, LOAD_VALUE 0 ("hi"), CALL 1 (pool[1] = CallInfo{puts, 1}), RETURN
	chunk := chunkOf([]byte{
		byte(bytecode.SELF),
		byte(bytecode.LOAD_VALUE), 0,
		byte(bytecode.CALL), 1,
		byte(bytecode.RETURN),
	}, []value.Value{value.Str("hi"), value.NewCallInfo("puts", 1)})

	result, stdout := runChunk(t, chunk)
	if result.Kind != value.NIL {
		t.Errorf("result = %v, want Nil", result)
	}
	if stdout != "hi\n" {
		t.Errorf("stdout = %q, want %q", stdout, "hi\n")
	}
}

func TestTruthiness(t *testing.T) {
	falsy := []value.Value{value.Nil, value.Bool(false)}
	for _, v := range falsy {
		if v.Truthy() {
			t.Errorf("%v.Truthy() = true, want false", v)
		}
	}
	truthy := []value.Value{value.Int64(0), value.Float(0), value.Str(""), value.Bool(true), value.Self}
	for _, v := range truthy {
		if !v.Truthy() {
			t.Errorf("%v.Truthy() = false, want true", v)
		}
	}
}

func TestUnknownOpcodeIsARuntimeError(t *testing.T) {
	chunk := chunkOf([]byte{0xFF}, nil)
	machine := New()
	machine.Stdout = &bytes.Buffer{}
	_, err := machine.Run(chunk)
	if err == nil {
		t.Fatal("expected an error for an unknown opcode")
	}
}

func TestStackUnderflowIsARuntimeError(t *testing.T) {
	chunk := chunkOf([]byte{byte(bytecode.ADD), byte(bytecode.RETURN)}, nil)
	machine := New()
	machine.Stdout = &bytes.Buffer{}
	_, err := machine.Run(chunk)
	if err == nil {
		t.Fatal("expected a stack underflow error")
	}
}
