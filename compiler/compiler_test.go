package compiler

import (
	"testing"

	"github.com/Verseth/miniruby/bytecode"
	"github.com/Verseth/miniruby/parser"
	"github.com/Verseth/miniruby/value"
)

func mustCompile(t *testing.T, source string) *bytecode.Chunk {
	t.Helper()
	prog, parseErrs := parser.Parse(source)
	if len(parseErrs) != 0 {
		t.Fatalf("parse(%q) errors: %v", source, parseErrs)
	}
	chunk, compileErrs := Compile(prog, "test", "<test>")
	if len(compileErrs) != 0 {
		t.Fatalf("compile(%q) errors: %v", source, compileErrs)
	}
	return chunk
}

// TestAssignmentThenAddition reproduces spec scenario 7 exactly:
// compile("a = 3\na + 5") yields a specific byte sequence and pool.
func TestAssignmentThenAddition(t *testing.T) {
	chunk := mustCompile(t, "a = 3\na + 5")

	want := []byte{
		byte(bytecode.PREP_LOCALS), 1,
		byte(bytecode.LOAD_VALUE), 0,
		byte(bytecode.SET_LOCAL), 1,
		byte(bytecode.POP),
		byte(bytecode.GET_LOCAL), 1,
		byte(bytecode.LOAD_VALUE), 1,
		byte(bytecode.ADD),
		byte(bytecode.RETURN),
	}
	if len(chunk.Instructions) != len(want) {
		t.Fatalf("Instructions = %v, want %v", chunk.Instructions, want)
	}
	for i := range want {
		if chunk.Instructions[i] != want[i] {
			t.Errorf("Instructions[%d] = %d, want %d (full: %v)", i, chunk.Instructions[i], want[i], chunk.Instructions)
		}
	}

	wantPool := []value.Value{value.Int64(3), value.Int64(5)}
	if len(chunk.ValuePool) != len(wantPool) {
		t.Fatalf("ValuePool = %v, want %v", chunk.ValuePool, wantPool)
	}
	for i, v := range wantPool {
		if !chunk.ValuePool[i].Equal(v) {
			t.Errorf("ValuePool[%d] = %v, want %v", i, chunk.ValuePool[i], v)
		}
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	source := "a = 1\nif a == 5\n  10\nelse\n  20\nend"
	first := mustCompile(t, source)
	second := mustCompile(t, source)

	if len(first.Instructions) != len(second.Instructions) {
		t.Fatalf("instruction lengths differ: %d vs %d", len(first.Instructions), len(second.Instructions))
	}
	for i := range first.Instructions {
		if first.Instructions[i] != second.Instructions[i] {
			t.Fatalf("Instructions[%d] differ: %d vs %d", i, first.Instructions[i], second.Instructions[i])
		}
	}
}

func TestValuePoolDeduplicates(t *testing.T) {
	chunk := mustCompile(t, "1\n1\n1")
	if len(chunk.ValuePool) != 1 {
		t.Errorf("ValuePool = %v, want a single deduplicated entry", chunk.ValuePool)
	}
}

// TestCallInfoDeduplicatesByNameAndArity reproduces spec §3's value pool
// de-duplication for CallInfo entries: two call sites with the same
// {name, arg_count} (here len("a") then len("b")) must share one pool
// entry rather than each appending a fresh one.
func TestCallInfoDeduplicatesByNameAndArity(t *testing.T) {
	chunk := mustCompile(t, "len(\"a\")\nlen(\"b\")")

	callInfoCount := 0
	for _, v := range chunk.ValuePool {
		if v.Kind == value.CALL_INFO {
			callInfoCount++
		}
	}
	if callInfoCount != 1 {
		t.Errorf("ValuePool = %v, want exactly one CALL_INFO entry", chunk.ValuePool)
	}
}

func TestFunctionCallEmitsCallInfoIndexNotArgCount(t *testing.T) {
	chunk := mustCompile(t, `puts("x")`)

	// SELF, LOAD_VALUE 0 ("x"), CALL 1 (pool[1] = CallInfo{puts, 1}), RETURN
	if len(chunk.Instructions) < 2 {
		t.Fatalf("Instructions too short: %v", chunk.Instructions)
	}
	callOffset := -1
	for i := 0; i+1 < len(chunk.Instructions); i++ {
		if bytecode.Opcode(chunk.Instructions[i]) == bytecode.CALL {
			callOffset = i
			break
		}
	}
	if callOffset == -1 {
		t.Fatalf("no CALL instruction found in %v", chunk.Instructions)
	}
	idx := chunk.Instructions[callOffset+1]
	if int(idx) >= len(chunk.ValuePool) {
		t.Fatalf("CALL operand %d is not a valid value pool index (pool has %d entries)", idx, len(chunk.ValuePool))
	}
	if chunk.ValuePool[idx].Kind != value.CALL_INFO {
		t.Errorf("CALL operand resolves to %v, want a CALL_INFO value", chunk.ValuePool[idx].Kind)
	}
}

func TestUndefinedLocalIsACompileError(t *testing.T) {
	prog, parseErrs := parser.Parse("a")
	if len(parseErrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", parseErrs)
	}
	_, compileErrs := Compile(prog, "test", "<test>")
	if len(compileErrs) != 1 {
		t.Fatalf("compile errors = %v, want exactly 1", compileErrs)
	}
	want := "undefined local: a"
	if compileErrs[0].Message != want {
		t.Errorf("compileErrs[0].Message = %q, want %q", compileErrs[0].Message, want)
	}
}
