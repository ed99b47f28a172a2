package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verseth/miniruby/parser"
	"github.com/Verseth/miniruby/value"
	"github.com/Verseth/miniruby/vm"
)

// runSource compiles and executes source end to end, the same
// compile-then-run path miniruby.Interpret takes, kept local to this
// package so compiler changes are exercised against a real VM run
// without an import cycle back on the root package.
func runSource(t *testing.T, source string, stdin string) (value.Value, string) {
	t.Helper()
	chunk := mustCompile(t, source)

	var stdout bytes.Buffer
	machine := vm.New()
	machine.Stdout = &stdout
	machine.Stdin = bytes.NewBufferString(stdin)

	result, err := machine.Run(chunk)
	require.NoError(t, err, "source: %s", source)
	return result, stdout.String()
}

func TestIntegerLiteral(t *testing.T) {
	result, _ := runSource(t, "124", "")
	assert.Equal(t, value.Int64(124), result)
}

func TestFloatExponent(t *testing.T) {
	result, _ := runSource(t, "12e4", "")
	assert.Equal(t, value.Float(120000.0), result)
}

func TestWhileLoopAccumulates(t *testing.T) {
	result, stdout := runSource(t, "a = 0\nwhile a < 5\n  a = a + 2\nend\na", "")
	assert.Equal(t, value.Int64(6), result)
	assert.Empty(t, stdout)
}

func TestIfElseTakesElseBranch(t *testing.T) {
	result, _ := runSource(t, "a = 1\nif a == 5\n  10\nelse\n  20\nend", "")
	assert.Equal(t, value.Int64(20), result)
}

func TestPutsWritesLineAndReturnsNil(t *testing.T) {
	result, stdout := runSource(t, `puts("foo")`, "")
	assert.Equal(t, value.Nil, result)
	assert.Equal(t, "foo\n", stdout)
}

func TestStringConcatenation(t *testing.T) {
	result, _ := runSource(t, `"foo" + "bar"`, "")
	assert.Equal(t, value.Str("foobar"), result)
}

func TestLenCountsBytes(t *testing.T) {
	result, _ := runSource(t, `len("foo")`, "")
	assert.Equal(t, value.Int64(3), result)
}

func TestTrailingZeroFailsToCompile(t *testing.T) {
	_, parseErrs := parser.Parse("0124")
	require.NotEmpty(t, parseErrs)
	assert.Contains(t, parseErrs[0].Message, "illegal trailing zero in number literal")
}

func TestDivisionByZeroIsARuntimeError(t *testing.T) {
	chunk := mustCompile(t, "1/0")
	machine := vm.New()
	machine.Stdout = &bytes.Buffer{}
	_, err := machine.Run(chunk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestArityMismatchIsARuntimeError(t *testing.T) {
	chunk := mustCompile(t, `len("a", "b")`)
	machine := vm.New()
	machine.Stdout = &bytes.Buffer{}
	_, err := machine.Run(chunk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected")
}
