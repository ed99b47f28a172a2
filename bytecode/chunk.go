package bytecode

import (
	"github.com/Verseth/miniruby/span"
	"github.com/Verseth/miniruby/value"
)

// Chunk is a compiled unit of MiniRuby bytecode: a flat instruction
// stream plus the deduplicated pool of constant values it references.
// A Chunk is produced once by the compiler and never mutated again
// after compilation finishes.
type Chunk struct {
	Name         string
	Filename     string
	Span         span.Span
	Instructions []byte
	ValuePool    []value.Value
}

// New returns an empty Chunk ready for a compiler to emit into.
func New(name, filename string, sp span.Span) *Chunk {
	return &Chunk{Name: name, Filename: filename, Span: sp}
}

// Length returns the number of bytes emitted so far.
func (c *Chunk) Length() int {
	return len(c.Instructions)
}

// PushByte appends a single raw byte, returning its index.
func (c *Chunk) PushByte(b byte) int {
	c.Instructions = append(c.Instructions, b)
	return len(c.Instructions) - 1
}

// PushOpcode appends an opcode byte, returning its index.
func (c *Chunk) PushOpcode(op Opcode) int {
	return c.PushByte(byte(op))
}

// PatchByte overwrites the byte at offset, used to back-patch a jump
// operand once its target is known.
func (c *Chunk) PatchByte(offset int, b byte) {
	c.Instructions[offset] = b
}

// AddValue interns v into the value pool, returning its index. An
// existing equal entry is reused rather than duplicated. index is -1
// when the pool is already at MaxValuePool and v is not already present.
func (c *Chunk) AddValue(v value.Value) int {
	for i, existing := range c.ValuePool {
		if existing.Equal(v) && existing.Kind == v.Kind {
			return i
		}
	}
	if len(c.ValuePool) >= MaxValuePool {
		return -1
	}
	c.ValuePool = append(c.ValuePool, v)
	return len(c.ValuePool) - 1
}
