package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a Chunk's instruction stream as one
// human-readable line per instruction, with LOAD_VALUE operands
// resolved against the value pool. It exists purely as a debugging aid
// alongside the core compile/run pipeline.
func Disassemble(c *Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s (%s) ==\n", c.Name, c.Filename)
	offset := 0
	for offset < len(c.Instructions) {
		offset = disassembleInstruction(&b, c, offset)
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, c *Chunk, offset int) int {
	op := Opcode(c.Instructions[offset])
	def, ok := Get(op)
	if !ok {
		fmt.Fprintf(b, "%04d UNKNOWN_OPCODE %d\n", offset, op)
		return offset + 1
	}

	if !def.HasOperand {
		fmt.Fprintf(b, "%04d %s\n", offset, def.Name)
		return offset + 1
	}

	operand := byte(0)
	if offset+1 < len(c.Instructions) {
		operand = c.Instructions[offset+1]
	}

	switch op {
	case LOAD_VALUE, CALL:
		if int(operand) < len(c.ValuePool) {
			fmt.Fprintf(b, "%04d %-14s %4d  ; %s\n", offset, def.Name, operand, c.ValuePool[operand].Inspect())
		} else {
			fmt.Fprintf(b, "%04d %-14s %4d  ; <out of range>\n", offset, def.Name, operand)
		}
	case JUMP, JUMP_UNLESS:
		fmt.Fprintf(b, "%04d %-14s %4d  -> %d\n", offset, def.Name, operand, offset+2+int(operand))
	case LOOP:
		fmt.Fprintf(b, "%04d %-14s %4d  -> %d\n", offset, def.Name, operand, offset+2-int(operand))
	default:
		fmt.Fprintf(b, "%04d %-14s %4d\n", offset, def.Name, operand)
	}
	return offset + 2
}
