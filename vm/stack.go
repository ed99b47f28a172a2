package vm

import "github.com/Verseth/miniruby/value"

// stack is a simple LIFO of runtime values. It grows as needed and
// never shrinks its backing array, since chunks are short-lived.
type stack []value.Value

func (s *stack) push(v value.Value) {
	*s = append(*s, v)
}

func (s *stack) pop() (value.Value, bool) {
	if len(*s) == 0 {
		return value.Nil, false
	}
	idx := len(*s) - 1
	v := (*s)[idx]
	*s = (*s)[:idx]
	return v, true
}

func (s *stack) peek() (value.Value, bool) {
	if len(*s) == 0 {
		return value.Nil, false
	}
	return (*s)[len(*s)-1], true
}

func (s *stack) isEmpty() bool {
	return len(*s) == 0
}
