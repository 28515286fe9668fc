package util

import "slices"

// Stack is a LIFO of comparable items. The zero value is an empty stack.
type Stack[A comparable] struct {
	items []A
}

func (s *Stack[A]) Push(v A) {
	s.items = append(s.items, v)
}

func (s *Stack[A]) Pop() (ret A, ok bool) {
	if len(s.items) == 0 {
		return ret, false
	}
	last := len(s.items) - 1
	ret = s.items[last]
	s.items = s.items[:last]
	return ret, true
}

func (s *Stack[A]) Contains(v A) bool {
	return slices.Contains(s.items, v)
}

func (s *Stack[A]) Len() int {
	return len(s.items)
}
