package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type name string

func (n name) String() string { return string(n) }

func TestStack(t *testing.T) {
	var s Stack[int]
	_, ok := s.Pop()
	assert.False(t, ok)

	s.Push(1)
	s.Push(2)
	assert.True(t, s.Contains(1))
	assert.Equal(t, 2, s.Len())

	top, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, 2, top)
	assert.False(t, s.Contains(2))
}

func TestJoinString(t *testing.T) {
	assert.Equal(t, "a, b", JoinString([]name{"a", "b"}, ", "))
	assert.Equal(t, "", JoinString([]name{}, ", "))
	assert.Equal(t, []string{"a", "b"}, Strings([]name{"a", "b"}))
	assert.Nil(t, Strings([]name{}))
}
