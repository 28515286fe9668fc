package ilerr

import (
	"fmt"
	"go/token"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None         ErrCode = iota
	Parse        ErrCode = iota
	TypeMismatch
	UnknownVariable
	BadFixture
)

// Positioner is anything that can point at a span of source text.
// For type expressions, positions are 1-based byte offsets into the expression.
type Positioner interface {
	Pos() token.Pos
	End() token.Pos
}

// Span is the simplest Positioner
type Span struct {
	Start, Stop token.Pos
}

func (s Span) Pos() token.Pos { return s.Start }
func (s Span) End() token.Pos { return s.Stop }

type IleError interface {
	Error() string
	Code() ErrCode
	Positioner

	withStack([]byte) IleError
	getStack() []byte
}

func FormatWithCode(e IleError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E IleError](err E) IleError {
	return err.withStack(debug.Stack())
}

type Unclassified struct {
	From error
	Positioner
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Unwrap() error    { return e.From }
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewParse struct {
	Positioner
	Source        string
	ParserMessage string
	stack         []byte
}

func (e NewParse) Error() string {
	if e.Positioner == nil {
		return e.ParserMessage
	}
	return fmt.Sprintf("%s (at offset %d of %q)", e.ParserMessage, e.Pos(), e.Source)
}
func (e NewParse) Code() ErrCode    { return Parse }
func (e NewParse) getStack() []byte { return e.stack }
func (e NewParse) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// NewTypeMismatch is reported when two types could not be unified
type NewTypeMismatch struct {
	Positioner
	Expected fmt.Stringer
	Actual   fmt.Stringer
	stack    []byte
}

func (e NewTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: expected type '%v', but found a different type '%v'", e.Expected, e.Actual)
}
func (e NewTypeMismatch) Code() ErrCode    { return TypeMismatch }
func (e NewTypeMismatch) getStack() []byte { return e.stack }
func (e NewTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUnknownVariable struct {
	Positioner
	Name  string
	stack []byte
}

func (e NewUnknownVariable) Error() string {
	return fmt.Sprintf("inference variable '%s' was not declared", e.Name)
}
func (e NewUnknownVariable) Code() ErrCode    { return UnknownVariable }
func (e NewUnknownVariable) getStack() []byte { return e.stack }
func (e NewUnknownVariable) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewBadFixture struct {
	Positioner
	File   string
	Reason string
	stack  []byte
}

func (e NewBadFixture) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}
func (e NewBadFixture) Code() ErrCode    { return BadFixture }
func (e NewBadFixture) getStack() []byte { return e.stack }
func (e NewBadFixture) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}
