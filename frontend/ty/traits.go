package ty

import (
	"iter"

	"github.com/benbjohnson/immutable"
)

// TraitID names a trait. Traits are resolved elsewhere, here they are only identity.
type TraitID string

// TraitRef is the obligation `Substs[0]: Trait<Substs[1:]...>`
type TraitRef struct {
	Trait  TraitID
	Substs Substs
}

// Self is the implementing type, or nil if the trait ref has no arguments
func (r TraitRef) Self() Ty {
	if len(r.Substs) == 0 {
		return nil
	}
	return r.Substs[0]
}

// AssocType is an associated type declared by a trait, like Iterator::Item
type AssocType struct {
	Trait TraitID
	Name  string
}

// ProjectionTy is an associated type applied to the trait's arguments,
// Params[0] being the self type
type ProjectionTy struct {
	Assoc  AssocType
	Params Substs
}

func (p ProjectionTy) TraitRef() TraitRef {
	return TraitRef{Trait: p.Assoc.Trait, Substs: p.Params}
}

// ProjectionPredicate states that Projection normalises to Ty
type ProjectionPredicate struct {
	Projection ProjectionTy
	Ty         Ty
}

// Canonical is a value with no inference variables left in it. Every Bound(i)
// within Value satisfies i < NumVars.
type Canonical[T any] struct {
	Value   T
	NumVars int
}

// InEnvironment pairs a value with the where-clauses it is to be solved under
type InEnvironment[T any] struct {
	Value       T
	Environment Environment
}

func NewInEnvironment[T any](env Environment, value T) InEnvironment[T] {
	return InEnvironment[T]{Value: value, Environment: env}
}

// Environment is the set of where-clauses in scope for an obligation.
//
// It is persistent: With returns a new Environment and leaves the receiver untouched,
// so the same Environment can be shared by every obligation of an inference pass.
// The zero value is the empty environment.
type Environment struct {
	clauses *immutable.List[TraitRef]
}

func NewEnvironment(clauses ...TraitRef) Environment {
	return Environment{clauses: immutable.NewList(clauses...)}
}

func (e Environment) With(clauses ...TraitRef) Environment {
	list := e.clauses
	if list == nil {
		list = immutable.NewList[TraitRef]()
	}
	for _, clause := range clauses {
		list = list.Append(clause)
	}
	return Environment{clauses: list}
}

func (e Environment) Len() int {
	if e.clauses == nil {
		return 0
	}
	return e.clauses.Len()
}

func (e Environment) Clauses() iter.Seq[TraitRef] {
	return func(yield func(TraitRef) bool) {
		if e.clauses == nil {
			return
		}
		itr := e.clauses.Iterator()
		for !itr.Done() {
			_, clause := itr.Next()
			if !yield(clause) {
				return
			}
		}
	}
}
