// Package ty holds the type values manipulated during inference, and the
// two structural rewrites everything else is built on: Fold and SubstBound.
package ty

import (
	"fmt"
)

// TypeVarID identifies a slot in the unification table
type TypeVarID uint32

type VarKind uint8

const (
	TypeVar VarKind = iota
	IntVar
	FloatVar
)

func (k VarKind) String() string {
	switch k {
	case TypeVar:
		return "type"
	case IntVar:
		return "int"
	case FloatVar:
		return "float"
	}
	return fmt.Sprintf("VarKind(%d)", uint8(k))
}

// Ty is a (possibly partially inferred) type.
//
// The set of implementations is closed: Apply, Projection, Param, Bound,
// InferTy and Unknown.
type Ty interface {
	fmt.Stringer
	Hash() uint64

	// doMap returns a copy of the type where each immediate child
	// has been replaced by f(child)
	doMap(f func(Ty) Ty) Ty
	isTy()
}

var (
	_ Ty = Apply{}
	_ Ty = Projection{}
	_ Ty = Param{}
	_ Ty = Bound(0)
	_ Ty = InferTy{}
	_ Ty = Unknown{}
)

// Substs is an ordered list of type arguments
type Substs []Ty

// Apply is a type constructor applied to parameters, like Vec<i32> or (A, B)
type Apply struct {
	Ctor   TypeCtor
	Params Substs
}

func (Apply) isTy() {}

func (t Apply) doMap(f func(Ty) Ty) Ty {
	if len(t.Params) == 0 {
		return t
	}
	return Apply{Ctor: t.Ctor, Params: t.Params.mapAll(f)}
}

// Projection is an associated type of some trait, like <T as Iterator>::Item
type Projection struct {
	ProjectionTy
}

func (Projection) isTy() {}

func (t Projection) doMap(f func(Ty) Ty) Ty {
	return Projection{ProjectionTy{Assoc: t.Assoc, Params: t.Params.mapAll(f)}}
}

// Param is a generic parameter of the item being inferred. A named parameter
// is identified by its name alone, Idx being only the order it was met in.
type Param struct {
	Idx  uint32
	Name string
}

func (Param) isTy()                 {}
func (t Param) doMap(func(Ty) Ty) Ty { return t }

// Bound is a positional placeholder, only meaningful inside a Canonical value,
// where it indexes the free variables of that value
type Bound uint32

func (Bound) isTy()                 {}
func (t Bound) doMap(func(Ty) Ty) Ty { return t }

// InferTy is an unresolved inference variable, tagged with its kind.
// Two InferTy are the same variable only if both kind and ID match.
type InferTy struct {
	Kind VarKind
	ID   TypeVarID
}

func NewTypeVar(id TypeVarID) InferTy  { return InferTy{Kind: TypeVar, ID: id} }
func NewIntVar(id TypeVarID) InferTy   { return InferTy{Kind: IntVar, ID: id} }
func NewFloatVar(id TypeVarID) InferTy { return InferTy{Kind: FloatVar, ID: id} }

func (InferTy) isTy()                 {}
func (t InferTy) doMap(func(Ty) Ty) Ty { return t }

// WithID keeps the kind of the variable but points it at another slot
func (t InferTy) WithID(id TypeVarID) InferTy {
	return InferTy{Kind: t.Kind, ID: id}
}

// FallbackValue is the concrete type a variable of this kind degrades to
// when it cannot be resolved, or when it turns out to be recursive.
//
//   - type variables fall back to Unknown
//   - integer variables fall back to i32
//   - float variables fall back to f64
func (t InferTy) FallbackValue() Ty {
	switch t.Kind {
	case IntVar:
		return Int("i32")
	case FloatVar:
		return Float("f64")
	default:
		return Unknown{}
	}
}

// Unknown is a type we gave up on
type Unknown struct{}

func (Unknown) isTy()                 {}
func (t Unknown) doMap(func(Ty) Ty) Ty { return t }

func (s Substs) mapAll(f func(Ty) Ty) Substs {
	if s == nil {
		return nil
	}
	mapped := make(Substs, len(s))
	for i, t := range s {
		mapped[i] = f(t)
	}
	return mapped
}

// Fold rewrites t bottom-up: children are folded first, the node is rebuilt
// from the rewritten children, and f is applied to the rebuilt node.
// Every node is passed to f exactly once.
func Fold(t Ty, f func(Ty) Ty) Ty {
	var visit func(Ty) Ty
	visit = func(t Ty) Ty {
		return f(t.doMap(visit))
	}
	return visit(t)
}

// SubstBound replaces each Bound(i) inside t by replacements[i].
//
// Indexes past the end of replacements are left as they are.
func SubstBound(t Ty, replacements Substs) Ty {
	return Fold(t, func(t Ty) Ty {
		if b, ok := t.(Bound); ok && int(b) < len(replacements) {
			return replacements[b]
		}
		return t
	})
}

// Equal is structural equality over types
func Equal(a, b Ty) bool {
	switch a := a.(type) {
	case Apply:
		b, ok := b.(Apply)
		return ok && a.Ctor == b.Ctor && SubstsEqual(a.Params, b.Params)
	case Projection:
		b, ok := b.(Projection)
		return ok && a.Assoc == b.Assoc && SubstsEqual(a.Params, b.Params)
	case Param:
		b, ok := b.(Param)
		if !ok || a.Name != b.Name {
			return false
		}
		return a.Name != "" || a.Idx == b.Idx
	case nil:
		return b == nil
	default:
		// the remaining variants are comparable
		return a == b
	}
}

func SubstsEqual(a, b Substs) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
