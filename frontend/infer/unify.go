package infer

import (
	"slices"

	"github.com/cottand/canon/frontend/ilerr"
	"github.com/cottand/canon/frontend/ty"
)

// Unify makes a and b equal, resolving inference variables as needed.
// It reports whether that was possible. On failure, some of the variables
// may already have been resolved.
//
// There is no occurs check: unifying ?0 with Vec<?0> succeeds and produces
// a recursive type, which canonicalization and resolution then defuse.
func (ctx *InferenceContext) Unify(a, b ty.Ty) bool {
	return ctx.unifyInner(a, b, 0)
}

func (ctx *InferenceContext) unifyInner(a, b ty.Ty, depth int) bool {
	if depth > ctx.maxUnifyDepth {
		ctx.addFailure("unification of %v and %v exceeded depth %d", a, b, ctx.maxUnifyDepth)
		return false
	}
	if ty.Equal(a, b) {
		return true
	}
	a, b = ctx.ResolveTyShallow(a), ctx.ResolveTyShallow(b)

	switch a := a.(type) {
	case ty.Apply:
		if b, ok := b.(ty.Apply); ok && a.Ctor == b.Ctor {
			return ctx.unifySubsts(a.Params, b.Params, depth+1)
		}
	case ty.Projection:
		if b, ok := b.(ty.Projection); ok && a.Assoc == b.Assoc {
			return ctx.unifySubsts(a.Params, b.Params, depth+1)
		}
	}
	return ctx.unifyTrivial(a, b)
}

func (ctx *InferenceContext) unifySubsts(a, b ty.Substs, depth int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !ctx.unifyInner(a[i], b[i], depth) {
			return false
		}
	}
	return true
}

// unifyTrivial handles the cases that do not need to look inside a and b
func (ctx *InferenceContext) unifyTrivial(a, b ty.Ty) bool {
	if _, ok := a.(ty.Unknown); ok {
		return true
	}
	if _, ok := b.(ty.Unknown); ok {
		return true
	}
	varA, aIsVar := a.(ty.InferTy)
	varB, bIsVar := b.(ty.InferTy)

	switch {
	case aIsVar && bIsVar && varA.Kind == varB.Kind:
		if err := ctx.table.Union(varA.ID, varB.ID); err != nil {
			ctx.addFailure("union of %v and %v: %v", varA, varB, err)
			return false
		}
		return true
	case aIsVar && accepts(varA, b):
		return ctx.assign(varA, b)
	case bIsVar && accepts(varB, a):
		return ctx.assign(varB, a)
	}
	return false
}

// accepts reports whether a variable of v's kind may be resolved to other
func accepts(v ty.InferTy, other ty.Ty) bool {
	switch v.Kind {
	case ty.TypeVar:
		return true
	case ty.IntVar:
		apply, ok := other.(ty.Apply)
		return ok && apply.Ctor.IsInt()
	case ty.FloatVar:
		apply, ok := other.(ty.Apply)
		return ok && apply.Ctor.IsFloat()
	}
	return false
}

func (ctx *InferenceContext) assign(v ty.InferTy, value ty.Ty) bool {
	if err := ctx.table.Assign(v.ID, value); err != nil {
		ctx.addFailure("assigning %v to %v: %v", value, v, err)
		return false
	}
	ctx.section("unify").Debug("resolved variable", "var", v, "to", value)
	return true
}

// Expect unifies actual with expected, recording a type mismatch in Errors if
// they do not unify
func (ctx *InferenceContext) Expect(expected, actual ty.Ty) bool {
	if ctx.Unify(expected, actual) {
		return true
	}
	ctx.AddError(ilerr.New(ilerr.NewTypeMismatch{
		Expected: ctx.ResolveTyAsPossible(expected),
		Actual:   ctx.ResolveTyAsPossible(actual),
	}))
	return false
}

// CouldUnify reports whether a and b unify, without keeping any of the resulting bindings
func (ctx *InferenceContext) CouldUnify(a, b ty.Ty) bool {
	snapshot := ctx.Snapshot()
	defer ctx.RollbackTo(snapshot)
	failures := len(ctx.Failures)
	ok := ctx.Unify(a, b)
	ctx.Failures = ctx.Failures[:failures]
	return ok
}

// ResolveTyShallow follows t while it is a resolved inference variable, so
// that the result is either a non-variable type or an unresolved variable.
func (ctx *InferenceContext) ResolveTyShallow(t ty.Ty) ty.Ty {
	var seen []ty.TypeVarID
	for {
		v, ok := t.(ty.InferTy)
		if !ok {
			return t
		}
		if slices.Contains(seen, v.ID) {
			ctx.addFailure("inference variable %v resolves to itself", v)
			return t
		}
		known, ok := ctx.table.ProbeValue(v.ID)
		if !ok {
			return t
		}
		seen = append(seen, v.ID)
		t = known
	}
}

// ResolveTyAsPossible replaces every resolved inference variable in t by its
// value, recursively. Unresolved variables are left in place.
func (ctx *InferenceContext) ResolveTyAsPossible(t ty.Ty) ty.Ty {
	return ctx.resolve(nil, t, false)
}

// ResolveTyCompletely is ResolveTyAsPossible, but unresolved variables are
// replaced with the fallback value of their kind.
func (ctx *InferenceContext) ResolveTyCompletely(t ty.Ty) ty.Ty {
	return ctx.resolve(nil, t, true)
}

func (ctx *InferenceContext) resolve(stack []ty.TypeVarID, t ty.Ty, fallback bool) ty.Ty {
	return ty.Fold(t, func(t ty.Ty) ty.Ty {
		v, ok := t.(ty.InferTy)
		if !ok {
			return t
		}
		if slices.Contains(stack, v.ID) {
			ctx.noteRecursive(v)
			return v.FallbackValue()
		}
		known, ok := ctx.table.ProbeValue(v.ID)
		if !ok {
			if fallback {
				return v.FallbackValue()
			}
			return t
		}
		return ctx.resolve(append(stack, v.ID), known, fallback)
	})
}

func (ctx *InferenceContext) noteRecursive(v ty.InferTy) {
	ctx.recursiveTypes++
	ctx.logger.Warn("recursive type, using fallback", "section", "canonicalize", "var", v, "fallback", v.FallbackValue())
}
