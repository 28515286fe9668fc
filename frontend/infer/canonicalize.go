package infer

import (
	"log/slog"
	"slices"

	"github.com/cottand/canon/frontend/ty"
	"github.com/cottand/canon/util"
)

// Canonicalizer replaces the live inference variables of a value by Bound
// placeholders, so the value can be handed to a solver that knows nothing
// about this pass's unification table.
//
// A Canonicalizer borrows its InferenceContext. Every Canonicalize* call
// starts over with no free variables, and the Canonicalized result does not
// reference the context.
type Canonicalizer struct {
	ctx *InferenceContext
	// freeVars[i] is the variable that became Bound(i). Entries are class representatives.
	freeVars []ty.InferTy
	// varStack holds the variables whose resolved values are being canonicalized,
	// to detect recursive types instead of overflowing the call stack
	varStack util.Stack[ty.TypeVarID]
	logger   *slog.Logger
}

// Canonicalized is a canonical value together with the inference variables
// its Bound placeholders stand for
type Canonicalized[T any] struct {
	Value    ty.Canonical[T]
	freeVars []ty.InferTy
}

func (ctx *InferenceContext) Canonicalizer() *Canonicalizer {
	return &Canonicalizer{ctx: ctx, logger: ctx.section("canonicalize")}
}

// add returns the position of freeVar, appending it if it is new.
// Free-variable lists are short, so this is a linear scan.
func (c *Canonicalizer) add(freeVar ty.InferTy) int {
	if i := slices.Index(c.freeVars, freeVar); i >= 0 {
		return i
	}
	c.freeVars = append(c.freeVars, freeVar)
	return len(c.freeVars) - 1
}

func (c *Canonicalizer) doCanonicalizeTy(t ty.Ty) ty.Ty {
	return ty.Fold(t, func(t ty.Ty) ty.Ty {
		v, ok := t.(ty.InferTy)
		if !ok {
			return t
		}
		if c.varStack.Contains(v.ID) {
			c.ctx.noteRecursive(v)
			return v.FallbackValue()
		}
		if known, ok := c.ctx.table.ProbeValue(v.ID); ok {
			c.varStack.Push(v.ID)
			result := c.doCanonicalizeTy(known)
			c.varStack.Pop()
			return result
		}
		root := c.ctx.table.Find(v.ID)
		return ty.Bound(c.add(v.WithID(root)))
	})
}

func (c *Canonicalizer) doCanonicalizeSubsts(substs ty.Substs) ty.Substs {
	if substs == nil {
		return nil
	}
	result := make(ty.Substs, len(substs))
	for i, t := range substs {
		result[i] = c.doCanonicalizeTy(t)
	}
	return result
}

func (c *Canonicalizer) doCanonicalizeTraitRef(ref ty.TraitRef) ty.TraitRef {
	return ty.TraitRef{Trait: ref.Trait, Substs: c.doCanonicalizeSubsts(ref.Substs)}
}

func (c *Canonicalizer) doCanonicalizeProjectionTy(p ty.ProjectionTy) ty.ProjectionTy {
	return ty.ProjectionTy{Assoc: p.Assoc, Params: c.doCanonicalizeSubsts(p.Params)}
}

func (c *Canonicalizer) doCanonicalizeProjectionPredicate(p ty.ProjectionPredicate) ty.ProjectionPredicate {
	// the normalised-to type is visited before the projection
	t := c.doCanonicalizeTy(p.Ty)
	projection := c.doCanonicalizeProjectionTy(p.Projection)
	return ty.ProjectionPredicate{Projection: projection, Ty: t}
}

// intoCanonicalized hands the free variables over to the result and resets c
func intoCanonicalized[T any](c *Canonicalizer, result T) Canonicalized[T] {
	freeVars := c.freeVars
	c.freeVars = nil
	c.logger.Debug("canonicalized", "value", result, "freeVars", len(freeVars))
	return Canonicalized[T]{
		Value:    ty.Canonical[T]{Value: result, NumVars: len(freeVars)},
		freeVars: freeVars,
	}
}

func (c *Canonicalizer) CanonicalizeTy(t ty.Ty) Canonicalized[ty.Ty] {
	return intoCanonicalized(c, c.doCanonicalizeTy(t))
}

// CanonicalizeTraitRef canonicalizes the trait ref; the environment is passed through as is
func (c *Canonicalizer) CanonicalizeTraitRef(ref ty.InEnvironment[ty.TraitRef]) Canonicalized[ty.InEnvironment[ty.TraitRef]] {
	result := c.doCanonicalizeTraitRef(ref.Value)
	return intoCanonicalized(c, ty.InEnvironment[ty.TraitRef]{
		Value:       result,
		Environment: ref.Environment,
	})
}

func (c *Canonicalizer) CanonicalizeProjection(p ty.ProjectionPredicate) Canonicalized[ty.ProjectionPredicate] {
	return intoCanonicalized(c, c.doCanonicalizeProjectionPredicate(p))
}

// FreeVars returns the variables Bound(0), Bound(1)... stand for
func (c Canonicalized[T]) FreeVars() []ty.InferTy {
	return slices.Clone(c.freeVars)
}

// DecanonicalizeTy turns the Bound placeholders of t back into the inference
// variables they were created from. Placeholders past the free variables of
// this value belong to some other canonical scope and are left untouched.
func (c Canonicalized[T]) DecanonicalizeTy(t ty.Ty) ty.Ty {
	return ty.Fold(t, func(t ty.Ty) ty.Ty {
		if b, ok := t.(ty.Bound); ok && int(b) < len(c.freeVars) {
			return c.freeVars[b]
		}
		return t
	})
}

// ApplySolution unifies each free variable of this value with the solver's
// answer for it. The solution may introduce variables of its own: each of its
// NumVars placeholders becomes a fresh type variable of ctx.
func (c Canonicalized[T]) ApplySolution(ctx *InferenceContext, solution ty.Canonical[ty.Substs]) {
	newVars := make(ty.Substs, solution.NumVars)
	for i := range newVars {
		newVars[i] = ctx.NewTypeVar()
	}
	if len(solution.Value) != len(c.freeVars) {
		ctx.addFailure("solution %v has %d types for %d free variables", solution, len(solution.Value), len(c.freeVars))
	}
	for i, freeVar := range c.freeVars {
		if i >= len(solution.Value) {
			break
		}
		answer := ty.SubstBound(solution.Value[i], newVars)
		if !ctx.Unify(freeVar, answer) {
			ctx.addFailure("could not unify %v with the solution %v", freeVar, answer)
		}
	}
}
