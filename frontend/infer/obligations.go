package infer

import (
	"fmt"

	"github.com/cottand/canon/frontend/ty"
)

// Obligation is something the solver has to prove for inference to succeed
type Obligation interface {
	fmt.Stringer
	Hash() uint64
	isObligation()
}

// TraitObligation requires a trait to be implemented
type TraitObligation struct {
	ty.TraitRef
}

// ProjectionObligation requires an associated type to normalise to a type
type ProjectionObligation struct {
	ty.ProjectionPredicate
}

func (TraitObligation) isObligation()      {}
func (ProjectionObligation) isObligation() {}

func (o TraitObligation) Hash() uint64      { return o.TraitRef.Hash() }
func (o ProjectionObligation) Hash() uint64 { return ^o.ProjectionPredicate.Hash() }

type Guidance uint8

const (
	// GuidanceUnknown means the solver has no idea what the variables should be
	GuidanceUnknown Guidance = iota
	// GuidanceDefinite means the substitution holds in every solution
	GuidanceDefinite
	// GuidanceSuggested means the substitution is a good guess
	GuidanceSuggested
)

func (g Guidance) String() string {
	switch g {
	case GuidanceDefinite:
		return "definite"
	case GuidanceSuggested:
		return "suggested"
	}
	return "unknown"
}

// Solution is the solver's answer to a canonical goal. Subst holds one type
// per free variable of the goal, and may itself have NumVars free variables.
type Solution struct {
	Subst ty.Canonical[ty.Substs]
	// Ambiguous solutions only constrain the goal's variables as far as Guidance says
	Ambiguous bool
	Guidance  Guidance
}

func UniqueSolution(numVars int, substs ...ty.Ty) Solution {
	return Solution{Subst: ty.Canonical[ty.Substs]{Value: substs, NumVars: numVars}}
}

// Solver proves canonical goals. It knows nothing about inference variables;
// returning false means no solution exists, which is not an error.
type Solver interface {
	SolveTrait(goal ty.Canonical[ty.InEnvironment[ty.TraitRef]]) (Solution, bool)
	SolveProjection(goal ty.Canonical[ty.ProjectionPredicate]) (Solution, bool)
}

// RegisterObligation queues o to be solved by ResolveObligationsAsPossible.
// Registering an obligation a second time has no effect.
func (ctx *InferenceContext) RegisterObligation(o Obligation) {
	if !ctx.registered.Insert(o) && ctx.seen(o) {
		return
	}
	ctx.section("obligations").Debug("registered obligation", "obligation", o)
	ctx.obligations = append(ctx.obligations, o)
}

// seen is called when o's hash is already registered. It reports whether an
// equal obligation was registered, and remembers o as collided otherwise.
func (ctx *InferenceContext) seen(o Obligation) bool {
	hash := o.Hash()
	for registered := range ctx.registered.Items() {
		if registered.Hash() == hash && obligationsEqual(registered, o) {
			return true
		}
	}
	for _, collided := range ctx.collided {
		if obligationsEqual(collided, o) {
			return true
		}
	}
	ctx.section("obligations").Debug("obligation hash collision", "obligation", o, "hash", hash)
	ctx.collided = append(ctx.collided, o)
	return false
}

func obligationsEqual(a, b Obligation) bool {
	switch a := a.(type) {
	case TraitObligation:
		b, ok := b.(TraitObligation)
		return ok && a.Trait == b.Trait && ty.SubstsEqual(a.Substs, b.Substs)
	case ProjectionObligation:
		b, ok := b.(ProjectionObligation)
		return ok && a.Projection.Assoc == b.Projection.Assoc &&
			ty.SubstsEqual(a.Projection.Params, b.Projection.Params) &&
			ty.Equal(a.Ty, b.Ty)
	}
	// any other obligation is comparable
	return a == b
}

// Obligations are the obligations not solved yet
func (ctx *InferenceContext) Obligations() []Obligation {
	return append([]Obligation(nil), ctx.obligations...)
}

// NormalizeProjectionTy returns a type variable standing for the normalised form
// of p, and registers the obligation that will resolve it
func (ctx *InferenceContext) NormalizeProjectionTy(p ty.ProjectionTy) ty.Ty {
	v := ctx.NewTypeVar()
	ctx.RegisterObligation(ProjectionObligation{ty.ProjectionPredicate{Projection: p, Ty: v}})
	return v
}

// ResolveObligationsAsPossible asks solver about every pending obligation and
// applies what it learns. Obligations with a unique solution are discharged.
// The others stay pending, though a definite ambiguous answer is still applied.
//
// Solving one obligation may make another solvable, so this loops until a
// round discharges nothing.
func (ctx *InferenceContext) ResolveObligationsAsPossible(solver Solver) {
	logger := ctx.section("obligations")
	for round := 0; ; round++ {
		pending := ctx.obligations
		ctx.obligations = nil
		for _, o := range pending {
			if ctx.solveObligation(solver, o) {
				logger.Debug("discharged obligation", "obligation", o, "round", round)
				continue
			}
			ctx.obligations = append(ctx.obligations, o)
		}
		if len(ctx.obligations) == len(pending) {
			return
		}
	}
}

// solveObligation reports whether o was discharged
func (ctx *InferenceContext) solveObligation(solver Solver, o Obligation) bool {
	switch o := o.(type) {
	case TraitObligation:
		canonicalized := ctx.Canonicalizer().CanonicalizeTraitRef(ty.NewInEnvironment(ctx.env, o.TraitRef))
		solution, ok := solver.SolveTrait(canonicalized.Value)
		return applyOutcome(ctx, canonicalized, solution, ok)
	case ProjectionObligation:
		canonicalized := ctx.Canonicalizer().CanonicalizeProjection(o.ProjectionPredicate)
		solution, ok := solver.SolveProjection(canonicalized.Value)
		return applyOutcome(ctx, canonicalized, solution, ok)
	}
	ctx.addFailure("unexpected obligation %T", o)
	return false
}

func applyOutcome[T any](ctx *InferenceContext, goal Canonicalized[T], solution Solution, ok bool) bool {
	switch {
	case !ok:
		ctx.section("obligations").Debug("no solution", "goal", goal.Value)
		return false
	case !solution.Ambiguous:
		goal.ApplySolution(ctx, solution.Subst)
		return true
	case solution.Guidance == GuidanceDefinite:
		goal.ApplySolution(ctx, solution.Subst)
		return false
	}
	return false
}
