package infer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cottand/canon/frontend/ty"
)

// newTestContext returns a context with type variables ?0 ... ?(n-1)
func newTestContext(t *testing.T, n int, opts ...Option) *InferenceContext {
	t.Helper()
	ctx := NewInferenceContext(opts...)
	for range n {
		ctx.NewTypeVar()
	}
	return ctx
}

// assign resolves ?id directly, bypassing unification
func assign(t *testing.T, ctx *InferenceContext, id ty.TypeVarID, value string) {
	t.Helper()
	require.NoError(t, ctx.Table().Assign(id, ty.MustParse(value)))
}

func traitRef(t *testing.T, src string) ty.TraitRef {
	t.Helper()
	ref, err := ty.ParseTraitRef(src)
	require.NoError(t, err)
	return ref
}

func projection(t *testing.T, src string) ty.ProjectionPredicate {
	t.Helper()
	pred, err := ty.ParseProjectionPredicate(src)
	require.NoError(t, err)
	return pred
}

// fakeSolver answers goals by their canonical rendering
type fakeSolver struct {
	answers map[string]Solution
	asked   []string
}

func newFakeSolver() *fakeSolver {
	return &fakeSolver{answers: make(map[string]Solution)}
}

func (s *fakeSolver) answer(goal string, solution Solution) *fakeSolver {
	s.answers[goal] = solution
	return s
}

func (s *fakeSolver) lookup(goal string) (Solution, bool) {
	s.asked = append(s.asked, goal)
	solution, ok := s.answers[goal]
	return solution, ok
}

func (s *fakeSolver) SolveTrait(goal ty.Canonical[ty.InEnvironment[ty.TraitRef]]) (Solution, bool) {
	return s.lookup(goal.String())
}

func (s *fakeSolver) SolveProjection(goal ty.Canonical[ty.ProjectionPredicate]) (Solution, bool) {
	return s.lookup(goal.String())
}
