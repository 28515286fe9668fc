package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottand/canon/frontend/ty"
	"github.com/cottand/canon/util"
)

func TestRegisterObligationDeduplicates(t *testing.T) {
	ctx := newTestContext(t, 2)

	ctx.RegisterObligation(TraitObligation{traitRef(t, "?0: Clone")})
	ctx.RegisterObligation(TraitObligation{traitRef(t, "?0: Clone")})
	ctx.RegisterObligation(TraitObligation{traitRef(t, "?1: Clone")})
	ctx.RegisterObligation(ProjectionObligation{projection(t, "<?0 as Deref>::Target == ?1")})
	ctx.RegisterObligation(ProjectionObligation{projection(t, "<?0 as Deref>::Target == ?1")})

	assert.Equal(t, []string{
		"?0: Clone",
		"?1: Clone",
		"<?0 as Deref>::Target == ?1",
	}, util.Strings(ctx.Obligations()))
}

// collidingObligation hashes like every other collidingObligation
type collidingObligation string

func (o collidingObligation) String() string { return string(o) }
func (collidingObligation) Hash() uint64     { return 7 }
func (collidingObligation) isObligation()    {}

func TestRegisterObligationKeepsHashCollisions(t *testing.T) {
	ctx := newTestContext(t, 0)

	ctx.RegisterObligation(collidingObligation("a"))
	ctx.RegisterObligation(collidingObligation("b"))
	ctx.RegisterObligation(collidingObligation("c"))
	ctx.RegisterObligation(collidingObligation("a"))
	ctx.RegisterObligation(collidingObligation("c"))

	assert.Equal(t, []string{"a", "b", "c"}, util.Strings(ctx.Obligations()))
}

func TestObligationsEqual(t *testing.T) {
	testCases := []struct {
		name  string
		a, b  Obligation
		equal bool
	}{
		{"same trait", TraitObligation{traitRef(t, "Vec<?0>: Clone")}, TraitObligation{traitRef(t, "Vec<?0>: Clone")}, true},
		{"different self", TraitObligation{traitRef(t, "?0: Clone")}, TraitObligation{traitRef(t, "?1: Clone")}, false},
		{"different trait", TraitObligation{traitRef(t, "?0: Clone")}, TraitObligation{traitRef(t, "?0: Copy")}, false},
		{"same projection", ProjectionObligation{projection(t, "<?0 as Deref>::Target == ?1")}, ProjectionObligation{projection(t, "<?0 as Deref>::Target == ?1")}, true},
		{"different normalised type", ProjectionObligation{projection(t, "<?0 as Deref>::Target == ?1")}, ProjectionObligation{projection(t, "<?0 as Deref>::Target == ?0")}, false},
		{"trait and projection", TraitObligation{traitRef(t, "?0: Deref")}, ProjectionObligation{projection(t, "<?0 as Deref>::Target == ?1")}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.equal, obligationsEqual(tc.a, tc.b))
			assert.Equal(t, tc.equal, obligationsEqual(tc.b, tc.a))
		})
	}
}

func TestResolveObligationsAsPossible(t *testing.T) {
	testCases := []struct {
		name     string
		solution *Solution
		// resolved is ?0 after solving
		resolved string
		pending  []string
	}{
		{
			name:     "unique solution is applied and discharged",
			solution: &Solution{Subst: ty.Canonical[ty.Substs]{Value: ty.Substs{ty.Int("i32")}}},
			resolved: "i32",
			pending:  nil,
		},
		{
			name: "definite guidance is applied but kept",
			solution: &Solution{
				Subst:     ty.Canonical[ty.Substs]{Value: ty.Substs{ty.MustParse("Vec<^0>")}, NumVars: 1},
				Ambiguous: true,
				Guidance:  GuidanceDefinite,
			},
			resolved: "Vec<?1>",
			pending:  []string{"?0: Clone"},
		},
		{
			name: "suggested guidance is ignored",
			solution: &Solution{
				Subst:     ty.Canonical[ty.Substs]{Value: ty.Substs{ty.Int("u8")}},
				Ambiguous: true,
				Guidance:  GuidanceSuggested,
			},
			resolved: "?0",
			pending:  []string{"?0: Clone"},
		},
		{
			name:     "no solution",
			solution: nil,
			resolved: "?0",
			pending:  []string{"?0: Clone"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newTestContext(t, 1)
			solver := newFakeSolver()
			if tc.solution != nil {
				solver.answer("for<1> ^0: Clone", *tc.solution)
			}
			ctx.RegisterObligation(TraitObligation{traitRef(t, "?0: Clone")})

			ctx.ResolveObligationsAsPossible(solver)

			assert.Equal(t, tc.resolved, ctx.ResolveTyAsPossible(ty.NewTypeVar(0)).String())
			assert.Equal(t, tc.pending, util.Strings(ctx.Obligations()))
			assert.Equal(t, []string{"for<1> ^0: Clone"}, solver.asked)
			assert.Empty(t, ctx.Failures)
		})
	}
}

func TestResolveObligationsLoopsUntilNothingChanges(t *testing.T) {
	ctx := newTestContext(t, 2)
	solver := newFakeSolver().
		answer("for<0> i32: Clone", UniqueSolution(0)).
		answer("for<2> ^0: Wrap<^1>", UniqueSolution(0, ty.MustParse("Vec<i32>"), ty.Int("i32")))

	ctx.RegisterObligation(TraitObligation{traitRef(t, "?1: Clone")})
	ctx.RegisterObligation(TraitObligation{traitRef(t, "?0: Wrap<?1>")})

	ctx.ResolveObligationsAsPossible(solver)

	assert.Empty(t, ctx.Obligations())
	assert.Equal(t, []string{
		"for<1> ^0: Clone",
		"for<2> ^0: Wrap<^1>",
		"for<0> i32: Clone",
	}, solver.asked)
	assert.Equal(t, "(Vec<i32>, i32)", ctx.ResolveTyAsPossible(ty.MustParse("(?0, ?1)")).String())
}

func TestTraitObligationsAreSolvedInTheEnvironment(t *testing.T) {
	env := ty.NewEnvironment(traitRef(t, "$T: Clone"))
	ctx := newTestContext(t, 1, WithEnvironment(env))
	solver := newFakeSolver()

	ctx.RegisterObligation(TraitObligation{traitRef(t, "Vec<?0>: Clone")})
	ctx.ResolveObligationsAsPossible(solver)

	assert.Equal(t, []string{"for<1> Vec<^0>: Clone where $T: Clone"}, solver.asked)
}

func TestNormalizeProjectionTy(t *testing.T) {
	ctx := newTestContext(t, 1)
	require.True(t, ctx.Unify(ty.NewTypeVar(0), ty.MustParse("Vec<u16>")))
	solver := newFakeSolver().
		answer("for<1> <Vec<u16> as IntoIterator>::Item == ^0", UniqueSolution(0, ty.Int("u16")))

	proj := ty.MustParse("<?0 as IntoIterator>::Item").(ty.Projection)
	normalized := ctx.NormalizeProjectionTy(proj.ProjectionTy)

	require.Len(t, ctx.Obligations(), 1)
	assert.Equal(t, "?1", normalized.String())

	ctx.ResolveObligationsAsPossible(solver)

	assert.Empty(t, ctx.Obligations())
	assert.Equal(t, "u16", ctx.ResolveTyAsPossible(normalized).String())
}
