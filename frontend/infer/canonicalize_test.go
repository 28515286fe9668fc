package infer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cottand/canon/frontend/ty"
	"github.com/cottand/canon/util"
)

func TestCanonicalizeTy(t *testing.T) {
	testCases := []struct {
		name      string
		vars      int
		setup     func(t *testing.T, ctx *InferenceContext)
		input     string
		expected  string
		freeVars  []string
		recursive int
	}{
		{
			name:     "no inference variables",
			input:    "Vec<i32>",
			expected: "for<0> Vec<i32>",
		},
		{
			name:     "unresolved variable",
			vars:     1,
			input:    "Vec<?0>",
			expected: "for<1> Vec<^0>",
			freeVars: []string{"?0"},
		},
		{
			name: "resolved variable is replaced by its value",
			vars: 2,
			setup: func(t *testing.T, ctx *InferenceContext) {
				assign(t, ctx, 0, "Vec<?1>")
			},
			input:    "?0",
			expected: "for<1> Vec<^0>",
			freeVars: []string{"?1"},
		},
		{
			name:     "repeated variables share a placeholder",
			vars:     2,
			input:    "(?0, ?1, ?0)",
			expected: "for<2> (^0, ^1, ^0)",
			freeVars: []string{"?0", "?1"},
		},
		{
			name:     "placeholders are numbered by first appearance",
			vars:     3,
			input:    "fn(?2, ?0) -> ?1",
			expected: "for<3> fn(^0, ^1) -> ^2",
			freeVars: []string{"?2", "?0", "?1"},
		},
		{
			name: "unified variables become their representative",
			vars: 2,
			setup: func(t *testing.T, ctx *InferenceContext) {
				require.True(t, ctx.Unify(ty.NewTypeVar(0), ty.NewTypeVar(1)))
			},
			input:    "(?1, ?0)",
			expected: "for<1> (^0, ^0)",
			freeVars: []string{"?0"},
		},
		{
			name:     "kinds are kept",
			vars:     3,
			input:    "(?i0, ?1, ?f2)",
			expected: "for<3> (^0, ^1, ^2)",
			freeVars: []string{"?i0", "?1", "?f2"},
		},
		{
			name: "shared resolution is canonicalized twice without being recursive",
			vars: 2,
			setup: func(t *testing.T, ctx *InferenceContext) {
				assign(t, ctx, 0, "Option<?1>")
			},
			input:    "(?0, ?0)",
			expected: "for<1> (Option<^0>, Option<^0>)",
			freeVars: []string{"?1"},
		},
		{
			name: "recursive type variable falls back to unknown",
			vars: 1,
			setup: func(t *testing.T, ctx *InferenceContext) {
				assign(t, ctx, 0, "Vec<?0>")
			},
			input:     "?0",
			expected:  "for<0> Vec<{unknown}>",
			recursive: 1,
		},
		{
			name: "recursive int variable falls back to i32",
			vars: 1,
			setup: func(t *testing.T, ctx *InferenceContext) {
				assign(t, ctx, 0, "Option<?i0>")
			},
			input:     "?i0",
			expected:  "for<0> Option<i32>",
			recursive: 1,
		},
		{
			name: "recursive float variable falls back to f64",
			vars: 1,
			setup: func(t *testing.T, ctx *InferenceContext) {
				assign(t, ctx, 0, "(?f0, ?f0)")
			},
			input:     "&?f0",
			expected:  "for<0> &(f64, f64)",
			recursive: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newTestContext(t, tc.vars)
			if tc.setup != nil {
				tc.setup(t, ctx)
			}

			result := ctx.Canonicalizer().CanonicalizeTy(ty.MustParse(tc.input))

			assert.Equal(t, tc.expected, result.Value.String())
			assert.Equal(t, len(tc.freeVars), result.Value.NumVars)
			assert.Equal(t, tc.freeVars, util.Strings(result.FreeVars()))
			assert.Equal(t, tc.recursive, ctx.RecursiveTypes())
			assert.Empty(t, ctx.Failures)
		})
	}
}

func TestCanonicalizeRecursiveCyclesTerminate(t *testing.T) {
	for depth := 1; depth <= 50; depth++ {
		t.Run(fmt.Sprint("depth ", depth), func(t *testing.T) {
			ctx := newTestContext(t, depth)
			for i := range depth {
				next := (i + 1) % depth
				assign(t, ctx, ty.TypeVarID(i), fmt.Sprintf("Vec<?%d>", next))
			}

			result := ctx.Canonicalizer().CanonicalizeTy(ty.NewTypeVar(0))

			expected := strings.Repeat("Vec<", depth) + "{unknown}" + strings.Repeat(">", depth)
			assert.Equal(t, expected, result.Value.Value.String())
			assert.Equal(t, 0, result.Value.NumVars)
			assert.Equal(t, 1, ctx.RecursiveTypes())
		})
	}
}

func TestCanonicalizeLeavesTheTableAlone(t *testing.T) {
	ctx := newTestContext(t, 3)
	assign(t, ctx, 1, "Vec<?2>")

	ctx.Canonicalizer().CanonicalizeTy(ty.MustParse("(?0, ?1)"))

	assert.Equal(t, 3, ctx.Table().Len())
	_, known := ctx.ProbeValue(0)
	assert.False(t, known)
	value, _ := ctx.ProbeValue(1)
	assert.Equal(t, "Vec<?2>", value.String())
}

func TestCanonicalizerStartsOverOnEveryCall(t *testing.T) {
	ctx := newTestContext(t, 3)
	canonicalizer := ctx.Canonicalizer()

	first := canonicalizer.CanonicalizeTy(ty.MustParse("(?0, ?1)"))
	second := canonicalizer.CanonicalizeTy(ty.MustParse("Vec<?2>"))

	assert.Equal(t, "for<2> (^0, ^1)", first.Value.String())
	assert.Equal(t, []string{"?0", "?1"}, util.Strings(first.FreeVars()))
	assert.Equal(t, "for<1> Vec<^0>", second.Value.String())
	assert.Equal(t, []string{"?2"}, util.Strings(second.FreeVars()))
	assert.Equal(t, ty.NewTypeVar(0), first.DecanonicalizeTy(ty.Bound(0)))
}

func TestCanonicalizeTraitRefKeepsEnvironment(t *testing.T) {
	env := ty.NewEnvironment(traitRef(t, "$T: Clone"), traitRef(t, "$T: Debug"))
	ctx := newTestContext(t, 2, WithEnvironment(env))
	assign(t, ctx, 1, "Vec<?0>")

	result := ctx.Canonicalizer().CanonicalizeTraitRef(ty.NewInEnvironment(ctx.Environment(), traitRef(t, "?1: Add<?0>")))

	assert.Equal(t, "for<1> Vec<^0>: Add<^0> where $T: Clone, $T: Debug", result.Value.String())
	assert.Equal(t, env, result.Value.Value.Environment)
	assert.Equal(t, []string{"?0"}, util.Strings(result.FreeVars()))
}

func TestCanonicalizeProjectionVisitsTheTypeFirst(t *testing.T) {
	ctx := newTestContext(t, 2)

	result := ctx.Canonicalizer().CanonicalizeProjection(projection(t, "<?1 as IntoIterator>::Item == ?0"))

	assert.Equal(t, "for<2> <^1 as IntoIterator>::Item == ^0", result.Value.String())
	assert.Equal(t, []string{"?0", "?1"}, util.Strings(result.FreeVars()))
}

func TestDecanonicalizeTy(t *testing.T) {
	t.Run("round trip restores unresolved variables", func(t *testing.T) {
		ctx := newTestContext(t, 3)
		input := ty.MustParse("(?2, HashMap<?i0, ?2>, <?1 as Iterator>::Item)")

		result := ctx.Canonicalizer().CanonicalizeTy(input)

		assert.Equal(t, input.String(), result.DecanonicalizeTy(result.Value.Value).String())
	})

	t.Run("round trip goes through representatives", func(t *testing.T) {
		ctx := newTestContext(t, 2)
		require.True(t, ctx.Unify(ty.NewTypeVar(0), ty.NewTypeVar(1)))

		result := ctx.Canonicalizer().CanonicalizeTy(ty.MustParse("Vec<?1>"))

		assert.Equal(t, "Vec<?0>", result.DecanonicalizeTy(result.Value.Value).String())
	})

	t.Run("out of range placeholders are left alone", func(t *testing.T) {
		ctx := newTestContext(t, 1)
		result := ctx.Canonicalizer().CanonicalizeTy(ty.MustParse("?0"))

		assert.Equal(t, "(?0, ^1, ^7)", result.DecanonicalizeTy(ty.MustParse("(^0, ^1, ^7)")).String())
	})
}

func TestApplySolution(t *testing.T) {
	t.Run("solution without variables of its own", func(t *testing.T) {
		ctx := newTestContext(t, 1)
		goal := ctx.Canonicalizer().CanonicalizeTy(ty.MustParse("Vec<?0>"))

		goal.ApplySolution(ctx, ty.Canonical[ty.Substs]{Value: ty.Substs{ty.Int("i32")}})

		assert.Equal(t, 1, ctx.Table().Len(), "no variable should be allocated")
		assert.Equal(t, "Vec<i32>", ctx.ResolveTyAsPossible(ty.MustParse("Vec<?0>")).String())
		assert.Empty(t, ctx.Failures)
	})

	t.Run("fresh variables for the solution's placeholders", func(t *testing.T) {
		ctx := newTestContext(t, 1)
		goal := ctx.Canonicalizer().CanonicalizeTy(ty.MustParse("?0"))

		goal.ApplySolution(ctx, ty.Canonical[ty.Substs]{
			Value:   ty.Substs{ty.MustParse("HashMap<^0, ^1>")},
			NumVars: 2,
		})

		assert.Equal(t, 3, ctx.Table().Len())
		assert.Equal(t, "HashMap<?1, ?2>", ctx.ResolveTyAsPossible(ty.NewTypeVar(0)).String())
		assert.Empty(t, ctx.Failures)
	})

	t.Run("unused fresh variables are still allocated", func(t *testing.T) {
		ctx := newTestContext(t, 1)
		goal := ctx.Canonicalizer().CanonicalizeTy(ty.MustParse("?0"))

		goal.ApplySolution(ctx, ty.Canonical[ty.Substs]{Value: ty.Substs{ty.Bool()}, NumVars: 4})

		assert.Equal(t, 5, ctx.Table().Len())
	})

	t.Run("each free variable gets its own answer", func(t *testing.T) {
		ctx := newTestContext(t, 3)
		goal := ctx.Canonicalizer().CanonicalizeTy(ty.MustParse("(?2, ?i0, ?2)"))

		goal.ApplySolution(ctx, ty.Canonical[ty.Substs]{Value: ty.Substs{ty.Str(), ty.Int("u8")}})

		assert.Equal(t, "(str, u8, str)", ctx.ResolveTyAsPossible(ty.MustParse("(?2, ?i0, ?2)")).String())
		assert.Equal(t, "?1", ctx.ResolveTyAsPossible(ty.NewTypeVar(1)).String())
	})

	t.Run("length mismatch is a failure", func(t *testing.T) {
		ctx := newTestContext(t, 2)
		goal := ctx.Canonicalizer().CanonicalizeTy(ty.MustParse("(?0, ?1)"))

		goal.ApplySolution(ctx, ty.Canonical[ty.Substs]{Value: ty.Substs{ty.Bool()}})

		assert.Len(t, ctx.Failures, 1)
		assert.Equal(t, "bool", ctx.ResolveTyAsPossible(ty.NewTypeVar(0)).String())
	})

	t.Run("answer that does not unify is a failure", func(t *testing.T) {
		ctx := newTestContext(t, 1)
		goal := ctx.Canonicalizer().CanonicalizeTy(ty.MustParse("?i0"))

		goal.ApplySolution(ctx, ty.Canonical[ty.Substs]{Value: ty.Substs{ty.Bool()}})

		require.Len(t, ctx.Failures, 1)
		assert.Contains(t, ctx.Failures[0].Error(), "?i0")
	})
}
