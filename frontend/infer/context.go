// Package infer holds the state of a single inference pass: the unification
// table of its inference variables, the obligations it has collected, and the
// machinery to hand those obligations to a trait solver in canonical form.
package infer

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v3"

	"github.com/cottand/canon/frontend/ilerr"
	"github.com/cottand/canon/frontend/ty"
	"github.com/cottand/canon/frontend/unify"
	"github.com/cottand/canon/internal/log"
)

const defaultMaxUnifyDepth = 1000

// InferenceContext is owned by exactly one inference pass. It is mutable and
// not safe for concurrent use; independent passes each get their own.
type InferenceContext struct {
	table *unify.Table[ty.TypeVarID, ty.Ty]

	// env is the environment trait obligations are solved in
	env ty.Environment

	obligations []Obligation
	// registered remembers every obligation ever registered so duplicates are dropped
	registered *set.HashSet[Obligation, uint64]
	// collided are registered obligations whose hash was taken by a different one
	collided []Obligation

	maxUnifyDepth  int
	recursiveTypes int

	passID uuid.UUID
	// logger has the pass ID as an attribute
	logger *slog.Logger

	*TypeState
}

// TypeState collects what went wrong during a pass
type TypeState struct {
	// Failures are irrecoverable unexpected scenarios
	// that a correct solver and caller should never hit
	Failures []error
	// Errors are type errors that a malformed program could cause
	Errors *ilerr.Errors
}

type Option func(*InferenceContext)

func WithLogger(logger *slog.Logger) Option {
	return func(ctx *InferenceContext) { ctx.logger = logger }
}

// WithMaxUnifyDepth bounds the nesting unification will descend into
func WithMaxUnifyDepth(depth int) Option {
	return func(ctx *InferenceContext) {
		if depth > 0 {
			ctx.maxUnifyDepth = depth
		}
	}
}

// WithEnvironment sets the where-clauses trait obligations are solved under
func WithEnvironment(env ty.Environment) Option {
	return func(ctx *InferenceContext) { ctx.env = env }
}

func NewInferenceContext(opts ...Option) *InferenceContext {
	ctx := &InferenceContext{
		table:         unify.NewTable[ty.TypeVarID, ty.Ty](),
		registered:    set.NewHashSet[Obligation, uint64](8),
		maxUnifyDepth: defaultMaxUnifyDepth,
		passID:        uuid.New(),
		logger:        log.DefaultLogger,
		TypeState:     &TypeState{},
	}
	for _, opt := range opts {
		opt(ctx)
	}
	ctx.logger = ctx.logger.With("pass", ctx.passID.String())
	return ctx
}

func (ctx *InferenceContext) PassID() uuid.UUID { return ctx.passID }

func (ctx *InferenceContext) Environment() ty.Environment { return ctx.env }

// Table is the unification table of this pass. Callers must not hold on to it
// beyond a single operation.
func (ctx *InferenceContext) Table() *unify.Table[ty.TypeVarID, ty.Ty] { return ctx.table }

func (ctx *InferenceContext) section(name string) *slog.Logger {
	return ctx.logger.With("section", name)
}

func (ctx *InferenceContext) newVar(kind ty.VarKind) ty.InferTy {
	return ty.InferTy{Kind: kind, ID: ctx.table.NewKey(nil, false)}
}

func (ctx *InferenceContext) NewTypeVar() ty.InferTy  { return ctx.newVar(ty.TypeVar) }
func (ctx *InferenceContext) NewIntVar() ty.InferTy   { return ctx.newVar(ty.IntVar) }
func (ctx *InferenceContext) NewFloatVar() ty.InferTy { return ctx.newVar(ty.FloatVar) }

// Find is the representative of id's class
func (ctx *InferenceContext) Find(id ty.TypeVarID) ty.TypeVarID {
	return ctx.table.Find(id)
}

// ProbeValue is the type id's class was resolved to, if any
func (ctx *InferenceContext) ProbeValue(id ty.TypeVarID) (ty.Ty, bool) {
	return ctx.table.ProbeValue(id)
}

// RecursiveTypes counts the recursive types met while canonicalizing or resolving
func (ctx *InferenceContext) RecursiveTypes() int { return ctx.recursiveTypes }

func (ctx *InferenceContext) addFailure(msg string, args ...any) {
	err := fmt.Errorf(msg, args...)
	ctx.logger.Error("inference failure", "error", err)
	ctx.Failures = append(ctx.Failures, err)
}

// AddError records a type error found by the caller
func (ctx *InferenceContext) AddError(err ilerr.IleError) {
	ctx.Errors = ctx.Errors.With(err)
}

// Snapshot lets callers attempt unifications and undo them.
// Obligations registered in between are not rolled back.
func (ctx *InferenceContext) Snapshot() unify.Snapshot {
	return ctx.table.Snapshot()
}

func (ctx *InferenceContext) RollbackTo(s unify.Snapshot) {
	ctx.table.RollbackTo(s)
}

func (ctx *InferenceContext) Commit(s unify.Snapshot) {
	ctx.table.Commit(s)
}
