// Package solver provides a Solver that answers goals from a fixed table.
//
// Real trait solving lives outside this module; Table stands in for it in
// fixtures, the CLI and tests. Goals are looked up by their canonical
// rendering, which is stable because canonical values number their
// variables in order of first appearance.
package solver

import (
	"log/slog"
	"sync"

	"github.com/cottand/canon/frontend/infer"
	"github.com/cottand/canon/frontend/ty"
	"github.com/cottand/canon/internal/log"
)

var _ infer.Solver = (*Table)(nil)

// Table is safe for concurrent use, so that one Table can serve several passes
type Table struct {
	mu      sync.RWMutex
	answers map[string]infer.Solution
	// asked records every goal looked up, answered or not
	asked  []string
	logger *slog.Logger
}

func NewTable() *Table {
	return &Table{
		answers: make(map[string]infer.Solution),
		logger:  log.Section("solver"),
	}
}

// Answer makes goal solvable with solution. The goal is written the way
// ty.Canonical renders, for example `for<1> ^0: Clone`.
func (t *Table) Answer(goal string, solution infer.Solution) *Table {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.answers[goal] = solution
	return t
}

func (t *Table) lookup(goal string) (infer.Solution, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.asked = append(t.asked, goal)
	solution, ok := t.answers[goal]
	t.logger.Debug("solving goal", "goal", goal, "found", ok)
	return solution, ok
}

func (t *Table) SolveTrait(goal ty.Canonical[ty.InEnvironment[ty.TraitRef]]) (infer.Solution, bool) {
	return t.lookup(goal.String())
}

func (t *Table) SolveProjection(goal ty.Canonical[ty.ProjectionPredicate]) (infer.Solution, bool) {
	return t.lookup(goal.String())
}

// Asked returns the goals looked up so far, in order
func (t *Table) Asked() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.asked...)
}
