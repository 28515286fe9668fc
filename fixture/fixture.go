// Package fixture describes an inference state in YAML, so that
// canonicalization and solving can be exercised without a surrounding
// type checker.
//
//	name: vec-of-int
//	vars:
//	  - kind: type          # ?0
//	  - kind: type          # ?1
//	    known: Vec<?0>
//	  - kind: type          # ?2
//	unions: [[0, 2]]
//	expect: [["?2", "?0"]]
//	environment: ["$T: Clone"]
//	obligations:
//	  - trait: "?0: Clone"
//	  - projection: "<?1 as IntoIterator>::Item == ?0"
//	solutions:
//	  - goal: "for<1> ^0: Clone"
//	    value: [i32]
//	queries: ["Vec<?0>"]
package fixture

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cottand/canon/frontend/ilerr"
	"github.com/cottand/canon/frontend/infer"
	"github.com/cottand/canon/frontend/ty"
	"github.com/cottand/canon/solver"
)

type Fixture struct {
	Name        string          `yaml:"name"`
	Vars        []Var           `yaml:"vars"`
	Unions      [][2]uint32     `yaml:"unions,omitempty"`
	// Expect pairs of types are unified after the known values are assigned
	Expect      [][2]string     `yaml:"expect,omitempty"`
	Environment []string        `yaml:"environment,omitempty"`
	Obligations []ObligationDef `yaml:"obligations,omitempty"`
	Solutions   []SolutionDef   `yaml:"solutions,omitempty"`
	Queries     []string        `yaml:"queries,omitempty"`

	// path is where the fixture was loaded from, for error messages
	path string
}

// Var declares the inference variable whose ID is its position in Fixture.Vars
type Var struct {
	// Kind is type, int or float
	Kind  string `yaml:"kind"`
	Known string `yaml:"known,omitempty"`
}

// ObligationDef has exactly one of its fields set
type ObligationDef struct {
	Trait      string `yaml:"trait,omitempty"`
	Projection string `yaml:"projection,omitempty"`
}

type SolutionDef struct {
	// Goal is the canonical goal as rendered by ty.Canonical
	Goal      string   `yaml:"goal"`
	Vars      int      `yaml:"vars,omitempty"`
	Value     []string `yaml:"value"`
	Ambiguous bool     `yaml:"ambiguous,omitempty"`
	// Guidance is definite, suggested or unknown; only meaningful when Ambiguous
	Guidance string `yaml:"guidance,omitempty"`
}

// Load reads and parses a fixture file
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading fixture %s", path)
	}
	return Parse(data, path)
}

// Parse parses fixture content. The path is only used in error messages.
func Parse(data []byte, path string) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parsing fixture %s", path)
	}
	f.path = path
	if f.Name == "" {
		f.Name = path
	}
	return &f, nil
}

func (f *Fixture) bad(format string, args ...any) error {
	return ilerr.New(ilerr.NewBadFixture{File: f.path, Reason: fmt.Sprintf(format, args...)})
}

func parseKind(kind string) (ty.VarKind, bool) {
	switch strings.ToLower(kind) {
	case "", "type":
		return ty.TypeVar, true
	case "int":
		return ty.IntVar, true
	case "float":
		return ty.FloatVar, true
	}
	return 0, false
}

func (f *Fixture) kinds() ([]ty.VarKind, error) {
	kinds := make([]ty.VarKind, len(f.Vars))
	for i, v := range f.Vars {
		kind, ok := parseKind(v.Kind)
		if !ok {
			return nil, f.bad("variable %d has unknown kind %q", i, v.Kind)
		}
		kinds[i] = kind
	}
	return kinds, nil
}

// checkVars makes sure every variable t mentions was declared with the same kind
func (f *Fixture) checkVars(kinds []ty.VarKind, ts ...ty.Ty) error {
	for _, v := range ty.Vars(ts...) {
		if int(v.ID) >= len(kinds) {
			return ilerr.New(ilerr.NewUnknownVariable{Name: v.String()})
		}
		if kinds[v.ID] != v.Kind {
			return f.bad("%v is used as a %v variable but declared as %v", v, v.Kind, kinds[v.ID])
		}
	}
	return nil
}

// CheckTypes makes sure ts only mention variables the fixture declares
func (f *Fixture) CheckTypes(ts ...ty.Ty) error {
	kinds, err := f.kinds()
	if err != nil {
		return err
	}
	return f.checkVars(kinds, ts...)
}

func (f *Fixture) parseTy(kinds []ty.VarKind, src string) (ty.Ty, error) {
	t, err := ty.Parse(src)
	if err != nil {
		return nil, err
	}
	return t, f.checkVars(kinds, t)
}

func (f *Fixture) parseObligation(kinds []ty.VarKind, def ObligationDef) (infer.Obligation, error) {
	switch {
	case def.Trait != "" && def.Projection != "":
		return nil, f.bad("obligation has both trait and projection set")
	case def.Trait != "":
		ref, err := ty.ParseTraitRef(def.Trait)
		if err != nil {
			return nil, err
		}
		return infer.TraitObligation{TraitRef: ref}, f.checkVars(kinds, ref.Substs...)
	case def.Projection != "":
		pred, err := ty.ParseProjectionPredicate(def.Projection)
		if err != nil {
			return nil, err
		}
		return infer.ProjectionObligation{ProjectionPredicate: pred}, f.checkVars(kinds, append(ty.Substs{pred.Ty}, pred.Projection.Params...)...)
	}
	return nil, f.bad("obligation has neither trait nor projection set")
}

// Build creates the inference context the fixture describes, with its
// obligations registered but not solved
func (f *Fixture) Build(opts ...infer.Option) (*infer.InferenceContext, error) {
	kinds, err := f.kinds()
	if err != nil {
		return nil, err
	}

	var clauses []ty.TraitRef
	for _, src := range f.Environment {
		clause, err := ty.ParseTraitRef(src)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	opts = append([]infer.Option{infer.WithEnvironment(ty.NewEnvironment(clauses...))}, opts...)
	ctx := infer.NewInferenceContext(opts...)

	for i, kind := range kinds {
		var v ty.InferTy
		switch kind {
		case ty.IntVar:
			v = ctx.NewIntVar()
		case ty.FloatVar:
			v = ctx.NewFloatVar()
		default:
			v = ctx.NewTypeVar()
		}
		if int(v.ID) != i {
			return nil, f.bad("variable %d was allocated as %v", i, v)
		}
	}

	for _, pair := range f.Unions {
		for _, id := range pair {
			if int(id) >= len(kinds) {
				return nil, ilerr.New(ilerr.NewUnknownVariable{Name: fmt.Sprintf("?%d", id)})
			}
		}
		if err := ctx.Table().Union(ty.TypeVarID(pair[0]), ty.TypeVarID(pair[1])); err != nil {
			return nil, f.bad("union of %d and %d: %v", pair[0], pair[1], err)
		}
	}

	// known values are assigned directly rather than unified, so that
	// fixtures can describe recursive types
	for i, v := range f.Vars {
		if v.Known == "" {
			continue
		}
		known, err := f.parseTy(kinds, v.Known)
		if err != nil {
			return nil, err
		}
		if err := ctx.Table().Assign(ty.TypeVarID(i), known); err != nil {
			return nil, f.bad("assigning %v to variable %d: %v", known, i, err)
		}
	}

	for _, pair := range f.Expect {
		expected, err := f.parseTy(kinds, pair[0])
		if err != nil {
			return nil, err
		}
		actual, err := f.parseTy(kinds, pair[1])
		if err != nil {
			return nil, err
		}
		ctx.Expect(expected, actual)
	}

	for _, def := range f.Obligations {
		o, err := f.parseObligation(kinds, def)
		if err != nil {
			return nil, err
		}
		ctx.RegisterObligation(o)
	}
	return ctx, nil
}

// Solver is the table of answers the fixture declares
func (f *Fixture) Solver() (*solver.Table, error) {
	table := solver.NewTable()
	for _, def := range f.Solutions {
		value := make(ty.Substs, len(def.Value))
		for i, src := range def.Value {
			t, err := ty.Parse(src)
			if err != nil {
				return nil, err
			}
			if ty.HasVars(t) {
				return nil, f.bad("solution for %q mentions inference variables", def.Goal)
			}
			value[i] = t
		}
		guidance, ok := parseGuidance(def.Guidance)
		if !ok {
			return nil, f.bad("unknown guidance %q", def.Guidance)
		}
		table.Answer(def.Goal, infer.Solution{
			Subst:     ty.Canonical[ty.Substs]{Value: value, NumVars: def.Vars},
			Ambiguous: def.Ambiguous,
			Guidance:  guidance,
		})
	}
	return table, nil
}

func parseGuidance(s string) (infer.Guidance, bool) {
	switch strings.ToLower(s) {
	case "", "unknown":
		return infer.GuidanceUnknown, true
	case "definite":
		return infer.GuidanceDefinite, true
	case "suggested":
		return infer.GuidanceSuggested, true
	}
	return 0, false
}
