package fixture

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cottand/canon/frontend/ilerr"
	"github.com/cottand/canon/frontend/infer"
	"github.com/cottand/canon/frontend/ty"
	"github.com/cottand/canon/internal/log"
	"github.com/cottand/canon/util"
)

// Query is the outcome of canonicalizing one of the fixture's queries
type Query struct {
	Input     string   `yaml:"input"`
	Canonical string   `yaml:"canonical"`
	FreeVars  []string `yaml:"freeVars,omitempty"`
	// Resolved is the query after obligations were solved, with unresolved variables left in place
	Resolved string `yaml:"resolved"`
	// Unresolved are the variables still free in Resolved
	Unresolved []string `yaml:"unresolved,omitempty"`
}

// Report is what Run found out about a fixture
type Report struct {
	Name           string   `yaml:"name"`
	Pass           string   `yaml:"pass"`
	Queries        []Query  `yaml:"queries,omitempty"`
	Asked          []string `yaml:"asked,omitempty"`
	Unsolved       []string `yaml:"unsolved,omitempty"`
	Errors         []string `yaml:"errors,omitempty"`
	Failures       []string `yaml:"failures,omitempty"`
	RecursiveTypes int      `yaml:"recursiveTypes,omitempty"`
}

// Run builds the fixture, solves its obligations against its solutions, and
// reports how each query canonicalizes and resolves.
//
// Queries are canonicalized before solving, so Canonical shows what a solver
// would have been asked about them.
func (f *Fixture) Run(opts ...infer.Option) (Report, error) {
	logger := log.Section("fixture").With("fixture", f.Name)
	ctx, err := f.Build(append([]infer.Option{infer.WithLogger(logger)}, opts...)...)
	if err != nil {
		return Report{}, err
	}
	table, err := f.Solver()
	if err != nil {
		return Report{}, err
	}
	kinds, err := f.kinds()
	if err != nil {
		return Report{}, err
	}

	var queries []ty.Ty
	report := Report{Name: f.Name, Pass: ctx.PassID().String()}
	for _, src := range f.Queries {
		q, err := f.parseTy(kinds, src)
		if err != nil {
			return Report{}, err
		}
		canonicalized := ctx.Canonicalizer().CanonicalizeTy(q)
		queries = append(queries, q)
		report.Queries = append(report.Queries, Query{
			Input:     src,
			Canonical: canonicalized.Value.String(),
			FreeVars:  util.Strings(canonicalized.FreeVars()),
		})
	}

	ctx.ResolveObligationsAsPossible(table)
	logger.Debug("solved obligations", "pending", len(ctx.Obligations()))

	for i, q := range queries {
		resolved := ctx.ResolveTyAsPossible(q)
		report.Queries[i].Resolved = resolved.String()
		report.Queries[i].Unresolved = util.Strings(ty.Vars(resolved))
	}
	report.Asked = table.Asked()
	report.Unsolved = util.Strings(ctx.Obligations())
	for _, err := range ctx.Errors.Errors() {
		report.Errors = append(report.Errors, ilerr.FormatWithCode(err))
	}
	for _, failure := range ctx.Failures {
		report.Failures = append(report.Failures, failure.Error())
	}
	report.RecursiveTypes = ctx.RecursiveTypes()
	return report, nil
}

// RunAll loads and runs every fixture in paths, each in its own inference
// pass. Reports are in the order of paths. The first error cancels the
// fixtures not started yet, and is always an ilerr.IleError.
func RunAll(ctx context.Context, paths []string, opts ...infer.Option) ([]Report, error) {
	reports := make([]Report, len(paths))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for i, path := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return classify(err)
			}
			f, err := Load(path)
			if err != nil {
				return classify(err)
			}
			report, err := f.Run(opts...)
			if err != nil {
				return classify(err)
			}
			log.Section("fixture").Debug("ran fixture", slog.String("path", path), "failures", len(report.Failures))
			reports[i] = report
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// classify wraps errors that do not carry a code, like I/O errors
func classify(err error) error {
	var ileErr ilerr.IleError
	if errors.As(err, &ileErr) {
		return err
	}
	return ilerr.New(ilerr.Unclassified{From: err})
}
