package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cottand/canon/fixture"
	"github.com/cottand/canon/frontend/ilerr"
	"github.com/cottand/canon/frontend/infer"
	"github.com/cottand/canon/frontend/ty"
	"github.com/cottand/canon/util"
)

var CanonicalizeCmd = &cobra.Command{
	Use:   "canonicalize [-f fixture.yaml] type...",
	Short: "Print the canonical form of types",
	Long: `Print the canonical form of types, and the inference variables
their bound placeholders stand for.

Without a fixture, every inference variable in the types is unresolved.`,
	RunE:         runCanonicalize,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	addConfigFlags(CanonicalizeCmd)
	CanonicalizeCmd.Flags().StringP("fixture", "f", "", "fixture describing the inference variables")
}

type canonicalOutput struct {
	Input     string   `yaml:"input"`
	Canonical string   `yaml:"canonical"`
	FreeVars  []string `yaml:"freeVars,omitempty"`
}

func runCanonicalize(cmd *cobra.Command, args []string) error {
	_, opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	types := make([]ty.Ty, len(args))
	for i, arg := range args {
		if types[i], err = ty.Parse(arg); err != nil {
			return err
		}
	}

	ctx, err := contextFor(cmd, args, types, opts)
	if err != nil {
		return err
	}

	var outputs []canonicalOutput
	for i, t := range types {
		canonicalized := ctx.Canonicalizer().CanonicalizeTy(t)
		outputs = append(outputs, canonicalOutput{
			Input:     args[i],
			Canonical: canonicalized.Value.String(),
			FreeVars:  util.Strings(canonicalized.FreeVars()),
		})
	}
	if len(ctx.Failures) > 0 {
		return fmt.Errorf("canonicalization failed: %w", ctx.Failures[0])
	}
	out := yaml.NewEncoder(cmd.OutOrStdout())
	defer out.Close()
	out.SetIndent(2)
	return out.Encode(outputs)
}

// maxVarID bounds the variables a type may mention when there is no fixture,
// since every variable up to the largest one is allocated
const maxVarID = 1 << 16

// contextFor builds the fixture given with --fixture, or a context where
// every variable mentioned by types is declared and unresolved
func contextFor(cmd *cobra.Command, args []string, types []ty.Ty, opts []infer.Option) (*infer.InferenceContext, error) {
	if path, _ := cmd.Flags().GetString("fixture"); path != "" {
		f, err := fixture.Load(path)
		if err != nil {
			return nil, err
		}
		if err := f.CheckTypes(types...); err != nil {
			return nil, err
		}
		return f.Build(opts...)
	}

	for i, t := range types {
		for _, v := range ty.Vars(t) {
			if v.ID > maxVarID {
				return nil, ilerr.New(ilerr.NewParse{
					Source:        args[i],
					ParserMessage: fmt.Sprintf("inference variable %v is out of range: without a fixture, at most ?%d can be used", v, maxVarID),
				})
			}
		}
	}
	ctx := infer.NewInferenceContext(opts...)
	for _, v := range ty.Vars(types...) {
		for ctx.Table().Len() <= int(v.ID) {
			ctx.NewTypeVar()
		}
	}
	return ctx, nil
}
