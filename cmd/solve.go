package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cottand/canon/fixture"
)

var SolveCmd = &cobra.Command{
	Use:          "solve fixture.yaml...",
	Short:        "Solve the obligations of fixtures and report how their queries resolve",
	RunE:         runSolve,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	addConfigFlags(SolveCmd)
	SolveCmd.Flags().Bool("strict", false, "fail if any fixture reports inference failures")
}

func runSolve(cmd *cobra.Command, args []string) error {
	_, opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	reports, err := fixture.RunAll(cmd.Context(), args, opts...)
	if err != nil {
		return err
	}

	out := yaml.NewEncoder(cmd.OutOrStdout())
	defer out.Close()
	out.SetIndent(2)
	failed := 0
	for _, report := range reports {
		if err := out.Encode(report); err != nil {
			return fmt.Errorf("could not write report: %w", err)
		}
		if len(report.Failures) > 0 {
			failed++
		}
	}
	if strict, _ := cmd.Flags().GetBool("strict"); strict && failed > 0 {
		return fmt.Errorf("%d of %d fixtures had inference failures", failed, len(reports))
	}
	return nil
}
