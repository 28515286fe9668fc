package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cottand/canon/cmd"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "canon [subcommand]",
	Short:        "canon canonicalizes inference queries and applies solver answers",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.CanonicalizeCmd)
	rootCmd.AddCommand(cmd.SolveCmd)
}
