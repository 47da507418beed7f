package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ashpool/techplan/internal/config"
	"github.com/ashpool/techplan/internal/graph"
	"github.com/ashpool/techplan/internal/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the dataset and check it for structural problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		report, err := loader.Loader{Dir: cfg.InputDir}.Load()
		if err != nil {
			return err
		}
		for _, warning := range report.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
		}
		for _, loadErr := range report.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", loadErr)
		}

		result := graph.Validate(report.Nodes)
		printValidation(result)
		fmt.Fprintf(os.Stderr, "%d node(s), %s\n", len(report.Nodes), result.Summary())

		if report.HasErrors() || result.HasErrors() {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "✓ graph validated, ready for planning")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
