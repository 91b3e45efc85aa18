package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Detect structural issues without changing anything",
	Long: `Runs every detector once over a PDF, an image file or a directory of
page images and prints the detected issues and the correction plan.
Nothing is rewritten and no report is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := validateFormat(analyzeFormat); err != nil {
		return err
	}
	svc, err := requireCorrection()
	if err != nil {
		return err
	}

	report, err := svc.Analyze(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeFormat != formatText {
		return writeStructured(cmd.OutOrStdout(), analyzeFormat, report)
	}
	renderAnalysis(cmd.OutOrStdout(), report)
	return nil
}
