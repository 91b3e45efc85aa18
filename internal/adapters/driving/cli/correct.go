package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
)

var (
	correctOutput       string
	correctExporter     string
	correctAnalysisOnly bool
	correctFormat       string
)

var correctCmd = &cobra.Command{
	Use:   "correct [path]",
	Short: "Correct rotated, duplicated and out-of-order pages",
	Long: `Analyses a document, applies the correction plan one verified step at
a time and writes the corrected document. A step is rolled back unless
readability improves by more than 10% with no more than 5% of structural
elements lost. The run's report is stored and printed.

Without --output the corrected document is written next to the source
as <name>.fixed.pdf.`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrect,
}

func init() {
	correctCmd.Flags().StringVarP(&correctOutput, "output", "o", "", "output file (default <name>.fixed.pdf)")
	correctCmd.Flags().StringVar(&correctExporter, "exporter", "", "output writer: auto, pdf or raster (default from config)")
	correctCmd.Flags().BoolVar(&correctAnalysisOnly, "analysis-only", false, "report the plan without applying it")
	correctCmd.Flags().StringVarP(&correctFormat, "format", "f", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(correctCmd)
}

func runCorrect(cmd *cobra.Command, args []string) error {
	if err := validateFormat(correctFormat); err != nil {
		return err
	}
	exporter := domain.ExportFormat(correctExporter)
	if correctExporter != "" && !exporter.IsValid() {
		return fmt.Errorf("unknown exporter %q (use auto, pdf or raster): %w", correctExporter, domain.ErrInvalidInput)
	}
	svc, err := requireCorrection()
	if err != nil {
		return err
	}

	req := driving.CorrectionRequest{
		Path:         args[0],
		Exporter:     exporter,
		AnalysisOnly: correctAnalysisOnly,
	}
	if !correctAnalysisOnly {
		req.OutputPath = correctOutput
		if req.OutputPath == "" {
			req.OutputPath = defaultOutputPath(args[0])
		}
	}

	result, err := svc.Correct(cmd.Context(), req)
	if result != nil && result.Report != nil {
		if werr := printReport(cmd, correctFormat, result.Report); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return fmt.Errorf("correction failed: %w", err)
	}
	return nil
}

func printReport(cmd *cobra.Command, format string, report *domain.CorrectionReport) error {
	if format != formatText {
		return writeStructured(cmd.OutOrStdout(), format, report)
	}
	renderReport(cmd.OutOrStdout(), report)
	return nil
}

// defaultOutputPath places the output beside the source. A directory of
// page images produces <dir>.fixed.pdf next to the directory.
func defaultOutputPath(path string) string {
	clean := filepath.Clean(path)
	base := strings.TrimSuffix(clean, filepath.Ext(clean))
	return base + ".fixed.pdf"
}
