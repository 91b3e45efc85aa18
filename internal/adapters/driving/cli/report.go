package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	reportLimit      int
	reportListFormat string
	reportShowFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect stored correction reports",
	Long: `Every correction run stores a report listing the corrections that were
applied, rolled back and skipped, the final quality grade and the mapping
from original to corrected page positions.`,
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports, newest first",
	Args:  cobra.NoArgs,
	RunE:  runReportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

var reportDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportDelete,
}

func init() {
	reportListCmd.Flags().IntVarP(&reportLimit, "limit", "n", 20, "maximum number of reports (0 = all)")
	reportListCmd.Flags().StringVarP(&reportListFormat, "format", "f", formatText, "output format: text, json or yaml")
	reportShowCmd.Flags().StringVarP(&reportShowFormat, "format", "f", formatText, "output format: text, json or yaml")

	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportDeleteCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReportList(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(reportListFormat); err != nil {
		return err
	}
	if reportService == nil {
		return errors.New("report service not configured")
	}

	summaries, err := reportService.List(cmd.Context(), reportLimit)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if reportListFormat != formatText {
		return writeStructured(cmd.OutOrStdout(), reportListFormat, summaries)
	}
	renderSummaries(cmd.OutOrStdout(), summaries)
	return nil
}

func runReportShow(cmd *cobra.Command, args []string) error {
	if err := validateFormat(reportShowFormat); err != nil {
		return err
	}
	if reportService == nil {
		return errors.New("report service not configured")
	}

	report, err := reportService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get report %s: %w", args[0], err)
	}
	return printReport(cmd, reportShowFormat, report)
}

func runReportDelete(cmd *cobra.Command, args []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}
	if err := reportService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete report %s: %w", args[0], err)
	}
	cmd.Printf("Deleted report %s\n", args[0])
	return nil
}
