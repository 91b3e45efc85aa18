package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagefix/internal/adapters/driving/watch"
	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/logger"
)

var (
	watchOut      string
	watchExporter string
	watchRate     int
)

var watchCmd = &cobra.Command{
	Use:   "watch [inbox]",
	Short: "Correct documents as they arrive in a directory",
	Long: `Watches an inbox directory and corrects every new document once it has
stopped changing. Corrected documents are written to --out as <name>.pdf
and each run's report is stored as with the correct command.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchOut, "out", "", "directory for corrected documents (required)")
	watchCmd.Flags().StringVar(&watchExporter, "exporter", "", "output writer: auto, pdf or raster (default from config)")
	watchCmd.Flags().IntVar(&watchRate, "rate", watch.DefaultRequestsPerMinute, "maximum corrections per minute")
	_ = watchCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	exporter := domain.ExportFormat(watchExporter)
	if watchExporter != "" && !exporter.IsValid() {
		return fmt.Errorf("unknown exporter %q (use auto, pdf or raster): %w", watchExporter, domain.ErrInvalidInput)
	}
	svc, err := requireCorrection()
	if err != nil {
		return err
	}

	opts := watch.Options{
		Inbox:    args[0],
		OutDir:   watchOut,
		Exporter: exporter,
		Supports: sourceSupports,
		OnResult: func(r watch.Result) {
			name := filepath.Base(r.Path)
			switch {
			case r.Err != nil:
				cmd.PrintErrf("%s: %v\n", name, r.Err)
			case r.Result != nil && r.Result.Report != nil:
				rep := r.Result.Report
				cmd.Printf("%s -> %s (%s, applied %d, rolled back %d) report %s\n",
					name, r.Output, rep.FinalQualityGrade, len(rep.Applied), len(rep.RolledBack), rep.ID)
			default:
				cmd.Printf("%s -> %s\n", name, r.Output)
			}
		},
	}
	if watchRate > 0 {
		opts.Limit = watch.PerMinute(watchRate)
	}

	w, err := watch.New(svc, opts)
	if err != nil {
		return err
	}
	logger.Debug("watch rate %d/min", watchRate)
	return w.Run(cmd.Context())
}
