// Package cli implements the pagefix command line.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
	"github.com/custodia-labs/pagefix/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
	dataDir   string
)

// Services wired by SetServices or the bootstrap.
var (
	correctionService driving.CorrectionService
	reportService     driving.ReportService
	settingsService   driving.SettingsService
	sourceSupports    func(path string) bool
	ocrErr            error
	closeServices     func()
)

var bootstrap Bootstrap

// Options carries the global flags to the bootstrap.
type Options struct {
	ConfigDir string
	DataDir   string
	Verbose   bool
}

// Services aggregates the driving ports the commands use.
type Services struct {
	Correction driving.CorrectionService
	Reports    driving.ReportService
	Settings   driving.SettingsService

	// Supports reports whether a file can be opened as a source.
	Supports func(path string) bool

	// OCRError is set when no recognition engine could be started.
	// Commands that read page text fail with it.
	OCRError error

	// Close releases resources after the command finishes.
	Close func()
}

// Bootstrap builds the services once the global flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var rootCmd = &cobra.Command{
	Use:   "pagefix",
	Short: "Fix rotated, duplicated and out-of-order pages in scanned documents",
	Long: `pagefix analyses scanned documents for structural defects (rotated
pages, duplicate pages, pages out of reading order) and corrects them.

Every correction is verified: a change is kept only if the text becomes
measurably more readable without losing structure, and rolled back
otherwise. Each run produces a report of what was applied, rolled back
and skipped.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: runBootstrap,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if closeServices != nil {
			closeServices()
			closeServices = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline decisions to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.pagefix)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "report database directory (default ~/.pagefix/data)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		correctionService, reportService, settingsService = nil, nil, nil
		sourceSupports, ocrErr, closeServices = nil, nil, nil
		return
	}
	correctionService = s.Correction
	reportService = s.Reports
	settingsService = s.Settings
	sourceSupports = s.Supports
	ocrErr = s.OCRError
	closeServices = s.Close
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || correctionService != nil || settingsService != nil {
		return nil
	}
	services, err := bootstrap(cmd.Context(), Options{
		ConfigDir: configDir,
		DataDir:   dataDir,
		Verbose:   verbose,
	})
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

// requireCorrection returns the correction service or the reason it
// cannot run.
func requireCorrection() (driving.CorrectionService, error) {
	if ocrErr != nil {
		return nil, ocrErr
	}
	if correctionService == nil {
		return nil, errors.New("correction service not configured")
	}
	return correctionService, nil
}
