package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change settings",
	Long: `Settings are stored in config.toml in the configuration directory.

Keys:
  thresholds.rotation, thresholds.ordering, thresholds.duplicate,
  thresholds.quality_review      confidence needed to act, in [0,1]
  correction.auto_correct        apply plans (false = report only)
  correction.max_attempts        correction passes per run
  correction.time_budget         wall clock limit, e.g. 5m
  render.dpi                     raster resolution
  render.thumbnail_size          thumbnail edge for duplicate hashing
  render.max_cached_rasters      render cache capacity (0 = unbounded)
  duplicate.max_hamming          perceptual hash distance for duplicates
  detectors.workers              parallel page workers
  ocr.engine                     tesseract or documentai
  ocr.languages                  comma separated language codes
  documentai.project_id, documentai.location,
  documentai.processor_id, documentai.credentials_file
  export.format                  auto, pdf or raster`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	settings, err := listSettings()
	if err != nil {
		return err
	}
	printSettings(cmd.OutOrStdout(), settings)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	settings, err := listSettings()
	if err != nil {
		return err
	}
	for _, s := range settings {
		if s.Key == args[0] {
			cmd.Println(s.Value)
			return nil
		}
	}
	return fmt.Errorf("unknown setting %q: %w", args[0], domain.ErrInvalidInput)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func listSettings() ([]driving.Setting, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func printSettings(w io.Writer, settings []driving.Setting) {
	st := newStyles(w)
	width := 0
	for _, s := range settings {
		if len(s.Key) > width {
			width = len(s.Key)
		}
	}
	for _, s := range settings {
		line := fmt.Sprintf("%-*s  %s", width, s.Key, s.Value)
		if s.Value != s.Default {
			line += "  " + st.muted.Render("(default "+s.Default+")")
		}
		fmt.Fprintln(w, line)
	}
}
