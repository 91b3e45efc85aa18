package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyRotationThreshold  = "thresholds.rotation"
	keyOrderingThreshold  = "thresholds.ordering"
	keyDuplicateThreshold = "thresholds.duplicate"
	keyQualityThreshold   = "thresholds.quality_review"
	keyAutoCorrect        = "correction.auto_correct"
	keyMaxAttempts        = "correction.max_attempts"
	keyTimeBudget         = "correction.time_budget"
	keyRenderDPI          = "render.dpi"
	keyThumbnailSize      = "render.thumbnail_size"
	keyMaxCachedRasters   = "render.max_cached_rasters"
	keyDuplicateHamming   = "duplicate.max_hamming"
	keyDetectorWorkers    = "detectors.workers"
	keyOCREngine          = "ocr.engine"
	keyOCRLanguages       = "ocr.languages"
	keyDocAIProject       = "documentai.project_id"
	keyDocAILocation      = "documentai.location"
	keyDocAIProcessor     = "documentai.processor_id"
	keyDocAICredentials   = "documentai.credentials_file"
	keyExportFormat       = "export.format"
)

// binding ties a config key to a settings field. ptr is one of the
// pointer types handled by load, format and parse.
type binding struct {
	key string
	ptr any
}

// bindings lists every setting in key order.
func bindings(a *domain.AppSettings) []binding {
	c := &a.Correction
	return []binding{
		{keyAutoCorrect, &c.AutoCorrect},
		{keyMaxAttempts, &c.MaxAttempts},
		{keyTimeBudget, &c.TimeBudget},
		{keyDetectorWorkers, &c.Workers},
		{keyDocAICredentials, &a.DocumentAI.CredentialsFile},
		{keyDocAILocation, &a.DocumentAI.Location},
		{keyDocAIProcessor, &a.DocumentAI.ProcessorID},
		{keyDocAIProject, &a.DocumentAI.ProjectID},
		{keyDuplicateHamming, &c.DuplicateMaxHamming},
		{keyExportFormat, &a.Export.Format},
		{keyOCREngine, &a.OCR.Engine},
		{keyOCRLanguages, &a.OCR.Languages},
		{keyRenderDPI, &c.Render.DPI},
		{keyMaxCachedRasters, &c.Render.MaxCachedRasters},
		{keyThumbnailSize, &c.Render.ThumbnailSize},
		{keyDuplicateThreshold, &c.Thresholds.Duplicate},
		{keyOrderingThreshold, &c.Thresholds.Ordering},
		{keyQualityThreshold, &c.Thresholds.QualityReview},
		{keyRotationThreshold, &c.Thresholds.Rotation},
	}
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing or malformed
// values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()
	for _, b := range bindings(&settings) {
		s.load(b)
	}
	return &settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	for _, b := range bindings(settings) {
		if err := s.configStore.Set(b.key, storedValue(b)); err != nil {
			return fmt.Errorf("save %s: %w", b.key, err)
		}
	}
	return nil
}

// Set parses and stores one setting. The value is rejected if the
// resulting settings would not validate.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	for _, b := range bindings(settings) {
		if b.key != key {
			continue
		}
		if err := parseBinding(b, strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("%s=%q: %w: %w", key, value, domain.ErrInvalidInput, err)
		}
		if err := validateSettings(settings); err != nil {
			return fmt.Errorf("%s=%q: %w: %w", key, value, domain.ErrInvalidInput, err)
		}
		if err := s.configStore.Set(key, storedValue(b)); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
}

// List returns every setting with its effective and default value.
func (s *SettingsService) List() ([]driving.Setting, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}
	defaults := domain.DefaultAppSettings()
	current, def := bindings(settings), bindings(&defaults)

	out := make([]driving.Setting, len(current))
	for i := range current {
		out[i] = driving.Setting{
			Key:     current[i].key,
			Value:   formatBinding(current[i]),
			Default: formatBinding(def[i]),
		}
	}
	return out, nil
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return validateSettings(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func validateSettings(a *domain.AppSettings) error {
	var errs []error
	if err := a.Correction.Validate(); err != nil {
		errs = append(errs, err)
	}
	if !a.OCR.Engine.IsValid() {
		errs = append(errs, fmt.Errorf("ocr engine %q", a.OCR.Engine))
	}
	if a.OCR.Engine.IsLocal() && len(a.OCR.Languages) == 0 {
		errs = append(errs, errors.New("ocr languages must not be empty"))
	}
	if !a.Export.Format.IsValid() {
		errs = append(errs, fmt.Errorf("export format %q", a.Export.Format))
	}
	return errors.Join(errs...)
}

// load reads a stored value into the bound field when present and well formed.
func (s *SettingsService) load(b binding) {
	if _, ok := s.configStore.Get(b.key); !ok {
		return
	}
	switch p := b.ptr.(type) {
	case *float64:
		*p = s.configStore.GetFloat(b.key)
	case *int:
		*p = s.configStore.GetInt(b.key)
	case *bool:
		*p = s.configStore.GetBool(b.key)
	case *time.Duration:
		if d, err := time.ParseDuration(s.configStore.GetString(b.key)); err == nil {
			*p = d
		}
	case *string:
		*p = s.configStore.GetString(b.key)
	case *[]string:
		if v := s.configStore.GetStringSlice(b.key); v != nil {
			*p = v
		}
	case *domain.OCREngine:
		if e := domain.OCREngine(s.configStore.GetString(b.key)); e.IsValid() {
			*p = e
		}
	case *domain.ExportFormat:
		if f := domain.ExportFormat(s.configStore.GetString(b.key)); f.IsValid() {
			*p = f
		}
	}
}

// storedValue returns the field value in the form written to the config file.
func storedValue(b binding) any {
	switch p := b.ptr.(type) {
	case *float64:
		return *p
	case *int:
		return *p
	case *bool:
		return *p
	case *time.Duration:
		return p.String()
	case *string:
		return *p
	case *[]string:
		return append([]string(nil), *p...)
	case *domain.OCREngine:
		return p.String()
	case *domain.ExportFormat:
		return p.String()
	default:
		return nil
	}
}

func formatBinding(b binding) string {
	switch p := b.ptr.(type) {
	case *float64:
		return strconv.FormatFloat(*p, 'f', -1, 64)
	case *int:
		return strconv.Itoa(*p)
	case *bool:
		return strconv.FormatBool(*p)
	case *time.Duration:
		return p.String()
	case *string:
		return *p
	case *[]string:
		return strings.Join(*p, ",")
	case *domain.OCREngine:
		return p.String()
	case *domain.ExportFormat:
		return p.String()
	default:
		return ""
	}
}

func parseBinding(b binding, raw string) error {
	switch p := b.ptr.(type) {
	case *float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*p = v
	case *int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*p = v
	case *bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*p = v
	case *time.Duration:
		v, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*p = v
	case *string:
		*p = raw
	case *[]string:
		var list []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
		*p = list
	case *domain.OCREngine:
		*p = domain.OCREngine(raw)
	case *domain.ExportFormat:
		*p = domain.ExportFormat(raw)
	}
	return nil
}
