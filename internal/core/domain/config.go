package domain

import (
	"errors"
	"fmt"
	"time"
)

// Default correction settings.
const (
	DefaultRotationThreshold      = 0.85
	DefaultOrderingThreshold      = 0.80
	DefaultDuplicateThreshold     = 0.95
	DefaultQualityReviewThreshold = 0.70
	DefaultMaxAttempts            = 3
	DefaultTimeBudget             = 60 * time.Second
	DefaultRenderDPI              = 150
	DefaultThumbnailSize          = 64
	DefaultMaxCachedRasters       = 32
	DefaultDuplicateMaxHamming    = 6
	DefaultDetectorWorkers        = 4
)

// Thresholds holds the per-kind confidence required for correction.
type Thresholds struct {
	Rotation      float64 `json:"rotation" yaml:"rotation"`
	Ordering      float64 `json:"ordering" yaml:"ordering"`
	Duplicate     float64 `json:"duplicate" yaml:"duplicate"`
	QualityReview float64 `json:"quality_review" yaml:"quality_review"`
}

// For returns the threshold for an issue kind.
func (t Thresholds) For(kind IssueKind) float64 {
	switch kind {
	case IssueRotation:
		return t.Rotation
	case IssueOrdering:
		return t.Ordering
	case IssueDuplicate:
		return t.Duplicate
	case IssueLowQuality:
		return t.QualityReview
	default:
		return 1
	}
}

// Eligible reports whether an issue may enter a correction plan.
// Low quality issues are never eligible.
func (t Thresholds) Eligible(issue Issue) bool {
	if !issue.Kind.Correctable() {
		return false
	}
	return issue.Confidence >= t.For(issue.Kind)
}

// RenderSettings controls page rasterisation.
type RenderSettings struct {
	// DPI is the raster resolution passed to the renderer.
	DPI int `json:"dpi" yaml:"dpi"`

	// ThumbnailSize is the edge length of duplicate-detection thumbnails.
	ThumbnailSize int `json:"thumbnail_size" yaml:"thumbnail_size"`

	// MaxCachedRasters caps retained native rasters. Zero means unbounded.
	MaxCachedRasters int `json:"max_cached_rasters" yaml:"max_cached_rasters"`
}

// CorrectionConfig is the immutable configuration of one correction run.
// It is passed to constructors; nothing reads thresholds from globals.
type CorrectionConfig struct {
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`

	// AutoCorrect disables the transaction when false (analysis only).
	AutoCorrect bool `json:"auto_correct" yaml:"auto_correct"`

	// MaxAttempts bounds analyse-and-correct passes per document.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// TimeBudget bounds total processing. Zero disables the budget.
	TimeBudget time.Duration `json:"time_budget" yaml:"time_budget"`

	Render RenderSettings `json:"render" yaml:"render"`

	// DuplicateMaxHamming is the perceptual hash distance for near duplicates.
	DuplicateMaxHamming int `json:"duplicate_max_hamming" yaml:"duplicate_max_hamming"`

	// Workers bounds page-level parallelism inside a detector.
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultCorrectionConfig returns the default configuration.
func DefaultCorrectionConfig() CorrectionConfig {
	return CorrectionConfig{
		Thresholds: Thresholds{
			Rotation:      DefaultRotationThreshold,
			Ordering:      DefaultOrderingThreshold,
			Duplicate:     DefaultDuplicateThreshold,
			QualityReview: DefaultQualityReviewThreshold,
		},
		AutoCorrect: true,
		MaxAttempts: DefaultMaxAttempts,
		TimeBudget:  DefaultTimeBudget,
		Render: RenderSettings{
			DPI:              DefaultRenderDPI,
			ThumbnailSize:    DefaultThumbnailSize,
			MaxCachedRasters: DefaultMaxCachedRasters,
		},
		DuplicateMaxHamming: DefaultDuplicateMaxHamming,
		Workers:             DefaultDetectorWorkers,
	}
}

// Validate checks that every setting is within range.
func (c CorrectionConfig) Validate() error {
	var errs []error
	check := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("threshold %s=%.3f outside [0,1]", name, v))
		}
	}
	check("rotation", c.Thresholds.Rotation)
	check("ordering", c.Thresholds.Ordering)
	check("duplicate", c.Thresholds.Duplicate)
	check("quality_review", c.Thresholds.QualityReview)

	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts=%d must be at least 1", c.MaxAttempts))
	}
	if c.TimeBudget < 0 {
		errs = append(errs, fmt.Errorf("time_budget=%s must not be negative", c.TimeBudget))
	}
	if c.Render.DPI < 36 || c.Render.DPI > 1200 {
		errs = append(errs, fmt.Errorf("render.dpi=%d outside [36,1200]", c.Render.DPI))
	}
	if c.Render.ThumbnailSize < 16 {
		errs = append(errs, fmt.Errorf("render.thumbnail_size=%d must be at least 16", c.Render.ThumbnailSize))
	}
	if c.Render.MaxCachedRasters < 0 {
		errs = append(errs, fmt.Errorf("render.max_cached_rasters=%d must not be negative", c.Render.MaxCachedRasters))
	}
	if c.DuplicateMaxHamming < 0 || c.DuplicateMaxHamming > 64 {
		errs = append(errs, fmt.Errorf("duplicate.max_hamming=%d outside [0,64]", c.DuplicateMaxHamming))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("detectors.workers=%d must be at least 1", c.Workers))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}
