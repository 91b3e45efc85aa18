package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/pagefix/cgo/tesseract"
	"github.com/custodia-labs/pagefix/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagefix/internal/adapters/driven/export/pdfcpu"
	"github.com/custodia-labs/pagefix/internal/adapters/driven/export/raster"
	"github.com/custodia-labs/pagefix/internal/adapters/driven/ocr/documentai"
	"github.com/custodia-labs/pagefix/internal/adapters/driven/source"
	"github.com/custodia-labs/pagefix/internal/adapters/driven/source/pdf"
	"github.com/custodia-labs/pagefix/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pagefix/internal/adapters/driving/cli"
	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/core/services"
	"github.com/custodia-labs/pagefix/internal/detectors/duplicate"
	"github.com/custodia-labs/pagefix/internal/detectors/order"
	"github.com/custodia-labs/pagefix/internal/detectors/quality"
	"github.com/custodia-labs/pagefix/internal/detectors/rotation"
	"github.com/custodia-labs/pagefix/internal/logger"
	"github.com/custodia-labs/pagefix/internal/render"
	"github.com/custodia-labs/pagefix/internal/transformers"
)

// build wires the adapters into the services the commands use.
// A missing recognition engine does not fail the build: config and
// report commands still work, correction commands report the cause.
func build(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open report store: %w", err)
	}
	logger.Debug("report store: %s", store.Path())

	out := &cli.Services{
		Reports:  services.NewReportService(store.ReportStore()),
		Settings: settingsService,
	}

	if err := settingsService.Validate(); err != nil {
		out.OCRError = fmt.Errorf("invalid settings (fix with 'pagefix config set'): %w", err)
		out.Close = func() { _ = store.Close() }
		return out, nil
	}

	recognizer, err := newRecognizer(ctx, settings)
	if err != nil {
		logger.Debug("recognizer unavailable: %v", err)
		out.OCRError = err
	} else {
		logger.Debug("recognizer: %s", recognizer.Name())
	}

	sources := source.NewDefaultRegistry(pdf.ExecRunner{})
	cfg := settings.Correction
	out.Supports = sources.Supports
	out.Correction = services.NewCorrectionService(
		cfg,
		sources,
		render.NewFactory(recognizer),
		[]driven.Detector{
			rotation.New(cfg),
			duplicate.New(cfg),
			order.New(cfg),
			quality.New(cfg),
		},
		transformers.Factory{},
		[]driven.Exporter{
			pdfcpu.New(),
			raster.New(cfg.Render.DPI),
		},
		store.ReportStore(),
		settings.Export.Format,
	)
	out.Close = func() {
		if recognizer != nil {
			if err := recognizer.Close(); err != nil {
				logger.Warn("close recognizer: %v", err)
			}
		}
		if err := store.Close(); err != nil {
			logger.Warn("close report store: %v", err)
		}
	}
	return out, nil
}

// newRecognizer starts the configured OCR engine.
func newRecognizer(ctx context.Context, settings *domain.AppSettings) (driven.TextRecognizer, error) {
	switch settings.OCR.Engine {
	case domain.OCREngineDocumentAI:
		if !settings.DocumentAI.IsConfigured() {
			return nil, fmt.Errorf("%w: set documentai.project_id, documentai.location and documentai.processor_id",
				domain.ErrOCRUnavailable)
		}
		r, err := documentai.New(ctx, settings.DocumentAI)
		if err != nil {
			return nil, errors.Join(domain.ErrOCRUnavailable, err)
		}
		return r, nil
	default:
		r, err := tesseract.New(settings.OCR.Languages, settings.Correction.Workers)
		if err != nil {
			if !tesseract.Available {
				return nil, fmt.Errorf("%w: this build has no tesseract support (rebuild with -tags ocr, or set ocr.engine=documentai)",
					domain.ErrOCRUnavailable)
			}
			return nil, err
		}
		return r, nil
	}
}
