package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
	"github.com/custodia-labs/pagefix/internal/logger"
)

// Ensure CorrectionService implements the interface.
var _ driving.CorrectionService = (*CorrectionService)(nil)

// CorrectionService runs the analyse, correct, verify pipeline over a source.
type CorrectionService struct {
	cfg           domain.CorrectionConfig
	sources       driven.SourceOpener
	sessions      driven.RenderSessionFactory
	analyzer      *Analyzer
	transformers  driven.TransformerFactory
	verifier      *QualityVerifier
	exporters     []driven.Exporter
	store         driven.ReportStore
	defaultExport domain.ExportFormat
}

// NewCorrectionService creates a correction service.
// Exporters are tried in order for ExportAuto. The store is optional - if
// nil, reports are not persisted.
func NewCorrectionService(
	cfg domain.CorrectionConfig,
	sources driven.SourceOpener,
	sessions driven.RenderSessionFactory,
	detectors []driven.Detector,
	transformers driven.TransformerFactory,
	exporters []driven.Exporter,
	store driven.ReportStore,
	defaultExport domain.ExportFormat,
) *CorrectionService {
	if defaultExport == "" {
		defaultExport = domain.ExportAuto
	}
	return &CorrectionService{
		cfg:           cfg,
		sources:       sources,
		sessions:      sessions,
		analyzer:      NewAnalyzer(cfg, detectors...),
		transformers:  transformers,
		verifier:      NewQualityVerifier(),
		exporters:     exporters,
		store:         store,
		defaultExport: defaultExport,
	}
}

// Analyze runs every detector once over the source.
// A time budget overrun returns the partial report marked incomplete.
func (s *CorrectionService) Analyze(ctx context.Context, path string) (*domain.AnalysisReport, error) {
	src, err := s.open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	session := s.sessions.NewSession(src, s.cfg.Render)
	doc, err := session.LoadDocument(ctx, s.cfg.Workers)
	if err != nil {
		return nil, err
	}

	actx, cancel := s.withBudget(ctx, s.deadline(time.Now()))
	defer cancel()
	report, err := s.analyzer.Analyze(actx, doc, session)
	if err != nil {
		if ctx.Err() != nil {
			return report, fmt.Errorf("%w: %w", domain.ErrCancelled, err)
		}
		logger.Warn("analysis of %s exceeded the time budget", path)
	}
	return report, nil
}

// Correct analyses and corrects the source in up to MaxAttempts passes.
// Issues attempted in one pass are not retried in later ones. Cancellation
// and time budget overruns yield an incomplete report, not an error.
//
//nolint:gocyclo // Pipeline with necessary sequential steps
func (s *CorrectionService) Correct(ctx context.Context, req driving.CorrectionRequest) (*driving.CorrectionResult, error) {
	analysisOnly := req.AnalysisOnly || !s.cfg.AutoCorrect
	if req.OutputPath != "" && samePath(req.Path, req.OutputPath) {
		return nil, fmt.Errorf("output %s would overwrite the source: %w", req.OutputPath, domain.ErrInvalidInput)
	}

	// 1. Open the source read-only and build the initial version
	src, err := s.open(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	start := time.Now()
	deadline := s.deadline(start)
	session := s.sessions.NewSession(src, s.cfg.Render)
	doc, err := session.LoadDocument(ctx, s.cfg.Workers)
	if err != nil {
		return nil, err
	}
	logger.Section("Correction")
	logger.Info("correcting %s (%d pages)", req.Path, doc.Len())

	// 2. Analyse, plan and execute until nothing new is planned
	tx := NewCorrectionTransaction(doc, s.transformers.NewTransformer(session), s.verifier, deadline)
	attempted := make(map[string]bool)
	failures := newFailureSet()
	var last *domain.AnalysisReport
	passes := 0

	for pass := 1; ; pass++ {
		actx, cancel := s.withBudget(ctx, deadline)
		analysis, err := s.analyzer.Analyze(actx, tx.Working(), session)
		cancel()
		if err != nil {
			if last == nil {
				last = analysis
			}
			if ctx.Err() != nil {
				tx.MarkIncomplete(string(domain.SkipCancelled))
			} else {
				tx.MarkIncomplete(string(domain.SkipTimeBudget))
			}
			break
		}
		last = analysis
		failures.add(analysis.Failures)

		plan := analysis.Plan.Without(attempted)
		if plan.IsEmpty() {
			break
		}
		if analysisOnly {
			_ = tx.Skip(plan.Issues, domain.SkipAutoCorrectDisabled)
			break
		}
		if pass > s.cfg.MaxAttempts {
			logger.Warn("%d issues left after %d passes", plan.Len(), s.cfg.MaxAttempts)
			_ = tx.Skip(plan.Issues, domain.SkipMaxAttempts)
			break
		}

		passes = pass
		for _, issue := range plan.Issues {
			attempted[issue.Key()] = true
		}
		logger.Info("pass %d: %d planned corrections", pass, plan.Len())
		committed := tx.Applied()
		if err := tx.Execute(ctx, plan); err != nil {
			return nil, err
		}
		if tx.Incomplete() || tx.Applied() == committed {
			break
		}
	}

	// 3. Finalize, export and persist
	report, err := tx.Finalize(ReportInfo{
		ID:                uuid.NewString(),
		SourceURI:         src.URI(),
		SourceFingerprint: src.Fingerprint(),
		OriginalPageCount: doc.Len(),
		CreatedAt:         start.UTC(),
		Analysis:          last,
		Failures:          failures.list(),
		Passes:            passes,
		AnalysisOnly:      analysisOnly,
	})
	if err != nil {
		return nil, err
	}
	result := &driving.CorrectionResult{Report: report, Document: tx.Working()}

	var exportErr error
	if req.OutputPath != "" && !analysisOnly && ctx.Err() == nil {
		exportErr = s.export(ctx, src, session, tx.Working(), req)
		if exportErr == nil {
			report.OutputPath = req.OutputPath
		}
	}

	s.save(ctx, report)
	logger.Info("correction finished: %d applied, %d rolled back, %d skipped, grade %s",
		len(report.Applied), len(report.RolledBack), len(report.Skipped), report.FinalQualityGrade)

	if exportErr != nil {
		return result, fmt.Errorf("export %s: %w", req.OutputPath, exportErr)
	}
	return result, nil
}

// open opens a source. Failures other than an unsupported type are fatal.
func (s *CorrectionService) open(ctx context.Context, path string) (driven.SourceDocument, error) {
	if s.sources == nil {
		return nil, fmt.Errorf("open %s: source opener not configured", path)
	}
	src, err := s.sources.Open(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedType) {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrFatalInput, path, err)
	}
	return src, nil
}

func (s *CorrectionService) deadline(start time.Time) time.Time {
	if s.cfg.TimeBudget <= 0 {
		return time.Time{}
	}
	return start.Add(s.cfg.TimeBudget)
}

func (s *CorrectionService) withBudget(ctx context.Context, deadline time.Time) (context.Context, context.CancelFunc) {
	if deadline.IsZero() {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, deadline)
}

// exporterFor selects the exporter for a format and source.
func (s *CorrectionService) exporterFor(format domain.ExportFormat, src driven.SourceDocument) (driven.Exporter, error) {
	if format == "" {
		format = s.defaultExport
	}
	switch format {
	case domain.ExportAuto:
		for _, e := range s.exporters {
			if e.Supports(src) {
				return e, nil
			}
		}
	case domain.ExportPDF, domain.ExportRaster:
		for _, e := range s.exporters {
			if e.Name() != string(format) {
				continue
			}
			if !e.Supports(src) {
				return nil, fmt.Errorf("exporter %s cannot write %s: %w", e.Name(), src.URI(), domain.ErrExportUnsupported)
			}
			return e, nil
		}
	default:
		return nil, fmt.Errorf("export format %q: %w", format, domain.ErrInvalidInput)
	}
	return nil, fmt.Errorf("no exporter for %s: %w", format, domain.ErrExportUnsupported)
}

// export writes the corrected version through a temporary file so a
// failed export never leaves a partial output behind.
func (s *CorrectionService) export(ctx context.Context, src driven.SourceDocument, pages driven.PageRenderer, doc *domain.PaginatedDocument, req driving.CorrectionRequest) error {
	exporter, err := s.exporterFor(req.Exporter, src)
	if err != nil {
		return err
	}

	dir := filepath.Dir(req.OutputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".pagefix-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := exporter.Export(ctx, src, pages, doc, tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s exporter: %w", exporter.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, req.OutputPath); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	logger.Info("wrote %s with the %s exporter", req.OutputPath, exporter.Name())
	return nil
}

// save persists the report even when the run was cancelled.
func (s *CorrectionService) save(ctx context.Context, report *domain.CorrectionReport) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(context.WithoutCancel(ctx), report); err != nil {
		logger.Warn("failed to save report %s: %v", report.ID, err)
	}
}

// samePath reports whether two paths name the same file.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// failureSet accumulates detector failures across passes without repeats.
type failureSet struct {
	seen  map[domain.DetectorFailure]bool
	items []domain.DetectorFailure
}

func newFailureSet() *failureSet {
	return &failureSet{seen: make(map[domain.DetectorFailure]bool)}
}

func (f *failureSet) add(failures []domain.DetectorFailure) {
	for _, df := range failures {
		if !f.seen[df] {
			f.seen[df] = true
			f.items = append(f.items, df)
		}
	}
}

func (f *failureSet) list() []domain.DetectorFailure {
	return f.items
}
