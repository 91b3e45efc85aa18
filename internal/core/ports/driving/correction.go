package driving

import (
	"context"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// CorrectionRequest describes one correction run.
type CorrectionRequest struct {
	// Path is the source URI to correct.
	Path string

	// OutputPath is where the corrected document is written.
	// Empty means no export.
	OutputPath string

	// Exporter selects the output writer. Empty uses the configured format.
	Exporter domain.ExportFormat

	// AnalysisOnly reports the plan without applying it.
	AnalysisOnly bool
}

// CorrectionResult is the outcome of a correction run.
type CorrectionResult struct {
	Report *domain.CorrectionReport

	// Document is the final corrected version.
	Document *domain.PaginatedDocument
}

// CorrectionService analyses and corrects scanned documents.
type CorrectionService interface {
	// Analyze runs every detector once and returns the plan without
	// applying it. Only domain.ErrFatalInput and cancellation are returned.
	Analyze(ctx context.Context, path string) (*domain.AnalysisReport, error)

	// Correct analyses the document, applies the plan under quality
	// verification, exports the result and stores the report.
	Correct(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error)
}
