package driving

import (
	"context"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// ReportService provides access to stored correction reports.
type ReportService interface {
	// Get retrieves a report by ID.
	Get(ctx context.Context, id string) (*domain.CorrectionReport, error)

	// List returns report summaries, newest first.
	List(ctx context.Context, limit int) ([]domain.ReportSummary, error)

	// Delete removes a report.
	Delete(ctx context.Context, id string) error
}
