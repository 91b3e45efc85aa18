package driven

import (
	"context"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// ReportStore persists correction reports.
// Backed by SQLite; reports are stored whole as JSON.
type ReportStore interface {
	// Save stores a report. Saving an existing ID replaces it.
	Save(ctx context.Context, report *domain.CorrectionReport) error

	// Get retrieves a report by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.CorrectionReport, error)

	// List returns summaries, newest first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]domain.ReportSummary, error)

	// Delete removes a report.
	Delete(ctx context.Context, id string) error
}
