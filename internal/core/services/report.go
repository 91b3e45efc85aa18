package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
)

// Ensure ReportService implements the interface.
var _ driving.ReportService = (*ReportService)(nil)

// ReportService provides access to stored correction reports.
type ReportService struct {
	store driven.ReportStore
}

// NewReportService creates a new report service.
func NewReportService(store driven.ReportStore) *ReportService {
	return &ReportService{store: store}
}

// Get retrieves a report by ID.
func (s *ReportService) Get(ctx context.Context, id string) (*domain.CorrectionReport, error) {
	if id == "" {
		return nil, fmt.Errorf("report id: %w", domain.ErrInvalidInput)
	}
	report, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	return report, nil
}

// List returns report summaries, newest first.
func (s *ReportService) List(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit %d: %w", limit, domain.ErrInvalidInput)
	}
	return s.store.List(ctx, limit)
}

// Delete removes a report.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("report id: %w", domain.ErrInvalidInput)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	return nil
}
