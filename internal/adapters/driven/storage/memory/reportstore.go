package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// Ensure ReportStore implements the interface.
var _ driven.ReportStore = (*ReportStore)(nil)

// ReportStore is an in-memory implementation of driven.ReportStore.
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]domain.CorrectionReport
}

// NewReportStore creates a new in-memory report store.
func NewReportStore() *ReportStore {
	return &ReportStore{
		reports: make(map[string]domain.CorrectionReport),
	}
}

// Save stores or replaces a report.
func (s *ReportStore) Save(_ context.Context, report *domain.CorrectionReport) error {
	if report == nil || report.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = *report
	return nil
}

// Get retrieves a report by ID.
func (s *ReportStore) Get(_ context.Context, id string) (*domain.CorrectionReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &report, nil
}

// List returns report summaries, newest first.
func (s *ReportStore) List(_ context.Context, limit int) ([]domain.ReportSummary, error) {
	s.mu.RLock()
	summaries := make([]domain.ReportSummary, 0, len(s.reports))
	for i := range s.reports {
		r := s.reports[i]
		summaries = append(summaries, r.Summary())
	}
	s.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Delete removes a report.
func (s *ReportStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}
