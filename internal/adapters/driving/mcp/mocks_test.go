package mcp

import (
	"context"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
)

// mockCorrectionService is a mock implementation of driving.CorrectionService.
type mockCorrectionService struct {
	analysis *domain.AnalysisReport
	result   *driving.CorrectionResult
	err      error
	request  driving.CorrectionRequest
}

func (m *mockCorrectionService) Analyze(_ context.Context, _ string) (*domain.AnalysisReport, error) {
	return m.analysis, m.err
}

func (m *mockCorrectionService) Correct(_ context.Context, req driving.CorrectionRequest) (*driving.CorrectionResult, error) {
	m.request = req
	return m.result, m.err
}

// mockReportService is a mock implementation of driving.ReportService.
type mockReportService struct {
	reports   map[string]*domain.CorrectionReport
	summaries []domain.ReportSummary
	err       error
	limit     int
}

func (m *mockReportService) Get(_ context.Context, id string) (*domain.CorrectionReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockReportService) List(_ context.Context, limit int) ([]domain.ReportSummary, error) {
	m.limit = limit
	return m.summaries, m.err
}

func (m *mockReportService) Delete(_ context.Context, _ string) error {
	return m.err
}
