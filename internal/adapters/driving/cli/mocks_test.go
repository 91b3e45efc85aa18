package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
)

// mockCorrectionService is a mock implementation of driving.CorrectionService.
type mockCorrectionService struct {
	analysis   *domain.AnalysisReport
	result     *driving.CorrectionResult
	analyzeErr error
	correctErr error
	requests   []driving.CorrectionRequest
}

func (m *mockCorrectionService) Analyze(_ context.Context, path string) (*domain.AnalysisReport, error) {
	if m.analyzeErr != nil {
		return nil, m.analyzeErr
	}
	if m.analysis != nil {
		return m.analysis, nil
	}
	return &domain.AnalysisReport{SourceURI: path, PageCount: 3}, nil
}

func (m *mockCorrectionService) Correct(_ context.Context, req driving.CorrectionRequest) (*driving.CorrectionResult, error) {
	m.requests = append(m.requests, req)
	return m.result, m.correctErr
}

// mockReportService is a mock implementation of driving.ReportService.
type mockReportService struct {
	reports map[string]*domain.CorrectionReport
	limit   int
}

func (m *mockReportService) Get(_ context.Context, id string) (*domain.CorrectionReport, error) {
	if r, ok := m.reports[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockReportService) List(_ context.Context, limit int) ([]domain.ReportSummary, error) {
	m.limit = limit
	out := make([]domain.ReportSummary, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, r.Summary())
	}
	return out, nil
}

func (m *mockReportService) Delete(_ context.Context, id string) error {
	if _, ok := m.reports[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	values map[string]string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return nil }

func (m *mockSettingsService) Set(key, value string) error {
	if _, ok := m.values[key]; !ok {
		return domain.ErrInvalidInput
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) List() ([]driving.Setting, error) {
	return []driving.Setting{
		{Key: "render.dpi", Value: m.values["render.dpi"], Default: "150"},
		{Key: "thresholds.rotation", Value: m.values["thresholds.rotation"], Default: "0.8"},
	}, nil
}

func (m *mockSettingsService) Validate() error { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func sampleReport() *domain.CorrectionReport {
	zero, one := 0, 1
	return &domain.CorrectionReport{
		ID:                "rep-1",
		SourceURI:         "/scans/contract.pdf",
		CreatedAt:         time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		FinalQualityGrade: domain.GradeGood,
		FinalMetrics:      &domain.QualityMetrics{ReadableTextRatio: 0.84, DetectedElementCount: 12},
		Applied: []domain.AppliedCorrection{{
			Issue:  domain.NewRotationIssue(1, 180, 0.95).WithDetector("rotation"),
			Before: domain.QualityMetrics{ReadableTextRatio: 0.4, DetectedElementCount: 10},
			After:  domain.QualityMetrics{ReadableTextRatio: 0.84, DetectedElementCount: 12},
		}},
		RolledBack: []domain.RolledBackCorrection{{
			Issue:   domain.NewOrderingIssue([]int{1, 0}, 0.9).WithDetector("order"),
			Reasons: []domain.RejectionReason{domain.ReasonElementLoss},
		}},
		PageMapping: []domain.PageMapping{
			{OriginalIndex: 0, CorrectedIndex: &zero},
			{OriginalIndex: 1, CorrectedIndex: &one},
			{OriginalIndex: 2},
		},
		Passes:     1,
		OutputPath: "/scans/contract.fixed.pdf",
	}
}

type testServices struct {
	correction *mockCorrectionService
	reports    *mockReportService
	settings   *mockSettingsService
}

// setupTestServices injects mocks and returns them with a cleanup that
// restores the command globals.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		correction: &mockCorrectionService{},
		reports:    &mockReportService{reports: map[string]*domain.CorrectionReport{"rep-1": sampleReport()}},
		settings: &mockSettingsService{values: map[string]string{
			"render.dpi":          "150",
			"thresholds.rotation": "0.8",
		}},
	}
	SetServices(&Services{
		Correction: ts.correction,
		Reports:    ts.reports,
		Settings:   ts.settings,
		Supports:   func(string) bool { return true },
	})

	return ts, func() {
		SetServices(nil)
		analyzeFormat = formatText
		correctOutput, correctExporter, correctFormat = "", "", formatText
		correctAnalysisOnly = false
		reportLimit = 20
		reportListFormat, reportShowFormat = formatText, formatText
		watchOut, watchExporter = "", ""
		mcpHTTPAddr = ""
	}
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
