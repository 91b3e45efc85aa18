package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagefix/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/core/ports/driving"
	"github.com/custodia-labs/pagefix/internal/transformers"
)

const proseC = "The survey began in spring and the team visited many schools during the first month."

// correctionHarness wires a CorrectionService to in-memory fakes.
type correctionHarness struct {
	opener  *mockOpener
	session *mockSession
	store   *memory.ReportStore
	pdf     *mockExporter
	raster  *mockExporter
}

func newCorrectionHarness(doc *domain.PaginatedDocument, texts map[domain.RasterKey]string) *correctionHarness {
	return &correctionHarness{
		opener:  &mockOpener{},
		session: &mockSession{doc: doc, texts: texts},
		store:   memory.NewReportStore(),
		pdf:     &mockExporter{name: "pdf"},
		raster:  &mockExporter{name: "raster", supports: true},
	}
}

func (h *correctionHarness) service(cfg domain.CorrectionConfig, detectors ...driven.Detector) *CorrectionService {
	return NewCorrectionService(cfg, h.opener, &mockSessions{session: h.session}, detectors,
		transformers.Factory{}, []driven.Exporter{h.pdf, h.raster}, h.store, domain.ExportAuto)
}

// scoresFor gives every page of doc a confident recognition score.
func scoresFor(doc *domain.PaginatedDocument) []domain.PageScore {
	scores := make([]domain.PageScore, 0, doc.Len())
	for _, orig := range doc.Originals() {
		scores = append(scores, domain.PageScore{Page: orig, Score: 0.95})
	}
	return scores
}

// upsideDownDetector reports the first unreadable page as rotated by 90 degrees.
func upsideDownDetector() *mockDetector {
	return &mockDetector{name: "rotation", detect: func(doc *domain.PaginatedDocument) driven.Detection {
		det := driven.Detection{Scores: scoresFor(doc)}
		for _, p := range doc.Pages() {
			if p.TextOrEmpty() == gibberish {
				det.Issues = append(det.Issues, domain.NewRotationIssue(p.OriginalIndex, 90, 0.95))
				break
			}
		}
		return det
	}}
}

func fixedDetector(name string, issues ...domain.Issue) *mockDetector {
	return &mockDetector{name: name, detect: func(doc *domain.PaginatedDocument) driven.Detection {
		return driven.Detection{Issues: issues, Scores: scoresFor(doc)}
	}}
}

func TestCorrectionService_CleanInput(t *testing.T) {
	doc := textDoc(proseA, proseB)
	h := newCorrectionHarness(doc, nil)
	svc := h.service(domain.DefaultCorrectionConfig(), fixedDetector("rotation"))

	result, err := svc.Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/clean.pdf"})

	require.NoError(t, err)
	r := result.Report
	assert.Empty(t, r.Applied)
	assert.Empty(t, r.RolledBack)
	assert.Empty(t, r.Skipped)
	assert.Equal(t, 0, r.Passes)
	assert.Equal(t, domain.GradeExcellent, r.FinalQualityGrade)
	assert.False(t, r.Incomplete)
	assert.Equal(t, "sha256:mock", r.SourceFingerprint)
	assert.True(t, result.Document.Equal(doc))
	assert.True(t, h.opener.src.closed)

	stored, err := h.store.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, stored.ID)
}

func TestCorrectionService_CleanInputWithModerateConfidence(t *testing.T) {
	doc := textDoc(proseA, proseB)
	detector := &mockDetector{name: "quality", detect: func(doc *domain.PaginatedDocument) driven.Detection {
		scores := make([]domain.PageScore, 0, doc.Len())
		for _, orig := range doc.Originals() {
			scores = append(scores, domain.PageScore{Page: orig, Score: 0.80})
		}
		return driven.Detection{Scores: scores}
	}}
	h := newCorrectionHarness(doc, nil)
	svc := h.service(domain.DefaultCorrectionConfig(), detector)

	result, err := svc.Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/clean.pdf"})

	require.NoError(t, err)
	assert.Empty(t, result.Report.Applied)
	assert.Empty(t, result.Report.Uncertain)
	assert.Equal(t, domain.GradeExcellent, result.Report.FinalQualityGrade)
}

func TestCorrectionService_SingleRotatedPage(t *testing.T) {
	doc := textDoc(proseA, gibberish, proseB)
	h := newCorrectionHarness(doc, map[domain.RasterKey]string{
		domain.KeyFor(1, domain.Orientation270): proseC,
	})
	svc := h.service(domain.DefaultCorrectionConfig(), upsideDownDetector())
	out := filepath.Join(t.TempDir(), "out", "fixed.pdf")

	result, err := svc.Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/in.pdf", OutputPath: out})

	require.NoError(t, err)
	r := result.Report
	require.Len(t, r.Applied, 1)
	assert.Equal(t, domain.IssueRotation, r.Applied[0].Issue.Kind)
	assert.Greater(t, r.Applied[0].After.ReadableTextRatio, r.Applied[0].Before.ReadableTextRatio*domain.ReadabilityGainFactor)
	assert.Equal(t, 1, r.Passes)
	assert.Equal(t, out, r.OutputPath)
	for orig := 0; orig < 3; orig++ {
		idx, ok := r.CorrectedIndexOf(orig)
		assert.True(t, ok)
		assert.Equal(t, orig, idx)
	}

	page, _ := result.Document.Page(1)
	assert.Equal(t, domain.Orientation0, page.Orientation)
	assert.Equal(t, domain.Orientation270, page.RenderRotation())
	assert.Equal(t, proseC, page.TextOrEmpty())
	assert.Equal(t, gibberish, doc.Pages()[1].TextOrEmpty())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "raster:"+result.Document.Fingerprint(), string(data))
	assert.Nil(t, h.pdf.exported)
}

func TestCorrectionService_AmbiguousDuplicateNotPlanned(t *testing.T) {
	h := newCorrectionHarness(textDoc(proseA, proseB, proseC), nil)
	svc := h.service(domain.DefaultCorrectionConfig(),
		fixedDetector("duplicate", domain.NewDuplicateIssue(0, 2, 0.88)))

	result, err := svc.Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/in.pdf"})

	require.NoError(t, err)
	assert.Empty(t, result.Report.Applied)
	assert.Empty(t, result.Report.Skipped)
	assert.Equal(t, 3, result.Document.Len())
}

func TestCorrectionService_DestructiveReorderRejected(t *testing.T) {
	// Moving page 4 after page 1 joins the sentence broken across them,
	// but the table spanning pages 2 and 3 ends up split.
	doc := textDoc(
		"The team will continue the work next year.\nWe thank every school for",
		"Name  Cost  Total",
		"Pens  4  8",
		"the help during the year.\nThe project was a success.",
	)
	h := newCorrectionHarness(doc, nil)
	svc := h.service(domain.DefaultCorrectionConfig(),
		fixedDetector("order", domain.NewOrderingIssue([]int{1, 0, 3, 2}, 0.9)))

	result, err := svc.Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/in.pdf"})

	require.NoError(t, err)
	r := result.Report
	assert.Empty(t, r.Applied)
	require.Len(t, r.RolledBack, 1)
	rb := r.RolledBack[0]
	assert.Equal(t, []domain.RejectionReason{domain.ReasonElementLoss}, rb.Reasons)
	require.NotNil(t, rb.Before)
	require.NotNil(t, rb.After)
	assert.Greater(t, rb.After.ReadableTextRatio, rb.Before.ReadableTextRatio*domain.ReadabilityGainFactor)
	assert.Equal(t, 1, rb.Before.DetectedElementCount)
	assert.Equal(t, 0, rb.After.DetectedElementCount)
	assert.Equal(t, doc.Fingerprint(), result.Document.Fingerprint())
	assert.Equal(t, 1, r.Passes)
}

func TestCorrectionService_AnalysisOnly(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(c *domain.CorrectionConfig)
		request bool
	}{
		{"requested", func(*domain.CorrectionConfig) {}, true},
		{"configured", func(c *domain.CorrectionConfig) { c.AutoCorrect = false }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultCorrectionConfig()
			tt.cfg(&cfg)
			h := newCorrectionHarness(textDoc(proseA, gibberish), map[domain.RasterKey]string{
				domain.KeyFor(1, domain.Orientation270): proseC,
			})
			out := filepath.Join(t.TempDir(), "fixed.pdf")

			result, err := h.service(cfg, upsideDownDetector()).Correct(context.Background(),
				driving.CorrectionRequest{Path: "/scans/in.pdf", OutputPath: out, AnalysisOnly: tt.request})

			require.NoError(t, err)
			r := result.Report
			assert.True(t, r.AnalysisOnly)
			assert.Empty(t, r.Applied)
			require.Len(t, r.Skipped, 1)
			assert.Equal(t, domain.SkipAutoCorrectDisabled, r.Skipped[0].Reason)
			assert.Empty(t, r.OutputPath)
			assert.NoFileExists(t, out)
		})
	}
}

func TestCorrectionService_MultiPass(t *testing.T) {
	texts := map[domain.RasterKey]string{
		domain.KeyFor(0, domain.Orientation270): proseC,
		domain.KeyFor(1, domain.Orientation270): proseB,
	}

	t.Run("second pass corrects what the first uncovered", func(t *testing.T) {
		h := newCorrectionHarness(textDoc(gibberish, gibberish, proseA), texts)

		result, err := h.service(domain.DefaultCorrectionConfig(), upsideDownDetector()).
			Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/in.pdf"})

		require.NoError(t, err)
		assert.Len(t, result.Report.Applied, 2)
		assert.Equal(t, 2, result.Report.Passes)
		assert.Empty(t, result.Report.Skipped)
	})

	t.Run("max attempts", func(t *testing.T) {
		cfg := domain.DefaultCorrectionConfig()
		cfg.MaxAttempts = 1
		h := newCorrectionHarness(textDoc(gibberish, gibberish, proseA), texts)

		result, err := h.service(cfg, upsideDownDetector()).
			Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/in.pdf"})

		require.NoError(t, err)
		r := result.Report
		assert.Len(t, r.Applied, 1)
		assert.Equal(t, 1, r.Passes)
		require.Len(t, r.Skipped, 1)
		assert.Equal(t, domain.SkipMaxAttempts, r.Skipped[0].Reason)
		assert.Equal(t, 1, r.Skipped[0].Issue.Rotation.Page)
	})
}

func TestCorrectionService_AttemptedIssuesNotRetried(t *testing.T) {
	// The rotation never helps, so it is rolled back once and not retried.
	h := newCorrectionHarness(textDoc(proseA, gibberish), nil)
	svc := h.service(domain.DefaultCorrectionConfig(),
		fixedDetector("rotation", domain.NewRotationIssue(1, 90, 0.95)))

	result, err := svc.Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/in.pdf"})

	require.NoError(t, err)
	require.Len(t, result.Report.RolledBack, 1)
	assert.Equal(t, []domain.RejectionReason{domain.ReasonQualityUnknown}, result.Report.RolledBack[0].Reasons)
	assert.Equal(t, 1, result.Report.Passes)
}

func TestCorrectionService_FatalInput(t *testing.T) {
	t.Run("unreadable source", func(t *testing.T) {
		h := newCorrectionHarness(nil, nil)
		h.opener.err = os.ErrNotExist

		_, err := h.service(domain.DefaultCorrectionConfig()).
			Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/missing.pdf"})

		assert.ErrorIs(t, err, domain.ErrFatalInput)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unsupported type", func(t *testing.T) {
		h := newCorrectionHarness(nil, nil)
		h.opener.err = domain.ErrUnsupportedType

		_, err := h.service(domain.DefaultCorrectionConfig()).
			Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/notes.txt"})

		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
		assert.NotErrorIs(t, err, domain.ErrFatalInput)
	})

	t.Run("no pages", func(t *testing.T) {
		h := newCorrectionHarness(nil, nil)
		h.session.loadErr = domain.ErrFatalInput

		_, err := h.service(domain.DefaultCorrectionConfig()).
			Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/empty.pdf"})

		assert.ErrorIs(t, err, domain.ErrFatalInput)
		assert.True(t, h.opener.src.closed)
	})
}

func TestCorrectionService_RefusesToOverwriteSource(t *testing.T) {
	h := newCorrectionHarness(textDoc(proseA), nil)

	_, err := h.service(domain.DefaultCorrectionConfig()).Correct(context.Background(),
		driving.CorrectionRequest{Path: "/scans/in.pdf", OutputPath: "/scans/../scans/in.pdf"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, h.opener.src)
}

func TestCorrectionService_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newCorrectionHarness(textDoc(proseA, gibberish), nil)
	svc := h.service(domain.DefaultCorrectionConfig(), &mockDetector{name: "rotation", waitForCancel: true})
	out := filepath.Join(t.TempDir(), "fixed.pdf")

	result, err := svc.Correct(ctx, driving.CorrectionRequest{Path: "/scans/in.pdf", OutputPath: out})

	require.NoError(t, err)
	assert.True(t, result.Report.Incomplete)
	assert.Equal(t, string(domain.SkipCancelled), result.Report.IncompleteReason)
	assert.Equal(t, domain.GradePoor, result.Report.FinalQualityGrade)
	assert.NoFileExists(t, out)

	_, err = h.store.Get(context.Background(), result.Report.ID)
	assert.NoError(t, err)
}

func TestCorrectionService_TimeBudget(t *testing.T) {
	cfg := domain.DefaultCorrectionConfig()
	cfg.TimeBudget = time.Nanosecond
	h := newCorrectionHarness(textDoc(proseA), nil)
	svc := h.service(cfg, &mockDetector{name: "rotation", waitForCancel: true})

	result, err := svc.Correct(context.Background(), driving.CorrectionRequest{Path: "/scans/in.pdf"})

	require.NoError(t, err)
	assert.True(t, result.Report.Incomplete)
	assert.Equal(t, string(domain.SkipTimeBudget), result.Report.IncompleteReason)
}

func TestCorrectionService_Export(t *testing.T) {
	t.Run("explicit exporter that cannot handle the source", func(t *testing.T) {
		h := newCorrectionHarness(textDoc(proseA), nil)
		out := filepath.Join(t.TempDir(), "fixed.pdf")

		result, err := h.service(domain.DefaultCorrectionConfig()).Correct(context.Background(),
			driving.CorrectionRequest{Path: "/scans/in", OutputPath: out, Exporter: domain.ExportPDF})

		assert.ErrorIs(t, err, domain.ErrExportUnsupported)
		require.NotNil(t, result)
		assert.Empty(t, result.Report.OutputPath)
		assert.NoFileExists(t, out)
	})

	t.Run("exporter failure leaves no partial file", func(t *testing.T) {
		h := newCorrectionHarness(textDoc(proseA), nil)
		h.raster.err = errors.New("disk full")
		dir := t.TempDir()
		out := filepath.Join(dir, "fixed.pdf")

		_, err := h.service(domain.DefaultCorrectionConfig()).Correct(context.Background(),
			driving.CorrectionRequest{Path: "/scans/in", OutputPath: out})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		entries, readErr := os.ReadDir(dir)
		require.NoError(t, readErr)
		assert.Empty(t, entries)
	})

	t.Run("auto prefers the first exporter that supports the source", func(t *testing.T) {
		h := newCorrectionHarness(textDoc(proseA), nil)
		h.pdf.supports = true
		out := filepath.Join(t.TempDir(), "fixed.pdf")

		_, err := h.service(domain.DefaultCorrectionConfig()).Correct(context.Background(),
			driving.CorrectionRequest{Path: "/scans/in.pdf", OutputPath: out})

		require.NoError(t, err)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "pdf:"))
	})
}

func TestCorrectionService_Analyze(t *testing.T) {
	h := newCorrectionHarness(textDoc(proseA, gibberish), nil)
	svc := h.service(domain.DefaultCorrectionConfig(), upsideDownDetector())

	report, err := svc.Analyze(context.Background(), "/scans/in.pdf")

	require.NoError(t, err)
	assert.Equal(t, 2, report.PageCount)
	require.Equal(t, 1, report.Plan.Len())
	assert.Equal(t, 1, report.Plan.Issues[0].Rotation.Page)
	assert.True(t, h.opener.src.closed)
}

func TestCorrectionService_AnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newCorrectionHarness(textDoc(proseA), nil)
	svc := h.service(domain.DefaultCorrectionConfig(), &mockDetector{name: "rotation", waitForCancel: true})

	report, err := svc.Analyze(ctx, "/scans/in.pdf")

	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.True(t, report.Incomplete)
}
