package services

import (
	"context"
	"errors"
	"image"
	"io"
	"strings"
	"sync"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// mockDetector implements driven.Detector for testing.
type mockDetector struct {
	name      string
	detection driven.Detection
	err       error

	// detect, when set, computes the detection from the analysed version.
	detect func(doc *domain.PaginatedDocument) driven.Detection

	// waitForCancel blocks until the context is done.
	waitForCancel bool
}

func (m *mockDetector) Name() string {
	return m.name
}

func (m *mockDetector) Detect(ctx context.Context, doc *domain.PaginatedDocument, _ driven.PageRenderer) (driven.Detection, error) {
	if m.waitForCancel {
		<-ctx.Done()
		return driven.Detection{}, ctx.Err()
	}
	if m.detect != nil {
		return m.detect(doc), nil
	}
	return m.detection, m.err
}

// applyFunc is the shape of a transformer step.
type applyFunc func(ctx context.Context, doc *domain.PaginatedDocument, issue domain.Issue) (*domain.PaginatedDocument, error)

// mockTransformer implements driven.Transformer for testing.
type mockTransformer struct {
	mu    sync.Mutex
	apply applyFunc
	calls []domain.Issue
}

func (m *mockTransformer) Apply(ctx context.Context, doc *domain.PaginatedDocument, issue domain.Issue) (*domain.PaginatedDocument, error) {
	m.mu.Lock()
	m.calls = append(m.calls, issue)
	m.mu.Unlock()
	return m.apply(ctx, doc, issue)
}

func (m *mockTransformer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// setText returns a step that replaces the text of the issue's target page.
func setText(text *string) applyFunc {
	return func(_ context.Context, doc *domain.PaginatedDocument, issue domain.Issue) (*domain.PaginatedDocument, error) {
		idx := doc.IndexOfOriginal(issue.TargetPage())
		p, _ := doc.Page(idx)
		return doc.WithPage(idx, p.Rotated(p.RenderRotation(), text))
	}
}

// mockSource implements driven.SourceDocument for testing.
type mockSource struct {
	uri    string
	closed bool
}

func (m *mockSource) URI() string { return m.uri }

func (m *mockSource) PageCount(_ context.Context) (int, error) { return 0, nil }

func (m *mockSource) PageOrientation(_ context.Context, _ int) (domain.Orientation, error) {
	return domain.Orientation0, nil
}

func (m *mockSource) RenderPage(_ context.Context, _ int, _ int) (image.Image, error) {
	return nil, errors.New("not rendered in tests")
}

func (m *mockSource) Fingerprint() string { return "sha256:mock" }

func (m *mockSource) Close() error {
	m.closed = true
	return nil
}

// mockOpener implements driven.SourceOpener for testing.
type mockOpener struct {
	src *mockSource
	err error
}

func (m *mockOpener) Open(_ context.Context, uri string) (driven.SourceDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.src = &mockSource{uri: uri}
	return m.src, nil
}

func (m *mockOpener) Supports(_ string) bool { return m.err == nil }

// mockSession implements driven.RenderSession over fixed page texts.
// texts holds the text each raster key recognises to.
type mockSession struct {
	doc     *domain.PaginatedDocument
	loadErr error
	texts   map[domain.RasterKey]string
}

func (m *mockSession) LoadDocument(_ context.Context, _ int) (*domain.PaginatedDocument, error) {
	return m.doc, m.loadErr
}

func (m *mockSession) Text(_ context.Context, key domain.RasterKey) (*string, error) {
	if text, ok := m.texts[key]; ok {
		return &text, nil
	}
	return nil, nil
}

func (m *mockSession) Raster(_ context.Context, _ domain.RasterKey) (*image.Gray, error) {
	return image.NewGray(image.Rect(0, 0, 4, 4)), nil
}

func (m *mockSession) Thumbnail(_ context.Context, _ domain.RasterKey) (*image.Gray, error) {
	return image.NewGray(image.Rect(0, 0, 4, 4)), nil
}

func (m *mockSession) Recognize(ctx context.Context, key domain.RasterKey) (domain.Recognition, error) {
	text, _ := m.Text(ctx, key)
	if text == nil {
		return domain.Recognition{}, domain.ErrOCRUnavailable
	}
	return domain.Recognition{Text: *text, Confidence: 0.9}, nil
}

// mockSessions implements driven.RenderSessionFactory for testing.
type mockSessions struct {
	session *mockSession
}

func (m *mockSessions) NewSession(_ driven.SourceDocument, _ domain.RenderSettings) driven.RenderSession {
	return m.session
}

// mockExporter implements driven.Exporter for testing.
type mockExporter struct {
	name     string
	supports bool
	err      error
	exported *domain.PaginatedDocument
}

func (m *mockExporter) Name() string { return m.name }

func (m *mockExporter) Supports(_ driven.SourceDocument) bool { return m.supports }

func (m *mockExporter) Export(_ context.Context, _ driven.SourceDocument, _ driven.PageRenderer, doc *domain.PaginatedDocument, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	m.exported = doc
	_, err := io.Copy(w, strings.NewReader(m.name+":"+doc.Fingerprint()))
	return err
}

// Verify interface compliance.
var (
	_ driven.Detector             = (*mockDetector)(nil)
	_ driven.Transformer          = (*mockTransformer)(nil)
	_ driven.SourceOpener         = (*mockOpener)(nil)
	_ driven.RenderSession        = (*mockSession)(nil)
	_ driven.RenderSessionFactory = (*mockSessions)(nil)
	_ driven.Exporter             = (*mockExporter)(nil)
)
