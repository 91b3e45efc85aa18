package render

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// mockSource renders blank portrait rasters and counts calls.
type mockSource struct {
	mu           sync.Mutex
	pages        int
	orientations map[int]domain.Orientation
	countErr     error
	renderErr    map[int]error
	renders      map[int]int
}

func newMockSource(pages int) *mockSource {
	return &mockSource{
		pages:        pages,
		orientations: make(map[int]domain.Orientation),
		renderErr:    make(map[int]error),
		renders:      make(map[int]int),
	}
}

func (m *mockSource) URI() string { return "mock://scan" }

func (m *mockSource) PageCount(_ context.Context) (int, error) {
	return m.pages, m.countErr
}

func (m *mockSource) PageOrientation(_ context.Context, index int) (domain.Orientation, error) {
	return m.orientations[index], nil
}

func (m *mockSource) RenderPage(_ context.Context, index int, _ int) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.renderErr[index]; err != nil {
		return nil, err
	}
	m.renders[index]++
	img := image.NewGray(image.Rect(0, 0, 40, 60))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	// Mark the top-left corner so rotations are observable.
	img.Pix[0] = 0
	return img, nil
}

func (m *mockSource) Fingerprint() string { return "fp" }
func (m *mockSource) Close() error        { return nil }

func (m *mockSource) renderCount(index int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renders[index]
}

// mockRecognizer returns text keyed by page and orientation.
type mockRecognizer struct {
	mu    sync.Mutex
	texts map[domain.RasterKey]string
	fail  map[domain.RasterKey]bool
	calls int
}

func newMockRecognizer() *mockRecognizer {
	return &mockRecognizer{
		texts: make(map[domain.RasterKey]string),
		fail:  make(map[domain.RasterKey]bool),
	}
}

func (m *mockRecognizer) Name() string { return "mock" }

func (m *mockRecognizer) Recognize(ctx context.Context, in driven.RecognitionInput) (domain.Recognition, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recognition{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	key := domain.KeyFor(in.PageIndex, in.Orientation)
	if m.fail[key] {
		return domain.Recognition{}, errors.New("engine failure")
	}
	return domain.Recognition{Text: m.texts[key], Confidence: 0.9}, nil
}

func (m *mockRecognizer) Close() error { return nil }
