package render

import (
	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.RenderSession        = (*Cache)(nil)
	_ driven.RenderSessionFactory = (*Factory)(nil)
)

// Factory starts one cache per opened source, sharing a recognizer.
type Factory struct {
	ocr driven.TextRecognizer
}

// NewFactory creates a factory. ocr may be nil.
func NewFactory(ocr driven.TextRecognizer) *Factory {
	return &Factory{ocr: ocr}
}

// NewSession returns a fresh cache for src.
func (f *Factory) NewSession(src driven.SourceDocument, settings domain.RenderSettings) driven.RenderSession {
	return New(src, f.ocr, settings)
}
