//go:build !(cgo && ocr)

package tesseract

import (
	"context"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// Ensure Recognizer implements the interface.
var _ driven.TextRecognizer = (*Recognizer)(nil)

// Available reports whether Tesseract support is compiled in.
const Available = false

// Recognizer is a stub for builds without the ocr tag.
type Recognizer struct{}

// New returns domain.ErrOCRUnavailable.
func New(_ []string, _ int) (*Recognizer, error) {
	return nil, domain.ErrOCRUnavailable
}

// Name returns the engine identifier.
func (r *Recognizer) Name() string {
	return string(domain.OCREngineTesseract)
}

// Recognize returns domain.ErrOCRUnavailable.
func (r *Recognizer) Recognize(_ context.Context, _ driven.RecognitionInput) (domain.Recognition, error) {
	return domain.Recognition{}, domain.ErrOCRUnavailable
}

// Close is a no-op.
func (r *Recognizer) Close() error {
	return nil
}
