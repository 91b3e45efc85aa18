package driven

import (
	"context"
	"image"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// RecognitionInput is one raster submitted for text recognition.
type RecognitionInput struct {
	// PageIndex is the original page index, for diagnostics.
	PageIndex int

	// Orientation is the rotation already applied to Image.
	Orientation domain.Orientation

	// Image is the rendered raster.
	Image image.Image
}

// TextRecognizer extracts text and a confidence score from a raster.
// Implementations: Tesseract (cgo, local) and Google Document AI (cloud).
type TextRecognizer interface {
	// Name returns the engine identifier.
	Name() string

	// Recognize returns the text with line breaks preserved and the mean
	// word confidence in [0,1].
	Recognize(ctx context.Context, in RecognitionInput) (domain.Recognition, error)

	// Close releases engine resources.
	Close() error
}
