//go:build cgo && ocr

package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/imaging"
)

// Ensure Recognizer implements the interface.
var _ driven.TextRecognizer = (*Recognizer)(nil)

// Available reports whether Tesseract support is compiled in.
const Available = true

// Recognizer runs Tesseract over page rasters. A gosseract client is not
// safe for concurrent use, so clients are pooled, one per worker.
type Recognizer struct {
	languages []string
	pool      chan *gosseract.Client
}

// New creates a recognizer with up to workers concurrent clients.
func New(languages []string, workers int) (*Recognizer, error) {
	if workers < 1 {
		workers = 1
	}
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	r := &Recognizer{
		languages: languages,
		pool:      make(chan *gosseract.Client, workers),
	}
	for i := 0; i < workers; i++ {
		r.pool <- nil
	}
	return r, nil
}

// Name returns the engine identifier.
func (r *Recognizer) Name() string {
	return string(domain.OCREngineTesseract)
}

// Recognize returns the page text and the mean word confidence.
func (r *Recognizer) Recognize(ctx context.Context, in driven.RecognitionInput) (domain.Recognition, error) {
	if in.Image == nil {
		return domain.Recognition{}, fmt.Errorf("page %d: no image: %w", in.PageIndex+1, domain.ErrInvalidInput)
	}
	data, err := imaging.EncodePNG(in.Image)
	if err != nil {
		return domain.Recognition{}, err
	}

	var client *gosseract.Client
	select {
	case client = <-r.pool:
	case <-ctx.Done():
		return domain.Recognition{}, ctx.Err()
	}
	defer func() { r.pool <- client }()

	if client == nil {
		client = gosseract.NewClient()
		if err := client.SetLanguage(r.languages...); err != nil {
			_ = client.Close()
			client = nil
			return domain.Recognition{}, fmt.Errorf("set languages %s: %w", strings.Join(r.languages, "+"), err)
		}
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return domain.Recognition{}, fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return domain.Recognition{}, fmt.Errorf("OCR failed: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return domain.Recognition{}, fmt.Errorf("word boxes: %w", err)
	}

	rec := domain.Recognition{Text: strings.TrimSpace(text)}
	if len(boxes) > 0 {
		var sum float64
		for _, b := range boxes {
			sum += b.Confidence
		}
		rec.Confidence = sum / float64(len(boxes)) / 100
	}
	return rec, nil
}

// Close releases every pooled client.
func (r *Recognizer) Close() error {
	var firstErr error
	for i := 0; i < cap(r.pool); i++ {
		if c := <-r.pool; c != nil {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
