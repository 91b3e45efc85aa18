// Package documentai recognises page text with Google Cloud Document AI.
package documentai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/imaging"
)

// Verify interface compliance.
var _ driven.TextRecognizer = (*Recognizer)(nil)

// Processor is the subset of the Document AI client the recognizer uses.
type Processor interface {
	Process(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error)
	Close() error
}

// clientProcessor adapts the generated client to Processor.
type clientProcessor struct {
	client *documentai.DocumentProcessorClient
}

func (c *clientProcessor) Process(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error) {
	return c.client.ProcessDocument(ctx, req)
}

func (c *clientProcessor) Close() error {
	return c.client.Close()
}

// Recognizer sends each page raster to an OCR processor.
type Recognizer struct {
	name      string
	processor Processor
	closeOnce sync.Once
}

// New connects to the regional Document AI endpoint for the settings.
func New(ctx context.Context, settings domain.DocumentAISettings) (*Recognizer, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("documentai: project_id, location and processor_id are required: %w", domain.ErrInvalidInput)
	}
	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", settings.Location)),
	}
	if settings.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(settings.CredentialsFile))
	}
	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create Document AI client: %w", err)
	}
	return NewWithProcessor(settings, &clientProcessor{client: client}), nil
}

// NewWithProcessor creates a recognizer over an existing processor.
func NewWithProcessor(settings domain.DocumentAISettings, p Processor) *Recognizer {
	return &Recognizer{
		name: fmt.Sprintf("projects/%s/locations/%s/processors/%s",
			settings.ProjectID, settings.Location, settings.ProcessorID),
		processor: p,
	}
}

// Name returns the engine identifier.
func (r *Recognizer) Name() string {
	return string(domain.OCREngineDocumentAI)
}

// Recognize submits the raster as a PNG and returns the document text with
// the mean token confidence.
func (r *Recognizer) Recognize(ctx context.Context, in driven.RecognitionInput) (domain.Recognition, error) {
	if in.Image == nil {
		return domain.Recognition{}, fmt.Errorf("page %d: no image: %w", in.PageIndex+1, domain.ErrInvalidInput)
	}
	data, err := imaging.EncodePNG(in.Image)
	if err != nil {
		return domain.Recognition{}, err
	}

	resp, err := r.processor.Process(ctx, &documentaipb.ProcessRequest{
		Name: r.name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: "image/png",
			},
		},
		SkipHumanReview: true,
	})
	if err != nil {
		return domain.Recognition{}, fmt.Errorf("process page %d: %w", in.PageIndex+1, err)
	}
	doc := resp.GetDocument()
	if doc == nil {
		return domain.Recognition{}, errors.New("empty Document AI response")
	}

	var sum float64
	var n int
	for _, page := range doc.GetPages() {
		for _, tok := range page.GetTokens() {
			sum += float64(tok.GetLayout().GetConfidence())
			n++
		}
	}
	rec := domain.Recognition{Text: strings.TrimSpace(doc.GetText())}
	if n > 0 {
		rec.Confidence = sum / float64(n)
	}
	return rec, nil
}

// Close closes the client.
func (r *Recognizer) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.processor.Close()
	})
	return err
}
