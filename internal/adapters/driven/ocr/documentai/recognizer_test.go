package documentai

import (
	"context"
	"errors"
	"image"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

type mockProcessor struct {
	resp   *documentaipb.ProcessResponse
	err    error
	req    *documentaipb.ProcessRequest
	closed int
}

func (m *mockProcessor) Process(_ context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error) {
	m.req = req
	return m.resp, m.err
}

func (m *mockProcessor) Close() error {
	m.closed++
	return nil
}

var settings = domain.DocumentAISettings{ProjectID: "proj", Location: "eu", ProcessorID: "ocr1"}

func token(conf float32) *documentaipb.Document_Page_Token {
	return &documentaipb.Document_Page_Token{Layout: &documentaipb.Document_Page_Layout{Confidence: conf}}
}

func input() driven.RecognitionInput {
	return driven.RecognitionInput{PageIndex: 2, Image: image.NewGray(image.Rect(0, 0, 8, 8))}
}

func TestRecognizer_Recognize(t *testing.T) {
	proc := &mockProcessor{resp: &documentaipb.ProcessResponse{
		Document: &documentaipb.Document{
			Text: "  Chapter one\nbegins here\n",
			Pages: []*documentaipb.Document_Page{
				{Tokens: []*documentaipb.Document_Page_Token{token(0.9), token(0.7)}},
			},
		},
	}}
	r := NewWithProcessor(settings, proc)

	rec, err := r.Recognize(context.Background(), input())

	require.NoError(t, err)
	assert.Equal(t, "Chapter one\nbegins here", rec.Text)
	assert.InDelta(t, 0.8, rec.Confidence, 1e-6)
	assert.Equal(t, "projects/proj/locations/eu/processors/ocr1", proc.req.GetName())
	assert.Equal(t, "image/png", proc.req.GetRawDocument().GetMimeType())
	assert.NotEmpty(t, proc.req.GetRawDocument().GetContent())
}

func TestRecognizer_NoTokens(t *testing.T) {
	r := NewWithProcessor(settings, &mockProcessor{resp: &documentaipb.ProcessResponse{
		Document: &documentaipb.Document{},
	}})

	rec, err := r.Recognize(context.Background(), input())

	require.NoError(t, err)
	assert.Empty(t, rec.Text)
	assert.Zero(t, rec.Confidence)
}

func TestRecognizer_Errors(t *testing.T) {
	r := NewWithProcessor(settings, &mockProcessor{err: errors.New("quota exceeded")})
	_, err := r.Recognize(context.Background(), input())
	assert.ErrorContains(t, err, "quota exceeded")

	r = NewWithProcessor(settings, &mockProcessor{resp: &documentaipb.ProcessResponse{}})
	_, err = r.Recognize(context.Background(), input())
	assert.Error(t, err)

	_, err = r.Recognize(context.Background(), driven.RecognitionInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecognizer_CloseOnce(t *testing.T) {
	proc := &mockProcessor{}
	r := NewWithProcessor(settings, proc)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	assert.Equal(t, 1, proc.closed)
	assert.Equal(t, "documentai", r.Name())
}

func TestNew_RequiresProcessor(t *testing.T) {
	_, err := New(context.Background(), domain.DocumentAISettings{Location: "us"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
