//go:build !(cgo && ocr)

package tesseract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

func TestStub(t *testing.T) {
	r, err := New([]string{"eng"}, 2)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, domain.ErrOCRUnavailable)
	assert.False(t, Available)

	var stub Recognizer
	_, err = stub.Recognize(context.Background(), driven.RecognitionInput{})
	assert.ErrorIs(t, err, domain.ErrOCRUnavailable)
	assert.NoError(t, stub.Close())
	assert.Equal(t, "tesseract", stub.Name())
}
