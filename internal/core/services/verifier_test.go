package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// textDoc builds a document whose page i carries texts[i] at original index i.
func textDoc(texts ...string) *domain.PaginatedDocument {
	pages := make([]domain.Page, len(texts))
	for i, text := range texts {
		pages[i] = domain.NewPage(i, domain.Orientation0, domain.StringPtr(text))
	}
	return domain.NewPaginatedDocument("test://doc", pages)
}

const (
	proseA    = "The team will continue the work next year.\nThe project was a success."
	proseB    = "We thank every school for the help."
	gibberish = "zxqv qwrtp mnbvc wkjh"
)

func TestQualityVerifier_Unknown(t *testing.T) {
	v := NewQualityVerifier()

	tests := []struct {
		name string
		doc  *domain.PaginatedDocument
	}{
		{"no pages", textDoc()},
		{"nil document", nil},
		{"page without text", domain.NewPaginatedDocument("test://doc", []domain.Page{
			domain.NewPage(0, domain.Orientation0, domain.StringPtr(proseA)),
			domain.NewPage(1, domain.Orientation0, nil),
		})},
		{"no prose", textDoc("Name  Cost  Total\nPens  4  8", "- 3 -")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Score(tt.doc)
			assert.ErrorIs(t, err, domain.ErrQualityUnknown)
		})
	}
}

func TestQualityVerifier_CleanDocument(t *testing.T) {
	m, err := NewQualityVerifier().Score(textDoc(proseA, proseB))

	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.ReadableTextRatio, 1e-9)
	assert.Equal(t, 0, m.DetectedElementCount)
}

func TestQualityVerifier_Deterministic(t *testing.T) {
	doc := textDoc(proseA, gibberish, proseB)
	v := NewQualityVerifier()

	a, err := v.Score(doc)
	require.NoError(t, err)
	b, err := v.Score(doc)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestQualityVerifier_UnreadablePageDominates(t *testing.T) {
	v := NewQualityVerifier()

	before, err := v.Score(textDoc(proseA, gibberish))
	require.NoError(t, err)
	after, err := v.Score(textDoc(proseA, proseB))
	require.NoError(t, err)

	assert.InDelta(t, 2.0/101.0, before.ReadableTextRatio, 1e-9)
	assert.Empty(t, domain.EvaluateImprovement(before, after))
}

func TestQualityVerifier_SentenceAcrossPages(t *testing.T) {
	v := NewQualityVerifier()
	head := "The survey began in spring and the team visited"
	tail := "many schools during the first month."

	joined, err := v.Score(textDoc(head, tail))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, joined.ReadableTextRatio, 1e-9)

	// Reversed: the lowercase head is an orphan and the open tail ends the document.
	broken, err := v.Score(textDoc(tail, head))
	require.NoError(t, err)
	assert.InDelta(t, minPageRatio, broken.ReadableTextRatio, 1e-9)
}

func TestQualityVerifier_OpenSentenceBeforeCapitalisedPage(t *testing.T) {
	m, err := NewQualityVerifier().Score(textDoc("The survey began in spring and the team visited", proseB))

	require.NoError(t, err)
	assert.InDelta(t, 2.0/101.0, m.ReadableTextRatio, 1e-9)
}

func TestQualityVerifier_RepeatedSentences(t *testing.T) {
	v := NewQualityVerifier()

	dup, err := v.Score(textDoc(proseA, proseA))
	require.NoError(t, err)
	assert.InDelta(t, 2.0/101.0, dup.ReadableTextRatio, 1e-9)

	// Short repeats such as "Yes." are not redundant.
	short, err := v.Score(textDoc("Yes. "+proseB, "Yes. The project was a success."))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, short.ReadableTextRatio, 1e-9)
}

func TestQualityVerifier_NearDuplicateSentences(t *testing.T) {
	// A rescan of page 1 with one misread word.
	rescan := "The tearn will continue the work next year.\nThe project was a success."
	v := NewQualityVerifier()

	before, err := v.Score(textDoc(proseA, rescan))
	require.NoError(t, err)
	assert.InDelta(t, 2.0/101.0, before.ReadableTextRatio, 1e-9)

	after, err := v.Score(textDoc(proseA))
	require.NoError(t, err)
	assert.Empty(t, domain.EvaluateImprovement(before, after))
}

func TestQualityVerifier_Elements(t *testing.T) {
	pageA := "1. Introduction\nThe team will continue the work next year.\nName  Cost  Total"
	pageB := "Pens  4  8\nFigure 1: Costs\nWe thank every school for the help.\n- apples\n- pears"
	v := NewQualityVerifier()

	inOrder, err := v.Score(textDoc(pageA, pageB))
	require.NoError(t, err)
	// Heading, the table spanning the page break, caption, list.
	assert.Equal(t, 4, inOrder.DetectedElementCount)

	swapped, err := v.Score(textDoc(pageB, pageA))
	require.NoError(t, err)
	// The table halves no longer meet.
	assert.Equal(t, 3, swapped.DetectedElementCount)
	assert.Contains(t, domain.EvaluateImprovement(inOrder, swapped), domain.ReasonElementLoss)
}
