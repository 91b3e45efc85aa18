package transformers

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// Rotation turns one page and re-extracts its text at the new orientation.
type Rotation struct {
	text driven.TextSource
}

// NewRotation creates a rotation transformer.
func NewRotation(text driven.TextSource) *Rotation {
	return &Rotation{text: text}
}

// Apply rotates the page by the issue angle. The page keeps its original
// index and comes out upright; its raster key and text change.
func (r *Rotation) Apply(ctx context.Context, doc *domain.PaginatedDocument, issue domain.Issue) (*domain.PaginatedDocument, error) {
	if err := wrongKind(domain.IssueRotation, issue); err != nil {
		return nil, err
	}
	idx, err := locate(doc, issue.Rotation.Page)
	if err != nil {
		return nil, err
	}
	page, _ := doc.Page(idx)
	target := page.RenderRotation().Add(-issue.Rotation.Angle)

	text, err := r.text.Text(ctx, domain.KeyFor(page.OriginalIndex, target))
	if err != nil {
		return nil, fmt.Errorf("rotate page %d: %w", page.OriginalIndex+1, err)
	}
	next, err := doc.WithPage(idx, page.Rotated(target, text))
	if err != nil {
		return nil, fmt.Errorf("rotate page %d: %w: %w", page.OriginalIndex+1, domain.ErrTransformFailed, err)
	}
	return next, nil
}
