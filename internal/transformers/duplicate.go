package transformers

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// DuplicateRemover deletes the redundant copy of a duplicated page.
type DuplicateRemover struct{}

// Apply removes the issue's Remove page. The kept page must still be
// present, otherwise the content would be lost entirely.
func (r *DuplicateRemover) Apply(ctx context.Context, doc *domain.PaginatedDocument, issue domain.Issue) (*domain.PaginatedDocument, error) {
	if err := wrongKind(domain.IssueDuplicate, issue); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := locate(doc, issue.Duplicate.Keep); err != nil {
		return nil, fmt.Errorf("kept copy: %w", err)
	}
	idx, err := locate(doc, issue.Duplicate.Remove)
	if err != nil {
		return nil, err
	}
	next, err := doc.WithoutPage(idx)
	if err != nil {
		return nil, fmt.Errorf("remove page %d: %w: %w", issue.Duplicate.Remove+1, domain.ErrTransformFailed, err)
	}
	return next, nil
}
