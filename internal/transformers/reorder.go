package transformers

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// Reorder permutes pages into an expected sequence.
type Reorder struct{}

// Apply moves pages into the issue's expected sequence. Pages removed by
// earlier steps are ignored; pages the sequence does not name keep their
// relative order after the named ones.
func (r *Reorder) Apply(ctx context.Context, doc *domain.PaginatedDocument, issue domain.Issue) (*domain.PaginatedDocument, error) {
	if err := wrongKind(domain.IssueOrdering, issue); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order := make([]int, 0, doc.Len())
	placed := make([]bool, doc.Len())
	for _, original := range issue.Ordering.ExpectedSequence {
		idx := doc.IndexOfOriginal(original)
		if idx < 0 || placed[idx] {
			continue
		}
		placed[idx] = true
		order = append(order, idx)
	}
	if len(order) < 2 {
		return nil, fmt.Errorf("sequence names %d present pages: %w", len(order), domain.ErrTransformFailed)
	}
	for idx := range placed {
		if !placed[idx] {
			order = append(order, idx)
		}
	}

	next, err := doc.Permuted(order)
	if err != nil {
		return nil, fmt.Errorf("reorder: %w: %w", domain.ErrTransformFailed, err)
	}
	return next, nil
}
