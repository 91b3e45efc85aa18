// Package transformers applies corrections to document versions.
//
// Each transformer returns a new version and leaves its input untouched,
// which is what makes a checkpoint a plain reference to the previous
// version. Failures wrap domain.ErrTransformFailed.
package transformers

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.Transformer = (*Dispatcher)(nil)
	_ driven.Transformer = (*Rotation)(nil)
	_ driven.Transformer = (*Reorder)(nil)
	_ driven.Transformer = (*DuplicateRemover)(nil)

	_ driven.TransformerFactory = Factory{}
)

// Factory creates dispatchers.
type Factory struct{}

// NewTransformer returns a dispatcher over text.
func (Factory) NewTransformer(text driven.TextSource) driven.Transformer {
	return New(text)
}

// Dispatcher routes an issue to the transformer for its kind.
type Dispatcher struct {
	rotation  *Rotation
	reorder   *Reorder
	duplicate *DuplicateRemover
}

// New creates a dispatcher over the three transformers.
func New(text driven.TextSource) *Dispatcher {
	return &Dispatcher{
		rotation:  NewRotation(text),
		reorder:   &Reorder{},
		duplicate: &DuplicateRemover{},
	}
}

// Apply corrects one issue.
func (d *Dispatcher) Apply(ctx context.Context, doc *domain.PaginatedDocument, issue domain.Issue) (*domain.PaginatedDocument, error) {
	if err := issue.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransformFailed, err)
	}
	switch issue.Kind {
	case domain.IssueRotation:
		return d.rotation.Apply(ctx, doc, issue)
	case domain.IssueOrdering:
		return d.reorder.Apply(ctx, doc, issue)
	case domain.IssueDuplicate:
		return d.duplicate.Apply(ctx, doc, issue)
	case domain.IssueLowQuality:
		return nil, fmt.Errorf("low quality pages are not correctable: %w", domain.ErrTransformFailed)
	default:
		return nil, fmt.Errorf("issue kind %q: %w", issue.Kind, domain.ErrUnsupportedType)
	}
}

// wrongKind is returned when a transformer receives another kind's issue.
func wrongKind(want domain.IssueKind, issue domain.Issue) error {
	if issue.Kind == want && issue.Validate() == nil {
		return nil
	}
	return fmt.Errorf("%s transformer given %s issue: %w", want, issue.Kind, domain.ErrTransformFailed)
}

// locate returns the current index of an original page.
func locate(doc *domain.PaginatedDocument, original int) (int, error) {
	idx := doc.IndexOfOriginal(original)
	if idx < 0 {
		return 0, fmt.Errorf("page %d no longer in document: %w", original+1, domain.ErrTransformFailed)
	}
	return idx, nil
}
