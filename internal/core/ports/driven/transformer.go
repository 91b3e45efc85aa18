package driven

import (
	"context"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// Transformer applies one correction to a document version.
// It returns a new version and never modifies its input.
type Transformer interface {
	// Apply returns the corrected version or an error wrapping
	// domain.ErrTransformFailed.
	Apply(ctx context.Context, doc *domain.PaginatedDocument, issue domain.Issue) (*domain.PaginatedDocument, error)
}

// TextSource recognises a page at an orientation. A nil text with a nil
// error means recognition failed for that page.
type TextSource interface {
	Text(ctx context.Context, key domain.RasterKey) (*string, error)
}

// TransformerFactory binds the transformers to a document's text source.
type TransformerFactory interface {
	NewTransformer(text TextSource) Transformer
}
