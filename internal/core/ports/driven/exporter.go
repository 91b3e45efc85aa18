package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// Exporter writes a corrected document version.
type Exporter interface {
	// Name returns the exporter identifier.
	Name() string

	// Supports reports whether the exporter can write documents derived
	// from the source.
	Supports(src SourceDocument) bool

	// Export writes doc to w. Rasters come from pages; the source is
	// opened read-only.
	Export(ctx context.Context, src SourceDocument, pages PageRenderer, doc *domain.PaginatedDocument, w io.Writer) error
}
