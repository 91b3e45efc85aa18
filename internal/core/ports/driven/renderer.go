package driven

import (
	"context"
	"image"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// PageRenderer serves memoised page artefacts keyed by RasterKey.
// It is safe for concurrent use by detectors.
type PageRenderer interface {
	// Raster returns the page rendered at the key's orientation.
	Raster(ctx context.Context, key domain.RasterKey) (*image.Gray, error)

	// Thumbnail returns a small square grayscale rendition of the raster.
	Thumbnail(ctx context.Context, key domain.RasterKey) (*image.Gray, error)

	// Recognize returns the text recognised from the raster.
	Recognize(ctx context.Context, key domain.RasterKey) (domain.Recognition, error)
}

// RenderSession is the rendering context of one opened source.
type RenderSession interface {
	PageRenderer
	TextSource

	// LoadDocument builds the initial document version from the source.
	// Returns domain.ErrFatalInput if the page count is unreadable or zero.
	LoadDocument(ctx context.Context, workers int) (*domain.PaginatedDocument, error)
}

// RenderSessionFactory starts a render session for a source.
type RenderSessionFactory interface {
	NewSession(src SourceDocument, settings domain.RenderSettings) RenderSession
}
