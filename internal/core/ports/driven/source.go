package driven

import (
	"context"
	"image"
	"io"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// SourceDocument is a read-only handle on a scanned document.
// The underlying file is never modified.
type SourceDocument interface {
	// URI returns the location the source was opened from.
	URI() string

	// PageCount returns the number of pages.
	// An error here is fatal for the whole run.
	PageCount(ctx context.Context) (int, error)

	// PageOrientation returns the orientation the source declares for a page.
	PageOrientation(ctx context.Context, index int) (domain.Orientation, error)

	// RenderPage rasterises the native (unrotated) page at the given DPI.
	RenderPage(ctx context.Context, index int, dpi int) (image.Image, error)

	// Fingerprint returns a content hash of the source bytes.
	Fingerprint() string

	// Close releases the handle.
	Close() error
}

// SeekableSource is implemented by sources that can expose their raw bytes.
// Exporters use it to re-sequence a document without re-encoding pages.
type SeekableSource interface {
	SourceDocument

	// Open returns a reader over the unmodified source bytes.
	// The caller closes it.
	Open() (io.ReadSeekCloser, error)
}

// SourceOpener opens sources by URI.
type SourceOpener interface {
	// Open returns a read-only handle for the URI.
	// Returns domain.ErrUnsupportedType if no source handles the URI.
	Open(ctx context.Context, uri string) (SourceDocument, error)

	// Supports reports whether a URI can be opened.
	Supports(uri string) bool
}
