package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/imaging"
)

// Verify interface compliance.
var _ driven.PageRenderer = (*Cache)(nil)

// Stats reports cache effectiveness.
type Stats struct {
	Renders      int
	Recognitions int
	Hits         int
	Evictions    int
}

// rasterSlot identifies a retained raster. Native rasters use native=true.
type rasterSlot struct {
	key    domain.RasterKey
	native bool
}

// Cache memoises rasters, thumbnails and recognitions for one source.
type Cache struct {
	src      driven.SourceDocument
	ocr      driven.TextRecognizer
	settings domain.RenderSettings

	mu      sync.Mutex
	natives map[int]*image.Gray
	rasters map[domain.RasterKey]*image.Gray
	fifo    []rasterSlot
	thumbs  map[domain.RasterKey]*image.Gray
	texts   map[domain.RasterKey]domain.Recognition
	stats   Stats
}

// New creates a cache over a source. ocr may be nil, in which case
// Recognize returns domain.ErrOCRUnavailable.
func New(src driven.SourceDocument, ocr driven.TextRecognizer, settings domain.RenderSettings) *Cache {
	if settings.DPI <= 0 {
		settings.DPI = domain.DefaultRenderDPI
	}
	if settings.ThumbnailSize <= 0 {
		settings.ThumbnailSize = domain.DefaultThumbnailSize
	}
	return &Cache{
		src:      src,
		ocr:      ocr,
		settings: settings,
		natives:  make(map[int]*image.Gray),
		rasters:  make(map[domain.RasterKey]*image.Gray),
		thumbs:   make(map[domain.RasterKey]*image.Gray),
		texts:    make(map[domain.RasterKey]domain.Recognition),
	}
}

// Source returns the source document the cache renders from.
func (c *Cache) Source() driven.SourceDocument {
	return c.src
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Raster returns the page rendered at the key's orientation.
func (c *Cache) Raster(ctx context.Context, key domain.RasterKey) (*image.Gray, error) {
	if !key.Orientation.IsValid() {
		return nil, fmt.Errorf("raster %s: %w", key, domain.ErrInvalidInput)
	}
	c.mu.Lock()
	if img, ok := c.rasters[key]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	native, err := c.native(ctx, key.Page)
	if err != nil {
		return nil, err
	}
	if key.Orientation == domain.Orientation0 {
		return native, nil
	}
	rotated, err := imaging.Rotate(native, key.Orientation.Degrees())
	if err != nil {
		return nil, fmt.Errorf("raster %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rasters[key]; !ok {
		c.retain(rasterSlot{key: key})
	}
	c.rasters[key] = rotated
	return rotated, nil
}

// native returns the unrotated raster of an original page.
func (c *Cache) native(ctx context.Context, page int) (*image.Gray, error) {
	c.mu.Lock()
	if img, ok := c.natives[page]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := c.src.RenderPage(ctx, page, c.settings.DPI)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("render page %d: %w: %w", page, domain.ErrRenderFailed, err)
	}
	gray := imaging.ToGray(img)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Renders++
	if _, ok := c.natives[page]; !ok {
		c.retain(rasterSlot{key: domain.KeyFor(page, domain.Orientation0), native: true})
	}
	c.natives[page] = gray
	return gray, nil
}

// retain records a new raster and evicts the oldest ones beyond the cap.
// Caller holds c.mu.
func (c *Cache) retain(slot rasterSlot) {
	c.fifo = append(c.fifo, slot)
	limit := c.settings.MaxCachedRasters
	if limit <= 0 {
		return
	}
	for len(c.fifo) > limit {
		old := c.fifo[0]
		c.fifo = c.fifo[1:]
		if old.native {
			delete(c.natives, old.key.Page)
		} else {
			delete(c.rasters, old.key)
		}
		c.stats.Evictions++
	}
}

// Thumbnail returns the square thumbnail of the oriented raster.
func (c *Cache) Thumbnail(ctx context.Context, key domain.RasterKey) (*image.Gray, error) {
	c.mu.Lock()
	if img, ok := c.thumbs[key]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	raster, err := c.Raster(ctx, key)
	if err != nil {
		return nil, err
	}
	thumb := imaging.Thumbnail(raster, c.settings.ThumbnailSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.thumbs[key] = thumb
	return thumb, nil
}

// Recognize returns the text recognised from the oriented raster.
// Failures are not cached.
func (c *Cache) Recognize(ctx context.Context, key domain.RasterKey) (domain.Recognition, error) {
	if c.ocr == nil {
		return domain.Recognition{}, domain.ErrOCRUnavailable
	}
	c.mu.Lock()
	if rec, ok := c.texts[key]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		return rec, nil
	}
	c.mu.Unlock()

	raster, err := c.Raster(ctx, key)
	if err != nil {
		return domain.Recognition{}, err
	}
	rec, err := c.ocr.Recognize(ctx, driven.RecognitionInput{
		PageIndex:   key.Page,
		Orientation: key.Orientation,
		Image:       raster,
	})
	if err != nil {
		if ctx.Err() != nil {
			return domain.Recognition{}, ctx.Err()
		}
		return domain.Recognition{}, fmt.Errorf("recognize %s with %s: %w", key, c.ocr.Name(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Recognitions++
	c.texts[key] = rec
	return rec, nil
}

// Text returns the recognised text for a key, or nil if recognition failed
// for any reason other than cancellation.
func (c *Cache) Text(ctx context.Context, key domain.RasterKey) (*string, error) {
	rec, err := c.Recognize(ctx, key)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, nil
	}
	return domain.StringPtr(rec.Text), nil
}
