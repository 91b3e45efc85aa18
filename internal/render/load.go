package render

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/logger"
)

// LoadDocument builds the first document version from the cache's source.
//
// Each page starts at the orientation its source declares and carries the
// text recognised at that orientation. A page whose recognition fails keeps
// a nil Text. A page count that cannot be read, or is zero, is fatal.
func (c *Cache) LoadDocument(ctx context.Context, workers int) (*domain.PaginatedDocument, error) {
	count, err := c.src.PageCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: page count: %w: %w", c.src.URI(), domain.ErrFatalInput, err)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%s: no pages: %w", c.src.URI(), domain.ErrFatalInput)
	}
	if workers < 1 {
		workers = 1
	}

	pages := make([]domain.Page, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			o, err := c.src.PageOrientation(gctx, i)
			if err != nil || !o.IsValid() {
				logger.Warn("page %d: declared orientation unreadable, assuming 0: %v", i+1, err)
				o = domain.Orientation0
			}
			text, err := c.Text(gctx, domain.KeyFor(i, o))
			if err != nil {
				return err
			}
			if text == nil {
				logger.Warn("page %d: no text recognised", i+1)
			}
			pages[i] = domain.NewPage(i, o, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("loaded %d pages from %s", count, c.src.URI())
	return domain.NewPaginatedDocument(c.src.URI(), pages), nil
}
