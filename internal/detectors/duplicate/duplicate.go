// Package duplicate detects pages that repeat an earlier page.
//
// Comparison is layered so that the expensive text comparison only runs
// on likely pairs: an exact hash of a quantised thumbnail, then a
// perceptual difference hash, then token-level edit similarity.
package duplicate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/detectors"
	"github.com/custodia-labs/pagefix/internal/imaging"
	"github.com/custodia-labs/pagefix/internal/logger"
	"github.com/custodia-labs/pagefix/internal/textstats"
)

// Name identifies the detector in issues and failures.
const Name = "duplicate"

// Verify interface compliance.
var _ driven.Detector = (*Detector)(nil)

// Detector finds duplicate page pairs.
type Detector struct {
	threshold  float64
	maxHamming int
	workers    int
}

// New creates a duplicate detector.
func New(cfg domain.CorrectionConfig) *Detector {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Detector{
		threshold:  cfg.Thresholds.Duplicate,
		maxHamming: cfg.DuplicateMaxHamming,
		workers:    workers,
	}
}

// Name returns the detector identifier.
func (d *Detector) Name() string {
	return Name
}

// fingerprint is the comparison material for one page.
type fingerprint struct {
	page    domain.Page
	content string
	dhash   uint64
	tokens  []string
	ok      bool
}

// Detect compares every pair of non-blank pages.
func (d *Detector) Detect(ctx context.Context, doc *domain.PaginatedDocument, pages driven.PageRenderer) (driven.Detection, error) {
	all := doc.Pages()
	prints := make([]fingerprint, len(all))
	failures := make([]*domain.DetectorFailure, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, p := range all {
		tokens := textstats.Tokenize(p.TextOrEmpty())
		if len(tokens) == 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			thumb, err := pages.Thumbnail(gctx, p.RasterKey)
			if err != nil {
				if detectors.IsCancellation(err) {
					return err
				}
				f := detectors.Failure(Name, p.OriginalIndex, fmt.Errorf("thumbnail: %w", err))
				failures[i] = &f
				return nil
			}
			prints[i] = fingerprint{
				page:    p,
				content: imaging.ContentHash(thumb),
				dhash:   imaging.DHash(thumb),
				tokens:  tokens,
				ok:      true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return driven.Detection{}, err
	}

	var out driven.Detection
	for _, f := range failures {
		if f != nil {
			out.Failures = append(out.Failures, *f)
		}
	}

	for i := range prints {
		if !prints[i].ok {
			continue
		}
		for j := i + 1; j < len(prints); j++ {
			if err := ctx.Err(); err != nil {
				return driven.Detection{}, err
			}
			if !prints[j].ok || !d.candidates(prints[i], prints[j]) {
				continue
			}
			sim := textstats.TokenSimilarity(prints[i].tokens, prints[j].tokens)
			keep, remove := prints[i].page.OriginalIndex, prints[j].page.OriginalIndex
			logger.Debug("duplicate: pages %d and %d similarity %.3f", keep+1, remove+1, sim)
			if sim < d.threshold {
				continue
			}
			out.Issues = append(out.Issues, domain.NewDuplicateIssue(keep, remove, sim).WithDetector(Name))
		}
	}
	return out, nil
}

// candidates applies the two raster stages.
func (d *Detector) candidates(a, b fingerprint) bool {
	if a.content == b.content {
		return true
	}
	return imaging.Hamming(a.dhash, b.dhash) <= d.maxHamming
}
