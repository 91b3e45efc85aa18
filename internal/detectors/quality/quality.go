// Package quality flags pages whose recognition confidence is too low to
// trust without human review.
package quality

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/detectors"
)

// Name identifies the detector in issues and failures.
const Name = "quality"

// Verify interface compliance.
var _ driven.Detector = (*Detector)(nil)

// Detector scores every page by its recognition confidence.
// Its issues are never corrected; they feed the uncertainty list.
type Detector struct {
	threshold float64
	workers   int
}

// New creates a quality detector.
func New(cfg domain.CorrectionConfig) *Detector {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Detector{threshold: cfg.Thresholds.QualityReview, workers: workers}
}

// Name returns the detector identifier.
func (d *Detector) Name() string {
	return Name
}

// Detect records a score per page and flags those below the review threshold.
func (d *Detector) Detect(ctx context.Context, doc *domain.PaginatedDocument, pages driven.PageRenderer) (driven.Detection, error) {
	all := doc.Pages()
	scores := make([]*domain.PageScore, len(all))
	failures := make([]*domain.DetectorFailure, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, p := range all {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := pages.Recognize(gctx, p.RasterKey)
			if err != nil {
				if detectors.IsCancellation(err) {
					return err
				}
				f := detectors.Failure(Name, p.OriginalIndex, fmt.Errorf("recognize: %w", err))
				failures[i] = &f
				return nil
			}
			scores[i] = &domain.PageScore{Page: p.OriginalIndex, Score: rec.Confidence}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return driven.Detection{}, err
	}

	var out driven.Detection
	for i := range all {
		if failures[i] != nil {
			out.Failures = append(out.Failures, *failures[i])
		}
		s := scores[i]
		if s == nil {
			continue
		}
		out.Scores = append(out.Scores, *s)
		if s.Score < d.threshold {
			out.Issues = append(out.Issues, domain.NewLowQualityIssue(s.Page, s.Score).WithDetector(Name))
		}
	}
	return out, nil
}
