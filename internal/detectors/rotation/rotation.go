// Package rotation detects pages whose orientation does not match the
// reading direction of their text.
package rotation

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
const Name = "rotation"

// Verify interface compliance.
var _ driven.Detector = (*Detector)(nil)

// Detector scores each page at every candidate correction angle.
//
// For candidate angle a the page is recognised at orientation o-a and the
// dictionary ratio of the recognised tokens is its score. The confidence of
// the best angle is (best - 0.5*second) scaled by agreement with the
// dominant text-line axis of the current raster.
type Detector struct {
	workers int
	dict    *textstats.Dictionary
}

// New creates a rotation detector.
func New(cfg domain.CorrectionConfig) *Detector {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Detector{workers: workers, dict: textstats.DefaultDictionary()}
}

// Name returns the detector identifier.
func (d *Detector) Name() string {
	return Name
}

type pageResult struct {
	issue   *domain.Issue
	failure *domain.DetectorFailure
}

// Detect checks every page of the document.
func (d *Detector) Detect(ctx context.Context, doc *domain.PaginatedDocument, pages driven.PageRenderer) (driven.Detection, error) {
	all := doc.Pages()
	results := make([]pageResult, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i := range all {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := d.detectPage(gctx, all[i], pages)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return driven.Detection{}, err
	}

	var out driven.Detection
	for _, r := range results {
		if r.issue != nil {
			out.Issues = append(out.Issues, *r.issue)
		}
		if r.failure != nil {
			out.Failures = append(out.Failures, *r.failure)
		}
	}
	return out, nil
}

// detectPage returns an error only on cancellation.
func (d *Detector) detectPage(ctx context.Context, page domain.Page, pages driven.PageRenderer) (pageResult, error) {
	candidates := domain.AllOrientations()
	scores := make([]float64, len(candidates))
	tokens := 0
	for k, a := range candidates {
		key := domain.KeyFor(page.OriginalIndex, page.RenderRotation().Add(-a.Degrees()))
		rec, err := pages.Recognize(ctx, key)
		if err != nil {
			if detectors.IsCancellation(err) {
				return pageResult{}, err
			}
			f := detectors.Failure(Name, page.OriginalIndex, fmt.Errorf("recognize at %d°: %w", key.Orientation, err))
			return pageResult{failure: &f}, nil
		}
		toks := textstats.Tokenize(rec.Text)
		tokens += len(toks)
		scores[k] = d.dict.Ratio(toks)
	}
	if tokens == 0 {
		return pageResult{}, nil
	}

	best, second := 0, -1
	for k := 1; k < len(scores); k++ {
		if scores[k] > scores[best] {
			second, best = best, k
		} else if second < 0 || scores[k] > scores[second] {
			second = k
		}
	}
	if best == 0 {
		return pageResult{}, nil
	}

	angle := candidates[best]
	base := scores[best] - 0.5*scores[second]
	agreement := 0.5
	raster, err := pages.Raster(ctx, page.RasterKey)
	switch {
	case err == nil:
		agreement = axisAgreement(imaging.DominantAxis(raster), angle)
	case detectors.IsCancellation(err):
		return pageResult{}, err
	default:
		logger.Warn("rotation: page %d raster unavailable, ignoring line axis: %v", page.OriginalIndex+1, err)
	}
	confidence := base * (0.8 + 0.2*agreement)

	logger.Debug("rotation: page %d best %d° (%.2f), second %.2f, agreement %.1f, confidence %.2f",
		page.OriginalIndex+1, angle, scores[best], scores[second], agreement, confidence)
	issue := domain.NewRotationIssue(page.OriginalIndex, angle.Degrees(), confidence).WithDetector(Name)
	return pageResult{issue: &issue}, nil
}

// axisAgreement scores whether text lines would run horizontally after
// correcting by angle: 1 agrees, 0.5 unknown, 0 contradicts.
func axisAgreement(current imaging.Axis, angle domain.Orientation) float64 {
	corrected := current
	if angle.IsQuarterTurn() {
		corrected = current.Flip()
	}
	switch corrected {
	case imaging.AxisHorizontal:
		return 1
	case imaging.AxisVertical:
		return 0
	default:
		return 0.5
	}
}
