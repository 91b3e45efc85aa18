// Package order detects pages that are out of sequence.
//
// Two independent signals must agree before an ordering issue is raised:
// the page numbers printed in headers and footers, and the continuity of
// content across each page junction.
package order

import (
	"context"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/logger"
)

// Name identifies the detector in issues and failures.
const Name = "order"

// Verify interface compliance.
var _ driven.Detector = (*Detector)(nil)

// Detector proposes a page sequence from printed page numbers and checks
// it against content continuity.
type Detector struct {
	threshold float64
	workers   int
}

// New creates a page order detector.
func New(cfg domain.CorrectionConfig) *Detector {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Detector{threshold: cfg.Thresholds.Ordering, workers: workers}
}

// Name returns the detector identifier.
func (d *Detector) Name() string {
	return Name
}

// Detect reads page text only; the renderer is not used.
func (d *Detector) Detect(ctx context.Context, doc *domain.PaginatedDocument, _ driven.PageRenderer) (driven.Detection, error) {
	if err := ctx.Err(); err != nil {
		return driven.Detection{}, err
	}
	if doc.Len() < 2 {
		return driven.Detection{}, nil
	}
	pages := doc.Pages()
	infos := make(map[int]pageInfo, len(pages))
	current := make([]int, len(pages))
	for i, p := range pages {
		current[i] = p.OriginalIndex
		infos[p.OriginalIndex] = analyzePage(p)
	}

	labelConf := labelConfidence(current, infos)
	if labelConf < d.threshold {
		logger.Debug("order: page number confidence %.2f below threshold", labelConf)
		return driven.Detection{}, nil
	}
	proposed := proposeSequence(current, infos)
	if slices.Equal(proposed, current) {
		return driven.Detection{}, nil
	}

	scores, err := d.junctionScores(ctx, infos, current, proposed)
	if err != nil {
		return driven.Detection{}, err
	}
	currentCont := continuity(current, scores)
	proposedCont := continuity(proposed, scores)
	logger.Debug("order: labels %.2f, continuity current %.2f proposed %.2f",
		labelConf, currentCont, proposedCont)

	if proposedCont < d.threshold || proposedCont < currentCont {
		return driven.Detection{}, nil
	}
	issue := domain.NewOrderingIssue(proposed, min(labelConf, proposedCont)).WithDetector(Name)
	return driven.Detection{Issues: []domain.Issue{issue}}, nil
}

// junction is an ordered pair of adjacent original pages.
type junction struct {
	prev, next int
}

// junctionScores scores every junction of both sequences in parallel.
func (d *Detector) junctionScores(ctx context.Context, infos map[int]pageInfo, seqs ...[]int) (map[junction]float64, error) {
	var pairs []junction
	seen := make(map[junction]bool)
	for _, seq := range seqs {
		for k := 1; k < len(seq); k++ {
			j := junction{prev: seq[k-1], next: seq[k]}
			if !seen[j] {
				seen[j] = true
				pairs = append(pairs, j)
			}
		}
	}

	results := make([]float64, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, j := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = junctionScore(infos[j.prev], infos[j.next])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := make(map[junction]float64, len(pairs))
	for i, j := range pairs {
		scores[j] = results[i]
	}
	return scores, nil
}

// continuity is the mean junction score along a sequence.
func continuity(seq []int, scores map[junction]float64) float64 {
	if len(seq) < 2 {
		return 1
	}
	var sum float64
	for k := 1; k < len(seq); k++ {
		sum += scores[junction{prev: seq[k-1], next: seq[k]}]
	}
	return sum / float64(len(seq)-1)
}

// labelConfidence is coverage x uniqueness x contiguity of printed page
// numbers. Fewer than two labels give no confidence.
func labelConfidence(seq []int, infos map[int]pageInfo) float64 {
	var labels []int
	for _, orig := range seq {
		if info := infos[orig]; info.layout.HasLabel {
			labels = append(labels, info.layout.Label)
		}
	}
	if len(labels) < 2 {
		return 0
	}
	coverage := float64(len(labels)) / float64(len(seq))

	distinct := slices.Clone(labels)
	sort.Ints(distinct)
	distinct = slices.Compact(distinct)
	uniqueness := float64(len(distinct)) / float64(len(labels))
	if len(distinct) < 2 {
		return 0
	}

	steps := 0
	for k := 1; k < len(distinct); k++ {
		if distinct[k]-distinct[k-1] == 1 {
			steps++
		}
	}
	contiguity := float64(steps) / float64(len(distinct)-1)
	return coverage * uniqueness * contiguity
}

// proposeSequence sorts pages by printed number. Unlabelled pages travel
// with the nearest labelled page before them; leading unlabelled pages
// stay first.
func proposeSequence(seq []int, infos map[int]pageInfo) []int {
	type group struct {
		label   int
		labeled bool
		pages   []int
	}
	var groups []group
	for _, orig := range seq {
		info := infos[orig]
		if info.layout.HasLabel || len(groups) == 0 {
			groups = append(groups, group{label: info.layout.Label, labeled: info.layout.HasLabel})
		}
		last := &groups[len(groups)-1]
		last.pages = append(last.pages, orig)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		ga, gb := groups[a], groups[b]
		if ga.labeled != gb.labeled {
			return !ga.labeled
		}
		return ga.label < gb.label
	})
	out := make([]int, 0, len(seq))
	for _, g := range groups {
		out = append(out, g.pages...)
	}
	return out
}
