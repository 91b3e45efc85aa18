package services

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/logger"
)

// Analyzer runs every detector over one document version and merges their
// findings into a deterministic correction plan. It holds no mutable state.
type Analyzer struct {
	detectors  []driven.Detector
	thresholds domain.Thresholds
}

// NewAnalyzer creates an analyzer over a fixed detector set.
func NewAnalyzer(cfg domain.CorrectionConfig, detectors ...driven.Detector) *Analyzer {
	return &Analyzer{detectors: detectors, thresholds: cfg.Thresholds}
}

// Analyze fans the detectors out in parallel and waits for all of them.
// A detector error other than cancellation is isolated as a failure. On
// cancellation the partial report is returned, marked incomplete, with the
// context error.
func (a *Analyzer) Analyze(ctx context.Context, doc *domain.PaginatedDocument, pages driven.PageRenderer) (*domain.AnalysisReport, error) {
	logger.Section("Analysis")
	results := make([]driven.Detection, len(a.detectors))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range a.detectors {
		g.Go(func() error {
			det, err := d.Detect(gctx, doc, pages)
			if err != nil {
				if isCancellation(err) {
					return err
				}
				logger.Warn("detector %s failed: %v", d.Name(), err)
				det = driven.Detection{Failures: []domain.DetectorFailure{{
					Detector: d.Name(), Page: -1, Error: err.Error(),
				}}}
			}
			results[i] = det
			return nil
		})
	}
	waitErr := g.Wait()

	report := &domain.AnalysisReport{
		SourceURI:   doc.SourceURI(),
		Fingerprint: doc.Fingerprint(),
		PageCount:   doc.Len(),
	}
	if waitErr != nil {
		report.Incomplete = true
		return report, waitErr
	}

	for i, det := range results {
		name := a.detectors[i].Name()
		for _, issue := range det.Issues {
			if issue.Detector == "" {
				issue = issue.WithDetector(name)
			}
			if err := issue.Validate(); err != nil {
				report.Failures = append(report.Failures, domain.DetectorFailure{
					Detector: name, Page: issue.TargetPage(), Error: err.Error(),
				})
				continue
			}
			report.Issues = append(report.Issues, issue)
		}
		for _, f := range det.Failures {
			logger.Warn("detector %s: page %d: %s", f.Detector, f.Page+1, f.Error)
		}
		report.Failures = append(report.Failures, det.Failures...)
		report.PageScores = append(report.PageScores, det.Scores...)
	}

	domain.SortIssues(report.Issues, doc)
	sort.SliceStable(report.Failures, func(x, y int) bool {
		fx, fy := report.Failures[x], report.Failures[y]
		if fx.Detector != fy.Detector {
			return fx.Detector < fy.Detector
		}
		return fx.Page < fy.Page
	})
	sort.SliceStable(report.PageScores, func(x, y int) bool {
		return report.PageScores[x].Page < report.PageScores[y].Page
	})
	for _, issue := range report.Issues {
		if issue.Kind == domain.IssueLowQuality {
			report.Uncertain = append(report.Uncertain, domain.UncertainPage{
				PageIndex: issue.LowQuality.Page,
				Score:     issue.LowQuality.Score,
			})
		}
	}
	report.Plan = BuildPlan(report.Issues, doc, a.thresholds)

	logger.Info("analysis: %d issues, %d planned, %d failures, %d uncertain pages",
		len(report.Issues), report.Plan.Len(), len(report.Failures), len(report.Uncertain))
	return report, nil
}

// BuildPlan selects and orders the issues to correct. It is a pure
// function: identical inputs give identical plans.
//
// Issues below their kind's threshold are dropped. Overlapping duplicate
// pairs are merged into clusters whose earliest page in doc is kept and
// every other member is removed by one issue each. Only the most
// confident ordering issue is kept.
func BuildPlan(issues []domain.Issue, doc *domain.PaginatedDocument, t domain.Thresholds) domain.CorrectionPlan {
	var planned, duplicates []domain.Issue
	var ordering *domain.Issue
	for _, issue := range issues {
		if !t.Eligible(issue) {
			continue
		}
		switch issue.Kind {
		case domain.IssueDuplicate:
			duplicates = append(duplicates, issue)
		case domain.IssueOrdering:
			if ordering == nil || issue.Confidence > ordering.Confidence {
				chosen := issue
				ordering = &chosen
			}
		case domain.IssueRotation:
			planned = append(planned, issue)
		case domain.IssueLowQuality:
		}
	}
	planned = append(planned, clusterDuplicates(duplicates, doc)...)
	if ordering != nil {
		planned = append(planned, *ordering)
	}
	domain.SortIssues(planned, doc)
	return domain.CorrectionPlan{Issues: planned}
}

// clusterDuplicates resolves overlapping duplicate pairs with union-find.
func clusterDuplicates(pairs []domain.Issue, doc *domain.PaginatedDocument) []domain.Issue {
	if len(pairs) == 0 {
		return nil
	}
	parent := make(map[int]int)
	var find func(int) int
	find = func(p int) int {
		if _, ok := parent[p]; !ok {
			parent[p] = p
		}
		if parent[p] != p {
			parent[p] = find(parent[p])
		}
		return parent[p]
	}
	position := func(original int) int {
		if doc != nil {
			if idx := doc.IndexOfOriginal(original); idx >= 0 {
				return idx
			}
		}
		return original
	}
	earlier := func(a, b int) bool {
		pa, pb := position(a), position(b)
		if pa != pb {
			return pa < pb
		}
		return a < b
	}
	for _, p := range pairs {
		ra, rb := find(p.Duplicate.Keep), find(p.Duplicate.Remove)
		if ra == rb {
			continue
		}
		if earlier(rb, ra) {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	// Best similarity per removed page, preferring a direct pair with the
	// kept page.
	type choice struct {
		issue  domain.Issue
		direct bool
	}
	best := make(map[int]choice)
	offer := func(remove int, sim float64, detector string, direct bool) {
		keep := find(remove)
		issue := domain.NewDuplicateIssue(keep, remove, sim).WithDetector(detector)
		cur, ok := best[remove]
		if !ok || (direct && !cur.direct) || (direct == cur.direct && sim > cur.issue.Confidence) {
			best[remove] = choice{issue: issue, direct: direct}
		}
	}
	for _, p := range pairs {
		d := p.Duplicate
		root := find(d.Keep)
		for _, member := range []int{d.Keep, d.Remove} {
			if member == root {
				continue
			}
			other := d.Keep
			if member == d.Keep {
				other = d.Remove
			}
			offer(member, d.Similarity, p.Detector, other == root)
		}
	}

	out := make([]domain.Issue, 0, len(best))
	for _, c := range best {
		out = append(out, c.issue)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Duplicate.Remove < out[j].Duplicate.Remove
	})
	return out
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
