package domain

import "sort"

// CorrectionPlan is the ordered list of issues selected for correction:
// rotation fixes, then duplicate removal, then reordering.
type CorrectionPlan struct {
	Issues []Issue `json:"issues" yaml:"issues"`
}

// Len returns the number of planned issues.
func (p CorrectionPlan) Len() int {
	return len(p.Issues)
}

// IsEmpty returns true if nothing is planned.
func (p CorrectionPlan) IsEmpty() bool {
	return len(p.Issues) == 0
}

// Without returns a plan excluding issues whose key is in skip.
func (p CorrectionPlan) Without(skip map[string]bool) CorrectionPlan {
	out := make([]Issue, 0, len(p.Issues))
	for _, issue := range p.Issues {
		if !skip[issue.Key()] {
			out = append(out, issue)
		}
	}
	return CorrectionPlan{Issues: out}
}

// SortIssues orders issues by phase, then by the current position of the
// target page in doc, then by key. The order is total and deterministic.
func SortIssues(issues []Issue, doc *PaginatedDocument) {
	position := func(issue Issue) int {
		target := issue.TargetPage()
		if target < 0 || doc == nil {
			return target
		}
		if idx := doc.IndexOfOriginal(target); idx >= 0 {
			return idx
		}
		return target
	}
	sort.SliceStable(issues, func(a, b int) bool {
		pa, pb := issues[a].Kind.Phase(), issues[b].Kind.Phase()
		if pa != pb {
			return pa < pb
		}
		ta, tb := position(issues[a]), position(issues[b])
		if ta != tb {
			return ta < tb
		}
		return issues[a].Key() < issues[b].Key()
	})
}

// DetectorFailure records a detector error isolated to one page.
type DetectorFailure struct {
	Detector string `json:"detector" yaml:"detector"`

	// Page is the original page index, or -1 for a document-level failure.
	Page int `json:"page" yaml:"page"`

	Error string `json:"error" yaml:"error"`
}

// PageScore is a per-page recognition confidence.
type PageScore struct {
	// Page is the original page index.
	Page  int     `json:"page" yaml:"page"`
	Score float64 `json:"score" yaml:"score"`
}

// UncertainPage is a page whose quality fell below the review threshold.
type UncertainPage struct {
	// PageIndex is the original page index.
	PageIndex int     `json:"page_index" yaml:"page_index"`
	Score     float64 `json:"score" yaml:"score"`
}

// AnalysisReport is the merged output of all detectors for one document version.
type AnalysisReport struct {
	SourceURI   string `json:"source_uri" yaml:"source_uri"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	PageCount   int    `json:"page_count" yaml:"page_count"`

	// Issues holds every detected issue, eligible or not, sorted.
	Issues []Issue `json:"issues" yaml:"issues"`

	// Plan holds the eligible issues in application order.
	Plan CorrectionPlan `json:"plan" yaml:"plan"`

	PageScores []PageScore       `json:"page_scores,omitempty" yaml:"page_scores,omitempty"`
	Uncertain  []UncertainPage   `json:"uncertain,omitempty" yaml:"uncertain,omitempty"`
	Failures   []DetectorFailure `json:"failures,omitempty" yaml:"failures,omitempty"`

	// Incomplete is set when analysis was cancelled or timed out.
	Incomplete bool `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`
}

// MeanPageScore returns the mean per-page confidence and whether any
// score was available.
func (r *AnalysisReport) MeanPageScore() (float64, bool) {
	if r == nil || len(r.PageScores) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range r.PageScores {
		sum += s.Score
	}
	return sum / float64(len(r.PageScores)), true
}
