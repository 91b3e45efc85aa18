package domain

import "time"

// QualityGrade is a coarse bucket of aggregate page confidence.
type QualityGrade string

// Quality grades.
const (
	GradeExcellent QualityGrade = "excellent"
	GradeGood      QualityGrade = "good"
	GradeFair      QualityGrade = "fair"
	GradePoor      QualityGrade = "poor"
)

// Grade boundaries on mean page confidence.
const (
	gradeExcellentMin = 0.90
	gradeGoodMin      = 0.80
	gradeFairMin      = 0.65
)

// GradeFor grades a corrected document. A document with no remaining issues
// and no page needing review is Excellent; otherwise the mean page confidence
// is bucketed, and Excellent additionally requires that no page needs review.
// Without any score the grade is Poor.
func GradeFor(meanConfidence float64, known bool, issues, uncertainPages int) QualityGrade {
	switch {
	case !known:
		return GradePoor
	case issues == 0 && uncertainPages == 0:
		return GradeExcellent
	case meanConfidence >= gradeExcellentMin && uncertainPages == 0:
		return GradeExcellent
	case meanConfidence >= gradeGoodMin:
		return GradeGood
	case meanConfidence >= gradeFairMin:
		return GradeFair
	default:
		return GradePoor
	}
}

// String returns the string representation.
func (g QualityGrade) String() string {
	return string(g)
}

// SkipReason explains why a planned issue was never attempted.
type SkipReason string

// Skip reasons.
const (
	SkipAutoCorrectDisabled SkipReason = "auto_correction_disabled"
	SkipTimeBudget          SkipReason = "time_budget_exceeded"
	SkipCancelled           SkipReason = "cancelled"
	SkipMaxAttempts         SkipReason = "max_attempts_reached"
	SkipTargetMissing       SkipReason = "target_page_missing"
)

// AppliedCorrection is a committed step with its verified metrics.
type AppliedCorrection struct {
	Issue  Issue          `json:"issue" yaml:"issue"`
	Before QualityMetrics `json:"before" yaml:"before"`
	After  QualityMetrics `json:"after" yaml:"after"`
}

// RolledBackCorrection is a rejected step and the conditions it failed.
type RolledBackCorrection struct {
	Issue   Issue             `json:"issue" yaml:"issue"`
	Reasons []RejectionReason `json:"reasons" yaml:"reasons"`
	Before  *QualityMetrics   `json:"before,omitempty" yaml:"before,omitempty"`
	After   *QualityMetrics   `json:"after,omitempty" yaml:"after,omitempty"`
	Detail  string            `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// SkippedIssue is a planned issue that was never attempted.
type SkippedIssue struct {
	Issue  Issue      `json:"issue" yaml:"issue"`
	Reason SkipReason `json:"reason" yaml:"reason"`
}

// PageMapping maps an original page to its corrected position.
// CorrectedIndex is nil when the page was removed.
type PageMapping struct {
	OriginalIndex  int  `json:"original_index" yaml:"original_index"`
	CorrectedIndex *int `json:"corrected_index" yaml:"corrected_index"`
}

// CorrectionReport is the immutable audit trail of one correction run.
// It is created once, when the transaction finalizes.
type CorrectionReport struct {
	ID                string    `json:"id" yaml:"id"`
	SourceURI         string    `json:"source_uri" yaml:"source_uri"`
	SourceFingerprint string    `json:"source_fingerprint" yaml:"source_fingerprint"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`

	Applied    []AppliedCorrection    `json:"applied" yaml:"applied"`
	RolledBack []RolledBackCorrection `json:"rolled_back" yaml:"rolled_back"`
	Skipped    []SkippedIssue         `json:"skipped" yaml:"skipped"`

	FinalQualityGrade QualityGrade    `json:"final_quality_grade" yaml:"final_quality_grade"`
	FinalMetrics      *QualityMetrics `json:"final_metrics,omitempty" yaml:"final_metrics,omitempty"`
	PageMapping       []PageMapping   `json:"page_mapping" yaml:"page_mapping"`

	// Uncertain lists pages below the review threshold.
	Uncertain        []UncertainPage   `json:"uncertain" yaml:"uncertain"`
	DetectorFailures []DetectorFailure `json:"detector_failures,omitempty" yaml:"detector_failures,omitempty"`

	Passes       int  `json:"passes" yaml:"passes"`
	AnalysisOnly bool `json:"analysis_only" yaml:"analysis_only"`

	// Incomplete is set when cancellation or the time budget cut the run short.
	Incomplete       bool   `json:"incomplete" yaml:"incomplete"`
	IncompleteReason string `json:"incomplete_reason,omitempty" yaml:"incomplete_reason,omitempty"`

	// OutputPath is where the corrected document was exported, if anywhere.
	OutputPath string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
}

// ReportSummary is the listing view of a stored report.
type ReportSummary struct {
	ID                string       `json:"id" yaml:"id"`
	SourceURI         string       `json:"source_uri" yaml:"source_uri"`
	FinalQualityGrade QualityGrade `json:"final_quality_grade" yaml:"final_quality_grade"`
	Applied           int          `json:"applied" yaml:"applied"`
	RolledBack        int          `json:"rolled_back" yaml:"rolled_back"`
	Skipped           int          `json:"skipped" yaml:"skipped"`
	Incomplete        bool         `json:"incomplete" yaml:"incomplete"`
	CreatedAt         time.Time    `json:"created_at" yaml:"created_at"`
}

// Summary returns the listing view of the report.
func (r *CorrectionReport) Summary() ReportSummary {
	return ReportSummary{
		ID:                r.ID,
		SourceURI:         r.SourceURI,
		FinalQualityGrade: r.FinalQualityGrade,
		Applied:           len(r.Applied),
		RolledBack:        len(r.RolledBack),
		Skipped:           len(r.Skipped),
		Incomplete:        r.Incomplete,
		CreatedAt:         r.CreatedAt,
	}
}

// CorrectedIndexOf returns the corrected index of an original page.
func (r *CorrectionReport) CorrectedIndexOf(original int) (int, bool) {
	for _, m := range r.PageMapping {
		if m.OriginalIndex == original {
			if m.CorrectedIndex == nil {
				return 0, false
			}
			return *m.CorrectedIndex, true
		}
	}
	return 0, false
}

// BuildPageMapping maps every original page 0..originalCount-1 to its
// index in the final document, or nil if it was removed.
func BuildPageMapping(originalCount int, final *PaginatedDocument) []PageMapping {
	mapping := make([]PageMapping, originalCount)
	for orig := 0; orig < originalCount; orig++ {
		mapping[orig] = PageMapping{OriginalIndex: orig}
		if final == nil {
			continue
		}
		if idx := final.IndexOfOriginal(orig); idx >= 0 {
			corrected := idx
			mapping[orig].CorrectedIndex = &corrected
		}
	}
	return mapping
}
