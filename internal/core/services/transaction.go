package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/logger"
)

// TxState is the state of a correction transaction.
type TxState int

// Transaction states. A step moves Idle -> Checkpointed -> Verifying ->
// Committed or RolledBack, and the next step starts from there.
// Finalized is terminal.
const (
	TxIdle TxState = iota
	TxCheckpointed
	TxVerifying
	TxCommitted
	TxRolledBack
	TxFinalized
)

// String returns the string representation.
func (s TxState) String() string {
	switch s {
	case TxIdle:
		return "idle"
	case TxCheckpointed:
		return "checkpointed"
	case TxVerifying:
		return "verifying"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled_back"
	case TxFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// CorrectionTransaction applies plan steps one at a time, each under a
// checkpoint, and keeps only the steps that verifiably improve quality.
// It is single-threaded and may execute several plans before it is
// finalized.
type CorrectionTransaction struct {
	state       TxState
	working     *domain.PaginatedDocument
	checkpoint  *domain.PaginatedDocument
	transformer driven.Transformer
	verifier    *QualityVerifier
	deadline    time.Time

	applied    []domain.AppliedCorrection
	rolledBack []domain.RolledBackCorrection
	skipped    []domain.SkippedIssue

	incomplete       bool
	incompleteReason string
}

// NewCorrectionTransaction starts a transaction on a document version.
// A zero deadline disables the time budget.
func NewCorrectionTransaction(doc *domain.PaginatedDocument, transformer driven.Transformer, verifier *QualityVerifier, deadline time.Time) *CorrectionTransaction {
	return &CorrectionTransaction{
		state:       TxIdle,
		working:     doc,
		transformer: transformer,
		verifier:    verifier,
		deadline:    deadline,
	}
}

// State returns the current state.
func (t *CorrectionTransaction) State() TxState {
	return t.state
}

// Working returns the current working version.
func (t *CorrectionTransaction) Working() *domain.PaginatedDocument {
	return t.working
}

// Applied returns the number of committed steps so far.
func (t *CorrectionTransaction) Applied() int {
	return len(t.applied)
}

// Incomplete reports whether cancellation or the time budget cut the run short.
func (t *CorrectionTransaction) Incomplete() bool {
	return t.incomplete
}

// Skip records issues that will not be attempted.
func (t *CorrectionTransaction) Skip(issues []domain.Issue, reason domain.SkipReason) error {
	if t.state == TxFinalized {
		return domain.ErrTransactionFinalized
	}
	for _, issue := range issues {
		t.skipped = append(t.skipped, domain.SkippedIssue{Issue: issue, Reason: reason})
	}
	return nil
}

// MarkIncomplete flags the run as cut short.
func (t *CorrectionTransaction) MarkIncomplete(reason string) {
	if !t.incomplete {
		t.incomplete = true
		t.incompleteReason = reason
	}
}

// Execute applies a plan. The time budget and cancellation are checked
// at step boundaries; a cancellation during a step rolls that step back.
// Issues never attempted are recorded as skipped.
func (t *CorrectionTransaction) Execute(ctx context.Context, plan domain.CorrectionPlan) error {
	if t.state == TxFinalized {
		return domain.ErrTransactionFinalized
	}
	for i, issue := range plan.Issues {
		if ctx.Err() != nil {
			t.abort(plan.Issues[i:], domain.SkipCancelled)
			return nil
		}
		if !t.deadline.IsZero() && !time.Now().Before(t.deadline) {
			t.abort(plan.Issues[i:], domain.SkipTimeBudget)
			return nil
		}
		if target := issue.TargetPage(); target >= 0 && t.working.IndexOfOriginal(target) < 0 {
			logger.Warn("skip %s: target page no longer present", issue)
			t.skipped = append(t.skipped, domain.SkippedIssue{Issue: issue, Reason: domain.SkipTargetMissing})
			continue
		}
		if cancelled := t.step(ctx, issue); cancelled {
			t.abort(plan.Issues[i+1:], domain.SkipCancelled)
			return nil
		}
	}
	return nil
}

// abort skips the remaining issues and marks the run incomplete.
func (t *CorrectionTransaction) abort(rest []domain.Issue, reason domain.SkipReason) {
	logger.Warn("transaction aborted (%s): %d issues not attempted", reason, len(rest))
	for _, issue := range rest {
		t.skipped = append(t.skipped, domain.SkippedIssue{Issue: issue, Reason: reason})
	}
	t.MarkIncomplete(string(reason))
}

// step runs one checkpoint, apply, verify cycle. It reports whether the
// step was interrupted by cancellation.
func (t *CorrectionTransaction) step(ctx context.Context, issue domain.Issue) bool {
	t.checkpoint = t.working
	t.state = TxCheckpointed
	before, beforeErr := t.verifier.Score(t.working)

	next, err := t.transformer.Apply(ctx, t.working, issue)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		if isCancellation(err) || ctx.Err() != nil {
			t.rollback(issue, []domain.RejectionReason{domain.ReasonCancelled}, nil, nil, "")
			return true
		}
		t.rollback(issue, []domain.RejectionReason{domain.ReasonTransformerFailed}, nil, nil, err.Error())
		return false
	}

	t.state = TxVerifying
	after, afterErr := t.verifier.Score(next)
	if beforeErr != nil || afterErr != nil {
		var b, a *domain.QualityMetrics
		detail := ""
		if beforeErr == nil {
			b = &before
		} else {
			detail = fmt.Sprintf("before: %v", beforeErr)
		}
		if afterErr == nil {
			a = &after
		} else {
			detail = fmt.Sprintf("after: %v", afterErr)
		}
		t.rollback(issue, []domain.RejectionReason{domain.ReasonQualityUnknown}, b, a, detail)
		return false
	}

	if reasons := domain.EvaluateImprovement(before, after); len(reasons) > 0 {
		t.rollback(issue, reasons, &before, &after, "")
		return false
	}

	t.working = next
	t.checkpoint = nil
	t.state = TxCommitted
	t.applied = append(t.applied, domain.AppliedCorrection{Issue: issue, Before: before, After: after})
	logger.Info("committed %s: readability %.3f -> %.3f, elements %d -> %d",
		issue, before.ReadableTextRatio, after.ReadableTextRatio,
		before.DetectedElementCount, after.DetectedElementCount)
	return false
}

// rollback restores the checkpoint exactly.
func (t *CorrectionTransaction) rollback(issue domain.Issue, reasons []domain.RejectionReason, before, after *domain.QualityMetrics, detail string) {
	t.working = t.checkpoint
	t.checkpoint = nil
	t.state = TxRolledBack
	t.rolledBack = append(t.rolledBack, domain.RolledBackCorrection{
		Issue:   issue,
		Reasons: reasons,
		Before:  before,
		After:   after,
		Detail:  detail,
	})
	logger.Warn("rolled back %s: %v %s", issue, reasons, detail)
}

// ReportInfo is the run context the transaction cannot know itself.
type ReportInfo struct {
	ID                string
	SourceURI         string
	SourceFingerprint string
	OriginalPageCount int
	CreatedAt         time.Time

	// Analysis is the last analysis of the run. It supplies the grade and
	// the uncertainty list.
	Analysis *domain.AnalysisReport

	// Failures accumulates detector failures across passes.
	Failures     []domain.DetectorFailure
	Passes       int
	AnalysisOnly bool
}

// Finalize builds the report. The transaction cannot be used afterwards.
func (t *CorrectionTransaction) Finalize(info ReportInfo) (*domain.CorrectionReport, error) {
	if t.state == TxFinalized {
		return nil, domain.ErrTransactionFinalized
	}
	t.state = TxFinalized

	mean, known := info.Analysis.MeanPageScore()
	var uncertain []domain.UncertainPage
	var issues int
	if info.Analysis != nil {
		uncertain = info.Analysis.Uncertain
		issues = len(info.Analysis.Issues)
		if info.Analysis.Incomplete {
			t.MarkIncomplete("analysis incomplete")
		}
	}

	report := &domain.CorrectionReport{
		ID:                info.ID,
		SourceURI:         info.SourceURI,
		SourceFingerprint: info.SourceFingerprint,
		CreatedAt:         info.CreatedAt,
		Applied:           nonNil(t.applied),
		RolledBack:        nonNil(t.rolledBack),
		Skipped:           nonNil(t.skipped),
		FinalQualityGrade: domain.GradeFor(mean, known, issues, len(uncertain)),
		PageMapping:       domain.BuildPageMapping(info.OriginalPageCount, t.working),
		Uncertain:         nonNil(uncertain),
		DetectorFailures:  info.Failures,
		Passes:            info.Passes,
		AnalysisOnly:      info.AnalysisOnly,
		Incomplete:        t.incomplete,
		IncompleteReason:  t.incompleteReason,
	}
	if m, err := t.verifier.Score(t.working); err == nil {
		report.FinalMetrics = &m
	}
	return report, nil
}

// nonNil keeps empty report lists serialised as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
