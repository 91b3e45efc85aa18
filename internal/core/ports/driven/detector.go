package driven

import (
	"context"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// Detector finds one class of structural defect in a document version.
// Detectors are read-only and run in parallel over the same version.
type Detector interface {
	// Name returns the detector identifier used in issues and failures.
	Name() string

	// Detect analyses the document. Per-page failures are returned in
	// Detection.Failures; the error return is reserved for cancellation.
	Detect(ctx context.Context, doc *domain.PaginatedDocument, pages PageRenderer) (Detection, error)
}

// Detection is the output of one detector run.
type Detection struct {
	Issues   []domain.Issue
	Failures []domain.DetectorFailure

	// Scores carries per-page recognition confidence, when measured.
	Scores []domain.PageScore
}
