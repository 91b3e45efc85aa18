// Package detectors groups the structural defect detectors. Each
// subpackage implements driven.Detector for one issue kind:
//
//   - rotation: misrotated pages, from recognition quality per candidate angle
//   - order: shuffled pages, from printed page numbers and content continuity
//   - duplicate: repeated pages, from layered raster and text comparison
//   - quality: pages whose recognition confidence needs human review
//
// Detectors never modify the document or the render cache contents they
// read; they isolate per-page failures and return an error only when the
// context is cancelled.
package detectors

import (
	"context"
	"errors"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// IsCancellation reports whether err stems from context cancellation or
// deadline expiry rather than a page-level failure.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Failure records a page-level failure for a detector.
func Failure(detector string, page int, err error) domain.DetectorFailure {
	return domain.DetectorFailure{Detector: detector, Page: page, Error: err.Error()}
}
