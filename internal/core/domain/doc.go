// Package domain defines the core business entities for pagefix.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - PaginatedDocument: An immutable, versioned sequence of pages
//   - Page: One page with provenance, orientation and extracted text
//   - Issue: A detected structural defect with a confidence score
//   - CorrectionPlan: The ordered issues selected for correction
//   - QualityMetrics: The before/after comparison vector
//   - CorrectionReport: The audit trail of a correction run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
