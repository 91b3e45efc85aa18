package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown source, exporter or OCR engine type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Pipeline Errors.

	// ErrFatalInput indicates the source cannot be read at the structural level.
	// It is the only pipeline failure propagated to callers.
	ErrFatalInput = errors.New("source document unreadable")

	// ErrPageOutOfRange indicates a page index outside the document.
	ErrPageOutOfRange = errors.New("page index out of range")

	// ErrTransformFailed indicates a correction could not be mechanically applied.
	ErrTransformFailed = errors.New("transform failed")

	// ErrQualityUnknown indicates quality metrics could not be computed.
	// An unknown quality never proves an improvement.
	ErrQualityUnknown = errors.New("quality unknown")

	// ErrCancelled indicates the run was cancelled before it completed.
	ErrCancelled = errors.New("cancelled")

	// ErrTransactionFinalized indicates a finalized transaction was used again.
	ErrTransactionFinalized = errors.New("transaction already finalized")

	// ErrRenderFailed indicates a page could not be rasterised.
	ErrRenderFailed = errors.New("page render failed")

	// ErrOCRUnavailable indicates no text recognition engine is available.
	// Build with the "ocr" tag or configure Document AI.
	ErrOCRUnavailable = errors.New("OCR engine unavailable")

	// ErrExportUnsupported indicates the exporter cannot handle the source.
	ErrExportUnsupported = errors.New("export not supported for source")
)
