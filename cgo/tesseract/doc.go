// Package tesseract provides CGO bindings for the Tesseract OCR engine.
// It implements the driven.TextRecognizer interface.
//
// Build requires:
//   - libtesseract and leptonica development headers
//   - the "ocr" build tag: go build -tags ocr
//
// Without the tag (or without cgo) New returns domain.ErrOCRUnavailable.
package tesseract
