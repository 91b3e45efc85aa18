// Package cgo provides CGO bindings for native libraries.
// This package isolates all CGO code from the pure Go core.
//
// Sub-packages:
//   - tesseract: Tesseract OCR bindings for local text recognition
package cgo
