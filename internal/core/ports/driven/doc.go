// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SourceOpener: Opens a read-only handle on a scanned document
//   - SourceDocument: Page count, declared orientation and rasterisation
//   - TextRecognizer: OCR over a rendered raster (Tesseract or Document AI)
//   - PageRenderer: Memoised rasters, thumbnails and recognitions by RasterKey
//   - Detector: Finds one class of structural defect
//   - Transformer: Applies one correction to a document version
//   - ReportStore: Correction report persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Exporter: Writes the corrected document. Without it, only the report is produced.
//   - SeekableSource: Raw source bytes. Required only for lossless PDF export.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, detector, or transformer package
package driven
