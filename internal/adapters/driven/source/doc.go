// Package source opens scanned documents for the correction pipeline.
//
// A Registry maps file extensions to source constructors. Directories are
// opened as a sequence of page images. Every source is read-only; the
// underlying files are never written.
package source
