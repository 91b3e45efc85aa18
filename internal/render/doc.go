// Package render provides the page render cache shared by detectors and
// transformers.
//
// The cache memoises three artefacts per RasterKey: the oriented grayscale
// raster, its thumbnail and its text recognition. Native rasters come from
// the source document and are rotated in memory, so each page is
// rasterised by the source at most once while it stays cached.
//
// All methods are safe for concurrent use. Work is computed outside the
// lock; when two goroutines race on the same key the last write wins,
// which is harmless because results are deterministic.
package render
