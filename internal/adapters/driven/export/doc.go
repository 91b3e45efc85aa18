// Package export holds the writers for corrected documents.
//
//   - pdfcpu: re-sequences and rotates the pages of a PDF source without
//     re-encoding them.
//   - raster: assembles a new image-only PDF from the rendered page
//     rasters; works for every source.
package export
