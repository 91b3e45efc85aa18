// Package imaging provides the raster operations used by the render cache
// and detectors: grayscale conversion, right-angle rotation, thumbnails,
// exact and perceptual page hashes, and text line axis estimation.
package imaging
