package domain

import "fmt"

// NoOriginalIndex marks a page with no provenance in the source document.
const NoOriginalIndex = -1

// Orientation is a clockwise angle in degrees. It describes either the
// rotation applied to a native raster when rendering or how far a page's
// content sits from upright. Only right angles are valid.
type Orientation int

// Valid orientations.
const (
	Orientation0   Orientation = 0
	Orientation90  Orientation = 90
	Orientation180 Orientation = 180
	Orientation270 Orientation = 270
)

// AllOrientations lists the valid orientations in ascending order.
func AllOrientations() []Orientation {
	return []Orientation{Orientation0, Orientation90, Orientation180, Orientation270}
}

// NormalizeAngle maps any multiple of 90 degrees into [0, 360).
func NormalizeAngle(degrees int) int {
	d := degrees % 360
	if d < 0 {
		d += 360
	}
	return d
}

// IsValid returns true if the orientation is a right angle in [0, 360).
func (o Orientation) IsValid() bool {
	switch o {
	case Orientation0, Orientation90, Orientation180, Orientation270:
		return true
	default:
		return false
	}
}

// Add returns the orientation rotated by delta degrees clockwise.
func (o Orientation) Add(delta int) Orientation {
	return Orientation(NormalizeAngle(int(o) + delta))
}

// Degrees returns the orientation as an int.
func (o Orientation) Degrees() int {
	return int(o)
}

// IsQuarterTurn returns true for 90 and 270 degrees.
func (o Orientation) IsQuarterTurn() bool {
	return o == Orientation90 || o == Orientation270
}

// RasterKey identifies a rendered page raster in the render cache.
// Pages hold keys, never rasters, so cache eviction cannot corrupt them.
type RasterKey struct {
	// Page is the original (source) page index.
	Page int `json:"page" yaml:"page"`

	// Orientation is the rotation applied to the native raster.
	Orientation Orientation `json:"orientation" yaml:"orientation"`
}

// KeyFor returns the raster key for an original page at an orientation.
func KeyFor(originalIndex int, o Orientation) RasterKey {
	return RasterKey{Page: originalIndex, Orientation: o}
}

// String returns a compact form such as "p3@90".
func (k RasterKey) String() string {
	return fmt.Sprintf("p%d@%d", k.Page, k.Orientation)
}

// Page is one page of a paginated document.
// Pages are values; a document version owns its own copies.
type Page struct {
	// Index is the current position within the document version.
	// It is assigned by the document and never set by callers.
	Index int

	// OriginalIndex is the provenance back to the source document.
	// It is set at creation and never changes.
	OriginalIndex int

	// Orientation is the orientation of the page content relative to
	// upright. Pages load as upright and a committed rotation fix keeps
	// them upright; the render rotation lives in RasterKey.
	Orientation Orientation

	// RasterKey looks up the page's raster in the render cache.
	RasterKey RasterKey

	// Text is the text extracted from the page's raster.
	// Nil when extraction failed.
	Text *string
}

// NewPage creates an upright page for an original page index rendered at
// the given rotation.
func NewPage(originalIndex int, rotation Orientation, text *string) Page {
	return Page{
		Index:         originalIndex,
		OriginalIndex: originalIndex,
		Orientation:   Orientation0,
		RasterKey:     KeyFor(originalIndex, rotation),
		Text:          text,
	}
}

// RenderRotation returns the rotation applied to the native raster.
func (p Page) RenderRotation() Orientation {
	return p.RasterKey.Orientation
}

// HasText returns true if the page carries extracted text.
func (p Page) HasText() bool {
	return p.Text != nil
}

// TextOrEmpty returns the extracted text or the empty string.
func (p Page) TextOrEmpty() string {
	if p.Text == nil {
		return ""
	}
	return *p.Text
}

// Rotated returns an upright copy of the page rendered at a new rotation
// with new text.
func (p Page) Rotated(rotation Orientation, text *string) Page {
	p.Orientation = Orientation0
	p.RasterKey = KeyFor(p.OriginalIndex, rotation)
	p.Text = text
	return p
}

// Recognition is the output of a text recognition engine for one raster.
type Recognition struct {
	// Text is the recognised text with line breaks preserved.
	Text string

	// Confidence is the mean word confidence in [0,1].
	Confidence float64
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
