package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// PaginatedDocument is an immutable version of an ordered page sequence.
//
// Every mutation returns a new version and leaves the receiver untouched,
// so a checkpoint is simply a reference to an earlier version and restoring
// it is exact. Each version holds its own slice of page values, copied on
// every mutation in time linear in the page count. Only the extracted text
// is shared between versions, through pointers that are never written.
type PaginatedDocument struct {
	sourceURI string
	version   int
	pages     []Page
}

// NewPaginatedDocument creates the first version of a document.
// Pages are copied and renumbered by position.
func NewPaginatedDocument(sourceURI string, pages []Page) *PaginatedDocument {
	return &PaginatedDocument{
		sourceURI: sourceURI,
		version:   1,
		pages:     renumber(pages),
	}
}

func renumber(pages []Page) []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	for i := range out {
		out[i].Index = i
	}
	return out
}

// next creates a successor version owning the given pages.
func (d *PaginatedDocument) next(pages []Page) *PaginatedDocument {
	return &PaginatedDocument{
		sourceURI: d.sourceURI,
		version:   d.version + 1,
		pages:     renumber(pages),
	}
}

// SourceURI returns the URI of the source this document derives from.
func (d *PaginatedDocument) SourceURI() string {
	return d.sourceURI
}

// Version returns the version number, starting at 1.
func (d *PaginatedDocument) Version() int {
	return d.version
}

// Len returns the number of pages.
func (d *PaginatedDocument) Len() int {
	return len(d.pages)
}

// Page returns the page at the current index.
func (d *PaginatedDocument) Page(i int) (Page, bool) {
	if i < 0 || i >= len(d.pages) {
		return Page{}, false
	}
	return d.pages[i], true
}

// Pages returns a copy of all pages in order.
func (d *PaginatedDocument) Pages() []Page {
	out := make([]Page, len(d.pages))
	copy(out, d.pages)
	return out
}

// IndexOfOriginal returns the current index of an original page, or -1.
func (d *PaginatedDocument) IndexOfOriginal(original int) int {
	for i := range d.pages {
		if d.pages[i].OriginalIndex == original {
			return i
		}
	}
	return -1
}

// Originals returns the original indices in current order.
func (d *PaginatedDocument) Originals() []int {
	out := make([]int, len(d.pages))
	for i := range d.pages {
		out[i] = d.pages[i].OriginalIndex
	}
	return out
}

// WithPage returns a new version with the page at index i replaced.
// The other pages are copied into the new version.
// The replacement keeps the original index of the page it replaces.
func (d *PaginatedDocument) WithPage(i int, p Page) (*PaginatedDocument, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("replace page %d of %d: %w", i, len(d.pages), ErrPageOutOfRange)
	}
	if !p.Orientation.IsValid() {
		return nil, fmt.Errorf("replace page %d: orientation %d: %w", i, p.Orientation, ErrInvalidInput)
	}
	if !p.RenderRotation().IsValid() {
		return nil, fmt.Errorf("replace page %d: rotation %d: %w", i, p.RenderRotation(), ErrInvalidInput)
	}
	p.OriginalIndex = d.pages[i].OriginalIndex
	pages := make([]Page, len(d.pages))
	copy(pages, d.pages)
	pages[i] = p
	return d.next(pages), nil
}

// WithoutPage returns a new version with the page at index i removed.
func (d *PaginatedDocument) WithoutPage(i int) (*PaginatedDocument, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("remove page %d of %d: %w", i, len(d.pages), ErrPageOutOfRange)
	}
	pages := make([]Page, 0, len(d.pages)-1)
	pages = append(pages, d.pages[:i]...)
	pages = append(pages, d.pages[i+1:]...)
	return d.next(pages), nil
}

// Permuted returns a new version whose page k is the current page order[k].
// order must be a permutation of 0..Len()-1.
func (d *PaginatedDocument) Permuted(order []int) (*PaginatedDocument, error) {
	if len(order) != len(d.pages) {
		return nil, fmt.Errorf("permutation of %d pages for %d-page document: %w",
			len(order), len(d.pages), ErrInvalidInput)
	}
	seen := make([]bool, len(d.pages))
	pages := make([]Page, len(order))
	for k, i := range order {
		if i < 0 || i >= len(d.pages) {
			return nil, fmt.Errorf("permutation entry %d: %w", i, ErrPageOutOfRange)
		}
		if seen[i] {
			return nil, fmt.Errorf("permutation repeats page %d: %w", i, ErrInvalidInput)
		}
		seen[i] = true
		pages[k] = d.pages[i]
	}
	return d.next(pages), nil
}

// Equal reports whether two versions hold the same pages in the same
// order with identical orientation and text.
func (d *PaginatedDocument) Equal(other *PaginatedDocument) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.pages) != len(other.pages) {
		return false
	}
	for i := range d.pages {
		a, b := d.pages[i], other.pages[i]
		if a.OriginalIndex != b.OriginalIndex || a.Orientation != b.Orientation || a.RasterKey != b.RasterKey {
			return false
		}
		if a.HasText() != b.HasText() || a.TextOrEmpty() != b.TextOrEmpty() {
			return false
		}
	}
	return true
}

// Fingerprint returns a content hash over page provenance, orientation,
// render rotation and text. Two versions with equal fingerprints render identically.
func (d *PaginatedDocument) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte
	for i := range d.pages {
		p := d.pages[i]
		binary.BigEndian.PutUint64(buf[:], uint64(int64(p.OriginalIndex)))
		h.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], uint64(p.Orientation))
		h.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], uint64(p.RenderRotation()))
		h.Write(buf[:])
		if p.Text == nil {
			h.Write([]byte{0})
			continue
		}
		h.Write([]byte{1})
		binary.BigEndian.PutUint64(buf[:], uint64(len(*p.Text)))
		h.Write(buf[:])
		h.Write([]byte(*p.Text))
	}
	return hex.EncodeToString(h.Sum(nil))
}
