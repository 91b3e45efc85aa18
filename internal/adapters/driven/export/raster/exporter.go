// Package raster exports corrected documents as image-only PDFs.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/imaging"
)

// Verify interface compliance.
var _ driven.Exporter = (*Exporter)(nil)

const pointsPerInch = 72.0

// Exporter places each oriented page raster on a page of matching size.
type Exporter struct {
	dpi int
}

// New creates a raster exporter. dpi must match the render DPI so page
// sizes come out at their physical dimensions.
func New(dpi int) *Exporter {
	if dpi <= 0 {
		dpi = domain.DefaultRenderDPI
	}
	return &Exporter{dpi: dpi}
}

// Name returns "raster".
func (e *Exporter) Name() string {
	return string(domain.ExportRaster)
}

// Supports returns true; every source can be rendered.
func (e *Exporter) Supports(_ driven.SourceDocument) bool {
	return true
}

// Export renders every page at its corrected orientation into a new PDF.
func (e *Exporter) Export(ctx context.Context, _ driven.SourceDocument, pages driven.PageRenderer, doc *domain.PaginatedDocument, w io.Writer) error {
	if doc == nil || doc.Len() == 0 {
		return fmt.Errorf("empty document: %w", domain.ErrInvalidInput)
	}
	if pages == nil {
		return fmt.Errorf("no page renderer: %w", domain.ErrInvalidInput)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(true)
	scale := pointsPerInch / float64(e.dpi)

	for _, p := range doc.Pages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := pages.Raster(ctx, p.RasterKey)
		if err != nil {
			return fmt.Errorf("page %d: %w", p.Index+1, err)
		}
		data, err := imaging.EncodePNG(img)
		if err != nil {
			return fmt.Errorf("page %d: %w", p.Index+1, err)
		}

		wd := float64(img.Bounds().Dx()) * scale
		ht := float64(img.Bounds().Dy()) * scale
		orientation := "P"
		if wd > ht {
			orientation = "L"
		}
		pdf.AddPageFormat(orientation, fpdf.SizeType{Wd: wd, Ht: ht})

		name := fmt.Sprintf("page%d", p.Index)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.ImageOptions(name, 0, 0, wd, ht, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("page %d: %w", p.Index+1, err)
		}
	}

	return pdf.Output(w)
}
