// Package pdfcpu exports corrected PDF sources losslessly.
package pdfcpu

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Exporter = (*Exporter)(nil)

func init() {
	api.DisableConfigDir()
}

// Exporter collects the source pages in corrected order and adjusts each
// page's /Rotate entry. Page content streams are copied unchanged.
type Exporter struct{}

// New creates a lossless PDF exporter.
func New() *Exporter {
	return &Exporter{}
}

// Name returns "pdf".
func (e *Exporter) Name() string {
	return string(domain.ExportPDF)
}

// Supports reports whether the source exposes its raw PDF bytes.
func (e *Exporter) Supports(src driven.SourceDocument) bool {
	_, ok := src.(driven.SeekableSource)
	return ok
}

// Export writes doc as a PDF built from the source's own pages.
func (e *Exporter) Export(ctx context.Context, src driven.SourceDocument, _ driven.PageRenderer, doc *domain.PaginatedDocument, w io.Writer) error {
	seekable, ok := src.(driven.SeekableSource)
	if !ok {
		return domain.ErrExportUnsupported
	}
	if doc == nil || doc.Len() == 0 {
		return fmt.Errorf("empty document: %w", domain.ErrInvalidInput)
	}

	selected := make([]string, 0, doc.Len())
	turns := make(map[int][]string)
	for _, p := range doc.Pages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		selected = append(selected, strconv.Itoa(p.OriginalIndex+1))
		declared, err := src.PageOrientation(ctx, p.OriginalIndex)
		if err != nil {
			return fmt.Errorf("page %d orientation: %w", p.OriginalIndex+1, err)
		}
		if delta := domain.NormalizeAngle(p.RenderRotation().Degrees() - declared.Degrees()); delta != 0 {
			turns[delta] = append(turns[delta], strconv.Itoa(p.Index+1))
		}
	}

	rs, err := seekable.Open()
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer rs.Close()

	conf := model.NewDefaultConfiguration()
	var collected bytes.Buffer
	if err := api.Collect(rs, &collected, selected, conf); err != nil {
		return fmt.Errorf("collect pages: %w", err)
	}

	out := collected.Bytes()
	deltas := make([]int, 0, len(turns))
	for d := range turns {
		deltas = append(deltas, d)
	}
	sort.Ints(deltas)
	for _, d := range deltas {
		var rotated bytes.Buffer
		if err := api.Rotate(bytes.NewReader(out), &rotated, d, turns[d], conf); err != nil {
			return fmt.Errorf("rotate pages %v by %d: %w", turns[d], d, err)
		}
		out = rotated.Bytes()
	}

	_, err = w.Write(out)
	return err
}
