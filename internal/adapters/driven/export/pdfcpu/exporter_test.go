package pdfcpu

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagefix/internal/adapters/driven/source/images"
	"github.com/custodia-labs/pagefix/internal/adapters/driven/source/pdf"
	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// writePDF creates a three-page PDF whose third page declares /Rotate 180.
func writePDF(t *testing.T) string {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 0; i < 3; i++ {
		doc.AddPage()
		doc.Cell(40, 10, "page")
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))

	var rotated bytes.Buffer
	require.NoError(t, api.Rotate(bytes.NewReader(buf.Bytes()), &rotated, 180, []string{"3"}, model.NewDefaultConfiguration()))

	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, rotated.Bytes(), 0o600))
	return path
}

func TestExporter_Supports(t *testing.T) {
	e := New()
	src, err := pdf.Open(writePDF(t), nil)
	require.NoError(t, err)
	assert.True(t, e.Supports(src))
	assert.Equal(t, "pdf", e.Name())

	dir := t.TempDir()
	imgs, err := images.Open(dir)
	require.NoError(t, err)
	assert.False(t, e.Supports(imgs))
}

func TestExporter_Export(t *testing.T) {
	path := writePDF(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	src, err := pdf.Open(path, nil)
	require.NoError(t, err)
	ctx := context.Background()

	// Original page 3 (declared 180) first, then page 1 turned a quarter.
	doc := domain.NewPaginatedDocument(path, []domain.Page{
		domain.NewPage(2, domain.Orientation180, nil),
		domain.NewPage(0, domain.Orientation90, nil),
	})

	var out bytes.Buffer
	require.NoError(t, New().Export(ctx, src, nil, doc, &out))

	exported := filepath.Join(t.TempDir(), "out.pdf")
	require.NoError(t, os.WriteFile(exported, out.Bytes(), 0o600))
	result, err := pdf.Open(exported, nil)
	require.NoError(t, err)

	count, err := result.PageCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	first, err := result.PageOrientation(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.Orientation180, first)
	second, err := result.PageOrientation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Orientation90, second)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "source must not be modified")
}

func TestExporter_ExportEmptyDocument(t *testing.T) {
	src, err := pdf.Open(writePDF(t), nil)
	require.NoError(t, err)

	err = New().Export(context.Background(), src, nil, domain.NewPaginatedDocument("x", nil), &bytes.Buffer{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExporter_ExportUnsupportedSource(t *testing.T) {
	imgs, err := images.Open(t.TempDir())
	require.NoError(t, err)
	doc := domain.NewPaginatedDocument("x", []domain.Page{domain.NewPage(0, domain.Orientation0, nil)})

	err = New().Export(context.Background(), imgs, nil, doc, &bytes.Buffer{})

	assert.ErrorIs(t, err, domain.ErrExportUnsupported)
}
