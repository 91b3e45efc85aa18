package pdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

// writePDF creates a PDF with one text line per page and optionally
// rotates the given 1-based pages by 90 degrees.
func writePDF(t *testing.T, pages int, rotate ...string) string {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		doc.AddPage()
		doc.Cell(40, 10, "page")
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))

	data := buf.Bytes()
	if len(rotate) > 0 {
		var out bytes.Buffer
		require.NoError(t, api.Rotate(bytes.NewReader(data), &out, 90, rotate, model.NewDefaultConfiguration()))
		data = out.Bytes()
	}

	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSource_PageCount(t *testing.T) {
	src, err := Open(writePDF(t, 3), &mockRunner{})
	require.NoError(t, err)
	defer src.Close()

	count, err := src.PageCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, strings.HasPrefix(src.Fingerprint(), "sha256:"))
}

func TestSource_PageCountCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))
	src, err := Open(path, &mockRunner{})
	require.NoError(t, err)

	_, err = src.PageCount(context.Background())

	assert.Error(t, err)
}

func TestSource_PageOrientation(t *testing.T) {
	src, err := Open(writePDF(t, 2, "2"), &mockRunner{})
	require.NoError(t, err)
	ctx := context.Background()

	first, err := src.PageOrientation(ctx, 0)
	require.NoError(t, err)
	second, err := src.PageOrientation(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.Orientation0, first)
	assert.Equal(t, domain.Orientation90, second)

	_, err = src.PageOrientation(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrPageOutOfRange)
}

func TestSource_RenderPage(t *testing.T) {
	runner := &mockRunner{output: pngBytes(t, 20, 30)}
	path := writePDF(t, 2, "2")
	src, err := Open(path, runner)
	require.NoError(t, err)
	ctx := context.Background()

	upright, err := src.RenderPage(ctx, 0, 150)
	require.NoError(t, err)
	assert.Equal(t, Renderer, runner.name)
	assert.Equal(t, []string{"-f", "1", "-l", "1", "-r", "150", "-gray", "-png", "-singlefile", path, "-"}, runner.args)
	assert.Equal(t, 20, upright.Bounds().Dx())

	// pdftoppm honours /Rotate, so the declared quarter turn is undone.
	native, err := src.RenderPage(ctx, 1, 150)
	require.NoError(t, err)
	assert.Equal(t, 30, native.Bounds().Dx())
	assert.Equal(t, 20, native.Bounds().Dy())
}

func TestSource_RenderPageRunnerError(t *testing.T) {
	src, err := Open(writePDF(t, 1), &mockRunner{err: errors.New("pdftoppm: not found")})
	require.NoError(t, err)

	_, err = src.RenderPage(context.Background(), 0, 150)

	assert.ErrorContains(t, err, "not found")
}

func TestSource_OpenReturnsOriginalBytes(t *testing.T) {
	path := writePDF(t, 1)
	want, err := os.ReadFile(path)
	require.NoError(t, err)
	src, err := Open(path, &mockRunner{})
	require.NoError(t, err)

	rc, err := src.Open()
	require.NoError(t, err)
	defer rc.Close()
	var got bytes.Buffer
	_, err = got.ReadFrom(rc)

	require.NoError(t, err)
	assert.Equal(t, want, got.Bytes())
}
