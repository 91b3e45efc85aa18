// Package pdf opens PDF files as source documents.
//
// Structure (page count, declared /Rotate) is read with pdfcpu. Pages are
// rasterised by poppler's pdftoppm, which must be on PATH.
package pdf

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
	"github.com/custodia-labs/pagefix/internal/imaging"
)

// Verify interface compliance.
var _ driven.SeekableSource = (*Source)(nil)

// Renderer is the rasteriser command.
const Renderer = "pdftoppm"

func init() {
	// Keep pdfcpu from writing its config directory under the user's home.
	api.DisableConfigDir()
}

// Source is a read-only PDF.
type Source struct {
	path        string
	runner      CommandRunner
	fingerprint string

	once sync.Once
	ctx  *model.Context
	err  error
}

// Open hashes the file and returns a source. The PDF is parsed lazily.
func Open(path string, runner CommandRunner) (*Source, error) {
	if runner == nil {
		runner = ExecRunner{}
	}
	fp, err := fingerprint(path)
	if err != nil {
		return nil, err
	}
	return &Source{path: path, runner: runner, fingerprint: fp}, nil
}

// URI returns the file path.
func (s *Source) URI() string {
	return s.path
}

// Fingerprint returns the sha256 of the file bytes.
func (s *Source) Fingerprint() string {
	return s.fingerprint
}

// Open returns a reader over the unmodified file.
func (s *Source) Open() (io.ReadSeekCloser, error) {
	return os.Open(s.path)
}

// Close is a no-op; the file is only held open while reading.
func (s *Source) Close() error {
	return nil
}

func (s *Source) context() (*model.Context, error) {
	s.once.Do(func() {
		f, err := os.Open(s.path)
		if err != nil {
			s.err = err
			return
		}
		defer f.Close()
		s.ctx, s.err = api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
		if s.err != nil {
			s.err = fmt.Errorf("pdfcpu read: %w", s.err)
		}
	})
	return s.ctx, s.err
}

// PageCount returns the number of pages in the page tree.
func (s *Source) PageCount(_ context.Context) (int, error) {
	ctx, err := s.context()
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

// PageOrientation returns the page's effective /Rotate, inherited
// attributes included.
func (s *Source) PageOrientation(_ context.Context, index int) (domain.Orientation, error) {
	ctx, err := s.context()
	if err != nil {
		return domain.Orientation0, err
	}
	if index < 0 || index >= ctx.PageCount {
		return domain.Orientation0, domain.ErrPageOutOfRange
	}
	_, _, inherited, err := ctx.PageDict(index+1, false)
	if err != nil {
		return domain.Orientation0, fmt.Errorf("page %d: %w", index+1, err)
	}
	if inherited == nil {
		return domain.Orientation0, nil
	}
	o := domain.Orientation(domain.NormalizeAngle(inherited.Rotate))
	if !o.IsValid() {
		return domain.Orientation0, fmt.Errorf("page %d: /Rotate %d: %w", index+1, inherited.Rotate, domain.ErrInvalidInput)
	}
	return o, nil
}

// RenderPage rasterises the page and undoes its declared rotation, since
// pdftoppm applies /Rotate when rendering.
func (s *Source) RenderPage(ctx context.Context, index int, dpi int) (image.Image, error) {
	declared, err := s.PageOrientation(ctx, index)
	if err != nil {
		return nil, err
	}
	page := strconv.Itoa(index + 1)
	out, err := s.runner.Run(ctx, Renderer,
		"-f", page,
		"-l", page,
		"-r", strconv.Itoa(dpi),
		"-gray",
		"-png",
		"-singlefile",
		s.path,
		"-")
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decode page %d: %w", index+1, err)
	}
	if declared == domain.Orientation0 {
		return img, nil
	}
	native, err := imaging.Rotate(imaging.ToGray(img), -declared.Degrees())
	if err != nil {
		return nil, err
	}
	return native, nil
}

func fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}
