// Package images opens scanned page images as source documents.
//
// A directory is a document whose pages are the image files it contains,
// in natural name order ("page2" before "page10"). A single image file is
// a one-page document. PNG, JPEG, TIFF and BMP are decoded.
package images

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder

	"github.com/custodia-labs/pagefix/internal/core/domain"
	"github.com/custodia-labs/pagefix/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.SourceDocument = (*Source)(nil)

var extensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// Extensions returns the supported file extensions.
func Extensions() []string {
	out := make([]string, 0, len(extensions))
	for ext := range extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// IsImage reports whether a path has a supported image extension.
func IsImage(path string) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Source is a read-only sequence of page images.
type Source struct {
	uri         string
	files       []string
	fingerprint string
}

// Open lists the page images under path and hashes their bytes.
func Open(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && IsImage(e.Name()) {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
		sort.Slice(files, func(i, j int) bool {
			return naturalLess(filepath.Base(files[i]), filepath.Base(files[j]))
		})
	} else {
		if !IsImage(path) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrUnsupportedType)
		}
		files = []string{path}
	}

	fp, err := fingerprint(files)
	if err != nil {
		return nil, err
	}
	return &Source{uri: path, files: files, fingerprint: fp}, nil
}

// URI returns the path the source was opened from.
func (s *Source) URI() string {
	return s.uri
}

// Files returns the page image paths in page order.
func (s *Source) Files() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

// PageCount returns the number of page images.
func (s *Source) PageCount(_ context.Context) (int, error) {
	return len(s.files), nil
}

// PageOrientation is always 0; image files carry no page rotation.
func (s *Source) PageOrientation(_ context.Context, index int) (domain.Orientation, error) {
	if index < 0 || index >= len(s.files) {
		return domain.Orientation0, domain.ErrPageOutOfRange
	}
	return domain.Orientation0, nil
}

// RenderPage decodes the page image. Scans are used at their native
// resolution, so dpi is ignored.
func (s *Source) RenderPage(ctx context.Context, index int, _ int) (image.Image, error) {
	if index < 0 || index >= len(s.files) {
		return nil, domain.ErrPageOutOfRange
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.files[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(s.files[index]), err)
	}
	return img, nil
}

// Fingerprint returns the sha256 over every page file in order.
func (s *Source) Fingerprint() string {
	return s.fingerprint
}

// Close is a no-op.
func (s *Source) Close() error {
	return nil
}

func fingerprint(files []string) (string, error) {
	h := sha256.New()
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", path, err)
		}
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

// naturalLess compares names with embedded numbers by numeric value.
func naturalLess(a, b string) bool {
	ar, br := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	i, j := 0, 0
	for i < len(ar) && j < len(br) {
		if unicode.IsDigit(ar[i]) && unicode.IsDigit(br[j]) {
			si := i
			for i < len(ar) && unicode.IsDigit(ar[i]) {
				i++
			}
			sj := j
			for j < len(br) && unicode.IsDigit(br[j]) {
				j++
			}
			na := strings.TrimLeft(string(ar[si:i]), "0")
			nb := strings.TrimLeft(string(br[sj:j]), "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ar[i] != br[j] {
			return ar[i] < br[j]
		}
		i++
		j++
	}
	if len(ar)-i != len(br)-j {
		return len(ar)-i < len(br)-j
	}
	return a < b
}
