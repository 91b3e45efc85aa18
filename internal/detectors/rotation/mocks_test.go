package rotation

import (
	"context"
	"errors"
	"image"
	"image/color"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// mockPages serves fixed recognitions and rasters by key.
type mockPages struct {
	texts   map[domain.RasterKey]string
	rasters map[domain.RasterKey]*image.Gray
	fail    map[domain.RasterKey]bool
}

func newMockPages() *mockPages {
	return &mockPages{
		texts:   make(map[domain.RasterKey]string),
		rasters: make(map[domain.RasterKey]*image.Gray),
		fail:    make(map[domain.RasterKey]bool),
	}
}

func (m *mockPages) Raster(ctx context.Context, key domain.RasterKey) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, ok := m.rasters[key]
	if !ok {
		return nil, domain.ErrRenderFailed
	}
	return img, nil
}

func (m *mockPages) Thumbnail(ctx context.Context, key domain.RasterKey) (*image.Gray, error) {
	return m.Raster(ctx, key)
}

func (m *mockPages) Recognize(ctx context.Context, key domain.RasterKey) (domain.Recognition, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recognition{}, err
	}
	if m.fail[key] {
		return domain.Recognition{}, errors.New("tesseract crashed")
	}
	return domain.Recognition{Text: m.texts[key], Confidence: 0.9}, nil
}

// stripedPage draws horizontal text-like bars on a portrait page.
func stripedPage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := h / 10; y < h*9/10; y += 12 {
		for dy := 0; dy < 5; dy++ {
			for x := w / 10; x < w*9/10; x++ {
				img.SetGray(x, y+dy, color.Gray{Y: 0})
			}
		}
	}
	return img
}
