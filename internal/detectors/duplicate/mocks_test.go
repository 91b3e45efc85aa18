package duplicate

import (
	"context"
	"errors"
	"image"

	"github.com/custodia-labs/pagefix/internal/core/domain"
)

// mockPages serves fixed thumbnails by key.
type mockPages struct {
	thumbs map[domain.RasterKey]*image.Gray
}

func (m *mockPages) Raster(ctx context.Context, key domain.RasterKey) (*image.Gray, error) {
	return m.Thumbnail(ctx, key)
}

func (m *mockPages) Thumbnail(ctx context.Context, key domain.RasterKey) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, ok := m.thumbs[key]
	if !ok {
		return nil, errors.New("pdftoppm: page not rendered")
	}
	return img, nil
}

func (m *mockPages) Recognize(_ context.Context, _ domain.RasterKey) (domain.Recognition, error) {
	return domain.Recognition{}, errors.New("not used")
}

// halfInked returns a thumbnail inked on the left or right half.
func halfInked(left bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			ink := x < 32
			if !left {
				ink = !ink
			}
			if !ink {
				img.Pix[y*img.Stride+x] = 255
			}
		}
	}
	return img
}
