package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"math/bits"

	xdraw "golang.org/x/image/draw"
)

// ToGray converts any image to an 8-bit grayscale image anchored at (0,0).
func ToGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst
}

// Rotate returns src rotated clockwise by a multiple of 90 degrees.
// The source is never modified; a zero rotation returns a copy.
func Rotate(src *image.Gray, degrees int) (*image.Gray, error) {
	d := degrees % 360
	if d < 0 {
		d += 360
	}
	src = ToGray(src)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	at := func(x, y int) uint8 {
		return src.Pix[y*src.Stride+x]
	}

	switch d {
	case 0:
		dst := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[y*src.Stride:y*src.Stride+w])
		}
		return dst, nil
	case 90:
		dst := image.NewGray(image.Rect(0, 0, h, w))
		for y := 0; y < w; y++ {
			for x := 0; x < h; x++ {
				dst.Pix[y*dst.Stride+x] = at(y, h-1-x)
			}
		}
		return dst, nil
	case 180:
		dst := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.Pix[y*dst.Stride+x] = at(w-1-x, h-1-y)
			}
		}
		return dst, nil
	case 270:
		dst := image.NewGray(image.Rect(0, 0, h, w))
		for y := 0; y < w; y++ {
			for x := 0; x < h; x++ {
				dst.Pix[y*dst.Stride+x] = at(w-1-y, x)
			}
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("rotation of %d degrees is not a right angle", degrees)
	}
}

// Scale resizes src to w by h pixels with bilinear interpolation.
func Scale(src *image.Gray, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Thumbnail returns a size by size grayscale thumbnail.
func Thumbnail(src *image.Gray, size int) *image.Gray {
	return Scale(src, size, size)
}

// ContentHash returns a hash of a 16x16 rendition quantised to four gray
// levels. Identical pages rendered twice produce the same hash.
func ContentHash(src *image.Gray) string {
	small := Scale(src, 16, 16)
	h := sha256.New()
	q := make([]byte, 0, 256)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			q = append(q, small.Pix[y*small.Stride+x]>>6)
		}
	}
	h.Write(q)
	return hex.EncodeToString(h.Sum(nil))
}

// DHash returns a 64-bit difference hash: each bit records whether a
// pixel is darker than its right neighbour in a 9x8 rendition.
func DHash(src *image.Gray) uint64 {
	small := Scale(src, 9, 8)
	var hash uint64
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			hash <<= 1
			if small.Pix[y*small.Stride+x] < small.Pix[y*small.Stride+x+1] {
				hash |= 1
			}
		}
	}
	return hash
}

// Hamming returns the number of differing bits between two hashes.
func Hamming(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// EncodePNG encodes an image as PNG for recognition engines and exporters.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
