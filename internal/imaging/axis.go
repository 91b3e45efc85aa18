package imaging

import "image"

// Axis is the dominant direction of text lines on a page.
type Axis int

// Axes.
const (
	AxisUnknown Axis = iota
	AxisHorizontal
	AxisVertical
)

// String returns the string representation.
func (a Axis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// Flip returns the axis seen after a quarter turn.
func (a Axis) Flip() Axis {
	switch a {
	case AxisHorizontal:
		return AxisVertical
	case AxisVertical:
		return AxisHorizontal
	default:
		return AxisUnknown
	}
}

const (
	axisSampleSize = 256
	inkLevel       = 128
	minInkFraction = 0.002
	axisDominance  = 1.5
)

// InkFraction returns the fraction of dark pixels.
func InkFraction(src *image.Gray) float64 {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	ink := 0
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for _, v := range row {
			if v < inkLevel {
				ink++
			}
		}
	}
	return float64(ink) / float64(w*h)
}

// IsBlank reports whether the page carries almost no ink.
func IsBlank(src *image.Gray) bool {
	return InkFraction(src) < minInkFraction
}

// DominantAxis estimates the direction of text lines from ink projection
// profiles. Lines of text alternate with blank gaps, so the profile taken
// across the lines varies far more than the profile taken along them.
func DominantAxis(src *image.Gray) Axis {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return AxisUnknown
	}
	sample := src
	if w > axisSampleSize || h > axisSampleSize {
		sw, sh := w, h
		if w >= h {
			sw, sh = axisSampleSize, max(1, h*axisSampleSize/w)
		} else {
			sw, sh = max(1, w*axisSampleSize/h), axisSampleSize
		}
		sample = Scale(src, sw, sh)
		w, h = sw, sh
	}
	if IsBlank(sample) {
		return AxisUnknown
	}

	rows := make([]float64, h)
	cols := make([]float64, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if sample.Pix[y*sample.Stride+x] < inkLevel {
				rows[y]++
				cols[x]++
			}
		}
	}
	for y := range rows {
		rows[y] /= float64(w)
	}
	for x := range cols {
		cols[x] /= float64(h)
	}

	rv, cv := variance(rows), variance(cols)
	switch {
	case rv > cv*axisDominance:
		return AxisHorizontal
	case cv > rv*axisDominance:
		return AxisVertical
	default:
		return AxisUnknown
	}
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var v float64
	for _, x := range xs {
		d := x - mean
		v += d * d
	}
	return v / float64(len(xs))
}
