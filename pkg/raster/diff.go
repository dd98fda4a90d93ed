package raster

import (
	"errors"
	"fmt"
	"image"
)

// ErrDimensionMismatch is returned when two rasters of different size are
// compared. Callers decide what to do with such pages.
var ErrDimensionMismatch = errors.New("raster dimensions differ")

// Mask is a binary per-pixel difference mask.
type Mask struct {
	Rect image.Rectangle
	Pix  []bool
}

// NewMask returns an all-false mask of w×h pixels.
func NewMask(w, h int) *Mask {
	return &Mask{Rect: image.Rect(0, 0, w, h), Pix: make([]bool, w*h)}
}

// Set marks the pixel at (x, y).
func (m *Mask) Set(x, y int, v bool) {
	if !(image.Point{x, y}.In(m.Rect)) {
		return
	}
	m.Pix[(y-m.Rect.Min.Y)*m.Rect.Dx()+(x-m.Rect.Min.X)] = v
}

// Any reports whether at least one pixel differs.
func (m *Mask) Any() bool {
	for _, v := range m.Pix {
		if v {
			return true
		}
	}
	return false
}

// Count returns the number of differing pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Bounds returns the smallest rectangle holding every differing pixel, or
// the empty rectangle when nothing differs.
func (m *Mask) Bounds() image.Rectangle {
	var r image.Rectangle
	w := m.Rect.Dx()
	for i, v := range m.Pix {
		if !v {
			continue
		}
		x, y := m.Rect.Min.X+i%w, m.Rect.Min.Y+i/w
		r = r.Union(image.Rect(x, y, x+1, y+1))
	}
	return r
}

// Diff compares two equal-size rasters. The absolute RGB difference of
// each pixel is reduced to ITU-R 601 luma with the usual 16-bit fixed
// point weights; any non-zero luma marks the pixel.
func Diff(a, b *image.RGBA) (*Mask, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Size() != bb.Size() {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}

	w, h := ab.Dx(), ab.Dy()
	mask := NewMask(w, h)
	for y := 0; y < h; y++ {
		ra := a.Pix[a.PixOffset(ab.Min.X, ab.Min.Y+y):]
		rb := b.Pix[b.PixOffset(bb.Min.X, bb.Min.Y+y):]
		for x := 0; x < w; x++ {
			i := x * 4
			dr := absDiff(ra[i], rb[i])
			dg := absDiff(ra[i+1], rb[i+1])
			db := absDiff(ra[i+2], rb[i+2])
			if luma(dr, dg, db) > 0 {
				mask.Pix[y*w+x] = true
			}
		}
	}
	return mask, nil
}

func absDiff(a, b uint8) uint32 {
	if a > b {
		return uint32(a - b)
	}
	return uint32(b - a)
}

func luma(r, g, b uint32) uint32 {
	return (19595*r + 38470*g + 7471*b + 0x8000) >> 16
}
