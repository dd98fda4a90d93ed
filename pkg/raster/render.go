// Package raster renders pages and compares the resulting pixel buffers.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
)

// Renderer rasterizes pages at a fixed scale.
type Renderer struct {
	scale float64
}

// NewRenderer returns a Renderer for the given scale, which must be a
// positive finite number.
func NewRenderer(scale float64) (*Renderer, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("render scale must be > 0, got %v", scale)
	}
	return &Renderer{scale: scale}, nil
}

// Dimensions is the single rounding rule for raster sizes. The epsilon
// absorbs float noise so that 612*1.5 does not round up to 919.
func Dimensions(width, height, scale float64) (int, int) {
	const eps = 1e-6
	w := int(math.Ceil(width*scale - eps))
	h := int(math.Ceil(height*scale - eps))
	return max(w, 1), max(h, 1)
}

// Render rasterizes the page and normalizes the buffer to Dimensions, so
// both versions of a same-size page always produce equal-size rasters
// whatever the backend's own rounding.
func (r *Renderer) Render(page pdf.Page) (*image.RGBA, error) {
	img, err := page.Render(r.scale)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.GetPageNumber(), err)
	}
	if img == nil {
		return nil, fmt.Errorf("page %d: %w: no pixel data", page.GetPageNumber(), pdf.ErrRender)
	}

	w, h := Dimensions(page.GetWidth(), page.GetHeight(), r.scale)
	return normalize(img, w, h), nil
}

// normalize crops or pads img to w×h with a white background. A buffer
// that already has the size and a zero origin is returned as is.
func normalize(img *image.RGBA, w, h int) *image.RGBA {
	b := img.Bounds()
	if b.Min == (image.Point{}) && b.Dx() == w && b.Dy() == h {
		return img
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
