package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Overlay builds a tint layer from the mask: masked pixels carry the tint at
// alpha opacity*255, every other pixel is fully transparent. It returns nil
// when the mask has no differing pixel.
func Overlay(mask *Mask, tint color.RGBA, opacity float64) *image.NRGBA {
	if mask == nil || !mask.Any() {
		return nil
	}

	opacity = min(max(opacity, 0), 1)
	alpha := uint8(opacity * 255)

	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, v := range mask.Pix {
		if !v {
			continue
		}
		o := (i/w)*img.Stride + (i%w)*4
		img.Pix[o] = tint.R
		img.Pix[o+1] = tint.G
		img.Pix[o+2] = tint.B
		img.Pix[o+3] = alpha
	}
	return img
}

// Composite returns a copy of base with overlay drawn on top by alpha-over.
// Every channel is round(b*(1-a) + t*a) computed in 8-bit integer math, so
// the result is exact. A nil overlay yields a plain copy. base is never
// modified.
func Composite(base *image.RGBA, overlay *image.NRGBA) *image.RGBA {
	b := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), base, b.Min, draw.Src)
	if overlay == nil {
		return out
	}

	ob := overlay.Bounds()
	w, h := min(b.Dx(), ob.Dx()), min(b.Dy(), ob.Dy())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := overlay.PixOffset(ob.Min.X+x, ob.Min.Y+y)
			a := uint32(overlay.Pix[so+3])
			if a == 0 {
				continue
			}
			do := out.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				out.Pix[do+c] = blend(out.Pix[do+c], overlay.Pix[so+c], a)
			}
			out.Pix[do+3] = blend(out.Pix[do+3], 0xff, a)
		}
	}
	return out
}

func blend(b, t uint8, a uint32) uint8 {
	return uint8((uint32(b)*(0xff-a) + uint32(t)*a + 127) / 0xff)
}
