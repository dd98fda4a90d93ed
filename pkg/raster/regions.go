package raster

import (
	"image"
	"image/color"
	"sort"

	"golang.org/x/image/draw"
)

// Regions returns the bounding rectangle of every 8-connected group of
// differing pixels, ordered top to bottom, then left to right.
func Regions(mask *Mask) []image.Rectangle {
	if mask == nil {
		return nil
	}

	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	seen := make([]bool, len(mask.Pix))
	var regions []image.Rectangle
	var queue []int

	for start, v := range mask.Pix {
		if !v || seen[start] {
			continue
		}

		seen[start] = true
		queue = append(queue[:0], start)
		r := image.Rect(start%w, start/w, start%w+1, start/w+1)

		for len(queue) > 0 {
			i := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			x, y := i%w, i/w
			r = r.Union(image.Rect(x, y, x+1, y+1))

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					j := ny*w + nx
					if mask.Pix[j] && !seen[j] {
						seen[j] = true
						queue = append(queue, j)
					}
				}
			}
		}
		regions = append(regions, r.Add(mask.Rect.Min))
	}

	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Min.Y != regions[j].Min.Y {
			return regions[i].Min.Y < regions[j].Min.Y
		}
		return regions[i].Min.X < regions[j].Min.X
	})
	return regions
}

// OutlineRegions draws a frame of the given stroke width around each region.
func OutlineRegions(dst draw.Image, regions []image.Rectangle, c color.Color, width int) {
	if width < 1 {
		width = 1
	}
	src := image.NewUniform(c)
	for _, r := range regions {
		r = r.Inset(-width)
		edges := []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
			image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
			image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
			image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
		}
		for _, e := range edges {
			draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
		}
	}
}
