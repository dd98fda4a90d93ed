// Package pdftest provides in-memory pages and documents that satisfy the
// pdf.Page and pdf.Document contracts, for tests and tools that need
// deterministic rasters without a PDF file.
package pdftest

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
)

// Fill is a solid rectangle painted on a Page, in page space.
type Fill struct {
	BBox  pdf.BoundingBox
	Color color.RGBA
}

// Page is a synthetic page: a white sheet with solid fills and a fixed
// word list. It renders deterministically at any scale.
type Page struct {
	Number    int
	Width     float64
	Height    float64
	Fills     []Fill
	Words     []pdf.Word
	RenderErr error
	WordsErr  error
}

func (p *Page) GetPageNumber() int { return p.Number }

func (p *Page) GetWidth() float64 { return p.Width }

func (p *Page) GetHeight() float64 { return p.Height }

func (p *Page) Render(scale float64) (*image.RGBA, error) {
	if p.RenderErr != nil {
		return nil, fmt.Errorf("%w: %v", pdf.ErrRender, p.RenderErr)
	}
	w := int(math.Ceil(p.Width * scale))
	h := int(math.Ceil(p.Height * scale))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for _, f := range p.Fills {
		b := f.BBox.Scale(scale)
		r := image.Rect(int(math.Floor(b.X0)), int(math.Floor(b.Y0)), int(math.Ceil(b.X1)), int(math.Ceil(b.Y1)))
		draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(f.Color), image.Point{}, draw.Src)
	}
	return img, nil
}

func (p *Page) ExtractWords(opts ...pdf.WordExtractionOption) ([]pdf.Word, error) {
	if p.WordsErr != nil {
		return nil, p.WordsErr
	}
	words := make([]pdf.Word, len(p.Words))
	copy(words, p.Words)
	return words, nil
}

// Document is a pdf.Document backed by Pages.
type Document struct {
	Pages  []*Page
	Closed bool
}

func (d *Document) GetPage(index int) (pdf.Page, error) {
	if index < 0 || index >= len(d.Pages) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", pdf.ErrPageRange, index, len(d.Pages))
	}
	return d.Pages[index], nil
}

func (d *Document) PageCount() int {
	return len(d.Pages)
}

func (d *Document) Close() error {
	d.Closed = true
	return nil
}
