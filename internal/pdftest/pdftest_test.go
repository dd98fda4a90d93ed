package pdftest

import (
	"errors"
	"image/color"
	"testing"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
)

var (
	_ pdf.Page     = (*Page)(nil)
	_ pdf.Document = (*Document)(nil)
)

func TestPageRender(t *testing.T) {
	page := &Page{
		Number: 1,
		Width:  10,
		Height: 20,
		Fills:  []Fill{{BBox: pdf.BoundingBox{X0: 1, Y0: 1, X1: 2, Y1: 2}, Color: color.RGBA{0, 0, 0, 255}}},
	}

	img, err := page.Render(2)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 40 {
		t.Fatalf("Unexpected size %v", img.Bounds())
	}
	if c := img.RGBAAt(3, 3); c != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("Expected fill color at (3,3), got %v", c)
	}
	if c := img.RGBAAt(0, 0); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Expected white background, got %v", c)
	}

	page.RenderErr = errors.New("boom")
	if _, err := page.Render(1); !errors.Is(err, pdf.ErrRender) {
		t.Errorf("Expected ErrRender, got %v", err)
	}
}

func TestDocument(t *testing.T) {
	doc := &Document{Pages: []*Page{{Number: 1}}}

	if _, err := doc.GetPage(1); !errors.Is(err, pdf.ErrPageRange) {
		t.Errorf("Expected ErrPageRange, got %v", err)
	}
	p, err := doc.GetPage(0)
	if err != nil || p.GetPageNumber() != 1 {
		t.Fatalf("Unexpected page %v, %v", p, err)
	}
	if err := doc.Close(); err != nil || !doc.Closed {
		t.Errorf("Expected document closed, got %v", err)
	}
}
