package pdf

import (
	"errors"
	"fmt"
	"image"
)

// PDFDocument implements the Document interface by combining pdfcpu page
// geometry, a positioned-text reader and a MuPDF rasterizer.
type PDFDocument struct {
	filepath string
	boxes    []pageBox
	text     textSource
	raster   rasterSource
}

// textOpeners is the fallback chain for text readers, most accurate first.
var textOpeners = []func(string) (textSource, error){
	openLedongthucText,
	openDslipakText,
}

// Open opens a PDF file and returns a Document. Every error wraps
// ErrDocumentOpen, and anything acquired before the failure is released.
func Open(filepath string) (Document, error) {
	boxes, err := readPageBoxes(filepath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentOpen, filepath, err)
	}

	text, err := openText(filepath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentOpen, filepath, err)
	}

	raster, err := openFitzRaster(filepath)
	if err != nil {
		text.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentOpen, filepath, err)
	}

	return &PDFDocument{
		filepath: filepath,
		boxes:    boxes,
		text:     text,
		raster:   raster,
	}, nil
}

func openText(filepath string) (textSource, error) {
	var errs []error
	for _, open := range textOpeners {
		src, err := open(filepath)
		if err == nil {
			return src, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// GetPage returns a specific page by index (0-based)
func (d *PDFDocument) GetPage(index int) (Page, error) {
	if index < 0 || index >= len(d.boxes) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrPageRange, index, len(d.boxes))
	}
	return &pdfPage{doc: d, index: index, box: d.boxes[index]}, nil
}

// PageCount returns the total number of pages
func (d *PDFDocument) PageCount() int {
	return len(d.boxes)
}

// Close releases resources associated with the document. It is safe to
// call more than once.
func (d *PDFDocument) Close() error {
	var errs []error
	if d.text != nil {
		errs = append(errs, d.text.Close())
		d.text = nil
	}
	if d.raster != nil {
		errs = append(errs, d.raster.Close())
		d.raster = nil
	}
	return errors.Join(errs...)
}

// pdfPage is one page of a PDFDocument.
type pdfPage struct {
	doc   *PDFDocument
	index int
	box   pageBox
}

func (p *pdfPage) GetPageNumber() int {
	return p.index + 1
}

func (p *pdfPage) GetWidth() float64 {
	return p.box.width
}

func (p *pdfPage) GetHeight() float64 {
	return p.box.height
}

func (p *pdfPage) Render(scale float64) (*image.RGBA, error) {
	if p.doc.raster == nil {
		return nil, fmt.Errorf("%w: document closed", ErrRender)
	}
	return p.doc.raster.render(p.index, scale)
}

func (p *pdfPage) ExtractWords(opts ...WordExtractionOption) ([]Word, error) {
	if p.doc.text == nil {
		return nil, fmt.Errorf("document closed")
	}

	config := defaultWordExtractionConfig()
	for _, opt := range opts {
		opt(config)
	}

	runs, err := p.doc.text.runs(p.GetPageNumber())
	if err != nil {
		return nil, err
	}
	return groupWords(runsToChars(runs, p.box), config), nil
}
