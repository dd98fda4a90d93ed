package pdf

import (
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// pointsPerInch converts a scale factor into the DPI MuPDF expects.
const pointsPerInch = 72.0

// fitzRaster renders pages with MuPDF through go-fitz.
type fitzRaster struct {
	mu  sync.Mutex
	doc *fitz.Document
}

func openFitzRaster(filepath string) (rasterSource, error) {
	doc, err := fitz.New(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with fitz: %w", err)
	}
	return &fitzRaster{doc: doc}, nil
}

func (f *fitzRaster) render(index int, scale float64) (*image.RGBA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.doc == nil {
		return nil, fmt.Errorf("%w: document closed", ErrRender)
	}
	img, err := f.doc.ImageDPI(index, pointsPerInch*scale)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrRender, index+1, err)
	}
	return img, nil
}

func (f *fitzRaster) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.doc == nil {
		return nil
	}
	err := f.doc.Close()
	f.doc = nil
	return err
}
