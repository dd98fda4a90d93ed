package pdf

import (
	"image"
)

// Document represents an opened PDF document. A Document holds file handles
// and native resources, so callers must Close it on every exit path.
type Document interface {
	// GetPage returns a specific page by index (0-based)
	GetPage(index int) (Page, error)

	// PageCount returns the total number of pages
	PageCount() int

	// Close releases resources associated with the document
	Close() error
}

// Page is the page model the comparison engine works on: a raster source
// plus a list of positioned word tokens.
type Page interface {
	// GetPageNumber returns the page number (1-based)
	GetPageNumber() int

	// GetWidth returns the page width in points
	GetWidth() float64

	// GetHeight returns the page height in points
	GetHeight() float64

	// Render rasterizes the page with every dimension multiplied by scale
	Render(scale float64) (*image.RGBA, error)

	// ExtractWords returns the words of the page with bounding boxes in
	// page space (top-left origin, points)
	ExtractWords(opts ...WordExtractionOption) ([]Word, error)
}

// Opener opens a document by path. Open is the production implementation;
// tests substitute in-memory documents.
type Opener func(path string) (Document, error)

// textSource yields the glyph runs of one page of a document, in PDF user
// space.
type textSource interface {
	runs(pageNumber int) ([]textRun, error)
	Close() error
}

// rasterSource renders one page of a document.
type rasterSource interface {
	render(index int, scale float64) (*image.RGBA, error)
	Close() error
}
