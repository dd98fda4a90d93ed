package pdf

import (
	"errors"
	"math"
)

var (
	// ErrDocumentOpen is returned when a document is corrupt or unreadable.
	ErrDocumentOpen = errors.New("document open failed")

	// ErrRender is returned when a page cannot produce pixel data.
	ErrRender = errors.New("page render failed")

	// ErrPageRange is returned for a page index outside the document.
	ErrPageRange = errors.New("page index out of range")
)

// BoundingBox represents a rectangular area with coordinates
type BoundingBox struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Width returns the width of the bounding box
func (b BoundingBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the height of the bounding box
func (b BoundingBox) Height() float64 {
	return b.Y1 - b.Y0
}

// Degenerate reports whether the box has no usable area: a zero or negative
// extent, or a coordinate that is NaN or infinite.
func (b BoundingBox) Degenerate() bool {
	for _, v := range []float64{b.X0, b.Y0, b.X1, b.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return b.Width() <= 0 || b.Height() <= 0
}

// Scale returns the box with every coordinate multiplied by s.
func (b BoundingBox) Scale(s float64) BoundingBox {
	return BoundingBox{X0: b.X0 * s, Y0: b.Y0 * s, X1: b.X1 * s, Y1: b.Y1 * s}
}

// CharObject represents a character in the PDF
type CharObject struct {
	Text     string
	Font     string
	FontSize float64
	X0       float64
	Y0       float64
	X1       float64
	Y1       float64
	Width    float64
	Height   float64
}

// Word is a single extracted text unit. Words are immutable once extracted.
type Word struct {
	Text string
	BBox BoundingBox
}

// WordExtractionOption is a function that modifies word extraction behavior
type WordExtractionOption func(*wordExtractionConfig)

type wordExtractionConfig struct {
	XTolerance float64
	YTolerance float64
}

func defaultWordExtractionConfig() *wordExtractionConfig {
	return &wordExtractionConfig{
		XTolerance: 3.0,
		YTolerance: 3.0,
	}
}

// WithXTolerance sets the horizontal gap that splits two words
func WithXTolerance(tolerance float64) WordExtractionOption {
	return func(c *wordExtractionConfig) {
		c.XTolerance = tolerance
	}
}

// WithYTolerance sets the vertical tolerance for grouping characters into a line
func WithYTolerance(tolerance float64) WordExtractionOption {
	return func(c *wordExtractionConfig) {
		c.YTolerance = tolerance
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
