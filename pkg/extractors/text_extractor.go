package extractors

import (
	"fmt"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
)

// TextExtractor pulls words from a page and organizes them into lines
type TextExtractor struct {
	lineTolerance float64
	wordOpts      []pdf.WordExtractionOption
}

// Option configures a TextExtractor
type Option func(*TextExtractor)

// WithLineTolerance sets the vertical band for line grouping. Values that
// are not positive are ignored.
func WithLineTolerance(tolerance float64) Option {
	return func(e *TextExtractor) {
		if tolerance > 0 {
			e.lineTolerance = tolerance
		}
	}
}

// WithWordTolerances sets the character tolerances used when the page
// assembles words. A tolerance that is not positive keeps the page default.
func WithWordTolerances(xTol, yTol float64) Option {
	return func(e *TextExtractor) {
		if xTol > 0 {
			e.wordOpts = append(e.wordOpts, pdf.WithXTolerance(xTol))
		}
		if yTol > 0 {
			e.wordOpts = append(e.wordOpts, pdf.WithYTolerance(yTol))
		}
	}
}

// NewTextExtractor creates a new text extractor with default tolerances
func NewTextExtractor(opts ...Option) *TextExtractor {
	e := &TextExtractor{lineTolerance: DefaultLineTolerance}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LineTolerance returns the line grouping tolerance in points.
func (e *TextExtractor) LineTolerance() float64 {
	return e.lineTolerance
}

// Extract reads the page's words and groups them into lines
func (e *TextExtractor) Extract(page pdf.Page) (LineGroup, error) {
	words, err := page.ExtractWords(e.wordOpts...)
	if err != nil {
		return LineGroup{}, fmt.Errorf("extract words from page %d: %w", page.GetPageNumber(), err)
	}
	return GroupLines(words, e.lineTolerance), nil
}
