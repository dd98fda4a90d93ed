package extractors

import (
	"errors"
	"math"
	"testing"

	"github.com/pyhub-apps/pdfdiff-golang/internal/pdftest"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
)

func word(text string, x0, y1 float64) pdf.Word {
	return pdf.Word{Text: text, BBox: pdf.BoundingBox{X0: x0, Y0: y1 - 10, X1: x0 + 20, Y1: y1}}
}

func TestGroupLinesJitter(t *testing.T) {
	words := []pdf.Word{
		word("World", 60, 100.9),
		word("Hello", 10, 100),
		word("Second", 10, 130),
		word("line", 50, 129.5),
	}

	g := GroupLines(words, 2)

	if g.Len() != 2 {
		t.Fatalf("Expected 2 lines, got %d", g.Len())
	}
	lines := g.Lines()
	if got := lines[0].Text(); got != "Hello World" {
		t.Errorf("Expected 'Hello World', got %q", got)
	}
	if got := lines[1].Text(); got != "Second line" {
		t.Errorf("Expected 'Second line', got %q", got)
	}
	if lines[0].Key != 50 {
		t.Errorf("Expected key 50, got %d", lines[0].Key)
	}
	if lines[0].Key >= lines[1].Key {
		t.Errorf("Keys should ascend: %v", g.Keys())
	}
}

func TestGroupLinesEveryWordOnce(t *testing.T) {
	var words []pdf.Word
	for i := 0; i < 50; i++ {
		words = append(words, word("w", float64(i%7)*25, 100+float64(i)*0.7))
	}

	g := GroupLines(words, 2)

	total := 0
	for _, k := range g.Keys() {
		total += len(g.Words(k))
	}
	if total != len(words) {
		t.Errorf("Expected %d words across lines, got %d", len(words), total)
	}

	// keys stay unique even for a continuous drift of baselines
	seen := map[LineKey]bool{}
	for _, k := range g.Keys() {
		if seen[k] {
			t.Fatalf("Duplicate key %d", k)
		}
		seen[k] = true
	}
}

func TestGroupLinesDropsNonFinite(t *testing.T) {
	words := []pdf.Word{
		{Text: "bad", BBox: pdf.BoundingBox{Y1: math.NaN()}},
		word("ok", 0, 10),
	}
	g := GroupLines(words, 2)
	if g.Len() != 1 || len(g.Words(g.Keys()[0])) != 1 {
		t.Errorf("Expected a single line with one word, got %+v", g.Lines())
	}
}

func TestExtract(t *testing.T) {
	page := &pdftest.Page{
		Number: 3,
		Words:  []pdf.Word{word("b", 40, 50), word("a", 5, 50.5)},
	}

	g, err := NewTextExtractor(WithLineTolerance(1)).Extract(page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if g.Len() != 1 || g.Lines()[0].Text() != "a b" {
		t.Errorf("Unexpected lines: %+v", g.Lines())
	}

	page.WordsErr = errors.New("broken content stream")
	if _, err := NewTextExtractor().Extract(page); err == nil {
		t.Error("Expected error")
	}
}

func TestWithLineToleranceIgnoresInvalid(t *testing.T) {
	if tol := NewTextExtractor(WithLineTolerance(-3)).LineTolerance(); tol != DefaultLineTolerance {
		t.Errorf("Expected default tolerance, got %v", tol)
	}
}

// optionPage records the word options it was asked to apply.
type optionPage struct {
	*pdftest.Page
	opts int
}

func (p *optionPage) ExtractWords(opts ...pdf.WordExtractionOption) ([]pdf.Word, error) {
	p.opts = len(opts)
	return p.Page.ExtractWords(opts...)
}

func TestWithWordTolerances(t *testing.T) {
	tests := []struct {
		name       string
		xTol, yTol float64
		want       int
	}{
		{"both", 1.5, 2, 2},
		{"x only", 1.5, 0, 1},
		{"none", -1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := &optionPage{Page: &pdftest.Page{Number: 1}}
			if _, err := NewTextExtractor(WithWordTolerances(tt.xTol, tt.yTol)).Extract(page); err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if page.opts != tt.want {
				t.Errorf("Expected %d word options, got %d", tt.want, page.opts)
			}
		})
	}
}
