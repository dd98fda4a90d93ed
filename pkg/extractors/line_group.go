package extractors

import (
	"math"
	"sort"
	"strings"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
)

// DefaultLineTolerance is the vertical band, in points, within which word
// bottoms are treated as the same reading line.
const DefaultLineTolerance = 2.0

// LineKey identifies a reading line: the line's first bottom edge
// quantized by the line tolerance.
type LineKey int64

// Line is one reading line, words left to right.
type Line struct {
	Key   LineKey
	Words []pdf.Word
}

// Text joins the line's words with single spaces.
func (l Line) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// BBox returns the union of the line's word boxes.
func (l Line) BBox() pdf.BoundingBox {
	if len(l.Words) == 0 {
		return pdf.BoundingBox{}
	}
	b := l.Words[0].BBox
	for _, w := range l.Words[1:] {
		b.X0 = min(b.X0, w.BBox.X0)
		b.Y0 = min(b.Y0, w.BBox.Y0)
		b.X1 = max(b.X1, w.BBox.X1)
		b.Y1 = max(b.Y1, w.BBox.Y1)
	}
	return b
}

// LineGroup maps line keys to the words of each line. Every word belongs to
// exactly one line.
type LineGroup struct {
	keys  []LineKey
	lines map[LineKey][]pdf.Word
}

// GroupLines buckets words into lines by their bottom edge. Words are
// visited top to bottom; a word joins the current line while its bottom
// is within tolerance of the bottom that opened the line. Words with a
// non-finite bottom edge cannot be placed and are dropped.
func GroupLines(words []pdf.Word, tolerance float64) LineGroup {
	if !(tolerance > 0) || math.IsInf(tolerance, 0) {
		tolerance = DefaultLineTolerance
	}

	sorted := make([]pdf.Word, 0, len(words))
	for _, w := range words {
		if math.IsNaN(w.BBox.Y1) || math.IsInf(w.BBox.Y1, 0) {
			continue
		}
		sorted = append(sorted, w)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y1 != sorted[j].BBox.Y1 {
			return sorted[i].BBox.Y1 < sorted[j].BBox.Y1
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	g := LineGroup{lines: make(map[LineKey][]pdf.Word)}
	var current []pdf.Word
	var start float64

	flush := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool {
			return current[i].BBox.X0 < current[j].BBox.X0
		})
		// starts of consecutive lines are more than one tolerance apart,
		// so their quantized keys never collide
		key := LineKey(math.Round(start / tolerance))
		g.keys = append(g.keys, key)
		g.lines[key] = current
		current = nil
	}

	for _, w := range sorted {
		if len(current) > 0 && w.BBox.Y1-start > tolerance {
			flush()
		}
		if len(current) == 0 {
			start = w.BBox.Y1
		}
		current = append(current, w)
	}
	flush()

	return g
}

// Keys returns the line keys in ascending order.
func (g LineGroup) Keys() []LineKey {
	keys := make([]LineKey, len(g.keys))
	copy(keys, g.keys)
	return keys
}

// Words returns the words of the line, or nil for an unknown key.
func (g LineGroup) Words(key LineKey) []pdf.Word {
	return g.lines[key]
}

// Len returns the number of lines.
func (g LineGroup) Len() int {
	return len(g.keys)
}

// Lines returns every line in key order.
func (g LineGroup) Lines() []Line {
	lines := make([]Line, len(g.keys))
	for i, k := range g.keys {
		lines[i] = Line{Key: k, Words: g.lines[k]}
	}
	return lines
}
