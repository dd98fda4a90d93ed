// Package annotate places word-level change labels on a page raster.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/extractors"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/textdiff"
)

// Marker is drawn in front of a label that would overlap its left
// neighbour on the same line.
const Marker = " >"

var (
	// InsertColor labels words present only in the new document.
	InsertColor = color.RGBA{0, 204, 0, 255}
	// DeleteColor labels words present only in the old document.
	DeleteColor = color.RGBA{204, 0, 0, 255}
	// MarkerColor fills the margin marker next to each changed line.
	MarkerColor = color.RGBA{0, 0, 0, 255}
)

// LabelKind tells what a label stands for.
type LabelKind int

const (
	LabelInsert LabelKind = iota
	LabelDelete
	LabelMarker
)

// Label is a positioned piece of text in pixel space. X, Y is the top-left
// corner of the text box.
type Label struct {
	Text  string
	X, Y  float64
	Width float64
	Color color.RGBA
	Kind  LabelKind
}

// Layout turns diff ops into non-overlapping labels.
type Layout struct {
	scale       float64
	labelHeight float64

	mu          sync.Mutex
	face        font.Face
	spaceWidth  float64
	markerWidth float64
}

// NewLayout builds a layout for rasters rendered at scale, with labels
// labelHeight pixels tall.
func NewLayout(scale, labelHeight float64) (*Layout, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("layout scale must be > 0, got %v", scale)
	}
	if !(labelHeight > 0) || math.IsInf(labelHeight, 0) {
		return nil, fmt.Errorf("label height must be > 0, got %v", labelHeight)
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    labelHeight,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create label face: %w", err)
	}

	l := &Layout{scale: scale, labelHeight: labelHeight, face: face}
	l.spaceWidth = l.measure(" ")
	l.markerWidth = l.measure(Marker)
	return l, nil
}

// MarkerWidth returns the pixel width of the collision marker.
func (l *Layout) MarkerWidth() float64 {
	return l.markerWidth
}

func (l *Layout) measure(s string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fixedToFloat(font.MeasureString(l.face, s))
}

// Layout places one label per Add or Remove op. Ops are taken in order and
// grouped by line; a label whose start would touch the previous label on
// its line is pushed right behind a marker. Ops with a degenerate box or
// an empty word produce nothing.
func (l *Layout) Layout(ops []textdiff.DiffOp) []Label {
	var labels []Label
	lastEnd := make(map[extractors.LineKey]float64)

	for _, op := range ops {
		if op.Kind == textdiff.Equal || op.Word == "" || op.BBox.Degenerate() {
			continue
		}

		c, kind := InsertColor, LabelInsert
		if op.Kind == textdiff.Remove {
			c, kind = DeleteColor, LabelDelete
		}

		x := op.BBox.X0 * l.scale
		y := max(op.BBox.Y0*l.scale-l.labelHeight, 0)

		if end, ok := lastEnd[op.Line]; ok && end+l.spaceWidth > x {
			labels = append(labels, Label{
				Text:  Marker,
				X:     end,
				Y:     y,
				Width: l.markerWidth,
				Color: MarkerColor,
				Kind:  LabelMarker,
			})
			x = end + l.markerWidth + l.spaceWidth
		}

		w := l.measure(op.Word)
		labels = append(labels, Label{Text: op.Word, X: x, Y: y, Width: w, Color: c, Kind: kind})
		lastEnd[op.Line] = x + w
	}
	return labels
}

// Draw renders labels onto dst.
func (l *Layout) Draw(dst draw.Image, labels []Label) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ascent := l.face.Metrics().Ascent
	d := &font.Drawer{Dst: dst, Face: l.face}
	for _, lb := range labels {
		d.Src = image.NewUniform(lb.Color)
		d.Dot = fixed.Point26_6{
			X: floatToFixed(lb.X),
			Y: floatToFixed(lb.Y) + ascent,
		}
		d.DrawString(lb.Text)
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
