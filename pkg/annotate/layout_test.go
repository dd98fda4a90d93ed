package annotate

import (
	"image"
	"math"
	"testing"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/textdiff"
)

func addOp(word string, x0, y0, x1, y1 float64) textdiff.DiffOp {
	return textdiff.DiffOp{Kind: textdiff.Add, Word: word, BBox: pdf.BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1}, Line: 7}
}

func newLayout(t *testing.T) *Layout {
	t.Helper()
	l, err := NewLayout(2, 24)
	if err != nil {
		t.Fatalf("NewLayout failed: %v", err)
	}
	return l
}

func TestLayoutCollision(t *testing.T) {
	l := newLayout(t)

	ops := []textdiff.DiffOp{
		addOp("overlapping", 10, 50, 40, 60),
		addOp("next", 12, 50, 30, 60),
	}
	labels := l.Layout(ops)

	if len(labels) != 3 {
		t.Fatalf("Expected 2 labels and a marker, got %+v", labels)
	}
	first, marker, second := labels[0], labels[1], labels[2]
	if marker.Kind != LabelMarker || marker.Text != Marker || marker.Color != MarkerColor {
		t.Errorf("Expected marker before the second label, got %+v", marker)
	}
	firstEnd := first.X + first.Width
	if marker.X != firstEnd {
		t.Errorf("Marker should start at %.2f, got %.2f", firstEnd, marker.X)
	}
	if second.X <= firstEnd+l.MarkerWidth() {
		t.Errorf("Second label at %.2f overlaps end %.2f + marker %.2f", second.X, firstEnd, l.MarkerWidth())
	}
	if first.X != 20 || first.Y != 76 {
		t.Errorf("Expected first label at (20,76), got (%.2f,%.2f)", first.X, first.Y)
	}
}

func TestLayoutNoCollision(t *testing.T) {
	l := newLayout(t)

	labels := l.Layout([]textdiff.DiffOp{
		addOp("a", 10, 50, 15, 60),
		addOp("b", 300, 50, 305, 60),
	})
	if len(labels) != 2 {
		t.Fatalf("Expected 2 labels, got %+v", labels)
	}
	for _, lb := range labels {
		if lb.Kind == LabelMarker {
			t.Errorf("Unexpected marker %+v", lb)
		}
	}
}

func TestLayoutSeparateLines(t *testing.T) {
	l := newLayout(t)

	other := addOp("below", 10, 90, 40, 100)
	other.Line = 8
	labels := l.Layout([]textdiff.DiffOp{addOp("above", 10, 50, 40, 60), other})
	if len(labels) != 2 {
		t.Fatalf("Labels on different lines must not collide, got %+v", labels)
	}
}

func TestLayoutSkipsDegenerate(t *testing.T) {
	l := newLayout(t)

	ops := []textdiff.DiffOp{
		addOp("zero", 10, 10, 10, 20),
		addOp("inf", 10, 10, math.Inf(1), 20),
		addOp("nan", math.NaN(), 10, 20, 20),
		addOp("", 10, 10, 20, 20),
		{Kind: textdiff.Equal, Word: "same", BBox: pdf.BoundingBox{X0: 1, Y0: 1, X1: 2, Y1: 2}},
	}
	if labels := l.Layout(ops); len(labels) != 0 {
		t.Errorf("Expected no labels, got %+v", labels)
	}
}

func TestLayoutColors(t *testing.T) {
	l := newLayout(t)

	rm := addOp("old", 10, 50, 40, 60)
	rm.Kind = textdiff.Remove
	labels := l.Layout([]textdiff.DiffOp{rm, addOp("new", 200, 50, 240, 60)})

	if labels[0].Color != DeleteColor || labels[0].Kind != LabelDelete {
		t.Errorf("Expected deletion color, got %+v", labels[0])
	}
	if labels[1].Color != InsertColor || labels[1].Kind != LabelInsert {
		t.Errorf("Expected insertion color, got %+v", labels[1])
	}
}

func TestDraw(t *testing.T) {
	l := newLayout(t)
	img := image.NewRGBA(image.Rect(0, 0, 200, 60))

	l.Draw(img, []Label{{Text: "Hi", X: 10, Y: 10, Color: DeleteColor}})

	painted := false
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+3] != 0 {
			painted = true
			break
		}
	}
	if !painted {
		t.Error("Expected label pixels on the image")
	}
}

func TestNewLayoutRejectsBadInput(t *testing.T) {
	if _, err := NewLayout(0, 12); err == nil {
		t.Error("Expected error for zero scale")
	}
	if _, err := NewLayout(2, math.NaN()); err == nil {
		t.Error("Expected error for NaN label height")
	}
}
