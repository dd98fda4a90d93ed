package textdiff

import (
	"reflect"
	"testing"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/extractors"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
)

func line(y1 float64, texts ...string) []pdf.Word {
	words := make([]pdf.Word, len(texts))
	for i, t := range texts {
		x := float64(i) * 50
		words[i] = pdf.Word{Text: t, BBox: pdf.BoundingBox{X0: x, Y0: y1 - 10, X1: x + 40, Y1: y1}}
	}
	return words
}

func group(lines ...[]pdf.Word) extractors.LineGroup {
	var words []pdf.Word
	for _, l := range lines {
		words = append(words, l...)
	}
	return extractors.GroupLines(words, 2)
}

func TestDiffInsertedWord(t *testing.T) {
	newLine := line(100, "Hello", "New", "World")
	ops := NewDiffer().Diff(group(line(100, "Hello", "World")), group(newLine))

	if len(ops) != 1 {
		t.Fatalf("Expected 1 op, got %d: %+v", len(ops), ops)
	}
	if ops[0].Kind != Add || ops[0].Word != "New" {
		t.Errorf("Expected Add(New), got %v(%s)", ops[0].Kind, ops[0].Word)
	}
	if ops[0].BBox != newLine[1].BBox {
		t.Errorf("Expected bbox %+v, got %+v", newLine[1].BBox, ops[0].BBox)
	}
}

func TestDiffRemovedWord(t *testing.T) {
	oldLine := line(100, "a", "b", "c")
	ops := NewDiffer().Diff(group(oldLine), group(line(100, "a", "c")))

	if len(ops) != 1 || ops[0].Kind != Remove || ops[0].Word != "b" {
		t.Fatalf("Expected Remove(b), got %+v", ops)
	}
	if ops[0].BBox != oldLine[1].BBox {
		t.Errorf("Remove should carry the old bbox, got %+v", ops[0].BBox)
	}
}

func TestDiffLineOnlyInNew(t *testing.T) {
	old := group(line(100, "Same"))
	new := group(line(100, "Same"), line(200, "Extra", "Line"))

	ops := NewDiffer().Diff(old, new)

	want := []string{"Extra", "Line"}
	if len(ops) != len(want) {
		t.Fatalf("Expected %d ops, got %+v", len(want), ops)
	}
	for i, w := range want {
		if ops[i].Kind != Add || ops[i].Word != w {
			t.Errorf("op %d: expected Add(%s), got %v(%s)", i, w, ops[i].Kind, ops[i].Word)
		}
	}
}

func TestDiffLineOnlyInOld(t *testing.T) {
	ops := NewDiffer().Diff(group(line(300, "gone", "now")), group())

	if len(ops) != 2 || ops[0].Kind != Remove || ops[1].Kind != Remove {
		t.Fatalf("Expected two Remove ops, got %+v", ops)
	}
	if ops[0].Word != "gone" || ops[1].Word != "now" {
		t.Errorf("Expected token order, got %+v", ops)
	}
}

func TestDiffReconcilesAdjacentKeys(t *testing.T) {
	// 100.9 and 101.2 fall into neighbouring bands
	old := group(line(100.9, "one", "two"))
	new := group(line(101.2, "one", "two"))

	if k1, k2 := old.Keys()[0], new.Keys()[0]; k1 == k2 {
		t.Fatalf("Test setup: expected different keys, got %d", k1)
	}
	if ops := NewDiffer().Diff(old, new); len(ops) != 0 {
		t.Errorf("Expected no ops for a jittered line, got %+v", ops)
	}
}

func TestDiffLineOrderAndDeterminism(t *testing.T) {
	old := group(line(300, "c"), line(100, "a"), line(200, "b", "k"))
	new := group(line(100, "a", "x"), line(200, "k"), line(250, "y"), line(300, "c", "z"))

	d := NewDiffer()
	first := d.Diff(old, new)
	second := d.Diff(old, new)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("Diff is not deterministic")
	}

	var got []string
	for _, op := range first {
		got = append(got, op.Kind.String()+":"+op.Word)
	}
	want := []string{"add:x", "remove:b", "add:y", "add:z"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestDiffIdenticalPages(t *testing.T) {
	g := group(line(100, "same", "text"), line(150, "again"))
	if ops := NewDiffer().Diff(g, g); len(ops) != 0 {
		t.Errorf("Expected no ops, got %+v", ops)
	}
}
