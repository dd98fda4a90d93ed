package compare

import (
	"errors"
	"image/color"
	"reflect"
	"sync"
	"testing"

	"github.com/pyhub-apps/pdfdiff-golang/internal/pdftest"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/textdiff"
)

var black = color.RGBA{0, 0, 0, 255}

type recordingSink struct {
	mu       sync.Mutex
	pages    map[string][]int
	finished []string
	writeErr error
}

func (s *recordingSink) WritePage(docID string, pageIndex int, a Artifacts) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if a.Combined == nil {
		return errors.New("combined artifact missing")
	}
	if s.pages == nil {
		s.pages = map[string][]int{}
	}
	s.pages[docID] = append(s.pages[docID], pageIndex)
	return nil
}

func (s *recordingSink) FinishDocument(res DocumentResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, res.ID)
	return nil
}

func words(y1 float64, texts ...string) []pdf.Word {
	out := make([]pdf.Word, len(texts))
	for i, t := range texts {
		x := 10 + float64(i)*60
		out[i] = pdf.Word{Text: t, BBox: pdf.BoundingBox{X0: x, Y0: y1 - 10, X1: x + 50, Y1: y1}}
	}
	return out
}

func memPage(n int, fills []pdftest.Fill, ws []pdf.Word) *pdftest.Page {
	return &pdftest.Page{Number: n, Width: 200, Height: 100, Fills: fills, Words: ws}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Scale = 1
	return opts
}

func newTestComparer(t *testing.T, docs map[string]*pdftest.Document, sink Sink) *Comparer {
	t.Helper()
	open := func(path string) (pdf.Document, error) {
		doc, ok := docs[path]
		if !ok {
			return nil, pdf.ErrDocumentOpen
		}
		return doc, nil
	}
	c, err := NewComparer(testOptions(), open, sink, nil)
	if err != nil {
		t.Fatalf("NewComparer failed: %v", err)
	}
	return c
}

func TestComparePageIdentical(t *testing.T) {
	c := newTestComparer(t, nil, nil)
	p := memPage(1, []pdftest.Fill{{BBox: pdf.BoundingBox{X0: 5, Y0: 5, X1: 50, Y1: 20}, Color: black}}, words(40, "Hello", "World"))

	res, artifacts := c.ComparePage(p, p)

	if res.Status != StatusCompared {
		t.Fatalf("Expected compared, got %v (%s)", res.Status, res.Reason)
	}
	if res.HasDifference || res.HasOverlay || artifacts != nil {
		t.Errorf("Expected no difference, got %+v", res)
	}
}

func TestComparePageDifferences(t *testing.T) {
	c := newTestComparer(t, nil, nil)
	oldPage := memPage(1, nil, words(40, "Hello", "World"))
	newPage := memPage(1, []pdftest.Fill{{BBox: pdf.BoundingBox{X0: 10, Y0: 60, X1: 30, Y1: 70}, Color: black}}, words(40, "Hello", "New", "World"))

	res, artifacts := c.ComparePage(oldPage, newPage)

	if !res.HasDifference || !res.HasOverlay {
		t.Fatalf("Expected differences, got %+v", res)
	}
	if res.DiffPixels != 20*10 {
		t.Errorf("Expected 200 differing pixels, got %d", res.DiffPixels)
	}
	if len(res.Ops) != 1 || res.Ops[0].Kind != textdiff.Add || res.Ops[0].Word != "New" {
		t.Errorf("Expected a single Add(New), got %+v", res.Ops)
	}
	if artifacts == nil || artifacts.Overlay == nil || artifacts.Words == nil || artifacts.Combined == nil {
		t.Fatalf("Expected all artifacts, got %+v", artifacts)
	}
	// the overlay is drawn on the old raster
	if c := artifacts.Overlay.RGBAAt(15, 65); c.R == 255 && c.G == 255 {
		t.Errorf("Expected tint inside the changed region, got %v", c)
	}
	if c := artifacts.Overlay.RGBAAt(150, 90); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Expected untouched pixel outside the region, got %v", c)
	}
}

func TestComparePageSizeMismatch(t *testing.T) {
	c := newTestComparer(t, nil, nil)
	small := memPage(1, nil, nil)
	large := memPage(1, nil, nil)
	large.Height = 300

	res, artifacts := c.ComparePage(small, large)
	if res.Status != StatusSkipped || artifacts != nil {
		t.Errorf("Expected skipped page, got %+v", res)
	}
}

func TestComparePageRenderError(t *testing.T) {
	c := newTestComparer(t, nil, nil)
	broken := memPage(1, nil, nil)
	broken.RenderErr = errors.New("corrupt stream")

	res, _ := c.ComparePage(memPage(1, nil, nil), broken)
	if res.Status != StatusIncomparable || res.Reason == "" {
		t.Errorf("Expected incomparable page with a reason, got %+v", res)
	}
}

func TestCompareFiles(t *testing.T) {
	oldDoc := &pdftest.Document{Pages: []*pdftest.Page{
		memPage(1, nil, words(40, "same")),
		memPage(2, nil, words(40, "before")),
		memPage(3, nil, nil),
	}}
	broken := memPage(2, nil, nil)
	broken.RenderErr = errors.New("boom")
	newDoc := &pdftest.Document{Pages: []*pdftest.Page{
		memPage(1, nil, words(40, "same")),
		memPage(2, nil, words(40, "after")),
	}}
	third := &pdftest.Document{Pages: []*pdftest.Page{memPage(1, nil, nil), broken}}

	sink := &recordingSink{}
	c := newTestComparer(t, map[string]*pdftest.Document{"old": oldDoc, "new": newDoc, "third": third}, sink)

	res, err := c.CompareFiles("doc", "old", "new")
	if err != nil {
		t.Fatalf("CompareFiles failed: %v", err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("Expected the 2 common pages, got %d", len(res.Pages))
	}
	for i, p := range res.Pages {
		if p.Index != i {
			t.Errorf("Pages out of order: %d at %d", p.Index, i)
		}
	}
	if res.Pages[0].HasDifference || !res.Pages[1].HasDifference || !res.HasDifference {
		t.Errorf("Unexpected difference flags: %+v", res.Pages)
	}
	if !reflect.DeepEqual(sink.pages["doc"], []int{1}) {
		t.Errorf("Expected only page 1 written, got %v", sink.pages["doc"])
	}
	if !reflect.DeepEqual(sink.finished, []string{"doc"}) {
		t.Errorf("Expected FinishDocument once, got %v", sink.finished)
	}
	if !oldDoc.Closed || !newDoc.Closed {
		t.Error("Documents must be closed")
	}

	// a broken page does not stop the document
	res, err = c.CompareFiles("doc2", "old", "third")
	if err != nil {
		t.Fatalf("CompareFiles failed: %v", err)
	}
	if res.Count(StatusIncomparable) != 1 || res.Pages[1].Status != StatusIncomparable {
		t.Errorf("Expected page 1 incomparable, got %+v", res.Pages)
	}
}

func TestCompareFilesOpenError(t *testing.T) {
	oldDoc := &pdftest.Document{Pages: []*pdftest.Page{memPage(1, nil, nil)}}
	c := newTestComparer(t, map[string]*pdftest.Document{"old": oldDoc}, nil)

	_, err := c.CompareFiles("doc", "old", "missing")
	if !errors.Is(err, pdf.ErrDocumentOpen) {
		t.Fatalf("Expected ErrDocumentOpen, got %v", err)
	}
	if !oldDoc.Closed {
		t.Error("Old document must be released when the new one fails to open")
	}
}

func TestCompareFilesSinkError(t *testing.T) {
	oldDoc := &pdftest.Document{Pages: []*pdftest.Page{memPage(1, nil, words(40, "a"))}}
	newDoc := &pdftest.Document{Pages: []*pdftest.Page{memPage(1, nil, words(40, "b"))}}
	sink := &recordingSink{writeErr: errors.New("disk full")}
	c := newTestComparer(t, map[string]*pdftest.Document{"old": oldDoc, "new": newDoc}, sink)

	if _, err := c.CompareFiles("doc", "old", "new"); !errors.Is(err, ErrOutput) {
		t.Errorf("Expected ErrOutput, got %v", err)
	}
}

func TestNewComparerValidates(t *testing.T) {
	opts := DefaultOptions()
	opts.Opacity = 1.5
	if _, err := NewComparer(opts, nil, nil, nil); err == nil {
		t.Error("Expected error for opacity > 1")
	}
	opts = DefaultOptions()
	opts.Scale = 0
	if _, err := NewComparer(opts, nil, nil, nil); err == nil {
		t.Error("Expected error for zero scale")
	}
}
