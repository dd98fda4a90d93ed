package compare

import (
	"image"
	"time"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/annotate"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/textdiff"
)

// Status is the outcome of one page comparison.
type Status int

const (
	// StatusCompared means both the raster and the text comparison ran.
	StatusCompared Status = iota
	// StatusIncomparable means a page could not be rendered or read.
	StatusIncomparable
	// StatusSkipped means the two rasters differ in size and were not diffed.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusCompared:
		return "compared"
	case StatusIncomparable:
		return "incomparable"
	case StatusSkipped:
		return "skipped"
	}
	return "unknown"
}

// PageResult describes one common page. Pixel buffers are not kept here;
// they go to the Sink and are released once the page is done.
type PageResult struct {
	Index         int
	Status        Status
	Reason        string
	HasOverlay    bool
	DiffPixels    int
	Regions       []image.Rectangle
	Ops           []textdiff.DiffOp
	Labels        []annotate.Label
	HasDifference bool
}

// DocumentResult holds the page results of one pair in page order.
type DocumentResult struct {
	ID            string
	OldPages      int
	NewPages      int
	Pages         []PageResult
	HasDifference bool
	Elapsed       time.Duration
}

// Count returns how many pages ended with the given status.
func (r DocumentResult) Count(s Status) int {
	n := 0
	for _, p := range r.Pages {
		if p.Status == s {
			n++
		}
	}
	return n
}

// Artifacts are the images produced for a page with differences. Any of
// them may be nil: Overlay when no pixel differs, Words when no word does.
type Artifacts struct {
	Overlay  *image.RGBA
	Combined *image.RGBA
	Words    *image.RGBA
}

// Sink persists page artifacts. WritePage is only called for pages with
// differences; FinishDocument is called once per pair after its last page.
type Sink interface {
	WritePage(docID string, pageIndex int, a Artifacts) error
	FinishDocument(res DocumentResult) error
}

// DiscardSink drops everything.
type DiscardSink struct{}

func (DiscardSink) WritePage(string, int, Artifacts) error { return nil }
func (DiscardSink) FinishDocument(DocumentResult) error    { return nil }
