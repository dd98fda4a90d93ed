// Package compare runs the page-by-page comparison of one document pair.
package compare

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/annotate"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/extractors"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/raster"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/textdiff"
)

// ErrOutput wraps failures of the Sink.
var ErrOutput = errors.New("write comparison output")

// RegionColor outlines difference regions when region highlighting is on.
var RegionColor = color.RGBA{255, 0, 0, 255}

// Options configures a Comparer.
type Options struct {
	Scale            float64
	Tint             color.RGBA
	Opacity          float64
	LabelFontSize    float64 // points; multiplied by Scale for the raster
	LineTolerance    float64
	WordXTolerance   float64 // horizontal gap that splits two words, points
	WordYTolerance   float64 // vertical band for characters of one line, points
	HighlightRegions bool
}

// DefaultOptions returns the stock comparison settings.
func DefaultOptions() Options {
	return Options{
		Scale:          4.0,
		Tint:           color.RGBA{170, 51, 106, 255},
		Opacity:        0.5,
		LabelFontSize:  12,
		LineTolerance:  extractors.DefaultLineTolerance,
		WordXTolerance: 3,
		WordYTolerance: 3,
	}
}

// Comparer compares document pairs. It holds no per-pair state and can be
// shared by concurrent workers.
type Comparer struct {
	opts      Options
	open      pdf.Opener
	sink      Sink
	logger    *zap.Logger
	renderer  *raster.Renderer
	extractor *extractors.TextExtractor
	differ    *textdiff.Differ
	layout    *annotate.Layout
}

// NewComparer builds a Comparer. A nil opener uses pdf.Open, a nil sink
// discards artifacts and a nil logger logs nothing.
func NewComparer(opts Options, open pdf.Opener, sink Sink, logger *zap.Logger) (*Comparer, error) {
	if open == nil {
		open = pdf.Open
	}
	if sink == nil {
		sink = DiscardSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if math.IsNaN(opts.Opacity) || opts.Opacity < 0 || opts.Opacity > 1 {
		return nil, fmt.Errorf("overlay opacity must be within [0, 1], got %v", opts.Opacity)
	}

	renderer, err := raster.NewRenderer(opts.Scale)
	if err != nil {
		return nil, err
	}
	layout, err := annotate.NewLayout(opts.Scale, opts.LabelFontSize*opts.Scale)
	if err != nil {
		return nil, err
	}

	return &Comparer{
		opts:      opts,
		open:      open,
		sink:      sink,
		logger:    logger,
		renderer:  renderer,
		extractor: extractors.NewTextExtractor(
			extractors.WithLineTolerance(opts.LineTolerance),
			extractors.WithWordTolerances(opts.WordXTolerance, opts.WordYTolerance),
		),
		differ:    textdiff.NewDiffer(),
		layout:    layout,
	}, nil
}

// CompareFiles opens both documents and compares their common pages. Open
// errors and Sink errors fail the pair; page errors only mark the page.
// Both documents are closed on every path.
func (c *Comparer) CompareFiles(id, oldPath, newPath string) (DocumentResult, error) {
	start := time.Now()
	logger := c.logger.With(zap.String("document", id))

	oldDoc, err := c.open(oldPath)
	if err != nil {
		return DocumentResult{ID: id}, fmt.Errorf("open old %s: %w", oldPath, err)
	}
	defer closeDoc(oldDoc, logger)

	newDoc, err := c.open(newPath)
	if err != nil {
		return DocumentResult{ID: id}, fmt.Errorf("open new %s: %w", newPath, err)
	}
	defer closeDoc(newDoc, logger)

	res, err := c.CompareDocuments(id, oldDoc, newDoc)
	res.Elapsed = time.Since(start)
	if err != nil {
		return res, err
	}

	if err := c.sink.FinishDocument(res); err != nil {
		return res, fmt.Errorf("%w: %s: %v", ErrOutput, id, err)
	}
	return res, nil
}

// CompareDocuments compares pages [0, min(old, new)) in order and hands
// each page with differences to the Sink.
func (c *Comparer) CompareDocuments(id string, oldDoc, newDoc pdf.Document) (DocumentResult, error) {
	logger := c.logger.With(zap.String("document", id))
	res := DocumentResult{
		ID:       id,
		OldPages: oldDoc.PageCount(),
		NewPages: newDoc.PageCount(),
	}
	if res.OldPages != res.NewPages {
		logger.Warn("page counts differ, comparing common pages",
			zap.Int("old_pages", res.OldPages),
			zap.Int("new_pages", res.NewPages),
		)
	}

	common := min(res.OldPages, res.NewPages)
	res.Pages = make([]PageResult, 0, common)
	for i := 0; i < common; i++ {
		page, artifacts := c.comparePageAt(oldDoc, newDoc, i)
		if page.Status != StatusCompared {
			logger.Warn("page not compared",
				zap.Int("page", i),
				zap.Stringer("status", page.Status),
				zap.String("reason", page.Reason),
			)
		}
		if artifacts != nil {
			if err := c.sink.WritePage(id, i, *artifacts); err != nil {
				return res, fmt.Errorf("%w: %s page %d: %v", ErrOutput, id, i, err)
			}
		}
		res.HasDifference = res.HasDifference || page.HasDifference
		res.Pages = append(res.Pages, page)
	}
	return res, nil
}

func (c *Comparer) comparePageAt(oldDoc, newDoc pdf.Document, index int) (PageResult, *Artifacts) {
	oldPage, err := oldDoc.GetPage(index)
	if err != nil {
		return incomparable(index, err), nil
	}
	newPage, err := newDoc.GetPage(index)
	if err != nil {
		return incomparable(index, err), nil
	}
	res, artifacts := c.ComparePage(oldPage, newPage)
	res.Index = index
	return res, artifacts
}

// ComparePage compares one page pair. Artifacts are returned only when
// the page has differences.
func (c *Comparer) ComparePage(oldPage, newPage pdf.Page) (PageResult, *Artifacts) {
	res := PageResult{Index: oldPage.GetPageNumber() - 1}

	oldImg, err := c.renderer.Render(oldPage)
	if err != nil {
		return incomparable(res.Index, err), nil
	}
	newImg, err := c.renderer.Render(newPage)
	if err != nil {
		return incomparable(res.Index, err), nil
	}

	mask, err := raster.Diff(oldImg, newImg)
	if errors.Is(err, raster.ErrDimensionMismatch) {
		res.Status = StatusSkipped
		res.Reason = err.Error()
		return res, nil
	}
	if err != nil {
		return incomparable(res.Index, err), nil
	}

	oldLines, err := c.extractor.Extract(oldPage)
	if err != nil {
		return incomparable(res.Index, err), nil
	}
	newLines, err := c.extractor.Extract(newPage)
	if err != nil {
		return incomparable(res.Index, err), nil
	}

	overlay := raster.Overlay(mask, c.opts.Tint, c.opts.Opacity)
	res.HasOverlay = overlay != nil
	res.DiffPixels = mask.Count()
	if res.HasOverlay && c.opts.HighlightRegions {
		res.Regions = raster.Regions(mask)
	}

	res.Ops = c.differ.Diff(oldLines, newLines)
	res.Labels = c.layout.Layout(res.Ops)
	res.HasDifference = res.HasOverlay || len(res.Ops) > 0
	if !res.HasDifference {
		return res, nil
	}

	return res, c.artifacts(oldImg, overlay, res)
}

func (c *Comparer) artifacts(base *image.RGBA, overlay *image.NRGBA, res PageResult) *Artifacts {
	var a Artifacts
	if overlay != nil {
		a.Overlay = raster.Composite(base, overlay)
		if len(res.Regions) > 0 {
			raster.OutlineRegions(a.Overlay, res.Regions, RegionColor, max(1, int(c.opts.Scale)))
		}
	}

	if len(res.Labels) > 0 {
		a.Words = raster.Composite(base, nil)
		c.layout.Draw(a.Words, res.Labels)
	}

	switch {
	case a.Overlay != nil && len(res.Labels) > 0:
		a.Combined = raster.Composite(a.Overlay, nil)
		c.layout.Draw(a.Combined, res.Labels)
	case a.Overlay != nil:
		a.Combined = a.Overlay
	default:
		a.Combined = a.Words
	}
	return &a
}

func incomparable(index int, err error) PageResult {
	return PageResult{Index: index, Status: StatusIncomparable, Reason: err.Error()}
}

func closeDoc(doc pdf.Document, logger *zap.Logger) {
	if err := doc.Close(); err != nil {
		logger.Warn("close document", zap.Error(err))
	}
}
