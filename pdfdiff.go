// Package pdfdiff compares two revisions of PDF documents page by page and
// reports pixel and word level differences.
package pdfdiff

import (
	"path/filepath"
	"strings"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/batch"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/compare"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
)

// Re-export types for the public API
type (
	Document             = pdf.Document
	Page                 = pdf.Page
	Word                 = pdf.Word
	BoundingBox          = pdf.BoundingBox
	WordExtractionOption = pdf.WordExtractionOption
	Options              = compare.Options
	Comparer             = compare.Comparer
	Sink                 = compare.Sink
	Artifacts            = compare.Artifacts
	PageResult           = compare.PageResult
	DocumentResult       = compare.DocumentResult
	Pair                 = batch.Pair
	BatchOptions         = batch.Options
	BatchResult          = batch.Result
)

// Re-export option functions
var (
	WithXTolerance  = pdf.WithXTolerance
	WithYTolerance  = pdf.WithYTolerance
	DefaultOptions  = compare.DefaultOptions
	NewComparer     = compare.NewComparer
	NewOrchestrator = batch.NewOrchestrator
	Discover        = batch.Discover
)

// Open opens a PDF file and returns a Document
func Open(filepath string) (Document, error) {
	return pdf.Open(filepath)
}

// CompareFiles compares two PDF files with the given options and returns
// the per-page results without writing any artifacts.
func CompareFiles(oldPath, newPath string, opts Options) (DocumentResult, error) {
	c, err := compare.NewComparer(opts, pdf.Open, nil, nil)
	if err != nil {
		return DocumentResult{}, err
	}
	id := strings.TrimSuffix(filepath.Base(oldPath), filepath.Ext(oldPath))
	return c.CompareFiles(id, oldPath, newPath)
}

// CompareDirs pairs the PDFs of two directories by file name and compares
// them on a worker pool, handing artifacts to sink.
func CompareDirs(oldDir, newDir string, opts Options, bopts BatchOptions, sink Sink) (*BatchResult, error) {
	pairs, err := batch.Discover(oldDir, newDir)
	if err != nil {
		return nil, err
	}
	c, err := compare.NewComparer(opts, pdf.Open, sink, nil)
	if err != nil {
		return nil, err
	}
	return batch.NewOrchestrator(c, bopts, nil, nil).Run(pairs), nil
}
