// Package output persists comparison artifacts: page images per pair and
// an optional PDF assembled from the combined images.
package output

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"go.uber.org/zap"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/compare"
)

const (
	OverlayDir  = "overlay_differences"
	CombinedDir = "combined_differences"
	WordsDir    = "word_differences"

	keepFile = ".gitkeep"
)

// Options configures an Assembler.
type Options struct {
	Dir         string
	JPEGQuality int
	PDF         bool
}

// Assembler writes artifacts below Dir, one diff_<id> directory per pair.
// It is safe for concurrent use as long as pairs have distinct IDs.
type Assembler struct {
	dir     string
	quality int
	pdf     bool
	logger  *zap.Logger
}

// NewAssembler creates an Assembler. A quality outside 1..100 uses 85.
func NewAssembler(opts Options, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := opts.JPEGQuality
	if q < 1 || q > 100 {
		q = 85
	}
	return &Assembler{dir: opts.Dir, quality: q, pdf: opts.PDF, logger: logger}
}

// Reset creates the output directory and removes everything in it except
// a .gitkeep file.
func (a *Assembler) Reset() error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return fmt.Errorf("list output dir: %w", err)
	}

	var errs []error
	for _, e := range entries {
		if e.Name() == keepFile {
			continue
		}
		if err := os.RemoveAll(filepath.Join(a.dir, e.Name())); err != nil {
			a.logger.Warn("failed to delete", zap.String("path", e.Name()), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DocumentDir returns the directory holding a pair's artifacts.
func (a *Assembler) DocumentDir(docID string) string {
	return filepath.Join(a.dir, "diff_"+docID)
}

// PagePath returns the path of one page image of the given kind.
func (a *Assembler) PagePath(docID, kind string, pageIndex int) string {
	return filepath.Join(a.DocumentDir(docID), kind, fmt.Sprintf("page_%02d.jpg", pageIndex))
}

// WritePage stores the non-nil artifacts of a page as JPEG files.
func (a *Assembler) WritePage(docID string, pageIndex int, art compare.Artifacts) error {
	for _, item := range []struct {
		kind string
		img  *image.RGBA
	}{
		{OverlayDir, art.Overlay},
		{CombinedDir, art.Combined},
		{WordsDir, art.Words},
	} {
		if item.img == nil {
			continue
		}
		if err := a.writeJPEG(a.PagePath(docID, item.kind, pageIndex), item.img); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) writeJPEG(path string, img image.Image) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: a.quality}); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// FinishDocument assembles diff_<id>.pdf from the combined page images
// when PDF output is enabled and the pair has differences.
func (a *Assembler) FinishDocument(res compare.DocumentResult) error {
	if !a.pdf || !res.HasDifference {
		return nil
	}

	var images []string
	for _, p := range res.Pages {
		if !p.HasDifference {
			continue
		}
		path := a.PagePath(res.ID, CombinedDir, p.Index)
		if _, err := os.Stat(path); err == nil {
			images = append(images, path)
		}
	}
	if len(images) == 0 {
		return nil
	}

	out := a.DocumentDir(res.ID) + ".pdf"
	// pdfcpu appends to an existing file
	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale %s: %w", out, err)
	}
	if err := api.ImportImagesFile(images, out, pdfcpu.DefaultImportConfig(), nil); err != nil {
		return fmt.Errorf("assemble %s: %w", out, err)
	}

	a.logger.Debug("diff document written", zap.String("path", out), zap.Int("pages", len(images)))
	return nil
}
