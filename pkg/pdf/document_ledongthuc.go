package pdf

import (
	"fmt"
	"io"

	lpdf "github.com/ledongthuc/pdf"
)

// ledongthucText reads positioned text runs with the ledongthuc/pdf library.
// It has the most accurate run positions of the available readers.
type ledongthucText struct {
	file   io.Closer
	reader *lpdf.Reader
}

// openLedongthucText opens a PDF file using the ledongthuc/pdf library
func openLedongthucText(filepath string) (textSource, error) {
	f, r, err := lpdf.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}
	return &ledongthucText{file: f, reader: r}, nil
}

// runs returns the glyph runs of a page. The reader panics on some
// malformed content streams; that is reported as an error for the page only.
func (t *ledongthucText) runs(pageNumber int) (runs []textRun, err error) {
	if pageNumber < 1 || pageNumber > t.reader.NumPage() {
		return nil, fmt.Errorf("%w: page %d", ErrPageRange, pageNumber)
	}

	defer func() {
		if r := recover(); r != nil {
			runs = nil
			err = fmt.Errorf("ledongthuc: malformed content on page %d: %v", pageNumber, r)
		}
	}()

	page := t.reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, fmt.Errorf("ledongthuc: page %d not found", pageNumber)
	}

	for _, text := range page.Content().Text {
		runs = append(runs, textRun{S: text.S, Font: text.Font, FontSize: text.FontSize, X: text.X, Y: text.Y, W: text.W})
	}
	return runs, nil
}

// Close releases the underlying file
func (t *ledongthucText) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}
