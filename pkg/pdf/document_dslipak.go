package pdf

import (
	"fmt"
	"os"

	gopdf "github.com/dslipak/pdf"
)

// dslipakText reads positioned text runs with the dslipak/pdf library. It
// is the fallback for files the ledongthuc reader rejects.
type dslipakText struct {
	file   *os.File
	reader *gopdf.Reader
}

// openDslipakText opens a PDF file using the dslipak/pdf library. The file
// is opened here rather than by gopdf.Open so that Close can release it.
func openDslipakText(filepath string) (textSource, error) {
	f, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	r, err := gopdf.NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open PDF with dslipak: %w", err)
	}
	return &dslipakText{file: f, reader: r}, nil
}

func (t *dslipakText) runs(pageNumber int) (runs []textRun, err error) {
	if pageNumber < 1 || pageNumber > t.reader.NumPage() {
		return nil, fmt.Errorf("%w: page %d", ErrPageRange, pageNumber)
	}

	defer func() {
		if r := recover(); r != nil {
			runs = nil
			err = fmt.Errorf("dslipak: malformed content on page %d: %v", pageNumber, r)
		}
	}()

	page := t.reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, fmt.Errorf("dslipak: page %d not found", pageNumber)
	}

	for _, text := range page.Content().Text {
		runs = append(runs, textRun{S: text.S, Font: text.Font, FontSize: text.FontSize, X: text.X, Y: text.Y, W: text.W})
	}
	return runs, nil
}

// Close releases the underlying file
func (t *dslipakText) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}
