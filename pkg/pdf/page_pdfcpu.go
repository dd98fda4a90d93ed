package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pageBox is the displayed geometry of a page. llx and top place the
// visible box in PDF user space, where text positions are reported.
type pageBox struct {
	width    float64
	height   float64
	rotation int
	llx      float64
	top      float64
}

// readPageBoxes parses and validates a PDF with pdfcpu and returns the
// displayed size of every page. A file pdfcpu rejects is not comparable.
func readPageBoxes(filepath string) ([]pageBox, error) {
	ctx, err := api.ReadContextFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}

	boxes := make([]pageBox, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		box, err := readPageBox(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		boxes[i-1] = box
	}
	return boxes, nil
}

// readPageBox resolves the inherited page attributes of one page. The crop
// box wins over the media box because that is what the rasterizer draws.
func readPageBox(ctx *model.Context, pageNumber int) (pageBox, error) {
	_, _, attrs, err := ctx.PageDict(pageNumber, false)
	if err != nil {
		return pageBox{}, fmt.Errorf("failed to get page dict: %w", err)
	}

	// Default US Letter size
	box := pageBox{width: 612, height: 792, top: 792}
	if attrs == nil {
		return box, nil
	}

	visible := attrs.CropBox
	if visible == nil {
		visible = attrs.MediaBox
	}
	if visible != nil {
		box.width, box.height = visible.Width(), visible.Height()
		box.llx, box.top = visible.LL.X, visible.UR.Y
	}

	box.rotation = ((attrs.Rotate % 360) + 360) % 360
	if box.rotation == 90 || box.rotation == 270 {
		box.width, box.height = box.height, box.width
	}
	return box, nil
}
