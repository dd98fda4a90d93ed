package pdf

import "unicode/utf8"

// estimatedAdvance is the glyph advance, as a fraction of the font size,
// assumed for fonts that carry no /Widths.
const estimatedAdvance = 0.5

// textRun is one glyph run as reported by a text reader, in PDF user space
// (bottom-left origin). Y is the baseline and W the advance.
type textRun struct {
	S        string
	Font     string
	FontSize float64
	X        float64
	Y        float64
	W        float64
}

// runsToChars converts the runs of a page into characters in the page's
// top-left space relative to its visible box.
//
// Readers report a zero advance for fonts without /Widths and never move
// the text position for them, so consecutive runs pile up on the same X.
// Such runs get an estimated advance and continue from the previous run.
func runsToChars(runs []textRun, box pageBox) []CharObject {
	var chars []CharObject
	var prev textRun
	var pen float64
	for i, r := range runs {
		x, w := r.X, r.W
		if w <= 0 {
			w = estimatedAdvance * r.FontSize * float64(utf8.RuneCountInString(r.S))
			if i > 0 && prev.W <= 0 && prev.X == r.X && prev.Y == r.Y {
				x = pen
			}
		}
		chars = append(chars, runChars(r.S, r.Font, r.FontSize, x-box.llx, box.top-r.Y, w)...)
		pen = x + w
		prev = r
	}
	return chars
}

// runChars splits one run into characters of equal advance. baseline is
// measured from the top of the page; it sits at roughly 80% of the font
// height.
func runChars(s, font string, fontSize, x, baseline, width float64) []CharObject {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}

	fontHeight := fontSize
	y0 := baseline - fontHeight*0.8
	charWidth := width / float64(len(runes))

	chars := make([]CharObject, 0, len(runes))
	for _, ch := range runes {
		// Spaces only separate words
		if ch != ' ' && ch != '\n' && ch != '\r' {
			chars = append(chars, CharObject{
				Text:     string(ch),
				Font:     font,
				FontSize: fontSize,
				X0:       x,
				Y0:       y0,
				X1:       x + charWidth,
				Y1:       y0 + fontHeight,
				Width:    charWidth,
				Height:   fontHeight,
			})
		}
		x += charWidth
	}
	return chars
}
