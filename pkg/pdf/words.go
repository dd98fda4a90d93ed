package pdf

import (
	"sort"
	"strings"
)

// groupWords groups characters into words: first into lines by Y0 within
// the Y tolerance, then into words by horizontal gap.
func groupWords(chars []CharObject, config *wordExtractionConfig) []Word {
	if len(chars) == 0 {
		return nil
	}

	// Sort characters by position (top to bottom, left to right)
	sortedChars := make([]CharObject, len(chars))
	copy(sortedChars, chars)

	sort.SliceStable(sortedChars, func(i, j int) bool {
		if abs(sortedChars[i].Y0-sortedChars[j].Y0) > config.YTolerance {
			return sortedChars[i].Y0 < sortedChars[j].Y0
		}
		return sortedChars[i].X0 < sortedChars[j].X0
	})

	// Group characters into lines
	var lines [][]CharObject
	var currentLine []CharObject
	currentY := sortedChars[0].Y0

	for _, char := range sortedChars {
		if abs(char.Y0-currentY) > config.YTolerance {
			if len(currentLine) > 0 {
				lines = append(lines, currentLine)
			}
			currentLine = []CharObject{char}
			currentY = char.Y0
		} else {
			currentLine = append(currentLine, char)
		}
	}

	if len(currentLine) > 0 {
		lines = append(lines, currentLine)
	}

	var words []Word
	for _, line := range lines {
		words = append(words, wordsFromLine(line, config.XTolerance)...)
	}

	return words
}

// wordsFromLine extracts words from a single line of characters
func wordsFromLine(lineChars []CharObject, xTolerance float64) []Word {
	if len(lineChars) == 0 {
		return nil
	}

	sort.SliceStable(lineChars, func(i, j int) bool {
		return lineChars[i].X0 < lineChars[j].X0
	})

	var words []Word
	var currentWord []CharObject

	for i, char := range lineChars {
		if i == 0 {
			currentWord = []CharObject{char}
			continue
		}
		// A gap wider than the tolerance or 30% of the glyph starts a new word
		gap := char.X0 - lineChars[i-1].X1
		if gap > xTolerance || gap > char.Width*0.3 {
			words = append(words, createWord(currentWord))
			currentWord = []CharObject{char}
		} else {
			currentWord = append(currentWord, char)
		}
	}

	if len(currentWord) > 0 {
		words = append(words, createWord(currentWord))
	}

	return words
}

// createWord creates a Word from a group of characters
func createWord(chars []CharObject) Word {
	var text strings.Builder
	minX, minY := chars[0].X0, chars[0].Y0
	maxX, maxY := chars[0].X1, chars[0].Y1

	for _, char := range chars {
		text.WriteString(char.Text)
		minX = min(minX, char.X0)
		minY = min(minY, char.Y0)
		maxX = max(maxX, char.X1)
		maxY = max(maxY, char.Y1)
	}

	return Word{
		Text: text.String(),
		BBox: BoundingBox{X0: minX, Y0: minY, X1: maxX, Y1: maxY},
	}
}
