// Package textdiff aligns the words of two versions of a page line by line
// and reports the words that were added or removed.
package textdiff

import (
	"sort"

	"znkr.io/diff"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/extractors"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/pdf"
)

// Kind classifies a word in the alignment.
type Kind int

const (
	Equal Kind = iota
	Add
	Remove
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Add:
		return "add"
	case Remove:
		return "remove"
	}
	return "unknown"
}

// DiffOp is one classified word. BBox is in document space and comes from
// the side the word belongs to. Line identifies the aligned line, shared
// by the old and new words of that line.
type DiffOp struct {
	Kind Kind
	Word string
	BBox pdf.BoundingBox
	Line extractors.LineKey
}

// Differ compares line groups.
type Differ struct{}

// NewDiffer returns a Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// linePair is one aligned line: old and new words under a common key.
type linePair struct {
	key      extractors.LineKey
	oldWords []pdf.Word
	newWords []pdf.Word
}

// Diff returns the Add and Remove ops between the two pages, lines in
// ascending key order and words in edit-script order within a line.
func (d *Differ) Diff(oldLines, newLines extractors.LineGroup) []DiffOp {
	var ops []DiffOp
	for _, p := range pairLines(oldLines, newLines) {
		ops = append(ops, diffLine(p)...)
	}
	return ops
}

// pairLines matches every line of one side with at most one line of the
// other. Equal keys pair first; a remaining new key then pairs with a
// remaining old key one step away, the lower one first, so a bottom edge
// that drifted across a band boundary still lines up.
func pairLines(oldLines, newLines extractors.LineGroup) []linePair {
	oldKeys, newKeys := oldLines.Keys(), newLines.Keys()
	oldSet := make(map[extractors.LineKey]bool, len(oldKeys))
	for _, k := range oldKeys {
		oldSet[k] = true
	}

	oldUsed := make(map[extractors.LineKey]bool, len(oldKeys))
	matched := make(map[extractors.LineKey]extractors.LineKey, len(newKeys))
	for _, k := range newKeys {
		if oldSet[k] {
			matched[k] = k
			oldUsed[k] = true
		}
	}
	for _, k := range newKeys {
		if _, ok := matched[k]; ok {
			continue
		}
		for _, cand := range []extractors.LineKey{k - 1, k + 1} {
			if oldSet[cand] && !oldUsed[cand] {
				matched[k] = cand
				oldUsed[cand] = true
				break
			}
		}
	}

	var pairs []linePair
	for _, k := range oldKeys {
		if !oldUsed[k] {
			pairs = append(pairs, linePair{key: k, oldWords: oldLines.Words(k)})
		}
	}
	for _, k := range newKeys {
		p := linePair{key: k, newWords: newLines.Words(k)}
		if oldKey, found := matched[k]; found {
			p.key = min(oldKey, k)
			p.oldWords = oldLines.Words(oldKey)
		}
		pairs = append(pairs, p)
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].key < pairs[j].key
	})
	return pairs
}

// diffLine walks the edit script of one line with a cursor per side.
func diffLine(p linePair) []DiffOp {
	var ops []DiffOp
	switch {
	case len(p.oldWords) == 0:
		for _, w := range p.newWords {
			ops = append(ops, op(Add, w, p.key))
		}
		return ops
	case len(p.newWords) == 0:
		for _, w := range p.oldWords {
			ops = append(ops, op(Remove, w, p.key))
		}
		return ops
	}

	oldIdx, newIdx := 0, 0
	for _, e := range diff.Edits(texts(p.oldWords), texts(p.newWords)) {
		switch e.Op {
		case diff.Match:
			oldIdx++
			newIdx++
		case diff.Insert:
			ops = append(ops, op(Add, p.newWords[newIdx], p.key))
			newIdx++
		case diff.Delete:
			ops = append(ops, op(Remove, p.oldWords[oldIdx], p.key))
			oldIdx++
		}
	}
	return ops
}

func op(kind Kind, w pdf.Word, key extractors.LineKey) DiffOp {
	return DiffOp{Kind: kind, Word: w.Text, BBox: w.BBox, Line: key}
}

func texts(words []pdf.Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Text
	}
	return out
}
