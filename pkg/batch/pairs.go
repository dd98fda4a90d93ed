package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrMissingCounterpart marks a document that exists in only one of the
// two sets.
var ErrMissingCounterpart = errors.New("missing counterpart")

// Pair is one unit of work: two versions of the same document. A path is
// empty when that version was not found.
type Pair struct {
	ID      string
	OldPath string
	NewPath string
}

// Discover pairs the PDF files of both directories by file name. Files
// present on one side only still produce a Pair, with the other path
// empty, so that they are reported. Pairs are sorted by ID.
func Discover(oldDir, newDir string) ([]Pair, error) {
	oldFiles, err := pdfFiles(oldDir)
	if err != nil {
		return nil, err
	}
	newFiles, err := pdfFiles(newDir)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*Pair, len(oldFiles))
	for _, name := range oldFiles {
		byName[name] = &Pair{OldPath: filepath.Join(oldDir, name)}
	}
	for _, name := range newFiles {
		p, ok := byName[name]
		if !ok {
			p = &Pair{}
			byName[name] = p
		}
		p.NewPath = filepath.Join(newDir, name)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	used := make(map[string]bool, len(names))
	pairs := make([]Pair, 0, len(names))
	for _, name := range names {
		p := byName[name]
		p.ID = uniqueID(name, used)
		pairs = append(pairs, *p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].ID < pairs[j].ID
	})
	return pairs, nil
}

func pdfFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// uniqueID derives a pair ID from the file name. IDs name output
// directories and report rows, so names that collide once the extension
// is dropped (a.pdf, a.PDF) keep the extension or get a numeric suffix.
func uniqueID(name string, used map[string]bool) string {
	id := pairID(name)
	if used[id] {
		id = name
	}
	for n := 2; used[id]; n++ {
		id = fmt.Sprintf("%s_%d", pairID(name), n)
	}
	used[id] = true
	return id
}

func pairID(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
