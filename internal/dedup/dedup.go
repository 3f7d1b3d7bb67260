// Package dedup groups identical extracted segments across one or many
// files so each unique text is translated exactly once and the result is
// fanned back out to every occurrence.
package dedup

import (
	"strings"

	"github.com/lingokit/lingokit/internal/content"
)

// Occurrence locates one appearance of a unique text.
type Occurrence struct {
	FileIndex int
	RowIndex  int
	ID        string
}

// Index is the grouping of extracted items by their trimmed text. It is a
// pure lookup structure with no side effects.
type Index struct {
	UniqueStrings   []string
	Occurrences     map[string][]Occurrence
	OccurrenceCount int
	DuplicateCount  int

	// FromJSON flags unique texts with at least one JSON-extracted
	// occurrence. Those texts are sent to the translator without marker
	// substitution, since a marker inside a JSON string value risks
	// corrupting structure-sensitive consumers.
	FromJSON map[string]bool
}

// Build indexes the items of N files. Equality is exact post-trim string
// equality: no case folding, no whitespace normalization beyond the trim,
// so "Hello" and "hello" stay distinct keys.
func Build(files [][]content.Item) *Index {
	idx := &Index{
		Occurrences: make(map[string][]Occurrence),
		FromJSON:    make(map[string]bool),
	}

	for fileIdx, items := range files {
		for rowIdx, item := range items {
			key := strings.TrimSpace(item.Text)

			if _, exists := idx.Occurrences[key]; !exists {
				idx.UniqueStrings = append(idx.UniqueStrings, key)
			} else {
				idx.DuplicateCount++
			}
			if item.Origin == content.TypeJSON {
				idx.FromJSON[key] = true
			}

			idx.Occurrences[key] = append(idx.Occurrences[key], Occurrence{
				FileIndex: fileIdx,
				RowIndex:  rowIdx,
				ID:        item.ID,
			})
			idx.OccurrenceCount++
		}
	}

	return idx
}

// FanOut distributes per-unique-text translations to every occurrence,
// returning one map per file keyed by item ID. Unique texts missing from
// translations are left out, signalling an incomplete unit rather than
// fabricating output.
func (idx *Index) FanOut(translations map[string]string, fileCount int) []map[string]string {
	perFile := make([]map[string]string, fileCount)
	for i := range perFile {
		perFile[i] = make(map[string]string)
	}

	for text, occurrences := range idx.Occurrences {
		translated, ok := translations[text]
		if !ok {
			continue
		}
		for _, occ := range occurrences {
			if occ.FileIndex < 0 || occ.FileIndex >= fileCount {
				continue
			}
			perFile[occ.FileIndex][occ.ID] = translated
		}
	}

	return perFile
}
