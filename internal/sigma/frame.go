package sigma

import (
	"sort"
	"strings"
)

// Frame delimiter lines.
const (
	FrameOpen  = "=== Σ-FRAME ==="
	FrameClose = "=== /Σ-FRAME ==="
)

// BuildFrame trims each block string, drops empties, sorts by byte order,
// collapses duplicates and wraps the result in frame delimiters. An empty
// input list yields "" rather than an empty delimited frame.
func BuildFrame(blocks []string) string {
	if len(blocks) == 0 {
		return ""
	}

	lines := make([]string, 0, len(blocks)+2)
	lines = append(lines, FrameOpen)
	for i, b := range sortedBlocks(blocks) {
		if i > 0 && b.text == lines[len(lines)-1] {
			continue
		}
		lines = append(lines, b.text)
	}
	lines = append(lines, FrameClose)
	return strings.Join(lines, "\n")
}

// PreviewEntry describes where one block lands when the frame is built.
type PreviewEntry struct {
	// OriginalIndex is the entry's index in the input list.
	OriginalIndex int `json:"original_index"`
	// SortedIndex is its position after sorting, duplicates included.
	SortedIndex int    `json:"sorted_index"`
	Text        string `json:"text"`
	// Moved is set when sorting changes the entry's position among the
	// non-empty entries.
	Moved bool `json:"moved"`
	// IsDuplicate marks every repeat after the first occurrence of the
	// same string in sorted order; BuildFrame drops these.
	IsDuplicate bool `json:"is_duplicate"`
}

// PreviewFrameOrder applies the same trim, filter and sort as BuildFrame but
// keeps duplicates, so callers can show what will move and what will be
// removed before building.
func PreviewFrameOrder(blocks []string) []PreviewEntry {
	sorted := sortedBlocks(blocks)
	preview := make([]PreviewEntry, len(sorted))
	for i, b := range sorted {
		preview[i] = PreviewEntry{
			OriginalIndex: b.index,
			SortedIndex:   i,
			Text:          b.text,
			Moved:         b.rank != i,
			IsDuplicate:   i > 0 && sorted[i-1].text == b.text,
		}
	}
	return preview
}

type frameLine struct {
	text  string
	index int // position in the caller's list
	rank  int // position among non-empty entries
}

func sortedBlocks(blocks []string) []frameLine {
	lines := make([]frameLine, 0, len(blocks))
	for i, b := range blocks {
		t := strings.TrimSpace(b)
		if t == "" {
			continue
		}
		lines = append(lines, frameLine{text: t, index: i, rank: len(lines)})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].text < lines[j].text
	})
	return lines
}
