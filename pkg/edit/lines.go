package edit

import (
	"sort"
	"strings"
)

// LineIndex maps character offsets in a document to line numbers.
type LineIndex struct {
	// starts[i] is the character offset of the first character of line i.
	starts []int
	length int
}

// NewLineIndex builds an index for the given content. Lines are separated
// by '\n'; the separator belongs to the line it terminates.
func NewLineIndex(content string) LineIndex {
	starts := make([]int, 1, strings.Count(content, "\n")+1)
	starts[0] = 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return LineIndex{starts: starts, length: len(content)}
}

// LineCount returns the number of lines in the indexed content.
func (ix LineIndex) LineCount() int {
	return len(ix.starts)
}

// LineOf returns the 1-based line number containing the given character
// offset. Offsets past the end of the content map to the last line.
func (ix LineIndex) LineOf(offset int) int {
	if offset < 0 {
		offset = 0
	}
	// First line whose start is strictly greater than offset.
	n := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > offset })
	return n
}

// LineStart returns the character offset of the given 1-based line.
func (ix LineIndex) LineStart(line int) int {
	if line < 1 || line > len(ix.starts) {
		return ix.length
	}
	return ix.starts[line-1]
}

// LineRangeOf converts a character offset range to the half-open 0-based
// line range it touches. An empty offset range maps to the single line
// containing its position.
func (ix LineIndex) LineRangeOf(r OffsetRange) OffsetRange {
	first := ix.LineOf(r.Start) - 1
	last := r.EndExclusive - 1
	if last < r.Start {
		last = r.Start
	}
	return NewOffsetRange(first, ix.LineOf(last))
}

// SplitLines splits content into lines without separators. The trailing
// line is kept even when empty so offsets after a final '\n' stay
// addressable.
func SplitLines(content string) []string {
	return strings.Split(content, "\n")
}
