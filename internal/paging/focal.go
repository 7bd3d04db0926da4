package paging

import "xtab/pkg/edit"

// SelectFocal merges candidate focal ranges into a single span of at most
// maxSpanLines lines. Ranges must be ordered most-recent-first; the first
// range is always kept. Each older range is absorbed only while the merged
// span stays within the cap, and the first range that would blow the cap
// ends the merge. lineOf maps a character offset to its 1-based line
// number. The second return value is false when no ranges were supplied.
func SelectFocal(ranges []edit.OffsetRange, lineOf func(offset int) int, maxSpanLines int) (edit.OffsetRange, bool) {
	if len(ranges) == 0 {
		return edit.OffsetRange{}, false
	}

	selected := ranges[0]
	for _, candidate := range ranges[1:] {
		combined := selected.Union(candidate)
		if lineSpan(combined, lineOf) > maxSpanLines {
			break
		}
		selected = combined
	}
	return selected, true
}

// lineSpan counts the lines a range touches; an empty range still touches
// the line it sits on.
func lineSpan(r edit.OffsetRange, lineOf func(offset int) int) int {
	last := r.EndExclusive - 1
	if last < r.Start {
		last = r.Start
	}
	return lineOf(last) - lineOf(r.Start) + 1
}
