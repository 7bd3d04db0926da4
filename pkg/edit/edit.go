package edit

import (
	"fmt"
	"sort"
	"strings"
)

// Replacement substitutes the text covered by Range with NewText.
// Range is in the coordinate space of the base text the replacement
// applies to.
type Replacement struct {
	Range   OffsetRange `json:"range"`
	NewText string      `json:"newText"`
}

// Delta returns the length change the replacement causes.
func (r Replacement) Delta() int {
	return len(r.NewText) - r.Range.Len()
}

// Edit is an ordered set of non-overlapping replacements against a single
// base text, sorted ascending by start offset. Applying an Edit yields the
// post-edit text; offsets and ranges can be projected through it into
// post-edit coordinates.
type Edit struct {
	Replacements []Replacement `json:"replacements"`
}

// NewEdit builds an Edit from replacements, sorting them by start offset.
// Overlapping replacements indicate a broken caller and panic.
func NewEdit(replacements ...Replacement) Edit {
	sorted := make([]Replacement, len(replacements))
	copy(sorted, replacements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Range.Start < sorted[j].Range.Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Range.Start < sorted[i-1].Range.EndExclusive {
			panic(fmt.Sprintf("edit: overlapping replacements %s and %s",
				sorted[i-1].Range, sorted[i].Range))
		}
	}
	return Edit{Replacements: sorted}
}

// Replace is shorthand for a single-replacement edit.
func Replace(r OffsetRange, newText string) Edit {
	return Edit{Replacements: []Replacement{{Range: r, NewText: newText}}}
}

// IsEmpty reports whether the edit changes nothing.
func (e Edit) IsEmpty() bool {
	return len(e.Replacements) == 0
}

// Apply produces the post-edit text from the base text.
func (e Edit) Apply(base string) string {
	var sb strings.Builder
	pos := 0
	for _, rep := range e.Replacements {
		sb.WriteString(base[pos:rep.Range.Start])
		sb.WriteString(rep.NewText)
		pos = rep.Range.EndExclusive
	}
	sb.WriteString(base[pos:])
	return sb.String()
}

// ApplyToOffset projects a base-text offset into post-edit coordinates.
// Offsets inside a replaced region are mapped into the replacement text,
// clamped to its end.
func (e Edit) ApplyToOffset(offset int) int {
	delta := 0
	for _, rep := range e.Replacements {
		if rep.Range.EndExclusive <= offset {
			delta += rep.Delta()
			continue
		}
		if rep.Range.Contains(offset) {
			into := offset - rep.Range.Start
			if into > len(rep.NewText) {
				into = len(rep.NewText)
			}
			return rep.Range.Start + delta + into
		}
		break
	}
	return offset + delta
}

// ApplyToRange projects a base-text range into post-edit coordinates.
func (e Edit) ApplyToRange(r OffsetRange) OffsetRange {
	start := e.ApplyToOffset(r.Start)
	end := e.ApplyToOffset(r.EndExclusive)
	if end < start {
		end = start
	}
	return OffsetRange{Start: start, EndExclusive: end}
}

// NewRanges returns the ranges occupied by the inserted text of each
// replacement, in post-edit coordinates.
func (e Edit) NewRanges() []OffsetRange {
	ranges := make([]OffsetRange, 0, len(e.Replacements))
	delta := 0
	for _, rep := range e.Replacements {
		start := rep.Range.Start + delta
		ranges = append(ranges, OffsetRange{Start: start, EndExclusive: start + len(rep.NewText)})
		delta += rep.Delta()
	}
	return ranges
}

// ProjectRange carries a range forward through a chronologically ordered
// list of edits: through[0] is applied first, then through[1], and so on.
// The result is in the coordinate space of the newest text.
func ProjectRange(r OffsetRange, through []Edit) OffsetRange {
	for _, e := range through {
		r = e.ApplyToRange(r)
	}
	return r
}
