// Package edit provides half-open offset ranges, line indexing and
// composable text replacement operations. Ranges are used over character
// offsets, line indices and page indices alike; which unit applies is
// decided by the caller.
package edit

import "fmt"

// OffsetRange is a half-open range [Start, EndExclusive).
type OffsetRange struct {
	Start        int
	EndExclusive int
}

// NewOffsetRange creates a range and panics if start > endExclusive.
// A reversed range always indicates a defect in the caller's bookkeeping,
// not a recoverable condition.
func NewOffsetRange(start, endExclusive int) OffsetRange {
	if start > endExclusive {
		panic(fmt.Sprintf("edit: reversed range [%d:%d)", start, endExclusive))
	}
	return OffsetRange{Start: start, EndExclusive: endExclusive}
}

// EmptyRange returns the zero-length range at the given offset.
func EmptyRange(at int) OffsetRange {
	return OffsetRange{Start: at, EndExclusive: at}
}

// Len returns the number of offsets covered by the range.
func (r OffsetRange) Len() int {
	return r.EndExclusive - r.Start
}

// IsEmpty reports whether the range covers nothing.
func (r OffsetRange) IsEmpty() bool {
	return r.Start == r.EndExclusive
}

// Contains reports whether the offset lies within [Start, EndExclusive).
func (r OffsetRange) Contains(offset int) bool {
	return offset >= r.Start && offset < r.EndExclusive
}

// ContainsRange reports whether other lies entirely within r.
func (r OffsetRange) ContainsRange(other OffsetRange) bool {
	return other.Start >= r.Start && other.EndExclusive <= r.EndExclusive
}

// Intersect returns the overlap of two ranges. The second return value is
// false when the ranges do not overlap.
func (r OffsetRange) Intersect(other OffsetRange) (OffsetRange, bool) {
	start := max(r.Start, other.Start)
	end := min(r.EndExclusive, other.EndExclusive)
	if start >= end {
		return OffsetRange{}, false
	}
	return OffsetRange{Start: start, EndExclusive: end}, true
}

// Union returns the smallest range covering both r and other.
func (r OffsetRange) Union(other OffsetRange) OffsetRange {
	return OffsetRange{
		Start:        min(r.Start, other.Start),
		EndExclusive: max(r.EndExclusive, other.EndExclusive),
	}
}

// DeltaStart shifts only the start boundary.
func (r OffsetRange) DeltaStart(delta int) OffsetRange {
	return NewOffsetRange(r.Start+delta, r.EndExclusive)
}

// DeltaEnd shifts only the end boundary.
func (r OffsetRange) DeltaEnd(delta int) OffsetRange {
	return NewOffsetRange(r.Start, r.EndExclusive+delta)
}

// Delta shifts both boundaries.
func (r OffsetRange) Delta(delta int) OffsetRange {
	return OffsetRange{Start: r.Start + delta, EndExclusive: r.EndExclusive + delta}
}

// Clamp restricts the range to the bounds of outer.
func (r OffsetRange) Clamp(outer OffsetRange) OffsetRange {
	start := min(max(r.Start, outer.Start), outer.EndExclusive)
	end := max(min(r.EndExclusive, outer.EndExclusive), start)
	return OffsetRange{Start: start, EndExclusive: end}
}

func (r OffsetRange) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.EndExclusive)
}

// PageOf returns the index of the fixed-size page containing the offset.
func PageOf(offset, pageSize int) int {
	if pageSize <= 0 {
		panic(fmt.Sprintf("edit: page size %d", pageSize))
	}
	return offset / pageSize
}

// PagesCovering returns the half-open page index range covering the given
// offset range. An empty input range still covers the single page its start
// offset falls on.
func PagesCovering(r OffsetRange, pageSize int) OffsetRange {
	last := r.EndExclusive - 1
	if last < r.Start {
		last = r.Start
	}
	return OffsetRange{Start: PageOf(r.Start, pageSize), EndExclusive: PageOf(last, pageSize) + 1}
}
