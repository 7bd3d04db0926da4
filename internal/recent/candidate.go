// Package recent allocates a shared token budget across the recently
// viewed and edited documents competing for space in the prompt. Two
// families of strategies exist: greedy allocation, which favors recency,
// and proportional allocation, which favors documents with more edit
// activity while guaranteeing every admitted document at least its focal
// pages.
package recent

import (
	"fmt"

	"xtab/pkg/edit"
)

// Strategy selects how the shared recent-file budget is distributed.
type Strategy int

const (
	// TopToBottom takes whole pages from the start of each document,
	// newest document first, until the shared budget runs out.
	TopToBottom Strategy = iota
	// AroundEditRange clips each document around its focal ranges,
	// newest document first, against the shared budget.
	AroundEditRange
	// Proportional admits documents newest-first under a guaranteed focal
	// minimum, then spreads the leftover budget by edit-activity weight.
	Proportional
)

func (s Strategy) String() string {
	switch s {
	case TopToBottom:
		return "top-to-bottom"
	case AroundEditRange:
		return "around-edit-range"
	case Proportional:
		return "proportional"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Candidate is one document competing for the shared budget.
type Candidate struct {
	ID      string
	Content string
	// FocalRanges are character offset ranges into Content, ordered
	// most-recent-first. Nil for documents with no known focal location.
	FocalRanges []edit.OffsetRange
	// Weight counts the edit events that produced this candidate. Only the
	// proportional strategy reads it.
	Weight int

	lines []string
	index edit.LineIndex
}

// NewCandidate builds a candidate, precomputing its line split and offset
// index. Weight is clamped to at least 1.
func NewCandidate(id, content string, focalRanges []edit.OffsetRange, weight int) Candidate {
	if weight < 1 {
		weight = 1
	}
	return Candidate{
		ID:          id,
		Content:     content,
		FocalRanges: focalRanges,
		Weight:      weight,
		lines:       edit.SplitLines(content),
		index:       edit.NewLineIndex(content),
	}
}

// Lines returns the document's lines without separators.
func (c Candidate) Lines() []string {
	if c.lines == nil {
		return edit.SplitLines(c.Content)
	}
	return c.lines
}

func (c Candidate) lineOf(offset int) int {
	return c.index.LineOf(offset)
}

// Snippet is the clipped portion of one document that made it into the
// prompt.
type Snippet struct {
	ID        string
	Lines     []string
	StartLine int  // 0-based first line shown
	Truncated bool // not all document lines were shown
}

// Allocation is the allocator output. Snippets are ordered oldest-first
// for stable prompt layout even though selection runs newest-first;
// IncludedDocs follows snippet order.
type Allocation struct {
	Snippets     []Snippet
	IncludedDocs []string
}

// Includes reports whether the document made it into the allocation.
func (a Allocation) Includes(id string) bool {
	for _, d := range a.IncludedDocs {
		if d == id {
			return true
		}
	}
	return false
}
