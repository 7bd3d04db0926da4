// Package docs tracks the open documents of an editor session. Each
// document applies incremental position-based content changes and reports
// them as offset replacements, which is what the history log records.
package docs

import (
	"sync"

	"xtab/pkg/edit"
)

// Position is a zero-based line/character location in a document.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a half-open [Start, End) span between two positions.
type Range struct {
	Start Position
	End   Position
}

// Change is one incremental content change. A nil Range replaces the
// whole document.
type Change struct {
	Range   *Range
	NewText string
}

// Document holds the live content of one open file.
type Document struct {
	id      string
	content string
	mu      sync.RWMutex
}

// NewDocument creates a document with the given initial content.
func NewDocument(id, content string) *Document {
	return &Document{id: id, content: content}
}

// ID returns the document identifier.
func (d *Document) ID() string {
	return d.id
}

// Content returns the current document text.
func (d *Document) Content() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

// ApplyChanges applies the changes in order and returns the content before
// the changes plus the equivalent replacement operations against that
// content, one edit per change, in application order.
func (d *Document) ApplyChanges(changes []Change) (baseText string, edits []edit.Edit) {
	d.mu.Lock()
	defer d.mu.Unlock()

	baseText = d.content
	edits = make([]edit.Edit, 0, len(changes))

	for _, change := range changes {
		var r edit.OffsetRange
		if change.Range == nil {
			r = edit.NewOffsetRange(0, len(d.content))
		} else {
			start := d.positionToOffset(change.Range.Start)
			end := d.positionToOffset(change.Range.End)
			if end < start {
				end = start
			}
			r = edit.NewOffsetRange(start, end)
		}

		e := edit.Replace(r, change.NewText)
		d.content = e.Apply(d.content)
		edits = append(edits, e)
	}

	return baseText, edits
}

// positionToOffset converts a line/character position to a byte offset,
// clamped to the content length. Callers hold the lock.
func (d *Document) positionToOffset(pos Position) int {
	offset := 0
	var currentLine uint32

	for offset < len(d.content) && currentLine < pos.Line {
		if d.content[offset] == '\n' {
			currentLine++
		}
		offset++
	}

	offset += int(pos.Character)
	return min(offset, len(d.content))
}
