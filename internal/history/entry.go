// Package history maintains the xtab history: the time-ordered log of
// document edit and view events that feeds recent-file candidate
// selection. Entries are stored most-recent-last and consumed
// most-recent-first.
package history

import (
	"time"

	"xtab/pkg/edit"
)

// Kind tags the entry variant.
type Kind int

const (
	// KindEdit records a replacement operation against a document.
	KindEdit Kind = iota
	// KindViewed records a document snapshot with its visible ranges.
	KindViewed
)

// Entry is one event in the xtab history.
type Entry struct {
	Kind  Kind
	DocID string
	Time  time.Time

	// Edit entries: the text before the edit and the operation producing
	// the post-edit text.
	BaseText string
	Edit     edit.Edit

	// Viewed entries: the full content at view time and the ranges that
	// were visible, most-recent-first.
	Snapshot      string
	VisibleRanges []edit.OffsetRange
}

// NewEditEntry records an edit of the given document.
func NewEditEntry(docID, baseText string, e edit.Edit, at time.Time) Entry {
	return Entry{Kind: KindEdit, DocID: docID, Time: at, BaseText: baseText, Edit: e}
}

// NewViewedEntry records a view of the given document.
func NewViewedEntry(docID, snapshot string, visible []edit.OffsetRange, at time.Time) Entry {
	return Entry{Kind: KindViewed, DocID: docID, Time: at, Snapshot: snapshot, VisibleRanges: visible}
}

// Content returns the document text the entry describes: the post-edit
// text for edits, the snapshot for views.
func (e Entry) Content() string {
	if e.Kind == KindEdit {
		return e.Edit.Apply(e.BaseText)
	}
	return e.Snapshot
}

// FocalRanges returns the entry's focal ranges in the coordinate space of
// its own Content: the inserted-text ranges for edits, the visible ranges
// for views.
func (e Entry) FocalRanges() []edit.OffsetRange {
	if e.Kind == KindEdit {
		return e.Edit.NewRanges()
	}
	return e.VisibleRanges
}
