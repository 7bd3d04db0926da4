package history

import (
	"xtab/internal/recent"
	"xtab/pkg/edit"
)

// GroupOptions filters the candidate conversion.
type GroupOptions struct {
	// IncludeViewedFiles admits documents that were only viewed, never
	// edited.
	IncludeViewedFiles bool
	// MaxDocuments caps how many distinct documents become candidates;
	// zero means no cap. The newest documents win.
	MaxDocuments int
}

// Candidates groups the history (most-recent-last, as stored) by document
// and converts each group into a weighted candidate snippet, ordered
// most-recent-first by the document's newest entry. The active document is
// excluded; it is clipped separately. Focal ranges of older entries are
// projected forward through every newer edit of the same document so they
// land in the newest content's coordinate space.
func Candidates(entries []Entry, activeDocID string, opts GroupOptions) []recent.Candidate {
	type group struct {
		id      string
		entries []Entry // most-recent-first
	}
	var order []string
	groups := make(map[string]*group)

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.DocID == activeDocID {
			continue
		}
		g, seen := groups[e.DocID]
		if !seen {
			g = &group{id: e.DocID}
			groups[e.DocID] = g
			order = append(order, e.DocID)
		}
		g.entries = append(g.entries, e)
	}

	candidates := make([]recent.Candidate, 0, len(order))
	for _, id := range order {
		g := groups[id]
		weight := 0
		for _, e := range g.entries {
			if e.Kind == KindEdit {
				weight++
			}
		}
		if weight == 0 && !opts.IncludeViewedFiles {
			continue
		}
		candidates = append(candidates, toCandidate(g.id, g.entries, weight))
		if opts.MaxDocuments > 0 && len(candidates) >= opts.MaxDocuments {
			break
		}
	}
	return candidates
}

// toCandidate collapses one document's entries (most-recent-first) into a
// candidate: the newest entry supplies the content, and each entry's focal
// ranges are carried forward through the edits that came after it.
func toCandidate(id string, entries []Entry, weight int) recent.Candidate {
	content := entries[0].Content()

	var focal []edit.OffsetRange
	for i, e := range entries {
		// Edits newer than entry i, oldest-first, to project through.
		var newer []edit.Edit
		for j := i - 1; j >= 0; j-- {
			if entries[j].Kind == KindEdit {
				newer = append(newer, entries[j].Edit)
			}
		}
		for _, r := range e.FocalRanges() {
			focal = append(focal, edit.ProjectRange(r, newer))
		}
	}

	return recent.NewCandidate(id, content, focal, weight)
}
