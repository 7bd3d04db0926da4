package recent

import (
	"fmt"

	"xtab/internal/paging"
	"xtab/internal/tokens"
	"xtab/pkg/edit"
)

// Options configures the allocator.
type Options struct {
	Strategy          Strategy
	PageSize          int
	MaxFocalSpanLines int // cap for merging focal ranges into one span
}

// Allocate distributes budget tokens across the candidates, which must be
// ordered most-recent-first. Candidate processing order and drop order are
// part of the contract: greedy strategies scan newest-first, AroundEditRange
// stops at the first candidate that fits nothing, TopToBottom skips it, and
// proportional admission drops oldest-first. The returned snippets are
// reversed to oldest-first.
func Allocate(candidates []Candidate, budget int, opts Options, count tokens.Counter) Allocation {
	if len(candidates) == 0 || budget <= 0 {
		return Allocation{}
	}

	switch opts.Strategy {
	case TopToBottom, AroundEditRange:
		return allocateGreedy(candidates, budget, opts, count)
	case Proportional:
		return allocateProportional(candidates, budget, opts, count)
	}
	panic(fmt.Sprintf("recent: unknown strategy %d", int(opts.Strategy)))
}

// allocateGreedy processes candidates newest-first against one running
// shared budget. Under AroundEditRange the first candidate that yields
// zero pages ends the scan; older candidates are not considered even if
// they would be cheap. Under TopToBottom a candidate that fits nothing is
// skipped and the remaining budget carries to the next file.
func allocateGreedy(candidates []Candidate, budget int, opts Options, count tokens.Counter) Allocation {
	var out Allocation
	shared := budget

	for _, cand := range candidates {
		var snippet Snippet
		var ok bool
		if opts.Strategy == AroundEditRange && len(cand.FocalRanges) > 0 {
			snippet, shared, ok = clipAroundFocal(cand, shared, opts, count)
		} else {
			snippet, shared, ok = clipTopToBottom(cand, shared, opts, count)
		}
		if !ok {
			if opts.Strategy == AroundEditRange {
				break
			}
			continue
		}
		out.Snippets = append(out.Snippets, snippet)
	}

	reverseSnippets(out.Snippets)
	for _, s := range out.Snippets {
		out.IncludedDocs = append(out.IncludedDocs, s.ID)
	}
	return out
}

// clipTopToBottom takes whole pages from the start of the document while
// the shared budget stays non-negative.
func clipTopToBottom(cand Candidate, shared int, opts Options, count tokens.Counter) (Snippet, int, bool) {
	lines := cand.Lines()
	pages := 0
	for start := 0; start < len(lines); start += opts.PageSize {
		cost := paging.PageCost(lines, pages, opts.PageSize, count)
		if shared-cost < 0 {
			break
		}
		shared -= cost
		pages++
	}
	if pages == 0 {
		return Snippet{}, shared, false
	}
	end := min(pages*opts.PageSize, len(lines))
	return Snippet{
		ID:        cand.ID,
		Lines:     lines[:end],
		StartLine: 0,
		Truncated: end < len(lines),
	}, shared, true
}

// clipAroundFocal merges the candidate's focal ranges under the span cap
// and expands pages symmetrically around them against the shared budget.
func clipAroundFocal(cand Candidate, shared int, opts Options, count tokens.Counter) (Snippet, int, bool) {
	focal, ok := paging.SelectFocal(cand.FocalRanges, cand.lineOf, opts.MaxFocalSpanLines)
	if !ok {
		return clipTopToBottom(cand, shared, opts, count)
	}

	lines := cand.Lines()
	seed := edit.PagesCovering(cand.index.LineRangeOf(focal), opts.PageSize)
	res := paging.Expand(lines, seed, opts.PageSize, shared, count, false)
	if !res.Fit(shared) {
		return Snippet{}, shared, false
	}

	kept := res.LineRange(len(lines), opts.PageSize)
	return Snippet{
		ID:        cand.ID,
		Lines:     lines[kept.Start:kept.EndExclusive],
		StartLine: kept.Start,
		Truncated: kept.Len() < len(lines),
	}, res.BudgetLeft, true
}

// allocateProportional runs the two-pass allocation. Pass one admits
// candidates under the total budget by their minimal focal page cost,
// dropping the oldest first. Pass two hands every admitted candidate its
// guaranteed focal cost plus a weight-proportional share of the leftover,
// with unspent budget carried forward newest-to-oldest.
func allocateProportional(candidates []Candidate, budget int, opts Options, count tokens.Counter) Allocation {
	type admittedCandidate struct {
		Candidate
		focalSeed edit.OffsetRange // page index range of the focal pages
		focalCost int
		hasFocal  bool
	}

	admitted := make([]admittedCandidate, 0, len(candidates))
	sum := 0
	for _, cand := range candidates {
		a := admittedCandidate{Candidate: cand}
		lines := cand.Lines()
		if focal, ok := paging.SelectFocal(cand.FocalRanges, cand.lineOf, opts.MaxFocalSpanLines); ok {
			a.hasFocal = true
			a.focalSeed = edit.PagesCovering(cand.index.LineRangeOf(focal), opts.PageSize)
		} else {
			// No focal location: the first page is the minimum to show.
			a.focalSeed = edit.NewOffsetRange(0, 1)
		}
		for p := a.focalSeed.Start; p < a.focalSeed.EndExclusive; p++ {
			a.focalCost += paging.PageCost(lines, p, opts.PageSize, count)
		}
		admitted = append(admitted, a)
		sum += a.focalCost
	}

	// Admission: drop the oldest candidate until the guaranteed focal
	// costs fit the budget.
	for sum > budget && len(admitted) > 0 {
		last := len(admitted) - 1
		sum -= admitted[last].focalCost
		admitted = admitted[:last]
	}
	if len(admitted) == 0 {
		return Allocation{}
	}

	totalWeight := 0
	for _, a := range admitted {
		totalWeight += a.Weight
	}

	leftover := budget - sum
	carry := 0
	var out Allocation
	for _, a := range admitted {
		share := leftover * a.Weight / totalWeight
		effective := a.focalCost + share + carry

		lines := a.Lines()
		// No-focal candidates are seeded at page zero, so nothing exists
		// above the seed; prefer-above routes the whole effective budget
		// downward, giving them plain top-down paging.
		res := paging.Expand(lines, a.focalSeed, opts.PageSize, effective, count, !a.hasFocal)
		if !res.Fit(effective) {
			// The guaranteed focal cost always covers the seed pages, so
			// this only happens for degenerate empty documents.
			carry = effective - a.focalCost
			continue
		}
		carry = res.BudgetLeft

		kept := res.LineRange(len(lines), opts.PageSize)
		out.Snippets = append(out.Snippets, Snippet{
			ID:        a.ID,
			Lines:     lines[kept.Start:kept.EndExclusive],
			StartLine: kept.Start,
			Truncated: kept.Len() < len(lines),
		})
	}

	reverseSnippets(out.Snippets)
	for _, s := range out.Snippets {
		out.IncludedDocs = append(out.IncludedDocs, s.ID)
	}
	return out
}

func reverseSnippets(snippets []Snippet) {
	for i, j := 0, len(snippets)-1; i < j; i, j = i+1, j-1 {
		snippets[i], snippets[j] = snippets[j], snippets[i]
	}
}
