// Package paging implements budget-bounded page expansion and focal range
// selection. A page is a fixed-size block of consecutive lines; pages are
// the unit in which context around a seed location grows until a token
// budget is exhausted.
package paging

import (
	"xtab/internal/tokens"
	"xtab/pkg/edit"
)

// Result describes the page window produced by Expand. BudgetLeft carries
// two sentinel meanings: a value equal to the budget handed in means not
// even the seed pages fit and the caller should drop this unit entirely; a
// negative value echoes a negative input budget (unconditional overflow).
type Result struct {
	FirstPage  int // index of the first included page
	LastPage   int // index of the last included page, inclusive
	BudgetLeft int
}

// Fit reports whether any pages were included under the given budget.
func (r Result) Fit(budget int) bool {
	return budget >= 0 && r.BudgetLeft != budget
}

// PageCost returns the token cost of one page of the document.
func PageCost(lines []string, page, pageSize int, count tokens.Counter) int {
	return tokens.CountLines(pageLines(lines, page, pageSize), count)
}

func pageLines(lines []string, page, pageSize int) []string {
	start := page * pageSize
	if start >= len(lines) {
		return nil
	}
	end := min(start+pageSize, len(lines))
	return lines[start:end]
}

// lastPageIndex returns the index of the final page of the document.
func lastPageIndex(lines []string, pageSize int) int {
	if len(lines) == 0 {
		return 0
	}
	return (len(lines) - 1) / pageSize
}

// Expand grows the seed page range outward until the budget is exhausted.
// seed is a half-open page index range. The seed pages are charged first;
// if they alone exceed the budget, no expansion happens and BudgetLeft is
// returned untouched. With preferAbove false the remaining budget is split
// exactly in half between upward and downward expansion, each direction
// consuming whole pages greedily and independently. With preferAbove true
// the upward direction draws from the entire remaining budget first and
// downward expansion gets whatever is left. A page that would push its
// direction's budget negative is not included and stops that direction
// only.
func Expand(lines []string, seed edit.OffsetRange, pageSize, budget int, count tokens.Counter, preferAbove bool) Result {
	first := seed.Start
	last := seed.EndExclusive - 1
	if last < first {
		last = first
	}

	if budget < 0 {
		return Result{FirstPage: first, LastPage: last, BudgetLeft: budget}
	}

	seedCost := 0
	for p := first; p <= last; p++ {
		seedCost += PageCost(lines, p, pageSize, count)
	}
	if seedCost > budget {
		return Result{FirstPage: first, LastPage: last, BudgetLeft: budget}
	}

	remaining := budget - seedCost
	maxPage := lastPageIndex(lines, pageSize)

	var upLeft, downLeft int
	if preferAbove {
		upLeft = remaining
		first, upLeft = expandUp(lines, first, pageSize, upLeft, count)
		downLeft = upLeft
		last, downLeft = expandDown(lines, last, maxPage, pageSize, downLeft, count)
		return Result{FirstPage: first, LastPage: last, BudgetLeft: downLeft}
	}

	upLeft = remaining / 2
	downLeft = remaining - upLeft
	first, upLeft = expandUp(lines, first, pageSize, upLeft, count)
	last, downLeft = expandDown(lines, last, maxPage, pageSize, downLeft, count)
	return Result{FirstPage: first, LastPage: last, BudgetLeft: upLeft + downLeft}
}

func expandUp(lines []string, first, pageSize, budget int, count tokens.Counter) (int, int) {
	for p := first - 1; p >= 0; p-- {
		cost := PageCost(lines, p, pageSize, count)
		if budget-cost < 0 {
			break
		}
		budget -= cost
		first = p
	}
	return first, budget
}

func expandDown(lines []string, last, maxPage, pageSize, budget int, count tokens.Counter) (int, int) {
	for p := last + 1; p <= maxPage; p++ {
		cost := PageCost(lines, p, pageSize, count)
		if budget-cost < 0 {
			break
		}
		budget -= cost
		last = p
	}
	return last, budget
}

// LineRange converts the included pages to the half-open line range they
// cover, clamped to the document length.
func (r Result) LineRange(lineCount, pageSize int) edit.OffsetRange {
	start := r.FirstPage * pageSize
	end := min((r.LastPage+1)*pageSize, lineCount)
	if start > end {
		start = end
	}
	return edit.NewOffsetRange(start, end)
}
