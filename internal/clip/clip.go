// Package clip trims the active document around its edit window so the
// result fits a token budget. The edit window itself is never truncated:
// when even the window alone does not fit, clipping fails with
// ErrOutOfBudget and the caller decides whether to omit the document.
package clip

import (
	"fmt"

	"xtab/internal/paging"
	"xtab/internal/tokens"
	"xtab/pkg/edit"
)

// ErrOutOfBudget reports that the edit window alone exceeds the configured
// token budget. This is an expected outcome, not a defect; callers handle
// it by omitting or minimizing the document.
var ErrOutOfBudget = fmt.Errorf("clip: edit window exceeds token budget")

// Options configures clipping of the active document.
type Options struct {
	MaxTokens   int
	PageSize    int
	PreferAbove bool // spend surrounding budget above the window first

	// CursorMarker, when non-empty, is spliced into the cursor position
	// inside the edit window.
	CursorMarker string
	CursorLine   int // 0-based
	CursorColumn int // 0-based byte column
}

// Result is the clipped document.
type Result struct {
	Lines     []string         // spliced lines, window verbatim
	KeptLines edit.OffsetRange // half-open 0-based line range kept
	Truncated bool             // some document lines were dropped
}

// Clip keeps the edit window (a half-open 0-based line range) verbatim and
// expands page-aligned context around it under opts.MaxTokens. The window
// cost is reserved first; the page expander then works against what is
// left.
func Clip(lines []string, window edit.OffsetRange, opts Options, count tokens.Counter) (Result, error) {
	if len(lines) == 0 {
		return Result{Lines: []string{}, KeptLines: edit.EmptyRange(0)}, nil
	}
	if window.Start < 0 || window.EndExclusive > len(lines) {
		panic(fmt.Sprintf("clip: window %s outside document of %d lines", window, len(lines)))
	}

	windowLines := markCursor(lines[window.Start:window.EndExclusive], window, opts)
	windowCost := tokens.CountLines(windowLines, count)
	if windowCost > opts.MaxTokens {
		return Result{}, ErrOutOfBudget
	}

	seed := edit.PagesCovering(window, opts.PageSize)
	res := paging.Expand(lines, seed, opts.PageSize, opts.MaxTokens-windowCost, count, opts.PreferAbove)

	kept := window
	if res.Fit(opts.MaxTokens - windowCost) {
		kept = res.LineRange(len(lines), opts.PageSize).Union(window)
	}

	spliced := make([]string, 0, kept.Len())
	spliced = append(spliced, lines[kept.Start:window.Start]...)
	spliced = append(spliced, windowLines...)
	spliced = append(spliced, lines[window.EndExclusive:kept.EndExclusive]...)

	return Result{
		Lines:     spliced,
		KeptLines: kept,
		Truncated: kept.Len() < len(lines),
	}, nil
}

// markCursor injects the cursor marker into its line within the window.
// Lines outside the window, or an empty marker, leave the slice untouched.
func markCursor(windowLines []string, window edit.OffsetRange, opts Options) []string {
	if opts.CursorMarker == "" || !window.Contains(opts.CursorLine) {
		return windowLines
	}
	marked := make([]string, len(windowLines))
	copy(marked, windowLines)

	i := opts.CursorLine - window.Start
	line := marked[i]
	col := min(max(opts.CursorColumn, 0), len(line))
	marked[i] = line[:col] + opts.CursorMarker + line[col:]
	return marked
}
