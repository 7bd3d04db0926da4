package prompt

import (
	"errors"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"xtab/internal/clip"
	"xtab/internal/history"
	"xtab/internal/langctx"
	"xtab/internal/lint"
	"xtab/internal/recent"
	"xtab/internal/tokens"
	"xtab/pkg/edit"
)

// Input is one assembly request.
type Input struct {
	DocID string
	// Lines is the active document, split without separators.
	Lines []string
	// CursorLine and CursorColumn are 0-based.
	CursorLine   int
	CursorColumn int
	// EditWindow is the half-open 0-based line range that must survive
	// clipping verbatim.
	EditWindow edit.OffsetRange

	History         []history.Entry
	Diagnostics     []protocol.Diagnostic
	LanguageContext []langctx.Snippet
}

// Result carries each assembled block plus the composed prompt text.
type Result struct {
	CurrentFile      string
	CurrentKept      edit.OffsetRange
	CurrentTruncated bool

	RecentFiles  []string
	IncludedDocs []string

	LintBlock   string
	LintCovered []edit.OffsetRange

	LanguageContext string

	Text string
}

// Assemble builds the prompt. It is a pure function of its arguments:
// the same input, options and counter always produce the same result.
// A current file whose edit window alone exceeds its budget is reduced to
// the window; every other block degrades to empty under its own budget.
func Assemble(input Input, opts Options, count tokens.Counter) Result {
	var res Result

	res.CurrentFile, res.CurrentKept, res.CurrentTruncated = assembleCurrent(input, opts, count)

	allocation := recent.Allocate(
		history.Candidates(input.History, input.DocID, history.GroupOptions{
			IncludeViewedFiles: opts.IncludeViewedFiles,
			MaxDocuments:       opts.NDocuments,
		}),
		opts.MaxTokensRecentFiles,
		recent.Options{
			Strategy:          opts.Strategy,
			PageSize:          opts.PageSize,
			MaxFocalSpanLines: opts.MaxFocalSpanLines,
		},
		count,
	)
	res.IncludedDocs = allocation.IncludedDocs
	for _, s := range allocation.Snippets {
		res.RecentFiles = append(res.RecentFiles, renderSnippet(s, opts.LineNumbers))
	}

	block := lint.Rank(input.Diagnostics, protocol.Position{
		Line:      uint32(input.CursorLine),
		Character: uint32(input.CursorColumn),
	}, input.Lines, opts.Lint)
	res.LintBlock = block.Text
	res.LintCovered = block.CoveredLines

	res.LanguageContext = renderLanguageContext(input.LanguageContext)

	res.Text = compose(res, opts)
	return res
}

// assembleCurrent clips the active document around its edit window. When
// even the window overruns the budget the window is kept bare; the model
// must always see what is being edited.
func assembleCurrent(input Input, opts Options, count tokens.Counter) (string, edit.OffsetRange, bool) {
	clipped, err := clip.Clip(input.Lines, input.EditWindow, clip.Options{
		MaxTokens:    opts.MaxTokensCurrentFile,
		PageSize:     opts.PageSize,
		PreferAbove:  opts.PreferAboveCursor,
		CursorMarker: opts.CursorMarker,
		CursorLine:   input.CursorLine,
		CursorColumn: input.CursorColumn,
	}, count)
	if errors.Is(err, clip.ErrOutOfBudget) {
		window := input.Lines[input.EditWindow.Start:input.EditWindow.EndExclusive]
		return renderLines(window, input.EditWindow.Start, opts.LineNumbers), input.EditWindow, true
	}

	return renderLines(clipped.Lines, clipped.KeptLines.Start, opts.LineNumbers),
		clipped.KeptLines, clipped.Truncated
}

func renderLanguageContext(snippets []langctx.Snippet) string {
	if len(snippets) == 0 {
		return ""
	}
	parts := make([]string, len(snippets))
	for i, s := range snippets {
		parts[i] = s.Text
	}
	return strings.Join(parts, "\n\n")
}

// compose stitches the blocks into the final prompt text. Empty blocks
// are omitted entirely, tags included.
func compose(res Result, opts Options) string {
	var sections []string

	if res.LanguageContext != "" {
		sections = append(sections, wrapTag(opts.LanguageContextTag, res.LanguageContext))
	}
	if len(res.RecentFiles) > 0 {
		sections = append(sections, wrapTag(opts.RecentFileTag, strings.Join(res.RecentFiles, "\n\n")))
	}
	if res.LintBlock != "" {
		sections = append(sections, res.LintBlock)
	}
	if res.CurrentFile != "" {
		sections = append(sections, wrapTag(opts.CurrentFileTag, res.CurrentFile))
	}

	return strings.Join(sections, "\n\n")
}
