// Package prompt assembles the model prompt: the clipped current file,
// budgeted recent-file snippets, a ranked lint block and language context,
// each under its own token budget.
package prompt

import (
	"xtab/internal/lint"
	"xtab/internal/recent"
)

// LineNumberMode selects how line numbers are rendered in front of
// document lines.
type LineNumberMode int

const (
	// LineNumbersNone renders lines verbatim.
	LineNumbersNone LineNumberMode = iota
	// LineNumbersWithSpace renders "12| content" with a space after the bar.
	LineNumbersWithSpace
	// LineNumbersWithoutSpace renders "12|content".
	LineNumbersWithoutSpace
)

// Options configures prompt assembly.
type Options struct {
	MaxTokensCurrentFile     int
	MaxTokensRecentFiles     int
	MaxTokensLanguageContext int
	PageSize                 int

	Strategy           recent.Strategy
	IncludeViewedFiles bool
	NDocuments         int
	MaxFocalSpanLines  int

	LineNumbers       LineNumberMode
	PreferAboveCursor bool
	CursorMarker      string

	CurrentFileTag     string
	RecentFileTag      string
	LanguageContextTag string

	Lint lint.Options
}

// DefaultOptions returns the assembly defaults.
func DefaultOptions() Options {
	return Options{
		MaxTokensCurrentFile:     2048,
		MaxTokensRecentFiles:     1024,
		MaxTokensLanguageContext: 512,
		PageSize:                 10,
		Strategy:                 recent.Proportional,
		IncludeViewedFiles:       false,
		NDocuments:               5,
		MaxFocalSpanLines:        50,
		LineNumbers:              LineNumbersNone,
		CursorMarker:             "<|cursor|>",
		CurrentFileTag:           "current-file",
		RecentFileTag:            "recently-viewed-code-snippets",
		LanguageContextTag:       "language-context",
		Lint: lint.Options{
			TagName:         "lint-errors",
			Warnings:        lint.WarningsIfNoErrors,
			ShowCode:        lint.NoCode,
			MaxLints:        5,
			MaxLineDistance: 20,
		},
	}
}
