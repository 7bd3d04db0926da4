// Package api exposes prompt rendering and history inspection over
// JSON-RPC, for clients that are not LSP editors (shell tooling,
// debugging sessions).
package api

import (
	"context"
	"strings"

	"xtab/internal/history"
	"xtab/internal/langctx"
	"xtab/internal/prompt"
	"xtab/internal/tokens"
	"xtab/pkg/edit"
)

// Prompt is the RPC service handler.
type Prompt struct {
	store     *history.Store
	extractor *langctx.Extractor
	opts      prompt.Options
}

// NewPrompt creates the service over an open history store. extractor may
// be nil to disable language context.
func NewPrompt(store *history.Store, extractor *langctx.Extractor, opts prompt.Options) *Prompt {
	return &Prompt{store: store, extractor: extractor, opts: opts}
}

// RenderParams identifies the document and cursor to assemble a prompt
// for. Content is the current document text.
type RenderParams struct {
	DocID        string `json:"docId"`
	Content      string `json:"content"`
	CursorLine   int    `json:"cursorLine"`
	CursorColumn int    `json:"cursorColumn"`
}

// RenderResult carries the assembled prompt.
type RenderResult struct {
	Prompt       string   `json:"prompt"`
	IncludedDocs []string `json:"includedDocs"`
	Truncated    bool     `json:"truncated"`
	Error        string   `json:"error,omitempty"`
}

// Render assembles a prompt for the given document and cursor, pulling
// recent-file candidates from the history store.
func (p *Prompt) Render(params *RenderParams, result *RenderResult) error {
	entries, err := p.store.Recent(0)
	if err != nil {
		result.Error = err.Error()
		return nil
	}

	lines := edit.SplitLines(params.Content)
	cursorLine := min(max(params.CursorLine, 0), len(lines)-1)

	res := prompt.Assemble(prompt.Input{
		DocID:           params.DocID,
		Lines:           lines,
		CursorLine:      cursorLine,
		CursorColumn:    params.CursorColumn,
		EditWindow:      edit.NewOffsetRange(cursorLine, cursorLine+1),
		History:         entries,
		LanguageContext: p.languageContext(params.DocID, params.Content, cursorLine, params.CursorColumn),
	}, p.opts, tokens.Estimate)

	result.Prompt = res.Text
	result.IncludedDocs = res.IncludedDocs
	result.Truncated = res.CurrentTruncated
	return nil
}

// languageContext extracts surrounding declarations for Go documents,
// degrading to none on extraction failure.
func (p *Prompt) languageContext(docID, content string, line, column int) []langctx.Snippet {
	if p.extractor == nil || !strings.HasSuffix(docID, ".go") {
		return nil
	}
	snippets, err := p.extractor.ExtractAt(context.Background(), content, line, column,
		p.opts.MaxTokensLanguageContext, tokens.Estimate)
	if err != nil {
		log.Warningf("language context extraction failed for %s: %v", docID, err)
		return nil
	}
	return snippets
}

// RecentDocsParams limits how much history is scanned; zero means all.
type RecentDocsParams struct {
	Limit int `json:"limit"`
}

// RecentDocsResult lists distinct documents, most recently touched first.
type RecentDocsResult struct {
	Docs  []string `json:"docs"`
	Error string   `json:"error,omitempty"`
}

// RecentDocs returns the distinct documents in the history.
func (p *Prompt) RecentDocs(params *RecentDocsParams, result *RecentDocsResult) error {
	entries, err := p.store.Recent(params.Limit)
	if err != nil {
		result.Error = err.Error()
		return nil
	}

	seen := make(map[string]struct{})
	for i := len(entries) - 1; i >= 0; i-- {
		id := entries[i].DocID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result.Docs = append(result.Docs, id)
	}
	return nil
}
