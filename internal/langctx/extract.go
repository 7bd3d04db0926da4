// Package langctx extracts language context snippets: declarations from
// the current file, ranked by distance from the cursor, for the prompt's
// context section.
package langctx

import (
	"context"
	"fmt"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"xtab/internal/tokens"
	"xtab/pkg/edit"
)

// Query capturing the declarations worth surfacing as context.
var goDeclQuery = []byte(`
	(function_declaration) @decl
	(method_declaration) @decl
	(type_declaration) @decl
	(const_declaration) @decl
	(var_declaration) @decl
`)

// Snippet is one extracted declaration.
type Snippet struct {
	Text     string
	Range    edit.OffsetRange
	Distance int
}

// Extractor parses documents and pulls out declaration snippets. The
// grammar and query are compiled once; Close releases them. An Extractor
// is safe for concurrent use; parses are serialized.
type Extractor struct {
	mu     sync.Mutex
	parser *sitter.Parser
	lang   *sitter.Language
	query  *sitter.Query
}

// NewExtractor creates an extractor for the given grammar and query.
func NewExtractor(lang *sitter.Language, querySrc []byte) (*Extractor, error) {
	query, err := sitter.NewQuery(querySrc, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to compile query: %w", err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	return &Extractor{parser: parser, lang: lang, query: query}, nil
}

// NewGoExtractor creates an extractor for Go source files.
func NewGoExtractor() (*Extractor, error) {
	return NewExtractor(golang.GetLanguage(), goDeclQuery)
}

// Extract parses content and returns declaration snippets ordered by
// distance from the cursor, admitting each in that order while its cost
// fits the remaining budget. The declaration enclosing the cursor is
// skipped; the model already sees it in the clipped current file.
func (x *Extractor) Extract(ctx context.Context, content []byte, cursorOffset, budget int, count tokens.Counter) ([]Snippet, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	tree, err := x.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(x.query, tree.RootNode())

	var snippets []Snippet
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		default:
			match, captureIndex, ok := cursor.NextCapture()
			if !ok {
				return admit(rank(snippets), budget, count), nil
			}

			if len(match.Captures) <= int(captureIndex) {
				continue
			}
			node := match.Captures[captureIndex].Node
			if node == nil {
				continue
			}

			r := edit.NewOffsetRange(int(node.StartByte()), int(node.EndByte()))
			if r.Contains(cursorOffset) || (cursorOffset == r.EndExclusive && !r.IsEmpty()) {
				continue
			}
			snippets = append(snippets, Snippet{
				Text:     node.Content(content),
				Range:    r,
				Distance: distance(r, cursorOffset),
			})
		}
	}
}

// ExtractAt is Extract with a 0-based line/column cursor instead of a
// byte offset. The column is clamped to its line.
func (x *Extractor) ExtractAt(ctx context.Context, content string, line, column, budget int, count tokens.Counter) ([]Snippet, error) {
	index := edit.NewLineIndex(content)
	start := index.LineStart(line + 1)
	end := len(content)
	if line+1 < index.LineCount() {
		end = index.LineStart(line+2) - 1
	}
	offset := min(start+max(column, 0), end)
	return x.Extract(ctx, []byte(content), offset, budget, count)
}

// Close releases the parser and query.
func (x *Extractor) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.query != nil {
		x.query.Close()
		x.query = nil
	}
	if x.parser != nil {
		x.parser.Close()
		x.parser = nil
	}
	return nil
}

// distance is the gap in bytes between the cursor and the nearest end of
// the range, zero when the cursor is inside it.
func distance(r edit.OffsetRange, cursorOffset int) int {
	if cursorOffset < r.Start {
		return r.Start - cursorOffset
	}
	if cursorOffset > r.EndExclusive {
		return cursorOffset - r.EndExclusive
	}
	return 0
}

// rank orders snippets nearest-first, breaking distance ties by document
// position so the output is deterministic.
func rank(snippets []Snippet) []Snippet {
	sort.SliceStable(snippets, func(i, j int) bool {
		if snippets[i].Distance != snippets[j].Distance {
			return snippets[i].Distance < snippets[j].Distance
		}
		return snippets[i].Range.Start < snippets[j].Range.Start
	})
	return snippets
}

// admit keeps snippets in rank order while their cost fits the budget.
// A snippet that does not fit is skipped, not terminal; a farther but
// cheaper declaration may still fit.
func admit(snippets []Snippet, budget int, count tokens.Counter) []Snippet {
	var kept []Snippet
	left := budget
	for _, s := range snippets {
		cost := tokens.CountLines(edit.SplitLines(s.Text), count)
		if cost > left {
			continue
		}
		left -= cost
		kept = append(kept, s)
	}
	return kept
}
