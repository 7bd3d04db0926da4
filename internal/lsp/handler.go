package lsp

import (
	con "context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"xtab/internal/docs"
	"xtab/internal/history"
	"xtab/internal/langctx"
	"xtab/internal/prompt"
	"xtab/internal/tokens"
	"xtab/internal/utils"
	"xtab/pkg/edit"
)

var log = commonlog.GetLogger("lsp")

func (ls *LanguageServer) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{CommandRender},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func (ls *LanguageServer) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Notice("server initialized")
	return nil
}

func (ls *LanguageServer) shutdown(context *glsp.Context) error {
	log.Notice("server shutting down")
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *LanguageServer) setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LanguageServer) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	id := utils.URIToDocumentID(params.TextDocument.URI)
	text := params.TextDocument.Text

	if _, err := ls.docs.Open(id, text); err != nil {
		return err
	}

	ls.recorder.Record(history.NewViewedEntry(id, text,
		[]edit.OffsetRange{edit.NewOffsetRange(0, len(text))}, time.Now()))
	return nil
}

func (ls *LanguageServer) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	id := utils.URIToDocumentID(params.TextDocument.URI)
	doc, ok := ls.docs.Get(id)
	if !ok {
		return fmt.Errorf("change for unopened document: %s", id)
	}

	for _, raw := range params.ContentChanges {
		var change docs.Change
		switch c := raw.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			change = docs.Change{NewText: c.Text}
		case protocol.TextDocumentContentChangeEvent:
			change = docs.Change{NewText: c.Text}
			if c.Range != nil {
				change.Range = &docs.Range{
					Start: docs.Position{Line: c.Range.Start.Line, Character: c.Range.Start.Character},
					End:   docs.Position{Line: c.Range.End.Line, Character: c.Range.End.Character},
				}
			}
		default:
			return fmt.Errorf("unexpected change event type %T", raw)
		}

		// Changes are applied one at a time so each history entry gets the
		// base text its edit actually applies to.
		base, edits := doc.ApplyChanges([]docs.Change{change})
		for _, e := range edits {
			ls.recorder.Record(history.NewEditEntry(id, base, e, time.Now()))
		}
	}
	return nil
}

func (ls *LanguageServer) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	id := utils.URIToDocumentID(params.TextDocument.URI)
	return ls.docs.Close(id)
}

// executeCommand serves prompt assembly. Arguments: document URI, cursor
// line, cursor character, optionally the client's current diagnostics for
// the document.
func (ls *LanguageServer) executeCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	if params.Command != CommandRender {
		return nil, fmt.Errorf("unknown command: %s", params.Command)
	}
	if len(params.Arguments) < 3 {
		return nil, fmt.Errorf("%s expects uri, line, character", CommandRender)
	}

	uri, ok := params.Arguments[0].(string)
	if !ok {
		return nil, fmt.Errorf("%s: uri must be a string", CommandRender)
	}
	line, ok := asInt(params.Arguments[1])
	if !ok {
		return nil, fmt.Errorf("%s: line must be a number", CommandRender)
	}
	character, ok := asInt(params.Arguments[2])
	if !ok {
		return nil, fmt.Errorf("%s: character must be a number", CommandRender)
	}

	id := utils.URIToDocumentID(uri)
	if len(params.Arguments) > 3 {
		diagnostics, err := decodeDiagnostics(params.Arguments[3])
		if err != nil {
			return nil, err
		}
		ls.setDiagnostics(id, diagnostics)
	}

	doc, ok := ls.docs.Get(id)
	if !ok {
		return nil, fmt.Errorf("document not open: %s", id)
	}

	entries, err := ls.store.Recent(0)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	content := doc.Content()
	lines := edit.SplitLines(content)
	cursorLine := min(max(line, 0), len(lines)-1)

	res := prompt.Assemble(prompt.Input{
		DocID:           id,
		Lines:           lines,
		CursorLine:      cursorLine,
		CursorColumn:    character,
		EditWindow:      edit.NewOffsetRange(cursorLine, cursorLine+1),
		History:         entries,
		Diagnostics:     ls.diagnosticsFor(id),
		LanguageContext: ls.languageContext(id, content, cursorLine, character),
	}, ls.opts, tokens.Estimate)

	return res.Text, nil
}

// languageContext extracts surrounding declarations for Go documents.
// Extraction failure degrades to no context; the prompt is still useful
// without it.
func (ls *LanguageServer) languageContext(id, content string, line, column int) []langctx.Snippet {
	if ls.extractor == nil || !strings.HasSuffix(id, ".go") {
		return nil
	}
	snippets, err := ls.extractor.ExtractAt(con.Background(), content, line, column,
		ls.opts.MaxTokensLanguageContext, tokens.Estimate)
	if err != nil {
		log.Warningf("language context extraction failed for %s: %v", id, err)
		return nil
	}
	return snippets
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// decodeDiagnostics converts the raw JSON argument back into protocol
// diagnostics via a marshal round trip.
func decodeDiagnostics(raw any) ([]protocol.Diagnostic, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode diagnostics argument: %w", err)
	}
	var diagnostics []protocol.Diagnostic
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, fmt.Errorf("failed to decode diagnostics argument: %w", err)
	}
	return diagnostics, nil
}
