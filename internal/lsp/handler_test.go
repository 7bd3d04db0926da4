package lsp

import (
	"path/filepath"
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"xtab/internal/docs"
	"xtab/internal/history"
	"xtab/internal/langctx"
	"xtab/internal/prompt"
)

func newTestServer(t *testing.T) *LanguageServer {
	t.Helper()

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	recorder := history.NewRecorder(store, 16)
	recorder.Run()

	extractor, err := langctx.NewGoExtractor()
	if err != nil {
		t.Fatalf("failed to create extractor: %v", err)
	}
	t.Cleanup(func() { extractor.Close() })

	return &LanguageServer{
		docs:        docs.NewManager(),
		store:       store,
		recorder:    recorder,
		extractor:   extractor,
		opts:        prompt.DefaultOptions(),
		diagnostics: make(map[string][]protocol.Diagnostic),
	}
}

func openDoc(t *testing.T, ls *LanguageServer, uri, text string) {
	t.Helper()
	err := ls.textDocumentDidOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: text},
	})
	if err != nil {
		t.Fatalf("didOpen: %v", err)
	}
}

func TestDidChangeTracksContent(t *testing.T) {
	ls := newTestServer(t)
	openDoc(t, ls, "file:///tmp/main.go", "package main\n")

	change := protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{
			Start: protocol.Position{Line: 1, Character: 0},
			End:   protocol.Position{Line: 1, Character: 0},
		},
		Text: "\nfunc main() {}\n",
	}
	err := ls.textDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///tmp/main.go"},
		},
		ContentChanges: []any{change},
	})
	if err != nil {
		t.Fatalf("didChange: %v", err)
	}

	doc, ok := ls.docs.Get("/tmp/main.go")
	if !ok {
		t.Fatal("document not tracked")
	}
	if want := "package main\n\nfunc main() {}\n"; doc.Content() != want {
		t.Errorf("content = %q, want %q", doc.Content(), want)
	}
}

func TestDidChangeRecordsHistory(t *testing.T) {
	ls := newTestServer(t)
	openDoc(t, ls, "file:///tmp/a.go", "one\n")

	whole := protocol.TextDocumentContentChangeEventWhole{Text: "two\n"}
	err := ls.textDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///tmp/a.go"},
		},
		ContentChanges: []any{whole},
	})
	if err != nil {
		t.Fatalf("didChange: %v", err)
	}

	ls.recorder.Close()
	entries, err := ls.store.Recent(0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want open view + edit", len(entries))
	}
	if entries[0].Kind != history.KindViewed || entries[1].Kind != history.KindEdit {
		t.Errorf("entry kinds = %v, %v", entries[0].Kind, entries[1].Kind)
	}
	if got := entries[1].Content(); got != "two\n" {
		t.Errorf("edit entry content = %q, want %q", got, "two\n")
	}
}

func TestExecuteCommandRendersPrompt(t *testing.T) {
	ls := newTestServer(t)
	openDoc(t, ls, "file:///tmp/other.go", "package other\n")
	openDoc(t, ls, "file:///tmp/main.go", "package main\n\nfunc main() {}\n")
	ls.recorder.Close()

	result, err := ls.executeCommand(nil, &protocol.ExecuteCommandParams{
		Command:   CommandRender,
		Arguments: []any{"file:///tmp/main.go", float64(2), float64(5)},
	})
	if err != nil {
		t.Fatalf("executeCommand: %v", err)
	}

	text, ok := result.(string)
	if !ok {
		t.Fatalf("result type %T, want string", result)
	}
	if !strings.Contains(text, "main() {}") {
		t.Errorf("prompt misses the current file:\n%s", text)
	}
}

func TestExecuteCommandIncludesLanguageContext(t *testing.T) {
	ls := newTestServer(t)
	text := "package main\n\nfunc helper() int { return 1 }\n\nfunc main() {\n}\n"
	openDoc(t, ls, "file:///tmp/ctx.go", text)
	ls.recorder.Close()

	// Cursor inside main: helper is a nearby declaration and must show up
	// in the language context section.
	result, err := ls.executeCommand(nil, &protocol.ExecuteCommandParams{
		Command:   CommandRender,
		Arguments: []any{"file:///tmp/ctx.go", float64(4), float64(13)},
	})
	if err != nil {
		t.Fatalf("executeCommand: %v", err)
	}

	out, ok := result.(string)
	if !ok {
		t.Fatalf("result type %T, want string", result)
	}
	start := strings.Index(out, "<language-context>")
	if start < 0 {
		t.Fatalf("prompt misses the language context section:\n%s", out)
	}
	section := out[start:strings.Index(out, "</language-context>")]
	if !strings.Contains(section, "func helper() int { return 1 }") {
		t.Errorf("language context misses the helper declaration:\n%s", out)
	}
}

func TestExecuteCommandRejectsBadArguments(t *testing.T) {
	ls := newTestServer(t)

	cases := []*protocol.ExecuteCommandParams{
		{Command: "unknown.command"},
		{Command: CommandRender, Arguments: []any{"file:///x"}},
		{Command: CommandRender, Arguments: []any{42.0, 1.0, 1.0}},
		{Command: CommandRender, Arguments: []any{"file:///x", "one", 1.0}},
	}
	for i, params := range cases {
		if _, err := ls.executeCommand(nil, params); err == nil {
			t.Errorf("case %d did not fail", i)
		}
	}
}

func TestDidCloseForgetsDocument(t *testing.T) {
	ls := newTestServer(t)
	openDoc(t, ls, "file:///tmp/x.go", "x\n")

	err := ls.textDocumentDidClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///tmp/x.go"},
	})
	if err != nil {
		t.Fatalf("didClose: %v", err)
	}
	if _, ok := ls.docs.Get("/tmp/x.go"); ok {
		t.Error("document still tracked after close")
	}
}
