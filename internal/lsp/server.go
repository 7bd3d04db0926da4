// Package lsp runs xtab as a language server: it tracks open documents,
// records edit and view events into the history, collects diagnostics
// and serves assembled prompts through workspace/executeCommand.
package lsp

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"xtab/internal/docs"
	"xtab/internal/history"
	"xtab/internal/langctx"
	"xtab/internal/prompt"
)

const lsName = "xtab"

var version = "0.1.0"

// CommandRender is the executeCommand name that assembles a prompt.
const CommandRender = "xtab.render"

// LanguageServer wires the LSP handlers to the document manager and
// history recorder.
type LanguageServer struct {
	handler   *protocol.Handler
	docs      *docs.Manager
	store     *history.Store
	recorder  *history.Recorder
	extractor *langctx.Extractor
	opts      prompt.Options

	mu          sync.Mutex
	diagnostics map[string][]protocol.Diagnostic
}

// NewServer creates the stdio LSP server. extractor may be nil to disable
// language context.
func NewServer(store *history.Store, recorder *history.Recorder, extractor *langctx.Extractor, opts prompt.Options) *server.Server {
	ls := &LanguageServer{
		docs:        docs.NewManager(),
		store:       store,
		recorder:    recorder,
		extractor:   extractor,
		opts:        opts,
		diagnostics: make(map[string][]protocol.Diagnostic),
	}

	ls.handler = &protocol.Handler{
		Initialize:              ls.initialize,
		Initialized:             ls.initialized,
		TextDocumentDidOpen:     ls.textDocumentDidOpen,
		TextDocumentDidChange:   ls.textDocumentDidChange,
		TextDocumentDidClose:    ls.textDocumentDidClose,
		WorkspaceExecuteCommand: ls.executeCommand,
		SetTrace:                ls.setTrace,
		Shutdown:                ls.shutdown,
	}

	return server.NewServer(ls.handler, lsName, false)
}

func (ls *LanguageServer) setDiagnostics(docID string, diagnostics []protocol.Diagnostic) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.diagnostics[docID] = diagnostics
}

func (ls *LanguageServer) diagnosticsFor(docID string) []protocol.Diagnostic {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.diagnostics[docID]
}
