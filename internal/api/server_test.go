package api_test

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xtab/internal/api"
	"xtab/internal/history"
	"xtab/internal/langctx"
	"xtab/internal/prompt"
	"xtab/pkg/edit"
)

func startServer(t *testing.T) (*rpc.Client, *history.Store) {
	t.Helper()

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	extractor, err := langctx.NewGoExtractor()
	if err != nil {
		t.Fatalf("failed to create extractor: %v", err)
	}
	t.Cleanup(func() { extractor.Close() })

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go api.Serve(listener, api.NewPrompt(store, extractor, prompt.DefaultOptions()))

	conn, err := net.Dial("tcp", listener.Addr().String())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	client := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	t.Cleanup(func() { client.Close() })

	return client, store
}

func TestRenderOverRPC(t *testing.T) {
	client, store := startServer(t)

	e := history.NewEditEntry("other.go", "package other\n",
		edit.Replace(edit.NewOffsetRange(13, 13), "\nvar x = 1"),
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if err := store.Append(e); err != nil {
		t.Fatalf("append: %v", err)
	}

	params := api.RenderParams{
		DocID:      "main.go",
		Content:    "package main\n\nfunc main() {}\n",
		CursorLine: 2,
	}
	var result api.RenderResult
	if err := client.Call("Prompt.Render", &params, &result); err != nil {
		t.Fatalf("RPC call failed: %v", err)
	}

	if result.Error != "" {
		t.Fatalf("render error: %s", result.Error)
	}
	if !strings.Contains(result.Prompt, "func main() {}") {
		t.Errorf("prompt misses the cursor line:\n%s", result.Prompt)
	}
	if len(result.IncludedDocs) != 1 || result.IncludedDocs[0] != "other.go" {
		t.Errorf("included docs = %v, want [other.go]", result.IncludedDocs)
	}
}

func TestRenderIncludesLanguageContext(t *testing.T) {
	client, _ := startServer(t)

	params := api.RenderParams{
		DocID:        "main.go",
		Content:      "package main\n\nfunc helper() int { return 1 }\n\nfunc main() {\n}\n",
		CursorLine:   4,
		CursorColumn: 13,
	}
	var result api.RenderResult
	if err := client.Call("Prompt.Render", &params, &result); err != nil {
		t.Fatalf("RPC call failed: %v", err)
	}
	if result.Error != "" {
		t.Fatalf("render error: %s", result.Error)
	}

	start := strings.Index(result.Prompt, "<language-context>")
	if start < 0 {
		t.Fatalf("prompt misses the language context section:\n%s", result.Prompt)
	}
	section := result.Prompt[start:strings.Index(result.Prompt, "</language-context>")]
	if !strings.Contains(section, "func helper() int { return 1 }") {
		t.Errorf("language context misses the helper declaration:\n%s", result.Prompt)
	}
}

func TestRecentDocsOverRPC(t *testing.T) {
	client, store := startServer(t)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, doc := range []string{"a.go", "b.go", "a.go"} {
		e := history.NewEditEntry(doc, "x", edit.Replace(edit.EmptyRange(0), "y"), t0.Add(time.Duration(i)*time.Second))
		if err := store.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	var result api.RecentDocsResult
	if err := client.Call("Prompt.RecentDocs", &api.RecentDocsParams{}, &result); err != nil {
		t.Fatalf("RPC call failed: %v", err)
	}

	want := []string{"a.go", "b.go"}
	if len(result.Docs) != 2 || result.Docs[0] != want[0] || result.Docs[1] != want[1] {
		t.Errorf("docs = %v, want %v", result.Docs, want)
	}
}
