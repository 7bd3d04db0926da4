package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"xtab/internal/config"
	"xtab/internal/lint"
	"xtab/internal/prompt"
	"xtab/internal/recent"
)

func TestParseEmptyKeepsDefaults(t *testing.T) {
	opts, err := config.Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := prompt.DefaultOptions()
	if opts.PageSize != want.PageSize || opts.Strategy != want.Strategy ||
		opts.CursorMarker != want.CursorMarker || opts.Lint.MaxLints != want.Lint.MaxLints {
		t.Errorf("empty config changed defaults: %+v", opts)
	}
}

func TestParseOverridesSelectedKeys(t *testing.T) {
	doc := []byte(`
max_tokens_current_file: 4096
page_size: 25
strategy: top-to-bottom
line_numbers: with-space
include_viewed_files: true
cursor_marker: ""
lint:
  warnings: all
  show_code: span-surrounding
  max_lints: 3
`)
	opts, err := config.Parse(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if opts.MaxTokensCurrentFile != 4096 {
		t.Errorf("max_tokens_current_file = %d", opts.MaxTokensCurrentFile)
	}
	if opts.PageSize != 25 {
		t.Errorf("page_size = %d", opts.PageSize)
	}
	if opts.Strategy != recent.TopToBottom {
		t.Errorf("strategy = %v", opts.Strategy)
	}
	if opts.LineNumbers != prompt.LineNumbersWithSpace {
		t.Errorf("line_numbers = %v", opts.LineNumbers)
	}
	if !opts.IncludeViewedFiles {
		t.Error("include_viewed_files not applied")
	}
	if opts.CursorMarker != "" {
		t.Errorf("explicit empty cursor_marker not applied: %q", opts.CursorMarker)
	}
	if opts.Lint.Warnings != lint.All || opts.Lint.ShowCode != lint.CodeSpanSurrounding || opts.Lint.MaxLints != 3 {
		t.Errorf("lint options = %+v", opts.Lint)
	}

	// Untouched keys keep their defaults.
	if opts.MaxTokensRecentFiles != prompt.DefaultOptions().MaxTokensRecentFiles {
		t.Errorf("max_tokens_recent_files changed: %d", opts.MaxTokensRecentFiles)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	bad := [][]byte{
		[]byte("strategy: newest-wins"),
		[]byte("line_numbers: fancy"),
		[]byte("lint:\n  warnings: sometimes"),
		[]byte("page_size: 0"),
		[]byte("max_tokens_current_file: -1"),
		[]byte("{not yaml"),
	}
	for _, doc := range bad {
		if _, err := config.Parse(doc); err == nil {
			t.Errorf("config %q parsed without error", doc)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xtab.yaml")
	if err := os.WriteFile(path, []byte("page_size: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.PageSize != 7 {
		t.Errorf("page_size = %d, want 7", opts.PageSize)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("loading a missing file should fail")
	}
}
