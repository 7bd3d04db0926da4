package history_test

import (
	"path/filepath"
	"testing"
	"time"

	"xtab/internal/history"
	"xtab/pkg/edit"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAppendAndRecent(t *testing.T) {
	store := openStore(t)

	first := history.NewEditEntry("a.go", "hello", edit.Replace(edit.NewOffsetRange(0, 5), "world"), t0)
	second := history.NewViewedEntry("b.go", "content", []edit.OffsetRange{edit.NewOffsetRange(0, 7)}, t0.Add(time.Second))

	if err := store.Append(first); err != nil {
		t.Fatalf("append edit: %v", err)
	}
	if err := store.Append(second); err != nil {
		t.Fatalf("append view: %v", err)
	}

	entries, err := store.Recent(0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	// Storage order: most-recent-last.
	if entries[0].DocID != "a.go" || entries[1].DocID != "b.go" {
		t.Errorf("order = [%s, %s], want [a.go, b.go]", entries[0].DocID, entries[1].DocID)
	}
	if got := entries[0].Content(); got != "world" {
		t.Errorf("edit content = %q, want world", got)
	}
	if got := entries[1].Content(); got != "content" {
		t.Errorf("view content = %q, want content", got)
	}
	if len(entries[1].VisibleRanges) != 1 || entries[1].VisibleRanges[0] != edit.NewOffsetRange(0, 7) {
		t.Errorf("visible ranges did not survive the round trip: %v", entries[1].VisibleRanges)
	}
	if !entries[0].Time.Equal(t0) {
		t.Errorf("time = %v, want %v", entries[0].Time, t0)
	}
}

func TestStoreRecentLimit(t *testing.T) {
	store := openStore(t)

	for i, doc := range []string{"one.go", "two.go", "three.go"} {
		e := history.NewEditEntry(doc, "x", edit.Replace(edit.EmptyRange(0), "y"), t0.Add(time.Duration(i)*time.Second))
		if err := store.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := store.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// The two newest, still most-recent-last.
	if entries[0].DocID != "two.go" || entries[1].DocID != "three.go" {
		t.Errorf("order = [%s, %s], want [two.go, three.go]", entries[0].DocID, entries[1].DocID)
	}
}

func TestStoreDeduplicatesRepeatedViews(t *testing.T) {
	store := openStore(t)

	view := history.NewViewedEntry("doc.go", "same content", nil, t0)
	for i := 0; i < 3; i++ {
		view.Time = t0.Add(time.Duration(i) * time.Second)
		if err := store.Append(view); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := store.Recent(0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1 after deduplication", len(entries))
	}

	// A changed snapshot is a new entry again.
	changed := history.NewViewedEntry("doc.go", "new content", nil, t0.Add(time.Minute))
	if err := store.Append(changed); err != nil {
		t.Fatalf("append changed: %v", err)
	}
	entries, err = store.Recent(0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2 after content change", len(entries))
	}
}

func TestStorePruneBefore(t *testing.T) {
	store := openStore(t)

	old := history.NewEditEntry("old.go", "x", edit.Replace(edit.EmptyRange(0), "y"), t0)
	fresh := history.NewEditEntry("fresh.go", "x", edit.Replace(edit.EmptyRange(0), "y"), t0.Add(time.Hour))
	if err := store.Append(old); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(fresh); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := store.PruneBefore(t0.Add(30 * time.Minute)); err != nil {
		t.Fatalf("prune: %v", err)
	}

	entries, err := store.Recent(0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 || entries[0].DocID != "fresh.go" {
		t.Errorf("after prune: %v, want only fresh.go", ids2(entries))
	}
}

func ids2(entries []history.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.DocID
	}
	return out
}
