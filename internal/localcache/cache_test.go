// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package localcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/reelcraft-tui/internal/result"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewStoreWithDir failed: %v", err)
	}
	return store
}

func testEntries() []result.Entry {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []result.Entry{
		{
			ID:        "local-1748779200000-ab12cd34",
			Title:     "開場 hook 三連發",
			Content:   "【開場】\n直接點出痛點...",
			Category:  result.CategoryScript,
			CreatedAt: now,
			Confirmed: false,
		},
		{
			ID:        "srv-42",
			Title:     "兩週檔期規劃",
			Content:   "第1天：自我介紹\n第2天：常見迷思",
			Category:  result.CategoryPlanning,
			CreatedAt: now.Add(-time.Hour),
			Confirmed: true,
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	entries := testEntries()

	store.Save("user-1", entries, true)

	loaded := store.Load("user-1")
	if len(loaded) != 2 {
		t.Fatalf("loaded %d entries, want 2", len(loaded))
	}
	if loaded[0].ID != entries[0].ID {
		t.Errorf("id = %q, want %q", loaded[0].ID, entries[0].ID)
	}
	if loaded[0].Category != result.CategoryScript {
		t.Errorf("category = %q", loaded[0].Category)
	}
	if !loaded[0].CreatedAt.Equal(entries[0].CreatedAt) {
		t.Errorf("created at = %v, want %v", loaded[0].CreatedAt, entries[0].CreatedAt)
	}
	if loaded[1].Confirmed != true {
		t.Error("confirmed flag lost")
	}
}

func TestSaveFiltersConfirmed(t *testing.T) {
	store := newTestStore(t)

	store.Save("user-1", testEntries(), false)

	loaded := store.Load("user-1")
	if len(loaded) != 1 {
		t.Fatalf("loaded %d entries, want 1 (confirmed filtered)", len(loaded))
	}
	if loaded[0].Confirmed {
		t.Error("confirmed entry survived the filter")
	}
}

func TestSaveAllConfirmedEmptiesCache(t *testing.T) {
	store := newTestStore(t)
	store.Save("user-1", testEntries(), true)

	// After the backend confirms everything, a filtered save must leave
	// an empty cache behind, not the stale previous contents.
	entries := testEntries()
	entries[0].Confirm("srv-99")
	store.Save("user-1", entries, false)

	if loaded := store.Load("user-1"); len(loaded) != 0 {
		t.Errorf("loaded %d entries, want 0", len(loaded))
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := newTestStore(t)
	if loaded := store.Load("nobody"); loaded != nil {
		t.Errorf("Load for missing file = %v, want nil", loaded)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	store := newTestStore(t)
	path := store.filePath("user-1")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if loaded := store.Load("user-1"); len(loaded) != 0 {
		t.Errorf("Load of corrupt file = %v, want empty", loaded)
	}
}

func TestLoadSkipsEntriesWithoutID(t *testing.T) {
	store := newTestStore(t)
	path := store.filePath("user-1")
	blob := `[{"id":"","title":"ghost"},{"id":"a","title":"ok","category":"script","created_at":"2025-06-01T12:00:00Z"}]`
	if err := os.WriteFile(path, []byte(blob), 0600); err != nil {
		t.Fatal(err)
	}

	loaded := store.Load("user-1")
	if len(loaded) != 1 || loaded[0].ID != "a" {
		t.Errorf("loaded = %+v, want single entry a", loaded)
	}
}

func TestGuestNeverPersisted(t *testing.T) {
	store := newTestStore(t)

	store.Save("", testEntries(), true)

	files, err := os.ReadDir(store.BaseDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("guest save created %d files, want 0", len(files))
	}
	if loaded := store.Load(""); loaded != nil {
		t.Errorf("guest load = %v, want nil", loaded)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	store := newTestStore(t)
	store.Save("alice", testEntries()[:1], true)

	if loaded := store.Load("bob"); len(loaded) != 0 {
		t.Errorf("bob sees alice's cache: %v", loaded)
	}
}

func TestUserIDSanitizedInFilename(t *testing.T) {
	store := newTestStore(t)
	store.Save("../../../etc/passwd", testEntries()[:1], true)

	files, err := os.ReadDir(store.BaseDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1 inside BaseDir", len(files))
	}
	if filepath.Dir(filepath.Join(store.BaseDir, files[0].Name())) != store.BaseDir {
		t.Errorf("cache escaped BaseDir: %q", files[0].Name())
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	store.Save("user-1", testEntries(), true)

	store.Clear("user-1")

	if loaded := store.Load("user-1"); len(loaded) != 0 {
		t.Errorf("cache survived Clear: %v", loaded)
	}
	// Clearing twice must be harmless.
	store.Clear("user-1")
}
