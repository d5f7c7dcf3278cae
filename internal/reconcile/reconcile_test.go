// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reconcile

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jeranaias/reelcraft-tui/internal/localcache"
	"github.com/jeranaias/reelcraft-tui/internal/remote"
	"github.com/jeranaias/reelcraft-tui/internal/result"
)

// fakeLister serves a fixed record list or error.
type fakeLister struct {
	records []remote.Record
	err     error
	calls   int
}

func (f *fakeLister) List(ctx context.Context, userID string) ([]remote.Record, error) {
	f.calls++
	return f.records, f.err
}

func newTestCache(t *testing.T) *localcache.Store {
	t.Helper()
	store, err := localcache.NewStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFromRecordCategoryFallbackChain(t *testing.T) {
	tests := []struct {
		name   string
		record remote.Record
		want   result.Category
	}{
		{
			name:   "explicit category metadata wins",
			record: remote.Record{ID: "1", Category: "topics", Type: "plan"},
			want:   result.CategoryTopics,
		},
		{
			name:   "type table when category absent",
			record: remote.Record{ID: "2", Type: "copywriting"},
			want:   result.CategoryScript,
		},
		{
			name:   "plan type maps to planning",
			record: remote.Record{ID: "3", Type: "plan"},
			want:   result.CategoryPlanning,
		},
		{
			name:   "persona type maps to positioning",
			record: remote.Record{ID: "4", Type: "persona"},
			want:   result.CategoryPositioning,
		},
		{
			name:   "content heuristic when metadata absent",
			record: remote.Record{ID: "5", Content: "第1天：開箱\n第2天：教學"},
			want:   result.CategoryPlanning,
		},
		{
			name:   "default positioning for bare records",
			record: remote.Record{ID: "6", Content: "一些內容"},
			want:   result.CategoryPositioning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := FromRecord(tt.record)
			if entry.Category != tt.want {
				t.Errorf("category = %q, want %q", entry.Category, tt.want)
			}
			if !entry.Confirmed {
				t.Error("remote records must map to confirmed entries")
			}
		})
	}
}

func TestMergeDedupesAndSorts(t *testing.T) {
	remoteEntries := []result.Entry{
		{ID: "srv-1", CreatedAt: baseTime.Add(-2 * time.Hour), Confirmed: true},
		{ID: "local-1", CreatedAt: baseTime.Add(-1 * time.Hour), Confirmed: true},
	}
	localEntries := []result.Entry{
		{ID: "local-1", CreatedAt: baseTime.Add(-1 * time.Hour)},
		{ID: "local-2", CreatedAt: baseTime},
	}

	merged := Merge(remoteEntries, localEntries)

	if len(merged) != 3 {
		t.Fatalf("merged %d entries, want 3", len(merged))
	}
	// Newest first.
	if merged[0].ID != "local-2" || merged[1].ID != "local-1" || merged[2].ID != "srv-1" {
		t.Errorf("order = %s, %s, %s", merged[0].ID, merged[1].ID, merged[2].ID)
	}
	// The remote copy wins the id collision.
	if !merged[1].Confirmed {
		t.Error("remote entry lost the id collision to the local copy")
	}
}

func TestMergeNoDuplicateIDs(t *testing.T) {
	remoteEntries := []result.Entry{
		{ID: "a", CreatedAt: baseTime},
		{ID: "a", CreatedAt: baseTime.Add(time.Minute)},
		{ID: "b", CreatedAt: baseTime},
	}
	localEntries := []result.Entry{
		{ID: "b", CreatedAt: baseTime},
		{ID: "c", CreatedAt: baseTime},
		{ID: "c", CreatedAt: baseTime},
	}

	merged := Merge(remoteEntries, localEntries)

	seen := map[string]bool{}
	for _, e := range merged {
		if seen[e.ID] {
			t.Errorf("duplicate id %q in merged output", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestMergeIdempotent(t *testing.T) {
	remoteEntries := []result.Entry{
		{ID: "srv-1", CreatedAt: baseTime, Confirmed: true},
		{ID: "srv-2", CreatedAt: baseTime.Add(-time.Hour), Confirmed: true},
	}
	localEntries := []result.Entry{
		{ID: "local-1", CreatedAt: baseTime.Add(-30 * time.Minute)},
	}

	once := Merge(remoteEntries, localEntries)
	twice := Merge(remoteEntries, once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\n once = %+v\ntwice = %+v", once, twice)
	}
}

func TestMergeTimestampTieBreak(t *testing.T) {
	entries := []result.Entry{
		{ID: "b", CreatedAt: baseTime},
		{ID: "a", CreatedAt: baseTime},
	}
	merged := Merge(entries, nil)
	if merged[0].ID != "a" || merged[1].ID != "b" {
		t.Errorf("tie-break order = %s, %s; want a, b", merged[0].ID, merged[1].ID)
	}
}

func TestRefreshCacheThenConfirm(t *testing.T) {
	cache := newTestCache(t)
	cache.Save("u1", []result.Entry{
		{ID: "local-1", Title: "腳本草稿", Category: result.CategoryScript, CreatedAt: baseTime, Confirmed: false},
	}, false)

	lister := &fakeLister{records: []remote.Record{
		{ID: "local-1", Title: "腳本草稿", Category: "script", CreatedAt: baseTime},
	}}

	merged, err := New(lister, cache).Refresh(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if len(merged) != 1 {
		t.Fatalf("merged %d entries, want exactly 1", len(merged))
	}
	if merged[0].ID != "local-1" || !merged[0].Confirmed {
		t.Errorf("entry = %+v, want confirmed local-1", merged[0])
	}
	if cached := cache.Load("u1"); len(cached) != 0 {
		t.Errorf("cache holds %d entries after confirmation, want 0", len(cached))
	}
}

func TestRefreshKeepsUnconfirmedInCache(t *testing.T) {
	cache := newTestCache(t)
	cache.Save("u1", []result.Entry{
		{ID: "local-9", Category: result.CategoryTopics, CreatedAt: baseTime, Confirmed: false},
	}, false)

	lister := &fakeLister{records: []remote.Record{
		{ID: "srv-1", Type: "plan", CreatedAt: baseTime.Add(-time.Hour)},
	}}

	merged, err := New(lister, cache).Refresh(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if len(merged) != 2 {
		t.Fatalf("merged %d entries, want 2", len(merged))
	}
	cached := cache.Load("u1")
	if len(cached) != 1 || cached[0].ID != "local-9" {
		t.Errorf("cache = %+v, want only local-9", cached)
	}
}

func TestRefreshPermissionDeniedServesCache(t *testing.T) {
	cache := newTestCache(t)
	cache.Save("u1", []result.Entry{
		{ID: "local-1", Category: result.CategoryScript, CreatedAt: baseTime},
	}, false)

	lister := &fakeLister{err: remote.ErrPermissionDenied}

	merged, err := New(lister, cache).Refresh(context.Background(), "u1")
	if !errors.Is(err, remote.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied passthrough", err)
	}
	if len(merged) != 1 || merged[0].ID != "local-1" {
		t.Errorf("merged = %+v, want cached local-1", merged)
	}
	// The unconfirmed entry must survive the failed refresh.
	if cached := cache.Load("u1"); len(cached) != 1 {
		t.Errorf("cache lost entries on permission failure: %+v", cached)
	}
}

func TestRefreshTimeoutSuppressed(t *testing.T) {
	cache := newTestCache(t)
	cache.Save("u1", []result.Entry{
		{ID: "local-1", Category: result.CategoryScript, CreatedAt: baseTime},
	}, false)

	lister := &fakeLister{err: remote.ErrListTimeout}

	merged, err := New(lister, cache).Refresh(context.Background(), "u1")
	if err != nil {
		t.Fatalf("timeout surfaced as error: %v", err)
	}
	if len(merged) != 1 {
		t.Errorf("merged = %+v, want cached entries", merged)
	}
}

func TestRefreshNetworkErrorDegradesToLocal(t *testing.T) {
	cache := newTestCache(t)
	cache.Save("u1", []result.Entry{
		{ID: "local-1", Category: result.CategoryScript, CreatedAt: baseTime},
		{ID: "local-2", Category: result.CategoryPlanning, CreatedAt: baseTime.Add(time.Minute)},
	}, false)

	lister := &fakeLister{err: errors.New("connection refused")}

	merged, err := New(lister, cache).Refresh(context.Background(), "u1")
	if err != nil {
		t.Fatalf("network error surfaced: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("merged %d entries, want 2", len(merged))
	}
	if merged[0].ID != "local-2" {
		t.Errorf("first = %s, want local-2 (newest first)", merged[0].ID)
	}
}

func TestCachedSortsNewestFirst(t *testing.T) {
	cache := newTestCache(t)
	cache.Save("u1", []result.Entry{
		{ID: "old", Category: result.CategoryScript, CreatedAt: baseTime.Add(-time.Hour)},
		{ID: "new", Category: result.CategoryScript, CreatedAt: baseTime},
	}, false)

	entries := New(&fakeLister{}, cache).Cached("u1")
	if len(entries) != 2 || entries[0].ID != "new" {
		t.Errorf("entries = %+v, want new first", entries)
	}
}
