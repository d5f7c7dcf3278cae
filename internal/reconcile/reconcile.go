// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reconcile merges locally cached generation results with the
// backend's stored results into the single de-duplicated, recency-sorted
// list the UI displays.
package reconcile

import (
	"context"
	"errors"
	"log"
	"sort"

	"github.com/jeranaias/reelcraft-tui/internal/classify"
	"github.com/jeranaias/reelcraft-tui/internal/remote"
	"github.com/jeranaias/reelcraft-tui/internal/result"
)

// Lister is the remote side of reconciliation.
type Lister interface {
	List(ctx context.Context, userID string) ([]remote.Record, error)
}

// Cache is the local side of reconciliation.
type Cache interface {
	Load(userID string) []result.Entry
	Save(userID string, entries []result.Entry, includeConfirmed bool)
}

// =============================================================================
// REMOTE RECORD MAPPING
// =============================================================================

// typeCategories maps the backend's coarse product types to categories.
// Used when a record predates explicit category metadata.
var typeCategories = map[string]result.Category{
	"copywriting": result.CategoryScript,
	"script":      result.CategoryScript,
	"plan":        result.CategoryPlanning,
	"calendar":    result.CategoryPlanning,
	"persona":     result.CategoryPositioning,
	"positioning": result.CategoryPositioning,
	"topic":       result.CategoryTopics,
	"topics":      result.CategoryTopics,
}

// FromRecord converts a backend record into a confirmed entry.
//
// Category resolution falls back in order: explicit category metadata,
// the record's stored type, a content heuristic, and finally positioning.
// The chain exists because older records carry less metadata.
func FromRecord(r remote.Record) result.Entry {
	category, ok := result.ParseCategory(r.Category)
	if !ok {
		category, ok = typeCategories[r.Type]
	}
	if !ok {
		category = classify.ClassifyContent(r.Content)
	}

	return result.Entry{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Category:  category,
		CreatedAt: r.CreatedAt,
		Confirmed: true,
	}
}

// FromRecords converts a list of backend records.
func FromRecords(records []remote.Record) []result.Entry {
	entries := make([]result.Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, FromRecord(r))
	}
	return entries
}

// =============================================================================
// MERGE
// =============================================================================

// Merge combines remote and local entries into one view. Remote entries win
// id collisions: a locally cached entry whose id now exists remotely has
// been confirmed, and the backend's copy is authoritative. The result is
// sorted newest first, with id as a stable tie-break.
//
// Merge is idempotent: feeding its output back as the local input yields
// the same list.
func Merge(remoteEntries, localEntries []result.Entry) []result.Entry {
	remoteIDs := make(map[string]struct{}, len(remoteEntries))
	merged := make([]result.Entry, 0, len(remoteEntries)+len(localEntries))

	for _, e := range remoteEntries {
		if _, dup := remoteIDs[e.ID]; dup {
			continue
		}
		remoteIDs[e.ID] = struct{}{}
		merged = append(merged, e)
	}
	for _, e := range localEntries {
		if _, dup := remoteIDs[e.ID]; dup {
			continue
		}
		remoteIDs[e.ID] = struct{}{}
		merged = append(merged, e)
	}

	SortEntries(merged)
	return merged
}

// SortEntries orders entries newest first, breaking timestamp ties by id so
// the order is deterministic.
func SortEntries(entries []result.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}

// =============================================================================
// RECONCILER
// =============================================================================

// Reconciler keeps the displayed entry list in sync between the local cache
// and the backend.
type Reconciler struct {
	remote Lister
	cache  Cache
}

// New creates a reconciler over the given remote and cache.
func New(remote Lister, cache Cache) *Reconciler {
	return &Reconciler{remote: remote, cache: cache}
}

// Cached returns the locally cached entries for userID, sorted newest
// first, for cache-first display while the remote fetch is in flight.
func (r *Reconciler) Cached(userID string) []result.Entry {
	entries := r.cache.Load(userID)
	SortEntries(entries)
	return entries
}

// Refresh fetches the remote list, merges it with the local cache, writes
// the surviving unconfirmed entries back, and returns the merged view.
//
// Read failures never abort the view: the returned list degrades to
// local-only data. The returned error is non-nil only for
// remote.ErrPermissionDenied, which callers surface as an upgrade prompt;
// list timeouts are silently suppressed and other network errors are
// logged here.
func (r *Reconciler) Refresh(ctx context.Context, userID string) ([]result.Entry, error) {
	localEntries := r.cache.Load(userID)

	records, err := r.remote.List(ctx, userID)
	if err != nil {
		local := Merge(nil, localEntries)
		switch {
		case errors.Is(err, remote.ErrPermissionDenied):
			// Expected for free-tier accounts; not an error, not logged.
			return local, remote.ErrPermissionDenied
		case errors.Is(err, remote.ErrListTimeout):
			return local, nil
		default:
			log.Printf("reconcile: remote list failed, serving cache: %v", err)
			return local, nil
		}
	}

	merged := Merge(FromRecords(records), localEntries)

	// Writeback drops entries the backend now owns: once an id appears
	// remotely the cached copy is redundant and must not resurface.
	r.cache.Save(userID, merged, false)

	return merged, nil
}
