// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package localcache persists not-yet-confirmed generation results per user,
// so they survive restarts while the backend has not accepted them yet.
package localcache

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/jeranaias/reelcraft-tui/internal/result"
	"github.com/jeranaias/reelcraft-tui/internal/util"
)

// DefaultFeature is the storage key segment for the content-generation
// feature. Each (feature, user) pair owns exactly one cache file.
const DefaultFeature = "results"

// =============================================================================
// CACHE STORE
// =============================================================================

// Store reads and writes per-user result caches as JSON files under BaseDir.
type Store struct {
	// BaseDir is the cache directory. Default: ~/.reelcraft/cache/
	BaseDir string

	// Feature scopes the storage key; different features never collide.
	Feature string
}

// NewStore creates a cache store under the user's home directory.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithDir(filepath.Join(homeDir, ".reelcraft", "cache"))
}

// NewStoreWithDir creates a cache store rooted at baseDir.
func NewStoreWithDir(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &Store{BaseDir: baseDir, Feature: DefaultFeature}, nil
}

// =============================================================================
// SERIALIZED FORM
// =============================================================================

// cachedEntry is the on-disk shape. Timestamps are ISO strings so cache
// files written by other clients of the same backend stay readable.
type cachedEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	CreatedAt string `json:"created_at"`
	Confirmed bool   `json:"confirmed"`
}

// =============================================================================
// LOAD
// =============================================================================

// Load returns the cached entries for userID. Missing, corrupt or otherwise
// unreadable data yields an empty slice, never an error: the cache is an
// optimization, and a broken cache must not break the page.
func (s *Store) Load(userID string) []result.Entry {
	if userID == "" {
		return nil
	}

	data, err := os.ReadFile(s.filePath(userID))
	if err != nil {
		return nil
	}

	var cached []cachedEntry
	if err := json.Unmarshal(data, &cached); err != nil {
		log.Printf("localcache: discarding corrupt cache for user %s: %v", userID, err)
		return nil
	}

	entries := make([]result.Entry, 0, len(cached))
	for _, c := range cached {
		if c.ID == "" {
			continue
		}
		category, _ := result.ParseCategory(c.Category)
		createdAt, err := time.Parse(time.RFC3339, c.CreatedAt)
		if err != nil {
			createdAt = time.Time{}
		}
		entries = append(entries, result.Entry{
			ID:        c.ID,
			Title:     c.Title,
			Content:   c.Content,
			Category:  category,
			CreatedAt: createdAt,
			Confirmed: c.Confirmed,
		})
	}
	return entries
}

// =============================================================================
// SAVE
// =============================================================================

// Save serializes entries and overwrites the cache for userID. Unless
// includeConfirmed is set, confirmed entries are filtered out first: once
// the backend owns an entry the remote store is authoritative.
//
// Write failures are logged and swallowed; persisting the cache must never
// interrupt the flow that produced the entries. Guests (empty userID) are
// never persisted.
func (s *Store) Save(userID string, entries []result.Entry, includeConfirmed bool) {
	if userID == "" {
		return
	}

	cached := make([]cachedEntry, 0, len(entries))
	for _, e := range entries {
		if e.Confirmed && !includeConfirmed {
			continue
		}
		cached = append(cached, cachedEntry{
			ID:        e.ID,
			Title:     e.Title,
			Content:   e.Content,
			Category:  e.Category.String(),
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
			Confirmed: e.Confirmed,
		})
	}

	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		log.Printf("localcache: failed to serialize cache for user %s: %v", userID, err)
		return
	}

	if err := util.AtomicWriteFile(s.filePath(userID), data, 0600); err != nil {
		log.Printf("localcache: failed to write cache for user %s: %v", userID, err)
	}
}

// Clear removes the cache file for userID. Missing files are fine.
func (s *Store) Clear(userID string) {
	if userID == "" {
		return
	}
	if err := os.Remove(s.filePath(userID)); err != nil && !os.IsNotExist(err) {
		log.Printf("localcache: failed to clear cache for user %s: %v", userID, err)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// unsafeKeyChars strips anything that could escape the cache directory when
// a user id is embedded in a filename.
var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// filePath returns the cache file for the (feature, user) storage key.
func (s *Store) filePath(userID string) string {
	key := s.Feature + "_" + unsafeKeyChars.ReplaceAllString(userID, "_")
	return filepath.Join(s.BaseDir, key+".json")
}
