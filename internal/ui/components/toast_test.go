// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the reelcraft TUI.
//
// This file tests the toast manager: expiry, upgrade-prompt dedupe, and
// concurrent access safety.
package components

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestToastManagerAddAndExpire(t *testing.T) {
	m := NewToastManager()

	id := m.AddToast(Toast{
		Message:     "short lived",
		Kind:        ToastKindStatus,
		CreatedAt:   time.Now().Add(-time.Minute),
		Duration:    time.Second,
		Dismissible: true,
	})
	require.NotZero(t, id)
	require.True(t, m.HasToasts())

	remaining := m.TickToasts()
	require.Empty(t, remaining, "expired toast must be dropped on tick")
	require.False(t, m.HasToasts())
}

func TestToastManagerNewestFirstAndCap(t *testing.T) {
	m := NewToastManager()

	for i := 0; i < 7; i++ {
		m.AddStatus("toast")
	}
	toasts := m.GetToasts()
	require.Len(t, toasts, 5, "manager must cap visible toasts")

	m.AddError("boom")
	toasts = m.GetToasts()
	require.Equal(t, ToastKindError, toasts[0].Kind, "newest toast must be first")
}

func TestToastManagerUpgradeDedupe(t *testing.T) {
	m := NewToastManager()

	first := m.AddUpgrade()
	second := m.AddUpgrade()
	require.Equal(t, first, second, "repeated denials must reuse the existing prompt")

	upgrades := 0
	for _, toast := range m.GetToasts() {
		if toast.Kind == ToastKindUpgrade {
			upgrades++
			require.Equal(t, UpgradeMessage, toast.Message)
		}
	}
	require.Equal(t, 1, upgrades)
}

func TestToastManagerRemove(t *testing.T) {
	m := NewToastManager()

	id := m.AddError("boom")
	m.RemoveToast(id)
	require.False(t, m.HasToasts())

	// Removing a missing id is a no-op.
	m.RemoveToast(id)
}

// TestToastManagerConcurrent tests that concurrent adds, ticks, and reads do
// not race or panic.
func TestToastManagerConcurrent(t *testing.T) {
	m := NewToastManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AddStatus("concurrent")
			m.TickToasts()
			_ = m.GetToasts()
			_ = m.HasToasts()
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, len(m.GetToasts()), 5)
}
