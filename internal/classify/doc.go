// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package classify buckets generated content into one of the four fixed
// categories (positioning, topics, planning, script) using ordered keyword
// heuristics. All heuristic inference lives here so the rest of the system
// can treat the category field as always populated and trustworthy.
package classify
