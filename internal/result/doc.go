// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package result defines the Entry type for generated short-video content
// and its fixed category buckets.
//
// An Entry moves through a simple lifecycle: created unconfirmed when a
// generation stream completes, optionally retitled by the user, confirmed
// once the backend accepts it, and finally deleted on user request. The
// confirmed flag transitions false to true exactly once.
package result
