// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the reelcraft command-line surface: argument
// parsing, command dispatch, and the non-TUI command handlers (list, show,
// export, history, setup, status).
//
// The TUI itself lives in internal/ui; this package only wires configuration
// and the backend client for one-shot commands.
package cli
