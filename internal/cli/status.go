// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - `reelcraft status` command handler.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/reelcraft-tui/internal/remote"
)

// statusReport is the JSON shape of `reelcraft status --json`.
type statusReport struct {
	Version    string `json:"version"`
	BaseURL    string `json:"base_url"`
	User       string `json:"user"`
	APIKey     string `json:"api_key"`
	Configured bool   `json:"configured"`
	Access     string `json:"access"`
	CachedOnly bool   `json:"cached_only"`
}

// RunStatus shows configuration and backend connectivity.
func RunStatus(args Args) int {
	env, err := BuildEnv(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	report := statusReport{
		Version: Version,
		BaseURL: env.Cfg.API.BaseURL,
		User:    env.UserID,
		APIKey:  env.Client.APIKeyMasked(),
	}
	report.Configured = env.Client.IsConfigured()

	if report.Configured {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := env.Client.CheckAccess(ctx)
		cancel()
		switch {
		case err == nil:
			report.Access = "full"
		case errors.Is(err, remote.ErrPermissionDenied):
			report.Access = "local-only"
			report.CachedOnly = true
		case errors.Is(err, remote.ErrAuthFailed):
			report.Access = "auth-failed"
		default:
			report.Access = "unreachable"
		}
	} else {
		report.Access = "not-configured"
	}

	if args.JSON {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
		return 0
	}

	fmt.Printf("reelcraft %s\n\n", report.Version)
	fmt.Printf("  Backend:   %s\n", report.BaseURL)
	fmt.Printf("  User:      %s\n", displayOrGuest(report.User))
	fmt.Printf("  API key:   %s\n", report.APIKey)

	switch report.Access {
	case "full":
		fmt.Println("  Access:    帳戶方案包含雲端儲存")
	case "local-only":
		fmt.Println("  Access:    目前方案不包含雲端儲存（結果保留在本機）")
	case "auth-failed":
		fmt.Println("  Access:    API 金鑰驗證失敗，請執行 reelcraft setup")
	case "unreachable":
		fmt.Println("  Access:    無法連線，將使用本機快取")
	default:
		fmt.Println("  Access:    尚未設定，請執行 reelcraft setup")
	}
	return 0
}

// displayOrGuest renders an empty user id as the guest label.
func displayOrGuest(user string) string {
	if user == "" {
		return "訪客"
	}
	return user
}
