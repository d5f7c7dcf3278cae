// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - `reelcraft setup` first-run wizard.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/jeranaias/reelcraft-tui/internal/config"
	"github.com/jeranaias/reelcraft-tui/internal/remote"
	"github.com/jeranaias/reelcraft-tui/internal/ui/styles"
)

// RunSetup walks through first-run configuration: user id, API key, and a
// connectivity check, then writes the config file.
func RunSetup(args Args) int {
	cfg, err := config.Load()
	if err != nil {
		// A broken config file should not block re-running setup.
		cfg = config.Default()
	}

	fmt.Println("reelcraft 初始設定")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("使用者 ID [%s]: ", cfg.User.ID)
	if line, err := reader.ReadString('\n'); err == nil {
		if v := strings.TrimSpace(line); v != "" {
			cfg.User.ID = v
		}
	}

	fmt.Print("API 金鑰 (輸入不會顯示，留空保留現有值): ")
	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: read key:", err)
		return 1
	}
	if key := strings.TrimSpace(string(keyBytes)); key != "" {
		cfg.API.Key = key
	}

	if cfg.API.Key == "" {
		fmt.Fprintln(os.Stderr, "未設定 API 金鑰，之後可再次執行 reelcraft setup")
	} else {
		client := remote.NewClient(cfg.API.Key).WithBaseURL(cfg.API.BaseURL)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := client.CheckAccess(ctx)
		cancel()
		switch {
		case err == nil:
			fmt.Println(styles.RenderSuccess("連線測試成功，帳戶方案包含雲端儲存"))
		case errors.Is(err, remote.ErrPermissionDenied):
			fmt.Println(styles.RenderWarning("連線測試成功，目前方案不包含雲端儲存（結果將保留在本機）"))
		case errors.Is(err, remote.ErrAuthFailed):
			fmt.Fprintln(os.Stderr, styles.RenderError("API 金鑰驗證失敗，請確認後再試"))
			return 1
		default:
			fmt.Fprintln(os.Stderr, styles.RenderWarning("連線測試失敗："+err.Error()))
			// Still save; the key may be fine while the network is not.
		}
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Error: save config:", err)
		return 1
	}

	path, _ := config.ConfigPathTOML()
	fmt.Println(styles.RenderSuccess("設定已寫入 " + path))
	return 0
}
