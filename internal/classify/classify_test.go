// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package classify

import (
	"testing"

	"github.com/jeranaias/reelcraft-tui/internal/result"
)

func TestClassify_PromptScenarios(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		response string
		want     result.Category
	}{
		{
			name:   "explicit script request",
			prompt: "請幫我生成今日的短影音腳本",
			want:   result.CategoryScript,
		},
		{
			name:   "explicit 14-day plan request",
			prompt: "請幫我生成14天的短影音內容規劃",
			want:   result.CategoryPlanning,
		},
		{
			name:   "persona profile request",
			prompt: "請幫我建立IP人設檔案",
			want:   result.CategoryPositioning,
		},
		{
			name:   "topic selection request",
			prompt: "幫我列出這個月的選題方向",
			want:   result.CategoryTopics,
		},
		{
			name:     "english script request",
			prompt:   "write a short video script about coffee",
			response: "Scene 1: ...",
			want:     result.CategoryScript,
		},
		{
			name:   "english 14-day request",
			prompt: "give me a 14-day posting plan",
			want:   result.CategoryPlanning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.prompt, tt.response); got != tt.want {
				t.Errorf("Classify(%q, %q) = %v, want %v", tt.prompt, tt.response, got, tt.want)
			}
		})
	}
}

// A 14-day phrase must beat script keywords no matter where either appears.
// This is the tie-break the ordering exists for.
func TestClassify_PlanningBeatsScript(t *testing.T) {
	response := "以下是14天的腳本規劃，每日一支 script。"

	if got := Classify("幫我排內容", response); got != result.CategoryPlanning {
		t.Errorf("Classify = %v, want planning when day-count and script keywords collide", got)
	}
}

// The user's prompt is checked for script intent before the response is.
func TestClassify_PromptScriptBeatsResponseTopics(t *testing.T) {
	got := Classify("幫我寫一支開箱腳本", "這裡有幾個選題建議...")
	if got != result.CategoryScript {
		t.Errorf("Classify = %v, want script from the user's own request", got)
	}
}

func TestClassify_StructuralFallbacks(t *testing.T) {
	// No keywords at all, but the response is organized day by day.
	got := Classify("幫我規", "第1天：開箱影片\n第2天：幕後花絮\n第3天：問答")
	if got != result.CategoryPlanning {
		t.Errorf("Classify = %v, want planning from day ordinals", got)
	}

	// Day N in English counts too.
	got = Classify("schedule things", "Day 1: unboxing\nDay 2: Q&A")
	if got != result.CategoryPlanning {
		t.Errorf("Classify = %v, want planning from english day ordinals", got)
	}

	// Dialogue words with no other signal mean script.
	got = Classify("來點內容", "開頭台詞：哈囉大家好！接著切到對白。")
	if got != result.CategoryScript {
		t.Errorf("Classify = %v, want script from dialogue words", got)
	}
}

func TestClassify_DefaultsToPositioning(t *testing.T) {
	if got := Classify("隨便聊聊", "好的,我們來聊聊近況。"); got != result.CategoryPositioning {
		t.Errorf("Classify = %v, want positioning default", got)
	}
}

// Classification must be a pure function of its inputs.
func TestClassify_Deterministic(t *testing.T) {
	prompt := "請幫我生成14天的短影音內容規劃"
	response := "第1天腳本..."

	first := Classify(prompt, response)
	for i := 0; i < 50; i++ {
		if got := Classify(prompt, response); got != first {
			t.Fatalf("Classify changed answer on run %d: %v != %v", i, got, first)
		}
	}
}

// Full-width variants normalize to the same bucket as their ASCII forms.
func TestClassify_NormalizesWidth(t *testing.T) {
	if got := Classify("給我１４天的規劃", ""); got != result.CategoryPlanning {
		t.Errorf("Classify = %v, want planning for full-width 14", got)
	}
}

func TestClassifyContent(t *testing.T) {
	if got := ClassifyContent("第1天：開場。第2天：轉場。"); got != result.CategoryPlanning {
		t.Errorf("ClassifyContent = %v, want planning", got)
	}
	if got := ClassifyContent("開場台詞：大家好"); got != result.CategoryScript {
		t.Errorf("ClassifyContent = %v, want script", got)
	}
}
