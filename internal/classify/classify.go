// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// CLASSIFIER: Keyword routing of generated content into category buckets
package classify

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/reelcraft-tui/internal/result"
)

// =============================================================================
// KEYWORD TABLES
// =============================================================================

// planningKeywords are day-count phrases specific to multi-day content plans.
// These outrank every script keyword: a request for a "14-day script plan"
// is a plan, not a script, and that collision is the dominant real-world
// ambiguity this classifier exists to resolve.
var planningKeywords = []string{
	"14天", "14 天", "14日", "十四天", "14-day", "14 day",
	"兩週", "两周", "半個月",
	"天數規劃", "內容規劃", "檔期規劃", "日更計畫",
	"content calendar",
}

// scriptPromptKeywords signal an explicit script request in the user's own
// words. Checked against the prompt only, before the response is consulted.
var scriptPromptKeywords = []string{
	"腳本", "口播稿", "拍攝腳本", "分鏡", "逐字稿", "script",
}

// scriptResponseKeywords signal script-shaped output from the model.
var scriptResponseKeywords = []string{
	"腳本", "口白", "旁白", "台詞", "開場白", "運鏡", "場景", "script", "hook",
}

// topicKeywords signal topic-selection content.
var topicKeywords = []string{
	"選題", "题材", "題材", "主題清單", "題目", "靈感清單", "topic",
}

// positioningKeywords signal persona/positioning content.
var positioningKeywords = []string{
	"人設", "定位", "受眾", "persona", "positioning",
}

// dialogueKeywords drive the last-resort structural check for scripts.
var dialogueKeywords = []string{
	"台詞", "口白", "旁白", "對白", "場景", "分鏡",
}

// dayOrdinalRe matches day-ordinal patterns like "第3天", "第 12 天" or
// "Day 5" that mark a day-by-day plan even when no day-count phrase appears.
var dayOrdinalRe = regexp.MustCompile(`第\s*([0-9]+|[一二三四五六七八九十]+)\s*天|(?i)\bday\s*[0-9]+`)

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classify maps a user prompt and the model's response to exactly one
// category. It is a pure function: identical inputs always yield the same
// category.
//
// Decision order (first match wins):
//  1. Planning: any day-count phrase anywhere in the combined text.
//  2. Script: the user's own prompt contains an explicit script keyword.
//  3. Script: the response contains a script keyword and no day-ordinal
//     pattern suggests a plan.
//  4. Topics: topic-selection keyword in the combined text.
//  5. Positioning: persona/positioning keyword in the combined text.
//  6. Structural fallback: day ordinals in the response mean planning;
//     dialogue words mean script.
//  7. Default: positioning.
//
// Rules 1-3 are deliberately asymmetric. Day-count phrases beat script
// keywords because plan requests routinely mention scripts, and the user's
// prompt is trusted over the response because the model's output wanders.
func Classify(prompt, response string) result.Category {
	p := normalize(prompt)
	r := normalize(response)
	combined := p + "\n" + r

	// 1. Day-count phrases win outright.
	if containsAny(combined, planningKeywords) {
		return result.CategoryPlanning
	}

	// 2. Explicit script request in the user's own words.
	if containsAny(p, scriptPromptKeywords) {
		return result.CategoryScript
	}

	// 3. Script-shaped response, unless day ordinals reveal a plan.
	if containsAny(r, scriptResponseKeywords) && !dayOrdinalRe.MatchString(combined) {
		return result.CategoryScript
	}

	// 4. Topic selection.
	if containsAny(combined, topicKeywords) {
		return result.CategoryTopics
	}

	// 5. Persona / positioning.
	if containsAny(combined, positioningKeywords) {
		return result.CategoryPositioning
	}

	// 6. Structural fallback on the response alone.
	if dayOrdinalRe.MatchString(r) {
		return result.CategoryPlanning
	}
	if containsAny(r, dialogueKeywords) {
		return result.CategoryScript
	}

	// 7. Default bucket.
	return result.CategoryPositioning
}

// ClassifyContent classifies stored content with no surviving user prompt,
// used by the reconciler's last-resort fallback for old remote records.
func ClassifyContent(content string) result.Category {
	return Classify("", content)
}

// =============================================================================
// HELPERS
// =============================================================================

// normalize folds full-width/compatibility variants (NFKC) and lowercases,
// so "１４天" and "ＳＣＲＩＰＴ" match their canonical keyword forms.
func normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// containsAny reports whether s contains any of the keywords.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
