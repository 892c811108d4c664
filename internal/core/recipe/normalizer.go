package recipe

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultTitle 來源缺標題時的預設值
	DefaultTitle = "Untitled Recipe"

	// titleMarker 完整內文的起始標記，之前的生成雜訊一律捨棄
	titleMarker = "TITLE:"
)

var (
	newlinePattern  = regexp.MustCompile(`\n+`)
	sentencePattern = regexp.MustCompile(`\.\s+`)
	numberedOnly    = regexp.MustCompile(`^\d+\.?$`)
	terminalPunct   = regexp.MustCompile(`[.!?]$`)
)

// Normalize 將外部鬆散食譜轉為正規化食譜
// 永不失敗：缺失或格式錯誤的欄位降級為安全預設值。
// 對已正規化的值重複執行會得到相同結果。
func Normalize(raw RawRecipe) CanonicalRecipe {
	return CanonicalRecipe{
		Title:       normalizeTitle(raw.Title),
		Ingredients: normalizeIngredients(raw.Ingredients),
		Steps:       ParseSteps(raw.Instructions),
		FullText:    CleanFullText(raw.FullText),
		Image:       strings.TrimSpace(raw.Image),
		Identifier:  normalizeIdentifier(raw),
	}
}

// normalizeTitle 空標題補上預設值
func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return title
}

// normalizeIngredients 依來源形態決定切分方式
// 陣列直接逐項修剪；單一字串以逗號切分；其餘形態降級為空列表。
func normalizeIngredients(field IngredientsField) []string {
	if field.IsList {
		items := make([]string, 0, len(field.List))
		for _, item := range field.List {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return items
	}

	text := strings.TrimSpace(field.Text)
	if text == "" {
		return []string{}
	}

	parts := strings.Split(text, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// ParseSteps 把自由文字的烹飪說明切成有序步驟
// 先以換行切分並丟棄編號殘片；過濾後若只剩一段，該段再退回
// 以句號切分。退回與否必須看過濾後的段數：編號殘片撐起的
// 段數不算，否則留下的單段若含句內句號，重切一次就會得到
// 不同的結果。留下的步驟保持來源順序並補上結尾標點。
func ParseSteps(instructions string) []string {
	instructions = strings.ReplaceAll(instructions, "\r\n", "\n")
	if strings.TrimSpace(instructions) == "" {
		return []string{}
	}

	fragments := contentFragments(splitNonEmpty(newlinePattern, instructions))
	if len(fragments) <= 1 {
		base := instructions
		if len(fragments) == 1 {
			base = fragments[0]
		}
		fragments = contentFragments(splitNonEmpty(sentencePattern, base))
	}

	steps := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		// 步驟內殘留的換行收斂為空格
		clean := strings.TrimSpace(strings.ReplaceAll(fragment, "\n", " "))
		if !terminalPunct.MatchString(clean) {
			clean += "."
		}
		steps = append(steps, clean)
	}
	return steps
}

// contentFragments 丟棄空白與純編號（含「數字加句號」）的殘片
func contentFragments(fragments []string) []string {
	out := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		trimmed := strings.TrimSpace(fragment)
		if trimmed == "" || numberedOnly.MatchString(trimmed) {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// splitNonEmpty 以正則切分並丟棄空白殘片
func splitNonEmpty(pattern *regexp.Regexp, text string) []string {
	parts := pattern.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

// CleanFullText 截掉 TITLE: 標記之前的前導雜訊
func CleanFullText(text string) string {
	if text == "" {
		return ""
	}
	if idx := strings.Index(text, titleMarker); idx >= 0 {
		return text[idx:]
	}
	return text
}

// normalizeIdentifier 依序採用 id、_id，兩者皆缺時生成新識別碼
func normalizeIdentifier(raw RawRecipe) string {
	if id := strings.TrimSpace(raw.ID); id != "" {
		return id
	}
	if id := strings.TrimSpace(raw.MongoID); id != "" {
		return id
	}
	return uuid.New().String()
}
