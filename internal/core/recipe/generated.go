package recipe

import (
	"strings"
)

// 生成模型輸出的段落標頭
const (
	sectionTitle        = "Title:"
	sectionDescription  = "Description:"
	sectionIngredients  = "Ingredients:"
	sectionInstructions = "Instructions:"
)

// ParseGeneratedText 把生成模型的段落式輸出拆成鬆散食譜
// 模型依「Title: / Description: / Ingredients: / Instructions:」分段回覆，
// 各段以空行分隔；認不得的段落忽略，缺段落照常降級。
// 模型呼叫本身在系統之外，這裡只負責收斂它的文字形態。
func ParseGeneratedText(text string) RawRecipe {
	raw := RawRecipe{FullText: text}

	for _, section := range strings.Split(text, "\n\n") {
		section = strings.TrimSpace(section)
		switch {
		case strings.HasPrefix(section, sectionTitle):
			raw.Title = strings.TrimSpace(strings.TrimPrefix(section, sectionTitle))
		case strings.HasPrefix(section, sectionDescription):
			// 描述不單獨保留，完整內文已涵蓋
		case strings.HasPrefix(section, sectionIngredients):
			raw.Ingredients = ListItems(splitLines(strings.TrimPrefix(section, sectionIngredients))...)
		case strings.HasPrefix(section, sectionInstructions):
			raw.Instructions = strings.TrimSpace(strings.TrimPrefix(section, sectionInstructions))
		}
	}

	return raw
}

// splitLines 逐行修剪並去除空行
func splitLines(block string) []string {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
