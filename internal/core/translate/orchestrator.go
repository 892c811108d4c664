package translate

import (
	"context"
	"strings"
	"sync"
	"time"

	"smartchef/internal/core/recipe"
	"smartchef/internal/pkg/common"

	"go.uber.org/zap"
)

// Translator 單段文字的翻譯能力
type Translator interface {
	Translate(ctx context.Context, text string, target Language) (string, error)
}

// Orchestrator 翻譯調度器
// 把正規化食譜的每個文字單元各發一個翻譯請求，全部並發、
// 等整組完成。單元失敗以原文替代並標記整體「部分降級」，
// 絕不讓單一失敗毀掉整份食譜。
type Orchestrator struct {
	translator Translator
}

// NewOrchestrator 創建翻譯調度器
func NewOrchestrator(translator Translator) *Orchestrator {
	return &Orchestrator{translator: translator}
}

// unit 一個翻譯單元：原文與結果落點
type unit struct {
	text string
	dest *string
}

// Localize 把正規化食譜翻譯成目標語言
// 原文語言直接回傳正規化內容，不發任何請求。
// 回傳值第二項為「翻譯部分降級」旗標。
// 每次都從保留的正規化原文出發，重複呼叫不會疊加翻譯誤差。
func (o *Orchestrator) Localize(ctx context.Context, c recipe.CanonicalRecipe, target Language) (recipe.LocalizedRecipe, bool) {
	localized := recipe.LocalizedRecipe{
		Title:       c.Title,
		Ingredients: append([]string(nil), c.Ingredients...),
		Steps:       append([]string(nil), c.Steps...),
		FullText:    c.FullText,
		Image:       c.Image,
		Identifier:  c.Identifier,
		Language:    string(target),
	}

	// 快路徑：原文語言免翻譯，必須最先判斷
	if target.IsSource() {
		return localized, false
	}

	// 收集翻譯單元：標題、完整內文、逐項食材、逐條步驟。
	// 食材與步驟逐項翻譯而非整塊送出，保住列表邊界。
	units := make([]unit, 0, 2+len(localized.Ingredients)+len(localized.Steps))
	units = append(units,
		unit{text: c.Title, dest: &localized.Title},
		unit{text: c.FullText, dest: &localized.FullText},
	)
	for i := range localized.Ingredients {
		units = append(units, unit{text: c.Ingredients[i], dest: &localized.Ingredients[i]})
	}
	for i := range localized.Steps {
		units = append(units, unit{text: c.Steps[i], dest: &localized.Steps[i]})
	}

	start := time.Now()
	failures := make([]bool, len(units))

	var wg sync.WaitGroup
	for i := range units {
		u := units[i]
		if strings.TrimSpace(u.text) == "" {
			// 空白單元無可翻譯，也不算降級
			continue
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			translated, err := o.translator.Translate(ctx, u.text, target)
			if err != nil || translated == "" {
				// 單元失敗：保留原文，整體標記降級
				failures[i] = true
				if err != nil {
					common.LogWarn("翻譯單元失敗，以原文替代",
						zap.String("語言", string(target)),
						zap.Error(err),
					)
				}
				return
			}
			*u.dest = translated
		}(i)
	}
	wg.Wait()

	degraded := false
	for _, failed := range failures {
		if failed {
			degraded = true
			break
		}
	}

	common.LogTranslation(string(target), len(units), time.Since(start), degraded)
	return localized, degraded
}
