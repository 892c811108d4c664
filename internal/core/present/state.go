package present

import (
	"context"
	"errors"
	"sync"

	"smartchef/internal/core/favorites"
	"smartchef/internal/core/recipe"
	"smartchef/internal/core/translate"
	"smartchef/internal/pkg/common"

	"go.uber.org/zap"
)

// State 檢視狀態
// Loading -> Ready | Unavailable；進入 Ready 後語言切換走
// Translating 子狀態，無論成敗都回到 Ready，絕不退回 Loading。
type State string

const (
	StateLoading     State = "loading"
	StateReady       State = "ready"
	StateTranslating State = "translating"
	StateUnavailable State = "unavailable"
)

// Localizer 食譜在地化能力
type Localizer interface {
	Localize(ctx context.Context, c recipe.CanonicalRecipe, target translate.Language) (recipe.LocalizedRecipe, bool)
}

// FavoritesGateway 收藏操作能力
type FavoritesGateway interface {
	Check(ctx context.Context, recipeID string) (favorites.Status, error)
	Add(ctx context.Context, c recipe.CanonicalRecipe) (*recipe.FavoriteRecord, error)
	Remove(ctx context.Context, recipeID string) error
}

// Snapshot 檢視的對外快照
type Snapshot struct {
	State     State                  `json:"state"`
	Recipe    recipe.LocalizedRecipe `json:"recipe"`
	Language  string                 `json:"language"`
	Degraded  bool                   `json:"translation_degraded"`
	Favorite  string                 `json:"favorite_status"`
	Available bool                   `json:"available"`
}

// View 單一食譜的顯示狀態機
// 進入 Ready 時正規化一次並保留原文；之後所有翻譯都從
// 這份原文出發，顯示內容永不回寫原文。
type View struct {
	mu        sync.Mutex
	state     State
	canonical recipe.CanonicalRecipe
	displayed recipe.LocalizedRecipe
	language  translate.Language
	degraded  bool
	favorite  favorites.Status

	localizer Localizer
	gateway   FavoritesGateway
}

// NewView 由外部鬆散食譜建立檢視
// 完全沒有輸入時落在 Unavailable，而非錯誤。
func NewView(raw *recipe.RawRecipe, localizer Localizer, gateway FavoritesGateway) *View {
	v := &View{
		state:     StateLoading,
		language:  translate.LanguageEnglish,
		favorite:  favorites.StatusUnknown,
		localizer: localizer,
		gateway:   gateway,
	}

	if raw == nil {
		v.state = StateUnavailable
		return v
	}

	v.canonical = recipe.Normalize(*raw)
	v.displayed = asLocalized(v.canonical)
	v.state = StateReady
	return v
}

// asLocalized 原文語言的顯示形態
func asLocalized(c recipe.CanonicalRecipe) recipe.LocalizedRecipe {
	return recipe.LocalizedRecipe{
		Title:       c.Title,
		Ingredients: c.Ingredients,
		Steps:       c.Steps,
		FullText:    c.FullText,
		Image:       c.Image,
		Identifier:  c.Identifier,
		Language:    string(translate.LanguageEnglish),
	}
}

// Canonical 保留的正規化原文
func (v *View) Canonical() recipe.CanonicalRecipe {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canonical
}

// Snapshot 目前顯示內容的快照
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot{
		State:     v.state,
		Recipe:    v.displayed,
		Language:  string(v.language),
		Degraded:  v.degraded,
		Favorite:  v.favorite.String(),
		Available: v.state != StateUnavailable,
	}
}

// SetLanguage 切換顯示語言
// 翻譯期間不持鎖；結果回來時重新比對語言標籤，
// 使用者已經離開的語言，其結果直接丟棄（以標籤比對
// 判定過時，而非送達順序）。
func (v *View) SetLanguage(ctx context.Context, target translate.Language) error {
	v.mu.Lock()
	if v.state == StateUnavailable {
		v.mu.Unlock()
		return common.ErrViewUnavailable
	}
	v.language = target
	v.state = StateTranslating
	canonical := v.canonical
	v.mu.Unlock()

	localized, degraded := v.localizer.Localize(ctx, canonical, target)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.language != target {
		// 過時結果：使用者已切到其他語言
		common.LogDebug("丟棄過時的翻譯結果",
			zap.String("結果語言", string(target)),
			zap.String("目前語言", string(v.language)),
		)
		return nil
	}

	v.displayed = localized
	v.degraded = degraded
	v.state = StateReady
	return nil
}

// ResolveFavorite 解析收藏狀態
// 解析前維持 Unknown；查詢失敗同樣停在 Unknown。
func (v *View) ResolveFavorite(ctx context.Context) {
	v.mu.Lock()
	if v.state == StateUnavailable {
		v.mu.Unlock()
		return
	}
	recipeID := v.canonical.Identifier
	v.mu.Unlock()

	status, err := v.gateway.Check(ctx, recipeID)
	if err != nil && !errors.Is(err, common.ErrUnauthenticated) {
		common.LogWarn("收藏狀態查詢失敗",
			zap.String("recipe_id", recipeID),
			zap.Error(err),
		)
	}

	v.mu.Lock()
	v.favorite = status
	v.mu.Unlock()
}

// ToggleFavorite 切換收藏
// 僅在儲存服務確認成功後才翻轉本地狀態；收藏不存在的
// 移除失敗會把狀態退回 Unknown，提示呼叫方重新對齊。
func (v *View) ToggleFavorite(ctx context.Context) (favorites.Status, error) {
	v.mu.Lock()
	if v.state == StateUnavailable {
		v.mu.Unlock()
		return favorites.StatusUnknown, common.ErrViewUnavailable
	}
	current := v.favorite
	canonical := v.canonical
	v.mu.Unlock()

	if current == favorites.StatusFavorited {
		if err := v.gateway.Remove(ctx, canonical.Identifier); err != nil {
			if errors.Is(err, common.ErrFavoriteNotFound) {
				// 本地狀態已過時，退回 Unknown 等待重新解析
				v.setFavorite(favorites.StatusUnknown)
			}
			return v.Favorite(), err
		}
		v.setFavorite(favorites.StatusNotFavorited)
		return favorites.StatusNotFavorited, nil
	}

	if _, err := v.gateway.Add(ctx, canonical); err != nil {
		return v.Favorite(), err
	}
	v.setFavorite(favorites.StatusFavorited)
	return favorites.StatusFavorited, nil
}

// Favorite 目前收藏狀態
func (v *View) Favorite() favorites.Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.favorite
}

func (v *View) setFavorite(status favorites.Status) {
	v.mu.Lock()
	v.favorite = status
	v.mu.Unlock()
}
