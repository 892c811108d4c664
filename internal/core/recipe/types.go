package recipe

import (
	"encoding/json"
	"strings"
	"time"
)

// IngredientsField 外部食譜的 ingredients 欄位
// 來源可能是字串陣列，也可能是一整串逗號分隔的字串，甚至完全缺失。
// 解碼時保留原始形態，正規化時再決定如何切分。
type IngredientsField struct {
	List   []string // 來源為陣列時的內容
	Text   string   // 來源為單一字串時的內容
	IsList bool     // 來源是否為陣列
}

// UnmarshalJSON 容錯解碼：陣列、字串以外的形態一律視為缺失
func (f *IngredientsField) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		f.List = list
		f.IsList = true
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		f.Text = text
		return nil
	}

	// 非法形態不報錯，讓正規化降級為空列表
	*f = IngredientsField{}
	return nil
}

// MarshalJSON 依原始形態輸出
func (f IngredientsField) MarshalJSON() ([]byte, error) {
	if f.IsList {
		return json.Marshal(f.List)
	}
	return json.Marshal(f.Text)
}

// ListItems 以陣列形態建立欄位（測試與內部轉換用）
func ListItems(items ...string) IngredientsField {
	return IngredientsField{List: items, IsList: true}
}

// TextItems 以單一字串形態建立欄位
func TextItems(text string) IngredientsField {
	return IngredientsField{Text: text}
}

// RawRecipe 外部來源的鬆散食譜
// 任何欄位都可能缺失或格式錯誤，下游一律不得直接使用。
type RawRecipe struct {
	Title        string           `json:"title"`
	Ingredients  IngredientsField `json:"ingredients"`
	Instructions string           `json:"instructions"`
	Image        string           `json:"image"`
	FullText     string           `json:"full_text"`
	ID           string           `json:"id"`
	MongoID      string           `json:"_id"`
}

// CanonicalRecipe 正規化後的食譜，全系統唯一可信的食譜形態
type CanonicalRecipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	FullText    string   `json:"full_text"`
	Image       string   `json:"image"`
	Identifier  string   `json:"identifier"`
}

// AsRaw 轉回外部形態，重新正規化後應得到相同的值
func (c CanonicalRecipe) AsRaw() RawRecipe {
	return RawRecipe{
		Title:        c.Title,
		Ingredients:  ListItems(c.Ingredients...),
		Instructions: strings.Join(c.Steps, "\n"),
		Image:        c.Image,
		FullText:     c.FullText,
		ID:           c.Identifier,
	}
}

// LocalizedRecipe 翻譯後的食譜
// image 與 identifier 與語言無關，直接沿用正規化後的值。
type LocalizedRecipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	FullText    string   `json:"full_text"`
	Image       string   `json:"image"`
	Identifier  string   `json:"identifier"`
	Language    string   `json:"language"`
}

// FavoriteRecord 收藏紀錄，欄位鍵值對齊儲存服務的介面
type FavoriteRecord struct {
	RecipeID     string    `json:"recipeId"`
	Title        string    `json:"title"`
	Ingredients  []string  `json:"ingredients"`
	Instructions string    `json:"instructions"`
	Image        string    `json:"image"`
	FullText     string    `json:"full_text"`
	SavedAt      time.Time `json:"savedAt"`
	OwnerID      string    `json:"ownerId,omitempty"` // 由儲存服務指派
}

// NewFavoriteRecord 由正規化食譜組出收藏紀錄
func NewFavoriteRecord(c CanonicalRecipe, now time.Time) FavoriteRecord {
	return FavoriteRecord{
		RecipeID:     c.Identifier,
		Title:        c.Title,
		Ingredients:  c.Ingredients,
		Instructions: strings.Join(c.Steps, "\n"),
		Image:        c.Image,
		FullText:     c.FullText,
		SavedAt:      now,
	}
}
