package favorites

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"smartchef/internal/core/recipe"
	"smartchef/internal/core/session"
	"smartchef/internal/infrastructure/config"
	"smartchef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Status 收藏狀態三值
// 網路或伺服器錯誤一律回報 Unknown，不得與「未收藏」混為一談。
type Status int

const (
	StatusUnknown Status = iota
	StatusFavorited
	StatusNotFavorited
)

// String 實現 fmt.Stringer
func (s Status) String() string {
	switch s {
	case StatusFavorited:
		return "favorited"
	case StatusNotFavorited:
		return "not_favorited"
	}
	return "unknown"
}

// checkResponse 收藏查詢回應
type checkResponse struct {
	IsFavorited bool `json:"isFavorited"`
}

// listResponse 收藏清單回應
type listResponse struct {
	Favorites []recipe.FavoriteRecord `json:"favorites"`
}

// Gateway 收藏操作閘道
// 每個變更操作都先經會話守衛掛令牌；沒有令牌直接回
// Unauthenticated，一個網路請求都不發。
type Gateway struct {
	client *resty.Client
	guard  *session.Guard
}

// NewGateway 創建收藏閘道
func NewGateway(cfg config.FavoritesConfig, guard *session.Guard) *Gateway {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	return &Gateway{
		client: client,
		guard:  guard,
	}
}

// Check 查詢食譜是否已收藏
// 唯讀操作；失敗回 Unknown 並附上原因，呼叫方介面應顯示
// 「無法確認」而非「未收藏」。
func (g *Gateway) Check(ctx context.Context, recipeID string) (Status, error) {
	req, err := g.guard.Attach(ctx, g.client.R().SetContext(ctx))
	if err != nil {
		return StatusUnknown, err
	}

	resp, err := req.Get(fmt.Sprintf("/api/recipes/favorites/check/%s", recipeID))
	if err != nil {
		return StatusUnknown, common.WrapError(common.ErrUpstreamError, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		var body checkResponse
		if err := common.ParseJSONBytes(resp.Body(), &body); err != nil {
			return StatusUnknown, common.WrapError(common.ErrUpstreamError, err)
		}
		if body.IsFavorited {
			return StatusFavorited, nil
		}
		return StatusNotFavorited, nil
	case http.StatusUnauthorized, http.StatusBadRequest:
		return StatusUnknown, g.authError(ctx, resp)
	default:
		return StatusUnknown, common.WrapError(common.ErrUpstreamError,
			fmt.Errorf("favorites service returned status %d", resp.StatusCode()))
	}
}

// Add 新增收藏
// 重複收藏不在這一層擋下，去重交給儲存服務決定。
// 回應判讀為過期時不自動重試，原樣回報讓呼叫方重新認證。
func (g *Gateway) Add(ctx context.Context, c recipe.CanonicalRecipe) (*recipe.FavoriteRecord, error) {
	record := recipe.NewFavoriteRecord(c, time.Now().UTC())

	req, err := g.guard.Attach(ctx, g.client.R().SetContext(ctx))
	if err != nil {
		return nil, err
	}

	resp, err := req.SetBody(record).Post("/api/recipes/favorites")
	if err != nil {
		return nil, common.WrapError(common.ErrUpstreamError, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated:
		common.LogInfo("收藏已新增",
			zap.String("recipe_id", record.RecipeID),
		)
		return &record, nil
	case http.StatusUnauthorized, http.StatusBadRequest:
		return nil, g.authError(ctx, resp)
	default:
		return nil, common.WrapError(common.ErrUpstreamError,
			fmt.Errorf("favorites service returned status %d", resp.StatusCode()))
	}
}

// Remove 移除收藏
// 404 是明確的失敗而非靜默成功：多半代表本地收藏狀態已過時，
// 呼叫方應重新拉取收藏清單對齊。
func (g *Gateway) Remove(ctx context.Context, recipeID string) error {
	req, err := g.guard.Attach(ctx, g.client.R().SetContext(ctx))
	if err != nil {
		return err
	}

	resp, err := req.Delete(fmt.Sprintf("/api/recipes/favorites/%s", recipeID))
	if err != nil {
		return common.WrapError(common.ErrUpstreamError, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		common.LogInfo("收藏已移除",
			zap.String("recipe_id", recipeID),
		)
		return nil
	case http.StatusNotFound:
		return common.ErrFavoriteNotFound
	case http.StatusUnauthorized, http.StatusBadRequest:
		return g.authError(ctx, resp)
	default:
		return common.WrapError(common.ErrUpstreamError,
			fmt.Errorf("favorites service returned status %d", resp.StatusCode()))
	}
}

// List 取得收藏清單
func (g *Gateway) List(ctx context.Context) ([]recipe.FavoriteRecord, error) {
	req, err := g.guard.Attach(ctx, g.client.R().SetContext(ctx))
	if err != nil {
		return nil, err
	}

	resp, err := req.Get("/api/recipes/favorites")
	if err != nil {
		return nil, common.WrapError(common.ErrUpstreamError, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		var body listResponse
		if err := common.ParseJSONBytes(resp.Body(), &body); err != nil {
			return nil, common.WrapError(common.ErrUpstreamError, err)
		}
		return body.Favorites, nil
	case http.StatusUnauthorized, http.StatusBadRequest:
		return nil, g.authError(ctx, resp)
	default:
		return nil, common.WrapError(common.ErrUpstreamError,
			fmt.Errorf("favorites service returned status %d", resp.StatusCode()))
	}
}

// authError 把守衛的判讀結果換成對應錯誤
func (g *Gateway) authError(ctx context.Context, resp *resty.Response) error {
	switch g.guard.Interpret(ctx, resp.StatusCode(), resp.Body()) {
	case session.VerdictExpired:
		return common.ErrSessionExpired
	case session.VerdictUnauthenticated:
		return common.ErrUnauthenticated
	default:
		return common.ErrAuthFailed
	}
}
