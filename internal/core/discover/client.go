package discover

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"smartchef/internal/core/recipe"
	"smartchef/internal/infrastructure/config"
	"smartchef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// randomResponse 隨機食譜來源的回應
type randomResponse struct {
	Recipe recipe.RawRecipe `json:"recipe"`
}

// Client 隨機食譜客戶端
// 上游偶爾連續回同一份食譜；以上一次的識別碼偵測重複，
// 用有上限的重試迴圈換掉，次數用盡回報明確的放棄錯誤，
// 不做無界遞迴。
type Client struct {
	client      *resty.Client
	maxAttempts int

	mu     sync.Mutex
	lastID string
}

// NewClient 創建隨機食譜客戶端
func NewClient(cfg config.DiscoverConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	return &Client{
		client:      client,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Fetch 取得一份未重複的隨機食譜
func (c *Client) Fetch(ctx context.Context, persons int) (recipe.RawRecipe, error) {
	if persons <= 0 {
		persons = 2
	}

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		raw, err := c.fetchOnce(ctx, persons)
		if err != nil {
			return recipe.RawRecipe{}, err
		}

		id := rawIdentifier(raw)
		if id == "" {
			// 來源沒給識別碼，無從比對重複，照常採用
			return raw, nil
		}

		c.mu.Lock()
		duplicate := id == c.lastID
		if !duplicate {
			c.lastID = id
		}
		c.mu.Unlock()

		if !duplicate {
			return raw, nil
		}

		common.LogInfo("隨機食譜重複，重新取得",
			zap.String("recipe_id", id),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
		)
	}

	return recipe.RawRecipe{}, common.ErrNoFreshRecipe
}

// fetchOnce 發出單次請求
func (c *Client) fetchOnce(ctx context.Context, persons int) (recipe.RawRecipe, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"persons": strconv.Itoa(persons),
			// 帶上時間戳避免中間層快取
			"t": strconv.FormatInt(time.Now().UnixMilli(), 10),
		}).
		Get("/api/random-recipe")

	if err != nil {
		return recipe.RawRecipe{}, common.WrapError(common.ErrUpstreamError, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return recipe.RawRecipe{}, common.WrapError(common.ErrUpstreamError,
			fmt.Errorf("random recipe source returned status %d", resp.StatusCode()))
	}

	var body randomResponse
	if err := common.ParseJSONBytes(resp.Body(), &body); err != nil {
		return recipe.RawRecipe{}, common.WrapError(common.ErrUpstreamError, err)
	}

	return body.Recipe, nil
}

// rawIdentifier 取出用於重複偵測的識別碼
func rawIdentifier(raw recipe.RawRecipe) string {
	if raw.ID != "" {
		return raw.ID
	}
	return raw.MongoID
}
