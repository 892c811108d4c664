package translate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"smartchef/internal/infrastructure/config"
	"smartchef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Client 翻譯服務客戶端
// 走非官方的 Google 翻譯端點，無需認證、盡力而為；
// 失敗的處理交給上層的降級策略。
type Client struct {
	client *resty.Client
	source string
}

// NewClient 創建翻譯服務客戶端
func NewClient(cfg config.TranslateConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	source := cfg.SourceLocale
	if source == "" {
		source = "en"
	}

	return &Client{
		client: client,
		source: source,
	}
}

// Translate 翻譯一段文字
// 回應是巢狀陣列：[[["譯文","原文",...],...],...]，
// 逐項取出第一欄串接成完整譯文。
func (c *Client) Translate(ctx context.Context, text string, target Language) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     c.source,
			"tl":     target.Code(),
			"dt":     "t",
			"q":      text,
		}).
		Get("/translate_a/single")

	if err != nil {
		return "", fmt.Errorf("failed to send translation request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("translation service returned status %d", resp.StatusCode())
	}

	return parseTranslation(resp.Body())
}

// parseTranslation 解析巢狀陣列回應
// 空結果以空字串回傳，由調度層決定是否以原文替代。
func parseTranslation(body []byte) (string, error) {
	var payload []interface{}
	if err := common.ParseJSONBytes(body, &payload); err != nil {
		return "", fmt.Errorf("failed to parse translation response: %w", err)
	}

	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	segments, ok := payload[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected translation response shape")
	}

	var sb strings.Builder
	for _, seg := range segments {
		item, ok := seg.([]interface{})
		if !ok || len(item) == 0 {
			continue
		}
		if piece, ok := item[0].(string); ok {
			sb.WriteString(piece)
		}
	}

	return sb.String(), nil
}
