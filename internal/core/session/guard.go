package session

import (
	"context"
	"net/http"
	"strings"

	"smartchef/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Verdict 授權回應的判讀結果
type Verdict int

const (
	VerdictOK Verdict = iota
	// VerdictUnauthenticated 完全沒有令牌，提示登入即可，不動任何會話狀態
	VerdictUnauthenticated
	// VerdictExpired 令牌已過期，本地會話隨即作廢
	VerdictExpired
	// VerdictOtherClientError 其他認證失敗（如令牌格式錯誤），會話狀態保持原樣，
	// 避免把暫時性的伺服器問題誤判成強制登出
	VerdictOtherClientError
)

// String 實現 fmt.Stringer
func (v Verdict) String() string {
	switch v {
	case VerdictOK:
		return "ok"
	case VerdictUnauthenticated:
		return "unauthenticated"
	case VerdictExpired:
		return "expired"
	case VerdictOtherClientError:
		return "client_error"
	}
	return "unknown"
}

// authMessage 儲存服務錯誤回應的 message 欄位
type authMessage struct {
	Message string `json:"message"`
}

// Guard 會話守衛
// 行程級令牌唯一的寫入方；負責令牌的出示、掛載與
// 授權失敗回應的判讀。
type Guard struct {
	store Store
}

// NewGuard 創建會話守衛
func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// CurrentToken 讀取目前令牌
// 每次使用都重讀儲存，令牌可能在其他操作進行中被作廢。
func (g *Guard) CurrentToken(ctx context.Context) (string, bool) {
	token, err := g.store.Token(ctx)
	if err != nil {
		common.LogError("讀取會話令牌失敗", zap.Error(err))
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

// DisplayName 讀取快取的顯示名稱
func (g *Guard) DisplayName(ctx context.Context) string {
	name, err := g.store.DisplayName(ctx)
	if err != nil {
		return ""
	}
	return name
}

// Establish 登入成功後寫入會話
func (g *Guard) Establish(ctx context.Context, token, displayName string) error {
	return g.store.Set(ctx, token, displayName)
}

// Attach 把令牌掛上外送請求
// 沒有令牌時回傳 ErrUnauthenticated，請求不應送出。
func (g *Guard) Attach(ctx context.Context, req *resty.Request) (*resty.Request, error) {
	token, ok := g.CurrentToken(ctx)
	if !ok {
		return nil, common.ErrUnauthenticated
	}
	return req.SetHeader("Authorization", "Bearer "+token), nil
}

// Interpret 判讀儲存服務的授權回應
// 只定義在成功與 4xx 認證失敗上：401/400 且 message 含 expired
// 視為令牌過期，當場作廢本地會話；其他 4xx 認證失敗保持會話不動。
// 5xx 屬上游錯誤，呼叫方應在進入判讀前先行分流；落進來時
// 一律當成不動會話的一般認證失敗處理。
func (g *Guard) Interpret(ctx context.Context, status int, body []byte) Verdict {
	if status < http.StatusBadRequest {
		return VerdictOK
	}

	var msg authMessage
	_ = common.ParseJSONBytes(body, &msg)
	lowered := strings.ToLower(msg.Message)

	if status == http.StatusUnauthorized || status == http.StatusBadRequest {
		switch {
		case strings.Contains(lowered, "expired"):
			if err := g.Invalidate(ctx); err != nil {
				common.LogError("作廢過期會話失敗", zap.Error(err))
			}
			common.LogWarn("會話令牌已過期", zap.Int("status", status))
			return VerdictExpired
		case strings.Contains(lowered, "no token"):
			return VerdictUnauthenticated
		default:
			return VerdictOtherClientError
		}
	}

	return VerdictOtherClientError
}

// Invalidate 清除持久化的令牌與快取的顯示名稱
// 不負責任何導頁，後續動作由呼叫方決定。
func (g *Guard) Invalidate(ctx context.Context) error {
	return g.store.Clear(ctx)
}
