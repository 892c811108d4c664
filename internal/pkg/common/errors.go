package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 支援 errors.Is / errors.As 比對原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，包裝後的錯誤仍可對上預定義錯誤
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// WrapError 以預定義錯誤為模板包裝原始錯誤
func WrapError(base *CustomError, err error) *CustomError {
	return &CustomError{
		Code:    base.Code,
		Message: base.Message,
		Status:  base.Status,
		Err:     err,
	}
}

// AsCustomError 取出鏈上的 CustomError，找不到時回傳 nil
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeUnauthenticated  = "UNAUTHENTICATED"    // 401
	ErrCodeSessionExpired   = "SESSION_EXPIRED"    // 401
	ErrCodeAuthFailed       = "AUTH_FAILED"        // 401
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeFavoriteNotFound = "FAVORITE_NOT_FOUND" // 404
	ErrCodeConflict         = "CONFLICT"           // 409
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeUpstreamError      = "UPSTREAM_ERROR"      // 502
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrUnauthenticated = NewError(ErrCodeUnauthenticated, "尚未登入", http.StatusUnauthorized, nil)
	ErrSessionExpired  = NewError(ErrCodeSessionExpired, "會話已過期，請重新登入", http.StatusUnauthorized, nil)
	ErrAuthFailed      = NewError(ErrCodeAuthFailed, "認證失敗", http.StatusUnauthorized, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrConflict        = NewError(ErrCodeConflict, "資源衝突", http.StatusConflict, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrUpstreamError      = NewError(ErrCodeUpstreamError, "上游服務錯誤", http.StatusBadGateway, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrFavoriteNotFound = NewError(ErrCodeFavoriteNotFound, "收藏不存在", http.StatusNotFound, nil)
	ErrViewNotFound     = NewError("VIEW_NOT_FOUND", "食譜檢視不存在", http.StatusNotFound, nil)
	ErrViewUnavailable  = NewError("VIEW_UNAVAILABLE", "食譜內容不可用", http.StatusConflict, nil)
	ErrViewStoreFull    = NewError("VIEW_STORE_FULL", "食譜檢視已達上限", http.StatusServiceUnavailable, nil)
	ErrUnknownLanguage  = NewError("UNKNOWN_LANGUAGE", "不支援的語言", http.StatusBadRequest, nil)
	ErrNoFreshRecipe    = NewError("NO_FRESH_RECIPE", "多次嘗試仍取得重複食譜", http.StatusBadGateway, nil)
)
