package auth

import (
	"net/http"

	"smartchef/internal/core/favorites"
	"smartchef/internal/core/session"
	"smartchef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EstablishRequest 安裝會話請求
// 登入本身由外部認證服務完成，這裡只接手它簽發的令牌。
type EstablishRequest struct {
	Token       string `json:"token" binding:"required"`
	DisplayName string `json:"username"`
}

// Handler 會話處理程序
type Handler struct {
	guard   *session.Guard
	gateway *favorites.Gateway
}

// NewHandler 創建會話處理程序
func NewHandler(guard *session.Guard, gateway *favorites.Gateway) *Handler {
	return &Handler{
		guard:   guard,
		gateway: gateway,
	}
}

// HandleEstablish 安裝會話令牌
func (h *Handler) HandleEstablish(c *gin.Context) {
	var req EstablishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.guard.Establish(c.Request.Context(), req.Token, req.DisplayName); err != nil {
		common.LogError("會話寫入失敗", zap.Error(err))
		respondError(c, err)
		return
	}

	common.LogInfo("會話已建立",
		zap.String("display_name", req.DisplayName),
	)
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// HandleSignOut 登出，清除本地會話
func (h *Handler) HandleSignOut(c *gin.Context) {
	if err := h.guard.Invalidate(c.Request.Context()); err != nil {
		common.LogError("會話清除失敗", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

// HandleSession 查詢目前會話狀態
func (h *Handler) HandleSession(c *gin.Context) {
	_, ok := h.guard.CurrentToken(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"authenticated": ok,
		"username":      h.guard.DisplayName(c.Request.Context()),
	})
}

// HandleFavoritesList 取得收藏清單
func (h *Handler) HandleFavoritesList(c *gin.Context) {
	records, err := h.gateway.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": records})
}

// respondError 依錯誤分類寫回響應
func respondError(c *gin.Context, err error) {
	if ce := common.AsCustomError(err); ce != nil {
		c.JSON(ce.Status, gin.H{"error": ce.Message, "code": ce.Code})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
		"code":  common.ErrCodeInternalError,
	})
}
