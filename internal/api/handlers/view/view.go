package view

import (
	"net/http"

	"smartchef/internal/core/favorites"
	"smartchef/internal/core/present"
	coreRecipe "smartchef/internal/core/recipe"
	"smartchef/internal/core/translate"
	"smartchef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateRequest 建立檢視請求
// recipe 允許為 null，對應「完全沒有輸入」的 Unavailable 檢視。
type CreateRequest struct {
	Recipe *coreRecipe.RawRecipe `json:"recipe"`
}

// LanguageRequest 切換語言請求
type LanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

// Handler 檢視處理程序
type Handler struct {
	manager      *present.Manager
	orchestrator *translate.Orchestrator
	gateway      *favorites.Gateway
}

// NewHandler 創建檢視處理程序
func NewHandler(manager *present.Manager, orchestrator *translate.Orchestrator, gateway *favorites.Gateway) *Handler {
	return &Handler{
		manager:      manager,
		orchestrator: orchestrator,
		gateway:      gateway,
	}
}

// HandleCreate 建立食譜檢視
func (h *Handler) HandleCreate(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	v := present.NewView(req.Recipe, h.orchestrator, h.gateway)
	id, err := h.manager.Create(v)
	if err != nil {
		respondError(c, err)
		return
	}

	// 背景解析收藏狀態，解析前介面顯示 unknown
	v.ResolveFavorite(c.Request.Context())

	snapshot := v.Snapshot()
	common.LogInfo("食譜檢視已建立",
		zap.String("request_id", requestID),
		zap.String("view_id", id),
		zap.String("state", string(snapshot.State)),
	)

	c.JSON(http.StatusOK, gin.H{
		"view_id": id,
		"view":    snapshot,
	})
}

// HandleGet 取得檢視目前的顯示內容
func (h *Handler) HandleGet(c *gin.Context) {
	v, err := h.manager.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"view": v.Snapshot()})
}

// HandleLanguage 切換檢視語言
func (h *Handler) HandleLanguage(c *gin.Context) {
	v, err := h.manager.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	language, err := translate.ParseLanguage(req.Language)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := v.SetLanguage(c.Request.Context(), language); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"view": v.Snapshot()})
}

// HandleFavorite 切換收藏
func (h *Handler) HandleFavorite(c *gin.Context) {
	v, err := h.manager.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	status, err := v.ToggleFavorite(c.Request.Context())
	if err != nil {
		common.LogWarn("收藏切換失敗",
			zap.String("view_id", c.Param("id")),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favorite_status": status.String(),
		"view":            v.Snapshot(),
	})
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
