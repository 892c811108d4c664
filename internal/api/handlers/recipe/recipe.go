package recipe

import (
	"net/http"
	"strconv"

	"smartchef/internal/core/discover"
	coreRecipe "smartchef/internal/core/recipe"
	"smartchef/internal/core/translate"
	"smartchef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalizeRequest 翻譯請求
type LocalizeRequest struct {
	Recipe   coreRecipe.CanonicalRecipe `json:"recipe" binding:"required"`
	Language string                     `json:"language" binding:"required"` // english / telugu / hindi
}

// LocalizeResponse 翻譯回應
type LocalizeResponse struct {
	Recipe   coreRecipe.LocalizedRecipe `json:"recipe"`
	Degraded bool                       `json:"translation_degraded"`
}

// Handler 食譜處理程序
type Handler struct {
	orchestrator *translate.Orchestrator
	discover     *discover.Client
}

// NewHandler 創建食譜處理程序
func NewHandler(orchestrator *translate.Orchestrator, discoverClient *discover.Client) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		discover:     discoverClient,
	}
}

// HandleNormalize 外部鬆散食譜轉正規化食譜
func (h *Handler) HandleNormalize(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	var raw coreRecipe.RawRecipe
	if err := c.ShouldBindJSON(&raw); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	canonical := coreRecipe.Normalize(raw)

	common.LogInfo("食譜正規化完成",
		zap.String("request_id", requestID),
		zap.String("recipe_id", canonical.Identifier),
		zap.Int("steps", len(canonical.Steps)),
		zap.Int("ingredients", len(canonical.Ingredients)),
	)

	c.JSON(http.StatusOK, gin.H{"recipe": canonical})
}

// HandleLocalize 把正規化食譜翻譯成目標語言
func (h *Handler) HandleLocalize(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	var req LocalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	language, err := translate.ParseLanguage(req.Language)
	if err != nil {
		respondError(c, err)
		return
	}

	localized, degraded := h.orchestrator.Localize(c.Request.Context(), req.Recipe, language)

	c.JSON(http.StatusOK, LocalizeResponse{
		Recipe:   localized,
		Degraded: degraded,
	})
}

// HandleRandom 取得隨機食譜並正規化
func (h *Handler) HandleRandom(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
		c.Header("X-Request-ID", requestID)
	}

	persons := 2
	if val := c.Query("persons"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			persons = parsed
		}
	}

	raw, err := h.discover.Fetch(c.Request.Context(), persons)
	if err != nil {
		common.LogError("隨機食譜取得失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		respondError(c, err)
		return
	}

	canonical := coreRecipe.Normalize(raw)
	c.JSON(http.StatusOK, gin.H{"recipe": canonical})
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
