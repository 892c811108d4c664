package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	authHandler "smartchef/internal/api/handlers/auth"
	"smartchef/internal/api/handlers/health"
	recipeHandler "smartchef/internal/api/handlers/recipe"
	viewHandler "smartchef/internal/api/handlers/view"
	"smartchef/internal/api/middleware"
	"smartchef/internal/core/discover"
	"smartchef/internal/core/favorites"
	"smartchef/internal/core/present"
	"smartchef/internal/core/session"
	"smartchef/internal/core/translate"
	"smartchef/internal/infrastructure/config"
	"smartchef/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 60 * time.Second
	// 請求體大小限制 (1MB)，食譜內容純文字即可
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, sessionStore session.Store, viewManager *present.Manager) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 請求去重
	router.Use(middleware.Deduplication(cfg))

	// 限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.String("translate_base_url", cfg.Translate.BaseURL),
		zap.String("favorites_base_url", cfg.Favorites.BaseURL),
		zap.Bool("session_redis", cfg.Session.RedisEnabled),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化會話守衛
	guard := session.NewGuard(sessionStore)

	// 初始化翻譯調度器
	translateClient := translate.NewClient(cfg.Translate)
	orchestrator := translate.NewOrchestrator(translateClient)

	// 初始化收藏閘道
	gateway := favorites.NewGateway(cfg.Favorites, guard)

	// 初始化隨機食譜客戶端
	discoverClient := discover.NewClient(cfg.Discover)

	if viewManager == nil {
		common.LogError("View manager is required")
		return nil, fmt.Errorf("view manager is required")
	}

	// 全局中間件：設置超時和配置
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		// 設置配置與檢視註冊表
		c.Set("config", cfg)
		c.Set("view_manager", viewManager)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		recipeHandlerInstance := recipeHandler.NewHandler(orchestrator, discoverClient)
		viewHandlerInstance := viewHandler.NewHandler(viewManager, orchestrator, gateway)
		authHandlerInstance := authHandler.NewHandler(guard, gateway)

		// 食譜正規化與翻譯
		recipeGroup := api.Group("/recipe")
		{
			recipeGroup.POST("/normalize", recipeHandlerInstance.HandleNormalize)
			recipeGroup.POST("/localize", recipeHandlerInstance.HandleLocalize)
			recipeGroup.GET("/random", recipeHandlerInstance.HandleRandom)
		}

		// 食譜檢視
		viewGroup := api.Group("/view")
		{
			viewGroup.POST("", viewHandlerInstance.HandleCreate)
			viewGroup.GET("/:id", viewHandlerInstance.HandleGet)
			viewGroup.POST("/:id/language", viewHandlerInstance.HandleLanguage)
			viewGroup.POST("/:id/favorite", viewHandlerInstance.HandleFavorite)
		}

		// 會話與收藏清單
		authGroup := api.Group("/auth")
		{
			authGroup.GET("/session", authHandlerInstance.HandleSession)
			authGroup.POST("/session", authHandlerInstance.HandleEstablish)
			authGroup.DELETE("/session", authHandlerInstance.HandleSignOut)
		}
		api.GET("/favorites", authHandlerInstance.HandleFavoritesList)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
