package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Translate   TranslateConfig `mapstructure:"translate"`
	Favorites   FavoritesConfig `mapstructure:"favorites"`
	Discover    DiscoverConfig  `mapstructure:"discover"`
	Session     SessionConfig   `mapstructure:"session"`
	Views       ViewsConfig     `mapstructure:"views"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// TranslateConfig 翻譯服務配置
type TranslateConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	SourceLocale string        `mapstructure:"source_locale"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// FavoritesConfig 收藏儲存服務配置
type FavoritesConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DiscoverConfig 隨機食譜來源配置
type DiscoverConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// SessionConfig 會話儲存配置
type SessionConfig struct {
	RedisEnabled bool   `mapstructure:"redis_enabled"`
	RedisAddr    string `mapstructure:"redis_addr"`
	RedisDB      int    `mapstructure:"redis_db"`
}

// ViewsConfig 食譜檢視註冊表配置
type ViewsConfig struct {
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（允許不存在）
	_ = godotenv.Load()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("translate.base_url", "TRANSLATE_BASE_URL")
	viper.BindEnv("favorites.base_url", "FAVORITES_BASE_URL")
	viper.BindEnv("discover.base_url", "DISCOVER_BASE_URL")
	viper.BindEnv("session.redis_enabled", "SESSION_REDIS_ENABLED")
	viper.BindEnv("session.redis_addr", "SESSION_REDIS_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "smart-chef")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// 翻譯服務設定（非官方 Google 端點，僅盡力而為）
	viper.SetDefault("translate.base_url", "https://translate.googleapis.com")
	viper.SetDefault("translate.source_locale", "en")
	viper.SetDefault("translate.timeout", "15s")

	// 收藏儲存服務設定
	viper.SetDefault("favorites.base_url", "http://localhost:8000")
	viper.SetDefault("favorites.timeout", "10s")

	// 隨機食譜來源設定
	viper.SetDefault("discover.base_url", "http://localhost:8000")
	viper.SetDefault("discover.timeout", "20s")
	viper.SetDefault("discover.max_attempts", 3)

	// 會話儲存設定
	viper.SetDefault("session.redis_enabled", false)
	viper.SetDefault("session.redis_addr", "localhost:6379")
	viper.SetDefault("session.redis_db", 0)

	// 檢視註冊表設定
	viper.SetDefault("views.max_size", 1000)
	viper.SetDefault("views.ttl", "1h")
	viper.SetDefault("views.cleanup_interval", "10m")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// 去重窗口預設
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證翻譯服務設定
	if config.Translate.BaseURL == "" {
		return fmt.Errorf("translate base url is required")
	}
	if config.Translate.Timeout <= 0 {
		return fmt.Errorf("invalid translate timeout")
	}

	// 驗證收藏儲存服務設定
	if config.Favorites.BaseURL == "" {
		return fmt.Errorf("favorites base url is required")
	}

	// 驗證隨機食譜來源設定
	if config.Discover.MaxAttempts <= 0 {
		return fmt.Errorf("invalid discover max attempts")
	}

	// 驗證檢視註冊表設定
	if config.Views.MaxSize <= 0 {
		return fmt.Errorf("invalid views max size")
	}
	if config.Views.TTL <= 0 {
		return fmt.Errorf("invalid views ttl")
	}
	if config.Views.CleanupInterval <= 0 {
		return fmt.Errorf("invalid views cleanup interval")
	}

	return nil
}
