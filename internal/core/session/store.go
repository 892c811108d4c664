package session

import (
	"context"
	"fmt"
	"sync"

	"smartchef/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// 會話在儲存中的鍵，整個行程只有一份會話
const (
	keyToken       = "smartchef:session:token"
	keyDisplayName = "smartchef:session:display_name"
)

// Store 會話持久化介面
// 令牌是行程級單一值；讀取方每次使用都要重讀，
// 不得把令牌複製到元件私有狀態。
type Store interface {
	Token(ctx context.Context) (string, error)
	DisplayName(ctx context.Context) (string, error)
	Set(ctx context.Context, token, displayName string) error
	Clear(ctx context.Context) error
}

// NewStore 依設定建立會話儲存
// redis 關閉時退回行程內記憶體儲存。
func NewStore(cfg config.SessionConfig) (Store, error) {
	if !cfg.RedisEnabled {
		return NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// RedisStore redis 會話儲存
type RedisStore struct {
	client *redis.Client
}

// Token 讀取令牌，缺失時回傳空字串
func (s *RedisStore) Token(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, keyToken).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	return val, nil
}

// DisplayName 讀取顯示名稱，缺失時回傳空字串
func (s *RedisStore) DisplayName(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, keyDisplayName).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read display name: %w", err)
	}
	return val, nil
}

// Set 寫入會話
func (s *RedisStore) Set(ctx context.Context, token, displayName string) error {
	if err := s.client.Set(ctx, keyToken, token, 0).Err(); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	if err := s.client.Set(ctx, keyDisplayName, displayName, 0).Err(); err != nil {
		return fmt.Errorf("failed to store display name: %w", err)
	}
	return nil
}

// Clear 清除令牌與顯示名稱
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, keyToken, keyDisplayName).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close 關閉 redis 連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// MemoryStore 行程內會話儲存，供測試與 redis 關閉時使用
type MemoryStore struct {
	mu          sync.RWMutex
	token       string
	displayName string
}

// NewMemoryStore 創建行程內會話儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) DisplayName(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayName, nil
}

func (s *MemoryStore) Set(ctx context.Context, token, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.displayName = displayName
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.displayName = ""
	return nil
}
