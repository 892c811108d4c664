package present

import (
	"sync"
	"time"

	"smartchef/internal/infrastructure/config"
	"smartchef/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager 檢視註冊表
// 讓每份顯示中的食譜可以用識別碼尋址；逾期項目定時清理，
// 容量滿時以 LRU 淘汰。
type Manager struct {
	cfg   config.ViewsConfig
	mu    sync.RWMutex
	store map[string]*viewEntry
	stats managerStats
	done  chan struct{}
	once  sync.Once
}

// viewEntry 註冊表條目
type viewEntry struct {
	view        *View
	createdAt   time.Time
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// managerStats 註冊表統計
type managerStats struct {
	created   int64
	hits      int64
	misses    int64
	evictions int64
}

// NewManager 創建檢視註冊表
func NewManager(cfg config.ViewsConfig) *Manager {
	m := &Manager{
		cfg:   cfg,
		store: make(map[string]*viewEntry),
		done:  make(chan struct{}),
	}

	// 啟動清理過期檢視的協程
	go m.startCleanup()

	common.LogInfo("檢視註冊表已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return m
}

// Create 登錄新的檢視並回傳識別碼
func (m *Manager) Create(view *View) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.store) >= m.cfg.MaxSize {
		evicted := m.cleanupLocked()
		if evicted > 0 {
			common.LogInfo("檢視清理執行",
				zap.Int("清理數量", evicted),
			)
		}

		// 仍然超過上限時執行 LRU 淘汰
		if len(m.store) >= m.cfg.MaxSize {
			m.evictLRULocked()
		}

		if len(m.store) >= m.cfg.MaxSize {
			common.LogWarn("檢視註冊表已滿",
				zap.Int("目前容量", len(m.store)),
			)
			return "", common.ErrViewStoreFull
		}
	}

	id := uuid.New().String()
	now := time.Now()
	m.store[id] = &viewEntry{
		view:       view,
		createdAt:  now,
		expiresAt:  now.Add(m.cfg.TTL),
		lastAccess: now,
	}
	m.stats.created++

	return id, nil
}

// Get 取得檢視
func (m *Manager) Get(id string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[id]
	if !exists {
		m.stats.misses++
		return nil, common.ErrViewNotFound
	}

	if time.Now().After(entry.expiresAt) {
		delete(m.store, id)
		m.stats.evictions++
		m.stats.misses++
		return nil, common.ErrViewNotFound
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	m.stats.hits++
	return entry.view, nil
}

// startCleanup 啟動清理過期檢視的協程
func (m *Manager) startCleanup() {
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			count := m.cleanupLocked()
			m.mu.Unlock()
			if count > 0 {
				common.LogInfo("已清理過期檢視",
					zap.Int("數量", count),
				)
			}
		case <-m.done:
			return
		}
	}
}

// cleanupLocked 清理過期條目，需持有寫鎖
func (m *Manager) cleanupLocked() int {
	now := time.Now()
	count := 0
	for id, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, id)
			m.stats.evictions++
			count++
		}
	}
	return count
}

// evictLRULocked 淘汰最少使用的條目，需持有寫鎖
func (m *Manager) evictLRULocked() {
	var oldestID string
	var oldestAccess time.Time
	var lowestCount int

	for id, entry := range m.store {
		if oldestID == "" ||
			entry.accessCount < lowestCount ||
			(entry.accessCount == lowestCount && entry.lastAccess.Before(oldestAccess)) {
			oldestID = id
			oldestAccess = entry.lastAccess
			lowestCount = entry.accessCount
		}
	}

	if oldestID != "" {
		delete(m.store, oldestID)
		m.stats.evictions++
		common.LogInfo("檢視已淘汰(LRU)",
			zap.String("view_id", oldestID),
		)
	}
}

// GetStats 取得註冊表統計信息
func (m *Manager) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.cfg.MaxSize,
		"created":   m.stats.created,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
	}
}

// Close 關閉註冊表
func (m *Manager) Close() error {
	m.once.Do(func() {
		close(m.done)
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]*viewEntry)

	common.LogInfo("檢視註冊表已關閉",
		zap.Int64("建立次數", m.stats.created),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
