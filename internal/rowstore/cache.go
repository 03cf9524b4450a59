package rowstore

import (
	"sync"
	"time"

	"PipocaFlix/internal/model"
)

// CacheEntry 一次成功请求的结果
type CacheEntry struct {
	Data      *model.RawRowSet
	Timestamp time.Time
}

// Cache 按请求签名缓存列表结果。条目只会被覆盖不会淘汰：
// 键空间即不同查询的数量，规模很小。过期条目仍保留，供请求失败时兜底。
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]CacheEntry
}

// NewCache now 为空时使用 time.Now
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]CacheEntry),
	}
}

// Fresh 返回未过期（age < ttl）的条目
func (c *Cache) Fresh(key string) (*model.RawRowSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.Timestamp) >= c.ttl {
		return nil, false
	}
	return entry.Data, true
}

// Get 返回条目，不论是否过期
func (c *Cache) Get(key string) (*model.RawRowSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.Data, true
}

// Put 写入/覆盖条目，时间戳取当前时钟
func (c *Cache) Put(key string, data *model.RawRowSet) {
	c.mu.Lock()
	c.entries[key] = CacheEntry{Data: data, Timestamp: c.now()}
	c.mu.Unlock()
}

// Clear 删除所有条目
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// Len 条目数
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
