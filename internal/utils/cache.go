package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem struct {
	data      any
	expiresAt time.Time
}

// Cache 带过期时间的本地 LRU 缓存，用于列表接口
type Cache struct {
	lruCache *lru.Cache[string, cacheItem]
	now      func() time.Time
}

func NewCache(size int) *Cache {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		// only fails on non-positive size
		panic(err)
	}
	return &Cache{lruCache: l, now: time.Now}
}

// Set 设置缓存，ttl 为有效期
func (c *Cache) Set(key string, data any, ttl time.Duration) {
	c.lruCache.Add(key, cacheItem{data: data, expiresAt: c.now().Add(ttl)})
}

// Get 获取缓存，不存在或已过期返回 nil
func (c *Cache) Get(key string) any {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}
	if c.now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return nil
	}
	return val.data
}

func (c *Cache) Delete(keys ...string) {
	for _, key := range keys {
		c.lruCache.Remove(key)
	}
}
