package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const limiterCacheSize = 10000

// RateLimiter 按用户（未登录时按 IP）限流，限流器保存在 LRU 中
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	every    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per key per minute, with bursts
// of up to burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	cache, err := lru.New[string, *rate.Limiter](limiterCacheSize)
	if err != nil {
		panic(err)
	}
	return &RateLimiter{
		limiters: cache,
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if l, ok := rl.limiters.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(rl.every, rl.burst)
	// 并发下以先写入者为准
	if prev, ok, _ := rl.limiters.PeekOrAdd(key, l); ok {
		return prev
	}
	return l
}

// Allow reports whether key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

func limiterKey(c *gin.Context) string {
	if user := CurrentUser(c); user != nil {
		return "u:" + strconv.FormatUint(uint64(user.ID), 10)
	}
	return "ip:" + c.ClientIP()
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(limiterKey(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Terlalu banyak permintaan, sila cuba sebentar lagi"})
			return
		}
		c.Next()
	}
}
