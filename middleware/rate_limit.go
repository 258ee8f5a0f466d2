package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/kyanome/rag-backend/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// 闲置超过该时长的限流器会被回收，防止 map 随客户端 IP 无限增长
const limiterIdleTTL = 10 * time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	limiters    = make(map[string]*ipLimiter)
	limitersMu  sync.Mutex
	cleanupOnce sync.Once
)

func getLimiter(ip string) *rate.Limiter {
	cleanupOnce.Do(func() {
		go cleanupLimiters()
	})

	limitersMu.Lock()
	defer limitersMu.Unlock()

	entry, ok := limiters[ip]
	if !ok {
		cfg := config.GetInstance()
		qps := cfg.GetFloat64OrDefault(config.RateLimitQPS, 10)
		burst := cfg.GetIntOrDefault(config.RateLimitBurst, 20)
		entry = &ipLimiter{limiter: rate.NewLimiter(rate.Limit(qps), burst)}
		limiters[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func cleanupLimiters() {
	ticker := time.NewTicker(limiterIdleTTL)
	defer ticker.Stop()

	for range ticker.C {
		evictIdleLimiters(time.Now())
	}
}

func evictIdleLimiters(now time.Time) {
	limitersMu.Lock()
	defer limitersMu.Unlock()

	for ip, entry := range limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(limiters, ip)
		}
	}
}

// RateLimit 按客户端 IP 限流
func RateLimit(ctx *gin.Context) {
	if !getLimiter(ctx.ClientIP()).Allow() {
		ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}
	ctx.Next()
}
