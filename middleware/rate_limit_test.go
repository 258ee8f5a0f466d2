package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"golang.org/x/time/rate"
)

func TestEvictIdleLimiters(t *testing.T) {
	limitersMu.Lock()
	limiters = map[string]*ipLimiter{
		"1.1.1.1": {limiter: rate.NewLimiter(10, 20), lastSeen: time.Now().Add(-2 * limiterIdleTTL)},
		"2.2.2.2": {limiter: rate.NewLimiter(10, 20), lastSeen: time.Now()},
	}
	limitersMu.Unlock()

	evictIdleLimiters(time.Now())

	limitersMu.Lock()
	defer limitersMu.Unlock()

	// 闲置超时的被回收，活跃的保留
	assert.NotContains(t, limiters, "1.1.1.1")
	assert.Contains(t, limiters, "2.2.2.2")
}
