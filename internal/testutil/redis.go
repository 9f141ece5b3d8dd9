package testutil

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vybr/vybr-backend/internal/ratelimit"
)

// NewMiniredisOtpLimiter backs an OTP limiter with an in-process Redis.
func NewMiniredisOtpLimiter(t *testing.T, sendCooldown, attemptTTL time.Duration, maxAttempts int) *ratelimit.RedisOtpLimiter {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})

	return ratelimit.NewRedisOtpLimiterFromClient(client, sendCooldown, attemptTTL, maxAttempts)
}
