package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vybr/vybr-backend/internal/domain"
)

// OtpLimiter throttles code issuance and guessing per email. AllowSend is
// consulted before minting a code, AllowVerify before each code comparison;
// ResetVerify clears the attempt counter after a successful verification.
type OtpLimiter interface {
	AllowSend(ctx context.Context, email string) error
	AllowVerify(ctx context.Context, email string) error
	ResetVerify(ctx context.Context, email string) error
}

type RedisOtpLimiter struct {
	client       *redis.Client
	keyPrefix    string
	sendCooldown time.Duration
	attemptTTL   time.Duration
	maxAttempts  int
}

func NewRedisOtpLimiter(addr, password string, sendCooldown, attemptTTL time.Duration, maxAttempts int) *RedisOtpLimiter {
	return &RedisOtpLimiter{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		keyPrefix:    "vybr:auth:otp",
		sendCooldown: sendCooldown,
		attemptTTL:   attemptTTL,
		maxAttempts:  maxAttempts,
	}
}

// NewRedisOtpLimiterFromClient is used by tests to back the limiter with an
// already-built client (e.g. miniredis).
func NewRedisOtpLimiterFromClient(client *redis.Client, sendCooldown, attemptTTL time.Duration, maxAttempts int) *RedisOtpLimiter {
	return &RedisOtpLimiter{
		client:       client,
		keyPrefix:    "vybr:auth:otp",
		sendCooldown: sendCooldown,
		attemptTTL:   attemptTTL,
		maxAttempts:  maxAttempts,
	}
}

func (l *RedisOtpLimiter) AllowSend(ctx context.Context, email string) error {
	allowed, err := l.client.SetNX(ctx, l.sendKey(email), "1", l.sendCooldown).Result()
	if err != nil {
		return fmt.Errorf("otp send limiter: %w", err)
	}
	if !allowed {
		return domain.ErrRateLimited
	}
	return nil
}

func (l *RedisOtpLimiter) AllowVerify(ctx context.Context, email string) error {
	key := l.verifyKey(email)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("otp verify limiter: %w", err)
	}
	if count == 1 {
		_ = l.client.Expire(ctx, key, l.attemptTTL).Err()
	}
	if count > int64(l.maxAttempts) {
		return domain.ErrRateLimited
	}
	return nil
}

func (l *RedisOtpLimiter) ResetVerify(ctx context.Context, email string) error {
	return l.client.Del(ctx, l.verifyKey(email)).Err()
}

func (l *RedisOtpLimiter) sendKey(email string) string {
	return fmt.Sprintf("%s:resend:%s", l.keyPrefix, email)
}

func (l *RedisOtpLimiter) verifyKey(email string) string {
	return fmt.Sprintf("%s:verify:%s", l.keyPrefix, email)
}

// NoopOtpLimiter disables per-email throttling (no Redis configured).
type NoopOtpLimiter struct{}

func (NoopOtpLimiter) AllowSend(ctx context.Context, email string) error   { return nil }
func (NoopOtpLimiter) AllowVerify(ctx context.Context, email string) error { return nil }
func (NoopOtpLimiter) ResetVerify(ctx context.Context, email string) error { return nil }
