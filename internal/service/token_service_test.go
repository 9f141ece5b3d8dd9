package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybr/vybr-backend/internal/config"
	"github.com/vybr/vybr-backend/internal/domain"
	"github.com/vybr/vybr-backend/internal/service"
	"github.com/vybr/vybr-backend/internal/testutil"
)

func TestTokenService_SignAndVerify(t *testing.T) {
	cfg := testutil.TestConfig()
	tokens := service.NewTokenService(cfg)

	user := &domain.User{
		ID:         uuid.New(),
		Email:      "student@test.edu",
		IsVerified: true,
	}

	token, err := tokens.Sign(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.True(t, claims.IsVerified)
	assert.NotEmpty(t, claims.ID, "token should carry a unique id")
}

func TestTokenService_VerifyFailures(t *testing.T) {
	cfg := testutil.TestConfig()
	tokens := service.NewTokenService(cfg)

	user := &domain.User{ID: uuid.New(), Email: "student@test.edu", IsVerified: true}
	valid, err := tokens.Sign(user)
	require.NoError(t, err)

	otherCfg := testutil.TestConfig()
	otherCfg.JWTSecret = "a-different-secret-entirely"
	foreign, err := service.NewTokenService(otherCfg).Sign(user)
	require.NoError(t, err)

	expiredCfg := testutil.TestConfig()
	expiredCfg.SessionTTL = -time.Minute
	expired, err := service.NewTokenService(expiredCfg).Sign(user)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.jwt"},
		{"tampered payload", valid[:len(valid)-4] + "xxxx"},
		{"wrong signing key", foreign},
		{"expired token", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestTokenService_SessionCookie(t *testing.T) {
	cfg := testutil.TestConfig()
	tokens := service.NewTokenService(cfg)

	cookie := tokens.SessionCookie("some-token")
	assert.Equal(t, service.SessionCookieName, cookie.Name)
	assert.Equal(t, "some-token", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure, "test environment should not force secure cookies")
	assert.Equal(t, int(cfg.SessionTTL.Seconds()), cookie.MaxAge)

	prodCfg := testutil.TestConfig()
	prodCfg.Environment = "production"
	prodCookie := service.NewTokenService(prodCfg).SessionCookie("some-token")
	assert.True(t, prodCookie.Secure)
}

func TestTokenService_ClearedCookie(t *testing.T) {
	tokens := service.NewTokenService(testutil.TestConfig())

	cookie := tokens.ClearedCookie()
	assert.Equal(t, service.SessionCookieName, cookie.Name)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
}

func TestConfigIsProduction(t *testing.T) {
	cfg := &config.Config{Environment: "production"}
	assert.True(t, cfg.IsProduction())
	assert.False(t, (&config.Config{Environment: "development"}).IsProduction())
}
