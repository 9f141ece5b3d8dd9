package service

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vybr/vybr-backend/internal/config"
	"github.com/vybr/vybr-backend/internal/domain"
)

// SessionCookieName is the single cookie carrying the session token.
const SessionCookieName = "auth-token"

type SessionClaims struct {
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the self-contained session credential and
// owns the cookie transport contract.
type TokenService struct {
	secret        []byte
	ttl           time.Duration
	secureCookies bool
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:        []byte(cfg.JWTSecret),
		ttl:           cfg.SessionTTL,
		secureCookies: cfg.IsProduction(),
	}
}

func (s *TokenService) Sign(user *domain.User) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:     user.ID.String(),
		Email:      user.Email,
		IsVerified: user.IsVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the claims for a valid token. Every failure mode (bad
// signature, malformed, expired) collapses into ErrInvalidToken so callers
// cannot tell them apart.
func (s *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// SessionCookie wraps a signed token in the canonical transport: httpOnly,
// SameSite=Lax, Secure in production, 7-day max-age, path "/".
func (s *TokenService) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedCookie destroys the session client-side: empty value, Max-Age=0.
func (s *TokenService) ClearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
