package service

import (
	"github.com/vybr/vybr-backend/internal/ai"
	"github.com/vybr/vybr-backend/internal/config"
	"github.com/vybr/vybr-backend/internal/mailer"
	"github.com/vybr/vybr-backend/internal/ratelimit"
	"github.com/vybr/vybr-backend/internal/repository"
)

type Services struct {
	Token      *TokenService
	Auth       *AuthService
	Preference *PreferenceService
	Onboarding *OnboardingService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, mail mailer.Sender, engine ai.Engine, limiter ratelimit.OtpLimiter) *Services {
	tokens := NewTokenService(cfg)
	preferences := NewPreferenceService(repos.Preferences)
	return &Services{
		Token:      tokens,
		Auth:       NewAuthService(repos.User, repos.Otp, tokens, mail, limiter, cfg.EmailSuffix, cfg.OtpTTL),
		Preference: preferences,
		Onboarding: NewOnboardingService(repos.User, preferences, engine),
	}
}
