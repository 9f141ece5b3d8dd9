package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/vybr/vybr-backend/internal/api/handlers"
	"github.com/vybr/vybr-backend/internal/api/middleware"
	"github.com/vybr/vybr-backend/internal/config"
	"github.com/vybr/vybr-backend/internal/ratelimit"
	"github.com/vybr/vybr-backend/internal/service"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authLimiter := ratelimit.NewLimiterStore(cfg.AuthRatePerMinute, cfg.AuthRateBurst, 5*time.Minute)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, services.Token)
	onboardingHandler := handlers.NewOnboardingHandler(services.Onboarding)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes, throttled per client IP
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(authLimiter))
			r.Post("/register", authHandler.Register)
			r.Post("/resend-otp", authHandler.ResendOtp)
			r.Post("/verify-otp", authHandler.VerifyOtp)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})

		// Protected onboarding routes
		r.Route("/onboarding", func(r chi.Router) {
			r.Use(middleware.Auth(services.Token))
			r.Post("/chat", onboardingHandler.Chat)
			r.Get("/status", onboardingHandler.Status)
		})
	})

	// App pages sit behind the session guard so redirects happen server-side.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RouteGuard(services.Token))
		r.Handle("/*", pageHandler(cfg))
	})

	return r
}

// pageHandler serves the built frontend when a bundle is present; API-only
// deployments fall through to 404.
func pageHandler(cfg *config.Config) http.Handler {
	if cfg.StaticDir == "" {
		return http.NotFoundHandler()
	}
	return http.FileServer(http.Dir(cfg.StaticDir))
}
