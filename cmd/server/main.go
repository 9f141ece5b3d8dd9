package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vybr/vybr-backend/internal/ai"
	"github.com/vybr/vybr-backend/internal/api"
	"github.com/vybr/vybr-backend/internal/config"
	"github.com/vybr/vybr-backend/internal/logger"
	"github.com/vybr/vybr-backend/internal/mailer"
	"github.com/vybr/vybr-backend/internal/ratelimit"
	"github.com/vybr/vybr-backend/internal/repository/postgres"
	"github.com/vybr/vybr-backend/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.Environment); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Close()

	if cfg.UsingDevSecret() {
		logger.Warn("running with the built-in development JWT secret; set JWT_SECRET")
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	// Mail transport: real SMTP when configured, log-only otherwise
	var mail mailer.Sender
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		logger.Warn("SMTP not configured, verification codes will be logged")
		mail = mailer.NewLogSender()
	}

	// Conversation engine: hosted model when configured, scripted otherwise
	var engine ai.Engine
	if cfg.AIBaseURL != "" {
		engine = ai.NewOpenAIEngine(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
	} else {
		logger.Warn("AI engine not configured, using scripted conversation flow")
		engine = ai.NewScriptedEngine()
	}

	// OTP abuse limits need Redis; without it they are disabled
	var limiter ratelimit.OtpLimiter
	if cfg.RedisAddr != "" {
		limiter = ratelimit.NewRedisOtpLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.OtpResendCooldown, cfg.OtpTTL, cfg.OtpMaxAttempts)
	} else {
		logger.Warn("Redis not configured, OTP rate limiting disabled")
		limiter = ratelimit.NoopOtpLimiter{}
	}

	// Initialize services
	services := service.NewServices(repos, cfg, mail, engine, limiter)

	// Initialize router
	router := api.NewRouter(services, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
