package mailer

import (
	"context"

	"github.com/vybr/vybr-backend/internal/domain"
	"github.com/vybr/vybr-backend/internal/logger"
	"go.uber.org/zap"
)

// LogSender writes codes to the application log instead of sending mail.
// Development fallback for when no SMTP transport is configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) SendOTP(ctx context.Context, email, code string, purpose domain.OtpPurpose) error {
	logger.Info("otp issued (mail transport disabled)",
		zap.String("email", email),
		zap.String("code", code),
		zap.String("purpose", string(purpose)),
	)
	return nil
}
