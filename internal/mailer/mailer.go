package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/vybr/vybr-backend/internal/domain"
)

// Sender delivers a one-time code to an email address.
type Sender interface {
	SendOTP(ctx context.Context, email, code string, purpose domain.OtpPurpose) error
}

type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPSender(host, port, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *SMTPSender) SendOTP(ctx context.Context, email, code string, purpose domain.OtpPurpose) error {
	if s.host == "" || s.from == "" {
		return fmt.Errorf("smtp transport not configured")
	}

	subject := "Verify your email address"
	body := verificationTemplate(code)
	if purpose == domain.OtpPurposePasswordReset {
		subject = "Reset your password"
		body = passwordResetTemplate(code)
	}

	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + email + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{email}, []byte(msg.String()))
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send otp email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func verificationTemplate(code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Verify Your Email</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="text-align: center;">Verify Your Email Address</h1>
    <p>Thank you for registering! Please use the following 6-digit code to verify your email address:</p>
    <div style="background: #f4f4f4; padding: 20px; text-align: center; border-radius: 8px;">
      <div style="font-size: 32px; font-weight: bold; letter-spacing: 4px; color: #2563eb;">%s</div>
    </div>
    <p>This code will expire in 10 minutes. If you didn't request this verification, please ignore this email.</p>
    <p style="font-size: 14px; color: #666;">This is an automated message, please do not reply to this email.</p>
  </div>
</body>
</html>`, code)
}

func passwordResetTemplate(code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Reset Your Password</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1 style="text-align: center;">Reset Your Password</h1>
    <p>You requested to reset your password. Please use the following 6-digit code:</p>
    <div style="background: #f4f4f4; padding: 20px; text-align: center; border-radius: 8px;">
      <div style="font-size: 32px; font-weight: bold; letter-spacing: 4px; color: #dc2626;">%s</div>
    </div>
    <p>This code will expire in 10 minutes. If you didn't request this reset, please ignore this email.</p>
    <p style="font-size: 14px; color: #666;">This is an automated message, please do not reply to this email.</p>
  </div>
</body>
</html>`, code)
}
