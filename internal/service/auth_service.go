package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/vybr/vybr-backend/internal/domain"
	"github.com/vybr/vybr-backend/internal/logger"
	"github.com/vybr/vybr-backend/internal/mailer"
	"github.com/vybr/vybr-backend/internal/ratelimit"
	"github.com/vybr/vybr-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bcryptCost matches the cost used for stored password hashes.
const bcryptCost = 12

// AuthService owns the registration -> verification -> login lifecycle.
type AuthService struct {
	users       repository.UserRepository
	otps        repository.OtpRepository
	tokens      *TokenService
	mail        mailer.Sender
	limiter     ratelimit.OtpLimiter
	emailSuffix string
	otpTTL      time.Duration
}

func NewAuthService(
	users repository.UserRepository,
	otps repository.OtpRepository,
	tokens *TokenService,
	mail mailer.Sender,
	limiter ratelimit.OtpLimiter,
	emailSuffix string,
	otpTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:       users,
		otps:        otps,
		tokens:      tokens,
		mail:        mail,
		limiter:     limiter,
		emailSuffix: emailSuffix,
		otpTTL:      otpTTL,
	}
}

// Register creates or refreshes a provisional account and sends a
// verification code. Re-registering an unverified email overwrites the
// password hash; a verified email is rejected. The user and code rows stay
// committed even when mail delivery fails (recovery is via ResendOtp).
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsVerified {
		return nil, domain.ErrAlreadyVerified
	}

	if err := s.limiter.AllowSend(ctx, email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		IsVerified:   false,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.users.UpsertByEmail(ctx, user); err != nil {
		return nil, err
	}

	if err := s.issueOtp(ctx, email, false); err != nil {
		return nil, err
	}
	return user, nil
}

// ResendOtp invalidates all prior unconsumed verification codes for the email
// and sends a fresh one.
func (s *AuthService) ResendOtp(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := s.validateEmail(email); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if user.IsVerified {
		return domain.ErrAlreadyVerified
	}

	if err := s.limiter.AllowSend(ctx, email); err != nil {
		return err
	}
	return s.issueOtp(ctx, email, true)
}

// VerifyOtp consumes a matching code exactly once, marks the user verified,
// and returns the user with a fresh session token. Any miss (wrong code,
// expired, already consumed) reports the same error.
func (s *AuthService) VerifyOtp(ctx context.Context, email, code string) (*domain.User, string, error) {
	email = normalizeEmail(email)

	if err := s.limiter.AllowVerify(ctx, email); err != nil {
		return nil, "", err
	}

	record, err := s.otps.FindUsable(ctx, email, code, domain.OtpPurposeEmailVerification, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", domain.ErrInvalidOrExpiredOtp
		}
		return nil, "", err
	}
	if err := s.otps.Consume(ctx, record.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// lost a race with a concurrent verification
			return nil, "", domain.ErrInvalidOrExpiredOtp
		}
		return nil, "", err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	user.IsVerified = true
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", err
	}

	_ = s.limiter.ResetVerify(ctx, email)

	token, err := s.tokens.Sign(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks credentials and returns the user with a session token.
// Unknown email and wrong password are indistinguishable; an unverified
// account with correct credentials reports NotVerified so the client can
// route to the verification screen.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = normalizeEmail(email)
	if err := s.validateEmail(email); err != nil {
		return nil, "", err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if user.PasswordHash == "" || !checkPassword(password, user.PasswordHash) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, "", domain.ErrNotVerified
	}

	token, err := s.tokens.Sign(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issueOtp(ctx context.Context, email string, replacePrior bool) error {
	code, err := generateOtpCode()
	if err != nil {
		return err
	}
	record := &domain.OtpCode{
		ID:        uuid.New(),
		Code:      code,
		Email:     email,
		Purpose:   domain.OtpPurposeEmailVerification,
		ExpiresAt: time.Now().Add(s.otpTTL),
		CreatedAt: time.Now(),
	}

	if replacePrior {
		err = s.otps.Replace(ctx, record)
	} else {
		err = s.otps.Create(ctx, record)
	}
	if err != nil {
		return err
	}

	if err := s.mail.SendOTP(ctx, email, code, domain.OtpPurposeEmailVerification); err != nil {
		// user and code rows stay committed; recovery is a resend
		logger.Error("otp delivery failed", zap.String("email", maskEmail(email)), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrMailDelivery, err)
	}
	return nil
}

func (s *AuthService) validateEmail(email string) error {
	if !strings.HasSuffix(email, s.emailSuffix) {
		return domain.NewValidationError("email",
			fmt.Sprintf("please use your %s email address", s.emailSuffix))
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return domain.NewValidationError("password", "password must be at least 8 characters")
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit {
		return domain.NewValidationError("password",
			"password must contain at least one lowercase letter, one uppercase letter, and one number")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateOtpCode draws a 6-digit code uniformly from [100000, 999999].
func generateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func maskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || len(parts[0]) < 2 {
		return "***"
	}
	return parts[0][:1] + "***@" + parts[1]
}
