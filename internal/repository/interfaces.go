package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vybr/vybr-backend/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpsertByEmail inserts the user or, when the email already exists,
	// overwrites its password hash and verified flag. The stored record is
	// written back into user.
	UpsertByEmail(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
}

type OtpRepository interface {
	Create(ctx context.Context, code *domain.OtpCode) error
	// Replace atomically removes all unconsumed codes for (email, purpose)
	// and inserts the new code.
	Replace(ctx context.Context, code *domain.OtpCode) error
	// FindUsable returns the newest unconsumed, unexpired code matching
	// (email, code, purpose), or an error when none matches.
	FindUsable(ctx context.Context, email, code string, purpose domain.OtpPurpose, now time.Time) (*domain.OtpCode, error)
	// Consume flips the consumed flag exactly once; a second call for the
	// same id reports not-found.
	Consume(ctx context.Context, id uuid.UUID) error
}

type PreferencesRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error)
	// Upsert inserts or fully updates the preference record keyed by user id
	// as a single statement. The stored record is written back into prefs.
	Upsert(ctx context.Context, prefs *domain.UserPreferences) error
}

type Repositories struct {
	User        UserRepository
	Otp         OtpRepository
	Preferences PreferencesRepository
}
