package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                  uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email               string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash        string    `json:"-" gorm:"not null"`
	IsVerified          bool      `json:"isVerified" gorm:"not null;default:false"`
	OnboardingCompleted bool      `json:"onboardingCompleted" gorm:"not null;default:false"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type OtpPurpose string

const (
	OtpPurposeEmailVerification OtpPurpose = "EMAIL_VERIFICATION"
	OtpPurposePasswordReset     OtpPurpose = "PASSWORD_RESET"
)

// OtpCode is a short-lived proof of email ownership. A code is usable only
// while unconsumed and before ExpiresAt; consumption is one-way.
type OtpCode struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code      string     `json:"-" gorm:"not null"`
	Email     string     `json:"email" gorm:"index;not null"`
	Purpose   OtpPurpose `json:"purpose" gorm:"not null"`
	Consumed  bool       `json:"consumed" gorm:"not null;default:false"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time  `json:"createdAt"`
}
