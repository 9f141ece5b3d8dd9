package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Auth errors. InvalidCredentials deliberately covers both unknown email and
// wrong password; OTP failures collapse into a single error regardless of
// whether the code was wrong, expired, or already consumed.
var (
	ErrAlreadyVerified     = errors.New("account already exists and is verified")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrNotVerified         = errors.New("email address is not verified")
	ErrInvalidOrExpiredOtp = errors.New("invalid or expired verification code")
	ErrInvalidToken        = errors.New("invalid token")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrRateLimited         = errors.New("too many requests")
	ErrMailDelivery        = errors.New("failed to send verification email")
	ErrEngineUnavailable   = errors.New("failed to generate assistant response")
)

// ValidationError carries per-field detail for malformed input. It is always
// produced at the request boundary, before any store mutation.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
	return e
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}
