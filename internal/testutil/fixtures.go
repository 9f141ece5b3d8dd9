package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vybr/vybr-backend/internal/domain"
	"github.com/vybr/vybr-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email               string
	password            string
	verified            bool
	onboardingCompleted bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:    fmt.Sprintf("student_%s@test.edu", uuid.New().String()[:8]),
		password: "Testpass123",
		verified: true,
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Unverified leaves the account awaiting email verification
func (b *UserBuilder) Unverified() *UserBuilder {
	b.verified = false
	return b
}

// OnboardingCompleted marks the onboarding conversation as finished
func (b *UserBuilder) OnboardingCompleted() *UserBuilder {
	b.onboardingCompleted = true
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:                  uuid.New(),
		Email:               b.email,
		PasswordHash:        string(hashedPassword),
		IsVerified:          b.verified,
		OnboardingCompleted: b.onboardingCompleted,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildAndLogin creates a verified user directly in the database and returns
// it with a session cookie from the login endpoint.
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, *http.Cookie) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)

	resp := PostJSON(t, ts.APIURL("/auth/login"), map[string]string{
		"email":    user.Email,
		"password": password,
	}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", resp.StatusCode)
	}

	cookie := SessionCookie(resp)
	if cookie == nil {
		t.Fatal("login response did not set a session cookie")
	}
	return user, cookie
}

// RecordingSender captures codes in memory instead of sending mail. Tests read
// the last code back to walk through the verification flow.
type RecordingSender struct {
	mu   sync.Mutex
	sent []SentOtp
	fail error
}

type SentOtp struct {
	Email   string
	Code    string
	Purpose domain.OtpPurpose
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

func (s *RecordingSender) SendOTP(ctx context.Context, email, code string, purpose domain.OtpPurpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, SentOtp{Email: email, Code: code, Purpose: purpose})
	return nil
}

// FailWith makes every subsequent send return err; nil restores delivery.
func (s *RecordingSender) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

// LastCode returns the most recently sent code for an email.
func (s *RecordingSender) LastCode(t *testing.T, email string) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.sent) - 1; i >= 0; i-- {
		if s.sent[i].Email == email {
			return s.sent[i].Code
		}
	}
	t.Fatalf("no otp sent to %s", email)
	return ""
}

// SentCount returns how many codes were delivered to an email.
func (s *RecordingSender) SentCount(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, sent := range s.sent {
		if sent.Email == email {
			count++
		}
	}
	return count
}

// PostJSON posts a JSON body, optionally carrying a session cookie.
func PostJSON(t *testing.T, url string, body interface{}, cookie *http.Cookie) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// GetJSON issues a GET, optionally carrying a session cookie.
func GetJSON(t *testing.T, url string, cookie *http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// DecodeBody decodes a JSON response body into a map.
func DecodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

// SessionCookie extracts the auth cookie from a response, nil when absent.
func SessionCookie(resp *http.Response) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == service.SessionCookieName {
			return cookie
		}
	}
	return nil
}
