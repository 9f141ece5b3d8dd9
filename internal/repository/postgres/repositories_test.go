package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybr/vybr-backend/internal/domain"
	"github.com/vybr/vybr-backend/internal/repository"
	"github.com/vybr/vybr-backend/internal/repository/postgres"
	"github.com/vybr/vybr-backend/internal/testutil"
	"gorm.io/gorm"
)

func newRepos(t *testing.T) (*repository.Repositories, *testutil.TestDB) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	return postgres.NewRepositories(testDB.DB), testDB
}

func TestUserRepository_UpsertByEmail(t *testing.T) {
	repos, testDB := newRepos(t)
	ctx := context.Background()

	first := &domain.User{
		ID:           uuid.New(),
		Email:        "upsert@test.edu",
		PasswordHash: "hash-one",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repos.User.UpsertByEmail(ctx, first))

	// same email again with a new hash updates in place
	second := &domain.User{
		ID:           uuid.New(),
		Email:        "upsert@test.edu",
		PasswordHash: "hash-two",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, repos.User.UpsertByEmail(ctx, second))

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	stored, err := repos.User.GetByEmail(ctx, "upsert@test.edu")
	require.NoError(t, err)
	assert.Equal(t, "hash-two", stored.PasswordHash)
	assert.Equal(t, first.ID, stored.ID, "conflict upsert keeps the original row id")
	assert.Equal(t, first.ID, second.ID, "caller's struct is refreshed with the stored row")
}

func TestUserRepository_GetByEmailMissing(t *testing.T) {
	repos, _ := newRepos(t)

	_, err := repos.User.GetByEmail(context.Background(), "missing@test.edu")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func newOtp(email, code string, expiresAt time.Time) *domain.OtpCode {
	return &domain.OtpCode{
		ID:        uuid.New(),
		Code:      code,
		Email:     email,
		Purpose:   domain.OtpPurposeEmailVerification,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
}

func TestOtpRepository_ReplaceInvalidatesPriorCodes(t *testing.T) {
	repos, testDB := newRepos(t)
	ctx := context.Background()
	email := "codes@test.edu"

	require.NoError(t, repos.Otp.Create(ctx, newOtp(email, "111111", time.Now().Add(10*time.Minute))))
	require.NoError(t, repos.Otp.Create(ctx, newOtp(email, "222222", time.Now().Add(10*time.Minute))))

	require.NoError(t, repos.Otp.Replace(ctx, newOtp(email, "333333", time.Now().Add(10*time.Minute))))

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.OtpCode{}).Where("email = ? AND consumed = false", email).Count(&count).Error)
	assert.EqualValues(t, 1, count, "replace leaves exactly one live code")

	_, err := repos.Otp.FindUsable(ctx, email, "111111", domain.OtpPurposeEmailVerification, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repos.Otp.FindUsable(ctx, email, "333333", domain.OtpPurposeEmailVerification, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "333333", found.Code)
}

func TestOtpRepository_FindUsable(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()
	email := "find@test.edu"

	expired := newOtp(email, "111111", time.Now().Add(-time.Minute))
	require.NoError(t, repos.Otp.Create(ctx, expired))

	_, err := repos.Otp.FindUsable(ctx, email, "111111", domain.OtpPurposeEmailVerification, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "expired codes are not usable")

	_, err = repos.Otp.FindUsable(ctx, email, "999999", domain.OtpPurposeEmailVerification, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "unknown codes are not usable")
}

func TestOtpRepository_ConsumeExactlyOnce(t *testing.T) {
	repos, _ := newRepos(t)
	ctx := context.Background()

	record := newOtp("once@test.edu", "123456", time.Now().Add(10*time.Minute))
	require.NoError(t, repos.Otp.Create(ctx, record))

	require.NoError(t, repos.Otp.Consume(ctx, record.ID))
	assert.ErrorIs(t, repos.Otp.Consume(ctx, record.ID), gorm.ErrRecordNotFound, "second consume must fail")

	_, err := repos.Otp.FindUsable(ctx, record.Email, record.Code, domain.OtpPurposeEmailVerification, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPreferencesRepository_Upsert(t *testing.T) {
	repos, testDB := newRepos(t)
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	record := &domain.UserPreferences{
		ID:          uuid.New(),
		UserID:      user.ID,
		Lifestyle:   domain.JSONList([]string{"studious"}),
		HousingType: domain.JSONList(nil),
		Amenities:   domain.JSONList(nil),
		ChatHistory: domain.JSONList(nil),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, repos.Preferences.Upsert(ctx, record))

	age := 21
	record.Age = &age
	record.Lifestyle = domain.JSONList([]string{"studious", "social"})
	require.NoError(t, repos.Preferences.Upsert(ctx, record))

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.UserPreferences{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	stored, err := repos.Preferences.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Age)
	assert.Equal(t, 21, *stored.Age)
	assert.Equal(t, []string{"studious", "social"}, domain.StringList(stored.Lifestyle))
}
