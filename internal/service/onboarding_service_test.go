package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybr/vybr-backend/internal/ai"
	"github.com/vybr/vybr-backend/internal/domain"
	"github.com/vybr/vybr-backend/internal/repository/postgres"
	"github.com/vybr/vybr-backend/internal/service"
	"github.com/vybr/vybr-backend/internal/testutil"
)

type onboardingFixture struct {
	db         *testutil.TestDB
	onboarding *service.OnboardingService
	prefs      *service.PreferenceService
}

func newOnboardingFixture(t *testing.T, engine ai.Engine) *onboardingFixture {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	prefs := service.NewPreferenceService(repos.Preferences)
	onboarding := service.NewOnboardingService(repos.User, prefs, engine)

	return &onboardingFixture{db: testDB, onboarding: onboarding, prefs: prefs}
}

// failingEngine simulates an unreachable model backend.
type failingEngine struct{}

func (failingEngine) GenerateResponse(ctx context.Context, history []domain.ChatMessage, known domain.PreferencePatch) (ai.Reply, error) {
	return ai.Reply{}, errors.New("upstream timeout")
}

func (failingEngine) ExtractPreferences(ctx context.Context, history []domain.ChatMessage) (domain.PreferencePatch, error) {
	return domain.PreferencePatch{}, errors.New("upstream timeout")
}

func TestOnboardingService_ChatUnknownUser(t *testing.T) {
	f := newOnboardingFixture(t, ai.NewScriptedEngine())

	_, err := f.onboarding.Chat(context.Background(), uuid.New(), "hello")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestOnboardingService_ChatEngineFailure(t *testing.T) {
	f := newOnboardingFixture(t, failingEngine{})
	user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

	_, err := f.onboarding.Chat(context.Background(), user.ID, "hello")
	assert.ErrorIs(t, err, domain.ErrEngineUnavailable)

	// nothing persisted when the engine is down
	record, getErr := f.prefs.GetByUserID(context.Background(), user.ID)
	require.NoError(t, getErr)
	assert.Nil(t, record)
}

func TestOnboardingService_FullScriptedConversation(t *testing.T) {
	f := newOnboardingFixture(t, ai.NewScriptedEngine())
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

	messages := []string{
		"Hi, I'm from Germany",
		"I'm 22, second year",
		"Around 900 to 1200 per month",
		"Off-campus please",
	}

	var last *service.ChatResult
	for i, msg := range messages {
		result, err := f.onboarding.Chat(ctx, user.ID, msg)
		require.NoError(t, err, "turn %d", i+1)
		assert.NotEmpty(t, result.Message)
		last = result
	}

	assert.True(t, last.IsComplete, "fourth exchange completes the scripted flow")
	require.NotNil(t, last.Record)

	// each turn appended a user and an assistant message
	assert.Len(t, last.Record.History(), 8)

	// completion ran the full extraction
	assert.NotEmpty(t, domain.StringList(last.Record.Amenities))
	require.NotNil(t, last.Record.Age)
	assert.Equal(t, 20, *last.Record.Age)

	// completion flips the user flag
	var fresh domain.User
	require.NoError(t, f.db.DB.First(&fresh, "id = ?", user.ID).Error)
	assert.True(t, fresh.OnboardingCompleted)
}

func TestOnboardingService_EarlyTurnsDoNotComplete(t *testing.T) {
	f := newOnboardingFixture(t, ai.NewScriptedEngine())
	ctx := context.Background()
	user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

	result, err := f.onboarding.Chat(ctx, user.ID, "hello")
	require.NoError(t, err)
	assert.False(t, result.IsComplete)

	var fresh domain.User
	require.NoError(t, f.db.DB.First(&fresh, "id = ?", user.ID).Error)
	assert.False(t, fresh.OnboardingCompleted)

	// the partial field from the first exchange is already persisted
	record, err := f.prefs.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.NotNil(t, record.Nationality)
	assert.Len(t, record.History(), 2)
}

func TestOnboardingService_Status(t *testing.T) {
	f := newOnboardingFixture(t, ai.NewScriptedEngine())
	ctx := context.Background()

	t.Run("fresh user", func(t *testing.T) {
		user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

		status, err := f.onboarding.Status(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, status.OnboardingCompleted)
		assert.False(t, status.HasPreferences)
		assert.Empty(t, status.ChatHistory)
		assert.Nil(t, status.Preferences)
	})

	t.Run("after a chat turn", func(t *testing.T) {
		user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
		_, err := f.onboarding.Chat(ctx, user.ID, "hello")
		require.NoError(t, err)

		status, err := f.onboarding.Status(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, status.HasPreferences)
		assert.Len(t, status.ChatHistory, 2)
		require.NotNil(t, status.Preferences)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.onboarding.Status(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
