package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vybr/vybr-backend/internal/ai"
	"github.com/vybr/vybr-backend/internal/domain"
	"github.com/vybr/vybr-backend/internal/logger"
	"github.com/vybr/vybr-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// minExtractionTurns guards against distilling preferences from a transcript
// too short to contain any.
const minExtractionTurns = 4

// OnboardingService orchestrates one chat turn: append the user message,
// ask the engine, append its reply, merge extracted preferences, and flip the
// user's onboarding flag when the engine declares completion.
type OnboardingService struct {
	users       repository.UserRepository
	preferences *PreferenceService
	engine      ai.Engine
}

func NewOnboardingService(users repository.UserRepository, preferences *PreferenceService, engine ai.Engine) *OnboardingService {
	return &OnboardingService{
		users:       users,
		preferences: preferences,
		engine:      engine,
	}
}

type ChatResult struct {
	Message     string
	IsComplete  bool
	Preferences domain.PreferencePatch
	Record      *domain.UserPreferences
}

type StatusResult struct {
	OnboardingCompleted bool
	HasPreferences      bool
	ChatHistory         []domain.ChatMessage
	Preferences         *domain.UserPreferences
}

func (s *OnboardingService) Chat(ctx context.Context, userID uuid.UUID, message string) (*ChatResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	existing, err := s.preferences.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	history := existing.History()
	history = append(history, domain.ChatMessage{
		Role:      domain.ChatRoleUser,
		Content:   message,
		Timestamp: time.Now(),
	})

	reply, err := s.engine.GenerateResponse(ctx, history, knownPatch(existing))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}

	history = append(history, domain.ChatMessage{
		Role:      domain.ChatRoleAssistant,
		Content:   reply.Message,
		Timestamp: time.Now(),
	})

	extracted := reply.Preferences
	if reply.IsComplete && len(history) > minExtractionTurns {
		extracted, err = s.engine.ExtractPreferences(ctx, history)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
		}
	}

	record, err := s.preferences.MergeAndPersist(ctx, userID, history, extracted)
	if err != nil {
		return nil, err
	}

	if reply.IsComplete && !user.OnboardingCompleted {
		user.OnboardingCompleted = true
		user.UpdatedAt = time.Now()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		logger.Info("onboarding completed", zap.String("userId", userID.String()))
	}

	return &ChatResult{
		Message:     reply.Message,
		IsComplete:  reply.IsComplete,
		Preferences: extracted,
		Record:      record,
	}, nil
}

func (s *OnboardingService) Status(ctx context.Context, userID uuid.UUID) (*StatusResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	record, err := s.preferences.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		OnboardingCompleted: user.OnboardingCompleted,
		HasPreferences:      record != nil,
		ChatHistory:         record.History(),
		Preferences:         record,
	}, nil
}

// knownPatch projects the stored record into the partial shape the engine
// receives as prior context. Lists and flags are always present; nullable
// scalars only when set.
func knownPatch(record *domain.UserPreferences) domain.PreferencePatch {
	if record == nil {
		return domain.PreferencePatch{}
	}
	return domain.PreferencePatch{
		Nationality:           record.Nationality,
		Age:                   record.Age,
		Lifestyle:             domain.StringList(record.Lifestyle),
		BudgetMin:             record.BudgetMin,
		BudgetMax:             record.BudgetMax,
		HousingType:           domain.StringList(record.HousingType),
		Amenities:             domain.StringList(record.Amenities),
		PetFriendly:           &record.PetFriendly,
		SmokingAllowed:        &record.SmokingAllowed,
		InternationalFriendly: &record.InternationalFriendly,
	}
}
