package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vybr/vybr-backend/internal/domain"
	"github.com/vybr/vybr-backend/internal/repository"
	"gorm.io/gorm"
)

// Engine output bounds. Values outside are dropped before persisting, since
// extracted fields come from an untrusted model.
const (
	minExtractedAge = 16
	maxExtractedAge = 120
)

// PreferenceService merges extracted conversation facts into the persisted
// preference record. Merge is field-wise by presence: a field in the patch
// overwrites only when set, and explicit false is a value, not an absence.
// The chat transcript is always replaced wholesale.
type PreferenceService struct {
	prefs repository.PreferencesRepository
}

func NewPreferenceService(prefs repository.PreferencesRepository) *PreferenceService {
	return &PreferenceService{prefs: prefs}
}

func (s *PreferenceService) MergeAndPersist(ctx context.Context, userID uuid.UUID, history []domain.ChatMessage, patch domain.PreferencePatch) (*domain.UserPreferences, error) {
	patch = sanitizePatch(patch)

	record, err := s.prefs.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		record = &domain.UserPreferences{
			ID:          uuid.New(),
			UserID:      userID,
			Lifestyle:   domain.JSONList(nil),
			HousingType: domain.JSONList(nil),
			Amenities:   domain.JSONList(nil),
			CreatedAt:   time.Now(),
		}
	}

	applyPatch(record, patch)
	if err := record.SetHistory(history); err != nil {
		return nil, err
	}
	record.UpdatedAt = time.Now()

	if err := s.prefs.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *PreferenceService) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error) {
	record, err := s.prefs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func applyPatch(record *domain.UserPreferences, patch domain.PreferencePatch) {
	if patch.Nationality != nil {
		record.Nationality = patch.Nationality
	}
	if patch.Age != nil {
		record.Age = patch.Age
	}
	if patch.Lifestyle != nil {
		record.Lifestyle = domain.JSONList(patch.Lifestyle)
	}
	if patch.BudgetMin != nil {
		record.BudgetMin = patch.BudgetMin
	}
	if patch.BudgetMax != nil {
		record.BudgetMax = patch.BudgetMax
	}
	if patch.HousingType != nil {
		record.HousingType = domain.JSONList(patch.HousingType)
	}
	if patch.Amenities != nil {
		record.Amenities = domain.JSONList(patch.Amenities)
	}
	if patch.PetFriendly != nil {
		record.PetFriendly = *patch.PetFriendly
	}
	if patch.SmokingAllowed != nil {
		record.SmokingAllowed = *patch.SmokingAllowed
	}
	if patch.InternationalFriendly != nil {
		record.InternationalFriendly = *patch.InternationalFriendly
	}
}

func sanitizePatch(patch domain.PreferencePatch) domain.PreferencePatch {
	if patch.Age != nil && (*patch.Age < minExtractedAge || *patch.Age > maxExtractedAge) {
		patch.Age = nil
	}
	if patch.BudgetMin != nil && *patch.BudgetMin <= 0 {
		patch.BudgetMin = nil
	}
	if patch.BudgetMax != nil && *patch.BudgetMax <= 0 {
		patch.BudgetMax = nil
	}
	return patch
}
