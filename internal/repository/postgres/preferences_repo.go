package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/vybr/vybr-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type preferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) *preferencesRepository {
	return &preferencesRepository{db: db}
}

func (r *preferencesRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserPreferences, error) {
	var prefs domain.UserPreferences
	err := r.db.WithContext(ctx).First(&prefs, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *preferencesRepository) Upsert(ctx context.Context, prefs *domain.UserPreferences) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"nationality", "age", "lifestyle", "budget_min", "budget_max",
			"housing_type", "amenities", "pet_friendly", "smoking_allowed",
			"international_friendly", "chat_history", "updated_at",
		}),
	}).Create(prefs).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).First(prefs, "user_id = ?", prefs.UserID).Error
}
