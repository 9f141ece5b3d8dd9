package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vybr/vybr-backend/internal/domain"
	"gorm.io/gorm"
)

type otpRepository struct {
	db *gorm.DB
}

func NewOtpRepository(db *gorm.DB) *otpRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(ctx context.Context, code *domain.OtpCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *otpRepository) Replace(ctx context.Context, code *domain.OtpCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Delete(&domain.OtpCode{},
			"email = ? AND purpose = ? AND consumed = ?", code.Email, code.Purpose, false).Error
		if err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

func (r *otpRepository) FindUsable(ctx context.Context, email, code string, purpose domain.OtpPurpose, now time.Time) (*domain.OtpCode, error) {
	var record domain.OtpCode
	err := r.db.WithContext(ctx).
		Where("email = ? AND code = ? AND purpose = ? AND consumed = ? AND expires_at > ?",
			email, code, purpose, false, now).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *otpRepository) Consume(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&domain.OtpCode{}).
		Where("id = ? AND consumed = ?", id, false).
		Update("consumed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
