package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taonaire/catalog-backend/internal/models"
	"gorm.io/gorm"
)

type OtpRepository struct {
	db *gorm.DB
}

func NewOtpRepository(db *gorm.DB) *OtpRepository {
	return &OtpRepository{db: db}
}

// Replace marks every unused code of the user as used and stores the new one,
// so at most one valid code exists per user.
func (r *OtpRepository) Replace(ctx context.Context, code *models.OtpCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := invalidateUnused(tx, code.UserID); err != nil {
			return err
		}
		if err := tx.Create(code).Error; err != nil {
			return fmt.Errorf("failed to store otp: %w", err)
		}
		return nil
	})
}

func invalidateUnused(db *gorm.DB, userID uint) error {
	err := db.Model(&models.OtpCode{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate otps: %w", err)
	}
	return nil
}

// LatestValid returns the newest unused, unexpired code for the user.
func (r *OtpRepository) LatestValid(ctx context.Context, userID uint, now time.Time) (*models.OtpCode, error) {
	var code models.OtpCode
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND used = ? AND expires_at > ?", userID, false, now).
		Order("created_at DESC").Order("id DESC").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch otp: %w", err)
	}
	return &code, nil
}

// ConsumeAndSetPassword stores the new password hash and burns the code in
// one transaction. The used = false guard makes a concurrent second reset fail.
func (r *OtpRepository) ConsumeAndSetPassword(ctx context.Context, code *models.OtpCode, passwordHash, provider string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.OtpCode{}).
			Where("id = ? AND used = ?", code.ID, false).
			Update("used", true)
		if res.Error != nil {
			return fmt.Errorf("failed to mark otp used: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		err := tx.Model(&models.User{}).Where("id = ?", code.UserID).Updates(map[string]interface{}{
			"password":      passwordHash,
			"auth_provider": provider,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})
}
