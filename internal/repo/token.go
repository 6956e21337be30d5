package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) AddRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(token).Error
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// RevokeRefreshToken marks the stored token with the given hash as used.
// Unknown hashes are not an error.
func (r *GormRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", tokenHash).
		Update("revoked", true).Error
}

func refreshUsable(tx *gorm.DB, jti string, now time.Time) error {
	var refresh models.RefreshToken
	if err := tx.Where("jti = ?", jti).First(&refresh).Error; err != nil {
		return err
	}
	if refresh.Revoked || refresh.ExpiresAt < now.Unix() {
		return ErrTokenExpiredOrRevoked
	}
	return nil
}

// RotateRefreshToken revokes oldJTI and stores next in one transaction.
// It fails with ErrTokenExpiredOrRevoked when oldJTI was already used.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := refreshUsable(tx, oldJTI, time.Now()); err != nil {
			return err
		}
		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ?", oldJTI, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenExpiredOrRevoked
		}
		return tx.Create(next).Error
	})
}
