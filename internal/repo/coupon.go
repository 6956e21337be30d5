package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) FindActiveCoupon(ctx context.Context, code string, userID uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.DB.WithContext(ctx).
		Where("code = ? AND user_id = ? AND is_active = ?", code, userID, true).
		First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindUserCoupon returns the most recent active coupon owned by userID.
func (r *GormRepo) FindUserCoupon(ctx context.Context, userID uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *GormRepo) CreateCoupon(ctx context.Context, coupon *models.Coupon) error {
	return r.DB.WithContext(ctx).Create(coupon).Error
}

func (r *GormRepo) DeactivateCoupon(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *GormRepo) CouponCodeTaken(ctx context.Context, code string, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Coupon{}).
		Where("code = ? AND user_id = ?", code, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
