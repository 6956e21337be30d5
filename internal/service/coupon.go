package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CouponService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

type CreateCouponInput struct {
	Code               string    `json:"code"`
	UserID             uuid.UUID `json:"userId"`
	DiscountPercentage float64   `json:"discountPercentage"`
	ExpirationDate     time.Time `json:"expirationDate"`
}

func (s *CouponService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GetMyCoupon returns the caller's active coupon, or nil when there is none.
func (s *CouponService) GetMyCoupon(ctx context.Context, userID uuid.UUID) (*models.Coupon, error) {
	c, err := s.Repo.FindUserCoupon(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Validate looks up an active coupon owned by userID. An expired coupon is
// deactivated and reported as ErrCouponExpired.
func (s *CouponService) Validate(ctx context.Context, userID uuid.UUID, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("code is required: %w", ErrValidation)
	}

	c, err := s.Repo.FindActiveCoupon(ctx, code, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	if c.Expired(s.now()) {
		if err := s.Repo.DeactivateCoupon(ctx, c.ID); err != nil {
			logging.FromContext(ctx).Error("coupon_deactivate_failed", "coupon_id", c.ID, "error", err)
			return nil, err
		}
		return nil, ErrCouponExpired
	}
	return c, nil
}

// ForCheckout is the read-only lookup used when pricing an order. A missing
// coupon is not an error.
func (s *CouponService) ForCheckout(ctx context.Context, userID uuid.UUID, code string) (*models.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	c, err := s.Repo.FindActiveCoupon(ctx, code, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (s *CouponService) Create(ctx context.Context, in CreateCouponInput) (*models.Coupon, error) {
	code := strings.TrimSpace(in.Code)
	switch {
	case code == "":
		return nil, fmt.Errorf("code is required: %w", ErrValidation)
	case in.UserID == uuid.Nil:
		return nil, fmt.Errorf("userId is required: %w", ErrValidation)
	case in.DiscountPercentage <= 0 || in.DiscountPercentage > 100:
		return nil, fmt.Errorf("discountPercentage must be between 0 and 100: %w", ErrValidation)
	}

	if _, err := s.Repo.GetUserByID(ctx, in.UserID); err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, err
	}

	taken, err := s.Repo.CouponCodeTaken(ctx, code, in.UserID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("coupon already exists: %w", ErrConflict)
	}

	c := &models.Coupon{
		Code:               code,
		UserID:             in.UserID,
		DiscountPercentage: in.DiscountPercentage,
		IsActive:           true,
		ExpirationDate:     in.ExpirationDate,
	}
	if err := s.Repo.CreateCoupon(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
