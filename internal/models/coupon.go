package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coupon is a percentage discount owned by a single user.
type Coupon struct {
	ID                 uuid.UUID `gorm:"primaryKey"                          json:"id"`
	Code               string    `gorm:"uniqueIndex:idx_coupon_user;not null" json:"code"`
	UserID             uuid.UUID `gorm:"uniqueIndex:idx_coupon_user;not null" json:"userId"`
	DiscountPercentage float64   `gorm:"not null"                            json:"discountPercentage"`
	IsActive           bool      `gorm:"not null"                            json:"isActive"`
	ExpirationDate     time.Time `json:"expirationDate"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the coupon has an expiration date in the past.
func (c *Coupon) Expired(now time.Time) bool {
	return !c.ExpirationDate.IsZero() && now.After(c.ExpirationDate)
}
