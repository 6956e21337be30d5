package models

import (
	"github.com/google/uuid"
)

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"            json:"id"`
	Token     string    `gorm:"uniqueIndex;not null"  json:"-"`
	UserID    uuid.UUID `gorm:"index;not null"        json:"user_id"`
	JTI       string    `gorm:"uniqueIndex;not null"  json:"jti"`
	ExpiresAt int64     `gorm:"not null"              json:"expires_at"`
	Revoked   bool      `gorm:"default:false"         json:"revoked"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&CartItem{},
		&Product{},
		&Coupon{},
		&Order{},
		&OrderItem{},
		&RefreshToken{},
	}
}
