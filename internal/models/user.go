package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/hash"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"

	MinPasswordLength = 6
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	ErrInvalidRole      = errors.New("role must be customer or admin")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
)

type User struct {
	ID           uuid.UUID  `gorm:"primaryKey"                     json:"id"`
	Name         string     `gorm:"not null"                       json:"name"`
	Email        string     `gorm:"uniqueIndex;not null"           json:"email"`
	Password     string     `gorm:"-"                              json:"-"`
	PasswordHash string     `gorm:"not null"                       json:"-"`
	Role         string     `gorm:"not null;default:customer"      json:"role"`
	CartItems    []CartItem `gorm:"constraint:OnDelete:CASCADE"    json:"cartItems,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// CartItem is one line of a user's cart. Lines keep insertion order.
type CartItem struct {
	ID        uuid.UUID `gorm:"primaryKey"                              json:"id"`
	UserID    uuid.UUID `gorm:"uniqueIndex:idx_user_product;not null"   json:"userId"`
	ProductID uuid.UUID `gorm:"uniqueIndex:idx_user_product;not null"   json:"productId"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0"   json:"quantity"`
	CreatedAt time.Time `gorm:"index"                                   json:"createdAt"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	if u.Password == "" && u.PasswordHash == "" {
		return ErrPasswordRequired
	}
	return nil
}

// BeforeSave normalizes the email and hashes Password when it was set on this save.
// A stored hash is never re-hashed.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)

	if u.Name == "" {
		return ErrNameRequired
	}
	if u.Email == "" {
		return ErrEmailRequired
	}
	if u.Role != "" && u.Role != RoleCustomer && u.Role != RoleAdmin {
		return ErrInvalidRole
	}

	if u.Password == "" {
		return nil
	}
	if len(u.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hashed, err := hash.HashPassword(u.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hashed
	u.Password = ""
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	return hash.CheckPassword(u.PasswordHash, candidate)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}
