// Package repo holds the gorm-backed stores. Lookups that miss return
// gorm.ErrRecordNotFound; callers translate it.
package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserAlreadyExist      = errors.New("user already exist")
	ErrTokenExpiredOrRevoked = errors.New("token expired or revoked")
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
