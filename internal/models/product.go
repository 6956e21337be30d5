package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID `gorm:"primaryKey"       json:"id"`
	Name        string    `gorm:"not null;index"   json:"name"`
	Description string    `gorm:"not null"         json:"description"`
	Price       float64   `gorm:"not null"         json:"price"`
	Image       string    `json:"image"`
	Category    string    `gorm:"index"            json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
