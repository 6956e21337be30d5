package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

const GatewaySSLCommerz = "sslcommerz"

func (s PaymentStatus) Terminal() bool {
	return s == PaymentPaid || s == PaymentFailed || s == PaymentCancelled
}

// Order is created once at checkout. Afterwards only PaymentStatus and
// SSLCommerzTranID change, and only from gateway callbacks.
type Order struct {
	ID               string        `gorm:"primaryKey;size:64"           json:"id"`
	UserID           uuid.UUID     `gorm:"index;not null"               json:"userId"`
	Products         []OrderItem   `gorm:"constraint:OnDelete:CASCADE"  json:"products"`
	TotalAmount      float64       `gorm:"not null"                     json:"totalAmount"`
	CouponCode       string        `json:"couponCode,omitempty"`
	PaymentGateway   string        `gorm:"not null"                     json:"paymentGateway"`
	PaymentStatus    PaymentStatus `gorm:"not null;index;size:16"       json:"paymentStatus"`
	SSLCommerzTranID string        `gorm:"column:sslcommerz_tran_id" json:"sslcommerzTranId,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// OrderItem snapshots a product line at purchase time.
type OrderItem struct {
	ID        uuid.UUID `gorm:"primaryKey"      json:"id"`
	OrderID   string    `gorm:"index;size:64"   json:"orderId"`
	ProductID uuid.UUID `gorm:"not null"        json:"product"`
	Quantity  int       `gorm:"not null"        json:"quantity"`
	Price     float64   `gorm:"not null"        json:"price"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentPending
	}
	if o.PaymentGateway == "" {
		o.PaymentGateway = GatewaySSLCommerz
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
