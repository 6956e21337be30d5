package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
)

const (
	TranIDPrefix = "ORDER_"
	Currency     = "BDT"
)

var ErrPaymentNotValid = errors.New("payment not validated by gateway")

type CheckoutItem struct {
	ID       string  `json:"id"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type CheckoutResult struct {
	GatewayURL string
	OrderID    string
}

type CheckoutService struct {
	Repo    *repo.GormRepo
	Coupons *CouponService
	Gateway payment.Gateway
	Events  events.Publisher
	BaseURL string
}

// OrderIDFromTranID strips the transaction prefix the order id was sent with.
func OrderIDFromTranID(tranID string) (string, error) {
	id := strings.TrimPrefix(strings.TrimSpace(tranID), TranIDPrefix)
	if id == "" {
		return "", fmt.Errorf("tran_id is required: %w", ErrValidation)
	}
	return id, nil
}

// Total sums round(price) x quantity and applies the coupon percentage.
// The discount is not clamped.
func Total(items []models.OrderItem, coupon *models.Coupon) float64 {
	var total float64
	for _, it := range items {
		total += math.Round(it.Price) * float64(it.Quantity)
	}
	if coupon != nil {
		total -= total * coupon.DiscountPercentage / 100
	}
	return total
}

func orderItems(items []CheckoutItem) ([]models.OrderItem, error) {
	if len(items) == 0 {
		return nil, ErrNoProducts
	}
	out := make([]models.OrderItem, 0, len(items))
	for i, it := range items {
		id, err := uuid.Parse(strings.TrimSpace(it.ID))
		if err != nil {
			return nil, fmt.Errorf("product %d has an invalid id: %w", i, ErrValidation)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("product %d has a negative price: %w", i, ErrValidation)
		}
		if it.Quantity < 0 {
			return nil, fmt.Errorf("product %d has a negative quantity: %w", i, ErrValidation)
		}
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		out = append(out, models.OrderItem{ProductID: id, Quantity: qty, Price: it.Price})
	}
	return out, nil
}

// CreateSession prices the items, persists a pending order and opens a
// payment session for it. The order is kept when the gateway refuses.
func (s *CheckoutService) CreateSession(ctx context.Context, user *models.User, items []CheckoutItem, couponCode string) (*CheckoutResult, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.create", "user_id", user.ID)

	lines, err := orderItems(items)
	if err != nil {
		l.Warn("checkout_rejected", "status", 400, "reason", err.Error())
		return nil, err
	}

	coupon, err := s.Coupons.ForCheckout(ctx, user.ID, couponCode)
	if err != nil {
		l.Error("checkout_failed", "status", 500, "reason", "coupon lookup", "error", err)
		return nil, err
	}

	order := &models.Order{
		UserID:         user.ID,
		Products:       lines,
		TotalAmount:    Total(lines, coupon),
		PaymentGateway: models.GatewaySSLCommerz,
		PaymentStatus:  models.PaymentPending,
	}
	if coupon != nil {
		order.CouponCode = coupon.Code
	}
	if _, err := s.Repo.CreateOrder(ctx, order); err != nil {
		l.Error("checkout_failed", "status", 500, "reason", "create order", "error", err)
		return nil, err
	}
	l = l.With("order_id", order.ID)

	publish(ctx, s.Events, events.TopicOrder, order.ID, "order_created", map[string]any{
		"order_id":     order.ID,
		"user_id":      user.ID,
		"total_amount": order.TotalAmount,
		"coupon_code":  order.CouponCode,
	})

	session, err := s.Gateway.Init(ctx, s.transaction(order, user))
	if err != nil {
		l.Error("checkout_failed", "status", 500, "reason", "gateway init", "error", err)
		return nil, fmt.Errorf("init payment for order %s: %w", order.ID, err)
	}
	if session.GatewayPageURL == "" {
		l.Error("checkout_failed", "status", 500, "reason", "no gateway url", "gateway_status", session.Status, "failed_reason", session.FailedReason)
		return nil, fmt.Errorf("order %s: %w", order.ID, ErrGateway)
	}

	l.Info("checkout_ok", "status", 200, "total_amount", order.TotalAmount)
	return &CheckoutResult{GatewayURL: session.GatewayPageURL, OrderID: order.ID}, nil
}

// transaction builds the gateway request. Only the customer name and email
// come from the user; address and shipping fields are fixed placeholders.
func (s *CheckoutService) transaction(order *models.Order, user *models.User) payment.TransactionRequest {
	base := strings.TrimSuffix(s.BaseURL, "/") + "/api/payments/sslcommerz/"
	return payment.TransactionRequest{
		TotalAmount:     order.TotalAmount,
		Currency:        Currency,
		TranID:          TranIDPrefix + order.ID,
		SuccessURL:      base + "success",
		FailURL:         base + "fail",
		CancelURL:       base + "cancel",
		IPNURL:          base + "ipn",
		ShippingMethod:  "Courier",
		ProductName:     "Order Payment",
		ProductCategory: "Electronic",
		ProductProfile:  "general",

		CustomerName:     user.Name,
		CustomerEmail:    user.Email,
		CustomerAddress1: "Dhaka",
		CustomerAddress2: "Dhaka",
		CustomerCity:     "Dhaka",
		CustomerState:    "Dhaka",
		CustomerPostcode: "1000",
		CustomerCountry:  "Bangladesh",
		CustomerPhone:    "01711111111",
		CustomerFax:      "01711111111",

		ShipName:     "Customer Name",
		ShipAddress1: "Dhaka",
		ShipAddress2: "Dhaka",
		ShipCity:     "Dhaka",
		ShipState:    "Dhaka",
		ShipPostcode: "1000",
		ShipCountry:  "Bangladesh",

		MultiCardName: "mastercard",
		ValueA:        "ref001_A",
		ValueB:        "ref002_B",
		ValueC:        "ref003_C",
		ValueD:        "ref004_D",
	}
}

// ConfirmPayment validates valID with the gateway and marks the order paid.
// Repeating it for a paid order rewrites the same values.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, tranID, valID string) (string, error) {
	orderID, err := OrderIDFromTranID(tranID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(valID) == "" {
		return orderID, fmt.Errorf("val_id is required: %w", ErrValidation)
	}

	v, err := s.Gateway.Validate(ctx, valID)
	if err != nil {
		return orderID, fmt.Errorf("validate payment: %w", err)
	}
	if !payment.IsValid(v.Status) {
		return orderID, fmt.Errorf("%w: status %q", ErrPaymentNotValid, v.Status)
	}
	return orderID, s.markPaid(ctx, orderID, valID, "success")
}

func (s *CheckoutService) FailPayment(ctx context.Context, tranID string) (string, error) {
	return s.setStatus(ctx, tranID, models.PaymentFailed, "order_failed")
}

func (s *CheckoutService) CancelPayment(ctx context.Context, tranID string) (string, error) {
	return s.setStatus(ctx, tranID, models.PaymentCancelled, "order_cancelled")
}

// HandleIPN marks the order paid when the notification carries a valid
// status. Other statuses leave the order untouched.
func (s *CheckoutService) HandleIPN(ctx context.Context, tranID, valID, status string) (string, bool, error) {
	orderID, err := OrderIDFromTranID(tranID)
	if err != nil {
		return "", false, err
	}
	if !payment.IsValid(status) {
		return orderID, false, nil
	}
	if err := s.markPaid(ctx, orderID, valID, "ipn"); err != nil {
		return orderID, false, err
	}
	return orderID, true, nil
}

func (s *CheckoutService) markPaid(ctx context.Context, orderID, valID, source string) error {
	if err := s.Repo.SetOrderStatus(ctx, orderID, models.PaymentPaid, valID); err != nil {
		if repo.IsNotFound(err) {
			return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return err
	}
	publish(ctx, s.Events, events.TopicOrder, orderID, "order_paid", map[string]any{
		"order_id":           orderID,
		"sslcommerz_tran_id": valID,
		"source":             source,
	})
	return nil
}

// setStatus writes status regardless of the order's current status.
func (s *CheckoutService) setStatus(ctx context.Context, tranID string, status models.PaymentStatus, eventType string) (string, error) {
	orderID, err := OrderIDFromTranID(tranID)
	if err != nil {
		return "", err
	}
	if err := s.Repo.SetOrderStatus(ctx, orderID, status, ""); err != nil {
		if repo.IsNotFound(err) {
			return orderID, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
		}
		return orderID, err
	}
	publish(ctx, s.Events, events.TopicOrder, orderID, eventType, map[string]any{"order_id": orderID})
	return orderID, nil
}
