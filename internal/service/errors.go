package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
)

var (
	ErrValidation   = errors.New("validation")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrGateway      = errors.New("payment gateway refused the session")
)

var (
	ErrUserExists         = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrProductNotFound    = fmt.Errorf("product not found: %w", ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("order not found: %w", ErrNotFound)
	ErrCouponNotFound     = fmt.Errorf("coupon not found: %w", ErrNotFound)
	ErrCouponExpired      = fmt.Errorf("coupon expired: %w", ErrNotFound)
	ErrNoProducts         = fmt.Errorf("no products provided for checkout: %w", ErrValidation)
)

// publish sends an event and only logs failures. Events never fail a request.
func publish(ctx context.Context, pub events.Publisher, topic, key, eventType string, data any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, topic, key, events.NewEvent(eventType, data)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", eventType, "error", err)
	}
}
