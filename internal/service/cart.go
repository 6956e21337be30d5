package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]repo.CartLine, error) {
	return s.Repo.GetCart(ctx, userID)
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID uuid.UUID) ([]repo.CartLine, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("productId is required: %w", ErrValidation)
	}
	if err := s.Repo.AddToCart(ctx, userID, productID); err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	s.emit(ctx, userID, "cart_item_added", productID, 0)
	return s.Repo.GetCart(ctx, userID)
}

// RemoveFromCart drops one line, or the whole cart when productID is nil.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) ([]repo.CartLine, error) {
	if productID == uuid.Nil {
		if err := s.Repo.ClearCart(ctx, userID); err != nil {
			return nil, err
		}
		s.emit(ctx, userID, "cart_cleared", uuid.Nil, 0)
		return []repo.CartLine{}, nil
	}
	if err := s.Repo.RemoveFromCart(ctx, userID, productID); err != nil {
		return nil, err
	}
	s.emit(ctx, userID, "cart_item_removed", productID, 0)
	return s.Repo.GetCart(ctx, userID)
}

// UpdateQuantity sets the quantity of an existing line. Zero removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]repo.CartLine, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", ErrValidation)
	}
	if quantity == 0 {
		return s.RemoveFromCart(ctx, userID, productID)
	}

	if err := s.Repo.SetCartQuantity(ctx, userID, productID, quantity); err != nil {
		switch {
		case repo.IsNotFound(err):
			return nil, ErrProductNotFound
		case errors.Is(err, models.ErrInvalidQuantity):
			return nil, fmt.Errorf("%s: %w", err.Error(), ErrValidation)
		default:
			return nil, err
		}
	}
	s.emit(ctx, userID, "cart_quantity_updated", productID, quantity)
	return s.Repo.GetCart(ctx, userID)
}

func (s *CartService) emit(ctx context.Context, userID uuid.UUID, eventType string, productID uuid.UUID, quantity int) {
	data := map[string]any{"user_id": userID}
	if productID != uuid.Nil {
		data["product_id"] = productID
	}
	if quantity > 0 {
		data["quantity"] = quantity
	}
	publish(ctx, s.Events, events.TopicCart, userID.String(), eventType, data)
}
