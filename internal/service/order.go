package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderService struct {
	Repo *repo.GormRepo
}

func (s *OrderService) List(ctx context.Context, userID uuid.UUID, page util.Page) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, userID, page.Size, page.Offset)
}

// Get returns the order only when userID owns it.
func (s *OrderService) Get(ctx context.Context, userID uuid.UUID, id string) (*models.Order, error) {
	o, err := s.Repo.GetOrderForUser(ctx, id, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}
