package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

// ProductIndex is the external search index. It is optional.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type ProductService struct {
	Repo  *repo.GormRepo
	Index ProductIndex
}

type ProductPage struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

type CreateProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

func (s *ProductService) List(ctx context.Context, page util.Page) (*ProductPage, error) {
	total, items, err := s.Repo.GetProducts(ctx, page.Offset, page.Size)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Items: items, Total: total, Page: page.Number, Size: page.Size}, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.create")

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	case in.Price < 0:
		return nil, fmt.Errorf("price must not be negative: %w", ErrValidation)
	}

	p, err := s.Repo.CreateProduct(ctx, &models.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Image:       in.Image,
		Category:    strings.TrimSpace(in.Category),
	})
	if err != nil {
		l.Error("create_product_failed", "status", 500, "error", err)
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			l.Warn("index_product_failed", "product_id", p.ID, "error", err)
		}
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return ErrProductNotFound
		}
		return err
	}
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id.String()); err != nil {
			logging.FromContext(ctx).Warn("unindex_product_failed", "product_id", id, "error", err)
		}
	}
	return nil
}

// Search queries the index when one is configured and falls back to the
// database when there is none or it fails.
func (s *ProductService) Search(ctx context.Context, query string, page util.Page) (*ProductPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", ErrValidation)
	}

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, query, page.Offset, page.Size)
		if err == nil {
			return &ProductPage{Items: items, Total: total, Page: page.Number, Size: page.Size}, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, query, page.Offset, page.Size)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Items: items, Total: total, Page: page.Number, Size: page.Size}, nil
}
