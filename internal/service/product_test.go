package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

type fakeIndex struct {
	indexed   []uuid.UUID
	deleted   []string
	searchErr error
	hits      []models.Product
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []models.Product, error) {
	if f.searchErr != nil {
		return 0, nil, f.searchErr
	}
	return int64(len(f.hits)), f.hits, nil
}

func TestProductService_CreateIndexesAndDeleteUnindexes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	idx := &fakeIndex{}
	env.Products.Index = idx

	p, err := env.Products.Create(ctx, CreateProductInput{Name: " Lamp ", Description: "warm light", Price: 30})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, []uuid.UUID{p.ID}, idx.indexed)

	got, err := env.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	require.NoError(t, env.Products.Delete(ctx, p.ID))
	assert.Equal(t, []string{p.ID.String()}, idx.deleted)

	_, err = env.Products.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.Products.Delete(ctx, p.ID), ErrNotFound)

	_, err = env.Products.Create(ctx, CreateProductInput{Name: "", Price: 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.Products.Create(ctx, CreateProductInput{Name: "x", Price: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProductService_SearchFallsBackToDatabase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lamp := env.product(t, "Desk Lamp", 30)
	env.product(t, "Chair", 80)

	page, err := env.Products.Search(ctx, "lamp", util.Paginate(1, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, lamp.ID, page.Items[0].ID)

	env.Products.Index = &fakeIndex{searchErr: errors.New("cluster down")}
	page, err = env.Products.Search(ctx, "chair", util.Paginate(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	hit := models.Product{ID: uuid.New(), Name: "Indexed"}
	env.Products.Index = &fakeIndex{hits: []models.Product{hit}}
	page, err = env.Products.Search(ctx, "anything", util.Paginate(1, 10))
	require.NoError(t, err)
	assert.Equal(t, hit.ID, page.Items[0].ID)

	_, err = env.Products.Search(ctx, "  ", util.Paginate(1, 10))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProductService_List(t *testing.T) {
	env := newTestEnv(t)
	for _, n := range []string{"a", "b", "c"} {
		env.product(t, n, 1)
	}

	page, err := env.Products.List(context.Background(), util.Paginate(2, 2))
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Page)
}

func TestOrderService_GetIsScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com")
	other := env.user(t, "other@example.com")

	_, err := env.Repo.CreateOrder(ctx, &models.Order{ID: "o1", UserID: owner.ID, TotalAmount: 10})
	require.NoError(t, err)

	o, err := env.Orders.Get(ctx, owner.ID, "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)

	_, err = env.Orders.Get(ctx, other.ID, "o1")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := env.Orders.List(ctx, owner.ID, util.Paginate(1, 10))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
