package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func init() {
	hash.Cost = bcrypt.MinCost
}

type recordedEvent struct {
	Topic string
	Key   string
	Type  string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev, _ := event.(events.Event)
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Type: ev.Type})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	Repo     *repo.GormRepo
	Events   *recordingPublisher
	Gateway  *payment.Mock
	Auth     *AuthService
	Cart     *CartService
	Coupons  *CouponService
	Checkout *CheckoutService
	Products *ProductService
	Orders   *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(dbtest.New(t))
	pub := &recordingPublisher{}
	gw := payment.NewMock("http://localhost:5000")
	coupons := &CouponService{Repo: r}

	return &testEnv{
		Repo:    r,
		Events:  pub,
		Gateway: gw,
		Auth: &AuthService{
			Repo:   r,
			Issuer: tokens.Issuer{AccessSecret: []byte("test-jwt-secret"), RefreshSecret: []byte("test-refresh-secret")},
			Events: pub,
		},
		Cart:    &CartService{Repo: r, Events: pub},
		Coupons: coupons,
		Checkout: &CheckoutService{
			Repo:    r,
			Coupons: coupons,
			Gateway: gw,
			Events:  pub,
			BaseURL: "http://localhost:5000",
		},
		Products: &ProductService{Repo: r},
		Orders:   &OrderService{Repo: r},
	}
}

func (e *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Test User", Email: email, Password: "secret1"}
	require.NoError(t, e.Repo.CreateUserIfNotExists(context.Background(), u))
	return u
}

func (e *testEnv) product(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	p, err := e.Repo.CreateProduct(context.Background(), &models.Product{Name: name, Description: name, Price: price})
	require.NoError(t, err)
	return p
}

func (e *testEnv) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.Repo.DB.Model(&models.Order{}).Count(&n).Error)
	return n
}
