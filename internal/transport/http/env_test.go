package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/metrics"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const frontendURL = "http://localhost:5173"

func init() {
	hash.Cost = bcrypt.MinCost
}

type testEnv struct {
	E       *echo.Echo
	Repo    *repo.GormRepo
	Gateway *payment.Mock
	Metrics *metrics.Metrics
	Auth    *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(dbtest.New(t))
	gw := payment.NewMock("http://localhost:5000")
	m := metrics.New()
	issuer := tokens.Issuer{AccessSecret: []byte("test-jwt-secret"), RefreshSecret: []byte("test-refresh-secret")}
	pub := events.Nop{}

	authSvc := &service.AuthService{Repo: r, Issuer: issuer, Events: pub}
	coupons := &service.CouponService{Repo: r}

	e := echo.New()
	e.Use(m.Middleware())
	Register(e, &Deps{
		Auth:          &authmw.Middleware{AccessSecret: issuer.AccessSecret, Refresher: authSvc},
		Metrics:       m,
		AuthHandler:   &AuthHTTP{Svc: authSvc},
		CartHandler:   &CartHTTP{Svc: &service.CartService{Repo: r, Events: pub}},
		CouponHandler: &CouponHTTP{Svc: coupons},
		PaymentHandler: &PaymentHTTP{
			Svc: &service.CheckoutService{
				Repo:    r,
				Coupons: coupons,
				Gateway: gw,
				Events:  pub,
				BaseURL: "http://localhost:5000",
			},
			Users:       authSvc,
			FrontendURL: frontendURL,
			Metrics:     m,
		},
		ProductHandler: &ProductHTTP{Svc: &service.ProductService{Repo: r}},
		OrderHandler:   &OrderHTTP{Svc: &service.OrderService{Repo: r}},
	})

	return &testEnv{E: e, Repo: r, Gateway: gw, Metrics: m, Auth: authSvc}
}

// login creates a user with role and returns its session cookies.
func (env *testEnv) login(t *testing.T, email, role string) (*models.User, []*http.Cookie) {
	t.Helper()
	ctx := context.Background()
	u := &models.User{Name: "Test User", Email: email, Password: "secret1", Role: role}
	require.NoError(t, env.Repo.CreateUserIfNotExists(ctx, u))

	res, err := env.Auth.Login(ctx, email, "secret1")
	require.NoError(t, err)
	return u, []*http.Cookie{
		{Name: tokens.AccessCookie, Value: res.Tokens.AccessToken},
		{Name: tokens.RefreshCookie, Value: res.Tokens.RefreshToken},
	}
}

func (env *testEnv) doJSON(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) doForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
