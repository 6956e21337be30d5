package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func TestCheckout_CreatesOrderAndReturnsGatewayURL(t *testing.T) {
	env := newTestEnv(t)
	u, cookies := env.login(t, "buyer@example.com", models.RoleCustomer)

	body := map[string]any{
		"products": []map[string]any{{"id": uuid.NewString(), "price": 100, "quantity": 2}},
	}
	rec := env.doJSON(t, http.MethodPost, "/api/payments/checkout", body, cookies...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[checkoutResponse](t, rec)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.GatewayURL)

	order, err := env.Repo.GetOrderForUser(context.Background(), resp.OrderID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.InDelta(t, 200, order.TotalAmount, 1e-9)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.Metrics.Checkouts.WithLabelValues("created")))
}

func TestCheckout_EmptyProducts(t *testing.T) {
	env := newTestEnv(t)
	_, cookies := env.login(t, "buyer@example.com", models.RoleCustomer)

	for _, body := range []any{map[string]any{}, map[string]any{"products": []any{}}} {
		rec := env.doJSON(t, http.MethodPost, "/api/payments/checkout", body, cookies...)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No products provided for checkout", decode[messageResponse](t, rec).Message)
	}

	var n int64
	require.NoError(t, env.Repo.DB.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCheckout_GatewayFailures(t *testing.T) {
	env := newTestEnv(t)
	_, cookies := env.login(t, "buyer@example.com", models.RoleCustomer)
	body := map[string]any{"products": []map[string]any{{"id": uuid.NewString(), "price": 10}}}

	env.Gateway.PageURL = ""
	rec := env.doJSON(t, http.MethodPost, "/api/payments/checkout", body, cookies...)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to initiate payment", decode[messageResponse](t, rec).Message)

	env.Gateway.InitErr = assert.AnError
	rec = env.doJSON(t, http.MethodPost, "/api/payments/checkout", body, cookies...)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Payment initiation failed", decode[messageResponse](t, rec).Message)
}

func TestCheckout_RequiresSession(t *testing.T) {
	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodPost, "/api/payments/checkout", map[string]any{"products": []any{}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func createOrder(t *testing.T, env *testEnv, id string) {
	t.Helper()
	u := &models.User{Name: "Owner", Email: id + "@example.com", Password: "secret1"}
	require.NoError(t, env.Repo.CreateUserIfNotExists(context.Background(), u))
	_, err := env.Repo.CreateOrder(context.Background(), &models.Order{ID: id, UserID: u.ID, TotalAmount: 10})
	require.NoError(t, err)
}

func orderStatus(t *testing.T, env *testEnv, id string) *models.Order {
	t.Helper()
	o, err := env.Repo.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return o
}

func TestSuccessCallback(t *testing.T) {
	env := newTestEnv(t)
	createOrder(t, env, "abc123")

	rec := env.doForm(t, "/api/payments/sslcommerz/success", url.Values{"tran_id": {"ORDER_abc123"}, "val_id": {"V1"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontendURL+"/payment/success?order=abc123", rec.Header().Get("Location"))

	o := orderStatus(t, env, "abc123")
	assert.Equal(t, models.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, "V1", o.SSLCommerzTranID)
}

func TestSuccessCallback_FailuresRedirectToFail(t *testing.T) {
	env := newTestEnv(t)
	createOrder(t, env, "abc123")

	rec := env.doForm(t, "/api/payments/sslcommerz/success", url.Values{"tran_id": {"ORDER_unknown"}, "val_id": {"V1"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontendURL+"/payment/fail", rec.Header().Get("Location"))

	env.Gateway.ValidStatus = "INVALID_TRANSACTION"
	rec = env.doForm(t, "/api/payments/sslcommerz/success", url.Values{"tran_id": {"ORDER_abc123"}, "val_id": {"V1"}})
	assert.Equal(t, frontendURL+"/payment/fail", rec.Header().Get("Location"))
	assert.Equal(t, models.PaymentPending, orderStatus(t, env, "abc123").PaymentStatus)

	rec = env.doForm(t, "/api/payments/sslcommerz/success", url.Values{})
	assert.Equal(t, frontendURL+"/payment/fail", rec.Header().Get("Location"))
}

func TestFailAndCancelCallbacks(t *testing.T) {
	env := newTestEnv(t)
	createOrder(t, env, "abc123")

	rec := env.doForm(t, "/api/payments/sslcommerz/fail", url.Values{"tran_id": {"ORDER_abc123"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontendURL+"/payment/fail", rec.Header().Get("Location"))
	assert.Equal(t, models.PaymentFailed, orderStatus(t, env, "abc123").PaymentStatus)

	rec = env.doForm(t, "/api/payments/sslcommerz/cancel", url.Values{"tran_id": {"ORDER_abc123"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontendURL+"/payment/cancel", rec.Header().Get("Location"))
	assert.Equal(t, models.PaymentCancelled, orderStatus(t, env, "abc123").PaymentStatus)

	// unknown orders still redirect
	rec = env.doForm(t, "/api/payments/sslcommerz/cancel", url.Values{"tran_id": {"ORDER_missing"}})
	assert.Equal(t, frontendURL+"/payment/cancel", rec.Header().Get("Location"))
	rec = env.doForm(t, "/api/payments/sslcommerz/fail", url.Values{})
	assert.Equal(t, frontendURL+"/payment/fail", rec.Header().Get("Location"))

	assert.Equal(t, 1.0, testutil.ToFloat64(env.Metrics.Callbacks.WithLabelValues("cancel", "error")))
}

func TestCallbacks_RedirectOnDatabaseFault(t *testing.T) {
	env := newTestEnv(t)
	createOrder(t, env, "abc123")

	sqlDB, err := env.Repo.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec := env.doForm(t, "/api/payments/sslcommerz/fail", url.Values{"tran_id": {"ORDER_abc123"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontendURL+"/payment/fail", rec.Header().Get("Location"))

	rec = env.doForm(t, "/api/payments/sslcommerz/cancel", url.Values{"tran_id": {"ORDER_abc123"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontendURL+"/payment/cancel", rec.Header().Get("Location"))

	rec = env.doForm(t, "/api/payments/sslcommerz/success", url.Values{"tran_id": {"ORDER_abc123"}, "val_id": {"V1"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, frontendURL+"/payment/fail", rec.Header().Get("Location"))

	rec = env.doForm(t, "/api/payments/sslcommerz/ipn", url.Values{"tran_id": {"ORDER_abc123"}, "status": {"VALID"}, "val_id": {"V1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IPN received", rec.Body.String())

	assert.Equal(t, 1.0, testutil.ToFloat64(env.Metrics.Callbacks.WithLabelValues("fail", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.Metrics.Callbacks.WithLabelValues("ipn", "error")))
}

func TestIPN(t *testing.T) {
	env := newTestEnv(t)
	createOrder(t, env, "abc123")

	rec := env.doForm(t, "/api/payments/sslcommerz/ipn", url.Values{"tran_id": {"ORDER_abc123"}, "status": {"VALID"}, "val_id": {"V1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IPN received", rec.Body.String())

	o := orderStatus(t, env, "abc123")
	assert.Equal(t, models.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, "V1", o.SSLCommerzTranID)
}

func TestIPN_AlwaysAcknowledges(t *testing.T) {
	env := newTestEnv(t)

	for _, form := range []url.Values{
		{"tran_id": {"ORDER_missing"}, "status": {"VALID"}, "val_id": {"V1"}},
		{"status": {"VALID"}},
		{"tran_id": {"ORDER_x"}, "status": {"FAILED"}},
	} {
		rec := env.doForm(t, "/api/payments/sslcommerz/ipn", form)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "IPN received", rec.Body.String())
	}
}
