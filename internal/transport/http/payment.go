package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/service"
)

type PaymentHTTP struct {
	Svc         *service.CheckoutService
	Users       *service.AuthService
	FrontendURL string
	Metrics     *metrics.Metrics
}

type checkoutRequest struct {
	Products   []service.CheckoutItem `json:"products"`
	CouponCode string                 `json:"couponCode"`
}

type checkoutResponse struct {
	Success    bool   `json:"success"`
	GatewayURL string `json:"gatewayUrl"`
	OrderID    string `json:"orderId"`
}

func (h *PaymentHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.checkout")

	userID, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		h.Metrics.Checkout("rejected")
		return message(c, http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.Profile(ctx, userID)
	if err != nil {
		h.Metrics.Checkout("error")
		return serviceError(c, l, "checkout_error", err)
	}

	res, err := h.Svc.CreateSession(ctx, user, req.Products, req.CouponCode)
	switch {
	case err == nil:
		h.Metrics.Checkout("created")
		return c.JSON(http.StatusOK, checkoutResponse{Success: true, GatewayURL: res.GatewayURL, OrderID: res.OrderID})
	case errors.Is(err, service.ErrValidation):
		h.Metrics.Checkout("rejected")
		return serviceError(c, l, "checkout_error", err)
	case errors.Is(err, service.ErrGateway):
		h.Metrics.Checkout("gateway_error")
		l.Error("checkout_error", "status", 500, "error", err)
		return message(c, http.StatusInternalServerError, "Failed to initiate payment")
	default:
		h.Metrics.Checkout("error")
		l.Error("checkout_error", "status", 500, "error", err)
		return message(c, http.StatusInternalServerError, "Payment initiation failed")
	}
}

func (h *PaymentHTTP) redirect(c echo.Context, path string) error {
	return c.Redirect(http.StatusFound, h.FrontendURL+path)
}

// Success is where the gateway sends the shopper after paying. Every
// failure ends in a redirect to the fail page.
func (h *PaymentHTTP) Success(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.success")

	orderID, err := h.Svc.ConfirmPayment(ctx, c.FormValue("tran_id"), c.FormValue("val_id"))
	if err != nil {
		l.Warn("payment_success_error", "order_id", orderID, "error", err)
		h.Metrics.Callback("success", "error")
		return h.redirect(c, "/payment/fail")
	}

	h.Metrics.Callback("success", "paid")
	l.Info("payment_success_ok", "order_id", orderID)
	return h.redirect(c, "/payment/success?order="+url.QueryEscape(orderID))
}

func (h *PaymentHTTP) Fail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.fail")

	orderID, err := h.Svc.FailPayment(ctx, c.FormValue("tran_id"))
	if err != nil {
		l.Warn("payment_fail_error", "order_id", orderID, "error", err)
		h.Metrics.Callback("fail", "error")
	} else {
		h.Metrics.Callback("fail", "failed")
	}
	return h.redirect(c, "/payment/fail")
}

func (h *PaymentHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.cancel")

	orderID, err := h.Svc.CancelPayment(ctx, c.FormValue("tran_id"))
	if err != nil {
		l.Warn("payment_cancel_error", "order_id", orderID, "error", err)
		h.Metrics.Callback("cancel", "error")
	} else {
		h.Metrics.Callback("cancel", "cancelled")
	}
	return h.redirect(c, "/payment/cancel")
}

// IPN always acknowledges so the gateway stops retrying; faults are logged.
func (h *PaymentHTTP) IPN(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.ipn")

	orderID, paid, err := h.Svc.HandleIPN(ctx, c.FormValue("tran_id"), c.FormValue("val_id"), c.FormValue("status"))
	switch {
	case err != nil:
		l.Error("payment_ipn_error", "order_id", orderID, "error", err)
		h.Metrics.Callback("ipn", "error")
	case paid:
		h.Metrics.Callback("ipn", "paid")
	default:
		h.Metrics.Callback("ipn", "ignored")
	}
	return c.String(http.StatusOK, "IPN received")
}
