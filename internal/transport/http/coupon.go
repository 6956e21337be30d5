package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

type CouponHTTP struct {
	Svc *service.CouponService
}

type validateCouponResponse struct {
	Message            string  `json:"message"`
	Code               string  `json:"code"`
	DiscountPercentage float64 `json:"discountPercentage"`
}

func (h *CouponHTTP) GetCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.get")

	userID, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	coupon, err := h.Svc.GetMyCoupon(ctx, userID)
	if err != nil {
		return serviceError(c, l, "get_coupon_error", err)
	}
	// null when the user has no active coupon
	return c.JSON(http.StatusOK, coupon)
}

func (h *CouponHTTP) ValidateCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.validate")

	userID, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "invalid body")
	}

	coupon, err := h.Svc.Validate(ctx, userID, req.Code)
	if err != nil {
		return serviceError(c, l, "validate_coupon_error", err)
	}
	return c.JSON(http.StatusOK, validateCouponResponse{
		Message:            "Coupon is valid",
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
	})
}

func (h *CouponHTTP) CreateCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.create")

	var req service.CreateCouponInput
	if err := c.Bind(&req); err != nil {
		l.Warn("create_coupon_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "invalid body")
	}
	coupon, err := h.Svc.Create(ctx, req)
	if err != nil {
		return serviceError(c, l, "create_coupon_error", err)
	}
	return c.JSON(http.StatusCreated, coupon)
}
