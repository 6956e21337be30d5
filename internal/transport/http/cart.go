package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

type CartHTTP struct {
	Svc *service.CartService
}

type cartRequest struct {
	ProductID string `json:"productId"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	lines, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return serviceError(c, l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}

	var req cartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "invalid body")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "bad productId")
		return message(c, http.StatusBadRequest, "productId is required")
	}

	lines, err := h.Svc.AddToCart(ctx, userID, productID)
	if err != nil {
		return serviceError(c, l, "add_to_cart_error", err)
	}
	return c.JSON(http.StatusOK, lines)
}

// RemoveFromCart removes the line named by productId, or clears the cart
// when the body carries none.
func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}

	var req cartRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			l.Warn("remove_from_cart_error", "status", 400, "error", err)
			return message(c, http.StatusBadRequest, "invalid body")
		}
	}
	productID := uuid.Nil
	if req.ProductID != "" {
		productID, err = uuid.Parse(req.ProductID)
		if err != nil {
			return message(c, http.StatusBadRequest, "invalid productId")
		}
	}

	lines, err := h.Svc.RemoveFromCart(ctx, userID, productID)
	if err != nil {
		return serviceError(c, l, "remove_from_cart_error", err)
	}
	return c.JSON(http.StatusOK, lines)
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid product id")
	}

	var req quantityRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		l.Warn("update_quantity_error", "status", 400, "reason", "quantity missing")
		return message(c, http.StatusBadRequest, "quantity is required")
	}

	lines, err := h.Svc.UpdateQuantity(ctx, userID, productID, *req.Quantity)
	if err != nil {
		return serviceError(c, l, "update_quantity_error", err)
	}
	return c.JSON(http.StatusOK, lines)
}
