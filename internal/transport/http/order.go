package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	userID, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	orders, err := h.Svc.List(ctx, userID, util.ParsePage(c.QueryParam("page"), c.QueryParam("size")))
	if err != nil {
		return serviceError(c, l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	order, err := h.Svc.Get(ctx, userID, c.Param("id"))
	if err != nil {
		return serviceError(c, l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}
