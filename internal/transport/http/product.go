package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	page, err := h.Svc.List(ctx, util.ParsePage(c.QueryParam("page"), c.QueryParam("size")))
	if err != nil {
		return serviceError(c, l, "get_products_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid product id")
	}
	p, err := h.Svc.Get(ctx, id)
	if err != nil {
		return serviceError(c, l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page, err := h.Svc.Search(ctx, c.QueryParam("q"), util.ParsePage(c.QueryParam("page"), c.QueryParam("size")))
	if err != nil {
		return serviceError(c, l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req service.CreateProductInput
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "invalid body")
	}
	p, err := h.Svc.Create(ctx, req)
	if err != nil {
		return serviceError(c, l, "create_product_error", err)
	}
	l.Info("create_product_ok", "status", 201, "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return message(c, http.StatusBadRequest, "invalid product id")
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return serviceError(c, l, "delete_product_error", err)
	}
	return message(c, http.StatusOK, "Product deleted successfully")
}
