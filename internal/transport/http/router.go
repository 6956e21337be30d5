package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/metrics"
)

type Deps struct {
	Auth      *authmw.Middleware
	RateLimit echo.MiddlewareFunc
	Metrics   *metrics.Metrics
	// Ready reports whether the backing stores answer.
	Ready func(ctx context.Context) error

	AuthHandler    *AuthHTTP
	CartHandler    *CartHTTP
	CouponHandler  *CouponHTTP
	PaymentHandler *PaymentHTTP
	ProductHandler *ProductHTTP
	OrderHandler   *OrderHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return message(c, http.StatusServiceUnavailable, "not ready")
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	api := e.Group("/api")

	var limited []echo.MiddlewareFunc
	if d.RateLimit != nil {
		limited = append(limited, d.RateLimit)
	}
	auth := api.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup, limited...)
	auth.POST("/login", d.AuthHandler.Login, limited...)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.POST("/refresh-token", d.AuthHandler.RefreshToken)
	auth.GET("/profile", d.AuthHandler.Profile, d.Auth.RequireAuth)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search", d.ProductHandler.SearchProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, d.Auth.RequireAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.Auth.RequireAdmin)

	cart := api.Group("/cart", d.Auth.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.RemoveFromCart)
	cart.PUT("/:id", d.CartHandler.UpdateQuantity)

	coupons := api.Group("/coupons")
	coupons.GET("", d.CouponHandler.GetCoupon, d.Auth.RequireAuth)
	coupons.POST("/validate", d.CouponHandler.ValidateCoupon, d.Auth.RequireAuth)
	coupons.POST("", d.CouponHandler.CreateCoupon, d.Auth.RequireAdmin)

	orders := api.Group("/orders", d.Auth.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)

	payments := api.Group("/payments")
	payments.POST("/checkout", d.PaymentHandler.Checkout, d.Auth.RequireAuth)

	// gateway callbacks carry no session cookies
	sslcz := payments.Group("/sslcommerz")
	sslcz.POST("/success", d.PaymentHandler.Success)
	sslcz.POST("/fail", d.PaymentHandler.Fail)
	sslcz.POST("/cancel", d.PaymentHandler.Cancel)
	sslcz.POST("/ipn", d.PaymentHandler.IPN)
}
