package client

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	errors   []string
	successes []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

// fakeAPI is an in-memory stand-in for the storefront API.
type fakeAPI struct {
	mu       sync.Mutex
	cart     []CartLine
	products map[string]Product
	coupons  map[string]float64
	calls    []string
	loggedIn bool
}

func newFakeAPI(t *testing.T, products ...Product) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{products: map[string]Product{}, coupons: map[string]float64{"SAVE10": 10}}
	for _, p := range products {
		f.products[p.ID] = p
	}

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			f.mu.Lock()
			f.calls = append(f.calls, c.Request().Method+" "+c.Path())
			f.mu.Unlock()
			return next(c)
		}
	})
	api := e.Group("/api")
	api.GET("/cart", f.getCart)
	api.POST("/cart", f.addToCart)
	api.DELETE("/cart", f.removeFromCart)
	api.PUT("/cart/:id", f.updateQuantity)
	api.GET("/coupons", func(c echo.Context) error {
		return c.JSON(http.StatusOK, Coupon{Code: "SAVE10", DiscountPercentage: 10, IsActive: true})
	})
	api.POST("/coupons/validate", f.validateCoupon)
	api.POST("/auth/signup", f.signup)
	api.POST("/auth/login", f.login)
	api.POST("/auth/logout", func(c echo.Context) error {
		c.SetCookie(&http.Cookie{Name: "accessToken", Value: "", Path: "/", MaxAge: -1})
		return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
	})
	api.GET("/auth/profile", func(c echo.Context) error {
		if ck, err := c.Cookie("accessToken"); err != nil || ck.Value == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized - No access token provided"})
		}
		return c.JSON(http.StatusOK, User{ID: "u1", Name: "Rahim", Email: "rahim@example.com", Role: "customer"})
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	cl, err := New(srv.URL + "/api")
	require.NoError(t, err)
	return f, cl
}

func (f *fakeAPI) calledTimes(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) getCart(c echo.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]CartLine, len(f.cart))
	copy(out, f.cart)
	return c.JSON(http.StatusOK, out)
}

func (f *fakeAPI) addToCart(c echo.Context) error {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[req.ProductID]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Product not found"})
	}
	f.cart = AddLine(f.cart, p)
	return c.JSON(http.StatusOK, f.cart)
}

func (f *fakeAPI) removeFromCart(c echo.Context) error {
	var req struct {
		ProductID string `json:"productId"`
	}
	_ = c.Bind(&req)
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.ProductID == "" {
		f.cart = nil
	} else {
		f.cart = RemoveLine(f.cart, req.ProductID)
	}
	return c.JSON(http.StatusOK, f.cart)
}

func (f *fakeAPI) updateQuantity(c echo.Context) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cart {
		if f.cart[i].ID == c.Param("id") {
			f.cart[i].Quantity = req.Quantity
			return c.JSON(http.StatusOK, f.cart)
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"message": "Product not found"})
}

func (f *fakeAPI) validateCoupon(c echo.Context) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	pct, ok := f.coupons[req.Code]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Coupon not found"})
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Coupon is valid", "code": req.Code, "discountPercentage": pct})
}

func (f *fakeAPI) signup(c echo.Context) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Email == "taken@example.com" {
		return c.JSON(http.StatusConflict, map[string]string{"message": "User already exists"})
	}
	c.SetCookie(&http.Cookie{Name: "accessToken", Value: "token", Path: "/"})
	return c.JSON(http.StatusCreated, User{ID: "u1", Name: req.Name, Email: req.Email, Role: "customer"})
}

func (f *fakeAPI) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.Password != "secret1" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
	}
	f.mu.Lock()
	f.loggedIn = true
	f.mu.Unlock()
	c.SetCookie(&http.Cookie{Name: "accessToken", Value: "token", Path: "/"})
	return c.JSON(http.StatusOK, User{ID: "u1", Name: "Rahim", Email: req.Email, Role: "customer"})
}
