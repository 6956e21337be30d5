package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type AuthHTTP struct {
	Svc           *service.AuthService
	SecureCookies bool
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req signupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Signup(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return serviceError(c, l, "signup_error", err)
	}

	authmw.SetAuthCookies(c, res.Tokens, h.SecureCookies)
	return c.JSON(http.StatusCreated, res.User)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return message(c, http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return serviceError(c, l, "login_error", err)
	}

	authmw.SetAuthCookies(c, res.Tokens, h.SecureCookies)
	l.Info("login_ok", "status", 200, "user_id", res.User.ID)
	return c.JSON(http.StatusOK, res.User)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var refresh string
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
		refresh = ck.Value
	}
	if err := h.Svc.Logout(ctx, refresh); err != nil {
		return serviceError(c, l, "logout_error", err)
	}

	authmw.ClearAuthCookies(c, h.SecureCookies)
	return message(c, http.StatusOK, "Logged out successfully")
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.profile")

	userID, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	user, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		return serviceError(c, l, "profile_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	ck, err := c.Cookie(tokens.RefreshCookie)
	if err != nil || ck.Value == "" {
		l.Warn("refresh_error", "status", 401, "reason", "no refresh cookie")
		return message(c, http.StatusUnauthorized, "No refresh token provided")
	}

	res, err := h.Svc.Refresh(ctx, ck.Value)
	if err != nil {
		authmw.ClearAuthCookies(c, h.SecureCookies)
		return serviceError(c, l, "refresh_error", err)
	}

	authmw.SetAuthCookies(c, res.Tokens, h.SecureCookies)
	return message(c, http.StatusOK, "Token refreshed successfully")
}
