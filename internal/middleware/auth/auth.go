// Package auth guards routes with the access token cookie and rotates
// expired tokens from the refresh cookie.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error)
}

type Middleware struct {
	AccessSecret  []byte
	Refresher     Refresher
	SecureCookies bool
}

type validatorFunc func(claims *tokens.AccessClaims) error

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, nil)
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Access denied - Admin only")
		}
		return nil
	})
}

func (m *Middleware) require(next echo.HandlerFunc, validate validatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("mw", "auth")

		access := cookieValue(c, tokens.AccessCookie)
		if access != "" {
			claims, err := tokens.AccessClaimsFromToken(access, m.AccessSecret)
			if err == nil {
				return m.admit(c, next, claims, validate)
			}
			if !errors.Is(err, jwt.ErrTokenExpired) {
				l.Warn("auth_rejected", "status", 401, "reason", "invalid access token")
				ClearAuthCookies(c, m.SecureCookies)
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized - Invalid access token")
			}
		}

		refresh := cookieValue(c, tokens.RefreshCookie)
		if refresh == "" {
			if access == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized - No access token provided")
			}
			ClearAuthCookies(c, m.SecureCookies)
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized - Access token expired")
		}

		res, err := m.Refresher.Refresh(c.Request().Context(), refresh)
		if err != nil {
			l.Warn("auth_rejected", "status", 401, "reason", "refresh failed", "error", err)
			ClearAuthCookies(c, m.SecureCookies)
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized - Session expired")
		}
		SetAuthCookies(c, res.Tokens, m.SecureCookies)

		claims, err := tokens.AccessClaimsFromToken(res.Tokens.AccessToken, m.AccessSecret)
		if err != nil {
			ClearAuthCookies(c, m.SecureCookies)
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized - Invalid access token")
		}
		return m.admit(c, next, claims, validate)
	}
}

func (m *Middleware) admit(c echo.Context, next echo.HandlerFunc, claims *tokens.AccessClaims, validate validatorFunc) error {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized - Invalid access token")
	}
	if validate != nil {
		if err := validate(claims); err != nil {
			return err
		}
	}
	c.Set(ctxUserID, userID)
	c.Set(ctxRole, claims.Role)
	return next(c)
}

func cookieValue(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// UserID returns the authenticated user set by RequireAuth.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ctxUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func Role(c echo.Context) string {
	role, _ := c.Get(ctxRole).(string)
	return role
}

func SetAuthCookies(c echo.Context, pair *tokens.Pair, secure bool) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.AccessToken, "/", pair.AccessExp, secure))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp, secure))
}

func ClearAuthCookies(c echo.Context, secure bool) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/", secure))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/", secure))
}
