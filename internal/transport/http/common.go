package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
)

type messageResponse struct {
	Message string `json:"message"`
}

func message(c echo.Context, code int, msg string) error {
	return c.JSON(code, messageResponse{Message: msg})
}

func currentUser(c echo.Context) (uuid.UUID, error) {
	id, ok := authmw.UserID(c)
	if !ok {
		return uuid.Nil, errors.New("unauthorized")
	}
	return id, nil
}

var sentinels = []struct {
	err  error
	code int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
}

// clientMessages is the text shown to shoppers for the errors they run into.
var clientMessages = []struct {
	err error
	msg string
}{
	{service.ErrUserExists, "User already exists"},
	{service.ErrInvalidCredentials, "Invalid email or password"},
	{service.ErrProductNotFound, "Product not found"},
	{service.ErrOrderNotFound, "Order not found"},
	{service.ErrCouponNotFound, "Coupon not found"},
	{service.ErrCouponExpired, "Coupon expired"},
	{service.ErrNoProducts, "No products provided for checkout"},
}

// clientMessage prefers a known message and otherwise shows the error's
// own detail without the trailing sentinel.
func clientMessage(err, sentinel error) string {
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
}

// serviceError maps a service error onto a status and a client-safe message.
// Anything that is not a known sentinel becomes a 500 with a generic message.
func serviceError(c echo.Context, l *slog.Logger, event string, err error) error {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			msg := clientMessage(err, s.err)
			l.Warn(event, "status", s.code, "reason", msg)
			return message(c, s.code, msg)
		}
	}
	l.Error(event, "status", http.StatusInternalServerError, "error", err)
	return message(c, http.StatusInternalServerError, "Server error")
}
