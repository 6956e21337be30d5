package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Issuer tokens.Issuer
	Events events.Publisher
}

type AuthResult struct {
	User   *models.User
	Tokens *tokens.Pair
}

func isUserValidation(err error) bool {
	return errors.Is(err, models.ErrNameRequired) ||
		errors.Is(err, models.ErrEmailRequired) ||
		errors.Is(err, models.ErrPasswordRequired) ||
		errors.Is(err, models.ErrPasswordTooShort) ||
		errors.Is(err, models.ErrInvalidRole)
}

func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	user := &models.User{Name: name, Email: email, Password: password}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		switch {
		case errors.Is(err, repo.ErrUserAlreadyExist):
			l.Warn("signup_failed", "status", 409, "reason", "user already exists")
			return nil, ErrUserExists
		case isUserValidation(err):
			l.Warn("signup_failed", "status", 400, "reason", err.Error())
			return nil, fmt.Errorf("%s: %w", err.Error(), ErrValidation)
		default:
			l.Error("signup_failed", "status", 500, "error", err)
			return nil, err
		}
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		l.Error("signup_failed", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUser, user.ID.String(), "user_registered", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	l.Info("signup_ok", "status", 201, "user_id", user.ID)
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !user.ComparePassword(password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUser, user.ID.String(), "user_logged_in", map[string]any{"user_id": user.ID})
	return res, nil
}

// Logout revokes the refresh token. An empty or unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.Repo.RevokeRefreshToken(ctx, tokens.Sha256Hex(refreshToken)); err != nil {
		logging.FromContext(ctx).Error("logout_failed", "status", 500, "error", err)
		return err
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// Refresh rotates the token pair. The old refresh token is revoked and cannot
// be used again. The role is re-read from the store.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return nil, fmt.Errorf("no refresh token provided: %w", ErrUnauthorized)
	}
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.Issuer.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid refresh token", "error", err)
		return nil, fmt.Errorf("invalid refresh token: %w", ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token subject: %w", ErrUnauthorized)
	}
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("user not found: %w", ErrUnauthorized)
		}
		return nil, err
	}

	pair, err := s.Issuer.Issue(user.ID.String(), user.Role)
	if err != nil {
		return nil, err
	}
	next := refreshRecord(user.ID, pair)
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, next); err != nil {
		if repo.IsNotFound(err) || errors.Is(err, repo.ErrTokenExpiredOrRevoked) {
			l.Warn("refresh_failed", "status", 401, "reason", "token expired or revoked", "user_id", user.ID)
			return nil, fmt.Errorf("token expired or revoked: %w", ErrUnauthorized)
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResult, error) {
	pair, err := s.Issuer.Issue(user.ID.String(), user.Role)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, refreshRecord(user.ID, pair)); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: pair}, nil
}

func refreshRecord(userID uuid.UUID, pair *tokens.Pair) *models.RefreshToken {
	return &models.RefreshToken{
		Token:     tokens.Sha256Hex(pair.RefreshToken),
		UserID:    userID,
		JTI:       pair.RefreshJTI,
		ExpiresAt: pair.RefreshExp.Unix(),
	}
}
