// Package service holds the business rules, between the HTTP handlers and
// the repositories:
//
//	handler.AuthHandler      → AuthService     → UserRepository, GridRepository
//	handler.DashboardHandler → ProgressService → GridRepository, ExportRepository
//	handler.ReportHandler    → ReportService   → ExportRepository
//
// Services never see HTTP; they return apperror values that the handlers
// map to status codes and form messages.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/floor-tracker/internal/apperror"
	"github.com/sakif/floor-tracker/internal/auth"
	"github.com/sakif/floor-tracker/internal/model"
	"github.com/sakif/floor-tracker/internal/repository"
)

// Messages shown on the login and register forms.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgUsernameTaken      = "Username already exists"
)

// AuthService registers users and checks credentials.
type AuthService struct {
	users     repository.UserRepository
	grids     repository.GridRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService wires an AuthService.
func NewAuthService(
	users repository.UserRepository,
	grids repository.GridRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		grids:     grids,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates an account and its empty grid.
//
// Errors:
//   - apperror.ErrValidation: empty or path-unsafe username, over-long password
//   - apperror.ErrConflict:   username already registered (existing account untouched)
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
	}

	user := &model.User{Username: username, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, &apperror.AppError{Err: apperror.ErrConflict, Message: MsgUsernameTaken, Field: "username"}
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	if err := s.grids.EnsureGrid(ctx, username); err != nil {
		return nil, fmt.Errorf("service/auth: initializing grid for %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", username),
	)
	return user, nil
}

// Login checks username and password and makes sure the user has a grid.
// Unknown usernames and wrong passwords produce the same
// apperror.ErrUnauthorized, so the form can't be used to probe for accounts.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("login failed", slog.String("username", username), slog.String("reason", "unknown user"))
			return nil, apperror.Unauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("service/auth: looking up %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login failed", slog.String("username", username), slog.String("reason", "bad password"))
			return nil, apperror.Unauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("service/auth: verifying password for %q: %w", username, err)
	}

	if err := s.grids.EnsureGrid(ctx, username); err != nil {
		return nil, fmt.Errorf("service/auth: ensuring grid for %q: %w", username, err)
	}

	s.logger.Info("user logged in", slog.String("username", username))
	return user, nil
}

// validateUsername enforces the one rule the export path depends on: the
// username becomes part of service_data_<username>.xlsx, so it must not be
// able to name a different directory.
func validateUsername(username string) error {
	switch {
	case username == "":
		return apperror.ValidationFailed("username", "Username is required")
	case username == "." || username == "..":
		return apperror.ValidationFailed("username", "Username is not allowed")
	case strings.ContainsAny(username, `/\`):
		return apperror.ValidationFailed("username", "Username must not contain / or \\")
	case strings.ContainsRune(username, 0):
		return apperror.ValidationFailed("username", "Username is not allowed")
	}
	return nil
}
