// Package service — authentication business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"

	"github.com/sakif/microblog/internal/apperror"
	"github.com/sakif/microblog/internal/auth"
	"github.com/sakif/microblog/internal/model"
	"github.com/sakif/microblog/internal/repository"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 6
)

// usernamePattern allows letters, digits and underscores only.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// AuthService handles registration, login, and access-token refresh.
//
// It issues two tokens per login: a short-lived access token (sent back in
// the response body, held in memory by the client) and a long-lived refresh
// token (set by the handler as an HttpOnly cookie). The split keeps the
// long-lived credential out of reach of page JavaScript.
type AuthService struct {
	users     repository.UserRepository
	access    *auth.TokenService
	refresh   *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	access *auth.TokenService,
	refresh *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		access:    access,
		refresh:   refresh,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user with both freshly issued tokens so the
// handler can set the cookie and write the response in one step.
type AuthResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// Register creates a new account and logs it in.
//
// Username must be 3–30 characters of letters, digits or underscores;
// email is normalised to lowercase; password must be at least 6
// characters. A taken username or email is a Conflict — the check is a
// pre-read for a friendly message, with the database UNIQUE constraints as
// the real guarantee against racing registrations.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
	}
	if !usernamePattern.MatchString(username) {
		return nil, apperror.ValidationFailed("username",
			"username can only contain letters, numbers, and underscores")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "invalid email address")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password is too long")
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueTokens(user)
}

// Login authenticates by email and password.
//
// Unknown email and wrong password produce the same Unauthorized message,
// so the response doesn't reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("fetching user by email: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new access token.
// The refresh token itself is not rotated. Any failure — bad signature,
// expiry, or a user that no longer resolves — collapses to Unauthorized.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.refresh.Validate(refreshToken)
	if err != nil {
		return "", apperror.Unauthorized("invalid refresh token")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return "", apperror.Unauthorized("invalid refresh token")
	}

	accessToken, err := s.access.Generate(userID)
	if err != nil {
		return "", fmt.Errorf("generating access token: %w", err)
	}
	return accessToken, nil
}

func (s *AuthService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return apperror.Conflict("a user with this username already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("checking username availability: %w", err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperror.Conflict("a user with this email already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("checking email availability: %w", err)
	}

	return nil
}

func (s *AuthService) issueTokens(user *model.User) (*AuthResult, error) {
	accessToken, err := s.access.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}
	refreshToken, err := s.refresh.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
