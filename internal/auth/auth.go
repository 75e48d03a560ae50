// Package auth implements registration and login over the data store.
// Passwords are bcrypt-hashed; logins mint opaque bearer tokens that are
// persisted server-side and resolved on each request.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/types"
)

// ErrInvalidCredentials is returned for unknown emails and wrong
// passwords alike, so a login failure does not reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthorized is returned when a bearer token does not resolve to a
// user.
var ErrUnauthorized = errors.New("unauthorized")

// Service provides registration, login, and token resolution.
type Service struct {
	store  *store.Store
	logger *slog.Logger
	cost   int
}

// Config holds auth service configuration.
type Config struct {
	Store  *store.Store
	Logger *slog.Logger
	// BcryptCost overrides the hashing cost. Defaults to bcrypt.DefaultCost;
	// tests lower it.
	BcryptCost int
}

// NewService creates an auth service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{store: cfg.Store, logger: logger, cost: cost}
}

// Register creates a new user account. The display name defaults to the
// email; the avatar is a generated identicon URL.
func (s *Service) Register(email, password, name string) (types.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return types.User{}, fmt.Errorf("email and password are required")
	}
	if name == "" {
		name = email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(types.User{
		Email:        email,
		Name:         name,
		AvatarURL:    "https://api.dicebear.com/8.x/bottts/svg?seed=" + url.QueryEscape(email),
		Role:         "user",
		PasswordHash: string(hash),
	})
	if err != nil {
		return types.User{}, err
	}

	s.logger.Info("registered user", "user", user.ID, "email", email)
	return user, nil
}

// Login verifies credentials and mints a bearer token.
func (s *Service) Login(email, password string) (types.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return types.User{}, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return types.User{}, "", ErrInvalidCredentials
	}

	token := uuid.New().String()
	if err := s.store.SaveToken(token, user.ID); err != nil {
		return types.User{}, "", fmt.Errorf("save token: %w", err)
	}

	s.logger.Info("user logged in", "user", user.ID)
	return user, token, nil
}

// Logout revokes a bearer token.
func (s *Service) Logout(token string) error {
	return s.store.DeleteToken(token)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(token string) (types.User, error) {
	if token == "" {
		return types.User{}, ErrUnauthorized
	}
	userID, err := s.store.UserForToken(token)
	if err != nil {
		return types.User{}, ErrUnauthorized
	}
	user, err := s.store.GetUser(userID)
	if err != nil {
		return types.User{}, ErrUnauthorized
	}
	return user, nil
}

// BearerFromHeader extracts the token from an Authorization header value.
func BearerFromHeader(header string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
