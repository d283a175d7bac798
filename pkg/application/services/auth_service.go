package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/vsinha/cmrp/pkg/domain/entities"
	"github.com/vsinha/cmrp/pkg/domain/repositories"
	"github.com/vsinha/cmrp/pkg/infrastructure/events"
)

// DefaultSessionTTL is used when no lifetime is configured
const DefaultSessionTTL = 31 * 24 * time.Hour

// AuthService manages accounts and login sessions
type AuthService struct {
	deps Deps
	ttl  time.Duration
	cost int
}

// NewAuthService creates an auth service with the default session lifetime
func NewAuthService(deps Deps) *AuthService {
	return &AuthService{deps: deps, ttl: DefaultSessionTTL, cost: bcrypt.DefaultCost}
}

// WithSessionTTL overrides the session lifetime
func (s *AuthService) WithSessionTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// Register creates an account after validating the input
func (s *AuthService) Register(ctx context.Context, username, password, role string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("Username cannot be empty.")
	}
	if minLen := s.deps.Limits.MinPasswordLength; len(password) < minLen || password == "" {
		return nil, invalid("Password must be at least %d characters long.", minLen)
	}
	r, err := entities.ParseRole(role)
	if err != nil {
		return nil, invalid("Invalid role selected. Must be one of: %s", entities.RoleList())
	}

	if _, err := s.deps.Repos.Users.GetByUsername(ctx, username); err == nil {
		return nil, &ConflictError{Message: "Username already taken. Please choose another."}
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user, err := s.CreateUser(ctx, username, password, r)
	if err != nil {
		return nil, err
	}
	s.deps.logger().Info("user registered", zap.String("username", username), zap.String("role", string(r)))
	return user, nil
}

// CreateUser hashes the password and stores the account without the
// registration checks. The CLI uses it to bootstrap administrators.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, role entities.Role) (*entities.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := entities.NewUser(username, string(hash), role)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	if err := s.deps.Repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, &ConflictError{Message: "Username already taken. Please choose another."}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.deps.publish(events.UserRegisteredEvent, "user-"+user.Username, events.UserRegistered{
		Username: user.Username,
		Role:     string(user.Role),
	})
	return user, nil
}

// Login verifies the credentials and opens a session
func (s *AuthService) Login(ctx context.Context, username, password string) (*entities.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalid("Username and password cannot be empty")
	}

	user, err := s.deps.Repos.Users.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		s.deps.logger().Info("login failed", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.deps.logger().Info("login failed", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	now := s.deps.now()
	session := &entities.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.deps.Repos.Sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.deps.logger().Info("login successful", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return session, nil
}

// Authenticate resolves a session token. Unknown and expired tokens report
// repositories.ErrNotFound.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entities.Session, error) {
	if token == "" {
		return nil, repositories.ErrNotFound
	}
	session, err := s.deps.Repos.Sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.deps.now()) {
		_ = s.deps.Repos.Sessions.Delete(ctx, token)
		return nil, repositories.ErrNotFound
	}
	return session, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	err := s.deps.Repos.Sessions.Delete(ctx, token)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
