package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder/internal/storage/repository"
)

// Errors returned by the service. Handlers map these to HTTP statuses.
var (
	ErrUserExists         = errors.New("username or email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired or unknown")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidUsername    = errors.New("username must be 3-32 characters")
)

const sessionTTL = 30 * 24 * time.Hour

// Account is the public view of a user, safe to return to clients.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Service implements signup, login, session restore, and logout over
// the user repository.
type Service struct {
	users *repository.UserRepo
}

// NewService creates an auth service.
func NewService(users *repository.UserRepo) *Service {
	return &Service{users: users}
}

// Signup registers a new account and opens a session for it.
func (s *Service) Signup(ctx context.Context, username, email, password string) (Account, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < 3 || len(username) > 32 {
		return Account{}, "", ErrInvalidUsername
	}
	if len(password) < 8 {
		return Account{}, "", ErrWeakPassword
	}

	taken, err := s.users.Exists(ctx, username, email)
	if err != nil {
		return Account{}, "", fmt.Errorf("failed to check account availability: %w", err)
	}
	if taken {
		return Account{}, "", ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Account{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := repository.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return Account{}, "", fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return Account{}, "", err
	}
	return accountOf(user), token, nil
}

// Login authenticates by username or email and opens a session.
func (s *Service) Login(ctx context.Context, login, password string) (Account, string, error) {
	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, repository.ErrNotFound) {
		return Account{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, "", fmt.Errorf("failed to look up account: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return Account{}, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return Account{}, "", ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return Account{}, "", err
	}
	return accountOf(user), token, nil
}

// Restore resolves a session token back to its account.
func (s *Service) Restore(ctx context.Context, token string) (Account, error) {
	session, err := s.users.FindSession(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return Account{}, ErrSessionExpired
	}
	if err != nil {
		return Account{}, fmt.Errorf("failed to look up session: %w", err)
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return Account{}, fmt.Errorf("failed to load session user: %w", err)
	}
	return accountOf(user), nil
}

// Logout invalidates a session token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.users.DeleteSession(ctx, token)
}

func (s *Service) openSession(ctx context.Context, userID string) (string, error) {
	now := time.Now()
	session := repository.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}
	if err := s.users.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to open session: %w", err)
	}
	return session.Token, nil
}

func accountOf(user repository.User) Account {
	return Account{ID: user.ID, Username: user.Username, Email: user.Email}
}
