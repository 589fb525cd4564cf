package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/swisscoin/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrMissingName        = errors.New("display name is required")
	ErrEmailExists        = errors.New("email already registered")
)

// UserStorage is the account persistence the authenticator needs.
// CreateUser must also create the party the user acts as.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail and GetUserByID return nil, nil when nothing matches.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// PasswordAuthenticator authenticates with bcrypt-hashed passwords.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
}

// PasswordOption configures a PasswordAuthenticator.
type PasswordOption func(*PasswordAuthenticator)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) PasswordOption {
	return func(a *PasswordAuthenticator) { a.cost = cost }
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage, opts ...PasswordOption) *PasswordAuthenticator {
	a := &PasswordAuthenticator{storage: storage, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ValidateCredential checks the password length bounds.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	switch {
	case len(credential) < minPasswordLen:
		return ErrWeakPassword
	case len(credential) > maxPasswordLen:
		return ErrPasswordTooLong
	}
	return nil
}

// Register creates an account and its party.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, credential string) (*models.User, error) {
	email = normalizeEmail(email)
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrMissingName
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(email, displayName, string(hash))
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the account for email if credential matches. Unknown
// emails and wrong passwords both give ErrInvalidCredentials.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
