// Package auth registers accounts and issues the session tokens that tie a
// request to the party it acts as.
package auth

import (
	"context"

	"github.com/mmynk/swisscoin/internal/models"
)

// Authenticator registers and verifies accounts. A registered user's ID is
// also the ID of the party they act as on the ledger.
type Authenticator interface {
	// Register creates an account and its party.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account matching email and credential, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential rejects credentials too weak to register with.
	ValidateCredential(credential string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
