package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/swisscoin/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// PartyIDKey is the context key for the authenticated party ID. A
	// user's party ID equals its user ID.
	PartyIDKey contextKey = "party_id"
	// EmailKey is the context key for storing the authenticated user's email.
	EmailKey contextKey = "email"
)

// GetPartyID extracts the authenticated party ID from the context.
// Returns empty string if not found.
func GetPartyID(ctx context.Context) string {
	partyID, _ := ctx.Value(PartyIDKey).(string)
	return partyID
}

// WithPartyID returns a context acting as partyID.
func WithPartyID(ctx context.Context, partyID string) context.Context {
	return context.WithValue(ctx, PartyIDKey, partyID)
}

// GetEmail extracts the user email from the context.
// Returns empty string if not found.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// RequireAuth returns a middleware that validates JWT tokens and requires authentication.
// It extracts the token from the Authorization header, validates it, and adds
// the party ID and email to the request context. Procedures listed in
// public skip the check.
func RequireAuth(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	skip := make(map[string]bool, len(public))
	for _, p := range public {
		skip[p] = true
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if skip[req.Spec().Procedure] {
				return next(ctx, req)
			}

			// Extract Authorization header
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			// Parse Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}
			tokenString := parts[1]

			// Validate token
			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			// Add user info to context
			ctx = WithPartyID(ctx, claims.PartyID())
			ctx = context.WithValue(ctx, EmailKey, claims.Email)

			// Call the next handler with enriched context
			return next(ctx, req)
		}
	}
}
