package auth

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// AccountIDKey is the context key for storing the resolved account id.
	AccountIDKey contextKey = "accountID"
)

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// SetClaims returns a context carrying the given claims.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetAccountID retrieves the resolved account id from the request context.
// Returns uuid.Nil and false for anonymous callers.
func GetAccountID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(AccountIDKey).(uuid.UUID)
	return id, ok
}

// SetAccountID returns a context carrying the resolved account id.
func SetAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, AccountIDKey, id)
}

// AccountIDPtr returns the resolved account id as a pointer, nil for
// anonymous callers. Repositories store the pointer directly.
func AccountIDPtr(ctx context.Context) *uuid.UUID {
	if id, ok := GetAccountID(ctx); ok {
		return &id
	}
	return nil
}

// GetEmailFromContext returns the authenticated email, or empty string for
// anonymous callers.
func GetEmailFromContext(ctx context.Context) string {
	if claims, ok := GetClaims(ctx); ok && claims != nil {
		return claims.Email
	}
	return ""
}
