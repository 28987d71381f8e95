package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountResolver provisions or refreshes an account from validated claims
// and returns its id. Implemented by the accounts service; the indirection
// keeps this package free of a dependency on the service layer.
type AccountResolver interface {
	ResolveAccount(ctx context.Context, claims *Claims) (uuid.UUID, error)
}

// Middleware provides HTTP authentication middleware.
// It is thin and delegates authentication logic to AuthService.
type Middleware struct {
	authService AuthService
	resolver    AccountResolver
	logger      *zap.Logger
}

// NewMiddleware creates a new auth middleware with the given AuthService.
func NewMiddleware(authService AuthService, resolver AccountResolver, logger *zap.Logger) *Middleware {
	return &Middleware{
		authService: authService,
		resolver:    resolver,
		logger:      logger,
	}
}

// OptionalAuth validates a JWT when one is present and resolves the account,
// but lets anonymous requests through untouched. Use this on every record
// route: the product supports fully anonymous usage, with the account id
// layered on as optional attribution.
func (m *Middleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _, err := m.authService.ValidateRequest(r)
		if err != nil {
			// Anonymous caller, or a bad token treated as anonymous
			next(w, r)
			return
		}

		next(w, r.WithContext(m.resolve(r.Context(), claims)))
	}
}

// RequireAuth validates a JWT and requires a resolvable account.
// Use for account-scoped routes (history, profile, linking).
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _, err := m.authService.ValidateRequest(r)
		if err != nil {
			m.unauthorized(w, "Authentication required")
			return
		}

		if err := m.authService.RequireEmail(claims); err != nil {
			m.badRequest(w, "Missing email in token")
			return
		}

		ctx := m.resolve(r.Context(), claims)
		if _, ok := GetAccountID(ctx); !ok {
			m.unauthorized(w, "Account could not be resolved")
			return
		}

		next(w, r.WithContext(ctx))
	}
}

// resolve sets claims in the context and, when the claims carry an email,
// resolves the account id. Resolution failures degrade to anonymous rather
// than failing the request.
func (m *Middleware) resolve(ctx context.Context, claims *Claims) context.Context {
	ctx = SetClaims(ctx, claims)

	if claims.Email == "" {
		return ctx
	}

	accountID, err := m.resolver.ResolveAccount(ctx, claims)
	if err != nil {
		m.logger.Warn("Failed to resolve account from claims",
			zap.Error(err))
		return ctx
	}

	return SetAccountID(ctx, accountID)
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

// badRequest returns a 400 response with JSON error body.
func (m *Middleware) badRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "bad_request",
		"message": message,
	})
}
