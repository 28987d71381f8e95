package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// mockAuthService is a mock implementation of AuthService for testing.
type mockAuthService struct {
	claims          *Claims
	token           string
	validateErr     error
	requireEmailErr error
}

func (m *mockAuthService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	if m.validateErr != nil {
		return nil, "", m.validateErr
	}
	return m.claims, m.token, nil
}

func (m *mockAuthService) RequireEmail(claims *Claims) error {
	return m.requireEmailErr
}

// mockResolver resolves every claim set to a fixed account id.
type mockResolver struct {
	accountID uuid.UUID
	err       error
	calls     int
}

func (m *mockResolver) ResolveAccount(ctx context.Context, claims *Claims) (uuid.UUID, error) {
	m.calls++
	if m.err != nil {
		return uuid.Nil, m.err
	}
	return m.accountID, nil
}

func TestMiddleware_RequireAuth_Success(t *testing.T) {
	claims := &Claims{Email: "alice@example.com"}
	authService := &mockAuthService{claims: claims, token: "test-token"}
	resolver := &mockResolver{accountID: uuid.New()}
	middleware := NewMiddleware(authService, resolver, zap.NewNop())

	var handlerCalled bool
	var ctxClaims *Claims
	var ctxAccountID uuid.UUID

	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		ctxClaims, _ = GetClaims(r.Context())
		ctxAccountID, _ = GetAccountID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if !handlerCalled {
		t.Error("expected handler to be called")
	}

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	if ctxClaims == nil || ctxClaims.Email != "alice@example.com" {
		t.Error("expected claims to be set in context")
	}

	if ctxAccountID != resolver.accountID {
		t.Errorf("expected account id %s in context, got %s", resolver.accountID, ctxAccountID)
	}
}

func TestMiddleware_RequireAuth_Unauthorized(t *testing.T) {
	authService := &mockAuthService{validateErr: ErrMissingAuthorization}
	resolver := &mockResolver{accountID: uuid.New()}
	middleware := NewMiddleware(authService, resolver, zap.NewNop())

	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}

	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response["error"] != "unauthorized" {
		t.Errorf("expected error 'unauthorized', got %q", response["error"])
	}
}

func TestMiddleware_RequireAuth_MissingEmail(t *testing.T) {
	authService := &mockAuthService{
		claims:          &Claims{},
		requireEmailErr: ErrMissingEmail,
	}
	resolver := &mockResolver{accountID: uuid.New()}
	middleware := NewMiddleware(authService, resolver, zap.NewNop())

	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestMiddleware_RequireAuth_ResolverFailure(t *testing.T) {
	authService := &mockAuthService{claims: &Claims{Email: "alice@example.com"}}
	resolver := &mockResolver{err: errors.New("database down")}
	middleware := NewMiddleware(authService, resolver, zap.NewNop())

	handler := middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestMiddleware_OptionalAuth_Anonymous(t *testing.T) {
	authService := &mockAuthService{validateErr: ErrMissingAuthorization}
	resolver := &mockResolver{accountID: uuid.New()}
	middleware := NewMiddleware(authService, resolver, zap.NewNop())

	var handlerCalled bool
	handler := middleware.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		if _, ok := GetAccountID(r.Context()); ok {
			t.Error("expected no account id for anonymous request")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if !handlerCalled {
		t.Error("expected handler to be called for anonymous request")
	}
	if resolver.calls != 0 {
		t.Errorf("expected resolver not to be called, got %d calls", resolver.calls)
	}
}

func TestMiddleware_OptionalAuth_Authenticated(t *testing.T) {
	claims := &Claims{Email: "bob@example.com"}
	authService := &mockAuthService{claims: claims}
	resolver := &mockResolver{accountID: uuid.New()}
	middleware := NewMiddleware(authService, resolver, zap.NewNop())

	var ctxAccountID *uuid.UUID
	handler := middleware.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
		ctxAccountID = AccountIDPtr(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if ctxAccountID == nil || *ctxAccountID != resolver.accountID {
		t.Error("expected resolved account id in context")
	}
}

func TestMiddleware_OptionalAuth_ResolverFailureDegradesToAnonymous(t *testing.T) {
	authService := &mockAuthService{claims: &Claims{Email: "bob@example.com"}}
	resolver := &mockResolver{err: errors.New("database down")}
	middleware := NewMiddleware(authService, resolver, zap.NewNop())

	var handlerCalled bool
	handler := middleware.OptionalAuth(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		if _, ok := GetAccountID(r.Context()); ok {
			t.Error("expected no account id when resolution fails")
		}
		// Claims still present for display purposes
		if _, ok := GetClaims(r.Context()); !ok {
			t.Error("expected claims in context")
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if !handlerCalled {
		t.Error("expected handler to be called")
	}
}
