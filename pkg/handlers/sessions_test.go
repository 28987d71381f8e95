package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/audit"
	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
)

func newSessionsHandler(svc *mockSessionService) *SessionsHandler {
	store := auth.NewSessionStore("test-secret", "test_session", 24)
	return NewSessionsHandler(svc, store, audit.NewSecurityAuditor(zap.NewNop()), zap.NewNop())
}

func TestSessionsHandler_Save(t *testing.T) {
	svc := newMockSessionService()
	handler := newSessionsHandler(svc)

	body := `{"session_id": "sess-123", "email": "user@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Save(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var session models.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "sess-123", session.SessionID)
	assert.Equal(t, "user@example.com", session.Email)
}

func TestSessionsHandler_Save_MintsSessionIDFromCookie(t *testing.T) {
	svc := newMockSessionService()
	handler := newSessionsHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.Save(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var session models.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEmpty(t, session.SessionID)
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
}

func TestSessionsHandler_Save_InvalidBody(t *testing.T) {
	handler := newSessionsHandler(newMockSessionService())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	handler.Save(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionsHandler_Get_NotFound(t *testing.T) {
	handler := newSessionsHandler(newMockSessionService())

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil)
	req.SetPathValue("sessionID", "missing")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionsHandler_Get(t *testing.T) {
	svc := newMockSessionService()
	svc.sessions["sess-123"] = &models.Session{SessionID: "sess-123", Email: "user@example.com"}
	handler := newSessionsHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-123", nil)
	req.SetPathValue("sessionID", "sess-123")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var session models.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "user@example.com", session.Email)
}

func TestSessionsHandler_Touch_NotFound(t *testing.T) {
	handler := newSessionsHandler(newMockSessionService())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/missing/touch", nil)
	req.SetPathValue("sessionID", "missing")
	rec := httptest.NewRecorder()
	handler.Touch(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionsHandler_LinkAccount(t *testing.T) {
	svc := newMockSessionService()
	handler := newSessionsHandler(svc)
	accountID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/sess-123/link", nil)
	req.SetPathValue("sessionID", "sess-123")
	ctx := auth.SetAccountID(req.Context(), accountID)
	ctx = auth.SetClaims(ctx, &auth.Claims{Email: "user@example.com"})
	rec := httptest.NewRecorder()
	handler.LinkAccount(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, accountID, svc.linked["sess-123"])
}

func TestSessionsHandler_LinkAccount_NoAccount(t *testing.T) {
	handler := newSessionsHandler(newMockSessionService())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/sess-123/link", nil)
	req.SetPathValue("sessionID", "sess-123")
	rec := httptest.NewRecorder()
	handler.LinkAccount(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionsHandler_Delete_AbsentSessionSucceeds(t *testing.T) {
	handler := newSessionsHandler(newMockSessionService())

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/missing", nil)
	req.SetPathValue("sessionID", "missing")
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
