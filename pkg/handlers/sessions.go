package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/audit"
	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/security"
	"github.com/brandlens-inc/brandlens-engine/pkg/services"
)

// SessionsHandler handles session lifecycle HTTP requests.
type SessionsHandler struct {
	sessionService services.SessionService
	sessionStore   *auth.SessionStore
	auditor        *audit.SecurityAuditor
	logger         *zap.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(
	sessionService services.SessionService,
	sessionStore *auth.SessionStore,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) *SessionsHandler {
	return &SessionsHandler{
		sessionService: sessionService,
		sessionStore:   sessionStore,
		auditor:        auditor,
		logger:         logger,
	}
}

// RegisterRoutes registers the session routes on the given mux.
func (h *SessionsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope Middleware) {
	mux.HandleFunc("POST /api/sessions", scope(authMiddleware.OptionalAuth(h.Save)))
	mux.HandleFunc("GET /api/sessions/{sessionID}", scope(h.Get))
	mux.HandleFunc("POST /api/sessions/{sessionID}/touch", scope(h.Touch))
	mux.HandleFunc("POST /api/sessions/{sessionID}/link", scope(authMiddleware.RequireAuth(h.LinkAccount)))
	mux.HandleFunc("DELETE /api/sessions/{sessionID}", scope(h.Delete))
}

type saveSessionRequest struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
}

// Save handles POST /api/sessions. A missing session id in the body falls
// back to the session cookie, minting one when the visitor has none yet.
func (h *SessionsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.SessionID == "" {
		sessionID, _, err := h.sessionStore.SessionID(w, r)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, "session_error", "Failed to establish session")
			return
		}
		req.SessionID = sessionID
	}

	h.screenFields(r, req.SessionID, "save_session", map[string]any{
		"session_id": req.SessionID,
		"email":      req.Email,
	})

	session, err := h.sessionService.Save(r.Context(), req.SessionID, req.Email)
	if err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "save_failed", "Failed to save session")
		return
	}

	h.writeJSON(w, http.StatusOK, session)
}

// Get handles GET /api/sessions/{sessionID}.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	session, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Session not found")
			return
		}
		h.logger.Error("Failed to get session", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "get_failed", "Failed to get session")
		return
	}

	h.writeJSON(w, http.StatusOK, session)
}

// Touch handles POST /api/sessions/{sessionID}/touch.
func (h *SessionsHandler) Touch(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	if err := h.sessionService.Touch(r.Context(), sessionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Session not found")
			return
		}
		h.logger.Error("Failed to touch session", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "touch_failed", "Failed to touch session")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LinkAccount handles POST /api/sessions/{sessionID}/link. The account and
// email come from the authenticated caller, never from the body.
func (h *SessionsHandler) LinkAccount(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	accountID, ok := auth.GetAccountID(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Account required")
		return
	}
	email := auth.GetEmailFromContext(r.Context())

	if err := h.sessionService.LinkAccount(r.Context(), sessionID, email, accountID); err != nil {
		h.logger.Error("Failed to link session", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "link_failed", "Failed to link session to account")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "linked"})
}

// Delete handles DELETE /api/sessions/{sessionID}. Deleting an absent
// session succeeds; dependent records are kept.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	if err := h.sessionService.Delete(r.Context(), sessionID); err != nil {
		h.logger.Error("Failed to delete session", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete session")
		return
	}

	h.writeJSON(w, http.StatusNoContent, nil)
}

// screenFields audits request fields for SQL injection patterns. Detection
// is logged, not blocked; parameterized queries keep the values inert.
func (h *SessionsHandler) screenFields(r *http.Request, sessionID, operation string, fields map[string]any) {
	for _, result := range security.CheckAllFields(fields) {
		h.auditor.LogInjectionAttempt(r.Context(), sessionID, audit.InjectionDetails{
			FieldName:   result.FieldName,
			FieldValue:  result.FieldValue,
			Fingerprint: result.Fingerprint,
			Operation:   operation,
		}, clientIP(r))
	}
}

func (h *SessionsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (h *SessionsHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// clientIP extracts the originating client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
