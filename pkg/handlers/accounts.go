package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
	"github.com/brandlens-inc/brandlens-engine/pkg/services"
)

// AccountsHandler handles account-scoped HTTP requests. Reads are mounted
// with optional auth and degrade to empty results for anonymous callers;
// mutations require authentication.
type AccountsHandler struct {
	accountService services.AccountService
	brandService   services.BrandAnalysisService
	geoService     services.GeoAnalysisService
	reportService  services.ReportService
	logger         *zap.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(
	accountService services.AccountService,
	brandService services.BrandAnalysisService,
	geoService services.GeoAnalysisService,
	reportService services.ReportService,
	logger *zap.Logger,
) *AccountsHandler {
	return &AccountsHandler{
		accountService: accountService,
		brandService:   brandService,
		geoService:     geoService,
		reportService:  reportService,
		logger:         logger,
	}
}

// RegisterRoutes registers the account routes on the given mux.
func (h *AccountsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope Middleware) {
	mux.HandleFunc("GET /api/me", scope(authMiddleware.RequireAuth(h.Me)))
	mux.HandleFunc("PATCH /api/me/profile", scope(authMiddleware.RequireAuth(h.UpdateProfile)))
	mux.HandleFunc("POST /api/me/analysis-count", scope(authMiddleware.RequireAuth(h.IncrementAnalysisCount)))

	mux.HandleFunc("GET /api/me/history", scope(authMiddleware.OptionalAuth(h.History)))
	mux.HandleFunc("GET /api/me/brand-analyses", scope(authMiddleware.OptionalAuth(h.BrandAnalyses)))
	mux.HandleFunc("GET /api/me/geo-analyses", scope(authMiddleware.OptionalAuth(h.GeoAnalyses)))
	mux.HandleFunc("GET /api/me/reports", scope(authMiddleware.OptionalAuth(h.Reports)))
}

// Me handles GET /api/me.
func (h *AccountsHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountService.Get(r.Context(), auth.AccountIDPtr(r.Context()))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotAuthenticated) {
			h.writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		h.logger.Error("Failed to get account", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "get_failed", "Failed to get account")
		return
	}
	if account == nil {
		h.writeError(w, http.StatusNotFound, "not_found", "Account not found")
		return
	}

	h.writeJSON(w, http.StatusOK, account)
}

type updateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Image    *string `json:"image,omitempty"`
	PlanTier *string `json:"plan_tier,omitempty"`
}

// UpdateProfile handles PATCH /api/me/profile. Only supplied fields change.
func (h *AccountsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	update := &repositories.AccountProfileUpdate{
		Name:  req.Name,
		Image: req.Image,
	}
	if req.PlanTier != nil {
		tier := models.PlanTier(*req.PlanTier)
		update.PlanTier = &tier
	}

	err := h.accountService.UpdateProfile(r.Context(), auth.AccountIDPtr(r.Context()), update)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotAuthenticated) {
			h.writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Account not found")
			return
		}
		h.logger.Error("Failed to update profile", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "update_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// IncrementAnalysisCount handles POST /api/me/analysis-count.
func (h *AccountsHandler) IncrementAnalysisCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.accountService.IncrementAnalysisCount(r.Context(), auth.AccountIDPtr(r.Context()))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotAuthenticated) {
			h.writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		h.logger.Error("Failed to increment analysis count", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "update_failed", "Failed to increment analysis count")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{"analysis_count": count})
}

// History handles GET /api/me/history: the combined brand and GEO analysis
// history, newest first. Anonymous callers get an empty list.
func (h *AccountsHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.accountService.CombinedHistory(r.Context(), auth.AccountIDPtr(r.Context()), h.limit(r))
	if err != nil {
		h.logger.Error("Failed to get combined history", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_failed", "Failed to get history")
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// BrandAnalyses handles GET /api/me/brand-analyses.
func (h *AccountsHandler) BrandAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.brandService.ListByAccount(r.Context(), auth.AccountIDPtr(r.Context()), h.limit(r))
	if err != nil {
		h.logger.Error("Failed to list brand analyses", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list brand analyses")
		return
	}
	h.writeJSON(w, http.StatusOK, analyses)
}

// GeoAnalyses handles GET /api/me/geo-analyses.
func (h *AccountsHandler) GeoAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := h.geoService.ListByAccount(r.Context(), auth.AccountIDPtr(r.Context()), h.limit(r))
	if err != nil {
		h.logger.Error("Failed to list geo analyses", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list geo analyses")
		return
	}
	h.writeJSON(w, http.StatusOK, analyses)
}

// Reports handles GET /api/me/reports.
func (h *AccountsHandler) Reports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.ListByAccount(r.Context(), auth.AccountIDPtr(r.Context()), h.limit(r))
	if err != nil {
		h.logger.Error("Failed to list reports", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list reports")
		return
	}
	h.writeJSON(w, http.StatusOK, reports)
}

func (h *AccountsHandler) limit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

func (h *AccountsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (h *AccountsHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
