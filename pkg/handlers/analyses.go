package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/audit"
	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
	"github.com/brandlens-inc/brandlens-engine/pkg/security"
	"github.com/brandlens-inc/brandlens-engine/pkg/services"
)

// AnalysesHandler handles brand and GEO analysis record HTTP requests.
type AnalysesHandler struct {
	brandService services.BrandAnalysisService
	geoService   services.GeoAnalysisService
	auditor      *audit.SecurityAuditor
	logger       *zap.Logger
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(
	brandService services.BrandAnalysisService,
	geoService services.GeoAnalysisService,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) *AnalysesHandler {
	return &AnalysesHandler{
		brandService: brandService,
		geoService:   geoService,
		auditor:      auditor,
		logger:       logger,
	}
}

// RegisterRoutes registers the analysis record routes on the given mux.
func (h *AnalysesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope Middleware) {
	mux.HandleFunc("POST /api/brand-analyses", scope(authMiddleware.OptionalAuth(h.SaveBrand)))
	mux.HandleFunc("GET /api/brand-analyses", scope(h.ListBrandByStatus))
	mux.HandleFunc("GET /api/brand-analyses/{sessionID}", scope(h.GetBrand))
	mux.HandleFunc("PATCH /api/brand-analyses/{sessionID}/status", scope(h.UpdateBrandStatus))

	mux.HandleFunc("POST /api/geo-analyses", scope(authMiddleware.OptionalAuth(h.SaveGeo)))
	mux.HandleFunc("GET /api/geo-analyses", scope(h.ListGeo))
	mux.HandleFunc("GET /api/geo-analyses/{sessionID}", scope(h.GetGeo))
	mux.HandleFunc("PATCH /api/geo-analyses/{sessionID}/progress", scope(h.UpdateGeoProgress))
}

// SaveBrand handles POST /api/brand-analyses. The analysis is upserted for
// its session id; the caller's account, when authenticated, is attached.
func (h *AnalysesHandler) SaveBrand(w http.ResponseWriter, r *http.Request) {
	var analysis models.BrandAnalysis
	if err := json.NewDecoder(r.Body).Decode(&analysis); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	analysis.AccountID = auth.AccountIDPtr(r.Context())

	h.screen(r, analysis.SessionID, "save_brand_analysis", map[string]any{
		"session_id":    analysis.SessionID,
		"brand_name":    analysis.BrandName,
		"brand_website": analysis.BrandWebsite,
	})

	if err := h.brandService.Save(r.Context(), &analysis); err != nil {
		h.logger.Error("Failed to save brand analysis", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "save_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, &analysis)
}

// GetBrand handles GET /api/brand-analyses/{sessionID}.
func (h *AnalysesHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.brandService.Get(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Brand analysis not found")
			return
		}
		h.logger.Error("Failed to get brand analysis", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "get_failed", "Failed to get brand analysis")
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

type updateBrandStatusRequest struct {
	Status     string         `json:"status"`
	ResultData map[string]any `json:"result_data,omitempty"`
}

// UpdateBrandStatus handles PATCH /api/brand-analyses/{sessionID}/status.
// The record must already exist.
func (h *AnalysesHandler) UpdateBrandStatus(w http.ResponseWriter, r *http.Request) {
	var req updateBrandStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	err := h.brandService.UpdateStatus(r.Context(), r.PathValue("sessionID"), models.AnalysisStatus(req.Status), req.ResultData)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Brand analysis not found")
			return
		}
		h.logger.Error("Failed to update brand analysis status", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "update_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListBrandByStatus handles GET /api/brand-analyses?status=...
func (h *AnalysesHandler) ListBrandByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		h.writeError(w, http.StatusBadRequest, "missing_status", "status query parameter is required")
		return
	}

	analyses, err := h.brandService.ListByStatus(r.Context(), models.AnalysisStatus(status))
	if err != nil {
		h.logger.Error("Failed to list brand analyses", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "list_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, analyses)
}

// SaveGeo handles POST /api/geo-analyses.
func (h *AnalysesHandler) SaveGeo(w http.ResponseWriter, r *http.Request) {
	var analysis models.GeoAnalysis
	if err := json.NewDecoder(r.Body).Decode(&analysis); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	analysis.AccountID = auth.AccountIDPtr(r.Context())

	h.screen(r, analysis.SessionID, "save_geo_analysis", map[string]any{
		"session_id": analysis.SessionID,
		"brand_name": analysis.BrandName,
	})

	if err := h.geoService.Save(r.Context(), &analysis); err != nil {
		h.logger.Error("Failed to save geo analysis", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "save_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, &analysis)
}

// GetGeo handles GET /api/geo-analyses/{sessionID}.
func (h *AnalysesHandler) GetGeo(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.geoService.Get(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "GEO analysis not found")
			return
		}
		h.logger.Error("Failed to get geo analysis", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "get_failed", "Failed to get geo analysis")
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

type updateGeoProgressRequest struct {
	Progress    int            `json:"progress"`
	Status      *string        `json:"status,omitempty"`
	ResultData  map[string]any `json:"result_data,omitempty"`
	Suggestions *string        `json:"suggestions,omitempty"`
}

// UpdateGeoProgress handles PATCH /api/geo-analyses/{sessionID}/progress.
// The record must already exist.
func (h *AnalysesHandler) UpdateGeoProgress(w http.ResponseWriter, r *http.Request) {
	var req updateGeoProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	update := &repositories.GeoProgressUpdate{
		Progress:    req.Progress,
		ResultData:  req.ResultData,
		Suggestions: req.Suggestions,
	}
	if req.Status != nil {
		status := models.GeoStatus(*req.Status)
		update.Status = &status
	}

	err := h.geoService.UpdateProgress(r.Context(), r.PathValue("sessionID"), update)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "GEO analysis not found")
			return
		}
		h.logger.Error("Failed to update geo analysis progress", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "update_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListGeo handles GET /api/geo-analyses?status=... or ?in_progress=true.
func (h *AnalysesHandler) ListGeo(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("in_progress") == "true" {
		analyses, err := h.geoService.ListInProgress(r.Context())
		if err != nil {
			h.logger.Error("Failed to list in-progress geo analyses", zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list geo analyses")
			return
		}
		h.writeJSON(w, http.StatusOK, analyses)
		return
	}

	status := query.Get("status")
	if status == "" {
		h.writeError(w, http.StatusBadRequest, "missing_status", "status or in_progress query parameter is required")
		return
	}

	analyses, err := h.geoService.ListByStatus(r.Context(), models.GeoStatus(status))
	if err != nil {
		h.logger.Error("Failed to list geo analyses", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "list_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, analyses)
}

func (h *AnalysesHandler) screen(r *http.Request, sessionID, operation string, fields map[string]any) {
	for _, result := range security.CheckAllFields(fields) {
		h.auditor.LogInjectionAttempt(r.Context(), sessionID, audit.InjectionDetails{
			FieldName:   result.FieldName,
			FieldValue:  result.FieldValue,
			Fingerprint: result.Fingerprint,
			Operation:   operation,
		}, clientIP(r))
	}
}

func (h *AnalysesHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (h *AnalysesHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
