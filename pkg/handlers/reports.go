package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/apperrors"
	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/services"
)

// ReportsHandler handles generated report HTTP requests.
type ReportsHandler struct {
	reportService services.ReportService
	logger        *zap.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(reportService services.ReportService, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the report routes on the given mux.
func (h *ReportsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope Middleware) {
	mux.HandleFunc("POST /api/reports", scope(authMiddleware.OptionalAuth(h.Save)))
	mux.HandleFunc("GET /api/reports", scope(h.List))
	mux.HandleFunc("GET /api/reports/{id}", scope(h.Get))
	mux.HandleFunc("POST /api/reports/{id}/deliver", scope(h.Deliver))
	mux.HandleFunc("GET /api/sessions/{sessionID}/reports", scope(h.ListBySession))
}

// Save handles POST /api/reports. Every save creates a new record.
func (h *ReportsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var report models.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	report.AccountID = auth.AccountIDPtr(r.Context())

	saved, err := h.reportService.Save(r.Context(), &report)
	if err != nil {
		h.logger.Error("Failed to save report", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "save_failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, saved)
}

// Get handles GET /api/reports/{id}.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "Invalid report id")
		return
	}

	report, err := h.reportService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Report not found")
			return
		}
		h.logger.Error("Failed to get report", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "get_failed", "Failed to get report")
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// List handles GET /api/reports filtered by type, recipient email, or a
// trailing window of days. Exactly one filter is applied, checked in that
// order.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if reportType := query.Get("type"); reportType != "" {
		reports, err := h.reportService.ListByType(r.Context(), models.ReportType(reportType))
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "list_failed", err.Error())
			return
		}
		h.writeJSON(w, http.StatusOK, reports)
		return
	}

	if email := query.Get("email"); email != "" {
		reports, err := h.reportService.ListByEmail(r.Context(), email)
		if err != nil {
			h.logger.Error("Failed to list reports by email", zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list reports")
			return
		}
		h.writeJSON(w, http.StatusOK, reports)
		return
	}

	days := 30
	if raw := query.Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid_days", "days must be a positive integer")
			return
		}
		days = parsed
	}

	reports, err := h.reportService.ListRecent(r.Context(), days)
	if err != nil {
		h.logger.Error("Failed to list recent reports", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list reports")
		return
	}
	h.writeJSON(w, http.StatusOK, reports)
}

// ListBySession handles GET /api/sessions/{sessionID}/reports.
func (h *ReportsHandler) ListBySession(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.ListBySession(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		h.logger.Error("Failed to list session reports", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list reports")
		return
	}
	h.writeJSON(w, http.StatusOK, reports)
}

type deliverReportRequest struct {
	Email string `json:"email"`
}

// Deliver handles POST /api/reports/{id}/deliver: emails the report and
// flags it as sent.
func (h *ReportsHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "Invalid report id")
		return
	}

	var req deliverReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if err := h.reportService.Deliver(r.Context(), id, req.Email); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Report not found")
			return
		}
		h.logger.Error("Failed to deliver report", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "deliver_failed", "Failed to deliver report")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *ReportsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

func (h *ReportsHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
