package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/analyzer"
	"github.com/brandlens-inc/brandlens-engine/pkg/audit"
	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/logging"
	"github.com/brandlens-inc/brandlens-engine/pkg/models"
	"github.com/brandlens-inc/brandlens-engine/pkg/repositories"
	"github.com/brandlens-inc/brandlens-engine/pkg/security"
	"github.com/brandlens-inc/brandlens-engine/pkg/services"
)

// StreamsHandler serves the three streaming analysis endpoints. Each
// endpoint relays analyzer events as server-sent events and, when the
// request carries a session id, persists the outcome for that session.
type StreamsHandler struct {
	brandInfo    *analyzer.BrandInfoService
	queryGen     *analyzer.QueryGenService
	positioning  *analyzer.PositioningService
	brandService services.BrandAnalysisService
	geoService   services.GeoAnalysisService
	auditor      *audit.SecurityAuditor
	logger       *zap.Logger
}

// NewStreamsHandler creates a new streams handler.
func NewStreamsHandler(
	brandInfo *analyzer.BrandInfoService,
	queryGen *analyzer.QueryGenService,
	positioning *analyzer.PositioningService,
	brandService services.BrandAnalysisService,
	geoService services.GeoAnalysisService,
	auditor *audit.SecurityAuditor,
	logger *zap.Logger,
) *StreamsHandler {
	return &StreamsHandler{
		brandInfo:    brandInfo,
		queryGen:     queryGen,
		positioning:  positioning,
		brandService: brandService,
		geoService:   geoService,
		auditor:      auditor,
		logger:       logger,
	}
}

// RegisterRoutes registers the streaming endpoints on the given mux.
func (h *StreamsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope Middleware) {
	mux.HandleFunc("POST /stream-brand-info", scope(authMiddleware.OptionalAuth(h.StreamBrandInfo)))
	mux.HandleFunc("POST /stream-generate-queries", scope(authMiddleware.OptionalAuth(h.StreamGenerateQueries)))
	mux.HandleFunc("POST /stream-test-queries", scope(authMiddleware.OptionalAuth(h.StreamTestQueries)))
}

type streamBrandInfoRequest struct {
	BrandName    string `json:"brandName"`
	BrandWebsite string `json:"brandWebsite"`
	BrandCountry string `json:"brandCountry,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
}

// StreamBrandInfo handles POST /stream-brand-info. On completion with a
// session id, the analysis is stored as a completed brand analysis record.
func (h *StreamsHandler) StreamBrandInfo(w http.ResponseWriter, r *http.Request) {
	var req streamBrandInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	h.screen(r, req.SessionID, "stream_brand_info", map[string]any{
		"brand_name":    req.BrandName,
		"brand_website": req.BrandWebsite,
	})

	sse, err := NewSSEWriter(w)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", err.Error())
		return
	}

	info, err := h.brandInfo.Analyze(r.Context(), &analyzer.BrandInfoRequest{
		BrandName:    req.BrandName,
		BrandWebsite: req.BrandWebsite,
		BrandCountry: req.BrandCountry,
	}, h.emitter(sse))
	if err != nil {
		return
	}

	if req.SessionID != "" {
		h.persistBrandInfo(r.Context(), &req, info)
	}
}

func (h *StreamsHandler) persistBrandInfo(ctx context.Context, req *streamBrandInfoRequest, info *analyzer.BrandInfo) {
	competitors := make([]string, 0, len(info.Competitors))
	for _, c := range info.Competitors {
		competitors = append(competitors, c.Name)
	}

	analysis := &models.BrandAnalysis{
		SessionID:        req.SessionID,
		AccountID:        auth.AccountIDPtr(ctx),
		BrandName:        req.BrandName,
		BrandWebsite:     req.BrandWebsite,
		BrandCountry:     req.BrandCountry,
		BrandDescription: info.Description,
		BrandIndustry:    info.Industry,
		Competitors:      competitors,
		Status:           models.AnalysisCompleted,
		ResultData:       toResultData(info, h.logger),
	}
	if err := h.brandService.Save(ctx, analysis); err != nil {
		h.logger.Error("Failed to persist brand analysis from stream",
			zap.String("session_id", logging.MaskSessionID(req.SessionID)),
			zap.Error(err))
	}
}

type streamGenerateQueriesRequest struct {
	BrandName        string `json:"brandName"`
	BrandCountry     string `json:"brandCountry,omitempty"`
	BrandDescription string `json:"brandDescription"`
	BrandIndustry    string `json:"brandIndustry"`
	TotalQueries     int    `json:"totalQueries,omitempty"`
}

// StreamGenerateQueries handles POST /stream-generate-queries.
func (h *StreamsHandler) StreamGenerateQueries(w http.ResponseWriter, r *http.Request) {
	var req streamGenerateQueriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", err.Error())
		return
	}

	_, _ = h.queryGen.Generate(r.Context(), &analyzer.QueryGenRequest{
		BrandName:        req.BrandName,
		BrandCountry:     req.BrandCountry,
		BrandDescription: req.BrandDescription,
		BrandIndustry:    req.BrandIndustry,
		TotalQueries:     req.TotalQueries,
	}, h.emitter(sse))
}

type streamTestQueriesRequest struct {
	BrandName   string   `json:"brandName"`
	Queries     []string `json:"queries"`
	Competitors []string `json:"competitors,omitempty"`
	Models      []string `json:"models,omitempty"`
	SessionID   string   `json:"sessionId,omitempty"`
}

// StreamTestQueries handles POST /stream-test-queries. With a session id,
// a GEO analysis record tracks the run: in_progress while testing, then
// completed with the aggregated result and suggestions.
func (h *StreamsHandler) StreamTestQueries(w http.ResponseWriter, r *http.Request) {
	var req streamTestQueriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	h.screen(r, req.SessionID, "stream_test_queries", map[string]any{
		"brand_name": req.BrandName,
	})

	sse, err := NewSSEWriter(w)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", err.Error())
		return
	}

	if req.SessionID != "" {
		if err := h.geoService.Save(r.Context(), &models.GeoAnalysis{
			SessionID:     req.SessionID,
			AccountID:     auth.AccountIDPtr(r.Context()),
			BrandName:     req.BrandName,
			SearchQueries: req.Queries,
			Competitors:   req.Competitors,
			LLMModels:     req.Models,
			Status:        models.GeoInProgress,
		}); err != nil {
			h.logger.Error("Failed to create geo analysis record",
				zap.String("session_id", logging.MaskSessionID(req.SessionID)),
				zap.Error(err))
		}
	}

	emit := h.emitter(sse)
	result, err := h.positioning.Run(r.Context(), &analyzer.PositioningRequest{
		BrandName:   req.BrandName,
		Queries:     req.Queries,
		Competitors: req.Competitors,
		Models:      req.Models,
	}, func(e analyzer.StreamEvent) {
		emit(e)
		if req.SessionID != "" && e.Error == "" && e.Progress != nil && e.Step != analyzer.StepComplete {
			h.trackGeoProgress(r.Context(), req.SessionID, *e.Progress)
		}
	})

	if req.SessionID == "" {
		return
	}

	if err != nil {
		failed := models.GeoFailed
		update := &repositories.GeoProgressUpdate{Progress: 0, Status: &failed}
		if updateErr := h.geoService.UpdateProgress(r.Context(), req.SessionID, update); updateErr != nil {
			h.logger.Error("Failed to mark geo analysis failed", zap.Error(updateErr))
		}
		return
	}

	completed := models.GeoCompleted
	suggestions := strings.Join(result.OptimizationSuggestions, "\n")
	update := &repositories.GeoProgressUpdate{
		Progress:    100,
		Status:      &completed,
		ResultData:  toResultData(result, h.logger),
		Suggestions: &suggestions,
	}
	if err := h.geoService.UpdateProgress(r.Context(), req.SessionID, update); err != nil {
		h.logger.Error("Failed to complete geo analysis record",
			zap.String("session_id", logging.MaskSessionID(req.SessionID)),
			zap.Error(err))
	}
}

func (h *StreamsHandler) trackGeoProgress(ctx context.Context, sessionID string, progress int) {
	update := &repositories.GeoProgressUpdate{Progress: progress}
	if err := h.geoService.UpdateProgress(ctx, sessionID, update); err != nil {
		h.logger.Warn("Failed to track geo analysis progress",
			zap.String("session_id", logging.MaskSessionID(sessionID)),
			zap.Error(err))
	}
}

// emitter adapts the SSE writer to the analyzer's emit callback. Write
// failures are logged; the analysis itself continues.
func (h *StreamsHandler) emitter(sse *SSEWriter) analyzer.EmitFunc {
	return func(e analyzer.StreamEvent) {
		if err := sse.Send(e); err != nil {
			h.logger.Warn("Failed to send stream event", zap.Error(err))
		}
	}
}

// toResultData flattens a typed result into the JSONB map stored on the
// record.
func toResultData(v any, logger *zap.Logger) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("Failed to encode result data", zap.Error(err))
		return nil
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("Failed to decode result data", zap.Error(err))
		return nil
	}
	return data
}

func (h *StreamsHandler) screen(r *http.Request, sessionID, operation string, fields map[string]any) {
	for _, result := range security.CheckAllFields(fields) {
		h.auditor.LogInjectionAttempt(r.Context(), sessionID, audit.InjectionDetails{
			FieldName:   result.FieldName,
			FieldValue:  result.FieldValue,
			Fingerprint: result.Fingerprint,
			Operation:   operation,
		}, clientIP(r))
	}
}

func (h *StreamsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
