package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/services"
)

// SnapshotHandler serves the cross-entity session aggregation.
type SnapshotHandler struct {
	snapshotService services.SnapshotService
	logger          *zap.Logger
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(snapshotService services.SnapshotService, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotService: snapshotService,
		logger:          logger,
	}
}

// RegisterRoutes registers the snapshot route on the given mux.
func (h *SnapshotHandler) RegisterRoutes(mux *http.ServeMux, scope Middleware) {
	mux.HandleFunc("GET /api/sessions/{sessionID}/snapshot", scope(h.Get))
}

// Get handles GET /api/sessions/{sessionID}/snapshot.
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshotService.SessionSnapshot(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		h.logger.Error("Failed to build session snapshot", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "snapshot_failed", "Failed to build session snapshot"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, snapshot); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
