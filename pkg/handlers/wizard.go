package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/brandlens-inc/brandlens-engine/pkg/auth"
	"github.com/brandlens-inc/brandlens-engine/pkg/logging"
	"github.com/brandlens-inc/brandlens-engine/pkg/wizard"
)

// ControllerFactory builds a wizard controller for a new session.
type ControllerFactory func() *wizard.Controller

// WizardHandler drives the report wizard over HTTP. Each session gets its
// own controller, created on first use and dropped once its run reaches
// the results state or halts, so a session that starts over gets a fresh
// controller. The analyze and generate endpoints stream state updates as
// server-sent events while the controller advances.
type WizardHandler struct {
	factory ControllerFactory
	logger  *zap.Logger

	mu          sync.Mutex
	controllers map[string]*wizard.Controller
}

// NewWizardHandler creates a new wizard handler.
func NewWizardHandler(factory ControllerFactory, logger *zap.Logger) *WizardHandler {
	return &WizardHandler{
		factory:     factory,
		logger:      logger,
		controllers: make(map[string]*wizard.Controller),
	}
}

// RegisterRoutes registers the wizard endpoints on the given mux.
func (h *WizardHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, scope Middleware) {
	mux.HandleFunc("POST /api/wizard/{sessionID}/analyze", scope(authMiddleware.OptionalAuth(h.Analyze)))
	mux.HandleFunc("POST /api/wizard/{sessionID}/toggle", scope(authMiddleware.OptionalAuth(h.Toggle)))
	mux.HandleFunc("POST /api/wizard/{sessionID}/generate", scope(authMiddleware.OptionalAuth(h.Generate)))
	mux.HandleFunc("GET /api/wizard/{sessionID}/state", scope(authMiddleware.OptionalAuth(h.GetState)))
}

func (h *WizardHandler) controller(sessionID string) *wizard.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.controllers[sessionID]; ok {
		return c
	}
	c := h.factory()
	h.controllers[sessionID] = c
	return c
}

// release drops a controller whose run is over. Controllers for sessions
// still mid-wizard stay in the map.
func (h *WizardHandler) release(sessionID string, c *wizard.Controller) {
	if c.State() != wizard.StateResults && !c.Halted() {
		return
	}
	h.mu.Lock()
	if h.controllers[sessionID] == c {
		delete(h.controllers, sessionID)
	}
	h.mu.Unlock()
}

// wizardState is the wire form of the controller's current position.
type wizardState struct {
	State       string               `json:"state"`
	Progress    int                  `json:"progress"`
	StatusText  string               `json:"status_text"`
	Selected    []string             `json:"selected_competitors"`
	CanGenerate bool                 `json:"can_generate"`
	Halted      bool                 `json:"halted"`
	Profile     *wizard.BrandProfile `json:"profile,omitempty"`
	Result      json.RawMessage      `json:"result,omitempty"`
}

func snapshotController(c *wizard.Controller) wizardState {
	return wizardState{
		State:       string(c.State()),
		Progress:    c.Progress(),
		StatusText:  c.StatusText(),
		Selected:    c.Selected(),
		CanGenerate: c.CanGenerate(),
		Halted:      c.Halted(),
		Profile:     c.Profile(),
		Result:      c.Result(),
	}
}

// Analyze handles POST /api/wizard/{sessionID}/analyze. It submits the
// brand details and streams every state change until the controller
// settles in competitor selection or reports an error status.
func (h *WizardHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	var details wizard.BrandDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	c := h.controller(sessionID)
	sse, err := NewSSEWriter(w)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", err.Error())
		return
	}

	h.observe(c, sse)
	defer h.release(sessionID, c)
	defer c.SetObserver(nil)

	if err := c.SubmitBrandDetails(r.Context(), details); err != nil {
		h.logger.Warn("Wizard analyze rejected",
			zap.String("session_id", logging.MaskSessionID(sessionID)),
			zap.Error(err))
		h.send(sse, map[string]string{"error": err.Error()})
		return
	}
	h.send(sse, snapshotController(c))
}

type toggleRequest struct {
	Name string `json:"name"`
}

// Toggle handles POST /api/wizard/{sessionID}/toggle.
func (h *WizardHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Competitor name is required")
		return
	}

	c := h.controller(sessionID)
	c.ToggleCompetitor(req.Name)
	h.writeJSON(w, http.StatusOK, snapshotController(c))
}

// Generate handles POST /api/wizard/{sessionID}/generate. It runs query
// generation and testing back to back, streaming state changes, and ends
// with the final snapshot carrying the result when the run succeeds.
func (h *WizardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	c := h.controller(sessionID)

	sse, err := NewSSEWriter(w)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", err.Error())
		return
	}

	h.observe(c, sse)
	defer h.release(sessionID, c)
	defer c.SetObserver(nil)

	if err := c.GenerateReport(r.Context()); err != nil {
		h.logger.Warn("Wizard generate rejected",
			zap.String("session_id", logging.MaskSessionID(sessionID)),
			zap.Error(err))
		h.send(sse, map[string]string{"error": err.Error()})
		return
	}
	h.send(sse, snapshotController(c))
}

// GetState handles GET /api/wizard/{sessionID}/state.
func (h *WizardHandler) GetState(w http.ResponseWriter, r *http.Request) {
	c := h.controller(r.PathValue("sessionID"))
	h.writeJSON(w, http.StatusOK, snapshotController(c))
}

func (h *WizardHandler) observe(c *wizard.Controller, sse *SSEWriter) {
	c.SetObserver(func(state wizard.State, progress int, statusText string) {
		h.send(sse, wizardState{
			State:      string(state),
			Progress:   progress,
			StatusText: statusText,
			Selected:   c.Selected(),
		})
	})
}

func (h *WizardHandler) send(sse *SSEWriter, event any) {
	if err := sse.Send(event); err != nil {
		h.logger.Warn("Failed to send wizard event", zap.Error(err))
	}
}

func (h *WizardHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *WizardHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
