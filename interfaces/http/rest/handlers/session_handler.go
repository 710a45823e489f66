package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"archintel/application/ports"
	"archintel/application/services"
	"archintel/domain/core/valueobjects"
	"archintel/pkg/common"
	pkgerrors "archintel/pkg/errors"
)

// SessionHandler handles session lifecycle requests
type SessionHandler struct {
	base
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *services.SessionService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{base: newBase(sessions, errorHandler, logger)}
}

// CreateSessionRequest represents the request body for creating a session
type CreateSessionRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Autonomous *bool  `json:"autonomous,omitempty"`
}

// SetAutonomousRequest toggles autonomous mode
type SetAutonomousRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// SessionResponse is the detail view of an active session
type SessionResponse struct {
	SessionID     string             `json:"session_id"`
	Name          string             `json:"name"`
	Phase         valueobjects.Phase `json:"phase"`
	Autonomous    bool               `json:"autonomous"`
	Version       int                `json:"version"`
	Elements      int                `json:"elements"`
	Relationships int                `json:"relationships"`
	Insights      int                `json:"insights"`
	ActionPlans   int                `json:"action_plans"`
}

// SaveSessionResponse reports the stored version
type SaveSessionResponse struct {
	SessionID string `json:"session_id"`
	Version   int    `json:"version"`
}

func sessionResponse(c *services.Controller) SessionResponse {
	model := c.ModelSnapshot()
	return SessionResponse{
		SessionID:     c.SessionID(),
		Name:          c.Name(),
		Phase:         c.CurrentPhase(),
		Autonomous:    c.AutonomousMode(),
		Version:       c.Version(),
		Elements:      len(model.Elements),
		Relationships: len(model.Relationships),
		Insights:      len(c.Insights()),
		ActionPlans:   len(c.ActionPlans()),
	}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	controller, err := h.sessions.Create(r.Context(), req.Name, req.Autonomous)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, r, http.StatusCreated, sessionResponse(controller))
}

// ListSessions handles GET /sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.sessions.List(r.Context())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	params := common.ExtractPaginationParams(r)
	start, end := params.Bounds(len(summaries))
	page := summaries[start:end]
	if page == nil {
		page = []ports.SessionSummary{}
	}

	common.RespondWithMeta(w, r, http.StatusOK, page, &common.MetaInfo{
		Pagination: common.BuildPaginationMeta(params.Page, params.PageSize, len(summaries)),
	})
}

// GetSession handles GET /sessions/{sessionID}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}
	common.RespondJSON(w, r, http.StatusOK, sessionResponse(controller))
}

// DeleteSession handles DELETE /sessions/{sessionID}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveSession handles POST /sessions/{sessionID}/save
func (h *SessionHandler) SaveSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	version, err := h.sessions.Save(r.Context(), sessionID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, r, http.StatusOK, SaveSessionResponse{SessionID: sessionID, Version: version})
}

// LoadSession handles POST /sessions/{sessionID}/load.
// The stored snapshot replaces any active copy of the session.
func (h *SessionHandler) LoadSession(w http.ResponseWriter, r *http.Request) {
	controller, err := h.sessions.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusOK, sessionResponse(controller))
}

// SetAutonomous handles PUT /sessions/{sessionID}/autonomous
func (h *SessionHandler) SetAutonomous(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	var req SetAutonomousRequest
	if !h.decode(w, r, &req) {
		return
	}

	controller.SetAutonomousMode(*req.Enabled)
	h.logger.Info("Autonomous mode changed",
		zap.String("sessionID", controller.SessionID()),
		zap.Bool("enabled", *req.Enabled),
	)
	common.RespondJSON(w, r, http.StatusOK, sessionResponse(controller))
}

// GetModel handles GET /sessions/{sessionID}/model
func (h *SessionHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}
	common.RespondJSON(w, r, http.StatusOK, controller.ModelSnapshot())
}

// GetEvents handles GET /sessions/{sessionID}/events
func (h *SessionHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}
	common.RespondJSON(w, r, http.StatusOK, controller.EventLog())
}
