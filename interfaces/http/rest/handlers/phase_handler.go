package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"archintel/application/services"
	"archintel/domain/core/valueobjects"
	"archintel/domain/services/advisor"
	"archintel/pkg/common"
	pkgerrors "archintel/pkg/errors"
)

// PhaseHandler handles ADM phase requests within a session
type PhaseHandler struct {
	base
}

// NewPhaseHandler creates a new phase handler
func NewPhaseHandler(sessions *services.SessionService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *PhaseHandler {
	return &PhaseHandler{base: newBase(sessions, errorHandler, logger)}
}

// StartPhaseRequest represents the request body for moving to a phase
type StartPhaseRequest struct {
	Phase string `json:"phase" validate:"required"`
}

// StartPhaseResponse lists the recommendations for the new phase
type StartPhaseResponse struct {
	Phase           valueobjects.Phase       `json:"phase"`
	Recommendations []advisor.Recommendation `json:"recommendations"`
}

// UpdatePhaseContextRequest replaces the progress context of a phase.
// An empty phase targets the current one.
type UpdatePhaseContextRequest struct {
	Phase                 string   `json:"phase,omitempty"`
	CompletedDeliverables []string `json:"completed_deliverables" validate:"omitempty,dive,min=1"`
	DecisionsMade         []string `json:"decisions_made" validate:"omitempty,dive,min=1"`
	StakeholderEngagement bool     `json:"stakeholder_engagement"`
}

// StartPhase handles POST /sessions/{sessionID}/phase
func (h *PhaseHandler) StartPhase(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	var req StartPhaseRequest
	if !h.decode(w, r, &req) {
		return
	}

	phase, err := valueobjects.ParsePhase(req.Phase)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	recs, err := controller.StartPhase(r.Context(), phase)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, r, http.StatusOK, StartPhaseResponse{Phase: phase, Recommendations: recs})
}

// UpdatePhaseContext handles PUT /sessions/{sessionID}/phase/context
func (h *PhaseHandler) UpdatePhaseContext(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	var req UpdatePhaseContextRequest
	if !h.decode(w, r, &req) {
		return
	}

	phase := controller.CurrentPhase()
	if req.Phase != "" {
		parsed, err := valueobjects.ParsePhase(req.Phase)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		phase = parsed
	}

	pctx := advisor.PhaseContext{
		CompletedDeliverables: req.CompletedDeliverables,
		DecisionsMade:         req.DecisionsMade,
		StakeholderEngagement: req.StakeholderEngagement,
	}
	if err := controller.UpdatePhaseContext(r.Context(), phase, pctx); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.GetPhaseStatus(w, r)
}

// GetPhaseStatus handles GET /sessions/{sessionID}/phase
func (h *PhaseHandler) GetPhaseStatus(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	status, err := controller.GetPhaseStatus()
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusOK, status)
}
