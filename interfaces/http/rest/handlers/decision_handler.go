package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"archintel/application/services"
	"archintel/domain/core/valueobjects"
	"archintel/domain/services/decision"
	"archintel/pkg/common"
	pkgerrors "archintel/pkg/errors"
	"archintel/pkg/ratelimit"
)

// DecisionHandler handles decision requests within a session
type DecisionHandler struct {
	base
	aiLimiter ratelimit.RateLimiter
}

// NewDecisionHandler creates a new decision handler. Requests asking for AI
// enrichment are throttled per session by aiLimiter when it is set.
func NewDecisionHandler(
	sessions *services.SessionService,
	aiLimiter ratelimit.RateLimiter,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *DecisionHandler {
	return &DecisionHandler{
		base:      newBase(sessions, errorHandler, logger),
		aiLimiter: aiLimiter,
	}
}

// MakeDecisionRequest represents the request body for an autonomous decision.
// The decision type must name one of the weight profiles. Options are checked
// before any AI quota is charged so an empty set reports EMPTY_OPTION_SET.
type MakeDecisionRequest struct {
	Type            string                 `json:"decision_type" validate:"required,max=50"`
	Scope           string                 `json:"decision_scope" validate:"required,max=200"`
	Urgency         string                 `json:"urgency,omitempty" validate:"omitempty,oneof=critical high medium low"`
	Layer           string                 `json:"layer,omitempty"`
	BusinessDrivers []string               `json:"business_drivers,omitempty"`
	Stakeholders    []string               `json:"stakeholders,omitempty"`
	Constraints     []string               `json:"constraints,omitempty"`
	TargetState     map[string]interface{} `json:"target_state,omitempty"`
	Options         []decision.Option      `json:"options"`
	UseAI           bool                   `json:"use_ai,omitempty"`
}

// MakeDecision handles POST /sessions/{sessionID}/decisions
func (h *DecisionHandler) MakeDecision(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	var req MakeDecisionRequest
	if !h.decode(w, r, &req) {
		return
	}

	dreq := services.DecisionRequest{
		Type:            valueobjects.DecisionType(req.Type),
		Scope:           req.Scope,
		Urgency:         valueobjects.Urgency(req.Urgency),
		BusinessDrivers: req.BusinessDrivers,
		Stakeholders:    req.Stakeholders,
		Constraints:     req.Constraints,
		TargetState:     req.TargetState,
		Options:         req.Options,
		UseAI:           req.UseAI,
	}
	if req.Layer != "" {
		layer, err := valueobjects.ParseLayer(req.Layer)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		dreq.Layer = layer
	}
	if err := services.ValidateDecisionRequest(dreq); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if req.UseAI && h.aiLimiter != nil {
		allowed, err := h.aiLimiter.Allow(r.Context(), controller.SessionID())
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		if !allowed {
			h.logger.Warn("AI reasoning rate limited", zap.String("sessionID", controller.SessionID()))
			h.errors.Handle(w, r, pkgerrors.NewRateLimitError(controller.SessionID()))
			return
		}
	}

	result, err := controller.MakeAutonomousDecision(r.Context(), dreq)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, r, http.StatusCreated, result)
}

// ListDecisions handles GET /sessions/{sessionID}/decisions?phase=&type=
func (h *DecisionHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	var phase valueobjects.Phase
	if raw := r.URL.Query().Get("phase"); raw != "" {
		parsed, err := valueobjects.ParsePhase(raw)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		phase = parsed
	}

	var decisionType valueobjects.DecisionType
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, err := valueobjects.ParseDecisionType(raw)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		decisionType = parsed
	}

	results := controller.DecisionHistory(phase, decisionType)
	if results == nil {
		results = []*decision.Result{}
	}
	common.RespondJSON(w, r, http.StatusOK, results)
}
