package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"archintel/application/services"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
	"archintel/domain/services/analysis"
	"archintel/pkg/common"
	pkgerrors "archintel/pkg/errors"
)

// AnalysisHandler handles structural analysis, impact and health requests
type AnalysisHandler struct {
	base
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(sessions *services.SessionService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{base: newBase(sessions, errorHandler, logger)}
}

// AnalyzeRequest selects analysis kinds; none means all of them
type AnalyzeRequest struct {
	Kinds []string `json:"kinds,omitempty" validate:"omitempty,dive,oneof=gaps dependencies patterns optimization"`
}

// AnalyzeResponse holds the insights and plans produced by one run
type AnalyzeResponse struct {
	Insights    []entities.Insight    `json:"insights"`
	ActionPlans []entities.ActionPlan `json:"action_plans"`
}

// ImpactRequest represents the request body for an impact assessment
type ImpactRequest struct {
	ElementID  string `json:"element_id" validate:"required"`
	ChangeType string `json:"change_type" validate:"required,oneof=modify remove replace"`
}

// ImpactResponse carries the assessment and the mitigation plan, if one was generated
type ImpactResponse struct {
	Assessment     *analysis.ImpactAssessment `json:"assessment"`
	MitigationPlan *entities.ActionPlan       `json:"mitigation_plan,omitempty"`
}

// Analyze handles POST /sessions/{sessionID}/analysis
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}

	kinds := make([]analysis.Kind, 0, len(req.Kinds))
	for _, raw := range req.Kinds {
		kind, err := analysis.ParseKind(raw)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		kinds = append(kinds, kind)
	}

	insights, plans, err := controller.AnalyzeArchitecture(r.Context(), kinds...)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if insights == nil {
		insights = []entities.Insight{}
	}
	if plans == nil {
		plans = []entities.ActionPlan{}
	}

	common.RespondJSON(w, r, http.StatusOK, AnalyzeResponse{Insights: insights, ActionPlans: plans})
}

// AssessImpact handles POST /sessions/{sessionID}/impact
func (h *AnalysisHandler) AssessImpact(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	var req ImpactRequest
	if !h.decode(w, r, &req) {
		return
	}

	changeType, err := analysis.ParseChangeType(req.ChangeType)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	assessment, plan, err := controller.AssessImpact(r.Context(), valueobjects.ElementID(req.ElementID), changeType)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, r, http.StatusOK, ImpactResponse{Assessment: assessment, MitigationPlan: plan})
}

// ListInsights handles GET /sessions/{sessionID}/insights
func (h *AnalysisHandler) ListInsights(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}
	common.RespondJSON(w, r, http.StatusOK, controller.Insights())
}

// ListActionPlans handles GET /sessions/{sessionID}/action-plans
func (h *AnalysisHandler) ListActionPlans(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}
	common.RespondJSON(w, r, http.StatusOK, controller.ActionPlans())
}

// GetHealth handles GET /sessions/{sessionID}/health
func (h *AnalysisHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}
	common.RespondJSON(w, r, http.StatusOK, controller.GetArchitectureHealth(r.Context()))
}

// GetReport handles GET /sessions/{sessionID}/report
func (h *AnalysisHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}
	common.RespondText(w, http.StatusOK, controller.GenerateReport())
}
