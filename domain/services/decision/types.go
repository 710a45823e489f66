// Package decision scores alternative courses of action and turns the winner
// into an auditable recommendation with a plan, risks and approvals.
package decision

import (
	"time"

	"archintel/domain/core/valueobjects"
)

// Option is one alternative under consideration. Score fields are normalized to [0,1].
type Option struct {
	ID                   string                 `json:"id"`
	Name                 string                 `json:"name" validate:"required"`
	Description          string                 `json:"description,omitempty"`
	Feasibility          float64                `json:"feasibility" validate:"gte=0,lte=1"`
	Complexity           float64                `json:"complexity" validate:"gte=0,lte=1"`
	RiskLevel            float64                `json:"risk_level" validate:"gte=0,lte=1"`
	StrategicAlignment   float64                `json:"strategic_alignment" validate:"gte=0,lte=1"`
	TechnicalFit         float64                `json:"technical_fit" validate:"gte=0,lte=1"`
	Cost                 float64                `json:"cost" validate:"gte=0"`
	TimeToImplement      int                    `json:"time_to_implement" validate:"gte=0"`
	Benefits             []string               `json:"benefits,omitempty"`
	Dependencies         []string               `json:"dependencies,omitempty"`
	Constraints          []string               `json:"constraints,omitempty"`
	Prerequisites        []string               `json:"prerequisites,omitempty"`
	ImpactedSystems      []string               `json:"impacted_systems,omitempty"`
	ImpactedStakeholders []string               `json:"impacted_stakeholders,omitempty"`
	OrganizationalImpact string                 `json:"organizational_impact,omitempty"`
	Attributes           map[string]interface{} `json:"attributes,omitempty"`
}

// Context describes what is being decided and under which circumstances
type Context struct {
	Phase           valueobjects.Phase        `json:"phase"`
	Layer           valueobjects.Layer        `json:"layer"`
	Type            valueobjects.DecisionType `json:"decision_type"`
	Scope           string                    `json:"decision_scope"`
	Urgency         valueobjects.Urgency      `json:"urgency"`
	BusinessDrivers []string                  `json:"business_drivers,omitempty"`
	Stakeholders    []string                  `json:"stakeholders,omitempty"`
	Constraints     []string                  `json:"constraints,omitempty"`
	CurrentState    map[string]interface{}    `json:"current_state,omitempty"`
	TargetState     map[string]interface{}    `json:"target_state,omitempty"`
	KnownGaps       []string                  `json:"known_gaps,omitempty"`
}

// ScoredOption is an option with its composite score and per-criterion contributions
type ScoredOption struct {
	Option    Option               `json:"option"`
	Score     float64              `json:"score"`
	Rank      int                  `json:"rank"`
	Breakdown map[Criterion]float64 `json:"breakdown"`
}

// PlanPhase is one step of the implementation timeline
type PlanPhase struct {
	Name         string   `json:"name"`
	StartDay     int      `json:"start_day"`
	DurationDays int      `json:"duration_days"`
	Activities   []string `json:"activities"`
	Deliverables []string `json:"deliverables"`
}

// RiskMitigation pairs an identified risk with how to handle it
type RiskMitigation struct {
	Risk       string `json:"risk"`
	Likelihood string `json:"likelihood"`
	Impact     string `json:"impact"`
	Mitigation string `json:"mitigation"`
}

// KPI is a success measure for the chosen option
type KPI struct {
	Name        string `json:"name"`
	Target      string `json:"target"`
	Measurement string `json:"measurement"`
}

// ReasoningSource tells whether the reasoning text came from rules or was enriched
type ReasoningSource string

const (
	ReasoningRuleBased  ReasoningSource = "rule_based"
	ReasoningAIEnriched ReasoningSource = "ai_enriched"
)

// Result is the immutable outcome of one MakeDecision call
type Result struct {
	ID                     string                        `json:"id"`
	Context                Context                       `json:"context"`
	Recommended            Option                        `json:"recommended_option"`
	Score                  float64                       `json:"score"`
	Confidence             valueobjects.ConfidenceLevel  `json:"confidence"`
	Reasoning              string                        `json:"reasoning"`
	BaselineReasoning      string                        `json:"baseline_reasoning"`
	ReasoningSource        ReasoningSource               `json:"reasoning_source"`
	Alternatives           []ScoredOption                `json:"alternatives"`
	ComparisonMatrix       map[string]map[string]float64 `json:"comparison_matrix"`
	ImplementationPlan     []PlanPhase                   `json:"implementation_plan"`
	RiskMitigation         []RiskMitigation              `json:"risk_mitigation"`
	RequiredApprovals      []string                      `json:"required_approvals"`
	GovernanceCheckpoints  []string                      `json:"governance_checkpoints"`
	ComplianceRequirements []string                      `json:"compliance_requirements"`
	KPIs                   []KPI                         `json:"kpis"`
	ReviewSchedule         string                        `json:"review_schedule"`
	ScheduleInconsistent   bool                          `json:"schedule_inconsistent"`
	Warnings               []string                      `json:"warnings,omitempty"`
	DecidedAt              time.Time                     `json:"decided_at"`
}
