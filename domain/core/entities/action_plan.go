package entities

import (
	"time"

	"archintel/domain/core/valueobjects"
)

// ActionPlan sources
const (
	PlanSourceInsight = "insight"
	PlanSourceImpact  = "impact"
)

// ActionPlan is a generated follow-up for a critical insight or a risky change
type ActionPlan struct {
	ID               string                   `json:"id"`
	Source           string                   `json:"source"`
	SourceID         string                   `json:"source_id"`
	Title            string                   `json:"title"`
	Severity         valueobjects.Severity    `json:"severity"`
	Phase            valueobjects.Phase       `json:"phase"`
	AffectedElements []valueobjects.ElementID `json:"affected_elements"`
	Steps            []string                 `json:"steps"`
	CreatedAt        time.Time                `json:"created_at"`
}
