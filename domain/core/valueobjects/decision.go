package valueobjects

import (
	"fmt"

	pkgerrors "archintel/pkg/errors"
)

// DecisionType is the closed set of decision kinds the engine has weight profiles for
type DecisionType string

const (
	DecisionStrategic      DecisionType = "strategic"
	DecisionTactical       DecisionType = "tactical"
	DecisionTechnical      DecisionType = "technical"
	DecisionOrganizational DecisionType = "organizational"
	DecisionGovernance     DecisionType = "governance"
	DecisionRisk           DecisionType = "risk"
	DecisionCompliance     DecisionType = "compliance"
	DecisionOptimization   DecisionType = "optimization"
)

// DecisionTypes returns all decision types
func DecisionTypes() []DecisionType {
	return []DecisionType{
		DecisionStrategic, DecisionTactical, DecisionTechnical, DecisionOrganizational,
		DecisionGovernance, DecisionRisk, DecisionCompliance, DecisionOptimization,
	}
}

// IsValid reports whether the decision type is known
func (t DecisionType) IsValid() bool {
	for _, known := range DecisionTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// ParseDecisionType converts a string to a DecisionType
func ParseDecisionType(s string) (DecisionType, error) {
	t := DecisionType(s)
	if !t.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown decision type: %q", s))
	}
	return t, nil
}

// Urgency drives the review cadence of a decision
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// IsValid reports whether the urgency is known
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

// ParseUrgency converts a string to an Urgency
func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(s)
	if !u.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown urgency: %q", s))
	}
	return u, nil
}

// ConfidenceLevel expresses how decisively the winning option beat the runner-up
type ConfidenceLevel string

const (
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceLow      ConfidenceLevel = "low"
)

// Priority ranks advisor recommendations
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)
