package events

import (
	"time"

	"archintel/domain/core/valueobjects"
)

// Controller activity types
const (
	ActivityPhaseStarted            = "controller.phase_started"
	ActivityPhaseContextUpdated     = "controller.phase_context_updated"
	ActivityDecisionMade            = "controller.decision_made"
	ActivityAnalysisCompleted       = "controller.analysis_completed"
	ActivityActionPlanGenerated     = "controller.action_plan_generated"
	ActivityImpactAssessed          = "controller.impact_assessed"
	ActivityMitigationPlanGenerated = "controller.mitigation_plan_generated"
	ActivityHealthAssessed          = "controller.health_assessed"
)

// Activity is one entry of a session's event log. The sequence number doubles as
// the event version so entries sort in append order.
type Activity struct {
	BaseEvent
	Phase   valueobjects.Phase     `json:"phase"`
	Summary string                 `json:"summary"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewActivity creates an activity record for a session
func NewActivity(sessionID string, sequence int, action string, phase valueobjects.Phase, summary string, details map[string]interface{}, timestamp time.Time) Activity {
	return Activity{
		BaseEvent: BaseEvent{
			AggregateID: sessionID,
			EventType:   action,
			Timestamp:   timestamp,
			Version:     sequence,
		},
		Phase:   phase,
		Summary: summary,
		Details: details,
	}
}

// Sequence returns the position of the activity in its session log
func (a Activity) Sequence() int {
	return a.Version
}
