package ports

import (
	"context"
	"time"

	"archintel/domain/core/aggregates"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
	"archintel/domain/events"
	"archintel/domain/services/advisor"
	"archintel/domain/services/decision"
)

// SessionSnapshot is the persisted form of one controller session.
// Version counts successful saves and guards against lost updates.
type SessionSnapshot struct {
	SessionID       string                                          `json:"session_id" dynamodbav:"SessionID"`
	Name            string                                          `json:"name" dynamodbav:"Name"`
	Version         int                                             `json:"version" dynamodbav:"Version"`
	Phase           valueobjects.Phase                              `json:"phase" dynamodbav:"Phase"`
	AutonomousMode  bool                                            `json:"autonomous_mode" dynamodbav:"AutonomousMode"`
	Model           aggregates.ModelSnapshot                        `json:"model" dynamodbav:"-"`
	Insights        []entities.Insight                              `json:"insights" dynamodbav:"-"`
	Decisions       []*decision.Result                              `json:"decisions" dynamodbav:"-"`
	Recommendations map[valueobjects.Phase][]advisor.Recommendation `json:"recommendations" dynamodbav:"-"`
	PhaseContexts   map[valueobjects.Phase]advisor.PhaseContext     `json:"phase_contexts" dynamodbav:"-"`
	ActionPlans     []entities.ActionPlan                           `json:"action_plans" dynamodbav:"-"`
	EventLog        []events.Activity                               `json:"event_log" dynamodbav:"-"`
	CreatedAt       time.Time                                       `json:"created_at" dynamodbav:"CreatedAt"`
	UpdatedAt       time.Time                                       `json:"updated_at" dynamodbav:"UpdatedAt"`
}

// SessionSummary is the list view of a stored session
type SessionSummary struct {
	SessionID string             `json:"session_id" dynamodbav:"SessionID"`
	Name      string             `json:"name" dynamodbav:"Name"`
	Phase     valueobjects.Phase `json:"phase" dynamodbav:"Phase"`
	Version   int                `json:"version" dynamodbav:"Version"`
	UpdatedAt time.Time          `json:"updated_at" dynamodbav:"UpdatedAt"`
}

// SessionRepository persists session snapshots.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type SessionRepository interface {
	// Save stores a snapshot. The stored version must be snapshot.Version-1,
	// or absent when snapshot.Version is 1; otherwise a conflict error is returned.
	Save(ctx context.Context, snapshot *SessionSnapshot) error

	// Load retrieves the latest snapshot of a session
	Load(ctx context.Context, sessionID string) (*SessionSnapshot, error)

	// List returns summaries of all stored sessions, most recently updated first
	List(ctx context.Context) ([]SessionSummary, error)

	// Delete removes a stored session
	Delete(ctx context.Context, sessionID string) error
}

// EventPublisher defines the interface for publishing controller activity
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// MetricsRecorder receives measurements from the controller
type MetricsRecorder interface {
	RecordDecision(decisionType, confidence, reasoningSource string)
	RecordInsights(insights []entities.Insight)
	RecordHealth(sessionID string, score int)
	RecordActivity(action string)
	RecordAnalysisDuration(seconds float64)
}
