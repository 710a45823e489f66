package services

import (
	"archintel/application/ports"
	"archintel/domain/core/aggregates"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
	"archintel/domain/events"
	"archintel/domain/services/advisor"
	pkgerrors "archintel/pkg/errors"
)

// Snapshot captures the session for persistence. The snapshot carries the
// next version number; call MarkSaved once the repository accepted it.
func (c *Controller) Snapshot() *ports.SessionSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	recommendations := make(map[valueobjects.Phase][]advisor.Recommendation, len(c.recommendations))
	for phase, recs := range c.recommendations {
		recommendations[phase] = append([]advisor.Recommendation{}, recs...)
	}
	contexts := make(map[valueobjects.Phase]advisor.PhaseContext, len(c.phaseContexts))
	for phase, pctx := range c.phaseContexts {
		contexts[phase] = pctx
	}

	return &ports.SessionSnapshot{
		SessionID:       c.sessionID,
		Name:            c.name,
		Version:         c.version + 1,
		Phase:           c.phase,
		AutonomousMode:  c.autonomous,
		Model:           c.model.Snapshot(),
		Insights:        append([]entities.Insight{}, c.insights...),
		Decisions:       c.history.All(),
		Recommendations: recommendations,
		PhaseContexts:   contexts,
		ActionPlans:     append([]entities.ActionPlan{}, c.actionPlans...),
		EventLog:        append([]events.Activity{}, c.eventLog...),
		CreatedAt:       c.createdAt,
		UpdatedAt:       c.updatedAt,
	}
}

// MarkSaved records that a snapshot with the given version was persisted
func (c *Controller) MarkSaved(version int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version > c.version {
		c.version = version
	}
}

// RestoreController rebuilds a session from a snapshot
func RestoreController(snapshot *ports.SessionSnapshot, deps ControllerDependencies) (*Controller, error) {
	if snapshot == nil || snapshot.SessionID == "" {
		return nil, pkgerrors.NewValidationError("session snapshot requires a session id")
	}

	c, err := newController(snapshot.SessionID, snapshot.Name, snapshot.AutonomousMode, deps)
	if err != nil {
		return nil, err
	}

	model, err := aggregates.RestoreModel(snapshot.Model, c.config)
	if err != nil {
		return nil, err
	}

	c.model = model
	c.version = snapshot.Version
	if snapshot.Phase != "" {
		c.phase = snapshot.Phase
	}
	c.createdAt = snapshot.CreatedAt
	c.updatedAt = snapshot.UpdatedAt

	c.insights = append(c.insights, snapshot.Insights...)
	for _, result := range snapshot.Decisions {
		c.history.Append(result)
	}
	for phase, recs := range snapshot.Recommendations {
		c.recommendations[phase] = recs
	}
	for phase, pctx := range snapshot.PhaseContexts {
		c.phaseContexts[phase] = pctx
	}
	c.actionPlans = append(c.actionPlans, snapshot.ActionPlans...)
	c.eventLog = append(c.eventLog, snapshot.EventLog...)

	return c, nil
}
