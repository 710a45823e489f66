package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"archintel/application/ports"
	"archintel/domain/config"
	"archintel/domain/core/aggregates"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
	"archintel/domain/events"
	"archintel/domain/services/advisor"
	"archintel/domain/services/analysis"
	"archintel/domain/services/decision"
)

// ControllerDependencies are the collaborators shared by every session.
// Publisher and Metrics are optional.
type ControllerDependencies struct {
	Config    *config.DomainConfig
	Analyzer  *analysis.Analyzer
	Engine    *decision.Engine
	Advisor   *advisor.Advisor
	Publisher ports.EventPublisher
	Metrics   ports.MetricsRecorder
	Logger    *zap.Logger
}

func (d ControllerDependencies) withDefaults() (ControllerDependencies, error) {
	if d.Config == nil {
		d.Config = config.DefaultDomainConfig()
	}
	if d.Analyzer == nil {
		d.Analyzer = analysis.NewAnalyzerWithConfig(d.Config)
	}
	if d.Engine == nil {
		d.Engine = decision.NewEngineWithConfig(d.Config, nil)
	}
	if d.Advisor == nil {
		adv, err := advisor.NewAdvisor(d.Config)
		if err != nil {
			return d, err
		}
		d.Advisor = adv
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d, nil
}

// DecisionRequest asks the controller to decide within the current phase
type DecisionRequest struct {
	Type            valueobjects.DecisionType
	Scope           string
	Urgency         valueobjects.Urgency
	Layer           valueobjects.Layer
	BusinessDrivers []string
	Stakeholders    []string
	Constraints     []string
	TargetState     map[string]interface{}
	Options         []decision.Option
	UseAI           bool
}

// PhaseStatus describes the current phase of a session
type PhaseStatus struct {
	Phase           valueobjects.Phase       `json:"phase"`
	Progress        advisor.Progress         `json:"progress"`
	Context         advisor.PhaseContext     `json:"context"`
	Recommendations []advisor.Recommendation `json:"recommendations"`
	DecisionsMade   int                      `json:"decisions_made"`
}

// Controller is one architecture session. It owns the model and every piece of
// accumulated state; all access goes through a single read-write lock so
// mutations and analyses never interleave.
type Controller struct {
	mu sync.RWMutex

	sessionID  string
	name       string
	phase      valueobjects.Phase
	autonomous bool

	model    *aggregates.Model
	analyzer *analysis.Analyzer
	engine   *decision.Engine
	advisor  *advisor.Advisor
	history  *decision.History
	config   *config.DomainConfig

	insights        []entities.Insight
	recommendations map[valueobjects.Phase][]advisor.Recommendation
	phaseContexts   map[valueobjects.Phase]advisor.PhaseContext
	actionPlans     []entities.ActionPlan
	eventLog        []events.Activity

	version   int
	createdAt time.Time
	updatedAt time.Time

	publisher ports.EventPublisher
	metrics   ports.MetricsRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewController creates a session starting in the preliminary phase
func NewController(name string, autonomous bool, deps ControllerDependencies) (*Controller, error) {
	return newController(uuid.New().String(), name, autonomous, deps)
}

func newController(sessionID, name string, autonomous bool, deps ControllerDependencies) (*Controller, error) {
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = "session-" + sessionID[:min(8, len(sessionID))]
	}

	now := time.Now()
	return &Controller{
		sessionID:       sessionID,
		name:            name,
		phase:           valueobjects.PhasePreliminary,
		autonomous:      autonomous,
		model:           aggregates.NewModelWithConfig(name, deps.Config),
		analyzer:        deps.Analyzer,
		engine:          deps.Engine,
		advisor:         deps.Advisor,
		history:         decision.NewHistory(),
		config:          deps.Config,
		insights:        []entities.Insight{},
		recommendations: make(map[valueobjects.Phase][]advisor.Recommendation),
		phaseContexts:   make(map[valueobjects.Phase]advisor.PhaseContext),
		actionPlans:     []entities.ActionPlan{},
		eventLog:        []events.Activity{},
		createdAt:       now,
		updatedAt:       now,
		publisher:       deps.Publisher,
		metrics:         deps.Metrics,
		logger:          deps.Logger.With(zap.String("sessionID", sessionID)),
		now:             time.Now,
	}, nil
}

// SessionID returns the session identifier
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Name returns the session name
func (c *Controller) Name() string {
	return c.name
}

// CurrentPhase returns the phase pointer
func (c *Controller) CurrentPhase() valueobjects.Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// AutonomousMode reports whether follow-up plans are generated automatically
func (c *Controller) AutonomousMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.autonomous
}

// SetAutonomousMode toggles automatic follow-up plans
func (c *Controller) SetAutonomousMode(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autonomous = enabled
}

// Version returns the number of times the session has been saved
func (c *Controller) Version() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Model mutations

// AddElement adds an element to the session model
func (c *Controller) AddElement(ctx context.Context, element *entities.Element) error {
	return c.mutateModel(ctx, func(m *aggregates.Model) error {
		return m.AddElement(element)
	})
}

// AddRelationship adds a relationship to the session model
func (c *Controller) AddRelationship(ctx context.Context, relationship *entities.Relationship) error {
	return c.mutateModel(ctx, func(m *aggregates.Model) error {
		return m.AddRelationship(relationship)
	})
}

// RemoveElement removes an element and every relationship touching it
func (c *Controller) RemoveElement(ctx context.Context, id valueobjects.ElementID) error {
	return c.mutateModel(ctx, func(m *aggregates.Model) error {
		_, err := m.RemoveElement(id)
		return err
	})
}

// RemoveRelationship removes a relationship from the session model
func (c *Controller) RemoveRelationship(ctx context.Context, id valueobjects.RelationshipID) error {
	return c.mutateModel(ctx, func(m *aggregates.Model) error {
		return m.RemoveRelationship(id)
	})
}

func (c *Controller) mutateModel(ctx context.Context, mutate func(*aggregates.Model) error) error {
	c.mu.Lock()
	if err := mutate(c.model); err != nil {
		c.mu.Unlock()
		return err
	}
	pending := c.model.GetUncommittedEvents()
	c.model.MarkEventsAsCommitted()
	c.updatedAt = c.now()
	c.mu.Unlock()

	c.publish(ctx, pending)
	return nil
}

// Model reads

// GetDependencies returns the neighbors of an element
func (c *Controller) GetDependencies(id valueobjects.ElementID, depth int) (*aggregates.Dependencies, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model.GetDependencies(id, depth)
}

// ModelSnapshot returns the serialized model
func (c *Controller) ModelSnapshot() aggregates.ModelSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model.Snapshot()
}

// Phases

// StartPhase moves the phase pointer and stores the advisor's recommendations for it
func (c *Controller) StartPhase(ctx context.Context, phase valueobjects.Phase) ([]advisor.Recommendation, error) {
	c.mu.Lock()
	recs, err := c.advisor.Recommend(phase, c.phaseContexts[phase])
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	c.phase = phase
	c.recommendations[phase] = recs
	activity := c.appendActivity(events.ActivityPhaseStarted,
		fmt.Sprintf("Started phase %s with %d recommendations", phase, len(recs)),
		map[string]interface{}{"recommendations": len(recs)},
	)
	c.mu.Unlock()

	c.logger.Info("Phase started",
		zap.String("phase", string(phase)),
		zap.Int("recommendations", len(recs)),
	)
	c.publish(ctx, []events.DomainEvent{activity})
	return recs, nil
}

// UpdatePhaseContext replaces the progress context of a phase and refreshes its recommendations
func (c *Controller) UpdatePhaseContext(ctx context.Context, phase valueobjects.Phase, pctx advisor.PhaseContext) error {
	c.mu.Lock()
	recs, err := c.advisor.Recommend(phase, pctx)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.phaseContexts[phase] = pctx
	c.recommendations[phase] = recs
	activity := c.appendActivity(events.ActivityPhaseContextUpdated,
		fmt.Sprintf("Updated context of phase %s", phase),
		map[string]interface{}{
			"completed_deliverables": len(pctx.CompletedDeliverables),
			"decisions_made":         len(pctx.DecisionsMade),
			"stakeholder_engagement": pctx.StakeholderEngagement,
		},
	)
	c.mu.Unlock()

	c.publish(ctx, []events.DomainEvent{activity})
	return nil
}

// GetPhaseStatus reports progress and recommendations of the current phase
func (c *Controller) GetPhaseStatus() (*PhaseStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pctx := c.phaseContexts[c.phase]
	progress, err := c.advisor.GetPhaseProgress(c.phase, pctx)
	if err != nil {
		return nil, err
	}

	recs := c.recommendations[c.phase]
	if recs == nil {
		recs = []advisor.Recommendation{}
	}

	return &PhaseStatus{
		Phase:           c.phase,
		Progress:        progress,
		Context:         pctx,
		Recommendations: recs,
		DecisionsMade:   len(c.history.ByPhase(c.phase)),
	}, nil
}

// Decisions

// MakeAutonomousDecision builds a decision context from the session state and
// asks the engine to decide. The engine runs without holding the session lock
// so a slow reasoning enricher does not block readers.
func (c *Controller) MakeAutonomousDecision(ctx context.Context, req DecisionRequest) (*decision.Result, error) {
	if err := ValidateDecisionRequest(req); err != nil {
		return nil, err
	}

	c.mu.RLock()
	dctx := c.buildDecisionContext(req)
	c.mu.RUnlock()

	result, err := c.engine.MakeDecision(ctx, dctx, req.Options, req.UseAI)
	if err != nil {
		return nil, err
	}

	for _, warning := range result.Warnings {
		c.logger.Warn("Decision warning",
			zap.String("decisionID", result.ID),
			zap.String("warning", warning),
		)
	}

	c.mu.Lock()
	c.history.Append(result)
	c.recordDecisionMade(dctx.Phase, dctx.Scope)
	activity := c.appendActivity(events.ActivityDecisionMade,
		fmt.Sprintf("Selected %s for %s", result.Recommended.Name, dctx.Scope),
		map[string]interface{}{
			"decision_id":      result.ID,
			"decision_type":    string(dctx.Type),
			"option_id":        result.Recommended.ID,
			"score":            result.Score,
			"confidence":       string(result.Confidence),
			"reasoning_source": string(result.ReasoningSource),
		},
	)
	c.mu.Unlock()

	c.logger.Info("Decision made",
		zap.String("decisionID", result.ID),
		zap.String("option", result.Recommended.ID),
		zap.Float64("score", result.Score),
		zap.String("confidence", string(result.Confidence)),
		zap.String("reasoningSource", string(result.ReasoningSource)),
	)
	if c.metrics != nil {
		c.metrics.RecordDecision(string(dctx.Type), string(result.Confidence), string(result.ReasoningSource))
	}
	c.publish(ctx, []events.DomainEvent{activity})
	return result, nil
}

// ValidateDecisionRequest checks the closed enums and the option set of a
// request. An empty urgency or layer is allowed and defaulted later.
func ValidateDecisionRequest(req DecisionRequest) error {
	if _, err := valueobjects.ParseDecisionType(string(req.Type)); err != nil {
		return err
	}
	if req.Urgency != "" {
		if _, err := valueobjects.ParseUrgency(string(req.Urgency)); err != nil {
			return err
		}
	}
	if req.Layer != "" {
		if _, err := valueobjects.ParseLayer(string(req.Layer)); err != nil {
			return err
		}
	}
	return decision.ValidateOptions(req.Options)
}

func (c *Controller) buildDecisionContext(req DecisionRequest) decision.Context {
	layer := req.Layer
	if layer == "" {
		layer = c.phase.DefaultLayer()
	}
	urgency := req.Urgency
	if urgency == "" {
		urgency = valueobjects.UrgencyMedium
	}

	currentState := make(map[string]interface{})
	for l, count := range c.model.CountByLayer() {
		currentState[string(l)] = count
	}

	var gaps []string
	for _, insight := range c.insights {
		if insight.Type == valueobjects.InsightGap {
			gaps = append(gaps, insight.Title)
		}
	}

	return decision.Context{
		Phase:           c.phase,
		Layer:           layer,
		Type:            req.Type,
		Scope:           req.Scope,
		Urgency:         urgency,
		BusinessDrivers: req.BusinessDrivers,
		Stakeholders:    req.Stakeholders,
		Constraints:     req.Constraints,
		CurrentState:    currentState,
		TargetState:     req.TargetState,
		KnownGaps:       gaps,
	}
}

func (c *Controller) recordDecisionMade(phase valueobjects.Phase, scope string) {
	if scope == "" {
		return
	}
	pctx := c.phaseContexts[phase]
	pctx.DecisionsMade = append(append([]string{}, pctx.DecisionsMade...), scope)
	c.phaseContexts[phase] = pctx

	recs, err := c.advisor.Recommend(phase, pctx)
	if err != nil {
		c.logger.Warn("Failed to refresh recommendations",
			zap.String("phase", string(phase)),
			zap.Error(err))
		return
	}
	c.recommendations[phase] = recs
}

// DecisionHistory returns the recorded decisions, optionally filtered
func (c *Controller) DecisionHistory(phase valueobjects.Phase, decisionType valueobjects.DecisionType) []*decision.Result {
	var results []*decision.Result
	switch {
	case phase != "":
		results = c.history.ByPhase(phase)
	case decisionType != "":
		results = c.history.ByType(decisionType)
	default:
		return c.history.All()
	}

	if phase != "" && decisionType != "" {
		filtered := []*decision.Result{}
		for _, r := range results {
			if r.Context.Type == decisionType {
				filtered = append(filtered, r)
			}
		}
		return filtered
	}
	return results
}

// Analysis

// AnalyzeArchitecture runs the analyzer and accumulates its insights. In
// autonomous mode an action plan is generated for every critical insight.
func (c *Controller) AnalyzeArchitecture(ctx context.Context, kinds ...analysis.Kind) ([]entities.Insight, []entities.ActionPlan, error) {
	start := time.Now()

	c.mu.Lock()
	insights, err := c.analyzer.Analyze(c.model, kinds...)
	if err != nil {
		c.mu.Unlock()
		return nil, nil, err
	}

	c.insights = append(c.insights, insights...)
	counts := entities.CountBySeverity(insights)

	var pending []events.DomainEvent
	pending = append(pending, c.appendActivity(events.ActivityAnalysisCompleted,
		fmt.Sprintf("Analysis produced %d insights", len(insights)),
		map[string]interface{}{
			"insights": len(insights),
			"critical": counts[valueobjects.SeverityCritical],
			"high":     counts[valueobjects.SeverityHigh],
			"medium":   counts[valueobjects.SeverityMedium],
		},
	))

	plans := []entities.ActionPlan{}
	if c.autonomous {
		for _, insight := range insights {
			if insight.Severity != valueobjects.SeverityCritical {
				continue
			}
			plan := c.actionPlanForInsight(insight)
			plans = append(plans, plan)
			c.actionPlans = append(c.actionPlans, plan)
			pending = append(pending, c.appendActivity(events.ActivityActionPlanGenerated,
				fmt.Sprintf("Action plan for %s", insight.Title),
				map[string]interface{}{"plan_id": plan.ID, "insight_id": insight.ID},
			))
		}
	}
	c.mu.Unlock()

	elapsed := time.Since(start)
	c.logger.Info("Architecture analyzed",
		zap.Int("insights", len(insights)),
		zap.Int("actionPlans", len(plans)),
		zap.Duration("duration", elapsed),
	)
	if c.metrics != nil {
		c.metrics.RecordInsights(insights)
		c.metrics.RecordAnalysisDuration(elapsed.Seconds())
	}
	c.publish(ctx, pending)
	return insights, plans, nil
}

// AssessImpact measures the impact of a change. In autonomous mode high and
// critical impacts get a mitigation plan.
func (c *Controller) AssessImpact(ctx context.Context, id valueobjects.ElementID, changeType analysis.ChangeType) (*analysis.ImpactAssessment, *entities.ActionPlan, error) {
	c.mu.Lock()
	assessment, err := c.analyzer.AssessChangeImpact(c.model, id, changeType)
	if err != nil {
		c.mu.Unlock()
		return nil, nil, err
	}

	pending := []events.DomainEvent{c.appendActivity(events.ActivityImpactAssessed,
		fmt.Sprintf("Impact of %s on %s is %s", changeType, id, assessment.Severity),
		map[string]interface{}{
			"element_id":        id.String(),
			"change_type":       string(changeType),
			"directly_affected": assessment.DirectlyAffected,
			"severity":          string(assessment.Severity),
		},
	)}

	var plan *entities.ActionPlan
	if c.autonomous && assessment.Severity.AtLeast(valueobjects.SeverityHigh) {
		p := c.mitigationPlan(assessment)
		plan = &p
		c.actionPlans = append(c.actionPlans, p)
		pending = append(pending, c.appendActivity(events.ActivityMitigationPlanGenerated,
			fmt.Sprintf("Mitigation plan for %s of %s", changeType, id),
			map[string]interface{}{"plan_id": p.ID, "element_id": id.String()},
		))
	}
	c.mu.Unlock()

	c.publish(ctx, pending)
	return assessment, plan, nil
}

func (c *Controller) actionPlanForInsight(insight entities.Insight) entities.ActionPlan {
	steps := []string{fmt.Sprintf("Assign an owner for %q", insight.Title)}
	steps = append(steps, insight.Recommendations...)
	steps = append(steps, "Re-run the analysis to confirm resolution")

	return entities.ActionPlan{
		ID:               uuid.New().String(),
		Source:           entities.PlanSourceInsight,
		SourceID:         insight.ID,
		Title:            "Resolve: " + insight.Title,
		Severity:         insight.Severity,
		Phase:            c.phase,
		AffectedElements: insight.AffectedElements,
		Steps:            steps,
		CreatedAt:        c.now(),
	}
}

func (c *Controller) mitigationPlan(assessment *analysis.ImpactAssessment) entities.ActionPlan {
	steps := []string{
		fmt.Sprintf("Inventory the %d relationships touching %s", assessment.DirectlyAffected, assessment.ElementID),
		"Freeze unrelated changes to the affected elements",
	}
	steps = append(steps, assessment.Recommendations...)
	steps = append(steps, "Prepare a rollback plan")

	return entities.ActionPlan{
		ID:               uuid.New().String(),
		Source:           entities.PlanSourceImpact,
		SourceID:         assessment.ElementID.String(),
		Title:            fmt.Sprintf("Mitigate %s of %s", assessment.ChangeType, assessment.ElementID),
		Severity:         assessment.Severity,
		Phase:            c.phase,
		AffectedElements: assessment.AffectedElements,
		Steps:            steps,
		CreatedAt:        c.now(),
	}
}

// Accumulated state

// Insights returns every accumulated insight in discovery order
func (c *Controller) Insights() []entities.Insight {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]entities.Insight{}, c.insights...)
}

// ActionPlans returns every generated action and mitigation plan
func (c *Controller) ActionPlans() []entities.ActionPlan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]entities.ActionPlan{}, c.actionPlans...)
}

// EventLog returns the activity log in append order
func (c *Controller) EventLog() []events.Activity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]events.Activity{}, c.eventLog...)
}

// appendActivity records an entry in the event log. Callers must hold the write lock.
func (c *Controller) appendActivity(action, summary string, details map[string]interface{}) events.Activity {
	now := c.now()
	activity := events.NewActivity(c.sessionID, len(c.eventLog)+1, action, c.phase, summary, details, now)
	c.eventLog = append(c.eventLog, activity)
	c.updatedAt = now
	return activity
}

// publish hands events to the publisher and records activity metrics.
// Publishing failures are logged and never returned.
func (c *Controller) publish(ctx context.Context, pending []events.DomainEvent) {
	if len(pending) == 0 {
		return
	}

	if c.metrics != nil {
		for _, event := range pending {
			if activity, ok := event.(events.Activity); ok {
				c.metrics.RecordActivity(activity.EventType)
			}
		}
	}

	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishBatch(ctx, pending); err != nil {
		c.logger.Warn("Failed to publish events",
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
	}
}
