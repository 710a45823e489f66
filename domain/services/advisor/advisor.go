// Package advisor recommends next steps for an architecture development phase
// from declarative phase templates.
package advisor

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"archintel/domain/config"
	"archintel/domain/core/valueobjects"
	pkgerrors "archintel/pkg/errors"
)

//go:embed templates.yaml
var defaultTemplates []byte

// PhaseTemplate lists what a phase is expected to produce
type PhaseTemplate struct {
	Name              string   `yaml:"name" json:"name"`
	Objectives        []string `yaml:"objectives" json:"objectives"`
	KeyDeliverables   []string `yaml:"key_deliverables" json:"key_deliverables"`
	CriticalDecisions []string `yaml:"critical_decisions" json:"critical_decisions"`
	Stakeholders      []string `yaml:"stakeholders" json:"stakeholders"`
}

// TotalItems is the number of items that count toward progress
func (t PhaseTemplate) TotalItems() int {
	return len(t.KeyDeliverables) + len(t.CriticalDecisions)
}

type templateDocument struct {
	Phases map[string]PhaseTemplate `yaml:"phases"`
}

// PhaseContext is what has been achieved in a phase so far
type PhaseContext struct {
	CompletedDeliverables []string `json:"completed_deliverables"`
	DecisionsMade         []string `json:"decisions_made"`
	StakeholderEngagement bool     `json:"stakeholder_engagement"`
}

// Recommendation categories
const (
	CategoryDecision    = "decision"
	CategoryDeliverable = "deliverable"
	CategoryRisk        = "risk"
)

// Recommendation is one suggested next step
type Recommendation struct {
	Phase       valueobjects.Phase    `json:"phase"`
	Priority    valueobjects.Priority `json:"priority"`
	Category    string                `json:"category"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Actions     []string              `json:"actions"`
}

// ProgressStatus summarizes phase progress
type ProgressStatus string

const (
	StatusOnTrack ProgressStatus = "on_track"
	StatusAtRisk  ProgressStatus = "at_risk"
)

// Progress reports how much of a phase template is complete
type Progress struct {
	Phase          valueobjects.Phase `json:"phase"`
	CompletedItems int                `json:"completed_items"`
	TotalItems     int                `json:"total_items"`
	Percentage     float64            `json:"percentage"`
	Status         ProgressStatus     `json:"status"`
}

// Advisor turns phase templates and progress into recommendations
type Advisor struct {
	templates      map[valueobjects.Phase]PhaseTemplate
	onTrackPercent float64
}

// NewAdvisor creates an advisor from the embedded default templates
func NewAdvisor(cfg *config.DomainConfig) (*Advisor, error) {
	templates, err := LoadTemplates(defaultTemplates)
	if err != nil {
		return nil, err
	}
	return NewAdvisorWithTemplates(templates, cfg), nil
}

// NewAdvisorWithTemplates creates an advisor from custom templates
func NewAdvisorWithTemplates(templates map[valueobjects.Phase]PhaseTemplate, cfg *config.DomainConfig) *Advisor {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Advisor{templates: templates, onTrackPercent: cfg.PhaseOnTrackPercent}
}

// LoadTemplates parses a YAML template document keyed by phase
func LoadTemplates(data []byte) (map[valueobjects.Phase]PhaseTemplate, error) {
	var doc templateDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, pkgerrors.NewValidationError("invalid phase templates").WithCause(err)
	}

	templates := make(map[valueobjects.Phase]PhaseTemplate, len(doc.Phases))
	for key, tmpl := range doc.Phases {
		phase, err := valueobjects.ParsePhase(key)
		if err != nil {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("phase templates: %v", err))
		}
		templates[phase] = tmpl
	}
	return templates, nil
}

// Template returns the template of a phase. Known phases without a template get an empty one.
func (a *Advisor) Template(phase valueobjects.Phase) (PhaseTemplate, error) {
	if !phase.IsValid() {
		return PhaseTemplate{}, pkgerrors.NewValidationError(fmt.Sprintf("unknown phase: %q", phase))
	}
	return a.templates[phase], nil
}

// Recommend lists unmet critical decisions, missing deliverables and
// stakeholder risk for a phase, in that order.
func (a *Advisor) Recommend(phase valueobjects.Phase, ctx PhaseContext) ([]Recommendation, error) {
	tmpl, err := a.Template(phase)
	if err != nil {
		return nil, err
	}

	made := normalizedSet(ctx.DecisionsMade)
	completed := normalizedSet(ctx.CompletedDeliverables)
	recs := []Recommendation{}

	for _, decision := range tmpl.CriticalDecisions {
		if made[normalize(decision)] {
			continue
		}
		recs = append(recs, Recommendation{
			Phase:       phase,
			Priority:    valueobjects.PriorityCritical,
			Category:    CategoryDecision,
			Title:       fmt.Sprintf("Decide: %s", decision),
			Description: fmt.Sprintf("The critical decision %q has not been made for %s.", decision, phaseName(phase, tmpl)),
			Actions: []string{
				"Identify and score the available options",
				"Record the decision with its rationale",
			},
		})
	}

	for _, deliverable := range tmpl.KeyDeliverables {
		if completed[normalize(deliverable)] {
			continue
		}
		recs = append(recs, Recommendation{
			Phase:       phase,
			Priority:    valueobjects.PriorityHigh,
			Category:    CategoryDeliverable,
			Title:       fmt.Sprintf("Complete: %s", deliverable),
			Description: fmt.Sprintf("The key deliverable %q is missing for %s.", deliverable, phaseName(phase, tmpl)),
			Actions:     []string{"Assign an owner and due date", "Review the deliverable with stakeholders"},
		})
	}

	if !ctx.StakeholderEngagement {
		recs = append(recs, Recommendation{
			Phase:       phase,
			Priority:    valueobjects.PriorityHigh,
			Category:    CategoryRisk,
			Title:       "Stakeholder engagement risk",
			Description: fmt.Sprintf("Stakeholders are not engaged in %s.", phaseName(phase, tmpl)),
			Actions:     engagementActions(tmpl.Stakeholders),
		})
	}

	return recs, nil
}

// GetPhaseProgress reports completion against the phase template. Only items
// named by the template count, so the percentage never exceeds 100. A phase
// with an empty template has nothing outstanding and is complete.
func (a *Advisor) GetPhaseProgress(phase valueobjects.Phase, ctx PhaseContext) (Progress, error) {
	tmpl, err := a.Template(phase)
	if err != nil {
		return Progress{}, err
	}

	total := tmpl.TotalItems()
	if total == 0 {
		return Progress{Phase: phase, Percentage: 100, Status: StatusOnTrack}, nil
	}

	made := normalizedSet(ctx.DecisionsMade)
	completedSet := normalizedSet(ctx.CompletedDeliverables)

	completed := 0
	for _, deliverable := range tmpl.KeyDeliverables {
		if completedSet[normalize(deliverable)] {
			completed++
		}
	}
	for _, decision := range tmpl.CriticalDecisions {
		if made[normalize(decision)] {
			completed++
		}
	}

	percentage := float64(completed) / float64(total) * 100
	status := StatusAtRisk
	if percentage > a.onTrackPercent {
		status = StatusOnTrack
	}

	return Progress{
		Phase:          phase,
		CompletedItems: completed,
		TotalItems:     total,
		Percentage:     percentage,
		Status:         status,
	}, nil
}

func engagementActions(stakeholders []string) []string {
	if len(stakeholders) == 0 {
		return []string{"Identify and engage the phase stakeholders"}
	}
	return []string{
		fmt.Sprintf("Schedule a review with %s", strings.Join(stakeholders, ", ")),
		"Agree on a communication plan",
	}
}

func phaseName(phase valueobjects.Phase, tmpl PhaseTemplate) string {
	if tmpl.Name != "" {
		return tmpl.Name
	}
	return string(phase)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizedSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[normalize(item)] = true
	}
	return set
}
