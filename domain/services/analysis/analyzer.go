// Package analysis runs read-only structural analyses over an architecture model.
package analysis

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"archintel/domain/config"
	"archintel/domain/core/aggregates"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
	pkgerrors "archintel/pkg/errors"
)

// Kind selects one family of analysis rules
type Kind string

const (
	KindGaps         Kind = "gaps"
	KindDependencies Kind = "dependencies"
	KindPatterns     Kind = "patterns"
	KindOptimization Kind = "optimization"
)

// Rule names recorded on every insight
const (
	RuleMissingLayer   = "missing_layer"
	RuleOrphanElement  = "orphan_element"
	RuleWeakAlignment  = "weak_business_alignment"
	RuleHighCoupling   = "high_coupling"
	RuleCycle          = "circular_dependency"
	RuleLayered        = "layered_architecture"
	RuleMicroservices  = "microservices_pattern"
	RulePotentialReuse = "potential_redundancy"
)

// AllKinds returns every analysis kind in execution order
func AllKinds() []Kind {
	return []Kind{KindGaps, KindDependencies, KindPatterns, KindOptimization}
}

// ParseKind converts a string to a Kind
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown analysis kind: %q", s))
}

// Analyzer produces insights and impact assessments for a model.
// It holds no per-model state and never mutates the model it reads.
type Analyzer struct {
	config *config.DomainConfig
	now    func() time.Time
}

// NewAnalyzer creates an analyzer with the default domain configuration
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(nil)
}

// NewAnalyzerWithConfig creates an analyzer with custom thresholds
func NewAnalyzerWithConfig(cfg *config.DomainConfig) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Analyzer{config: cfg, now: time.Now}
}

// Analyze runs the requested kinds, or all of them when none are given.
// Insights are returned grouped by kind in the order of AllKinds, whatever
// order the kinds were requested in.
func (a *Analyzer) Analyze(model *aggregates.Model, kinds ...Kind) ([]entities.Insight, error) {
	if model == nil {
		return nil, pkgerrors.NewValidationError("model cannot be nil")
	}

	requested := make(map[Kind]bool)
	for _, k := range kinds {
		if _, err := ParseKind(string(k)); err != nil {
			return nil, err
		}
		requested[k] = true
	}
	if len(requested) == 0 {
		for _, k := range AllKinds() {
			requested[k] = true
		}
	}

	var insights []entities.Insight
	if requested[KindGaps] {
		insights = append(insights, a.analyzeGaps(model)...)
	}
	if requested[KindDependencies] {
		insights = append(insights, a.analyzeDependencies(model)...)
	}
	if requested[KindPatterns] {
		insights = append(insights, a.recognizePatterns(model)...)
	}
	if requested[KindOptimization] {
		insights = append(insights, a.findOptimizations(model)...)
	}

	if insights == nil {
		insights = []entities.Insight{}
	}
	return insights, nil
}

func (a *Analyzer) newInsight(rule string, insightType valueobjects.InsightType, severity valueobjects.Severity, title, description string) entities.Insight {
	return entities.Insight{
		ID:               uuid.New().String(),
		Rule:             rule,
		Type:             insightType,
		Severity:         severity,
		Title:            title,
		Description:      description,
		AffectedElements: []valueobjects.ElementID{},
		AffectedLayers:   []valueobjects.Layer{},
		Recommendations:  []string{},
		Confidence:       1.0,
		DiscoveredAt:     a.now(),
	}
}

func layersOf(model *aggregates.Model, ids []valueobjects.ElementID) []valueobjects.Layer {
	layers := make([]valueobjects.Layer, 0, len(ids))
	for _, id := range ids {
		if element, err := model.Element(id); err == nil {
			layers = append(layers, element.Layer())
		}
	}
	return valueobjects.SortLayers(layers)
}
