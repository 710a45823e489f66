package entities

import (
	"time"

	"archintel/domain/core/valueobjects"
)

// Insight is a discovered structural fact about a model. Insights are values:
// once produced by an analysis they are appended to history and never changed.
type Insight struct {
	ID               string                   `json:"id"`
	Rule             string                   `json:"rule"`
	Type             valueobjects.InsightType `json:"insight_type"`
	Severity         valueobjects.Severity    `json:"severity"`
	Title            string                   `json:"title"`
	Description      string                   `json:"description"`
	AffectedElements []valueobjects.ElementID `json:"affected_elements"`
	AffectedLayers   []valueobjects.Layer     `json:"affected_layers"`
	Recommendations  []string                 `json:"recommendations"`
	EstimatedImpact  string                   `json:"estimated_impact"`
	EstimatedEffort  string                   `json:"estimated_effort"`
	Confidence       float64                  `json:"confidence"`
	DiscoveredAt     time.Time                `json:"discovered_at"`
}

// Affects reports whether the element is listed as affected
func (i Insight) Affects(id valueobjects.ElementID) bool {
	for _, affected := range i.AffectedElements {
		if affected == id {
			return true
		}
	}
	return false
}

// CountBySeverity tallies insights per severity
func CountBySeverity(insights []Insight) map[valueobjects.Severity]int {
	counts := make(map[valueobjects.Severity]int, len(valueobjects.Severities()))
	for _, insight := range insights {
		counts[insight.Severity]++
	}
	return counts
}
