package analysis

import (
	"fmt"

	"archintel/domain/core/aggregates"
	"archintel/domain/core/valueobjects"
	pkgerrors "archintel/pkg/errors"
)

// ChangeType is the kind of change whose impact is assessed
type ChangeType string

const (
	ChangeModify  ChangeType = "modify"
	ChangeRemove  ChangeType = "remove"
	ChangeReplace ChangeType = "replace"
)

// ParseChangeType converts a string to a ChangeType
func ParseChangeType(s string) (ChangeType, error) {
	switch ct := ChangeType(s); ct {
	case ChangeModify, ChangeRemove, ChangeReplace:
		return ct, nil
	}
	return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown change type: %q", s))
}

// ImpactAssessment describes the blast radius of changing one element
type ImpactAssessment struct {
	ElementID        valueobjects.ElementID   `json:"element_id"`
	ChangeType       ChangeType               `json:"change_type"`
	DirectlyAffected int                      `json:"directly_affected"`
	AffectedElements []valueobjects.ElementID `json:"affected_elements"`
	AffectedLayers   []valueobjects.Layer     `json:"affected_layers"`
	Severity         valueobjects.Severity    `json:"severity"`
	Recommendations  []string                 `json:"recommendations"`
	RequiresApproval bool                     `json:"requires_approval"`
}

// AssessChangeImpact measures how many relationships a change to the element touches
func (a *Analyzer) AssessChangeImpact(model *aggregates.Model, id valueobjects.ElementID, changeType ChangeType) (*ImpactAssessment, error) {
	if model == nil {
		return nil, pkgerrors.NewValidationError("model cannot be nil")
	}
	if _, err := ParseChangeType(string(changeType)); err != nil {
		return nil, err
	}

	deps, err := model.GetDependencies(id, 1)
	if err != nil {
		return nil, err
	}

	element, err := model.Element(id)
	if err != nil {
		return nil, err
	}
	direct := element.OutgoingCount() + model.IncomingCount(id)

	var neighbors []valueobjects.ElementID
	seen := make(map[valueobjects.ElementID]bool)
	for _, dep := range append(deps.Outgoing, deps.Incoming...) {
		if !seen[dep.Element.ID()] {
			seen[dep.Element.ID()] = true
			neighbors = append(neighbors, dep.Element.ID())
		}
	}
	if neighbors == nil {
		neighbors = []valueobjects.ElementID{}
	}

	severity := a.impactSeverity(direct)
	assessment := &ImpactAssessment{
		ElementID:        id,
		ChangeType:       changeType,
		DirectlyAffected: direct,
		AffectedElements: neighbors,
		AffectedLayers:   layersOf(model, neighbors),
		Severity:         severity,
		RequiresApproval: severity.AtLeast(valueobjects.SeverityHigh),
	}
	assessment.Recommendations = impactRecommendations(changeType, direct, assessment.RequiresApproval)
	return assessment, nil
}

func (a *Analyzer) impactSeverity(direct int) valueobjects.Severity {
	switch {
	case direct > a.config.ImpactCriticalThreshold:
		return valueobjects.SeverityCritical
	case direct > a.config.ImpactHighThreshold:
		return valueobjects.SeverityHigh
	case direct > a.config.ImpactMediumThreshold:
		return valueobjects.SeverityMedium
	default:
		return valueobjects.SeverityLow
	}
}

func impactRecommendations(changeType ChangeType, direct int, needsApproval bool) []string {
	var recs []string

	switch changeType {
	case ChangeRemove:
		recs = append(recs, "Migrate dependencies first")
	case ChangeReplace:
		recs = append(recs, "Ensure interface compatibility")
	case ChangeModify:
		recs = append(recs, "Regression test dependent elements")
	}

	if direct > 0 {
		recs = append(recs, fmt.Sprintf("Notify owners of the %d affected relationships", direct))
	}
	if needsApproval {
		recs = append(recs, "Schedule an architecture review before the change")
	}
	return recs
}
