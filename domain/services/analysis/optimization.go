package analysis

import (
	"fmt"

	"archintel/domain/core/aggregates"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
)

type signature struct {
	name        string
	elementType valueobjects.ElementType
	layer       valueobjects.Layer
}

// findOptimizations reports groups of elements sharing name, type and layer
func (a *Analyzer) findOptimizations(model *aggregates.Model) []entities.Insight {
	groups := make(map[signature][]*entities.Element)
	var order []signature

	for _, element := range model.Elements() {
		sig := signature{name: element.Name(), elementType: element.Type(), layer: element.Layer()}
		if _, exists := groups[sig]; !exists {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], element)
	}

	var insights []entities.Insight
	for _, sig := range order {
		members := groups[sig]
		if len(members) < 2 {
			continue
		}

		insight := a.newInsight(
			RulePotentialReuse,
			valueobjects.InsightOptimization,
			valueobjects.SeverityLow,
			fmt.Sprintf("Potential redundancy: %s", sig.name),
			fmt.Sprintf("%d %s elements named %q exist in the %s layer.", len(members), sig.elementType, sig.name, sig.layer.Title()),
		)
		for _, member := range members {
			insight.AffectedElements = append(insight.AffectedElements, member.ID())
		}
		insight.AffectedLayers = []valueobjects.Layer{sig.layer}
		insight.Recommendations = []string{
			"Confirm whether the elements describe the same thing",
			"Consolidate duplicates into a single shared element",
		}
		insight.EstimatedImpact = "Duplicated maintenance and licensing cost"
		insight.EstimatedEffort = "low"
		insight.Confidence = a.config.RedundancyConfidence
		insights = append(insights, insight)
	}
	return insights
}
