package analysis

import (
	"fmt"

	"archintel/domain/core/aggregates"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
)

func (a *Analyzer) analyzeGaps(model *aggregates.Model) []entities.Insight {
	var insights []entities.Insight
	insights = append(insights, a.missingLayers(model)...)
	insights = append(insights, a.orphans(model)...)
	if insight, ok := a.weakAlignment(model); ok {
		insights = append(insights, insight)
	}
	return insights
}

// missingLayers reports every fixed layer without elements. Motivation is
// cross-cutting and never reported as missing.
func (a *Analyzer) missingLayers(model *aggregates.Model) []entities.Insight {
	present := make(map[valueobjects.Layer]bool)
	for _, layer := range model.LayersPresent() {
		present[layer] = true
	}

	var insights []entities.Insight
	for _, layer := range valueobjects.FixedLayers() {
		if present[layer] {
			continue
		}

		insight := a.newInsight(
			RuleMissingLayer,
			valueobjects.InsightGap,
			valueobjects.SeverityMedium,
			fmt.Sprintf("Missing %s layer", layer.Title()),
			fmt.Sprintf("The model has no elements in the %s layer.", layer.Title()),
		)
		insight.AffectedLayers = []valueobjects.Layer{layer}
		insight.Recommendations = []string{
			fmt.Sprintf("Model the %s layer elements", layer.Title()),
			fmt.Sprintf("Relate %s elements to adjacent layers", layer.Title()),
		}
		insight.EstimatedImpact = "Incomplete traceability across layers"
		insight.EstimatedEffort = "medium"
		insights = append(insights, insight)
	}
	return insights
}

func (a *Analyzer) orphans(model *aggregates.Model) []entities.Insight {
	var insights []entities.Insight
	for _, element := range model.Elements() {
		if element.OutgoingCount() > 0 || model.IncomingCount(element.ID()) > 0 {
			continue
		}

		insight := a.newInsight(
			RuleOrphanElement,
			valueobjects.InsightGap,
			valueobjects.SeverityLow,
			fmt.Sprintf("Orphan element: %s", element.Name()),
			fmt.Sprintf("%s (%s) has no relationships to any other element.", element.Name(), element.Type()),
		)
		insight.AffectedElements = []valueobjects.ElementID{element.ID()}
		insight.AffectedLayers = []valueobjects.Layer{element.Layer()}
		insight.Recommendations = []string{
			"Connect the element to the elements it serves or depends on",
			"Remove the element if it is no longer relevant",
		}
		insight.EstimatedImpact = "Element purpose is unclear"
		insight.EstimatedEffort = "low"
		insights = append(insights, insight)
	}
	return insights
}

// weakAlignment checks that application elements serve the business layer.
// It is skipped while no application element has any relationship, since
// those elements are already reported as orphans.
func (a *Analyzer) weakAlignment(model *aggregates.Model) (entities.Insight, bool) {
	applications := model.ElementsInLayer(valueobjects.LayerApplication)
	business := model.ElementsInLayer(valueobjects.LayerBusiness)
	if len(applications) == 0 || len(business) == 0 {
		return entities.Insight{}, false
	}

	wired := false
	for _, app := range applications {
		if model.Coupling(app.ID()) > 0 {
			wired = true
			break
		}
	}
	if !wired {
		return entities.Insight{}, false
	}

	serving := 0
	for _, rel := range model.Relationships() {
		if rel.Type() != valueobjects.RelationshipServing {
			continue
		}
		source, err := model.Element(rel.SourceID())
		if err != nil {
			continue
		}
		target, err := model.Element(rel.TargetID())
		if err != nil {
			continue
		}
		if source.Layer() == valueobjects.LayerApplication && target.Layer() == valueobjects.LayerBusiness {
			serving++
		}
	}

	if float64(serving) >= float64(len(applications))*a.config.WeakAlignmentRatio {
		return entities.Insight{}, false
	}

	insight := a.newInsight(
		RuleWeakAlignment,
		valueobjects.InsightGap,
		valueobjects.SeverityHigh,
		"Weak business-application alignment",
		fmt.Sprintf(
			"Only %d serving relationships connect %d application elements to the business layer.",
			serving, len(applications),
		),
	)
	for _, app := range applications {
		insight.AffectedElements = append(insight.AffectedElements, app.ID())
	}
	insight.AffectedLayers = []valueobjects.Layer{valueobjects.LayerBusiness, valueobjects.LayerApplication}
	insight.Recommendations = []string{
		"Map each application element to the business services it supports",
		"Retire application elements that serve no business need",
	}
	insight.EstimatedImpact = "IT investments may not support business goals"
	insight.EstimatedEffort = "medium"
	insight.Confidence = 0.8
	return insight, true
}
