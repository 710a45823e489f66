package analysis

import (
	"fmt"

	"archintel/domain/core/aggregates"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
)

func (a *Analyzer) recognizePatterns(model *aggregates.Model) []entities.Insight {
	var insights []entities.Insight

	layers := model.LayersPresent()
	if len(layers) >= a.config.LayeredPatternMinLayers {
		insight := a.newInsight(
			RuleLayered,
			valueobjects.InsightPattern,
			valueobjects.SeverityInfo,
			"Layered architecture",
			fmt.Sprintf("Elements span %d layers.", len(layers)),
		)
		insight.AffectedLayers = layers
		insight.Recommendations = []string{"Keep dependencies flowing from upper to lower layers"}
		insight.Confidence = 0.8
		insights = append(insights, insight)
	}

	var components []*entities.Element
	for _, element := range model.Elements() {
		if element.Type() == valueobjects.ElementApplicationComponent {
			components = append(components, element)
		}
	}

	if len(components) > a.config.MicroservicesMinCount {
		total := 0
		for _, component := range components {
			total += component.OutgoingCount()
		}
		average := float64(total) / float64(len(components))

		if average < a.config.MicroservicesMaxCoupling {
			insight := a.newInsight(
				RuleMicroservices,
				valueobjects.InsightPattern,
				valueobjects.SeverityInfo,
				"Microservices pattern",
				fmt.Sprintf("%d application components with an average of %.2f outgoing relationships.", len(components), average),
			)
			for _, component := range components {
				insight.AffectedElements = append(insight.AffectedElements, component.ID())
			}
			insight.AffectedLayers = []valueobjects.Layer{valueobjects.LayerApplication}
			insight.Recommendations = []string{
				"Define service contracts for every component",
				"Introduce centralized observability across services",
			}
			insight.Confidence = 0.7
			insights = append(insights, insight)
		}
	}

	return insights
}
