package analysis

import (
	"fmt"
	"strings"

	"archintel/domain/core/aggregates"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
)

func (a *Analyzer) analyzeDependencies(model *aggregates.Model) []entities.Insight {
	var insights []entities.Insight

	for _, element := range model.Elements() {
		coupling := model.Coupling(element.ID())
		if coupling <= a.config.HighCouplingThreshold {
			continue
		}

		insight := a.newInsight(
			RuleHighCoupling,
			valueobjects.InsightRisk,
			valueobjects.SeverityMedium,
			fmt.Sprintf("High coupling: %s", element.Name()),
			fmt.Sprintf("%s participates in %d relationships (threshold %d).", element.Name(), coupling, a.config.HighCouplingThreshold),
		)
		insight.AffectedElements = []valueobjects.ElementID{element.ID()}
		insight.AffectedLayers = []valueobjects.Layer{element.Layer()}
		insight.Recommendations = []string{
			"Split the element along its responsibilities",
			"Introduce an interface or facade to decouple consumers",
		}
		insight.EstimatedImpact = "Changes ripple to many dependents"
		insight.EstimatedEffort = "high"
		insight.Confidence = 0.9
		insights = append(insights, insight)
	}

	for _, cycle := range FindCycles(model) {
		names := make([]string, len(cycle))
		for i, id := range cycle {
			names[i] = id.String()
		}

		insight := a.newInsight(
			RuleCycle,
			valueobjects.InsightRisk,
			valueobjects.SeverityHigh,
			fmt.Sprintf("Circular dependency between %d elements", len(cycle)),
			fmt.Sprintf("Dependency cycle: %s -> %s", strings.Join(names, " -> "), names[0]),
		)
		insight.AffectedElements = cycle
		insight.AffectedLayers = layersOf(model, cycle)
		insight.Recommendations = []string{
			"Break the cycle by inverting one dependency",
			"Extract the shared concern into a separate element",
		}
		insight.EstimatedImpact = "Elements in the cycle cannot be changed or deployed independently"
		insight.EstimatedEffort = "medium"
		insights = append(insights, insight)
	}

	return insights
}

// FindCycles returns the distinct cycles of the outgoing-relationship graph.
//
// A depth-first search starts from every element in insertion order with a
// fresh visited set. A relationship leading back to an element on the current
// path yields the path slice from that element. Each slice is rotated so its
// smallest id comes first and cycles already seen in that form are dropped, so
// every rotation class is reported once, in discovery order.
func FindCycles(model *aggregates.Model) [][]valueobjects.ElementID {
	var cycles [][]valueobjects.ElementID
	seen := make(map[string]bool)

	for _, start := range model.Elements() {
		visited := make(map[valueobjects.ElementID]bool)
		onPath := make(map[valueobjects.ElementID]int)
		var path []valueobjects.ElementID

		var visit func(id valueobjects.ElementID)
		visit = func(id valueobjects.ElementID) {
			visited[id] = true
			onPath[id] = len(path)
			path = append(path, id)

			element, err := model.Element(id)
			if err == nil {
				for _, ref := range element.Outgoing() {
					if idx, ok := onPath[ref.TargetID]; ok {
						cycle := normalizeCycle(path[idx:])
						key := cycleKey(cycle)
						if !seen[key] {
							seen[key] = true
							cycles = append(cycles, cycle)
						}
						continue
					}
					if !visited[ref.TargetID] {
						visit(ref.TargetID)
					}
				}
			}

			path = path[:len(path)-1]
			delete(onPath, id)
		}

		visit(start.ID())
	}

	return cycles
}

func normalizeCycle(path []valueobjects.ElementID) []valueobjects.ElementID {
	smallest := 0
	for i, id := range path {
		if id < path[smallest] {
			smallest = i
		}
	}

	cycle := make([]valueobjects.ElementID, 0, len(path))
	cycle = append(cycle, path[smallest:]...)
	cycle = append(cycle, path[:smallest]...)
	return cycle
}

func cycleKey(cycle []valueobjects.ElementID) string {
	parts := make([]string, len(cycle))
	for i, id := range cycle {
		parts[i] = id.String()
	}
	return strings.Join(parts, "->")
}
