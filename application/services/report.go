package services

import (
	"fmt"
	"strings"

	"archintel/domain/core/valueobjects"
	"archintel/domain/services/decision"
)

const reportRecentActivities = 10

// GenerateReport renders the session state as text
func (c *Controller) GenerateReport() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	health := c.computeHealth()
	var b strings.Builder

	fmt.Fprintf(&b, "Architecture Report: %s\n", c.name)
	fmt.Fprintf(&b, "Session: %s\n", c.sessionID)
	fmt.Fprintf(&b, "Generated: %s\n", c.now().UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Current phase: %s\n", c.phase)
	fmt.Fprintf(&b, "Autonomous mode: %t\n\n", c.autonomous)

	b.WriteString("Model\n")
	fmt.Fprintf(&b, "  Elements: %d\n", c.model.ElementCount())
	fmt.Fprintf(&b, "  Relationships: %d\n", c.model.RelationshipCount())
	counts := c.model.CountByLayer()
	for _, layer := range valueobjects.AllLayers() {
		if counts[layer] > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", layer.Title(), counts[layer])
		}
	}

	b.WriteString("\nHealth\n")
	fmt.Fprintf(&b, "  Score: %d/100 (%s)\n", health.Score, health.Status)

	b.WriteString("\nInsights\n")
	bySeverity := make(map[valueobjects.Severity]int)
	for _, insight := range c.insights {
		bySeverity[insight.Severity]++
	}
	for _, severity := range valueobjects.Severities() {
		fmt.Fprintf(&b, "  %s: %d\n", severity, bySeverity[severity])
	}

	b.WriteString("\nDecisions\n")
	decisions := c.history.All()
	if len(decisions) == 0 {
		b.WriteString("  none\n")
	}
	for i, result := range decisions {
		fmt.Fprintf(&b, "  %d. [%s] %s -> %s (score %.3f, %s confidence, cost %s)\n",
			i+1, result.Context.Phase, result.Context.Scope, result.Recommended.Name,
			result.Score, result.Confidence, decision.FormatCost(result.Recommended.Cost))
	}

	if len(c.actionPlans) > 0 {
		b.WriteString("\nAction plans\n")
		for _, plan := range c.actionPlans {
			fmt.Fprintf(&b, "  - [%s] %s\n", plan.Severity, plan.Title)
		}
	}

	b.WriteString("\nRecent activity\n")
	start := 0
	if len(c.eventLog) > reportRecentActivities {
		start = len(c.eventLog) - reportRecentActivities
	}
	for _, activity := range c.eventLog[start:] {
		fmt.Fprintf(&b, "  #%d %s %s: %s\n",
			activity.Sequence(), activity.Timestamp.UTC().Format("15:04:05"), activity.EventType, activity.Summary)
	}

	return b.String()
}
