package decision

import (
	"context"
	"fmt"
	"strings"

	"archintel/domain/core/valueobjects"
)

// ReasoningRequest carries everything an enricher may use to explain a decision
type ReasoningRequest struct {
	Context           Context
	Recommended       ScoredOption
	Alternatives      []ScoredOption
	Confidence        valueobjects.ConfidenceLevel
	BaselineReasoning string
}

// ReasoningEnricher rewrites the explanation of an already made decision,
// typically with a language model. It must not be relied on for selection.
type ReasoningEnricher interface {
	EnrichReasoning(ctx context.Context, req ReasoningRequest) (string, error)
}

// ruleBasedReasoning renders the deterministic justification for the winner
func ruleBasedReasoning(dctx Context, winner ScoredOption, confidence valueobjects.ConfidenceLevel) string {
	option := winner.Option

	var b strings.Builder
	fmt.Fprintf(&b, "Recommended option: %s.", option.Name)
	if dctx.Scope != "" {
		fmt.Fprintf(&b, " Decision scope: %s (%s).", dctx.Scope, decisionTypeLabel(dctx.Type))
	}
	fmt.Fprintf(&b,
		" Strategic alignment %.2f, technical fit %.2f, feasibility %.2f, risk level %.2f.",
		option.StrategicAlignment, option.TechnicalFit, option.Feasibility, option.RiskLevel,
	)
	fmt.Fprintf(&b, " Estimated cost %s over %d days.", FormatCost(option.Cost), option.TimeToImplement)

	if benefits := topBenefits(option.Benefits, 3); len(benefits) > 0 {
		fmt.Fprintf(&b, " Key benefits: %s.", strings.Join(benefits, "; "))
	}

	fmt.Fprintf(&b, " Composite score %.3f with %s confidence.", winner.Score, strings.ReplaceAll(string(confidence), "_", " "))
	return b.String()
}

func decisionTypeLabel(t valueobjects.DecisionType) string {
	if t == "" {
		return "unspecified"
	}
	return string(t)
}

func topBenefits(benefits []string, n int) []string {
	if len(benefits) > n {
		return benefits[:n]
	}
	return benefits
}

// FormatCost renders a currency amount with thousands separators
func FormatCost(cost float64) string {
	whole := fmt.Sprintf("%.0f", cost)
	if len(whole) <= 3 {
		return "$" + whole
	}

	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)
	return "$" + strings.Join(parts, ",")
}
