package decision

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"archintel/domain/config"
	"archintel/domain/core/valueobjects"
	pkgerrors "archintel/pkg/errors"
	"archintel/pkg/utils"
)

// Score gaps between the winner and the runner-up that raise confidence
const (
	veryHighConfidenceGap = 0.30
	highConfidenceGap     = 0.20
	mediumConfidenceGap   = 0.10
)

// Engine scores options and builds decision results. It is stateless apart
// from its configuration; history is kept by the caller.
type Engine struct {
	config   *config.DomainConfig
	enricher ReasoningEnricher
	now      func() time.Time
}

// NewEngine creates an engine with the default domain configuration.
// enricher may be nil, in which case only rule-based reasoning is produced.
func NewEngine(enricher ReasoningEnricher) *Engine {
	return NewEngineWithConfig(nil, enricher)
}

// NewEngineWithConfig creates an engine with custom thresholds
func NewEngineWithConfig(cfg *config.DomainConfig, enricher ReasoningEnricher) *Engine {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Engine{config: cfg, enricher: enricher, now: time.Now}
}

// HasEnricher reports whether an AI reasoning enricher is configured
func (e *Engine) HasEnricher() bool {
	return e.enricher != nil
}

// MakeDecision ranks the options for the context and builds the full result.
// When useAI is set and an enricher is configured, the enricher may replace the
// reasoning text; it never changes scores, ranking or selection. Enrichment
// failures are recorded as warnings and the rule-based text is kept.
func (e *Engine) MakeDecision(ctx context.Context, dctx Context, options []Option, useAI bool) (*Result, error) {
	if len(options) == 0 {
		return nil, pkgerrors.NewEmptyOptionSetError()
	}

	prepared, err := prepareOptions(options)
	if err != nil {
		return nil, err
	}

	ranked := e.Rank(dctx.Type, prepared)
	winner := ranked[0]

	result := &Result{
		ID:                     uuid.New().String(),
		Context:                dctx,
		Recommended:            winner.Option,
		Score:                  winner.Score,
		Confidence:             confidenceFor(ranked),
		Alternatives:           ranked,
		ComparisonMatrix:       comparisonMatrix(prepared),
		RiskMitigation:         e.risks(winner.Option),
		RequiredApprovals:      e.approvals(dctx, winner.Option),
		GovernanceCheckpoints:  governanceCheckpoints(),
		ComplianceRequirements: complianceRequirements(dctx),
		KPIs:                   kpis(winner.Option),
		ReviewSchedule:         reviewSchedule(dctx.Urgency),
		Warnings:               []string{},
		DecidedAt:              e.now(),
	}

	plan, inconsistent := e.implementationPlan(winner.Option)
	result.ImplementationPlan = plan
	if inconsistent {
		result.ScheduleInconsistent = true
		days := winner.Option.TimeToImplement - e.config.PreparationDays - e.config.ValidationDays
		result.Warnings = append(result.Warnings, pkgerrors.NewScheduleInconsistencyError(winner.Option.ID, days).Message)
	}

	baseline := ruleBasedReasoning(dctx, winner, result.Confidence)
	result.BaselineReasoning = baseline
	result.Reasoning = baseline
	result.ReasoningSource = ReasoningRuleBased

	if useAI && e.enricher != nil {
		text, err := e.enricher.EnrichReasoning(ctx, ReasoningRequest{
			Context:           dctx,
			Recommended:       winner,
			Alternatives:      ranked,
			Confidence:        result.Confidence,
			BaselineReasoning: baseline,
		})
		switch {
		case err != nil:
			result.Warnings = append(result.Warnings, fmt.Sprintf("reasoning enrichment failed: %v", err))
		case strings.TrimSpace(text) == "":
			result.Warnings = append(result.Warnings, "reasoning enrichment returned no text")
		default:
			result.Reasoning = strings.TrimSpace(text)
			result.ReasoningSource = ReasoningAIEnriched
		}
	}

	return result, nil
}

// ValidateOptions reports the error MakeDecision would return for the option set
func ValidateOptions(options []Option) error {
	if len(options) == 0 {
		return pkgerrors.NewEmptyOptionSetError()
	}
	_, err := prepareOptions(options)
	return err
}

// Rank scores every option and orders them best first. Ties keep input order.
func (e *Engine) Rank(decisionType valueobjects.DecisionType, options []Option) []ScoredOption {
	weights := WeightsFor(decisionType)

	ranked := make([]ScoredOption, len(options))
	for i, option := range options {
		total, breakdown := score(option, weights, e.config.CostNormalizer)
		ranked[i] = ScoredOption{Option: option, Score: total, Breakdown: breakdown}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// confidenceFor derives confidence from the gap between the two best scores
func confidenceFor(ranked []ScoredOption) valueobjects.ConfidenceLevel {
	if len(ranked) < 2 {
		return valueobjects.ConfidenceMedium
	}

	gap := ranked[0].Score - ranked[1].Score
	switch {
	case gap > veryHighConfidenceGap:
		return valueobjects.ConfidenceVeryHigh
	case gap > highConfidenceGap:
		return valueobjects.ConfidenceHigh
	case gap > mediumConfidenceGap:
		return valueobjects.ConfidenceMedium
	default:
		return valueobjects.ConfidenceLow
	}
}

// prepareOptions validates options and assigns ids to options without one
func prepareOptions(options []Option) ([]Option, error) {
	prepared := make([]Option, len(options))
	seen := make(map[string]bool, len(options))

	for i, option := range options {
		option.ID = strings.TrimSpace(option.ID)
		if option.ID == "" {
			option.ID = fmt.Sprintf("option-%d", i+1)
		}
		if seen[option.ID] {
			return nil, pkgerrors.NewDuplicateIDError("option", option.ID)
		}
		seen[option.ID] = true

		if err := utils.ValidateStruct(option); err != nil {
			return nil, pkgerrors.Wrapf(err, "option %s", option.ID)
		}
		prepared[i] = option
	}
	return prepared, nil
}

func comparisonMatrix(options []Option) map[string]map[string]float64 {
	rows := map[string]func(Option) float64{
		"strategic_alignment": func(o Option) float64 { return o.StrategicAlignment },
		"technical_fit":       func(o Option) float64 { return o.TechnicalFit },
		"feasibility":         func(o Option) float64 { return o.Feasibility },
		"risk_level":          func(o Option) float64 { return o.RiskLevel },
		"complexity":          func(o Option) float64 { return o.Complexity },
		"cost":                func(o Option) float64 { return o.Cost },
		"time_to_implement":   func(o Option) float64 { return float64(o.TimeToImplement) },
	}

	matrix := make(map[string]map[string]float64, len(rows))
	for criterion, value := range rows {
		matrix[criterion] = make(map[string]float64, len(options))
		for _, option := range options {
			matrix[criterion][option.ID] = value(option)
		}
	}
	return matrix
}
