package decision

import (
	"math"

	"archintel/domain/core/valueobjects"
)

// Criterion names one input of the composite score
type Criterion string

const (
	CriterionStrategic   Criterion = "strategic_alignment"
	CriterionTechnical   Criterion = "technical_fit"
	CriterionFeasibility Criterion = "feasibility"
	CriterionRisk        Criterion = "risk"
	CriterionComplexity  Criterion = "complexity"
	CriterionCost        Criterion = "cost"
)

// Criteria returns every criterion in scoring order
func Criteria() []Criterion {
	return []Criterion{
		CriterionStrategic, CriterionTechnical, CriterionFeasibility,
		CriterionRisk, CriterionComplexity, CriterionCost,
	}
}

// Weights is a weight profile over the six criteria
type Weights struct {
	Strategic   float64
	Technical   float64
	Feasibility float64
	Risk        float64
	Complexity  float64
	Cost        float64
}

// Sum returns the total weight of the profile
func (w Weights) Sum() float64 {
	return w.Strategic + w.Technical + w.Feasibility + w.Risk + w.Complexity + w.Cost
}

// DefaultWeights is used for decision types without a profile
var DefaultWeights = Weights{Strategic: 0.2, Technical: 0.2, Feasibility: 0.2, Risk: 0.2}

var weightProfiles = map[valueobjects.DecisionType]Weights{
	valueobjects.DecisionStrategic:      {Strategic: 0.40, Technical: 0.15, Feasibility: 0.20, Risk: 0.15, Complexity: 0.05, Cost: 0.05},
	valueobjects.DecisionTactical:       {Strategic: 0.20, Technical: 0.20, Feasibility: 0.30, Risk: 0.15, Complexity: 0.10, Cost: 0.05},
	valueobjects.DecisionTechnical:      {Strategic: 0.15, Technical: 0.40, Feasibility: 0.20, Risk: 0.15, Complexity: 0.10},
	valueobjects.DecisionOrganizational: {Strategic: 0.30, Technical: 0.10, Feasibility: 0.30, Risk: 0.20, Complexity: 0.10},
	valueobjects.DecisionGovernance:     {Strategic: 0.30, Technical: 0.10, Feasibility: 0.20, Risk: 0.30, Complexity: 0.10},
	valueobjects.DecisionRisk:           {Strategic: 0.15, Technical: 0.15, Feasibility: 0.20, Risk: 0.40, Complexity: 0.10},
	valueobjects.DecisionCompliance:     {Strategic: 0.20, Technical: 0.15, Feasibility: 0.20, Risk: 0.35, Complexity: 0.10},
	valueobjects.DecisionOptimization:   {Strategic: 0.15, Technical: 0.25, Feasibility: 0.20, Risk: 0.10, Complexity: 0.10, Cost: 0.20},
}

// WeightsFor returns the profile for a decision type, falling back to DefaultWeights
func WeightsFor(t valueobjects.DecisionType) Weights {
	if w, ok := weightProfiles[t]; ok {
		return w
	}
	return DefaultWeights
}

// criterionValues maps an option onto the six criteria, each oriented so that higher is better
func criterionValues(option Option, costNormalizer float64) map[Criterion]float64 {
	return map[Criterion]float64{
		CriterionStrategic:   option.StrategicAlignment,
		CriterionTechnical:   option.TechnicalFit,
		CriterionFeasibility: option.Feasibility,
		CriterionRisk:        1 - option.RiskLevel,
		CriterionComplexity:  1 - option.Complexity,
		CriterionCost:        1 - math.Min(option.Cost/costNormalizer, 1),
	}
}

// score returns the weighted composite score and each criterion's contribution
func score(option Option, w Weights, costNormalizer float64) (float64, map[Criterion]float64) {
	values := criterionValues(option, costNormalizer)
	weights := map[Criterion]float64{
		CriterionStrategic:   w.Strategic,
		CriterionTechnical:   w.Technical,
		CriterionFeasibility: w.Feasibility,
		CriterionRisk:        w.Risk,
		CriterionComplexity:  w.Complexity,
		CriterionCost:        w.Cost,
	}

	total := 0.0
	breakdown := make(map[Criterion]float64, len(values))
	for _, c := range Criteria() {
		contribution := weights[c] * values[c]
		breakdown[c] = contribution
		total += contribution
	}
	return total, breakdown
}
