package config

import "fmt"

// DomainConfig holds all configurable business rules and thresholds
type DomainConfig struct {
	// Model constraints
	MaxElementsPerModel      int
	MaxRelationshipsPerModel int
	MaxNameLength            int
	MaxTagsPerElement        int
	AllowSelfRelationships   bool

	// Gap and dependency analysis
	HighCouplingThreshold    int
	WeakAlignmentRatio       float64
	LayeredPatternMinLayers  int
	MicroservicesMinCount    int
	MicroservicesMaxCoupling float64
	RedundancyConfidence     float64

	// Impact assessment severity thresholds (strictly greater than)
	ImpactCriticalThreshold int
	ImpactHighThreshold     int
	ImpactMediumThreshold   int

	// Decision scoring
	CostNormalizer float64

	// Decision risk rules
	HighComplexityThreshold  float64
	BudgetOverrunThreshold   float64
	LowTechnicalFitThreshold float64

	// Decision approval rules
	FinanceApprovalThreshold float64
	RiskApprovalThreshold    float64

	// Implementation plan
	PreparationDays int
	ValidationDays  int

	// Architecture health
	CriticalPenalty     int
	HighPenalty         int
	MediumPenalty       int
	HealthyThreshold    int
	FairThreshold       int
	AtRiskThreshold     int
	PhaseOnTrackPercent float64
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Model constraints
		MaxElementsPerModel:      10000,
		MaxRelationshipsPerModel: 50000,
		MaxNameLength:            200,
		MaxTagsPerElement:        20,
		AllowSelfRelationships:   false,

		// Analysis
		HighCouplingThreshold:    10,
		WeakAlignmentRatio:       0.5,
		LayeredPatternMinLayers:  3,
		MicroservicesMinCount:    5,
		MicroservicesMaxCoupling: 3,
		RedundancyConfidence:     0.6,

		// Impact
		ImpactCriticalThreshold: 10,
		ImpactHighThreshold:     5,
		ImpactMediumThreshold:   2,

		// Decisions
		CostNormalizer:           1000000,
		HighComplexityThreshold:  0.7,
		BudgetOverrunThreshold:   500000,
		LowTechnicalFitThreshold: 0.6,
		FinanceApprovalThreshold: 100000,
		RiskApprovalThreshold:    0.7,
		PreparationDays:          14,
		ValidationDays:           14,

		// Health
		CriticalPenalty:     20,
		HighPenalty:         10,
		MediumPenalty:       5,
		HealthyThreshold:    80,
		FairThreshold:       60,
		AtRiskThreshold:     40,
		PhaseOnTrackPercent: 60,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Tighter limits for shared deployments
	config.MaxElementsPerModel = 5000
	config.MaxRelationshipsPerModel = 25000

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxElementsPerModel = 100000
	config.MaxRelationshipsPerModel = 500000
	config.AllowSelfRelationships = true

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxElementsPerModel <= 0 || c.MaxRelationshipsPerModel <= 0 {
		return fmt.Errorf("model limits must be positive")
	}
	if c.CostNormalizer <= 0 {
		return fmt.Errorf("cost normalizer must be positive, got %v", c.CostNormalizer)
	}
	if c.PreparationDays < 0 || c.ValidationDays < 0 {
		return fmt.Errorf("plan phase durations cannot be negative")
	}
	if !(c.ImpactCriticalThreshold >= c.ImpactHighThreshold && c.ImpactHighThreshold >= c.ImpactMediumThreshold) {
		return fmt.Errorf("impact thresholds must be ordered critical >= high >= medium")
	}
	if !(c.HealthyThreshold >= c.FairThreshold && c.FairThreshold >= c.AtRiskThreshold) {
		return fmt.Errorf("health thresholds must be ordered healthy >= fair >= at_risk")
	}
	if c.RedundancyConfidence < 0 || c.RedundancyConfidence > 1 {
		return fmt.Errorf("redundancy confidence must be within [0,1]")
	}
	return nil
}
