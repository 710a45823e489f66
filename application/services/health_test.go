package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"archintel/domain/config"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
)

func insightsOf(severities ...valueobjects.Severity) []entities.Insight {
	insights := make([]entities.Insight, len(severities))
	for i, severity := range severities {
		insights[i] = entities.Insight{Severity: severity}
	}
	return insights
}

func repeat(severity valueobjects.Severity, n int) []valueobjects.Severity {
	out := make([]valueobjects.Severity, n)
	for i := range out {
		out[i] = severity
	}
	return out
}

func TestScoreHealth(t *testing.T) {
	critical := valueobjects.SeverityCritical
	high := valueobjects.SeverityHigh
	medium := valueobjects.SeverityMedium

	tests := []struct {
		name       string
		severities []valueobjects.Severity
		score      int
		status     HealthStatus
	}{
		{"no insights", nil, 100, HealthHealthy},
		{"low and info are free", []valueobjects.Severity{valueobjects.SeverityLow, valueobjects.SeverityInfo}, 100, HealthHealthy},
		{"one critical", []valueobjects.Severity{critical}, 80, HealthHealthy},
		{"two high one medium", []valueobjects.Severity{high, high, medium}, 75, HealthFair},
		{"boundary fair", []valueobjects.Severity{critical, critical}, 60, HealthFair},
		{"at risk", []valueobjects.Severity{critical, critical, medium}, 55, HealthAtRisk},
		{"boundary at risk", []valueobjects.Severity{critical, critical, critical}, 40, HealthAtRisk},
		{"critical tier", []valueobjects.Severity{critical, critical, critical, medium}, 35, HealthCritical},
		{"clamped at zero", repeat(critical, 6), 0, HealthCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health := ScoreHealth(insightsOf(tt.severities...), nil)
			assert.Equal(t, tt.score, health.Score)
			assert.Equal(t, tt.status, health.Status)
			assert.Equal(t, len(tt.severities), health.TotalInsights)
		})
	}
}

func TestScoreHealth_Monotonic(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	var insights []entities.Insight
	previous := ScoreHealth(insights, cfg).Score

	for _, severity := range []valueobjects.Severity{
		valueobjects.SeverityMedium,
		valueobjects.SeverityLow,
		valueobjects.SeverityHigh,
		valueobjects.SeverityCritical,
		valueobjects.SeverityInfo,
		valueobjects.SeverityCritical,
		valueobjects.SeverityCritical,
		valueobjects.SeverityCritical,
		valueobjects.SeverityCritical,
	} {
		insights = append(insights, entities.Insight{Severity: severity})
		score := ScoreHealth(insights, cfg).Score
		assert.LessOrEqual(t, score, previous, "adding a %s insight raised the score", severity)
		assert.GreaterOrEqual(t, score, 0)
		previous = score
	}
	assert.Equal(t, 0, previous)
}

func TestScoreHealth_CustomPenalties(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MediumPenalty = 15

	health := ScoreHealth(insightsOf(valueobjects.SeverityMedium), cfg)
	assert.Equal(t, 85, health.Score)
	assert.Equal(t, 1, health.Medium)
}
