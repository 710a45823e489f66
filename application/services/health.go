package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"archintel/domain/config"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
	"archintel/domain/events"
)

// HealthStatus is the tier of an architecture health score
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthFair     HealthStatus = "fair"
	HealthAtRisk   HealthStatus = "at_risk"
	HealthCritical HealthStatus = "critical"
)

// Health summarizes accumulated insights into a score
type Health struct {
	Score         int          `json:"score"`
	Status        HealthStatus `json:"status"`
	Critical      int          `json:"critical"`
	High          int          `json:"high"`
	Medium        int          `json:"medium"`
	TotalInsights int          `json:"total_insights"`
}

// GetArchitectureHealth scores the accumulated insights and logs the assessment
func (c *Controller) GetArchitectureHealth(ctx context.Context) Health {
	c.mu.Lock()
	health := c.computeHealth()
	activity := c.appendActivity(events.ActivityHealthAssessed,
		fmt.Sprintf("Architecture health %d (%s)", health.Score, health.Status),
		map[string]interface{}{"score": health.Score, "status": string(health.Status)},
	)
	c.mu.Unlock()

	c.logger.Debug("Architecture health assessed",
		zap.Int("score", health.Score),
		zap.String("status", string(health.Status)),
	)
	if c.metrics != nil {
		c.metrics.RecordHealth(c.sessionID, health.Score)
	}
	c.publish(ctx, []events.DomainEvent{activity})
	return health
}

// computeHealth applies the severity penalties. Callers must hold the lock.
func (c *Controller) computeHealth() Health {
	return ScoreHealth(c.insights, c.config)
}

// ScoreHealth computes max(0, 100 - penalties) over insights and maps it to a tier
func ScoreHealth(insights []entities.Insight, cfg *config.DomainConfig) Health {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	counts := entities.CountBySeverity(insights)
	critical := counts[valueobjects.SeverityCritical]
	high := counts[valueobjects.SeverityHigh]
	medium := counts[valueobjects.SeverityMedium]

	score := 100 - cfg.CriticalPenalty*critical - cfg.HighPenalty*high - cfg.MediumPenalty*medium
	if score < 0 {
		score = 0
	}

	var status HealthStatus
	switch {
	case score >= cfg.HealthyThreshold:
		status = HealthHealthy
	case score >= cfg.FairThreshold:
		status = HealthFair
	case score >= cfg.AtRiskThreshold:
		status = HealthAtRisk
	default:
		status = HealthCritical
	}

	return Health{
		Score:         score,
		Status:        status,
		Critical:      critical,
		High:          high,
		Medium:        medium,
		TotalInsights: len(insights),
	}
}
