package valueobjects

import (
	"fmt"

	pkgerrors "archintel/pkg/errors"
)

// InsightType classifies a discovered structural fact
type InsightType string

const (
	InsightGap          InsightType = "gap"
	InsightRisk         InsightType = "risk"
	InsightPattern      InsightType = "pattern"
	InsightOptimization InsightType = "optimization"
)

// Severity ranks insights and impact assessments
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Severities returns every severity from most to least severe
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}
}

// IsValid reports whether the severity is known
func (s Severity) IsValid() bool {
	return s.Rank() >= 0
}

// Rank returns 0 for critical up to 4 for info, or -1 if unknown
func (s Severity) Rank() int {
	for i, known := range Severities() {
		if s == known {
			return i
		}
	}
	return -1
}

// AtLeast reports whether s is as severe as other or more
func (s Severity) AtLeast(other Severity) bool {
	return s.IsValid() && other.IsValid() && s.Rank() <= other.Rank()
}

// ParseSeverity converts a string to a Severity
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown severity: %q", s))
	}
	return sev, nil
}
