package decision

import (
	"fmt"

	"archintel/domain/core/valueobjects"
)

// implementationPlan builds the three-phase timeline. The implementation phase
// gets whatever time is left after preparation and validation; when nothing is
// left it is clamped to zero days and the plan is reported as inconsistent.
func (e *Engine) implementationPlan(option Option) ([]PlanPhase, bool) {
	prep := e.config.PreparationDays
	validation := e.config.ValidationDays

	implementation := option.TimeToImplement - prep - validation
	inconsistent := implementation <= 0
	if implementation < 0 {
		implementation = 0
	}

	return []PlanPhase{
		{
			Name:         "Preparation",
			StartDay:     0,
			DurationDays: prep,
			Activities: []string{
				"Confirm scope and success criteria",
				"Secure required approvals and budget",
				"Assemble the delivery team",
				"Baseline the current architecture",
			},
			Deliverables: []string{"Project charter", "Detailed work plan"},
		},
		{
			Name:         "Implementation",
			StartDay:     prep,
			DurationDays: implementation,
			Activities: []string{
				fmt.Sprintf("Deliver %s", option.Name),
				"Integrate with impacted systems",
				"Track progress against governance checkpoints",
			},
			Deliverables: []string{"Implemented solution", "Updated architecture models"},
		},
		{
			Name:         "Validation",
			StartDay:     prep + implementation,
			DurationDays: validation,
			Activities: []string{
				"Verify KPIs against targets",
				"Run acceptance testing with stakeholders",
				"Capture lessons learned",
			},
			Deliverables: []string{"Validation report", "Transition sign-off"},
		},
	}, inconsistent
}

func (e *Engine) risks(option Option) []RiskMitigation {
	risks := []RiskMitigation{}

	if option.Complexity > e.config.HighComplexityThreshold {
		risks = append(risks, RiskMitigation{
			Risk:       "High implementation complexity",
			Likelihood: "medium",
			Impact:     "high",
			Mitigation: "Deliver incrementally with experienced technical leadership",
		})
	}
	if option.Cost > e.config.BudgetOverrunThreshold {
		risks = append(risks, RiskMitigation{
			Risk:       "Budget overrun",
			Likelihood: "medium",
			Impact:     "high",
			Mitigation: "Introduce phased funding gates and monthly cost tracking",
		})
	}
	if option.TechnicalFit < e.config.LowTechnicalFitThreshold {
		risks = append(risks, RiskMitigation{
			Risk:       "Technical fit concerns",
			Likelihood: "high",
			Impact:     "medium",
			Mitigation: "Run a proof of concept before full commitment",
		})
	}
	return risks
}

// Approver roles
const (
	ApproverEnterpriseArchitect = "Enterprise Architect"
	ApproverFinance             = "Finance Director"
	ApproverCIO                 = "Chief Information Officer"
	ApproverCTO                 = "Chief Technology Officer"
	ApproverGovernanceBoard     = "Architecture Governance Board"
	ApproverRiskManagement      = "Risk Management Officer"
)

func (e *Engine) approvals(dctx Context, option Option) []string {
	candidates := []string{ApproverEnterpriseArchitect}

	if option.Cost > e.config.FinanceApprovalThreshold {
		candidates = append(candidates, ApproverFinance)
	}
	if dctx.Type == valueobjects.DecisionStrategic {
		candidates = append(candidates, ApproverCIO, ApproverCTO)
	}
	if dctx.Type == valueobjects.DecisionGovernance {
		candidates = append(candidates, ApproverGovernanceBoard)
	}
	if option.RiskLevel > e.config.RiskApprovalThreshold {
		candidates = append(candidates, ApproverRiskManagement)
	}

	seen := make(map[string]bool, len(candidates))
	approvals := make([]string, 0, len(candidates))
	for _, approver := range candidates {
		if !seen[approver] {
			seen[approver] = true
			approvals = append(approvals, approver)
		}
	}
	return approvals
}

func governanceCheckpoints() []string {
	return []string{
		"Architecture review at the end of preparation",
		"Design compliance review before implementation starts",
		"Progress review at 50% of implementation",
		"Post-implementation review after validation",
	}
}

func complianceRequirements(dctx Context) []string {
	reqs := []string{
		"Conform to enterprise architecture principles",
		"Record the decision in the architecture repository",
		"Meet security and data protection standards",
	}
	if dctx.Type == valueobjects.DecisionCompliance {
		reqs = append(reqs, "Obtain compliance officer sign-off")
	}
	return reqs
}

func kpis(option Option) []KPI {
	return []KPI{
		{Name: "Schedule adherence", Target: fmt.Sprintf("Delivered within %d days", option.TimeToImplement), Measurement: "Milestones completed on plan"},
		{Name: "Budget adherence", Target: fmt.Sprintf("Within 10%% of %s", FormatCost(option.Cost)), Measurement: "Actual versus estimated cost"},
		{Name: "Benefit realization", Target: fmt.Sprintf("%d expected benefits delivered", len(option.Benefits)), Measurement: "Benefits confirmed at validation"},
		{Name: "Stakeholder satisfaction", Target: "At least 80% satisfied", Measurement: "Post-implementation survey"},
	}
}

func reviewSchedule(urgency valueobjects.Urgency) string {
	switch urgency {
	case valueobjects.UrgencyCritical:
		return "Weekly during implementation, monthly after"
	case valueobjects.UrgencyHigh:
		return "Bi-weekly during implementation, quarterly after"
	default:
		return "Monthly during implementation, annually after"
	}
}
