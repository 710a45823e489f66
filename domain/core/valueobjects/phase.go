package valueobjects

import (
	"fmt"

	pkgerrors "archintel/pkg/errors"
)

// Phase is a stage of the architecture development cycle
type Phase string

const (
	PhasePreliminary              Phase = "preliminary"
	PhaseArchitectureVision       Phase = "architecture_vision"
	PhaseBusinessArchitecture     Phase = "business_architecture"
	PhaseInformationSystems       Phase = "information_systems"
	PhaseTechnologyArchitecture   Phase = "technology_architecture"
	PhaseOpportunitiesSolutions   Phase = "opportunities_solutions"
	PhaseMigrationPlanning        Phase = "migration_planning"
	PhaseImplementationGovernance Phase = "implementation_governance"
	PhaseChangeManagement         Phase = "change_management"
	PhaseRequirementsManagement   Phase = "requirements_management"
)

var phases = []Phase{
	PhasePreliminary,
	PhaseArchitectureVision,
	PhaseBusinessArchitecture,
	PhaseInformationSystems,
	PhaseTechnologyArchitecture,
	PhaseOpportunitiesSolutions,
	PhaseMigrationPlanning,
	PhaseImplementationGovernance,
	PhaseChangeManagement,
	PhaseRequirementsManagement,
}

// Phases returns every phase in cycle order
func Phases() []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases)
	return out
}

// IsValid reports whether the phase is known
func (p Phase) IsValid() bool {
	for _, known := range phases {
		if p == known {
			return true
		}
	}
	return false
}

// DefaultLayer is the layer a phase mostly works on
func (p Phase) DefaultLayer() Layer {
	switch p {
	case PhasePreliminary, PhaseArchitectureVision, PhaseRequirementsManagement:
		return LayerMotivation
	case PhaseBusinessArchitecture:
		return LayerBusiness
	case PhaseInformationSystems:
		return LayerApplication
	case PhaseTechnologyArchitecture:
		return LayerTechnology
	case PhaseOpportunitiesSolutions, PhaseMigrationPlanning, PhaseImplementationGovernance:
		return LayerImplementation
	case PhaseChangeManagement:
		return LayerStrategy
	default:
		return LayerMotivation
	}
}

// ParsePhase converts a string to a Phase
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown phase: %q", s))
	}
	return p, nil
}
