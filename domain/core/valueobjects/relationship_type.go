package valueobjects

import (
	"fmt"

	pkgerrors "archintel/pkg/errors"
)

// RelationshipType defines the kind of directed edge between two elements
type RelationshipType string

const (
	RelationshipComposition    RelationshipType = "composition"
	RelationshipAggregation    RelationshipType = "aggregation"
	RelationshipAssignment     RelationshipType = "assignment"
	RelationshipRealization    RelationshipType = "realization"
	RelationshipServing        RelationshipType = "serving"
	RelationshipAccess         RelationshipType = "access"
	RelationshipInfluence      RelationshipType = "influence"
	RelationshipTriggering     RelationshipType = "triggering"
	RelationshipFlow           RelationshipType = "flow"
	RelationshipSpecialization RelationshipType = "specialization"
	RelationshipAssociation    RelationshipType = "association"
)

var relationshipTypes = []RelationshipType{
	RelationshipComposition,
	RelationshipAggregation,
	RelationshipAssignment,
	RelationshipRealization,
	RelationshipServing,
	RelationshipAccess,
	RelationshipInfluence,
	RelationshipTriggering,
	RelationshipFlow,
	RelationshipSpecialization,
	RelationshipAssociation,
}

// RelationshipTypes returns every relationship type
func RelationshipTypes() []RelationshipType {
	out := make([]RelationshipType, len(relationshipTypes))
	copy(out, relationshipTypes)
	return out
}

// IsValid reports whether the relationship type is known
func (t RelationshipType) IsValid() bool {
	for _, known := range relationshipTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseRelationshipType converts a string to a RelationshipType
func ParseRelationshipType(s string) (RelationshipType, error) {
	t := RelationshipType(s)
	if !t.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown relationship type: %q", s))
	}
	return t, nil
}
