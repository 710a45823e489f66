package valueobjects

import (
	"strings"

	pkgerrors "archintel/pkg/errors"
)

// ElementID identifies an element. Ids are assigned by the caller and only need
// to be non-empty and unique within a model.
type ElementID string

// NewElementID creates an ElementID from a caller supplied string
func NewElementID(id string) (ElementID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", pkgerrors.NewValidationError("element ID cannot be empty")
	}
	return ElementID(id), nil
}

// String returns the string representation of the ElementID
func (id ElementID) String() string {
	return string(id)
}

// IsZero checks if the ElementID is the zero value
func (id ElementID) IsZero() bool {
	return id == ""
}

// RelationshipID identifies a relationship
type RelationshipID string

// NewRelationshipID creates a RelationshipID from a caller supplied string
func NewRelationshipID(id string) (RelationshipID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", pkgerrors.NewValidationError("relationship ID cannot be empty")
	}
	return RelationshipID(id), nil
}

// String returns the string representation of the RelationshipID
func (id RelationshipID) String() string {
	return string(id)
}

// IsZero checks if the RelationshipID is the zero value
func (id RelationshipID) IsZero() bool {
	return id == ""
}

// ElementIDs converts raw strings into element ids, skipping blanks
func ElementIDs(ids ...string) []ElementID {
	out := make([]ElementID, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		out = append(out, ElementID(strings.TrimSpace(id)))
	}
	return out
}
