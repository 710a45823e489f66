package entities

import (
	"strings"
	"time"

	"archintel/domain/core/valueobjects"
	pkgerrors "archintel/pkg/errors"
)

// Relationship is a typed, directed edge between two elements
type Relationship struct {
	id               valueobjects.RelationshipID
	sourceID         valueobjects.ElementID
	targetID         valueobjects.ElementID
	relationshipType valueobjects.RelationshipType
	name             string
	properties       map[string]interface{}
	createdAt        time.Time
}

// NewRelationship creates a relationship. Endpoint existence is checked by the model.
func NewRelationship(
	id valueobjects.RelationshipID,
	sourceID, targetID valueobjects.ElementID,
	relationshipType valueobjects.RelationshipType,
) (*Relationship, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("relationship id cannot be empty")
	}
	if sourceID.IsZero() || targetID.IsZero() {
		return nil, pkgerrors.NewValidationError("relationship source and target are required")
	}
	if !relationshipType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown relationship type: " + string(relationshipType))
	}

	return &Relationship{
		id:               id,
		sourceID:         sourceID,
		targetID:         targetID,
		relationshipType: relationshipType,
		properties:       make(map[string]interface{}),
		createdAt:        time.Now(),
	}, nil
}

// ID returns the relationship's identifier
func (r *Relationship) ID() valueobjects.RelationshipID {
	return r.id
}

// SourceID returns the source element id
func (r *Relationship) SourceID() valueobjects.ElementID {
	return r.sourceID
}

// TargetID returns the target element id
func (r *Relationship) TargetID() valueobjects.ElementID {
	return r.targetID
}

// Type returns the relationship type
func (r *Relationship) Type() valueobjects.RelationshipType {
	return r.relationshipType
}

// Name returns the optional relationship label
func (r *Relationship) Name() string {
	return r.name
}

// SetName sets the relationship label
func (r *Relationship) SetName(name string) {
	r.name = strings.TrimSpace(name)
}

// Properties returns a copy of the property map
func (r *Relationship) Properties() map[string]interface{} {
	props := make(map[string]interface{}, len(r.properties))
	for k, v := range r.properties {
		props[k] = v
	}
	return props
}

// SetProperty sets a property value
func (r *Relationship) SetProperty(key string, value interface{}) error {
	if strings.TrimSpace(key) == "" {
		return pkgerrors.NewValidationError("property key cannot be empty")
	}
	r.properties[key] = value
	return nil
}

// Touches reports whether the relationship starts or ends at the element
func (r *Relationship) Touches(id valueobjects.ElementID) bool {
	return r.sourceID == id || r.targetID == id
}

// CreatedAt returns when the relationship was created
func (r *Relationship) CreatedAt() time.Time {
	return r.createdAt
}
