package entities

import (
	"strings"
	"time"

	"archintel/domain/core/valueobjects"
	pkgerrors "archintel/pkg/errors"
)

// OutgoingRef is a cached reference to a relationship leaving an element.
// The model aggregate keeps these in sync with its relationship collection.
type OutgoingRef struct {
	RelationshipID valueobjects.RelationshipID   `json:"relationship_id"`
	Type           valueobjects.RelationshipType `json:"type"`
	TargetID       valueobjects.ElementID        `json:"target_id"`
}

// Element is a typed, named node in the architecture graph
type Element struct {
	id          valueobjects.ElementID
	name        string
	elementType valueobjects.ElementType
	layer       valueobjects.Layer
	description string
	properties  map[string]interface{}
	tags        []string
	outgoing    []OutgoingRef
	createdAt   time.Time
	updatedAt   time.Time
}

// NewElement creates an element after checking that its type belongs to its layer
func NewElement(id valueobjects.ElementID, name string, elementType valueobjects.ElementType, layer valueobjects.Layer) (*Element, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("element id cannot be empty")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("element name cannot be empty")
	}

	if !layer.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown layer: " + string(layer))
	}

	if !elementType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown element type: " + string(elementType))
	}

	if !elementType.BelongsTo(layer) {
		return nil, pkgerrors.NewValidationError(
			"element type " + string(elementType) + " does not belong to layer " + string(layer),
		)
	}

	now := time.Now()
	return &Element{
		id:          id,
		name:        name,
		elementType: elementType,
		layer:       layer,
		properties:  make(map[string]interface{}),
		tags:        []string{},
		outgoing:    []OutgoingRef{},
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ID returns the element's identifier
func (e *Element) ID() valueobjects.ElementID {
	return e.id
}

// Name returns the element's name
func (e *Element) Name() string {
	return e.name
}

// Type returns the element type
func (e *Element) Type() valueobjects.ElementType {
	return e.elementType
}

// Layer returns the layer the element lives in
func (e *Element) Layer() valueobjects.Layer {
	return e.layer
}

// Description returns the free text description
func (e *Element) Description() string {
	return e.description
}

// SetDescription replaces the description
func (e *Element) SetDescription(description string) {
	e.description = strings.TrimSpace(description)
	e.updatedAt = time.Now()
}

// Property returns a single property value
func (e *Element) Property(key string) (interface{}, bool) {
	v, ok := e.properties[key]
	return v, ok
}

// Properties returns a copy of the open property map
func (e *Element) Properties() map[string]interface{} {
	props := make(map[string]interface{}, len(e.properties))
	for k, v := range e.properties {
		props[k] = v
	}
	return props
}

// SetProperty sets a property value
func (e *Element) SetProperty(key string, value interface{}) error {
	if strings.TrimSpace(key) == "" {
		return pkgerrors.NewValidationError("property key cannot be empty")
	}
	e.properties[key] = value
	e.updatedAt = time.Now()
	return nil
}

// AddTag adds a tag, ignoring duplicates
func (e *Element) AddTag(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return pkgerrors.NewValidationError("tag cannot be empty")
	}

	for _, t := range e.tags {
		if t == tag {
			return nil
		}
	}

	e.tags = append(e.tags, tag)
	e.updatedAt = time.Now()
	return nil
}

// Tags returns all tags
func (e *Element) Tags() []string {
	tags := make([]string, len(e.tags))
	copy(tags, e.tags)
	return tags
}

// Outgoing returns the cached outgoing relationship references
func (e *Element) Outgoing() []OutgoingRef {
	refs := make([]OutgoingRef, len(e.outgoing))
	copy(refs, e.outgoing)
	return refs
}

// OutgoingCount returns the number of cached outgoing relationships
func (e *Element) OutgoingCount() int {
	return len(e.outgoing)
}

// AttachOutgoing records a relationship leaving this element.
// Only the model aggregate should call this.
func (e *Element) AttachOutgoing(ref OutgoingRef) error {
	for _, existing := range e.outgoing {
		if existing.RelationshipID == ref.RelationshipID {
			return pkgerrors.NewDuplicateIDError("relationship", ref.RelationshipID.String())
		}
	}

	e.outgoing = append(e.outgoing, ref)
	e.updatedAt = time.Now()
	return nil
}

// DetachOutgoing removes the cache entry for a relationship.
// It reports whether an entry was removed.
func (e *Element) DetachOutgoing(relationshipID valueobjects.RelationshipID) bool {
	kept := make([]OutgoingRef, 0, len(e.outgoing))
	found := false

	for _, ref := range e.outgoing {
		if ref.RelationshipID == relationshipID {
			found = true
			continue
		}
		kept = append(kept, ref)
	}

	if found {
		e.outgoing = kept
		e.updatedAt = time.Now()
	}
	return found
}

// CreatedAt returns when the element was created
func (e *Element) CreatedAt() time.Time {
	return e.createdAt
}

// UpdatedAt returns when the element was last updated
func (e *Element) UpdatedAt() time.Time {
	return e.updatedAt
}
