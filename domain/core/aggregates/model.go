package aggregates

import (
	"time"

	"github.com/google/uuid"

	"archintel/domain/config"
	"archintel/domain/core/entities"
	"archintel/domain/core/validators"
	"archintel/domain/core/valueobjects"
	"archintel/domain/events"
	pkgerrors "archintel/pkg/errors"
)

// ModelID represents a unique model identifier
type ModelID string

// NewModelID creates a new random ModelID
func NewModelID() ModelID {
	return ModelID(uuid.New().String())
}

// String returns the string representation
func (id ModelID) String() string {
	return string(id)
}

// Model is the aggregate root for an architecture model.
// It owns every element and relationship and keeps the outgoing caches of
// elements consistent with the relationship collection.
type Model struct {
	id                ModelID
	name              string
	elements          map[valueobjects.ElementID]*entities.Element
	elementOrder      []valueobjects.ElementID
	relationships     map[valueobjects.RelationshipID]*entities.Relationship
	relationshipOrder []valueobjects.RelationshipID
	incoming          map[valueobjects.ElementID][]valueobjects.RelationshipID
	validator         *validators.ElementValidator
	config            *config.DomainConfig
	createdAt         time.Time
	updatedAt         time.Time
	version           int
	events            []events.DomainEvent
}

// Dependency is a neighbor of an element reached through a relationship
type Dependency struct {
	Element          *entities.Element
	RelationshipID   valueobjects.RelationshipID
	RelationshipType valueobjects.RelationshipType
	Distance         int
}

// Dependencies groups the neighbors of an element by direction
type Dependencies struct {
	ElementID valueobjects.ElementID
	Outgoing  []Dependency
	Incoming  []Dependency
}

// NewModel creates an empty model with the default domain configuration
func NewModel(name string) *Model {
	return NewModelWithConfig(name, nil)
}

// NewModelWithConfig creates an empty model with custom configuration
func NewModelWithConfig(name string, cfg *config.DomainConfig) *Model {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	now := time.Now()
	return &Model{
		id:            NewModelID(),
		name:          name,
		elements:      make(map[valueobjects.ElementID]*entities.Element),
		relationships: make(map[valueobjects.RelationshipID]*entities.Relationship),
		incoming:      make(map[valueobjects.ElementID][]valueobjects.RelationshipID),
		validator:     validators.NewElementValidatorWithConfig(cfg),
		config:        cfg,
		createdAt:     now,
		updatedAt:     now,
		events:        []events.DomainEvent{},
	}
}

// ID returns the model's identifier
func (m *Model) ID() ModelID {
	return m.id
}

// Name returns the model's name
func (m *Model) Name() string {
	return m.name
}

// Version is incremented on every successful mutation
func (m *Model) Version() int {
	return m.version
}

// CreatedAt returns when the model was created
func (m *Model) CreatedAt() time.Time {
	return m.createdAt
}

// UpdatedAt returns when the model was last mutated
func (m *Model) UpdatedAt() time.Time {
	return m.updatedAt
}

// AddElement adds an element to the model
func (m *Model) AddElement(element *entities.Element) error {
	if element == nil {
		return pkgerrors.NewValidationError("element cannot be nil")
	}

	id := element.ID()
	if _, exists := m.elements[id]; exists {
		return pkgerrors.NewDuplicateIDError("element", id.String())
	}

	if len(m.elements) >= m.config.MaxElementsPerModel {
		return pkgerrors.NewLimitExceededError("elements", m.config.MaxElementsPerModel)
	}

	if err := m.validator.ValidateElement(element); err != nil {
		return err
	}

	m.elements[id] = element
	m.elementOrder = append(m.elementOrder, id)
	m.touch()

	m.addEvent(events.NewElementAdded(m.id.String(), m.version, id, element.Type(), element.Layer(), m.updatedAt))
	return nil
}

// AddRelationship connects two existing elements and updates the source's outgoing cache
func (m *Model) AddRelationship(relationship *entities.Relationship) error {
	if relationship == nil {
		return pkgerrors.NewValidationError("relationship cannot be nil")
	}

	id := relationship.ID()
	if _, exists := m.relationships[id]; exists {
		return pkgerrors.NewDuplicateIDError("relationship", id.String())
	}

	source, exists := m.elements[relationship.SourceID()]
	if !exists {
		return pkgerrors.NewUnknownElementError(relationship.SourceID().String())
	}
	if _, exists := m.elements[relationship.TargetID()]; !exists {
		return pkgerrors.NewUnknownElementError(relationship.TargetID().String())
	}

	if relationship.SourceID() == relationship.TargetID() && !m.config.AllowSelfRelationships {
		return pkgerrors.NewValidationError("cannot relate an element to itself")
	}

	if len(m.relationships) >= m.config.MaxRelationshipsPerModel {
		return pkgerrors.NewLimitExceededError("relationships", m.config.MaxRelationshipsPerModel)
	}

	ref := entities.OutgoingRef{
		RelationshipID: id,
		Type:           relationship.Type(),
		TargetID:       relationship.TargetID(),
	}
	if err := source.AttachOutgoing(ref); err != nil {
		return err
	}

	m.relationships[id] = relationship
	m.relationshipOrder = append(m.relationshipOrder, id)
	m.incoming[relationship.TargetID()] = append(m.incoming[relationship.TargetID()], id)
	m.touch()

	m.addEvent(events.NewRelationshipAdded(
		m.id.String(), m.version, id,
		relationship.SourceID(), relationship.TargetID(), relationship.Type(),
		m.updatedAt,
	))
	return nil
}

// RemoveElement removes an element together with every relationship touching it.
// It returns the ids of the removed relationships.
func (m *Model) RemoveElement(id valueobjects.ElementID) ([]valueobjects.RelationshipID, error) {
	if _, exists := m.elements[id]; !exists {
		return nil, pkgerrors.NewUnknownElementError(id.String())
	}

	var removed []valueobjects.RelationshipID
	for _, relID := range m.relationshipOrder {
		if m.relationships[relID].Touches(id) {
			removed = append(removed, relID)
		}
	}

	for _, relID := range removed {
		m.dropRelationship(relID)
	}

	delete(m.elements, id)
	delete(m.incoming, id)
	m.elementOrder = removeElementID(m.elementOrder, id)
	m.touch()

	m.addEvent(events.NewElementRemoved(m.id.String(), m.version, id, removed, m.updatedAt))
	return removed, nil
}

// RemoveRelationship removes a relationship and its cache entry on the source element
func (m *Model) RemoveRelationship(id valueobjects.RelationshipID) error {
	relationship, exists := m.relationships[id]
	if !exists {
		return pkgerrors.NewUnknownRelationshipError(id.String())
	}

	m.dropRelationship(id)
	m.touch()

	m.addEvent(events.NewRelationshipRemoved(
		m.id.String(), m.version, id,
		relationship.SourceID(), relationship.TargetID(),
		m.updatedAt,
	))
	return nil
}

// Element returns an element by id
func (m *Model) Element(id valueobjects.ElementID) (*entities.Element, error) {
	element, exists := m.elements[id]
	if !exists {
		return nil, pkgerrors.NewUnknownElementError(id.String())
	}
	return element, nil
}

// HasElement checks if an element exists without error
func (m *Model) HasElement(id valueobjects.ElementID) bool {
	_, exists := m.elements[id]
	return exists
}

// Relationship returns a relationship by id
func (m *Model) Relationship(id valueobjects.RelationshipID) (*entities.Relationship, error) {
	relationship, exists := m.relationships[id]
	if !exists {
		return nil, pkgerrors.NewUnknownRelationshipError(id.String())
	}
	return relationship, nil
}

// Elements returns all elements in insertion order
func (m *Model) Elements() []*entities.Element {
	elements := make([]*entities.Element, 0, len(m.elementOrder))
	for _, id := range m.elementOrder {
		elements = append(elements, m.elements[id])
	}
	return elements
}

// Relationships returns all relationships in insertion order
func (m *Model) Relationships() []*entities.Relationship {
	relationships := make([]*entities.Relationship, 0, len(m.relationshipOrder))
	for _, id := range m.relationshipOrder {
		relationships = append(relationships, m.relationships[id])
	}
	return relationships
}

// ElementCount returns the number of elements
func (m *Model) ElementCount() int {
	return len(m.elements)
}

// RelationshipCount returns the number of relationships
func (m *Model) RelationshipCount() int {
	return len(m.relationships)
}

// IncomingRelationships returns the relationships targeting an element
func (m *Model) IncomingRelationships(id valueobjects.ElementID) []*entities.Relationship {
	ids := m.incoming[id]
	relationships := make([]*entities.Relationship, 0, len(ids))
	for _, relID := range ids {
		relationships = append(relationships, m.relationships[relID])
	}
	return relationships
}

// IncomingCount returns the number of relationships targeting an element
func (m *Model) IncomingCount(id valueobjects.ElementID) int {
	return len(m.incoming[id])
}

// Coupling returns the combined incoming and outgoing relationship count
func (m *Model) Coupling(id valueobjects.ElementID) int {
	element, exists := m.elements[id]
	if !exists {
		return 0
	}
	return element.OutgoingCount() + len(m.incoming[id])
}

// LayersPresent returns the distinct layers populated by elements, in canonical order
func (m *Model) LayersPresent() []valueobjects.Layer {
	layers := make([]valueobjects.Layer, 0, len(m.elements))
	for _, id := range m.elementOrder {
		layers = append(layers, m.elements[id].Layer())
	}
	return valueobjects.SortLayers(layers)
}

// ElementsInLayer returns the elements of one layer in insertion order
func (m *Model) ElementsInLayer(layer valueobjects.Layer) []*entities.Element {
	var elements []*entities.Element
	for _, id := range m.elementOrder {
		if m.elements[id].Layer() == layer {
			elements = append(elements, m.elements[id])
		}
	}
	return elements
}

// CountByLayer returns the number of elements per populated layer
func (m *Model) CountByLayer() map[valueobjects.Layer]int {
	counts := make(map[valueobjects.Layer]int)
	for _, element := range m.elements {
		counts[element.Layer()]++
	}
	return counts
}

// GetDependencies returns the outgoing and incoming neighbors of an element.
// A depth below 1 is treated as 1. Deeper lookups expand breadth-first in each
// direction and report every element once, at its shortest distance.
func (m *Model) GetDependencies(id valueobjects.ElementID, depth int) (*Dependencies, error) {
	if _, exists := m.elements[id]; !exists {
		return nil, pkgerrors.NewUnknownElementError(id.String())
	}
	if depth < 1 {
		depth = 1
	}

	return &Dependencies{
		ElementID: id,
		Outgoing:  m.expand(id, depth, m.outgoingEdges),
		Incoming:  m.expand(id, depth, m.incomingEdges),
	}, nil
}

type edge struct {
	relationshipID valueobjects.RelationshipID
	relType        valueobjects.RelationshipType
	neighbor       valueobjects.ElementID
}

func (m *Model) outgoingEdges(id valueobjects.ElementID) []edge {
	refs := m.elements[id].Outgoing()
	edges := make([]edge, 0, len(refs))
	for _, ref := range refs {
		edges = append(edges, edge{relationshipID: ref.RelationshipID, relType: ref.Type, neighbor: ref.TargetID})
	}
	return edges
}

func (m *Model) incomingEdges(id valueobjects.ElementID) []edge {
	edges := make([]edge, 0, len(m.incoming[id]))
	for _, relID := range m.incoming[id] {
		rel := m.relationships[relID]
		edges = append(edges, edge{relationshipID: relID, relType: rel.Type(), neighbor: rel.SourceID()})
	}
	return edges
}

func (m *Model) expand(start valueobjects.ElementID, depth int, next func(valueobjects.ElementID) []edge) []Dependency {
	seen := map[valueobjects.ElementID]bool{start: true}
	frontier := []valueobjects.ElementID{start}
	var result []Dependency

	for distance := 1; distance <= depth && len(frontier) > 0; distance++ {
		var upcoming []valueobjects.ElementID
		for _, current := range frontier {
			for _, e := range next(current) {
				if seen[e.neighbor] {
					continue
				}
				seen[e.neighbor] = true
				upcoming = append(upcoming, e.neighbor)
				result = append(result, Dependency{
					Element:          m.elements[e.neighbor],
					RelationshipID:   e.relationshipID,
					RelationshipType: e.relType,
					Distance:         distance,
				})
			}
		}
		frontier = upcoming
	}

	return result
}

// Validate ensures model invariants: relationship endpoints exist and the
// outgoing caches match the relationship collection exactly.
func (m *Model) Validate() error {
	cached := 0
	for _, id := range m.elementOrder {
		element := m.elements[id]
		for _, ref := range element.Outgoing() {
			rel, exists := m.relationships[ref.RelationshipID]
			if !exists {
				return pkgerrors.NewInternalError("outgoing cache references unknown relationship " + ref.RelationshipID.String())
			}
			if rel.SourceID() != id || rel.TargetID() != ref.TargetID || rel.Type() != ref.Type {
				return pkgerrors.NewInternalError("outgoing cache entry does not match relationship " + ref.RelationshipID.String())
			}
			cached++
		}
	}

	for _, relID := range m.relationshipOrder {
		rel := m.relationships[relID]
		if _, exists := m.elements[rel.SourceID()]; !exists {
			return pkgerrors.NewInternalError("relationship references non-existent source element")
		}
		if _, exists := m.elements[rel.TargetID()]; !exists {
			return pkgerrors.NewInternalError("relationship references non-existent target element")
		}
	}

	if cached != len(m.relationships) {
		return pkgerrors.NewInternalError("outgoing cache size does not match relationship count")
	}
	if len(m.elementOrder) != len(m.elements) || len(m.relationshipOrder) != len(m.relationships) {
		return pkgerrors.NewInternalError("ordering index out of sync")
	}

	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (m *Model) GetUncommittedEvents() []events.DomainEvent {
	uncommitted := make([]events.DomainEvent, len(m.events))
	copy(uncommitted, m.events)
	return uncommitted
}

// MarkEventsAsCommitted clears all uncommitted events
func (m *Model) MarkEventsAsCommitted() {
	m.events = []events.DomainEvent{}
}

// Private helper methods

func (m *Model) addEvent(event events.DomainEvent) {
	m.events = append(m.events, event)
}

func (m *Model) touch() {
	m.updatedAt = time.Now()
	m.version++
}

func (m *Model) dropRelationship(id valueobjects.RelationshipID) {
	rel := m.relationships[id]
	if source, exists := m.elements[rel.SourceID()]; exists {
		source.DetachOutgoing(id)
	}

	target := rel.TargetID()
	kept := m.incoming[target][:0]
	for _, relID := range m.incoming[target] {
		if relID != id {
			kept = append(kept, relID)
		}
	}
	if len(kept) == 0 {
		delete(m.incoming, target)
	} else {
		m.incoming[target] = kept
	}

	delete(m.relationships, id)
	for i, relID := range m.relationshipOrder {
		if relID == id {
			m.relationshipOrder = append(m.relationshipOrder[:i], m.relationshipOrder[i+1:]...)
			break
		}
	}
}

func removeElementID(ids []valueobjects.ElementID, id valueobjects.ElementID) []valueobjects.ElementID {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
