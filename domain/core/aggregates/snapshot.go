package aggregates

import (
	"archintel/domain/config"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
)

// ModelSnapshot is the JSON-serializable form of a model
type ModelSnapshot struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Elements      []ElementRecord      `json:"elements"`
	Relationships []RelationshipRecord `json:"relationships"`
}

// ElementRecord is the serialized form of an element. The outgoing cache is
// not stored; it is rebuilt from the relationships on restore.
type ElementRecord struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Type        string                 `json:"element_type"`
	Layer       string                 `json:"layer"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
}

// RelationshipRecord is the serialized form of a relationship
type RelationshipRecord struct {
	ID         string                 `json:"id"`
	SourceID   string                 `json:"source_id"`
	TargetID   string                 `json:"target_id"`
	Type       string                 `json:"relationship_type"`
	Name       string                 `json:"name,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Snapshot captures the model's elements and relationships in insertion order
func (m *Model) Snapshot() ModelSnapshot {
	snapshot := ModelSnapshot{
		ID:            m.id.String(),
		Name:          m.name,
		Elements:      make([]ElementRecord, 0, len(m.elementOrder)),
		Relationships: make([]RelationshipRecord, 0, len(m.relationshipOrder)),
	}

	for _, element := range m.Elements() {
		snapshot.Elements = append(snapshot.Elements, ElementRecordFrom(element))
	}
	for _, relationship := range m.Relationships() {
		snapshot.Relationships = append(snapshot.Relationships, RelationshipRecordFrom(relationship))
	}

	return snapshot
}

// ElementRecordFrom converts an element into its serialized form
func ElementRecordFrom(element *entities.Element) ElementRecord {
	return ElementRecord{
		ID:          element.ID().String(),
		Name:        element.Name(),
		Type:        string(element.Type()),
		Layer:       string(element.Layer()),
		Description: element.Description(),
		Properties:  element.Properties(),
		Tags:        element.Tags(),
	}
}

// RelationshipRecordFrom converts a relationship into its serialized form
func RelationshipRecordFrom(relationship *entities.Relationship) RelationshipRecord {
	return RelationshipRecord{
		ID:         relationship.ID().String(),
		SourceID:   relationship.SourceID().String(),
		TargetID:   relationship.TargetID().String(),
		Type:       string(relationship.Type()),
		Name:       relationship.Name(),
		Properties: relationship.Properties(),
	}
}

// ToElement rebuilds an element from its record
func (r ElementRecord) ToElement() (*entities.Element, error) {
	id, err := valueobjects.NewElementID(r.ID)
	if err != nil {
		return nil, err
	}
	layer, err := valueobjects.ParseLayer(r.Layer)
	if err != nil {
		return nil, err
	}
	elementType, err := valueobjects.ParseElementType(r.Type)
	if err != nil {
		return nil, err
	}

	element, err := entities.NewElement(id, r.Name, elementType, layer)
	if err != nil {
		return nil, err
	}

	element.SetDescription(r.Description)
	for key, value := range r.Properties {
		if err := element.SetProperty(key, value); err != nil {
			return nil, err
		}
	}
	for _, tag := range r.Tags {
		if err := element.AddTag(tag); err != nil {
			return nil, err
		}
	}

	return element, nil
}

// ToRelationship rebuilds a relationship from its record
func (r RelationshipRecord) ToRelationship() (*entities.Relationship, error) {
	id, err := valueobjects.NewRelationshipID(r.ID)
	if err != nil {
		return nil, err
	}
	sourceID, err := valueobjects.NewElementID(r.SourceID)
	if err != nil {
		return nil, err
	}
	targetID, err := valueobjects.NewElementID(r.TargetID)
	if err != nil {
		return nil, err
	}
	relType, err := valueobjects.ParseRelationshipType(r.Type)
	if err != nil {
		return nil, err
	}

	relationship, err := entities.NewRelationship(id, sourceID, targetID, relType)
	if err != nil {
		return nil, err
	}

	relationship.SetName(r.Name)
	for key, value := range r.Properties {
		if err := relationship.SetProperty(key, value); err != nil {
			return nil, err
		}
	}

	return relationship, nil
}

// RestoreModel recreates a model from a snapshot by replaying every add.
// The restored model has no uncommitted events.
func RestoreModel(snapshot ModelSnapshot, cfg *config.DomainConfig) (*Model, error) {
	model := NewModelWithConfig(snapshot.Name, cfg)
	if snapshot.ID != "" {
		model.id = ModelID(snapshot.ID)
	}

	for _, record := range snapshot.Elements {
		element, err := record.ToElement()
		if err != nil {
			return nil, err
		}
		if err := model.AddElement(element); err != nil {
			return nil, err
		}
	}

	for _, record := range snapshot.Relationships {
		relationship, err := record.ToRelationship()
		if err != nil {
			return nil, err
		}
		if err := model.AddRelationship(relationship); err != nil {
			return nil, err
		}
	}

	model.MarkEventsAsCommitted()
	return model, nil
}
