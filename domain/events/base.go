package events

import (
	"time"

	"archintel/domain/core/valueobjects"
)

// SourceArchIntel is the event source used when publishing outside the process
const SourceArchIntel = "archintel.controller"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Model event types
const (
	EventElementAdded        = "model.element_added"
	EventElementRemoved      = "model.element_removed"
	EventRelationshipAdded   = "model.relationship_added"
	EventRelationshipRemoved = "model.relationship_removed"
)

// ElementAdded is raised when an element joins the model
type ElementAdded struct {
	BaseEvent
	ElementID   valueobjects.ElementID   `json:"element_id"`
	ElementType valueobjects.ElementType `json:"element_type"`
	Layer       valueobjects.Layer       `json:"layer"`
}

// NewElementAdded creates an ElementAdded event
func NewElementAdded(modelID string, version int, id valueobjects.ElementID, elementType valueobjects.ElementType, layer valueobjects.Layer, timestamp time.Time) ElementAdded {
	return ElementAdded{
		BaseEvent: BaseEvent{
			AggregateID: modelID,
			EventType:   EventElementAdded,
			Timestamp:   timestamp,
			Version:     version,
		},
		ElementID:   id,
		ElementType: elementType,
		Layer:       layer,
	}
}

// ElementRemoved is raised when an element and its relationships leave the model
type ElementRemoved struct {
	BaseEvent
	ElementID              valueobjects.ElementID        `json:"element_id"`
	RemovedRelationshipIDs []valueobjects.RelationshipID `json:"removed_relationship_ids"`
}

// NewElementRemoved creates an ElementRemoved event
func NewElementRemoved(modelID string, version int, id valueobjects.ElementID, removed []valueobjects.RelationshipID, timestamp time.Time) ElementRemoved {
	return ElementRemoved{
		BaseEvent: BaseEvent{
			AggregateID: modelID,
			EventType:   EventElementRemoved,
			Timestamp:   timestamp,
			Version:     version,
		},
		ElementID:              id,
		RemovedRelationshipIDs: removed,
	}
}

// RelationshipAdded is raised when two elements are connected
type RelationshipAdded struct {
	BaseEvent
	RelationshipID   valueobjects.RelationshipID   `json:"relationship_id"`
	SourceID         valueobjects.ElementID        `json:"source_id"`
	TargetID         valueobjects.ElementID        `json:"target_id"`
	RelationshipType valueobjects.RelationshipType `json:"relationship_type"`
}

// NewRelationshipAdded creates a RelationshipAdded event
func NewRelationshipAdded(modelID string, version int, id valueobjects.RelationshipID, sourceID, targetID valueobjects.ElementID, relType valueobjects.RelationshipType, timestamp time.Time) RelationshipAdded {
	return RelationshipAdded{
		BaseEvent: BaseEvent{
			AggregateID: modelID,
			EventType:   EventRelationshipAdded,
			Timestamp:   timestamp,
			Version:     version,
		},
		RelationshipID:   id,
		SourceID:         sourceID,
		TargetID:         targetID,
		RelationshipType: relType,
	}
}

// RelationshipRemoved is raised when a relationship is deleted on its own
type RelationshipRemoved struct {
	BaseEvent
	RelationshipID valueobjects.RelationshipID `json:"relationship_id"`
	SourceID       valueobjects.ElementID      `json:"source_id"`
	TargetID       valueobjects.ElementID      `json:"target_id"`
}

// NewRelationshipRemoved creates a RelationshipRemoved event
func NewRelationshipRemoved(modelID string, version int, id valueobjects.RelationshipID, sourceID, targetID valueobjects.ElementID, timestamp time.Time) RelationshipRemoved {
	return RelationshipRemoved{
		BaseEvent: BaseEvent{
			AggregateID: modelID,
			EventType:   EventRelationshipRemoved,
			Timestamp:   timestamp,
			Version:     version,
		},
		RelationshipID: id,
		SourceID:       sourceID,
		TargetID:       targetID,
	}
}
