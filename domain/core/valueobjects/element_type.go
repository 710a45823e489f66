package valueobjects

import (
	"fmt"

	pkgerrors "archintel/pkg/errors"
)

// ElementType is the closed set of element kinds. Each type belongs to exactly one layer.
type ElementType string

// Strategy layer
const (
	ElementResource       ElementType = "resource"
	ElementCapability     ElementType = "capability"
	ElementValueStream    ElementType = "value_stream"
	ElementCourseOfAction ElementType = "course_of_action"
)

// Business layer
const (
	ElementBusinessActor         ElementType = "business_actor"
	ElementBusinessRole          ElementType = "business_role"
	ElementBusinessCollaboration ElementType = "business_collaboration"
	ElementBusinessInterface     ElementType = "business_interface"
	ElementBusinessProcess       ElementType = "business_process"
	ElementBusinessFunction      ElementType = "business_function"
	ElementBusinessInteraction   ElementType = "business_interaction"
	ElementBusinessEvent         ElementType = "business_event"
	ElementBusinessService       ElementType = "business_service"
	ElementBusinessObject        ElementType = "business_object"
	ElementContract              ElementType = "contract"
	ElementRepresentation        ElementType = "representation"
	ElementProduct               ElementType = "product"
)

// Application layer
const (
	ElementApplicationComponent     ElementType = "application_component"
	ElementApplicationCollaboration ElementType = "application_collaboration"
	ElementApplicationInterface     ElementType = "application_interface"
	ElementApplicationFunction      ElementType = "application_function"
	ElementApplicationInteraction   ElementType = "application_interaction"
	ElementApplicationProcess       ElementType = "application_process"
	ElementApplicationEvent         ElementType = "application_event"
	ElementApplicationService       ElementType = "application_service"
	ElementDataObject               ElementType = "data_object"
)

// Technology layer
const (
	ElementNode                    ElementType = "node"
	ElementDevice                  ElementType = "device"
	ElementSystemSoftware          ElementType = "system_software"
	ElementTechnologyCollaboration ElementType = "technology_collaboration"
	ElementTechnologyInterface     ElementType = "technology_interface"
	ElementPath                    ElementType = "path"
	ElementCommunicationNetwork    ElementType = "communication_network"
	ElementTechnologyFunction      ElementType = "technology_function"
	ElementTechnologyProcess       ElementType = "technology_process"
	ElementTechnologyInteraction   ElementType = "technology_interaction"
	ElementTechnologyEvent         ElementType = "technology_event"
	ElementTechnologyService       ElementType = "technology_service"
	ElementArtifact                ElementType = "artifact"
)

// Physical layer
const (
	ElementEquipment           ElementType = "equipment"
	ElementFacility            ElementType = "facility"
	ElementDistributionNetwork ElementType = "distribution_network"
	ElementMaterial            ElementType = "material"
)

// Implementation and migration layer
const (
	ElementWorkPackage         ElementType = "work_package"
	ElementDeliverable         ElementType = "deliverable"
	ElementImplementationEvent ElementType = "implementation_event"
	ElementPlateau             ElementType = "plateau"
	ElementGap                 ElementType = "gap"
)

// Motivation elements
const (
	ElementStakeholder ElementType = "stakeholder"
	ElementDriver      ElementType = "driver"
	ElementAssessment  ElementType = "assessment"
	ElementGoal        ElementType = "goal"
	ElementOutcome     ElementType = "outcome"
	ElementPrinciple   ElementType = "principle"
	ElementRequirement ElementType = "requirement"
	ElementConstraint  ElementType = "constraint"
	ElementMeaning     ElementType = "meaning"
	ElementValue       ElementType = "value"
)

var elementTypesByLayer = map[Layer][]ElementType{
	LayerStrategy: {
		ElementResource, ElementCapability, ElementValueStream, ElementCourseOfAction,
	},
	LayerBusiness: {
		ElementBusinessActor, ElementBusinessRole, ElementBusinessCollaboration,
		ElementBusinessInterface, ElementBusinessProcess, ElementBusinessFunction,
		ElementBusinessInteraction, ElementBusinessEvent, ElementBusinessService,
		ElementBusinessObject, ElementContract, ElementRepresentation, ElementProduct,
	},
	LayerApplication: {
		ElementApplicationComponent, ElementApplicationCollaboration,
		ElementApplicationInterface, ElementApplicationFunction,
		ElementApplicationInteraction, ElementApplicationProcess,
		ElementApplicationEvent, ElementApplicationService, ElementDataObject,
	},
	LayerTechnology: {
		ElementNode, ElementDevice, ElementSystemSoftware, ElementTechnologyCollaboration,
		ElementTechnologyInterface, ElementPath, ElementCommunicationNetwork,
		ElementTechnologyFunction, ElementTechnologyProcess, ElementTechnologyInteraction,
		ElementTechnologyEvent, ElementTechnologyService, ElementArtifact,
	},
	LayerPhysical: {
		ElementEquipment, ElementFacility, ElementDistributionNetwork, ElementMaterial,
	},
	LayerImplementation: {
		ElementWorkPackage, ElementDeliverable, ElementImplementationEvent,
		ElementPlateau, ElementGap,
	},
	LayerMotivation: {
		ElementStakeholder, ElementDriver, ElementAssessment, ElementGoal, ElementOutcome,
		ElementPrinciple, ElementRequirement, ElementConstraint, ElementMeaning, ElementValue,
	},
}

// ElementTypesForLayer returns the element types allowed in a layer
func ElementTypesForLayer(layer Layer) []ElementType {
	types := elementTypesByLayer[layer]
	out := make([]ElementType, len(types))
	copy(out, types)
	return out
}

// LayerOf returns the layer an element type belongs to
func (t ElementType) LayerOf() (Layer, bool) {
	for layer, types := range elementTypesByLayer {
		for _, candidate := range types {
			if candidate == t {
				return layer, true
			}
		}
	}
	return "", false
}

// IsValid reports whether the element type is known
func (t ElementType) IsValid() bool {
	_, ok := t.LayerOf()
	return ok
}

// BelongsTo reports whether the element type is allowed in the given layer
func (t ElementType) BelongsTo(layer Layer) bool {
	owner, ok := t.LayerOf()
	return ok && owner == layer
}

// ParseElementType converts a string to an ElementType
func ParseElementType(s string) (ElementType, error) {
	t := ElementType(s)
	if !t.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("unknown element type: %q", s))
	}
	return t, nil
}
