package validators

import (
	"fmt"
	"regexp"
	"strings"

	"archintel/domain/config"
	"archintel/domain/core/entities"
	"archintel/pkg/errors"
)

var validTagPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// ElementValidator validates element-related domain rules
type ElementValidator struct {
	nameMaxLength        int
	descriptionMaxLength int
	tagMaxLength         int
	maxTags              int
	maxPropertyKeys      int
	propertyKeyMaxLength int
}

// NewElementValidator creates a new element validator with default rules
func NewElementValidator() *ElementValidator {
	return NewElementValidatorWithConfig(nil)
}

// NewElementValidatorWithConfig creates an element validator using the model limits of cfg
func NewElementValidatorWithConfig(cfg *config.DomainConfig) *ElementValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	return &ElementValidator{
		nameMaxLength:        cfg.MaxNameLength,
		descriptionMaxLength: 5000,
		tagMaxLength:         50,
		maxTags:              cfg.MaxTagsPerElement,
		maxPropertyKeys:      50,
		propertyKeyMaxLength: 100,
	}
}

// ValidateElement checks the free-form parts of an element. Type and layer
// consistency is enforced when the element is constructed.
func (v *ElementValidator) ValidateElement(element *entities.Element) error {
	validationErrors := errors.NewValidationErrors()

	if len(element.Name()) > v.nameMaxLength {
		validationErrors.Add("name", fmt.Sprintf("name exceeds maximum length of %d characters", v.nameMaxLength))
	}

	if len(element.Description()) > v.descriptionMaxLength {
		validationErrors.Add("description", fmt.Sprintf("description exceeds maximum length of %d characters", v.descriptionMaxLength))
	}

	if err := v.ValidateTags(element.Tags()); err != nil {
		validationErrors.Add("tags", err.Error())
	}

	if err := v.ValidateProperties(element.Properties()); err != nil {
		validationErrors.Add("properties", err.Error())
	}

	if appErr := validationErrors.AsAppError(); appErr != nil {
		return appErr
	}
	return nil
}

// ValidateTags validates a list of tags
func (v *ElementValidator) ValidateTags(tags []string) error {
	if len(tags) > v.maxTags {
		return fmt.Errorf("cannot have more than %d tags", v.maxTags)
	}

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return fmt.Errorf("tag cannot be empty")
		}
		if len(tag) > v.tagMaxLength {
			return fmt.Errorf("tag '%s' exceeds maximum length of %d characters", tag, v.tagMaxLength)
		}
		if !validTagPattern.MatchString(tag) {
			return fmt.Errorf("tag '%s' contains invalid characters", tag)
		}
	}

	return nil
}

// ValidateProperties validates the open property map
func (v *ElementValidator) ValidateProperties(properties map[string]interface{}) error {
	if len(properties) > v.maxPropertyKeys {
		return fmt.Errorf("cannot have more than %d properties", v.maxPropertyKeys)
	}

	for key := range properties {
		if len(key) > v.propertyKeyMaxLength {
			return fmt.Errorf("property key '%s' exceeds maximum length of %d", key, v.propertyKeyMaxLength)
		}
	}

	return nil
}
