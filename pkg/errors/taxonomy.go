package errors

import (
	"fmt"
	"strings"
)

// Error codes for the architecture model and decision engine
const (
	CodeDuplicateID           = "DUPLICATE_ID"
	CodeUnknownElement        = "UNKNOWN_ELEMENT"
	CodeUnknownRelationship   = "UNKNOWN_RELATIONSHIP"
	CodeEmptyOptionSet        = "EMPTY_OPTION_SET"
	CodeScheduleInconsistency = "SCHEDULE_INCONSISTENCY"
	CodeLimitExceeded         = "LIMIT_EXCEEDED"
	CodeFieldValidation       = "FIELD_VALIDATION_ERROR"
)

// NewDuplicateIDError is returned when an element or relationship id is already taken.
// It is a caller bug and is never retried.
func NewDuplicateIDError(kind, id string) *AppError {
	return NewConflictError(fmt.Sprintf("%s with id '%s' already exists", kind, id)).
		WithCode(CodeDuplicateID).
		WithDetails(map[string]interface{}{"kind": kind, "id": id})
}

// NewUnknownElementError is returned when an operation references an element id
// that does not exist in the model.
func NewUnknownElementError(id string) *AppError {
	err := NewNotFoundError(fmt.Sprintf("element '%s'", id))
	return err.WithCode(CodeUnknownElement).
		WithDetails(map[string]interface{}{"element_id": id})
}

// NewUnknownRelationshipError is returned when a relationship id does not exist.
func NewUnknownRelationshipError(id string) *AppError {
	err := NewNotFoundError(fmt.Sprintf("relationship '%s'", id))
	return err.WithCode(CodeUnknownRelationship).
		WithDetails(map[string]interface{}{"relationship_id": id})
}

// NewEmptyOptionSetError is returned when a decision is requested without options.
func NewEmptyOptionSetError() *AppError {
	return NewValidationError("at least one decision option is required").
		WithCode(CodeEmptyOptionSet)
}

// NewScheduleInconsistencyError describes an option whose time to implement leaves no
// room for the implementation phase. The engine records it as a warning and clamps the plan.
func NewScheduleInconsistencyError(optionID string, implementationDays int) *AppError {
	return NewValidationError(fmt.Sprintf(
		"option '%s' leaves %d days for implementation after preparation and validation",
		optionID, implementationDays,
	)).
		WithCode(CodeScheduleInconsistency).
		WithDetails(map[string]interface{}{
			"option_id":           optionID,
			"implementation_days": implementationDays,
		})
}

// NewLimitExceededError is returned when a model limit from the domain config is hit.
func NewLimitExceededError(resource string, limit int) *AppError {
	return NewValidationError(fmt.Sprintf("maximum number of %s reached (%d)", resource, limit)).
		WithCode(CodeLimitExceeded).
		WithDetails(map[string]interface{}{"resource": resource, "limit": limit})
}

// IsDuplicateID checks if an error is a duplicate id error
func IsDuplicateID(err error) bool {
	return hasCode(err, CodeDuplicateID)
}

// IsUnknownElement checks if an error is an unknown element error
func IsUnknownElement(err error) bool {
	return hasCode(err, CodeUnknownElement)
}

// IsEmptyOptionSet checks if an error is an empty option set error
func IsEmptyOptionSet(err error) bool {
	return hasCode(err, CodeEmptyOptionSet)
}

// IsScheduleInconsistency checks if an error is a schedule inconsistency error
func IsScheduleInconsistency(err error) bool {
	return hasCode(err, CodeScheduleInconsistency)
}

func hasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// ValidationErrors aggregates multiple field validation failures
type ValidationErrors struct {
	Errors []*AppError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]*AppError, 0),
	}
}

// Add adds a validation error for a field
func (v *ValidationErrors) Add(field string, message string) {
	err := NewValidationError(message).
		WithCode(CodeFieldValidation).
		WithDetails(map[string]interface{}{"field": field})
	v.Errors = append(v.Errors, err)
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// AsAppError folds the collection into a single validation AppError,
// or returns nil when nothing was collected.
func (v *ValidationErrors) AsAppError() *AppError {
	if !v.HasErrors() {
		return nil
	}

	fields := make(map[string][]string)
	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}
		fields[field] = append(fields[field], err.Message)
	}

	details := make(map[string]interface{}, len(fields))
	for field, messages := range fields {
		details[field] = messages
	}

	return NewValidationError(v.Error()).
		WithCode(CodeFieldValidation).
		WithDetails(details)
}
