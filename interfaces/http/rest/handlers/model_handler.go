package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"archintel/application/services"
	"archintel/domain/core/aggregates"
	"archintel/domain/core/valueobjects"
	"archintel/pkg/common"
	pkgerrors "archintel/pkg/errors"
)

// ModelHandler handles element and relationship requests within a session
type ModelHandler struct {
	base
}

// NewModelHandler creates a new model handler
func NewModelHandler(sessions *services.SessionService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *ModelHandler {
	return &ModelHandler{base: newBase(sessions, errorHandler, logger)}
}

// AddElementRequest represents the request body for adding an element.
// An empty id is replaced with a generated one.
type AddElementRequest struct {
	ID          string                 `json:"id,omitempty" validate:"omitempty,max=200"`
	Name        string                 `json:"name" validate:"required,max=200"`
	Type        string                 `json:"element_type" validate:"required"`
	Layer       string                 `json:"layer" validate:"required"`
	Description string                 `json:"description,omitempty" validate:"omitempty,max=2000"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
	Tags        []string               `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// AddRelationshipRequest represents the request body for connecting two elements
type AddRelationshipRequest struct {
	ID         string                 `json:"id,omitempty" validate:"omitempty,max=200"`
	SourceID   string                 `json:"source_id" validate:"required"`
	TargetID   string                 `json:"target_id" validate:"required"`
	Type       string                 `json:"relationship_type" validate:"required"`
	Name       string                 `json:"name,omitempty" validate:"omitempty,max=200"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// DependencyResponse is one neighbor of an element
type DependencyResponse struct {
	Element          aggregates.ElementRecord      `json:"element"`
	RelationshipID   valueobjects.RelationshipID   `json:"relationship_id"`
	RelationshipType valueobjects.RelationshipType `json:"relationship_type"`
	Distance         int                           `json:"distance"`
}

// DependenciesResponse groups neighbors by direction
type DependenciesResponse struct {
	ElementID valueobjects.ElementID `json:"element_id"`
	Depth     int                    `json:"depth"`
	Outgoing  []DependencyResponse   `json:"outgoing"`
	Incoming  []DependencyResponse   `json:"incoming"`
}

// AddElement handles POST /sessions/{sessionID}/elements
func (h *ModelHandler) AddElement(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddElementRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	element, err := aggregates.ElementRecord{
		ID:          req.ID,
		Name:        req.Name,
		Type:        req.Type,
		Layer:       req.Layer,
		Description: req.Description,
		Properties:  req.Properties,
		Tags:        req.Tags,
	}.ToElement()
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := controller.AddElement(r.Context(), element); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, r, http.StatusCreated, aggregates.ElementRecordFrom(element))
}

// RemoveElement handles DELETE /sessions/{sessionID}/elements/{elementID}
func (h *ModelHandler) RemoveElement(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	id := valueobjects.ElementID(chi.URLParam(r, "elementID"))
	if err := controller.RemoveElement(r.Context(), id); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDependencies handles GET /sessions/{sessionID}/elements/{elementID}/dependencies?depth=n
func (h *ModelHandler) GetDependencies(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	depth := 1
	if raw := r.URL.Query().Get("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.errors.Handle(w, r, pkgerrors.NewValidationError("depth must be an integer"))
			return
		}
		depth = parsed
	}
	if depth < 1 {
		depth = 1
	}

	deps, err := controller.GetDependencies(valueobjects.ElementID(chi.URLParam(r, "elementID")), depth)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, r, http.StatusOK, DependenciesResponse{
		ElementID: deps.ElementID,
		Depth:     depth,
		Outgoing:  dependencyResponses(deps.Outgoing),
		Incoming:  dependencyResponses(deps.Incoming),
	})
}

func dependencyResponses(deps []aggregates.Dependency) []DependencyResponse {
	out := make([]DependencyResponse, 0, len(deps))
	for _, d := range deps {
		out = append(out, DependencyResponse{
			Element:          aggregates.ElementRecordFrom(d.Element),
			RelationshipID:   d.RelationshipID,
			RelationshipType: d.RelationshipType,
			Distance:         d.Distance,
		})
	}
	return out
}

// AddRelationship handles POST /sessions/{sessionID}/relationships
func (h *ModelHandler) AddRelationship(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddRelationshipRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	relationship, err := aggregates.RelationshipRecord{
		ID:         req.ID,
		SourceID:   req.SourceID,
		TargetID:   req.TargetID,
		Type:       req.Type,
		Name:       req.Name,
		Properties: req.Properties,
	}.ToRelationship()
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := controller.AddRelationship(r.Context(), relationship); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, r, http.StatusCreated, aggregates.RelationshipRecordFrom(relationship))
}

// RemoveRelationship handles DELETE /sessions/{sessionID}/relationships/{relationshipID}
func (h *ModelHandler) RemoveRelationship(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.session(w, r)
	if !ok {
		return
	}

	id := valueobjects.RelationshipID(chi.URLParam(r, "relationshipID"))
	if err := controller.RemoveRelationship(r.Context(), id); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
