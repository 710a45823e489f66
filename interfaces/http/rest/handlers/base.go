package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"archintel/application/services"
	"archintel/pkg/common"
	pkgerrors "archintel/pkg/errors"
	"archintel/pkg/utils"
)

// maxBodyBytes limits request bodies; decision requests with many options are the largest
const maxBodyBytes = 1 << 20

// base carries what every session-scoped handler needs
type base struct {
	sessions *services.SessionService
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

func newBase(sessions *services.SessionService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errorHandler == nil {
		errorHandler = pkgerrors.NewErrorHandler(logger, false)
	}
	return base{
		sessions: sessions,
		errors:   errorHandler,
		logger:   logger,
	}
}

// session resolves the {sessionID} path parameter, writing the error response on failure
func (b base) session(w http.ResponseWriter, r *http.Request) (*services.Controller, bool) {
	controller, err := b.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		b.errors.Handle(w, r, err)
		return nil, false
	}
	return controller, true
}

// decode parses and validates a required JSON body
func (b base) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.ParseJSONBody(w, r, v, maxBodyBytes); err != nil {
		b.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return false
	}
	return b.validate(w, r, v)
}

// decodeOptional is decode for endpoints whose body may be empty
func (b base) decodeOptional(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := common.ParseJSONBody(w, r, v, maxBodyBytes)
	if err != nil && !errors.Is(err, io.EOF) {
		b.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return false
	}
	return b.validate(w, r, v)
}

func (b base) validate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := utils.ValidateStruct(v); err != nil {
		b.errors.Handle(w, r, err)
		return false
	}
	return true
}
