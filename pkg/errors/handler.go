package errors

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorResponse is the body written for every failed request
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Hint      string                 `json:"hint,omitempty"`
	Retryable bool                   `json:"retryable"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
}

// codeHints tell a client how to correct a request rejected with a domain code
var codeHints = map[string]string{
	CodeDuplicateID:         "choose an id that no other element or relationship in the session uses",
	CodeUnknownElement:      "list the session elements and reference an existing element id",
	CodeUnknownRelationship: "list the session relationships and reference an existing relationship id",
	CodeEmptyOptionSet:      "supply at least one option with scores between 0 and 1",
	CodeLimitExceeded:       "remove unused model entries or raise the configured limit",
	CodeFieldValidation:     "details lists the rejected fields",
}

// Hint returns the client guidance for a domain code, empty when there is none
func Hint(code string) string {
	return codeHints[code]
}

// ErrorHandler turns errors into JSON responses and logs them
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates an error handler. In debug mode responses carry
// stack traces and the text of unclassified errors.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes the response for err. A nil error writes nothing.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	appErr := GetAppError(err)
	classified := appErr != nil
	if !classified {
		h.logger.Error("Unhandled error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requestID", requestIDFrom(r)),
		)
		appErr = &AppError{Type: ErrorTypeInternal, Message: "An internal error occurred"}
		if h.debug {
			appErr.Message = err.Error()
		}
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = appErr.Type.Status()
	}
	if classified {
		h.logAppError(r, appErr, status)
	}

	h.writeJSON(w, status, h.response(r, appErr))
}

func (h *ErrorHandler) response(r *http.Request, appErr *AppError) ErrorResponse {
	resp := ErrorResponse{
		Error:     true,
		Type:      string(appErr.Type),
		Message:   appErr.Message,
		Code:      appErr.Code,
		Hint:      Hint(appErr.Code),
		Retryable: appErr.Type.Retryable(),
		RequestID: requestIDFrom(r),
		TraceID:   r.Header.Get("X-Amzn-Trace-Id"),
	}

	withStack := h.debug && appErr.StackTrace != ""
	if len(appErr.Details) == 0 && !withStack {
		return resp
	}

	// appErr.Details is shared with the caller and stays read-only here.
	resp.Details = make(map[string]interface{}, len(appErr.Details)+1)
	for k, v := range appErr.Details {
		resp.Details[k] = v
	}
	if withStack {
		resp.Details["stack_trace"] = appErr.StackTrace
	}
	return resp
}

func (h *ErrorHandler) logAppError(r *http.Request, appErr *AppError, status int) {
	fields := []zap.Field{
		zap.String("error_type", string(appErr.Type)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("requestID", requestIDFrom(r)),
	}
	if appErr.Code != "" {
		fields = append(fields, zap.String("error_code", appErr.Code))
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}
	if len(appErr.Details) > 0 {
		fields = append(fields, zap.Any("details", appErr.Details))
	}

	if status >= 500 {
		h.logger.Error(appErr.Message, fields...)
		return
	}
	h.logger.Warn(appErr.Message, fields...)
}

func (h *ErrorHandler) writeJSON(w http.ResponseWriter, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// requestIDFrom prefers the id assigned by the chi RequestID middleware
func requestIDFrom(r *http.Request) string {
	if id := chimiddleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}
