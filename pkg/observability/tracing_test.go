package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilTracer(t *testing.T) {
	var tracer *Tracer

	called := false
	handler := tracer.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	boom := errors.New("boom")
	err := tracer.TraceFunction(context.Background(), "analyze", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, tracer.ServiceName())

	tracer.AddAnnotation(context.Background(), "sessionID", "s-1")
}

func TestTracerMiddlewareServesRequest(t *testing.T) {
	tracer := NewTracer("archintel-api")
	assert.Equal(t, "archintel-api", tracer.ServiceName())

	handler := tracer.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
