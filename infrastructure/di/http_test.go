package di

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"archintel/application/services"
	"archintel/infrastructure/persistence/memory"
)

func TestContainer_HTTPHandler(t *testing.T) {
	newContainer := func(metrics bool) *Container {
		cfg := baseConfig()
		cfg.EnableMetrics = metrics
		return &Container{
			Config:   cfg,
			Logger:   zap.NewNop(),
			Metrics:  ProvideMetrics(cfg),
			Sessions: services.NewSessionService(memory.NewSessionRepository(nil), services.ControllerDependencies{}, true, nil),
		}
	}

	tests := []struct {
		name          string
		metrics       bool
		wantMetricsOK bool
	}{
		{"metrics disabled", false, false},
		{"metrics enabled", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newContainer(tt.metrics).HTTPHandler()

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, rec.Code)

			rec = httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			if tt.wantMetricsOK {
				assert.Equal(t, http.StatusOK, rec.Code)
			} else {
				assert.Equal(t, http.StatusNotFound, rec.Code)
			}
		})
	}
}
