package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archintel/application/services"
	"archintel/infrastructure/observability"
	"archintel/infrastructure/persistence/memory"
	"archintel/pkg/ratelimit"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    struct {
		RequestID  string `json:"request_id"`
		Pagination *struct {
			Total int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

type errorBody struct {
	Error   bool   `json:"error"`
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, limiter ratelimit.RateLimiter) *testServer {
	t.Helper()

	sessions := services.NewSessionService(memory.NewSessionRepository(nil), services.ControllerDependencies{}, true, nil)
	router := NewRouter(
		sessions,
		observability.NewCollector("archintel_test"),
		nil,
		limiter,
		RouterOptions{EnableCORS: true},
		nil,
	)
	return &testServer{t: t, handler: router.Setup()}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) data(rec *httptest.ResponseRecorder, v interface{}) {
	s.t.Helper()

	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.True(s.t, env.Success)
	require.NoError(s.t, json.Unmarshal(env.Data, v))
}

func (s *testServer) errorOf(rec *httptest.ResponseRecorder) errorBody {
	s.t.Helper()

	var body errorBody
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	require.True(s.t, body.Error)
	return body
}

func (s *testServer) createSession(name string) string {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/api/v1/sessions", map[string]interface{}{"name": name})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var session struct {
		SessionID string `json:"session_id"`
	}
	s.data(rec, &session)
	require.NotEmpty(s.t, session.SessionID)
	return session.SessionID
}

func (s *testServer) addElement(sessionID, id, elementType, layer string) {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/api/v1/sessions/"+sessionID+"/elements", map[string]interface{}{
		"id":           id,
		"name":         id,
		"element_type": elementType,
		"layer":        layer,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *testServer) relate(sessionID, id, source, target string) {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/api/v1/sessions/"+sessionID+"/relationships", map[string]interface{}{
		"id":                id,
		"source_id":         source,
		"target_id":         target,
		"relationship_type": "serving",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decisionBody(useAI bool, options ...map[string]interface{}) map[string]interface{} {
	opts := make([]map[string]interface{}, 0, len(options))
	opts = append(opts, options...)
	return map[string]interface{}{
		"decision_type":  "technical",
		"decision_scope": "integration platform",
		"urgency":        "high",
		"options":        opts,
		"use_ai":         useAI,
	}
}

func option(id string, fit float64) map[string]interface{} {
	return map[string]interface{}{
		"id":                  id,
		"name":                strings.ToUpper(id),
		"feasibility":         0.8,
		"complexity":          0.3,
		"risk_level":          0.2,
		"strategic_alignment": 0.7,
		"technical_fit":       fit,
		"cost":                50000,
		"time_to_implement":   90,
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestRouter_SessionLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createSession("payments")

	rec := s.do(http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var session struct {
		Name       string `json:"name"`
		Phase      string `json:"phase"`
		Autonomous bool   `json:"autonomous"`
	}
	s.data(rec, &session)
	assert.Equal(t, "payments", session.Name)
	assert.Equal(t, "preliminary", session.Phase)
	assert.True(t, session.Autonomous)

	rec = s.do(http.MethodPut, "/api/v1/sessions/"+id+"/autonomous", map[string]interface{}{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code)
	s.data(rec, &session)
	assert.False(t, session.Autonomous)

	for want := 1; want <= 2; want++ {
		rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/save", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var saved struct {
			Version int `json:"version"`
		}
		s.data(rec, &saved)
		assert.Equal(t, want, saved.Version)
	}

	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/load", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CreateSessionValidation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{}`},
		{"unknown field", `{"name":"x","owner":"y"}`},
		{"malformed", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION", s.errorOf(rec).Type)
		})
	}
}

func TestRouter_ListSessionsPaginates(t *testing.T) {
	s := newTestServer(t, nil)
	for i := 0; i < 3; i++ {
		s.createSession(fmt.Sprintf("session-%d", i))
	}

	rec := s.do(http.MethodGet, "/api/v1/sessions?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Meta.Pagination)
	assert.Equal(t, 3, env.Meta.Pagination.Total)
	assert.NotEmpty(t, env.Meta.RequestID)

	var page []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page, 2)
}

func TestRouter_ModelEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createSession("model")

	s.addElement(id, "crm", "application_component", "application")
	s.addElement(id, "billing", "application_component", "application")
	s.addElement(id, "sales", "business_process", "business")
	s.relate(id, "r1", "crm", "sales")
	s.relate(id, "r2", "billing", "crm")

	t.Run("duplicate element", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/elements", map[string]interface{}{
			"id": "crm", "name": "crm", "element_type": "application_component", "layer": "application",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "DUPLICATE_ID", s.errorOf(rec).Code)
	})

	t.Run("type outside layer", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/elements", map[string]interface{}{
			"name": "x", "element_type": "node", "layer": "business",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/relationships", map[string]interface{}{
			"source_id": "crm", "target_id": "ghost", "relationship_type": "flow",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "UNKNOWN_ELEMENT", s.errorOf(rec).Code)
	})

	t.Run("dependencies with depth", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/sessions/"+id+"/elements/billing/dependencies?depth=2", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var deps struct {
			Outgoing []struct {
				Element struct {
					ID string `json:"id"`
				} `json:"element"`
				Distance int `json:"distance"`
			} `json:"outgoing"`
		}
		s.data(rec, &deps)
		require.Len(t, deps.Outgoing, 2)
		assert.Equal(t, "crm", deps.Outgoing[0].Element.ID)
		assert.Equal(t, 1, deps.Outgoing[0].Distance)
		assert.Equal(t, "sales", deps.Outgoing[1].Element.ID)
		assert.Equal(t, 2, deps.Outgoing[1].Distance)
	})

	t.Run("invalid depth", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/v1/sessions/"+id+"/elements/crm/dependencies?depth=two", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("remove element cascades", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/api/v1/sessions/"+id+"/elements/crm", nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.do(http.MethodGet, "/api/v1/sessions/"+id+"/model", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var model struct {
			Elements      []json.RawMessage `json:"elements"`
			Relationships []json.RawMessage `json:"relationships"`
		}
		s.data(rec, &model)
		assert.Len(t, model.Elements, 2)
		assert.Empty(t, model.Relationships)
	})

	t.Run("remove unknown relationship", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/api/v1/sessions/"+id+"/relationships/r9", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouter_AnalysisAndHealth(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createSession("analysis")
	s.addElement(id, "crm", "application_component", "application")

	rec := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/analysis", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Insights []struct {
			Rule string `json:"rule"`
		} `json:"insights"`
		ActionPlans []json.RawMessage `json:"action_plans"`
	}
	s.data(rec, &result)
	assert.NotEmpty(t, result.Insights)

	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/analysis", map[string]interface{}{"kinds": []string{"magic"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/sessions/"+id+"/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var insights []json.RawMessage
	s.data(rec, &insights)
	assert.Len(t, insights, len(result.Insights))

	rec = s.do(http.MethodGet, "/api/v1/sessions/"+id+"/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Score         int    `json:"score"`
		Status        string `json:"status"`
		TotalInsights int    `json:"total_insights"`
	}
	s.data(rec, &health)
	assert.Equal(t, len(result.Insights), health.TotalInsights)
	assert.LessOrEqual(t, health.Score, 100)

	rec = s.do(http.MethodGet, "/api/v1/sessions/"+id+"/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "Elements: 1")
}

func TestRouter_Impact(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createSession("impact")
	s.addElement(id, "core", "application_component", "application")
	for i := 0; i < 6; i++ {
		spoke := fmt.Sprintf("spoke-%d", i)
		s.addElement(id, spoke, "application_component", "application")
		s.relate(id, "rel-"+spoke, spoke, "core")
	}

	rec := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/impact", map[string]interface{}{
		"element_id": "core", "change_type": "replace",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var impact struct {
		Assessment struct {
			Severity         string `json:"severity"`
			DirectlyAffected int    `json:"directly_affected"`
		} `json:"assessment"`
		MitigationPlan *struct {
			Title string `json:"title"`
		} `json:"mitigation_plan"`
	}
	s.data(rec, &impact)
	assert.Equal(t, "high", impact.Assessment.Severity)
	assert.Equal(t, 6, impact.Assessment.DirectlyAffected)
	require.NotNil(t, impact.MitigationPlan)

	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/impact", map[string]interface{}{
		"element_id": "core", "change_type": "rename",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/impact", map[string]interface{}{
		"element_id": "ghost", "change_type": "modify",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Decisions(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createSession("decisions")

	rec := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/decisions", decisionBody(false))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_OPTION_SET", s.errorOf(rec).Code)

	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/decisions",
		decisionBody(false, option("esb", 0.6), option("mesh", 0.9)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result struct {
		Recommended struct {
			ID string `json:"id"`
		} `json:"recommended_option"`
		Context struct {
			Layer string `json:"layer"`
		} `json:"context"`
		ReasoningSource string `json:"reasoning_source"`
	}
	s.data(rec, &result)
	assert.Equal(t, "mesh", result.Recommended.ID)
	assert.Equal(t, "motivation", result.Context.Layer)
	assert.Equal(t, "rule_based", result.ReasoningSource)

	tests := []struct {
		name  string
		query string
		count int
		code  int
	}{
		{"all", "", 1, http.StatusOK},
		{"by phase", "?phase=preliminary", 1, http.StatusOK},
		{"other phase", "?phase=business_architecture", 0, http.StatusOK},
		{"by type", "?type=technical", 1, http.StatusOK},
		{"phase and type", "?phase=preliminary&type=strategic", 0, http.StatusOK},
		{"unknown type", "?type=magic", 0, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodGet, "/api/v1/sessions/"+id+"/decisions"+tt.query, nil)
			require.Equal(t, tt.code, rec.Code)
			if tt.code != http.StatusOK {
				return
			}
			var results []json.RawMessage
			s.data(rec, &results)
			assert.Len(t, results, tt.count)
		})
	}
}

func TestRouter_DecisionTypeMustBeKnown(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createSession("decision-types")

	tests := []struct {
		name         string
		decisionType interface{}
		code         int
	}{
		{"misspelled", "strategc", http.StatusBadRequest},
		{"missing", nil, http.StatusBadRequest},
		{"empty", "", http.StatusBadRequest},
		{"wrong case", "Strategic", http.StatusBadRequest},
		{"known", "strategic", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := decisionBody(false, option("a", 0.5), option("b", 0.7))
			if tt.decisionType == nil {
				delete(body, "decision_type")
			} else {
				body["decision_type"] = tt.decisionType
			}

			rec := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/decisions", body)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.code == http.StatusBadRequest {
				assert.Equal(t, "VALIDATION", s.errorOf(rec).Type)
			}
		})
	}

	rec := s.do(http.MethodGet, "/api/v1/sessions/"+id+"/decisions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var results []json.RawMessage
	s.data(rec, &results)
	assert.Len(t, results, 1)
}

func TestRouter_AIDecisionsAreRateLimited(t *testing.T) {
	limiter := ratelimit.NewTokenBucketLimiter(1, time.Hour)
	s := newTestServer(t, limiter)
	id := s.createSession("throttled")

	body := decisionBody(true, option("a", 0.5))

	rec := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/decisions", decisionBody(true))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_OPTION_SET", s.errorOf(rec).Code)

	invalid := decisionBody(true, option("a", 0.5))
	invalid["decision_type"] = "strategc"
	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/decisions", invalid)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/decisions", body)
	require.Equal(t, http.StatusCreated, rec.Code, "rejected requests do not spend the AI quota: %s", rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/decisions", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMIT", s.errorOf(rec).Type)

	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/decisions", decisionBody(false, option("a", 0.5)))
	assert.Equal(t, http.StatusCreated, rec.Code, "rule-based decisions are not throttled")

	require.NoError(t, limiter.Reset(context.Background(), id))
	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/decisions", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_Phases(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.createSession("phases")

	rec := s.do(http.MethodPost, "/api/v1/sessions/"+id+"/phase", map[string]interface{}{"phase": "business_architecture"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var started struct {
		Phase           string            `json:"phase"`
		Recommendations []json.RawMessage `json:"recommendations"`
	}
	s.data(rec, &started)
	assert.Equal(t, "business_architecture", started.Phase)
	assert.NotEmpty(t, started.Recommendations)

	rec = s.do(http.MethodPost, "/api/v1/sessions/"+id+"/phase", map[string]interface{}{"phase": "phase_z"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/v1/sessions/"+id+"/phase/context", map[string]interface{}{
		"stakeholder_engagement": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var status struct {
		Phase   string `json:"phase"`
		Context struct {
			StakeholderEngagement bool `json:"stakeholder_engagement"`
		} `json:"context"`
		DecisionsMade int `json:"decisions_made"`
	}
	s.data(rec, &status)
	assert.Equal(t, "business_architecture", status.Phase)
	assert.True(t, status.Context.StakeholderEngagement)
	assert.Zero(t, status.DecisionsMade)

	rec = s.do(http.MethodGet, "/api/v1/sessions/"+id+"/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var log []struct {
		EventType string `json:"event_type"`
	}
	s.data(rec, &log)
	require.Len(t, log, 2)
	assert.Equal(t, "controller.phase_started", log[0].EventType)
	assert.Equal(t, "controller.phase_context_updated", log[1].EventType)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(http.MethodGet, "/api/v1/sessions/missing", nil)

	rec := s.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "archintel_test_http_requests_total")
	assert.Contains(t, body, `route="/api/v1/sessions/{sessionID}"`)
}
