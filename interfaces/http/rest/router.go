package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"archintel/application/services"
	"archintel/interfaces/http/rest/handlers"
	"archintel/interfaces/http/rest/middleware"
	pkgerrors "archintel/pkg/errors"
	"archintel/pkg/observability"
	"archintel/pkg/ratelimit"
)

// MetricsCollector serves /metrics and observes every request
type MetricsCollector interface {
	middleware.RequestRecorder
	Handler() http.Handler
}

// RouterOptions toggles optional middleware
type RouterOptions struct {
	EnableCORS     bool
	AllowedOrigins []string
	Debug          bool
	RequestTimeout time.Duration
}

// Router creates and configures the HTTP router
type Router struct {
	sessions  *services.SessionService
	metrics   MetricsCollector
	tracer    *observability.Tracer
	aiLimiter ratelimit.RateLimiter
	options   RouterOptions
	logger    *zap.Logger
}

// NewRouter creates a new router instance. Metrics, tracer and limiter may be nil.
func NewRouter(
	sessions *services.SessionService,
	metrics MetricsCollector,
	tracer *observability.Tracer,
	aiLimiter ratelimit.RateLimiter,
	options RouterOptions,
	logger *zap.Logger,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.RequestTimeout <= 0 {
		options.RequestTimeout = 60 * time.Second
	}
	if len(options.AllowedOrigins) == 0 {
		options.AllowedOrigins = []string{"http://localhost:3000"}
	}
	return &Router{
		sessions:  sessions,
		metrics:   metrics,
		tracer:    tracer,
		aiLimiter: aiLimiter,
		options:   options,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(rt.tracer.Middleware)
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}
	router.Use(chimiddleware.Timeout(rt.options.RequestTimeout))

	if rt.options.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.options.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.options.Debug)
	sessionHandler := handlers.NewSessionHandler(rt.sessions, errorHandler, rt.logger)
	modelHandler := handlers.NewModelHandler(rt.sessions, errorHandler, rt.logger)
	analysisHandler := handlers.NewAnalysisHandler(rt.sessions, errorHandler, rt.logger)
	decisionHandler := handlers.NewDecisionHandler(rt.sessions, rt.aiLimiter, errorHandler, rt.logger)
	phaseHandler := handlers.NewPhaseHandler(rt.sessions, errorHandler, rt.logger)

	router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", sessionHandler.CreateSession)
		r.Get("/", sessionHandler.ListSessions)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Delete("/", sessionHandler.DeleteSession)
			r.Post("/save", sessionHandler.SaveSession)
			r.Post("/load", sessionHandler.LoadSession)
			r.Put("/autonomous", sessionHandler.SetAutonomous)
			r.Get("/model", sessionHandler.GetModel)
			r.Get("/events", sessionHandler.GetEvents)

			r.Post("/elements", modelHandler.AddElement)
			r.Delete("/elements/{elementID}", modelHandler.RemoveElement)
			r.Get("/elements/{elementID}/dependencies", modelHandler.GetDependencies)
			r.Post("/relationships", modelHandler.AddRelationship)
			r.Delete("/relationships/{relationshipID}", modelHandler.RemoveRelationship)

			r.Post("/analysis", analysisHandler.Analyze)
			r.Post("/impact", analysisHandler.AssessImpact)
			r.Get("/insights", analysisHandler.ListInsights)
			r.Get("/action-plans", analysisHandler.ListActionPlans)
			r.Get("/health", analysisHandler.GetHealth)
			r.Get("/report", analysisHandler.GetReport)

			r.Post("/decisions", decisionHandler.MakeDecision)
			r.Get("/decisions", decisionHandler.ListDecisions)

			r.Post("/phase", phaseHandler.StartPhase)
			r.Get("/phase", phaseHandler.GetPhaseStatus)
			r.Put("/phase/context", phaseHandler.UpdatePhaseContext)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
