package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"archintel/application/ports"
	"archintel/domain/core/entities"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Domain metrics
	Decisions        *prometheus.CounterVec
	Insights         *prometheus.CounterVec
	Activities       *prometheus.CounterVec
	HealthScore      *prometheus.GaugeVec
	AnalysisDuration prometheus.Histogram
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Decisions made by type, confidence and reasoning source",
			},
			[]string{"type", "confidence", "reasoning_source"},
		),
		Insights: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insights_total",
				Help:      "Insights discovered by rule and severity",
			},
			[]string{"rule", "severity"},
		),
		Activities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "activities_total",
				Help:      "Session event log entries by action",
			},
			[]string{"action"},
		),
		HealthScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "architecture_health_score",
				Help:      "Last assessed architecture health score per session",
			},
			[]string{"session_id"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Structural analysis duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Decisions,
		c.Insights,
		c.Activities,
		c.HealthScore,
		c.AnalysisDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

var _ ports.MetricsRecorder = (*Collector)(nil)

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordHTTPRequest records one served request
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDecision counts a decision
func (c *Collector) RecordDecision(decisionType, confidence, reasoningSource string) {
	c.Decisions.WithLabelValues(decisionType, confidence, reasoningSource).Inc()
}

// RecordInsights counts insights by rule and severity
func (c *Collector) RecordInsights(insights []entities.Insight) {
	for _, insight := range insights {
		c.Insights.WithLabelValues(insight.Rule, string(insight.Severity)).Inc()
	}
}

// RecordHealth sets the health gauge of a session
func (c *Collector) RecordHealth(sessionID string, score int) {
	c.HealthScore.WithLabelValues(sessionID).Set(float64(score))
}

// RecordActivity counts an event log entry
func (c *Collector) RecordActivity(action string) {
	c.Activities.WithLabelValues(action).Inc()
}

// RecordAnalysisDuration observes one analysis run
func (c *Collector) RecordAnalysisDuration(seconds float64) {
	c.AnalysisDuration.Observe(seconds)
}
