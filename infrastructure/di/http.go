package di

import (
	"net/http"

	"archintel/interfaces/http/rest"
	"archintel/pkg/ratelimit"
)

// HTTPHandler builds the REST handler from the container.
// Disabled collectors stay nil interfaces so the router can skip them.
func (c *Container) HTTPHandler() http.Handler {
	var metrics rest.MetricsCollector
	if c.Metrics != nil {
		metrics = c.Metrics
	}
	var limiter ratelimit.RateLimiter
	if c.AILimiter != nil {
		limiter = c.AILimiter
	}

	router := rest.NewRouter(
		c.Sessions,
		metrics,
		c.Tracer,
		limiter,
		rest.RouterOptions{
			EnableCORS:     c.Config.EnableCORS,
			AllowedOrigins: c.Config.CORSAllowedOrigins,
			Debug:          c.Config.IsDevelopment(),
		},
		c.Logger,
	)
	return router.Setup()
}
