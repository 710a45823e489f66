package di

import (
	"go.uber.org/zap"

	"archintel/application/ports"
	"archintel/application/services"
	domainconfig "archintel/domain/config"
	"archintel/infrastructure/config"
	"archintel/infrastructure/observability"
	"archintel/infrastructure/persistence/dynamodb"
	tracing "archintel/pkg/observability"
	"archintel/pkg/ratelimit"
)

// Container holds all application dependencies.
// Metrics, Tracer, AILimiter and SessionLock are nil when their feature is off.
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DomainConfig *domainconfig.DomainConfig
	Repository   ports.SessionRepository
	SessionLock  *dynamodb.SessionLock
	Publisher    ports.EventPublisher
	Metrics      *observability.Collector
	Tracer       *tracing.Tracer
	AILimiter    *ratelimit.TokenBucketLimiter
	Sessions     *services.SessionService
}
