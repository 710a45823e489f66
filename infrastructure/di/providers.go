package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"

	"archintel/application/ports"
	"archintel/application/services"
	domainconfig "archintel/domain/config"
	"archintel/domain/services/advisor"
	"archintel/domain/services/analysis"
	"archintel/domain/services/decision"
	"archintel/infrastructure/ai"
	"archintel/infrastructure/config"
	"archintel/infrastructure/messaging/eventbridge"
	"archintel/infrastructure/observability"
	"archintel/infrastructure/persistence/dynamodb"
	"archintel/infrastructure/persistence/memory"
	tracing "archintel/pkg/observability"
	"archintel/pkg/ratelimit"
)

// ServiceName names metrics and trace segments
const ServiceName = "archintel"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		zapCfg.Level = level
	}

	return zapCfg.Build()
}

// ProvideDomainConfig selects the business rules for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	domainCfg := domainconfig.LoadDomainConfig(cfg.Environment)
	if err := domainCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid domain configuration: %w", err)
	}
	return domainCfg, nil
}

// ProvideAWSConfig creates AWS configuration. SDK calls are traced when tracing is enabled.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideSessionRepository selects the persistence backend
func ProvideSessionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SessionRepository {
	if cfg.PersistenceBackend == config.PersistenceDynamoDB {
		return dynamodb.NewSessionRepository(client, cfg.SessionsTable, logger)
	}
	return memory.NewSessionRepository(logger)
}

// ProvideSessionLock creates the worker lock. Only the dynamodb backend has one.
func ProvideSessionLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *dynamodb.SessionLock {
	if cfg.PersistenceBackend != config.PersistenceDynamoDB {
		return nil
	}
	return dynamodb.NewSessionLock(client, cfg.SessionsTable, logger)
}

// ProvideEventPublisher creates the activity publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEventPublishing {
		return eventbridge.NoopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideReasoningEnricher creates the AI reasoning adapter, or nil when AI reasoning is off
func ProvideReasoningEnricher(cfg *config.Config, logger *zap.Logger) decision.ReasoningEnricher {
	if !cfg.EnableAIReasoning {
		return nil
	}

	reasonerCfg := ai.DefaultReasonerConfig(cfg.OpenAIModel)
	reasonerCfg.Timeout = time.Duration(cfg.AITimeoutSeconds) * time.Second
	reasonerCfg.Temperature = float32(cfg.AITemperature)

	return ai.NewOpenAIReasoner(ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), reasonerCfg, logger)
}

// ProvideAnalyzer creates the structural analyzer
func ProvideAnalyzer(domainCfg *domainconfig.DomainConfig) *analysis.Analyzer {
	return analysis.NewAnalyzerWithConfig(domainCfg)
}

// ProvideDecisionEngine creates the decision engine
func ProvideDecisionEngine(domainCfg *domainconfig.DomainConfig, enricher decision.ReasoningEnricher) *decision.Engine {
	return decision.NewEngineWithConfig(domainCfg, enricher)
}

// ProvideAdvisor creates the phase advisor from the embedded templates
func ProvideAdvisor(domainCfg *domainconfig.DomainConfig) (*advisor.Advisor, error) {
	return advisor.NewAdvisor(domainCfg)
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are off
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(ServiceName)
}

// ProvideTracer creates the X-Ray tracer, or nil when tracing is off
func ProvideTracer(cfg *config.Config) *tracing.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	name := ServiceName
	if cfg.LambdaFunctionName != "" {
		name = cfg.LambdaFunctionName
	}
	return tracing.NewTracer(name)
}

// ProvideAILimiter creates the per-session budget for AI enriched decisions
func ProvideAILimiter(cfg *config.Config) *ratelimit.TokenBucketLimiter {
	if !cfg.EnableAIReasoning || cfg.AIRequestsPerHour <= 0 {
		return nil
	}
	return ratelimit.NewTokenBucketLimiter(cfg.AIRequestsPerHour, time.Hour/time.Duration(cfg.AIRequestsPerHour))
}

// ProvideControllerDependencies bundles the collaborators shared by every session
func ProvideControllerDependencies(
	domainCfg *domainconfig.DomainConfig,
	analyzer *analysis.Analyzer,
	engine *decision.Engine,
	adv *advisor.Advisor,
	publisher ports.EventPublisher,
	metrics *observability.Collector,
	logger *zap.Logger,
) services.ControllerDependencies {
	deps := services.ControllerDependencies{
		Config:    domainCfg,
		Analyzer:  analyzer,
		Engine:    engine,
		Advisor:   adv,
		Publisher: publisher,
		Logger:    logger,
	}
	// Metrics stays a nil interface when the collector is off
	if metrics != nil {
		deps.Metrics = metrics
	}
	return deps
}

// ProvideSessionService creates the session manager
func ProvideSessionService(
	repo ports.SessionRepository,
	deps services.ControllerDependencies,
	cfg *config.Config,
	logger *zap.Logger,
) *services.SessionService {
	return services.NewSessionService(repo, deps, cfg.AutonomousMode, logger)
}
