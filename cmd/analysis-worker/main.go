package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"archintel/infrastructure/config"
	"archintel/infrastructure/di"
	"archintel/infrastructure/persistence/dynamodb"
	"archintel/interfaces/worker"
)

// sessionLocker adapts the DynamoDB session lock to the worker
type sessionLocker struct {
	lock *dynamodb.SessionLock
}

func (l sessionLocker) Acquire(ctx context.Context, sessionID, owner string, duration time.Duration) (worker.Releaser, error) {
	held, err := l.lock.Acquire(ctx, sessionID, owner, duration)
	if errors.Is(err, dynamodb.ErrLockHeld) {
		return nil, worker.ErrLockHeld
	}
	if err != nil {
		return nil, err
	}
	return held, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.PersistenceBackend != config.PersistenceDynamoDB {
		log.Fatalf("Analysis worker requires the %s persistence backend, got %q", config.PersistenceDynamoDB, cfg.PersistenceBackend)
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	var locker worker.Locker
	if container.SessionLock != nil {
		locker = sessionLocker{lock: container.SessionLock}
	}

	analysisWorker := worker.NewAnalysisWorker(container.Sessions, locker, container.Tracer, container.Logger)
	container.Logger.Info("Analysis worker ready", zap.String("table", cfg.SessionsTable))

	lambda.Start(analysisWorker.HandleEvent)
}
