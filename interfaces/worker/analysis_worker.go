// Package worker re-analyzes stored sessions in the background.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"archintel/application/services"
	"archintel/domain/services/analysis"
	pkgerrors "archintel/pkg/errors"
	"archintel/pkg/observability"
	"archintel/pkg/utils"
)

// DetailTypeAnalysisRequested is the EventBridge detail type the worker reacts to
const DetailTypeAnalysisRequested = "SessionAnalysisRequested"

// defaultLockDuration bounds how long a crashed worker can block a session
const defaultLockDuration = 2 * time.Minute

// ErrLockHeld is returned by a Locker when another worker owns the session
var ErrLockHeld = errors.New("session lock held by another worker")

// Releaser gives a held lock back
type Releaser interface {
	Release(ctx context.Context) error
}

// Locker serializes workers on one session
type Locker interface {
	Acquire(ctx context.Context, sessionID, owner string, duration time.Duration) (Releaser, error)
}

// AnalysisRequest is the event payload naming the session to re-analyze
type AnalysisRequest struct {
	SessionID string   `json:"session_id" validate:"required"`
	Kinds     []string `json:"kinds,omitempty" validate:"omitempty,dive,oneof=gaps dependencies patterns optimization"`
}

// AnalysisResult summarizes one worker run
type AnalysisResult struct {
	SessionID   string `json:"session_id"`
	Insights    int    `json:"insights"`
	ActionPlans int    `json:"action_plans"`
	HealthScore int    `json:"health_score"`
	Version     int    `json:"version"`
	Skipped     bool   `json:"skipped,omitempty"`
}

// AnalysisWorker loads a session, runs the analyzer over it and saves it again
type AnalysisWorker struct {
	sessions     *services.SessionService
	locker       Locker
	tracer       *observability.Tracer
	owner        string
	lockDuration time.Duration
	logger       *zap.Logger
}

// NewAnalysisWorker creates a worker. Locker and tracer may be nil.
func NewAnalysisWorker(sessions *services.SessionService, locker Locker, tracer *observability.Tracer, logger *zap.Logger) *AnalysisWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisWorker{
		sessions:     sessions,
		locker:       locker,
		tracer:       tracer,
		owner:        "analysis-worker-" + uuid.New().String(),
		lockDuration: defaultLockDuration,
		logger:       logger,
	}
}

// HandleEvent accepts either an EventBridge envelope or a bare AnalysisRequest
func (w *AnalysisWorker) HandleEvent(ctx context.Context, event json.RawMessage) (*AnalysisResult, error) {
	req, err := parseRequest(event)
	if err != nil {
		w.logger.Error("Dropping unparseable analysis event", zap.Error(err))
		return nil, err
	}
	return w.Analyze(ctx, req)
}

func parseRequest(event json.RawMessage) (AnalysisRequest, error) {
	var req AnalysisRequest

	var envelope lambdaevents.CloudWatchEvent
	if err := json.Unmarshal(event, &envelope); err == nil && envelope.DetailType != "" {
		if envelope.DetailType != DetailTypeAnalysisRequested {
			return req, pkgerrors.NewValidationError(fmt.Sprintf("unexpected detail type %q", envelope.DetailType))
		}
		if err := json.Unmarshal(envelope.Detail, &req); err != nil {
			return req, pkgerrors.NewValidationError("invalid event detail: " + err.Error())
		}
	} else if err := json.Unmarshal(event, &req); err != nil {
		return req, pkgerrors.NewValidationError("invalid analysis request: " + err.Error())
	}

	if err := utils.ValidateStruct(req); err != nil {
		return req, err
	}
	return req, nil
}

// Analyze runs one re-analysis. A session locked by another worker is skipped
// and an unknown session is reported without retry.
func (w *AnalysisWorker) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	logger := w.logger.With(zap.String("sessionID", req.SessionID))
	w.tracer.AddAnnotation(ctx, "sessionID", req.SessionID)

	if w.locker != nil {
		lock, err := w.locker.Acquire(ctx, req.SessionID, w.owner, w.lockDuration)
		if errors.Is(err, ErrLockHeld) {
			logger.Info("Session is being analyzed elsewhere, skipping")
			return &AnalysisResult{SessionID: req.SessionID, Skipped: true}, nil
		}
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release session lock", zap.Error(err))
			}
		}()
	}

	kinds := make([]analysis.Kind, 0, len(req.Kinds))
	for _, raw := range req.Kinds {
		kind, err := analysis.ParseKind(raw)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}

	result := &AnalysisResult{SessionID: req.SessionID}
	err := w.tracer.TraceFunction(ctx, "analyze-session", func(ctx context.Context) error {
		controller, err := w.sessions.Load(ctx, req.SessionID)
		if err != nil {
			return err
		}

		insights, plans, err := controller.AnalyzeArchitecture(ctx, kinds...)
		if err != nil {
			return err
		}
		health := controller.GetArchitectureHealth(ctx)

		version, err := w.sessions.Save(ctx, req.SessionID)
		if err != nil {
			return err
		}

		result.Insights = len(insights)
		result.ActionPlans = len(plans)
		result.HealthScore = health.Score
		result.Version = version
		return nil
	})
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			logger.Warn("Analysis requested for unknown session")
			return &AnalysisResult{SessionID: req.SessionID, Skipped: true}, nil
		}
		logger.Error("Session analysis failed", zap.Error(err))
		return nil, err
	}

	logger.Info("Session analyzed",
		zap.Int("insights", result.Insights),
		zap.Int("actionPlans", result.ActionPlans),
		zap.Int("healthScore", result.HealthScore),
		zap.Int("version", result.Version),
	)
	return result, nil
}
