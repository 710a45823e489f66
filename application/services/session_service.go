package services

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"archintel/application/ports"
	pkgerrors "archintel/pkg/errors"
)

// SessionService keeps active sessions in memory and persists them through
// the session repository on request.
type SessionService struct {
	repo              ports.SessionRepository
	deps              ControllerDependencies
	defaultAutonomous bool
	logger            *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Controller
	flight   singleflight.Group
}

// NewSessionService creates a new session service
func NewSessionService(
	repo ports.SessionRepository,
	deps ControllerDependencies,
	defaultAutonomous bool,
	logger *zap.Logger,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Logger == nil {
		deps.Logger = logger
	}
	return &SessionService{
		repo:              repo,
		deps:              deps,
		defaultAutonomous: defaultAutonomous,
		logger:            logger,
		sessions:          make(map[string]*Controller),
	}
}

// Create starts a new session. A nil autonomous flag uses the service default.
func (s *SessionService) Create(ctx context.Context, name string, autonomous *bool) (*Controller, error) {
	mode := s.defaultAutonomous
	if autonomous != nil {
		mode = *autonomous
	}

	controller, err := NewController(name, mode, s.deps)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[controller.SessionID()] = controller
	s.mu.Unlock()

	s.logger.Info("Session created",
		zap.String("sessionID", controller.SessionID()),
		zap.String("name", controller.Name()),
		zap.Bool("autonomous", mode),
	)
	return controller, nil
}

// Get returns an active session, loading it from the repository when it is not in memory
func (s *SessionService) Get(ctx context.Context, sessionID string) (*Controller, error) {
	s.mu.RLock()
	controller, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return controller, nil
	}

	// Concurrent misses share one restore and always see the stored controller
	v, err, _ := s.flight.Do("get/"+sessionID, func() (interface{}, error) {
		return s.restore(ctx, sessionID, false)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Controller), nil
}

// List returns active and stored sessions, most recently updated first
func (s *SessionService) List(ctx context.Context) ([]ports.SessionSummary, error) {
	summaries := make(map[string]ports.SessionSummary)

	if s.repo != nil {
		stored, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, summary := range stored {
			summaries[summary.SessionID] = summary
		}
	}

	s.mu.RLock()
	for id, controller := range s.sessions {
		snapshot := controller.Snapshot()
		summaries[id] = ports.SessionSummary{
			SessionID: id,
			Name:      snapshot.Name,
			Phase:     snapshot.Phase,
			Version:   snapshot.Version - 1,
			UpdatedAt: snapshot.UpdatedAt,
		}
	}
	s.mu.RUnlock()

	result := make([]ports.SessionSummary, 0, len(summaries))
	for _, summary := range summaries {
		result = append(result, summary)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].SessionID < result[j].SessionID
		}
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// Save persists an active session and returns its new version
func (s *SessionService) Save(ctx context.Context, sessionID string) (int, error) {
	if s.repo == nil {
		return 0, pkgerrors.NewUnavailableError("session persistence is not configured")
	}

	s.mu.RLock()
	controller, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return 0, pkgerrors.NewNotFoundError("session")
	}

	snapshot := controller.Snapshot()
	if err := s.repo.Save(ctx, snapshot); err != nil {
		s.logger.Error("Failed to save session",
			zap.String("sessionID", sessionID),
			zap.Int("version", snapshot.Version),
			zap.Error(err),
		)
		return 0, err
	}

	controller.MarkSaved(snapshot.Version)
	s.logger.Info("Session saved",
		zap.String("sessionID", sessionID),
		zap.Int("version", snapshot.Version),
		zap.Int("elements", len(snapshot.Model.Elements)),
	)
	return snapshot.Version, nil
}

// Load reads a session from the repository, replacing any in-memory copy
func (s *SessionService) Load(ctx context.Context, sessionID string) (*Controller, error) {
	v, err, _ := s.flight.Do("load/"+sessionID, func() (interface{}, error) {
		return s.restore(ctx, sessionID, true)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Controller), nil
}

// restore rebuilds a controller from its stored snapshot. Without replace an
// already active controller wins, so every caller shares one instance.
func (s *SessionService) restore(ctx context.Context, sessionID string, replace bool) (*Controller, error) {
	if s.repo == nil {
		return nil, pkgerrors.NewNotFoundError("session")
	}

	if !replace {
		s.mu.RLock()
		active, ok := s.sessions[sessionID]
		s.mu.RUnlock()
		if ok {
			return active, nil
		}
	}

	snapshot, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	controller, err := RestoreController(snapshot, s.deps)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to restore session")
	}

	s.mu.Lock()
	if active, ok := s.sessions[sessionID]; ok && !replace {
		s.mu.Unlock()
		return active, nil
	}
	s.sessions[sessionID] = controller
	s.mu.Unlock()

	s.logger.Info("Session loaded",
		zap.String("sessionID", sessionID),
		zap.Int("version", snapshot.Version),
		zap.Bool("replaced", replace),
	)
	return controller, nil
}

// Delete drops a session from memory and from the repository
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, active := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.repo == nil {
		if !active {
			return pkgerrors.NewNotFoundError("session")
		}
		return nil
	}

	err := s.repo.Delete(ctx, sessionID)
	if err != nil && !(active && pkgerrors.IsNotFound(err)) {
		return err
	}
	return nil
}
