package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"archintel/application/ports"
	pkgerrors "archintel/pkg/errors"
)

// SessionRepository keeps session snapshots in process memory. Snapshots are
// stored as JSON so callers never share state with the store.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]storedSession
	logger   *zap.Logger
}

type storedSession struct {
	summary ports.SessionSummary
	payload []byte
}

// NewSessionRepository creates an empty in-memory repository
func NewSessionRepository(logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{
		sessions: make(map[string]storedSession),
		logger:   logger,
	}
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

// Save stores a snapshot if its version follows the stored one
func (r *SessionRepository) Save(ctx context.Context, snapshot *ports.SessionSnapshot) error {
	if snapshot == nil || snapshot.SessionID == "" {
		return pkgerrors.NewValidationError("session snapshot requires a session id")
	}
	if snapshot.Version < 1 {
		return pkgerrors.NewValidationError("session snapshot version must be at least 1")
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode session snapshot").WithCause(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.sessions[snapshot.SessionID]
	switch {
	case !exists && snapshot.Version != 1,
		exists && stored.summary.Version != snapshot.Version-1:
		return pkgerrors.NewConflictError(fmt.Sprintf(
			"session '%s' was modified concurrently; expected stored version %d",
			snapshot.SessionID, snapshot.Version-1,
		))
	}

	r.sessions[snapshot.SessionID] = storedSession{
		summary: ports.SessionSummary{
			SessionID: snapshot.SessionID,
			Name:      snapshot.Name,
			Phase:     snapshot.Phase,
			Version:   snapshot.Version,
			UpdatedAt: snapshot.UpdatedAt,
		},
		payload: payload,
	}

	r.logger.Debug("Session stored",
		zap.String("sessionID", snapshot.SessionID),
		zap.Int("version", snapshot.Version),
	)
	return nil
}

// Load returns a decoded copy of the stored snapshot
func (r *SessionRepository) Load(ctx context.Context, sessionID string) (*ports.SessionSnapshot, error) {
	r.mu.RLock()
	stored, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.NewNotFoundError("session")
	}

	var snapshot ports.SessionSnapshot
	if err := json.Unmarshal(stored.payload, &snapshot); err != nil {
		return nil, pkgerrors.NewInternalError("failed to decode session snapshot").WithCause(err)
	}
	return &snapshot, nil
}

// List returns every stored session, most recently updated first
func (r *SessionRepository) List(ctx context.Context) ([]ports.SessionSummary, error) {
	r.mu.RLock()
	summaries := make([]ports.SessionSummary, 0, len(r.sessions))
	for _, stored := range r.sessions {
		summaries = append(summaries, stored.summary)
	}
	r.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].SessionID < summaries[j].SessionID
		}
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Delete removes a stored session
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return pkgerrors.NewNotFoundError("session")
	}
	delete(r.sessions, sessionID)
	return nil
}
