package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archintel/application/services"
	"archintel/domain/core/entities"
	"archintel/domain/core/valueobjects"
	"archintel/infrastructure/persistence/memory"
	pkgerrors "archintel/pkg/errors"
)

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) Acquire(ctx context.Context, sessionID, owner string, duration time.Duration) (Releaser, error) {
	args := m.Called(ctx, sessionID, owner, duration)
	if r := args.Get(0); r != nil {
		return r.(Releaser), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockReleaser struct {
	mock.Mock
}

func (m *mockReleaser) Release(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// savedSession creates a session with one application component and persists it
func savedSession(t *testing.T) (*services.SessionService, string) {
	t.Helper()
	ctx := context.Background()

	sessions := services.NewSessionService(memory.NewSessionRepository(nil), services.ControllerDependencies{}, true, nil)
	controller, err := sessions.Create(ctx, "payments", nil)
	require.NoError(t, err)

	element, err := entities.NewElement("billing", "Billing", valueobjects.ElementApplicationComponent, valueobjects.LayerApplication)
	require.NoError(t, err)
	require.NoError(t, controller.AddElement(ctx, element))

	version, err := sessions.Save(ctx, controller.SessionID())
	require.NoError(t, err)
	require.Equal(t, 1, version)
	return sessions, controller.SessionID()
}

func cloudWatchEvent(t *testing.T, detailType string, detail interface{}) json.RawMessage {
	t.Helper()
	rawDetail, err := json.Marshal(detail)
	require.NoError(t, err)
	raw, err := json.Marshal(map[string]interface{}{
		"version":     "0",
		"id":          "evt-1",
		"detail-type": detailType,
		"source":      "archintel.controller",
		"detail":      json.RawMessage(rawDetail),
	})
	require.NoError(t, err)
	return raw
}

func TestAnalysisWorker_HandleEventBridgeEvent(t *testing.T) {
	sessions, sessionID := savedSession(t)
	w := NewAnalysisWorker(sessions, nil, nil, nil)

	result, err := w.HandleEvent(context.Background(), cloudWatchEvent(t, DetailTypeAnalysisRequested, AnalysisRequest{
		SessionID: sessionID,
		Kinds:     []string{"gaps"},
	}))

	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 2, result.Version)
	assert.NotZero(t, result.Insights)
	assert.Zero(t, result.ActionPlans, "medium gaps get no plans")
	assert.Less(t, result.HealthScore, 100)

	controller, err := sessions.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, controller.Insights(), result.Insights)
}

func TestAnalysisWorker_HandleDirectInvocation(t *testing.T) {
	sessions, sessionID := savedSession(t)
	w := NewAnalysisWorker(sessions, nil, nil, nil)

	raw, err := json.Marshal(AnalysisRequest{SessionID: sessionID})
	require.NoError(t, err)

	result, err := w.HandleEvent(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Version)
}

func TestAnalysisWorker_RejectsInvalidEvents(t *testing.T) {
	sessions, sessionID := savedSession(t)
	w := NewAnalysisWorker(sessions, nil, nil, nil)

	tests := []struct {
		name  string
		event json.RawMessage
	}{
		{"wrong detail type", cloudWatchEvent(t, "SomethingElse", AnalysisRequest{SessionID: sessionID})},
		{"missing session id", cloudWatchEvent(t, DetailTypeAnalysisRequested, AnalysisRequest{})},
		{"unknown kind", cloudWatchEvent(t, DetailTypeAnalysisRequested, AnalysisRequest{SessionID: sessionID, Kinds: []string{"astrology"}})},
		{"not json", json.RawMessage(`{`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.HandleEvent(context.Background(), tt.event)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
		})
	}
}

func TestAnalysisWorker_UnknownSessionIsSkipped(t *testing.T) {
	sessions, _ := savedSession(t)
	w := NewAnalysisWorker(sessions, nil, nil, nil)

	result, err := w.Analyze(context.Background(), AnalysisRequest{SessionID: "missing"})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
}

func TestAnalysisWorker_Locking(t *testing.T) {
	t.Run("held lock skips the run", func(t *testing.T) {
		sessions, sessionID := savedSession(t)
		locker := new(mockLocker)
		locker.On("Acquire", mock.Anything, sessionID, mock.Anything, defaultLockDuration).Return(nil, ErrLockHeld)

		w := NewAnalysisWorker(sessions, locker, nil, nil)
		result, err := w.Analyze(context.Background(), AnalysisRequest{SessionID: sessionID})

		require.NoError(t, err)
		assert.True(t, result.Skipped)
		locker.AssertExpectations(t)
	})

	t.Run("lock is released after the run", func(t *testing.T) {
		sessions, sessionID := savedSession(t)
		releaser := new(mockReleaser)
		releaser.On("Release", mock.Anything).Return(nil).Once()
		locker := new(mockLocker)
		locker.On("Acquire", mock.Anything, sessionID, mock.Anything, defaultLockDuration).Return(releaser, nil)

		w := NewAnalysisWorker(sessions, locker, nil, nil)
		result, err := w.Analyze(context.Background(), AnalysisRequest{SessionID: sessionID})

		require.NoError(t, err)
		assert.Equal(t, 2, result.Version)
		releaser.AssertExpectations(t)
	})

	t.Run("lock backend failure is retried", func(t *testing.T) {
		sessions, sessionID := savedSession(t)
		locker := new(mockLocker)
		locker.On("Acquire", mock.Anything, sessionID, mock.Anything, defaultLockDuration).Return(nil, errors.New("throttled"))

		w := NewAnalysisWorker(sessions, locker, nil, nil)
		_, err := w.Analyze(context.Background(), AnalysisRequest{SessionID: sessionID})
		assert.EqualError(t, err, "throttled")
	})
}
