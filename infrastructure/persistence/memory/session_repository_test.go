package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archintel/application/ports"
	"archintel/domain/core/valueobjects"
	pkgerrors "archintel/pkg/errors"
)

func snapshotAt(id string, version int, updated time.Time) *ports.SessionSnapshot {
	return &ports.SessionSnapshot{
		SessionID: id,
		Name:      id,
		Version:   version,
		Phase:     valueobjects.PhasePreliminary,
		UpdatedAt: updated,
	}
}

func TestSessionRepository_OptimisticVersioning(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(nil)
	now := time.Now()

	tests := []struct {
		name     string
		version  int
		conflict bool
	}{
		{"new session must start at version 1", 2, true},
		{"first save", 1, false},
		{"replaying version 1", 1, true},
		{"next version", 2, false},
		{"skipping a version", 4, true},
		{"following version", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Save(ctx, snapshotAt("s-1", tt.version, now))
			if tt.conflict {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsConflict(err))
				return
			}
			require.NoError(t, err)
		})
	}

	loaded, err := repo.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Version)
}

func TestSessionRepository_LoadReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(nil)
	original := snapshotAt("s-1", 1, time.Now())
	require.NoError(t, repo.Save(ctx, original))

	original.Name = "mutated after save"

	first, err := repo.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", first.Name)

	first.Name = "mutated after load"
	second, err := repo.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", second.Name)
}

func TestSessionRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(nil)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, snapshotAt("old", 1, base)))
	require.NoError(t, repo.Save(ctx, snapshotAt("new", 1, base.Add(time.Hour))))

	summaries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "new", summaries[0].SessionID)
	assert.Equal(t, "old", summaries[1].SessionID)

	require.NoError(t, repo.Delete(ctx, "old"))
	assert.True(t, pkgerrors.IsNotFound(repo.Delete(ctx, "old")))

	_, err = repo.Load(ctx, "old")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSessionRepository_InvalidSnapshot(t *testing.T) {
	repo := NewSessionRepository(nil)

	assert.True(t, pkgerrors.IsValidation(repo.Save(context.Background(), nil)))
	assert.True(t, pkgerrors.IsValidation(repo.Save(context.Background(), snapshotAt("", 1, time.Now()))))
	assert.True(t, pkgerrors.IsValidation(repo.Save(context.Background(), snapshotAt("s", 0, time.Now()))))
}

func TestSessionRepository_ConcurrentWritersConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(nil)
	require.NoError(t, repo.Save(ctx, snapshotAt("s-1", 1, time.Now())))

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Save(ctx, snapshotAt("s-1", 2, time.Now()))
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, pkgerrors.IsConflict(err))
		}
	}
	assert.Equal(t, 1, succeeded)
}
