package dynamodb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archintel/application/ports"
	"archintel/domain/core/aggregates"
	"archintel/domain/core/valueobjects"
	pkgerrors "archintel/pkg/errors"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	return &dynamodb.PutItemOutput{}, args.Error(0)
}

func (m *mockClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *mockClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, params)
	return &dynamodb.DeleteItemOutput{}, args.Error(0)
}

func (m *mockClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ScanOutput), args.Error(1)
}

func testSnapshot(version int) *ports.SessionSnapshot {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &ports.SessionSnapshot{
		SessionID: "s-1",
		Name:      "payments",
		Version:   version,
		Phase:     valueobjects.PhaseBusinessArchitecture,
		Model: aggregates.ModelSnapshot{
			ID:   "m-1",
			Name: "payments",
			Elements: []aggregates.ElementRecord{
				{ID: "crm", Name: "CRM", Type: "application_component", Layer: "application"},
			},
			Relationships: []aggregates.RelationshipRecord{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSessionRepository_SaveConditions(t *testing.T) {
	tests := []struct {
		name      string
		version   int
		condition string
	}{
		{"first save requires a fresh item", 1, "attribute_not_exists"},
		{"later saves require the previous version", 3, "="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mockClient)
			client.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
				if in.ConditionExpression == nil {
					return false
				}
				var item sessionItem
				if err := attributevalue.UnmarshalMap(in.Item, &item); err != nil {
					return false
				}
				return item.PK == "SESSION#s-1" &&
					item.Version == tt.version &&
					item.Elements == 1 &&
					strings.Contains(*in.ConditionExpression, tt.condition)
			})).Return(nil).Once()

			repo := NewSessionRepository(client, "sessions", nil)
			require.NoError(t, repo.Save(context.Background(), testSnapshot(tt.version)))
			client.AssertExpectations(t)
		})
	}
}

func TestSessionRepository_SaveConflict(t *testing.T) {
	client := new(mockClient)
	client.On("PutItem", mock.Anything, mock.Anything).
		Return(&types.ConditionalCheckFailedException{Message: stringPtr("conditional check failed")})

	repo := NewSessionRepository(client, "sessions", nil)
	err := repo.Save(context.Background(), testSnapshot(2))

	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestSessionRepository_SaveRejectsInvalidSnapshot(t *testing.T) {
	repo := NewSessionRepository(new(mockClient), "sessions", nil)

	assert.True(t, pkgerrors.IsValidation(repo.Save(context.Background(), nil)))
	assert.True(t, pkgerrors.IsValidation(repo.Save(context.Background(), testSnapshot(0))))
}

func TestSessionRepository_LoadRoundTrip(t *testing.T) {
	var stored map[string]types.AttributeValue
	client := new(mockClient)
	client.On("PutItem", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*dynamodb.PutItemInput).Item
	}).Return(nil)

	repo := NewSessionRepository(client, "sessions", nil)
	original := testSnapshot(1)
	require.NoError(t, repo.Save(context.Background(), original))

	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: stored}, nil)

	loaded, err := repo.Load(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, original.SessionID, loaded.SessionID)
	assert.Equal(t, original.Phase, loaded.Phase)
	assert.Equal(t, 1, loaded.Version)
	assert.Equal(t, original.Model, loaded.Model)
	assert.True(t, original.UpdatedAt.Equal(loaded.UpdatedAt))
}

func TestSessionRepository_LoadMissing(t *testing.T) {
	client := new(mockClient)
	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := NewSessionRepository(client, "sessions", nil).Load(context.Background(), "ghost")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSessionRepository_List(t *testing.T) {
	older, err := attributevalue.MarshalMap(sessionItem{
		SessionID: "old", Name: "old", Phase: "preliminary", Version: 1,
		UpdatedAt: "2026-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	newer, err := attributevalue.MarshalMap(sessionItem{
		SessionID: "new", Name: "new", Phase: "architecture_vision", Version: 4,
		UpdatedAt: "2026-02-01T00:00:00Z",
	})
	require.NoError(t, err)

	client := new(mockClient)
	client.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.FilterExpression != nil && in.ProjectionExpression != nil
	})).Return(&dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{older, newer}}, nil)

	summaries, err := NewSessionRepository(client, "sessions", nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "new", summaries[0].SessionID)
	assert.Equal(t, valueobjects.PhaseArchitectureVision, summaries[0].Phase)
	assert.Equal(t, 4, summaries[0].Version)
}

func TestSessionRepository_Delete(t *testing.T) {
	client := new(mockClient)
	client.On("DeleteItem", mock.Anything, mock.Anything).
		Return(&types.ConditionalCheckFailedException{Message: stringPtr("missing")}).Once()
	client.On("DeleteItem", mock.Anything, mock.Anything).Return(errors.New("throttled")).Once()

	repo := NewSessionRepository(client, "sessions", nil)

	assert.True(t, pkgerrors.IsNotFound(repo.Delete(context.Background(), "ghost")))
	err := repo.Delete(context.Background(), "s-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
}

func TestSessionLock(t *testing.T) {
	client := new(mockClient)
	client.On("PutItem", mock.Anything, mock.Anything).Return(nil).Once()
	client.On("PutItem", mock.Anything, mock.Anything).
		Return(&types.ConditionalCheckFailedException{Message: stringPtr("held")}).Once()
	client.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return in.ConditionExpression != nil
	})).Return(nil).Once()

	locks := NewSessionLock(client, "sessions", nil)

	lock, err := locks.Acquire(context.Background(), "s-1", "worker-a", time.Minute)
	require.NoError(t, err)
	assert.False(t, lock.IsExpired())

	_, err = locks.Acquire(context.Background(), "s-1", "worker-b", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, lock.Release(context.Background()))
	client.AssertExpectations(t)
}

func stringPtr(s string) *string {
	return &s
}
