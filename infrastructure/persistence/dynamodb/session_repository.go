package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"archintel/application/ports"
	"archintel/domain/core/valueobjects"
	pkgerrors "archintel/pkg/errors"
)

const (
	sessionEntityType = "SESSION"
	snapshotSortKey   = "SNAPSHOT"
)

// SessionRepository stores session snapshots as single DynamoDB items.
// The full snapshot is kept as a JSON payload next to the summary attributes.
type SessionRepository struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(client Client, tableName string, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

// sessionItem represents the DynamoDB item structure for a session
type sessionItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	SessionID  string `dynamodbav:"SessionID"`
	Name       string `dynamodbav:"Name"`
	Phase      string `dynamodbav:"Phase"`
	Version    int    `dynamodbav:"Version"`
	Elements   int    `dynamodbav:"Elements"`
	Payload    string `dynamodbav:"Payload"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func sessionKey(sessionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("SESSION#%s", sessionID)},
		"SK": &types.AttributeValueMemberS{Value: snapshotSortKey},
	}
}

// Save persists a snapshot. The write is conditional on the stored version
// being exactly one behind the snapshot.
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

	item := sessionItem{
		PK:         fmt.Sprintf("SESSION#%s", snapshot.SessionID),
		SK:         snapshotSortKey,
		EntityType: sessionEntityType,
		SessionID:  snapshot.SessionID,
		Name:       snapshot.Name,
		Phase:      string(snapshot.Phase),
		Version:    snapshot.Version,
		Elements:   len(snapshot.Model.Elements),
		Payload:    string(payload),
		CreatedAt:  snapshot.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  snapshot.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	expr, err := expression.NewBuilder().WithCondition(versionCondition(snapshot.Version)).Build()
	if err != nil {
		return fmt.Errorf("failed to build session condition: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			r.logger.Debug("Session version conflict",
				zap.String("sessionID", snapshot.SessionID),
				zap.Int("version", snapshot.Version),
			)
			return pkgerrors.NewConflictError(fmt.Sprintf(
				"session '%s' was modified concurrently; expected stored version %d",
				snapshot.SessionID, snapshot.Version-1,
			))
		}
		r.logger.Error("Failed to save session to DynamoDB",
			zap.Error(err),
			zap.String("sessionID", snapshot.SessionID),
		)
		return pkgerrors.NewDatabaseError("save session", err)
	}

	r.logger.Debug("Saved session to DynamoDB",
		zap.String("sessionID", snapshot.SessionID),
		zap.Int("version", snapshot.Version),
		zap.Int("payloadBytes", len(payload)),
	)
	return nil
}

// versionCondition requires a fresh item for version 1 and the previous version otherwise
func versionCondition(version int) expression.ConditionBuilder {
	if version == 1 {
		return expression.AttributeNotExists(expression.Name("PK"))
	}
	return expression.Name("Version").Equal(expression.Value(version - 1))
}

// Load retrieves the latest snapshot of a session
func (r *SessionRepository) Load(ctx context.Context, sessionID string) (*ports.SessionSnapshot, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            sessionKey(sessionID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load session", err)
	}
	if len(result.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("session")
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	var snapshot ports.SessionSnapshot
	if err := json.Unmarshal([]byte(item.Payload), &snapshot); err != nil {
		return nil, pkgerrors.NewInternalError("failed to decode session snapshot").WithCause(err)
	}
	snapshot.Version = item.Version

	r.logger.Debug("Retrieved session from DynamoDB",
		zap.String("sessionID", sessionID),
		zap.Int("version", item.Version),
	)
	return &snapshot, nil
}

// List returns summaries of all stored sessions, most recently updated first
func (r *SessionRepository) List(ctx context.Context) ([]ports.SessionSummary, error) {
	filter := expression.Name("EntityType").Equal(expression.Value(sessionEntityType))
	projection := expression.NamesList(
		expression.Name("SessionID"),
		expression.Name("Name"),
		expression.Name("Phase"),
		expression.Name("Version"),
		expression.Name("UpdatedAt"),
	)
	expr, err := expression.NewBuilder().WithFilter(filter).WithProjection(projection).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build session scan: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	summaries := []ports.SessionSummary{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list sessions", err)
		}
		for _, raw := range page.Items {
			var item sessionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal session item", zap.Error(err))
				continue
			}
			updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
			summaries = append(summaries, ports.SessionSummary{
				SessionID: item.SessionID,
				Name:      item.Name,
				Phase:     valueobjects.Phase(item.Phase),
				Version:   item.Version,
				UpdatedAt: updatedAt,
			})
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Delete removes a stored session
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build delete condition: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      sessionKey(sessionID),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			return pkgerrors.NewNotFoundError("session")
		}
		return pkgerrors.NewDatabaseError("delete session", err)
	}

	r.logger.Info("Deleted session from DynamoDB", zap.String("sessionID", sessionID))
	return nil
}
