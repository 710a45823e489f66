package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLockHeld is returned when another owner holds an unexpired session lock
var ErrLockHeld = errors.New("session lock already held")

// SessionLock serializes background work on a session using conditional
// writes against the sessions table. Locks expire through the TTL attribute.
type SessionLock struct {
	client    Client
	tableName string
	logger    *zap.Logger
	now       func() time.Time
}

// lockItem represents a lock record in DynamoDB
type lockItem struct {
	PK        string `dynamodbav:"PK"`        // SESSION#<session_id>
	SK        string `dynamodbav:"SK"`        // LOCK
	LockID    string `dynamodbav:"LockID"`    // Unique lock identifier
	Owner     string `dynamodbav:"Owner"`     // Lock owner identifier
	ExpiresAt int64  `dynamodbav:"ExpiresAt"` // Unix seconds
	TTL       int64  `dynamodbav:"TTL"`       // Unix timestamp for DynamoDB TTL
}

// NewSessionLock creates a new session lock
func NewSessionLock(client Client, tableName string, logger *zap.Logger) *SessionLock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionLock{
		client:    client,
		tableName: tableName,
		logger:    logger,
		now:       time.Now,
	}
}

func lockKey(sessionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("SESSION#%s", sessionID)},
		"SK": &types.AttributeValueMemberS{Value: "LOCK"},
	}
}

// Acquire takes the lock for a session. It fails with ErrLockHeld when
// another owner holds an unexpired lock.
func (l *SessionLock) Acquire(ctx context.Context, sessionID, owner string, duration time.Duration) (*Lock, error) {
	now := l.now()
	expiresAt := now.Add(duration)

	item := lockItem{
		PK:        fmt.Sprintf("SESSION#%s", sessionID),
		SK:        "LOCK",
		LockID:    uuid.New().String(),
		Owner:     owner,
		ExpiresAt: expiresAt.Unix(),
		TTL:       expiresAt.Unix(),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK")).
		Or(expression.Name("ExpiresAt").LessThan(expression.Value(now.Unix())))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock condition: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(l.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			l.logger.Debug("Session lock already held",
				zap.String("sessionID", sessionID),
				zap.String("owner", owner),
			)
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	l.logger.Debug("Session lock acquired",
		zap.String("sessionID", sessionID),
		zap.String("lockID", item.LockID),
		zap.Duration("duration", duration),
	)
	return &Lock{owner: l, sessionID: sessionID, lockID: item.LockID, expiresAt: expiresAt}, nil
}

// release deletes the lock record if it still belongs to lockID
func (l *SessionLock) release(ctx context.Context, sessionID, lockID string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("LockID").Equal(expression.Value(lockID))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build release condition: %w", err)
	}

	_, err = l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(l.tableName),
		Key:                       lockKey(sessionID),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			// Expired and taken over, or already released
			l.logger.Warn("Session lock no longer owned",
				zap.String("sessionID", sessionID),
				zap.String("lockID", lockID),
			)
			return nil
		}
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Lock represents an acquired session lock
type Lock struct {
	owner     *SessionLock
	sessionID string
	lockID    string
	expiresAt time.Time
}

// Release releases the lock
func (l *Lock) Release(ctx context.Context) error {
	return l.owner.release(ctx, l.sessionID, l.lockID)
}

// IsExpired checks if the lock has expired
func (l *Lock) IsExpired() bool {
	return l.owner.now().After(l.expiresAt)
}
