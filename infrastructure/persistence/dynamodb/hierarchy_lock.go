package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"journey-backend/application/ports"
)

// HierarchyLock serializes structural mutations (re-parenting, deletion)
// per owner using DynamoDB conditional writes. Two concurrent moves in one
// hierarchy could otherwise each pass the cycle check and weave a cycle
// between them.
type HierarchyLock struct {
	client    *dynamodb.Client
	tableName string
	duration  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// NewHierarchyLock creates a new HierarchyLock
func NewHierarchyLock(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.DistributedLock {
	return &HierarchyLock{
		client:    client,
		tableName: tableName,
		duration:  10 * time.Second,
		timeout:   3 * time.Second,
		logger:    logger,
	}
}

// Acquire takes the lock for a resource, retrying with backoff until the
// timeout. The returned release function deletes the lock record only if
// this holder still owns it.
func (l *HierarchyLock) Acquire(ctx context.Context, resource string) (func(), error) {
	lockID := uuid.New().String()
	deadline := time.Now().Add(l.timeout)
	retryInterval := 100 * time.Millisecond

	for {
		err := l.tryPut(ctx, resource, lockID)
		if err == nil {
			return func() { l.release(resource, lockID) }, nil
		}

		var conditionFailed *types.ConditionalCheckFailedException
		if !errors.As(err, &conditionFailed) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout acquiring lock for resource: %s", resource)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
			if retryInterval < time.Second {
				retryInterval = time.Duration(float64(retryInterval) * 1.5)
			}
		}
	}
}

func (l *HierarchyLock) tryPut(ctx context.Context, resource, lockID string) error {
	now := time.Now()
	expiresAt := now.Add(l.duration)

	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", resource)},
		"SK":         &types.AttributeValueMemberS{Value: "LOCK"},
		"LockID":     &types.AttributeValueMemberS{Value: lockID},
		"AcquiredAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"ExpiresAt":  &types.AttributeValueMemberS{Value: expiresAt.Format(time.RFC3339)},
		"TTL":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt.Unix())},
	}

	_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(l.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	return err
}

// release runs on its own context so a cancelled request still frees the
// lock instead of waiting for the TTL.
func (l *HierarchyLock) release(resource, lockID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("LOCK#%s", resource)},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("LockID = :lockId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":lockId": &types.AttributeValueMemberS{Value: lockID},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			// Expired and taken over; nothing left to release
			return
		}
		l.logger.Warn("Failed to release hierarchy lock",
			zap.String("resource", resource),
			zap.Error(err),
		)
	}
}
