package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"journey-backend/application/ports"
	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/valueobjects"
	pkgerrors "journey-backend/pkg/errors"
	"journey-backend/pkg/utils"
)

// InsightRepository implements the InsightRepository interface using
// DynamoDB. Insights sort under their node by creation time.
type InsightRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewInsightRepository creates a new InsightRepository
func NewInsightRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.InsightRepository {
	return &InsightRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// insightItem represents the DynamoDB item structure for an insight
type insightItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	EntityType string  `dynamodbav:"EntityType"`
	InsightID  string  `dynamodbav:"InsightID"`
	NodeID     string  `dynamodbav:"NodeID"`
	Category   string  `dynamodbav:"Category"`
	Text       string  `dynamodbav:"Text"`
	Score      float64 `dynamodbav:"Score"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
}

// Save persists an insight
func (r *InsightRepository) Save(ctx context.Context, insight *entities.Insight) error {
	item := insightItem{
		PK:         fmt.Sprintf("NODE#%s", insight.NodeID().String()),
		SK:         fmt.Sprintf("INSIGHT#%s#%s", utils.FormatRFC3339(insight.CreatedAt().UTC()), insight.ID()),
		EntityType: "INSIGHT",
		InsightID:  insight.ID(),
		NodeID:     insight.NodeID().String(),
		Category:   insight.Category(),
		Text:       insight.Text(),
		Score:      insight.Score(),
		CreatedAt:  utils.FormatRFC3339(insight.CreatedAt()),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal insight: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save insight",
			zap.Error(err),
			zap.String("insightID", insight.ID()),
		)
		return pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	return nil
}

// GetByNode retrieves all insights attached to a node, oldest first
func (r *InsightRepository) GetByNode(ctx context.Context, nodeID valueobjects.NodeID) ([]*entities.Insight, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("NODE#%s", nodeID.String())},
			":sk": &types.AttributeValueMemberS{Value: "INSIGHT#"},
		},
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	insights := make([]*entities.Insight, 0, len(result.Items))
	for _, raw := range result.Items {
		var item insightItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal insight item", zap.Error(err))
			continue
		}

		id, err := valueobjects.NewNodeIDFromString(item.NodeID)
		if err != nil {
			r.logger.Warn("Skipping corrupt insight item", zap.Error(err))
			continue
		}
		createdAt, err := utils.ParseRFC3339(item.CreatedAt)
		if err != nil {
			createdAt = time.Now()
		}
		insights = append(insights, entities.ReconstructInsight(
			item.InsightID, id, item.Category, item.Text, item.Score, createdAt,
		))
	}
	return insights, nil
}

// DeleteByNode removes every insight on a node
func (r *InsightRepository) DeleteByNode(ctx context.Context, nodeID valueobjects.NodeID) error {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("NODE#%s", nodeID.String())},
			":sk": &types.AttributeValueMemberS{Value: "INSIGHT#"},
		},
		ProjectionExpression: aws.String("PK, SK"),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	for _, raw := range result.Items {
		if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": raw["PK"],
				"SK": raw["SK"],
			},
		}); err != nil {
			return pkgerrors.ErrDatabaseConnection.WithCause(err)
		}
	}
	return nil
}
