package dynamodb

import (
	"context"
	"fmt"
	"strconv"
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

// ShareRepository implements the ShareRepository interface using DynamoDB.
// Grants live under the node's partition so one query returns a node's
// full grant set.
type ShareRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewShareRepository creates a new ShareRepository
func NewShareRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ShareRepository {
	return &ShareRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// shareItem represents the DynamoDB item structure for a share grant
type shareItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	NodeID     string `dynamodbav:"NodeID"`
	GranteeID  int    `dynamodbav:"GranteeID"`
	Level      string `dynamodbav:"Level"`
	GrantedBy  int    `dynamodbav:"GrantedBy"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

func shareKey(nodeID valueobjects.NodeID, granteeID int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("NODE#%s", nodeID.String())},
		"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("SHARE#%010d", granteeID)},
	}
}

// Save persists a grant. Re-granting to the same user overwrites the item,
// which is how level upgrades work.
func (r *ShareRepository) Save(ctx context.Context, grant *entities.ShareGrant) error {
	item := shareItem{
		PK:         fmt.Sprintf("NODE#%s", grant.NodeID().String()),
		SK:         fmt.Sprintf("SHARE#%010d", grant.GranteeID()),
		EntityType: "SHARE_GRANT",
		NodeID:     grant.NodeID().String(),
		GranteeID:  grant.GranteeID(),
		Level:      string(grant.Level()),
		GrantedBy:  grant.GrantedBy(),
		CreatedAt:  utils.FormatRFC3339(grant.CreatedAt()),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal share grant: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		r.logger.Error("Failed to save share grant",
			zap.Error(err),
			zap.String("nodeID", grant.NodeID().String()),
			zap.Int("granteeID", grant.GranteeID()),
		)
		return pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	return nil
}

// GetByNode retrieves all grants on a node
func (r *ShareRepository) GetByNode(ctx context.Context, nodeID valueobjects.NodeID) ([]*entities.ShareGrant, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("NODE#%s", nodeID.String())},
			":sk": &types.AttributeValueMemberS{Value: "SHARE#"},
		},
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	grants := make([]*entities.ShareGrant, 0, len(result.Items))
	for _, raw := range result.Items {
		var item shareItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal share item", zap.Error(err))
			continue
		}
		grant, err := item.toEntity()
		if err != nil {
			r.logger.Warn("Skipping corrupt share item", zap.Error(err))
			continue
		}
		grants = append(grants, grant)
	}
	return grants, nil
}

// GetByNodeAndGrantee retrieves a single grant
func (r *ShareRepository) GetByNodeAndGrantee(ctx context.Context, nodeID valueobjects.NodeID, granteeID int) (*entities.ShareGrant, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       shareKey(nodeID, granteeID),
	})
	if err != nil {
		return nil, pkgerrors.ErrDatabaseConnection.WithCause(err)
	}
	if result.Item == nil {
		return nil, pkgerrors.ErrGrantNotFound
	}

	var item shareItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal share grant: %w", err)
	}
	return item.toEntity()
}

// Delete removes a grant
func (r *ShareRepository) Delete(ctx context.Context, nodeID valueobjects.NodeID, granteeID int) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       shareKey(nodeID, granteeID),
	}); err != nil {
		return pkgerrors.ErrDatabaseConnection.WithCause(err)
	}
	return nil
}

// DeleteByNode removes every grant on a node
func (r *ShareRepository) DeleteByNode(ctx context.Context, nodeID valueobjects.NodeID) error {
	grants, err := r.GetByNode(ctx, nodeID)
	if err != nil {
		return err
	}
	for _, grant := range grants {
		if err := r.Delete(ctx, nodeID, grant.GranteeID()); err != nil {
			return err
		}
	}
	return nil
}

func (item shareItem) toEntity() (*entities.ShareGrant, error) {
	nodeID, err := valueobjects.NewNodeIDFromString(item.NodeID)
	if err != nil {
		return nil, fmt.Errorf("corrupt share item for node %q: %w", item.NodeID, err)
	}

	level, ok := entities.ParseGrantLevel(item.Level)
	if !ok {
		return nil, fmt.Errorf("corrupt grant level %q on node %s grantee %s",
			item.Level, item.NodeID, strconv.Itoa(item.GranteeID))
	}

	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}

	return entities.ReconstructShareGrant(nodeID, item.GranteeID, item.GrantedBy, level, createdAt), nil
}
