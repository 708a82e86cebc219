package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"journey-backend/application/ports"
	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/valueobjects"
	pkgerrors "journey-backend/pkg/errors"
	"journey-backend/pkg/utils"
)

// NodeRepository implements the NodeRepository interface using DynamoDB.
// Nodes live in a single table keyed by owner, with GSI1 for direct node
// lookups and GSI2 for parent-to-children queries.
type NodeRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewNodeRepository creates a new NodeRepository
func NewNodeRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.NodeRepository {
	return &NodeRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// nodeItem represents the DynamoDB item structure for a timeline node
type nodeItem struct {
	PK         string                 `dynamodbav:"PK"`
	SK         string                 `dynamodbav:"SK"`
	GSI1PK     string                 `dynamodbav:"GSI1PK"`
	GSI1SK     string                 `dynamodbav:"GSI1SK"`
	GSI2PK     string                 `dynamodbav:"GSI2PK,omitempty"`
	GSI2SK     string                 `dynamodbav:"GSI2SK,omitempty"`
	EntityType string                 `dynamodbav:"EntityType"`
	NodeID     string                 `dynamodbav:"NodeID"`
	OwnerID    int                    `dynamodbav:"OwnerID"`
	NodeType   string                 `dynamodbav:"NodeType"`
	ParentID   string                 `dynamodbav:"ParentID,omitempty"`
	Meta       map[string]interface{} `dynamodbav:"Meta"`
	CreatedAt  string                 `dynamodbav:"CreatedAt"`
	UpdatedAt  string                 `dynamodbav:"UpdatedAt"`
}

func newNodeItem(node *entities.TimelineNode) nodeItem {
	item := nodeItem{
		PK:         fmt.Sprintf("USER#%d", node.OwnerID()),
		SK:         fmt.Sprintf("NODE#%s", node.ID().String()),
		GSI1PK:     fmt.Sprintf("NODE#%s", node.ID().String()),
		GSI1SK:     "METADATA",
		EntityType: "TIMELINE_NODE",
		NodeID:     node.ID().String(),
		OwnerID:    node.OwnerID(),
		NodeType:   node.Type().String(),
		Meta:       node.Meta(),
		CreatedAt:  utils.FormatRFC3339(node.CreatedAt()),
		UpdatedAt:  utils.FormatRFC3339(node.UpdatedAt()),
	}
	if pid := node.ParentID(); pid != nil {
		item.ParentID = pid.String()
		item.GSI2PK = fmt.Sprintf("PARENT#%s", pid.String())
		item.GSI2SK = fmt.Sprintf("NODE#%s", node.ID().String())
	}
	return item
}

func (item nodeItem) toEntity() (*entities.TimelineNode, error) {
	nodeID, err := valueobjects.NewNodeIDFromString(item.NodeID)
	if err != nil {
		return nil, fmt.Errorf("corrupt node item %q: %w", item.NodeID, err)
	}

	var parentID *valueobjects.NodeID
	if item.ParentID != "" {
		pid, err := valueobjects.NewNodeIDFromString(item.ParentID)
		if err != nil {
			return nil, fmt.Errorf("corrupt parent reference on node %q: %w", item.NodeID, err)
		}
		parentID = &pid
	}

	createdAt, err := utils.ParseRFC3339(item.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}
	updatedAt, err := utils.ParseRFC3339(item.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}

	return entities.ReconstructTimelineNode(
		nodeID,
		item.OwnerID,
		valueobjects.NodeType(item.NodeType),
		parentID,
		item.Meta,
		createdAt,
		updatedAt,
	)
}

// Save persists a node to DynamoDB. An empty meta map is stored as an
// empty map attribute, never dropped.
func (r *NodeRepository) Save(ctx context.Context, node *entities.TimelineNode) error {
	av, err := attributevalue.MarshalMap(newNodeItem(node))
	if err != nil {
		return fmt.Errorf("failed to marshal node: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save node to DynamoDB",
			zap.Error(err),
			zap.String("nodeID", node.ID().String()),
		)
		return pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	r.logger.Debug("Saved node to DynamoDB",
		zap.String("nodeID", node.ID().String()),
		zap.Int("ownerID", node.OwnerID()),
	)

	return nil
}

// GetByID retrieves a node by its ID via GSI1
func (r *NodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.TimelineNode, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("NODE#%s", id.String()))).
		And(expression.Key("GSI1SK").Equal(expression.Value("METADATA")))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("GSI1"),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	if len(result.Items) == 0 {
		return nil, pkgerrors.ErrNodeNotFound
	}

	var item nodeItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal node: %w", err)
	}

	return item.toEntity()
}

// GetByOwner retrieves nodes for an owner, newest first by sort key order,
// optionally filtered by type and paginated by an exclusive start node ID
func (r *NodeRepository) GetByOwner(ctx context.Context, ownerID int, criteria ports.ListCriteria) ([]*entities.TimelineNode, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("USER#%d", ownerID))).
		And(expression.Key("SK").BeginsWith("NODE#"))

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if criteria.Type != nil {
		builder = builder.WithFilter(
			expression.Name("NodeType").Equal(expression.Value(criteria.Type.String())),
		)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if criteria.Limit > 0 {
		input.Limit = aws.Int32(int32(criteria.Limit))
	}
	if criteria.Cursor != "" {
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%d", ownerID)},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("NODE#%s", criteria.Cursor)},
		}
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	return r.unmarshalItems(result.Items)
}

// GetChildren retrieves the direct children of a node via GSI2
func (r *NodeRepository) GetChildren(ctx context.Context, parentID valueobjects.NodeID) ([]*entities.TimelineNode, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value(fmt.Sprintf("PARENT#%s", parentID.String())))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("GSI2"),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	return r.unmarshalItems(result.Items)
}

// GetRoots retrieves an owner's parentless nodes
func (r *NodeRepository) GetRoots(ctx context.Context, ownerID int) ([]*entities.TimelineNode, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("USER#%d", ownerID))).
		And(expression.Key("SK").BeginsWith("NODE#"))
	filter := expression.AttributeNotExists(expression.Name("ParentID"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	return r.unmarshalItems(result.Items)
}

// CountByOwner returns the number of nodes an owner holds, optionally
// restricted to one type. Count reflects items after the filter.
func (r *NodeRepository) CountByOwner(ctx context.Context, ownerID int, nodeType *valueobjects.NodeType) (int, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("USER#%d", ownerID))).
		And(expression.Key("SK").BeginsWith("NODE#"))

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if nodeType != nil {
		builder = builder.WithFilter(
			expression.Name("NodeType").Equal(expression.Value(nodeType.String())),
		)
	}

	expr, err := builder.Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    types.SelectCount,
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return 0, pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	return int(result.Count), nil
}

// Delete removes a node. The owner key is resolved first since PK carries
// the owner, not the node.
func (r *NodeRepository) Delete(ctx context.Context, id valueobjects.NodeID) error {
	node, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%d", node.OwnerID())},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("NODE#%s", id.String())},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return pkgerrors.ErrDatabaseConnection.WithCause(err)
	}

	r.logger.Debug("Deleted node",
		zap.String("nodeID", id.String()),
		zap.Int("ownerID", node.OwnerID()),
	)

	return nil
}

func (r *NodeRepository) unmarshalItems(items []map[string]types.AttributeValue) ([]*entities.TimelineNode, error) {
	nodes := make([]*entities.TimelineNode, 0, len(items))
	for _, raw := range items {
		var item nodeItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal node item", zap.Error(err))
			continue
		}
		node, err := item.toEntity()
		if err != nil {
			r.logger.Warn("Skipping corrupt node item", zap.Error(err))
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
