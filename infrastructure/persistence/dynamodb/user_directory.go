package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"journey-backend/application/ports"
	"journey-backend/pkg/errors"
)

// userItem is the DynamoDB representation of a user profile
type userItem struct {
	PK        string  `dynamodbav:"PK"`
	SK        string  `dynamodbav:"SK"`
	UserID    int     `dynamodbav:"UserID"`
	UserName  *string `dynamodbav:"UserName,omitempty"`
	FirstName *string `dynamodbav:"FirstName,omitempty"`
	LastName  *string `dynamodbav:"LastName,omitempty"`
	Email     string  `dynamodbav:"Email"`
}

// UserDirectory reads user profiles from the shared table
type UserDirectory struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewUserDirectory creates a DynamoDB backed user directory
func NewUserDirectory(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.UserDirectory {
	return &UserDirectory{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// GetUser retrieves a user's profile by ID
func (d *UserDirectory) GetUser(ctx context.Context, userID int) (*ports.UserProfile, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%d", userID)},
			"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
		},
	})
	if err != nil {
		d.logger.Error("failed to get user profile",
			zap.Int("userID", userID),
			zap.Error(err),
		)
		return nil, errors.ErrDatabaseConnection.WithCause(err)
	}

	if result.Item == nil {
		return nil, errors.ErrUserNotFound
	}

	var item userItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, errors.ErrDatabaseConnection.WithCause(err)
	}

	return &ports.UserProfile{
		ID:        item.UserID,
		UserName:  item.UserName,
		FirstName: item.FirstName,
		LastName:  item.LastName,
		Email:     item.Email,
	}, nil
}
