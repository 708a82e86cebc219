package di

import (
	"context"
	"fmt"

	"journey-backend/application/commands"
	"journey-backend/application/commands/bus"
	"journey-backend/application/ports"
	"journey-backend/application/queries"
	querybus "journey-backend/application/queries/bus"
	domainconfig "journey-backend/domain/config"
	"journey-backend/domain/core/validators"
	"journey-backend/domain/services"
	"journey-backend/infrastructure/config"
	"journey-backend/infrastructure/messaging/eventbridge"
	dynamopersistence "journey-backend/infrastructure/persistence/dynamodb"
	pkgerrors "journey-backend/pkg/errors"
	"journey-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// insightCacheTTL is how long insight listings stay cached, in seconds.
// Insights are append-only so short staleness is acceptable.
const insightCacheTTL = 60

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig creates the domain configuration
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideNodeValidator creates the node validator
func ProvideNodeValidator(cfg *domainconfig.DomainConfig) *validators.NodeValidator {
	return validators.NewNodeValidatorWithConfig(cfg)
}

// ProvidePermissionService creates the permission projection service
func ProvidePermissionService() *services.PermissionService {
	return services.NewPermissionService()
}

// ProvideNodeRepository creates a node repository
func ProvideNodeRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.NodeRepository {
	return dynamopersistence.NewNodeRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideShareRepository creates a share grant repository
func ProvideShareRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ShareRepository {
	return dynamopersistence.NewShareRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideInsightRepository creates an insight repository
func ProvideInsightRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.InsightRepository {
	return dynamopersistence.NewInsightRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideUserDirectory creates the user profile directory
func ProvideUserDirectory(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UserDirectory {
	return dynamopersistence.NewUserDirectory(client, cfg.DynamoDBTable, logger)
}

// ProvideHierarchyLock creates the distributed lock for hierarchy writes
func ProvideHierarchyLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.DistributedLock {
	return dynamopersistence.NewHierarchyLock(client, cfg.DynamoDBTable, logger)
}

// ProvideEventPublisher creates the EventBridge publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates metrics instance. Without EnableMetrics the client
// is nil and every recording becomes a no-op.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("Journey/%s", cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideTracer creates the X-Ray tracer, nil when tracing is disabled
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer("journey-backend")
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.Environment != "production")
}

// ProvideCreateNodeHandler creates the node creation handler
func ProvideCreateNodeHandler(
	nodeRepo ports.NodeRepository,
	publisher ports.EventPublisher,
	validator *validators.NodeValidator,
	logger *zap.Logger,
) *commands.CreateNodeHandler {
	return commands.NewCreateNodeHandler(nodeRepo, publisher, validator, logger)
}

// ProvideUpdateNodeHandler creates the node update handler
func ProvideUpdateNodeHandler(
	nodeRepo ports.NodeRepository,
	shareRepo ports.ShareRepository,
	permissions *services.PermissionService,
	publisher ports.EventPublisher,
	validator *validators.NodeValidator,
	lock ports.DistributedLock,
	logger *zap.Logger,
) *commands.UpdateNodeHandler {
	return commands.NewUpdateNodeHandler(nodeRepo, shareRepo, permissions, publisher, validator, lock, logger)
}

// ProvideShareNodeHandler creates the share grant handler
func ProvideShareNodeHandler(
	nodeRepo ports.NodeRepository,
	shareRepo ports.ShareRepository,
	publisher ports.EventPublisher,
	cfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *commands.ShareNodeHandler {
	return commands.NewShareNodeHandler(nodeRepo, shareRepo, publisher, cfg, logger)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers. Only the
// fire-and-forget commands go through the bus; creation and update return
// the written node and are invoked directly by the HTTP layer.
func ProvideCommandBus(
	nodeRepo ports.NodeRepository,
	shareRepo ports.ShareRepository,
	insightRepo ports.InsightRepository,
	permissions *services.PermissionService,
	publisher ports.EventPublisher,
	shares *commands.ShareNodeHandler,
	lock ports.DistributedLock,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBusWithDependencies(&zapLoggerAdapter{logger}, metrics)

	deleteNodeHandler := commands.NewDeleteNodeHandler(nodeRepo, shareRepo, insightRepo, permissions, publisher, lock, logger)
	commandBus.Register(commands.DeleteNodeCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteNodeHandler.Handle(ctx, deleteCmd)
		},
	})

	commandBus.Register(commands.UnshareNodeCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			unshareCmd, ok := cmd.(commands.UnshareNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return shares.HandleUnshare(ctx, unshareCmd)
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	nodeRepo ports.NodeRepository,
	shareRepo ports.ShareRepository,
	insightRepo ports.InsightRepository,
	users ports.UserDirectory,
	permissions *services.PermissionService,
	domainCfg *domainconfig.DomainConfig,
	cache ports.Cache,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	getNodeHandler := queries.NewGetNodeHandler(nodeRepo, shareRepo, users, permissions, logger)
	queryBus.Register(queries.GetNodeQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetNodeQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getNodeHandler.Handle(ctx, getQuery)
		},
	})

	hierarchyHandler := queries.NewGetHierarchyHandler(nodeRepo, shareRepo, users, permissions, logger)
	queryBus.Register(queries.GetHierarchyQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			hierarchyQuery, ok := query.(queries.GetHierarchyQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return hierarchyHandler.Handle(ctx, hierarchyQuery)
		},
	})

	listNodesHandler := queries.NewListNodesHandler(nodeRepo, permissions, domainCfg, logger)
	queryBus.Register(queries.ListNodesQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListNodesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listNodesHandler.Handle(ctx, listQuery)
		},
	})

	listSharesHandler := queries.NewListSharesHandler(nodeRepo, shareRepo)
	queryBus.Register(queries.ListSharesQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			sharesQuery, ok := query.(queries.ListSharesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listSharesHandler.Handle(ctx, sharesQuery)
		},
	})

	insightsHandler := queries.NewGetInsightsHandler(nodeRepo, shareRepo, insightRepo, permissions)
	caching := querybus.NewCachingMiddleware(cache, insightCacheTTL)
	queryBus.Register(queries.GetInsightsQuery{}, caching.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			insightsQuery, ok := query.(queries.GetInsightsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return insightsHandler.Handle(ctx, insightsQuery)
		},
	}))

	return queryBus
}

// ProvideInMemoryCache creates a simple in-memory cache.
// In production this would be Redis or similar.
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}

// zapLoggerAdapter adapts zap.Logger to the bus.Logger interface
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, fieldsToZap(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, fieldsToZap(keysAndValues...)...)
}

func fieldsToZap(fields ...interface{}) []zap.Field {
	var zapFields []zap.Field
	for i := 0; i+1 < len(fields); i += 2 {
		key, _ := fields[i].(string)
		zapFields = append(zapFields, zap.Any(key, fields[i+1]))
	}
	return zapFields
}
