package di

import (
	"journey-backend/application/commands"
	"journey-backend/application/commands/bus"
	"journey-backend/application/ports"
	querybus "journey-backend/application/queries/bus"
	domainconfig "journey-backend/domain/config"
	"journey-backend/domain/core/validators"
	"journey-backend/domain/services"
	"journey-backend/infrastructure/config"
	pkgerrors "journey-backend/pkg/errors"
	"journey-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	NodeRepo     ports.NodeRepository
	ShareRepo    ports.ShareRepository
	InsightRepo  ports.InsightRepository
	Users        ports.UserDirectory
	Publisher    ports.EventPublisher
	Lock         ports.DistributedLock
	Cache        ports.Cache
	Validator    *validators.NodeValidator
	Permissions  *services.PermissionService
	CreateNode   *commands.CreateNodeHandler
	UpdateNode   *commands.UpdateNodeHandler
	Shares       *commands.ShareNodeHandler
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	Metrics      *observability.Metrics
	Tracer       *observability.Tracer
	ErrorHandler *pkgerrors.ErrorHandler
}
