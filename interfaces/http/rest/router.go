package rest

import (
	"net/http"
	"strings"

	"journey-backend/application/commands"
	"journey-backend/application/commands/bus"
	querybus "journey-backend/application/queries/bus"
	"journey-backend/domain/core/validators"
	"journey-backend/interfaces/http/rest/handlers"
	"journey-backend/interfaces/http/rest/middleware"
	pkgerrors "journey-backend/pkg/errors"
	"journey-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	createNode *commands.CreateNodeHandler
	updateNode *commands.UpdateNodeHandler
	shares     *commands.ShareNodeHandler
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	validator  *validators.NodeValidator
	errors     *pkgerrors.ErrorHandler
	tracer     *observability.Tracer
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	createNode *commands.CreateNodeHandler,
	updateNode *commands.UpdateNodeHandler,
	shares *commands.ShareNodeHandler,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	validator *validators.NodeValidator,
	errorHandler *pkgerrors.ErrorHandler,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *Router {
	return &Router{
		createNode: createNode,
		updateNode: updateNode,
		shares:     shares,
		commandBus: commandBus,
		queryBus:   queryBus,
		validator:  validator,
		errors:     errorHandler,
		tracer:     tracer,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.tracer != nil {
		router.Use(middleware.Tracing(rt.tracer))
	}
	router.Use(versionMiddleware)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*.journey.app"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes (legacy - redirects to v2)
	router.Route("/api/v1", func(r chi.Router) {
		r.HandleFunc("/*", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, strings.Replace(req.URL.Path, "/api/v1", "/api/v2", 1), http.StatusPermanentRedirect)
		})
	})

	// API v2 routes (current)
	router.Route("/api/v2", func(r chi.Router) {
		r.Use(middleware.Authenticate())

		r.Route("/nodes", func(r chi.Router) {
			nodeHandler := handlers.NewNodeHandler(rt.createNode, rt.updateNode, rt.commandBus, rt.queryBus, rt.errors, rt.logger)
			r.Post("/", nodeHandler.CreateNode)
			r.Get("/", nodeHandler.ListNodes)
			r.Get("/{nodeID}", nodeHandler.GetNode)
			r.Patch("/{nodeID}", nodeHandler.UpdateNode)
			r.Delete("/{nodeID}", nodeHandler.DeleteNode)

			hierarchyHandler := handlers.NewHierarchyHandler(rt.queryBus, rt.validator, rt.errors, rt.logger)
			r.Get("/{nodeID}/hierarchy", hierarchyHandler.GetHierarchy)

			shareHandler := handlers.NewShareHandler(rt.shares, rt.commandBus, rt.queryBus, rt.errors, rt.logger)
			r.Post("/{nodeID}/shares", shareHandler.CreateShare)
			r.Get("/{nodeID}/shares", shareHandler.ListShares)
			r.Delete("/{nodeID}/shares/{userID}", shareHandler.DeleteShare)

			insightHandler := handlers.NewInsightHandler(rt.queryBus, rt.errors, rt.logger)
			r.Get("/{nodeID}/insights", insightHandler.GetInsights)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v2")
		next.ServeHTTP(w, r)
	})
}
