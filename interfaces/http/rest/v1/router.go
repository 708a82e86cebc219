package v1

import (
	"context"
	"net/http"

	"journey-backend/interfaces/http/rest/handlers"
	"journey-backend/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates the legacy v1 API router. It serves the same handlers
// as v2 under the old path prefix for clients that have not migrated yet.
func NewRouter(
	nodeHandler *handlers.NodeHandler,
	hierarchyHandler *handlers.HierarchyHandler,
	shareHandler *handlers.ShareHandler,
	insightHandler *handlers.InsightHandler,
	logger *zap.Logger,
) *mux.Router {
	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()

	v1.Use(mux.MiddlewareFunc(middleware.Logger(logger)))
	v1.Use(mux.MiddlewareFunc(middleware.Authenticate()))
	v1.Use(versionHeaders)

	// Node endpoints
	v1.HandleFunc("/nodes", nodeHandler.CreateNode).Methods("POST")
	v1.HandleFunc("/nodes", nodeHandler.ListNodes).Methods("GET")
	v1.HandleFunc("/nodes/{nodeID}", bridgeParams(nodeHandler.GetNode)).Methods("GET")
	v1.HandleFunc("/nodes/{nodeID}", bridgeParams(nodeHandler.UpdateNode)).Methods("PATCH")
	v1.HandleFunc("/nodes/{nodeID}", bridgeParams(nodeHandler.DeleteNode)).Methods("DELETE")

	// Hierarchy endpoint
	v1.HandleFunc("/nodes/{nodeID}/hierarchy", bridgeParams(hierarchyHandler.GetHierarchy)).Methods("GET")

	// Share endpoints
	v1.HandleFunc("/nodes/{nodeID}/shares", bridgeParams(shareHandler.CreateShare)).Methods("POST")
	v1.HandleFunc("/nodes/{nodeID}/shares", bridgeParams(shareHandler.ListShares)).Methods("GET")
	v1.HandleFunc("/nodes/{nodeID}/shares/{userID}", bridgeParams(shareHandler.DeleteShare)).Methods("DELETE")

	// Insight endpoint
	v1.HandleFunc("/nodes/{nodeID}/insights", bridgeParams(insightHandler.GetInsights)).Methods("GET")

	// Health check
	v1.HandleFunc("/health", healthCheck).Methods("GET")

	return router
}

// bridgeParams copies mux route variables into a chi route context so the
// shared handlers can keep reading path parameters through chi.URLParam.
func bridgeParams(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.NewRouteContext()
		for key, value := range mux.Vars(r) {
			rctx.URLParams.Add(key, value)
		}
		ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
		h(w, r.WithContext(ctx))
	}
}

// versionHeaders adds API version headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.Header().Set("X-API-Deprecated", "true")
		next.ServeHTTP(w, r)
	})
}

// healthCheck provides a health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"v1"}`))
}
