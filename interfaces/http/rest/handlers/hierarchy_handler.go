package handlers

import (
	"net/http"

	"journey-backend/application/queries"
	querybus "journey-backend/application/queries/bus"
	"journey-backend/domain/core/validators"
	"journey-backend/pkg/auth"
	"journey-backend/pkg/common"
	pkgerrors "journey-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HierarchyHandler serves hierarchy reads rooted at a single node
type HierarchyHandler struct {
	queryBus  *querybus.QueryBus
	validator *validators.NodeValidator
	errors    *pkgerrors.ErrorHandler
	logger    *zap.Logger
}

// NewHierarchyHandler creates a new hierarchy handler
func NewHierarchyHandler(
	queryBus *querybus.QueryBus,
	validator *validators.NodeValidator,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *HierarchyHandler {
	return &HierarchyHandler{
		queryBus:  queryBus,
		validator: validator,
		errors:    errorHandler,
		logger:    logger,
	}
}

// GetHierarchy handles GET /nodes/{nodeID}/hierarchy
func (h *HierarchyHandler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	nodeQuery, err := h.validator.ValidateQuery(r.URL.Query())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetHierarchyQuery{
		RootID:          chi.URLParam(r, "nodeID"),
		ViewerID:        userCtx.UserID,
		MaxDepth:        nodeQuery.MaxDepth,
		IncludeChildren: nodeQuery.IncludeChildren,
		Type:            nodeQuery.Type,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
