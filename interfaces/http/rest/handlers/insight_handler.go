package handlers

import (
	"net/http"

	"journey-backend/application/queries"
	querybus "journey-backend/application/queries/bus"
	"journey-backend/pkg/auth"
	"journey-backend/pkg/common"
	pkgerrors "journey-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// InsightHandler serves per-node insight reads
type InsightHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *InsightHandler {
	return &InsightHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// GetInsights handles GET /nodes/{nodeID}/insights
func (h *InsightHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetInsightsQuery{
		NodeID:   chi.URLParam(r, "nodeID"),
		ViewerID: userCtx.UserID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
