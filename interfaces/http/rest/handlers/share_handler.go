package handlers

import (
	"net/http"

	"journey-backend/application/commands"
	"journey-backend/application/commands/bus"
	"journey-backend/application/queries"
	querybus "journey-backend/application/queries/bus"
	"journey-backend/pkg/auth"
	"journey-backend/pkg/common"
	pkgerrors "journey-backend/pkg/errors"
	"journey-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShareHandler handles share grant HTTP requests
type ShareHandler struct {
	shares     *commands.ShareNodeHandler
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewShareHandler creates a new share handler
func NewShareHandler(
	shares *commands.ShareNodeHandler,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ShareHandler {
	return &ShareHandler{
		shares:     shares,
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// ShareNodeRequest is the request body for granting access to a node
type ShareNodeRequest struct {
	GranteeID int    `json:"granteeId" validate:"required,gt=0"`
	Level     string `json:"level" validate:"required,oneof=view edit"`
}

// ShareNodeResponse is the wire shape of a created grant
type ShareNodeResponse struct {
	NodeID    string `json:"nodeId"`
	GranteeID int    `json:"granteeId"`
	Level     string `json:"level"`
	CreatedAt string `json:"createdAt"`
}

// CreateShare handles POST /nodes/{nodeID}/shares
func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req ShareNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation error: "+err.Error())
		return
	}

	grant, err := h.shares.HandleShare(r.Context(), commands.ShareNodeCommand{
		NodeID:    chi.URLParam(r, "nodeID"),
		ActorID:   userCtx.UserID,
		GranteeID: req.GranteeID,
		Level:     req.Level,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, ShareNodeResponse{
		NodeID:    grant.NodeID().String(),
		GranteeID: grant.GranteeID(),
		Level:     string(grant.Level()),
		CreatedAt: grant.CreatedAt().Format(timeFormat),
	})
}

// ListShares handles GET /nodes/{nodeID}/shares
func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListSharesQuery{
		NodeID:  chi.URLParam(r, "nodeID"),
		ActorID: userCtx.UserID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// DeleteShare handles DELETE /nodes/{nodeID}/shares/{userID}
func (h *ShareHandler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	granteeID, err := parsePositiveInt(chi.URLParam(r, "userID"))
	if err != nil {
		verrs := pkgerrors.NewValidationErrors()
		verrs.Add("userID", "user ID must be a positive integer")
		h.errors.Handle(w, r, verrs)
		return
	}

	cmd := commands.UnshareNodeCommand{
		NodeID:    chi.URLParam(r, "nodeID"),
		ActorID:   userCtx.UserID,
		GranteeID: granteeID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
