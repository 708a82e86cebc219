package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"journey-backend/application/commands"
	"journey-backend/application/commands/bus"
	"journey-backend/application/queries"
	querybus "journey-backend/application/queries/bus"
	"journey-backend/domain/core/valueobjects"
	"journey-backend/pkg/auth"
	"journey-backend/pkg/common"
	pkgerrors "journey-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// NodeHandler handles timeline node HTTP requests. Creation and update call
// their handlers directly because callers get the written node back; delete
// goes through the command bus.
type NodeHandler struct {
	createNode *commands.CreateNodeHandler
	updateNode *commands.UpdateNodeHandler
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	createNode *commands.CreateNodeHandler,
	updateNode *commands.UpdateNodeHandler,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		createNode: createNode,
		updateNode: updateNode,
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// CreateNodeRequest is the request body for creating a node
type CreateNodeRequest struct {
	Type     string                 `json:"type"`
	ParentID *string                `json:"parentId"`
	Meta     map[string]interface{} `json:"meta"`
}

// UpdateNodeRequest is the request body for updating a node. Raw messages
// keep the distinction between an omitted key and an explicit null: a null
// parentId promotes the node to a root, an absent one leaves it alone.
type UpdateNodeRequest struct {
	Meta     json.RawMessage `json:"meta"`
	ParentID json.RawMessage `json:"parentId"`
}

// CreateNode handles POST /nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req CreateNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}

	cmd := commands.CreateNodeCommand{
		OwnerID:  userCtx.UserID,
		Type:     req.Type,
		ParentID: req.ParentID,
		Meta:     req.Meta,
	}

	node, err := h.createNode.Handle(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetNodeQuery{
		NodeID:   node.ID().String(),
		ViewerID: userCtx.UserID,
	})
	if err != nil {
		h.logger.Error("Failed to read back created node",
			zap.String("nodeID", node.ID().String()),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, result)
}

// GetNode handles GET /nodes/{nodeID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetNodeQuery{
		NodeID:   chi.URLParam(r, "nodeID"),
		ViewerID: userCtx.UserID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// UpdateNode handles PATCH /nodes/{nodeID}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	nodeID := chi.URLParam(r, "nodeID")

	// An empty body is a valid patch that changes nothing. Only a bare EOF
	// means empty; a truncated document still fails as unexpected EOF.
	var req UpdateNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil && !errors.Is(err, io.EOF) {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body: "+err.Error())
		return
	}

	cmd := commands.UpdateNodeCommand{
		NodeID:  nodeID,
		ActorID: userCtx.UserID,
	}

	if len(req.Meta) > 0 && string(req.Meta) != "null" {
		var meta map[string]interface{}
		if err := json.Unmarshal(req.Meta, &meta); err != nil {
			verrs := pkgerrors.NewValidationErrors()
			verrs.Add("meta", "meta must be an object")
			h.errors.Handle(w, r, verrs)
			return
		}
		cmd.Meta = meta
		cmd.HasMeta = true
	}

	if len(req.ParentID) > 0 {
		cmd.HasParent = true
		if string(req.ParentID) != "null" {
			var parentID string
			if err := json.Unmarshal(req.ParentID, &parentID); err != nil {
				verrs := pkgerrors.NewValidationErrors()
				verrs.Add("parentId", "parentId must be a string or null")
				h.errors.Handle(w, r, verrs)
				return
			}
			cmd.ParentID = &parentID
		}
	}

	node, err := h.updateNode.Handle(r.Context(), cmd)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetNodeQuery{
		NodeID:   node.ID().String(),
		ViewerID: userCtx.UserID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// DeleteNode handles DELETE /nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := commands.DeleteNodeCommand{
		NodeID:  chi.URLParam(r, "nodeID"),
		ActorID: userCtx.UserID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListNodes handles GET /nodes
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	query := queries.ListNodesQuery{
		OwnerID: userCtx.UserID,
		Cursor:  r.URL.Query().Get("cursor"),
	}

	if raw := r.URL.Query().Get("type"); raw != "" {
		nodeType, ok := valueobjects.ParseNodeType(raw)
		if !ok {
			verrs := pkgerrors.NewValidationErrors()
			verrs.Add("type", "type must be one of the registered timeline node types")
			h.errors.Handle(w, r, verrs)
			return
		}
		query.Type = &nodeType
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := parsePositiveInt(raw)
		if err != nil {
			verrs := pkgerrors.NewValidationErrors()
			verrs.Add("limit", "limit must be a positive integer")
			h.errors.Handle(w, r, verrs)
			return
		}
		query.Limit = limit
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	page, ok := result.(*queries.ListNodesResult)
	if !ok {
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected query result")
		return
	}

	common.RespondWithMeta(w, http.StatusOK, page.Nodes, &common.MetaInfo{
		Pagination: &common.PaginationInfo{
			PageSize:   len(page.Nodes),
			Total:      page.TotalCount,
			NextCursor: page.NextCursor,
		},
	})
}
