package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/janhq/sessions/internal/domain/conversation"
	"github.com/janhq/sessions/internal/interfaces/httpserver/handlers"
	"github.com/janhq/sessions/internal/interfaces/httpserver/requests"
	"github.com/janhq/sessions/internal/interfaces/httpserver/responses"
	"github.com/janhq/sessions/internal/utils/platformerrors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type conversationRoutes struct {
	handler *handlers.ConversationHandler
}

func registerConversationRoutes(group *gin.RouterGroup, handler *handlers.ConversationHandler) {
	r := &conversationRoutes{handler: handler}

	conversations := group.Group("/conversations")
	conversations.POST("", r.createConversation)
	conversations.GET("/:conv_id", r.getConversation)
	conversations.DELETE("/:conv_id", r.deleteConversation)
	conversations.GET("/:conv_id/items", r.listItems)
	conversations.POST("/:conv_id/items", r.createItems)
	conversations.GET("/:conv_id/items/:item_id", r.getItem)
	conversations.DELETE("/:conv_id/items/:item_id", r.deleteItem)
}

// createConversation godoc
// @Summary Create a conversation
// @Description Create a conversation with optional metadata and up to 20 initial items.
// @Tags Conversations API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body requests.CreateConversationRequest true "Create conversation request"
// @Success 200 {object} responses.ConversationResponse "Successfully created conversation"
// @Failure 400 {object} responses.ErrorResponse "Invalid request"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /v1/conversations [post]
func (r *conversationRoutes) createConversation(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var req requests.CreateConversationRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "a0b1c2d3-e4f5-4a6b-8c7d-9e0f1a2b3c4d")
		return
	}

	response, err := r.handler.CreateConversation(ctx, req)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to create conversation")
		return
	}
	reqCtx.JSON(http.StatusOK, response)
}

// getConversation godoc
// @Summary Get a conversation
// @Description Retrieve a conversation object by its ID.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param conv_id path string true "Conversation ID (format: conv_xxxxx)"
// @Success 200 {object} responses.ConversationResponse "Successfully retrieved conversation"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /v1/conversations/{conv_id} [get]
func (r *conversationRoutes) getConversation(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	response, err := r.handler.GetConversation(ctx, reqCtx.Param("conv_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to get conversation")
		return
	}
	reqCtx.JSON(http.StatusOK, response)
}

// deleteConversation godoc
// @Summary Delete a conversation
// @Description Delete a conversation and all of its items.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param conv_id path string true "Conversation ID (format: conv_xxxxx)"
// @Success 200 {object} responses.ConversationDeletedResponse "Successfully deleted conversation"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /v1/conversations/{conv_id} [delete]
func (r *conversationRoutes) deleteConversation(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	response, err := r.handler.DeleteConversation(ctx, reqCtx.Param("conv_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to delete conversation")
		return
	}
	reqCtx.JSON(http.StatusOK, response)
}

// listItems godoc
// @Summary List conversation items
// @Description List items with cursor pagination. Use the after cursor from a previous page; has_more indicates further pages.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param conv_id path string true "Conversation ID (format: conv_xxxxx)"
// @Param after query string false "Item ID cursor to list items after"
// @Param limit query integer false "Number of items to return (1-100)" default(20)
// @Param order query string false "Sort order: asc or desc" default(desc) Enums(asc, desc)
// @Success 200 {object} responses.ItemListResponse "Successfully retrieved items"
// @Failure 400 {object} responses.ErrorResponse "Invalid request parameters"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /v1/conversations/{conv_id}/items [get]
func (r *conversationRoutes) listItems(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var params requests.ListItemsQueryParams
	if err := reqCtx.ShouldBindQuery(&params); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid query parameters", "b1c2d3e4-f5a6-4b7c-9d8e-0f1a2b3c4d5e")
		return
	}

	limit := defaultPageSize
	if params.Limit != nil {
		limit = *params.Limit
		if limit < 1 {
			limit = 1
		} else if limit > maxPageSize {
			limit = maxPageSize
		}
	}

	order := conversation.SortDesc
	if params.Order != nil {
		switch strings.ToLower(strings.TrimSpace(*params.Order)) {
		case "asc":
			order = conversation.SortAsc
		case "desc", "":
			order = conversation.SortDesc
		default:
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "order must be asc or desc", "c2d3e4f5-a6b7-4c8d-0e9f-1a2b3c4d5e6f")
			return
		}
	}

	response, err := r.handler.ListItems(ctx, reqCtx.Param("conv_id"), limit, order, params.After)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list items")
		return
	}
	reqCtx.JSON(http.StatusOK, response)
}

// createItems godoc
// @Summary Create conversation items
// @Description Append items to a conversation. You may add up to 20 items at a time. Items are validated against the supported item shapes before storage.
// @Tags Conversations API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param conv_id path string true "Conversation ID (format: conv_xxxxx)"
// @Param request body requests.CreateItemsRequest true "Create items request"
// @Success 200 {object} responses.ItemListResponse "Successfully created items"
// @Failure 400 {object} responses.ErrorResponse "Invalid request - too many items or validation failed"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /v1/conversations/{conv_id}/items [post]
func (r *conversationRoutes) createItems(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var req requests.CreateItemsRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "d3e4f5a6-b7c8-4d9e-1f0a-2b3c4d5e6f7a")
		return
	}

	response, err := r.handler.CreateItems(ctx, reqCtx.Param("conv_id"), req)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to create items")
		return
	}
	reqCtx.JSON(http.StatusOK, response)
}

// getItem godoc
// @Summary Get a conversation item
// @Description Retrieve a single item payload by its ID.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param conv_id path string true "Conversation ID (format: conv_xxxxx)"
// @Param item_id path string true "Item ID (format: msg_xxxxx)"
// @Success 200 {object} object "Successfully retrieved item"
// @Failure 404 {object} responses.ErrorResponse "Conversation or item not found"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /v1/conversations/{conv_id}/items/{item_id} [get]
func (r *conversationRoutes) getItem(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	payload, err := r.handler.GetItem(ctx, reqCtx.Param("conv_id"), reqCtx.Param("item_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to get item")
		return
	}
	reqCtx.Data(http.StatusOK, "application/json", payload)
}

// deleteItem godoc
// @Summary Delete a conversation item
// @Description Remove a single item from a conversation.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param conv_id path string true "Conversation ID (format: conv_xxxxx)"
// @Param item_id path string true "Item ID (format: msg_xxxxx)"
// @Success 200 {object} responses.ConversationDeletedResponse "Successfully deleted item"
// @Failure 404 {object} responses.ErrorResponse "Conversation or item not found"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /v1/conversations/{conv_id}/items/{item_id} [delete]
func (r *conversationRoutes) deleteItem(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	response, err := r.handler.DeleteItem(ctx, reqCtx.Param("conv_id"), reqCtx.Param("item_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to delete item")
		return
	}
	reqCtx.JSON(http.StatusOK, response)
}
