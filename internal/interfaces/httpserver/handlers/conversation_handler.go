package handlers

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/janhq/sessions/internal/domain/conversation"
	"github.com/janhq/sessions/internal/interfaces/httpserver/requests"
	"github.com/janhq/sessions/internal/interfaces/httpserver/responses"
	"github.com/janhq/sessions/internal/utils/platformerrors"
)

// ConversationHandler handles conversation-related HTTP requests
type ConversationHandler struct {
	service conversation.Service
	log     zerolog.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(service conversation.Service, log zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		log:     log,
	}
}

// CreateConversation creates a new conversation with optional initial items
func (h *ConversationHandler) CreateConversation(
	ctx context.Context,
	req requests.CreateConversationRequest,
) (*responses.ConversationResponse, error) {
	if len(req.Items) > conversation.MaxItemsPerCall {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			"cannot add more than 20 items at a time", nil, "d2a1b3c4-5e6f-4a7b-8c9d-0e1f2a3b4c5e")
	}

	conv, err := h.service.CreateConversation(ctx, req.Metadata, req.Items)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to create conversation")
	}

	return responses.NewConversationResponse(conv), nil
}

// GetConversation retrieves a conversation by its public ID
func (h *ConversationHandler) GetConversation(
	ctx context.Context,
	conversationID string,
) (*responses.ConversationResponse, error) {
	conv, err := h.service.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to get conversation")
	}

	return responses.NewConversationResponse(conv), nil
}

// DeleteConversation deletes a conversation and its items
func (h *ConversationHandler) DeleteConversation(
	ctx context.Context,
	conversationID string,
) (*responses.ConversationDeletedResponse, error) {
	if err := h.service.DeleteConversation(ctx, conversationID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to delete conversation")
	}

	return responses.NewConversationDeletedResponse(conversationID), nil
}

// CreateItems appends items to a conversation
func (h *ConversationHandler) CreateItems(
	ctx context.Context,
	conversationID string,
	req requests.CreateItemsRequest,
) (*responses.ItemListResponse, error) {
	items, err := h.service.AddItems(ctx, conversationID, req.Items)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to add items")
	}

	return responses.NewItemListResponse(items, false), nil
}

// ListItems lists items with cursor pagination. limit is the requested page
// size; the handler fetches one extra row to compute has_more.
func (h *ConversationHandler) ListItems(
	ctx context.Context,
	conversationID string,
	limit int,
	order conversation.SortOrder,
	after *string,
) (*responses.ItemListResponse, error) {
	query := conversation.ItemQuery{
		Limit: limit + 1,
		Order: order,
	}

	if after != nil && *after != "" {
		cursor, err := h.service.GetItem(ctx, conversationID, *after)
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
				"invalid cursor: item not found or not accessible")
		}
		query.AfterID = &cursor.ID
	}

	items, err := h.service.ListItems(ctx, conversationID, query)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to list items")
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	return responses.NewItemListResponse(items, hasMore), nil
}

// GetItem retrieves a single item payload
func (h *ConversationHandler) GetItem(
	ctx context.Context,
	conversationID string,
	itemID string,
) (json.RawMessage, error) {
	item, err := h.service.GetItem(ctx, conversationID, itemID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to get item")
	}

	return item.Payload, nil
}

// DeleteItem removes a single item from a conversation
func (h *ConversationHandler) DeleteItem(
	ctx context.Context,
	conversationID string,
	itemID string,
) (*responses.ConversationDeletedResponse, error) {
	if err := h.service.DeleteItem(ctx, conversationID, itemID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to delete item")
	}

	return &responses.ConversationDeletedResponse{
		ID:      itemID,
		Object:  "conversation.item.deleted",
		Deleted: true,
	}, nil
}
