package responses

import (
	"encoding/json"

	"github.com/janhq/sessions/internal/domain/conversation"
)

// ConversationResponse represents the conversation object returned to clients
type ConversationResponse struct {
	ID        string            `json:"id"`
	Object    string            `json:"object"`
	CreatedAt int64             `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ConversationDeletedResponse represents the delete confirmation response
type ConversationDeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// ItemListResponse represents a cursor paginated item list
type ItemListResponse struct {
	Object  string            `json:"object"`
	Data    []json.RawMessage `json:"data"`
	FirstID string            `json:"first_id"`
	LastID  string            `json:"last_id"`
	HasMore bool              `json:"has_more"`
}

// NewConversationResponse creates a response from a domain conversation
func NewConversationResponse(conv *conversation.Conversation) *ConversationResponse {
	return &ConversationResponse{
		ID:        conv.PublicID,
		Object:    conv.Object,
		CreatedAt: conv.CreatedAt.Unix(),
		Metadata:  conv.Metadata,
	}
}

// NewConversationDeletedResponse creates a delete response
func NewConversationDeletedResponse(publicID string) *ConversationDeletedResponse {
	return &ConversationDeletedResponse{
		ID:      publicID,
		Object:  "conversation.deleted",
		Deleted: true,
	}
}

// NewItemListResponse creates an item list response from stored items. Data
// entries are the stored wire payloads, emitted verbatim.
func NewItemListResponse(items []*conversation.Item, hasMore bool) *ItemListResponse {
	data := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		data = append(data, item.Payload)
	}

	firstID := ""
	lastID := ""
	if len(items) > 0 {
		firstID = items[0].PublicID
		lastID = items[len(items)-1].PublicID
	}

	return &ItemListResponse{
		Object:  "list",
		Data:    data,
		FirstID: firstID,
		LastID:  lastID,
		HasMore: hasMore,
	}
}
