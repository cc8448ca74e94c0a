package requests

import "encoding/json"

// CreateConversationRequest creates a conversation with optional initial
// items. Items are raw wire payloads; validation happens in the domain layer.
type CreateConversationRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`
	Items    []json.RawMessage `json:"items,omitempty"`
}

// CreateItemsRequest appends items to an existing conversation.
type CreateItemsRequest struct {
	Items []json.RawMessage `json:"items" binding:"required"`
}

// ListItemsQueryParams are the cursor pagination parameters for item listing.
type ListItemsQueryParams struct {
	Limit *int    `form:"limit"`
	Order *string `form:"order"`
	After *string `form:"after"`
}
