package conversation

import (
	"encoding/json"
	"time"
)

// ===============================================
// Domain Models
// ===============================================

// Conversation is a stored item history addressable by its public ID.
type Conversation struct {
	ID        uint
	PublicID  string
	Object    string
	Metadata  map[string]string
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is one stored conversation entry. The wire payload is kept verbatim
// as JSON; Type is extracted for filtering and Sequence fixes the append
// order within the conversation.
type Item struct {
	ID             uint
	PublicID       string
	ConversationID uint
	Type           string
	Sequence       int
	Payload        json.RawMessage
	CreatedAt      time.Time
}

// ===============================================
// Query Types
// ===============================================

// SortOrder is the listing direction over item sequence numbers.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ItemQuery drives cursor paginated item listings. AfterID is the internal
// ID of the cursor item; results start strictly after it in the requested
// order.
type ItemQuery struct {
	Limit   int
	Order   SortOrder
	AfterID *uint
}
