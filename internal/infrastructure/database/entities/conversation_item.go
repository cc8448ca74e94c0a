package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/janhq/sessions/internal/domain/conversation"
)

// ConversationItem stores one conversation entry as its verbatim wire
// payload, ordered by sequence within the conversation.
type ConversationItem struct {
	ID             uint           `gorm:"primaryKey"`
	ConversationID uint           `gorm:"index:idx_conversation_item_sequence"`
	PublicID       string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	Type           string         `gorm:"size:64"`
	Sequence       int            `gorm:"index:idx_conversation_item_sequence"`
	Payload        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ConversationItem.
func (ConversationItem) TableName() string {
	return "conversation_items"
}

// EtoD converts database entity to domain model
func (i *ConversationItem) EtoD() *conversation.Item {
	return &conversation.Item{
		ID:             i.ID,
		PublicID:       i.PublicID,
		ConversationID: i.ConversationID,
		Type:           i.Type,
		Sequence:       i.Sequence,
		Payload:        json.RawMessage(i.Payload),
		CreatedAt:      i.CreatedAt,
	}
}

// NewSchemaConversationItem creates a database entity from domain model
func NewSchemaConversationItem(item *conversation.Item) *ConversationItem {
	return &ConversationItem{
		ID:             item.ID,
		ConversationID: item.ConversationID,
		PublicID:       item.PublicID,
		Type:           item.Type,
		Sequence:       item.Sequence,
		Payload:        datatypes.JSON(item.Payload),
		CreatedAt:      item.CreatedAt,
	}
}
