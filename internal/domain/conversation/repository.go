package conversation

import "context"

// Repository persists conversation records.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	Delete(ctx context.Context, id uint) error
}

// ItemRepository persists conversation items.
type ItemRepository interface {
	BulkAdd(ctx context.Context, conversationID uint, items []*Item) error
	List(ctx context.Context, conversationID uint, query ItemQuery) ([]*Item, error)
	FindByPublicID(ctx context.Context, conversationID uint, publicID string) (*Item, error)
	Delete(ctx context.Context, conversationID uint, id uint) error
	NextSequence(ctx context.Context, conversationID uint) (int, error)
}
