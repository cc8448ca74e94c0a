package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/janhq/sessions/internal/domain/conversation"
	"github.com/janhq/sessions/internal/infrastructure/database/entities"
	"github.com/janhq/sessions/internal/infrastructure/metrics"
	"github.com/janhq/sessions/internal/utils/platformerrors"
)

// ItemRepository persists conversation items.
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository builds a conversation item repository.
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// BulkAdd inserts items in order, filling back generated IDs.
func (r *ItemRepository) BulkAdd(ctx context.Context, conversationID uint, items []*domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	start := time.Now()
	dbItems := make([]*entities.ConversationItem, len(items))
	for i, item := range items {
		item.ConversationID = conversationID
		dbItems[i] = entities.NewSchemaConversationItem(item)
	}
	if err := r.db.WithContext(ctx).Create(&dbItems).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to bulk add items",
			err,
			"0c5f6ed7-4b8a-4d1c-3e2f-6a7b8c9d0e1f",
		)
	}
	for i, entity := range dbItems {
		items[i].ID = entity.ID
		items[i].CreatedAt = entity.CreatedAt
	}
	metrics.RecordDBQuery("bulk_add_items", time.Since(start).Seconds())
	return nil
}

// List returns items ordered by sequence, starting strictly after the cursor
// when one is given.
func (r *ItemRepository) List(ctx context.Context, conversationID uint, query domain.ItemQuery) ([]*domain.Item, error) {
	start := time.Now()
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID)

	if query.AfterID != nil {
		var cursor entities.ConversationItem
		if err := r.db.WithContext(ctx).
			Select("sequence").
			Where("conversation_id = ? AND id = ?", conversationID, *query.AfterID).
			First(&cursor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, platformerrors.NewError(
					ctx,
					platformerrors.LayerRepository,
					platformerrors.ErrorTypeValidation,
					"cursor item not found",
					nil,
					"1d6a7fe8-5c9b-4e2d-4f3a-7b8c9d0e1f2a",
				)
			}
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeDatabaseError,
				"failed to resolve cursor",
				err,
				"2e7b8af9-6d0c-4f3e-5a4b-8c9d0e1f2a3b",
			)
		}
		if query.Order == domain.SortAsc {
			q = q.Where("sequence > ?", cursor.Sequence)
		} else {
			q = q.Where("sequence < ?", cursor.Sequence)
		}
	}

	if query.Order == domain.SortAsc {
		q = q.Order("sequence ASC")
	} else {
		q = q.Order("sequence DESC")
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	var rows []entities.ConversationItem
	if err := q.Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list items",
			err,
			"3f8c9ba0-7e1d-4a4f-6b5c-9d0e1f2a3b4c",
		)
	}

	result := make([]*domain.Item, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	metrics.RecordDBQuery("list_items", time.Since(start).Seconds())
	return result, nil
}

// FindByPublicID retrieves an item by its public ID.
func (r *ItemRepository) FindByPublicID(ctx context.Context, conversationID uint, publicID string) (*domain.Item, error) {
	var entity entities.ConversationItem
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND public_id = ?", conversationID, publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("item not found: %s", publicID),
				nil,
				"4a9d0cb1-8f2e-4b5a-7c6d-0e1f2a3b4c5d",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get item",
			err,
			"5b0e1dc2-9a3f-4c6b-8d7e-1f2a3b4c5d6e",
		)
	}
	return entity.EtoD(), nil
}

// Delete removes an item from a conversation.
func (r *ItemRepository) Delete(ctx context.Context, conversationID uint, id uint) error {
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND id = ?", conversationID, id).
		Delete(&entities.ConversationItem{}).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete item",
			err,
			"6c1f2ed3-0b4a-4d7c-9e8f-2a3b4c5d6e7f",
		)
	}
	return nil
}

// NextSequence returns the sequence number the next appended item should use.
func (r *ItemRepository) NextSequence(ctx context.Context, conversationID uint) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).
		Model(&entities.ConversationItem{}).
		Select("MAX(sequence)").
		Where("conversation_id = ?", conversationID).
		Scan(&max).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to compute next sequence",
			err,
			"7d2a3fe4-1c5b-4e8d-0f9a-3b4c5d6e7f8a",
		)
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}
