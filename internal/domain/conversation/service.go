package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/janhq/sessions/convert"
	"github.com/janhq/sessions/internal/infrastructure/metrics"
	"github.com/janhq/sessions/internal/infrastructure/observability"
	"github.com/janhq/sessions/internal/utils/idgen"
	"github.com/janhq/sessions/internal/utils/platformerrors"
)

const (
	// MaxItemsPerCall caps how many items one create/append request may carry.
	MaxItemsPerCall = 20

	publicIDLength = 16
)

// Service exposes the conversation operations the HTTP layer needs.
type Service interface {
	CreateConversation(ctx context.Context, metadata map[string]string, payloads []json.RawMessage) (*Conversation, error)
	GetConversation(ctx context.Context, publicID string) (*Conversation, error)
	DeleteConversation(ctx context.Context, publicID string) error
	AddItems(ctx context.Context, conversationPublicID string, payloads []json.RawMessage) ([]*Item, error)
	ListItems(ctx context.Context, conversationPublicID string, query ItemQuery) ([]*Item, error)
	GetItem(ctx context.Context, conversationPublicID, itemPublicID string) (*Item, error)
	DeleteItem(ctx context.Context, conversationPublicID, itemPublicID string) error
}

type service struct {
	conversations Repository
	items         ItemRepository
	log           zerolog.Logger
}

// NewService builds the conversation service.
func NewService(conversations Repository, items ItemRepository, log zerolog.Logger) Service {
	return &service{
		conversations: conversations,
		items:         items,
		log:           log,
	}
}

func (s *service) CreateConversation(ctx context.Context, metadata map[string]string, payloads []json.RawMessage) (*Conversation, error) {
	ctx, span := observability.StartConversationSpan(ctx, "create", "")
	defer span.End()

	publicID, err := idgen.GenerateSecureID("conv", publicIDLength)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to generate conversation id", err, "8f1c2d3e-4a5b-4c6d-8e9f-0a1b2c3d4e5f")
	}

	conv := &Conversation{
		PublicID: publicID,
		Object:   "conversation",
		Metadata: metadata,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	metrics.RecordConversationCreated()

	if len(payloads) > 0 {
		items, err := s.appendItems(ctx, conv, payloads)
		if err != nil {
			observability.RecordError(span, err)
			return nil, err
		}
		for _, item := range items {
			conv.Items = append(conv.Items, *item)
		}
	}

	s.log.Info().
		Str("conversation_id", conv.PublicID).
		Int("initial_items", len(payloads)).
		Msg("conversation created")
	return conv, nil
}

func (s *service) GetConversation(ctx context.Context, publicID string) (*Conversation, error) {
	ctx, span := observability.StartConversationSpan(ctx, "get", publicID)
	defer span.End()

	conv, err := s.conversations.FindByPublicID(ctx, publicID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return conv, nil
}

func (s *service) DeleteConversation(ctx context.Context, publicID string) error {
	ctx, span := observability.StartConversationSpan(ctx, "delete", publicID)
	defer span.End()

	conv, err := s.conversations.FindByPublicID(ctx, publicID)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	if err := s.conversations.Delete(ctx, conv.ID); err != nil {
		observability.RecordError(span, err)
		return err
	}

	s.log.Info().Str("conversation_id", publicID).Msg("conversation deleted")
	return nil
}

func (s *service) AddItems(ctx context.Context, conversationPublicID string, payloads []json.RawMessage) ([]*Item, error) {
	ctx, span := observability.StartItemSpan(ctx, "append", conversationPublicID)
	defer span.End()

	conv, err := s.conversations.FindByPublicID(ctx, conversationPublicID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	items, err := s.appendItems(ctx, conv, payloads)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return items, nil
}

// appendItems validates the wire payloads, assigns public IDs and sequence
// numbers, and stores them in request order.
func (s *service) appendItems(ctx context.Context, conv *Conversation, payloads []json.RawMessage) ([]*Item, error) {
	if len(payloads) > MaxItemsPerCall {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("cannot add more than %d items at a time", MaxItemsPerCall), nil,
			"1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d")
	}

	sequence, err := s.items.NextSequence(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	items := make([]*Item, 0, len(payloads))
	for i, payload := range payloads {
		item, err := s.buildItem(ctx, payload, sequence+i)
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				fmt.Sprintf("item validation failed at index %d", i), err,
				"2b3c4d5e-6f7a-4b8c-9d0e-1f2a3b4c5d6e")
		}
		items = append(items, item)
	}

	if err := s.items.BulkAdd(ctx, conv.ID, items); err != nil {
		return nil, err
	}
	metrics.RecordItemsAppended(len(items))
	return items, nil
}

// buildItem parses one wire payload, checks it converts cleanly, and stamps
// the assigned public ID back into the stored JSON.
func (s *service) buildItem(ctx context.Context, payload json.RawMessage, sequence int) (*Item, error) {
	var wire convert.ResponseItem
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, err
	}
	if _, err := convert.FromResponses([]convert.ResponseItem{wire}); err != nil {
		return nil, err
	}

	publicID, err := idgen.GenerateSecureID("msg", publicIDLength)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	raw["id"] = publicID
	stamped, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	itemType := wire.Type
	if itemType == "" {
		itemType = "unknown"
	}

	return &Item{
		PublicID: publicID,
		Type:     itemType,
		Sequence: sequence,
		Payload:  stamped,
	}, nil
}

func (s *service) ListItems(ctx context.Context, conversationPublicID string, query ItemQuery) ([]*Item, error) {
	ctx, span := observability.StartItemSpan(ctx, "list", conversationPublicID)
	defer span.End()

	conv, err := s.conversations.FindByPublicID(ctx, conversationPublicID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	if query.Order != SortAsc && query.Order != SortDesc {
		query.Order = SortDesc
	}

	items, err := s.items.List(ctx, conv.ID, query)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return items, nil
}

func (s *service) GetItem(ctx context.Context, conversationPublicID, itemPublicID string) (*Item, error) {
	ctx, span := observability.StartItemSpan(ctx, "get", conversationPublicID)
	defer span.End()

	conv, err := s.conversations.FindByPublicID(ctx, conversationPublicID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	item, err := s.items.FindByPublicID(ctx, conv.ID, itemPublicID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, conversationPublicID, itemPublicID string) error {
	ctx, span := observability.StartItemSpan(ctx, "delete", conversationPublicID)
	defer span.End()

	conv, err := s.conversations.FindByPublicID(ctx, conversationPublicID)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}

	item, err := s.items.FindByPublicID(ctx, conv.ID, itemPublicID)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	if err := s.items.Delete(ctx, conv.ID, item.ID); err != nil {
		observability.RecordError(span, err)
		return err
	}

	s.log.Info().
		Str("conversation_id", conversationPublicID).
		Str("item_id", itemPublicID).
		Msg("conversation item deleted")
	return nil
}
