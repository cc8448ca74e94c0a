package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/janhq/sessions/conversation"
	"github.com/janhq/sessions/convert"
)

// Format names a wire representation of conversation history.
type Format string

const (
	FormatResponses       Format = "responses"
	FormatChatCompletions Format = "chat_completions"
)

// Manager pairs a Store with the wire-format converters, so callers can move
// history in and out of provider payloads without touching the converters
// directly.
type Manager struct {
	store Store
}

// NewManager wraps a store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Store exposes the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

func (m *Manager) SessionID(ctx context.Context) (string, error) {
	return m.store.SessionID(ctx)
}

func (m *Manager) GetItems(ctx context.Context, limit *int) ([]conversation.Item, error) {
	return m.store.GetItems(ctx, limit)
}

func (m *Manager) AddItems(ctx context.Context, items []conversation.Item) error {
	return m.store.AddItems(ctx, items)
}

func (m *Manager) PopItem(ctx context.Context) (conversation.Item, error) {
	return m.store.PopItem(ctx)
}

func (m *Manager) ClearSession(ctx context.Context) error {
	return m.store.ClearSession(ctx)
}

// ExportAs reads the full history and renders it in the requested format.
// The concrete element type of the returned slice depends on the format:
// []convert.ResponseItem or []convert.ChatMessage.
func (m *Manager) ExportAs(ctx context.Context, format Format) (any, error) {
	items, err := m.store.GetItems(ctx, nil)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatResponses:
		return convert.ToResponses(items)
	case FormatChatCompletions:
		return convert.ToChatCompletions(items)
	default:
		return nil, fmt.Errorf("unknown history format %q", format)
	}
}

// ImportFrom parses history rendered in the given format and appends it.
// data may be the typed wire slice for the format, raw JSON bytes, or
// anything JSON-shaped like either.
func (m *Manager) ImportFrom(ctx context.Context, format Format, data any) error {
	switch format {
	case FormatResponses:
		wire, err := coerceWire[convert.ResponseItem](data)
		if err != nil {
			return err
		}
		return m.ImportResponses(ctx, wire)
	case FormatChatCompletions:
		wire, err := coerceWire[convert.ChatMessage](data)
		if err != nil {
			return err
		}
		return m.ImportChatCompletions(ctx, wire)
	default:
		return fmt.Errorf("unknown history format %q", format)
	}
}

func coerceWire[T any](data any) ([]T, error) {
	switch d := data.(type) {
	case []T:
		return d, nil
	case json.RawMessage:
		var out []T
		if err := json.Unmarshal(d, &out); err != nil {
			return nil, err
		}
		return out, nil
	case []byte:
		var out []T
		if err := json.Unmarshal(d, &out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// ImportResponses parses responses-style wire items and appends them.
func (m *Manager) ImportResponses(ctx context.Context, wire []convert.ResponseItem) error {
	items, err := convert.FromResponses(wire)
	if err != nil {
		return err
	}
	return m.store.AddItems(ctx, items)
}

// ImportChatCompletions parses chat-style messages and appends them.
func (m *Manager) ImportChatCompletions(ctx context.Context, messages []convert.ChatMessage) error {
	items, err := convert.FromChatCompletions(messages)
	if err != nil {
		return err
	}
	return m.store.AddItems(ctx, items)
}
