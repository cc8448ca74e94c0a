// Package session provides conversation history stores and a manager that
// composes them with wire-format conversion.
package session

import (
	"context"

	"github.com/janhq/sessions/conversation"
)

// Store persists the ordered item history of one conversation session.
//
// GetItems returns items oldest-first. A nil limit means the full history;
// a non-positive limit means no items; otherwise the latest *limit items,
// still in chronological order.
//
// PopItem removes and returns the most recent item, or nil when the session
// is empty.
type Store interface {
	SessionID(ctx context.Context) (string, error)
	GetItems(ctx context.Context, limit *int) ([]conversation.Item, error)
	AddItems(ctx context.Context, items []conversation.Item) error
	PopItem(ctx context.Context) (conversation.Item, error)
	ClearSession(ctx context.Context) error
}
