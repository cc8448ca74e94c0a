package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/janhq/sessions/conversation"
)

// MemoryStore keeps session history in process memory. It is safe for
// concurrent use. Items are deep-copied on the way in and out, so callers
// can freely mutate what they pass or receive.
type MemoryStore struct {
	mu    sync.Mutex
	id    string
	items []conversation.Item
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store. With an empty id, a random one
// is assigned on first use.
func NewMemoryStore(id string) *MemoryStore {
	return &MemoryStore{id: id}
}

func (s *MemoryStore) SessionID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureIDLocked(), nil
}

func (s *MemoryStore) ensureIDLocked() string {
	if s.id == "" {
		s.id = uuid.New().String()
	}
	return s.id
}

func (s *MemoryStore) GetItems(_ context.Context, limit *int) ([]conversation.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit == nil {
		return conversation.CloneItems(s.items), nil
	}
	if *limit <= 0 {
		return []conversation.Item{}, nil
	}
	start := len(s.items) - *limit
	if start < 0 {
		start = 0
	}
	return conversation.CloneItems(s.items[start:]), nil
}

func (s *MemoryStore) AddItems(_ context.Context, items []conversation.Item) error {
	if len(items) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureIDLocked()
	s.items = append(s.items, conversation.CloneItems(items)...)
	return nil
}

func (s *MemoryStore) PopItem(_ context.Context) (conversation.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return nil, nil
	}
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return last, nil
}

// ClearSession drops all items but keeps the session id, so the store keeps
// answering for the same session after a clear.
func (s *MemoryStore) ClearSession(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}
