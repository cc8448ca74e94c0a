package session_test

import (
	"context"
	"testing"

	"github.com/janhq/sessions/conversation"
	"github.com/janhq/sessions/session"
)

func userText(text string) conversation.Item {
	return &conversation.UserMessage{Content: conversation.Text(text)}
}

func itemText(t *testing.T, item conversation.Item) string {
	t.Helper()
	msg, ok := item.(*conversation.UserMessage)
	if !ok {
		t.Fatalf("item is %T, want *UserMessage", item)
	}
	part, ok := msg.Content[0].(*conversation.TextPart)
	if !ok {
		t.Fatalf("part is %T, want *TextPart", msg.Content[0])
	}
	return part.Text
}

func seedMemoryStore(t *testing.T, texts ...string) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore("sess_test")
	items := make([]conversation.Item, 0, len(texts))
	for _, text := range texts {
		items = append(items, userText(text))
	}
	if err := store.AddItems(context.Background(), items); err != nil {
		t.Fatalf("AddItems() error = %v", err)
	}
	return store
}

func TestMemoryStore_SessionID(t *testing.T) {
	ctx := context.Background()

	fixed := session.NewMemoryStore("sess_fixed")
	id, err := fixed.SessionID(ctx)
	if err != nil {
		t.Fatalf("SessionID() error = %v", err)
	}
	if id != "sess_fixed" {
		t.Errorf("SessionID() = %q, want sess_fixed", id)
	}

	auto := session.NewMemoryStore("")
	first, err := auto.SessionID(ctx)
	if err != nil {
		t.Fatalf("SessionID() error = %v", err)
	}
	if first == "" {
		t.Fatal("expected generated session id, got empty")
	}
	second, _ := auto.SessionID(ctx)
	if first != second {
		t.Errorf("generated id not stable: %q then %q", first, second)
	}
}

func TestMemoryStore_GetItemsLimits(t *testing.T) {
	intptr := func(n int) *int { return &n }

	tests := []struct {
		name  string
		limit *int
		want  []string
	}{
		{"nil returns all oldest first", nil, []string{"a", "b", "c", "d"}},
		{"zero returns empty", intptr(0), []string{}},
		{"negative returns empty", intptr(-5), []string{}},
		{"limit two returns latest in order", intptr(2), []string{"c", "d"}},
		{"limit beyond size returns all", intptr(10), []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seedMemoryStore(t, "a", "b", "c", "d")
			items, err := store.GetItems(context.Background(), tt.limit)
			if err != nil {
				t.Fatalf("GetItems() error = %v", err)
			}
			if items == nil {
				t.Fatal("GetItems() returned nil slice")
			}
			if len(items) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(items), len(tt.want))
			}
			for i, want := range tt.want {
				if got := itemText(t, items[i]); got != want {
					t.Errorf("item %d = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestMemoryStore_PopItem(t *testing.T) {
	ctx := context.Background()
	store := seedMemoryStore(t, "first", "second")

	item, err := store.PopItem(ctx)
	if err != nil {
		t.Fatalf("PopItem() error = %v", err)
	}
	if got := itemText(t, item); got != "second" {
		t.Errorf("PopItem() = %q, want second", got)
	}

	item, err = store.PopItem(ctx)
	if err != nil {
		t.Fatalf("PopItem() error = %v", err)
	}
	if got := itemText(t, item); got != "first" {
		t.Errorf("PopItem() = %q, want first", got)
	}

	item, err = store.PopItem(ctx)
	if err != nil {
		t.Fatalf("PopItem() on empty error = %v", err)
	}
	if item != nil {
		t.Errorf("PopItem() on empty = %v, want nil", item)
	}
}

func TestMemoryStore_ClearKeepsSessionID(t *testing.T) {
	ctx := context.Background()
	store := seedMemoryStore(t, "a", "b")

	before, _ := store.SessionID(ctx)
	if err := store.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}
	after, _ := store.SessionID(ctx)
	if before != after {
		t.Errorf("session id changed across clear: %q then %q", before, after)
	}

	items, err := store.GetItems(ctx, nil)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("store not empty after clear: %d items", len(items))
	}

	if err := store.AddItems(ctx, []conversation.Item{userText("again")}); err != nil {
		t.Fatalf("AddItems() after clear error = %v", err)
	}
	items, _ = store.GetItems(ctx, nil)
	if len(items) != 1 {
		t.Errorf("store unusable after clear: %d items", len(items))
	}
}

func TestMemoryStore_DefensiveCopies(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore("sess_copy")

	original := &conversation.UserMessage{Content: conversation.Text("intact")}
	if err := store.AddItems(ctx, []conversation.Item{original}); err != nil {
		t.Fatalf("AddItems() error = %v", err)
	}

	// Mutating the caller's item after the append does not touch stored state.
	original.Content[0].(*conversation.TextPart).Text = "mutated by caller"
	items, err := store.GetItems(ctx, nil)
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if got := itemText(t, items[0]); got != "intact" {
		t.Errorf("stored item = %q, want intact", got)
	}

	// Mutating a returned item does not touch stored state either.
	items[0].(*conversation.UserMessage).Content[0].(*conversation.TextPart).Text = "mutated by reader"
	again, _ := store.GetItems(ctx, nil)
	if got := itemText(t, again[0]); got != "intact" {
		t.Errorf("stored item = %q after reader mutation, want intact", got)
	}
}
