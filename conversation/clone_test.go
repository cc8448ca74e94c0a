package conversation_test

import (
	"testing"

	"github.com/janhq/sessions/conversation"
)

func TestClone_UserMessageIndependence(t *testing.T) {
	original := &conversation.UserMessage{
		ID: "msg_1",
		Content: []conversation.ContentPart{
			&conversation.TextPart{Text: "hello"},
			&conversation.ImagePart{URL: "https://example.com/a.png", Detail: "high"},
		},
		ProviderData: map[string]any{"trace": "abc"},
	}

	clone := original.Clone().(*conversation.UserMessage)

	clone.Content[0].(*conversation.TextPart).Text = "mutated"
	clone.Content[1].(*conversation.ImagePart).URL = "https://example.com/b.png"
	clone.ProviderData["trace"] = "xyz"

	if got := original.Content[0].(*conversation.TextPart).Text; got != "hello" {
		t.Errorf("original text mutated through clone: %q", got)
	}
	if got := original.Content[1].(*conversation.ImagePart).URL; got != "https://example.com/a.png" {
		t.Errorf("original image URL mutated through clone: %q", got)
	}
	if got := original.ProviderData["trace"]; got != "abc" {
		t.Errorf("original provider data mutated through clone: %v", got)
	}
}

func TestClone_NestedProviderData(t *testing.T) {
	original := &conversation.FunctionCall{
		ID:        "fc_1",
		CallID:    "call_1",
		Name:      "get_weather",
		Arguments: `{"city":"Hanoi"}`,
		ProviderData: map[string]any{
			"nested": map[string]any{"depth": 1},
			"list":   []any{"a", "b"},
		},
	}

	clone := original.Clone().(*conversation.FunctionCall)
	clone.ProviderData["nested"].(map[string]any)["depth"] = 2
	clone.ProviderData["list"].([]any)[0] = "z"

	if got := original.ProviderData["nested"].(map[string]any)["depth"]; got != 1 {
		t.Errorf("nested map mutated through clone: %v", got)
	}
	if got := original.ProviderData["list"].([]any)[0]; got != "a" {
		t.Errorf("nested slice mutated through clone: %v", got)
	}
}

func TestClone_HostedToolCallQueries(t *testing.T) {
	original := &conversation.HostedToolCall{
		ID:      "fs_1",
		Name:    "file_search_call",
		Queries: []string{"report", "summary"},
		Payload: map[string]any{"results": []any{"doc1"}},
	}

	clone := original.Clone().(*conversation.HostedToolCall)
	clone.Queries[0] = "changed"
	clone.Payload["results"].([]any)[0] = "doc2"

	if original.Queries[0] != "report" {
		t.Errorf("queries mutated through clone: %v", original.Queries)
	}
	if got := original.Payload["results"].([]any)[0]; got != "doc1" {
		t.Errorf("payload mutated through clone: %v", got)
	}
}

func TestClone_AllVariants(t *testing.T) {
	items := []conversation.Item{
		&conversation.UserMessage{ID: "u1", Content: conversation.Text("hi")},
		&conversation.AssistantMessage{ID: "a1", Status: "completed", Content: conversation.Text("hello")},
		&conversation.SystemMessage{ID: "s1", Text: "be brief"},
		&conversation.Reasoning{ID: "r1", RawContent: "thinking"},
		&conversation.HostedToolCall{ID: "h1", Name: "file_search_call", Queries: []string{"q"}},
		&conversation.FunctionCall{ID: "f1", CallID: "c1", Name: "fn", Arguments: "{}"},
		&conversation.FunctionCallResult{ID: "fo1", CallID: "c1", Output: "ok"},
		&conversation.ComputerUseCall{ID: "cc1", CallID: "c2", Action: map[string]any{"type": "click"}},
		&conversation.ComputerUseResult{ID: "co1", CallID: "c2", Output: map[string]any{"type": "screenshot"}},
		&conversation.ShellCall{ID: "sh1", CallID: "c3", Commands: []string{"ls"}},
		&conversation.ShellCallResult{ID: "so1", CallID: "c3", Output: map[string]any{"stdout": ""}},
		&conversation.ApplyPatchCall{ID: "ap1", CallID: "c4", Operation: map[string]any{"type": "update_file"}},
		&conversation.ApplyPatchResult{ID: "ao1", CallID: "c4", Status: "completed", Output: "done"},
		&conversation.UnknownItem{ProviderData: map[string]any{"type": "mystery", "id": "x1"}},
	}

	clones := conversation.CloneItems(items)
	if len(clones) != len(items) {
		t.Fatalf("CloneItems returned %d items, want %d", len(clones), len(items))
	}
	for i, clone := range clones {
		if clone == items[i] {
			t.Errorf("item %d: clone shares identity with original", i)
		}
		if clone.Kind() != items[i].Kind() {
			t.Errorf("item %d: clone kind %q, want %q", i, clone.Kind(), items[i].Kind())
		}
		if clone.ItemID() != items[i].ItemID() {
			t.Errorf("item %d: clone id %q, want %q", i, clone.ItemID(), items[i].ItemID())
		}
	}
}

func TestItemID_UnknownItemReadsProviderData(t *testing.T) {
	tests := []struct {
		name     string
		item     conversation.Item
		expected string
	}{
		{"string id", &conversation.UnknownItem{ProviderData: map[string]any{"id": "item_9"}}, "item_9"},
		{"missing id", &conversation.UnknownItem{ProviderData: map[string]any{"type": "x"}}, ""},
		{"non-string id", &conversation.UnknownItem{ProviderData: map[string]any{"id": 42}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.ItemID(); got != tt.expected {
				t.Errorf("ItemID() = %q, want %q", got, tt.expected)
			}
		})
	}
}
