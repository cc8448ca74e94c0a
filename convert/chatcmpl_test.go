package convert_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/janhq/sessions/conversation"
	"github.com/janhq/sessions/convert"
)

func TestToChatCompletions_AssistantAccumulation(t *testing.T) {
	// Reasoning, reply text and two tool calls between user turns collapse
	// into a single assistant message.
	items := []conversation.Item{
		&conversation.UserMessage{Content: conversation.Text("what's the weather?")},
		&conversation.Reasoning{RawContent: "need two lookups"},
		&conversation.AssistantMessage{Content: conversation.Text("checking now")},
		&conversation.FunctionCall{CallID: "call_1", Name: "get_weather", Arguments: `{"city":"Hanoi"}`},
		&conversation.FunctionCall{CallID: "call_2", Name: "get_weather", Arguments: `{"city":"Hue"}`},
		&conversation.FunctionCallResult{CallID: "call_1", Output: "sunny"},
	}

	messages, err := convert.ToChatCompletions(items)
	if err != nil {
		t.Fatalf("ToChatCompletions() error = %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3 (user, assistant, tool)", len(messages))
	}

	assistant := messages[1]
	if assistant.Role != "assistant" {
		t.Fatalf("second message role = %q, want assistant", assistant.Role)
	}
	if assistant.ReasoningContent != "need two lookups" {
		t.Errorf("reasoning content = %q", assistant.ReasoningContent)
	}
	if assistant.Content != "checking now" {
		t.Errorf("content = %v, want plain string", assistant.Content)
	}
	if len(assistant.ToolCalls) != 2 {
		t.Fatalf("got %d tool calls, want 2", len(assistant.ToolCalls))
	}
	if assistant.ToolCalls[0].ID != "call_1" || assistant.ToolCalls[1].ID != "call_2" {
		t.Errorf("tool call ids wrong: %+v", assistant.ToolCalls)
	}

	tool := messages[2]
	if tool.Role != "tool" || tool.ToolCallID != "call_1" || tool.Content != "sunny" {
		t.Errorf("tool message wrong: %+v", tool)
	}
}

func TestToChatCompletions_FlushBoundaries(t *testing.T) {
	items := []conversation.Item{
		&conversation.AssistantMessage{Content: conversation.Text("first")},
		&conversation.UserMessage{Content: conversation.Text("interject")},
		&conversation.AssistantMessage{Content: conversation.Text("second")},
		&conversation.SystemMessage{Text: "redirect"},
		&conversation.AssistantMessage{Content: conversation.Text("third")},
	}

	messages, err := convert.ToChatCompletions(items)
	if err != nil {
		t.Fatalf("ToChatCompletions() error = %v", err)
	}
	roles := make([]string, len(messages))
	for i, m := range messages {
		roles[i] = m.Role
	}
	want := []string{"assistant", "user", "assistant", "system", "assistant"}
	if len(roles) != len(want) {
		t.Fatalf("roles = %v, want %v", roles, want)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("roles = %v, want %v", roles, want)
		}
	}
	if messages[4].Content != "third" {
		t.Errorf("trailing assistant not flushed: %+v", messages[4])
	}
}

func TestToChatCompletions_AssistantTextConcatenation(t *testing.T) {
	items := []conversation.Item{
		&conversation.AssistantMessage{Content: conversation.Text("part one ")},
		&conversation.AssistantMessage{Content: conversation.Text("part two")},
	}
	messages, err := convert.ToChatCompletions(items)
	if err != nil {
		t.Fatalf("ToChatCompletions() error = %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	if messages[0].Content != "part one part two" {
		t.Errorf("content = %v, want concatenated text", messages[0].Content)
	}
}

func TestToChatCompletions_FirstAudioWins(t *testing.T) {
	items := []conversation.Item{
		&conversation.AssistantMessage{Content: []conversation.ContentPart{
			&conversation.AudioPart{ID: "au_1", Transcript: "first"},
			&conversation.AudioPart{ID: "au_2", Transcript: "second"},
		}},
	}
	messages, err := convert.ToChatCompletions(items)
	if err != nil {
		t.Fatalf("ToChatCompletions() error = %v", err)
	}
	if messages[0].Audio == nil || messages[0].Audio.ID != "au_1" {
		t.Errorf("audio = %+v, want first audio part", messages[0].Audio)
	}
}

func TestToChatCompletions_HostedTools(t *testing.T) {
	fileSearch := &conversation.HostedToolCall{
		ID:      "fs_1",
		Name:    "file_search_call",
		Status:  "completed",
		Queries: []string{"quarterly report"},
	}
	messages, err := convert.ToChatCompletions([]conversation.Item{fileSearch})
	if err != nil {
		t.Fatalf("ToChatCompletions() error = %v", err)
	}
	call := messages[0].ToolCalls[0]
	if call.ID != "fs_1" || call.Function.Name != "file_search_call" {
		t.Errorf("file search call mapped incorrectly: %+v", call)
	}
	var args struct {
		Queries []string `json:"queries"`
		Status  string   `json:"status"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		t.Fatalf("arguments are not valid JSON: %v", err)
	}
	if args.Status != "completed" || len(args.Queries) != 1 {
		t.Errorf("arguments = %+v", args)
	}

	webSearch := &conversation.HostedToolCall{ID: "ws_1", Name: "web_search_call"}
	_, err = convert.ToChatCompletions([]conversation.Item{webSearch})
	var toolErr *convert.UnsupportedToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error = %v, want UnsupportedToolError", err)
	}
	if toolErr.ToolName != "web_search_call" {
		t.Errorf("ToolName = %q", toolErr.ToolName)
	}
}

func TestToChatCompletions_ActionCallsUnsupported(t *testing.T) {
	tests := []struct {
		name string
		item conversation.Item
	}{
		{"shell call", &conversation.ShellCall{CallID: "c1", Commands: []string{"ls"}}},
		{"computer call", &conversation.ComputerUseCall{CallID: "c2"}},
		{"apply patch call", &conversation.ApplyPatchCall{CallID: "c3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The structured format carries these fine.
			if _, err := convert.ToResponses([]conversation.Item{tt.item}); err != nil {
				t.Fatalf("ToResponses() error = %v", err)
			}
			// The flat format has no place for them.
			_, err := convert.ToChatCompletions([]conversation.Item{tt.item})
			var target *convert.UnsupportedItemError
			if !errors.As(err, &target) {
				t.Errorf("ToChatCompletions() error = %v, want UnsupportedItemError", err)
			}
		})
	}
}

func TestToChatCompletions_UnknownItemPassThrough(t *testing.T) {
	items := []conversation.Item{
		&conversation.AssistantMessage{Content: conversation.Text("before")},
		&conversation.UnknownItem{ProviderData: map[string]any{
			"type":    "hologram_call",
			"payload": map[string]any{"depth": "full"},
		}},
	}

	messages, err := convert.ToChatCompletions(items)
	if err != nil {
		t.Fatalf("ToChatCompletions() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].Role != "assistant" {
		t.Errorf("pending assistant not flushed before opaque message: %+v", messages[0])
	}

	// The opaque payload goes out verbatim, with no role injected.
	raw, err := json.Marshal(messages[1])
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}
	if _, hasRole := wire["role"]; hasRole {
		t.Errorf("opaque message grew a role field: %s", raw)
	}
	if wire["type"] != "hologram_call" {
		t.Errorf("type = %v, want hologram_call", wire["type"])
	}
	payload, ok := wire["payload"].(map[string]any)
	if !ok || payload["depth"] != "full" {
		t.Errorf("payload lost: %s", raw)
	}

	// And survives ingestion as the same opaque item.
	var single convert.ChatMessage
	if err := json.Unmarshal(raw, &single); err != nil {
		t.Fatalf("unmarshal message error = %v", err)
	}
	back, err := convert.FromChatCompletions([]convert.ChatMessage{single})
	if err != nil {
		t.Fatalf("FromChatCompletions() error = %v", err)
	}
	unknown, ok := back[0].(*conversation.UnknownItem)
	if !ok {
		t.Fatalf("item is %T, want *UnknownItem", back[0])
	}
	if unknown.ProviderData["type"] != "hologram_call" {
		t.Errorf("ProviderData = %+v", unknown.ProviderData)
	}
}

func TestChatCompletions_ProviderDataRoundTrip(t *testing.T) {
	items := []conversation.Item{
		&conversation.SystemMessage{Text: "be brief", ProviderData: map[string]any{"vendor": "s"}},
		&conversation.UserMessage{Content: conversation.Text("hi"), ProviderData: map[string]any{"vendor": "u"}},
		&conversation.AssistantMessage{Content: conversation.Text("hello"), ProviderData: map[string]any{"vendor": "a"}},
		&conversation.FunctionCall{CallID: "call_1", Name: "noop", Arguments: "{}"},
		&conversation.FunctionCallResult{CallID: "call_1", Output: "done", ProviderData: map[string]any{"vendor": "t"}},
	}

	messages, err := convert.ToChatCompletions(items)
	if err != nil {
		t.Fatalf("ToChatCompletions() error = %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(messages))
	}
	for i, want := range []string{"s", "u", "a", "t"} {
		if got := messages[i].ProviderData["vendor"]; got != want {
			t.Errorf("message %d provider data = %v, want %q", i, got, want)
		}
	}

	// Push through the wire encoding and back into items.
	raw, err := json.Marshal(messages)
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}
	var decoded []convert.ChatMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}
	back, err := convert.FromChatCompletions(decoded)
	if err != nil {
		t.Fatalf("FromChatCompletions() error = %v", err)
	}

	system, ok := back[0].(*conversation.SystemMessage)
	if !ok || system.ProviderData["vendor"] != "s" {
		t.Errorf("system provider data lost: %+v", back[0])
	}
	user, ok := back[1].(*conversation.UserMessage)
	if !ok || user.ProviderData["vendor"] != "u" {
		t.Errorf("user provider data lost: %+v", back[1])
	}
	assistant, ok := back[2].(*conversation.AssistantMessage)
	if !ok || assistant.ProviderData["vendor"] != "a" {
		t.Errorf("assistant provider data lost: %+v", back[2])
	}
	result, ok := back[4].(*conversation.FunctionCallResult)
	if !ok || result.ProviderData["vendor"] != "t" {
		t.Errorf("tool provider data lost: %+v", back[4])
	}
}

func TestToChatCompletions_NonTextFunctionOutput(t *testing.T) {
	result := &conversation.FunctionCallResult{
		CallID: "call_1",
		OutputParts: []conversation.ContentPart{
			&conversation.ImagePart{URL: "https://example.com/x.png"},
		},
	}
	_, err := convert.ToChatCompletions([]conversation.Item{result})
	var target *convert.UnsupportedOutputError
	if !errors.As(err, &target) {
		t.Fatalf("error = %v, want UnsupportedOutputError", err)
	}
	if target.CallID != "call_1" {
		t.Errorf("CallID = %q", target.CallID)
	}
}

func TestToChatCompletions_UserContentShapes(t *testing.T) {
	t.Run("single text collapses to string", func(t *testing.T) {
		messages, err := convert.ToChatCompletions([]conversation.Item{
			&conversation.UserMessage{Content: conversation.Text("plain")},
		})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if messages[0].Content != "plain" {
			t.Errorf("content = %v, want string", messages[0].Content)
		}
	})

	t.Run("multi part becomes block list", func(t *testing.T) {
		messages, err := convert.ToChatCompletions([]conversation.Item{
			&conversation.UserMessage{Content: []conversation.ContentPart{
				&conversation.TextPart{Text: "see this"},
				&conversation.ImagePart{URL: "https://example.com/a.png", Detail: "low"},
				&conversation.FilePart{FileID: "file_1", Filename: "doc.pdf"},
			}},
		})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		blocks, ok := messages[0].Content.([]convert.ChatContentPart)
		if !ok {
			t.Fatalf("content is %T, want []ChatContentPart", messages[0].Content)
		}
		if blocks[0].Type != "text" || blocks[1].Type != "image_url" || blocks[2].Type != "file" {
			t.Errorf("block types wrong: %+v", blocks)
		}
		if blocks[1].ImageURL.URL != "https://example.com/a.png" {
			t.Errorf("image url lost: %+v", blocks[1])
		}
	})

	t.Run("file id only image fails flat", func(t *testing.T) {
		// A file-id-only image survives the structured format but not this
		// one, which carries images by URL alone.
		item := &conversation.UserMessage{Content: []conversation.ContentPart{
			&conversation.TextPart{Text: "x"},
			&conversation.ImagePart{FileID: "file_1"},
		}}
		if _, err := convert.ToResponses([]conversation.Item{item}); err != nil {
			t.Fatalf("ToResponses() error = %v", err)
		}
		_, err := convert.ToChatCompletions([]conversation.Item{item})
		var target *convert.UnsupportedContentError
		if !errors.As(err, &target) {
			t.Errorf("error = %v, want UnsupportedContentError", err)
		}
	})

	t.Run("sourceless image fails flat", func(t *testing.T) {
		item := &conversation.UserMessage{Content: []conversation.ContentPart{
			&conversation.TextPart{Text: "x"},
			&conversation.ImagePart{Detail: "low"},
		}}
		_, err := convert.ToChatCompletions([]conversation.Item{item})
		var target *convert.MissingImageSourceError
		if !errors.As(err, &target) {
			t.Errorf("error = %v, want MissingImageSourceError", err)
		}
	})
}

func TestFromChatCompletions_AssistantFanOut(t *testing.T) {
	messages := []convert.ChatMessage{
		{
			Role:             "assistant",
			Content:          "here you go",
			ReasoningContent: "planning",
			ToolCalls: []convert.ChatToolCall{
				{ID: "call_1", Type: "function", Function: convert.ChatFunction{Name: "fn", Arguments: "{}"}},
				{ID: "fs_1", Type: "function", Function: convert.ChatFunction{Name: "file_search_call", Arguments: `{"queries":["q"],"status":"completed"}`}},
			},
		},
	}

	items, err := convert.FromChatCompletions(messages)
	if err != nil {
		t.Fatalf("FromChatCompletions() error = %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("got %d items, want 4 (reasoning, message, 2 calls)", len(items))
	}
	if _, ok := items[0].(*conversation.Reasoning); !ok {
		t.Errorf("first item is %T, want *Reasoning", items[0])
	}
	msg, ok := items[1].(*conversation.AssistantMessage)
	if !ok {
		t.Fatalf("second item is %T, want *AssistantMessage", items[1])
	}
	if msg.Content[0].(*conversation.TextPart).Text != "here you go" {
		t.Errorf("assistant text changed: %+v", msg.Content)
	}
	call, ok := items[2].(*conversation.FunctionCall)
	if !ok || call.CallID != "call_1" {
		t.Errorf("third item wrong: %+v", items[2])
	}
	hosted, ok := items[3].(*conversation.HostedToolCall)
	if !ok || hosted.Name != "file_search_call" || hosted.Status != "completed" {
		t.Errorf("fourth item wrong: %+v", items[3])
	}
}

func TestFromChatCompletions_ToolCallsOnlyAssistant(t *testing.T) {
	messages := []convert.ChatMessage{
		{
			Role: "assistant",
			ToolCalls: []convert.ChatToolCall{
				{ID: "call_1", Type: "function", Function: convert.ChatFunction{Name: "fn", Arguments: "{}"}},
			},
		},
	}
	items, err := convert.FromChatCompletions(messages)
	if err != nil {
		t.Fatalf("FromChatCompletions() error = %v", err)
	}
	// No empty assistant message is synthesized alongside the calls.
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if _, ok := items[0].(*conversation.FunctionCall); !ok {
		t.Errorf("item is %T, want *FunctionCall", items[0])
	}
}

func TestFromChatCompletions_Roles(t *testing.T) {
	messages := []convert.ChatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "developer", Content: "log everything"},
		{Role: "user", Content: "hi"},
		{Role: "tool", Content: "42", ToolCallID: "call_1"},
	}
	items, err := convert.FromChatCompletions(messages)
	if err != nil {
		t.Fatalf("FromChatCompletions() error = %v", err)
	}
	if _, ok := items[0].(*conversation.SystemMessage); !ok {
		t.Errorf("system role mapped to %T", items[0])
	}
	if _, ok := items[1].(*conversation.SystemMessage); !ok {
		t.Errorf("developer role mapped to %T", items[1])
	}
	if _, ok := items[2].(*conversation.UserMessage); !ok {
		t.Errorf("user role mapped to %T", items[2])
	}
	result, ok := items[3].(*conversation.FunctionCallResult)
	if !ok || result.CallID != "call_1" || result.Output != "42" {
		t.Errorf("tool role mapped incorrectly: %+v", items[3])
	}

	_, err = convert.FromChatCompletions([]convert.ChatMessage{{Role: "narrator"}})
	var target *convert.UnsupportedItemError
	if !errors.As(err, &target) {
		t.Errorf("unknown role error = %v, want UnsupportedItemError", err)
	}
}

func TestFromChatCompletions_DecodedJSONContent(t *testing.T) {
	// Content decoded from raw JSON arrives as []any of maps, not typed parts.
	raw := `[{"role":"user","content":[{"type":"text","text":"look"},{"type":"image_url","image_url":{"url":"https://example.com/a.png"}}]}]`
	var messages []convert.ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	items, err := convert.FromChatCompletions(messages)
	if err != nil {
		t.Fatalf("FromChatCompletions() error = %v", err)
	}
	user := items[0].(*conversation.UserMessage)
	if len(user.Content) != 2 {
		t.Fatalf("got %d parts, want 2", len(user.Content))
	}
	img, ok := user.Content[1].(*conversation.ImagePart)
	if !ok || img.URL != "https://example.com/a.png" {
		t.Errorf("image part wrong: %+v", user.Content[1])
	}
}

func TestChatRoundTrip(t *testing.T) {
	items := []conversation.Item{
		&conversation.SystemMessage{Text: "be brief"},
		&conversation.UserMessage{Content: conversation.Text("weather in Hanoi?")},
		&conversation.Reasoning{RawContent: "lookup needed"},
		&conversation.AssistantMessage{Content: conversation.Text("one moment")},
		&conversation.FunctionCall{CallID: "call_1", Name: "get_weather", Arguments: `{"city":"Hanoi"}`},
		&conversation.FunctionCallResult{CallID: "call_1", Output: "sunny"},
		&conversation.AssistantMessage{Content: conversation.Text("it is sunny")},
	}

	messages, err := convert.ToChatCompletions(items)
	if err != nil {
		t.Fatalf("ToChatCompletions() error = %v", err)
	}
	back, err := convert.FromChatCompletions(messages)
	if err != nil {
		t.Fatalf("FromChatCompletions() error = %v", err)
	}

	if len(back) != len(items) {
		t.Fatalf("round trip changed item count: got %d, want %d", len(back), len(items))
	}
	for i := range items {
		if back[i].Kind() != items[i].Kind() {
			t.Errorf("item %d: kind %q, want %q", i, back[i].Kind(), items[i].Kind())
		}
	}
	if got := back[5].(*conversation.FunctionCallResult).Output; got != "sunny" {
		t.Errorf("function output changed: %q", got)
	}
	if got := back[6].(*conversation.AssistantMessage).Content[0].(*conversation.TextPart).Text; got != "it is sunny" {
		t.Errorf("final reply changed: %q", got)
	}
}
