package convert_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/janhq/sessions/conversation"
	"github.com/janhq/sessions/convert"
)

func TestToResponses_MessageVariants(t *testing.T) {
	items := []conversation.Item{
		&conversation.UserMessage{ID: "u1", Content: conversation.Text("hi")},
		&conversation.SystemMessage{ID: "s1", Text: "be brief"},
		&conversation.AssistantMessage{
			ID:     "a1",
			Status: "completed",
			Content: []conversation.ContentPart{
				&conversation.TextPart{Text: "hello"},
				&conversation.RefusalPart{Refusal: "cannot help with that"},
			},
		},
	}

	wire, err := convert.ToResponses(items)
	if err != nil {
		t.Fatalf("ToResponses() error = %v", err)
	}
	if len(wire) != 3 {
		t.Fatalf("ToResponses() returned %d items, want 3", len(wire))
	}

	if wire[0].Role != "user" || wire[0].Content[0].Type != "input_text" || wire[0].Content[0].Text != "hi" {
		t.Errorf("user message mapped incorrectly: %+v", wire[0])
	}
	if wire[1].Role != "system" || wire[1].Content[0].Type != "input_text" {
		t.Errorf("system message mapped incorrectly: %+v", wire[1])
	}
	if wire[2].Role != "assistant" || wire[2].Status != "completed" {
		t.Errorf("assistant message mapped incorrectly: %+v", wire[2])
	}
	if wire[2].Content[0].Type != "output_text" || wire[2].Content[1].Type != "refusal" {
		t.Errorf("assistant content tags wrong: %+v", wire[2].Content)
	}
	if wire[2].Content[1].Refusal != "cannot help with that" {
		t.Errorf("refusal text lost: %+v", wire[2].Content[1])
	}
}

func TestToResponses_MissingSources(t *testing.T) {
	tests := []struct {
		name string
		item conversation.Item
		want error
	}{
		{
			"image without url or file id",
			&conversation.UserMessage{Content: []conversation.ContentPart{&conversation.ImagePart{Detail: "high"}}},
			&convert.MissingImageSourceError{},
		},
		{
			"file without any source",
			&conversation.UserMessage{Content: []conversation.ContentPart{&conversation.FilePart{Filename: "a.pdf"}}},
			&convert.MissingFileSourceError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convert.ToResponses([]conversation.Item{tt.item})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			switch tt.want.(type) {
			case *convert.MissingImageSourceError:
				var target *convert.MissingImageSourceError
				if !errors.As(err, &target) {
					t.Errorf("error = %v, want MissingImageSourceError", err)
				}
			case *convert.MissingFileSourceError:
				var target *convert.MissingFileSourceError
				if !errors.As(err, &target) {
					t.Errorf("error = %v, want MissingFileSourceError", err)
				}
			}
		})
	}
}

func TestToResponses_ImageByFileIDOnly(t *testing.T) {
	items := []conversation.Item{
		&conversation.UserMessage{Content: []conversation.ContentPart{&conversation.ImagePart{FileID: "file_1"}}},
	}
	wire, err := convert.ToResponses(items)
	if err != nil {
		t.Fatalf("ToResponses() error = %v", err)
	}
	if wire[0].Content[0].FileID != "file_1" {
		t.Errorf("file id lost: %+v", wire[0].Content[0])
	}
}

func TestFromResponses_RoleFallback(t *testing.T) {
	tests := []struct {
		name     string
		content  []convert.ResponseContent
		wantRole string
	}{
		{
			"all output blocks classify as assistant",
			[]convert.ResponseContent{{Type: "output_text", Text: "hi"}, {Type: "refusal", Refusal: "no"}},
			"assistant",
		},
		{
			"input block classifies as user",
			[]convert.ResponseContent{{Type: "input_text", Text: "hi"}},
			"user",
		},
		{
			"generic text tag classifies as user",
			[]convert.ResponseContent{{Type: "text", Text: "hi"}},
			"user",
		},
		{
			"empty content falls back to user",
			nil,
			"user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := convert.FromResponses([]convert.ResponseItem{{Type: "message", Content: tt.content}})
			if err != nil {
				t.Fatalf("FromResponses() error = %v", err)
			}
			switch tt.wantRole {
			case "assistant":
				if _, ok := items[0].(*conversation.AssistantMessage); !ok {
					t.Errorf("got %T, want *AssistantMessage", items[0])
				}
			case "user":
				if _, ok := items[0].(*conversation.UserMessage); !ok {
					t.Errorf("got %T, want *UserMessage", items[0])
				}
			}
		})
	}
}

func TestFromResponses_UnknownContentNeverClassifiesAsOutput(t *testing.T) {
	// A future tag that merely resembles output must not flip the message to
	// assistant; it lands on the user path and fails as unsupported there.
	wire := []convert.ResponseItem{{
		Type:    "message",
		Content: []convert.ResponseContent{{Type: "output_video"}},
	}}
	_, err := convert.FromResponses(wire)
	var target *convert.UnsupportedContentError
	if !errors.As(err, &target) {
		t.Fatalf("error = %v, want UnsupportedContentError", err)
	}
	if target.PartType != "output_video" {
		t.Errorf("PartType = %q, want output_video", target.PartType)
	}
}

func TestFromResponses_HostedToolCalls(t *testing.T) {
	payload := `{"type":"file_search_call","id":"fs_1","status":"completed","queries":["report"],"results":[{"file_id":"f1"}]}`
	var wire convert.ResponseItem
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	items, err := convert.FromResponses([]convert.ResponseItem{wire})
	if err != nil {
		t.Fatalf("FromResponses() error = %v", err)
	}
	call, ok := items[0].(*conversation.HostedToolCall)
	if !ok {
		t.Fatalf("got %T, want *HostedToolCall", items[0])
	}
	if call.Name != "file_search_call" || call.ID != "fs_1" || call.Status != "completed" {
		t.Errorf("hosted call fields wrong: %+v", call)
	}
	if len(call.Queries) != 1 || call.Queries[0] != "report" {
		t.Errorf("queries wrong: %v", call.Queries)
	}
	if _, ok := call.Payload["results"]; !ok {
		t.Errorf("extra wire fields not preserved in payload: %v", call.Payload)
	}
	if _, ok := call.Payload["status"]; ok {
		t.Errorf("typed field leaked into payload: %v", call.Payload)
	}
}

func TestRoundTrip_UnknownItemVerbatim(t *testing.T) {
	payload := `{"type":"hologram_call","id":"holo_1","beam":{"intensity":3},"targets":["a","b"]}`
	var wire convert.ResponseItem
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	items, err := convert.FromResponses([]convert.ResponseItem{wire})
	if err != nil {
		t.Fatalf("FromResponses() error = %v", err)
	}
	unknown, ok := items[0].(*conversation.UnknownItem)
	if !ok {
		t.Fatalf("got %T, want *UnknownItem", items[0])
	}
	if unknown.ItemID() != "holo_1" {
		t.Errorf("ItemID() = %q, want holo_1", unknown.ItemID())
	}

	back, err := convert.ToResponses(items)
	if err != nil {
		t.Fatalf("ToResponses() error = %v", err)
	}
	encoded, err := json.Marshal(back[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got, want map[string]any
	if err := json.Unmarshal(encoded, &got); err != nil {
		t.Fatalf("unmarshal round trip: %v", err)
	}
	if err := json.Unmarshal([]byte(payload), &want); err != nil {
		t.Fatalf("unmarshal original: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("round trip changed field set: got %v, want %v", got, want)
	}
	for k := range want {
		gb, _ := json.Marshal(got[k])
		wb, _ := json.Marshal(want[k])
		if string(gb) != string(wb) {
			t.Errorf("field %q changed: got %s, want %s", k, gb, wb)
		}
	}
}

func TestRoundTrip_FunctionCallPair(t *testing.T) {
	items := []conversation.Item{
		&conversation.FunctionCall{
			ID:        "fc_1",
			CallID:    "call_abc",
			Name:      "get_weather",
			Arguments: `{"city":"Hanoi"}`,
			Status:    "completed",
		},
		&conversation.FunctionCallResult{
			ID:     "fr_1",
			CallID: "call_abc",
			Output: "sunny, 31C",
		},
	}

	wire, err := convert.ToResponses(items)
	if err != nil {
		t.Fatalf("ToResponses() error = %v", err)
	}
	if wire[0].Type != "function_call" || wire[0].CallID != "call_abc" {
		t.Errorf("function call mapped incorrectly: %+v", wire[0])
	}
	if wire[1].Type != "function_call_output" {
		t.Errorf("function output mapped incorrectly: %+v", wire[1])
	}

	back, err := convert.FromResponses(wire)
	if err != nil {
		t.Fatalf("FromResponses() error = %v", err)
	}
	call := back[0].(*conversation.FunctionCall)
	if call.Arguments != `{"city":"Hanoi"}` {
		t.Errorf("arguments changed in round trip: %q", call.Arguments)
	}
	result := back[1].(*conversation.FunctionCallResult)
	if result.Output != "sunny, 31C" || result.OutputParts != nil {
		t.Errorf("output changed in round trip: %+v", result)
	}
}

func TestFromResponses_StructuredFunctionOutput(t *testing.T) {
	wire := convert.ResponseItem{
		Type:   "function_call_output",
		CallID: "call_1",
		Output: json.RawMessage(`[{"type":"output_text","text":"part one"},{"type":"image","image_url":"https://example.com/x.png"}]`),
	}

	items, err := convert.FromResponses([]convert.ResponseItem{wire})
	if err != nil {
		t.Fatalf("FromResponses() error = %v", err)
	}
	result := items[0].(*conversation.FunctionCallResult)
	if len(result.OutputParts) != 2 {
		t.Fatalf("OutputParts has %d parts, want 2", len(result.OutputParts))
	}
	if _, ok := result.OutputParts[0].(*conversation.TextPart); !ok {
		t.Errorf("first part is %T, want *TextPart", result.OutputParts[0])
	}
	if _, ok := result.OutputParts[1].(*conversation.ImagePart); !ok {
		t.Errorf("second part is %T, want *ImagePart", result.OutputParts[1])
	}
}

func TestFromResponses_FunctionOutputRejectsUnknownBlock(t *testing.T) {
	wire := convert.ResponseItem{
		Type:   "function_call_output",
		CallID: "call_1",
		Output: json.RawMessage(`[{"type":"audio"}]`),
	}
	_, err := convert.FromResponses([]convert.ResponseItem{wire})
	var target *convert.UnsupportedContentError
	if !errors.As(err, &target) {
		t.Fatalf("error = %v, want UnsupportedContentError", err)
	}
}

func TestRoundTrip_ActionCalls(t *testing.T) {
	items := []conversation.Item{
		&conversation.ShellCall{ID: "sh_1", CallID: "c1", Status: "in_progress", Commands: []string{"ls", "pwd"}},
		&conversation.ShellCallResult{ID: "so_1", CallID: "c1", Output: map[string]any{"stdout": "ok"}},
		&conversation.ComputerUseCall{ID: "cc_1", CallID: "c2", Action: map[string]any{"type": "click"}},
		&conversation.ApplyPatchCall{ID: "ap_1", CallID: "c3", Operation: map[string]any{"type": "update_file", "path": "main.go"}},
		&conversation.ApplyPatchResult{ID: "ao_1", CallID: "c3", Status: "completed", Output: "patched"},
	}

	wire, err := convert.ToResponses(items)
	if err != nil {
		t.Fatalf("ToResponses() error = %v", err)
	}
	back, err := convert.FromResponses(wire)
	if err != nil {
		t.Fatalf("FromResponses() error = %v", err)
	}

	shell := back[0].(*conversation.ShellCall)
	if len(shell.Commands) != 2 || shell.Commands[1] != "pwd" {
		t.Errorf("shell commands changed: %v", shell.Commands)
	}
	shellOut := back[1].(*conversation.ShellCallResult)
	if shellOut.Output["stdout"] != "ok" {
		t.Errorf("shell output changed: %v", shellOut.Output)
	}
	computer := back[2].(*conversation.ComputerUseCall)
	if computer.Action["type"] != "click" {
		t.Errorf("computer action changed: %v", computer.Action)
	}
	patch := back[3].(*conversation.ApplyPatchCall)
	if patch.Operation["path"] != "main.go" {
		t.Errorf("patch operation changed: %v", patch.Operation)
	}
	patchOut := back[4].(*conversation.ApplyPatchResult)
	if patchOut.Output != "patched" {
		t.Errorf("patch output changed: %q", patchOut.Output)
	}
}

func TestRoundTrip_Reasoning(t *testing.T) {
	items := []conversation.Item{
		&conversation.Reasoning{ID: "r_1", RawContent: "let me think"},
	}
	wire, err := convert.ToResponses(items)
	if err != nil {
		t.Fatalf("ToResponses() error = %v", err)
	}
	if wire[0].Type != "reasoning" || wire[0].Content[0].Type != "reasoning_text" {
		t.Errorf("reasoning mapped incorrectly: %+v", wire[0])
	}

	back, err := convert.FromResponses(wire)
	if err != nil {
		t.Fatalf("FromResponses() error = %v", err)
	}
	if got := back[0].(*conversation.Reasoning).RawContent; got != "let me think" {
		t.Errorf("reasoning content changed: %q", got)
	}
}
