package convert

import (
	"encoding/json"
	"strings"

	"github.com/janhq/sessions/conversation"
)

const formatResponses = "responses"

// ===============================================
// Wire Format A (responses-style)
// ===============================================

// ResponseItem is one entry of the structured, item-per-entry wire format.
// Unrecognized payloads survive round trips verbatim through Extra.
type ResponseItem struct {
	Type      string            `json:"type,omitempty"`
	ID        string            `json:"id,omitempty"`
	Role      string            `json:"role,omitempty"`
	Status    string            `json:"status,omitempty"`
	Content   []ResponseContent `json:"content,omitempty"`
	CallID    string            `json:"call_id,omitempty"`
	Name      string            `json:"name,omitempty"`
	Arguments string            `json:"arguments,omitempty"`
	Output    json.RawMessage   `json:"output,omitempty"`
	Queries   []string          `json:"queries,omitempty"`
	Action    map[string]any    `json:"action,omitempty"`
	Operation map[string]any    `json:"operation,omitempty"`
	Commands  []string          `json:"commands,omitempty"`

	ProviderData map[string]any `json:"provider_data,omitempty"`

	// Extra carries wire fields outside the typed set. On unmarshal it holds
	// the complete raw payload; on marshal its entries are merged into the
	// output without overriding typed fields.
	Extra map[string]any `json:"-"`
}

// ResponseContent is one tagged content block of a wire item.
type ResponseContent struct {
	Type       string         `json:"type"`
	Text       string         `json:"text,omitempty"`
	Refusal    string         `json:"refusal,omitempty"`
	ImageURL   string         `json:"image_url,omitempty"`
	FileID     string         `json:"file_id,omitempty"`
	FileData   string         `json:"file_data,omitempty"`
	FileURL    string         `json:"file_url,omitempty"`
	Filename   string         `json:"filename,omitempty"`
	Detail     string         `json:"detail,omitempty"`
	InputAudio *WireAudioData `json:"input_audio,omitempty"`
	Audio      *WireAudio     `json:"audio,omitempty"`
}

// WireAudioData is inline audio input (data + encoding format).
type WireAudioData struct {
	Data   string `json:"data"`
	Format string `json:"format,omitempty"`
}

// WireAudio is audio output metadata.
type WireAudio struct {
	ID         string `json:"id,omitempty"`
	Data       string `json:"data,omitempty"`
	Format     string `json:"format,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// MarshalJSON merges Extra into the typed representation.
func (ri ResponseItem) MarshalJSON() ([]byte, error) {
	type alias ResponseItem
	base, err := json.Marshal(alias(ri))
	if err != nil {
		return nil, err
	}
	if len(ri.Extra) == 0 {
		return base, nil
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range ri.Extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the typed fields and preserves the raw payload.
func (ri *ResponseItem) UnmarshalJSON(data []byte) error {
	type alias ResponseItem
	aux := (*alias)(ri)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ri.Extra = raw
	return nil
}

// ===============================================
// Items -> Wire A
// ===============================================

// ToResponses maps each conversation item to its structured wire form,
// near 1:1. Unknown items are emitted verbatim.
func ToResponses(items []conversation.Item) ([]ResponseItem, error) {
	out := make([]ResponseItem, 0, len(items))
	for _, item := range items {
		wire, err := itemToResponse(item)
		if err != nil {
			return nil, err
		}
		out = append(out, wire)
	}
	return out, nil
}

func itemToResponse(item conversation.Item) (ResponseItem, error) {
	switch v := item.(type) {
	case *conversation.UserMessage:
		content, err := inputContentToWire(v.Content)
		if err != nil {
			return ResponseItem{}, err
		}
		return ResponseItem{
			Type:         "message",
			ID:           v.ID,
			Role:         "user",
			Content:      content,
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.SystemMessage:
		return ResponseItem{
			Type:         "message",
			ID:           v.ID,
			Role:         "system",
			Content:      []ResponseContent{{Type: "input_text", Text: v.Text}},
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.AssistantMessage:
		content, err := outputContentToWire(v.Content)
		if err != nil {
			return ResponseItem{}, err
		}
		return ResponseItem{
			Type:         "message",
			ID:           v.ID,
			Role:         "assistant",
			Status:       v.Status,
			Content:      content,
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.Reasoning:
		return ResponseItem{
			Type:         "reasoning",
			ID:           v.ID,
			Content:      []ResponseContent{{Type: "reasoning_text", Text: v.RawContent}},
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.HostedToolCall:
		return ResponseItem{
			Type:         v.Name,
			ID:           v.ID,
			Status:       v.Status,
			Queries:      v.Queries,
			Extra:        v.Payload,
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.FunctionCall:
		return ResponseItem{
			Type:         "function_call",
			ID:           v.ID,
			CallID:       v.CallID,
			Name:         v.Name,
			Arguments:    v.Arguments,
			Status:       v.Status,
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.FunctionCallResult:
		output, err := functionOutputToWire(v)
		if err != nil {
			return ResponseItem{}, err
		}
		return ResponseItem{
			Type:         "function_call_output",
			ID:           v.ID,
			CallID:       v.CallID,
			Output:       output,
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.ComputerUseCall:
		return ResponseItem{
			Type:         "computer_call",
			ID:           v.ID,
			CallID:       v.CallID,
			Status:       v.Status,
			Action:       v.Action,
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.ComputerUseResult:
		output, err := json.Marshal(v.Output)
		if err != nil {
			return ResponseItem{}, err
		}
		return ResponseItem{
			Type:         "computer_call_output",
			ID:           v.ID,
			CallID:       v.CallID,
			Output:       output,
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.ShellCall:
		return ResponseItem{
			Type:         "shell_call",
			ID:           v.ID,
			CallID:       v.CallID,
			Status:       v.Status,
			Commands:     v.Commands,
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.ShellCallResult:
		output, err := json.Marshal(v.Output)
		if err != nil {
			return ResponseItem{}, err
		}
		return ResponseItem{
			Type:         "shell_call_output",
			ID:           v.ID,
			CallID:       v.CallID,
			Output:       output,
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.ApplyPatchCall:
		return ResponseItem{
			Type:         "apply_patch_call",
			ID:           v.ID,
			CallID:       v.CallID,
			Status:       v.Status,
			Operation:    v.Operation,
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.ApplyPatchResult:
		output, err := json.Marshal(v.Output)
		if err != nil {
			return ResponseItem{}, err
		}
		return ResponseItem{
			Type:         "apply_patch_call_output",
			ID:           v.ID,
			CallID:       v.CallID,
			Status:       v.Status,
			Output:       output,
			ProviderData: v.ProviderData,
		}, nil

	case *conversation.UnknownItem:
		return ResponseItem{Extra: v.ProviderData}, nil

	default:
		return ResponseItem{}, &UnsupportedItemError{ItemType: item.Kind(), Format: formatResponses}
	}
}

func inputContentToWire(parts []conversation.ContentPart) ([]ResponseContent, error) {
	out := make([]ResponseContent, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case *conversation.TextPart:
			out = append(out, ResponseContent{Type: "input_text", Text: p.Text})
		case *conversation.ImagePart:
			if p.URL == "" && p.FileID == "" {
				return nil, &MissingImageSourceError{}
			}
			out = append(out, ResponseContent{
				Type:     "input_image",
				ImageURL: p.URL,
				FileID:   p.FileID,
				Detail:   p.Detail,
			})
		case *conversation.FilePart:
			if p.Data == "" && p.URL == "" && p.FileID == "" {
				return nil, &MissingFileSourceError{}
			}
			out = append(out, ResponseContent{
				Type:     "input_file",
				FileData: p.Data,
				FileURL:  p.URL,
				FileID:   p.FileID,
				Filename: p.Filename,
			})
		case *conversation.AudioPart:
			out = append(out, ResponseContent{
				Type:       "input_audio",
				InputAudio: &WireAudioData{Data: p.Data, Format: p.Format},
			})
		default:
			return nil, &UnsupportedContentError{PartType: part.PartType(), Format: formatResponses}
		}
	}
	return out, nil
}

func outputContentToWire(parts []conversation.ContentPart) ([]ResponseContent, error) {
	out := make([]ResponseContent, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case *conversation.TextPart:
			out = append(out, ResponseContent{Type: "output_text", Text: p.Text})
		case *conversation.RefusalPart:
			out = append(out, ResponseContent{Type: "refusal", Refusal: p.Refusal})
		case *conversation.AudioPart:
			out = append(out, ResponseContent{
				Type: "audio",
				Audio: &WireAudio{
					ID:         p.ID,
					Data:       p.Data,
					Format:     p.Format,
					Transcript: p.Transcript,
				},
			})
		case *conversation.ImagePart:
			if p.URL == "" && p.FileID == "" {
				return nil, &MissingImageSourceError{}
			}
			out = append(out, ResponseContent{
				Type:     "image",
				ImageURL: p.URL,
				FileID:   p.FileID,
				Detail:   p.Detail,
			})
		default:
			return nil, &UnsupportedContentError{PartType: part.PartType(), Format: formatResponses}
		}
	}
	return out, nil
}

func functionOutputToWire(result *conversation.FunctionCallResult) (json.RawMessage, error) {
	if result.OutputParts == nil {
		return json.Marshal(result.Output)
	}
	blocks := make([]ResponseContent, 0, len(result.OutputParts))
	for _, part := range result.OutputParts {
		p, ok := part.(*conversation.TextPart)
		if !ok {
			return nil, &UnsupportedContentError{PartType: part.PartType(), Format: formatResponses}
		}
		blocks = append(blocks, ResponseContent{Type: "output_text", Text: p.Text})
	}
	return json.Marshal(blocks)
}

// ===============================================
// Wire A -> Items
// ===============================================

// hostedToolTypes are provider-executed tool call kinds the wire format can
// carry besides file search.
var hostedToolTypes = map[string]struct{}{
	"file_search_call":      {},
	"web_search_call":       {},
	"code_interpreter_call": {},
	"image_generation_call": {},
	"mcp_call":              {},
	"mcp_list_tools":        {},
}

// knownInputContentTypes is the closed set of tags that mark user-authored
// input content. Any tag outside this set — including future tags that merely
// share the input_ prefix — is never classified as provider output either.
var knownInputContentTypes = map[string]struct{}{
	"input_text":  {},
	"input_image": {},
	"input_file":  {},
	"input_audio": {},
}

var knownOutputContentTypes = map[string]struct{}{
	"output_text": {},
	"refusal":     {},
	"audio":       {},
	"image":       {},
}

// FromResponses reconstructs conversation items from the structured wire
// format. Items of unrecognized type are preserved opaquely as UnknownItem.
func FromResponses(items []ResponseItem) ([]conversation.Item, error) {
	out := make([]conversation.Item, 0, len(items))
	for _, wire := range items {
		item, err := responseToItem(wire)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func responseToItem(wire ResponseItem) (conversation.Item, error) {
	switch wire.Type {
	case "message":
		return messageToItem(wire)

	case "reasoning":
		var texts []string
		for _, block := range wire.Content {
			if block.Type == "reasoning_text" || block.Type == "summary_text" {
				texts = append(texts, block.Text)
			}
		}
		return &conversation.Reasoning{
			ID:           wire.ID,
			RawContent:   strings.Join(texts, "\n"),
			ProviderData: wire.ProviderData,
		}, nil

	case "function_call":
		return &conversation.FunctionCall{
			ID:           wire.ID,
			CallID:       wire.CallID,
			Name:         wire.Name,
			Arguments:    wire.Arguments,
			Status:       wire.Status,
			ProviderData: wire.ProviderData,
		}, nil

	case "function_call_output":
		return functionOutputFromWire(wire)

	case "computer_call":
		return &conversation.ComputerUseCall{
			ID:           wire.ID,
			CallID:       wire.CallID,
			Status:       wire.Status,
			Action:       wire.Action,
			ProviderData: wire.ProviderData,
		}, nil

	case "computer_call_output":
		var output map[string]any
		if len(wire.Output) > 0 {
			if err := json.Unmarshal(wire.Output, &output); err != nil {
				return nil, err
			}
		}
		return &conversation.ComputerUseResult{
			ID:           wire.ID,
			CallID:       wire.CallID,
			Output:       output,
			ProviderData: wire.ProviderData,
		}, nil

	case "shell_call":
		return &conversation.ShellCall{
			ID:           wire.ID,
			CallID:       wire.CallID,
			Status:       wire.Status,
			Commands:     wire.Commands,
			ProviderData: wire.ProviderData,
		}, nil

	case "shell_call_output":
		var output map[string]any
		if len(wire.Output) > 0 {
			if err := json.Unmarshal(wire.Output, &output); err != nil {
				return nil, err
			}
		}
		return &conversation.ShellCallResult{
			ID:           wire.ID,
			CallID:       wire.CallID,
			Output:       output,
			ProviderData: wire.ProviderData,
		}, nil

	case "apply_patch_call":
		return &conversation.ApplyPatchCall{
			ID:           wire.ID,
			CallID:       wire.CallID,
			Status:       wire.Status,
			Operation:    wire.Operation,
			ProviderData: wire.ProviderData,
		}, nil

	case "apply_patch_call_output":
		var output string
		if len(wire.Output) > 0 {
			if err := json.Unmarshal(wire.Output, &output); err != nil {
				return nil, err
			}
		}
		return &conversation.ApplyPatchResult{
			ID:           wire.ID,
			CallID:       wire.CallID,
			Status:       wire.Status,
			Output:       output,
			ProviderData: wire.ProviderData,
		}, nil
	}

	if _, hosted := hostedToolTypes[wire.Type]; hosted {
		return &conversation.HostedToolCall{
			ID:           wire.ID,
			Name:         wire.Type,
			Status:       wire.Status,
			Queries:      wire.Queries,
			Payload:      hostedPayload(wire.Extra),
			ProviderData: wire.ProviderData,
		}, nil
	}

	return &conversation.UnknownItem{ProviderData: wire.Extra}, nil
}

// hostedPayload strips the fields the typed representation already carries.
func hostedPayload(raw map[string]any) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	payload := make(map[string]any)
	for k, v := range raw {
		switch k {
		case "type", "id", "status", "queries", "provider_data":
		default:
			payload[k] = v
		}
	}
	if len(payload) == 0 {
		return nil
	}
	return payload
}

func messageToItem(wire ResponseItem) (conversation.Item, error) {
	role := wire.Role
	if role == "" {
		// Untagged message: fall back to the content-shape heuristic.
		if isOutputContent(wire.Content) {
			role = "assistant"
		} else {
			role = "user"
		}
	}

	switch role {
	case "system", "developer":
		var texts []string
		for _, block := range wire.Content {
			if block.Type == "input_text" || block.Type == "text" {
				texts = append(texts, block.Text)
			}
		}
		return &conversation.SystemMessage{
			ID:           wire.ID,
			Text:         strings.Join(texts, "\n"),
			ProviderData: wire.ProviderData,
		}, nil

	case "assistant":
		parts, err := outputContentFromWire(wire.Content)
		if err != nil {
			return nil, err
		}
		return &conversation.AssistantMessage{
			ID:           wire.ID,
			Status:       wire.Status,
			Content:      parts,
			ProviderData: wire.ProviderData,
		}, nil

	default:
		parts, err := inputContentFromWire(wire.Content)
		if err != nil {
			return nil, err
		}
		return &conversation.UserMessage{
			ID:           wire.ID,
			Content:      parts,
			ProviderData: wire.ProviderData,
		}, nil
	}
}

// isOutputContent classifies an untagged content list. The assumption is
// closed-world: content counts as provider output only when every block is a
// recognized output shape. Everything else — known input tags, and any
// unrecognized tag regardless of prefix — is treated as not-output.
func isOutputContent(blocks []ResponseContent) bool {
	if len(blocks) == 0 {
		return false
	}
	for _, block := range blocks {
		if _, ok := knownOutputContentTypes[block.Type]; !ok {
			return false
		}
	}
	return true
}

func inputContentFromWire(blocks []ResponseContent) ([]conversation.ContentPart, error) {
	parts := make([]conversation.ContentPart, 0, len(blocks))
	for _, block := range blocks {
		switch block.Type {
		case "input_text", "text":
			parts = append(parts, &conversation.TextPart{Text: block.Text})
		case "input_image":
			parts = append(parts, &conversation.ImagePart{
				URL:    block.ImageURL,
				FileID: block.FileID,
				Detail: block.Detail,
			})
		case "input_file":
			parts = append(parts, &conversation.FilePart{
				Data:     block.FileData,
				URL:      block.FileURL,
				FileID:   block.FileID,
				Filename: block.Filename,
			})
		case "input_audio":
			part := &conversation.AudioPart{}
			if block.InputAudio != nil {
				part.Data = block.InputAudio.Data
				part.Format = block.InputAudio.Format
			}
			parts = append(parts, part)
		default:
			return nil, &UnsupportedContentError{PartType: block.Type, Format: formatResponses}
		}
	}
	return parts, nil
}

func outputContentFromWire(blocks []ResponseContent) ([]conversation.ContentPart, error) {
	parts := make([]conversation.ContentPart, 0, len(blocks))
	for _, block := range blocks {
		switch block.Type {
		case "output_text", "text":
			parts = append(parts, &conversation.TextPart{Text: block.Text})
		case "refusal":
			parts = append(parts, &conversation.RefusalPart{Refusal: block.Refusal})
		case "audio":
			part := &conversation.AudioPart{}
			if block.Audio != nil {
				part.ID = block.Audio.ID
				part.Data = block.Audio.Data
				part.Format = block.Audio.Format
				part.Transcript = block.Audio.Transcript
			}
			parts = append(parts, part)
		case "image":
			parts = append(parts, &conversation.ImagePart{
				URL:    block.ImageURL,
				FileID: block.FileID,
				Detail: block.Detail,
			})
		default:
			return nil, &UnsupportedContentError{PartType: block.Type, Format: formatResponses}
		}
	}
	return parts, nil
}

func functionOutputFromWire(wire ResponseItem) (conversation.Item, error) {
	result := &conversation.FunctionCallResult{
		ID:           wire.ID,
		CallID:       wire.CallID,
		ProviderData: wire.ProviderData,
	}
	if len(wire.Output) == 0 {
		return result, nil
	}

	var text string
	if err := json.Unmarshal(wire.Output, &text); err == nil {
		result.Output = text
		return result, nil
	}

	var blocks []ResponseContent
	if err := json.Unmarshal(wire.Output, &blocks); err != nil {
		return nil, err
	}
	parts := make([]conversation.ContentPart, 0, len(blocks))
	for _, block := range blocks {
		switch block.Type {
		case "output_text", "text", "input_text":
			parts = append(parts, &conversation.TextPart{Text: block.Text})
		case "input_image", "image":
			parts = append(parts, &conversation.ImagePart{
				URL:    block.ImageURL,
				FileID: block.FileID,
				Detail: block.Detail,
			})
		default:
			return nil, &UnsupportedContentError{PartType: block.Type, Format: formatResponses}
		}
	}
	result.OutputParts = parts
	return result, nil
}
