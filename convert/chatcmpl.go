package convert

import (
	"encoding/json"
	"strings"

	"github.com/janhq/sessions/conversation"
)

const formatChatCompletions = "chat_completions"

// ===============================================
// Wire Format B (chat-completions-style)
// ===============================================

// ChatMessage is one entry of the flat, message-per-entry wire format.
// Content is either a plain string or a []ChatContentPart. Uninterpreted
// payloads survive round trips verbatim through Extra.
type ChatMessage struct {
	Role       string         `json:"role,omitempty"`
	Content    any            `json:"content,omitempty"`
	Refusal    string         `json:"refusal,omitempty"`
	Audio      *WireAudio     `json:"audio,omitempty"`
	ToolCalls  []ChatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`

	// ReasoningContent carries model reasoning alongside the visible reply,
	// the way reasoning-capable chat backends extend the message schema.
	ReasoningContent string `json:"reasoning_content,omitempty"`

	ProviderData map[string]any `json:"provider_data,omitempty"`

	// Extra carries wire fields outside the typed set. On unmarshal it holds
	// the complete raw payload; on marshal its entries are merged into the
	// output without overriding typed fields.
	Extra map[string]any `json:"-"`
}

// MarshalJSON merges Extra into the typed representation.
func (cm ChatMessage) MarshalJSON() ([]byte, error) {
	type alias ChatMessage
	base, err := json.Marshal(alias(cm))
	if err != nil {
		return nil, err
	}
	if len(cm.Extra) == 0 {
		return base, nil
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range cm.Extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the typed fields and preserves the raw payload.
func (cm *ChatMessage) UnmarshalJSON(data []byte) error {
	type alias ChatMessage
	aux := (*alias)(cm)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cm.Extra = raw
	return nil
}

// ChatToolCall is a tool invocation attached to an assistant message.
type ChatToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function ChatFunction `json:"function"`
}

// ChatFunction names a function and carries its raw JSON arguments.
type ChatFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatContentPart is one block of structured message content.
type ChatContentPart struct {
	Type       string         `json:"type"`
	Text       string         `json:"text,omitempty"`
	ImageURL   *ChatImageURL  `json:"image_url,omitempty"`
	File       *ChatFile      `json:"file,omitempty"`
	InputAudio *WireAudioData `json:"input_audio,omitempty"`
}

// ChatImageURL points at image content by URL.
type ChatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// ChatFile references file content inline or by id.
type ChatFile struct {
	FileData string `json:"file_data,omitempty"`
	FileID   string `json:"file_id,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// hostedCallArguments is the JSON encoding of a hosted tool call when it is
// squeezed into a function-shaped tool call.
type hostedCallArguments struct {
	Queries []string       `json:"queries,omitempty"`
	Status  string         `json:"status,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ===============================================
// Items -> Wire B
// ===============================================

// ToChatCompletions flattens conversation items into chat messages. Adjacent
// assistant-side items (reply text, reasoning, tool calls) are folded into a
// single pending assistant message, which is flushed whenever a non-assistant
// item arrives and once more at the end.
func ToChatCompletions(items []conversation.Item) ([]ChatMessage, error) {
	var out []ChatMessage
	var pending *ChatMessage

	flush := func() {
		if pending != nil {
			out = append(out, *pending)
			pending = nil
		}
	}
	ensurePending := func() *ChatMessage {
		if pending == nil {
			pending = &ChatMessage{Role: "assistant"}
		}
		return pending
	}

	for _, item := range items {
		switch v := item.(type) {
		case *conversation.UserMessage:
			flush()
			content, err := userContentToChat(v.Content)
			if err != nil {
				return nil, err
			}
			out = append(out, ChatMessage{Role: "user", Content: content, ProviderData: v.ProviderData})

		case *conversation.SystemMessage:
			flush()
			out = append(out, ChatMessage{Role: "system", Content: v.Text, ProviderData: v.ProviderData})

		case *conversation.AssistantMessage:
			msg := ensurePending()
			if msg.ProviderData == nil {
				msg.ProviderData = v.ProviderData
			}
			if err := mergeAssistantContent(msg, v.Content); err != nil {
				return nil, err
			}

		case *conversation.Reasoning:
			msg := ensurePending()
			if msg.ReasoningContent == "" {
				msg.ReasoningContent = v.RawContent
			} else {
				msg.ReasoningContent += "\n" + v.RawContent
			}

		case *conversation.FunctionCall:
			msg := ensurePending()
			msg.ToolCalls = append(msg.ToolCalls, ChatToolCall{
				ID:   v.CallID,
				Type: "function",
				Function: ChatFunction{
					Name:      v.Name,
					Arguments: v.Arguments,
				},
			})

		case *conversation.HostedToolCall:
			// Only file search survives the flat format; other hosted tools
			// have no message-level representation.
			if v.Name != "file_search_call" {
				return nil, &UnsupportedToolError{ToolName: v.Name}
			}
			args, err := json.Marshal(hostedCallArguments{
				Queries: v.Queries,
				Status:  v.Status,
				Payload: v.Payload,
			})
			if err != nil {
				return nil, err
			}
			msg := ensurePending()
			msg.ToolCalls = append(msg.ToolCalls, ChatToolCall{
				ID:   v.ID,
				Type: "function",
				Function: ChatFunction{
					Name:      "file_search_call",
					Arguments: string(args),
				},
			})

		case *conversation.FunctionCallResult:
			flush()
			text, err := functionResultText(v)
			if err != nil {
				return nil, err
			}
			out = append(out, ChatMessage{
				Role:         "tool",
				Content:      text,
				ToolCallID:   v.CallID,
				ProviderData: v.ProviderData,
			})

		case *conversation.UnknownItem:
			// Opaque payloads pass through verbatim as their own wire message.
			flush()
			out = append(out, ChatMessage{Extra: v.ProviderData})

		default:
			return nil, &UnsupportedItemError{ItemType: item.Kind(), Format: formatChatCompletions}
		}
	}

	flush()
	return out, nil
}

func userContentToChat(parts []conversation.ContentPart) (any, error) {
	// A single text part collapses to a plain string.
	if len(parts) == 1 {
		if p, ok := parts[0].(*conversation.TextPart); ok {
			return p.Text, nil
		}
	}

	blocks := make([]ChatContentPart, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case *conversation.TextPart:
			blocks = append(blocks, ChatContentPart{Type: "text", Text: p.Text})
		case *conversation.ImagePart:
			if p.URL == "" {
				if p.FileID == "" {
					return nil, &MissingImageSourceError{}
				}
				// A file-id reference is a valid source, but this format can
				// only carry images by URL.
				return nil, &UnsupportedContentError{PartType: p.PartType(), Format: formatChatCompletions}
			}
			blocks = append(blocks, ChatContentPart{
				Type:     "image_url",
				ImageURL: &ChatImageURL{URL: p.URL, Detail: p.Detail},
			})
		case *conversation.FilePart:
			if p.Data == "" && p.FileID == "" {
				return nil, &MissingFileSourceError{}
			}
			blocks = append(blocks, ChatContentPart{
				Type: "file",
				File: &ChatFile{
					FileData: p.Data,
					FileID:   p.FileID,
					Filename: p.Filename,
				},
			})
		case *conversation.AudioPart:
			blocks = append(blocks, ChatContentPart{
				Type:       "input_audio",
				InputAudio: &WireAudioData{Data: p.Data, Format: p.Format},
			})
		default:
			return nil, &UnsupportedContentError{PartType: part.PartType(), Format: formatChatCompletions}
		}
	}
	return blocks, nil
}

func mergeAssistantContent(msg *ChatMessage, parts []conversation.ContentPart) error {
	var texts []string
	if existing, ok := msg.Content.(string); ok && existing != "" {
		texts = append(texts, existing)
	}
	for _, part := range parts {
		switch p := part.(type) {
		case *conversation.TextPart:
			texts = append(texts, p.Text)
		case *conversation.RefusalPart:
			msg.Refusal = p.Refusal
		case *conversation.AudioPart:
			// First audio wins; the flat format has one audio slot.
			if msg.Audio == nil {
				msg.Audio = &WireAudio{
					ID:         p.ID,
					Data:       p.Data,
					Format:     p.Format,
					Transcript: p.Transcript,
				}
			}
		default:
			return &UnsupportedContentError{PartType: part.PartType(), Format: formatChatCompletions}
		}
	}
	if len(texts) > 0 {
		msg.Content = strings.Join(texts, "")
	}
	return nil
}

func functionResultText(result *conversation.FunctionCallResult) (string, error) {
	if result.OutputParts == nil {
		return result.Output, nil
	}
	var texts []string
	for _, part := range result.OutputParts {
		p, ok := part.(*conversation.TextPart)
		if !ok {
			return "", &UnsupportedOutputError{CallID: result.CallID, PartType: part.PartType()}
		}
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, ""), nil
}

// ===============================================
// Wire B -> Items
// ===============================================

// FromChatCompletions expands chat messages back into conversation items.
// An assistant message may fan out into several items: reasoning first, then
// the visible message, then one item per tool call.
func FromChatCompletions(messages []ChatMessage) ([]conversation.Item, error) {
	var out []conversation.Item
	for _, msg := range messages {
		switch msg.Role {
		case "system", "developer":
			text, err := contentAsText(msg.Content)
			if err != nil {
				return nil, err
			}
			out = append(out, &conversation.SystemMessage{Text: text, ProviderData: msg.ProviderData})

		case "user":
			parts, err := userContentFromChat(msg.Content)
			if err != nil {
				return nil, err
			}
			out = append(out, &conversation.UserMessage{Content: parts, ProviderData: msg.ProviderData})

		case "assistant":
			items, err := assistantMessageToItems(msg)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)

		case "tool":
			text, err := contentAsText(msg.Content)
			if err != nil {
				return nil, err
			}
			out = append(out, &conversation.FunctionCallResult{
				CallID:       msg.ToolCallID,
				Output:       text,
				ProviderData: msg.ProviderData,
			})

		case "":
			// A message without a role is an opaque payload; keep it verbatim.
			out = append(out, &conversation.UnknownItem{ProviderData: msg.Extra})

		default:
			return nil, &UnsupportedItemError{
				ItemType: conversation.ItemType(msg.Role),
				Format:   formatChatCompletions,
			}
		}
	}
	return out, nil
}

func assistantMessageToItems(msg ChatMessage) ([]conversation.Item, error) {
	var items []conversation.Item

	if msg.ReasoningContent != "" {
		items = append(items, &conversation.Reasoning{RawContent: msg.ReasoningContent})
	}

	var parts []conversation.ContentPart
	switch content := msg.Content.(type) {
	case nil:
	case string:
		if content != "" {
			parts = append(parts, &conversation.TextPart{Text: content})
		}
	default:
		blocks, err := normalizeContentBlocks(content)
		if err != nil {
			return nil, err
		}
		for _, block := range blocks {
			if block.Type != "text" {
				return nil, &UnsupportedContentError{PartType: block.Type, Format: formatChatCompletions}
			}
			parts = append(parts, &conversation.TextPart{Text: block.Text})
		}
	}
	if msg.Refusal != "" {
		parts = append(parts, &conversation.RefusalPart{Refusal: msg.Refusal})
	}
	if msg.Audio != nil {
		parts = append(parts, &conversation.AudioPart{
			ID:         msg.Audio.ID,
			Data:       msg.Audio.Data,
			Format:     msg.Audio.Format,
			Transcript: msg.Audio.Transcript,
		})
	}
	if len(parts) > 0 || len(msg.ToolCalls) == 0 {
		items = append(items, &conversation.AssistantMessage{Content: parts, ProviderData: msg.ProviderData})
	}

	for _, call := range msg.ToolCalls {
		if call.Function.Name == "file_search_call" {
			var args hostedCallArguments
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return nil, err
			}
			items = append(items, &conversation.HostedToolCall{
				ID:      call.ID,
				Name:    "file_search_call",
				Status:  args.Status,
				Queries: args.Queries,
				Payload: args.Payload,
			})
			continue
		}
		items = append(items, &conversation.FunctionCall{
			CallID:    call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	return items, nil
}

func contentAsText(content any) (string, error) {
	switch c := content.(type) {
	case nil:
		return "", nil
	case string:
		return c, nil
	default:
		blocks, err := normalizeContentBlocks(c)
		if err != nil {
			return "", err
		}
		var texts []string
		for _, block := range blocks {
			if block.Type != "text" {
				return "", &UnsupportedContentError{PartType: block.Type, Format: formatChatCompletions}
			}
			texts = append(texts, block.Text)
		}
		return strings.Join(texts, ""), nil
	}
}

func userContentFromChat(content any) ([]conversation.ContentPart, error) {
	switch c := content.(type) {
	case nil:
		return nil, nil
	case string:
		return conversation.Text(c), nil
	default:
		blocks, err := normalizeContentBlocks(c)
		if err != nil {
			return nil, err
		}
		parts := make([]conversation.ContentPart, 0, len(blocks))
		for _, block := range blocks {
			switch block.Type {
			case "text":
				parts = append(parts, &conversation.TextPart{Text: block.Text})
			case "image_url":
				part := &conversation.ImagePart{}
				if block.ImageURL != nil {
					part.URL = block.ImageURL.URL
					part.Detail = block.ImageURL.Detail
				}
				parts = append(parts, part)
			case "file":
				part := &conversation.FilePart{}
				if block.File != nil {
					part.Data = block.File.FileData
					part.FileID = block.File.FileID
					part.Filename = block.File.Filename
				}
				parts = append(parts, part)
			case "input_audio":
				part := &conversation.AudioPart{}
				if block.InputAudio != nil {
					part.Data = block.InputAudio.Data
					part.Format = block.InputAudio.Format
				}
				parts = append(parts, part)
			default:
				return nil, &UnsupportedContentError{PartType: block.Type, Format: formatChatCompletions}
			}
		}
		return parts, nil
	}
}

// normalizeContentBlocks coerces decoded JSON ([]any of maps) or typed slices
// into []ChatContentPart.
func normalizeContentBlocks(content any) ([]ChatContentPart, error) {
	if blocks, ok := content.([]ChatContentPart); ok {
		return blocks, nil
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	var blocks []ChatContentPart
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}
