package conversation

// ===============================================
// Item Types
// ===============================================

// ItemType identifies the kind of conversation item on the wire.
type ItemType string

const (
	ItemTypeMessage          ItemType = "message"
	ItemTypeReasoning        ItemType = "reasoning"
	ItemTypeFunctionCall     ItemType = "function_call"
	ItemTypeFunctionCallOut  ItemType = "function_call_output"
	ItemTypeFileSearch       ItemType = "file_search_call"
	ItemTypeComputerCall     ItemType = "computer_call"
	ItemTypeComputerCallOut  ItemType = "computer_call_output"
	ItemTypeShellCall        ItemType = "shell_call"
	ItemTypeShellOutput      ItemType = "shell_call_output"
	ItemTypeApplyPatchCall   ItemType = "apply_patch_call"
	ItemTypeApplyPatchOutput ItemType = "apply_patch_call_output"
	ItemTypeUnknown          ItemType = "unknown"
)

// ItemRole indicates who authored a message item.
type ItemRole string

const (
	RoleSystem    ItemRole = "system"
	RoleUser      ItemRole = "user"
	RoleAssistant ItemRole = "assistant"
	RoleTool      ItemRole = "tool"
)

// Item is one entry in the ordered session history. Concrete variants are the
// message kinds, tool calls and their outputs, reasoning traces, and an opaque
// catch-all for payloads the library does not interpret.
//
// A type switch over the concrete variants is the intended way to consume an
// Item; the interface methods only expose what every variant shares.
type Item interface {
	// Kind returns the wire-level item type.
	Kind() ItemType
	// ItemID returns the backend-assigned identifier, or "" for items that
	// have not been persisted yet. The identifier is never mutated by the
	// library once assigned.
	ItemID() string
	// Clone returns a deep, independent copy of the item. Mutating the clone
	// (including nested content parts and provider data) never affects the
	// original.
	Clone() Item
}

// ===============================================
// Message Variants
// ===============================================

// UserMessage is input authored by the end user.
type UserMessage struct {
	ID           string
	Content      []ContentPart
	ProviderData map[string]any
}

func (m *UserMessage) Kind() ItemType { return ItemTypeMessage }
func (m *UserMessage) ItemID() string { return m.ID }
func (m *UserMessage) Clone() Item {
	return &UserMessage{
		ID:           m.ID,
		Content:      cloneParts(m.Content),
		ProviderData: cloneAnyMap(m.ProviderData),
	}
}

// AssistantMessage is provider output. Content is restricted to text,
// refusal, audio and image parts.
type AssistantMessage struct {
	ID           string
	Status       string
	Content      []ContentPart
	ProviderData map[string]any
}

func (m *AssistantMessage) Kind() ItemType { return ItemTypeMessage }
func (m *AssistantMessage) ItemID() string { return m.ID }
func (m *AssistantMessage) Clone() Item {
	return &AssistantMessage{
		ID:           m.ID,
		Status:       m.Status,
		Content:      cloneParts(m.Content),
		ProviderData: cloneAnyMap(m.ProviderData),
	}
}

// SystemMessage carries plain-text instructions.
type SystemMessage struct {
	ID           string
	Text         string
	ProviderData map[string]any
}

func (m *SystemMessage) Kind() ItemType { return ItemTypeMessage }
func (m *SystemMessage) ItemID() string { return m.ID }
func (m *SystemMessage) Clone() Item {
	return &SystemMessage{
		ID:           m.ID,
		Text:         m.Text,
		ProviderData: cloneAnyMap(m.ProviderData),
	}
}

// ===============================================
// Reasoning
// ===============================================

// Reasoning is an internal trace emitted by the provider. It is never sent to
// chat-completions-style backends as its own message, only attached as a side
// channel on the adjacent assistant message.
type Reasoning struct {
	ID           string
	RawContent   string
	ProviderData map[string]any
}

func (r *Reasoning) Kind() ItemType { return ItemTypeReasoning }
func (r *Reasoning) ItemID() string { return r.ID }
func (r *Reasoning) Clone() Item {
	return &Reasoning{
		ID:           r.ID,
		RawContent:   r.RawContent,
		ProviderData: cloneAnyMap(r.ProviderData),
	}
}

// ===============================================
// Tool Calls
// ===============================================

// HostedToolCall is a tool invocation executed by the provider itself, such
// as file search. Payload carries any tool-specific fields beyond the queries.
type HostedToolCall struct {
	ID           string
	Name         string
	Status       string
	Queries      []string
	Payload      map[string]any
	ProviderData map[string]any
}

func (c *HostedToolCall) Kind() ItemType { return ItemType(c.Name) }
func (c *HostedToolCall) ItemID() string { return c.ID }
func (c *HostedToolCall) Clone() Item {
	return &HostedToolCall{
		ID:           c.ID,
		Name:         c.Name,
		Status:       c.Status,
		Queries:      cloneStrings(c.Queries),
		Payload:      cloneAnyMap(c.Payload),
		ProviderData: cloneAnyMap(c.ProviderData),
	}
}

// FunctionCall is a request for the caller to invoke a function tool.
// Arguments is the serialized parameter payload, verbatim.
type FunctionCall struct {
	ID           string
	CallID       string
	Name         string
	Arguments    string
	Status       string
	ProviderData map[string]any
}

func (c *FunctionCall) Kind() ItemType { return ItemTypeFunctionCall }
func (c *FunctionCall) ItemID() string { return c.ID }
func (c *FunctionCall) Clone() Item {
	return &FunctionCall{
		ID:           c.ID,
		CallID:       c.CallID,
		Name:         c.Name,
		Arguments:    c.Arguments,
		Status:       c.Status,
		ProviderData: cloneAnyMap(c.ProviderData),
	}
}

// FunctionCallResult carries the output of a FunctionCall, matched by CallID.
// Output holds the plain-text form; OutputParts, when non-nil, holds a
// structured part list and takes precedence on conversion.
type FunctionCallResult struct {
	ID           string
	CallID       string
	Output       string
	OutputParts  []ContentPart
	ProviderData map[string]any
}

func (r *FunctionCallResult) Kind() ItemType { return ItemTypeFunctionCallOut }
func (r *FunctionCallResult) ItemID() string { return r.ID }
func (r *FunctionCallResult) Clone() Item {
	return &FunctionCallResult{
		ID:           r.ID,
		CallID:       r.CallID,
		Output:       r.Output,
		OutputParts:  cloneParts(r.OutputParts),
		ProviderData: cloneAnyMap(r.ProviderData),
	}
}

// ===============================================
// Action Calls (opaque to the flattened format)
// ===============================================

// ComputerUseCall is a computer interaction request from the provider.
type ComputerUseCall struct {
	ID           string
	CallID       string
	Status       string
	Action       map[string]any
	ProviderData map[string]any
}

func (c *ComputerUseCall) Kind() ItemType { return ItemTypeComputerCall }
func (c *ComputerUseCall) ItemID() string { return c.ID }
func (c *ComputerUseCall) Clone() Item {
	return &ComputerUseCall{
		ID:           c.ID,
		CallID:       c.CallID,
		Status:       c.Status,
		Action:       cloneAnyMap(c.Action),
		ProviderData: cloneAnyMap(c.ProviderData),
	}
}

// ComputerUseResult is the screenshot/state payload answering a ComputerUseCall.
type ComputerUseResult struct {
	ID           string
	CallID       string
	Output       map[string]any
	ProviderData map[string]any
}

func (r *ComputerUseResult) Kind() ItemType { return ItemTypeComputerCallOut }
func (r *ComputerUseResult) ItemID() string { return r.ID }
func (r *ComputerUseResult) Clone() Item {
	return &ComputerUseResult{
		ID:           r.ID,
		CallID:       r.CallID,
		Output:       cloneAnyMap(r.Output),
		ProviderData: cloneAnyMap(r.ProviderData),
	}
}

// ShellCall asks the caller to run shell commands.
type ShellCall struct {
	ID           string
	CallID       string
	Status       string
	Commands     []string
	ProviderData map[string]any
}

func (c *ShellCall) Kind() ItemType { return ItemTypeShellCall }
func (c *ShellCall) ItemID() string { return c.ID }
func (c *ShellCall) Clone() Item {
	return &ShellCall{
		ID:           c.ID,
		CallID:       c.CallID,
		Status:       c.Status,
		Commands:     cloneStrings(c.Commands),
		ProviderData: cloneAnyMap(c.ProviderData),
	}
}

// ShellCallResult carries stdout/stderr/exit data answering a ShellCall.
type ShellCallResult struct {
	ID           string
	CallID       string
	Output       map[string]any
	ProviderData map[string]any
}

func (r *ShellCallResult) Kind() ItemType { return ItemTypeShellOutput }
func (r *ShellCallResult) ItemID() string { return r.ID }
func (r *ShellCallResult) Clone() Item {
	return &ShellCallResult{
		ID:           r.ID,
		CallID:       r.CallID,
		Output:       cloneAnyMap(r.Output),
		ProviderData: cloneAnyMap(r.ProviderData),
	}
}

// ApplyPatchCall asks the caller to apply a file edit operation.
type ApplyPatchCall struct {
	ID           string
	CallID       string
	Status       string
	Operation    map[string]any
	ProviderData map[string]any
}

func (c *ApplyPatchCall) Kind() ItemType { return ItemTypeApplyPatchCall }
func (c *ApplyPatchCall) ItemID() string { return c.ID }
func (c *ApplyPatchCall) Clone() Item {
	return &ApplyPatchCall{
		ID:           c.ID,
		CallID:       c.CallID,
		Status:       c.Status,
		Operation:    cloneAnyMap(c.Operation),
		ProviderData: cloneAnyMap(c.ProviderData),
	}
}

// ApplyPatchResult reports the outcome of an ApplyPatchCall.
type ApplyPatchResult struct {
	ID           string
	CallID       string
	Status       string
	Output       string
	ProviderData map[string]any
}

func (r *ApplyPatchResult) Kind() ItemType { return ItemTypeApplyPatchOutput }
func (r *ApplyPatchResult) ItemID() string { return r.ID }
func (r *ApplyPatchResult) Clone() Item {
	return &ApplyPatchResult{
		ID:           r.ID,
		CallID:       r.CallID,
		Status:       r.Status,
		Output:       r.Output,
		ProviderData: cloneAnyMap(r.ProviderData),
	}
}

// ===============================================
// Unknown
// ===============================================

// UnknownItem preserves an uninterpreted wire payload verbatim. It is never
// transformed; converters re-emit the payload exactly as received.
type UnknownItem struct {
	ProviderData map[string]any
}

func (u *UnknownItem) Kind() ItemType { return ItemTypeUnknown }
func (u *UnknownItem) ItemID() string {
	if id, ok := u.ProviderData["id"].(string); ok {
		return id
	}
	return ""
}
func (u *UnknownItem) Clone() Item {
	return &UnknownItem{ProviderData: cloneAnyMap(u.ProviderData)}
}
