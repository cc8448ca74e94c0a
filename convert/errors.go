package convert

import (
	"fmt"

	"github.com/janhq/sessions/conversation"
)

// Converter failures are unrecoverable for the input that produced them and
// are always surfaced to the caller; no item is ever silently dropped.

// UnsupportedItemError reports an item variant that has no representation in
// the target wire format (e.g. a shell call into the chat-completions shape).
type UnsupportedItemError struct {
	ItemType conversation.ItemType
	Format   string
}

func (e *UnsupportedItemError) Error() string {
	return fmt.Sprintf("item type %q has no representation in the %s format", e.ItemType, e.Format)
}

// UnsupportedContentError reports a content part that the target wire format
// cannot carry.
type UnsupportedContentError struct {
	PartType string
	Format   string
}

func (e *UnsupportedContentError) Error() string {
	return fmt.Sprintf("content part %q has no representation in the %s format", e.PartType, e.Format)
}

// UnsupportedToolError reports a hosted tool call other than file search
// aimed at the chat-completions format, which has no generic hosted-tool
// representation.
type UnsupportedToolError struct {
	ToolName string
}

func (e *UnsupportedToolError) Error() string {
	return fmt.Sprintf("hosted tool %q cannot be represented in the chat-completions format", e.ToolName)
}

// UnsupportedOutputError reports a function call result whose output is not
// plain text, which the chat-completions tool message cannot carry.
type UnsupportedOutputError struct {
	CallID   string
	PartType string
}

func (e *UnsupportedOutputError) Error() string {
	return fmt.Sprintf("function call output for %q contains non-text content %q", e.CallID, e.PartType)
}

// MissingImageSourceError reports an image part with neither a URL nor a
// file reference.
type MissingImageSourceError struct{}

func (e *MissingImageSourceError) Error() string {
	return "image content requires a url or a file reference"
}

// MissingFileSourceError reports a file part with no inline data, URL, or
// file reference.
type MissingFileSourceError struct{}

func (e *MissingFileSourceError) Error() string {
	return "file content requires inline data, a url, or a file reference"
}
