package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message represents a single message in a conversation.
type Message struct {
	Role       string     `json:"role"`                   // "system", "user", "assistant", "tool"
	Content    Content    `json:"content"`                // Text or multimodal parts
	Name       string     `json:"name,omitempty"`         // Optional author name
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // Calls requested by the assistant
	ToolCallID string     `json:"tool_call_id,omitempty"` // Set on "tool" messages
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // always "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the called function name and its JSON-encoded arguments.
// Arguments is a string on the wire, not an object.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ContentPart is one element of a multimodal message.
type ContentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL references an image by URL (or data URI) with an optional detail level.
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// Content is either plain text or a list of parts. It encodes as a JSON
// string, a JSON array, or null when empty.
type Content struct {
	Text  string
	Parts []ContentPart
}

// TextContent returns a plain text Content.
func TextContent(text string) Content {
	return Content{Text: text}
}

// PartsContent returns a multimodal Content.
func PartsContent(parts ...ContentPart) Content {
	return Content{Parts: parts}
}

// String flattens the content to its text.
func (c Content) String() string {
	if c.Parts == nil {
		return c.Text
	}
	var buf bytes.Buffer
	for _, p := range c.Parts {
		if p.Type == "text" {
			buf.WriteString(p.Text)
		}
	}
	return buf.String()
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	if c.Text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(c.Text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = Content{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Content{Text: s}
		return nil
	case data[0] == '[':
		var parts []ContentPart
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		*c = Content{Parts: parts}
		return nil
	default:
		return fmt.Errorf("llm: content must be a string, an array or null, got %q", data[:1])
	}
}
