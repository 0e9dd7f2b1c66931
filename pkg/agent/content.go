// Package agent is a small chat-completion agent runtime: agents with
// instructions, callable functions (including other agents), an automatic
// function-calling loop, and chat history reducers.
package agent

import "strings"

// AuthorRole identifies who authored a message.
type AuthorRole string

const (
	RoleSystem    AuthorRole = "system"
	RoleUser      AuthorRole = "user"
	RoleAssistant AuthorRole = "assistant"
	RoleTool      AuthorRole = "tool"
)

// Item is a unit of message content.
type Item interface {
	itemKind() string
}

// TextContent is plain text.
type TextContent struct {
	Text string
}

// ImageContent references an image by URL. Detail is an optional fidelity
// hint ("low", "high", "auto").
type ImageContent struct {
	URL    string
	Detail string
}

// FunctionCallContent is a function invocation requested by the model.
// Arguments holds the raw JSON arguments string.
type FunctionCallContent struct {
	ID        string
	Name      string
	Arguments string
}

// FunctionResultContent carries the result of a FunctionCallContent back to the model.
type FunctionResultContent struct {
	CallID string
	Name   string
	Result string
}

func (TextContent) itemKind() string           { return "text" }
func (ImageContent) itemKind() string          { return "image" }
func (FunctionCallContent) itemKind() string   { return "function_call" }
func (FunctionResultContent) itemKind() string { return "function_result" }

// Message is one entry of a chat history.
type Message struct {
	Role  AuthorRole
	Name  string // author name, set on agent replies
	Items []Item
}

// NewTextMessage builds a single-text-item message.
func NewTextMessage(role AuthorRole, text string) Message {
	return Message{Role: role, Items: []Item{TextContent{Text: text}}}
}

// Text joins the text items of the message.
func (m Message) Text() string {
	var parts []string
	for _, it := range m.Items {
		if t, ok := it.(TextContent); ok {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// FunctionCalls returns the function calls requested in the message.
func (m Message) FunctionCalls() []FunctionCallContent {
	var calls []FunctionCallContent
	for _, it := range m.Items {
		if c, ok := it.(FunctionCallContent); ok {
			calls = append(calls, c)
		}
	}
	return calls
}

// History is an ordered chat history.
type History struct {
	Messages []Message
}

// NewHistory returns a history holding msgs.
func NewHistory(msgs ...Message) *History {
	return &History{Messages: msgs}
}

// Add appends a message.
func (h *History) Add(m Message) {
	h.Messages = append(h.Messages, m)
}

// Len reports the number of messages.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Messages)
}

// Clear drops every message.
func (h *History) Clear() {
	h.Messages = h.Messages[:0]
}
