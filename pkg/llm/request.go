package llm

import "encoding/json"

// ChatRequest represents a chat completion request. The model is implied by
// the deployment in the URL, so it is not part of the body.
type ChatRequest struct {
	Messages   []Message `json:"messages"`
	Tools      []Tool    `json:"tools,omitempty"`
	ToolChoice string    `json:"tool_choice,omitempty"` // "auto" or "none"

	Options
}

// Tool is a function the model may call.
type Tool struct {
	Type     string       `json:"type"` // always "function"
	Function FunctionDecl `json:"function"`
}

// FunctionDecl declares a callable function and its JSON schema parameters.
type FunctionDecl struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}
