package agent

import "context"

// ExecutionSettings tune a single completion. Nil fields are left to the service default.
type ExecutionSettings struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// CompletionRequest is one round trip to a chat completion service.
type CompletionRequest struct {
	Messages  []Message
	Functions []FunctionSpec
	Settings  ExecutionSettings
}

// Completer performs chat completions. The returned message has the
// assistant role and may carry FunctionCallContent items.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Message, error)
}
