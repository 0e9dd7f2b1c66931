package azureopenai

import (
	"github.com/papercomputeco/triage/pkg/agent"
	"github.com/papercomputeco/triage/pkg/llm"
)

func toChatRequest(req agent.CompletionRequest) llm.ChatRequest {
	out := llm.ChatRequest{
		Options: llm.Options{
			Temperature: req.Settings.Temperature,
			TopP:        req.Settings.TopP,
			MaxTokens:   req.Settings.MaxTokens,
		},
	}

	for _, m := range req.Messages {
		out.Messages = append(out.Messages, toMessages(m)...)
	}

	if len(req.Functions) > 0 {
		out.ToolChoice = "auto"
		for _, fn := range req.Functions {
			out.Tools = append(out.Tools, llm.Tool{
				Type: "function",
				Function: llm.FunctionDecl{
					Name:        fn.Name,
					Description: fn.Description,
					Parameters:  fn.Parameters,
				},
			})
		}
	}
	return out
}

// toMessages converts one history message. Tool results fan out into one
// "tool" message per result.
func toMessages(m agent.Message) []llm.Message {
	var (
		results []llm.Message
		calls   []llm.ToolCall
		parts   []llm.ContentPart
		text    []string
		images  bool
	)

	for _, it := range m.Items {
		switch v := it.(type) {
		case agent.TextContent:
			text = append(text, v.Text)
			parts = append(parts, llm.ContentPart{Type: "text", Text: v.Text})
		case agent.ImageContent:
			images = true
			parts = append(parts, llm.ContentPart{
				Type:     "image_url",
				ImageURL: &llm.ImageURL{URL: v.URL, Detail: v.Detail},
			})
		case agent.FunctionCallContent:
			calls = append(calls, llm.ToolCall{
				ID:       v.ID,
				Type:     "function",
				Function: llm.FunctionCall{Name: v.Name, Arguments: v.Arguments},
			})
		case agent.FunctionResultContent:
			results = append(results, llm.Message{
				Role:       string(agent.RoleTool),
				Content:    llm.TextContent(v.Result),
				ToolCallID: v.CallID,
			})
		}
	}

	if len(results) > 0 {
		return results
	}

	msg := llm.Message{Role: string(m.Role), ToolCalls: calls}
	if m.Role != agent.RoleAssistant {
		msg.Name = m.Name
	}
	switch {
	case images || len(text) > 1:
		msg.Content = llm.PartsContent(parts...)
	case len(text) == 1:
		msg.Content = llm.TextContent(text[0])
	}
	return []llm.Message{msg}
}

func fromChatMessage(m llm.Message) *agent.Message {
	out := &agent.Message{Role: agent.RoleAssistant}
	if text := m.Content.String(); text != "" {
		out.Items = append(out.Items, agent.TextContent{Text: text})
	}
	for _, call := range m.ToolCalls {
		out.Items = append(out.Items, agent.FunctionCallContent{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return out
}
