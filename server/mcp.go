package server

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/triage/pkg/chat"
)

// AgentToolInput is the argument object of every agent tool.
type AgentToolInput struct {
	Message        string `json:"message" jsonschema:"the user message to answer"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"conversation id to continue, generated when empty"`
}

// NewMCPServer exposes each route as an MCP tool named after the route.
func NewMCPServer(routes []Route, logger *zap.Logger) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "triage", Version: Version}, nil)
	for _, r := range routes {
		route := r
		description := route.Description
		if description == "" {
			description = "Ask the " + route.Name + " agent."
		}

		mcp.AddTool(server, &mcp.Tool{Name: route.Name, Description: description},
			func(ctx context.Context, _ *mcp.CallToolRequest, in AgentToolInput) (*mcp.CallToolResult, chat.ChatResponse, error) {
				logger.Debug("mcp tool call", zap.String("tool", route.Name))

				req := chat.ChatRequest{
					Messages:       []chat.ChatMessage{{Role: chat.RoleUser, Content: chat.Text(in.Message)}},
					ConversationID: in.ConversationID,
				}
				resp := route.Agent.Invoke(ctx, req)

				return &mcp.CallToolResult{
					Content: []mcp.Content{&mcp.TextContent{Text: resp.Answer}},
				}, resp, nil
			})
	}
	return server
}

// NewMCPHandler serves server over stateless streamable HTTP.
func NewMCPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{Stateless: true})
}
