// Package server exposes chat agents over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sort"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/triage/pkg/chat"
	"github.com/papercomputeco/triage/pkg/llm"
)

// Version is reported to MCP clients.
var Version = "dev"

// Agent answers a chat request. Implementations never fail; problems are
// reported in the answer text.
type Agent interface {
	Invoke(ctx context.Context, req chat.ChatRequest) chat.ChatResponse
}

// Route mounts an Agent at /v1/agents/{Name}.
type Route struct {
	Name        string
	Description string
	Agent       Agent
}

// AgentInfo is one entry of GET /v1/agents.
type AgentInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
}

// AgentList is the body of GET /v1/agents.
type AgentList struct {
	Agents []AgentInfo `json:"agents"`
}

// Server is the HTTP front-end for the agents.
type Server struct {
	config Config
	routes map[string]Route
	names  []string
	logger *zap.Logger
	app    *fiber.App
}

// New creates a Server with the given routes.
func New(config Config, routes []Route, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config: config,
		routes: make(map[string]Route, len(routes)),
		logger: logger,
	}
	for _, r := range routes {
		if r.Name == "" || r.Agent == nil {
			return nil, fmt.Errorf("route %q: name and agent are required", r.Name)
		}
		if _, dup := s.routes[r.Name]; dup {
			return nil, fmt.Errorf("route %q registered twice", r.Name)
		}
		s.routes[r.Name] = r
		s.names = append(s.names, r.Name)
	}
	sort.Strings(s.names)

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		BodyLimit:             config.BodyLimit,
	})
	app.Use(fiberrecover.New())
	app.Use(requestid.New())
	app.Use(requestLogger(logger))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	app.Get("/v1/agents", s.handleListAgents)
	app.Post("/v1/agents/:name", s.handleInvoke)

	if config.EnableMCP {
		mcpServer := NewMCPServer(routes, logger)
		app.All("/mcp", adaptor.HTTPHandler(NewMCPHandler(mcpServer)))
		logger.Info("mcp endpoint enabled", zap.String("path", "/mcp"))
	}

	s.app = app
	return s, nil
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting triage server",
		zap.String("listen", s.config.ListenAddr),
		zap.Strings("agents", s.names),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// Listener serves on an existing listener.
func (s *Server) Listener(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleListAgents(c *fiber.Ctx) error {
	list := AgentList{Agents: make([]AgentInfo, 0, len(s.names))}
	for _, name := range s.names {
		list.Agents = append(list.Agents, AgentInfo{
			Name:        name,
			Description: s.routes[name].Description,
			Path:        "/v1/agents/" + name,
		})
	}
	return c.JSON(list)
}

// handleInvoke answers a chat request with the named agent. Downstream
// failures are reported in the answer with a 200 status.
func (s *Server) handleInvoke(c *fiber.Ctx) error {
	startTime := time.Now()

	route, ok := s.routes[c.Params("name")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "agent not found"})
	}

	var req chat.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Warn("failed to parse request", zap.String("agent", route.Name), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	s.logger.Debug("received chat request",
		zap.String("agent", route.Name),
		zap.Int("message_count", len(req.Messages)),
		zap.Bool("has_conversation_id", req.ConversationID != ""),
	)

	resp := s.invoke(c.UserContext(), route, req)

	s.logger.Debug("answered chat request",
		zap.String("agent", route.Name),
		zap.String("conversation_id", resp.ConversationID),
		zap.Duration("duration", time.Since(startTime)),
	)

	return c.JSON(resp)
}

func (s *Server) invoke(ctx context.Context, route Route, req chat.ChatRequest) (resp chat.ChatResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("agent panicked", zap.String("agent", route.Name), zap.Any("panic", r))
			resp = panicResponse(req, r)
		}
	}()
	return route.Agent.Invoke(ctx, req)
}

func panicResponse(req chat.ChatRequest, r any) chat.ChatResponse {
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	return chat.ChatResponse{
		Answer:         fmt.Sprintf("Internal server error: %v", r),
		ConversationID: conversationID,
		MessageID:      uuid.NewString(),
	}
}
