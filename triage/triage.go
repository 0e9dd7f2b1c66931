package triage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/triage/pkg/agent"
	"github.com/papercomputeco/triage/pkg/chat"
)

// Answers returned in place of an agent reply.
const (
	ErrorAnswer   = "An error occurred while processing your request."
	NoReplyAnswer = "No response from agent"
)

const triageCacheKey = "triage"

var newUUID = func() string { return uuid.NewString() }

// Config configures a Service.
type Config struct {
	// MaxAutoInvoke bounds delegation round trips per request. Zero means the agent default.
	MaxAutoInvoke int
}

// Service answers chat requests with the triage agent hierarchy.
type Service struct {
	config  Config
	service agent.Completer
	cache   *agentCache
	logger  *zap.Logger
}

// NewService returns a Service. Agents are built on the first Invoke.
func NewService(config Config, service agent.Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		config:  config,
		service: service,
		cache:   newAgentCache(),
		logger:  logger.Named("triage"),
	}
}

func (s *Service) triageAgent() (*agent.ChatCompletionAgent, error) {
	return s.cache.get(triageCacheKey, func() (*agent.ChatCompletionAgent, error) {
		s.logger.Info("building triage agents")
		return buildTriageAgent(s.service, s.config.MaxAutoInvoke, s.logger)
	})
}

// Invoke answers the request. It never fails: errors become ErrorAnswer.
func (s *Service) Invoke(ctx context.Context, req chat.ChatRequest) chat.ChatResponse {
	resp := chat.ChatResponse{
		ConversationID: req.ConversationID,
		MessageID:      newUUID(),
	}
	if resp.ConversationID == "" {
		resp.ConversationID = newUUID()
	}

	logger := s.logger.With(
		zap.String("conversation_id", resp.ConversationID),
		zap.String("message_id", resp.MessageID),
	)

	triage, err := s.triageAgent()
	if err != nil {
		logger.Error("failed to build triage agent", zap.Error(err))
		resp.Answer = ErrorAnswer
		return resp
	}

	history := ToHistory(req.Messages)
	settings := toExecutionSettings(req.Settings, logger)

	start := time.Now()
	reply, err := triage.GetResponse(ctx, history, settings)
	if err != nil {
		logger.Error("error occurred while invoking triage agent", zap.Error(err))
		resp.Answer = ErrorAnswer
		return resp
	}

	resp.Answer = answerText(reply)
	logger.Info("triage agent answered",
		zap.Int("messages", history.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return resp
}

func answerText(reply *agent.Message) string {
	if reply == nil {
		return NoReplyAnswer
	}
	text := reply.Text()
	if strings.TrimSpace(text) == "" {
		return NoReplyAnswer
	}
	return text
}
