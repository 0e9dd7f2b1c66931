package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/triage/pkg/agent"
	"github.com/papercomputeco/triage/pkg/chat"
)

const (
	SampleAgentName = "SampleAgent"

	sampleInstructions = "Use the sample plugin to greet users."
	samplePluginName   = "sample"
	sampleCacheKey     = "sample"
)

type menuItem struct {
	name  string
	price float64
}

var menu = []menuItem{
	{"Burger", 8.99},
	{"Pizza", 12.50},
	{"Salad", 7.25},
	{"Soda", 2.50},
	{"Coffee", 3.00},
}

// Menu returns one "Item: $price" line per menu entry.
func Menu() string {
	lines := make([]string, 0, len(menu))
	for _, it := range menu {
		lines = append(lines, fmt.Sprintf("%s: $%.2f", it.name, it.price))
	}
	return strings.Join(lines, "\n")
}

// Greet returns the greeting for name.
func Greet(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}

var greetParameters = json.RawMessage(`{"type":"object","properties":{"name":{"type":"string","description":"Name of the person to greet."}},"required":["name"]}`)

func samplePlugin() agent.Plugin {
	greet := agent.NewFunction("greet", "Returns a greeting.", greetParameters,
		func(_ context.Context, arguments json.RawMessage) (string, error) {
			var in struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(arguments, &in); err != nil {
				return "", fmt.Errorf("decode arguments: %w", err)
			}
			if in.Name == "" {
				return "", errors.New("name is required")
			}
			return Greet(in.Name), nil
		})

	getMenu := agent.NewFunction("get_menu", "Returns the menu items and their prices.", nil,
		func(context.Context, json.RawMessage) (string, error) {
			return Menu(), nil
		})

	return agent.Plugin{Name: samplePluginName, Functions: []agent.Function{greet, getMenu}}
}

// NewReducer builds the history reducer named by kind ("truncation" or "summarization").
func NewReducer(kind string, targetCount, thresholdCount int, service agent.Completer) (agent.Reducer, error) {
	switch kind {
	case "truncation":
		return agent.TruncationReducer{TargetCount: targetCount, ThresholdCount: thresholdCount}, nil
	case "summarization":
		return agent.SummarizationReducer{Service: service, TargetCount: targetCount, ThresholdCount: thresholdCount}, nil
	default:
		return nil, fmt.Errorf("unknown reducer %q", kind)
	}
}

// SampleService answers chat requests with a plugin-enabled agent. Each
// request's transcript is reduced before the agent sees it.
type SampleService struct {
	config  Config
	service agent.Completer
	reducer agent.Reducer
	cache   *agentCache
	logger  *zap.Logger
}

// NewSampleService returns a SampleService. A nil reducer disables reduction.
func NewSampleService(config Config, service agent.Completer, reducer agent.Reducer, logger *zap.Logger) *SampleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SampleService{
		config:  config,
		service: service,
		reducer: reducer,
		cache:   newAgentCache(),
		logger:  logger.Named("sample"),
	}
}

func (s *SampleService) sampleAgent() (*agent.ChatCompletionAgent, error) {
	return s.cache.get(sampleCacheKey, func() (*agent.ChatCompletionAgent, error) {
		return agent.New(agent.Config{
			Name:          SampleAgentName,
			Instructions:  sampleInstructions,
			Service:       s.service,
			Plugins:       []agent.Plugin{samplePlugin()},
			MaxAutoInvoke: s.config.MaxAutoInvoke,
			Logger:        s.logger,
		})
	})
}

// Invoke answers the request. It never fails: errors become ErrorAnswer.
func (s *SampleService) Invoke(ctx context.Context, req chat.ChatRequest) chat.ChatResponse {
	resp := chat.ChatResponse{
		ConversationID: req.ConversationID,
		MessageID:      newUUID(),
	}
	if resp.ConversationID == "" {
		resp.ConversationID = newUUID()
	}

	logger := s.logger.With(zap.String("conversation_id", resp.ConversationID))

	a, err := s.sampleAgent()
	if err != nil {
		logger.Error("failed to build sample agent", zap.Error(err))
		resp.Answer = ErrorAnswer
		return resp
	}

	history := ToHistory(req.Messages)
	if s.reducer != nil {
		before := history.Len()
		reduced, err := s.reducer.Reduce(ctx, history)
		if err != nil {
			logger.Error("failed to reduce chat history", zap.Error(err))
			resp.Answer = ErrorAnswer
			return resp
		}
		if reduced {
			logger.Debug("reduced chat history", zap.Int("before", before), zap.Int("after", history.Len()))
		}
	}

	reply, err := a.GetResponse(ctx, history, toExecutionSettings(req.Settings, logger))
	if err != nil {
		logger.Error("error occurred while invoking sample agent", zap.Error(err))
		resp.Answer = ErrorAnswer
		return resp
	}

	resp.Answer = answerText(reply)
	return resp
}
