package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxAutoInvoke is the number of function-calling round trips an
// agent performs before it forces the model to answer.
const DefaultMaxAutoInvoke = 5

// ErrNoService is returned by New when the agent has no Completer.
var ErrNoService = errors.New("agent: completion service is required")

// Config configures a ChatCompletionAgent.
type Config struct {
	Name         string
	Description  string
	Instructions string
	Service      Completer
	Functions    []Function
	Plugins      []Plugin

	// MaxAutoInvoke bounds function-calling round trips. Zero means DefaultMaxAutoInvoke.
	MaxAutoInvoke int

	Logger *zap.Logger
}

// ChatCompletionAgent answers a chat history with a single completion
// service, calling its functions automatically when the model asks for them.
// It holds no per-conversation state and is safe for concurrent use.
type ChatCompletionAgent struct {
	name          string
	description   string
	instructions  string
	service       Completer
	functions     map[string]Function
	specs         []FunctionSpec
	maxAutoInvoke int
	logger        *zap.Logger
}

// New builds an agent from config.
func New(config Config) (*ChatCompletionAgent, error) {
	if config.Service == nil {
		return nil, ErrNoService
	}
	if config.Name == "" {
		return nil, errors.New("agent: name is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxAuto := config.MaxAutoInvoke
	if maxAuto <= 0 {
		maxAuto = DefaultMaxAutoInvoke
	}

	a := &ChatCompletionAgent{
		name:          config.Name,
		description:   config.Description,
		instructions:  config.Instructions,
		service:       config.Service,
		functions:     make(map[string]Function),
		maxAutoInvoke: maxAuto,
		logger:        logger.With(zap.String("agent", config.Name)),
	}

	all := append([]Function{}, config.Functions...)
	for _, p := range config.Plugins {
		for _, fn := range p.Functions {
			all = append(all, pluginFunction{plugin: p.Name, Function: fn})
		}
	}
	for _, fn := range all {
		spec := fn.Spec()
		if _, dup := a.functions[spec.Name]; dup {
			return nil, fmt.Errorf("agent %s: duplicate function %q", config.Name, spec.Name)
		}
		a.functions[spec.Name] = fn
		a.specs = append(a.specs, spec)
	}

	return a, nil
}

// Name returns the agent name.
func (a *ChatCompletionAgent) Name() string { return a.name }

// Description returns the agent description.
func (a *ChatCompletionAgent) Description() string { return a.description }

// GetResponse answers the history. The history itself is not modified; the
// function-calling exchange happens on a private copy.
func (a *ChatCompletionAgent) GetResponse(ctx context.Context, history *History, settings ExecutionSettings) (*Message, error) {
	messages := make([]Message, 0, history.Len()+1)
	if a.instructions != "" {
		messages = append(messages, NewTextMessage(RoleSystem, a.instructions))
	}
	if history != nil {
		messages = append(messages, history.Messages...)
	}

	for round := 0; ; round++ {
		req := CompletionRequest{Messages: messages, Settings: settings}
		if round < a.maxAutoInvoke {
			req.Functions = a.specs
		}

		reply, err := a.service.Complete(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("agent %s: completion: %w", a.name, err)
		}
		if reply == nil {
			return nil, fmt.Errorf("agent %s: completion returned no message", a.name)
		}

		calls := reply.FunctionCalls()
		if len(calls) == 0 || len(req.Functions) == 0 {
			out := Message{Role: RoleAssistant, Name: a.name}
			for _, it := range reply.Items {
				if _, ok := it.(FunctionCallContent); !ok {
					out.Items = append(out.Items, it)
				}
			}
			return &out, nil
		}

		messages = append(messages, *reply)
		for _, call := range calls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			messages = append(messages, Message{
				Role:  RoleTool,
				Items: []Item{a.invoke(ctx, call)},
			})
		}
	}
}

func (a *ChatCompletionAgent) invoke(ctx context.Context, call FunctionCallContent) FunctionResultContent {
	result := FunctionResultContent{CallID: call.ID, Name: call.Name}

	fn, ok := a.functions[call.Name]
	if !ok {
		a.logger.Warn("model called unknown function", zap.String("function", call.Name))
		result.Result = fmt.Sprintf("error: unknown function %q", call.Name)
		return result
	}

	args := json.RawMessage(call.Arguments)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	a.logger.Debug("invoking function",
		zap.String("function", call.Name),
		zap.String("call_id", call.ID),
	)

	out, err := fn.Invoke(ctx, args)
	if err != nil {
		a.logger.Warn("function failed",
			zap.String("function", call.Name),
			zap.Error(err),
		)
		result.Result = "error: " + err.Error()
		return result
	}
	result.Result = out
	return result
}

var delegateParameters = json.RawMessage(`{"type":"object","properties":{"request":{"type":"string","description":"The user request to handle."}},"required":["request"]}`)

// AsFunction exposes the agent as a Function taking {"request": string}, so
// another agent can delegate to it.
func (a *ChatCompletionAgent) AsFunction() Function {
	description := a.description
	if description == "" {
		description = a.instructions
	}
	return NewFunction(a.name, description, delegateParameters,
		func(ctx context.Context, arguments json.RawMessage) (string, error) {
			var in struct {
				Request string `json:"request"`
			}
			if err := json.Unmarshal(arguments, &in); err != nil {
				return "", fmt.Errorf("decode arguments: %w", err)
			}
			if in.Request == "" {
				return "", errors.New("request is required")
			}
			reply, err := a.GetResponse(ctx, NewHistory(NewTextMessage(RoleUser, in.Request)), ExecutionSettings{})
			if err != nil {
				return "", err
			}
			return reply.Text(), nil
		})
}
