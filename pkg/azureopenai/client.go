// Package azureopenai is a chat completion client for Azure OpenAI deployments.
package azureopenai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/triage/pkg/agent"
	"github.com/papercomputeco/triage/pkg/llm"
)

// DefaultAPIVersion is used when no API version is configured.
const DefaultAPIVersion = "2024-10-21"

const defaultTimeout = 60 * time.Second

// Config identifies an Azure OpenAI chat deployment.
type Config struct {
	// Endpoint is the resource URL, e.g. https://my-resource.openai.azure.com
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string

	// Timeout bounds one completion request. Zero means 60s.
	Timeout time.Duration
}

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("azureopenai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Message)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client implements agent.Completer against one deployment.
type Client struct {
	completionsURL string
	apiKey         string
	httpClient     *http.Client
	logger         *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient validates config and builds a Client.
func NewClient(config Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(config.Endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("azureopenai: endpoint must not be empty")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("azureopenai: invalid endpoint: %w", err)
	}
	if config.APIKey == "" {
		return nil, errors.New("azureopenai: api key must not be empty")
	}
	if config.Deployment == "" {
		return nil, errors.New("azureopenai: deployment must not be empty")
	}

	version := config.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		completionsURL: completionsURL(endpoint, config.Deployment, version),
		apiKey:         config.APIKey,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func completionsURL(endpoint, deployment, version string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		endpoint, url.PathEscape(deployment), url.QueryEscape(version))
}

// Complete sends one chat completion request.
func (c *Client) Complete(ctx context.Context, req agent.CompletionRequest) (*agent.Message, error) {
	body, err := json.Marshal(toChatRequest(req))
	if err != nil {
		return nil, fmt.Errorf("azureopenai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionsURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("azureopenai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	start := time.Now()
	raw, err := c.doJSONRequest(httpReq)
	if err != nil {
		return nil, fmt.Errorf("azureopenai: request failed: %w", err)
	}

	var payload llm.ChatResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("azureopenai: decode response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return nil, errors.New("azureopenai: no choices in response")
	}

	fields := []zap.Field{
		zap.Duration("duration", time.Since(start)),
		zap.String("finish_reason", payload.Choices[0].FinishReason),
		zap.Int("tools_offered", len(req.Functions)),
	}
	if payload.Usage != nil {
		fields = append(fields,
			zap.Int("prompt_tokens", payload.Usage.PromptTokens),
			zap.Int("completion_tokens", payload.Usage.CompletionTokens),
		)
	}
	c.logger.Debug("completion finished", fields...)

	return fromChatMessage(payload.Choices[0].Message), nil
}

func (c *Client) doJSONRequest(req *http.Request) ([]byte, error) {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        redact(req.URL),
			Message:    readErrorMessage(io.LimitReader(res.Body, 4096)),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

// readErrorMessage extracts the message from an OpenAI error envelope,
// falling back to the raw body.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "failed to read error response"
	}

	var envelope llm.UpstreamError
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		if envelope.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", envelope.Error.Message, envelope.Error.Type)
		}
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(data))
}

// redact drops the query string so errors never carry request parameters.
func redact(u *url.URL) string {
	cp := *u
	cp.RawQuery = ""
	return cp.String()
}
