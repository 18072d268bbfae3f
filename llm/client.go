// Package llm provides a provider-agnostic LLM client with retry and fallback
// support. It integrates with the model.Registry for capability-based model
// selection, and optionally records every call through an injected recorder.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/c360studio/docsentinel/model"
	"github.com/google/uuid"
)

// maxResponseSize limits the LLM response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Client is a provider-agnostic LLM client with retry and fallback support.
type Client struct {
	registry    *model.Registry
	httpClient  *http.Client
	retryConfig RetryConfig
	logger      *slog.Logger

	// recorder optionally receives a record of every call for audit
	// purposes. If nil, call recording is disabled.
	recorder CallRecorder
}

// Message represents a chat message. Images optionally carries base64-encoded
// attachments for vision-capable models.
type Message struct {
	Role    string   `json:"role"`    // "system", "user", or "assistant"
	Content string   `json:"content"` // Message content
	Images  []string `json:"images,omitempty"`
}

// Request defines an LLM completion request.
type Request struct {
	// Capability specifies the semantic capability ("analysis", "vision",
	// "fast"). The registry resolves this to available models.
	Capability string

	// Messages is the chat history to send to the LLM.
	Messages []Message

	// Temperature controls randomness. nil uses endpoint default, 0 is deterministic.
	Temperature *float64

	// MaxTokens limits response length. 0 uses endpoint default.
	MaxTokens int
}

// TokenUsage represents token consumption details for an LLM call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response contains the LLM completion result.
type Response struct {
	// RequestID uniquely identifies this LLM call for audit correlation.
	RequestID string

	// Content is the generated text.
	Content string

	// Model is the actual model that was used.
	Model string

	// Usage contains token consumption metrics (if available).
	Usage TokenUsage

	// FinishReason indicates why generation stopped.
	FinishReason string
}

// CallRecord captures a single LLM call for audit recording.
type CallRecord struct {
	RequestID     string    `json:"request_id"`
	Capability    string    `json:"capability"`
	Model         string    `json:"model"`
	Provider      string    `json:"provider"`
	PromptTokens  int       `json:"prompt_tokens"`
	OutputTokens  int       `json:"completion_tokens"`
	FinishReason  string    `json:"finish_reason,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	DurationMs    int64     `json:"duration_ms"`
	Retries       int       `json:"retries"`
	FallbacksUsed []string  `json:"fallbacks_used,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// CallRecorder receives call records. Recording failures never affect the
// call itself, so implementations swallow their own errors.
type CallRecorder interface {
	RecordLLMCall(ctx context.Context, record CallRecord)
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(client *Client) {
		client.retryConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithCallRecorder sets the call recorder. When set, all LLM calls are
// recorded with timing and token usage.
func WithCallRecorder(r CallRecorder) ClientOption {
	return func(client *Client) {
		client.recorder = r
	}
}

// NewClient creates a new LLM client with the given model registry.
func NewClient(registry *model.Registry, opts ...ClientOption) *Client {
	c := &Client{
		registry:    registry,
		retryConfig: DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 180 * time.Second, // Allow time for LLM responses
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Complete sends a completion request, handling retry and fallback logic.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.Capability == "" {
		return nil, fmt.Errorf("capability is required")
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	requestID := uuid.New().String()
	startedAt := time.Now()

	capVal := model.ParseCapability(req.Capability)
	if capVal == "" {
		capVal = model.CapabilityFast // Default to fast for unknown capabilities
	}
	chain := c.registry.GetAvailableFallbackChain(capVal)

	if len(chain) == 0 {
		return nil, NewFatalError(fmt.Errorf("no models configured for capability %s", req.Capability))
	}

	var lastErr error
	var fallbacksUsed []string
	var retries int

	for _, modelName := range chain {
		endpoint := c.registry.GetEndpoint(modelName)
		if endpoint == nil {
			c.logger.Debug("No endpoint for model, skipping", "model", modelName)
			continue
		}

		if !c.registry.IsEndpointAvailable(modelName) {
			c.logger.Debug("Endpoint circuit open, skipping", "model", modelName)
			continue
		}

		resp, attempts, err := c.tryEndpointWithRetry(ctx, endpoint, modelName, req)
		retries += attempts - 1 // First attempt isn't a retry

		if err == nil {
			resp.RequestID = requestID

			c.recordCall(ctx, CallRecord{
				RequestID:     requestID,
				Capability:    req.Capability,
				Model:         resp.Model,
				Provider:      endpoint.Provider,
				PromptTokens:  resp.Usage.PromptTokens,
				OutputTokens:  resp.Usage.CompletionTokens,
				FinishReason:  resp.FinishReason,
				StartedAt:     startedAt,
				DurationMs:    time.Since(startedAt).Milliseconds(),
				Retries:       retries,
				FallbacksUsed: fallbacksUsed,
			})

			return resp, nil
		}

		fallbacksUsed = append(fallbacksUsed, modelName)
		lastErr = err

		c.logger.Warn("Endpoint failed, trying fallback",
			"model", modelName,
			"provider", endpoint.Provider,
			"error", err)

		if IsFatal(err) {
			c.logger.Warn("Fatal error, not trying fallbacks", "error", err)

			c.recordCall(ctx, CallRecord{
				RequestID:     requestID,
				Capability:    req.Capability,
				Model:         modelName,
				Provider:      endpoint.Provider,
				StartedAt:     startedAt,
				DurationMs:    time.Since(startedAt).Milliseconds(),
				Retries:       retries,
				FallbacksUsed: fallbacksUsed,
				Error:         err.Error(),
			})

			return nil, err
		}
	}

	if lastErr == nil {
		// Every chain entry was skipped (no endpoint, or circuit open)
		// without a single attempt.
		lastErr = NewFatalError(fmt.Errorf("no usable endpoints for capability %s", req.Capability))
	}

	c.recordCall(ctx, CallRecord{
		RequestID:     requestID,
		Capability:    req.Capability,
		StartedAt:     startedAt,
		DurationMs:    time.Since(startedAt).Milliseconds(),
		Retries:       retries,
		FallbacksUsed: fallbacksUsed,
		Error:         fmt.Sprintf("all endpoints failed: %v", lastErr),
	})

	return nil, fmt.Errorf("all endpoints failed for capability %s: %w", req.Capability, lastErr)
}

// recordCall forwards a call record to the recorder if one is configured.
func (c *Client) recordCall(ctx context.Context, record CallRecord) {
	if c.recorder == nil {
		return
	}
	c.recorder.RecordLLMCall(ctx, record)
}

// tryEndpointWithRetry attempts a request with retry logic and returns the
// attempt count alongside the response.
func (c *Client) tryEndpointWithRetry(ctx context.Context, ep *model.EndpointConfig, modelName string, req Request) (*Response, int, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		resp, err := c.doRequest(ctx, ep, req)
		if err == nil {
			c.registry.MarkEndpointSuccess(modelName)
			return resp, attempt, nil
		}

		lastErr = err

		// Fatal errors may indicate config issues, not endpoint health.
		if IsFatal(err) {
			return nil, attempt, err
		}

		if attempt < c.retryConfig.MaxAttempts {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debug("Request failed, retrying",
				"attempt", attempt,
				"max_attempts", c.retryConfig.MaxAttempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, attempt, ctx.Err()
			case <-time.After(backoff):
				// Continue to retry
			}
		}
	}

	// All retries exhausted - mark endpoint as unhealthy
	c.registry.MarkEndpointFailure(modelName)

	return nil, c.retryConfig.MaxAttempts, lastErr
}

// calculateBackoff computes exponential backoff duration with jitter.
// Jitter prevents thundering herd when multiple clients retry simultaneously.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= c.retryConfig.BackoffMultiplier
	}

	backoff := time.Duration(float64(c.retryConfig.BackoffBase) * multiplier)
	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}

	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}

// doRequest executes a single HTTP request to the LLM endpoint.
func (c *Client) doRequest(ctx context.Context, ep *model.EndpointConfig, req Request) (*Response, error) {
	provider := GetProvider(ep.Provider)
	if provider == nil {
		return nil, NewFatalError(fmt.Errorf("unknown provider: %s", ep.Provider))
	}

	url := provider.BuildURL(ep.URL)

	body, err := provider.BuildRequestBody(ep.Model, req.Messages, req.Temperature, req.MaxTokens)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	c.logger.Debug("Sending LLM request",
		"provider", ep.Provider,
		"model", ep.Model,
		"url", url,
		"messages", len(req.Messages))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	provider.SetHeaders(httpReq)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Network errors are transient
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	// Read response body with size limit to prevent memory exhaustion
	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(httpResp.StatusCode, respBody)
	}

	return provider.ParseResponse(respBody, ep.Model)
}

// classifyHTTPError determines if an HTTP error is transient or fatal.
func classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("LLM API error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		// Rate limiting is transient
		return NewTransientError(err)
	case statusCode == http.StatusServiceUnavailable,
		statusCode == http.StatusBadGateway,
		statusCode == http.StatusGatewayTimeout:
		return NewTransientError(err)
	case statusCode >= 500:
		return NewTransientError(err)
	case statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden:
		// Auth errors are fatal
		return NewFatalError(err)
	case statusCode == http.StatusBadRequest:
		return NewFatalError(err)
	default:
		// Unknown errors default to fatal
		return NewFatalError(err)
	}
}
