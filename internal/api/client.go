// Package api implements the HTTP client for OpenAI-compatible
// chat-completion backends: request building, retry with exponential
// backoff, and response validation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"

	"doc-translator/internal/config"
	"doc-translator/internal/logger"
	"doc-translator/internal/prompt"
	"doc-translator/internal/types"
)

// ChatCompletionRequest is the request body for the chat completions API.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the response body from the chat completions API.
// The only required field path is choices[0].message.content.
type ChatCompletionResponse struct {
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// modelList is the response body of the models-listing endpoint.
type modelList struct {
	Data []struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		Created int64  `json:"created"`
		OwnedBy string `json:"owned_by"`
	} `json:"data"`
}

// Client performs translate-or-probe calls against one backend.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg: cfg,
		// Per-request deadlines come from the request context; the transport
		// itself carries no timeout so the models probe can use a shorter one.
		httpClient: &http.Client{},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "translation-api",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Translate performs one logical translation call: builds the model-specific
// prompt, issues the request with retry, and returns the translated text.
// Cancellation of ctx surfaces as a translation-cancelled error.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string, opts *types.TranslationOptions) (string, error) {
	apiURL := c.cfg.API.DefaultEndpoint
	model := c.cfg.API.DefaultModel
	if opts != nil {
		if opts.APIUrl != "" {
			apiURL = opts.APIUrl
		}
		if opts.ModelName != "" {
			model = opts.ModelName
		}
	}

	strategy := prompt.ForModel(model, c.cfg)
	reqBody := ChatCompletionRequest{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: strategy.Build(text, targetLanguage)}},
		Temperature: c.cfg.API.Temperature,
		MaxTokens:   c.cfg.API.MaxTokens,
		Stream:      false,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to marshal request body", err)
	}

	return c.makeRequestWithRetry(ctx, chatCompletionsURL(apiURL), payload)
}

// makeRequestWithRetry attempts the request up to the configured retry
// budget. A failure is retried only when it is not a cancellation, not a
// client error (400/401/403), and not a response-format error. Backoff is
// exponential: delay = baseDelay * 2^(attempt-1).
func (c *Client) makeRequestWithRetry(ctx context.Context, endpoint string, payload []byte) (string, error) {
	attempts := c.cfg.API.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(c.cfg.API.RetryBaseDelay))

	attempt := 0
	var result string
	var lastErr error
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		out, reqErr := c.doRequest(ctx, endpoint, payload)
		if reqErr != nil {
			lastErr = reqErr
			if isRetryable(reqErr) {
				logger.Warn("translation request failed, will retry",
					logger.Int("attempt", attempt), logger.Err(reqErr))
				return retry.RetryableError(reqErr)
			}
			return reqErr
		}
		result = out
		return nil
	})
	if err == nil {
		return result, nil
	}

	// Backoff sleeps abort on context cancellation; report those as a
	// cancellation regardless of what the last request error was.
	if ctx.Err() != nil {
		return "", cancelledError(ctx.Err())
	}

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case types.ErrCancelled, types.ErrClient, types.ErrAPIResponseFormat, types.ErrAPITimeout:
			return "", appErr
		}
	}
	if lastErr == nil {
		lastErr = err
	}
	logger.Error("translation request failed after all retries", lastErr,
		logger.Int("maxRetries", attempts))
	return "", types.NewAppErrorWithDetails(types.ErrAPIConnection,
		"translation request failed",
		fmt.Sprintf("attempted %d times", attempts), lastErr)
}

// doRequest performs a single HTTP round trip and validates the response.
func (c *Client) doRequest(ctx context.Context, endpoint string, payload []byte) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.API.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to create HTTP request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.API.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.API.APIKey)
	}

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return "", cancelledError(err)
		}
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			return "", types.NewAppErrorWithDetails(types.ErrAPITimeout,
				"translation request timed out",
				c.cfg.API.RequestTimeout.String(), err)
		}
		return "", types.NewAppError(types.ErrAPIConnection, "API request failed", err)
	}
	resp := raw.(*http.Response)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewAppError(types.ErrAPIConnection, "failed to read API response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", httpStatusError(resp.StatusCode, body)
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", types.NewAppError(types.ErrAPIResponseFormat, "failed to parse API response", err)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", types.NewAppError(types.ErrAPIResponseFormat, "API response contains no message content", nil)
	}
	return chatResp.Choices[0].Message.Content, nil
}

// TestConnection fires a minimal 1-token request and reports success without
// surfacing the response content.
func (c *Client) TestConnection(ctx context.Context, apiURL, model string) bool {
	if apiURL == "" {
		apiURL = c.cfg.API.DefaultEndpoint
	}
	if model == "" {
		model = c.cfg.API.DefaultModel
	}
	reqBody := ChatCompletionRequest{
		Model:     model,
		Messages:  []Message{{Role: "user", Content: "Reply with the word ok."}},
		MaxTokens: 1,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return false
	}
	_, err = c.doRequest(ctx, chatCompletionsURL(apiURL), payload)
	if err != nil {
		logger.Warn("connection test failed", logger.Err(err))
		// A response-format error still proves the endpoint answered with
		// 200, but an incompatible backend is not a usable connection.
		return false
	}
	return true
}

// FetchAvailableModels lists the backend's models. Model listing is advisory
// UI data: any failure degrades to an empty list rather than propagating.
func (c *Client) FetchAvailableModels(ctx context.Context, apiURL string) []string {
	if apiURL == "" {
		apiURL = c.cfg.API.DefaultEndpoint
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.API.ModelsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, modelsURL(apiURL), nil)
	if err != nil {
		return nil
	}
	if c.cfg.API.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.API.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("failed to fetch model list", logger.Err(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Warn("model list request rejected", logger.Int("statusCode", resp.StatusCode))
		return nil
	}

	var list modelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		logger.Warn("failed to parse model list", logger.Err(err))
		return nil
	}
	models := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		models = append(models, m.ID)
	}
	return models
}

// chatCompletionsURL auto-completes the chat completions path on a base URL.
func chatCompletionsURL(base string) string {
	base = strings.TrimSuffix(base, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// modelsURL derives the models-listing endpoint from a base URL.
func modelsURL(base string) string {
	base = strings.TrimSuffix(base, "/")
	base = strings.TrimSuffix(base, "/chat/completions")
	base = strings.TrimSuffix(base, "/")
	if strings.HasSuffix(base, "/v1") {
		return base + "/models"
	}
	return base + "/v1/models"
}

// httpStatusError classifies a non-2xx response. HTTP 400/401/403 are client
// errors that will not self-resolve and are never retried.
func httpStatusError(statusCode int, body []byte) error {
	details := parseErrorBody(statusCode, body)
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return types.NewAppErrorWithDetails(types.ErrClient, "API rejected the request", details, nil)
	default:
		return types.NewAppErrorWithDetails(types.ErrAPIConnection, "API server error", details, nil)
	}
}

// parseErrorBody extracts a human-readable message from an error response:
// {"error":{"message":...}} first, then {"error":"..."}, then the raw body,
// then a generic status string.
func parseErrorBody(statusCode int, body []byte) string {
	var withObject struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &withObject); err == nil && withObject.Error.Message != "" {
		return withObject.Error.Message
	}
	var withString struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &withString); err == nil && withString.Error != "" {
		return withString.Error
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("Status %d", statusCode)
}

// isRetryable reports whether a failure may self-resolve. Cancellations,
// client errors, and response-format errors never do.
func isRetryable(err error) bool {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return true
	}
	switch appErr.Code {
	case types.ErrCancelled, types.ErrClient, types.ErrAPIResponseFormat:
		return false
	default:
		return true
	}
}

func cancelledError(cause error) *types.AppError {
	return types.NewAppError(types.ErrCancelled, "translation cancelled", cause)
}
