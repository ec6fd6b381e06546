// Package groqcloud provides a client for the Groq OpenAI-compatible
// chat-completions API. Stages treat it as a plain prompt-to-text
// collaborator; any failure here is survivable because every caller carries
// a deterministic fallback.
package groqcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"credsaathi_backend/platform/apperr"
)

// Config for the Groq API.
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	RequestsPerMinute int
}

// Message is a single role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls the Groq chat-completions endpoint.
type Client struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a Groq client. A zero RequestsPerMinute disables client-side
// rate limiting.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}

	return &Client{
		config:  cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: limiter,
	}
}

// Name returns the configured model identifier.
func (c *Client) Name() string {
	return c.config.Model
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends role-tagged messages and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", apperr.ExternalCall("rate limiter wait", err)
	}

	payload := chatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: temperature,
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return "", apperr.ExternalCall("encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", apperr.ExternalCall("create request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", apperr.ExternalCall("groq request", err)
	}
	defer resp.Body.Close()

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperr.ExternalCall("decode groq response", err)
	}
	if result.Error != nil {
		return "", apperr.ExternalCall(fmt.Sprintf("groq api error: %s", result.Error.Message), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperr.ExternalCall(fmt.Sprintf("groq api status %d", resp.StatusCode), nil)
	}
	if len(result.Choices) == 0 {
		return "", apperr.ExternalCall("groq api error: empty choices", nil)
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", apperr.ExternalCall("groq api error: empty completion", nil)
	}

	return content, nil
}
