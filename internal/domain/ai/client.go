package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
)

// ErrNoChoices is returned when the endpoint answers without a message
var ErrNoChoices = errors.New("ai returned no response")

// Completer produces completion text for a prompt
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config for the chat completions endpoint
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client is an OpenAI-compatible chat completions client
type Client struct {
	cfg     Config
	http    *client.Client
	logger  *zap.Logger
	metrics *monitoring.Metrics
	system  string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewClient creates a completions client
func NewClient(cfg Config, logger *zap.Logger, metrics *monitoring.Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := client.DefaultOptions()
	opts.Name = "ai"
	opts.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	opts.MaxRetries = 2

	httpClient := client.NewClient(opts, logger)
	if cfg.APIKey != "" {
		httpClient.SetBearerAuth(cfg.APIKey)
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		logger:  logger,
		metrics: metrics,
		system:  AssistantPrompt,
	}
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Complete sends prompt under the assistant system prompt
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, c.system, prompt)
}

// CompleteWithSystem sends prompt with an explicit system message. Without an
// API key it answers with a notice instead of calling out.
func (c *Client) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	if !c.Configured() {
		c.logger.Warn("AI API key missing, returning notice")
		return MissingKeyNotice(prompt), nil
	}

	start := time.Now()
	text, err := c.complete(ctx, system, prompt)
	if c.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordAICall("completion", status, time.Since(start))
	}
	if err != nil {
		c.logger.Error("AI completion failed", zap.Error(err))
		return "", err
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	payload, err := codec.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := c.http.Request(ctx)
	if err != nil {
		return "", err
	}

	resp, err := c.http.ExecuteWithBreaker(func() (*resty.Response, error) {
		resp, err := req.
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			Post("/chat/completions")
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= 500 {
			return resp, fmt.Errorf("ai endpoint returned %d", resp.StatusCode())
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("ai endpoint returned %d: %s", resp.StatusCode(), resp.String())
	}

	var decoded chatResponse
	if err := codec.Unmarshal(resp.Body(), &decoded); err != nil {
		return "", fmt.Errorf("failed to decode completion: %w", err)
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return "", ErrNoChoices
	}
	return decoded.Choices[0].Message.Content, nil
}

// MissingKeyNotice is the offline answer when no API key is configured
func MissingKeyNotice(prompt string) string {
	return fmt.Sprintf("[Notice: AI_API_KEY is not configured] AI received the request: %q", prompt)
}
