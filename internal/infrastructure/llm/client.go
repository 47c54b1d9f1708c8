package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/emberwatch/emberwatch/internal/core/ports"
	"github.com/go-resty/resty/v2"
)

// ClientConfig holds configuration for the chat completion client.
type ClientConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Client implements ports.ChatCompleter against an OpenAI-compatible
// chat completions API.
type Client struct {
	client      *resty.Client
	model       string
	temperature float64
	endpoint    string
}

// NewClient creates a chat completion client.
func NewClient(cfg *ClientConfig) *Client {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &Client{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		endpoint:    baseURL + "/chat/completions",
	}
}

// Chat completion API request/response structures.
type chatRequest struct {
	Model       string              `json:"model"`
	Temperature float64             `json:"temperature"`
	Messages    []ports.ChatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends the messages and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, messages []ports.ChatMessage) (string, error) {
	var result chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&chatRequest{
			Model:       c.model,
			Temperature: c.temperature,
			Messages:    messages,
		}).
		SetResult(&result).
		SetError(&result).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if resp.IsError() {
		if result.Error != nil {
			return "", fmt.Errorf("chat completion API error (%s): %s", result.Error.Type, result.Error.Message)
		}
		return "", fmt.Errorf("chat completion API returned status %d", resp.StatusCode())
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat completion response contained no choices")
	}
	return result.Choices[0].Message.Content, nil
}
