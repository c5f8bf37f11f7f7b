// Package ai talks to an OpenAI-compatible chat completions endpoint.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/sunflower-post/backend/config"
)

var ErrEmptyCompletion = errors.New("empty completion")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client is a thin chat-completions client.
type Client struct {
	http  *resty.Client
	model string
}

func NewClient(cfg config.AIConfig) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(1)
	if cfg.APIKey != "" {
		http.SetAuthToken(cfg.APIKey)
	}
	return &Client{http: http, model: cfg.Model}
}

// Complete sends one system and one user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	var out chatResponse
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []Message{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
			Temperature: 0.7,
			MaxTokens:   300,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("chat completion: status %d: %s", resp.StatusCode(), msg)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}
