// Package openrouter is a minimal chat-completions client for the
// OpenRouter API.
package openrouter

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

	"codeclash/internal/common"
)

const completionsURL = "https://openrouter.ai/api/v1/chat/completions"

const maxCompletionTokens = 1000

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    completionsURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type completionRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the conversation and returns the assistant's reply text.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxCompletionTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openrouter.Client.Complete marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openrouter.Client.Complete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return "", fmt.Errorf("ai model took too long to respond: %w", common.ErrRequestTimeout)
		}
		return "", fmt.Errorf("openrouter request: %v: %w", err, common.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("ai model quota exhausted: %w", common.ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openrouter returned %d: %s: %w", resp.StatusCode, raw, common.ErrUpstream)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("openrouter.Client.Complete decode: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("openrouter error: %s: %w", completion.Error.Message, common.ErrUpstream)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices: %w", common.ErrUpstream)
	}
	return completion.Choices[0].Message.Content, nil
}

func isClientTimeout(err error) bool {
	var urlErr interface{ Timeout() bool }
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	return strings.Contains(err.Error(), "Client.Timeout exceeded")
}
