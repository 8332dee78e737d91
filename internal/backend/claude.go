package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Iron-Ham/council/internal/config"
	"github.com/Iron-Ham/council/internal/errors"
)

// claudeBackend calls the Anthropic Messages API.
type claudeBackend struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

func newClaude(cfg config.BackendConfig, apiKey string) *claudeBackend {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com/v1"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		// Anthropic rejects requests without an explicit max_tokens
		maxTokens = 4096
	}
	return &claudeBackend{
		baseURL:   baseURL,
		apiKey:    apiKey,
		model:     cfg.Model,
		maxTokens: maxTokens,
		client:    sharedClient,
	}
}

func (b *claudeBackend) Name() string { return "claude" }

type claudeMessageRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (b *claudeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(claudeMessageRequest{
		Model:       b.model,
		MaxTokens:   b.maxTokens,
		Temperature: 0,
		Messages:    []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal claude request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create claude request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", b.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return "", errors.NewBackendError(errors.KindNetwork, b.Name(), "call failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewBackendError(errors.KindNetwork, b.Name(), "read response body", err)
	}

	if resp.StatusCode >= 400 {
		return "", errors.NewBackendError(errors.KindFromStatus(resp.StatusCode), b.Name(),
			fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(respBody)), nil)
	}

	var parsed claudeMessageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.NewBackendError(errors.KindMalformedOutput, b.Name(), "decode response envelope", err)
	}
	if len(parsed.Content) == 0 {
		return "", errors.NewBackendError(errors.KindMalformedOutput, b.Name(), "response has no content blocks", nil)
	}
	return parsed.Content[0].Text, nil
}
