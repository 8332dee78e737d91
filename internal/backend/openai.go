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

// openAIBackend calls the OpenAI Chat Completions API.
type openAIBackend struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func newOpenAI(cfg config.BackendConfig, apiKey string) *openAIBackend {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &openAIBackend{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   cfg.Model,
		client:  sharedClient,
	}
}

func (b *openAIBackend) Name() string { return "openai" }

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Temperature float64             `json:"temperature"`
	Messages    []openAIChatMessage `json:"messages"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIChatMessage `json:"message"`
	} `json:"choices"`
}

func (b *openAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(openAIChatRequest{
		Model:       b.model,
		Temperature: 0,
		Messages:    []openAIChatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal openai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create openai request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)

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

	var parsed openAIChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.NewBackendError(errors.KindMalformedOutput, b.Name(), "decode response envelope", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.NewBackendError(errors.KindMalformedOutput, b.Name(), "response has no choices", nil)
	}
	return parsed.Choices[0].Message.Content, nil
}

// truncate bounds error bodies logged into error messages.
func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
