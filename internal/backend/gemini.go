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

// geminiBackend calls the Gemini generateContent API.
type geminiBackend struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func newGemini(cfg config.BackendConfig, apiKey string) *geminiBackend {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &geminiBackend{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   cfg.Model,
		client:  sharedClient,
	}
}

func (b *geminiBackend) Name() string { return "gemini" }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (b *geminiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", b.baseURL, b.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", b.apiKey)

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

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.NewBackendError(errors.KindMalformedOutput, b.Name(), "decode response envelope", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.NewBackendError(errors.KindMalformedOutput, b.Name(), "response has no candidates", nil)
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
