package providers

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements the Reviewer interface for Ollama and LM Studio through
// their OpenAI-compatible endpoint.
type Ollama struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOllama creates a local-model provider. The API key is optional.
func NewOllama(s Settings) (*Ollama, error) {
	baseURL := strings.TrimRight(orDefault(s.BaseURL, defaultOllamaURL), "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1/chat/completions")
	baseURL = strings.TrimSuffix(baseURL, "/v1")

	return &Ollama{
		apiKey:  s.APIKey,
		model:   orDefault(s.Model, DefaultOllama),
		baseURL: baseURL + "/v1/chat/completions",
		client:  &http.Client{Timeout: timeoutOr(s.Timeout, 300*time.Second)},
	}, nil
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	headers := map[string]string{}
	if o.apiKey != "" {
		headers["Authorization"] = "Bearer " + o.apiKey
	}
	return chatCompletion(ctx, o.client, o.baseURL, headers, o.model, req)
}
