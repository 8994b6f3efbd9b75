package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAI implements the Reviewer interface for any OpenAI-compatible chat
// completions API. The default endpoint is DeepSeek.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates an OpenAI-compatible provider. BaseURL may point at the
// API root (".../v1") or at the full completions endpoint.
func NewOpenAI(s Settings) (*OpenAI, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingCredentials)
	}
	return &OpenAI{
		apiKey:  s.APIKey,
		model:   orDefault(s.Model, DefaultOpenAIModel),
		baseURL: completionsURL(orDefault(s.BaseURL, DefaultOpenAIBaseURL)),
		client:  &http.Client{Timeout: timeoutOr(s.Timeout, 120*time.Second)},
	}, nil
}

func completionsURL(base string) string {
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	return chatCompletion(ctx, o.client, o.baseURL, headers, o.model, req)
}

// chatCompletion performs one OpenAI-style request with retries.
func chatCompletion(ctx context.Context, client *http.Client, url string, headers map[string]string, model string, req ReviewRequest) (ReviewResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	body := openaiRequest{
		Model: model,
		Messages: []openaiMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ReviewResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	var resp ReviewResponse
	err = retryWithBackoff(ctx, 3, func() error {
		respBody, err := postJSON(ctx, client, url, headers, payload)
		if err != nil {
			return err
		}

		var result openaiResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		if len(result.Choices) == 0 {
			return fmt.Errorf("no choices in response")
		}
		if result.Choices[0].Message.Content == "" {
			return fmt.Errorf("empty text content in API response")
		}

		resp = ReviewResponse{
			Content:    result.Choices[0].Message.Content,
			TokensUsed: result.Usage.TotalTokens,
		}
		return nil
	})
	return resp, err
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiUsage struct {
	TotalTokens int `json:"total_tokens"`
}
