package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// Anthropic implements the Reviewer interface for the Messages API.
type Anthropic struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(s Settings) (*Anthropic, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrMissingCredentials)
	}
	url := anthropicAPIURL
	if s.BaseURL != "" {
		url = strings.TrimRight(s.BaseURL, "/")
		if !strings.HasSuffix(url, "/messages") {
			url += "/v1/messages"
		}
	}
	return &Anthropic{
		apiKey: s.APIKey,
		model:  orDefault(s.Model, DefaultAnthropic),
		url:    url,
		client: &http.Client{Timeout: timeoutOr(s.Timeout, 120*time.Second)},
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	body := anthropicRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		System:    req.SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.UserPrompt},
		},
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return ReviewResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}

	var resp ReviewResponse
	err = retryWithBackoff(ctx, 3, func() error {
		respBody, err := postJSON(ctx, a.client, a.url, headers, payload)
		if err != nil {
			return err
		}

		var result anthropicResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}

		var content strings.Builder
		for _, block := range result.Content {
			if block.Type == "text" {
				content.WriteString(block.Text)
			}
		}
		if content.Len() == 0 {
			return fmt.Errorf("empty text content in API response")
		}

		resp = ReviewResponse{
			Content:    content.String(),
			TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
		}
		return nil
	})
	return resp, err
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
	Usage   anthropicUsage   `json:"usage"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
