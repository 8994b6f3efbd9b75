package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	genai "google.golang.org/genai"
)

// Gemini implements the Reviewer interface on the official genai client.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini creates a Gemini provider. BaseURL overrides the API endpoint.
func NewGemini(ctx context.Context, s Settings) (*Gemini, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingCredentials)
	}
	cfg := &genai.ClientConfig{
		APIKey:     s.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeoutOr(s.Timeout, 120*time.Second)},
	}
	if s.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: s.BaseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{cli: cli, model: orDefault(s.Model, DefaultGemini)}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		MaxOutputTokens:   int32(maxTokens),
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	contents := []*genai.Content{genai.NewContentFromText(req.UserPrompt, genai.RoleUser)}

	var resp ReviewResponse
	err := retryWithBackoff(ctx, 3, func() error {
		result, err := g.cli.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return classifyGenaiError(err)
		}
		if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("no content in response")
		}
		text := result.Text()
		if text == "" {
			return fmt.Errorf("empty text content in API response")
		}
		resp = ReviewResponse{Content: text}
		if result.UsageMetadata != nil {
			resp.TokensUsed = int(result.UsageMetadata.TotalTokenCount)
		}
		return nil
	})
	return resp, err
}

// classifyGenaiError maps SDK errors onto the retry error types.
func classifyGenaiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("gemini request: %w", err)
	}
	if classified := classifyStatus(apiErr.Code, apiErr.Message); classified != nil {
		return classified
	}
	return err
}
