package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ReviewRequest contains the data sent to a model for one file.
type ReviewRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// ReviewResponse contains the model's freeform answer.
type ReviewResponse struct {
	Content    string
	TokensUsed int
}

// Reviewer is the provider abstraction interface.
type Reviewer interface {
	Review(ctx context.Context, req ReviewRequest) (ReviewResponse, error)
	Name() string
}

// ErrMissingCredentials is returned by New when the provider needs an API key
// and none is configured.
var ErrMissingCredentials = errors.New("API key is not configured")

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	// Timeout bounds each HTTP attempt. Zero uses the provider default.
	Timeout time.Duration
}

// Default models per provider.
const (
	DefaultOpenAIBaseURL = "https://api.deepseek.com/v1"
	DefaultOpenAIModel   = "deepseek-chat"
	DefaultAnthropic     = "claude-sonnet-4-5"
	DefaultGemini        = "gemini-2.5-flash"
	DefaultOllama        = "llama3.1"
)

// New creates a provider from settings.
func New(ctx context.Context, s Settings) (Reviewer, error) {
	switch strings.ToLower(s.Provider) {
	case "", "openai":
		return NewOpenAI(s)
	case "anthropic":
		return NewAnthropic(s)
	case "gemini", "google":
		return NewGemini(ctx, s)
	case "ollama", "lmstudio":
		return NewOllama(s)
	default:
		return nil, fmt.Errorf("unknown provider: %s", s.Provider)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func timeoutOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
