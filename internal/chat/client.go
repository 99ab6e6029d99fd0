// Package chat proxies market questions to an OpenAI-compatible completion
// API (OpenRouter by default) behind the CHANI persona.
package chat

import (
	"context"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// OpenRouter's OpenAI-compatible endpoint
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "google/gemini-2.5-flash"
	DefaultTitle   = "Weather Terminal CHANI"
)

// Config holds the configuration for the chat client.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Referer  string
	Title    string
	Language string
	Timeout  time.Duration
}

// Completer is the subset of the go-openai client the service needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient creates a go-openai client for cfg. OpenRouter uses the
// HTTP-Referer and X-Title headers to attribute traffic.
func NewClient(cfg Config) *openai.Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	config.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: headerTransport{
			base: http.DefaultTransport,
			headers: map[string]string{
				"HTTP-Referer": cfg.Referer,
				"X-Title":      cfg.Title,
			},
		},
	}

	return openai.NewClientWithConfig(config)
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}
