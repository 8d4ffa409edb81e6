// Package openai provides HTTP clients for the OpenAI embeddings and chat
// completions APIs, the two external collaborators of the ask pipeline.
package openai

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/podsage/podsage/engine/domain"
)

// Default models and endpoint.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultEmbedModel = "text-embedding-3-small"
	DefaultChatModel  = "gpt-4-turbo-preview"
	// EmbedDims is the output dimensionality of DefaultEmbedModel.
	EmbedDims = 1536
)

// Synthesis settings are fixed low-variance values, not user-configurable.
const (
	chatTemperature = 0.3
	chatMaxTokens   = 2000
)

// Config configures a Client. APIKey is mandatory.
type Config struct {
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
	Timeout    time.Duration
}

// Client talks to the OpenAI API. Requests are paced with a token bucket so
// ingestion bursts don't immediately trip the provider's rate limits.
type Client struct {
	baseURL    string
	apiKey     string
	embedModel string
	chatModel  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a Client. A missing credential fails fast here, before any
// query or ingestion work is accepted.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: set OPENAI_API_KEY", domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		embedModel: cfg.EmbedModel,
		chatModel:  cfg.ChatModel,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
	}, nil
}
