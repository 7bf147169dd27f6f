// Package llm is the model-call boundary. Callers build one Client at startup
// and pass it to whatever needs completions.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/triage/internal/config"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ErrMissingCredential means the selected provider has no API key configured.
var ErrMissingCredential = errors.New("missing API credential")

// Request is a single system+user chat turn.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
	// JSON asks the provider to return a bare JSON object.
	JSON bool
}

type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	// Name identifies provider and model for logs.
	Name() string
}

// UpstreamError wraps transport failures and non-2xx answers from a provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// New builds the client for cfg.LLMProvider.
func New(cfg config.Config) (Client, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "", ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%s: %w (set OPENAI_API_KEY)", ProviderOpenAI, ErrMissingCredential)
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.LLMTimeout), nil
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("%s: %w (set ANTHROPIC_API_KEY)", ProviderAnthropic, ErrMissingCredential)
		}
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.LLMTimeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
