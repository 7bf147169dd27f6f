package llm

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/MikeSquared-Agency/triage/internal/anthropic"
)

// Anthropic adapts the Messages API client to Client. The JSON flag is
// carried by the prompt since the API has no response-format switch.
type Anthropic struct {
	client *anthropic.Client
}

func NewAnthropic(apiKey, model string, timeout time.Duration) *Anthropic {
	return &Anthropic{client: anthropic.NewClient(apiKey, model, timeout)}
}

// NewAnthropicWithClient wraps an existing client, mainly for tests.
func NewAnthropicWithClient(c *anthropic.Client) *Anthropic {
	return &Anthropic{client: c}
}

func (a *Anthropic) Name() string { return ProviderAnthropic + "/" + a.client.Model() }

func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	text, err := a.client.Complete(ctx, req.System,
		[]anthropic.Message{{Role: "user", Content: req.User}},
		anthropic.Options{MaxTokens: req.MaxTokens, Temperature: req.Temperature},
	)
	if err == nil {
		return text, nil
	}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		return "", &UpstreamError{Provider: ProviderAnthropic, StatusCode: apiErr.StatusCode, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "", &UpstreamError{Provider: ProviderAnthropic, Err: err}
	}
	return "", err
}
