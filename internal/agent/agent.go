// Package agent asks the model to triage a complaint and decodes its answer.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/triage/internal/llm"
	"github.com/MikeSquared-Agency/triage/internal/remediation"
)

const (
	DefaultMaxTokens = 1200
	DefaultTimeout   = 25 * time.Second
)

// ErrEmptyComplaint is returned before any model call for blank input.
var ErrEmptyComplaint = errors.New("complaint text is empty")

// ParseError means the model answered but not with a usable JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse model response: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

type Options struct {
	MaxTokens int
	Timeout   time.Duration
}

type Agent struct {
	llm       llm.Client
	logger    *slog.Logger
	maxTokens int
	timeout   time.Duration
}

func New(client llm.Client, logger *slog.Logger, opts Options) *Agent {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Agent{
		llm:       client,
		logger:    logger,
		maxTokens: opts.MaxTokens,
		timeout:   opts.Timeout,
	}
}

// Analyze sends one complaint to the model and returns the decoded response.
func (a *Agent) Analyze(ctx context.Context, complaint string) (*remediation.ModelResponse, error) {
	if strings.TrimSpace(complaint) == "" {
		return nil, ErrEmptyComplaint
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.logger.Info("analyzing complaint",
		"model", a.llm.Name(),
		"complaint_len", len(complaint),
	)

	start := time.Now()
	raw, err := a.llm.Complete(ctx, llm.Request{
		System:      systemPrompt,
		User:        fmt.Sprintf(userPromptTemplate, responseSchema, complaint),
		MaxTokens:   a.maxTokens,
		Temperature: 0,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	resp, err := decode(raw)
	if err != nil {
		a.logger.Error("failed to parse model response",
			"error", err,
			"raw_len", len(raw),
		)
		return nil, err
	}

	a.logger.Info("analysis complete",
		"is_technical", resp.IsTechnical(),
		"steps", len(resp.Steps),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// Respond is Analyze with failures folded into an error-bearing response, the
// shape remediation.Normalize expects.
func (a *Agent) Respond(ctx context.Context, complaint string) *remediation.ModelResponse {
	resp, err := a.Analyze(ctx, complaint)
	if err != nil {
		return remediation.Failed(Describe(err))
	}
	return resp
}

// Describe renders err as the single user-visible message.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var upstream *llm.UpstreamError
	if errors.As(err, &upstream) {
		return "LLM API error: " + upstream.Error()
	}
	if errors.Is(err, ErrEmptyComplaint) {
		return "Complaint text is required."
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return "Unexpected error: " + pe.Err.Error()
	}
	return "Unexpected error: " + err.Error()
}

var outerFence = regexp.MustCompile("^```[A-Za-z]*[ \\t]*\\r?\\n([\\s\\S]*?)\\r?\\n?```$")

func decode(raw string) (*remediation.ModelResponse, error) {
	text := strings.TrimSpace(raw)
	if m := outerFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return nil, &ParseError{Err: errors.New("empty content")}
	}

	var resp remediation.ModelResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &resp, nil
}
