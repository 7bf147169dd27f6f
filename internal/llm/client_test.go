package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/triage/internal/anthropic"
	"github.com/MikeSquared-Agency/triage/internal/config"
)

func TestNew_ProviderSelection(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		prefix  string
		wantErr error
	}{
		{"openai default", config.Config{OpenAIAPIKey: "sk", OpenAIModel: "gpt-4o-mini"}, "openai/", nil},
		{"anthropic", config.Config{LLMProvider: "Anthropic", AnthropicAPIKey: "sk", AnthropicModel: "claude"}, "anthropic/", nil},
		{"openai missing key", config.Config{LLMProvider: "openai"}, "", ErrMissingCredential},
		{"anthropic missing key", config.Config{LLMProvider: "anthropic"}, "", ErrMissingCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(c.Name(), tt.prefix) {
				t.Errorf("expected name prefix %q, got %q", tt.prefix, c.Name())
			}
		})
	}

	if _, err := New(config.Config{LLMProvider: "bard"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestOpenAI_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if body["model"] != "gpt-4o-mini" {
			t.Errorf("expected model gpt-4o-mini, got %v", body["model"])
		}
		rf, _ := body["response_format"].(map[string]any)
		if rf["type"] != "json_object" {
			t.Errorf("expected json_object response format, got %v", body["response_format"])
		}
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 2 {
			t.Errorf("expected system and user messages, got %d", len(msgs))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": `{"summary":"ok"}`},
				"finish_reason": "stop",
			}},
		})
	}))
	defer server.Close()

	c := NewOpenAI("sk-test", "gpt-4o-mini", server.URL+"/v1", 0)
	got, err := c.Complete(context.Background(), Request{System: "sys", User: "hi", MaxTokens: 50, JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"summary":"ok"}` {
		t.Errorf("unexpected content %q", got)
	}
}

func TestOpenAI_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	c := NewOpenAI("sk-test", "gpt-4o-mini", server.URL+"/v1", 0)
	_, err := c.Complete(context.Background(), Request{User: "hi"})

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", upstream.StatusCode)
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	c := NewOpenAI("sk-test", "gpt-4o-mini", server.URL+"/v1", 0)
	_, err := c.Complete(context.Background(), Request{User: "hi"})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		t.Errorf("expected a plain error, got upstream %v", err)
	}
}

func TestAnthropic_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["system"] != "sys" {
			t.Errorf("expected system prompt, got %v", body["system"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": `{"summary":"ok"}`}},
		})
	}))
	defer server.Close()

	ac := anthropic.NewClient("sk-ant", "claude-test", 0)
	ac.SetTestTransport(server.URL)
	c := NewAnthropicWithClient(ac)

	got, err := c.Complete(context.Background(), Request{System: "sys", User: "hi", MaxTokens: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"summary":"ok"}` {
		t.Errorf("unexpected content %q", got)
	}
	if c.Name() != "anthropic/claude-test" {
		t.Errorf("unexpected name %q", c.Name())
	}
}

func TestAnthropic_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer server.Close()

	ac := anthropic.NewClient("sk-ant", "claude-test", 0)
	ac.SetTestTransport(server.URL)

	_, err := NewAnthropicWithClient(ac).Complete(context.Background(), Request{User: "hi"})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstream.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", upstream.StatusCode)
	}
}
