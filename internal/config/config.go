package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        int
	NatsURL     string
	NatsToken   string
	DatabaseURL string
	LogLevel    string

	LLMProvider     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicModel  string
	LLMTimeout      time.Duration
	LLMMaxTokens    int

	ClassifierURL string
	SlackBotToken string
	SlackChannel  string
	APIToken      string
}

func Load() Config {
	return Config{
		Port:        envInt("TRIAGE_PORT", 8760),
		NatsURL:     envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:   envStr("NATS_TOKEN", ""),
		DatabaseURL: envStr("DATABASE_URL", ""),
		LogLevel:    envStr("LOG_LEVEL", "info"),

		LLMProvider:     envStr("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIModel:     envStr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   envStr("OPENAI_BASE_URL", ""),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  envStr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		LLMTimeout:      time.Duration(envInt("LLM_TIMEOUT", 25)) * time.Second,
		LLMMaxTokens:    envInt("LLM_MAX_TOKENS", 1200),

		ClassifierURL: envStr("CLASSIFIER_URL", ""),
		SlackBotToken: envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:  envStr("SLACK_ESCALATIONS_CHANNEL", ""),
		APIToken:      envStr("TRIAGE_API_TOKEN", ""),
	}
}

// EscalationEnabled reports whether both Slack settings are present.
func (c Config) EscalationEnabled() bool {
	return c.SlackBotToken != "" && c.SlackChannel != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
