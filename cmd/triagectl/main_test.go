package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/triage/internal/config"
)

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "triagectl version ") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestNormalizeCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resp.json")
	resp := `{"routing":{"is_technical":true,"category":"dev_env_tooling"},` +
		`"summary":"missing package","steps_to_apply":[{"text":"Install the missing package."}],` +
		`"solution":{"code_language":"bash","code":"pip install requests"}}`
	if err := os.WriteFile(path, []byte(resp), 0o644); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"normalize", "-f", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got struct {
		Status string   `json:"status"`
		Steps  []string `json:"steps"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out.String())
	}
	if got.Status != "ok" || len(got.Steps) != 1 {
		t.Fatalf("unexpected result %+v", got)
	}
	if got.Steps[0] != "Install the missing package by running `pip install requests`." {
		t.Errorf("unexpected step %q", got.Steps[0])
	}
}

func TestNormalizeCmd_Stdin(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader(`{"error":"OpenAI quota exceeded"}`))
	root.SetArgs([]string{"normalize"})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != "{\n  \"status\": \"error\",\n  \"message\": \"OpenAI quota exceeded\"\n}" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestNormalizeCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		in   string
	}{
		{"bad json", []string{"normalize"}, "{"},
		{"missing file", []string{"normalize", "-f", filepath.Join(os.TempDir(), "does-not-exist.json")}, ""},
		{"bad format", []string{"normalize", "-o", "xml"}, "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCmd()
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetIn(strings.NewReader(tt.in))
			root.SetArgs(tt.args)
			if err := root.Execute(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Config{LLMProvider: "openai", OpenAIModel: "gpt-4o-mini", AnthropicModel: "claude"}

	applyOverrides(&cfg, "", "gpt-4o")
	if cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("expected openai model override, got %q", cfg.OpenAIModel)
	}

	applyOverrides(&cfg, "anthropic", "claude-x")
	if cfg.LLMProvider != "anthropic" || cfg.AnthropicModel != "claude-x" {
		t.Errorf("expected anthropic override, got %+v", cfg)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("expected openai model untouched, got %q", cfg.OpenAIModel)
	}
}
