package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/triage/internal/agent"
	"github.com/MikeSquared-Agency/triage/internal/config"
	"github.com/MikeSquared-Agency/triage/internal/formatter"
	"github.com/MikeSquared-Agency/triage/internal/llm"
	"github.com/MikeSquared-Agency/triage/internal/remediation"
)

type analyzeOptions struct {
	output   string
	provider string
	model    string
	verbose  bool
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze COMPLAINT",
		Short: "Analyze a complaint with the configured model",
		Long: `Send a complaint to the model and print the normalized remediation.

Examples:
  # Human-readable output
  triagectl analyze "pip says No module named requests"

  # Machine-readable output from a specific provider
  triagectl analyze "VPN drops every hour" --provider anthropic -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "human", "Output format (human, json, yaml)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider (openai, anthropic); defaults to LLM_PROVIDER")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name; defaults to the provider's configured model")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log the model call to stderr")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, complaint string) error {
	if err := validateOutput(opts.output); err != nil {
		return err
	}
	if strings.TrimSpace(complaint) == "" {
		return fmt.Errorf("complaint text is required")
	}

	cfg := config.Load()
	applyOverrides(&cfg, opts.provider, opts.model)

	client, err := llm.New(cfg)
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	ag := agent.New(client, logger, agent.Options{
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.LLMTimeout,
	})

	human := opts.output == "human"
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	if human {
		s.Suffix = fmt.Sprintf(" Analyzing with %s...", client.Name())
		s.Start()
	}

	resp := ag.Respond(context.Background(), complaint)

	if human {
		s.Stop()
		if resp.Error != nil {
			printFailure("Analysis failed")
		} else {
			printSuccess("Analysis complete")
		}
	}

	return formatter.Display(cmd.OutOrStdout(), remediation.Normalize(resp), opts.output)
}

func newNormalizeCmd() *cobra.Command {
	var (
		file   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize a saved model response without calling the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			var (
				data []byte
				err  error
			)
			if file == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}

			var resp remediation.ModelResponse
			if err := json.Unmarshal(data, &resp); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			return formatter.Display(cmd.OutOrStdout(), remediation.Normalize(&resp), output)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Model response JSON file, or - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (human, json, yaml)")

	return cmd
}

// applyOverrides points cfg at the provider and model chosen on the command line.
func applyOverrides(cfg *config.Config, provider, model string) {
	if provider != "" {
		cfg.LLMProvider = provider
	}
	if model == "" {
		return
	}
	if strings.EqualFold(cfg.LLMProvider, llm.ProviderAnthropic) {
		cfg.AnthropicModel = model
	} else {
		cfg.OpenAIModel = model
	}
}

func validateOutput(format string) error {
	switch format {
	case "human", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown output format %q (want human, json or yaml)", format)
}

func printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "✓ %s\n", msg)
}

func printFailure(msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(os.Stderr, "✗ %s\n", msg)
}
